package session_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"mentorship-service/common/httputil"
	"mentorship-service/common/logger"
	commonmetrics "mentorship-service/common/metrics"
	"mentorship-service/internal/batch"
	"mentorship-service/internal/identity"
	"mentorship-service/internal/session"
	"mentorship-service/testing/testdb"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDate(t *testing.T) {
	d, err := session.ParseDate("2025-10-01")
	require.NoError(t, err)
	assert.Equal(t, "2025-10-01", d.String())

	data, err := json.Marshal(d)
	require.NoError(t, err)
	assert.JSONEq(t, `"2025-10-01"`, string(data))

	var decoded session.Date
	require.NoError(t, json.Unmarshal([]byte(`"2025-12-31"`), &decoded))
	assert.Equal(t, time.December, decoded.Month())

	_, err = session.ParseDate("01/10/2025")
	assert.Error(t, err)
}

func TestSessionService_Shared(t *testing.T) {
	pgContainer := testdb.SetupSharedPostgres(t)
	defer pgContainer.Cleanup(t)

	pgContainer.RunMigrations(t)

	// Create handlers ONCE and reuse across all subtests
	log := logger.NewDiscard()
	mockMetrics := commonmetrics.NewMock()
	sessionHandler := session.NewHandler(session.NewService(session.NewRepository(pgContainer.DB, mockMetrics), log), log)
	batchHandler := batch.NewHandler(batch.NewService(batch.NewRepository(pgContainer.DB, mockMetrics), log), log, sessionHandler)

	var currentMentor uuid.UUID
	router := chi.NewRouter()
	router.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			next.ServeHTTP(w, r.WithContext(identity.WithMentor(r.Context(), currentMentor, "")))
		})
	})
	batchHandler.RegisterRoutes(router)

	setup := func(t *testing.T) string {
		t.Helper()
		testdb.CleanupTables(t, pgContainer.DB, "mentors")
		currentMentor = testdb.SeedMentor(t, pgContainer.DB, "mentor@student.green.ac.bd")
		return "/batches/" + testdb.SeedBatch(t, pgContainer.DB, currentMentor, "Batch 221").String()
	}

	do := func(t *testing.T, method, path string, payload any) *httptest.ResponseRecorder {
		t.Helper()
		var body bytes.Buffer
		if payload != nil {
			require.NoError(t, json.NewEncoder(&body).Encode(payload))
		}
		req := httptest.NewRequest(method, path, &body)
		req.Header.Set("Content-Type", "application/json")
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		return w
	}

	decodeErr := func(t *testing.T, w *httptest.ResponseRecorder) httputil.ErrorResponse {
		t.Helper()
		var response httputil.ErrorResponse
		require.NoError(t, json.NewDecoder(w.Body).Decode(&response))
		return response
	}

	t.Run("CreateSession_Online", func(t *testing.T) {
		base := setup(t)

		w := do(t, http.MethodPost, base+"/sessions", map[string]any{
			"session_number": 1,
			"session_date":   "2025-10-01",
			"method":         "Online",
			"platform":       " Google Meet ",
			"room_number":    "501",
		})

		assert.Equal(t, http.StatusCreated, w.Code)
		var response session.Session
		require.NoError(t, json.NewDecoder(w.Body).Decode(&response))
		assert.Equal(t, "2025-10-01", response.SessionDate.String())
		require.NotNil(t, response.Platform)
		assert.Equal(t, "Google Meet", *response.Platform)
		assert.Nil(t, response.RoomNumber, "room number is dropped for online sessions")
	})

	t.Run("CreateSession_OnlineWithoutPlatform", func(t *testing.T) {
		base := setup(t)

		w := do(t, http.MethodPost, base+"/sessions", map[string]any{
			"session_number": 1,
			"session_date":   "2025-10-01",
			"method":         "Online",
			"platform":       "   ",
		})

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, "Platform is required for online sessions", decodeErr(t, w).Fields["platform"])
	})

	t.Run("CreateSession_OfflineWithoutRoom", func(t *testing.T) {
		base := setup(t)

		w := do(t, http.MethodPost, base+"/sessions", map[string]any{
			"session_number": 1,
			"session_date":   "2025-10-01",
			"method":         "Offline",
			"platform":       "Zoom",
		})

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, "Room number is required for offline sessions", decodeErr(t, w).Fields["room_number"])
	})

	t.Run("CreateSession_InvalidFields", func(t *testing.T) {
		base := setup(t)

		w := do(t, http.MethodPost, base+"/sessions", map[string]any{
			"session_number": 0,
			"session_date":   "01/10/2025",
			"method":         "Hybrid",
		})

		assert.Equal(t, http.StatusBadRequest, w.Code)
		fields := decodeErr(t, w).Fields
		assert.Contains(t, fields, "session_number")
		assert.Contains(t, fields, "session_date")
		assert.Contains(t, fields, "method")
	})

	t.Run("CreateSession_DuplicateNumber", func(t *testing.T) {
		base := setup(t)
		payload := map[string]any{
			"session_number": 3,
			"session_date":   "2025-10-01",
			"method":         "Offline",
			"room_number":    "501",
		}

		w := do(t, http.MethodPost, base+"/sessions", payload)
		require.Equal(t, http.StatusCreated, w.Code)

		w = do(t, http.MethodPost, base+"/sessions", payload)
		assert.Equal(t, http.StatusConflict, w.Code)
		assert.Contains(t, decodeErr(t, w).Fields, "session_number")
	})

	t.Run("ListSessions_NewestFirst", func(t *testing.T) {
		base := setup(t)
		for i, date := range []string{"2025-09-01", "2025-10-15", "2025-10-01"} {
			w := do(t, http.MethodPost, base+"/sessions", map[string]any{
				"session_number": i + 1,
				"session_date":   date,
				"method":         "Offline",
				"room_number":    "501",
			})
			require.Equal(t, http.StatusCreated, w.Code)
		}

		w := do(t, http.MethodGet, base+"/sessions", nil)

		assert.Equal(t, http.StatusOK, w.Code)
		var response []session.Session
		require.NoError(t, json.NewDecoder(w.Body).Decode(&response))
		require.Len(t, response, 3)
		assert.Equal(t, []int{2, 3, 1}, []int{response[0].SessionNumber, response[1].SessionNumber, response[2].SessionNumber})
	})

	t.Run("UpdateSession_SwitchesMethod", func(t *testing.T) {
		base := setup(t)
		w := do(t, http.MethodPost, base+"/sessions", map[string]any{
			"session_number": 1,
			"session_date":   "2025-10-01",
			"method":         "Offline",
			"room_number":    "501",
		})
		require.Equal(t, http.StatusCreated, w.Code)
		var created session.Session
		require.NoError(t, json.NewDecoder(w.Body).Decode(&created))

		w = do(t, http.MethodPut, base+"/sessions/"+created.ID.String(), map[string]any{
			"session_number": 1,
			"session_date":   "2025-10-02",
			"method":         "Online",
			"platform":       "Zoom",
		})

		assert.Equal(t, http.StatusOK, w.Code)

		w = do(t, http.MethodGet, base+"/sessions/"+created.ID.String(), nil)
		require.Equal(t, http.StatusOK, w.Code)
		var fetched session.Session
		require.NoError(t, json.NewDecoder(w.Body).Decode(&fetched))
		assert.Equal(t, session.MethodOnline, fetched.Method)
		assert.Equal(t, "2025-10-02", fetched.SessionDate.String())
		assert.Nil(t, fetched.RoomNumber)
		assert.Equal(t, "Zoom", fetched.Location())
	})

	t.Run("DeleteSession", func(t *testing.T) {
		base := setup(t)
		w := do(t, http.MethodPost, base+"/sessions", map[string]any{
			"session_number": 1,
			"session_date":   "2025-10-01",
			"method":         "Online",
			"platform":       "Zoom",
		})
		require.Equal(t, http.StatusCreated, w.Code)
		var created session.Session
		require.NoError(t, json.NewDecoder(w.Body).Decode(&created))

		w = do(t, http.MethodDelete, base+"/sessions/"+created.ID.String(), nil)
		assert.Equal(t, http.StatusNoContent, w.Code)

		w = do(t, http.MethodGet, base+"/sessions/"+created.ID.String(), nil)
		assert.Equal(t, http.StatusNotFound, w.Code)

		w = do(t, http.MethodGet, base+"/sessions/not-a-uuid", nil)
		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}
