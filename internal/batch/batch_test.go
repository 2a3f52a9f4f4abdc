package batch_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"mentorship-service/common/httputil"
	"mentorship-service/common/logger"
	commonmetrics "mentorship-service/common/metrics"
	"mentorship-service/internal/attendance"
	"mentorship-service/internal/batch"
	"mentorship-service/internal/identity"
	"mentorship-service/internal/session"
	"mentorship-service/internal/student"
	"mentorship-service/testing/testdb"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPercentage(t *testing.T) {
	assert.Equal(t, 0, batch.Percentage(0, 0))
	assert.Equal(t, 0, batch.Percentage(5, 0))
	assert.Equal(t, 67, batch.Percentage(2, 3))
	assert.Equal(t, 33, batch.Percentage(1, 3))
	assert.Equal(t, 100, batch.Percentage(4, 4))
}

func TestBatchService_Shared(t *testing.T) {
	pgContainer := testdb.SetupSharedPostgres(t)
	defer pgContainer.Cleanup(t)

	pgContainer.RunMigrations(t)

	// Create handler ONCE and reuse across all subtests
	log := logger.NewDiscard()
	repo := batch.NewRepository(pgContainer.DB, commonmetrics.NewMock())
	handler := batch.NewHandler(batch.NewService(repo, log), log)

	var currentMentor uuid.UUID
	router := chi.NewRouter()
	router.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			next.ServeHTTP(w, r.WithContext(identity.WithMentor(r.Context(), currentMentor, "")))
		})
	})
	handler.RegisterRoutes(router)

	ctx := context.Background()

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

	t.Run("CreateBatch", func(t *testing.T) {
		testdb.CleanupTables(t, pgContainer.DB, "mentors")
		currentMentor = testdb.SeedMentor(t, pgContainer.DB, "mentor@student.green.ac.bd")

		w := do(t, http.MethodPost, "/batches", map[string]any{
			"batch_name":      " Batch 221 ",
			"department_name": "CSE",
			"section":         "A",
			"semester":        "Fall",
			"academic_year":   "2025-2026",
		})

		assert.Equal(t, http.StatusCreated, w.Code)
		var response batch.Batch
		require.NoError(t, json.NewDecoder(w.Body).Decode(&response))
		assert.NotEqual(t, uuid.Nil, response.ID)
		assert.Equal(t, "Batch 221", response.BatchName)
		assert.Equal(t, batch.StatusActive, response.Status)
		assert.Equal(t, currentMentor, response.MentorID)
	})

	t.Run("CreateBatch_ValidationError", func(t *testing.T) {
		testdb.CleanupTables(t, pgContainer.DB, "mentors")
		currentMentor = testdb.SeedMentor(t, pgContainer.DB, "mentor@student.green.ac.bd")

		w := do(t, http.MethodPost, "/batches", map[string]any{
			"batch_name": "Batch 221",
			"semester":   "Winter",
		})

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Contains(t, w.Body.String(), "semester")
		assert.Contains(t, w.Body.String(), "department_name")
	})

	t.Run("CreateBatch_DeletedAccount", func(t *testing.T) {
		testdb.CleanupTables(t, pgContainer.DB, "mentors")
		currentMentor = testdb.SeedMentor(t, pgContainer.DB, "mentor@student.green.ac.bd")
		_, err := pgContainer.DB.NewDelete().Table("mentors").Where("id = ?", currentMentor).Exec(ctx)
		require.NoError(t, err)

		w := do(t, http.MethodPost, "/batches", map[string]any{
			"batch_name":      "Batch 221",
			"department_name": "CSE",
			"section":         "A",
			"semester":        "Fall",
		})

		assert.Equal(t, http.StatusUnauthorized, w.Code)
		var response httputil.ErrorResponse
		require.NoError(t, json.NewDecoder(w.Body).Decode(&response))
		assert.Equal(t, httputil.ReasonSessionExpired, response.Reason)
	})

	t.Run("ListBatches_OnlyOwn", func(t *testing.T) {
		testdb.CleanupTables(t, pgContainer.DB, "mentors")
		other := testdb.SeedMentor(t, pgContainer.DB, "other@student.green.ac.bd")
		testdb.SeedBatch(t, pgContainer.DB, other, "Foreign")
		currentMentor = testdb.SeedMentor(t, pgContainer.DB, "mentor@student.green.ac.bd")
		testdb.SeedBatch(t, pgContainer.DB, currentMentor, "Mine 1")
		testdb.SeedBatch(t, pgContainer.DB, currentMentor, "Mine 2")

		w := do(t, http.MethodGet, "/batches", nil)

		assert.Equal(t, http.StatusOK, w.Code)
		var response []batch.Batch
		require.NoError(t, json.NewDecoder(w.Body).Decode(&response))
		require.Len(t, response, 2)
		for _, b := range response {
			assert.Equal(t, currentMentor, b.MentorID)
		}
	})

	t.Run("GetBatch_Foreign", func(t *testing.T) {
		testdb.CleanupTables(t, pgContainer.DB, "mentors")
		other := testdb.SeedMentor(t, pgContainer.DB, "other@student.green.ac.bd")
		foreign := testdb.SeedBatch(t, pgContainer.DB, other, "Foreign")
		currentMentor = testdb.SeedMentor(t, pgContainer.DB, "mentor@student.green.ac.bd")

		for _, path := range []string{
			"/batches/" + foreign.String(),
			"/batches/" + foreign.String() + "/stats",
			"/batches/" + uuid.NewString(),
			"/batches/not-a-uuid",
		} {
			w := do(t, http.MethodGet, path, nil)
			assert.Equal(t, http.StatusNotFound, w.Code, path)
			assert.Contains(t, w.Body.String(), "Batch not found")
		}

		w := do(t, http.MethodDelete, "/batches/"+foreign.String(), nil)
		assert.Equal(t, http.StatusNotFound, w.Code)

		exists, err := pgContainer.DB.NewSelect().Model((*batch.Batch)(nil)).Where("id = ?", foreign).Exists(ctx)
		require.NoError(t, err)
		assert.True(t, exists)
	})

	t.Run("UpdateBatch_Partial", func(t *testing.T) {
		testdb.CleanupTables(t, pgContainer.DB, "mentors")
		currentMentor = testdb.SeedMentor(t, pgContainer.DB, "mentor@student.green.ac.bd")
		id := testdb.SeedBatch(t, pgContainer.DB, currentMentor, "Batch 221")

		w := do(t, http.MethodPut, "/batches/"+id.String(), map[string]any{"status": "Graduated"})

		assert.Equal(t, http.StatusOK, w.Code)
		var response batch.Batch
		require.NoError(t, json.NewDecoder(w.Body).Decode(&response))
		assert.Equal(t, batch.StatusGraduated, response.Status)
		assert.Equal(t, "Batch 221", response.BatchName)

		w = do(t, http.MethodPut, "/batches/"+id.String(), map[string]any{"status": "Inactive"})
		require.Equal(t, http.StatusOK, w.Code)
		require.NoError(t, json.NewDecoder(w.Body).Decode(&response))
		assert.Equal(t, batch.StatusInactive, response.Status)

		w = do(t, http.MethodPut, "/batches/"+id.String(), map[string]any{"status": "Paused"})
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("DeleteBatch_Cascades", func(t *testing.T) {
		testdb.CleanupTables(t, pgContainer.DB, "mentors")
		currentMentor = testdb.SeedMentor(t, pgContainer.DB, "mentor@student.green.ac.bd")
		id := testdb.SeedBatch(t, pgContainer.DB, currentMentor, "Batch 221")
		_, err := pgContainer.DB.NewInsert().Model(&student.Student{BatchID: id, Name: "John Doe", StudentID: "S001"}).Exec(ctx)
		require.NoError(t, err)

		w := do(t, http.MethodDelete, "/batches/"+id.String(), nil)
		assert.Equal(t, http.StatusNoContent, w.Code)

		count, err := pgContainer.DB.NewSelect().Model((*student.Student)(nil)).Where("batch_id = ?", id).Count(ctx)
		require.NoError(t, err)
		assert.Zero(t, count)
	})

	t.Run("Stats", func(t *testing.T) {
		testdb.CleanupTables(t, pgContainer.DB, "mentors")
		currentMentor = testdb.SeedMentor(t, pgContainer.DB, "mentor@student.green.ac.bd")
		id := testdb.SeedBatch(t, pgContainer.DB, currentMentor, "Batch 221")

		students := []student.Student{
			{BatchID: id, Name: "John Doe", StudentID: "S001"},
			{BatchID: id, Name: "Jane Smith", StudentID: "S002"},
			{BatchID: id, Name: "Karim Uddin", StudentID: "S003"},
		}
		_, err := pgContainer.DB.NewInsert().Model(&students).Exec(ctx)
		require.NoError(t, err)

		date, err := session.ParseDate("2025-10-01")
		require.NoError(t, err)
		room := "501"
		sess := &session.Session{BatchID: id, SessionNumber: 1, SessionDate: date, Method: session.MethodOffline, RoomNumber: &room}
		_, err = pgContainer.DB.NewInsert().Model(sess).Exec(ctx)
		require.NoError(t, err)

		records := []attendance.Attendance{
			{SessionID: sess.ID, StudentID: students[0].ID, Status: attendance.StatusPresent},
			{SessionID: sess.ID, StudentID: students[1].ID, Status: attendance.StatusPresent},
			{SessionID: sess.ID, StudentID: students[2].ID, Status: attendance.StatusAbsent},
		}
		_, err = pgContainer.DB.NewInsert().Model(&records).Exec(ctx)
		require.NoError(t, err)

		w := do(t, http.MethodGet, "/batches/"+id.String()+"/stats", nil)

		assert.Equal(t, http.StatusOK, w.Code)
		var response struct {
			ID uuid.UUID `json:"id"`
			batch.Stats
		}
		require.NoError(t, json.NewDecoder(w.Body).Decode(&response))
		assert.Equal(t, id, response.ID)
		assert.Equal(t, 3, response.StudentCount)
		assert.Equal(t, 1, response.SessionCount)
		assert.Equal(t, 67, response.AttendancePercentage)
	})

	t.Run("Stats_Empty", func(t *testing.T) {
		testdb.CleanupTables(t, pgContainer.DB, "mentors")
		currentMentor = testdb.SeedMentor(t, pgContainer.DB, "mentor@student.green.ac.bd")
		id := testdb.SeedBatch(t, pgContainer.DB, currentMentor, "Empty")

		w := do(t, http.MethodGet, "/batches/"+id.String()+"/stats", nil)

		assert.Equal(t, http.StatusOK, w.Code)
		var response batch.Stats
		require.NoError(t, json.NewDecoder(w.Body).Decode(&response))
		assert.Equal(t, batch.Stats{}, response)
	})

	t.Run("Dashboard", func(t *testing.T) {
		testdb.CleanupTables(t, pgContainer.DB, "mentors")
		currentMentor = testdb.SeedMentor(t, pgContainer.DB, "mentor@student.green.ac.bd")
		active := testdb.SeedBatch(t, pgContainer.DB, currentMentor, "Active")
		graduated := testdb.SeedBatch(t, pgContainer.DB, currentMentor, "Graduated")
		_, err := pgContainer.DB.NewUpdate().Model((*batch.Batch)(nil)).
			Set("status = ?", batch.StatusGraduated).
			Where("id = ?", graduated).
			Exec(ctx)
		require.NoError(t, err)
		_, err = pgContainer.DB.NewInsert().Model(&[]student.Student{
			{BatchID: active, Name: "John Doe", StudentID: "S001"},
			{BatchID: graduated, Name: "Jane Smith", StudentID: "S001"},
		}).Exec(ctx)
		require.NoError(t, err)

		w := do(t, http.MethodGet, "/dashboard", nil)

		assert.Equal(t, http.StatusOK, w.Code)
		var response batch.Dashboard
		require.NoError(t, json.NewDecoder(w.Body).Decode(&response))
		assert.Equal(t, batch.Dashboard{
			TotalBatches:     2,
			TotalStudents:    2,
			ActiveBatches:    1,
			GraduatedBatches: 1,
		}, response)
	})
}
