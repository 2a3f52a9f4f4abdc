package health_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"mentorship-service/common/logger"
	commonmetrics "mentorship-service/common/metrics"
	"mentorship-service/internal/health"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func up(context.Context) error   { return nil }
func down(context.Context) error { return errors.New("connection refused") }

func serve(t *testing.T, h *health.Handler, path string) (int, health.HealthResponse) {
	t.Helper()

	router := chi.NewRouter()
	h.RegisterRoutes(router)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))

	var resp health.HealthResponse
	require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
	return w.Code, resp
}

func TestHealthHandler(t *testing.T) {
	mockMetrics := commonmetrics.NewMock()

	t.Run("Health_AlwaysOK", func(t *testing.T) {
		h := health.NewHandler(mockMetrics, logger.NewDiscard(), health.Check{Name: "postgres", Ping: down})

		code, resp := serve(t, h, "/health")
		assert.Equal(t, http.StatusOK, code)
		assert.Equal(t, "ok", resp.Status)
	})

	t.Run("Ready_AllUp", func(t *testing.T) {
		h := health.NewHandler(mockMetrics, logger.NewDiscard(),
			health.Check{Name: "postgres", Ping: up},
			health.Check{Name: "redis", Ping: up, Optional: true},
		)

		code, resp := serve(t, h, "/ready")
		assert.Equal(t, http.StatusOK, code)
		assert.Equal(t, map[string]string{"postgres": "up", "redis": "up"}, resp.Checks)
	})

	t.Run("Ready_OptionalDown", func(t *testing.T) {
		h := health.NewHandler(mockMetrics, logger.NewDiscard(),
			health.Check{Name: "postgres", Ping: up},
			health.Check{Name: "redis", Ping: down, Optional: true},
		)

		code, resp := serve(t, h, "/ready")
		assert.Equal(t, http.StatusOK, code)
		assert.Equal(t, "down", resp.Checks["redis"])
	})

	t.Run("Ready_RequiredDown", func(t *testing.T) {
		h := health.NewHandler(mockMetrics, logger.NewDiscard(), health.Check{Name: "postgres", Ping: down})

		code, resp := serve(t, h, "/ready")
		assert.Equal(t, http.StatusServiceUnavailable, code)
		assert.Equal(t, "unavailable", resp.Status)
		assert.Equal(t, []string{"postgres"}, h.Names())
	})
}
