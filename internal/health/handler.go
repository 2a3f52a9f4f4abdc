package health

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"mentorship-service/common/httputil"
	"mentorship-service/common/metrics"

	"github.com/go-chi/chi/v5"
)

const checkTimeout = 2 * time.Second

// Check probes one dependency. Optional checks are reported but never make
// the service unready.
type Check struct {
	Name     string
	Ping     func(ctx context.Context) error
	Optional bool
}

type Handler struct {
	checks  []Check
	metrics *metrics.Metrics
	logger  *slog.Logger
}

func NewHandler(m *metrics.Metrics, logger *slog.Logger, checks ...Check) *Handler {
	return &Handler{
		checks:  checks,
		metrics: m,
		logger:  logger,
	}
}

func (h *Handler) RegisterRoutes(router chi.Router) {
	router.Get("/health", h.Health)
	router.Get("/ready", h.Ready)
}

type HealthResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks,omitempty"`
}

func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	httputil.RespondWithJSON(w, http.StatusOK, HealthResponse{Status: "ok"})
}

func (h *Handler) Ready(w http.ResponseWriter, r *http.Request) {
	ready, results := h.Probe(r.Context())
	if !ready {
		httputil.RespondWithJSON(w, http.StatusServiceUnavailable, HealthResponse{Status: "unavailable", Checks: results})
		return
	}
	httputil.RespondWithJSON(w, http.StatusOK, HealthResponse{Status: "ready", Checks: results})
}

// Probe runs every check and records its latency. It reports false when a
// required dependency is down.
func (h *Handler) Probe(ctx context.Context) (bool, map[string]string) {
	ready := true
	results := make(map[string]string, len(h.checks))

	for _, check := range h.checks {
		checkCtx, cancel := context.WithTimeout(ctx, checkTimeout)
		start := time.Now()
		err := check.Ping(checkCtx)
		cancel()

		h.metrics.Health.RecordDependencyCheck(ctx, check.Name, time.Since(start), err)

		if err != nil {
			results[check.Name] = "down"
			h.logger.WarnContext(ctx, "dependency check failed", "dependency", check.Name, "error", err)
			if !check.Optional {
				ready = false
			}
			continue
		}
		results[check.Name] = "up"
	}

	return ready, results
}

// Names lists the probed dependencies, used to register the health gauges.
func (h *Handler) Names() []string {
	names := make([]string, 0, len(h.checks))
	for _, check := range h.checks {
		names = append(names, check.Name)
	}
	return names
}
