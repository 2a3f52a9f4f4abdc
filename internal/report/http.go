package report

import (
	"log/slog"
	"net/http"

	"mentorship-service/common/httputil"
	"mentorship-service/internal/batch"

	"github.com/go-chi/chi/v5"
)

type Handler struct {
	service *Service
	logger  *slog.Logger
}

func NewHandler(service *Service, logger *slog.Logger) *Handler {
	return &Handler{
		service: service,
		logger:  logger,
	}
}

func (h *Handler) RegisterBatchRoutes(router chi.Router) {
	router.Get("/report", h.Download)
}

func (h *Handler) Download(w http.ResponseWriter, r *http.Request) {
	b, _ := batch.FromContext(r.Context())

	report, err := h.service.Generate(r.Context(), b)
	if err != nil {
		h.logger.ErrorContext(r.Context(), "failed to generate report", "batch_id", b.ID, "error", err)
		httputil.RespondWithError(w, http.StatusInternalServerError, "Failed to generate report")
		return
	}

	h.logger.InfoContext(r.Context(), "report generated", "batch_id", b.ID, "bytes", len(report.Data))
	httputil.RespondWithAttachment(w, "application/pdf", report.Filename, report.Data)
}
