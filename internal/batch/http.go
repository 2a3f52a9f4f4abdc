package batch

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"mentorship-service/common/httputil"
	"mentorship-service/internal/identity"
	"mentorship-service/internal/validation"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
)

// ScopedRoutes is implemented by handlers that live under /batches/{batchID}.
// Their routes run after RequireOwner, so FromContext always succeeds.
type ScopedRoutes interface {
	RegisterBatchRoutes(router chi.Router)
}

type Handler struct {
	service  Service
	validate *validator.Validate
	logger   *slog.Logger
	scoped   []ScopedRoutes
}

func NewHandler(service Service, logger *slog.Logger, scoped ...ScopedRoutes) *Handler {
	return &Handler{
		service:  service,
		validate: validation.New(),
		logger:   logger,
		scoped:   scoped,
	}
}

func (h *Handler) RegisterRoutes(router chi.Router) {
	router.Get("/dashboard", h.Dashboard)
	router.Get("/batches", h.ListBatches)
	router.Post("/batches", h.CreateBatch)
	router.Route("/batches/{batchID}", func(r chi.Router) {
		r.Use(RequireOwner(h.service, h.logger))
		r.Get("/", h.GetBatch)
		r.Put("/", h.UpdateBatch)
		r.Delete("/", h.DeleteBatch)
		r.Get("/stats", h.GetStats)
		for _, s := range h.scoped {
			s.RegisterBatchRoutes(r)
		}
	})
}

func (h *Handler) ListBatches(w http.ResponseWriter, r *http.Request) {
	mentorID, ok := identity.MentorID(r.Context())
	if !ok {
		httputil.RespondWithError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	batches, err := h.service.List(r.Context(), mentorID)
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	httputil.RespondWithJSON(w, http.StatusOK, batches)
}

func (h *Handler) CreateBatch(w http.ResponseWriter, r *http.Request) {
	mentorID, ok := identity.MentorID(r.Context())
	if !ok {
		httputil.RespondWithError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	var req CreateBatchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.RespondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httputil.RespondWithFieldErrors(w, http.StatusBadRequest, "Validation failed", validation.Fields(err))
		return
	}

	batch, err := h.service.Create(r.Context(), mentorID, req)
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	httputil.RespondWithJSON(w, http.StatusCreated, batch)
}

func (h *Handler) GetBatch(w http.ResponseWriter, r *http.Request) {
	batch, _ := FromContext(r.Context())
	httputil.RespondWithJSON(w, http.StatusOK, batch)
}

func (h *Handler) UpdateBatch(w http.ResponseWriter, r *http.Request) {
	batch, _ := FromContext(r.Context())

	var req UpdateBatchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.RespondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httputil.RespondWithFieldErrors(w, http.StatusBadRequest, "Validation failed", validation.Fields(err))
		return
	}

	updated, err := h.service.Update(r.Context(), batch, req)
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	httputil.RespondWithJSON(w, http.StatusOK, updated)
}

func (h *Handler) DeleteBatch(w http.ResponseWriter, r *http.Request) {
	batch, _ := FromContext(r.Context())

	if err := h.service.Delete(r.Context(), batch.MentorID, batch.ID); err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) GetStats(w http.ResponseWriter, r *http.Request) {
	batch, _ := FromContext(r.Context())

	stats, err := h.service.Stats(r.Context(), batch.ID)
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	httputil.RespondWithJSON(w, http.StatusOK, WithStats{Batch: batch, Stats: stats})
}

func (h *Handler) Dashboard(w http.ResponseWriter, r *http.Request) {
	mentorID, ok := identity.MentorID(r.Context())
	if !ok {
		httputil.RespondWithError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	dashboard, err := h.service.Dashboard(r.Context(), mentorID)
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	httputil.RespondWithJSON(w, http.StatusOK, dashboard)
}

func (h *Handler) handleServiceError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, ErrBatchNotFound):
		httputil.RespondWithError(w, http.StatusNotFound, "Batch not found")
	case errors.Is(err, ErrInvalidInput):
		httputil.RespondWithError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, ErrMentorNotFound):
		httputil.RespondWithReason(w, http.StatusUnauthorized, "unauthorized", httputil.ReasonSessionExpired)
	default:
		h.logger.ErrorContext(r.Context(), "batch request failed", "error", err)
		httputil.RespondWithError(w, http.StatusInternalServerError, "Internal server error")
	}
}
