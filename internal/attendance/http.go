package attendance

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"mentorship-service/common/httputil"
	"mentorship-service/internal/batch"
	"mentorship-service/internal/session"
	"mentorship-service/internal/validation"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
)

type Handler struct {
	service  Service
	validate *validator.Validate
	logger   *slog.Logger
}

func NewHandler(service Service, logger *slog.Logger) *Handler {
	return &Handler{
		service:  service,
		validate: validation.New(),
		logger:   logger,
	}
}

func (h *Handler) RegisterBatchRoutes(router chi.Router) {
	router.Get("/sessions/{sessionID}/attendance", h.GetSheet)
	router.Put("/sessions/{sessionID}/attendance", h.Reconcile)
	router.Put("/attendance/{attendanceID}", h.UpdateAttendance)
	router.Delete("/attendance/{attendanceID}", h.DeleteAttendance)
}

func (h *Handler) GetSheet(w http.ResponseWriter, r *http.Request) {
	b, _ := batch.FromContext(r.Context())

	sheet, err := h.service.Sheet(r.Context(), b.ID, session.IDParam(r))
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	httputil.RespondWithJSON(w, http.StatusOK, sheet)
}

func (h *Handler) Reconcile(w http.ResponseWriter, r *http.Request) {
	b, _ := batch.FromContext(r.Context())

	var req ReconcileRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.RespondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httputil.RespondWithFieldErrors(w, http.StatusBadRequest, "Validation failed", validation.Fields(err))
		return
	}

	records, err := h.service.Reconcile(r.Context(), b.ID, session.IDParam(r), req.Records)
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	httputil.RespondWithJSON(w, http.StatusOK, records)
}

func (h *Handler) UpdateAttendance(w http.ResponseWriter, r *http.Request) {
	b, _ := batch.FromContext(r.Context())

	var req UpdateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.RespondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httputil.RespondWithFieldErrors(w, http.StatusBadRequest, "Validation failed", validation.Fields(err))
		return
	}

	record, err := h.service.UpdateStatus(r.Context(), b.ID, attendanceIDParam(r), req.Status)
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	httputil.RespondWithJSON(w, http.StatusOK, record)
}

func (h *Handler) DeleteAttendance(w http.ResponseWriter, r *http.Request) {
	b, _ := batch.FromContext(r.Context())

	if err := h.service.Delete(r.Context(), b.ID, attendanceIDParam(r)); err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) handleServiceError(w http.ResponseWriter, r *http.Request, err error) {
	var verr *ValidationError
	switch {
	case errors.As(err, &verr):
		httputil.RespondWithFieldErrors(w, http.StatusBadRequest, "Validation failed", verr.Fields)
	case errors.Is(err, session.ErrSessionNotFound):
		httputil.RespondWithError(w, http.StatusNotFound, "Session not found")
	case errors.Is(err, ErrAttendanceNotFound):
		httputil.RespondWithError(w, http.StatusNotFound, "Attendance record not found")
	default:
		h.logger.ErrorContext(r.Context(), "attendance request failed", "error", err)
		httputil.RespondWithError(w, http.StatusInternalServerError, "Internal server error")
	}
}

func attendanceIDParam(r *http.Request) uuid.UUID {
	id, err := uuid.Parse(chi.URLParam(r, "attendanceID"))
	if err != nil {
		return uuid.Nil
	}
	return id
}
