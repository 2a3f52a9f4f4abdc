package session

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"mentorship-service/common/httputil"
	"mentorship-service/internal/batch"
	"mentorship-service/internal/validation"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
)

const duplicateSessionMessage = "A session with this number already exists for this batch"

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
	router.Get("/sessions", h.ListSessions)
	router.Post("/sessions", h.CreateSession)
	router.Get("/sessions/{sessionID}", h.GetSession)
	router.Put("/sessions/{sessionID}", h.UpdateSession)
	router.Delete("/sessions/{sessionID}", h.DeleteSession)
}

func (h *Handler) ListSessions(w http.ResponseWriter, r *http.Request) {
	b, _ := batch.FromContext(r.Context())

	sessions, err := h.service.List(r.Context(), b.ID)
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	httputil.RespondWithJSON(w, http.StatusOK, sessions)
}

func (h *Handler) CreateSession(w http.ResponseWriter, r *http.Request) {
	b, _ := batch.FromContext(r.Context())

	req, ok := h.decode(w, r)
	if !ok {
		return
	}

	session, err := h.service.Create(r.Context(), b.ID, req)
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	httputil.RespondWithJSON(w, http.StatusCreated, session)
}

func (h *Handler) GetSession(w http.ResponseWriter, r *http.Request) {
	b, _ := batch.FromContext(r.Context())

	session, err := h.service.Get(r.Context(), b.ID, IDParam(r))
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	httputil.RespondWithJSON(w, http.StatusOK, session)
}

func (h *Handler) UpdateSession(w http.ResponseWriter, r *http.Request) {
	b, _ := batch.FromContext(r.Context())

	req, ok := h.decode(w, r)
	if !ok {
		return
	}

	session, err := h.service.Update(r.Context(), b.ID, IDParam(r), req)
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	httputil.RespondWithJSON(w, http.StatusOK, session)
}

func (h *Handler) DeleteSession(w http.ResponseWriter, r *http.Request) {
	b, _ := batch.FromContext(r.Context())

	if err := h.service.Delete(r.Context(), b.ID, IDParam(r)); err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) decode(w http.ResponseWriter, r *http.Request) (SessionRequest, bool) {
	var req SessionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.RespondWithError(w, http.StatusBadRequest, "Invalid request body")
		return req, false
	}
	if err := h.validate.Struct(req); err != nil {
		httputil.RespondWithFieldErrors(w, http.StatusBadRequest, "Validation failed", validation.Fields(err))
		return req, false
	}
	return req, true
}

func (h *Handler) handleServiceError(w http.ResponseWriter, r *http.Request, err error) {
	var verr *ValidationError
	switch {
	case errors.As(err, &verr):
		httputil.RespondWithFieldErrors(w, http.StatusBadRequest, "Validation failed", verr.Fields)
	case errors.Is(err, ErrSessionNotFound):
		httputil.RespondWithError(w, http.StatusNotFound, "Session not found")
	case errors.Is(err, ErrDuplicateSessionNumber):
		httputil.RespondWithFieldErrors(w, http.StatusConflict, duplicateSessionMessage, map[string]string{"session_number": duplicateSessionMessage})
	default:
		h.logger.ErrorContext(r.Context(), "session request failed", "error", err)
		httputil.RespondWithError(w, http.StatusInternalServerError, "Internal server error")
	}
}

// IDParam parses {sessionID}; malformed IDs map to uuid.Nil and read as not found.
func IDParam(r *http.Request) uuid.UUID {
	id, err := uuid.Parse(chi.URLParam(r, "sessionID"))
	if err != nil {
		return uuid.Nil
	}
	return id
}
