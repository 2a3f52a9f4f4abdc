package mentor

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

func (h *Handler) RegisterRoutes(router chi.Router) {
	router.Get("/profile", h.GetProfile)
	router.Put("/profile", h.UpdateProfile)
	router.Delete("/profile", h.DeleteAccount)
	router.Get("/profile/preferences", h.GetPreferences)
	router.Put("/profile/preferences", h.UpdatePreferences)
}

func (h *Handler) GetProfile(w http.ResponseWriter, r *http.Request) {
	mentorID, ok := identity.MentorID(r.Context())
	if !ok {
		httputil.RespondWithError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	m, err := h.service.GetProfile(r.Context(), mentorID)
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	httputil.RespondWithJSON(w, http.StatusOK, m)
}

func (h *Handler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	mentorID, ok := identity.MentorID(r.Context())
	if !ok {
		httputil.RespondWithError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	var req UpdateProfileRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.RespondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httputil.RespondWithFieldErrors(w, http.StatusBadRequest, "Validation failed", validation.Fields(err))
		return
	}

	m, err := h.service.UpdateProfile(r.Context(), mentorID, req)
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	h.logger.InfoContext(r.Context(), "profile updated", "mentor_id", mentorID)
	httputil.RespondWithJSON(w, http.StatusOK, m)
}

func (h *Handler) GetPreferences(w http.ResponseWriter, r *http.Request) {
	mentorID, ok := identity.MentorID(r.Context())
	if !ok {
		httputil.RespondWithError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	m, err := h.service.GetProfile(r.Context(), mentorID)
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	httputil.RespondWithJSON(w, http.StatusOK, m.Preferences())
}

func (h *Handler) UpdatePreferences(w http.ResponseWriter, r *http.Request) {
	mentorID, ok := identity.MentorID(r.Context())
	if !ok {
		httputil.RespondWithError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	var prefs Preferences
	if err := json.NewDecoder(r.Body).Decode(&prefs); err != nil {
		httputil.RespondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if err := h.validate.Struct(prefs); err != nil {
		httputil.RespondWithFieldErrors(w, http.StatusBadRequest, "Validation failed", validation.Fields(err))
		return
	}

	m, err := h.service.UpdatePreferences(r.Context(), mentorID, prefs)
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	httputil.RespondWithJSON(w, http.StatusOK, m.Preferences())
}

func (h *Handler) DeleteAccount(w http.ResponseWriter, r *http.Request) {
	mentorID, ok := identity.MentorID(r.Context())
	if !ok {
		httputil.RespondWithError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	if err := h.service.DeleteAccount(r.Context(), mentorID); err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) handleServiceError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, ErrMentorNotFound):
		httputil.RespondWithError(w, http.StatusNotFound, "Profile not found")
	case errors.Is(err, ErrInvalidInput):
		httputil.RespondWithError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, ErrStudentIDExists):
		httputil.RespondWithFieldErrors(w, http.StatusConflict, err.Error(), map[string]string{"student_id": err.Error()})
	case errors.Is(err, ErrEmailExists):
		httputil.RespondWithFieldErrors(w, http.StatusConflict, err.Error(), map[string]string{"email": err.Error()})
	default:
		h.logger.ErrorContext(r.Context(), "profile request failed", "error", err)
		httputil.RespondWithError(w, http.StatusInternalServerError, "Internal server error")
	}
}
