package auth

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"mentorship-service/common/httputil"
	"mentorship-service/internal/validation"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
)

const emailNotConfirmedMessage = "Please verify your email before logging in. Check your inbox for the verification link."

type Handler struct {
	service   *Service
	logger    *slog.Logger
	validator *validator.Validate
	cookies   CookieOptions
}

func NewHandler(service *Service, cookies CookieOptions, logger *slog.Logger) *Handler {
	return &Handler{
		service:   service,
		logger:    logger,
		validator: validation.New(),
		cookies:   cookies,
	}
}

func (h *Handler) RegisterRoutes(router chi.Router) {
	router.Post("/auth/register", h.Register)
	router.Get("/auth/availability", h.Availability)
	router.Get("/auth/verify", h.Verify)
	router.Post("/auth/verify/resend", h.ResendVerification)
	router.Post("/auth/login", h.Login)
	router.Post("/auth/refresh", h.Refresh)
	router.Post("/auth/logout", h.Logout)
}

// Register creates a new mentor account pending email verification
func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	var req RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.RespondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := h.validator.Struct(req); err != nil {
		h.logger.DebugContext(r.Context(), "validation failed", "error", err)
		httputil.RespondWithFieldErrors(w, http.StatusBadRequest, "validation failed", validation.Fields(err))
		return
	}

	created, err := h.service.Register(r.Context(), req)
	if err != nil {
		var exists *AccountExistsError
		switch {
		case errors.As(err, &exists):
			httputil.RespondWithFieldErrors(w, http.StatusConflict, err.Error(), exists.Availability.Fields())
		case errors.Is(err, ErrInvalidEmailDomain):
			httputil.RespondWithFieldErrors(w, http.StatusBadRequest, "validation failed", map[string]string{
				"email": "email must end with " + h.service.Settings().EmailDomain,
			})
		default:
			h.logger.ErrorContext(r.Context(), "registration failed", "error", err)
			httputil.RespondWithError(w, http.StatusInternalServerError, "internal server error")
		}
		return
	}

	h.logger.InfoContext(r.Context(), "mentor registered", "mentor_id", created.ID)

	httputil.RespondWithJSON(w, http.StatusCreated, RegisterResponse{
		Mentor:  created,
		Message: "Registration successful. Please check your email to verify your account.",
	})
}

// Availability reports whether an email and student ID are still free.
func (h *Handler) Availability(w http.ResponseWriter, r *http.Request) {
	email := r.URL.Query().Get("email")
	studentID := r.URL.Query().Get("student_id")
	if email == "" && studentID == "" {
		httputil.RespondWithError(w, http.StatusBadRequest, "email or student_id is required")
		return
	}

	availability, err := h.service.CheckAvailability(r.Context(), email, studentID)
	if err != nil {
		h.logger.WarnContext(r.Context(), "availability check failed", "error", err)
		httputil.RespondWithError(w, http.StatusServiceUnavailable, "availability check unavailable")
		return
	}

	httputil.RespondWithJSON(w, http.StatusOK, availability)
}

func (h *Handler) Verify(w http.ResponseWriter, r *http.Request) {
	token := r.URL.Query().Get("token")
	if token == "" {
		httputil.RespondWithError(w, http.StatusBadRequest, ErrInvalidVerificationToken.Error())
		return
	}

	if err := h.service.VerifyEmail(r.Context(), token); err != nil {
		if errors.Is(err, ErrInvalidVerificationToken) {
			httputil.RespondWithError(w, http.StatusBadRequest, err.Error())
			return
		}
		h.logger.ErrorContext(r.Context(), "email verification failed", "error", err)
		httputil.RespondWithError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	httputil.RespondWithJSON(w, http.StatusOK, map[string]string{"message": "Email verified. You can now log in."})
}

type resendRequest struct {
	Email string `json:"email" validate:"required,email"`
}

func (h *Handler) ResendVerification(w http.ResponseWriter, r *http.Request) {
	var req resendRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.RespondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := h.validator.Struct(req); err != nil {
		httputil.RespondWithFieldErrors(w, http.StatusBadRequest, "validation failed", validation.Fields(err))
		return
	}

	if err := h.service.ResendVerification(r.Context(), req.Email); err != nil {
		h.logger.ErrorContext(r.Context(), "resend verification failed", "error", err)
		httputil.RespondWithError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	w.WriteHeader(http.StatusAccepted)
}

// Login authenticates a mentor
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.RespondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := h.validator.Struct(req); err != nil {
		httputil.RespondWithFieldErrors(w, http.StatusBadRequest, "validation failed", validation.Fields(err))
		return
	}

	resp, err := h.service.Login(r.Context(), req)
	if err != nil {
		switch {
		case errors.Is(err, ErrInvalidCredentials):
			httputil.RespondWithError(w, http.StatusUnauthorized, err.Error())
		case errors.Is(err, ErrEmailNotConfirmed):
			httputil.RespondWithReason(w, http.StatusForbidden, emailNotConfirmedMessage, ReasonVerifyEmail)
		default:
			h.logger.ErrorContext(r.Context(), "login failed", "error", err)
			httputil.RespondWithError(w, http.StatusInternalServerError, "internal server error")
		}
		return
	}

	h.logger.InfoContext(r.Context(), "mentor logged in", "mentor_id", resp.Mentor.ID)

	h.setAccessCookie(w, resp.AccessToken)
	httputil.RespondWithJSON(w, http.StatusOK, resp)
}

// Refresh rotates the refresh token and issues a new access token
func (h *Handler) Refresh(w http.ResponseWriter, r *http.Request) {
	var req RefreshRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.RespondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := h.validator.Struct(req); err != nil {
		httputil.RespondWithFieldErrors(w, http.StatusBadRequest, "validation failed", validation.Fields(err))
		return
	}

	resp, err := h.service.RefreshAccessToken(r.Context(), req.RefreshToken)
	if err != nil {
		if errors.Is(err, ErrInvalidRefreshToken) {
			httputil.RespondWithReason(w, http.StatusUnauthorized, err.Error(), ReasonSessionExpired)
			return
		}
		h.logger.ErrorContext(r.Context(), "token refresh failed", "error", err)
		httputil.RespondWithError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	h.setAccessCookie(w, resp.AccessToken)
	httputil.RespondWithJSON(w, http.StatusOK, resp)
}

// Logout invalidates the refresh token
func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	var req RefreshRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.RespondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := h.service.Logout(r.Context(), req.RefreshToken); err != nil {
		h.logger.ErrorContext(r.Context(), "logout failed", "error", err)
		httputil.RespondWithError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	ClearAuthCookie(w, h.cookies)
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) setAccessCookie(w http.ResponseWriter, token string) {
	SetAuthCookie(w, token, int(h.service.issuer.AccessTTL().Seconds()), h.cookies)
}
