package auth

import (
	"errors"
	"log/slog"
	"net/http"

	"mentorship-service/common/httputil"
	"mentorship-service/internal/identity"

	"github.com/golang-jwt/jwt/v5"
)

const (
	cookieName = "token"

	ReasonLoginRequired  = httputil.ReasonLoginRequired
	ReasonSessionExpired = httputil.ReasonSessionExpired
	ReasonVerifyEmail    = httputil.ReasonVerifyEmail
)

// AuthMiddleware validates the JWT cookie and puts the mentor into the request context.
func AuthMiddleware(issuer *TokenIssuer, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			cookie, err := r.Cookie(cookieName)
			if err != nil || cookie.Value == "" {
				logger.DebugContext(r.Context(), "no auth cookie found", "path", r.URL.Path)
				httputil.RespondWithReason(w, http.StatusUnauthorized, "unauthorized", ReasonLoginRequired)
				return
			}

			claims, err := issuer.Parse(cookie.Value)
			if err != nil {
				reason := ReasonLoginRequired
				if errors.Is(err, jwt.ErrTokenExpired) {
					reason = ReasonSessionExpired
				}
				logger.WarnContext(r.Context(), "invalid token", "error", err, "path", r.URL.Path)
				httputil.RespondWithReason(w, http.StatusUnauthorized, "unauthorized", reason)
				return
			}

			mentorID, _ := claims.MentorID()
			ctx := identity.WithMentor(r.Context(), mentorID, claims.Email)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

type CookieOptions struct {
	Secure bool
	// SameSiteLax allows tools like Postman locally; Strict otherwise.
	SameSiteLax bool
}

func (o CookieOptions) sameSite() http.SameSite {
	if o.SameSiteLax {
		return http.SameSiteLaxMode
	}
	return http.SameSiteStrictMode
}

// SetAuthCookie sets JWT token in secure HttpOnly cookie
func SetAuthCookie(w http.ResponseWriter, token string, maxAge int, opts CookieOptions) {
	http.SetCookie(w, &http.Cookie{
		Name:     cookieName,
		Value:    token,
		HttpOnly: true,
		Secure:   opts.Secure,
		SameSite: opts.sameSite(),
		Path:     "/",
		MaxAge:   maxAge,
	})
}

// ClearAuthCookie removes the auth cookie
func ClearAuthCookie(w http.ResponseWriter, opts CookieOptions) {
	http.SetCookie(w, &http.Cookie{
		Name:     cookieName,
		Value:    "",
		HttpOnly: true,
		Secure:   opts.Secure,
		SameSite: opts.sameSite(),
		Path:     "/",
		MaxAge:   -1,
	})
}
