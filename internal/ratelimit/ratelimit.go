// Package ratelimit throttles requests per client IP.
package ratelimit

import (
	"context"
	"log/slog"
	"net"
	"net/http"
	"strconv"
	"time"

	"mentorship-service/common/httputil"
)

// Limiter decides whether one more request for key fits in the budget.
type Limiter interface {
	Allow(ctx context.Context, key string) (bool, error)
}

// Fallback asks Primary first and switches to Secondary while Primary errors.
type Fallback struct {
	Primary   Limiter
	Secondary Limiter
	Logger    *slog.Logger
}

func (f *Fallback) Allow(ctx context.Context, key string) (bool, error) {
	allowed, err := f.Primary.Allow(ctx, key)
	if err == nil {
		return allowed, nil
	}
	f.Logger.WarnContext(ctx, "primary rate limiter unavailable, using fallback", "error", err)
	return f.Secondary.Allow(ctx, key)
}

// Middleware rejects requests over the limit with 429. Limiter failures let the request through.
func Middleware(limiter Limiter, window time.Duration, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			allowed, err := limiter.Allow(r.Context(), clientIP(r))
			if err != nil {
				logger.WarnContext(r.Context(), "rate limiter failed", "error", err)
				next.ServeHTTP(w, r)
				return
			}
			if !allowed {
				w.Header().Set("Retry-After", strconv.Itoa(int(window.Seconds())))
				httputil.RespondWithError(w, http.StatusTooManyRequests, "Too many requests, please try again later")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		host = r.RemoteAddr
	}
	if host == "" {
		return "unknown"
	}
	return host
}
