package batch

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"mentorship-service/common/httputil"
	"mentorship-service/internal/identity"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

type contextKey struct{}

func NewContext(ctx context.Context, batch *Batch) context.Context {
	return context.WithValue(ctx, contextKey{}, batch)
}

// FromContext returns the batch loaded by RequireOwner.
func FromContext(ctx context.Context) (*Batch, bool) {
	batch, ok := ctx.Value(contextKey{}).(*Batch)
	return batch, ok && batch != nil
}

// RequireOwner loads {batchID} for the current mentor. A batch owned by
// someone else answers exactly like a missing one.
func RequireOwner(service Service, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			mentorID, ok := identity.MentorID(r.Context())
			if !ok {
				httputil.RespondWithError(w, http.StatusUnauthorized, "unauthorized")
				return
			}

			id, err := uuid.Parse(chi.URLParam(r, "batchID"))
			if err != nil {
				httputil.RespondWithError(w, http.StatusNotFound, "Batch not found")
				return
			}

			batch, err := service.Get(r.Context(), mentorID, id)
			if err != nil {
				if errors.Is(err, ErrBatchNotFound) {
					httputil.RespondWithError(w, http.StatusNotFound, "Batch not found")
					return
				}
				logger.ErrorContext(r.Context(), "failed to load batch", "batch_id", id, "error", err)
				httputil.RespondWithError(w, http.StatusInternalServerError, "Internal server error")
				return
			}

			next.ServeHTTP(w, r.WithContext(NewContext(r.Context(), batch)))
		})
	}
}
