// Package identity carries the authenticated mentor through request contexts.
package identity

import (
	"context"

	"github.com/google/uuid"
)

type contextKey string

const (
	mentorIDKey contextKey = "mentor_id"
	emailKey    contextKey = "email"
)

func WithMentor(ctx context.Context, mentorID uuid.UUID, email string) context.Context {
	ctx = context.WithValue(ctx, mentorIDKey, mentorID)
	return context.WithValue(ctx, emailKey, email)
}

// MentorID extracts the mentor ID placed by the auth middleware.
func MentorID(ctx context.Context) (uuid.UUID, bool) {
	id, ok := ctx.Value(mentorIDKey).(uuid.UUID)
	return id, ok && id != uuid.Nil
}

func Email(ctx context.Context) (string, bool) {
	email, ok := ctx.Value(emailKey).(string)
	return email, ok
}
