package auth

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"mentorship-service/common/metrics"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// TokenStore persists refresh and verification tokens.
type TokenStore interface {
	CreateRefreshToken(ctx context.Context, mentorID uuid.UUID, token string, expiresAt time.Time) error
	GetRefreshToken(ctx context.Context, token string) (*RefreshToken, error)
	DeleteRefreshToken(ctx context.Context, token string) error
	DeleteExpiredTokens(ctx context.Context) error
	CreateVerificationToken(ctx context.Context, mentorID uuid.UUID, token string, expiresAt time.Time) error
	ConsumeVerificationToken(ctx context.Context, token string) (*VerificationToken, error)
}

type Repository struct {
	db      *bun.DB
	metrics *metrics.Metrics
}

var _ TokenStore = (*Repository)(nil)

func NewRepository(db *bun.DB, m *metrics.Metrics) *Repository {
	return &Repository{
		db:      db,
		metrics: m,
	}
}

// CreateRefreshToken stores a new refresh token
func (r *Repository) CreateRefreshToken(ctx context.Context, mentorID uuid.UUID, token string, expiresAt time.Time) error {
	start := time.Now()
	_, err := r.db.NewInsert().Model(&RefreshToken{
		MentorID:  mentorID,
		Token:     token,
		ExpiresAt: expiresAt,
	}).Exec(ctx)

	r.metrics.Database.RecordQuery(ctx, "insert", "refresh_tokens", time.Since(start), err)

	return err
}

// GetRefreshToken retrieves an unexpired refresh token
func (r *Repository) GetRefreshToken(ctx context.Context, token string) (*RefreshToken, error) {
	start := time.Now()
	refreshToken := &RefreshToken{}
	err := r.db.NewSelect().
		Model(refreshToken).
		Where("token = ?", token).
		Where("expires_at > ?", time.Now()).
		Scan(ctx)

	r.metrics.Database.RecordQuery(ctx, "select", "refresh_tokens", time.Since(start), err)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrInvalidRefreshToken
		}
		return nil, err
	}
	return refreshToken, nil
}

// DeleteRefreshToken removes a refresh token (for logout)
func (r *Repository) DeleteRefreshToken(ctx context.Context, token string) error {
	start := time.Now()
	_, err := r.db.NewDelete().
		Model((*RefreshToken)(nil)).
		Where("token = ?", token).
		Exec(ctx)

	r.metrics.Database.RecordQuery(ctx, "delete", "refresh_tokens", time.Since(start), err)

	return err
}

// DeleteExpiredTokens removes expired refresh and verification tokens.
func (r *Repository) DeleteExpiredTokens(ctx context.Context) error {
	now := time.Now()
	for _, model := range []interface{}{(*RefreshToken)(nil), (*VerificationToken)(nil)} {
		start := time.Now()
		_, err := r.db.NewDelete().
			Model(model).
			Where("expires_at < ?", now).
			Exec(ctx)

		r.metrics.Database.RecordQuery(ctx, "delete", "tokens", time.Since(start), err)

		if err != nil {
			return err
		}
	}
	return nil
}

func (r *Repository) CreateVerificationToken(ctx context.Context, mentorID uuid.UUID, token string, expiresAt time.Time) error {
	start := time.Now()
	_, err := r.db.NewInsert().Model(&VerificationToken{
		MentorID:  mentorID,
		Token:     token,
		ExpiresAt: expiresAt,
	}).Exec(ctx)

	r.metrics.Database.RecordQuery(ctx, "insert", "verification_tokens", time.Since(start), err)

	return err
}

// ConsumeVerificationToken deletes the token and returns it if it was still valid.
func (r *Repository) ConsumeVerificationToken(ctx context.Context, token string) (*VerificationToken, error) {
	start := time.Now()
	var deleted []VerificationToken
	_, err := r.db.NewDelete().
		Model(&deleted).
		Where("token = ?", token).
		Returning("*").
		Exec(ctx)

	r.metrics.Database.RecordQuery(ctx, "delete", "verification_tokens", time.Since(start), err)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrInvalidVerificationToken
		}
		return nil, err
	}
	if len(deleted) == 0 || deleted[0].ExpiresAt.Before(time.Now()) {
		return nil, ErrInvalidVerificationToken
	}
	return &deleted[0], nil
}
