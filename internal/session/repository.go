package session

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"mentorship-service/common/metrics"
	"mentorship-service/internal/db"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

type Repository interface {
	Create(ctx context.Context, session *Session) error
	List(ctx context.Context, batchID uuid.UUID) ([]Session, error)
	GetByID(ctx context.Context, batchID, id uuid.UUID) (*Session, error)
	Update(ctx context.Context, session *Session) error
	Delete(ctx context.Context, batchID, id uuid.UUID) error
}

type repository struct {
	db      bun.IDB
	metrics *metrics.Metrics
}

func NewRepository(db bun.IDB, m *metrics.Metrics) Repository {
	return &repository{
		db:      db,
		metrics: m,
	}
}

func (r *repository) Create(ctx context.Context, session *Session) error {
	start := time.Now()
	_, err := r.db.NewInsert().Model(session).Returning("*").Exec(ctx)

	r.metrics.Database.RecordQuery(ctx, "insert", "sessions", time.Since(start), err)

	if db.IsUniqueViolation(err) {
		return ErrDuplicateSessionNumber
	}
	return err
}

// List returns the batch's sessions, most recent first.
func (r *repository) List(ctx context.Context, batchID uuid.UUID) ([]Session, error) {
	start := time.Now()
	sessions := make([]Session, 0)
	err := r.db.NewSelect().
		Model(&sessions).
		Where("batch_id = ?", batchID).
		Order("session_date DESC", "session_number DESC").
		Scan(ctx)

	r.metrics.Database.RecordQuery(ctx, "select", "sessions", time.Since(start), err)

	return sessions, err
}

func (r *repository) GetByID(ctx context.Context, batchID, id uuid.UUID) (*Session, error) {
	start := time.Now()
	session := new(Session)
	err := r.db.NewSelect().
		Model(session).
		Where("id = ?", id).
		Where("batch_id = ?", batchID).
		Scan(ctx)

	r.metrics.Database.RecordQuery(ctx, "select", "sessions", time.Since(start), err)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrSessionNotFound
		}
		return nil, err
	}
	return session, nil
}

func (r *repository) Update(ctx context.Context, session *Session) error {
	start := time.Now()
	session.UpdatedAt = time.Now()
	result, err := r.db.NewUpdate().
		Model(session).
		Column("session_number", "session_date", "method", "platform", "room_number", "updated_at").
		WherePK().
		Where("batch_id = ?", session.BatchID).
		Returning("*").
		Exec(ctx)

	r.metrics.Database.RecordQuery(ctx, "update", "sessions", time.Since(start), err)

	if err != nil {
		if db.IsUniqueViolation(err) {
			return ErrDuplicateSessionNumber
		}
		return err
	}
	return requireAffected(result)
}

// Delete removes the session together with its attendance records.
func (r *repository) Delete(ctx context.Context, batchID, id uuid.UUID) error {
	start := time.Now()
	result, err := r.db.NewDelete().
		Model((*Session)(nil)).
		Where("id = ?", id).
		Where("batch_id = ?", batchID).
		Exec(ctx)

	r.metrics.Database.RecordQuery(ctx, "delete", "sessions", time.Since(start), err)

	if err != nil {
		return err
	}
	return requireAffected(result)
}

func requireAffected(result sql.Result) error {
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rowsAffected == 0 {
		return ErrSessionNotFound
	}
	return nil
}
