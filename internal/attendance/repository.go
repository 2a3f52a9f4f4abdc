package attendance

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"mentorship-service/common/metrics"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

type Repository interface {
	ListBySession(ctx context.Context, sessionID uuid.UUID) ([]Attendance, error)
	ListByBatch(ctx context.Context, batchID uuid.UUID) ([]Attendance, error)
	GetByID(ctx context.Context, batchID, id uuid.UUID) (*Attendance, error)
	Upsert(ctx context.Context, record *Attendance) error
	UpdateStatus(ctx context.Context, id uuid.UUID, status string) (*Attendance, error)
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

func (r *repository) ListBySession(ctx context.Context, sessionID uuid.UUID) ([]Attendance, error) {
	start := time.Now()
	records := make([]Attendance, 0)
	err := r.db.NewSelect().
		Model(&records).
		Where("session_id = ?", sessionID).
		Scan(ctx)

	r.metrics.Database.RecordQuery(ctx, "select", "attendance", time.Since(start), err)

	return records, err
}

func (r *repository) ListByBatch(ctx context.Context, batchID uuid.UUID) ([]Attendance, error) {
	start := time.Now()
	records := make([]Attendance, 0)
	err := r.db.NewSelect().
		Model(&records).
		Join("JOIN sessions AS se ON se.id = a.session_id").
		Where("se.batch_id = ?", batchID).
		Scan(ctx)

	r.metrics.Database.RecordQuery(ctx, "select", "attendance", time.Since(start), err)

	return records, err
}

func (r *repository) GetByID(ctx context.Context, batchID, id uuid.UUID) (*Attendance, error) {
	start := time.Now()
	record := new(Attendance)
	err := r.db.NewSelect().
		Model(record).
		Join("JOIN sessions AS se ON se.id = a.session_id").
		Where("a.id = ?", id).
		Where("se.batch_id = ?", batchID).
		Scan(ctx)

	r.metrics.Database.RecordQuery(ctx, "select", "attendance", time.Since(start), err)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrAttendanceNotFound
		}
		return nil, err
	}
	return record, nil
}

// Upsert inserts the record or, when the (session, student) pair already
// exists, overwrites its status. Concurrent reconciliations converge here.
func (r *repository) Upsert(ctx context.Context, record *Attendance) error {
	start := time.Now()
	_, err := r.db.NewInsert().
		Model(record).
		On("CONFLICT (session_id, student_id) DO UPDATE").
		Set("status = EXCLUDED.status").
		Set("updated_at = current_timestamp").
		Returning("*").
		Exec(ctx)

	r.metrics.Database.RecordQuery(ctx, "upsert", "attendance", time.Since(start), err)

	return err
}

func (r *repository) UpdateStatus(ctx context.Context, id uuid.UUID, status string) (*Attendance, error) {
	start := time.Now()
	record := &Attendance{ID: id}
	result, err := r.db.NewUpdate().
		Model(record).
		Set("status = ?", status).
		Set("updated_at = ?", time.Now()).
		WherePK().
		Returning("*").
		Exec(ctx)

	r.metrics.Database.RecordQuery(ctx, "update", "attendance", time.Since(start), err)

	if err != nil {
		return nil, err
	}
	if err := requireAffected(result); err != nil {
		return nil, err
	}
	return record, nil
}

func (r *repository) Delete(ctx context.Context, batchID, id uuid.UUID) error {
	start := time.Now()
	result, err := r.db.NewDelete().
		Model((*Attendance)(nil)).
		Where("id = ?", id).
		Where("session_id IN (SELECT id FROM sessions WHERE batch_id = ?)", batchID).
		Exec(ctx)

	r.metrics.Database.RecordQuery(ctx, "delete", "attendance", time.Since(start), err)

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
		return ErrAttendanceNotFound
	}
	return nil
}
