package batch

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
	Create(ctx context.Context, batch *Batch) error
	GetOwned(ctx context.Context, mentorID, id uuid.UUID) (*Batch, error)
	ListByMentor(ctx context.Context, mentorID uuid.UUID) ([]Batch, error)
	Update(ctx context.Context, batch *Batch) error
	Delete(ctx context.Context, mentorID, id uuid.UUID) error
	Counts(ctx context.Context, id uuid.UUID) (Counts, error)
	Dashboard(ctx context.Context, mentorID uuid.UUID) (Dashboard, error)
}

// Counts are the raw numbers behind Stats.
type Counts struct {
	Students int `bun:"student_count"`
	Sessions int `bun:"session_count"`
	Present  int `bun:"present"`
	Recorded int `bun:"recorded"`
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

func (r *repository) Create(ctx context.Context, batch *Batch) error {
	start := time.Now()
	_, err := r.db.NewInsert().Model(batch).Returning("*").Exec(ctx)

	r.metrics.Database.RecordQuery(ctx, "insert", "batches", time.Since(start), err)

	if db.IsForeignKeyViolation(err) {
		return ErrMentorNotFound
	}
	return err
}

func (r *repository) GetOwned(ctx context.Context, mentorID, id uuid.UUID) (*Batch, error) {
	start := time.Now()
	batch := new(Batch)
	err := r.db.NewSelect().
		Model(batch).
		Where("id = ?", id).
		Where("mentor_id = ?", mentorID).
		Scan(ctx)

	r.metrics.Database.RecordQuery(ctx, "select", "batches", time.Since(start), err)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrBatchNotFound
		}
		return nil, err
	}
	return batch, nil
}

func (r *repository) ListByMentor(ctx context.Context, mentorID uuid.UUID) ([]Batch, error) {
	start := time.Now()
	batches := make([]Batch, 0)
	err := r.db.NewSelect().
		Model(&batches).
		Where("mentor_id = ?", mentorID).
		Order("created_at DESC").
		Scan(ctx)

	r.metrics.Database.RecordQuery(ctx, "select", "batches", time.Since(start), err)

	return batches, err
}

func (r *repository) Update(ctx context.Context, batch *Batch) error {
	start := time.Now()
	batch.UpdatedAt = time.Now()
	result, err := r.db.NewUpdate().
		Model(batch).
		ExcludeColumn("id", "mentor_id", "created_at").
		WherePK().
		Where("mentor_id = ?", batch.MentorID).
		Returning("*").
		Exec(ctx)

	r.metrics.Database.RecordQuery(ctx, "update", "batches", time.Since(start), err)

	if err != nil {
		return err
	}
	return requireAffected(result)
}

// Delete removes the batch; students, sessions and attendance follow by cascade.
func (r *repository) Delete(ctx context.Context, mentorID, id uuid.UUID) error {
	start := time.Now()
	result, err := r.db.NewDelete().
		Model((*Batch)(nil)).
		Where("id = ?", id).
		Where("mentor_id = ?", mentorID).
		Exec(ctx)

	r.metrics.Database.RecordQuery(ctx, "delete", "batches", time.Since(start), err)

	if err != nil {
		return err
	}
	return requireAffected(result)
}

const countsQuery = `
SELECT
	(SELECT count(*) FROM students WHERE batch_id = ?0) AS student_count,
	(SELECT count(*) FROM sessions WHERE batch_id = ?0) AS session_count,
	count(*) FILTER (WHERE a.status = 'Present') AS present,
	count(*) AS recorded
FROM attendance AS a
JOIN sessions AS s ON s.id = a.session_id
WHERE s.batch_id = ?0`

func (r *repository) Counts(ctx context.Context, id uuid.UUID) (Counts, error) {
	start := time.Now()
	var counts Counts
	err := r.db.NewRaw(countsQuery, id).Scan(ctx, &counts)

	r.metrics.Database.RecordQuery(ctx, "select", "batches", time.Since(start), err)

	return counts, err
}

const dashboardQuery = `
SELECT
	count(*) AS total_batches,
	count(*) FILTER (WHERE b.status = 'Active') AS active_batches,
	count(*) FILTER (WHERE b.status = 'Graduated') AS graduated_batches,
	(SELECT count(*) FROM students AS st JOIN batches AS sb ON sb.id = st.batch_id WHERE sb.mentor_id = ?0) AS total_students
FROM batches AS b
WHERE b.mentor_id = ?0`

func (r *repository) Dashboard(ctx context.Context, mentorID uuid.UUID) (Dashboard, error) {
	start := time.Now()
	var dashboard Dashboard
	err := r.db.NewRaw(dashboardQuery, mentorID).Scan(ctx, &dashboard)

	r.metrics.Database.RecordQuery(ctx, "select", "batches", time.Since(start), err)

	return dashboard, err
}

func requireAffected(result sql.Result) error {
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rowsAffected == 0 {
		return ErrBatchNotFound
	}
	return nil
}
