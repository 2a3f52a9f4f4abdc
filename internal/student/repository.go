package student

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"mentorship-service/common/metrics"
	"mentorship-service/internal/db"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

type Repository interface {
	Create(ctx context.Context, student *Student) error
	List(ctx context.Context, batchID uuid.UUID, query string) ([]Student, error)
	GetByID(ctx context.Context, batchID, id uuid.UUID) (*Student, error)
	Update(ctx context.Context, student *Student) error
	Delete(ctx context.Context, batchID, id uuid.UUID) error
	AttendanceSummary(ctx context.Context, batchID, id uuid.UUID) (AttendanceSummary, error)
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

func (r *repository) Create(ctx context.Context, student *Student) error {
	start := time.Now()
	_, err := r.db.NewInsert().Model(student).Returning("*").Exec(ctx)

	r.metrics.Database.RecordQuery(ctx, "insert", "students", time.Since(start), err)

	if db.IsUniqueViolation(err) {
		return ErrDuplicateStudentID
	}
	return err
}

// List returns the batch roster ordered by name. A non-empty query filters
// name, student ID and email case-insensitively.
func (r *repository) List(ctx context.Context, batchID uuid.UUID, query string) ([]Student, error) {
	start := time.Now()
	students := make([]Student, 0)
	q := r.db.NewSelect().
		Model(&students).
		Where("batch_id = ?", batchID).
		Order("name ASC")

	if query = strings.TrimSpace(query); query != "" {
		pattern := "%" + escapeLike(query) + "%"
		q = q.WhereGroup(" AND ", func(q *bun.SelectQuery) *bun.SelectQuery {
			return q.Where("name ILIKE ?", pattern).
				WhereOr("student_id ILIKE ?", pattern).
				WhereOr("email ILIKE ?", pattern)
		})
	}

	err := q.Scan(ctx)

	r.metrics.Database.RecordQuery(ctx, "select", "students", time.Since(start), err)

	return students, err
}

func (r *repository) GetByID(ctx context.Context, batchID, id uuid.UUID) (*Student, error) {
	start := time.Now()
	student := new(Student)
	err := r.db.NewSelect().
		Model(student).
		Where("id = ?", id).
		Where("batch_id = ?", batchID).
		Scan(ctx)

	r.metrics.Database.RecordQuery(ctx, "select", "students", time.Since(start), err)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrStudentNotFound
		}
		return nil, err
	}
	return student, nil
}

func (r *repository) Update(ctx context.Context, student *Student) error {
	start := time.Now()
	student.UpdatedAt = time.Now()
	result, err := r.db.NewUpdate().
		Model(student).
		Column("name", "student_id", "phone", "email", "updated_at").
		WherePK().
		Where("batch_id = ?", student.BatchID).
		Returning("*").
		Exec(ctx)

	r.metrics.Database.RecordQuery(ctx, "update", "students", time.Since(start), err)

	if err != nil {
		if db.IsUniqueViolation(err) {
			return ErrDuplicateStudentID
		}
		return err
	}
	return requireAffected(result)
}

func (r *repository) Delete(ctx context.Context, batchID, id uuid.UUID) error {
	start := time.Now()
	result, err := r.db.NewDelete().
		Model((*Student)(nil)).
		Where("id = ?", id).
		Where("batch_id = ?", batchID).
		Exec(ctx)

	r.metrics.Database.RecordQuery(ctx, "delete", "students", time.Since(start), err)

	if err != nil {
		return err
	}
	return requireAffected(result)
}

const attendanceSummaryQuery = `
SELECT
	(SELECT count(*) FROM sessions WHERE batch_id = ?0) AS total_sessions,
	(SELECT count(*) FROM attendance WHERE student_id = ?1 AND status = 'Present') AS sessions_attended`

func (r *repository) AttendanceSummary(ctx context.Context, batchID, id uuid.UUID) (AttendanceSummary, error) {
	start := time.Now()
	var summary AttendanceSummary
	err := r.db.NewRaw(attendanceSummaryQuery, batchID, id).Scan(ctx, &summary)

	r.metrics.Database.RecordQuery(ctx, "select", "attendance", time.Since(start), err)

	return summary, err
}

func requireAffected(result sql.Result) error {
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rowsAffected == 0 {
		return ErrStudentNotFound
	}
	return nil
}

func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}
