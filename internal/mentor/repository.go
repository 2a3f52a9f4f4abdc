package mentor

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
	Create(ctx context.Context, mentor *Mentor) (*Mentor, error)
	GetByID(ctx context.Context, id uuid.UUID) (*Mentor, error)
	GetByEmail(ctx context.Context, email string) (*Mentor, error)
	ExistsByEmail(ctx context.Context, email string) (bool, error)
	ExistsByStudentID(ctx context.Context, studentID string) (bool, error)
	UpdateProfile(ctx context.Context, mentor *Mentor) error
	UpdatePreferences(ctx context.Context, id uuid.UUID, prefs Preferences) error
	MarkVerified(ctx context.Context, id uuid.UUID, at time.Time) error
	Delete(ctx context.Context, id uuid.UUID) error
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

func (r *repository) Create(ctx context.Context, mentor *Mentor) (*Mentor, error) {
	start := time.Now()
	_, err := r.db.NewInsert().Model(mentor).Returning("*").Exec(ctx)

	r.metrics.Database.RecordQuery(ctx, "insert", "mentors", time.Since(start), err)

	if err != nil {
		return nil, mapUniqueViolation(err)
	}
	return mentor, nil
}

func (r *repository) GetByID(ctx context.Context, id uuid.UUID) (*Mentor, error) {
	return r.getBy(ctx, "id = ?", id)
}

func (r *repository) GetByEmail(ctx context.Context, email string) (*Mentor, error) {
	return r.getBy(ctx, "lower(email) = lower(?)", email)
}

func (r *repository) getBy(ctx context.Context, where string, arg interface{}) (*Mentor, error) {
	start := time.Now()
	mentor := new(Mentor)
	err := r.db.NewSelect().Model(mentor).Where(where, arg).Scan(ctx)

	r.metrics.Database.RecordQuery(ctx, "select", "mentors", time.Since(start), err)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrMentorNotFound
		}
		return nil, err
	}
	return mentor, nil
}

func (r *repository) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	return r.exists(ctx, "lower(email) = lower(?)", email)
}

func (r *repository) ExistsByStudentID(ctx context.Context, studentID string) (bool, error) {
	return r.exists(ctx, "student_id = ?", studentID)
}

func (r *repository) exists(ctx context.Context, where string, arg interface{}) (bool, error) {
	start := time.Now()
	exists, err := r.db.NewSelect().Model((*Mentor)(nil)).Where(where, arg).Exists(ctx)

	r.metrics.Database.RecordQuery(ctx, "select", "mentors", time.Since(start), err)

	return exists, err
}

func (r *repository) UpdateProfile(ctx context.Context, mentor *Mentor) error {
	start := time.Now()
	mentor.UpdatedAt = time.Now()
	result, err := r.db.NewUpdate().
		Model(mentor).
		Column("full_name", "student_id", "batch", "department", "updated_at").
		WherePK().
		Returning("*").
		Exec(ctx)

	r.metrics.Database.RecordQuery(ctx, "update", "mentors", time.Since(start), err)

	if err != nil {
		return mapUniqueViolation(err)
	}
	return requireAffected(result)
}

func (r *repository) UpdatePreferences(ctx context.Context, id uuid.UUID, prefs Preferences) error {
	start := time.Now()
	result, err := r.db.NewUpdate().
		Model((*Mentor)(nil)).
		Set("language = ?", prefs.Language).
		Set("theme = ?", prefs.Theme).
		Set("updated_at = ?", time.Now()).
		Where("id = ?", id).
		Exec(ctx)

	r.metrics.Database.RecordQuery(ctx, "update", "mentors", time.Since(start), err)

	if err != nil {
		return err
	}
	return requireAffected(result)
}

func (r *repository) MarkVerified(ctx context.Context, id uuid.UUID, at time.Time) error {
	start := time.Now()
	result, err := r.db.NewUpdate().
		Model((*Mentor)(nil)).
		Set("email_confirmed_at = ?", at).
		Set("updated_at = ?", at).
		Where("id = ?", id).
		Exec(ctx)

	r.metrics.Database.RecordQuery(ctx, "update", "mentors", time.Since(start), err)

	if err != nil {
		return err
	}
	return requireAffected(result)
}

// Delete removes the mentor; batches, students, sessions and attendance follow by cascade.
func (r *repository) Delete(ctx context.Context, id uuid.UUID) error {
	start := time.Now()
	result, err := r.db.NewDelete().Model((*Mentor)(nil)).Where("id = ?", id).Exec(ctx)

	r.metrics.Database.RecordQuery(ctx, "delete", "mentors", time.Since(start), err)

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
		return ErrMentorNotFound
	}
	return nil
}

func mapUniqueViolation(err error) error {
	if !db.IsUniqueViolation(err) {
		return err
	}
	switch db.ConstraintName(err) {
	case "mentors_student_id_key":
		return ErrStudentIDExists
	default:
		return ErrEmailExists
	}
}
