package batch

import (
	"context"
	"errors"
	"log/slog"
	"math"
	"strings"

	"github.com/google/uuid"
)

var (
	ErrBatchNotFound  = errors.New("batch not found")
	ErrInvalidInput   = errors.New("invalid input")
	ErrMentorNotFound = errors.New("mentor account no longer exists")
)

type Service interface {
	List(ctx context.Context, mentorID uuid.UUID) ([]Batch, error)
	Create(ctx context.Context, mentorID uuid.UUID, req CreateBatchRequest) (*Batch, error)
	Get(ctx context.Context, mentorID, id uuid.UUID) (*Batch, error)
	Update(ctx context.Context, batch *Batch, req UpdateBatchRequest) (*Batch, error)
	Delete(ctx context.Context, mentorID, id uuid.UUID) error
	Stats(ctx context.Context, id uuid.UUID) (Stats, error)
	Dashboard(ctx context.Context, mentorID uuid.UUID) (Dashboard, error)
}

type service struct {
	repo   Repository
	logger *slog.Logger
}

func NewService(repo Repository, logger *slog.Logger) Service {
	return &service{
		repo:   repo,
		logger: logger,
	}
}

func (s *service) List(ctx context.Context, mentorID uuid.UUID) ([]Batch, error) {
	return s.repo.ListByMentor(ctx, mentorID)
}

func (s *service) Create(ctx context.Context, mentorID uuid.UUID, req CreateBatchRequest) (*Batch, error) {
	if mentorID == uuid.Nil {
		return nil, ErrInvalidInput
	}

	batch := &Batch{
		MentorID:       mentorID,
		BatchName:      strings.TrimSpace(req.BatchName),
		DepartmentName: strings.TrimSpace(req.DepartmentName),
		Section:        strings.TrimSpace(req.Section),
		Semester:       req.Semester,
		AcademicYear:   strings.TrimSpace(req.AcademicYear),
		StudentIDStart: strings.TrimSpace(req.StudentIDStart),
		StudentIDEnd:   strings.TrimSpace(req.StudentIDEnd),
		Status:         StatusActive,
	}
	if err := s.repo.Create(ctx, batch); err != nil {
		return nil, err
	}

	s.logger.InfoContext(ctx, "batch created", "batch_id", batch.ID, "mentor_id", mentorID)
	return batch, nil
}

func (s *service) Get(ctx context.Context, mentorID, id uuid.UUID) (*Batch, error) {
	if mentorID == uuid.Nil || id == uuid.Nil {
		return nil, ErrBatchNotFound
	}
	return s.repo.GetOwned(ctx, mentorID, id)
}

func (s *service) Update(ctx context.Context, batch *Batch, req UpdateBatchRequest) (*Batch, error) {
	updated := *batch
	apply := func(dst *string, src *string) {
		if src != nil {
			*dst = strings.TrimSpace(*src)
		}
	}
	apply(&updated.BatchName, req.BatchName)
	apply(&updated.DepartmentName, req.DepartmentName)
	apply(&updated.Section, req.Section)
	apply(&updated.Semester, req.Semester)
	apply(&updated.AcademicYear, req.AcademicYear)
	apply(&updated.StudentIDStart, req.StudentIDStart)
	apply(&updated.StudentIDEnd, req.StudentIDEnd)
	apply(&updated.Status, req.Status)

	if err := s.repo.Update(ctx, &updated); err != nil {
		return nil, err
	}
	return &updated, nil
}

func (s *service) Delete(ctx context.Context, mentorID, id uuid.UUID) error {
	if err := s.repo.Delete(ctx, mentorID, id); err != nil {
		return err
	}
	s.logger.InfoContext(ctx, "batch deleted", "batch_id", id, "mentor_id", mentorID)
	return nil
}

func (s *service) Stats(ctx context.Context, id uuid.UUID) (Stats, error) {
	counts, err := s.repo.Counts(ctx, id)
	if err != nil {
		return Stats{}, err
	}
	return Stats{
		StudentCount:         counts.Students,
		SessionCount:         counts.Sessions,
		AttendancePercentage: Percentage(counts.Present, counts.Recorded),
	}, nil
}

func (s *service) Dashboard(ctx context.Context, mentorID uuid.UUID) (Dashboard, error) {
	return s.repo.Dashboard(ctx, mentorID)
}

// Percentage returns round(part/total*100), or 0 when total is 0.
func Percentage(part, total int) int {
	if total <= 0 {
		return 0
	}
	return int(math.Round(float64(part) / float64(total) * 100))
}
