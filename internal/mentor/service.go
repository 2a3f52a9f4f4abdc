package mentor

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"
)

var (
	ErrMentorNotFound  = errors.New("mentor not found")
	ErrInvalidInput    = errors.New("invalid input")
	ErrEmailExists     = errors.New("an account with this email already exists")
	ErrStudentIDExists = errors.New("an account with this student ID already exists")
)

type Service interface {
	GetProfile(ctx context.Context, id uuid.UUID) (*Mentor, error)
	UpdateProfile(ctx context.Context, id uuid.UUID, req UpdateProfileRequest) (*Mentor, error)
	UpdatePreferences(ctx context.Context, id uuid.UUID, prefs Preferences) (*Mentor, error)
	DeleteAccount(ctx context.Context, id uuid.UUID) error
	CheckAvailability(ctx context.Context, email, studentID string) (Availability, error)
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

func (s *service) GetProfile(ctx context.Context, id uuid.UUID) (*Mentor, error) {
	if id == uuid.Nil {
		return nil, ErrInvalidInput
	}
	return s.repo.GetByID(ctx, id)
}

func (s *service) UpdateProfile(ctx context.Context, id uuid.UUID, req UpdateProfileRequest) (*Mentor, error) {
	m, err := s.GetProfile(ctx, id)
	if err != nil {
		return nil, err
	}

	m.FullName = strings.TrimSpace(req.FullName)
	m.StudentID = strings.TrimSpace(req.StudentID)
	m.Batch = strings.TrimSpace(req.Batch)
	m.Department = strings.TrimSpace(req.Department)

	if err := s.repo.UpdateProfile(ctx, m); err != nil {
		return nil, err
	}
	return m, nil
}

func (s *service) UpdatePreferences(ctx context.Context, id uuid.UUID, prefs Preferences) (*Mentor, error) {
	if err := s.repo.UpdatePreferences(ctx, id, prefs); err != nil {
		return nil, err
	}
	return s.repo.GetByID(ctx, id)
}

func (s *service) DeleteAccount(ctx context.Context, id uuid.UUID) error {
	if id == uuid.Nil {
		return ErrInvalidInput
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	s.logger.InfoContext(ctx, "mentor account deleted", "mentor_id", id)
	return nil
}

// CheckAvailability runs the email and student ID lookups independently.
// Either identifier may be empty, in which case it is reported as available.
func (s *service) CheckAvailability(ctx context.Context, email, studentID string) (Availability, error) {
	var availability Availability

	if email = strings.TrimSpace(email); email != "" {
		taken, err := s.repo.ExistsByEmail(ctx, email)
		if err != nil {
			return Availability{}, fmt.Errorf("check email availability: %w", err)
		}
		availability.EmailTaken = taken
	}

	if studentID = strings.TrimSpace(studentID); studentID != "" {
		taken, err := s.repo.ExistsByStudentID(ctx, studentID)
		if err != nil {
			return Availability{}, fmt.Errorf("check student ID availability: %w", err)
		}
		availability.StudentIDTaken = taken
	}

	return availability, nil
}
