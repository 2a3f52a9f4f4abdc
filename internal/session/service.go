package session

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/google/uuid"
)

var (
	ErrSessionNotFound        = errors.New("session not found")
	ErrInvalidInput           = errors.New("invalid input")
	ErrDuplicateSessionNumber = errors.New("session number already exists for this batch")
)

// ValidationError reports field-level problems found after struct validation.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	return ErrInvalidInput.Error()
}

func (e *ValidationError) Unwrap() error {
	return ErrInvalidInput
}

type Service interface {
	List(ctx context.Context, batchID uuid.UUID) ([]Session, error)
	Get(ctx context.Context, batchID, id uuid.UUID) (*Session, error)
	Create(ctx context.Context, batchID uuid.UUID, req SessionRequest) (*Session, error)
	Update(ctx context.Context, batchID, id uuid.UUID, req SessionRequest) (*Session, error)
	Delete(ctx context.Context, batchID, id uuid.UUID) error
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

func (s *service) List(ctx context.Context, batchID uuid.UUID) ([]Session, error) {
	return s.repo.List(ctx, batchID)
}

func (s *service) Get(ctx context.Context, batchID, id uuid.UUID) (*Session, error) {
	if id == uuid.Nil {
		return nil, ErrSessionNotFound
	}
	return s.repo.GetByID(ctx, batchID, id)
}

func (s *service) Create(ctx context.Context, batchID uuid.UUID, req SessionRequest) (*Session, error) {
	session := &Session{BatchID: batchID}
	if err := apply(session, req); err != nil {
		return nil, err
	}

	if err := s.repo.Create(ctx, session); err != nil {
		return nil, err
	}

	s.logger.InfoContext(ctx, "session created",
		"batch_id", batchID,
		"session_id", session.ID,
		"session_number", session.SessionNumber,
	)
	return session, nil
}

func (s *service) Update(ctx context.Context, batchID, id uuid.UUID, req SessionRequest) (*Session, error) {
	session, err := s.Get(ctx, batchID, id)
	if err != nil {
		return nil, err
	}
	if err := apply(session, req); err != nil {
		return nil, err
	}

	if err := s.repo.Update(ctx, session); err != nil {
		return nil, err
	}
	return session, nil
}

func (s *service) Delete(ctx context.Context, batchID, id uuid.UUID) error {
	return s.repo.Delete(ctx, batchID, id)
}

// apply copies req onto session. Online sessions keep only the platform,
// offline sessions only the room number.
func apply(session *Session, req SessionRequest) error {
	fields := make(map[string]string)

	if req.SessionNumber <= 0 {
		fields["session_number"] = "Session number must be positive"
	}

	date, err := ParseDate(strings.TrimSpace(req.SessionDate))
	if err != nil {
		fields["session_date"] = "Session date must be in YYYY-MM-DD format"
	}

	platform := strings.TrimSpace(req.Platform)
	roomNumber := strings.TrimSpace(req.RoomNumber)

	switch req.Method {
	case MethodOnline:
		if platform == "" {
			fields["platform"] = "Platform is required for online sessions"
		}
	case MethodOffline:
		if roomNumber == "" {
			fields["room_number"] = "Room number is required for offline sessions"
		}
	default:
		fields["method"] = "Please select a method"
	}

	if len(fields) > 0 {
		return &ValidationError{Fields: fields}
	}

	session.SessionNumber = req.SessionNumber
	session.SessionDate = date
	session.Method = req.Method
	session.Platform = nil
	session.RoomNumber = nil
	if req.Method == MethodOnline {
		session.Platform = &platform
	} else {
		session.RoomNumber = &roomNumber
	}
	return nil
}
