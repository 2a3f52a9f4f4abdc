package student

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"sync/atomic"

	"mentorship-service/internal/batch"
	"mentorship-service/internal/events"
	"mentorship-service/internal/importer"
	"mentorship-service/internal/metrics"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

var (
	ErrStudentNotFound    = errors.New("student not found")
	ErrInvalidInput       = errors.New("invalid input")
	ErrDuplicateStudentID = errors.New("student ID already exists in this batch")
	ErrInvalidFile        = errors.New("invalid import file")
)

const defaultConcurrency = 8

type Service interface {
	List(ctx context.Context, batchID uuid.UUID, query string) ([]Student, error)
	Get(ctx context.Context, batchID, id uuid.UUID) (*Student, error)
	Create(ctx context.Context, batchID uuid.UUID, req StudentRequest) (*Student, error)
	Update(ctx context.Context, batchID, id uuid.UUID, req StudentRequest) (*Student, error)
	Delete(ctx context.Context, batchID, id uuid.UUID) error
	Attendance(ctx context.Context, batchID, id uuid.UUID) (*WithAttendance, error)
	BulkCreate(ctx context.Context, batchID uuid.UUID, rows []importer.Row) BulkResult
	ImportRows(ctx context.Context, batchID uuid.UUID, rows []importer.RawRow, dryRun bool) *ImportResult
	ImportFile(ctx context.Context, batchID uuid.UUID, filename string, r io.Reader, dryRun bool) (*ImportResult, error)
}

// ImportResult carries the validated preview, the row errors and, unless
// the import was a dry run, the write outcome.
type ImportResult struct {
	Students []importer.Row `json:"students"`
	Errors   []string       `json:"errors"`
	Result   *BulkResult    `json:"result,omitempty"`
}

type Settings struct {
	Concurrency int
	MaxRows     int
}

type service struct {
	repo     Repository
	emitter  *events.Emitter
	settings Settings
	logger   *slog.Logger
	metrics  *metrics.Metrics
}

func NewService(repo Repository, emitter *events.Emitter, settings Settings, logger *slog.Logger, m *metrics.Metrics) Service {
	if settings.Concurrency <= 0 {
		settings.Concurrency = defaultConcurrency
	}
	return &service{
		repo:     repo,
		emitter:  emitter,
		settings: settings,
		logger:   logger,
		metrics:  m,
	}
}

func (s *service) List(ctx context.Context, batchID uuid.UUID, query string) ([]Student, error) {
	return s.repo.List(ctx, batchID, query)
}

func (s *service) Get(ctx context.Context, batchID, id uuid.UUID) (*Student, error) {
	if id == uuid.Nil {
		return nil, ErrStudentNotFound
	}
	return s.repo.GetByID(ctx, batchID, id)
}

func (s *service) Create(ctx context.Context, batchID uuid.UUID, req StudentRequest) (*Student, error) {
	if batchID == uuid.Nil {
		return nil, ErrInvalidInput
	}

	student := newStudent(batchID, importer.Row{
		Name:      req.Name,
		StudentID: req.StudentID,
		Phone:     req.Phone,
		Email:     req.Email,
	})
	if err := s.repo.Create(ctx, student); err != nil {
		return nil, err
	}
	return student, nil
}

func (s *service) Update(ctx context.Context, batchID, id uuid.UUID, req StudentRequest) (*Student, error) {
	student, err := s.Get(ctx, batchID, id)
	if err != nil {
		return nil, err
	}

	student.Name = strings.TrimSpace(req.Name)
	student.StudentID = strings.TrimSpace(req.StudentID)
	student.Phone = strings.TrimSpace(req.Phone)
	student.Email = strings.TrimSpace(req.Email)

	if err := s.repo.Update(ctx, student); err != nil {
		return nil, err
	}
	return student, nil
}

func (s *service) Delete(ctx context.Context, batchID, id uuid.UUID) error {
	return s.repo.Delete(ctx, batchID, id)
}

func (s *service) Attendance(ctx context.Context, batchID, id uuid.UUID) (*WithAttendance, error) {
	student, err := s.Get(ctx, batchID, id)
	if err != nil {
		return nil, err
	}

	summary, err := s.repo.AttendanceSummary(ctx, batchID, id)
	if err != nil {
		return nil, err
	}
	summary.Percentage = batch.Percentage(summary.SessionsAttended, summary.TotalSessions)

	return &WithAttendance{Student: student, AttendanceSummary: summary}, nil
}

// BulkCreate inserts every row independently and waits for all of them.
// A failing row, typically a duplicate student ID, never stops the others.
func (s *service) BulkCreate(ctx context.Context, batchID uuid.UUID, rows []importer.Row) BulkResult {
	var successful, failed atomic.Int64

	g := new(errgroup.Group)
	g.SetLimit(s.settings.Concurrency)

	for _, row := range rows {
		g.Go(func() error {
			if err := s.repo.Create(ctx, newStudent(batchID, row)); err != nil {
				failed.Add(1)
				s.logger.DebugContext(ctx, "bulk enrollment row failed",
					"batch_id", batchID,
					"student_id", row.StudentID,
					"error", err,
				)
				return nil
			}
			successful.Add(1)
			return nil
		})
	}
	_ = g.Wait()

	result := BulkResult{
		Successful: int(successful.Load()),
		Failed:     int(failed.Load()),
		Total:      len(rows),
	}

	s.metrics.RecordBulkEnrollment(ctx, result.Successful, result.Failed)
	s.emitter.Emit(ctx, events.StudentsImported, batchID.String(), events.StudentsImportedPayload{
		BatchID:    batchID.String(),
		Successful: result.Successful,
		Failed:     result.Failed,
		Total:      result.Total,
	})
	s.logger.InfoContext(ctx, "bulk enrollment finished",
		"batch_id", batchID,
		"successful", result.Successful,
		"failed", result.Failed,
		"total", result.Total,
	)

	return result
}

func (s *service) ImportRows(ctx context.Context, batchID uuid.UUID, rows []importer.RawRow, dryRun bool) *ImportResult {
	valid, rowErrors := importer.Validate(rows)
	s.metrics.RecordImportRowsRejected(ctx, len(rowErrors))

	result := &ImportResult{Students: valid, Errors: rowErrors}
	if dryRun || len(valid) == 0 {
		return result
	}

	bulk := s.BulkCreate(ctx, batchID, valid)
	result.Result = &bulk
	return result
}

func (s *service) ImportFile(ctx context.Context, batchID uuid.UUID, filename string, r io.Reader, dryRun bool) (*ImportResult, error) {
	rows, err := importer.Parse(filename, r, s.settings.MaxRows)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidFile, err)
	}
	return s.ImportRows(ctx, batchID, rows, dryRun), nil
}

func newStudent(batchID uuid.UUID, row importer.Row) *Student {
	return &Student{
		BatchID:   batchID,
		Name:      strings.TrimSpace(row.Name),
		StudentID: strings.TrimSpace(row.StudentID),
		Phone:     strings.TrimSpace(row.Phone),
		Email:     strings.TrimSpace(row.Email),
	}
}
