package attendance

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"mentorship-service/internal/events"
	"mentorship-service/internal/metrics"
	"mentorship-service/internal/session"
	"mentorship-service/internal/student"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

var (
	ErrAttendanceNotFound = errors.New("attendance record not found")
	ErrInvalidInput       = errors.New("invalid input")
)

const defaultConcurrency = 8

// ValidationError lists rejected records keyed by their request path, e.g. "records[2].student_id".
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	return ErrInvalidInput.Error()
}

func (e *ValidationError) Unwrap() error {
	return ErrInvalidInput
}

type SessionFinder interface {
	Get(ctx context.Context, batchID, id uuid.UUID) (*session.Session, error)
}

type RosterLister interface {
	List(ctx context.Context, batchID uuid.UUID, query string) ([]student.Student, error)
}

type Service interface {
	Sheet(ctx context.Context, batchID, sessionID uuid.UUID) (*Sheet, error)
	Reconcile(ctx context.Context, batchID, sessionID uuid.UUID, marks []Mark) ([]Attendance, error)
	UpdateStatus(ctx context.Context, batchID, id uuid.UUID, status string) (*Attendance, error)
	Delete(ctx context.Context, batchID, id uuid.UUID) error
	ListByBatch(ctx context.Context, batchID uuid.UUID) ([]Attendance, error)
}

type service struct {
	repo        Repository
	sessions    SessionFinder
	students    RosterLister
	emitter     *events.Emitter
	concurrency int
	logger      *slog.Logger
	metrics     *metrics.Metrics
}

func NewService(
	repo Repository,
	sessions SessionFinder,
	students RosterLister,
	emitter *events.Emitter,
	concurrency int,
	logger *slog.Logger,
	m *metrics.Metrics,
) Service {
	if concurrency <= 0 {
		concurrency = defaultConcurrency
	}
	return &service{
		repo:        repo,
		sessions:    sessions,
		students:    students,
		emitter:     emitter,
		concurrency: concurrency,
		logger:      logger,
		metrics:     m,
	}
}

// Sheet returns the full roster of the session's batch with recorded
// statuses, defaulting unrecorded students to Present.
func (s *service) Sheet(ctx context.Context, batchID, sessionID uuid.UUID) (*Sheet, error) {
	sess, err := s.sessions.Get(ctx, batchID, sessionID)
	if err != nil {
		return nil, err
	}

	roster, err := s.students.List(ctx, batchID, "")
	if err != nil {
		return nil, err
	}

	existing, err := s.repo.ListBySession(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	byStudent := indexByStudent(existing)

	entries := make([]SheetEntry, 0, len(roster))
	for _, st := range roster {
		entry := SheetEntry{Student: st, Status: StatusPresent}
		if rec, ok := byStudent[st.ID]; ok {
			id := rec.ID
			entry.AttendanceID = &id
			entry.Status = rec.Status
			entry.Recorded = true
		}
		entries = append(entries, entry)
	}

	return &Sheet{Session: sess, Entries: entries}, nil
}

// Reconcile brings the session's attendance in line with marks: students
// with a record get their status updated, the rest get a new record. All
// writes run concurrently and are awaited even if some fail. Calling it
// twice with the same marks leaves the same rows in place.
func (s *service) Reconcile(ctx context.Context, batchID, sessionID uuid.UUID, marks []Mark) ([]Attendance, error) {
	if _, err := s.sessions.Get(ctx, batchID, sessionID); err != nil {
		return nil, err
	}

	roster, err := s.students.List(ctx, batchID, "")
	if err != nil {
		return nil, err
	}
	if err := validateMarks(marks, roster); err != nil {
		return nil, err
	}
	marks = dedupe(marks)

	existing, err := s.repo.ListBySession(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("load existing attendance: %w", err)
	}
	byStudent := indexByStudent(existing)

	results := make([]Attendance, len(marks))

	g := new(errgroup.Group)
	g.SetLimit(s.concurrency)

	for i, mark := range marks {
		g.Go(func() error {
			if rec, ok := byStudent[mark.StudentID]; ok {
				updated, err := s.repo.UpdateStatus(ctx, rec.ID, mark.Status)
				if err != nil {
					return fmt.Errorf("update attendance %s: %w", rec.ID, err)
				}
				results[i] = *updated
				return nil
			}

			record := &Attendance{
				SessionID: sessionID,
				StudentID: mark.StudentID,
				Status:    mark.Status,
			}
			if err := s.repo.Upsert(ctx, record); err != nil {
				return fmt.Errorf("insert attendance for student %s: %w", mark.StudentID, err)
			}
			results[i] = *record
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		s.logger.ErrorContext(ctx, "attendance reconciliation incomplete", "session_id", sessionID, "error", err)
		return nil, err
	}

	present := 0
	for _, rec := range results {
		if rec.Status == StatusPresent {
			present++
		}
	}

	s.metrics.RecordAttendanceReconciled(ctx, len(results))
	s.emitter.Emit(ctx, events.AttendanceReconciled, sessionID.String(), events.AttendanceReconciledPayload{
		BatchID:   batchID.String(),
		SessionID: sessionID.String(),
		Present:   present,
		Absent:    len(results) - present,
	})
	s.logger.InfoContext(ctx, "attendance reconciled",
		"session_id", sessionID,
		"records", len(results),
		"present", present,
	)

	return results, nil
}

func (s *service) UpdateStatus(ctx context.Context, batchID, id uuid.UUID, status string) (*Attendance, error) {
	if status != StatusPresent && status != StatusAbsent {
		return nil, &ValidationError{Fields: map[string]string{"status": "status must be one of [Present Absent]"}}
	}
	if _, err := s.repo.GetByID(ctx, batchID, id); err != nil {
		return nil, err
	}
	return s.repo.UpdateStatus(ctx, id, status)
}

func (s *service) Delete(ctx context.Context, batchID, id uuid.UUID) error {
	return s.repo.Delete(ctx, batchID, id)
}

func (s *service) ListByBatch(ctx context.Context, batchID uuid.UUID) ([]Attendance, error) {
	return s.repo.ListByBatch(ctx, batchID)
}

func validateMarks(marks []Mark, roster []student.Student) error {
	enrolled := make(map[uuid.UUID]struct{}, len(roster))
	for _, st := range roster {
		enrolled[st.ID] = struct{}{}
	}

	fields := make(map[string]string)
	for i, mark := range marks {
		if mark.Status != StatusPresent && mark.Status != StatusAbsent {
			fields[fmt.Sprintf("records[%d].status", i)] = "status must be one of [Present Absent]"
		}
		if _, ok := enrolled[mark.StudentID]; !ok {
			fields[fmt.Sprintf("records[%d].student_id", i)] = "student is not enrolled in this batch"
		}
	}
	if len(fields) > 0 {
		return &ValidationError{Fields: fields}
	}
	return nil
}

// dedupe keeps one mark per student, in first-seen order, carrying the last status.
func dedupe(marks []Mark) []Mark {
	position := make(map[uuid.UUID]int, len(marks))
	out := make([]Mark, 0, len(marks))
	for _, mark := range marks {
		if i, ok := position[mark.StudentID]; ok {
			out[i].Status = mark.Status
			continue
		}
		position[mark.StudentID] = len(out)
		out = append(out, mark)
	}
	return out
}

func indexByStudent(records []Attendance) map[uuid.UUID]Attendance {
	byStudent := make(map[uuid.UUID]Attendance, len(records))
	for _, rec := range records {
		byStudent[rec.StudentID] = rec
	}
	return byStudent
}
