package report

import (
	"context"
	"time"

	"mentorship-service/internal/attendance"
	"mentorship-service/internal/batch"
	"mentorship-service/internal/metrics"
	"mentorship-service/internal/session"
	"mentorship-service/internal/student"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

type RosterLister interface {
	List(ctx context.Context, batchID uuid.UUID, query string) ([]student.Student, error)
}

type SessionLister interface {
	List(ctx context.Context, batchID uuid.UUID) ([]session.Session, error)
}

type AttendanceLister interface {
	ListByBatch(ctx context.Context, batchID uuid.UUID) ([]attendance.Attendance, error)
}

type Report struct {
	Filename string
	Data     []byte
}

type Service struct {
	students   RosterLister
	sessions   SessionLister
	attendance AttendanceLister
	metrics    *metrics.Metrics
	now        func() time.Time
}

func NewService(students RosterLister, sessions SessionLister, attendance AttendanceLister, m *metrics.Metrics) *Service {
	return &Service{
		students:   students,
		sessions:   sessions,
		attendance: attendance,
		metrics:    m,
		now:        time.Now,
	}
}

// Generate loads the batch data concurrently and renders the PDF.
func (s *Service) Generate(ctx context.Context, b *batch.Batch) (*Report, error) {
	var (
		students []student.Student
		sessions []session.Session
		records  []attendance.Attendance
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		students, err = s.students.List(gctx, b.ID, "")
		return err
	})
	g.Go(func() (err error) {
		sessions, err = s.sessions.List(gctx, b.ID)
		return err
	})
	g.Go(func() (err error) {
		records, err = s.attendance.ListByBatch(gctx, b.ID)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	data, err := Render(Summarize(b, students, sessions, records, s.now()))
	if err != nil {
		return nil, err
	}

	s.metrics.RecordReportGenerated(ctx)
	return &Report{Filename: Filename(b.BatchName), Data: data}, nil
}
