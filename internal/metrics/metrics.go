package metrics

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// Metrics holds the domain counters of the mentorship service.
type Metrics struct {
	mentorsRegistered    metric.Int64Counter
	studentsImported     metric.Int64Counter
	importRowsRejected   metric.Int64Counter
	attendanceReconciled metric.Int64Counter
	reportsGenerated     metric.Int64Counter
	loginsFailed         metric.Int64Counter
}

func New(meter metric.Meter) (*Metrics, error) {
	m := &Metrics{}

	counters := []struct {
		target *metric.Int64Counter
		name   string
		desc   string
		unit   string
	}{
		{&m.mentorsRegistered, "mentorship.mentors.registered", "Total number of mentor registrations", "{mentor}"},
		{&m.studentsImported, "mentorship.students.imported", "Student rows written by bulk enrollment, by outcome", "{student}"},
		{&m.importRowsRejected, "mentorship.import.rows_rejected", "Import rows rejected by validation", "{row}"},
		{&m.attendanceReconciled, "mentorship.attendance.reconciled", "Attendance records written by reconciliation", "{record}"},
		{&m.reportsGenerated, "mentorship.reports.generated", "Total number of batch reports generated", "{report}"},
		{&m.loginsFailed, "mentorship.logins.failed", "Failed login attempts, by reason", "{attempt}"},
	}

	for _, c := range counters {
		counter, err := meter.Int64Counter(c.name, metric.WithDescription(c.desc), metric.WithUnit(c.unit))
		if err != nil {
			return nil, err
		}
		*c.target = counter
	}

	return m, nil
}

func (m *Metrics) RecordMentorRegistered(ctx context.Context) {
	if m != nil && m.mentorsRegistered != nil {
		m.mentorsRegistered.Add(ctx, 1)
	}
}

func (m *Metrics) RecordBulkEnrollment(ctx context.Context, successful, failed int) {
	if m == nil || m.studentsImported == nil {
		return
	}
	m.studentsImported.Add(ctx, int64(successful), metric.WithAttributes(attribute.String("outcome", "success")))
	m.studentsImported.Add(ctx, int64(failed), metric.WithAttributes(attribute.String("outcome", "failure")))
}

func (m *Metrics) RecordImportRowsRejected(ctx context.Context, n int) {
	if m != nil && m.importRowsRejected != nil && n > 0 {
		m.importRowsRejected.Add(ctx, int64(n))
	}
}

func (m *Metrics) RecordAttendanceReconciled(ctx context.Context, n int) {
	if m != nil && m.attendanceReconciled != nil {
		m.attendanceReconciled.Add(ctx, int64(n))
	}
}

func (m *Metrics) RecordReportGenerated(ctx context.Context) {
	if m != nil && m.reportsGenerated != nil {
		m.reportsGenerated.Add(ctx, 1)
	}
}

func (m *Metrics) RecordLoginFailed(ctx context.Context, reason string) {
	if m != nil && m.loginsFailed != nil {
		m.loginsFailed.Add(ctx, 1, metric.WithAttributes(attribute.String("reason", reason)))
	}
}

// NewMock creates a no-op Metrics instance for testing
// The returned Metrics will safely ignore all Record* calls
func NewMock() *Metrics {
	return &Metrics{}
}
