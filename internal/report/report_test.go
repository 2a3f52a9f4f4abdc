package report_test

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"mentorship-service/common/logger"
	"mentorship-service/internal/attendance"
	"mentorship-service/internal/batch"
	"mentorship-service/internal/metrics"
	"mentorship-service/internal/report"
	"mentorship-service/internal/session"
	"mentorship-service/internal/student"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fixture struct {
	batch    *batch.Batch
	students []student.Student
	sessions []session.Session
	records  []attendance.Attendance
}

func newFixture(t *testing.T) fixture {
	t.Helper()

	b := &batch.Batch{
		ID:             uuid.New(),
		BatchName:      "Batch 221",
		DepartmentName: "CSE",
		Section:        "A",
		Semester:       "Fall",
		Status:         batch.StatusActive,
	}
	students := []student.Student{
		{ID: uuid.New(), BatchID: b.ID, Name: "John Doe", StudentID: "S001"},
		{ID: uuid.New(), BatchID: b.ID, Name: "Jane Smith", StudentID: "S002"},
	}

	d1, err := session.ParseDate("2025-10-01")
	require.NoError(t, err)
	d2, err := session.ParseDate("2025-10-08")
	require.NoError(t, err)
	d3, err := session.ParseDate("2025-10-15")
	require.NoError(t, err)
	zoom, room := "Zoom", "501"
	sessions := []session.Session{
		{ID: uuid.New(), BatchID: b.ID, SessionNumber: 3, SessionDate: d3, Method: session.MethodOnline, Platform: &zoom},
		{ID: uuid.New(), BatchID: b.ID, SessionNumber: 2, SessionDate: d2, Method: session.MethodOffline, RoomNumber: &room},
		{ID: uuid.New(), BatchID: b.ID, SessionNumber: 1, SessionDate: d1, Method: session.MethodOffline},
	}

	records := []attendance.Attendance{
		{SessionID: sessions[0].ID, StudentID: students[0].ID, Status: attendance.StatusPresent},
		{SessionID: sessions[1].ID, StudentID: students[0].ID, Status: attendance.StatusPresent},
		{SessionID: sessions[0].ID, StudentID: students[1].ID, Status: attendance.StatusAbsent},
		{SessionID: sessions[1].ID, StudentID: students[1].ID, Status: attendance.StatusPresent},
	}

	return fixture{batch: b, students: students, sessions: sessions, records: records}
}

func TestSummarize(t *testing.T) {
	f := newFixture(t)
	now := time.Date(2025, 10, 20, 9, 0, 0, 0, time.UTC)

	summary := report.Summarize(f.batch, f.students, f.sessions, f.records, now)

	assert.Equal(t, now, summary.GeneratedAt)
	require.Len(t, summary.Students, 2)
	assert.Equal(t, report.StudentLine{StudentID: "S001", Name: "John Doe", Present: 2, Total: 3, Percentage: 67}, summary.Students[0])
	assert.Equal(t, report.StudentLine{StudentID: "S002", Name: "Jane Smith", Present: 1, Total: 3, Percentage: 33}, summary.Students[1])

	require.Len(t, summary.Sessions, 3)
	assert.Equal(t, report.SessionLine{Number: 3, Date: "Oct 15, 2025", Method: "Online", Location: "Zoom", Present: 1, Students: 2}, summary.Sessions[0])
	assert.Equal(t, 2, summary.Sessions[1].Present)
	assert.Equal(t, "-", summary.Sessions[2].Location)
	assert.Zero(t, summary.Sessions[2].Present)
}

func TestSummarize_NoSessions(t *testing.T) {
	f := newFixture(t)

	summary := report.Summarize(f.batch, f.students, nil, nil, time.Now())

	require.Len(t, summary.Students, 2)
	assert.Zero(t, summary.Students[0].Percentage)
	assert.Empty(t, summary.Sessions)
}

func TestFilename(t *testing.T) {
	assert.Equal(t, "Batch_Batch 221_Report.pdf", report.Filename("Batch 221"))
	assert.Equal(t, "Batch_CSE_221_Report.pdf", report.Filename(" CSE/221 "))
	assert.Equal(t, "Batch_a_b_Report.pdf", report.Filename(`a"b`))
}

func TestRender(t *testing.T) {
	f := newFixture(t)

	data, err := report.Render(report.Summarize(f.batch, f.students, f.sessions, f.records, time.Now()))

	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(data, []byte("%PDF-")), "output is a PDF document")
}

type fakeStudents []student.Student

func (f fakeStudents) List(context.Context, uuid.UUID, string) ([]student.Student, error) {
	return f, nil
}

type fakeSessions struct {
	sessions []session.Session
	err      error
}

func (f fakeSessions) List(context.Context, uuid.UUID) ([]session.Session, error) {
	return f.sessions, f.err
}

type fakeAttendance []attendance.Attendance

func (f fakeAttendance) ListByBatch(context.Context, uuid.UUID) ([]attendance.Attendance, error) {
	return f, nil
}

func TestHandler(t *testing.T) {
	f := newFixture(t)

	serve := func(svc *report.Service) *httptest.ResponseRecorder {
		router := chi.NewRouter()
		router.Use(func(next http.Handler) http.Handler {
			return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				next.ServeHTTP(w, r.WithContext(batch.NewContext(r.Context(), f.batch)))
			})
		})
		report.NewHandler(svc, logger.NewDiscard()).RegisterBatchRoutes(router)

		req := httptest.NewRequest(http.MethodGet, "/report", nil)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		return w
	}

	t.Run("Download", func(t *testing.T) {
		svc := report.NewService(fakeStudents(f.students), fakeSessions{sessions: f.sessions}, fakeAttendance(f.records), metrics.NewMock())

		w := serve(svc)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "application/pdf", w.Header().Get("Content-Type"))
		assert.Contains(t, w.Header().Get("Content-Disposition"), `filename="Batch_Batch 221_Report.pdf"`)
		assert.True(t, bytes.HasPrefix(w.Body.Bytes(), []byte("%PDF-")))
	})

	t.Run("LoadFails", func(t *testing.T) {
		svc := report.NewService(fakeStudents(f.students), fakeSessions{err: errors.New("db down")}, fakeAttendance(nil), metrics.NewMock())

		w := serve(svc)

		assert.Equal(t, http.StatusInternalServerError, w.Code)
	})
}
