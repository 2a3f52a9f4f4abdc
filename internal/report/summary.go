// Package report renders the downloadable batch attendance report.
package report

import (
	"strings"
	"time"

	"mentorship-service/internal/attendance"
	"mentorship-service/internal/batch"
	"mentorship-service/internal/session"
	"mentorship-service/internal/student"

	"github.com/google/uuid"
)

type StudentLine struct {
	StudentID  string
	Name       string
	Present    int
	Total      int
	Percentage int
}

type SessionLine struct {
	Number   int
	Date     string
	Method   string
	Location string
	Present  int
	Students int
}

// Summary is everything the PDF shows, computed ahead of rendering.
type Summary struct {
	Batch       *batch.Batch
	GeneratedAt time.Time
	Students    []StudentLine
	Sessions    []SessionLine
}

// Summarize counts Present records per student and per session. Percentages
// are over all sessions of the batch, so unrecorded sessions count as missed.
func Summarize(b *batch.Batch, students []student.Student, sessions []session.Session, records []attendance.Attendance, now time.Time) Summary {
	presentByStudent := make(map[uuid.UUID]int)
	presentBySession := make(map[uuid.UUID]int)
	for _, rec := range records {
		if rec.Status != attendance.StatusPresent {
			continue
		}
		presentByStudent[rec.StudentID]++
		presentBySession[rec.SessionID]++
	}

	summary := Summary{
		Batch:       b,
		GeneratedAt: now,
		Students:    make([]StudentLine, 0, len(students)),
		Sessions:    make([]SessionLine, 0, len(sessions)),
	}

	for _, st := range students {
		present := presentByStudent[st.ID]
		summary.Students = append(summary.Students, StudentLine{
			StudentID:  st.StudentID,
			Name:       st.Name,
			Present:    present,
			Total:      len(sessions),
			Percentage: batch.Percentage(present, len(sessions)),
		})
	}

	for _, se := range sessions {
		location := se.Location()
		if location == "" {
			location = "-"
		}
		summary.Sessions = append(summary.Sessions, SessionLine{
			Number:   se.SessionNumber,
			Date:     se.SessionDate.Format("Jan 2, 2006"),
			Method:   se.Method,
			Location: location,
			Present:  presentBySession[se.ID],
			Students: len(students),
		})
	}

	return summary
}

// Filename returns "Batch_{batch_name}_Report.pdf" with path and quote
// characters replaced so it is safe in Content-Disposition.
func Filename(batchName string) string {
	clean := strings.Map(func(r rune) rune {
		switch {
		case r == '/', r == '\\', r == '"', r < 0x20:
			return '_'
		}
		return r
	}, strings.TrimSpace(batchName))
	return "Batch_" + clean + "_Report.pdf"
}
