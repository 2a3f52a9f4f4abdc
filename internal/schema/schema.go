// Package schema lists the service tables in creation order.
package schema

import (
	"mentorship-service/internal/attendance"
	"mentorship-service/internal/auth"
	"mentorship-service/internal/batch"
	"mentorship-service/internal/db"
	"mentorship-service/internal/mentor"
	"mentorship-service/internal/session"
	"mentorship-service/internal/student"
)

// Tables returns every table with its foreign keys. Referenced tables come first.
func Tables() []db.Table {
	return []db.Table{
		{Model: (*mentor.Mentor)(nil)},
		{
			Model:       (*auth.RefreshToken)(nil),
			ForeignKeys: []string{`("mentor_id") REFERENCES "mentors" ("id") ON DELETE CASCADE`},
		},
		{
			Model:       (*auth.VerificationToken)(nil),
			ForeignKeys: []string{`("mentor_id") REFERENCES "mentors" ("id") ON DELETE CASCADE`},
		},
		{
			Model:       (*batch.Batch)(nil),
			ForeignKeys: []string{`("mentor_id") REFERENCES "mentors" ("id") ON DELETE CASCADE`},
		},
		{
			Model:       (*student.Student)(nil),
			ForeignKeys: []string{`("batch_id") REFERENCES "batches" ("id") ON DELETE CASCADE`},
		},
		{
			Model:       (*session.Session)(nil),
			ForeignKeys: []string{`("batch_id") REFERENCES "batches" ("id") ON DELETE CASCADE`},
		},
		{
			Model: (*attendance.Attendance)(nil),
			ForeignKeys: []string{
				`("session_id") REFERENCES "sessions" ("id") ON DELETE CASCADE`,
				`("student_id") REFERENCES "students" ("id") ON DELETE CASCADE`,
			},
		},
	}
}

// Names returns the table names in the same order as Tables.
func Names() []string {
	return []string{
		"mentors",
		"refresh_tokens",
		"verification_tokens",
		"batches",
		"students",
		"sessions",
		"attendance",
	}
}
