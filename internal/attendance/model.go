package attendance

import (
	"time"

	"mentorship-service/internal/session"
	"mentorship-service/internal/student"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

const (
	StatusPresent = "Present"
	StatusAbsent  = "Absent"
)

type Attendance struct {
	bun.BaseModel `bun:"table:attendance,alias:a"`

	ID        uuid.UUID `bun:"id,pk,type:uuid,nullzero,default:gen_random_uuid()" json:"id"`
	SessionID uuid.UUID `bun:"session_id,type:uuid,notnull,unique:attendance_session_student_key" json:"session_id"`
	StudentID uuid.UUID `bun:"student_id,type:uuid,notnull,unique:attendance_session_student_key" json:"student_id"`
	Status    string    `bun:"status,notnull" json:"status"`
	CreatedAt time.Time `bun:"created_at,nullzero,notnull,default:current_timestamp" json:"created_at"`
	UpdatedAt time.Time `bun:"updated_at,nullzero,notnull,default:current_timestamp" json:"updated_at"`
}

// Mark is one (student, status) pair submitted for a session.
type Mark struct {
	StudentID uuid.UUID `json:"student_id" validate:"required"`
	Status    string    `json:"status" validate:"required,oneof=Present Absent"`
}

type ReconcileRequest struct {
	Records []Mark `json:"records" validate:"required,min=1,dive"`
}

type UpdateRequest struct {
	Status string `json:"status" validate:"required,oneof=Present Absent"`
}

// SheetEntry is one roster line of the marking sheet. Status defaults to
// Present when nothing has been recorded yet.
type SheetEntry struct {
	Student      student.Student `json:"student"`
	AttendanceID *uuid.UUID      `json:"attendance_id,omitempty"`
	Status       string          `json:"status"`
	Recorded     bool            `json:"recorded"`
}

type Sheet struct {
	Session *session.Session `json:"session"`
	Entries []SheetEntry     `json:"entries"`
}
