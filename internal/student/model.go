package student

import (
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

type Student struct {
	bun.BaseModel `bun:"table:students,alias:st"`

	ID        uuid.UUID `bun:"id,pk,type:uuid,nullzero,default:gen_random_uuid()" json:"id"`
	BatchID   uuid.UUID `bun:"batch_id,type:uuid,notnull,unique:students_batch_student_key" json:"batch_id"`
	Name      string    `bun:"name,notnull" json:"name"`
	StudentID string    `bun:"student_id,notnull,unique:students_batch_student_key" json:"student_id"`
	Phone     string    `bun:"phone,nullzero" json:"phone,omitempty"`
	Email     string    `bun:"email,nullzero" json:"email,omitempty"`
	CreatedAt time.Time `bun:"created_at,nullzero,notnull,default:current_timestamp" json:"created_at"`
	UpdatedAt time.Time `bun:"updated_at,nullzero,notnull,default:current_timestamp" json:"updated_at"`
}

type StudentRequest struct {
	Name      string `json:"name" validate:"required,notblank,min=2,max=100"`
	StudentID string `json:"student_id" validate:"required,notblank,max=20"`
	Phone     string `json:"phone" validate:"omitempty,max=20"`
	Email     string `json:"email" validate:"omitempty,email"`
}

type AttendanceSummary struct {
	SessionsAttended int `json:"sessions_attended" bun:"sessions_attended"`
	TotalSessions    int `json:"total_sessions" bun:"total_sessions"`
	Percentage       int `json:"attendance_percentage" bun:"-"`
}

type WithAttendance struct {
	*Student
	AttendanceSummary
}

// BulkResult is the settle-all outcome of a bulk enrollment.
// Successful + Failed == Total always holds.
type BulkResult struct {
	Successful int `json:"successful"`
	Failed     int `json:"failed"`
	Total      int `json:"total"`
}
