package batch

import (
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

const (
	StatusActive    = "Active"
	StatusInactive  = "Inactive"
	StatusGraduated = "Graduated"
	StatusCompleted = "Completed"
)

type Batch struct {
	bun.BaseModel `bun:"table:batches,alias:b"`

	ID             uuid.UUID `bun:"id,pk,type:uuid,nullzero,default:gen_random_uuid()" json:"id"`
	MentorID       uuid.UUID `bun:"mentor_id,type:uuid,notnull" json:"mentor_id"`
	BatchName      string    `bun:"batch_name,notnull" json:"batch_name"`
	DepartmentName string    `bun:"department_name,notnull" json:"department_name"`
	Section        string    `bun:"section,notnull" json:"section"`
	Semester       string    `bun:"semester,notnull" json:"semester"`
	AcademicYear   string    `bun:"academic_year,nullzero" json:"academic_year,omitempty"`
	StudentIDStart string    `bun:"student_id_start,nullzero" json:"student_id_start,omitempty"`
	StudentIDEnd   string    `bun:"student_id_end,nullzero" json:"student_id_end,omitempty"`
	Status         string    `bun:"status,notnull,default:'Active'" json:"status"`
	CreatedAt      time.Time `bun:"created_at,nullzero,notnull,default:current_timestamp" json:"created_at"`
	UpdatedAt      time.Time `bun:"updated_at,nullzero,notnull,default:current_timestamp" json:"updated_at"`
}

type CreateBatchRequest struct {
	BatchName      string `json:"batch_name" validate:"required,notblank,max=100"`
	DepartmentName string `json:"department_name" validate:"required,notblank,max=100"`
	Section        string `json:"section" validate:"required,notblank,max=20"`
	Semester       string `json:"semester" validate:"required,oneof=Spring Summer Fall"`
	AcademicYear   string `json:"academic_year" validate:"omitempty,max=20"`
	StudentIDStart string `json:"student_id_start" validate:"omitempty,numeric"`
	StudentIDEnd   string `json:"student_id_end" validate:"omitempty,numeric"`
}

// UpdateBatchRequest is a partial update; nil fields keep their value.
type UpdateBatchRequest struct {
	BatchName      *string `json:"batch_name" validate:"omitempty,notblank,max=100"`
	DepartmentName *string `json:"department_name" validate:"omitempty,notblank,max=100"`
	Section        *string `json:"section" validate:"omitempty,notblank,max=20"`
	Semester       *string `json:"semester" validate:"omitempty,oneof=Spring Summer Fall"`
	AcademicYear   *string `json:"academic_year" validate:"omitempty,max=20"`
	StudentIDStart *string `json:"student_id_start" validate:"omitempty,numeric"`
	StudentIDEnd   *string `json:"student_id_end" validate:"omitempty,numeric"`
	Status         *string `json:"status" validate:"omitempty,oneof=Active Inactive Graduated Completed"`
}

type Stats struct {
	StudentCount         int `json:"student_count"`
	SessionCount         int `json:"session_count"`
	AttendancePercentage int `json:"attendance_percentage"`
}

type WithStats struct {
	*Batch
	Stats
}

type Dashboard struct {
	TotalBatches     int `json:"total_batches" bun:"total_batches"`
	TotalStudents    int `json:"total_students" bun:"total_students"`
	ActiveBatches    int `json:"active_batches" bun:"active_batches"`
	GraduatedBatches int `json:"graduated_batches" bun:"graduated_batches"`
}
