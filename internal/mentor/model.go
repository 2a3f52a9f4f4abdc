package mentor

import (
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

const (
	LanguageEnglish = "en"
	LanguageBangla  = "bn"

	ThemeLight  = "light"
	ThemeDark   = "dark"
	ThemeSystem = "system"
)

type Mentor struct {
	bun.BaseModel `bun:"table:mentors,alias:m"`

	ID               uuid.UUID  `bun:"id,pk,type:uuid,nullzero,default:gen_random_uuid()" json:"id"`
	FullName         string     `bun:"full_name,notnull" json:"full_name"`
	Email            string     `bun:"email,unique,notnull" json:"email"`
	StudentID        string     `bun:"student_id,unique,nullzero" json:"student_id,omitempty"`
	Batch            string     `bun:"batch,nullzero" json:"batch,omitempty"`
	Department       string     `bun:"department,nullzero" json:"department,omitempty"`
	PasswordHash     string     `bun:"password_hash,notnull" json:"-"`
	EmailConfirmedAt *time.Time `bun:"email_confirmed_at" json:"email_confirmed_at,omitempty"`
	Language         string     `bun:"language,notnull,default:'en'" json:"language"`
	Theme            string     `bun:"theme,notnull,default:'system'" json:"theme"`
	CreatedAt        time.Time  `bun:"created_at,nullzero,notnull,default:current_timestamp" json:"created_at"`
	UpdatedAt        time.Time  `bun:"updated_at,nullzero,notnull,default:current_timestamp" json:"updated_at"`
}

func (m *Mentor) Verified() bool {
	return m.EmailConfirmedAt != nil
}

// Preferences is the persisted UI configuration of a mentor.
type Preferences struct {
	Language string `json:"language" validate:"required,oneof=en bn"`
	Theme    string `json:"theme" validate:"required,oneof=light dark system"`
}

func (m *Mentor) Preferences() Preferences {
	return Preferences{Language: m.Language, Theme: m.Theme}
}

type UpdateProfileRequest struct {
	FullName   string `json:"full_name" validate:"required,notblank,min=2,max=100"`
	StudentID  string `json:"student_id" validate:"omitempty,len=9,numeric"`
	Batch      string `json:"batch" validate:"omitempty,len=3,numeric"`
	Department string `json:"department" validate:"omitempty,min=2,max=10"`
}

// Availability reports which registration identifiers are already taken.
type Availability struct {
	EmailTaken     bool `json:"email_taken"`
	StudentIDTaken bool `json:"student_id_taken"`
}

func (a Availability) Available() bool {
	return !a.EmailTaken && !a.StudentIDTaken
}

// Fields renders the taken identifiers as per-field messages.
func (a Availability) Fields() map[string]string {
	fields := make(map[string]string)
	if a.EmailTaken {
		fields["email"] = "An account with this email already exists"
	}
	if a.StudentIDTaken {
		fields["student_id"] = "An account with this student ID already exists"
	}
	return fields
}
