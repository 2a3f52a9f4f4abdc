package session

import (
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

const (
	MethodOnline  = "Online"
	MethodOffline = "Offline"

	dateLayout = "2006-01-02"
)

type Session struct {
	bun.BaseModel `bun:"table:sessions,alias:se"`

	ID            uuid.UUID `bun:"id,pk,type:uuid,nullzero,default:gen_random_uuid()" json:"id"`
	BatchID       uuid.UUID `bun:"batch_id,type:uuid,notnull,unique:sessions_batch_number_key" json:"batch_id"`
	SessionNumber int       `bun:"session_number,notnull,unique:sessions_batch_number_key" json:"session_number"`
	SessionDate   Date      `bun:"session_date,type:date,notnull" json:"session_date"`
	Method        string    `bun:"method,notnull" json:"method"`
	Platform      *string   `bun:"platform" json:"platform"`
	RoomNumber    *string   `bun:"room_number" json:"room_number"`
	CreatedAt     time.Time `bun:"created_at,nullzero,notnull,default:current_timestamp" json:"created_at"`
	UpdatedAt     time.Time `bun:"updated_at,nullzero,notnull,default:current_timestamp" json:"updated_at"`
}

// Location is the platform for online sessions and the room for offline ones.
func (s *Session) Location() string {
	switch {
	case s.Method == MethodOnline && s.Platform != nil:
		return *s.Platform
	case s.Method == MethodOffline && s.RoomNumber != nil:
		return *s.RoomNumber
	}
	return ""
}

// SessionRequest is used for both create and update.
type SessionRequest struct {
	SessionNumber int    `json:"session_number" validate:"required,gt=0"`
	SessionDate   string `json:"session_date" validate:"required,datetime=2006-01-02"`
	Method        string `json:"method" validate:"required,oneof=Online Offline"`
	Platform      string `json:"platform" validate:"max=100"`
	RoomNumber    string `json:"room_number" validate:"max=50"`
}
