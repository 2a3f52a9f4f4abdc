package auth

import (
	"time"

	"mentorship-service/internal/mentor"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// RefreshToken stores refresh tokens in database
type RefreshToken struct {
	bun.BaseModel `bun:"table:refresh_tokens,alias:rt"`

	ID        uuid.UUID `bun:"id,pk,type:uuid,nullzero,default:gen_random_uuid()"`
	MentorID  uuid.UUID `bun:"mentor_id,type:uuid,notnull"`
	Token     string    `bun:"token,unique,notnull"`
	ExpiresAt time.Time `bun:"expires_at,notnull"`
	CreatedAt time.Time `bun:"created_at,nullzero,notnull,default:current_timestamp"`
}

// VerificationToken is the single-use secret mailed at registration.
type VerificationToken struct {
	bun.BaseModel `bun:"table:verification_tokens,alias:vt"`

	ID        uuid.UUID `bun:"id,pk,type:uuid,nullzero,default:gen_random_uuid()"`
	MentorID  uuid.UUID `bun:"mentor_id,type:uuid,notnull"`
	Token     string    `bun:"token,unique,notnull"`
	ExpiresAt time.Time `bun:"expires_at,notnull"`
	CreatedAt time.Time `bun:"created_at,nullzero,notnull,default:current_timestamp"`
}

// RegisterRequest is the request body for registration
type RegisterRequest struct {
	FullName   string `json:"full_name" validate:"required,notblank,min=2,max=100"`
	StudentID  string `json:"student_id" validate:"required,len=9,numeric"`
	Batch      string `json:"batch" validate:"required,len=3,numeric"`
	Department string `json:"department" validate:"required,min=2,max=10"`
	Email      string `json:"email" validate:"required,email"`
	Password   string `json:"password" validate:"required,min=6"`
}

// LoginRequest is the request body for login
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// RefreshRequest is the request body for token refresh
type RefreshRequest struct {
	RefreshToken string `json:"refreshToken" validate:"required"`
}

// AuthResponse is the response for successful authentication
type AuthResponse struct {
	AccessToken  string         `json:"accessToken"`
	RefreshToken string         `json:"refreshToken"`
	Mentor       *mentor.Mentor `json:"mentor"`
}

type RegisterResponse struct {
	Mentor  *mentor.Mentor `json:"mentor"`
	Message string         `json:"message"`
}
