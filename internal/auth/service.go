package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	netmail "net/mail"
	"net/url"
	"strings"
	"time"

	"mentorship-service/internal/events"
	"mentorship-service/internal/mail"
	"mentorship-service/internal/mentor"
	"mentorship-service/internal/metrics"

	"golang.org/x/crypto/bcrypt"
)

var (
	ErrInvalidCredentials       = errors.New("invalid email or password")
	ErrEmailNotConfirmed        = errors.New("email not confirmed")
	ErrInvalidRefreshToken      = errors.New("invalid or expired refresh token")
	ErrInvalidVerificationToken = errors.New("invalid or expired verification link")
	ErrInvalidEmailDomain       = errors.New("email must use the institutional domain")
	ErrAccountExists            = errors.New("account already exists")
)

// AccountExistsError lists which registration identifiers are taken.
type AccountExistsError struct {
	Availability mentor.Availability
}

func (e *AccountExistsError) Error() string {
	return ErrAccountExists.Error()
}

func (e *AccountExistsError) Unwrap() error {
	return ErrAccountExists
}

type Settings struct {
	// EmailDomain is the suffix every registration email must carry, e.g. "@student.green.ac.bd".
	EmailDomain string
	VerifyURL   string
	RefreshTTL  time.Duration
	VerifyTTL   time.Duration
}

type Service struct {
	mentors      mentor.Repository
	availability mentor.Service
	tokens       TokenStore
	issuer       *TokenIssuer
	mailer       mail.Sender
	emitter      *events.Emitter
	settings     Settings
	logger       *slog.Logger
	metrics      *metrics.Metrics
}

func NewService(
	mentors mentor.Repository,
	availability mentor.Service,
	tokens TokenStore,
	issuer *TokenIssuer,
	mailer mail.Sender,
	emitter *events.Emitter,
	settings Settings,
	logger *slog.Logger,
	m *metrics.Metrics,
) *Service {
	return &Service{
		mentors:      mentors,
		availability: availability,
		tokens:       tokens,
		issuer:       issuer,
		mailer:       mailer,
		emitter:      emitter,
		settings:     settings,
		logger:       logger,
		metrics:      m,
	}
}

func (s *Service) Settings() Settings {
	return s.settings
}

// CheckAvailability is the advisory pre-check exposed to the registration form.
func (s *Service) CheckAvailability(ctx context.Context, email, studentID string) (mentor.Availability, error) {
	return s.availability.CheckAvailability(ctx, email, studentID)
}

// Register creates an unverified mentor account and mails the verification link.
func (s *Service) Register(ctx context.Context, req RegisterRequest) (*mentor.Mentor, error) {
	email := strings.ToLower(strings.TrimSpace(req.Email))
	studentID := strings.TrimSpace(req.StudentID)

	if s.settings.EmailDomain != "" && !strings.HasSuffix(email, strings.ToLower(s.settings.EmailDomain)) {
		return nil, ErrInvalidEmailDomain
	}

	// Advisory only: the unique constraints on insert remain authoritative.
	availability, err := s.availability.CheckAvailability(ctx, email, studentID)
	if err != nil {
		s.logger.WarnContext(ctx, "availability pre-check failed, continuing with registration", "error", err)
	} else if !availability.Available() {
		return nil, &AccountExistsError{Availability: availability}
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	created, err := s.mentors.Create(ctx, &mentor.Mentor{
		FullName:     strings.TrimSpace(req.FullName),
		Email:        email,
		StudentID:    studentID,
		Batch:        strings.TrimSpace(req.Batch),
		Department:   strings.TrimSpace(req.Department),
		PasswordHash: string(hashedPassword),
		Language:     mentor.LanguageEnglish,
		Theme:        mentor.ThemeSystem,
	})
	switch {
	case errors.Is(err, mentor.ErrEmailExists):
		return nil, &AccountExistsError{Availability: mentor.Availability{EmailTaken: true}}
	case errors.Is(err, mentor.ErrStudentIDExists):
		return nil, &AccountExistsError{Availability: mentor.Availability{StudentIDTaken: true}}
	case err != nil:
		return nil, err
	}

	if err := s.sendVerification(ctx, created); err != nil {
		s.logger.WarnContext(ctx, "failed to send verification email", "mentor_id", created.ID, "error", err)
	}

	s.metrics.RecordMentorRegistered(ctx)
	s.emitter.Emit(ctx, events.MentorRegistered, created.ID.String(), events.MentorRegisteredPayload{
		MentorID: created.ID.String(),
		Email:    created.Email,
	})

	return created, nil
}

func (s *Service) sendVerification(ctx context.Context, m *mentor.Mentor) error {
	token, err := NewOpaqueToken()
	if err != nil {
		return err
	}
	if err := s.tokens.CreateVerificationToken(ctx, m.ID, token, time.Now().Add(s.settings.VerifyTTL)); err != nil {
		return fmt.Errorf("store verification token: %w", err)
	}

	link, err := url.Parse(s.settings.VerifyURL)
	if err != nil {
		return fmt.Errorf("parse verify url: %w", err)
	}
	q := link.Query()
	q.Set("token", token)
	link.RawQuery = q.Encode()

	msg, err := mail.VerificationMessage(netmail.Address{Name: m.FullName, Address: m.Email}, link.String(), s.settings.VerifyTTL.String())
	if err != nil {
		return err
	}
	return s.mailer.Send(ctx, msg)
}

// VerifyEmail confirms the account bound to a verification token.
func (s *Service) VerifyEmail(ctx context.Context, token string) error {
	vt, err := s.tokens.ConsumeVerificationToken(ctx, token)
	if err != nil {
		return err
	}
	if err := s.mentors.MarkVerified(ctx, vt.MentorID, time.Now()); err != nil {
		if errors.Is(err, mentor.ErrMentorNotFound) {
			return ErrInvalidVerificationToken
		}
		return err
	}
	s.logger.InfoContext(ctx, "email verified", "mentor_id", vt.MentorID)
	return nil
}

// ResendVerification mails a fresh link to an unverified account. Unknown or
// already verified emails are ignored so the endpoint cannot probe accounts.
func (s *Service) ResendVerification(ctx context.Context, email string) error {
	m, err := s.mentors.GetByEmail(ctx, strings.TrimSpace(email))
	if err != nil {
		if errors.Is(err, mentor.ErrMentorNotFound) {
			return nil
		}
		return err
	}
	if m.Verified() {
		return nil
	}
	return s.sendVerification(ctx, m)
}

// Login authenticates a mentor and returns tokens
func (s *Service) Login(ctx context.Context, req LoginRequest) (*AuthResponse, error) {
	m, err := s.mentors.GetByEmail(ctx, strings.TrimSpace(req.Email))
	if err != nil {
		if errors.Is(err, mentor.ErrMentorNotFound) {
			s.metrics.RecordLoginFailed(ctx, "unknown_email")
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(m.PasswordHash), []byte(req.Password)); err != nil {
		s.metrics.RecordLoginFailed(ctx, "bad_password")
		return nil, ErrInvalidCredentials
	}

	if !m.Verified() {
		s.metrics.RecordLoginFailed(ctx, "unverified")
		return nil, ErrEmailNotConfirmed
	}

	return s.generateTokenPair(ctx, m)
}

// RefreshAccessToken rotates the refresh token and issues a new access token.
func (s *Service) RefreshAccessToken(ctx context.Context, refreshTokenString string) (*AuthResponse, error) {
	refreshToken, err := s.tokens.GetRefreshToken(ctx, refreshTokenString)
	if err != nil {
		if errors.Is(err, ErrInvalidRefreshToken) {
			return nil, ErrInvalidRefreshToken
		}
		return nil, err
	}

	m, err := s.mentors.GetByID(ctx, refreshToken.MentorID)
	if err != nil {
		return nil, ErrInvalidRefreshToken
	}

	if err := s.tokens.DeleteRefreshToken(ctx, refreshTokenString); err != nil {
		return nil, err
	}

	return s.generateTokenPair(ctx, m)
}

// Logout invalidates refresh token
func (s *Service) Logout(ctx context.Context, refreshTokenString string) error {
	return s.tokens.DeleteRefreshToken(ctx, refreshTokenString)
}

func (s *Service) generateTokenPair(ctx context.Context, m *mentor.Mentor) (*AuthResponse, error) {
	accessToken, err := s.issuer.Issue(m.ID, m.Email)
	if err != nil {
		return nil, err
	}

	refreshToken, err := NewOpaqueToken()
	if err != nil {
		return nil, err
	}

	expiresAt := time.Now().Add(s.settings.RefreshTTL)
	if err := s.tokens.CreateRefreshToken(ctx, m.ID, refreshToken, expiresAt); err != nil {
		return nil, err
	}

	return &AuthResponse{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		Mentor:       m,
	}, nil
}
