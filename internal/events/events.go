package events

import (
	"context"
	"log/slog"
	"time"

	"mentorship-service/common/metrics"

	"github.com/google/uuid"
)

type Type string

const (
	MentorRegistered     Type = "mentor.registered"
	StudentsImported     Type = "students.imported"
	AttendanceReconciled Type = "attendance.reconciled"
)

// Event is the envelope published to the broker.
type Event struct {
	ID         string    `json:"id"`
	Type       Type      `json:"type"`
	Key        string    `json:"key"`
	OccurredAt time.Time `json:"occurred_at"`
	Payload    any       `json:"payload"`
}

func New(t Type, key string, payload any) Event {
	return Event{
		ID:         uuid.NewString(),
		Type:       t,
		Key:        key,
		OccurredAt: time.Now().UTC(),
		Payload:    payload,
	}
}

type Publisher interface {
	Publish(ctx context.Context, event Event) error
	Close() error
}

// Emitter publishes events on a best-effort basis: failures are logged and
// counted, never returned to the caller. A nil *Emitter drops everything.
type Emitter struct {
	publisher Publisher
	logger    *slog.Logger
	metrics   *metrics.Metrics
}

func NewEmitter(publisher Publisher, logger *slog.Logger, m *metrics.Metrics) *Emitter {
	return &Emitter{
		publisher: publisher,
		logger:    logger,
		metrics:   m,
	}
}

func (e *Emitter) Emit(ctx context.Context, t Type, key string, payload any) {
	if e == nil || e.publisher == nil {
		return
	}

	event := New(t, key, payload)

	start := time.Now()
	err := e.publisher.Publish(ctx, event)
	if e.metrics != nil {
		e.metrics.Messaging.RecordPublish(ctx, string(t), time.Since(start), err)
	}

	if err != nil {
		e.logger.WarnContext(ctx, "failed to publish event", "type", t, "key", key, "error", err)
		return
	}
	e.logger.DebugContext(ctx, "event published", "type", t, "id", event.ID)
}

func (e *Emitter) Close() error {
	if e == nil || e.publisher == nil {
		return nil
	}
	return e.publisher.Close()
}

// Payloads

type MentorRegisteredPayload struct {
	MentorID string `json:"mentor_id"`
	Email    string `json:"email"`
}

type StudentsImportedPayload struct {
	BatchID    string `json:"batch_id"`
	Successful int    `json:"successful"`
	Failed     int    `json:"failed"`
	Total      int    `json:"total"`
}

type AttendanceReconciledPayload struct {
	BatchID   string `json:"batch_id"`
	SessionID string `json:"session_id"`
	Present   int    `json:"present"`
	Absent    int    `json:"absent"`
}
