package messaging

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"mentorship-service/internal/events"

	"github.com/nats-io/nats.go"
)

// Producer publishes domain events to NATS under <subject>.<event type>.
type Producer struct {
	conn    *nats.Conn
	subject string
	logger  *slog.Logger
}

var _ events.Publisher = (*Producer)(nil)

func NewProducer(url string, subject string, logger *slog.Logger) (*Producer, error) {
	nc, err := nats.Connect(url,
		nats.Name("mentorship-service"),
		nats.Timeout(2*time.Second),
		nats.MaxReconnects(-1),
	)
	if err != nil {
		return nil, err
	}

	logger.Info("NATS producer initialized", "url", url, "subject", subject)

	return &Producer{
		conn:    nc,
		subject: subject,
		logger:  logger,
	}, nil
}

func (p *Producer) Subject(t events.Type) string {
	return p.subject + "." + string(t)
}

func (p *Producer) Publish(ctx context.Context, event events.Event) error {
	data, err := json.Marshal(event)
	if err != nil {
		return err
	}

	msg := nats.NewMsg(p.Subject(event.Type))
	msg.Header.Set("Event-Id", event.ID)
	msg.Header.Set("Event-Type", string(event.Type))
	msg.Data = data

	if err := p.conn.PublishMsg(msg); err != nil {
		return err
	}

	p.logger.DebugContext(ctx, "message sent to NATS", "subject", msg.Subject)
	return nil
}

func (p *Producer) Close() error {
	return p.conn.Drain()
}
