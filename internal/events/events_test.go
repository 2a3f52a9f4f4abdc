package events_test

import (
	"context"
	"errors"
	"sync"
	"testing"

	commonmetrics "mentorship-service/common/metrics"
	"mentorship-service/common/logger"
	"mentorship-service/internal/events"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingPublisher struct {
	mu     sync.Mutex
	events []events.Event
	err    error
	closed bool
}

func (p *recordingPublisher) Publish(_ context.Context, e events.Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, e)
	return p.err
}

func (p *recordingPublisher) Close() error {
	p.closed = true
	return nil
}

func TestEmitter(t *testing.T) {
	ctx := context.Background()

	t.Run("Publishes_Envelope", func(t *testing.T) {
		pub := &recordingPublisher{}
		emitter := events.NewEmitter(pub, logger.NewDiscard(), commonmetrics.NewMock())

		emitter.Emit(ctx, events.StudentsImported, "batch-1", events.StudentsImportedPayload{BatchID: "batch-1", Successful: 2, Total: 2})

		require.Len(t, pub.events, 1)
		e := pub.events[0]
		assert.Equal(t, events.StudentsImported, e.Type)
		assert.Equal(t, "batch-1", e.Key)
		assert.NotEmpty(t, e.ID)
		assert.False(t, e.OccurredAt.IsZero())
	})

	t.Run("PublishError_Swallowed", func(t *testing.T) {
		pub := &recordingPublisher{err: errors.New("broker down")}
		emitter := events.NewEmitter(pub, logger.NewDiscard(), commonmetrics.NewMock())

		assert.NotPanics(t, func() {
			emitter.Emit(ctx, events.MentorRegistered, "m1", nil)
		})
		assert.Len(t, pub.events, 1)
	})

	t.Run("NilEmitter", func(t *testing.T) {
		var emitter *events.Emitter
		assert.NotPanics(t, func() {
			emitter.Emit(ctx, events.AttendanceReconciled, "s1", nil)
		})
		assert.NoError(t, emitter.Close())
	})

	t.Run("Close", func(t *testing.T) {
		pub := &recordingPublisher{}
		require.NoError(t, events.NewEmitter(pub, logger.NewDiscard(), nil).Close())
		assert.True(t, pub.closed)
	})
}
