package messaging_test

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"mentorship-service/common/logger"
	"mentorship-service/internal/events"
	"mentorship-service/internal/messaging"
	"mentorship-service/testing/testnats"

	"github.com/nats-io/nats.go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProducerWithNATSContainer(t *testing.T) {
	natsContainer := testnats.SetupSharedNATS(t)
	defer natsContainer.Cleanup(t)

	t.Run("Publish_SubjectPerEventType", func(t *testing.T) {
		producer, err := messaging.NewProducer(natsContainer.URL, "test.events", logger.NewDiscard())
		require.NoError(t, err)
		defer producer.Close()

		nc := natsContainer.Connect(t)
		received := make(chan *nats.Msg, 1)
		_, err = nc.Subscribe("test.events.>", func(msg *nats.Msg) {
			received <- msg
		})
		require.NoError(t, err)
		require.NoError(t, nc.Flush())

		event := events.New(events.StudentsImported, "batch-1", events.StudentsImportedPayload{BatchID: "batch-1", Successful: 3, Total: 3})
		require.NoError(t, producer.Publish(context.Background(), event))

		select {
		case msg := <-received:
			assert.Equal(t, "test.events.students.imported", msg.Subject)
			assert.Equal(t, event.ID, msg.Header.Get("Event-Id"))

			var got events.Event
			require.NoError(t, json.Unmarshal(msg.Data, &got))
			assert.Equal(t, events.StudentsImported, got.Type)
			assert.Equal(t, "batch-1", got.Key)
		case <-time.After(5 * time.Second):
			t.Fatal("timeout waiting for message")
		}
	})

	t.Run("Connect_InvalidURL", func(t *testing.T) {
		_, err := messaging.NewProducer("nats://127.0.0.1:1", "test.events", logger.NewDiscard())
		assert.Error(t, err)
	})
}
