package kafka_test

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"mentorship-service/common/logger"
	"mentorship-service/internal/events"
	"mentorship-service/internal/kafka"

	"github.com/IBM/sarama"
	"github.com/IBM/sarama/mocks"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProducer_Publish(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		mock := mocks.NewSyncProducer(t, sarama.NewConfig())
		mock.ExpectSendMessageWithCheckerFunctionAndSucceed(func(val []byte) error {
			var e events.Event
			if err := json.Unmarshal(val, &e); err != nil {
				return err
			}
			if e.Type != events.AttendanceReconciled {
				return errors.New("unexpected event type " + string(e.Type))
			}
			return nil
		})

		producer := kafka.NewWithProducer(mock, "mentorship.events", logger.NewDiscard())
		err := producer.Publish(context.Background(), events.New(events.AttendanceReconciled, "session-1", nil))
		require.NoError(t, err)
		require.NoError(t, producer.Close())
	})

	t.Run("BrokerError", func(t *testing.T) {
		mock := mocks.NewSyncProducer(t, sarama.NewConfig())
		mock.ExpectSendMessageAndFail(sarama.ErrOutOfBrokers)

		producer := kafka.NewWithProducer(mock, "mentorship.events", logger.NewDiscard())
		err := producer.Publish(context.Background(), events.New(events.StudentsImported, "batch-1", nil))
		assert.ErrorIs(t, err, sarama.ErrOutOfBrokers)
		require.NoError(t, producer.Close())
	})
}
