package logger_test

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"

	"mentorship-service/common/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/trace"
)

func TestNew(t *testing.T) {
	t.Run("JSON_AddsTraceContext", func(t *testing.T) {
		var buf bytes.Buffer
		log := logger.New(logger.Options{Env: "prod", Output: &buf})

		traceID, _ := trace.TraceIDFromHex("4bf92f3577b34da6a3ce929d0e0e4736")
		spanID, _ := trace.SpanIDFromHex("00f067aa0ba902b7")
		ctx := trace.ContextWithSpanContext(context.Background(), trace.NewSpanContext(trace.SpanContextConfig{
			TraceID:    traceID,
			SpanID:     spanID,
			TraceFlags: trace.FlagsSampled,
		}))

		log.InfoContext(ctx, "batch created", "batch_id", "b1")

		var entry map[string]any
		require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
		assert.Equal(t, "batch created", entry["msg"])
		assert.Equal(t, "4bf92f3577b34da6a3ce929d0e0e4736", entry["trace_id"])
		assert.Equal(t, "00f067aa0ba902b7", entry["span_id"])
	})

	t.Run("JSON_RespectsLevel", func(t *testing.T) {
		var buf bytes.Buffer
		log := logger.New(logger.Options{Env: "prod", Level: "warn", Output: &buf})

		log.Info("dropped")
		assert.Empty(t, buf.String())

		log.Warn("kept")
		assert.Contains(t, buf.String(), "kept")
	})

	t.Run("Text_ColorsErrors", func(t *testing.T) {
		var buf bytes.Buffer
		log := logger.New(logger.Options{Env: "local", Output: &buf})

		log.Error("boom")
		assert.Contains(t, buf.String(), "\x1b[31mboom\x1b[0m")
	})
}
