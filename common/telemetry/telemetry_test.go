package telemetry_test

import (
	"context"
	"testing"

	"mentorship-service/common/logger"
	"mentorship-service/common/telemetry"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInit_Disabled(t *testing.T) {
	ctx := context.Background()
	log := logger.NewDiscard()

	tel, err := telemetry.Init(ctx, telemetry.Config{
		ServiceName:    "mentorship-service",
		ServiceVersion: "test",
		Env:            "test",
		Disabled:       true,
	}, log)
	require.NoError(t, err)

	assert.NotNil(t, tel.Metrics.Database)
	assert.NotNil(t, tel.Metrics.Health)
	require.NoError(t, tel.Shutdown(ctx, log))
}
