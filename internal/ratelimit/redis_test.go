package ratelimit

import (
	"context"
	"testing"
	"time"

	"mentorship-service/internal/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

func TestRedisWindow(t *testing.T) {
	ctx := context.Background()

	redisContainer, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        "redis:7-alpine",
			ExposedPorts: []string{"6379/tcp"},
			WaitingFor:   wait.ForListeningPort("6379/tcp"),
		},
		Started: true,
	})
	require.NoError(t, err)
	defer func() {
		if err := redisContainer.Terminate(ctx); err != nil {
			t.Logf("failed to terminate container: %s", err)
		}
	}()

	endpoint, err := redisContainer.Endpoint(ctx, "")
	require.NoError(t, err)

	client := NewRedisClient(config.RedisConfig{Addr: endpoint})
	defer client.Close()
	require.NoError(t, client.Ping(ctx).Err())

	limiter := NewRedisWindow(client, 3, time.Hour)

	t.Run("AllowsUpToLimit", func(t *testing.T) {
		for i := 0; i < 3; i++ {
			allowed, err := limiter.Allow(ctx, "198.51.100.7")
			require.NoError(t, err)
			assert.True(t, allowed, "request %d should pass", i+1)
		}

		allowed, err := limiter.Allow(ctx, "198.51.100.7")
		require.NoError(t, err)
		assert.False(t, allowed)
	})

	t.Run("KeyExpires", func(t *testing.T) {
		keys, err := client.Keys(ctx, "ratelimit:198.51.100.7:*").Result()
		require.NoError(t, err)
		require.NotEmpty(t, keys)

		ttl, err := client.TTL(ctx, keys[0]).Result()
		require.NoError(t, err)
		assert.Greater(t, ttl, time.Duration(0))
		assert.LessOrEqual(t, ttl, time.Hour)
	})
}
