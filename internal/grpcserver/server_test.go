package grpcserver_test

import (
	"context"
	"net"
	"sync/atomic"
	"testing"
	"time"

	"mentorship-service/common/logger"
	commonmetrics "mentorship-service/common/metrics"
	"mentorship-service/internal/grpcserver"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/test/bufconn"
)

type fakeProber struct {
	ready atomic.Bool
}

func (p *fakeProber) Probe(context.Context) (bool, map[string]string) {
	if p.ready.Load() {
		return true, map[string]string{"postgres": "up"}
	}
	return false, map[string]string{"postgres": "down"}
}

func TestHealthServer(t *testing.T) {
	prober := &fakeProber{}
	prober.ready.Store(true)

	server := grpcserver.New(prober, commonmetrics.NewMock(), time.Hour, logger.NewDiscard())

	lis := bufconn.Listen(1 << 20)
	go func() { _ = server.Serve(lis) }()
	defer server.GracefulStop()

	conn, err := grpc.NewClient("passthrough:///bufnet",
		grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) {
			return lis.DialContext(ctx)
		}),
		grpc.WithTransportCredentials(insecure.NewCredentials()),
	)
	require.NoError(t, err)
	defer conn.Close()

	client := grpc_health_v1.NewHealthClient(conn)
	ctx := context.Background()

	t.Run("Serving", func(t *testing.T) {
		resp, err := client.Check(ctx, &grpc_health_v1.HealthCheckRequest{Service: grpcserver.ServiceName})
		require.NoError(t, err)
		assert.Equal(t, grpc_health_v1.HealthCheckResponse_SERVING, resp.Status)
	})

	t.Run("NotServing_AfterFailedProbe", func(t *testing.T) {
		prober.ready.Store(false)
		server.Refresh(ctx)

		resp, err := client.Check(ctx, &grpc_health_v1.HealthCheckRequest{})
		require.NoError(t, err)
		assert.Equal(t, grpc_health_v1.HealthCheckResponse_NOT_SERVING, resp.Status)
	})

	t.Run("Recovers", func(t *testing.T) {
		prober.ready.Store(true)
		server.Refresh(ctx)

		resp, err := client.Check(ctx, &grpc_health_v1.HealthCheckRequest{})
		require.NoError(t, err)
		assert.Equal(t, grpc_health_v1.HealthCheckResponse_SERVING, resp.Status)
	})
}
