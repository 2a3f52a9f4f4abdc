// Package grpcserver exposes the standard gRPC health service so
// orchestrators can probe the HTTP API's dependencies over gRPC.
package grpcserver

import (
	"context"
	"log/slog"
	"net"
	"time"

	"mentorship-service/common/metrics"

	"go.opentelemetry.io/contrib/instrumentation/google.golang.org/grpc/otelgrpc"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	"google.golang.org/grpc/health/grpc_health_v1"
)

// ServiceName is the health service name reported next to the overall "" status.
const ServiceName = "mentorship.v1.MentorshipService"

// Prober reports whether every required dependency is reachable.
type Prober interface {
	Probe(ctx context.Context) (bool, map[string]string)
}

type Server struct {
	grpcServer *grpc.Server
	health     *health.Server
	prober     Prober
	interval   time.Duration
	logger     *slog.Logger
}

func New(prober Prober, m *metrics.Metrics, interval time.Duration, logger *slog.Logger) *Server {
	grpcServer := grpc.NewServer(
		grpc.StatsHandler(otelgrpc.NewServerHandler()),
		grpc.ChainUnaryInterceptor(m.Grpc.UnaryServerInterceptor()),
	)

	healthServer := health.NewServer()
	grpc_health_v1.RegisterHealthServer(grpcServer, healthServer)
	healthServer.SetServingStatus("", grpc_health_v1.HealthCheckResponse_SERVING)
	healthServer.SetServingStatus(ServiceName, grpc_health_v1.HealthCheckResponse_SERVING)

	if interval <= 0 {
		interval = 15 * time.Second
	}

	return &Server{
		grpcServer: grpcServer,
		health:     healthServer,
		prober:     prober,
		interval:   interval,
		logger:     logger,
	}
}

func (s *Server) Serve(lis net.Listener) error {
	s.logger.Info("gRPC server starting", "addr", lis.Addr().String())
	return s.grpcServer.Serve(lis)
}

// Watch re-probes dependencies every interval and flips the serving status
// until ctx is cancelled.
func (s *Server) Watch(ctx context.Context) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	s.Refresh(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.Refresh(ctx)
		}
	}
}

// Refresh runs one probe and publishes the result.
func (s *Server) Refresh(ctx context.Context) {
	ready, results := s.prober.Probe(ctx)

	status := grpc_health_v1.HealthCheckResponse_SERVING
	if !ready {
		status = grpc_health_v1.HealthCheckResponse_NOT_SERVING
		s.logger.WarnContext(ctx, "service not ready", "checks", results)
	}
	s.health.SetServingStatus("", status)
	s.health.SetServingStatus(ServiceName, status)
}

func (s *Server) GracefulStop() {
	s.health.Shutdown()
	s.grpcServer.GracefulStop()
}
