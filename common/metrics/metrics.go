package metrics

import (
	"context"
	"fmt"
	"log/slog"

	"go.opentelemetry.io/otel/metric"
)

// latencyBuckets are shared by every duration histogram: 1ms up to 10s.
var latencyBuckets = []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1.0, 2.5, 5.0, 10.0}

// Metrics holds the infrastructure instruments: Go runtime, database pool
// and queries, event publishing, dependency health and the gRPC surface.
// Business counters are kept by the service itself.
type Metrics struct {
	Runtime   *RuntimeMetrics
	Database  *DatabaseMetrics
	Messaging *MessagingMetrics
	Health    *HealthMetrics
	Grpc      *GrpcMetrics
}

func New(ctx context.Context, meter metric.Meter, logger *slog.Logger) (*Metrics, error) {
	m := &Metrics{}
	var err error

	if m.Runtime, err = NewRuntimeMetrics(ctx, meter); err != nil {
		return nil, fmt.Errorf("runtime metrics: %w", err)
	}
	if m.Database, err = NewDatabaseMetrics(meter); err != nil {
		return nil, fmt.Errorf("database metrics: %w", err)
	}
	if m.Messaging, err = NewMessagingMetrics(meter); err != nil {
		return nil, fmt.Errorf("messaging metrics: %w", err)
	}
	if m.Health, err = NewHealthMetrics(meter); err != nil {
		return nil, fmt.Errorf("health metrics: %w", err)
	}
	if m.Grpc, err = NewGrpcMetrics(meter); err != nil {
		return nil, fmt.Errorf("grpc metrics: %w", err)
	}

	logger.Info("infrastructure metrics registered")
	return m, nil
}

// NewMock returns instruments that ignore every Record call.
func NewMock() *Metrics {
	return &Metrics{
		Runtime:   &RuntimeMetrics{},
		Database:  &DatabaseMetrics{},
		Messaging: &MessagingMetrics{},
		Health:    &HealthMetrics{},
		Grpc:      &GrpcMetrics{},
	}
}
