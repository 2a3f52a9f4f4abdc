package metrics_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"mentorship-service/common/logger"
	"mentorship-service/common/metrics"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
	"google.golang.org/grpc/codes"
)

func collect(t *testing.T, reader *sdkmetric.ManualReader) map[string]metricdata.Metrics {
	t.Helper()

	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(context.Background(), &rm))

	out := make(map[string]metricdata.Metrics)
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			out[m.Name] = m
		}
	}
	return out
}

func TestDatabaseMetrics(t *testing.T) {
	reader := sdkmetric.NewManualReader()
	meter := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader)).Meter("test")

	dm, err := metrics.NewDatabaseMetrics(meter)
	require.NoError(t, err)

	ctx := context.Background()
	dm.RecordQuery(ctx, "insert", "students", 5*time.Millisecond, nil)
	dm.RecordQuery(ctx, "insert", "students", 7*time.Millisecond, errors.New("duplicate"))

	got := collect(t, reader)

	hist, ok := got["db.query.duration"].Data.(metricdata.Histogram[float64])
	require.True(t, ok)
	require.Len(t, hist.DataPoints, 1)
	assert.Equal(t, uint64(2), hist.DataPoints[0].Count)

	errs, ok := got["db.query.errors"].Data.(metricdata.Sum[int64])
	require.True(t, ok)
	require.Len(t, errs.DataPoints, 1)
	assert.Equal(t, int64(1), errs.DataPoints[0].Value)
}

func TestGrpcMetrics(t *testing.T) {
	reader := sdkmetric.NewManualReader()
	meter := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader)).Meter("test")

	gm, err := metrics.NewGrpcMetrics(meter)
	require.NoError(t, err)

	gm.RecordRequest(context.Background(), "/grpc.health.v1.Health/Check", time.Millisecond, codes.OK)
	gm.RecordRequest(context.Background(), "/grpc.health.v1.Health/Check", time.Millisecond, codes.Unavailable)

	got := collect(t, reader)

	total, ok := got["grpc.server.requests_total"].Data.(metricdata.Sum[int64])
	require.True(t, ok)
	var sum int64
	for _, dp := range total.DataPoints {
		sum += dp.Value
	}
	assert.Equal(t, int64(2), sum)

	errs, ok := got["grpc.server.errors_total"].Data.(metricdata.Sum[int64])
	require.True(t, ok)
	require.Len(t, errs.DataPoints, 1)
}

func TestNewMock_IgnoresRecords(t *testing.T) {
	m := metrics.NewMock()
	ctx := context.Background()

	assert.NotPanics(t, func() {
		m.Database.RecordQuery(ctx, "select", "batches", time.Millisecond, nil)
		m.Messaging.RecordPublish(ctx, "attendance.reconciled", time.Millisecond, errors.New("down"))
		m.Health.RecordDependencyCheck(ctx, "postgres", time.Millisecond, nil)
		m.Grpc.RecordRequest(ctx, "/svc/Method", time.Millisecond, codes.OK)
	})
}

func TestNew(t *testing.T) {
	reader := sdkmetric.NewManualReader()
	meter := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader)).Meter("test")

	m, err := metrics.New(context.Background(), meter, logger.NewDiscard())

	require.NoError(t, err)
	assert.NotNil(t, m.Runtime)
	assert.NotNil(t, m.Database)
	assert.NotNil(t, m.Messaging)
	assert.NotNil(t, m.Health)
	assert.NotNil(t, m.Grpc)
}
