package metrics

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
)

func collect(t *testing.T, reader *sdkmetric.ManualReader) map[string]metricdata.Metrics {
	t.Helper()
	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(context.Background(), &rm))

	out := map[string]metricdata.Metrics{}
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			out[m.Name] = m
		}
	}
	return out
}

func sumOf(t *testing.T, m metricdata.Metrics) int64 {
	t.Helper()
	sum, ok := m.Data.(metricdata.Sum[int64])
	require.True(t, ok, "metric %s is not an int64 sum", m.Name)
	var total int64
	for _, dp := range sum.DataPoints {
		total += dp.Value
	}
	return total
}

func TestRecordOperation(t *testing.T) {
	reader := sdkmetric.NewManualReader()
	provider := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	m, err := NewWithMeter(provider.Meter("test"))
	require.NoError(t, err)

	ctx := context.Background()
	m.RecordOperation(ctx, "skills", "create", "success", 10*time.Millisecond)
	m.RecordOperation(ctx, "skills", "create", "validation", time.Millisecond)
	m.RecordCacheHit(ctx, "skills")
	m.RecordCacheMiss(ctx, "skills")
	m.RecordCacheMiss(ctx, "skills")
	m.RecordHTTPRequest(ctx, "GET", "/v1/{kind}", 200, time.Millisecond)

	got := collect(t, reader)
	assert.Equal(t, int64(2), sumOf(t, got["hrc_resource_operations_total"]))
	assert.Equal(t, int64(1), sumOf(t, got["hrc_cache_hits_total"]))
	assert.Equal(t, int64(2), sumOf(t, got["hrc_cache_misses_total"]))
	assert.Equal(t, int64(1), sumOf(t, got["hrc_http_requests_total"]))

	hist, ok := got["hrc_resource_operation_duration_seconds"].Data.(metricdata.Histogram[float64])
	require.True(t, ok)
	assert.Len(t, hist.DataPoints, 2)
}
