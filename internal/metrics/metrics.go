package metrics

import (
	"context"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/prometheus"
	"go.opentelemetry.io/otel/metric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
)

type Metrics struct {
	HTTPRequests      metric.Int64Counter
	HTTPDuration      metric.Float64Histogram
	Operations        metric.Int64Counter
	OperationDuration metric.Float64Histogram
	CacheHits         metric.Int64Counter
	CacheMisses       metric.Int64Counter
	CacheInvalidated  metric.Int64Counter
}

func Setup(serviceName string) (*Metrics, http.Handler, error) {
	exporter, err := prometheus.New()
	if err != nil {
		return nil, nil, err
	}

	provider := sdkmetric.NewMeterProvider(sdkmetric.WithReader(exporter))
	otel.SetMeterProvider(provider)

	m, err := newMetrics(provider.Meter(serviceName))
	if err != nil {
		return nil, nil, err
	}
	return m, promhttp.Handler(), nil
}

// NewWithMeter builds the instruments on an existing meter. Tests pass a
// meter backed by a manual reader.
func NewWithMeter(meter metric.Meter) (*Metrics, error) {
	return newMetrics(meter)
}

func newMetrics(meter metric.Meter) (*Metrics, error) {
	m := &Metrics{}
	var err error

	m.HTTPRequests, err = meter.Int64Counter(
		"hrc_http_requests_total",
		metric.WithDescription("Total number of HTTP requests"),
	)
	if err != nil {
		return nil, err
	}

	m.HTTPDuration, err = meter.Float64Histogram(
		"hrc_http_duration_seconds",
		metric.WithDescription("HTTP request duration in seconds"),
	)
	if err != nil {
		return nil, err
	}

	m.Operations, err = meter.Int64Counter(
		"hrc_resource_operations_total",
		metric.WithDescription("Resource operations by kind, operation and outcome"),
	)
	if err != nil {
		return nil, err
	}

	m.OperationDuration, err = meter.Float64Histogram(
		"hrc_resource_operation_duration_seconds",
		metric.WithDescription("Resource operation duration in seconds"),
	)
	if err != nil {
		return nil, err
	}

	m.CacheHits, err = meter.Int64Counter(
		"hrc_cache_hits_total",
		metric.WithDescription("Total number of list cache hits"),
	)
	if err != nil {
		return nil, err
	}

	m.CacheMisses, err = meter.Int64Counter(
		"hrc_cache_misses_total",
		metric.WithDescription("Total number of list cache misses"),
	)
	if err != nil {
		return nil, err
	}

	m.CacheInvalidated, err = meter.Int64Counter(
		"hrc_cache_invalidations_total",
		metric.WithDescription("Total number of list cache generation bumps"),
	)
	if err != nil {
		return nil, err
	}

	return m, nil
}

func (m *Metrics) RecordHTTPRequest(ctx context.Context, method, path string, status int, duration time.Duration) {
	labels := metric.WithAttributes(
		attribute.String("method", method),
		attribute.String("path", path),
		attribute.Int("status", status),
	)

	m.HTTPRequests.Add(ctx, 1, labels)
	m.HTTPDuration.Record(ctx, duration.Seconds(), labels)
}

// RecordOperation counts one finished resource operation.
func (m *Metrics) RecordOperation(ctx context.Context, kind, op, outcome string, duration time.Duration) {
	labels := metric.WithAttributes(
		attribute.String("kind", kind),
		attribute.String("op", op),
		attribute.String("outcome", outcome),
	)

	m.Operations.Add(ctx, 1, labels)
	m.OperationDuration.Record(ctx, duration.Seconds(), labels)
}

func (m *Metrics) RecordCacheHit(ctx context.Context, kind string) {
	m.CacheHits.Add(ctx, 1, metric.WithAttributes(attribute.String("kind", kind)))
}

func (m *Metrics) RecordCacheMiss(ctx context.Context, kind string) {
	m.CacheMisses.Add(ctx, 1, metric.WithAttributes(attribute.String("kind", kind)))
}

func (m *Metrics) RecordCacheInvalidation(ctx context.Context, kind string) {
	m.CacheInvalidated.Add(ctx, 1, metric.WithAttributes(attribute.String("kind", kind)))
}
