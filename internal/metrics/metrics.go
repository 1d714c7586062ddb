package metrics

import (
	"context"
	"net/http"
	"time"

	"go-admin/internal/config"

	promclient "github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/prometheus"
	"go.opentelemetry.io/otel/metric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
)

// Metrics methods are safe to call on a nil receiver, which records nothing.
type Metrics struct {
	HTTPRequests       metric.Int64Counter
	HTTPDuration       metric.Float64Histogram
	ListRequests       metric.Int64Counter
	ListDuration       metric.Float64Histogram
	DataAccessFailures metric.Int64Counter

	Handler http.Handler
}

func NewMetrics(cfg *config.Config) (*Metrics, error) {
	return Setup(cfg.AppId)
}

func Setup(serviceName string) (*Metrics, error) {
	registry := promclient.NewRegistry()
	exporter, err := prometheus.New(prometheus.WithRegisterer(registry))
	if err != nil {
		return nil, err
	}

	provider := sdkmetric.NewMeterProvider(sdkmetric.WithReader(exporter))
	otel.SetMeterProvider(provider)

	meter := provider.Meter(serviceName)

	m := &Metrics{Handler: promhttp.HandlerFor(registry, promhttp.HandlerOpts{})}

	m.HTTPRequests, err = meter.Int64Counter(
		"admin_http_requests_total",
		metric.WithDescription("Total number of HTTP requests"),
	)
	if err != nil {
		return nil, err
	}

	m.HTTPDuration, err = meter.Float64Histogram(
		"admin_http_duration_seconds",
		metric.WithDescription("HTTP request duration in seconds"),
	)
	if err != nil {
		return nil, err
	}

	m.ListRequests, err = meter.Int64Counter(
		"admin_list_requests_total",
		metric.WithDescription("List requests by module, backend and outcome"),
	)
	if err != nil {
		return nil, err
	}

	m.ListDuration, err = meter.Float64Histogram(
		"admin_list_duration_seconds",
		metric.WithDescription("Time spent running count and find for a list request"),
	)
	if err != nil {
		return nil, err
	}

	m.DataAccessFailures, err = meter.Int64Counter(
		"admin_data_access_failures_total",
		metric.WithDescription("Data provider failures by module and backend"),
	)
	if err != nil {
		return nil, err
	}

	return m, nil
}

func (m *Metrics) RecordHTTPRequest(ctx context.Context, method, path string, status int, duration time.Duration) {
	if m == nil {
		return
	}
	labels := metric.WithAttributes(
		attribute.String("method", method),
		attribute.String("path", path),
		attribute.Int("status", status),
	)

	m.HTTPRequests.Add(ctx, 1, labels)
	m.HTTPDuration.Record(ctx, duration.Seconds(), labels)
}

// RecordList counts one list request by outcome: ok, invalid, canceled or error.
func (m *Metrics) RecordList(ctx context.Context, module, backend, outcome string, duration time.Duration) {
	if m == nil {
		return
	}
	labels := metric.WithAttributes(
		attribute.String("module", module),
		attribute.String("backend", backend),
		attribute.String("outcome", outcome),
	)

	m.ListRequests.Add(ctx, 1, labels)
	m.ListDuration.Record(ctx, duration.Seconds(), labels)
}

func (m *Metrics) RecordDataAccessFailure(ctx context.Context, module, backend string) {
	if m == nil {
		return
	}
	m.DataAccessFailures.Add(ctx, 1, metric.WithAttributes(
		attribute.String("module", module),
		attribute.String("backend", backend),
	))
}
