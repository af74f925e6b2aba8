package observability

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	promexporter "go.opentelemetry.io/otel/exporters/prometheus"
	"go.opentelemetry.io/otel/metric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/trace"
)

var (
	timeNow   = time.Now
	timeSince = time.Since
)

// PrometheusExporter is a meter provider whose instruments are served on a
// Prometheus scrape endpoint.
type PrometheusExporter struct {
	provider *sdkmetric.MeterProvider
	handler  http.Handler
}

// NewPrometheusExporter creates a meter provider backed by its own
// Prometheus registry, which also carries Go runtime and process
// collectors.
func NewPrometheusExporter() (*PrometheusExporter, error) {
	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	exporter, err := promexporter.New(promexporter.WithRegisterer(registry))
	if err != nil {
		return nil, fmt.Errorf("create prometheus exporter: %w", err)
	}

	return &PrometheusExporter{
		provider: sdkmetric.NewMeterProvider(sdkmetric.WithReader(exporter)),
		handler:  promhttp.HandlerFor(registry, promhttp.HandlerOpts{}),
	}, nil
}

// Meter returns a meter whose instruments are exported.
func (p *PrometheusExporter) Meter() metric.Meter {
	return p.provider.Meter(MeterName)
}

// Handler serves the scrape endpoint.
func (p *PrometheusExporter) Handler() http.Handler {
	return p.handler
}

// Shutdown stops the meter provider.
func (p *PrometheusExporter) Shutdown(ctx context.Context) error {
	err := p.provider.Shutdown(ctx)
	if err != nil {
		return fmt.Errorf("shutdown prometheus meter provider: %w", err)
	}

	return nil
}

// NewMetricsMux serves /metrics, /healthz and /readyz, each traced.
func NewMetricsMux(tracer trace.Tracer, red *REDMetrics, metrics http.Handler, checks ...ReadyCheck) *http.ServeMux {
	mux := http.NewServeMux()
	mux.Handle("/metrics", HTTPMiddleware(tracer, red, metrics))
	mux.Handle("/healthz", HTTPMiddleware(tracer, red, HealthHandler()))
	mux.Handle("/readyz", HTTPMiddleware(tracer, red, ReadyHandler(checks...)))

	return mux
}
