package observability

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

const (
	metricRequestsTotal    = "autodoc.requests.total"
	metricRequestDuration  = "autodoc.request.duration.seconds"
	metricErrorsTotal      = "autodoc.errors.total"
	metricInflightRequests = "autodoc.inflight.requests"

	attrOp     = "op"
	attrStatus = "status"

	// StatusOK and StatusError label request outcomes.
	StatusOK    = "ok"
	StatusError = "error"
)

// requestBuckets covers 1ms to 60s: a hover or a single inline snippet
// takes milliseconds, a scrape of a large registry takes longer.
var requestBuckets = []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60}

// durationBucketBoundaries covers per-file analysis, from a tiny module
// parsed in well under a millisecond to a generated file of several seconds.
var durationBucketBoundaries = []float64{0.0005, 0.001, 0.0025, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5}

// REDMetrics counts rate, errors and duration of MCP tool calls, LSP
// requests and metrics-endpoint HTTP requests, keyed by operation name.
// All methods are safe on a nil receiver.
type REDMetrics struct {
	requests metric.Int64Counter
	duration metric.Float64Histogram
	failures metric.Int64Counter
	inflight metric.Int64UpDownCounter
}

// NewREDMetrics creates RED metric instruments from the given meter.
func NewREDMetrics(mt metric.Meter) (*REDMetrics, error) {
	var (
		rm   REDMetrics
		errs []error
		err  error
	)

	rm.requests, err = mt.Int64Counter(metricRequestsTotal,
		metric.WithDescription("Requests handled, by operation and status"),
		metric.WithUnit("{request}"))
	errs = append(errs, err)

	rm.duration, err = mt.Float64Histogram(metricRequestDuration,
		metric.WithDescription("Request duration in seconds"),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(requestBuckets...))
	errs = append(errs, err)

	rm.failures, err = mt.Int64Counter(metricErrorsTotal,
		metric.WithDescription("Requests that ended in an error"),
		metric.WithUnit("{error}"))
	errs = append(errs, err)

	rm.inflight, err = mt.Int64UpDownCounter(metricInflightRequests,
		metric.WithDescription("Requests currently being handled"),
		metric.WithUnit("{request}"))
	errs = append(errs, err)

	if joined := errors.Join(errs...); joined != nil {
		return nil, fmt.Errorf("create request metrics: %w", joined)
	}

	return &rm, nil
}

// Begin marks op as in flight and returns the function that completes it
// with a status.
func (rm *REDMetrics) Begin(ctx context.Context, op string) func(status string) {
	if rm == nil {
		return func(string) {}
	}

	start := timeNow()
	done := rm.TrackInflight(ctx, op)

	return func(status string) {
		done()
		rm.RecordRequest(ctx, op, status, timeSince(start))
	}
}

// RecordRequest records a completed request.
func (rm *REDMetrics) RecordRequest(ctx context.Context, op, status string, duration time.Duration) {
	if rm == nil {
		return
	}

	opAttr := attribute.String(attrOp, op)
	attrs := metric.WithAttributes(opAttr, attribute.String(attrStatus, status))

	rm.requests.Add(ctx, 1, attrs)
	rm.duration.Record(ctx, duration.Seconds(), attrs)

	if status == StatusError {
		rm.failures.Add(ctx, 1, metric.WithAttributes(opAttr))
	}
}

// TrackInflight increments the in-flight gauge and returns its decrement.
func (rm *REDMetrics) TrackInflight(ctx context.Context, op string) func() {
	if rm == nil {
		return func() {}
	}

	attrs := metric.WithAttributes(attribute.String(attrOp, op))
	rm.inflight.Add(ctx, 1, attrs)

	return func() {
		rm.inflight.Add(ctx, -1, attrs)
	}
}

// StatusOf maps an error onto a request status.
func StatusOf(err error) string {
	if err != nil {
		return StatusError
	}

	return StatusOK
}
