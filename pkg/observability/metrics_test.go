package observability_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"

	"github.com/Sumatoshi-tech/autodoc/pkg/observability"
)

func newTestMeterProvider(t *testing.T) (*sdkmetric.MeterProvider, *sdkmetric.ManualReader) {
	t.Helper()

	reader := sdkmetric.NewManualReader()

	return sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader)), reader
}

func collectMetrics(t *testing.T, reader *sdkmetric.ManualReader) metricdata.ResourceMetrics {
	t.Helper()

	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(context.Background(), &rm))

	return rm
}

func findMetric(rm metricdata.ResourceMetrics, name string) *metricdata.Metrics {
	for idx := range rm.ScopeMetrics {
		for midx := range rm.ScopeMetrics[idx].Metrics {
			if rm.ScopeMetrics[idx].Metrics[midx].Name == name {
				return &rm.ScopeMetrics[idx].Metrics[midx]
			}
		}
	}

	return nil
}

func sumOf(t *testing.T, m *metricdata.Metrics) int64 {
	t.Helper()
	require.NotNil(t, m)

	sum, ok := m.Data.(metricdata.Sum[int64])
	require.True(t, ok)

	var total int64
	for _, dp := range sum.DataPoints {
		total += dp.Value
	}

	return total
}

func TestREDMetrics_RecordRequest(t *testing.T) {
	t.Parallel()

	mp, reader := newTestMeterProvider(t)

	red, err := observability.NewREDMetrics(mp.Meter("test"))
	require.NoError(t, err)

	ctx := context.Background()
	red.RecordRequest(ctx, "autodoc_analyze", observability.StatusOK, 10*time.Millisecond)
	red.RecordRequest(ctx, "autodoc_analyze", observability.StatusError, 20*time.Millisecond)

	rm := collectMetrics(t, reader)
	assert.Equal(t, int64(2), sumOf(t, findMetric(rm, "autodoc.requests.total")))
	assert.Equal(t, int64(1), sumOf(t, findMetric(rm, "autodoc.errors.total")))
	assert.NotNil(t, findMetric(rm, "autodoc.request.duration.seconds"))
}

func TestREDMetrics_TrackInflight(t *testing.T) {
	t.Parallel()

	mp, reader := newTestMeterProvider(t)

	red, err := observability.NewREDMetrics(mp.Meter("test"))
	require.NoError(t, err)

	done := red.TrackInflight(context.Background(), "hover")
	assert.Equal(t, int64(1), sumOf(t, findMetric(collectMetrics(t, reader), "autodoc.inflight.requests")))

	done()
	assert.Equal(t, int64(0), sumOf(t, findMetric(collectMetrics(t, reader), "autodoc.inflight.requests")))
}

func TestAnalysisMetrics_RecordFile(t *testing.T) {
	t.Parallel()

	mp, reader := newTestMeterProvider(t)

	am, err := observability.NewAnalysisMetrics(mp.Meter("test"))
	require.NoError(t, err)

	ctx := context.Background()
	am.RecordFile(ctx, observability.OutcomeParsed, 120, time.Millisecond)
	am.RecordFile(ctx, observability.OutcomeFailed, 30, time.Millisecond)
	am.RecordPages(ctx, 3)

	rm := collectMetrics(t, reader)
	assert.Equal(t, int64(2), sumOf(t, findMetric(rm, "autodoc.analysis.files.total")))
	assert.Equal(t, int64(150), sumOf(t, findMetric(rm, "autodoc.analysis.bytes.total")))
	assert.Equal(t, int64(3), sumOf(t, findMetric(rm, "autodoc.docgen.pages.total")))

	durations := findMetric(rm, "autodoc.analysis.file.duration.seconds")
	require.NotNil(t, durations)

	hist, ok := durations.Data.(metricdata.Histogram[float64])
	require.True(t, ok)
	require.Len(t, hist.DataPoints, 2)
	assert.Equal(t, 0.0005, hist.DataPoints[0].Bounds[0])
}

func TestMetrics_NilReceivers(t *testing.T) {
	t.Parallel()

	var (
		red *observability.REDMetrics
		am  *observability.AnalysisMetrics
	)

	ctx := context.Background()

	assert.NotPanics(t, func() {
		red.RecordRequest(ctx, "op", observability.StatusOK, time.Second)
		red.TrackInflight(ctx, "op")()
		am.RecordFile(ctx, observability.OutcomeParsed, 1, time.Second)
		am.RecordPages(ctx, 1)
	})
}

func TestREDMetrics_Begin(t *testing.T) {
	t.Parallel()

	mp, reader := newTestMeterProvider(t)

	red, err := observability.NewREDMetrics(mp.Meter("test"))
	require.NoError(t, err)

	finish := red.Begin(context.Background(), "mcp.autodoc_infer")
	assert.Equal(t, int64(1), sumOf(t, findMetric(collectMetrics(t, reader), "autodoc.inflight.requests")))

	finish(observability.StatusError)

	rm := collectMetrics(t, reader)
	assert.Equal(t, int64(0), sumOf(t, findMetric(rm, "autodoc.inflight.requests")))
	assert.Equal(t, int64(1), sumOf(t, findMetric(rm, "autodoc.requests.total")))
	assert.Equal(t, int64(1), sumOf(t, findMetric(rm, "autodoc.errors.total")))
}

func TestStatusOf(t *testing.T) {
	t.Parallel()

	assert.Equal(t, observability.StatusOK, observability.StatusOf(nil))
	assert.Equal(t, observability.StatusError, observability.StatusOf(context.Canceled))
}
