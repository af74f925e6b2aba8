package observability

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

const (
	metricFilesTotal   = "autodoc.analysis.files.total"
	metricFileDuration = "autodoc.analysis.file.duration.seconds"
	metricBytesTotal   = "autodoc.analysis.bytes.total"
	metricPagesTotal   = "autodoc.docgen.pages.total"

	attrOutcome = "outcome"

	// OutcomeParsed and OutcomeFailed label per-file results.
	OutcomeParsed = "parsed"
	OutcomeFailed = "failed"
)

// AnalysisMetrics holds the per-file analysis instruments.
type AnalysisMetrics struct {
	filesTotal   metric.Int64Counter
	fileDuration metric.Float64Histogram
	bytesTotal   metric.Int64Counter
	pagesTotal   metric.Int64Counter
}

// NewAnalysisMetrics creates analysis metric instruments from the given meter.
func NewAnalysisMetrics(mt metric.Meter) (*AnalysisMetrics, error) {
	files, err := mt.Int64Counter(metricFilesTotal,
		metric.WithDescription("Source files analyzed, by outcome"),
		metric.WithUnit("{file}"),
	)
	if err != nil {
		return nil, fmt.Errorf("create %s: %w", metricFilesTotal, err)
	}

	duration, err := mt.Float64Histogram(metricFileDuration,
		metric.WithDescription("Per-file analysis duration in seconds"),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(durationBucketBoundaries...),
	)
	if err != nil {
		return nil, fmt.Errorf("create %s: %w", metricFileDuration, err)
	}

	bytesRead, err := mt.Int64Counter(metricBytesTotal,
		metric.WithDescription("Source bytes analyzed"),
		metric.WithUnit("By"),
	)
	if err != nil {
		return nil, fmt.Errorf("create %s: %w", metricBytesTotal, err)
	}

	pages, err := mt.Int64Counter(metricPagesTotal,
		metric.WithDescription("Documentation pages written"),
		metric.WithUnit("{page}"),
	)
	if err != nil {
		return nil, fmt.Errorf("create %s: %w", metricPagesTotal, err)
	}

	return &AnalysisMetrics{
		filesTotal:   files,
		fileDuration: duration,
		bytesTotal:   bytesRead,
		pagesTotal:   pages,
	}, nil
}

// RecordFile records one analyzed file. Safe on a nil receiver.
func (am *AnalysisMetrics) RecordFile(ctx context.Context, outcome string, size int, elapsed time.Duration) {
	if am == nil {
		return
	}

	attrs := metric.WithAttributes(attribute.String(attrOutcome, outcome))
	am.filesTotal.Add(ctx, 1, attrs)
	am.fileDuration.Record(ctx, elapsed.Seconds(), attrs)
	am.bytesTotal.Add(ctx, int64(size))
}

// RecordPages records written documentation pages. Safe on a nil receiver.
func (am *AnalysisMetrics) RecordPages(ctx context.Context, pages int) {
	if am == nil {
		return
	}

	am.pagesTotal.Add(ctx, int64(pages))
}
