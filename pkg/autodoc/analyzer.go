// Package autodoc analyzes Python files and directories into ordered
// reports of source units.
package autodoc

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"runtime"
	"time"

	"github.com/dustin/go-humanize"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"

	"github.com/Sumatoshi-tech/autodoc/pkg/analyzers/extract"
	"github.com/Sumatoshi-tech/autodoc/pkg/observability"
	"github.com/Sumatoshi-tech/autodoc/pkg/pyast"
)

// Analyzer runs the extractor over single files or whole directory trees.
type Analyzer struct {
	extractor   *extract.Extractor
	logger      *slog.Logger
	tracer      trace.Tracer
	metrics     *observability.AnalysisMetrics
	discover    DiscoverOptions
	workers     int
	maxFileSize int64
}

// Option configures an Analyzer.
type Option func(*Analyzer)

// WithExtractor sets the extractor. The default has no dictionary.
func WithExtractor(ex *extract.Extractor) Option {
	return func(a *Analyzer) { a.extractor = ex }
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(a *Analyzer) {
		if logger != nil {
			a.logger = logger
		}
	}
}

// WithTracer sets the tracer used for analysis spans.
func WithTracer(tracer trace.Tracer) Option {
	return func(a *Analyzer) {
		if tracer != nil {
			a.tracer = tracer
		}
	}
}

// WithMetrics records per-file outcomes. Nil disables recording.
func WithMetrics(m *observability.AnalysisMetrics) Option {
	return func(a *Analyzer) { a.metrics = m }
}

// WithWorkers bounds concurrent file analysis. Zero or less means one
// worker per CPU.
func WithWorkers(n int) Option {
	return func(a *Analyzer) { a.workers = n }
}

// WithDiscoverOptions controls directory walks.
func WithDiscoverOptions(opts DiscoverOptions) Option {
	return func(a *Analyzer) { a.discover = opts }
}

// WithMaxFileSize sets the per-file size limit in bytes. Zero or less, the
// default, disables the limit.
func WithMaxFileSize(n int64) Option {
	return func(a *Analyzer) { a.maxFileSize = n }
}

// NewAnalyzer creates an Analyzer.
func NewAnalyzer(opts ...Option) *Analyzer {
	a := &Analyzer{
		logger:   slog.Default(),
		tracer:   otel.Tracer(observability.TracerName),
		discover: DefaultDiscoverOptions(),
	}

	for _, opt := range opts {
		opt(a)
	}

	if a.extractor == nil {
		a.extractor = extract.New(extract.WithLogger(a.logger))
	}

	return a
}

// AnalyzeSource extracts one in-memory file. A syntax error becomes the
// result's Error; any other failure is returned.
func (a *Analyzer) AnalyzeSource(ctx context.Context, path string, source []byte) (FileResult, error) {
	start := time.Now()

	unit, err := a.extractor.Extract(ctx, path, source)

	var synErr *pyast.SyntaxError

	switch {
	case errors.As(err, &synErr):
		a.record(ctx, observability.OutcomeFailed, len(source), start)
		a.logger.ErrorContext(ctx, "failed to parse file",
			"path", path, "line", synErr.Line, "column", synErr.Column, "error", synErr.Detail)

		return FileResult{Path: path, Error: synErr.Error()}, nil
	case err != nil:
		return FileResult{}, err
	}

	a.record(ctx, observability.OutcomeParsed, len(source), start)

	return FileResult{Path: path, Unit: unit}, nil
}

// AnalyzeFile reads and extracts one file. Read failures and files over
// the size limit are returned as errors.
func (a *Analyzer) AnalyzeFile(ctx context.Context, path string) (FileResult, error) {
	ctx, span := a.tracer.Start(ctx, observability.SpanAnalyzeFile,
		trace.WithAttributes(attribute.String("file.path", path)))
	defer span.End()

	source, err := a.readFile(path)
	if err != nil {
		span.SetStatus(codes.Error, "read failed")

		return FileResult{}, err
	}

	res, err := a.AnalyzeSource(ctx, path, source)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())

		return FileResult{}, err
	}

	if res.Failed() {
		span.SetStatus(codes.Error, "parse failed")
	}

	return res, nil
}

// AnalyzePath analyzes a single file or every source file under a
// directory. Results keep discovery order regardless of worker count. A
// path that is neither a file nor a directory returns a *PathError; a file
// that cannot be read aborts the batch.
func (a *Analyzer) AnalyzePath(ctx context.Context, path string) (*Report, error) {
	ctx, span := a.tracer.Start(ctx, observability.SpanAnalyzePath,
		trace.WithAttributes(attribute.String("file.path", path)))
	defer span.End()

	info, err := os.Stat(path)
	if err != nil {
		span.SetStatus(codes.Error, "stat failed")

		return nil, newPathError(path, err)
	}

	var files []string

	switch {
	case info.Mode().IsRegular():
		files = []string{path}
	case info.IsDir():
		files, err = Discover(path, a.discover)
		if err != nil {
			span.SetStatus(codes.Error, "discovery failed")

			return nil, err
		}

		a.logger.DebugContext(ctx, "discovered source files", "path", path, "files", len(files))
	default:
		span.SetStatus(codes.Error, "not a file or directory")

		return nil, newPathError(path, nil)
	}

	results, err := a.analyzeAll(ctx, files)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "analysis aborted")

		return nil, err
	}

	report := &Report{Files: results}
	span.SetAttributes(
		attribute.Int("analysis.files", len(results)),
		attribute.Int("analysis.failures", report.Failures()),
	)

	return report, nil
}

// analyzeAll runs at most a.workers files at once. Each goroutine writes
// only its own slot. The first returned error cancels the rest.
func (a *Analyzer) analyzeAll(ctx context.Context, files []string) ([]FileResult, error) {
	workers := a.workers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}

	results := make([]FileResult, len(files))

	group, gctx := errgroup.WithContext(ctx)
	group.SetLimit(workers)

	for i, path := range files {
		group.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}

			res, err := a.AnalyzeFile(gctx, path)
			if err != nil {
				return err
			}

			results[i] = res

			return nil
		})
	}

	if err := group.Wait(); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, fmt.Errorf("analysis interrupted: %w", ctxErr)
		}

		return nil, err
	}

	return results, nil
}

func (a *Analyzer) readFile(path string) ([]byte, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("stat %s: %w", path, err)
	}

	if a.maxFileSize > 0 && info.Size() > a.maxFileSize {
		return nil, fmt.Errorf("%s: %w: %s is larger than %s", path, ErrFileTooLarge,
			humanize.IBytes(uint64(info.Size())), humanize.IBytes(uint64(a.maxFileSize)))
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}

	return data, nil
}

func (a *Analyzer) record(ctx context.Context, outcome string, size int, start time.Time) {
	if a.metrics != nil {
		a.metrics.RecordFile(ctx, outcome, size, time.Since(start))
	}
}
