// Package pipeline runs the end-to-end documentation flow: analyze a path,
// build the documentation model and write the HTML site.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/Sumatoshi-tech/autodoc/pkg/autodoc"
	"github.com/Sumatoshi-tech/autodoc/pkg/docgen"
	"github.com/Sumatoshi-tech/autodoc/pkg/observability"
)

// ErrPathNotFound is returned when the code path does not exist.
var ErrPathNotFound = errors.New("the specified path does not exist")

// Options configures Run. Zero values use package defaults.
type Options struct {
	Analyzer *autodoc.Analyzer
	Writer   *docgen.HTMLWriter
	Logger   *slog.Logger
	Tracer   trace.Tracer
}

func (o Options) withDefaults() Options {
	if o.Logger == nil {
		o.Logger = slog.Default()
	}

	if o.Tracer == nil {
		o.Tracer = otel.Tracer(observability.TracerName)
	}

	if o.Analyzer == nil {
		o.Analyzer = autodoc.NewAnalyzer(autodoc.WithLogger(o.Logger), autodoc.WithTracer(o.Tracer))
	}

	if o.Writer == nil {
		o.Writer = docgen.NewHTMLWriter(docgen.WithLogger(o.Logger), docgen.WithTracer(o.Tracer))
	}

	return o
}

// Result is what a run produced.
type Result struct {
	Report        *autodoc.Report
	Documentation *docgen.Documentation
}

// Run analyzes codePath and writes interactive documentation to outputPath.
func Run(ctx context.Context, codePath, outputPath string, opts Options) (res *Result, err error) {
	opts = opts.withDefaults()
	logger := opts.Logger

	ctx, span := opts.Tracer.Start(ctx, observability.SpanRun,
		trace.WithAttributes(attribute.String("file.path", codePath)))
	defer func() {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, "run failed")
			logger.ErrorContext(ctx, "documentation run failed", "path", codePath, "error", err)
		}

		span.End()
	}()

	logger.InfoContext(ctx, "starting autodoc", "path", codePath)

	_, err = os.Stat(codePath)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrPathNotFound, codePath)
	}

	logger.InfoContext(ctx, "analyzing code", "path", codePath)

	report, err := opts.Analyzer.AnalyzePath(ctx, codePath)
	if err != nil {
		return nil, fmt.Errorf("analyze: %w", err)
	}

	logger.InfoContext(ctx, "generating documentation",
		"files", len(report.Files), "failures", report.Failures())

	_, genSpan := opts.Tracer.Start(ctx, observability.SpanGenerate)
	doc := docgen.Generate(report)
	genSpan.End()

	logger.InfoContext(ctx, "creating interactive docs", "output", outputPath)

	err = opts.Writer.Write(ctx, doc, outputPath)
	if err != nil {
		return nil, fmt.Errorf("write documentation: %w", err)
	}

	logger.InfoContext(ctx, "documentation generation complete", "output", outputPath)

	return &Result{Report: report, Documentation: doc}, nil
}
