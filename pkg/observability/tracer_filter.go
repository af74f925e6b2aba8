package observability

import (
	"context"

	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/embedded"
	nooptrace "go.opentelemetry.io/otel/trace/noop"
)

// Span names.
const (
	SpanRun         = "autodoc.run"
	SpanAnalyzePath = "autodoc.analyze"
	SpanAnalyzeFile = "autodoc.analyze.file"
	SpanGenerate    = "autodoc.docgen.generate"
	SpanWriteHTML   = "autodoc.docgen.write"
)

// NewFilteringTracerProvider returns a provider whose tracers hand out
// non-recording spans for the muted names. Without names it mutes
// SpanAnalyzeFile, which would otherwise emit one span per source file.
func NewFilteringTracerProvider(delegate trace.TracerProvider, muted ...string) trace.TracerProvider {
	if len(muted) == 0 {
		muted = []string{SpanAnalyzeFile}
	}

	set := make(map[string]struct{}, len(muted))
	for _, name := range muted {
		set[name] = struct{}{}
	}

	return &mutingProvider{delegate: delegate, muted: set}
}

type mutingProvider struct {
	embedded.TracerProvider

	delegate trace.TracerProvider
	muted    map[string]struct{}
}

func (p *mutingProvider) Tracer(name string, opts ...trace.TracerOption) trace.Tracer {
	return &mutingTracer{
		Tracer: p.delegate.Tracer(name, opts...),
		muted:  p.muted,
	}
}

type mutingTracer struct {
	trace.Tracer

	muted map[string]struct{}
}

func (t *mutingTracer) Start(ctx context.Context, name string, opts ...trace.SpanStartOption) (context.Context, trace.Span) {
	if _, ok := t.muted[name]; ok {
		return nooptrace.Tracer{}.Start(ctx, name, opts...)
	}

	return t.Tracer.Start(ctx, name, opts...)
}
