package observability

import (
	"bytes"
	"context"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

func TestAttributeFilter_StripsUnknownKeys(t *testing.T) {
	t.Parallel()

	var logs bytes.Buffer

	recorder := tracetest.NewSpanRecorder()
	logger := slog.New(slog.NewTextHandler(&logs, nil))
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(NewAttributeFilter(recorder, logger)))

	_, span := tp.Tracer("test").Start(context.Background(), SpanAnalyzeFile)
	span.SetAttributes(
		attribute.String("file.path", "pkg/a.py"),
		attribute.Int("analysis.files", 3),
		attribute.String("source.text", "def f(): pass"),
		attribute.String("email", "dev@example.com"),
		attribute.String("random", "x"),
	)
	span.End()

	spans := recorder.Ended()
	require.Len(t, spans, 1)

	keys := make([]string, 0)
	for _, kv := range spans[0].Attributes() {
		keys = append(keys, string(kv.Key))
	}

	assert.ElementsMatch(t, []string{"file.path", "analysis.files"}, keys)
	assert.Contains(t, logs.String(), "key=source.text")
}

func TestAttributeFilter_ReportsEachKeyOnce(t *testing.T) {
	t.Parallel()

	var logs bytes.Buffer

	recorder := tracetest.NewSpanRecorder()
	logger := slog.New(slog.NewTextHandler(&logs, nil))
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(NewAttributeFilter(recorder, logger)))

	for range 3 {
		_, span := tp.Tracer("test").Start(context.Background(), SpanAnalyzeFile)
		span.SetAttributes(attribute.String("user.name", "dev"))
		span.End()
	}

	require.Len(t, recorder.Ended(), 3)
	assert.Equal(t, 1, strings.Count(logs.String(), "key=user.name"))
}

func TestExportable(t *testing.T) {
	t.Parallel()

	tests := []struct {
		key  string
		want bool
	}{
		{"file.path", true},
		{"mcp.tool", true},
		{"error", true},
		{"source.text", false},
		{"email", false},
		{"worker_index", false},
	}

	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			t.Parallel()

			assert.Equal(t, tt.want, exportable(tt.key))
		})
	}
}

func TestFilteringTracerProvider_SuppressesPerFileSpans(t *testing.T) {
	t.Parallel()

	recorder := tracetest.NewSpanRecorder()
	tp := NewFilteringTracerProvider(sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder)))
	tracer := tp.Tracer(TracerName)

	ctx, run := tracer.Start(context.Background(), SpanRun)
	_, file := tracer.Start(ctx, SpanAnalyzeFile)

	assert.False(t, file.IsRecording())

	file.End()
	run.End()

	spans := recorder.Ended()
	require.Len(t, spans, 1)
	assert.Equal(t, SpanRun, spans[0].Name())
}

func TestFilteringTracerProvider_CustomNames(t *testing.T) {
	t.Parallel()

	recorder := tracetest.NewSpanRecorder()
	tp := NewFilteringTracerProvider(sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder)), SpanWriteHTML)
	tracer := tp.Tracer(TracerName)

	_, write := tracer.Start(context.Background(), SpanWriteHTML)
	write.End()

	_, file := tracer.Start(context.Background(), SpanAnalyzeFile)
	file.End()

	spans := recorder.Ended()
	require.Len(t, spans, 1)
	assert.Equal(t, SpanAnalyzeFile, spans[0].Name())
}
