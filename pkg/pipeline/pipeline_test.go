package pipeline_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"

	"github.com/Sumatoshi-tech/autodoc/pkg/observability"
	"github.com/Sumatoshi-tech/autodoc/pkg/pipeline"
)

func TestRun(t *testing.T) {
	t.Parallel()

	src := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(src, "good.py"), []byte("def f():\n    return 1\n"), 0o600))
	require.NoError(t, os.WriteFile(filepath.Join(src, "bad.py"), []byte("class :\n"), 0o600))

	recorder := tracetest.NewSpanRecorder()
	tp := trace.NewTracerProvider(trace.WithSpanProcessor(recorder))

	out := filepath.Join(t.TempDir(), "docs")

	res, err := pipeline.Run(context.Background(), src, out, pipeline.Options{
		Logger: observability.Discard(),
		Tracer: tp.Tracer(observability.TracerName),
	})
	require.NoError(t, err)
	require.Len(t, res.Report.Files, 2)
	assert.Equal(t, 1, res.Report.Failures())
	assert.Len(t, res.Documentation.Files, 2)

	assert.FileExists(t, filepath.Join(out, "index.html"))
	assert.FileExists(t, filepath.Join(out, "good.py.html"))
	assert.FileExists(t, filepath.Join(out, "bad.py.html"))

	var names []string
	for _, span := range recorder.Ended() {
		names = append(names, span.Name())
	}

	assert.Contains(t, names, observability.SpanRun)
	assert.Contains(t, names, observability.SpanAnalyzePath)
	assert.Contains(t, names, observability.SpanGenerate)
	assert.Contains(t, names, observability.SpanWriteHTML)
}

func TestRun_MissingPath(t *testing.T) {
	t.Parallel()

	_, err := pipeline.Run(context.Background(), filepath.Join(t.TempDir(), "nope"), t.TempDir(),
		pipeline.Options{Logger: observability.Discard()})
	require.ErrorIs(t, err, pipeline.ErrPathNotFound)
}
