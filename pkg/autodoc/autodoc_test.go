package autodoc_test

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/Sumatoshi-tech/autodoc/pkg/autodoc"
	"github.com/Sumatoshi-tech/autodoc/pkg/observability"
)

const (
	goodSource   = "def add(a, b):\n    return a + b\n"
	brokenSource = "def broken(:\n    pass\n"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()

	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
}

func newAnalyzer(opts ...autodoc.Option) *autodoc.Analyzer {
	return autodoc.NewAnalyzer(append([]autodoc.Option{autodoc.WithLogger(observability.Discard())}, opts...)...)
}

func analyzeSource(t *testing.T, an *autodoc.Analyzer, path, source string) autodoc.FileResult {
	t.Helper()

	res, err := an.AnalyzeSource(context.Background(), path, []byte(source))
	require.NoError(t, err)

	return res
}

func TestAnalyzePath_DirectoryWithBrokenFile(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "good.py"), goodSource)
	writeFile(t, filepath.Join(dir, "broken.py"), brokenSource)

	report, err := newAnalyzer().AnalyzePath(context.Background(), dir)
	require.NoError(t, err)
	require.Len(t, report.Files, 2)
	assert.Equal(t, 1, report.Failures())

	broken, ok := report.Lookup(filepath.Join(dir, "broken.py"))
	require.True(t, ok)
	assert.True(t, broken.Failed())
	assert.Contains(t, broken.Error, "invalid syntax")

	good, ok := report.Lookup(filepath.Join(dir, "good.py"))
	require.True(t, ok)
	require.False(t, good.Failed())

	_, hasAdd := good.Unit.Functions.Get("add")
	assert.True(t, hasAdd)
}

func TestAnalyzePath_SingleFile(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "mod.py")
	writeFile(t, path, goodSource)

	report, err := newAnalyzer().AnalyzePath(context.Background(), path)
	require.NoError(t, err)
	require.Len(t, report.Files, 1)
	assert.Equal(t, path, report.Files[0].Path)
	assert.Equal(t, path, report.Files[0].Unit.Path)
}

func TestAnalyzePath_MissingPath(t *testing.T) {
	t.Parallel()

	_, err := newAnalyzer().AnalyzePath(context.Background(), filepath.Join(t.TempDir(), "nope"))
	require.Error(t, err)

	var pathErr *autodoc.PathError
	require.ErrorAs(t, err, &pathErr)
	assert.ErrorIs(t, err, autodoc.ErrInvalidPath)
}

func TestAnalyzePath_OrderIndependentOfWorkers(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	for _, name := range []string{"a.py", "b.py", "c.py", "d.py", "e.py"} {
		writeFile(t, filepath.Join(dir, name), goodSource)
	}

	writeFile(t, filepath.Join(dir, "pkg", "inner.py"), brokenSource)

	sequential, err := newAnalyzer(autodoc.WithWorkers(1)).AnalyzePath(context.Background(), dir)
	require.NoError(t, err)

	parallel, err := newAnalyzer(autodoc.WithWorkers(8)).AnalyzePath(context.Background(), dir)
	require.NoError(t, err)

	want, err := json.Marshal(sequential)
	require.NoError(t, err)

	got, err := json.Marshal(parallel)
	require.NoError(t, err)

	assert.JSONEq(t, string(want), string(got))
	assert.Len(t, parallel.Files, 6)
}

func TestAnalyzePath_Cancelled(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "a.py"), goodSource)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := newAnalyzer().AnalyzePath(ctx, dir)
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestAnalyzePath_CancellableContextKeepsResultsApart(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "a.py"), goodSource)
	writeFile(t, filepath.Join(dir, "b.py"), brokenSource)

	an := newAnalyzer(autodoc.WithWorkers(4))

	for range 50 {
		ctx, cancel := context.WithCancel(context.Background())

		report, err := an.AnalyzePath(ctx, dir)
		require.NoError(t, err)
		cancel()

		require.Len(t, report.Files, 2)
		require.False(t, report.Files[0].Failed(), report.Files[0].Error)

		_, hasAdd := report.Files[0].Unit.Functions.Get("add")
		assert.True(t, hasAdd)
		assert.Contains(t, report.Files[1].Error, "invalid syntax")
	}
}

func TestAnalyzeFile_SizeLimit(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := filepath.Join(dir, "big.py")
	writeFile(t, path, goodSource)

	_, err := newAnalyzer(autodoc.WithMaxFileSize(8)).AnalyzeFile(context.Background(), path)
	require.ErrorIs(t, err, autodoc.ErrFileTooLarge)
	assert.Contains(t, err.Error(), path)

	_, err = newAnalyzer(autodoc.WithMaxFileSize(8)).AnalyzePath(context.Background(), dir)
	require.ErrorIs(t, err, autodoc.ErrFileTooLarge)

	res, err := newAnalyzer().AnalyzeFile(context.Background(), path)
	require.NoError(t, err)
	assert.False(t, res.Failed())
}

func TestAnalyzeSource_CancelledContextIsReturned(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := newAnalyzer().AnalyzeSource(ctx, "a.py", []byte(goodSource))
	require.ErrorIs(t, err, context.Canceled)
}

func TestDiscover(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "main.py"), goodSource)
	writeFile(t, filepath.Join(dir, "README.md"), "# readme\n")
	writeFile(t, filepath.Join(dir, "tool"), "#!/usr/bin/env python3\nprint('hi')\n")
	writeFile(t, filepath.Join(dir, "notes"), "plain text\n")
	writeFile(t, filepath.Join(dir, ".hidden", "skip.py"), goodSource)
	writeFile(t, filepath.Join(dir, "vendor", "dep.py"), goodSource)
	writeFile(t, filepath.Join(dir, "sub", "UPPER.PY"), goodSource)

	files, err := autodoc.Discover(dir, autodoc.DefaultDiscoverOptions())
	require.NoError(t, err)

	rel := make([]string, 0, len(files))
	for _, f := range files {
		r, relErr := filepath.Rel(dir, f)
		require.NoError(t, relErr)

		rel = append(rel, filepath.ToSlash(r))
	}

	assert.Equal(t, []string{".hidden/skip.py", "main.py", "sub/UPPER.PY", "vendor/dep.py"}, rel)

	filtered, err := autodoc.Discover(dir, autodoc.DiscoverOptions{
		Extensions:      []string{".py"},
		SkipHidden:      true,
		SkipVendor:      true,
		DetectByContent: true,
	})
	require.NoError(t, err)
	require.Len(t, filtered, 3)
	assert.Equal(t, filepath.Join(dir, "tool"), filtered[2])
}

func TestReport_JSONRoundTrip(t *testing.T) {
	t.Parallel()

	an := newAnalyzer()
	report := &autodoc.Report{Files: []autodoc.FileResult{
		analyzeSource(t, an, "z.py", goodSource),
		analyzeSource(t, an, "a.py", brokenSource),
	}}

	data, err := json.Marshal(report)
	require.NoError(t, err)

	var raw map[string]map[string]any
	require.NoError(t, json.Unmarshal(data, &raw))
	assert.Contains(t, raw["a.py"]["error"], "invalid syntax")
	assert.Equal(t, "z.py", raw["z.py"]["path"])

	var decoded autodoc.Report
	require.NoError(t, json.Unmarshal(data, &decoded))
	require.Len(t, decoded.Files, 2)
	assert.Equal(t, "z.py", decoded.Files[0].Path)
	assert.Equal(t, "a.py", decoded.Files[1].Path)
	assert.True(t, decoded.Files[1].Failed())
	assert.Equal(t, report.Files[1].Error, decoded.Files[1].Error)
}

func TestReport_YAMLRoundTrip(t *testing.T) {
	t.Parallel()

	an := newAnalyzer()
	report := &autodoc.Report{Files: []autodoc.FileResult{
		analyzeSource(t, an, "b.py", brokenSource),
		analyzeSource(t, an, "a.py", goodSource),
	}}

	data, err := yaml.Marshal(report)
	require.NoError(t, err)

	var decoded autodoc.Report
	require.NoError(t, yaml.Unmarshal(data, &decoded))
	require.Len(t, decoded.Files, 2)
	assert.Equal(t, "b.py", decoded.Files[0].Path)
	assert.True(t, decoded.Files[0].Failed())
	assert.Equal(t, "a.py", decoded.Files[1].Path)
	assert.NotNil(t, decoded.Files[1].Unit)
}

func TestPathError(t *testing.T) {
	t.Parallel()

	err := &autodoc.PathError{Path: "/x", Err: autodoc.ErrInvalidPath}
	assert.Equal(t, "/x: path is neither a file nor a directory", err.Error())
	assert.True(t, errors.Is(err, autodoc.ErrInvalidPath))
}
