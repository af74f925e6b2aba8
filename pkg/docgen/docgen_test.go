package docgen_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Sumatoshi-tech/autodoc/pkg/alg/mapx"
	"github.com/Sumatoshi-tech/autodoc/pkg/analyzers/extract"
	"github.com/Sumatoshi-tech/autodoc/pkg/autodoc"
	"github.com/Sumatoshi-tech/autodoc/pkg/docgen"
	"github.com/Sumatoshi-tech/autodoc/pkg/observability"
)

const greeterSource = `"""Greeting helpers."""
import os
from typing import List

DEFAULT = "hi"


class Greeter(Base):
    """Says **hello**."""
    greeting = "hi"

    def greet(self, name: str) -> str:
        """Greet someone."""
        return self.greeting + name


def shout(text):
    return text.upper()
`

const brokenSource = "def broken(:\n    pass\n"

func strPtr(s string) *string { return &s }

func analyze(t *testing.T, files map[string]string, order ...string) (*autodoc.Report, string) {
	t.Helper()

	dir := t.TempDir()
	an := autodoc.NewAnalyzer(
		autodoc.WithLogger(observability.Discard()),
		autodoc.WithExtractor(extract.New(extract.WithLogger(observability.Discard()), extract.WithMetrics(true))),
	)

	report := &autodoc.Report{}

	for _, name := range order {
		path := filepath.Join(dir, name)
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte(files[name]), 0o600))

		res, err := an.AnalyzeFile(context.Background(), path)
		require.NoError(t, err)

		report.Files = append(report.Files, res)
	}

	return report, dir
}

func TestGenerate(t *testing.T) {
	t.Parallel()

	report, dir := analyze(t, map[string]string{
		"greeter.py": greeterSource,
		"broken.py":  brokenSource,
	}, "greeter.py", "broken.py")

	doc := docgen.Generate(report)
	require.Len(t, doc.Files, 2)

	greeter := doc.Files[0]
	assert.Equal(t, filepath.Join(dir, "greeter.py"), greeter.Path)
	assert.False(t, greeter.Failed())
	assert.Equal(t, "Greeting helpers.", greeter.ModuleDocstring)
	assert.Equal(t, "import os\nimport typing.List", greeter.Imports)
	assert.Equal(t, []string{"import os", "import typing.List"}, greeter.ImportLines())
	assert.Equal(t, "DEFAULT", greeter.GlobalVariables)
	assert.Equal(t, []string{"Greeter"}, greeter.Classes.Keys())
	assert.Equal(t, []string{"shout"}, greeter.Functions.Keys())
	assert.Contains(t, greeter.InferredDescription, "- 1 classe(s)")
	require.NotNil(t, greeter.Complexity)

	broken := doc.Files[1]
	assert.True(t, broken.Failed())
	assert.Contains(t, broken.Error, "invalid syntax")
	assert.Nil(t, broken.Classes)
	assert.Empty(t, broken.Imports)
}

func TestClassesStub(t *testing.T) {
	t.Parallel()

	var methods mapx.OrderedMap[*extract.FunctionRecord]
	methods.Set("greet", &extract.FunctionRecord{
		Docstring: strPtr("Greet someone."),
		Args:      []extract.Arg{{Name: "self"}, {Name: "name", Annotation: "str"}},
		Returns:   strPtr("str"),
	})
	methods.Set("reset", &extract.FunctionRecord{
		Args:                []extract.Arg{{Name: "self"}},
		InferredDescription: "This function takes 1 arguments and returns None.",
	})

	var classes mapx.OrderedMap[*extract.ClassRecord]
	classes.Set("Greeter", &extract.ClassRecord{
		Docstring:      strPtr("Says hello."),
		Methods:        methods,
		ClassVariables: []string{"greeting"},
		BaseClasses:    []string{"Base", "abc.ABC"},
	})
	classes.Set("Empty", &extract.ClassRecord{
		InferredDescription: "This class has 0 methods and 0 attributes.",
	})

	want := "class Greeter(Base, abc.ABC):\n" +
		"    \"\"\"Says hello.\"\"\"\n\n" +
		"    greeting\n" +
		"    def greet(self, name: str) -> str:\n" +
		"        \"\"\"Greet someone.\"\"\"\n\n" +
		"    def reset(self):\n" +
		"        # This function takes 1 arguments and returns None.\n\n" +
		"\n" +
		"class Empty:\n" +
		"    # This class has 0 methods and 0 attributes.\n\n" +
		"\n"

	assert.Equal(t, want, docgen.ClassesStub(&classes))
}

func TestFunctionsStub(t *testing.T) {
	t.Parallel()

	var functions mapx.OrderedMap[*extract.FunctionRecord]
	functions.Set("main", &extract.FunctionRecord{Docstring: strPtr("")})
	functions.Set("run", &extract.FunctionRecord{
		Args: []extract.Arg{{Name: "x", Annotation: "int"}, {Name: "*rest"}},
	})

	assert.Equal(t, "def main():\n\ndef run(x: int, *rest):\n\n", docgen.FunctionsStub(&functions))
}

func TestFormatInferredDescription(t *testing.T) {
	t.Parallel()

	got := docgen.FormatInferredDescription("This module contains:\n- 1 classe(s)\n\nPurpose: a <b>\nplain")

	assert.Equal(t,
		"<h4>This module contains:</h4><ul><li>1 classe(s)</li></ul><p>Purpose: a &lt;b&gt;</p><p>plain</p>",
		string(got))
	assert.Equal(t, "</ul>", string(docgen.FormatInferredDescription("")))
}

func TestRenderMarkdown(t *testing.T) {
	t.Parallel()

	got, err := docgen.RenderMarkdown("Says **hello**.\n\n<script>alert(1)</script>")
	require.NoError(t, err)
	assert.Contains(t, string(got), "<strong>hello</strong>")
	assert.NotContains(t, string(got), "<script>")
}

func TestHighlighter(t *testing.T) {
	t.Parallel()

	h := docgen.NewHighlighter(docgen.DefaultHighlightStyle)

	listing, err := h.Highlight([]byte("def f():\n    return 1\n"))
	require.NoError(t, err)
	assert.Contains(t, string(listing), "chroma")
	assert.Contains(t, string(listing), "lnt")

	css := &testWriter{}
	require.NoError(t, h.WriteCSS(css))
	assert.Contains(t, css.String(), ".chroma")
}

type testWriter struct{ data []byte }

func (w *testWriter) Write(p []byte) (int, error) {
	w.data = append(w.data, p...)

	return len(p), nil
}

func (w *testWriter) String() string { return string(w.data) }

func TestPageNames(t *testing.T) {
	t.Parallel()

	doc := &docgen.Documentation{Files: []docgen.FileDoc{
		{Path: "a/util.py"},
		{Path: "b/util.py"},
		{Path: "index"},
		{Path: "c/util.py"},
	}}

	assert.Equal(t,
		[]string{"util.py.html", "util.py-2.html", "index-2.html", "util.py-3.html"},
		docgen.PageNames(doc))
}

func writeSite(t *testing.T, report *autodoc.Report, out string) {
	t.Helper()

	clock := func() time.Time { return time.Date(2024, 3, 1, 12, 30, 45, 0, time.UTC) }
	w := docgen.NewHTMLWriter(
		docgen.WithLogger(observability.Discard()),
		docgen.WithClock(clock),
		docgen.WithTitle("Greeter Docs"),
	)

	require.NoError(t, w.Write(context.Background(), docgen.Generate(report), out))
}

func readFile(t *testing.T, path string) string {
	t.Helper()

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	return string(data)
}

func TestHTMLWriter_Write(t *testing.T) {
	t.Parallel()

	report, _ := analyze(t, map[string]string{
		"greeter.py": greeterSource,
		"broken.py":  brokenSource,
	}, "greeter.py", "broken.py")

	out := filepath.Join(t.TempDir(), "site")
	writeSite(t, report, out)

	for _, name := range []string{"greeter.py.html", "broken.py.html", "index.html",
		"complexity.html", "style.css", "script.js", "highlight.css"} {
		assert.FileExists(t, filepath.Join(out, name))
	}

	page := readFile(t, filepath.Join(out, "greeter.py.html"))
	assert.Contains(t, page, "<h3>class Greeter(Base)</h3>")
	assert.Contains(t, page, "<strong>hello</strong>")
	assert.Contains(t, page, `id="method-greet"`)
	assert.Contains(t, page, "greet(self, name: str)")
	assert.Contains(t, page, "<code>str</code>")
	assert.Contains(t, page, `id="function-shout"`)
	assert.Contains(t, page, "This function takes 1 arguments and returns None.")
	assert.Contains(t, page, "<li><code>import typing.List</code></li>")
	assert.Contains(t, page, "<h4>This module contains:</h4>")
	assert.Contains(t, page, `class="source"`)

	broken := readFile(t, filepath.Join(out, "broken.py.html"))
	assert.Contains(t, broken, `class="error"`)
	assert.Contains(t, broken, "invalid syntax")

	index := readFile(t, filepath.Join(out, "index.html"))
	assert.Contains(t, index, "Generated on 2024-03-01 12:30:45")
	assert.Contains(t, index, `href="greeter.py.html"`)
	assert.Contains(t, index, `href="complexity.html"`)
	assert.Contains(t, index, "<h1>Greeter Docs</h1>")

	chart := readFile(t, filepath.Join(out, "complexity.html"))
	assert.Contains(t, chart, "Maintainability Index")
	assert.Contains(t, chart, "echarts.min.js")
}

func TestHTMLWriter_NoComplexity(t *testing.T) {
	t.Parallel()

	an := autodoc.NewAnalyzer(autodoc.WithLogger(observability.Discard()))
	res, err := an.AnalyzeSource(context.Background(), "missing/mod.py", []byte("x = 1\n"))
	require.NoError(t, err)

	report := &autodoc.Report{Files: []autodoc.FileResult{res}}

	out := t.TempDir()
	w := docgen.NewHTMLWriter(docgen.WithLogger(observability.Discard()))
	require.NoError(t, w.Write(context.Background(), docgen.Generate(report), out))

	assert.NoFileExists(t, filepath.Join(out, docgen.ChartPage))
	page := readFile(t, filepath.Join(out, "mod.py.html"))
	assert.Contains(t, page, "No imports found.")
	assert.NotContains(t, page, `id="source"`)
}

func TestCompareSites(t *testing.T) {
	t.Parallel()

	report, _ := analyze(t, map[string]string{
		"greeter.py": greeterSource,
		"other.py":   "y = 2\n",
	}, "greeter.py", "other.py")

	fresh := filepath.Join(t.TempDir(), "fresh")
	existing := filepath.Join(t.TempDir(), "existing")
	writeSite(t, report, fresh)
	writeSite(t, report, existing)

	drifts, err := docgen.CompareSites(fresh, existing)
	require.NoError(t, err)
	assert.Empty(t, drifts)

	page := filepath.Join(existing, "greeter.py.html")
	require.NoError(t, os.WriteFile(page, []byte(readFile(t, page)+"<p>stale</p>\n"), 0o600))
	require.NoError(t, os.Remove(filepath.Join(existing, "other.py.html")))
	require.NoError(t, os.WriteFile(filepath.Join(existing, "gone.py.html"), []byte("x"), 0o600))

	drifts, err = docgen.CompareSites(fresh, existing)
	require.NoError(t, err)
	require.Len(t, drifts, 3)

	assert.Equal(t, "greeter.py.html", drifts[0].Page)
	assert.Equal(t, docgen.DriftStale, drifts[0].State)
	assert.Equal(t, 1, drifts[0].Removed)
	assert.Equal(t, docgen.Drift{Page: "other.py.html", State: docgen.DriftMissing}, drifts[1])
	assert.Equal(t, docgen.Drift{Page: "gone.py.html", State: docgen.DriftExtra}, drifts[2])
	assert.Equal(t, "gone.py.html: extra", drifts[2].String())
}
