package maintainability_test

import (
	"context"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Sumatoshi-tech/autodoc/pkg/analyzers/maintainability"
	"github.com/Sumatoshi-tech/autodoc/pkg/pyast"
)

func TestIndex_DegenerateInputs(t *testing.T) {
	t.Parallel()

	assert.Zero(t, maintainability.Index(0, 0, 0))
	assert.Zero(t, maintainability.Index(10, 0, 3))
	assert.Zero(t, maintainability.Index(0, 2, 3))
	assert.Zero(t, maintainability.Index(-1, 2, 3))
	assert.Zero(t, maintainability.Index(math.NaN(), 2, 3))
}

func TestIndex_Formula(t *testing.T) {
	t.Parallel()

	want := (171 - 5.2*math.Log(100) - 0.23*4 - 16.2*math.Log(3)) * 100 / 171
	assert.InDelta(t, want, maintainability.Index(100, 3, 4), 1e-9)
}

func TestSummarize_EmptyModule(t *testing.T) {
	t.Parallel()

	for _, source := range []string{"", "\"\"\"Only a docstring.\"\"\"\n", "import os\n"} {
		summary, err := maintainability.Summarize(context.Background(), []byte(source))
		require.NoError(t, err)
		assert.Zero(t, summary.Maintainability, source)
		assert.Zero(t, summary.Cyclomatic, source)
		assert.Equal(t, "0", summary.FormatIndex())
	}
}

func TestSummarize_Module(t *testing.T) {
	t.Parallel()

	source := "x = a + b\n\ndef f(y):\n    if y:\n        return 1\n    return 0\n"

	summary, err := maintainability.Summarize(context.Background(), []byte(source))
	require.NoError(t, err)
	assert.Equal(t, 2, summary.Cyclomatic)
	assert.Positive(t, summary.Maintainability)
	assert.NotEqual(t, "0", summary.FormatIndex())
}

func TestAnalyze_ReportsMeasurements(t *testing.T) {
	t.Parallel()

	tree, err := pyast.Parse(context.Background(), []byte("x = a + b\n"))
	require.NoError(t, err)

	defer tree.Close()

	report := maintainability.Analyze(tree.Root(), tree.Source)
	assert.Empty(t, report.Blocks)
	assert.Equal(t, 0, report.Cyclomatic)

	want := (171 - 5.2*math.Log(3*math.Log2(3)) - 16.2*math.Log(0.5)) * 100 / 171
	assert.InDelta(t, want, report.Maintainability, 1e-9)
	assert.Equal(t, report.Summary, maintainability.SummarizeTree(tree.Root(), tree.Source))
}

func TestSummarize_SyntaxError(t *testing.T) {
	t.Parallel()

	_, err := maintainability.Summarize(context.Background(), []byte("def (:\n"))
	require.ErrorIs(t, err, pyast.ErrSyntax)
}
