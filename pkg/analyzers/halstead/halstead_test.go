package halstead_test

import (
	"context"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Sumatoshi-tech/autodoc/pkg/analyzers/halstead"
	"github.com/Sumatoshi-tech/autodoc/pkg/pyast"
)

func analyze(t *testing.T, source string) halstead.Report {
	t.Helper()

	tree, err := pyast.Parse(context.Background(), []byte(source))
	require.NoError(t, err)

	t.Cleanup(tree.Close)

	return halstead.Analyze(tree.Root(), tree.Source)
}

func TestAnalyze_Counts(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name                   string
		source                 string
		n1, n2, total1, total2 int
	}{
		{name: "binary", source: "x = a + b\n", n1: 1, n2: 2, total1: 1, total2: 2},
		{name: "boolean chain", source: "ok = a and b and c\n", n1: 1, n2: 3, total1: 1, total2: 3},
		{name: "chained comparison", source: "ok = a < b < c\n", n1: 1, n2: 3, total1: 2, total2: 3},
		{name: "augmented assignment", source: "x += 1\n", n1: 1, n2: 2, total1: 1, total2: 2},
		{name: "mixed", source: "y = -a * b\nz = not y\n", n1: 3, n2: 4, total1: 3, total2: 4},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			report := analyze(t, tt.source)
			assert.Equal(t, tt.n1, report.Total.DistinctOperators)
			assert.Equal(t, tt.n2, report.Total.DistinctOperands)
			assert.Equal(t, tt.total1, report.Total.TotalOperators)
			assert.Equal(t, tt.total2, report.Total.TotalOperands)
		})
	}
}

func TestAnalyze_DerivedMeasures(t *testing.T) {
	t.Parallel()

	report := analyze(t, "x = a + b\n")

	assert.Equal(t, 3, report.Total.Vocabulary)
	assert.Equal(t, 3, report.Total.Length)
	assert.InDelta(t, 3*math.Log2(3), report.Total.Volume, 1e-9)
	assert.InDelta(t, 0.5, report.Total.Difficulty, 1e-9)
	assert.InDelta(t, report.Total.Volume*0.5, report.Total.Effort, 1e-9)
}

func TestAnalyze_FunctionContexts(t *testing.T) {
	t.Parallel()

	report := analyze(t, "def f(a):\n    return a + a\n\ndef g(a):\n    return a + 1\n")

	require.Len(t, report.Functions, 2)
	assert.Equal(t, "f", report.Functions[0].Name)
	assert.Equal(t, 1, report.Functions[0].DistinctOperands)
	assert.Equal(t, 2, report.Functions[0].TotalOperands)

	// "a" in f and "a" in g are different operands.
	assert.Equal(t, 3, report.Total.DistinctOperands)
	assert.Equal(t, 2, report.Total.TotalOperators)
}

func TestAnalyze_Empty(t *testing.T) {
	t.Parallel()

	report := analyze(t, "")
	assert.Equal(t, halstead.Metrics{}, report.Total)
	assert.Empty(t, report.Functions)
}

func TestCalculate(t *testing.T) {
	t.Parallel()

	m := halstead.Calculate(0, 0, 0, 0)
	assert.Zero(t, m.Volume)
	assert.Zero(t, m.Difficulty)
	assert.Zero(t, m.DeliveredBugs)

	m = halstead.Calculate(2, 4, 6, 8)
	assert.Equal(t, 6, m.Vocabulary)
	assert.Equal(t, 14, m.Length)
	assert.InDelta(t, 14*math.Log2(6), m.Volume, 1e-9)
	assert.InDelta(t, 2.0, m.Difficulty, 1e-9)
	assert.InDelta(t, 2*math.Log2(2)+4*math.Log2(4), m.EstimatedLength, 1e-9)
	assert.InDelta(t, m.Effort/halstead.TimeConstant, m.TimeToProgram, 1e-9)
}
