// Package maintainability summarizes a Python module's complexity as a
// total cyclomatic complexity and a maintainability index.
package maintainability

import (
	"context"
	"fmt"
	"math"
	"strconv"

	sitter "github.com/alexaandru/go-tree-sitter-bare"

	"github.com/Sumatoshi-tech/autodoc/pkg/analyzers/complexity"
	"github.com/Sumatoshi-tech/autodoc/pkg/analyzers/halstead"
	"github.com/Sumatoshi-tech/autodoc/pkg/pyast"
)

// Maintainability index coefficients.
const (
	miBase         = 171.0
	miVolumeCoef   = 5.2
	miCCCoef       = 0.23
	miDifficulty   = 16.2
	miPercentScale = 100.0
)

// Summary is the module-level complexity digest.
type Summary struct {
	Cyclomatic      int     `json:"cyclomatic"      yaml:"cyclomatic"`
	Maintainability float64 `json:"maintainability" yaml:"maintainability"`
}

// FormatIndex renders a maintainability index the way it appears in
// descriptions: shortest exact decimal, "0" for zero.
func (s Summary) FormatIndex() string {
	return strconv.FormatFloat(s.Maintainability, 'f', -1, 64)
}

// Report is a Summary together with the measurements it was derived from.
type Report struct {
	Summary  `yaml:",inline"`
	Blocks   []complexity.Block `json:"blocks"   yaml:"blocks"`
	Halstead halstead.Report    `json:"halstead" yaml:"halstead"`
}

// Index computes the maintainability index
//
//	MI = (171 - 5.2*ln(V) - 0.23*C - 16.2*ln(D)) * 100 / 171
//
// from Halstead volume V, Halstead difficulty D and cyclomatic complexity C.
// When V or D is not positive, as for a module without operators, the
// index is 0.
func Index(volume, difficulty float64, cyclomatic int) float64 {
	if volume <= 0 || difficulty <= 0 || math.IsNaN(volume) || math.IsNaN(difficulty) {
		return 0
	}

	return (miBase - miVolumeCoef*math.Log(volume) - miCCCoef*float64(cyclomatic) -
		miDifficulty*math.Log(difficulty)) * miPercentScale / miBase
}

// Analyze measures a parsed module.
func Analyze(root sitter.Node, source []byte) Report {
	blocks := complexity.Analyze(root, source)
	hal := halstead.Analyze(root, source)
	cyclomatic := complexity.Total(blocks)

	return Report{
		Summary: Summary{
			Cyclomatic:      cyclomatic,
			Maintainability: Index(hal.Total.Volume, hal.Total.Difficulty, cyclomatic),
		},
		Blocks:   blocks,
		Halstead: hal,
	}
}

// SummarizeTree digests a parsed module.
func SummarizeTree(root sitter.Node, source []byte) Summary {
	return Analyze(root, source).Summary
}

// Summarize parses source and digests it.
func Summarize(ctx context.Context, source []byte) (Summary, error) {
	tree, err := pyast.Parse(ctx, source)
	if err != nil {
		return Summary{}, fmt.Errorf("summarize complexity: %w", err)
	}
	defer tree.Close()

	return SummarizeTree(tree.Root(), tree.Source), nil
}
