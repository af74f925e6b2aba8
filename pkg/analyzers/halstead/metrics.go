// Package halstead computes Halstead software-science metrics for Python
// modules from operator and operand counts.
package halstead

import (
	"math"
)

// Halstead formula constants.
const (
	// TimeConstant is the Stroud number used in time-to-program estimation (seconds).
	TimeConstant = 18.0
	// BugConstant is the divisor used in delivered bugs estimation.
	BugConstant = 3000.0
	// BugExponent is the exponent used in delivered bugs calculation.
	BugExponent = 2.0 / 3.0
	// DifficultyDivisor is used in the difficulty formula: n1/2 * (N2/n2).
	DifficultyDivisor = 2.0
)

// Metrics holds the base counts and derived Halstead measures.
type Metrics struct {
	DistinctOperators int     `json:"h1"                yaml:"h1"`
	DistinctOperands  int     `json:"h2"                yaml:"h2"`
	TotalOperators    int     `json:"N1"                yaml:"N1"`
	TotalOperands     int     `json:"N2"                yaml:"N2"`
	Vocabulary        int     `json:"vocabulary"        yaml:"vocabulary"`
	Length            int     `json:"length"            yaml:"length"`
	EstimatedLength   float64 `json:"calculated_length" yaml:"calculated_length"`
	Volume            float64 `json:"volume"            yaml:"volume"`
	Difficulty        float64 `json:"difficulty"        yaml:"difficulty"`
	Effort            float64 `json:"effort"            yaml:"effort"`
	TimeToProgram     float64 `json:"time"              yaml:"time"`
	DeliveredBugs     float64 `json:"bugs"              yaml:"bugs"`
}

// FunctionMetrics is the Halstead report of a single module-level function
// or method.
type FunctionMetrics struct {
	Name string `json:"name" yaml:"name"`
	Metrics
}

// Report is the Halstead analysis of a module.
type Report struct {
	Total     Metrics           `json:"total"     yaml:"total"`
	Functions []FunctionMetrics `json:"functions" yaml:"functions"`
}

// Calculate derives every measure from the four base counts.
func Calculate(distinctOperators, distinctOperands, totalOperators, totalOperands int) Metrics {
	m := Metrics{
		DistinctOperators: distinctOperators,
		DistinctOperands:  distinctOperands,
		TotalOperators:    totalOperators,
		TotalOperands:     totalOperands,
		Vocabulary:        distinctOperators + distinctOperands,
		Length:            totalOperators + totalOperands,
	}

	if distinctOperators > 0 {
		m.EstimatedLength += float64(distinctOperators) * math.Log2(float64(distinctOperators))
	}

	if distinctOperands > 0 {
		m.EstimatedLength += float64(distinctOperands) * math.Log2(float64(distinctOperands))
	}

	if m.Vocabulary > 0 {
		m.Volume = float64(m.Length) * math.Log2(float64(m.Vocabulary))
	}

	if distinctOperands > 0 {
		m.Difficulty = (float64(distinctOperators) / DifficultyDivisor) *
			(float64(totalOperands) / float64(distinctOperands))
	}

	m.Effort = m.Volume * m.Difficulty
	m.TimeToProgram = m.Effort / TimeConstant

	if m.Effort > 0 {
		m.DeliveredBugs = math.Pow(m.Effort, BugExponent) / BugConstant
	}

	return m
}
