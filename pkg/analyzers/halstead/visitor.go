package halstead

import (
	sitter "github.com/alexaandru/go-tree-sitter-bare"

	"github.com/Sumatoshi-tech/autodoc/pkg/pyast"
)

// visitor counts operators and operands. Every function body is counted in
// its own context, named after the function, and then merged into the
// enclosing visitor, so an operand name reused in two functions counts as
// two distinct operands.
type visitor struct {
	source        []byte
	context       string
	operatorsSeen map[string]struct{}
	operandsSeen  map[string]struct{}
	functions     []FunctionMetrics
	operators     int
	operands      int
}

func newVisitor(source []byte, context string) *visitor {
	return &visitor{
		source:        source,
		context:       context,
		operatorsSeen: make(map[string]struct{}),
		operandsSeen:  make(map[string]struct{}),
	}
}

func (v *visitor) visit(n sitter.Node) {
	switch n.Type() {
	case pyast.KindDecoratedDefinition:
		v.visit(pyast.Field(n, "definition"))

		return
	case pyast.KindFunctionDefinition:
		v.function(n)

		return
	}

	if occ, ok := detectOccurrence(n); ok {
		v.record(occ)

		// Chain links were folded into this occurrence.
		if n.Type() == "boolean_operator" {
			for _, operand := range occ.operands {
				v.visit(operand)
			}

			return
		}
	}

	for idx := range n.NamedChildCount() {
		v.visit(n.NamedChild(idx))
	}
}

func (v *visitor) function(n sitter.Node) {
	name := pyast.Text(pyast.Field(n, "name"), v.source)
	fv := newVisitor(v.source, name)

	for _, stmt := range pyast.NamedChildren(pyast.Field(n, "body")) {
		fv.visit(stmt)
	}

	v.functions = append(v.functions, FunctionMetrics{Name: name, Metrics: fv.metrics()})
	v.merge(fv)
}

func (v *visitor) record(occ occurrence) {
	v.operators += len(occ.operators)
	v.operands += len(occ.operands)

	for _, op := range occ.operators {
		v.operatorsSeen[op] = struct{}{}
	}

	for _, operand := range occ.operands {
		v.operandsSeen[operandKey(v.context, operand, v.source)] = struct{}{}
	}
}

func (v *visitor) merge(other *visitor) {
	v.operators += other.operators
	v.operands += other.operands

	for op := range other.operatorsSeen {
		v.operatorsSeen[op] = struct{}{}
	}

	for operand := range other.operandsSeen {
		v.operandsSeen[operand] = struct{}{}
	}
}

func (v *visitor) metrics() Metrics {
	return Calculate(len(v.operatorsSeen), len(v.operandsSeen), v.operators, v.operands)
}

// Analyze computes the Halstead report of a parsed module.
func Analyze(root sitter.Node, source []byte) Report {
	v := newVisitor(source, "")

	if !root.IsNull() {
		for idx := range root.NamedChildCount() {
			v.visit(root.NamedChild(idx))
		}
	}

	return Report{Total: v.metrics(), Functions: v.functions}
}
