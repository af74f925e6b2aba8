// Package complexity computes per-block cyclomatic complexity for Python
// modules. Blocks are functions, methods and classes; each block starts at
// one and gains one for every decision point in its body.
package complexity

import (
	sitter "github.com/alexaandru/go-tree-sitter-bare"

	"github.com/Sumatoshi-tech/autodoc/pkg/pyast"
)

// BlockKind classifies a Block.
type BlockKind string

// Block kinds.
const (
	KindFunction BlockKind = "function"
	KindMethod   BlockKind = "method"
	KindClass    BlockKind = "class"
)

// Block is the complexity of one function, method or class.
//
// For a class, RealComplexity is one plus the complexity of every method,
// inner class and class-level decision; Complexity is that value averaged
// over the methods (plus one when there is more than one method).
type Block struct {
	Name           string    `json:"name"            yaml:"name"`
	Kind           BlockKind `json:"kind"            yaml:"kind"`
	Class          string    `json:"class,omitempty" yaml:"class,omitempty"`
	Line           int       `json:"line"            yaml:"line"`
	EndLine        int       `json:"end_line"        yaml:"end_line"`
	Complexity     int       `json:"complexity"      yaml:"complexity"`
	RealComplexity int       `json:"-"               yaml:"-"`
	Methods        []Block   `json:"-"               yaml:"-"`
}

type visitor struct {
	source     []byte
	className  string
	complexity int
	functions  []Block
	classes    []Block
}

func (v *visitor) visit(n sitter.Node) {
	switch n.Type() {
	case pyast.KindDecoratedDefinition:
		v.visit(pyast.Field(n, "definition"))

		return
	case pyast.KindFunctionDefinition:
		v.functions = append(v.functions, v.function(n))

		return
	case pyast.KindClassDefinition:
		v.classes = append(v.classes, v.class(n))

		return
	}

	v.complexity += decisionWeight(n)

	for idx := range n.NamedChildCount() {
		v.visit(n.NamedChild(idx))
	}
}

// function scores a function body. Nested functions are closures: their own
// decisions are not added to the enclosing function.
func (v *visitor) function(n sitter.Node) Block {
	complexity := 1

	for _, stmt := range pyast.NamedChildren(pyast.Field(n, "body")) {
		child := &visitor{source: v.source}
		child.visit(stmt)
		complexity += child.complexity
	}

	line, _ := pyast.Position(n)
	block := Block{
		Name:           pyast.Text(pyast.Field(n, "name"), v.source),
		Kind:           KindFunction,
		Line:           line,
		EndLine:        pyast.EndLine(n),
		Complexity:     complexity,
		RealComplexity: complexity,
	}

	if v.className != "" {
		block.Kind = KindMethod
		block.Class = v.className
	}

	return block
}

func (v *visitor) class(n sitter.Node) Block {
	name := pyast.Text(pyast.Field(n, "name"), v.source)
	realComplexity := 1

	var methods []Block

	for _, stmt := range pyast.NamedChildren(pyast.Field(n, "body")) {
		child := &visitor{source: v.source, className: name}
		child.visit(stmt)

		methods = append(methods, child.functions...)
		realComplexity += child.complexity + sumReal(child.functions) + sumReal(child.classes)
	}

	complexity := realComplexity
	if len(methods) > 0 {
		complexity = realComplexity / len(methods)
		if len(methods) > 1 {
			complexity++
		}
	}

	line, _ := pyast.Position(n)

	return Block{
		Name:           name,
		Kind:           KindClass,
		Line:           line,
		EndLine:        pyast.EndLine(n),
		Complexity:     complexity,
		RealComplexity: realComplexity,
		Methods:        methods,
	}
}

func sumReal(blocks []Block) int {
	total := 0
	for _, b := range blocks {
		total += b.RealComplexity
	}

	return total
}

// decisionWeight returns the number of decision points a node contributes
// on its own. Children are scored separately.
func decisionWeight(n sitter.Node) int {
	switch n.Type() {
	case "if_statement", "elif_clause", "conditional_expression",
		"boolean_operator", "for_in_clause", "if_clause",
		"assert_statement", "case_clause":
		return 1
	case "for_statement", "while_statement":
		return 1 + countChildren(n, "else_clause")
	case "try_statement":
		return countChildren(n, "except_clause") + countChildren(n, "except_group_clause") +
			countChildren(n, "else_clause")
	default:
		return 0
	}
}

func countChildren(n sitter.Node, kind string) int {
	count := 0

	for idx := range n.NamedChildCount() {
		if n.NamedChild(idx).Type() == kind {
			count++
		}
	}

	return count
}
