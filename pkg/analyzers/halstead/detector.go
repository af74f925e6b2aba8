package halstead

import (
	"fmt"
	"strings"

	sitter "github.com/alexaandru/go-tree-sitter-bare"

	"github.com/Sumatoshi-tech/autodoc/pkg/pyast"
)

// occurrence is one operator application and the operands it acts on.
type occurrence struct {
	operators []string
	operands  []sitter.Node
}

// detectOccurrence reports whether n applies an operator. Operands of a
// chained boolean expression such as "a and b and c" are collected into a
// single occurrence.
func detectOccurrence(n sitter.Node) (occurrence, bool) {
	switch n.Type() {
	case "binary_operator":
		return occurrence{
			operators: []string{operatorToken(n)},
			operands:  []sitter.Node{pyast.Field(n, "left"), pyast.Field(n, "right")},
		}, true
	case "unary_operator":
		return occurrence{
			operators: []string{"unary" + operatorToken(n)},
			operands:  []sitter.Node{pyast.Field(n, "argument")},
		}, true
	case "not_operator":
		return occurrence{
			operators: []string{"not"},
			operands:  []sitter.Node{pyast.Field(n, "argument")},
		}, true
	case pyast.KindAugmentedAssignment:
		return occurrence{
			operators: []string{strings.TrimSuffix(operatorToken(n), "=")},
			operands:  []sitter.Node{pyast.Field(n, "left"), pyast.Field(n, "right")},
		}, true
	case "boolean_operator":
		op := operatorToken(n)

		return occurrence{
			operators: []string{op},
			operands:  flattenBoolean(n, op),
		}, true
	case "comparison_operator":
		return comparison(n), true
	default:
		return occurrence{}, false
	}
}

func operatorToken(n sitter.Node) string {
	return pyast.Field(n, "operator").Type()
}

// isChainLink reports whether n continues a boolean chain with operator op.
func isChainLink(n sitter.Node, op string) bool {
	return n.Type() == "boolean_operator" && operatorToken(n) == op
}

func flattenBoolean(n sitter.Node, op string) []sitter.Node {
	var values []sitter.Node

	for _, side := range []sitter.Node{pyast.Field(n, "left"), pyast.Field(n, "right")} {
		if isChainLink(side, op) {
			values = append(values, flattenBoolean(side, op)...)

			continue
		}

		values = append(values, side)
	}

	return values
}

func comparison(n sitter.Node) occurrence {
	var occ occurrence

	for idx := range n.ChildCount() {
		child := n.Child(idx)
		if child.IsNamed() {
			if child.Type() != pyast.KindComment {
				occ.operands = append(occ.operands, child)
			}

			continue
		}

		occ.operators = append(occ.operators, child.Type())
	}

	return occ
}

// operandKey identifies an operand within a context. Names, numbers and
// attribute names compare by value; any other expression is distinct per
// occurrence.
func operandKey(context string, n sitter.Node, source []byte) string {
	var key string

	switch n.Type() {
	case pyast.KindIdentifier:
		key = "id:" + pyast.Text(n, source)
	case pyast.KindInteger, pyast.KindFloat:
		key = "n:" + pyast.Text(n, source)
	case pyast.KindAttribute:
		key = "attr:" + pyast.Text(pyast.Field(n, "attribute"), source)
	default:
		key = fmt.Sprintf("node:%d:%d", n.StartByte(), n.EndByte())
	}

	return context + "\x00" + key
}
