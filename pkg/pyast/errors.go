package pyast

import (
	"fmt"

	sitter "github.com/alexaandru/go-tree-sitter-bare"
)

const nodeTypeError = "ERROR"

// SyntaxError reports a source file that does not parse as Python.
// Line and Column are 1-based.
type SyntaxError struct {
	Detail string
	Line   int
	Column int
}

func (e *SyntaxError) Error() string {
	msg := ErrSyntax.Error()
	if e.Detail != "" {
		msg += ": " + e.Detail
	}

	return fmt.Sprintf("%s (line %d, column %d)", msg, e.Line, e.Column)
}

// Unwrap lets errors.Is(err, ErrSyntax) match.
func (e *SyntaxError) Unwrap() error {
	return ErrSyntax
}

func locateSyntaxError(root sitter.Node, source []byte) *SyntaxError {
	bad, found := firstErrorNode(root)
	if !found {
		return &SyntaxError{Line: 1, Column: 1}
	}

	line, col := Position(bad)
	synErr := &SyntaxError{Line: line, Column: col}

	if bad.IsMissing() {
		synErr.Detail = fmt.Sprintf("missing %q", bad.Type())

		return synErr
	}

	if int(bad.EndByte()) >= len(source) && int(bad.StartByte()) < len(source) {
		synErr.Detail = "unexpected EOF"
	}

	return synErr
}

// firstErrorNode returns the first ERROR or MISSING node in document order,
// descending only into subtrees that report an error.
func firstErrorNode(n sitter.Node) (sitter.Node, bool) {
	if n.Type() == nodeTypeError || n.IsMissing() {
		// An ERROR node may wrap a more precise MISSING child.
		for idx := range n.ChildCount() {
			child := n.Child(idx)
			if child.IsMissing() {
				return child, true
			}
		}

		return n, true
	}

	if !n.HasError() {
		return sitter.Node{}, false
	}

	for idx := range n.ChildCount() {
		if bad, ok := firstErrorNode(n.Child(idx)); ok {
			return bad, true
		}
	}

	return sitter.Node{}, false
}
