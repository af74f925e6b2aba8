package pyast

import (
	"bytes"

	sitter "github.com/alexaandru/go-tree-sitter-bare"
)

// Node kinds the grammar accepts but Python 3 rejects.
const (
	kindPrintStatement = "print_statement"
	kindExecStatement  = "exec_statement"
	kindForInClause    = "for_in_clause"
)

// checkPython3 reports the first construct that parses cleanly with the
// tree-sitter grammar yet is not valid Python 3: Python 2 print and exec
// statements, inconsistent block indentation and an unparenthesized tuple
// after "in" in a comprehension. Nil when none is found.
func checkPython3(root sitter.Node, source []byte) *SyntaxError {
	var found *SyntaxError

	Walk(root, func(n sitter.Node) bool {
		if found != nil {
			return false
		}

		switch n.Type() {
		case kindPrintStatement:
			found = syntaxErrorAt(n, "missing parentheses in call to 'print'")
		case kindExecStatement:
			found = syntaxErrorAt(n, "missing parentheses in call to 'exec'")
		case KindModule:
			found = checkIndent(NamedChildren(n), source, true)
		case KindBlock, KindDecoratedDefinition:
			found = checkIndent(NamedChildren(n), source, false)
		case kindForInClause:
			found = checkIterable(n)
		}

		return found == nil
	})

	return found
}

func syntaxErrorAt(n sitter.Node, detail string) *SyntaxError {
	line, col := Position(n)

	return &SyntaxError{Detail: detail, Line: line, Column: col}
}

// checkIndent requires every statement that opens a line to carry the same
// indentation as the first one; at module level that indentation is empty.
func checkIndent(stmts []sitter.Node, source []byte, module bool) *SyntaxError {
	var (
		want    []byte
		settled = module
	)

	for _, stmt := range stmts {
		indent, ok := leadingIndent(stmt, source)
		if !ok {
			continue
		}

		if !settled {
			want, settled = indent, true

			continue
		}

		if bytes.Equal(indent, want) {
			continue
		}

		if len(indent) > len(want) {
			return syntaxErrorAt(stmt, "unexpected indent")
		}

		return syntaxErrorAt(stmt, "unindent does not match any outer indentation level")
	}

	return nil
}

// leadingIndent returns the whitespace before n on its line, or false when
// something other than whitespace precedes n there.
func leadingIndent(n sitter.Node, source []byte) ([]byte, bool) {
	end := int(n.StartByte())
	if end > len(source) {
		return nil, false
	}

	start := bytes.LastIndexByte(source[:end], '\n') + 1
	indent := source[start:end]

	if len(bytes.Trim(indent, " \t\f")) != 0 {
		return nil, false
	}

	return indent, true
}

// checkIterable rejects "for x in a, b" inside a comprehension, which Python
// 3 only accepts with the tuple parenthesized.
func checkIterable(clause sitter.Node) *SyntaxError {
	afterIn := false

	for idx := range clause.ChildCount() {
		child := clause.Child(idx)

		switch {
		case !child.IsNamed() && child.Type() == "in":
			afterIn = true
		case afterIn && !child.IsNamed() && child.Type() == ",":
			return syntaxErrorAt(child, "comprehension iterable must be parenthesized")
		}
	}

	return nil
}
