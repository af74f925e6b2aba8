package pyast

import (
	sitter "github.com/alexaandru/go-tree-sitter-bare"
)

// Python grammar node kinds used across the analyzers.
const (
	KindModule              = "module"
	KindBlock               = "block"
	KindComment             = "comment"
	KindClassDefinition     = "class_definition"
	KindFunctionDefinition  = "function_definition"
	KindDecoratedDefinition = "decorated_definition"
	KindDecorator           = "decorator"
	KindExpressionStatement = "expression_statement"
	KindAssignment          = "assignment"
	KindAugmentedAssignment = "augmented_assignment"
	KindImportStatement     = "import_statement"
	KindImportFromStatement = "import_from_statement"
	KindFutureImport        = "future_import_statement"
	KindDottedName          = "dotted_name"
	KindAliasedImport       = "aliased_import"
	KindRelativeImport      = "relative_import"
	KindImportPrefix        = "import_prefix"
	KindWildcardImport      = "wildcard_import"
	KindIdentifier          = "identifier"
	KindAttribute           = "attribute"
	KindSubscript           = "subscript"
	KindSlice               = "slice"
	KindCall                = "call"
	KindArgumentList        = "argument_list"
	KindKeywordArgument     = "keyword_argument"
	KindString              = "string"
	KindConcatenatedString  = "concatenated_string"
	KindInterpolation       = "interpolation"
	KindInteger             = "integer"
	KindFloat               = "float"
	KindTrue                = "true"
	KindFalse               = "false"
	KindNone                = "none"
	KindEllipsis            = "ellipsis"
	KindList                = "list"
	KindTuple               = "tuple"
	KindParenthesized       = "parenthesized_expression"
	KindType                = "type"
	KindGenericType         = "generic_type"
	KindTypeParameter       = "type_parameter"
	KindUnaryOperator       = "unary_operator"

	KindParameters             = "parameters"
	KindTypedParameter         = "typed_parameter"
	KindDefaultParameter       = "default_parameter"
	KindTypedDefaultParameter  = "typed_default_parameter"
	KindListSplatPattern       = "list_splat_pattern"
	KindDictionarySplatPattern = "dictionary_splat_pattern"
	KindKeywordSeparator       = "keyword_separator"
	KindPositionalSeparator    = "positional_separator"
)

// Text returns the source text spanned by n, or "" when n is null or out of
// range.
func Text(n sitter.Node, source []byte) string {
	if n.IsNull() {
		return ""
	}

	start := int(n.StartByte())
	end := int(n.EndByte())

	if start < 0 || end > len(source) || start > end {
		return ""
	}

	return string(source[start:end])
}

// Position returns the 1-based line and column of the start of n.
func Position(n sitter.Node) (line, column int) {
	start := n.StartPoint()

	return int(start.Row) + 1, int(start.Column) + 1
}

// EndLine returns the 1-based line on which n ends.
func EndLine(n sitter.Node) int {
	return int(n.EndPoint().Row) + 1
}

// NamedChildren returns the named children of n, skipping comments.
func NamedChildren(n sitter.Node) []sitter.Node {
	if n.IsNull() {
		return nil
	}

	children := make([]sitter.Node, 0, n.NamedChildCount())

	for idx := range n.NamedChildCount() {
		child := n.NamedChild(idx)
		if child.Type() == KindComment {
			continue
		}

		children = append(children, child)
	}

	return children
}

// Field returns the child stored under the grammar field name.
func Field(n sitter.Node, name string) sitter.Node {
	return n.ChildByFieldName(name)
}

// FirstNamedChildOfKind returns the first named child of the given kind.
func FirstNamedChildOfKind(n sitter.Node, kind string) (sitter.Node, bool) {
	for _, child := range NamedChildren(n) {
		if child.Type() == kind {
			return child, true
		}
	}

	return sitter.Node{}, false
}

// Unwrap strips redundant parentheses around an expression.
func Unwrap(n sitter.Node) sitter.Node {
	for n.Type() == KindParenthesized {
		inner := NamedChildren(n)
		if len(inner) != 1 {
			return n
		}

		n = inner[0]
	}

	return n
}

// Walk visits n and its named descendants in document order. Returning
// false from visit skips the node's subtree.
func Walk(n sitter.Node, visit func(sitter.Node) bool) {
	if n.IsNull() || !visit(n) {
		return
	}

	for idx := range n.NamedChildCount() {
		Walk(n.NamedChild(idx), visit)
	}
}

// WalkAll visits n and every descendant, named or anonymous, in document
// order. Operator tokens are anonymous nodes in the Python grammar.
func WalkAll(n sitter.Node, visit func(sitter.Node) bool) {
	if n.IsNull() || !visit(n) {
		return
	}

	for idx := range n.ChildCount() {
		WalkAll(n.Child(idx), visit)
	}
}
