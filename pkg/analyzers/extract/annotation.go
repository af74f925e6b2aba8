package extract

import (
	"fmt"
	"math"
	"math/big"
	"strconv"
	"strings"
	"unicode"

	sitter "github.com/alexaandru/go-tree-sitter-bare"

	"github.com/Sumatoshi-tech/autodoc/pkg/pyast"
)

// ResolveAnnotation renders a type annotation or similar expression as
// display text: names and dotted attributes as written, subscripts as
// "X[Y]" with multiple subscripts comma-joined, constants in Python repr
// form, list and tuple literals bracketed with their elements resolved, and
// anything else as its source text. It returns "" for a null node.
func ResolveAnnotation(n sitter.Node, source []byte) string {
	if n.IsNull() {
		return ""
	}

	switch n.Type() {
	case pyast.KindType, pyast.KindParenthesized:
		if inner := pyast.NamedChildren(n); len(inner) == 1 {
			return ResolveAnnotation(inner[0], source)
		}
	case pyast.KindIdentifier:
		return pyast.Text(n, source)
	case pyast.KindAttribute:
		return ResolveAnnotation(pyast.Field(n, "object"), source) + "." +
			pyast.Text(pyast.Field(n, "attribute"), source)
	case "member_type":
		parts := pyast.NamedChildren(n)
		if len(parts) == 2 {
			return ResolveAnnotation(parts[0], source) + "." + ResolveAnnotation(parts[1], source)
		}
	case pyast.KindSubscript:
		return resolveSubscript(n, source)
	case pyast.KindGenericType:
		return resolveGeneric(n, source)
	case pyast.KindString, pyast.KindConcatenatedString:
		if lit, ok := pyast.DecodeString(n, source); ok && !lit.Formatted {
			return reprString(lit)
		}
	case pyast.KindInteger, pyast.KindFloat:
		return reprNumber(pyast.Text(n, source))
	case pyast.KindTrue:
		return "True"
	case pyast.KindFalse:
		return "False"
	case pyast.KindNone:
		return "None"
	case pyast.KindEllipsis:
		return "Ellipsis"
	case pyast.KindList:
		return "[" + resolveElements(pyast.NamedChildren(n), source) + "]"
	case pyast.KindTuple:
		return "(" + resolveElements(pyast.NamedChildren(n), source) + ")"
	}

	return pyast.Text(n, source)
}

func resolveSubscript(n sitter.Node, source []byte) string {
	value := pyast.Field(n, "value")

	var subscripts []sitter.Node

	for _, child := range pyast.NamedChildren(n) {
		if sameNode(child, value) {
			continue
		}

		subscripts = append(subscripts, child)
	}

	// A single tuple subscript, X[(a, b)], reads the same as X[a, b].
	if len(subscripts) == 1 && subscripts[0].Type() == pyast.KindTuple {
		subscripts = pyast.NamedChildren(subscripts[0])
	}

	return ResolveAnnotation(value, source) + "[" + resolveElements(subscripts, source) + "]"
}

func resolveGeneric(n sitter.Node, source []byte) string {
	children := pyast.NamedChildren(n)
	if len(children) != 2 || children[1].Type() != pyast.KindTypeParameter {
		return pyast.Text(n, source)
	}

	return ResolveAnnotation(children[0], source) +
		"[" + resolveElements(pyast.NamedChildren(children[1]), source) + "]"
}

func resolveElements(elements []sitter.Node, source []byte) string {
	parts := make([]string, 0, len(elements))
	for _, el := range elements {
		parts = append(parts, ResolveAnnotation(el, source))
	}

	return strings.Join(parts, ", ")
}

func sameNode(a, b sitter.Node) bool {
	return !b.IsNull() && a.StartByte() == b.StartByte() && a.EndByte() == b.EndByte() && a.Type() == b.Type()
}

// reprString quotes a string the way Python's repr does: single quotes
// unless the text contains a single quote and no double quote.
func reprString(lit pyast.StringLiteral) string {
	quote := '\''
	if strings.ContainsRune(lit.Value, '\'') && !strings.ContainsRune(lit.Value, '"') {
		quote = '"'
	}

	var sb strings.Builder

	if lit.Bytes {
		sb.WriteByte('b')
	}

	sb.WriteRune(quote)

	for _, r := range lit.Value {
		switch {
		case r == quote || r == '\\':
			sb.WriteRune('\\')
			sb.WriteRune(r)
		case r == '\n':
			sb.WriteString(`\n`)
		case r == '\r':
			sb.WriteString(`\r`)
		case r == '\t':
			sb.WriteString(`\t`)
		case r < 0x20 || r == 0x7f:
			fmt.Fprintf(&sb, `\x%02x`, r)
		case !unicode.IsPrint(r) && r > 0x7f && r <= 0xff:
			fmt.Fprintf(&sb, `\x%02x`, r)
		default:
			sb.WriteRune(r)
		}
	}

	sb.WriteRune(quote)

	return sb.String()
}

// reprNumber renders a numeric literal as Python's repr of its value, so
// 0x10 reads 16 and 1e3 reads 1000.0. Literals it cannot read come back
// unchanged.
func reprNumber(text string) string {
	digits := strings.ToLower(strings.ReplaceAll(text, "_", ""))

	if imag, ok := strings.CutSuffix(digits, "j"); ok {
		v, err := strconv.ParseFloat(imag, 64)
		if err != nil && !math.IsInf(v, 0) {
			return text
		}

		return strings.TrimSuffix(reprFloat(v), ".0") + "j"
	}

	isHex := strings.HasPrefix(digits, "0x")
	if isHex || !strings.ContainsAny(digits, ".e") {
		value, ok := new(big.Int).SetString(strings.TrimSuffix(digits, "l"), 0)
		if !ok {
			return text
		}

		return value.String()
	}

	v, err := strconv.ParseFloat(digits, 64)
	if err != nil && !math.IsInf(v, 0) {
		return text
	}

	return reprFloat(v)
}

// reprFloat follows Python's float repr: the shortest round-tripping
// digits, in exponent form outside [1e-4, 1e16).
func reprFloat(v float64) string {
	abs := math.Abs(v)

	switch {
	case math.IsInf(v, 1):
		return "inf"
	case math.IsInf(v, -1):
		return "-inf"
	case abs != 0 && (abs < 1e-4 || abs >= 1e16):
		return strconv.FormatFloat(v, 'e', -1, 64)
	}

	out := strconv.FormatFloat(v, 'f', -1, 64)
	if !strings.Contains(out, ".") {
		out += ".0"
	}

	return out
}
