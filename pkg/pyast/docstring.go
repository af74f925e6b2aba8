package pyast

import (
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"

	sitter "github.com/alexaandru/go-tree-sitter-bare"
)

const tabSize = 8

// StringLiteral is a decoded Python string literal.
type StringLiteral struct {
	Value     string
	Bytes     bool
	Formatted bool
}

// Docstring returns the cleaned docstring of a module node or of a class or
// function body block. The second result is false when the first statement
// is not a plain string literal.
func Docstring(body sitter.Node, source []byte) (string, bool) {
	statements := NamedChildren(body)
	if len(statements) == 0 {
		return "", false
	}

	first := statements[0]
	if first.Type() != KindExpressionStatement {
		return "", false
	}

	exprs := NamedChildren(first)
	if len(exprs) != 1 {
		return "", false
	}

	lit, ok := DecodeString(exprs[0], source)
	if !ok || lit.Bytes || lit.Formatted {
		return "", false
	}

	return CleanDoc(lit.Value), true
}

// DecodeString decodes a string or concatenated_string node.
func DecodeString(n sitter.Node, source []byte) (StringLiteral, bool) {
	switch n.Type() {
	case KindString:
		return ParseStringLiteral(Text(n, source))
	case KindConcatenatedString:
		var (
			out StringLiteral
			sb  strings.Builder
		)

		for _, part := range NamedChildren(n) {
			lit, ok := ParseStringLiteral(Text(part, source))
			if !ok {
				return StringLiteral{}, false
			}

			sb.WriteString(lit.Value)
			out.Bytes = out.Bytes || lit.Bytes
			out.Formatted = out.Formatted || lit.Formatted
		}

		out.Value = sb.String()

		return out, true
	default:
		return StringLiteral{}, false
	}
}

// ParseStringLiteral decodes the source text of a single Python string
// literal, including its prefix and quotes.
func ParseStringLiteral(text string) (StringLiteral, bool) {
	prefixEnd := strings.IndexAny(text, `'"`)
	if prefixEnd < 0 {
		return StringLiteral{}, false
	}

	prefix := strings.ToLower(text[:prefixEnd])
	body := text[prefixEnd:]

	quote := body[:1]
	if strings.HasPrefix(body, strings.Repeat(quote, 3)) && len(body) >= 6 {
		quote = strings.Repeat(quote, 3)
	}

	if len(body) < 2*len(quote) || !strings.HasSuffix(body, quote) {
		return StringLiteral{}, false
	}

	body = body[len(quote) : len(body)-len(quote)]

	lit := StringLiteral{
		Bytes:     strings.Contains(prefix, "b"),
		Formatted: strings.Contains(prefix, "f"),
	}

	if strings.Contains(prefix, "r") {
		lit.Value = body
	} else {
		lit.Value = unescape(body)
	}

	return lit, true
}

func unescape(s string) string {
	if !strings.Contains(s, `\`) {
		return s
	}

	var sb strings.Builder

	sb.Grow(len(s))

	for i := 0; i < len(s); i++ {
		c := s[i]
		if c != '\\' || i+1 >= len(s) {
			sb.WriteByte(c)

			continue
		}

		i++

		switch next := s[i]; next {
		case '\n':
		case '\\', '\'', '"':
			sb.WriteByte(next)
		case 'n':
			sb.WriteByte('\n')
		case 't':
			sb.WriteByte('\t')
		case 'r':
			sb.WriteByte('\r')
		case 'a':
			sb.WriteByte('\a')
		case 'b':
			sb.WriteByte('\b')
		case 'f':
			sb.WriteByte('\f')
		case 'v':
			sb.WriteByte('\v')
		case 'x', 'u', 'U':
			width := map[byte]int{'x': 2, 'u': 4, 'U': 8}[next]
			if r, ok := parseHexRune(s, i+1, width); ok {
				sb.WriteRune(r)

				i += width
			} else {
				sb.WriteByte('\\')
				sb.WriteByte(next)
			}
		case '0', '1', '2', '3', '4', '5', '6', '7':
			end := i + 1
			for end < len(s) && end < i+3 && s[end] >= '0' && s[end] <= '7' {
				end++
			}

			v, _ := strconv.ParseUint(s[i:end], 8, 32) //nolint:errcheck // digits are pre-validated
			sb.WriteRune(rune(v))

			i = end - 1
		default:
			sb.WriteByte('\\')
			sb.WriteByte(next)
		}
	}

	return sb.String()
}

func parseHexRune(s string, start, width int) (rune, bool) {
	if start+width > len(s) {
		return 0, false
	}

	v, err := strconv.ParseUint(s[start:start+width], 16, 32)
	if err != nil || !utf8.ValidRune(rune(v)) {
		return 0, false
	}

	return rune(v), true
}

// CleanDoc normalizes docstring indentation: tabs are expanded, leading
// whitespace is stripped from the first line, the common indentation of the
// remaining lines is removed, and blank leading and trailing lines are
// dropped.
func CleanDoc(doc string) string {
	lines := strings.Split(expandTabs(doc), "\n")

	margin := -1

	for _, line := range lines[1:] {
		runes := []rune(line)
		content := len([]rune(strings.TrimLeftFunc(line, unicode.IsSpace)))

		if content == 0 {
			continue
		}

		if indent := len(runes) - content; margin < 0 || indent < margin {
			margin = indent
		}
	}

	lines[0] = strings.TrimLeftFunc(lines[0], unicode.IsSpace)

	if margin > 0 {
		for i := 1; i < len(lines); i++ {
			runes := []rune(lines[i])
			if len(runes) > margin {
				lines[i] = string(runes[margin:])
			} else {
				lines[i] = ""
			}
		}
	}

	for len(lines) > 0 && lines[len(lines)-1] == "" {
		lines = lines[:len(lines)-1]
	}

	for len(lines) > 0 && lines[0] == "" {
		lines = lines[1:]
	}

	return strings.Join(lines, "\n")
}

func expandTabs(s string) string {
	if !strings.Contains(s, "\t") {
		return s
	}

	var sb strings.Builder

	col := 0

	for _, r := range s {
		switch r {
		case '\t':
			spaces := tabSize - col%tabSize
			sb.WriteString(strings.Repeat(" ", spaces))
			col += spaces
		case '\n', '\r':
			sb.WriteRune(r)

			col = 0
		default:
			sb.WriteRune(r)

			col++
		}
	}

	return sb.String()
}
