package docgen

import (
	"bytes"
	"fmt"
	"html"
	"html/template"
	"io"
	"strings"

	"github.com/alecthomas/chroma/v2"
	chromahtml "github.com/alecthomas/chroma/v2/formatters/html"
	"github.com/alecthomas/chroma/v2/lexers"
	"github.com/alecthomas/chroma/v2/styles"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
)

// DefaultHighlightStyle is the chroma style used for source listings.
const DefaultHighlightStyle = "friendly"

const sourceLanguage = "python"

// FormatInferredDescription turns an inferred description into HTML, line
// by line: "-" lines become list items, lines ending in ":" open a heading
// and a list, blank lines close the list and anything else is a paragraph.
func FormatInferredDescription(description string) template.HTML {
	var sb strings.Builder

	for line := range strings.SplitSeq(description, "\n") {
		switch {
		case strings.HasPrefix(line, "-"):
			sb.WriteString("<li>" + html.EscapeString(strings.TrimSpace(line[1:])) + "</li>")
		case strings.HasSuffix(line, ":"):
			sb.WriteString("<h4>" + html.EscapeString(line) + "</h4><ul>")
		case strings.TrimSpace(line) == "":
			sb.WriteString("</ul>")
		default:
			sb.WriteString("<p>" + html.EscapeString(line) + "</p>")
		}
	}

	//nolint:gosec // every piece of text above is escaped.
	return template.HTML(sb.String())
}

var markdown = goldmark.New(goldmark.WithExtensions(extension.GFM))

// RenderMarkdown converts a docstring to HTML. Raw HTML inside the
// docstring is not passed through.
func RenderMarkdown(doc string) (template.HTML, error) {
	var buf bytes.Buffer

	err := markdown.Convert([]byte(doc), &buf)
	if err != nil {
		return "", fmt.Errorf("render markdown: %w", err)
	}

	//nolint:gosec // goldmark escapes raw HTML by default.
	return template.HTML(buf.String()), nil
}

// Highlighter renders Python source as HTML with line numbers.
type Highlighter struct {
	style     *chroma.Style
	formatter *chromahtml.Formatter
	lexer     chroma.Lexer
}

// NewHighlighter creates a Highlighter for the named chroma style. Unknown
// styles fall back to chroma's default.
func NewHighlighter(style string) *Highlighter {
	lexer := lexers.Get(sourceLanguage)
	if lexer == nil {
		lexer = lexers.Fallback
	}

	return &Highlighter{
		style: styles.Get(style),
		formatter: chromahtml.New(
			chromahtml.WithClasses(true),
			chromahtml.WithLineNumbers(true),
			chromahtml.LineNumbersInTable(true),
			chromahtml.TabWidth(4),
		),
		lexer: chroma.Coalesce(lexer),
	}
}

// Highlight renders source.
func (h *Highlighter) Highlight(source []byte) (template.HTML, error) {
	iterator, err := h.lexer.Tokenise(nil, string(source))
	if err != nil {
		return "", fmt.Errorf("tokenise source: %w", err)
	}

	var buf bytes.Buffer

	err = h.formatter.Format(&buf, h.style, iterator)
	if err != nil {
		return "", fmt.Errorf("format source: %w", err)
	}

	//nolint:gosec // chroma escapes token text.
	return template.HTML(buf.String()), nil
}

// WriteCSS writes the stylesheet for highlighted source.
func (h *Highlighter) WriteCSS(w io.Writer) error {
	err := h.formatter.WriteCSS(w, h.style)
	if err != nil {
		return fmt.Errorf("write highlight css: %w", err)
	}

	return nil
}
