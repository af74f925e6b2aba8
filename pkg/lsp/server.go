// Package lsp provides a Language Server Protocol server for Python files:
// hover shows a declaration's signature with its docstring or inferred
// description, and syntax errors are published as diagnostics.
package lsp

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/tliron/glsp"
	protocol "github.com/tliron/glsp/protocol_3_16"
	"github.com/tliron/glsp/server"

	"github.com/Sumatoshi-tech/autodoc/pkg/analyzers/extract"
	"github.com/Sumatoshi-tech/autodoc/pkg/pyast"
	"github.com/Sumatoshi-tech/autodoc/pkg/safeconv"
	"github.com/Sumatoshi-tech/autodoc/pkg/version"
)

const (
	serverName        = "autodoc"
	diagnosticSource  = "autodoc"
	publishDiagnostic = "textDocument/publishDiagnostics"
)

// Server implements the autodoc LSP server.
type Server struct {
	store     *DocumentStore
	handler   protocol.Handler
	extractor *extract.Extractor
	logger    *slog.Logger
}

// NewServer creates a server that analyzes documents with extractor. A nil
// extractor uses one without a dictionary.
func NewServer(extractor *extract.Extractor, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}

	if extractor == nil {
		extractor = extract.New(extract.WithLogger(logger))
	}

	srv := &Server{store: NewDocumentStore(), extractor: extractor, logger: logger}

	srv.handler = protocol.Handler{
		Initialize:            srv.initialize,
		Initialized:           srv.initialized,
		Shutdown:              srv.shutdown,
		SetTrace:              srv.setTrace,
		TextDocumentDidOpen:   srv.didOpen,
		TextDocumentDidChange: srv.didChange,
		TextDocumentDidSave:   srv.didSave,
		TextDocumentDidClose:  srv.didClose,
		TextDocumentHover:     srv.hover,
	}

	return srv
}

// Run starts the LSP server on stdio.
func (srv *Server) Run() error {
	lspServer := server.NewServer(&srv.handler, serverName, false)

	err := lspServer.RunStdio()
	if err != nil {
		return fmt.Errorf("lsp server: %w", err)
	}

	return nil
}

func (srv *Server) initialize(_ *glsp.Context, _ *protocol.InitializeParams) (any, error) {
	capabilities := srv.handler.CreateServerCapabilities()
	capabilities.TextDocumentSync = protocol.TextDocumentSyncKindFull
	serverVersion := version.Version

	return protocol.InitializeResult{
		Capabilities: capabilities,
		ServerInfo: &protocol.InitializeResultServerInfo{
			Name:    serverName,
			Version: &serverVersion,
		},
	}, nil
}

func (srv *Server) initialized(_ *glsp.Context, _ *protocol.InitializedParams) error {
	return nil
}

func (srv *Server) shutdown(_ *glsp.Context) error {
	protocol.SetTraceValue(protocol.TraceValueOff)

	return nil
}

func (srv *Server) setTrace(_ *glsp.Context, params *protocol.SetTraceParams) error {
	protocol.SetTraceValue(params.Value)

	return nil
}

func (srv *Server) didOpen(ctx *glsp.Context, params *protocol.DidOpenTextDocumentParams) error {
	srv.update(ctx, params.TextDocument.URI, params.TextDocument.Text)

	return nil
}

func (srv *Server) didChange(ctx *glsp.Context, params *protocol.DidChangeTextDocumentParams) error {
	if text, ok := lastFullText(params.ContentChanges); ok {
		srv.update(ctx, params.TextDocument.URI, text)
	}

	return nil
}

// lastFullText finds the final whole-document change. The server asks for
// full sync, so ranged changes are not expected.
func lastFullText(changes []any) (string, bool) {
	for i := len(changes) - 1; i >= 0; i-- {
		switch change := changes[i].(type) {
		case protocol.TextDocumentContentChangeEventWhole:
			return change.Text, true
		case *protocol.TextDocumentContentChangeEventWhole:
			return change.Text, true
		case map[string]any:
			if text, ok := change["text"].(string); ok {
				return text, true
			}
		}
	}

	return "", false
}

func (srv *Server) didSave(ctx *glsp.Context, params *protocol.DidSaveTextDocumentParams) error {
	uri := params.TextDocument.URI

	switch doc, ok := srv.store.Get(uri); {
	case params.Text != nil:
		srv.update(ctx, uri, *params.Text)
	case ok:
		srv.publishDiagnostics(ctx, uri, doc)
	}

	return nil
}

func (srv *Server) didClose(ctx *glsp.Context, params *protocol.DidCloseTextDocumentParams) error {
	uri := params.TextDocument.URI
	srv.store.Delete(uri)
	srv.publishDiagnostics(ctx, uri, Document{})

	return nil
}

// update re-analyzes a document and publishes its diagnostics.
func (srv *Server) update(ctx *glsp.Context, uri, text string) {
	doc := Document{Text: text}
	doc.Unit, doc.Err = srv.extractor.Extract(context.Background(), uri, []byte(text))

	if doc.Err != nil {
		srv.logger.Debug("document does not parse", "uri", uri, "error", doc.Err)
	}

	srv.store.Set(uri, doc)
	srv.publishDiagnostics(ctx, uri, doc)
}

func (srv *Server) publishDiagnostics(ctx *glsp.Context, uri string, doc Document) {
	ctx.Notify(publishDiagnostic, &protocol.PublishDiagnosticsParams{
		URI:         uri,
		Diagnostics: Diagnostics(doc.Err),
	})
}

// Diagnostics converts an analysis error into LSP diagnostics. Positions
// are zero-based.
func Diagnostics(err error) []protocol.Diagnostic {
	var synErr *pyast.SyntaxError
	if !errors.As(err, &synErr) {
		return []protocol.Diagnostic{}
	}

	severity := protocol.DiagnosticSeverityError
	source := diagnosticSource
	pos := protocol.Position{
		Line:      safeconv.ClampUint32(synErr.Line - 1),
		Character: safeconv.ClampUint32(synErr.Column - 1),
	}

	return []protocol.Diagnostic{{
		Range:    protocol.Range{Start: pos, End: pos},
		Severity: &severity,
		Source:   &source,
		Message:  synErr.Error(),
	}}
}

func (srv *Server) hover(_ *glsp.Context, params *protocol.HoverParams) (*protocol.Hover, error) {
	doc, ok := srv.store.Get(params.TextDocument.URI)
	if !ok || doc.Unit == nil {
		return nil, nil //nolint:nilnil // LSP expects a null hover when nothing is known.
	}

	word := extractWordAtPosition(doc.Text,
		safeconv.Uint32ToInt(params.Position.Line), safeconv.Uint32ToInt(params.Position.Character))

	text, found := HoverText(doc.Unit, word)
	if !found {
		return nil, nil //nolint:nilnil // LSP expects a null hover when nothing is known.
	}

	return &protocol.Hover{
		Contents: protocol.MarkupContent{
			Kind:  protocol.MarkupKindMarkdown,
			Value: text,
		},
	}, nil
}

// HoverText describes the declaration called name: a class, a module-level
// function, or a method of any class, in that order.
func HoverText(unit *extract.SourceUnit, name string) (string, bool) {
	if name == "" {
		return "", false
	}

	if class, ok := unit.Classes.Get(name); ok {
		header := "class " + name
		if len(class.BaseClasses) > 0 {
			header += "(" + strings.Join(class.BaseClasses, ", ") + ")"
		}

		return hoverMarkdown(header, class.Docstring, class.InferredDescription), true
	}

	if fn, ok := unit.Functions.Get(name); ok {
		return functionHover(name, fn), true
	}

	for className, class := range unit.Classes.All() {
		if fn, ok := class.Methods.Get(name); ok {
			return functionHover(className+"."+name, fn), true
		}
	}

	return "", false
}

func functionHover(name string, fn *extract.FunctionRecord) string {
	header := "def " + fn.Signature(name)
	if fn.Async {
		header = "async " + header
	}

	return hoverMarkdown(header, fn.Docstring, fn.InferredDescription)
}

func hoverMarkdown(header string, docstring *string, inferred string) string {
	var sb strings.Builder

	sb.WriteString("```python\n" + header + "\n```\n")

	switch {
	case docstring != nil && *docstring != "":
		sb.WriteString("\n" + *docstring + "\n")
	case inferred != "":
		sb.WriteString("\n*" + strings.TrimSpace(inferred) + "*\n")
	}

	return sb.String()
}

// extractWordAtPosition returns the identifier at the given line/character in the text.
func extractWordAtPosition(text string, line, character int) string {
	lines := strings.Split(text, "\n")
	if line < 0 || line >= len(lines) {
		return ""
	}

	lineText := lines[line]
	character = min(max(character, 0), len(lineText))

	start := character

	for start > 0 && isWordChar(lineText[start-1]) {
		start--
	}

	end := character

	for end < len(lineText) && isWordChar(lineText[end]) {
		end++
	}

	return lineText[start:end]
}

func isWordChar(ch byte) bool {
	return (ch >= 'a' && ch <= 'z') || (ch >= 'A' && ch <= 'Z') || (ch >= '0' && ch <= '9') || ch == '_'
}
