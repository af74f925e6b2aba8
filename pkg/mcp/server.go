// Package mcp implements a Model Context Protocol server exposing autodoc
// analysis as MCP tools over stdio transport.
package mcp

import (
	"context"
	"fmt"
	"log/slog"
	"slices"

	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/Sumatoshi-tech/autodoc/pkg/alg/mapx"
	"github.com/Sumatoshi-tech/autodoc/pkg/analyzers/infer"
	"github.com/Sumatoshi-tech/autodoc/pkg/autodoc"
	"github.com/Sumatoshi-tech/autodoc/pkg/observability"
	"github.com/Sumatoshi-tech/autodoc/pkg/version"
)

const serverName = "autodoc"

// ServerDeps holds injectable dependencies for the MCP server.
// Zero-value fields use production defaults.
type ServerDeps struct {
	// Logger is an optional structured logger. Nil uses slog default.
	Logger *slog.Logger

	// Metrics is an optional RED metrics recorder. Nil disables per-tool metrics.
	Metrics *observability.REDMetrics

	// Tracer is an optional OTel tracer for per-tool-call spans. Nil disables tracing.
	Tracer trace.Tracer

	// Analyzer runs autodoc_analyze. Nil uses a default analyzer.
	Analyzer *autodoc.Analyzer

	// Inferencer answers autodoc_infer_purpose. Nil uses the builtin lexicon.
	Inferencer *infer.Inferencer
}

// Server wraps the MCP SDK server with autodoc tool registrations.
type Server struct {
	inner      *mcpsdk.Server
	tools      mapx.OrderedSet[string]
	metrics    *observability.REDMetrics
	tracer     trace.Tracer
	analyzer   *autodoc.Analyzer
	inferencer *infer.Inferencer
}

// NewServer creates a new MCP server with all autodoc tools registered.
func NewServer(deps ServerDeps) *Server {
	opts := &mcpsdk.ServerOptions{}
	if deps.Logger != nil {
		opts.Logger = deps.Logger
	}

	inner := mcpsdk.NewServer(
		&mcpsdk.Implementation{
			Name:    serverName,
			Version: version.Version,
		},
		opts,
	)

	srv := &Server{
		inner:      inner,
		metrics:    deps.Metrics,
		tracer:     deps.Tracer,
		analyzer:   deps.Analyzer,
		inferencer: deps.Inferencer,
	}

	if srv.analyzer == nil {
		logger := deps.Logger
		if logger == nil {
			logger = slog.Default()
		}

		srv.analyzer = autodoc.NewAnalyzer(autodoc.WithLogger(logger))
	}

	if srv.inferencer == nil {
		srv.inferencer = infer.New(infer.Builtin())
	}

	srv.registerTools()

	return srv
}

// ListToolNames returns the registered tool names, sorted.
func (s *Server) ListToolNames() []string {
	return slices.Sorted(slices.Values(s.tools.Values()))
}

// Run starts the MCP server on stdio transport. It blocks until the context
// is canceled or the connection closes.
func (s *Server) Run(ctx context.Context) error {
	return s.RunWithTransport(ctx, &mcpsdk.StdioTransport{})
}

// RunWithTransport starts the MCP server on the given transport. It blocks
// until the context is canceled or the connection closes.
func (s *Server) RunWithTransport(ctx context.Context, transport mcpsdk.Transport) error {
	err := s.inner.Run(ctx, transport)
	if err != nil {
		return fmt.Errorf("mcp server: %w", err)
	}

	return nil
}

func (s *Server) registerTools() {
	addTool(s, ToolNameAnalyze, analyzeToolDescription, s.handleAnalyze)
	addTool(s, ToolNameInferPurpose, inferToolDescription, s.handleInferPurpose)
	addTool(s, ToolNameComplexity, complexityToolDescription, s.handleComplexity)
}

func addTool[Input any](s *Server, name, description string, handler mcpsdk.ToolHandlerFor[Input, ToolOutput]) {
	mcpsdk.AddTool(s.inner, &mcpsdk.Tool{
		Name:        name,
		Description: description,
	}, withMetrics(s.metrics, name, withTracing(s.tracer, name, handler)))

	s.tools.Add(name)
}

// mcpSpanPrefix is the prefix for MCP tool span names.
const mcpSpanPrefix = "mcp."

// traceIDMetaKey is the metadata key for trace_id in MCP tool responses.
const traceIDMetaKey = "trace_id"

// withTracing opens one server span per tool call. Sampled calls get a
// trace_id line appended to the result content.
func withTracing[Input any](
	tracer trace.Tracer,
	toolName string,
	handler mcpsdk.ToolHandlerFor[Input, ToolOutput],
) mcpsdk.ToolHandlerFor[Input, ToolOutput] {
	if tracer == nil {
		return handler
	}

	return func(ctx context.Context, req *mcpsdk.CallToolRequest, input Input) (*mcpsdk.CallToolResult, ToolOutput, error) {
		ctx, span := tracer.Start(ctx, mcpSpanPrefix+toolName,
			trace.WithSpanKind(trace.SpanKindServer),
			trace.WithAttributes(attribute.String("mcp.tool", toolName)),
		)
		defer span.End()

		result, output, err := handler(ctx, req, input)
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}

		sc := span.SpanContext()
		if sc.IsSampled() && result != nil {
			traceContent := &mcpsdk.TextContent{Text: fmt.Sprintf("%s=%s", traceIDMetaKey, sc.TraceID().String())}
			result.Content = append(result.Content, traceContent)
		}

		return result, output, err
	}
}

// withMetrics records RED metrics per tool call. A result flagged IsError
// counts as a failure even when err is nil.
func withMetrics[Input any](
	metrics *observability.REDMetrics,
	toolName string,
	handler mcpsdk.ToolHandlerFor[Input, ToolOutput],
) mcpsdk.ToolHandlerFor[Input, ToolOutput] {
	if metrics == nil {
		return handler
	}

	return func(ctx context.Context, req *mcpsdk.CallToolRequest, input Input) (*mcpsdk.CallToolResult, ToolOutput, error) {
		finish := metrics.Begin(ctx, mcpSpanPrefix+toolName)

		result, output, err := handler(ctx, req, input)

		status := observability.StatusOf(err)
		if result != nil && result.IsError {
			status = observability.StatusError
		}

		finish(status)

		return result, output, err
	}
}

// Tool description constants.
const (
	analyzeToolDescription = "Extract the structure of inline Python source: imports, classes, " +
		"functions with arguments and decorators, global variables, docstrings and " +
		"inferred descriptions for undocumented declarations."

	inferToolDescription = "Infer a short natural-language purpose for a Python identifier " +
		"by splitting it into words and looking each up in the lexicon."

	complexityToolDescription = "Compute the total cyclomatic complexity and the maintainability " +
		"index of inline Python source."
)
