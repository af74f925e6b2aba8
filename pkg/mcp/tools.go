package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/Sumatoshi-tech/autodoc/pkg/analyzers/maintainability"
)

// Tool name constants.
const (
	ToolNameAnalyze      = "autodoc_analyze"
	ToolNameInferPurpose = "autodoc_infer_purpose"
	ToolNameComplexity   = "autodoc_complexity"
)

// Input size limits.
const (
	// MaxCodeInputBytes is the maximum allowed size for inline code input (1 MB).
	MaxCodeInputBytes = 1 << 20

	defaultPath = "input.py"
)

// Sentinel errors for tool input validation.
var (
	// ErrEmptyCode indicates the code parameter is empty.
	ErrEmptyCode = errors.New("code parameter is required and must not be empty")
	// ErrCodeTooLarge indicates the code input exceeds the size limit.
	ErrCodeTooLarge = errors.New("code input exceeds maximum size")
	// ErrEmptyIdentifier indicates the identifier parameter is empty.
	ErrEmptyIdentifier = errors.New("identifier parameter is required and must not be empty")
)

// AnalyzeInput is the input schema for the autodoc_analyze tool.
type AnalyzeInput struct {
	Code string `json:"code"           jsonschema:"Python source code to analyze"`
	Path string `json:"path,omitempty" jsonschema:"file path to report (default: input.py)"`
}

// InferPurposeInput is the input schema for the autodoc_infer_purpose tool.
type InferPurposeInput struct {
	Identifier string `json:"identifier" jsonschema:"identifier such as getUserName or parse_http_header"`
}

// ComplexityInput is the input schema for the autodoc_complexity tool.
type ComplexityInput struct {
	Code string `json:"code" jsonschema:"Python source code to measure"`
}

// PurposeResult is the autodoc_infer_purpose payload.
type PurposeResult struct {
	Identifier string `json:"identifier"`
	Purpose    string `json:"purpose"`
	Found      bool   `json:"found"`
}

// ToolOutput is a generic wrapper for tool results.
type ToolOutput struct {
	Data any `json:"data"`
}

func (s *Server) handleAnalyze(
	ctx context.Context, _ *mcpsdk.CallToolRequest, input AnalyzeInput,
) (*mcpsdk.CallToolResult, ToolOutput, error) {
	err := validateCode(input.Code)
	if err != nil {
		return errorResult(err)
	}

	path := input.Path
	if path == "" {
		path = defaultPath
	}

	res, err := s.analyzer.AnalyzeSource(ctx, path, []byte(input.Code))
	if err != nil {
		return errorResult(err)
	}

	result, output, err := jsonResult(res)
	if result != nil && res.Failed() {
		result.IsError = true
	}

	return result, output, err
}

func (s *Server) handleInferPurpose(
	_ context.Context, _ *mcpsdk.CallToolRequest, input InferPurposeInput,
) (*mcpsdk.CallToolResult, ToolOutput, error) {
	if input.Identifier == "" {
		return errorResult(ErrEmptyIdentifier)
	}

	purpose, found := s.inferencer.InferPurpose(input.Identifier)

	return jsonResult(PurposeResult{Identifier: input.Identifier, Purpose: purpose, Found: found})
}

func (s *Server) handleComplexity(
	ctx context.Context, _ *mcpsdk.CallToolRequest, input ComplexityInput,
) (*mcpsdk.CallToolResult, ToolOutput, error) {
	err := validateCode(input.Code)
	if err != nil {
		return errorResult(err)
	}

	summary, err := maintainability.Summarize(ctx, []byte(input.Code))
	if err != nil {
		return errorResult(err)
	}

	return jsonResult(summary)
}

// errorResult builds a CallToolResult with isError set.
func errorResult(err error) (*mcpsdk.CallToolResult, ToolOutput, error) {
	return &mcpsdk.CallToolResult{
		Content: []mcpsdk.Content{
			&mcpsdk.TextContent{Text: err.Error()},
		},
		IsError: true,
	}, ToolOutput{}, nil
}

// jsonResult builds a CallToolResult with JSON-encoded content.
func jsonResult(value any) (*mcpsdk.CallToolResult, ToolOutput, error) {
	data, err := json.MarshalIndent(value, "", "  ")
	if err != nil {
		return errorResult(fmt.Errorf("encode result: %w", err))
	}

	return &mcpsdk.CallToolResult{
		Content: []mcpsdk.Content{
			&mcpsdk.TextContent{Text: string(data)},
		},
	}, ToolOutput{Data: value}, nil
}

func validateCode(code string) error {
	if code == "" {
		return ErrEmptyCode
	}

	if len(code) > MaxCodeInputBytes {
		return fmt.Errorf("%w: %d bytes (max %d)", ErrCodeTooLarge, len(code), MaxCodeInputBytes)
	}

	return nil
}
