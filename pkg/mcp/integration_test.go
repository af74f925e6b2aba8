package mcp_test

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"

	"github.com/Sumatoshi-tech/autodoc/pkg/analyzers/infer"
	"github.com/Sumatoshi-tech/autodoc/pkg/mcp"
	"github.com/Sumatoshi-tech/autodoc/pkg/observability"
)

func connect(t *testing.T, srv *mcp.Server) *mcpsdk.ClientSession {
	t.Helper()

	clientTransport, serverTransport := mcpsdk.NewInMemoryTransports()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)

	serverDone := make(chan error, 1)

	go func() {
		serverDone <- srv.RunWithTransport(ctx, serverTransport)
	}()

	client := mcpsdk.NewClient(&mcpsdk.Implementation{
		Name:    "test-client",
		Version: "1.0.0",
	}, nil)

	session, err := client.Connect(ctx, clientTransport, nil)
	require.NoError(t, err)

	t.Cleanup(func() {
		_ = session.Close()

		cancel()
		<-serverDone
	})

	return session
}

func callTool(t *testing.T, session *mcpsdk.ClientSession, name string, args map[string]any) *mcpsdk.CallToolResult {
	t.Helper()

	result, err := session.CallTool(context.Background(), &mcpsdk.CallToolParams{
		Name:      name,
		Arguments: args,
	})
	require.NoError(t, err)
	require.NotNil(t, result)
	require.NotEmpty(t, result.Content)

	return result
}

func firstText(t *testing.T, result *mcpsdk.CallToolResult) string {
	t.Helper()

	text, ok := result.Content[0].(*mcpsdk.TextContent)
	require.True(t, ok)

	return text.Text
}

func TestMCPServer_ToolsList(t *testing.T) {
	t.Parallel()

	srv := mcp.NewServer(mcp.ServerDeps{Logger: observability.Discard()})
	assert.Equal(t,
		[]string{mcp.ToolNameAnalyze, mcp.ToolNameComplexity, mcp.ToolNameInferPurpose},
		srv.ListToolNames())

	session := connect(t, srv)

	toolsResult, err := session.ListTools(context.Background(), nil)
	require.NoError(t, err)
	require.Len(t, toolsResult.Tools, 3)

	for _, tool := range toolsResult.Tools {
		assert.NotNil(t, tool.InputSchema, "tool %s missing input schema", tool.Name)
	}
}

func TestMCPServer_CallAnalyze(t *testing.T) {
	t.Parallel()

	session := connect(t, mcp.NewServer(mcp.ServerDeps{Logger: observability.Discard()}))

	result := callTool(t, session, mcp.ToolNameAnalyze, map[string]any{
		"code": "import os\n\nclass A:\n    def run(self):\n        os.remove('x')\n",
		"path": "a.py",
	})
	assert.False(t, result.IsError)

	var unit map[string]any
	require.NoError(t, json.Unmarshal([]byte(firstText(t, result)), &unit))
	assert.Equal(t, "a.py", unit["path"])
	assert.Equal(t, []any{"os"}, unit["imports"])
	assert.Contains(t, unit["classes"], "A")
}

func TestMCPServer_CallAnalyze_SyntaxError(t *testing.T) {
	t.Parallel()

	session := connect(t, mcp.NewServer(mcp.ServerDeps{Logger: observability.Discard()}))

	result := callTool(t, session, mcp.ToolNameAnalyze, map[string]any{"code": "def (:\n"})
	assert.True(t, result.IsError)
	assert.Contains(t, firstText(t, result), `"error"`)
}

func TestMCPServer_CallAnalyze_EmptyCode(t *testing.T) {
	t.Parallel()

	session := connect(t, mcp.NewServer(mcp.ServerDeps{Logger: observability.Discard()}))

	result := callTool(t, session, mcp.ToolNameAnalyze, map[string]any{"code": ""})
	assert.True(t, result.IsError)
	assert.Equal(t, mcp.ErrEmptyCode.Error(), firstText(t, result))
}

func TestMCPServer_CallInferPurpose(t *testing.T) {
	t.Parallel()

	session := connect(t, mcp.NewServer(mcp.ServerDeps{
		Logger:     observability.Discard(),
		Inferencer: infer.New(infer.MapDictionary{"get": "obtain", "value": "a numerical quantity"}),
	}))

	result := callTool(t, session, mcp.ToolNameInferPurpose, map[string]any{"identifier": "get_value"})
	assert.False(t, result.IsError)

	var purpose mcp.PurposeResult
	require.NoError(t, json.Unmarshal([]byte(firstText(t, result)), &purpose))
	assert.Equal(t, mcp.PurposeResult{Identifier: "get_value", Purpose: "obtain a numerical quantity", Found: true}, purpose)
}

func TestMCPServer_CallComplexity(t *testing.T) {
	t.Parallel()

	reader := metric.NewManualReader()
	red, err := observability.NewREDMetrics(metric.NewMeterProvider(metric.WithReader(reader)).Meter("test"))
	require.NoError(t, err)

	session := connect(t, mcp.NewServer(mcp.ServerDeps{Logger: observability.Discard(), Metrics: red}))

	result := callTool(t, session, mcp.ToolNameComplexity, map[string]any{
		"code": "def f(x):\n    if x:\n        return 1\n    return 0\n",
	})
	assert.False(t, result.IsError)

	var summary map[string]any
	require.NoError(t, json.Unmarshal([]byte(firstText(t, result)), &summary))
	assert.InDelta(t, 2, summary["cyclomatic"], 0)

	bad := callTool(t, session, mcp.ToolNameComplexity, map[string]any{"code": "class :\n"})
	assert.True(t, bad.IsError)

	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(context.Background(), &rm))

	var requests int64

	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			if sum, ok := m.Data.(metricdata.Sum[int64]); ok && m.Name == "autodoc.requests.total" {
				for _, dp := range sum.DataPoints {
					requests += dp.Value
				}
			}
		}
	}

	assert.Equal(t, int64(2), requests)
}
