package commands

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"time"

	"github.com/spf13/cobra"

	"github.com/Sumatoshi-tech/autodoc/pkg/mcp"
	"github.com/Sumatoshi-tech/autodoc/pkg/observability"
)

const metricsShutdownTimeout = 5 * time.Second

// NewMCPCommand creates the MCP server command.
func NewMCPCommand() *cobra.Command {
	var metricsAddr string

	cmd := &cobra.Command{
		Use:   "mcp",
		Short: "Start MCP server for AI agent integration",
		Long: `Start a Model Context Protocol (MCP) server on stdio transport.

The MCP server exposes autodoc as tools that AI agents can discover and invoke:
  - autodoc_analyze: Extract the structure of inline Python code
  - autodoc_infer_purpose: Describe an identifier from its name
  - autodoc_complexity: Cyclomatic complexity and maintainability index

With --metrics-addr, per-tool request metrics are served for Prometheus at
/metrics on that address, alongside /healthz and /readyz.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runMCP(cmd, metricsAddr)
		},
	}

	cmd.Flags().StringVar(&metricsAddr, "metrics-addr", "", "Serve Prometheus metrics on this address (e.g. :9464)")

	return cmd
}

func runMCP(cmd *cobra.Command, metricsAddr string) error {
	env, err := setup(cmd, observability.ModeMCP)
	if err != nil {
		return err
	}
	defer env.close()

	inf, closer, err := env.inferencer()
	if err != nil {
		return err
	}
	defer closeLexicon(env, closer)

	analyzer, err := env.analyzer(env.extractor(inf, false))
	if err != nil {
		return err
	}

	meter := env.providers.Meter

	var prom *observability.PrometheusExporter

	if metricsAddr != "" {
		prom, err = observability.NewPrometheusExporter()
		if err != nil {
			return err
		}

		meter = prom.Meter()
	}

	red, err := observability.NewREDMetrics(meter)
	if err != nil {
		return err
	}

	if prom != nil {
		mux := observability.NewMetricsMux(env.providers.Tracer, red, prom.Handler(), readyChecks(closer)...)

		stop, serveErr := serveMetrics(env, metricsAddr, mux)
		if serveErr != nil {
			return serveErr
		}
		defer stop()
		defer prom.Shutdown(context.Background()) //nolint:errcheck // best effort on exit.
	}

	srv := mcp.NewServer(mcp.ServerDeps{
		Logger:     env.logger(),
		Metrics:    red,
		Tracer:     env.providers.Tracer,
		Analyzer:   analyzer,
		Inferencer: inf,
	})

	return srv.Run(cmd.Context())
}

// serveMetrics starts the scrape endpoint and returns a function that stops it.
func serveMetrics(env *environment, addr string, handler http.Handler) (func(), error) {
	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("listen on %s: %w", addr, err)
	}

	server := &http.Server{Handler: handler, ReadHeaderTimeout: metricsShutdownTimeout}

	go func() {
		serveErr := server.Serve(listener)
		if serveErr != nil && !errors.Is(serveErr, http.ErrServerClosed) {
			env.logger().Error("metrics server failed", "error", serveErr)
		}
	}()

	env.logger().Info("serving metrics", "addr", listener.Addr().String())

	return func() {
		ctx, cancel := context.WithTimeout(context.Background(), metricsShutdownTimeout)
		defer cancel()

		shutdownErr := server.Shutdown(ctx)
		if shutdownErr != nil {
			env.logger().Warn("metrics server shutdown failed", "error", shutdownErr)
		}
	}, nil
}

type pinger interface {
	Ping(ctx context.Context) error
}

// readyChecks probes the lexicon database when one is open.
func readyChecks(lexicon io.Closer) []observability.ReadyCheck {
	db, ok := lexicon.(pinger)
	if !ok {
		return nil
	}

	return []observability.ReadyCheck{db.Ping}
}
