// Package observability wires OpenTelemetry tracing and metrics together
// with slog logging for the autodoc CLI and its stdio servers.
package observability

import (
	"log/slog"
	"time"
)

// AppMode says how the binary was launched.
type AppMode string

// Launch modes.
const (
	ModeCLI AppMode = "cli"
	ModeMCP AppMode = "mcp"
	ModeLSP AppMode = "lsp"
)

const (
	defaultServiceName     = "autodoc"
	defaultShutdownTimeout = 5 * time.Second
)

// Config selects the exporters and log format. The zero OTLPEndpoint keeps
// everything local: logs are written, spans and instruments are no-ops.
type Config struct {
	ServiceName    string
	ServiceVersion string
	Environment    string
	Mode           AppMode

	// OTLP gRPC export.
	OTLPEndpoint string
	OTLPHeaders  map[string]string
	OTLPInsecure bool

	// SampleRatio applies unless DebugTrace forces every trace to be kept.
	SampleRatio float64
	DebugTrace  bool

	// TraceVerbose keeps the per-file spans.
	TraceVerbose bool

	LogLevel slog.Level
	LogJSON  bool

	// ShutdownTimeout bounds the final flush; zero means five seconds.
	ShutdownTimeout time.Duration
}

// DefaultConfig is the CLI configuration with export disabled.
func DefaultConfig() Config {
	return Config{
		ServiceName:     defaultServiceName,
		Mode:            ModeCLI,
		LogLevel:        slog.LevelInfo,
		ShutdownTimeout: defaultShutdownTimeout,
	}
}

// Exporting reports whether telemetry leaves the process.
func (c Config) Exporting() bool {
	return c.OTLPEndpoint != ""
}

func (c Config) shutdownTimeout() time.Duration {
	if c.ShutdownTimeout <= 0 {
		return defaultShutdownTimeout
	}

	return c.ShutdownTimeout
}
