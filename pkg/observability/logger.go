package observability

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"go.opentelemetry.io/otel/trace"
)

// NewLogger builds the logger for cfg: text or JSON records on out, each
// tagged with the service identity and, inside a span, its trace and span
// IDs.
func NewLogger(cfg Config, out io.Writer) *slog.Logger {
	opts := &slog.HandlerOptions{Level: cfg.LogLevel}

	if cfg.LogJSON {
		return slog.New(NewTracingHandler(slog.NewJSONHandler(out, opts), cfg))
	}

	return slog.New(NewTracingHandler(slog.NewTextHandler(out, opts), cfg))
}

// TracingHandler decorates another [slog.Handler] with span identifiers.
type TracingHandler struct {
	next slog.Handler
}

// NewTracingHandler wraps next. The identity attributes are bound before
// any group so they always land at the top level of a record.
func NewTracingHandler(next slog.Handler, cfg Config) *TracingHandler {
	return &TracingHandler{next: next.WithAttrs(identity(cfg))}
}

func identity(cfg Config) []slog.Attr {
	attrs := make([]slog.Attr, 0, 4) //nolint:mnd // service, mode, env, version.
	attrs = append(attrs,
		slog.String("service", cfg.ServiceName),
		slog.String("mode", string(cfg.Mode)),
	)

	for key, val := range map[string]string{"env": cfg.Environment, "version": cfg.ServiceVersion} {
		if val != "" {
			attrs = append(attrs, slog.String(key, val))
		}
	}

	return attrs
}

// Enabled implements [slog.Handler].
func (h *TracingHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.next.Enabled(ctx, level)
}

// Handle implements [slog.Handler].
func (h *TracingHandler) Handle(ctx context.Context, record slog.Record) error {
	if span := trace.SpanContextFromContext(ctx); span.IsValid() {
		record.AddAttrs(
			slog.String("trace_id", span.TraceID().String()),
			slog.String("span_id", span.SpanID().String()),
		)
	}

	if err := h.next.Handle(ctx, record); err != nil {
		return fmt.Errorf("log record: %w", err)
	}

	return nil
}

// WithAttrs implements [slog.Handler].
func (h *TracingHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &TracingHandler{next: h.next.WithAttrs(attrs)}
}

// WithGroup implements [slog.Handler].
func (h *TracingHandler) WithGroup(name string) slog.Handler {
	return &TracingHandler{next: h.next.WithGroup(name)}
}

// Discard is a logger that writes nothing.
func Discard() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}
