package observability

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetricgrpc"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/metric"
	noopmetric "go.opentelemetry.io/otel/metric/noop"
	"go.opentelemetry.io/otel/propagation"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
	"go.opentelemetry.io/otel/trace"
	nooptrace "go.opentelemetry.io/otel/trace/noop"
)

// Instrumentation scope names.
const (
	TracerName = "autodoc"
	MeterName  = "autodoc"
)

// Standard OpenTelemetry sampler overrides.
const (
	envTracesSampler    = "OTEL_TRACES_SAMPLER"
	envTracesSamplerArg = "OTEL_TRACES_SAMPLER_ARG"
)

var namedSamplers = map[string]func(ratio float64) sdktrace.Sampler{
	"always_on":  func(float64) sdktrace.Sampler { return sdktrace.AlwaysSample() },
	"always_off": func(float64) sdktrace.Sampler { return sdktrace.NeverSample() },
	"traceidratio": func(ratio float64) sdktrace.Sampler {
		return sdktrace.TraceIDRatioBased(ratio)
	},
	"parentbased_always_on": func(float64) sdktrace.Sampler {
		return sdktrace.ParentBased(sdktrace.AlwaysSample())
	},
	"parentbased_always_off": func(float64) sdktrace.Sampler {
		return sdktrace.ParentBased(sdktrace.NeverSample())
	},
	"parentbased_traceidratio": func(ratio float64) sdktrace.Sampler {
		return sdktrace.ParentBased(sdktrace.TraceIDRatioBased(ratio))
	},
}

// Providers holds the initialized observability providers.
type Providers struct {
	Tracer trace.Tracer
	Meter  metric.Meter
	Logger *slog.Logger

	// Shutdown flushes pending telemetry. Must be called before exit.
	Shutdown func(ctx context.Context) error
}

// Init initializes tracing, metrics and structured logging. Logs go to
// stderr so stdout stays free for reports and stdio protocols. When
// OTLPEndpoint is empty, no-op providers are used.
func Init(cfg Config) (Providers, error) {
	return InitWithWriter(cfg, os.Stderr)
}

// InitWithWriter is Init with an explicit log destination.
func InitWithWriter(cfg Config, logOut io.Writer) (Providers, error) {
	logger := NewLogger(cfg, logOut)

	if !cfg.Exporting() {
		return Providers{
			Tracer:   nooptrace.NewTracerProvider().Tracer(TracerName),
			Meter:    noopmetric.NewMeterProvider().Meter(MeterName),
			Logger:   logger,
			Shutdown: func(context.Context) error { return nil },
		}, nil
	}

	exp := exportSettings{cfg: cfg, logOut: logOut}

	res, err := exp.resource()
	if err != nil {
		return Providers{}, err
	}

	ctx := context.Background()

	tp, err := exp.tracerProvider(ctx, res)
	if err != nil {
		return Providers{}, err
	}

	mp, err := exp.meterProvider(ctx, res)
	if err != nil {
		return Providers{}, errors.Join(err, tp.Shutdown(ctx))
	}

	var tracing trace.TracerProvider = tp
	if !cfg.TraceVerbose {
		tracing = NewFilteringTracerProvider(tp)
	}

	otel.SetTracerProvider(tracing)
	otel.SetMeterProvider(mp)
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{},
		propagation.Baggage{},
	))

	return Providers{
		Tracer:   tracing.Tracer(TracerName),
		Meter:    mp.Meter(MeterName),
		Logger:   logger,
		Shutdown: exp.shutdown(tp, mp),
	}, nil
}

// exportSettings builds the OTLP-backed providers for one Config.
type exportSettings struct {
	cfg    Config
	logOut io.Writer
}

func (e exportSettings) resource() (*resource.Resource, error) {
	attrs := []attribute.KeyValue{semconv.ServiceName(e.cfg.ServiceName)}

	if e.cfg.ServiceVersion != "" {
		attrs = append(attrs, semconv.ServiceVersion(e.cfg.ServiceVersion))
	}

	if e.cfg.Environment != "" {
		attrs = append(attrs, semconv.DeploymentEnvironment(e.cfg.Environment))
	}

	if e.cfg.Mode != "" {
		attrs = append(attrs, attribute.String("autodoc.mode", string(e.cfg.Mode)))
	}

	res, err := resource.New(context.Background(), resource.WithAttributes(attrs...))
	if err != nil {
		return nil, fmt.Errorf("build otel resource: %w", err)
	}

	return res, nil
}

func (e exportSettings) tracerProvider(ctx context.Context, res *resource.Resource) (*sdktrace.TracerProvider, error) {
	opts := []otlptracegrpc.Option{otlptracegrpc.WithEndpoint(e.cfg.OTLPEndpoint)}
	if e.cfg.OTLPInsecure {
		opts = append(opts, otlptracegrpc.WithInsecure())
	}

	if len(e.cfg.OTLPHeaders) > 0 {
		opts = append(opts, otlptracegrpc.WithHeaders(e.cfg.OTLPHeaders))
	}

	exporter, err := otlptracegrpc.New(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("create trace exporter: %w", err)
	}

	var filterLogger *slog.Logger
	if e.cfg.DebugTrace {
		filterLogger = slog.New(slog.NewTextHandler(e.logOut, &slog.HandlerOptions{Level: slog.LevelWarn}))
	}

	return sdktrace.NewTracerProvider(
		sdktrace.WithSpanProcessor(NewAttributeFilter(sdktrace.NewBatchSpanProcessor(exporter), filterLogger)),
		sdktrace.WithResource(res),
		sdktrace.WithSampler(sampler(e.cfg)),
	), nil
}

func (e exportSettings) meterProvider(ctx context.Context, res *resource.Resource) (*sdkmetric.MeterProvider, error) {
	opts := []otlpmetricgrpc.Option{otlpmetricgrpc.WithEndpoint(e.cfg.OTLPEndpoint)}
	if e.cfg.OTLPInsecure {
		opts = append(opts, otlpmetricgrpc.WithInsecure())
	}

	if len(e.cfg.OTLPHeaders) > 0 {
		opts = append(opts, otlpmetricgrpc.WithHeaders(e.cfg.OTLPHeaders))
	}

	exporter, err := otlpmetricgrpc.New(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("create metric exporter: %w", err)
	}

	return sdkmetric.NewMeterProvider(
		sdkmetric.WithReader(sdkmetric.NewPeriodicReader(exporter)),
		sdkmetric.WithResource(res),
	), nil
}

func (e exportSettings) shutdown(tp *sdktrace.TracerProvider, mp *sdkmetric.MeterProvider) func(context.Context) error {
	timeout := e.cfg.shutdownTimeout()

	return func(ctx context.Context) error {
		ctx, cancel := context.WithTimeout(ctx, timeout)
		defer cancel()

		return errors.Join(tp.Shutdown(ctx), mp.Shutdown(ctx))
	}
}

// sampler picks the trace sampler: always on for debug tracing, then the
// OTEL_TRACES_SAMPLER override, then the configured ratio.
func sampler(cfg Config) sdktrace.Sampler {
	if cfg.DebugTrace {
		return sdktrace.AlwaysSample()
	}

	if name := os.Getenv(envTracesSampler); name != "" {
		if build, ok := namedSamplers[name]; ok {
			return build(parseRatio(os.Getenv(envTracesSamplerArg)))
		}
	}

	if cfg.SampleRatio > 0 {
		return sdktrace.ParentBased(sdktrace.TraceIDRatioBased(cfg.SampleRatio))
	}

	return sdktrace.ParentBased(sdktrace.AlwaysSample())
}

// ParseOTLPHeaders parses "key=value,key=value". Returns nil for empty or
// invalid input.
func ParseOTLPHeaders(raw string) map[string]string {
	headers := make(map[string]string)

	for pair := range strings.SplitSeq(raw, ",") {
		k, v, ok := strings.Cut(pair, "=")
		if ok && strings.TrimSpace(k) != "" {
			headers[strings.TrimSpace(k)] = strings.TrimSpace(v)
		}
	}

	if len(headers) == 0 {
		return nil
	}

	return headers
}

func parseRatio(s string) float64 {
	ratio, err := strconv.ParseFloat(s, 64)
	if err != nil || ratio < 0 || ratio > 1 {
		return 1.0
	}

	return ratio
}
