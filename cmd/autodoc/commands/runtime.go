package commands

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/Sumatoshi-tech/autodoc/pkg/analyzers/extract"
	"github.com/Sumatoshi-tech/autodoc/pkg/analyzers/infer"
	"github.com/Sumatoshi-tech/autodoc/pkg/autodoc"
	"github.com/Sumatoshi-tech/autodoc/pkg/config"
	"github.com/Sumatoshi-tech/autodoc/pkg/observability"
	"github.com/Sumatoshi-tech/autodoc/pkg/version"
)

// Persistent flags registered on the root command.
const (
	FlagConfig  = "config"
	FlagVerbose = "verbose"
	FlagQuiet   = "quiet"
)

// environment is the per-invocation state shared by every command: loaded
// configuration plus telemetry providers.
type environment struct {
	cfg       *config.Config
	providers observability.Providers
	metrics   *observability.AnalysisMetrics
}

func setup(cmd *cobra.Command, mode observability.AppMode) (*environment, error) {
	err := config.LoadDotEnv()
	if err != nil {
		return nil, err
	}

	cfg, err := config.LoadConfig(flagString(cmd, FlagConfig))
	if err != nil {
		return nil, err
	}

	obsCfg := observabilityConfig(cfg, mode, flagBool(cmd, FlagVerbose), flagBool(cmd, FlagQuiet))

	providers, err := observability.InitWithWriter(obsCfg, cmd.ErrOrStderr())
	if err != nil {
		return nil, fmt.Errorf("init observability: %w", err)
	}

	metrics, err := observability.NewAnalysisMetrics(providers.Meter)
	if err != nil {
		return nil, fmt.Errorf("init metrics: %w", err)
	}

	return &environment{cfg: cfg, providers: providers, metrics: metrics}, nil
}

func observabilityConfig(cfg *config.Config, mode observability.AppMode, verbose, quiet bool) observability.Config {
	obsCfg := observability.DefaultConfig()
	obsCfg.ServiceVersion = version.Version
	obsCfg.Mode = mode
	obsCfg.Environment = cfg.Telemetry.Environment
	obsCfg.OTLPEndpoint = cfg.Telemetry.OTLPEndpoint
	obsCfg.OTLPHeaders = observability.ParseOTLPHeaders(cfg.Telemetry.OTLPHeaders)
	obsCfg.OTLPInsecure = cfg.Telemetry.OTLPInsecure
	obsCfg.SampleRatio = cfg.Telemetry.SampleRatio
	obsCfg.LogLevel = cfg.Logging.SlogLevel()
	obsCfg.LogJSON = cfg.Logging.Format == "json" || mode == observability.ModeMCP

	switch {
	case quiet:
		obsCfg.LogLevel = slog.LevelError
	case verbose:
		obsCfg.LogLevel = slog.LevelDebug
		obsCfg.DebugTrace = true
	}

	return obsCfg
}

func (env *environment) logger() *slog.Logger {
	return env.providers.Logger
}

func (env *environment) close() {
	err := env.providers.Shutdown(context.Background())
	if err != nil {
		env.logger().Warn("observability shutdown failed", "error", err)
	}
}

// inferencer opens the configured lexicon. The closer must be closed once
// analysis is done.
func (env *environment) inferencer() (*infer.Inferencer, io.Closer, error) {
	dict, closer, err := infer.OpenDictionary(infer.Options{
		Logger:    env.logger(),
		Source:    env.cfg.Lexicon.Source,
		Path:      env.cfg.Lexicon.Path,
		CacheSize: env.cfg.Lexicon.CacheSize,
	})
	if err != nil {
		return nil, nil, fmt.Errorf("open lexicon: %w", err)
	}

	return infer.New(dict), closer, nil
}

func (env *environment) extractor(inf *infer.Inferencer, withMetrics bool) *extract.Extractor {
	return extract.New(
		extract.WithInferencer(inf),
		extract.WithLogger(env.logger()),
		extract.WithMetrics(withMetrics || env.cfg.Analysis.IncludeMetrics),
	)
}

func (env *environment) analyzer(ex *extract.Extractor) (*autodoc.Analyzer, error) {
	analysis := env.cfg.Analysis

	maxSize, err := analysis.MaxFileSizeBytes()
	if err != nil {
		return nil, err
	}

	return autodoc.NewAnalyzer(
		autodoc.WithExtractor(ex),
		autodoc.WithLogger(env.logger()),
		autodoc.WithTracer(env.providers.Tracer),
		autodoc.WithMetrics(env.metrics),
		autodoc.WithWorkers(analysis.Workers),
		autodoc.WithMaxFileSize(maxSize),
		autodoc.WithDiscoverOptions(autodoc.DiscoverOptions{
			Extensions:      analysis.Extensions,
			SkipHidden:      analysis.SkipHidden,
			SkipVendor:      analysis.SkipVendor,
			DetectByContent: analysis.DetectByContent,
		}),
	), nil
}

func closeLexicon(env *environment, closer io.Closer) {
	err := closer.Close()
	if err != nil {
		env.logger().Warn("lexicon close failed", "error", err)
	}
}

func flagString(cmd *cobra.Command, name string) string {
	if flag := cmd.Flags().Lookup(name); flag != nil {
		return flag.Value.String()
	}

	return ""
}

func flagBool(cmd *cobra.Command, name string) bool {
	return flagString(cmd, name) == "true"
}

// paint returns a color printer that can be switched off per command
// without touching the package-wide color.NoColor.
func paint(noColor bool, attrs ...color.Attribute) *color.Color {
	c := color.New(attrs...)
	if noColor {
		c.DisableColor()
	}

	return c
}
