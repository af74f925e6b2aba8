// Package config provides configuration loading and validation for autodoc.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/dustin/go-humanize"
	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Sentinel validation errors.
var (
	ErrInvalidConfig      = errors.New("invalid configuration")
	ErrInvalidSizeFormat  = errors.New("invalid size format")
	ErrLexiconPathMissing = errors.New("lexicon.path is required for the sqlite source")
)

// EnvPrefix prefixes every environment override, e.g. AUTODOC_ANALYSIS_WORKERS.
const EnvPrefix = "AUTODOC"

// Config holds all configuration for autodoc.
type Config struct {
	Analysis  AnalysisConfig  `mapstructure:"analysis"`
	Lexicon   LexiconConfig   `mapstructure:"lexicon"`
	Output    OutputConfig    `mapstructure:"output"`
	Logging   LoggingConfig   `mapstructure:"logging"`
	Telemetry TelemetryConfig `mapstructure:"telemetry"`
}

// AnalysisConfig controls file discovery and per-file analysis.
type AnalysisConfig struct {
	Extensions      []string `mapstructure:"extensions"        validate:"min=1,dive,startswith=."`
	MaxFileSize     string   `mapstructure:"max_file_size"     validate:"required"`
	Workers         int      `mapstructure:"workers"           validate:"gte=0"`
	SkipHidden      bool     `mapstructure:"skip_hidden"`
	SkipVendor      bool     `mapstructure:"skip_vendor"`
	DetectByContent bool     `mapstructure:"detect_by_content"`
	IncludeMetrics  bool     `mapstructure:"include_metrics"`
}

// LexiconConfig selects the dictionary used for purpose inference.
type LexiconConfig struct {
	Source    string `mapstructure:"source"     validate:"oneof=none builtin sqlite"`
	Path      string `mapstructure:"path"`
	CacheSize int    `mapstructure:"cache_size" validate:"gte=0"`
}

// OutputConfig controls report and documentation output.
type OutputConfig struct {
	Directory      string `mapstructure:"directory"       validate:"required"`
	Format         string `mapstructure:"format"          validate:"oneof=json yaml text table"`
	Title          string `mapstructure:"title"`
	HighlightStyle string `mapstructure:"highlight_style"`
}

// LoggingConfig holds logging-specific configuration.
type LoggingConfig struct {
	Level  string `mapstructure:"level"  validate:"oneof=debug info warn error"`
	Format string `mapstructure:"format" validate:"oneof=json text"`
}

// TelemetryConfig holds OpenTelemetry export settings.
type TelemetryConfig struct {
	OTLPEndpoint string  `mapstructure:"otlp_endpoint"`
	OTLPHeaders  string  `mapstructure:"otlp_headers"`
	Environment  string  `mapstructure:"environment"`
	SampleRatio  float64 `mapstructure:"sample_ratio"  validate:"gte=0,lte=1"`
	OTLPInsecure bool    `mapstructure:"otlp_insecure"`
}

// MaxFileSizeBytes parses MaxFileSize ("1MB", "512KiB"). "0" means no limit.
func (a AnalysisConfig) MaxFileSizeBytes() (int64, error) {
	size, err := humanize.ParseBytes(a.MaxFileSize)
	if err != nil {
		return 0, fmt.Errorf("%w for max_file_size: %q", ErrInvalidSizeFormat, a.MaxFileSize)
	}

	return int64(size), nil
}

// SlogLevel maps Level onto a slog level.
func (l LoggingConfig) SlogLevel() slog.Level {
	switch strings.ToLower(l.Level) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// LoadDotEnv loads environment variables from the given .env files, or from
// ./.env when none are given. Missing files are ignored; variables already
// set in the environment win.
func LoadDotEnv(files ...string) error {
	if len(files) == 0 {
		files = []string{".env"}
	}

	for _, file := range files {
		err := godotenv.Load(file)
		if err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("load %s: %w", file, err)
		}
	}

	return nil
}

// LoadConfig loads configuration from file and environment variables.
func LoadConfig(configPath string) (*Config, error) {
	viperCfg := viper.New()

	setDefaults(viperCfg)

	if configPath != "" {
		viperCfg.SetConfigFile(configPath)
	} else {
		viperCfg.SetConfigName("autodoc")
		viperCfg.SetConfigType("yaml")
		viperCfg.AddConfigPath(".")
		viperCfg.AddConfigPath("./config")

		if home, err := os.UserHomeDir(); err == nil {
			viperCfg.AddConfigPath(filepath.Join(home, ".config", "autodoc"))
		}
	}

	viperCfg.SetEnvPrefix(EnvPrefix)
	viperCfg.AutomaticEnv()
	viperCfg.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	readErr := viperCfg.ReadInConfig()
	if readErr != nil {
		var notFoundErr viper.ConfigFileNotFoundError
		if !errors.As(readErr, &notFoundErr) {
			return nil, fmt.Errorf("failed to read config file: %w", readErr)
		}
	}

	var config Config

	unmarshalErr := viperCfg.Unmarshal(&config)
	if unmarshalErr != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", unmarshalErr)
	}

	validateErr := Validate(&config)
	if validateErr != nil {
		return nil, validateErr
	}

	return &config, nil
}

// Default returns the configuration used when no file or environment
// overrides are present.
func Default() *Config {
	return &Config{
		Analysis: AnalysisConfig{
			Extensions:      append([]string(nil), DefaultExtensions...),
			MaxFileSize:     DefaultMaxFileSize,
			Workers:         DefaultWorkers,
			SkipHidden:      DefaultSkipHidden,
			SkipVendor:      DefaultSkipVendor,
			DetectByContent: DefaultDetectByContent,
			IncludeMetrics:  DefaultIncludeMetrics,
		},
		Lexicon: LexiconConfig{
			Source:    DefaultLexiconSource,
			Path:      DefaultLexiconPath,
			CacheSize: DefaultLexiconCacheSize,
		},
		Output: OutputConfig{
			Directory:      DefaultOutputDirectory,
			Format:         DefaultOutputFormat,
			Title:          DefaultOutputTitle,
			HighlightStyle: DefaultHighlightStyle,
		},
		Logging: LoggingConfig{
			Level:  DefaultLogLevel,
			Format: DefaultLogFormat,
		},
		Telemetry: TelemetryConfig{
			Environment: DefaultEnvironment,
			SampleRatio: DefaultSampleRatio,
		},
	}
}

func setDefaults(viperCfg *viper.Viper) {
	def := Default()

	viperCfg.SetDefault("analysis.extensions", def.Analysis.Extensions)
	viperCfg.SetDefault("analysis.max_file_size", def.Analysis.MaxFileSize)
	viperCfg.SetDefault("analysis.workers", def.Analysis.Workers)
	viperCfg.SetDefault("analysis.skip_hidden", def.Analysis.SkipHidden)
	viperCfg.SetDefault("analysis.skip_vendor", def.Analysis.SkipVendor)
	viperCfg.SetDefault("analysis.detect_by_content", def.Analysis.DetectByContent)
	viperCfg.SetDefault("analysis.include_metrics", def.Analysis.IncludeMetrics)

	viperCfg.SetDefault("lexicon.source", def.Lexicon.Source)
	viperCfg.SetDefault("lexicon.path", def.Lexicon.Path)
	viperCfg.SetDefault("lexicon.cache_size", def.Lexicon.CacheSize)

	viperCfg.SetDefault("output.directory", def.Output.Directory)
	viperCfg.SetDefault("output.format", def.Output.Format)
	viperCfg.SetDefault("output.title", def.Output.Title)
	viperCfg.SetDefault("output.highlight_style", def.Output.HighlightStyle)

	viperCfg.SetDefault("logging.level", def.Logging.Level)
	viperCfg.SetDefault("logging.format", def.Logging.Format)

	viperCfg.SetDefault("telemetry.otlp_endpoint", "")
	viperCfg.SetDefault("telemetry.otlp_headers", "")
	viperCfg.SetDefault("telemetry.otlp_insecure", false)
	viperCfg.SetDefault("telemetry.environment", def.Telemetry.Environment)
	viperCfg.SetDefault("telemetry.sample_ratio", def.Telemetry.SampleRatio)
}

var (
	validatorInstance *validator.Validate
	validatorOnce     sync.Once
)

func getValidator() *validator.Validate {
	validatorOnce.Do(func() {
		validatorInstance = validator.New(validator.WithRequiredStructEnabled())
	})

	return validatorInstance
}

// Validate checks struct constraints and cross-field rules.
func Validate(config *Config) error {
	err := getValidator().Struct(config)
	if err != nil {
		var fieldErrs validator.ValidationErrors
		if errors.As(err, &fieldErrs) && len(fieldErrs) > 0 {
			first := fieldErrs[0]

			return fmt.Errorf("%w: %s failed %q (value %v)",
				ErrInvalidConfig, first.Namespace(), first.Tag(), first.Value())
		}

		return fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}

	if _, sizeErr := config.Analysis.MaxFileSizeBytes(); sizeErr != nil {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, sizeErr)
	}

	if config.Lexicon.Source == "sqlite" && config.Lexicon.Path == "" {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, ErrLexiconPathMissing)
	}

	return nil
}
