package config

// Analysis defaults.
const (
	DefaultWorkers         = 0
	DefaultMaxFileSize     = "0"
	DefaultSkipHidden      = false
	DefaultSkipVendor      = false
	DefaultDetectByContent = false
	DefaultIncludeMetrics  = false
)

// DefaultExtensions are the file suffixes analyzed in directory mode.
var DefaultExtensions = []string{".py"}

// Lexicon defaults.
const (
	DefaultLexiconSource    = "builtin"
	DefaultLexiconPath      = "lexicon.db"
	DefaultLexiconCacheSize = 4096
)

// Output defaults.
const (
	DefaultOutputDirectory = "docs"
	DefaultOutputFormat    = "json"
	DefaultOutputTitle     = "Python Documentation"
	DefaultHighlightStyle  = "friendly"
)

// Logging defaults.
const (
	DefaultLogLevel  = "info"
	DefaultLogFormat = "text"
)

// Telemetry defaults.
const (
	DefaultSampleRatio = 1.0
	DefaultEnvironment = "development"
)
