package infer

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
)

// Lexicon sources.
const (
	SourceNone    = "none"
	SourceBuiltin = "builtin"
	SourceSQLite  = "sqlite"
)

// ErrUnknownSource reports an unsupported lexicon source name.
var ErrUnknownSource = errors.New("unknown lexicon source")

// Options selects and tunes the dictionary behind an Inferencer.
type Options struct {
	Logger    *slog.Logger
	Source    string
	Path      string
	CacheSize int
}

// OpenDictionary builds the configured Dictionary. The returned closer
// releases any underlying resources. A lexicon that is configured but
// unavailable is not an error: it is logged at WARN and the result is a nil
// Dictionary, so inference falls back to raw name tokens.
func OpenDictionary(opts Options) (Dictionary, io.Closer, error) {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	switch opts.Source {
	case "", SourceNone:
		return nil, nopCloser{}, nil
	case SourceBuiltin:
		return Builtin(), nopCloser{}, nil
	case SourceSQLite:
		store, err := OpenSQLite(opts.Path, logger)
		if err != nil {
			if errors.Is(err, ErrLexiconUnavailable) {
				logger.Warn("lexicon not available, running without enhanced name inference",
					"path", opts.Path, "error", err)

				return nil, nopCloser{}, nil
			}

			return nil, nil, err
		}

		cached, err := NewCachedDictionary(store, opts.CacheSize)
		if err != nil {
			return nil, nil, errors.Join(err, store.Close())
		}

		return cached, store, nil
	default:
		return nil, nil, fmt.Errorf("%w: %q", ErrUnknownSource, opts.Source)
	}
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }
