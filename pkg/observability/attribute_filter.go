package observability

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"go.opentelemetry.io/otel/attribute"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
)

// exportedPrefixes are the attribute namespaces autodoc spans may export.
var exportedPrefixes = []string{
	"autodoc.",
	"analysis.",
	"file.",
	"lexicon.",
	"docgen.",
	"mcp.",
	"lsp.",
	"http.",
	"error.",
	"code.",
}

// Source text and user identities never leave the process, even under an
// exported namespace.
var (
	withheldPrefixes = []string{"user.", "source."}
	withheldKeys     = map[string]bool{"email": true, "request.body": true, "response.body": true}
)

func exportable(key string) bool {
	if withheldKeys[key] {
		return false
	}

	for _, prefix := range withheldPrefixes {
		if strings.HasPrefix(key, prefix) {
			return false
		}
	}

	if key == "error" {
		return true
	}

	for _, prefix := range exportedPrefixes {
		if strings.HasPrefix(key, prefix) {
			return true
		}
	}

	return false
}

// attributeFilter is a SpanProcessor that drops non-exportable attributes
// before a finished span reaches its delegate.
type attributeFilter struct {
	delegate sdktrace.SpanProcessor
	logger   *slog.Logger
	reported sync.Map
}

// NewAttributeFilter wraps delegate so exported spans carry only autodoc
// attributes. When logger is non-nil, each dropped key is logged once at
// WARN.
func NewAttributeFilter(delegate sdktrace.SpanProcessor, logger *slog.Logger) sdktrace.SpanProcessor {
	return &attributeFilter{delegate: delegate, logger: logger}
}

func (f *attributeFilter) OnStart(parent context.Context, s sdktrace.ReadWriteSpan) {
	f.delegate.OnStart(parent, s)
}

func (f *attributeFilter) OnEnd(s sdktrace.ReadOnlySpan) {
	attrs := s.Attributes()
	kept := make([]attribute.KeyValue, 0, len(attrs))

	for _, kv := range attrs {
		key := string(kv.Key)
		if exportable(key) {
			kept = append(kept, kv)

			continue
		}

		f.report(key)
	}

	if len(kept) == len(attrs) {
		f.delegate.OnEnd(s)

		return
	}

	f.delegate.OnEnd(&filteredSpan{ReadOnlySpan: s, attrs: kept})
}

func (f *attributeFilter) Shutdown(ctx context.Context) error {
	err := f.delegate.Shutdown(ctx)
	if err != nil {
		return fmt.Errorf("attribute filter shutdown: %w", err)
	}

	return nil
}

func (f *attributeFilter) ForceFlush(ctx context.Context) error {
	err := f.delegate.ForceFlush(ctx)
	if err != nil {
		return fmt.Errorf("attribute filter flush: %w", err)
	}

	return nil
}

func (f *attributeFilter) report(key string) {
	if f.logger == nil {
		return
	}

	if _, seen := f.reported.LoadOrStore(key, struct{}{}); !seen {
		f.logger.Warn("span attribute withheld from export", "key", key)
	}
}

// filteredSpan is a finished span with a reduced attribute set.
type filteredSpan struct {
	sdktrace.ReadOnlySpan

	attrs []attribute.KeyValue
}

func (s *filteredSpan) Attributes() []attribute.KeyValue {
	return s.attrs
}
