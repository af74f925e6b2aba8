package infer

import (
	"fmt"

	lru "github.com/hashicorp/golang-lru/v2"
)

// DefaultCacheSize bounds the number of memoized lookups.
const DefaultCacheSize = 4096

type cachedDefinition struct {
	definition string
	ok         bool
}

// CachedDictionary memoizes lookups, including misses, of a slower
// Dictionary. It is safe for concurrent use.
type CachedDictionary struct {
	inner Dictionary
	cache *lru.Cache[string, cachedDefinition]
}

// NewCachedDictionary wraps inner with an LRU cache of the given size.
func NewCachedDictionary(inner Dictionary, size int) (*CachedDictionary, error) {
	if size <= 0 {
		size = DefaultCacheSize
	}

	cache, err := lru.New[string, cachedDefinition](size)
	if err != nil {
		return nil, fmt.Errorf("create lexicon cache: %w", err)
	}

	return &CachedDictionary{inner: inner, cache: cache}, nil
}

// Lookup implements Dictionary.
func (d *CachedDictionary) Lookup(word string) (string, bool) {
	if hit, ok := d.cache.Get(word); ok {
		return hit.definition, hit.ok
	}

	definition, ok := d.inner.Lookup(word)
	d.cache.Add(word, cachedDefinition{definition: definition, ok: ok})

	return definition, ok
}

// Len returns the number of cached words.
func (d *CachedDictionary) Len() int {
	return d.cache.Len()
}
