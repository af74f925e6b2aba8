package lsp

import (
	"sync"

	"github.com/Sumatoshi-tech/autodoc/pkg/analyzers/extract"
)

// Document is an open text document and its latest analysis. Exactly one of
// Unit and Err is set once the document has been analyzed.
type Document struct {
	Text string
	Unit *extract.SourceUnit
	Err  error
}

// DocumentStore is a thread-safe store for open documents keyed by URI.
type DocumentStore struct {
	documents map[string]Document
	mu        sync.RWMutex
}

// NewDocumentStore creates a new empty DocumentStore.
func NewDocumentStore() *DocumentStore {
	return &DocumentStore{
		documents: make(map[string]Document),
	}
}

// Set stores a document for the given URI.
func (ds *DocumentStore) Set(uri string, doc Document) {
	ds.mu.Lock()
	defer ds.mu.Unlock()

	ds.documents[uri] = doc
}

// Get retrieves a document by URI.
func (ds *DocumentStore) Get(uri string) (Document, bool) {
	ds.mu.RLock()
	defer ds.mu.RUnlock()

	doc, ok := ds.documents[uri]

	return doc, ok
}

// Delete removes a document by URI.
func (ds *DocumentStore) Delete(uri string) {
	ds.mu.Lock()
	defer ds.mu.Unlock()

	delete(ds.documents, uri)
}
