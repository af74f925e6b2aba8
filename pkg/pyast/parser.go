// Package pyast parses Python source with the tree-sitter Python grammar and
// exposes the small set of node helpers the analyzers need.
package pyast

import (
	"context"
	"errors"
	"fmt"
	"sync"

	sitter "github.com/alexaandru/go-tree-sitter-bare"

	"github.com/alexaandru/go-sitter-forest/python"
)

// Sentinel errors for parser operations.
var (
	// ErrSyntax is matched by every *SyntaxError.
	ErrSyntax = errors.New("invalid syntax")

	errNoRootNode = errors.New("pyast: no root node")
	errPoolType   = errors.New("pyast: pool returned unexpected type")
)

const languageName = "python"

var (
	languageOnce sync.Once
	language     *sitter.Language
)

// Language returns the shared tree-sitter Python grammar.
func Language() *sitter.Language {
	languageOnce.Do(func() {
		language = sitter.NewLanguage(python.GetLanguage())
	})

	return language
}

// LanguageName is the grammar name used in logs and metrics.
func LanguageName() string {
	return languageName
}

var parserPool = sync.Pool{
	New: func() any {
		tsParser := sitter.NewParser()
		tsParser.SetLanguage(Language())

		return tsParser
	},
}

// Tree is a parsed Python source file. Close must be called to release the
// underlying tree-sitter tree.
type Tree struct {
	tree   *sitter.Tree
	Source []byte
}

// Root returns the module node.
func (t *Tree) Root() sitter.Node {
	return t.tree.RootNode()
}

// Text returns the source text spanned by n.
func (t *Tree) Text(n sitter.Node) string {
	return Text(n, t.Source)
}

// Close releases the tree.
func (t *Tree) Close() {
	if t.tree != nil {
		t.tree.Close()
		t.tree = nil
	}
}

// Parse parses Python source. A source that the grammar can only recover
// from with ERROR or MISSING nodes is rejected with a *SyntaxError locating
// the first such node, as are Python 2 statements and inconsistent
// indentation. A done ctx fails before parsing starts.
func Parse(ctx context.Context, source []byte) (*Tree, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("pyast: %w", err)
	}

	tsParser, ok := parserPool.Get().(*sitter.Parser)
	if !ok {
		return nil, errPoolType
	}

	defer parserPool.Put(tsParser)

	// Pooled parsers never see a cancellable context: its watcher goroutine
	// may set the cancel flag after the parser is back in the pool.
	tsTree, err := tsParser.ParseString(context.Background(), nil, source)
	if err != nil {
		return nil, fmt.Errorf("pyast: failed to parse: %w", err)
	}

	tree := &Tree{tree: tsTree, Source: source}

	root := tsTree.RootNode()
	if root.IsNull() {
		tree.Close()

		return nil, errNoRootNode
	}

	if root.HasError() {
		synErr := locateSyntaxError(root, source)
		tree.Close()

		return nil, synErr
	}

	if synErr := checkPython3(root, source); synErr != nil {
		tree.Close()

		return nil, synErr
	}

	return tree, nil
}
