package complexity

import (
	"cmp"
	"slices"

	sitter "github.com/alexaandru/go-tree-sitter-bare"
)

// Analyze returns the complexity blocks of a module in source order: each
// module-level function, and each module-level class followed by its
// methods. Closures and inner classes are folded into their parents.
func Analyze(root sitter.Node, source []byte) []Block {
	if root.IsNull() {
		return nil
	}

	v := &visitor{source: source}
	for idx := range root.NamedChildCount() {
		v.visit(root.NamedChild(idx))
	}

	blocks := make([]Block, 0, len(v.functions)+len(v.classes))
	blocks = append(blocks, v.functions...)

	for _, cls := range v.classes {
		blocks = append(blocks, cls)
		blocks = append(blocks, cls.Methods...)
	}

	slices.SortStableFunc(blocks, func(a, b Block) int {
		return cmp.Compare(a.Line, b.Line)
	})

	return blocks
}

// Total sums block complexities.
func Total(blocks []Block) int {
	total := 0
	for _, b := range blocks {
		total += b.Complexity
	}

	return total
}

// Rank grades a block complexity from A (simple) to F (very complex).
func Rank(complexity int) string {
	switch {
	case complexity <= 5:
		return "A"
	case complexity <= 10:
		return "B"
	case complexity <= 20:
		return "C"
	case complexity <= 30:
		return "D"
	case complexity <= 40:
		return "E"
	default:
		return "F"
	}
}
