package extract

import (
	"strings"

	sitter "github.com/alexaandru/go-tree-sitter-bare"

	"github.com/Sumatoshi-tech/autodoc/pkg/pyast"
)

const futureModule = "__future__"

// importNames lists what an import statement brings in:
//
//	import a.b, c as d        -> a.b, c
//	from m import x, y as z   -> m.x, m.y
//	from . import x           -> .x
//	from ..p import *         -> ..p.*
func importNames(n sitter.Node, source []byte) []string {
	switch n.Type() {
	case pyast.KindImportStatement:
		var names []string

		for _, child := range pyast.NamedChildren(n) {
			names = append(names, importedName(child, source))
		}

		return names
	case pyast.KindFutureImport:
		return fromImportNames(futureModule, pyast.NamedChildren(n), source)
	case pyast.KindImportFromStatement:
		module := pyast.Field(n, "module_name")

		var imported []sitter.Node

		for _, child := range pyast.NamedChildren(n) {
			if !sameNode(child, module) {
				imported = append(imported, child)
			}
		}

		return fromImportNames(moduleName(module, source), imported, source)
	default:
		return nil
	}
}

func fromImportNames(module string, imported []sitter.Node, source []byte) []string {
	prefix := module
	if strings.Trim(module, ".") != "" {
		prefix += "."
	}

	names := make([]string, 0, len(imported))

	for _, child := range imported {
		if child.Type() == pyast.KindWildcardImport {
			names = append(names, prefix+"*")

			continue
		}

		names = append(names, prefix+importedName(child, source))
	}

	return names
}

// importedName is the dotted name of an import clause, ignoring any alias.
func importedName(n sitter.Node, source []byte) string {
	if n.Type() == pyast.KindAliasedImport {
		n = pyast.Field(n, "name")
	}

	return dottedName(n, source)
}

func moduleName(n sitter.Node, source []byte) string {
	if n.Type() != pyast.KindRelativeImport {
		return dottedName(n, source)
	}

	var sb strings.Builder

	for _, child := range pyast.NamedChildren(n) {
		switch child.Type() {
		case pyast.KindImportPrefix:
			sb.WriteString(strings.TrimSpace(pyast.Text(child, source)))
		case pyast.KindDottedName:
			sb.WriteString(dottedName(child, source))
		}
	}

	return sb.String()
}

func dottedName(n sitter.Node, source []byte) string {
	if n.Type() != pyast.KindDottedName {
		return pyast.Text(n, source)
	}

	parts := make([]string, 0, n.NamedChildCount())
	for _, id := range pyast.NamedChildren(n) {
		parts = append(parts, pyast.Text(id, source))
	}

	return strings.Join(parts, ".")
}
