package extract

import (
	"fmt"
	"strings"

	sitter "github.com/alexaandru/go-tree-sitter-bare"

	"github.com/Sumatoshi-tech/autodoc/pkg/alg/mapx"
	"github.com/Sumatoshi-tech/autodoc/pkg/analyzers/infer"
	"github.com/Sumatoshi-tech/autodoc/pkg/analyzers/maintainability"
	"github.com/Sumatoshi-tech/autodoc/pkg/pyast"
)

// moduleOutline lists top-level statements only.
type moduleOutline struct {
	classes   []string
	functions []string
	imports   int
	globals   int
}

func outlineModule(root sitter.Node, source []byte) moduleOutline {
	var outline moduleOutline

	for _, stmt := range pyast.NamedChildren(root) {
		switch definitionKind(stmt) {
		case pyast.KindClassDefinition:
			outline.classes = append(outline.classes, definitionName(stmt, source))
		case pyast.KindFunctionDefinition:
			outline.functions = append(outline.functions, definitionName(stmt, source))
		case pyast.KindImportStatement, pyast.KindImportFromStatement, pyast.KindFutureImport:
			outline.imports++
		case pyast.KindExpressionStatement:
			if isNameAssignment(stmt) {
				outline.globals++
			}
		}
	}

	return outline
}

// definitionKind looks through a decorated definition to the class or
// function it wraps.
func definitionKind(stmt sitter.Node) string {
	if stmt.Type() == pyast.KindDecoratedDefinition {
		return pyast.Field(stmt, "definition").Type()
	}

	return stmt.Type()
}

func definitionName(stmt sitter.Node, source []byte) string {
	if stmt.Type() == pyast.KindDecoratedDefinition {
		stmt = pyast.Field(stmt, "definition")
	}

	return pyast.Text(pyast.Field(stmt, "name"), source)
}

func isNameAssignment(stmt sitter.Node) bool {
	children := pyast.NamedChildren(stmt)
	if len(children) != 1 {
		return false
	}

	_, ok := assignedName(children[0])

	return ok
}

func describeModule(root sitter.Node, source []byte, summary maintainability.Summary) string {
	outline := outlineModule(root, source)

	var sb strings.Builder

	sb.WriteString("This module contains:\n")
	fmt.Fprintf(&sb, "- %d classe(s)\n", len(outline.classes))
	fmt.Fprintf(&sb, "- %d function(s)\n", len(outline.functions))
	fmt.Fprintf(&sb, "- %d import statement(s)\n", outline.imports)
	fmt.Fprintf(&sb, "- %d global variable(s)\n", outline.globals)

	writeNameList(&sb, "Classes", outline.classes)
	writeNameList(&sb, "Functions", outline.functions)

	sb.WriteString("\nCode Complexity:\n")
	fmt.Fprintf(&sb, "- Cyclomatic Complexity: %d\n", summary.Cyclomatic)
	fmt.Fprintf(&sb, "- Maintainability Index: %s\n", summary.FormatIndex())

	return sb.String()
}

func writeNameList(sb *strings.Builder, title string, names []string) {
	if len(names) == 0 {
		return
	}

	fmt.Fprintf(sb, "\n%s:\n", title)

	for _, name := range names {
		fmt.Fprintf(sb, "- %s\n", name)
	}
}

func describeClass(name string, body sitter.Node, source []byte, inf *infer.Inferencer) string {
	var (
		methods    []string
		attributes int
	)

	for _, stmt := range pyast.NamedChildren(body) {
		switch {
		case definitionKind(stmt) == pyast.KindFunctionDefinition:
			methods = append(methods, definitionName(stmt, source))
		case stmt.Type() == pyast.KindExpressionStatement && isNameAssignment(stmt):
			attributes++
		}
	}

	var sb strings.Builder

	fmt.Fprintf(&sb, "This class has %d methods and %d attributes.\n", len(methods), attributes)
	writePurpose(&sb, name, inf)

	if functionality := infer.MethodFunctionality(methods); functionality != "" {
		fmt.Fprintf(&sb, "Functionality: %s\n", functionality)
	}

	return sb.String()
}

func describeFunction(name string, positional int, returns bool, def sitter.Node, source []byte,
	inf *infer.Inferencer,
) string {
	result := "None"
	if returns {
		result = "a value"
	}

	var sb strings.Builder

	fmt.Fprintf(&sb, "This function takes %d arguments and returns %s.\n", positional, result)
	writePurpose(&sb, name, inf)

	if tags := callTags(def, source); len(tags) > 0 {
		fmt.Fprintf(&sb, "Functionality: %s\n", strings.Join(tags, infer.Separator))
	}

	return sb.String()
}

func writePurpose(sb *strings.Builder, name string, inf *infer.Inferencer) {
	if purpose, ok := inf.InferPurpose(name); ok && purpose != "" {
		fmt.Fprintf(sb, "Purpose: %s\n", purpose)
	}
}

// callTags lists distinct call sites anywhere inside def, nested
// definitions included, in document order.
func callTags(def sitter.Node, source []byte) []string {
	var tags mapx.OrderedSet[string]

	pyast.Walk(def, func(n sitter.Node) bool {
		if n.Type() != pyast.KindCall {
			return true
		}

		switch callee := pyast.Field(n, "function"); callee.Type() {
		case pyast.KindIdentifier:
			tags.Add(infer.CallTag(pyast.Text(callee, source), false))
		case pyast.KindAttribute:
			tags.Add(infer.CallTag(pyast.Text(pyast.Field(callee, "attribute"), source), true))
		}

		return true
	})

	return tags.Values()
}
