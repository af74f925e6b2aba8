package docgen

import (
	"strings"

	"github.com/Sumatoshi-tech/autodoc/pkg/alg/mapx"
	"github.com/Sumatoshi-tech/autodoc/pkg/analyzers/extract"
)

const stubIndent = "    "

// ClassesStub renders classes as Python-like stub text: the class header
// with its bases, the docstring (or the inferred description as a comment),
// class variables and every method.
func ClassesStub(classes *mapx.OrderedMap[*extract.ClassRecord]) string {
	var sb strings.Builder

	for name, class := range classes.All() {
		sb.WriteString("class " + name)

		if len(class.BaseClasses) > 0 {
			sb.WriteString("(" + strings.Join(class.BaseClasses, ", ") + ")")
		}

		sb.WriteString(":\n")

		switch {
		case class.Documented():
			sb.WriteString(stubIndent + `"""` + *class.Docstring + `"""` + "\n\n")
		case class.InferredDescription != "":
			sb.WriteString(stubIndent + "# " + class.InferredDescription + "\n\n")
		}

		for _, v := range class.ClassVariables {
			sb.WriteString(stubIndent + v + "\n")
		}

		for method, fn := range class.Methods.All() {
			writeFunctionStub(&sb, method, fn, stubIndent)
		}

		sb.WriteString("\n")
	}

	return sb.String()
}

// FunctionsStub renders module-level functions as Python-like stub text.
func FunctionsStub(functions *mapx.OrderedMap[*extract.FunctionRecord]) string {
	var sb strings.Builder

	for name, fn := range functions.All() {
		writeFunctionStub(&sb, name, fn, "")
	}

	return sb.String()
}

func writeFunctionStub(sb *strings.Builder, name string, fn *extract.FunctionRecord, indent string) {
	sb.WriteString(indent + "def " + fn.Signature(name) + ":\n")

	switch {
	case fn.Documented():
		sb.WriteString(indent + stubIndent + `"""` + *fn.Docstring + `"""` + "\n")
	case fn.InferredDescription != "":
		sb.WriteString(indent + stubIndent + "# " + fn.InferredDescription + "\n")
	}

	sb.WriteString("\n")
}
