// Package docgen turns analysis reports into documentation: a per-file
// documentation model, Python stub text and a browsable HTML site.
package docgen

import (
	"strings"

	"github.com/Sumatoshi-tech/autodoc/pkg/alg/mapx"
	"github.com/Sumatoshi-tech/autodoc/pkg/analyzers/extract"
	"github.com/Sumatoshi-tech/autodoc/pkg/analyzers/maintainability"
	"github.com/Sumatoshi-tech/autodoc/pkg/autodoc"
)

// FileDoc is the documentation of one analyzed file. When Error is set the
// file could not be analyzed and only Path is meaningful besides it.
type FileDoc struct {
	Path                string                                    `json:"-"                              yaml:"-"`
	Error               string                                    `json:"error,omitempty"                yaml:"error,omitempty"`
	ModuleDocstring     string                                    `json:"module_docstring,omitempty"     yaml:"module_docstring,omitempty"`
	InferredDescription string                                    `json:"inferred_description,omitempty" yaml:"inferred_description,omitempty"`
	Imports             string                                    `json:"imports,omitempty"              yaml:"imports,omitempty"`
	Classes             *mapx.OrderedMap[*extract.ClassRecord]    `json:"classes,omitempty"              yaml:"classes,omitempty"`
	Functions           *mapx.OrderedMap[*extract.FunctionRecord] `json:"functions,omitempty"            yaml:"functions,omitempty"`
	GlobalVariables     string                                    `json:"global_variables,omitempty"     yaml:"global_variables,omitempty"`
	Complexity          *maintainability.Summary                  `json:"complexity,omitempty"           yaml:"complexity,omitempty"`
}

// Failed reports whether the file carries an error instead of documentation.
func (d FileDoc) Failed() bool {
	return d.Error != ""
}

// ImportLines splits Imports back into "import x" lines.
func (d FileDoc) ImportLines() []string {
	return splitLines(d.Imports)
}

// GlobalVariableNames splits GlobalVariables back into names.
func (d FileDoc) GlobalVariableNames() []string {
	return splitLines(d.GlobalVariables)
}

// Documentation is the generated model for a batch, in report order.
type Documentation struct {
	Files []FileDoc
}

// Generate builds documentation from a report. A failed file keeps only its
// error; everything else maps one-to-one from its SourceUnit.
func Generate(report *autodoc.Report) *Documentation {
	doc := &Documentation{Files: make([]FileDoc, 0, len(report.Files))}

	for _, res := range report.Files {
		if res.Failed() {
			doc.Files = append(doc.Files, FileDoc{Path: res.Path, Error: res.Error})

			continue
		}

		doc.Files = append(doc.Files, fileDoc(res.Path, res.Unit))
	}

	return doc
}

func fileDoc(path string, unit *extract.SourceUnit) FileDoc {
	fd := FileDoc{
		Path:                path,
		InferredDescription: unit.InferredDescription,
		Imports:             importsDoc(unit.Imports),
		Classes:             &unit.Classes,
		Functions:           &unit.Functions,
		GlobalVariables:     strings.Join(unit.GlobalVariables, "\n"),
	}

	if unit.ModuleDocstring != nil {
		fd.ModuleDocstring = *unit.ModuleDocstring
	}

	if unit.Metrics != nil {
		summary := unit.Metrics.Summary
		fd.Complexity = &summary
	}

	return fd
}

func importsDoc(imports []string) string {
	lines := make([]string, 0, len(imports))
	for _, imp := range imports {
		lines = append(lines, "import "+imp)
	}

	return strings.Join(lines, "\n")
}

func splitLines(s string) []string {
	if s == "" {
		return nil
	}

	return strings.Split(s, "\n")
}
