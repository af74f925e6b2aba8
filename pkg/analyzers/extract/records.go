// Package extract walks a parsed Python module once and records its
// imports, classes, functions, global variables and docstrings, synthesizing
// descriptions for undocumented declarations.
package extract

import (
	"github.com/Sumatoshi-tech/autodoc/pkg/alg/mapx"
	"github.com/Sumatoshi-tech/autodoc/pkg/analyzers/maintainability"
)

// SourceUnit is the analysis of one Python file.
type SourceUnit struct {
	Path                string                           `json:"path"                 yaml:"path"`
	Imports             []string                         `json:"imports"              yaml:"imports"`
	Classes             mapx.OrderedMap[*ClassRecord]    `json:"classes"              yaml:"classes"`
	Functions           mapx.OrderedMap[*FunctionRecord] `json:"functions"            yaml:"functions"`
	GlobalVariables     []string                         `json:"global_variables"     yaml:"global_variables"`
	ModuleDocstring     *string                          `json:"module_docstring"     yaml:"module_docstring"`
	InferredDescription string                           `json:"inferred_description" yaml:"inferred_description"`
	Metrics             *maintainability.Report          `json:"metrics,omitempty"    yaml:"metrics,omitempty"`
}

// ClassRecord describes a class definition.
type ClassRecord struct {
	Docstring           *string                          `json:"docstring"            yaml:"docstring"`
	Methods             mapx.OrderedMap[*FunctionRecord] `json:"methods"              yaml:"methods"`
	ClassVariables      []string                         `json:"class_variables"      yaml:"class_variables"`
	BaseClasses         []string                         `json:"base_classes"         yaml:"base_classes"`
	InferredDescription string                           `json:"inferred_description" yaml:"inferred_description"`
	Line                int                              `json:"line,omitempty"       yaml:"line,omitempty"`
	EndLine             int                              `json:"end_line,omitempty"   yaml:"end_line,omitempty"`
}

// FunctionRecord describes a function or method definition.
type FunctionRecord struct {
	Docstring           *string  `json:"docstring"            yaml:"docstring"`
	Args                []Arg    `json:"args"                 yaml:"args"`
	Returns             *string  `json:"returns"              yaml:"returns"`
	Decorators          []string `json:"decorators"           yaml:"decorators"`
	InferredDescription string   `json:"inferred_description" yaml:"inferred_description"`
	Async               bool     `json:"async,omitempty"      yaml:"async,omitempty"`
	Line                int      `json:"line,omitempty"       yaml:"line,omitempty"`
	EndLine             int      `json:"end_line,omitempty"   yaml:"end_line,omitempty"`
}

// Arg is a function parameter. Variadic parameters are named "*args" and
// "**kwargs".
type Arg struct {
	Name       string `json:"name"                 yaml:"name"`
	Annotation string `json:"annotation,omitempty" yaml:"annotation,omitempty"`
}

// Documented reports whether the record has a non-empty docstring.
func (f *FunctionRecord) Documented() bool {
	return f.Docstring != nil && *f.Docstring != ""
}

// Documented reports whether the record has a non-empty docstring.
func (c *ClassRecord) Documented() bool {
	return c.Docstring != nil && *c.Docstring != ""
}

// Signature renders "name(a: int, *rest) -> str".
func (f *FunctionRecord) Signature(name string) string {
	sig := name + "("

	for i, arg := range f.Args {
		if i > 0 {
			sig += ", "
		}

		sig += arg.Name
		if arg.Annotation != "" {
			sig += ": " + arg.Annotation
		}
	}

	sig += ")"

	if f.Returns != nil {
		sig += " -> " + *f.Returns
	}

	return sig
}

func newSourceUnit(path string) *SourceUnit {
	return &SourceUnit{
		Path:            path,
		Imports:         []string{},
		GlobalVariables: []string{},
	}
}
