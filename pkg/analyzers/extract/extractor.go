package extract

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	sitter "github.com/alexaandru/go-tree-sitter-bare"

	"github.com/Sumatoshi-tech/autodoc/pkg/analyzers/infer"
	"github.com/Sumatoshi-tech/autodoc/pkg/analyzers/maintainability"
	"github.com/Sumatoshi-tech/autodoc/pkg/pyast"
)

// Extractor turns Python source into SourceUnits. It is safe for concurrent
// use.
type Extractor struct {
	inferencer  *infer.Inferencer
	logger      *slog.Logger
	withMetrics bool
}

// Option configures an Extractor.
type Option func(*Extractor)

// WithInferencer sets the purpose inferencer used for descriptions. Without
// one, purposes are built from raw name tokens.
func WithInferencer(inf *infer.Inferencer) Option {
	return func(e *Extractor) { e.inferencer = inf }
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Extractor) { e.logger = logger }
}

// WithMetrics attaches the full complexity report to each SourceUnit.
func WithMetrics(enabled bool) Option {
	return func(e *Extractor) { e.withMetrics = enabled }
}

// New creates an Extractor.
func New(opts ...Option) *Extractor {
	e := &Extractor{logger: slog.Default()}
	for _, opt := range opts {
		opt(e)
	}

	return e
}

// Extract parses source and extracts its structure. A syntax error is
// returned wrapping pyast.ErrSyntax.
func (e *Extractor) Extract(ctx context.Context, path string, source []byte) (*SourceUnit, error) {
	tree, err := pyast.Parse(ctx, source)
	if err != nil {
		return nil, fmt.Errorf("extract %s: %w", path, err)
	}
	defer tree.Close()

	return e.ExtractTree(path, tree), nil
}

// ExtractTree extracts the structure of an already parsed module.
func (e *Extractor) ExtractTree(path string, tree *pyast.Tree) *SourceUnit {
	root := tree.Root()
	w := &walker{extractor: e, source: tree.Source, unit: newSourceUnit(path)}

	if doc, ok := pyast.Docstring(root, tree.Source); ok {
		w.unit.ModuleDocstring = &doc
	}

	w.walkChildren(root, scope{})

	report := maintainability.Analyze(root, tree.Source)
	w.unit.InferredDescription = describeModule(root, tree.Source, report.Summary)

	if e.withMetrics {
		w.unit.Metrics = &report
	}

	e.logger.Debug("extracted source unit",
		"path", path,
		"classes", w.unit.Classes.Len(),
		"functions", w.unit.Functions.Len(),
		"imports", len(w.unit.Imports))

	return w.unit
}

// scope is the enclosing declaration context. It is passed by value so an
// inner definition never leaks its context to siblings.
type scope struct {
	class *ClassRecord
}

type walker struct {
	extractor *Extractor
	source    []byte
	unit      *SourceUnit
}

func (w *walker) text(n sitter.Node) string {
	return pyast.Text(n, w.source)
}

func (w *walker) walkChildren(n sitter.Node, sc scope) {
	for _, child := range pyast.NamedChildren(n) {
		w.walk(child, sc)
	}
}

func (w *walker) walk(n sitter.Node, sc scope) {
	switch n.Type() {
	case pyast.KindClassDefinition:
		w.class(n, sc)
	case pyast.KindFunctionDefinition:
		w.function(n, n, nil, sc)
	case pyast.KindDecoratedDefinition:
		w.decorated(n, sc)
	case pyast.KindImportStatement, pyast.KindImportFromStatement, pyast.KindFutureImport:
		w.unit.Imports = append(w.unit.Imports, importNames(n, w.source)...)
	case pyast.KindAssignment:
		w.assignment(n, sc)
	default:
		w.walkChildren(n, sc)
	}
}

func (w *walker) decorated(n sitter.Node, sc scope) {
	def := pyast.Field(n, "definition")

	switch def.Type() {
	case pyast.KindClassDefinition:
		w.class(def, sc)
	case pyast.KindFunctionDefinition:
		var decorators []sitter.Node

		for _, child := range pyast.NamedChildren(n) {
			if child.Type() == pyast.KindDecorator {
				decorators = append(decorators, child)
			}
		}

		w.function(def, n, decorators, sc)
	default:
		w.walkChildren(n, sc)
	}
}

// assignment records the first target of a plain assignment when it is a
// bare name. Annotated assignments are not recorded. Nested classes and
// functions are never found on the right-hand side, so it is not walked.
func (w *walker) assignment(n sitter.Node, sc scope) {
	name, ok := assignedName(n)
	if !ok {
		return
	}

	target := w.text(name)

	if sc.class != nil {
		sc.class.ClassVariables = append(sc.class.ClassVariables, target)

		return
	}

	w.unit.GlobalVariables = append(w.unit.GlobalVariables, target)
}

func assignedName(n sitter.Node) (sitter.Node, bool) {
	if n.Type() != pyast.KindAssignment || !pyast.Field(n, "type").IsNull() {
		return sitter.Node{}, false
	}

	left := pyast.Field(n, "left")
	if left.IsNull() || left.Type() != pyast.KindIdentifier {
		return sitter.Node{}, false
	}

	return left, true
}

func (w *walker) class(n sitter.Node, sc scope) {
	name := w.text(pyast.Field(n, "name"))
	body := pyast.Field(n, "body")
	line, _ := pyast.Position(n)

	rec := &ClassRecord{
		ClassVariables: []string{},
		BaseClasses:    w.baseClasses(n),
		Line:           line,
		EndLine:        pyast.EndLine(n),
	}

	if doc, ok := pyast.Docstring(body, w.source); ok {
		rec.Docstring = &doc
	}

	if !rec.Documented() {
		rec.InferredDescription = describeClass(name, body, w.source, w.extractor.inferencer)
	}

	// Nested classes are recorded alongside top-level ones.
	w.unit.Classes.Set(name, rec)
	w.walkChildren(body, scope{class: rec})
}

func (w *walker) baseClasses(n sitter.Node) []string {
	bases := []string{}

	for _, arg := range pyast.NamedChildren(pyast.Field(n, "superclasses")) {
		if arg.Type() == pyast.KindKeywordArgument {
			continue
		}

		bases = append(bases, displayName(arg, w.source))
	}

	return bases
}

// function records a definition. outer is the decorated definition when
// there is one, so call sites in decorators are seen too.
func (w *walker) function(n, outer sitter.Node, decorators []sitter.Node, sc scope) {
	name := w.text(pyast.Field(n, "name"))
	body := pyast.Field(n, "body")
	line, _ := pyast.Position(n)
	sig := parseParameters(pyast.Field(n, "parameters"), w.source)

	rec := &FunctionRecord{
		Args:       sig.args(),
		Decorators: make([]string, 0, len(decorators)),
		Async:      isAsync(n),
		Line:       line,
		EndLine:    pyast.EndLine(n),
	}

	if ret := pyast.Field(n, "return_type"); !ret.IsNull() {
		returns := ResolveAnnotation(ret, w.source)
		rec.Returns = &returns
	}

	for _, dec := range decorators {
		if expr := pyast.NamedChildren(dec); len(expr) > 0 {
			rec.Decorators = append(rec.Decorators, displayName(expr[0], w.source))
		}
	}

	if doc, ok := pyast.Docstring(body, w.source); ok {
		rec.Docstring = &doc
	}

	if !rec.Documented() {
		rec.InferredDescription = describeFunction(name, len(sig.positional), rec.Returns != nil,
			outer, w.source, w.extractor.inferencer)
	}

	// Functions nested anywhere inside a class body are that class's methods.
	if sc.class != nil {
		sc.class.Methods.Set(name, rec)
	} else {
		w.unit.Functions.Set(name, rec)
	}

	w.walkChildren(body, sc)
}

func isAsync(n sitter.Node) bool {
	for idx := range n.ChildCount() {
		child := n.Child(idx)
		if child.IsNamed() {
			return false
		}

		if child.Type() == "async" {
			return true
		}
	}

	return false
}

// displayName renders decorators and base classes: names and dotted
// attributes as written, anything else as source text.
func displayName(n sitter.Node, source []byte) string {
	switch n.Type() {
	case pyast.KindIdentifier, pyast.KindAttribute:
		return ResolveAnnotation(n, source)
	default:
		return pyast.Text(n, source)
	}
}

type signature struct {
	positional []Arg
	vararg     *Arg
	kwarg      *Arg
}

func (s signature) args() []Arg {
	args := make([]Arg, 0, len(s.positional)+2)
	args = append(args, s.positional...)

	if s.vararg != nil {
		args = append(args, *s.vararg)
	}

	if s.kwarg != nil {
		args = append(args, *s.kwarg)
	}

	return args
}

// parseParameters keeps the regular positional parameters, then *args and
// **kwargs. Positional-only parameters before "/" and keyword-only
// parameters after "*" are dropped.
func parseParameters(params sitter.Node, source []byte) signature {
	var (
		sig         signature
		keywordOnly bool
	)

	positional := func(arg Arg) {
		if !keywordOnly {
			sig.positional = append(sig.positional, arg)
		}
	}

	for _, p := range pyast.NamedChildren(params) {
		switch p.Type() {
		case pyast.KindIdentifier:
			positional(Arg{Name: pyast.Text(p, source)})
		case pyast.KindDefaultParameter:
			positional(Arg{Name: pyast.Text(pyast.Field(p, "name"), source)})
		case pyast.KindTypedDefaultParameter:
			positional(Arg{
				Name:       pyast.Text(pyast.Field(p, "name"), source),
				Annotation: ResolveAnnotation(pyast.Field(p, "type"), source),
			})
		case pyast.KindTypedParameter:
			typed := typedParameter(p, source)

			switch typed.kind {
			case pyast.KindListSplatPattern:
				sig.vararg = &Arg{Name: "*" + typed.name}
				keywordOnly = true
			case pyast.KindDictionarySplatPattern:
				sig.kwarg = &Arg{Name: "**" + typed.name}
			default:
				positional(Arg{Name: typed.name, Annotation: typed.annotation})
			}
		case pyast.KindListSplatPattern:
			sig.vararg = &Arg{Name: "*" + splatName(p, source)}
			keywordOnly = true
		case pyast.KindDictionarySplatPattern:
			sig.kwarg = &Arg{Name: "**" + splatName(p, source)}
		case pyast.KindKeywordSeparator:
			keywordOnly = true
		case pyast.KindPositionalSeparator:
			sig.positional = nil
		}
	}

	return sig
}

type typedParam struct {
	kind       string
	name       string
	annotation string
}

func typedParameter(p sitter.Node, source []byte) typedParam {
	typ := pyast.Field(p, "type")

	for _, child := range pyast.NamedChildren(p) {
		if sameNode(child, typ) {
			continue
		}

		switch child.Type() {
		case pyast.KindListSplatPattern, pyast.KindDictionarySplatPattern:
			return typedParam{kind: child.Type(), name: splatName(child, source)}
		default:
			return typedParam{
				kind:       child.Type(),
				name:       pyast.Text(child, source),
				annotation: ResolveAnnotation(typ, source),
			}
		}
	}

	return typedParam{}
}

func splatName(p sitter.Node, source []byte) string {
	if id, ok := pyast.FirstNamedChildOfKind(p, pyast.KindIdentifier); ok {
		return pyast.Text(id, source)
	}

	return strings.TrimLeft(pyast.Text(p, source), "*")
}
