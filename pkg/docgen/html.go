package docgen

import (
	"bytes"
	"context"
	"embed"
	"fmt"
	"html/template"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/Sumatoshi-tech/autodoc/pkg/analyzers/extract"
	"github.com/Sumatoshi-tech/autodoc/pkg/observability"
)

const (
	// IndexPage is the site entry page.
	IndexPage = "index.html"
	// ChartPage holds the complexity chart.
	ChartPage = "complexity.html"
	// HighlightCSS is the generated source highlighting stylesheet.
	HighlightCSS = "highlight.css"

	// DefaultTitle heads the index page.
	DefaultTitle = "Python Documentation"

	pageExt         = ".html"
	timestampLayout = "2006-01-02 15:04:05"
	dirPerm         = 0o755
	filePerm        = 0o644
)

//go:embed templates/*.html
var templateFS embed.FS

//go:embed static/*
var staticFS embed.FS

var (
	templates     *template.Template
	templatesOnce sync.Once
	errTemplates  error
)

func getTemplates() (*template.Template, error) {
	templatesOnce.Do(func() {
		var parseErr error

		templates, parseErr = template.ParseFS(templateFS, "templates/*.html")
		if parseErr != nil {
			errTemplates = fmt.Errorf("parsing templates: %w", parseErr)
		}
	})

	return templates, errTemplates
}

// HTMLWriter writes a static documentation site.
type HTMLWriter struct {
	highlighter *Highlighter
	logger      *slog.Logger
	tracer      trace.Tracer
	metrics     *observability.AnalysisMetrics
	now         func() time.Time
	readSource  func(path string) ([]byte, error)
	title       string
}

// WriterOption configures an HTMLWriter.
type WriterOption func(*HTMLWriter)

// WithHighlightStyle selects the chroma style for source listings.
func WithHighlightStyle(style string) WriterOption {
	return func(w *HTMLWriter) { w.highlighter = NewHighlighter(style) }
}

// WithTitle sets the site title.
func WithTitle(title string) WriterOption {
	return func(w *HTMLWriter) {
		if title != "" {
			w.title = title
		}
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) WriterOption {
	return func(w *HTMLWriter) {
		if logger != nil {
			w.logger = logger
		}
	}
}

// WithTracer sets the tracer.
func WithTracer(tracer trace.Tracer) WriterOption {
	return func(w *HTMLWriter) {
		if tracer != nil {
			w.tracer = tracer
		}
	}
}

// WithMetrics counts written pages.
func WithMetrics(m *observability.AnalysisMetrics) WriterOption {
	return func(w *HTMLWriter) { w.metrics = m }
}

// WithClock sets the time source for the index timestamp.
func WithClock(now func() time.Time) WriterOption {
	return func(w *HTMLWriter) { w.now = now }
}

// WithSourceReader sets how source files are loaded for listings.
func WithSourceReader(read func(path string) ([]byte, error)) WriterOption {
	return func(w *HTMLWriter) { w.readSource = read }
}

// NewHTMLWriter creates an HTMLWriter.
func NewHTMLWriter(opts ...WriterOption) *HTMLWriter {
	w := &HTMLWriter{
		highlighter: NewHighlighter(DefaultHighlightStyle),
		logger:      slog.Default(),
		tracer:      otel.Tracer(observability.TracerName),
		now:         time.Now,
		readSource:  os.ReadFile,
		title:       DefaultTitle,
	}

	for _, opt := range opts {
		opt(w)
	}

	return w
}

// Write renders one page per file, the index, the complexity chart when
// any file carries complexity figures, and the static assets into dir.
func (w *HTMLWriter) Write(ctx context.Context, doc *Documentation, dir string) (err error) {
	ctx, span := w.tracer.Start(ctx, observability.SpanWriteHTML,
		trace.WithAttributes(attribute.Int("docgen.files", len(doc.Files))))
	defer func() {
		if err != nil {
			span.SetStatus(codes.Error, "write failed")
		}

		span.End()
	}()

	tmpl, err := getTemplates()
	if err != nil {
		return err
	}

	err = os.MkdirAll(dir, dirPerm)
	if err != nil {
		return fmt.Errorf("create output directory: %w", err)
	}

	pages := PageNames(doc)
	links := make([]fileLink, 0, len(doc.Files))

	for i, fd := range doc.Files {
		page, pageErr := w.pageView(ctx, fd)
		if pageErr != nil {
			return pageErr
		}

		out := filepath.Join(dir, pages[i])

		err = renderTo(tmpl, "page.html", page, out)
		if err != nil {
			return err
		}

		w.logger.InfoContext(ctx, "generated documentation", "path", fd.Path, "output", out)

		links = append(links, fileLink{Path: fd.Path, Page: pages[i], Failed: fd.Failed()})
	}

	written := len(doc.Files)

	chart, err := w.writeChart(tmpl, doc, dir)
	if err != nil {
		return err
	}

	if chart != "" {
		written++
	}

	err = renderTo(tmpl, "index.html", indexView{
		Title:     w.title,
		Generated: w.now().Format(timestampLayout),
		Files:     links,
		Chart:     chart,
	}, filepath.Join(dir, IndexPage))
	if err != nil {
		return err
	}

	w.logger.InfoContext(ctx, "generated index", "output", filepath.Join(dir, IndexPage))

	err = w.copyStatic(dir)
	if err != nil {
		return err
	}

	w.logger.InfoContext(ctx, "copied static files", "output", dir)

	if w.metrics != nil {
		w.metrics.RecordPages(ctx, written+1)
	}

	return nil
}

func (w *HTMLWriter) writeChart(tmpl *template.Template, doc *Documentation, dir string) (string, error) {
	bar, ok := complexityChart(doc.Files)
	if !ok {
		return "", nil
	}

	chart, err := renderChart(bar)
	if err != nil {
		return "", err
	}

	err = renderTo(tmpl, "chart.html", chartView{
		Title:     "Code Complexity",
		SiteTitle: w.title,
		Script:    echartsScript,
		Chart:     chart,
	}, filepath.Join(dir, ChartPage))
	if err != nil {
		return "", err
	}

	return ChartPage, nil
}

func (w *HTMLWriter) copyStatic(dir string) error {
	entries, err := fs.ReadDir(staticFS, "static")
	if err != nil {
		return fmt.Errorf("read static assets: %w", err)
	}

	for _, entry := range entries {
		data, readErr := staticFS.ReadFile("static/" + entry.Name())
		if readErr != nil {
			return fmt.Errorf("read static asset %s: %w", entry.Name(), readErr)
		}

		writeErr := os.WriteFile(filepath.Join(dir, entry.Name()), data, filePerm)
		if writeErr != nil {
			return fmt.Errorf("copy static asset %s: %w", entry.Name(), writeErr)
		}
	}

	var css bytes.Buffer

	err = w.highlighter.WriteCSS(&css)
	if err != nil {
		return err
	}

	err = os.WriteFile(filepath.Join(dir, HighlightCSS), css.Bytes(), filePerm)
	if err != nil {
		return fmt.Errorf("write %s: %w", HighlightCSS, err)
	}

	return nil
}

func renderTo(tmpl *template.Template, name string, data any, out string) error {
	var buf bytes.Buffer

	err := tmpl.ExecuteTemplate(&buf, name, data)
	if err != nil {
		return fmt.Errorf("executing template %s: %w", name, err)
	}

	err = os.WriteFile(out, buf.Bytes(), filePerm)
	if err != nil {
		return fmt.Errorf("write %s: %w", out, err)
	}

	return nil
}

// PageNames assigns each file its page name: the file's base name plus
// ".html", with "-2", "-3"... appended when base names repeat.
func PageNames(doc *Documentation) []string {
	names := make([]string, len(doc.Files))
	used := map[string]bool{IndexPage: true, ChartPage: true}

	for i, fd := range doc.Files {
		base := filepath.Base(fd.Path)
		name := base + pageExt

		for n := 2; used[name]; n++ {
			name = base + "-" + strconv.Itoa(n) + pageExt
		}

		used[name] = true
		names[i] = name
	}

	return names
}

type fileLink struct {
	Path   string
	Page   string
	Failed bool
}

type indexView struct {
	Title     string
	Generated string
	Files     []fileLink
	Chart     string
}

type chartView struct {
	Title     string
	SiteTitle string
	Script    string
	Chart     template.HTML
}

type pageView struct {
	Title               string
	SiteTitle           string
	Path                string
	Error               string
	ModuleDocstring     template.HTML
	InferredDescription template.HTML
	Imports             []string
	Classes             []classView
	Functions           []functionView
	GlobalVariables     []string
	Source              template.HTML
}

type classView struct {
	Name      string
	Bases     string
	Docstring template.HTML
	Inferred  string
	Variables []string
	Methods   []functionView
}

type functionView struct {
	Kind       string
	Name       string
	Params     string
	Docstring  template.HTML
	Inferred   string
	Args       []string
	Returns    string
	Decorators string
	Async      bool
}

func (w *HTMLWriter) pageView(ctx context.Context, fd FileDoc) (pageView, error) {
	view := pageView{
		Title:     filepath.Base(fd.Path),
		SiteTitle: w.title,
		Path:      fd.Path,
		Error:     fd.Error,
		Source:    w.source(ctx, fd.Path),
	}

	if fd.Failed() {
		return view, nil
	}

	var err error

	view.ModuleDocstring, err = optionalMarkdown(fd.ModuleDocstring)
	if err != nil {
		return pageView{}, err
	}

	view.InferredDescription = FormatInferredDescription(fd.InferredDescription)
	view.Imports = fd.ImportLines()
	view.GlobalVariables = fd.GlobalVariableNames()

	if fd.Classes != nil {
		for name, class := range fd.Classes.All() {
			cv, classErr := newClassView(name, class)
			if classErr != nil {
				return pageView{}, classErr
			}

			view.Classes = append(view.Classes, cv)
		}
	}

	if fd.Functions != nil {
		for name, fn := range fd.Functions.All() {
			fv, fnErr := newFunctionView("function", name, fn)
			if fnErr != nil {
				return pageView{}, fnErr
			}

			view.Functions = append(view.Functions, fv)
		}
	}

	return view, nil
}

// source highlights the file at path. An unreadable file only loses its
// listing.
func (w *HTMLWriter) source(ctx context.Context, path string) template.HTML {
	data, err := w.readSource(path)
	if err != nil {
		w.logger.WarnContext(ctx, "source listing unavailable", "path", path, "error", err)

		return ""
	}

	listing, err := w.highlighter.Highlight(data)
	if err != nil {
		w.logger.WarnContext(ctx, "source listing unavailable", "path", path, "error", err)

		return ""
	}

	return listing
}

func newClassView(name string, class *extract.ClassRecord) (classView, error) {
	cv := classView{
		Name:      name,
		Bases:     strings.Join(class.BaseClasses, ", "),
		Variables: class.ClassVariables,
	}

	if class.Documented() {
		doc, err := RenderMarkdown(*class.Docstring)
		if err != nil {
			return classView{}, err
		}

		cv.Docstring = doc
	} else {
		cv.Inferred = class.InferredDescription
	}

	for method, fn := range class.Methods.All() {
		fv, err := newFunctionView("method", method, fn)
		if err != nil {
			return classView{}, err
		}

		cv.Methods = append(cv.Methods, fv)
	}

	return cv, nil
}

func newFunctionView(kind, name string, fn *extract.FunctionRecord) (functionView, error) {
	fv := functionView{
		Kind:       kind,
		Name:       name,
		Decorators: strings.Join(fn.Decorators, ", "),
		Async:      fn.Async,
	}

	params := make([]string, 0, len(fn.Args))

	for _, arg := range fn.Args {
		param := arg.Name
		if arg.Annotation != "" {
			param += ": " + arg.Annotation
		}

		params = append(params, param)
	}

	fv.Args = params
	fv.Params = strings.Join(params, ", ")

	if fn.Returns != nil {
		fv.Returns = *fn.Returns
	}

	if fn.Documented() {
		doc, err := RenderMarkdown(*fn.Docstring)
		if err != nil {
			return functionView{}, err
		}

		fv.Docstring = doc
	} else {
		fv.Inferred = fn.InferredDescription
	}

	return fv, nil
}

func optionalMarkdown(doc string) (template.HTML, error) {
	if doc == "" {
		return "", nil
	}

	return RenderMarkdown(doc)
}
