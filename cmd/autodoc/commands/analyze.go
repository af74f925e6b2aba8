package commands

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/fatih/color"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/spf13/cobra"

	"github.com/Sumatoshi-tech/autodoc/pkg/autodoc"
	"github.com/Sumatoshi-tech/autodoc/pkg/observability"
	"github.com/Sumatoshi-tech/autodoc/pkg/persist"
)

// Output formats for the analyze command.
const (
	FormatJSON  = "json"
	FormatYAML  = "yaml"
	FormatText  = "text"
	FormatTable = "table"
)

// ErrUnknownOutputFormat is returned for a --format outside the supported set.
var ErrUnknownOutputFormat = errors.New("unknown output format")

// AnalyzeCommand holds the flags for the analyze command.
type AnalyzeCommand struct {
	output   string
	format   string
	compress bool
	metrics  bool
	noColor  bool
}

// NewAnalyzeCommand creates and configures the analyze command.
func NewAnalyzeCommand() *cobra.Command {
	c := &AnalyzeCommand{}

	cobraCmd := &cobra.Command{
		Use:   "analyze <path>",
		Short: "Extract the structure of Python files",
		Long: `Analyze a Python file or a directory of Python files and print the
extracted imports, classes, functions, globals and docstrings.

Files that fail to parse are reported as {"error": ...} and the batch continues.

Examples:
  autodoc analyze app.py
  autodoc analyze src/ --format table
  autodoc analyze src/ -o report.json.lz4`,
		Args: cobra.ExactArgs(1),
		RunE: c.Run,
	}

	cobraCmd.Flags().StringVarP(&c.output, "output", "o", "", "Output file (default: stdout); a .lz4 suffix compresses")
	cobraCmd.Flags().StringVarP(&c.format, "format", "f", "", "Output format: json, yaml, text or table (default from config)")
	cobraCmd.Flags().BoolVar(&c.compress, "compress", false, "LZ4-compress json/yaml output")
	cobraCmd.Flags().BoolVar(&c.metrics, "metrics", false, "Include the full complexity report for each file")
	cobraCmd.Flags().BoolVar(&c.noColor, "no-color", false, "Disable colored output")

	return cobraCmd
}

// Run executes the analyze command.
func (c *AnalyzeCommand) Run(cmd *cobra.Command, args []string) error {
	env, err := setup(cmd, observability.ModeCLI)
	if err != nil {
		return err
	}
	defer env.close()

	format := strings.ToLower(c.format)
	if format == "" {
		format = env.cfg.Output.Format
	}

	inf, closer, err := env.inferencer()
	if err != nil {
		return err
	}
	defer closeLexicon(env, closer)

	analyzer, err := env.analyzer(env.extractor(inf, c.metrics || format == FormatTable))
	if err != nil {
		return err
	}

	report, err := analyzer.AnalyzePath(cmd.Context(), args[0])
	if err != nil {
		return err
	}

	env.logger().Info("analysis complete",
		"path", args[0], "files", len(report.Files), "failures", report.Failures())

	return c.write(cmd.OutOrStdout(), format, report)
}

func (c *AnalyzeCommand) write(stdout io.Writer, format string, report *autodoc.Report) error {
	switch format {
	case FormatJSON, FormatYAML:
		codec, err := persist.CodecForFormat(format, c.compress || strings.HasSuffix(c.output, persist.LZ4Extension))
		if err != nil {
			return err
		}

		if c.output != "" {
			return persist.SaveFile(c.output, codec, report)
		}

		return codec.Encode(stdout, report)
	case FormatText:
		return c.writeRendered(stdout, RenderText(report, c.noColor))
	case FormatTable:
		return c.writeRendered(stdout, RenderTable(report))
	default:
		return fmt.Errorf("%w: %q", ErrUnknownOutputFormat, format)
	}
}

func (c *AnalyzeCommand) writeRendered(stdout io.Writer, text string) error {
	if c.output == "" {
		_, err := io.WriteString(stdout, text)

		return err
	}

	err := os.MkdirAll(filepath.Dir(c.output), 0o750)
	if err != nil {
		return fmt.Errorf("create output directory: %w", err)
	}

	err = os.WriteFile(c.output, []byte(text), 0o600)
	if err != nil {
		return fmt.Errorf("write %s: %w", c.output, err)
	}

	return nil
}

// RenderText formats a report for reading in a terminal.
func RenderText(report *autodoc.Report, noColor bool) string {
	var sb strings.Builder

	pathColor := paint(noColor, color.FgCyan, color.Bold)
	errColor := paint(noColor, color.FgRed)
	dim := paint(noColor, color.Faint)

	for _, res := range report.Files {
		pathColor.Fprintln(&sb, res.Path)

		if res.Failed() {
			errColor.Fprintf(&sb, "  error: %s\n", res.Error)

			continue
		}

		unit := res.Unit
		if unit.ModuleDocstring != nil && *unit.ModuleDocstring != "" {
			dim.Fprintf(&sb, "  %s\n", firstLine(*unit.ModuleDocstring))
		}

		fmt.Fprintf(&sb, "  imports: %d, globals: %d\n", len(unit.Imports), len(unit.GlobalVariables))

		for name, class := range unit.Classes.All() {
			fmt.Fprintf(&sb, "  class %s", name)

			if len(class.BaseClasses) > 0 {
				fmt.Fprintf(&sb, "(%s)", strings.Join(class.BaseClasses, ", "))
			}

			sb.WriteString("\n")

			for method, fn := range class.Methods.All() {
				fmt.Fprintf(&sb, "    def %s\n", fn.Signature(method))
			}
		}

		for name, fn := range unit.Functions.All() {
			fmt.Fprintf(&sb, "  def %s\n", fn.Signature(name))
		}

		if unit.Metrics != nil {
			dim.Fprintf(&sb, "  cyclomatic: %d, maintainability: %s\n",
				unit.Metrics.Cyclomatic, unit.Metrics.FormatIndex())
		}
	}

	summary := paint(noColor, color.FgGreen)
	if report.Failures() > 0 {
		summary = paint(noColor, color.FgYellow)
	}

	summary.Fprintf(&sb, "%d file(s), %d failed\n", len(report.Files), report.Failures())

	return sb.String()
}

// RenderTable formats a report as one table row per file.
func RenderTable(report *autodoc.Report) string {
	tbl := table.NewWriter()
	tbl.SetStyle(table.StyleLight)
	tbl.Style().Format.Footer = text.FormatDefault
	tbl.AppendHeader(table.Row{"File", "Status", "Classes", "Functions", "Imports", "Globals", "Cyclomatic", "MI"})

	for _, res := range report.Files {
		if res.Failed() {
			tbl.AppendRow(table.Row{res.Path, "error", "", "", "", "", "", ""})

			continue
		}

		unit := res.Unit
		cyclomatic, mi := "", ""

		if unit.Metrics != nil {
			cyclomatic = fmt.Sprint(unit.Metrics.Cyclomatic)
			mi = unit.Metrics.FormatIndex()
		}

		tbl.AppendRow(table.Row{
			res.Path, "ok", unit.Classes.Len(), unit.Functions.Len(),
			len(unit.Imports), len(unit.GlobalVariables), cyclomatic, mi,
		})
	}

	tbl.AppendFooter(table.Row{fmt.Sprintf("Total: %d files", len(report.Files)),
		fmt.Sprintf("%d failed", report.Failures())})

	return tbl.Render() + "\n"
}

func firstLine(s string) string {
	line, _, _ := strings.Cut(s, "\n")

	return line
}
