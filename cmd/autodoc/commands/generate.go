package commands

import (
	"errors"
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/Sumatoshi-tech/autodoc/pkg/docgen"
	"github.com/Sumatoshi-tech/autodoc/pkg/observability"
	"github.com/Sumatoshi-tech/autodoc/pkg/pipeline"
)

// ErrDocsOutOfDate is returned by generate --check when the existing site
// differs from a fresh build.
var ErrDocsOutOfDate = errors.New("documentation is out of date")

// GenerateCommand holds the flags for the generate command.
type GenerateCommand struct {
	output  string
	title   string
	style   string
	check   bool
	noColor bool
}

// NewGenerateCommand creates and configures the generate command.
func NewGenerateCommand() *cobra.Command {
	c := &GenerateCommand{}

	cobraCmd := &cobra.Command{
		Use:   "generate <path>",
		Short: "Generate HTML documentation for Python code",
		Long: `Analyze a Python file or directory and write an HTML documentation site:
one page per file, an index and a complexity chart.

With --check nothing is written; the command fails when the site in the output
directory differs from what would be generated.`,
		Args: cobra.ExactArgs(1),
		RunE: c.Run,
	}

	cobraCmd.Flags().StringVarP(&c.output, "output", "o", "", "Output directory (default from config)")
	cobraCmd.Flags().StringVar(&c.title, "title", "", "Index page title (default from config)")
	cobraCmd.Flags().StringVar(&c.style, "style", "", "Source highlighting style (default from config)")
	cobraCmd.Flags().BoolVar(&c.check, "check", false, "Verify the existing site is up to date instead of writing it")
	cobraCmd.Flags().BoolVar(&c.noColor, "no-color", false, "Disable colored output")

	return cobraCmd
}

// Run executes the generate command.
func (c *GenerateCommand) Run(cmd *cobra.Command, args []string) error {
	env, err := setup(cmd, observability.ModeCLI)
	if err != nil {
		return err
	}
	defer env.close()

	inf, closer, err := env.inferencer()
	if err != nil {
		return err
	}
	defer closeLexicon(env, closer)

	// The complexity chart needs per-file metrics.
	analyzer, err := env.analyzer(env.extractor(inf, true))
	if err != nil {
		return err
	}

	output := firstNonEmpty(c.output, env.cfg.Output.Directory)
	opts := pipeline.Options{
		Analyzer: analyzer,
		Writer: docgen.NewHTMLWriter(
			docgen.WithTitle(firstNonEmpty(c.title, env.cfg.Output.Title)),
			docgen.WithHighlightStyle(firstNonEmpty(c.style, env.cfg.Output.HighlightStyle)),
			docgen.WithLogger(env.logger()),
			docgen.WithTracer(env.providers.Tracer),
			docgen.WithMetrics(env.metrics),
		),
		Logger: env.logger(),
		Tracer: env.providers.Tracer,
	}

	if c.check {
		return c.runCheck(cmd, args[0], output, opts)
	}

	res, err := pipeline.Run(cmd.Context(), args[0], output, opts)
	if err != nil {
		return err
	}

	paint(c.noColor, color.FgGreen).Fprintf(cmd.OutOrStdout(),
		"Documentation for %d file(s) written to %s\n", len(res.Documentation.Files), output)

	if failures := res.Report.Failures(); failures > 0 {
		paint(c.noColor, color.FgYellow).Fprintf(cmd.OutOrStdout(),
			"%d file(s) could not be parsed\n", failures)
	}

	return nil
}

func (c *GenerateCommand) runCheck(cmd *cobra.Command, codePath, output string, opts pipeline.Options) error {
	fresh, err := os.MkdirTemp("", "autodoc-check-*")
	if err != nil {
		return fmt.Errorf("create check directory: %w", err)
	}
	defer os.RemoveAll(fresh)

	_, err = pipeline.Run(cmd.Context(), codePath, fresh, opts)
	if err != nil {
		return err
	}

	drift, err := docgen.CompareSites(fresh, output)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()

	if len(drift) == 0 {
		paint(c.noColor, color.FgGreen).Fprintf(out, "Documentation in %s is up to date\n", output)

		return nil
	}

	warn := paint(c.noColor, color.FgYellow)
	for _, d := range drift {
		warn.Fprintf(out, "  %s\n", d)
	}

	return fmt.Errorf("%w: %d page(s) differ in %s", ErrDocsOutOfDate, len(drift), output)
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}

	return ""
}
