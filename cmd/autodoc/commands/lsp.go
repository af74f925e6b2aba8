package commands

import (
	"github.com/spf13/cobra"

	"github.com/Sumatoshi-tech/autodoc/pkg/lsp"
	"github.com/Sumatoshi-tech/autodoc/pkg/observability"
)

// NewLSPCommand creates the language server command.
func NewLSPCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "lsp",
		Short: "Start a language server for Python files (LSP)",
		Long: `Start a language server (LSP) on stdio. Hovering a class, function or method
name shows its signature with the docstring or inferred description, and syntax
errors are published as diagnostics.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			env, err := setup(cmd, observability.ModeLSP)
			if err != nil {
				return err
			}
			defer env.close()

			inf, closer, err := env.inferencer()
			if err != nil {
				return err
			}
			defer closeLexicon(env, closer)

			return lsp.NewServer(env.extractor(inf, false), env.logger()).Run()
		},
	}
}
