package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Sumatoshi-tech/autodoc/pkg/observability"
)

// NewInferCommand creates the infer command.
func NewInferCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "infer <identifier>...",
		Short: "Infer the purpose of identifiers from their names",
		Long: `Split each identifier into words (snake_case, camelCase, acronyms, digits)
and describe it using the configured lexicon.

Example:
  autodoc infer parse_HTTPResponse getUserName`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
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

			out := cmd.OutOrStdout()

			for _, identifier := range args {
				purpose, ok := inf.InferPurpose(identifier)
				if !ok {
					purpose = "(no name tokens)"
				}

				fmt.Fprintf(out, "%s: %s\n", identifier, purpose)
			}

			return nil
		},
	}
}
