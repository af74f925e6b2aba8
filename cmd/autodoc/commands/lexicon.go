package commands

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/Sumatoshi-tech/autodoc/pkg/analyzers/infer"
	"github.com/Sumatoshi-tech/autodoc/pkg/observability"
)

// NewLexiconCommand creates the lexicon command group.
func NewLexiconCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "lexicon",
		Short: "Manage the SQLite lexicon used for purpose inference",
	}

	cmd.AddCommand(newLexiconImportCommand())

	return cmd
}

func newLexiconImportCommand() *cobra.Command {
	var dbPath string

	cmd := &cobra.Command{
		Use:   "import <lexicon.tsv>",
		Short: "Load word definitions into the SQLite lexicon",
		Long: `Load a tab-separated lexicon into the SQLite database named by lexicon.path,
creating it when needed. Each line holds a word, an optional sense number and a definition.
Existing senses are overwritten.

Set lexicon.source to "sqlite" to use the database during analysis.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			env, err := setup(cmd, observability.ModeCLI)
			if err != nil {
				return err
			}
			defer env.close()

			path := firstNonEmpty(dbPath, env.cfg.Lexicon.Path)

			src, err := os.Open(args[0])
			if err != nil {
				return fmt.Errorf("open lexicon: %w", err)
			}
			defer src.Close()

			store, err := infer.CreateSQLite(path, env.logger())
			if err != nil {
				return err
			}
			defer store.Close()

			imported, err := store.Import(cmd.Context(), src)
			if err != nil {
				return err
			}

			total, err := store.Count(cmd.Context())
			if err != nil {
				return err
			}

			env.logger().Info("lexicon imported", "path", path, "imported", imported, "total", total)
			fmt.Fprintf(cmd.OutOrStdout(), "Imported %d sense(s) into %s (%d total)\n", imported, path, total)

			return nil
		},
	}

	cmd.Flags().StringVar(&dbPath, "db", "", "SQLite lexicon path (default lexicon.path)")

	return cmd
}
