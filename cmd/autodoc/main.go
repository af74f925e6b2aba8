// Package main provides the entry point for the autodoc CLI tool.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/Sumatoshi-tech/autodoc/cmd/autodoc/commands"
	"github.com/Sumatoshi-tech/autodoc/pkg/version"
)

var (
	configPath string
	verbose    bool
	quiet      bool
)

func main() {
	err := newRootCommand().Execute()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "autodoc",
		Short: "Autodoc - Python source structure extraction and documentation",
		Long: `Autodoc extracts the structure of Python code and generates documentation.

Commands:
  analyze   Extract imports, classes, functions and docstrings
  generate  Write an HTML documentation site
  validate  Check a report against the report schema
  infer     Describe identifiers from their names
  lexicon   Manage the SQLite lexicon
  mcp       Serve tools over the Model Context Protocol
  lsp       Serve hover and diagnostics over LSP`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().StringVar(&configPath, commands.FlagConfig, "", "config file (default ./autodoc.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, commands.FlagVerbose, "v", false, "verbose output")
	rootCmd.PersistentFlags().BoolVarP(&quiet, commands.FlagQuiet, "q", false, "suppress output")

	rootCmd.AddCommand(commands.NewAnalyzeCommand())
	rootCmd.AddCommand(commands.NewGenerateCommand())
	rootCmd.AddCommand(commands.NewValidateCommand())
	rootCmd.AddCommand(commands.NewInferCommand())
	rootCmd.AddCommand(commands.NewLexiconCommand())
	rootCmd.AddCommand(commands.NewMCPCommand())
	rootCmd.AddCommand(commands.NewLSPCommand())
	rootCmd.AddCommand(versionCmd())

	return rootCmd
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintln(cmd.OutOrStdout(), version.Get())
		},
	}
}
