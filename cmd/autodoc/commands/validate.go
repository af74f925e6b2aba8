package commands

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/Sumatoshi-tech/autodoc/pkg/persist"
	"github.com/Sumatoshi-tech/autodoc/pkg/schema"
)

// stdinPath selects standard input as the report source.
const stdinPath = "-"

// ErrInvalidReport is returned when a report does not match the schema.
var ErrInvalidReport = errors.New("report does not match the schema")

// NewValidateCommand creates the validate command.
func NewValidateCommand() *cobra.Command {
	var noColor bool

	cmd := &cobra.Command{
		Use:   "validate <report.json|->",
		Short: "Validate an analysis report against the report schema",
		Long: `Validate a report produced by "autodoc analyze" against the report JSON schema.

YAML and LZ4-compressed reports are decoded by file suffix.

Examples:
  autodoc validate report.json
  autodoc analyze src/ | autodoc validate -`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidate(cmd, args[0], noColor)
		},
	}

	cmd.Flags().BoolVar(&noColor, "no-color", false, "Disable colored output")

	return cmd
}

func runValidate(cmd *cobra.Command, inputPath string, noColor bool) error {
	data, label, err := readReport(cmd.InOrStdin(), inputPath)
	if err != nil {
		return err
	}

	res, err := schema.Validate(data)
	if err != nil {
		return fmt.Errorf("%s: %w", label, err)
	}

	out := cmd.OutOrStdout()

	if res.Valid() {
		paint(noColor, color.FgGreen).Fprintf(out, "Report is valid (%s): %d file(s)\n", label, res.Files)

		return nil
	}

	red := paint(noColor, color.FgRed)
	red.Fprintf(out, "Report validation failed (%s)\n", label)

	for _, fieldErr := range res.Errors {
		red.Fprintf(out, "  - %s\n", fieldErr)
	}

	return fmt.Errorf("%w: %d violation(s)", ErrInvalidReport, len(res.Errors))
}

// readReport returns the report as JSON along with a label for messages.
func readReport(stdin io.Reader, path string) ([]byte, string, error) {
	if path == stdinPath {
		data, err := io.ReadAll(stdin)
		if err != nil {
			return nil, "", fmt.Errorf("read stdin: %w", err)
		}

		return data, "stdin", nil
	}

	codec, err := persist.CodecFor(path)
	if _, plainJSON := codec.(*persist.JSONCodec); err != nil || plainJSON {
		data, readErr := os.ReadFile(path)
		if readErr != nil {
			return nil, "", fmt.Errorf("read report: %w", readErr)
		}

		return data, path, nil
	}

	var doc any

	err = persist.LoadFile(path, codec, &doc)
	if err != nil {
		return nil, "", err
	}

	data, err := json.Marshal(doc)
	if err != nil {
		return nil, "", fmt.Errorf("convert %s to JSON: %w", path, err)
	}

	return data, path, nil
}
