package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/fluxbase-eu/gqlvalidate/cli/output"
	"github.com/fluxbase-eu/gqlvalidate/internal/demo"
)

var codesCmd = &cobra.Command{
	Use:     "codes",
	Aliases: []string{"errors"},
	Short:   "List validation error codes",
	Long: `List every error code the sample schema may return, built-in and
registered. The same list is served by the allErrors query.

Examples:
  gqlvalidate codes
  gqlvalidate codes -o json`,
	RunE: runCodes,
}

func init() {
	rootCmd.AddCommand(codesCmd)
}

func runCodes(cmd *cobra.Command, args []string) error {
	schema, err := demo.NewSchema()
	if err != nil {
		return err
	}
	codes := schema.Registry.Codes()

	if formatter.Format != output.FormatTable {
		return formatter.Print(codes)
	}

	data := output.TableData{
		Headers: []string{"CODE"},
		Rows:    make([][]string, 0, len(codes)),
	}
	for _, code := range codes {
		data.Rows = append(data.Rows, []string{code})
	}
	if err := formatter.PrintTable(data); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "\nTotal: %d codes\n", len(codes))
	return nil
}
