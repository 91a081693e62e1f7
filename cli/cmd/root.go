package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/fluxbase-eu/gqlvalidate/cli/output"
	"github.com/fluxbase-eu/gqlvalidate/internal/config"
	"github.com/fluxbase-eu/gqlvalidate/internal/logutil"
)

var (
	// Version is set by build flags
	Version = "dev"

	cfgFile      string
	outputFormat string
	logLevel     string

	cfg       *config.Config
	formatter *output.Formatter
)

var rootCmd = &cobra.Command{
	Use:   "gqlvalidate",
	Short: "Validate GraphQL mutation inputs",
	Long: `gqlvalidate validates GraphQL mutation inputs before resolvers run.

Field validators run on every field of an input object and may transform
values. Whole-object validators run once every field is valid. Failures are
returned as a single "ValidationError" carrying every code and path in the
error extensions.

Use gqlvalidate to:
  - Serve the sample schema over HTTP with metrics and tracing
  - Check a set of mutation variables locally
  - List the error codes clients may receive`,
	Version:           Version,
	SilenceUsage:      true,
	PersistentPreRunE: setup,
}

// Execute runs the root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "config file path (YAML)")
	rootCmd.PersistentFlags().StringVarP(&outputFormat, "output", "o", "table", "Output format: table, json, yaml")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "override log level (debug, info, warn, error)")
}

// setup loads configuration and logging before any subcommand runs
func setup(cmd *cobra.Command, args []string) error {
	format, err := output.ParseFormat(outputFormat)
	if err != nil {
		return err
	}
	formatter = output.NewFormatter(format, cmd.OutOrStdout())

	loaded, err := config.Load(cfgFile)
	if err != nil {
		return err
	}
	if logLevel != "" {
		loaded.Logging.Level = logLevel
	}

	if err := logutil.Setup(loaded.Logging.Level, loaded.Logging.Format, cmd.ErrOrStderr()); err != nil {
		return err
	}

	cfg = loaded
	return nil
}
