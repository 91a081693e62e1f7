package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/graphql-go/graphql"
	"github.com/spf13/cobra"
	"golang.org/x/term"
	"gopkg.in/yaml.v3"

	"github.com/fluxbase-eu/gqlvalidate/cli/output"
	"github.com/fluxbase-eu/gqlvalidate/internal/demo"
	"github.com/fluxbase-eu/gqlvalidate/internal/validation"
)

var (
	checkVariablesFile string
	checkQueryFile     string
	checkTimeout       time.Duration
)

var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Validate mutation variables against the sample schema",
	Long: `Run a mutation against the sample schema in-process and print any
validation errors.

Variables are read from a JSON or YAML file, or from stdin when no file is
given and stdin is not a terminal. Without --query the sample testMutation
document is used.

Examples:
  gqlvalidate check --variables input.json
  gqlvalidate check --variables input.yaml --query mutation.graphql
  echo '{"input":{"email":"nope"}}' | gqlvalidate check -o json`,
	RunE: runCheck,
}

func init() {
	checkCmd.Flags().StringVarP(&checkVariablesFile, "variables", "f", "", "Variables file (JSON or YAML), - for stdin")
	checkCmd.Flags().StringVarP(&checkQueryFile, "query", "q", "", "GraphQL document file (default: sample testMutation)")
	checkCmd.Flags().DurationVar(&checkTimeout, "timeout", 30*time.Second, "Maximum time for the run")

	rootCmd.AddCommand(checkCmd)
}

// checkResult is the outcome of one check run
type checkResult struct {
	Valid   bool                     `json:"valid" yaml:"valid"`
	Data    interface{}              `json:"data,omitempty" yaml:"data,omitempty"`
	Entries []map[string]interface{} `json:"validationErrors,omitempty" yaml:"validationErrors,omitempty"`
	Errors  []string                 `json:"errors,omitempty" yaml:"errors,omitempty"`
}

func runCheck(cmd *cobra.Command, args []string) error {
	ctx, cancel := context.WithTimeout(cmd.Context(), checkTimeout)
	defer cancel()

	query := demo.TestMutation
	if checkQueryFile != "" {
		raw, err := os.ReadFile(checkQueryFile)
		if err != nil {
			return fmt.Errorf("failed to read query file: %w", err)
		}
		query = string(raw)
	}

	stdin := cmd.InOrStdin()
	piped := true
	if f, ok := stdin.(*os.File); ok {
		piped = !term.IsTerminal(int(f.Fd()))
	}
	variables, err := readVariables(checkVariablesFile, stdin, piped)
	if err != nil {
		return err
	}

	schema, err := demo.NewSchema(validation.WithExtensionKey(cfg.Validation.ExtensionKey))
	if err != nil {
		return err
	}

	result := checkDocument(ctx, schema.Schema, query, variables, cfg.Validation.ExtensionKey)

	if formatter.Format != output.FormatTable {
		if err := formatter.Print(result); err != nil {
			return err
		}
	} else if err := printCheckTable(cmd.OutOrStdout(), result); err != nil {
		return err
	}

	if !result.Valid {
		return fmt.Errorf("validation failed with %d error(s)", len(result.Entries)+len(result.Errors))
	}
	return nil
}

// checkDocument executes query and splits the response into validation
// entries and other errors.
func checkDocument(ctx context.Context, schema graphql.Schema, query string, variables map[string]interface{}, key string) checkResult {
	res := graphql.Do(graphql.Params{
		Schema:         schema,
		RequestString:  query,
		VariableValues: variables,
		Context:        ctx,
	})

	out := checkResult{Data: res.Data}
	for _, e := range res.Errors {
		if validation.IsValidationError(e) {
			out.Entries = append(out.Entries, validation.FormattedEntries(e, key)...)
			continue
		}
		out.Errors = append(out.Errors, e.Message)
	}
	out.Valid = len(out.Entries) == 0 && len(out.Errors) == 0
	return out
}

// readVariables loads the variables map from path. An empty path reads stdin
// only when it is piped; "-" always reads stdin.
func readVariables(path string, stdin io.Reader, piped bool) (map[string]interface{}, error) {
	var (
		raw []byte
		err error
	)
	switch {
	case path == "-" || (path == "" && piped):
		raw, err = io.ReadAll(stdin)
	case path == "":
		return nil, nil
	default:
		raw, err = os.ReadFile(path)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read variables: %w", err)
	}
	if len(strings.TrimSpace(string(raw))) == 0 {
		return nil, nil
	}

	variables := map[string]interface{}{}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(raw, &variables)
	default:
		err = json.Unmarshal(raw, &variables)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to parse variables: %w", err)
	}
	return variables, nil
}

func printCheckTable(w io.Writer, result checkResult) error {
	if result.Valid {
		fmt.Fprintln(w, "Input is valid")
		return nil
	}

	if len(result.Entries) > 0 {
		data := output.TableData{
			Headers: []string{"CODE", "PATH", "META"},
			Rows:    make([][]string, 0, len(result.Entries)),
		}
		for _, entry := range result.Entries {
			data.Rows = append(data.Rows, []string{
				fmt.Sprint(entry["code"]),
				formatPath(entry["path"]),
				formatMeta(entry["meta"]),
			})
		}
		if err := formatter.PrintTable(data); err != nil {
			return err
		}
	}

	for _, msg := range result.Errors {
		fmt.Fprintf(w, "error: %s\n", msg)
	}
	return nil
}

// formatPath renders a response path as people[0].theName; whole-object
// errors have no path and render as "-".
func formatPath(v interface{}) string {
	segments, _ := v.([]interface{})
	if len(segments) == 0 {
		return "-"
	}

	var b strings.Builder
	for i, s := range segments {
		switch seg := s.(type) {
		case int:
			b.WriteString("[" + strconv.Itoa(seg) + "]")
		default:
			if i > 0 {
				b.WriteByte('.')
			}
			b.WriteString(fmt.Sprint(seg))
		}
	}
	return b.String()
}

func formatMeta(v interface{}) string {
	if v == nil {
		return ""
	}
	raw, err := json.Marshal(v)
	if err != nil {
		return fmt.Sprint(v)
	}
	return string(raw)
}
