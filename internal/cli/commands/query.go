package commands

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/leapstack-labs/covidlens/internal/adapter"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

// QueryOptions holds options for the query command.
type QueryOptions struct {
	Format string
	Input  string
}

// NewQueryCommand creates the query command.
func NewQueryCommand() *cobra.Command {
	opts := &QueryOptions{}

	cmd := &cobra.Command{
		Use:   "query [SQL]",
		Short: "Query the pipeline's session tables",
		Long: `Run the pipeline, then execute SQL against its DuckDB session.

Every stage leaves a table behind: raw_cases, raw_vaccination, raw_population,
case_records, wide_cases, vacc_agg, and merged. Supports multiple output
formats for scripting and integration.

When invoked without arguments, enters interactive REPL mode.`,
		Example: `  # Execute SQL directly
  covidlens query "SELECT * FROM case_records WHERE region = 'Kerala'"

  # List session tables
  covidlens query tables

  # Show schema for a table
  covidlens query schema merged

  # Output as JSON
  covidlens query "SELECT date, Confirmed_Kerala FROM merged" --format json

  # Interactive mode
  covidlens query`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runQuery(cmd, args, opts)
		},
	}

	// Flags
	cmd.Flags().StringVarP(&opts.Format, "format", "f", "table", "Output format: table, json, csv, md")
	cmd.Flags().StringVarP(&opts.Input, "input", "i", "", "Read SQL from file")

	// Subcommands
	cmd.AddCommand(newQueryTablesCommand(opts))
	cmd.AddCommand(newQuerySchemaCommand(opts))

	return cmd
}

// openSession runs the pipeline and returns its session database.
func openSession(cmd *cobra.Command) (adapter.Adapter, func(), error) {
	cmdCtx, cleanup, err := NewCommandContext(cmd)
	if err != nil {
		return nil, nil, err
	}

	if _, err := cmdCtx.runPipeline(cmd.Context()); err != nil {
		cleanup()
		return nil, nil, err
	}

	db, err := cmdCtx.Engine.Session(cmd.Context())
	if err != nil {
		cleanup()
		return nil, nil, err
	}
	return db, cleanup, nil
}

func runQuery(cmd *cobra.Command, args []string, opts *QueryOptions) error {
	// Determine SQL source
	var sqlQuery string

	switch {
	case len(args) > 0:
		sqlQuery = strings.Join(args, " ")
	case opts.Input != "":
		content, err := os.ReadFile(opts.Input)
		if err != nil {
			return fmt.Errorf("failed to read file: %w", err)
		}
		sqlQuery = string(content)
	case !isTerminal(cmd.InOrStdin()):
		// Read from stdin (piped input)
		content, err := io.ReadAll(cmd.InOrStdin())
		if err != nil {
			return fmt.Errorf("failed to read stdin: %w", err)
		}
		sqlQuery = string(content)
		if strings.TrimSpace(sqlQuery) == "" {
			return fmt.Errorf("no SQL given (pass it as an argument, with --input, or on stdin)")
		}
	}

	db, cleanup, err := openSession(cmd)
	if err != nil {
		return err
	}
	defer cleanup()

	if sqlQuery == "" {
		// No input, TTY detected - enter REPL mode
		return runQueryREPL(cmd, db, opts)
	}

	return executeAndRender(cmd.Context(), cmd.OutOrStdout(), db, sqlQuery, opts.Format)
}

// executeAndRender executes a query and renders results, closing rows before returning.
func executeAndRender(ctx context.Context, w io.Writer, db adapter.Adapter, sqlQuery, format string) error {
	rows, err := db.Query(ctx, strings.TrimSuffix(strings.TrimSpace(sqlQuery), ";"))
	if err != nil {
		return fmt.Errorf("query failed: %w", err)
	}
	defer func() { _ = rows.Close() }()

	return renderResults(w, rows.Rows, format)
}

// newQueryTablesCommand creates the tables subcommand.
func newQueryTablesCommand(opts *QueryOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "tables",
		Short: "List the session tables",
		RunE: func(cmd *cobra.Command, _ []string) error {
			db, cleanup, err := openSession(cmd)
			if err != nil {
				return err
			}
			defer cleanup()
			return listTables(cmd.Context(), cmd.OutOrStdout(), db, opts.Format)
		},
	}
}

// newQuerySchemaCommand creates the schema subcommand.
func newQuerySchemaCommand(opts *QueryOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "schema <table>",
		Short: "Show schema for a session table",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			db, cleanup, err := openSession(cmd)
			if err != nil {
				return err
			}
			defer cleanup()
			return showSchema(cmd.Context(), cmd.OutOrStdout(), db, args[0], opts.Format)
		},
	}
}

func isTerminal(r io.Reader) bool {
	f, ok := r.(*os.File)
	if !ok {
		return false
	}
	return term.IsTerminal(int(f.Fd())) //nolint:gosec // fd fits in int
}
