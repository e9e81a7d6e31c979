package commands

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/leapstack-labs/covidlens/internal/cli/output"
	"github.com/leapstack-labs/covidlens/internal/state"
)

// NewHistoryCommand creates the history command.
func NewHistoryCommand() *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show recent pipeline runs",
		Long: `Show the pipeline runs recorded in the run history, newest first.

Every command that runs the pipeline appends to the history, including failed
runs. The history lives in .covidlens/state.db under the project root unless
state.path (or --state) says otherwise; an empty state.path disables it.`,
		Example: `  # Last 20 runs
  covidlens history

  # Every recorded run as JSON
  covidlens history --limit 0 --output json`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runHistory(cmd, limit)
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "Number of runs to show (0 for all)")

	return cmd
}

func runHistory(cmd *cobra.Command, limit int) error {
	cmdCtx := NewCommandContextWithoutEngine(cmd)
	ctx := cmd.Context()

	store, err := openStore(ctx, cmdCtx.Cfg, cmdCtx.Logger)
	if err != nil {
		return fmt.Errorf("failed to open run history: %w", err)
	}
	if store == nil {
		return fmt.Errorf("run history is disabled (state.path is empty)")
	}
	defer func() { _ = store.Close() }()

	runs, err := store.ListRuns(ctx, limit)
	if err != nil {
		return err
	}

	r := cmdCtx.Renderer
	if r.EffectiveMode() == output.ModeJSON {
		return r.JSON(historyOutput(runs))
	}

	r.Header(1, fmt.Sprintf("Runs (%d)", len(runs)))
	r.RenderTable(historyTable(runs))
	for _, run := range runs {
		if run.Error != "" {
			r.StatusLine(false, shortID(run.ID), run.Error)
		}
	}
	return nil
}

func historyOutput(runs []*state.Run) output.HistoryOutput {
	out := output.HistoryOutput{Runs: make([]output.RunInfo, 0, len(runs))}
	for _, run := range runs {
		out.Runs = append(out.Runs, output.RunInfo{
			ID:         run.ID,
			StartedAt:  run.StartedAt.Format(time.RFC3339),
			DurationMS: run.Duration.Milliseconds(),
			Status:     string(run.Status),
			DataDir:    run.DataDir,
			Grouping:   run.Grouping,
			Regions:    run.Regions,
			Dates:      run.Dates,
			Dropped:    run.Dropped,
			Defaulted:  run.Defaulted,
			Error:      run.Error,
		})
	}
	return out
}

func historyTable(runs []*state.Run) *output.Table {
	t := &output.Table{Header: []string{"Run", "Started", "Status", "Duration", "Regions", "Dates", "Dropped", "Defaulted"}}
	for _, run := range runs {
		t.AddRow(
			shortID(run.ID),
			run.StartedAt.Local().Format("2006-01-02 15:04:05"),
			string(run.Status),
			run.Duration.Round(time.Millisecond).String(),
			fmt.Sprintf("%d", run.Regions),
			fmt.Sprintf("%d", run.Dates),
			fmt.Sprintf("%d", run.Dropped),
			strings.Join(run.Defaulted, ", "),
		)
	}
	return t
}

// shortID abbreviates a run ID the way git abbreviates hashes.
func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
