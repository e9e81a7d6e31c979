package commands

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/leapstack-labs/covidlens/internal/cli/config"
	"github.com/leapstack-labs/covidlens/internal/cli/output"
	intconfig "github.com/leapstack-labs/covidlens/internal/config"
	"github.com/leapstack-labs/covidlens/internal/engine"
	"github.com/leapstack-labs/covidlens/internal/state"
	"github.com/spf13/cobra"
)

// CommandContext holds common dependencies for CLI commands.
type CommandContext struct {
	Cfg      *config.Config
	Logger   *slog.Logger
	Engine   *engine.Engine
	Renderer *output.Renderer
}

// NewCommandContext creates a CommandContext with engine and renderer.
// Returns the context and a cleanup function that must be called (typically via defer).
func NewCommandContext(cmd *cobra.Command) (*CommandContext, func(), error) {
	cfg := getConfig()
	logger := config.GetLogger(cmd.Context())

	if err := cfg.ValidateDirectories(); err != nil {
		return nil, nil, err
	}

	eng, err := createEngine(cfg, logger)
	if err != nil {
		return nil, nil, err
	}

	mode := output.Mode(cfg.OutputFormat)
	r := output.NewRenderer(cmd.OutOrStdout(), cmd.ErrOrStderr(), mode)

	cleanup := func() {
		_ = eng.Close()
	}

	return &CommandContext{
		Cfg:      cfg,
		Logger:   logger,
		Engine:   eng,
		Renderer: r,
	}, cleanup, nil
}

// NewCommandContextWithoutEngine creates a CommandContext without an engine.
// Useful for commands that don't need the data directory.
func NewCommandContextWithoutEngine(cmd *cobra.Command) *CommandContext {
	cfg := getConfig()
	logger := config.GetLogger(cmd.Context())
	mode := output.Mode(cfg.OutputFormat)
	r := output.NewRenderer(cmd.OutOrStdout(), cmd.ErrOrStderr(), mode)

	return &CommandContext{
		Cfg:      cfg,
		Logger:   logger,
		Renderer: r,
	}
}

// getConfig returns the current configuration, or the defaults when no
// configuration was loaded (commands executed without the root command).
func getConfig() *config.Config {
	if cfg := config.GetCurrentConfig(); cfg != nil {
		return cfg
	}
	return &config.Config{
		PipelineConfig: *intconfig.Default(),
		OutputFormat:   config.DefaultOutput,
		LogLevel:       config.DefaultLogLevel,
	}
}

func createEngine(cfg *config.Config, logger *slog.Logger) (*engine.Engine, error) {
	return engine.New(engine.Config{
		Pipeline: cfg.Pipeline(),
		Logger:   logger,
	})
}

// runPipeline runs the pipeline behind a spinner and reports its warnings.
func (c *CommandContext) runPipeline(ctx context.Context) (*engine.Result, error) {
	r := c.Renderer

	var spinner *output.Spinner
	if r.EffectiveMode() == output.ModeText {
		spinner = r.NewSpinner("Running pipeline...")
		spinner.Start()
	}

	started := time.Now()
	res, err := c.Engine.Run(ctx)
	c.recordRun(ctx, newRun(c.Cfg, started, res, err))
	if err != nil {
		if spinner != nil {
			spinner.Fail("Pipeline failed")
		}
		return nil, err
	}
	if spinner != nil {
		spinner.Success(fmt.Sprintf("Pipeline completed in %s", res.Duration.Round(time.Millisecond)))
	}

	if r.EffectiveMode() != output.ModeJSON {
		reportWarnings(r, res)
	}
	return res, nil
}

// openStore opens the run history. It returns nil when the history is disabled.
func openStore(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*state.SQLiteStore, error) {
	if cfg.State.Path == "" {
		return nil, nil
	}
	store := state.NewSQLiteStore(logger)
	if err := store.Open(cfg.State.Path); err != nil {
		return nil, err
	}
	if err := store.Migrate(ctx); err != nil {
		_ = store.Close()
		return nil, err
	}
	return store, nil
}

// recordRun appends a run to the history. History failures never fail the command.
func (c *CommandContext) recordRun(ctx context.Context, run *state.Run) {
	store, err := openStore(ctx, c.Cfg, c.Logger)
	if err != nil {
		c.Logger.Warn("run history unavailable", slog.String("path", c.Cfg.State.Path), slog.Any("error", err))
		return
	}
	if store == nil {
		return
	}
	defer func() { _ = store.Close() }()

	if err := store.RecordRun(ctx, run); err != nil {
		c.Logger.Warn("failed to record run", slog.Any("error", err))
		return
	}
	if c.Cfg.State.Keep > 0 {
		if _, err := store.PruneRuns(ctx, c.Cfg.State.Keep); err != nil {
			c.Logger.Warn("failed to prune run history", slog.Any("error", err))
		}
	}
}

// newRun summarizes a pipeline outcome for the history.
func newRun(cfg *config.Config, started time.Time, res *engine.Result, runErr error) *state.Run {
	run := &state.Run{
		StartedAt: started,
		Duration:  time.Since(started),
		Status:    state.RunStatusSucceeded,
		DataDir:   cfg.DataDir,
		Grouping:  cfg.Vaccination.GroupBy,
	}
	if runErr != nil {
		run.Status = state.RunStatusFailed
		run.Error = runErr.Error()
		return run
	}
	run.ID = res.RunID
	run.StartedAt = res.StartedAt
	run.Duration = res.Duration
	run.Grouping = string(res.Grouping)
	run.Regions = len(res.Regions)
	run.Dropped = res.DroppedDates()
	run.Defaulted = res.Defaulted
	if res.Table != nil {
		run.Dates = res.Table.Len()
	}
	return run
}

// reportWarnings surfaces the non-fatal conditions of a run on stderr.
func reportWarnings(r *output.Renderer, res *engine.Result) {
	for _, s := range res.Normalize {
		if s.Dropped > 0 {
			r.Warning(fmt.Sprintf("%s: dropped %d row(s) with unparseable %q", s.Table, s.Dropped, s.Column))
		}
	}
	if len(res.UnknownStatuses) > 0 {
		names := make([]string, len(res.UnknownStatuses))
		for i, s := range res.UnknownStatuses {
			names[i] = string(s)
		}
		r.Warning(fmt.Sprintf("unknown case status %s; no view shows it", joinRegions(names)))
	}
	if len(res.Defaulted) > 0 {
		r.Warning(fmt.Sprintf("no population for %s; per-million values use the default divisor", joinRegions(res.Defaulted)))
	}
	if len(res.Skipped) > 0 {
		r.Warning(fmt.Sprintf("no population for %s; per-million columns skipped", joinRegions(res.Skipped)))
	}
}

func joinRegions(regions []string) string {
	return strings.Join(regions, ", ")
}
