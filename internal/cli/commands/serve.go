package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/leapstack-labs/covidlens/internal/cli/config"
	"github.com/leapstack-labs/covidlens/internal/engine"
	"github.com/leapstack-labs/covidlens/internal/ui"
)

// NewServeCommand creates the serve command.
func NewServeCommand() *cobra.Command {
	var (
		host  string
		port  int
		watch bool
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the dashboard in the browser",
		Long: `Run the pipeline once and serve every dashboard view as a web page.

The region and date selection is kept per browser session. With --watch
(the default) the pipeline reruns whenever an input file changes, and open
pages update in place. A failed rerun keeps the previous result on screen;
when the first run fails the pages show its error until a rerun succeeds.

The run history page lists the runs recorded in state.path.`,
		Example: `  # Serve on http://localhost:8080
  covidlens serve

  # Another port, without watching the data directory
  covidlens serve --port 9000 --watch=false`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runServe(cmd, func(sc *config.ServeConfig) {
				if cmd.Flags().Changed("host") {
					sc.Host = host
				}
				if cmd.Flags().Changed("port") {
					sc.Port = port
				}
				if cmd.Flags().Changed("watch") {
					sc.Watch = watch
				}
			})
		},
	}

	cmd.Flags().StringVar(&host, "host", "localhost", "Interface to listen on")
	cmd.Flags().IntVarP(&port, "port", "p", 8080, "Port to listen on (0 picks a free port)")
	cmd.Flags().BoolVar(&watch, "watch", true, "Rerun the pipeline when an input file changes")

	return cmd
}

func runServe(cmd *cobra.Command, override func(*config.ServeConfig)) error {
	cmdCtx, cleanup, err := NewCommandContext(cmd)
	if err != nil {
		return err
	}
	defer cleanup()

	cfg := cmdCtx.Cfg
	serve := cfg.Serve
	override(&serve)
	if serve.Port < 0 || serve.Port > 65535 {
		return fmt.Errorf("invalid port %d", serve.Port)
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	hook := func(ctx context.Context, started time.Time, res *engine.Result, err error) {
		cmdCtx.recordRun(ctx, newRun(cfg, started, res, err))
	}
	pipeline := ui.NewPipeline(cmdCtx.Engine, hook, cmdCtx.Logger)
	if err := pipeline.Reload(ctx); err != nil {
		// The pages show the error until a reload succeeds.
		cmdCtx.Renderer.Warning(fmt.Sprintf("pipeline failed, serving the error: %v", err))
	} else {
		res, _ := pipeline.Result()
		reportWarnings(cmdCtx.Renderer, res)
	}

	serverCfg := ui.Config{
		Pipeline:      pipeline,
		Host:          serve.Host,
		Port:          serve.Port,
		Watch:         serve.Watch,
		WatchPaths:    watchPaths(cfg.Pipeline()),
		SessionSecret: serve.SessionSecret,
		Logger:        cmdCtx.Logger,
	}

	store, err := openStore(ctx, cfg, cmdCtx.Logger)
	if err != nil {
		cmdCtx.Renderer.Warning(fmt.Sprintf("run history unavailable: %v", err))
	}
	if store != nil {
		defer func() { _ = store.Close() }()
		serverCfg.Store = store
	}

	cmdCtx.Renderer.Success(fmt.Sprintf("Serving dashboard on http://%s:%d", displayHost(serve.Host), serve.Port))
	if serve.Watch {
		cmdCtx.Renderer.Muted("Watching " + cfg.DataDir + " for changes")
	}

	return ui.NewServer(serverCfg).Serve(ctx)
}

// watchPaths lists the input files whose changes trigger a rerun.
func watchPaths(pc *config.PipelineConfig) []string {
	return []string{
		pc.Path(pc.Files.Cases),
		pc.Path(pc.Files.Vaccination),
		pc.Path(pc.Files.Population),
		pc.Path(pc.Files.Boundaries),
	}
}

func displayHost(host string) string {
	if host == "" {
		return "localhost"
	}
	return host
}
