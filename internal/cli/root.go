// Package cli provides the command-line interface for covidlens.
package cli

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/leapstack-labs/covidlens/internal/cli/commands"
	"github.com/leapstack-labs/covidlens/internal/cli/config"
	"github.com/leapstack-labs/covidlens/internal/cli/output"
	intconfig "github.com/leapstack-labs/covidlens/internal/config"
	"github.com/leapstack-labs/covidlens/pkg/core"
	"github.com/spf13/cobra"
)

var cfgFile string

// Version information (set at build time).
var (
	Version   = "0.1.0"
	BuildDate = "unknown"
	GitCommit = "unknown"
)

// configKey is used to store config in context.
type configKey struct{}

// rendererKey is used to store renderer in context.
type rendererKey struct{}

// NewRootCmd creates and returns the root command.
func NewRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "covidlens",
		Short: "covidlens - COVID-19 India dashboard pipeline",
		Long: `covidlens loads the COVID-19 India case, vaccination, and population files,
normalizes their dates, pivots and merges them into one wide table per date,
and derives per-million metrics. The dashboard views render over the result.

The pipeline runs in an in-memory DuckDB session on every command; the session
tables can be queried with 'covidlens query'.`,
		Version: Version,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			// Skip config loading for help and completion commands
			if cmd.Name() == "help" || cmd.Name() == "completion" || cmd.Name() == "__complete" {
				return nil
			}

			cfg, err := config.LoadConfig(cfgFile, cmd.Root().PersistentFlags())
			if err != nil {
				return err
			}

			ctx := context.WithValue(cmd.Context(), configKey{}, cfg)
			ctx = context.WithValue(ctx, config.LoggerKey(), newLogger(cfg))

			// Create and store renderer based on output mode
			mode := output.Mode(cfg.OutputFormat)
			renderer := output.NewRenderer(cmd.OutOrStdout(), cmd.ErrOrStderr(), mode)
			ctx = context.WithValue(ctx, rendererKey{}, renderer)
			cmd.SetContext(ctx)

			if cfg.Verbose {
				if configFile := config.GetConfigFileUsed(); configFile != "" {
					_, _ = fmt.Fprintf(cmd.ErrOrStderr(), "Using config file: %s\n", configFile)
				}
				_, _ = fmt.Fprintf(cmd.ErrOrStderr(), "Using data directory: %s\n", cfg.DataDir)
			}

			return nil
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	// Set version template
	rootCmd.SetVersionTemplate(`{{.Name}} {{.Version}}
`)

	// Global persistent flags
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: ./covidlens.yaml)")
	rootCmd.PersistentFlags().String("project-dir", "", "Project directory to search for covidlens.yaml")
	rootCmd.PersistentFlags().String("data-dir", "", "Directory holding the input files")
	rootCmd.PersistentFlags().String("database", "", "Path to DuckDB database (default: in-memory)")
	rootCmd.PersistentFlags().String("group-by", "", "Vaccination grouping (date|date_region)")
	rootCmd.PersistentFlags().String("on-missing", "", "Regions without population (default|skip|reject)")
	rootCmd.PersistentFlags().String("state", "", "Path to the run history database (default: .covidlens/state.db)")
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "Verbose output")
	rootCmd.PersistentFlags().StringP("output", "o", "", "Output format (auto|text|markdown|json)")
	rootCmd.PersistentFlags().String("log-level", "", "Log level (debug|info|warn|error)")

	// Register completion for enumerated flags
	registerValues(rootCmd, "output", output.ValidModes()...)
	registerValues(rootCmd, "group-by", string(core.GroupByDate), string(core.GroupByDateRegion))
	registerValues(rootCmd, "on-missing",
		string(core.MissingPopulationDefault), string(core.MissingPopulationSkip), string(core.MissingPopulationReject))
	registerValues(rootCmd, "log-level", "debug", "info", "warn", "error")
	_ = rootCmd.MarkPersistentFlagDirname("data-dir")
	_ = rootCmd.MarkPersistentFlagDirname("project-dir")
	_ = rootCmd.MarkPersistentFlagFilename("config", "yaml", "yml")

	// Add subcommands
	rootCmd.AddCommand(commands.NewVersionCommand(commands.BuildInfo{Version: Version, Commit: GitCommit, Date: BuildDate}))
	rootCmd.AddCommand(commands.NewLoadCommand())
	rootCmd.AddCommand(commands.NewViewsCommand())
	rootCmd.AddCommand(commands.NewViewCommand())
	rootCmd.AddCommand(commands.NewBrowseCommand())
	rootCmd.AddCommand(commands.NewQueryCommand())
	rootCmd.AddCommand(commands.NewHistoryCommand())
	rootCmd.AddCommand(commands.NewServeCommand())
	rootCmd.AddCommand(NewCompletionCommand())

	return rootCmd
}

func registerValues(cmd *cobra.Command, flag string, values ...string) {
	_ = cmd.RegisterFlagCompletionFunc(flag, func(_ *cobra.Command, _ []string, _ string) ([]string, cobra.ShellCompDirective) {
		return values, cobra.ShellCompDirectiveNoFileComp
	})
}

// newLogger builds the process logger. Logs go to stderr so they never mix
// with rendered output.
func newLogger(cfg *config.Config) *slog.Logger {
	level, err := config.ParseLogLevel(cfg.LogLevel)
	if err != nil {
		level = slog.LevelWarn
	}
	if cfg.Verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}

// Execute runs the root command.
func Execute() error {
	rootCmd := NewRootCmd()
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return err
	}
	return nil
}

// GetConfig retrieves the config from the command context.
func GetConfig(ctx context.Context) *config.Config {
	if c, ok := ctx.Value(configKey{}).(*config.Config); ok {
		return c
	}
	// Return default config if none in context
	return &config.Config{
		PipelineConfig: *intconfig.Default(),
		OutputFormat:   config.DefaultOutput,
		LogLevel:       config.DefaultLogLevel,
	}
}

// GetRenderer retrieves the renderer from the command context.
func GetRenderer(ctx context.Context) *output.Renderer {
	if r, ok := ctx.Value(rendererKey{}).(*output.Renderer); ok {
		return r
	}
	// Return default renderer if none in context
	return output.NewRenderer(os.Stdout, os.Stderr, output.ModeAuto)
}

// NewCompletionCommand creates the completion command.
func NewCompletionCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "completion [bash|zsh|fish|powershell]",
		Short: "Generate shell completion scripts",
		Long: `Generate shell completion scripts for covidlens.

To load completions:

Bash:
  $ source <(covidlens completion bash)

  # To load completions for each session, execute once:
  # Linux:
  $ covidlens completion bash > /etc/bash_completion.d/covidlens
  # macOS:
  $ covidlens completion bash > $(brew --prefix)/etc/bash_completion.d/covidlens

Zsh:
  # If shell completion is not already enabled in your environment,
  # you will need to enable it. Execute the following once:
  $ echo "autoload -U compinit; compinit" >> ~/.zshrc

  # To load completions for each session, execute once:
  $ covidlens completion zsh > "${fpath[1]}/_covidlens"

  # You will need to start a new shell for this setup to take effect.

Fish:
  $ covidlens completion fish | source

  # To load completions for each session, execute once:
  $ covidlens completion fish > ~/.config/fish/completions/covidlens.fish

PowerShell:
  PS> covidlens completion powershell | Out-String | Invoke-Expression

  # To load completions for every new session, run:
  PS> covidlens completion powershell > covidlens.ps1
  # and source this file from your PowerShell profile.
`,
		DisableFlagsInUseLine: true,
		ValidArgs:             []string{"bash", "zsh", "fish", "powershell"},
		Args:                  cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			switch args[0] {
			case "bash":
				return cmd.Root().GenBashCompletion(out)
			case "zsh":
				return cmd.Root().GenZshCompletion(out)
			case "fish":
				return cmd.Root().GenFishCompletion(out, true)
			case "powershell":
				return cmd.Root().GenPowerShellCompletionWithDesc(out)
			}
			return nil
		},
	}
	return cmd
}
