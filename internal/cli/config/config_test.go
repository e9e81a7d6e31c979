package config

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	intconfig "github.com/leapstack-labs/covidlens/internal/config"
)

// writeConfig writes a covidlens.yaml into a fresh temp dir and returns its path.
func writeConfig(t *testing.T, content string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, intconfig.ConfigFileName)
	require.NoError(t, os.WriteFile(path, []byte(content), 0600))
	return path
}

func testFlags() *pflag.FlagSet {
	flags := pflag.NewFlagSet("test", pflag.ContinueOnError)
	flags.String("config", "", "")
	flags.String("project-dir", "", "")
	flags.String("data-dir", "", "")
	flags.String("database", "", "")
	flags.String("group-by", "", "")
	flags.String("on-missing", "", "")
	flags.StringP("output", "o", "", "")
	flags.BoolP("verbose", "v", false, "")
	flags.String("log-level", "", "")
	flags.String("state", "", "")
	return flags
}

// TestExpandEnvVars tests the expandEnvVars function.
func TestExpandEnvVars(t *testing.T) {
	t.Setenv("TEST_VAR_ONE", "value_one")
	t.Setenv("TEST_VAR_TWO", "value_two")

	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"single variable", "${TEST_VAR_ONE}", "value_one"},
		{"multiple variables", "${TEST_VAR_ONE}/${TEST_VAR_TWO}", "value_one/value_two"},
		{"variable in path", "/path/to/${TEST_VAR_ONE}/data", "/path/to/value_one/data"},
		{"unset variable stays as-is", "${UNSET_VARIABLE}", "${UNSET_VARIABLE}"},
		{"no variables", "plain string", "plain string"},
		{"empty string", "", ""},
		{"mixed set and unset", "${TEST_VAR_ONE}:${UNSET_VAR}", "value_one:${UNSET_VAR}"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, expandEnvVars(tt.input))
		})
	}
}

func TestEnvKey(t *testing.T) {
	assert.Equal(t, "data_dir", envKey("COVIDLENS_DATA_DIR"))
	assert.Equal(t, "vaccination.group_by", envKey("COVIDLENS_VACCINATION__GROUP_BY"))
	assert.Equal(t, "database.path", envKey("COVIDLENS_DATABASE__PATH"))
}

func TestFlagKey(t *testing.T) {
	assert.Equal(t, "data_dir", flagKey("data-dir"))
	assert.Equal(t, "log_level", flagKey("log-level"))
	assert.Equal(t, "database.path", flagKey("database"))
	assert.Equal(t, "vaccination.group_by", flagKey("group-by"))
	assert.Equal(t, "population.on_missing", flagKey("on-missing"))
}

func TestLoadConfig_Defaults(t *testing.T) {
	ResetConfig()
	cfgPath := writeConfig(t, "{}\n")

	cfg, err := LoadConfig(cfgPath, nil)
	require.NoError(t, err)

	root := filepath.Dir(cfgPath)
	assert.Equal(t, root, cfg.ProjectRoot)
	assert.Equal(t, filepath.Join(root, intconfig.DefaultDataDir), cfg.DataDir)
	assert.Equal(t, intconfig.DefaultCasesFile, cfg.Files.Cases)
	assert.Equal(t, intconfig.DefaultBoundariesFile, cfg.Files.Boundaries)
	assert.Equal(t, intconfig.DefaultDatabasePath, cfg.Database.Path)
	assert.Equal(t, "date", cfg.Vaccination.GroupBy)
	assert.Equal(t, "default", cfg.Population.OnMissing)
	assert.InDelta(t, 1.0, cfg.Population.Default, 0)
	assert.Equal(t, DefaultOutput, cfg.OutputFormat)
	assert.Equal(t, DefaultLogLevel, cfg.LogLevel)
	assert.False(t, cfg.Verbose)
	assert.Equal(t, cfgPath, GetConfigFileUsed())
	assert.Same(t, cfg, GetCurrentConfig())
}

func TestLoadConfig_FileValues(t *testing.T) {
	ResetConfig()
	cfgPath := writeConfig(t, `data_dir: inputs
files:
  cases: long.csv
  boundaries: ""
cases:
  region_column: State
  count_column: Count
vaccination:
  group_by: date_region
population:
  on_missing: skip
dashboard:
  regions: [Kerala, Goa]
database:
  path: covid.duckdb
output: json
`)

	cfg, err := LoadConfig(cfgPath, nil)
	require.NoError(t, err)

	root := filepath.Dir(cfgPath)
	assert.Equal(t, filepath.Join(root, "inputs"), cfg.DataDir)
	assert.Equal(t, "long.csv", cfg.Files.Cases)
	assert.Equal(t, intconfig.DefaultVaccinationFile, cfg.Files.Vaccination)
	assert.Empty(t, cfg.Files.Boundaries, "explicit empty boundaries disables the map")
	assert.True(t, cfg.Cases.IsLong())
	assert.Equal(t, "date_region", cfg.Vaccination.GroupBy)
	assert.Equal(t, "skip", cfg.Population.OnMissing)
	assert.Equal(t, []string{"Kerala", "Goa"}, cfg.Dashboard.Regions)
	assert.Equal(t, filepath.Join(root, "covid.duckdb"), cfg.Database.Path)
	assert.Equal(t, "json", cfg.OutputFormat)
}

func TestLoadConfig_InvalidValues(t *testing.T) {
	tests := []struct {
		name      string
		content   string
		errSubstr string
	}{
		{"group_by", "vaccination:\n  group_by: week\n", "vaccination.group_by"},
		{"on_missing", "population:\n  on_missing: guess\n", "population.on_missing"},
		{"output", "output: html\n", "output"},
		{"log_level", "log_level: loud\n", "log_level"},
		{"half long layout", "cases:\n  region_column: State\n", "count_column"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ResetConfig()
			_, err := LoadConfig(writeConfig(t, tt.content), nil)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errSubstr)
		})
	}
}

func TestLoadConfig_MalformedFile(t *testing.T) {
	ResetConfig()
	_, err := LoadConfig(writeConfig(t, "data_dir: [unterminated\n"), nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "error reading config file")
}

// TestLoadConfig_FlagPrecedence tests that flags override env vars and config file.
func TestLoadConfig_FlagPrecedence(t *testing.T) {
	ResetConfig()
	cfgPath := writeConfig(t, "vaccination:\n  group_by: date\n")
	t.Setenv("COVIDLENS_VACCINATION__GROUP_BY", "date")

	flags := testFlags()
	require.NoError(t, flags.Set("group-by", "date_region"))

	cfg, err := LoadConfig(cfgPath, flags)
	require.NoError(t, err)

	assert.Equal(t, "date_region", cfg.Vaccination.GroupBy, "flag value should override config file and env var")
}

// TestLoadConfig_EnvPrecedenceOverFile tests that env vars override config file.
func TestLoadConfig_EnvPrecedenceOverFile(t *testing.T) {
	ResetConfig()
	cfgPath := writeConfig(t, "population:\n  on_missing: default\n")
	t.Setenv("COVIDLENS_POPULATION__ON_MISSING", "reject")

	cfg, err := LoadConfig(cfgPath, nil)
	require.NoError(t, err)

	assert.Equal(t, "reject", cfg.Population.OnMissing, "env var should override config file")
}

// TestLoadConfig_FlagNotSetUsesEnv tests that unset flags fall back to env vars.
func TestLoadConfig_FlagNotSetUsesEnv(t *testing.T) {
	ResetConfig()
	cfgPath := writeConfig(t, "{}\n")
	t.Setenv("COVIDLENS_OUTPUT", "markdown")

	cfg, err := LoadConfig(cfgPath, testFlags())
	require.NoError(t, err)

	assert.Equal(t, "markdown", cfg.OutputFormat, "env var should be used when flag is not set")
}

func TestLoadConfig_DataDirFlagIsRelativeToCWD(t *testing.T) {
	ResetConfig()
	cfgPath := writeConfig(t, "data_dir: from_file\n")

	flags := testFlags()
	require.NoError(t, flags.Set("data-dir", "from_flag"))
	require.NoError(t, flags.Set("database", ":memory:"))

	cfg, err := LoadConfig(cfgPath, flags)
	require.NoError(t, err)

	cwd, err := os.Getwd()
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(cwd, "from_flag"), cfg.DataDir)
	assert.Equal(t, ":memory:", cfg.Database.Path)
}

func TestLoadConfig_ProjectDirFlag(t *testing.T) {
	ResetConfig()
	cfgPath := writeConfig(t, "data_dir: csv\n")
	root := filepath.Dir(cfgPath)

	flags := testFlags()
	require.NoError(t, flags.Set("project-dir", root))

	cfg, err := LoadConfig("", flags)
	require.NoError(t, err)

	assert.Equal(t, root, cfg.ProjectRoot)
	assert.Equal(t, cfgPath, GetConfigFileUsed())
	assert.Equal(t, filepath.Join(root, "csv"), cfg.DataDir)
}

func TestLoadConfig_ExpandsEnvInPaths(t *testing.T) {
	ResetConfig()
	dataDir := t.TempDir()
	t.Setenv("COVID_DATA", dataDir)
	cfgPath := writeConfig(t, "data_dir: ${COVID_DATA}\n")

	cfg, err := LoadConfig(cfgPath, nil)
	require.NoError(t, err)
	assert.Equal(t, dataDir, cfg.DataDir)
}

// TestConfig_Validate tests the Config.Validate method.
func TestConfig_Validate(t *testing.T) {
	t.Run("valid config", func(t *testing.T) {
		cfg := &Config{PipelineConfig: *intconfig.Default()}
		assert.NoError(t, cfg.Validate())
	})

	t.Run("empty data_dir", func(t *testing.T) {
		cfg := &Config{PipelineConfig: *intconfig.Default()}
		cfg.DataDir = ""
		err := cfg.Validate()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "data_dir is required")
	})

	t.Run("unknown output", func(t *testing.T) {
		cfg := &Config{PipelineConfig: *intconfig.Default(), OutputFormat: "html"}
		require.Error(t, cfg.Validate())
	})
}

func TestConfig_ValidateDirectories(t *testing.T) {
	cfg := &Config{PipelineConfig: *intconfig.Default()}

	cfg.DataDir = t.TempDir()
	assert.NoError(t, cfg.ValidateDirectories())

	cfg.DataDir = filepath.Join(cfg.DataDir, "missing")
	err := cfg.ValidateDirectories()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "--data-dir")

	file := filepath.Join(t.TempDir(), "cases.csv")
	require.NoError(t, os.WriteFile(file, []byte("x"), 0600))
	cfg.DataDir = file
	require.Error(t, cfg.ValidateDirectories())
}

func TestParseLogLevel(t *testing.T) {
	tests := []struct {
		in   string
		want slog.Level
	}{
		{"", slog.LevelWarn},
		{"debug", slog.LevelDebug},
		{"INFO", slog.LevelInfo},
		{"warning", slog.LevelWarn},
		{"error", slog.LevelError},
	}
	for _, tt := range tests {
		got, err := ParseLogLevel(tt.in)
		require.NoError(t, err, tt.in)
		assert.Equal(t, tt.want, got, tt.in)
	}

	_, err := ParseLogLevel("trace")
	require.Error(t, err)
}

func TestGetLogger(t *testing.T) {
	assert.NotNil(t, GetLogger(context.Background()), "fallback logger")

	logger := slog.New(slog.DiscardHandler)
	ctx := context.WithValue(context.Background(), LoggerKey(), logger)
	assert.Same(t, logger, GetLogger(ctx))
}

func TestResolvePathRelativeTo(t *testing.T) {
	assert.Equal(t, "", resolvePathRelativeTo("", "/base"))
	assert.Equal(t, "/abs/data", resolvePathRelativeTo("/abs/data", "/base"))
	assert.Equal(t, filepath.Join("/base", "data"), resolvePathRelativeTo("data", "/base"))
}

func TestLoadConfig_StateAndServeDefaults(t *testing.T) {
	ResetConfig()
	cfgPath := writeConfig(t, "{}\n")

	cfg, err := LoadConfig(cfgPath, nil)
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(filepath.Dir(cfgPath), DefaultState), cfg.State.Path)
	assert.Equal(t, DefaultKeepRuns, cfg.State.Keep)
	assert.Equal(t, DefaultHost, cfg.Serve.Host)
	assert.Equal(t, DefaultPort, cfg.Serve.Port)
	assert.True(t, cfg.Serve.Watch)
	assert.Empty(t, cfg.Serve.SessionSecret)
}

func TestLoadConfig_StateAndServeValues(t *testing.T) {
	ResetConfig()
	cfgPath := writeConfig(t, `state:
  path: ""
  keep: 5
serve:
  host: 0.0.0.0
  port: 9000
  watch: false
  session_secret: s3cret
`)

	cfg, err := LoadConfig(cfgPath, nil)
	require.NoError(t, err)

	assert.Empty(t, cfg.State.Path, "an empty state path disables the history")
	assert.Equal(t, 5, cfg.State.Keep)
	assert.Equal(t, "0.0.0.0", cfg.Serve.Host)
	assert.Equal(t, 9000, cfg.Serve.Port)
	assert.False(t, cfg.Serve.Watch)
	assert.Equal(t, "s3cret", cfg.Serve.SessionSecret)
}

func TestLoadConfig_StateFlagIsRelativeToCWD(t *testing.T) {
	ResetConfig()
	cfgPath := writeConfig(t, "{}\n")

	flags := testFlags()
	require.NoError(t, flags.Set("state", "history.db"))

	cfg, err := LoadConfig(cfgPath, flags)
	require.NoError(t, err)

	wd, err := os.Getwd()
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(wd, "history.db"), cfg.State.Path)
}

func TestLoadConfig_InvalidStateAndServe(t *testing.T) {
	tests := []struct {
		name      string
		content   string
		errSubstr string
	}{
		{"negative keep", "state:\n  keep: -1\n", "state.keep"},
		{"port too large", "serve:\n  port: 70000\n", "serve.port"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ResetConfig()
			_, err := LoadConfig(writeConfig(t, tt.content), nil)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errSubstr)
		})
	}
}
