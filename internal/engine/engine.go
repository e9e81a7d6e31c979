// Package engine runs the covidlens data pipeline.
// It loads the input files into a DuckDB session, normalizes their dates,
// pivots and joins them with SQL, and hands the merged table to the metric deriver.
package engine

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/leapstack-labs/covidlens/internal/adapter"
	"github.com/leapstack-labs/covidlens/internal/config"
)

// Session table names. They stay queryable for the lifetime of the engine.
const (
	TableRawCases       = "raw_cases"
	TableRawVaccination = "raw_vaccination"
	TableRawPopulation  = "raw_population"
	TableCaseRecords    = "case_records"
	TableWideCases      = "wide_cases"
	TableVaccination    = "vacc_agg"
	TableMerged         = "merged"
)

// SessionTables lists the session tables in pipeline order.
func SessionTables() []string {
	return []string{
		TableRawCases, TableRawVaccination, TableRawPopulation,
		TableCaseRecords, TableWideCases, TableVaccination, TableMerged,
	}
}

// Engine orchestrates one pipeline session.
type Engine struct {
	// Database adapter (lazy initialized)
	db          adapter.Adapter
	dbConfig    adapter.Config
	dbConnected bool

	// Structured logger
	logger *slog.Logger

	cfg *config.PipelineConfig
}

// Config holds engine configuration.
type Config struct {
	// Pipeline describes the data directory and its files. Defaults are applied to a copy.
	Pipeline *config.PipelineConfig
	// Adapter overrides the session database (optional, DuckDB if nil)
	Adapter adapter.Adapter
	// Logger is the structured logger (optional, uses discard if nil)
	Logger *slog.Logger
}

// New creates a new engine with lazy database connection.
// The database adapter is only connected when Run() or Session() is called.
func New(cfg Config) (*Engine, error) {
	// Initialize logger (use discard handler if nil)
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	var pc config.PipelineConfig
	if cfg.Pipeline != nil {
		pc = *cfg.Pipeline
	}
	config.ApplyDefaults(&pc)
	if err := pc.Validate(); err != nil {
		return nil, fmt.Errorf("invalid pipeline configuration: %w", err)
	}

	logger.Debug("initializing engine", "data_dir", pc.DataDir, "group_by", pc.Vaccination.GroupBy)

	db := cfg.Adapter
	if db == nil {
		db = adapter.NewDuckDBAdapter()
	}

	return &Engine{
		db: db,
		dbConfig: adapter.Config{
			Path:   pc.Database.Path,
			Params: pc.Database.Params,
		},
		logger: logger,
		cfg:    &pc,
	}, nil
}

// ensureDBConnected lazily connects to the database.
func (e *Engine) ensureDBConnected(ctx context.Context) error {
	if e.dbConnected {
		return nil
	}

	e.logger.Debug("connecting to database", "path", e.dbConfig.Path)

	if err := e.db.Connect(ctx, e.dbConfig); err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	e.dbConnected = true

	e.logger.Debug("database connected", "dialect", e.db.DialectName())

	return nil
}

// Session returns the connected session database, for ad-hoc queries over the pipeline tables.
func (e *Engine) Session(ctx context.Context) (adapter.Adapter, error) {
	if err := e.ensureDBConnected(ctx); err != nil {
		return nil, err
	}
	return e.db, nil
}

// Config returns the effective pipeline configuration (defaults applied).
func (e *Engine) Config() *config.PipelineConfig {
	return e.cfg
}

// Tables returns metadata for every session table that currently exists.
func (e *Engine) Tables(ctx context.Context) ([]*adapter.Metadata, error) {
	if err := e.ensureDBConnected(ctx); err != nil {
		return nil, err
	}

	var out []*adapter.Metadata
	for _, name := range SessionTables() {
		ok, err := e.tableExists(ctx, name)
		if err != nil {
			return nil, err
		}
		if !ok {
			continue
		}
		md, err := e.db.GetTableMetadata(ctx, name)
		if err != nil {
			return nil, err
		}
		out = append(out, md)
	}
	return out, nil
}

// Close releases all resources.
func (e *Engine) Close() error {
	e.logger.Debug("closing engine")

	if e.db != nil && e.dbConnected {
		if err := e.db.Close(); err != nil {
			return fmt.Errorf("errors closing engine: %w", err)
		}
	}
	return nil
}
