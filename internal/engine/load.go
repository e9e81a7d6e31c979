package engine

// load.go - reading the input files into raw session tables

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/leapstack-labs/covidlens/internal/adapter"
	perrors "github.com/leapstack-labs/covidlens/internal/errors"
)

// Input pairs a session table with the file it is loaded from.
type Input struct {
	Table string
	Path  string
}

// Inputs returns the CSV inputs of the pipeline in load order.
func (e *Engine) Inputs() []Input {
	return []Input{
		{Table: TableRawCases, Path: e.cfg.Path(e.cfg.Files.Cases)},
		{Table: TableRawVaccination, Path: e.cfg.Path(e.cfg.Files.Vaccination)},
		{Table: TableRawPopulation, Path: e.cfg.Path(e.cfg.Files.Population)},
	}
}

// LoadInputs loads every CSV input into its raw table.
// All columns are read as text; later stages own the conversion.
func (e *Engine) LoadInputs(ctx context.Context) error {
	for _, in := range e.Inputs() {
		if err := e.LoadInput(ctx, in); err != nil {
			return err
		}
	}
	return nil
}

// LoadInput loads one CSV input into its raw table, replacing any previous load.
func (e *Engine) LoadInput(ctx context.Context, in Input) error {
	if err := e.ensureDBConnected(ctx); err != nil {
		return err
	}

	info, err := os.Stat(in.Path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return perrors.NewFileNotFound(in.Path, err)
		}
		return perrors.NewParseError(in.Path, err)
	}
	if info.IsDir() {
		return perrors.NewParseError(in.Path, fmt.Errorf("is a directory"))
	}

	e.logger.Debug("loading input", "table", in.Table, "path", in.Path)

	if err := e.db.LoadCSV(ctx, in.Table, in.Path, adapter.CSVOptions{AllVarchar: true}); err != nil {
		return perrors.NewParseError(in.Path, err)
	}

	n, err := e.countRows(ctx, in.Table)
	if err != nil {
		return fmt.Errorf("failed to count rows of %s: %w", in.Table, err)
	}
	e.logger.Debug("loaded input", "table", in.Table, "rows", n)

	return nil
}

// requireColumns returns a schema error for the first column the table lacks.
func (e *Engine) requireColumns(ctx context.Context, table string, cols ...string) error {
	md, err := e.db.GetTableMetadata(ctx, table)
	if err != nil {
		return fmt.Errorf("failed to inspect %s: %w", table, err)
	}
	for _, c := range cols {
		if !md.HasColumn(c) {
			return perrors.NewMissingColumn(table, c, md.ColumnNames())
		}
	}
	return nil
}
