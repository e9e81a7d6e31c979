package engine

// run.go - pipeline orchestration

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/leapstack-labs/covidlens/internal/derive"
	perrors "github.com/leapstack-labs/covidlens/internal/errors"
	"github.com/leapstack-labs/covidlens/internal/geo"
	"github.com/leapstack-labs/covidlens/pkg/core"
)

// Result is the output of one pipeline run. It is read-only once returned.
type Result struct {
	RunID     string
	StartedAt time.Time
	Duration  time.Duration

	// Table is the merged table with the per-million columns added.
	Table *core.Table

	Regions  []string
	Statuses []core.Status
	// UnknownStatuses lists the statuses outside core.KnownStatuses. They are
	// pivoted like the others but no view reads them.
	UnknownStatuses []core.Status

	CaseColumns []string
	VaccColumns []string
	Grouping    core.VaccinationGrouping

	Population derive.Population
	// Defaulted and Skipped list regions without a population entry.
	Defaulted []string
	Skipped   []string

	Normalize []NormalizeStats

	// Geo holds the boundary regions. GeoErr is set instead when the boundary
	// file is configured but cannot be loaded; the pipeline itself still succeeds.
	Geo    []geo.Region
	GeoErr error
}

// DroppedDates returns the number of rows the date normalizer dropped across all tables.
func (r *Result) DroppedDates() int64 {
	var n int64
	for _, s := range r.Normalize {
		n += s.Dropped
	}
	return n
}

// Run executes the whole pipeline: load, normalize dates, pivot, aggregate,
// merge, and derive the per-million metrics.
func (e *Engine) Run(ctx context.Context) (*Result, error) {
	res := &Result{
		RunID:     uuid.NewString(),
		StartedAt: time.Now(),
		Grouping:  e.cfg.Grouping(),
	}
	logger := e.logger.With("run_id", res.RunID)
	logger.Info("starting run", "data_dir", e.cfg.DataDir)

	if err := e.LoadInputs(ctx); err != nil {
		return nil, err
	}

	dateColumns := []struct{ table, column string }{
		{TableRawCases, e.cfg.Cases.DateColumn},
		{TableRawVaccination, e.cfg.Vaccination.DateColumn},
	}
	for _, dc := range dateColumns {
		stats, err := e.NormalizeDates(ctx, dc.table, dc.column)
		if err != nil {
			return nil, err
		}
		res.Normalize = append(res.Normalize, stats)
	}
	if cases := res.Normalize[0]; cases.Before > 0 && cases.After == 0 {
		return nil, perrors.New(perrors.ErrCategoryParse, perrors.CodeNoValidDates,
			fmt.Sprintf("no value of %s.%s matches the configured date formats", cases.Table, cases.Column)).
			WithDetails(map[string]interface{}{"formats": e.cfg.DateFormats})
	}

	regions, err := e.BuildCaseRecords(ctx)
	if err != nil {
		return nil, err
	}
	statuses, err := e.CaseStatuses(ctx)
	if err != nil {
		return nil, err
	}
	for _, s := range statuses {
		if !s.IsKnown() {
			res.UnknownStatuses = append(res.UnknownStatuses, s)
			logger.Warn("unknown case status", "status", string(s))
		}
	}
	caseCols, err := e.PivotCases(ctx, regions, statuses)
	if err != nil {
		return nil, err
	}
	vaccCols, err := e.AggregateVaccination(ctx, res.Grouping)
	if err != nil {
		return nil, err
	}
	if err := e.Merge(ctx, caseCols, vaccCols); err != nil {
		return nil, err
	}

	merged, err := e.readTable(ctx, TableMerged, "date")
	if err != nil {
		return nil, err
	}

	records, err := e.PopulationRecords(ctx)
	if err != nil {
		return nil, err
	}
	pop, invalid := derive.NewPopulation(records)
	for _, region := range invalid {
		logger.Warn("ignoring non-positive population", "region", region)
	}

	derived, err := derive.Derive(merged, regions, pop, derive.Options{
		Policy:      e.cfg.Policy(),
		Default:     e.cfg.Population.Default,
		DosesMetric: core.MetricName(e.cfg.Vaccination.DosesColumn),
		Logger:      logger,
	})
	if err != nil {
		return nil, err
	}

	res.Table = derived.Table
	res.Regions = regions
	res.Statuses = statuses
	res.CaseColumns = caseCols
	res.VaccColumns = vaccCols
	res.Population = pop
	res.Defaulted = derived.Defaulted
	res.Skipped = derived.Skipped

	if len(derived.Defaulted) > 0 {
		logger.Warn("regions without population use the default divisor",
			"regions", derived.Defaulted, "divisor", e.cfg.Population.Default)
	}

	if e.cfg.Files.Boundaries != "" {
		res.Geo, res.GeoErr = geo.Load(e.cfg.Path(e.cfg.Files.Boundaries), e.cfg.Geo.NameProperty)
		if res.GeoErr != nil {
			logger.Warn("boundary file unavailable", "error", res.GeoErr)
		}
	}

	res.Duration = time.Since(res.StartedAt)
	logger.Info("run complete", "rows", res.Table.Len(), "regions", len(regions), "dropped", res.DroppedDates(), "duration_ms", res.Duration.Milliseconds())

	return res, nil
}
