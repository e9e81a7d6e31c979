package engine

// population.go - population lookup

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/leapstack-labs/covidlens/pkg/core"
)

// PopulationRecords reads the raw population table in file order.
// Values may carry thousands separators; unparseable values read as 0 and are
// filtered out when the lookup is built.
func (e *Engine) PopulationRecords(ctx context.Context) ([]core.PopulationRecord, error) {
	pc := e.cfg.Population
	if err := e.requireColumns(ctx, TableRawPopulation, pc.RegionColumn, pc.ValueColumn); err != nil {
		return nil, err
	}

	rows, err := e.db.Query(ctx, fmt.Sprintf(
		"SELECT trim(CAST(%s AS VARCHAR)), TRY_CAST(replace(CAST(%s AS VARCHAR), ',', '') AS DOUBLE) FROM %s WHERE %s IS NOT NULL ORDER BY rowid",
		ident(pc.RegionColumn), ident(pc.ValueColumn), ident(TableRawPopulation), ident(pc.RegionColumn)))
	if err != nil {
		return nil, fmt.Errorf("failed to read population: %w", err)
	}
	defer rows.Close()

	var out []core.PopulationRecord
	for rows.Next() {
		var r core.PopulationRecord
		var v sql.NullFloat64
		if err := rows.Scan(&r.Region, &v); err != nil {
			return nil, fmt.Errorf("failed to scan population row: %w", err)
		}
		r.Population = v.Float64
		out = append(out, r)
	}
	return out, rows.Err()
}
