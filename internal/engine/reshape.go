package engine

// reshape.go - case pivot, vaccination aggregation and the merge

import (
	"context"
	"fmt"
	"sort"
	"strings"

	perrors "github.com/leapstack-labs/covidlens/internal/errors"
	"github.com/leapstack-labs/covidlens/pkg/core"
)

// BuildCaseRecords turns the raw case table into long-format case_records
// (date, region, status, cases) and returns the regions in source order.
//
// Wide input has one count column per region; every column except the date,
// status and excluded columns is a region. Long input is copied as is, with
// regions ordered by name.
func (e *Engine) BuildCaseRecords(ctx context.Context) ([]string, error) {
	cc := e.cfg.Cases
	if cc.IsLong() {
		return e.buildLongCaseRecords(ctx)
	}

	if err := e.requireColumns(ctx, TableRawCases, cc.DateColumn, cc.StatusColumn); err != nil {
		return nil, err
	}
	cols, err := e.tableColumns(ctx, TableRawCases)
	if err != nil {
		return nil, err
	}

	skip := map[string]bool{cc.DateColumn: true, cc.StatusColumn: true}
	for _, c := range cc.ExcludeColumns {
		skip[c] = true
	}

	var regions []string
	var selects []string
	for _, c := range cols {
		if skip[c] {
			continue
		}
		regions = append(regions, c)
		selects = append(selects, fmt.Sprintf(
			"SELECT %s AS date, %s AS region, trim(CAST(%s AS VARCHAR)) AS status, TRY_CAST(%s AS DOUBLE) AS cases FROM %s WHERE %s IS NOT NULL",
			ident(cc.DateColumn), literal(c), ident(cc.StatusColumn), ident(c), ident(TableRawCases), ident(cc.StatusColumn)))
	}

	var stmt string
	if len(selects) == 0 {
		stmt = fmt.Sprintf("CREATE OR REPLACE TABLE %s (date DATE, region VARCHAR, status VARCHAR, cases DOUBLE)", ident(TableCaseRecords))
	} else {
		stmt = fmt.Sprintf("CREATE OR REPLACE TABLE %s AS %s", ident(TableCaseRecords), strings.Join(selects, "\nUNION ALL\n"))
	}
	if err := e.db.Exec(ctx, stmt); err != nil {
		return nil, fmt.Errorf("failed to build case records: %w", err)
	}

	e.logger.Debug("built case records", "table", TableCaseRecords, "regions", len(regions))
	return regions, nil
}

func (e *Engine) buildLongCaseRecords(ctx context.Context) ([]string, error) {
	cc := e.cfg.Cases
	if err := e.requireColumns(ctx, TableRawCases, cc.DateColumn, cc.StatusColumn, cc.RegionColumn, cc.CountColumn); err != nil {
		return nil, err
	}

	stmt := fmt.Sprintf(`CREATE OR REPLACE TABLE %s AS
SELECT %s AS date, trim(CAST(%s AS VARCHAR)) AS region, trim(CAST(%s AS VARCHAR)) AS status, TRY_CAST(%s AS DOUBLE) AS cases
FROM %s WHERE %s IS NOT NULL AND %s IS NOT NULL`,
		ident(TableCaseRecords),
		ident(cc.DateColumn), ident(cc.RegionColumn), ident(cc.StatusColumn), ident(cc.CountColumn),
		ident(TableRawCases), ident(cc.RegionColumn), ident(cc.StatusColumn))
	if err := e.db.Exec(ctx, stmt); err != nil {
		return nil, fmt.Errorf("failed to build case records: %w", err)
	}

	regions, err := e.queryStrings(ctx, fmt.Sprintf("SELECT DISTINCT region FROM %s ORDER BY region", ident(TableCaseRecords)))
	if err != nil {
		return nil, fmt.Errorf("failed to list regions: %w", err)
	}

	e.logger.Debug("built case records", "table", TableCaseRecords, "regions", len(regions))
	return regions, nil
}

// CaseStatuses returns the distinct statuses of case_records.
// Known statuses come first in display order, the rest follow by name.
func (e *Engine) CaseStatuses(ctx context.Context) ([]core.Status, error) {
	names, err := e.queryStrings(ctx, fmt.Sprintf("SELECT DISTINCT status FROM %s", ident(TableCaseRecords)))
	if err != nil {
		return nil, fmt.Errorf("failed to list statuses: %w", err)
	}

	statuses := make([]core.Status, 0, len(names))
	for _, n := range names {
		statuses = append(statuses, core.Status(n))
	}
	sort.SliceStable(statuses, func(i, j int) bool {
		ri, rj := statusRank(statuses[i]), statusRank(statuses[j])
		if ri != rj {
			return ri < rj
		}
		return statuses[i] < statuses[j]
	})
	return statuses, nil
}

func statusRank(s core.Status) int {
	for i, k := range core.KnownStatuses {
		if s == k {
			return i
		}
	}
	return len(core.KnownStatuses)
}

// caseRecords reads case_records back into memory, ordered by date, region and status.
func (e *Engine) caseRecords(ctx context.Context) ([]core.CaseRecord, error) {
	rows, err := e.db.Query(ctx, fmt.Sprintf(
		"SELECT date, region, status, COALESCE(cases, 0) FROM %s ORDER BY date, region, status", ident(TableCaseRecords)))
	if err != nil {
		return nil, fmt.Errorf("failed to read case records: %w", err)
	}
	defer rows.Close()

	var out []core.CaseRecord
	for rows.Next() {
		var r core.CaseRecord
		var status string
		if err := rows.Scan(&r.Date, &r.Region, &status, &r.Count); err != nil {
			return nil, fmt.Errorf("failed to scan case record: %w", err)
		}
		r.Status = core.Status(status)
		out = append(out, r)
	}
	return out, rows.Err()
}

// PivotCases builds wide_cases: one row per distinct date and one "{status}_{region}"
// column per region/status pair. Missing combinations are 0, never NULL.
// Duplicate records for the same date, region and status are summed.
// It returns the value columns in table order (status-major).
func (e *Engine) PivotCases(ctx context.Context, regions []string, statuses []core.Status) ([]string, error) {
	selectList := []string{"date"}
	var columns []string
	for _, s := range statuses {
		for _, r := range regions {
			col := core.CaseColumn(s, r)
			columns = append(columns, col)
			selectList = append(selectList, fmt.Sprintf(
				"COALESCE(SUM(cases) FILTER (WHERE status = %s AND region = %s), 0) AS %s",
				literal(string(s)), literal(r), ident(col)))
		}
	}

	if dup := firstDuplicate(columns); dup != "" {
		return nil, perrors.New(perrors.ErrCategorySchema, perrors.CodeColumnConflict,
			fmt.Sprintf("case column %q is produced by more than one region/status pair", dup))
	}

	stmt := fmt.Sprintf("CREATE OR REPLACE TABLE %s AS SELECT %s FROM %s GROUP BY date",
		ident(TableWideCases), strings.Join(selectList, ",\n  "), ident(TableCaseRecords))
	if err := e.db.Exec(ctx, stmt); err != nil {
		return nil, fmt.Errorf("failed to pivot case records: %w", err)
	}

	e.logger.Debug("pivoted cases", "table", TableWideCases, "columns", len(columns))
	return columns, nil
}

// numericColumns returns the columns of table, minus skip, whose every non-NULL value casts to a number.
func (e *Engine) numericColumns(ctx context.Context, table string, skip map[string]bool) ([]string, error) {
	cols, err := e.tableColumns(ctx, table)
	if err != nil {
		return nil, err
	}

	var out []string
	for _, c := range cols {
		if skip[c] {
			continue
		}
		bad, err := e.queryInt(ctx, fmt.Sprintf(
			"SELECT COUNT(%s) - COUNT(TRY_CAST(%s AS DOUBLE)) FROM %s", ident(c), ident(c), ident(table)))
		if err != nil {
			return nil, fmt.Errorf("failed to inspect column %s: %w", c, err)
		}
		if bad == 0 {
			out = append(out, c)
		}
	}
	return out, nil
}

// AggregateVaccination builds vacc_agg from the raw vaccination table by summing
// every numeric column per grouping key. Multiple rows for the same key are summed,
// not averaged or overwritten.
//
// GroupByDate yields snake_case metric columns ("total_doses_administered") and
// drops per-region detail. GroupByDateRegion yields "{region}_{metric}" columns.
// It returns the value columns in table order.
func (e *Engine) AggregateVaccination(ctx context.Context, grouping core.VaccinationGrouping) ([]string, error) {
	vc := e.cfg.Vaccination
	required := []string{vc.DateColumn}
	if grouping == core.GroupByDateRegion {
		required = append(required, vc.RegionColumn)
	}
	if err := e.requireColumns(ctx, TableRawVaccination, required...); err != nil {
		return nil, err
	}

	metrics, err := e.numericColumns(ctx, TableRawVaccination, map[string]bool{vc.DateColumn: true, vc.RegionColumn: true})
	if err != nil {
		return nil, err
	}

	var regions []string
	if grouping == core.GroupByDateRegion {
		regions, err = e.queryStrings(ctx, fmt.Sprintf(
			"SELECT DISTINCT trim(CAST(%s AS VARCHAR)) AS r FROM %s WHERE %s IS NOT NULL ORDER BY r",
			ident(vc.RegionColumn), ident(TableRawVaccination), ident(vc.RegionColumn)))
		if err != nil {
			return nil, fmt.Errorf("failed to list vaccination regions: %w", err)
		}
	}

	selectList := []string{fmt.Sprintf("%s AS date", ident(vc.DateColumn))}
	var columns []string
	for _, m := range metrics {
		name := core.MetricName(m)
		sum := fmt.Sprintf("SUM(TRY_CAST(%s AS DOUBLE))", ident(m))
		if grouping == core.GroupByDate {
			columns = append(columns, name)
			selectList = append(selectList, fmt.Sprintf("COALESCE(%s, 0) AS %s", sum, ident(name)))
			continue
		}
		for _, r := range regions {
			col := core.RegionMetricColumn(r, name)
			columns = append(columns, col)
			selectList = append(selectList, fmt.Sprintf(
				"COALESCE(%s FILTER (WHERE trim(CAST(%s AS VARCHAR)) = %s), 0) AS %s",
				sum, ident(vc.RegionColumn), literal(r), ident(col)))
		}
	}

	if dup := firstDuplicate(columns); dup != "" {
		return nil, perrors.New(perrors.ErrCategorySchema, perrors.CodeColumnConflict,
			fmt.Sprintf("vaccination column %q is produced by more than one source column", dup))
	}

	stmt := fmt.Sprintf("CREATE OR REPLACE TABLE %s AS SELECT %s FROM %s GROUP BY 1",
		ident(TableVaccination), strings.Join(selectList, ",\n  "), ident(TableRawVaccination))
	if err := e.db.Exec(ctx, stmt); err != nil {
		return nil, fmt.Errorf("failed to aggregate vaccination: %w", err)
	}

	e.logger.Debug("aggregated vaccination", "table", TableVaccination, "group_by", string(grouping), "columns", len(columns))
	return columns, nil
}

// Merge left-joins wide_cases with vacc_agg on date into merged.
// Every case date is kept; vaccination columns without a matching date are 0.
func (e *Engine) Merge(ctx context.Context, caseColumns, vaccColumns []string) error {
	seen := make(map[string]bool, len(caseColumns)+1)
	seen["date"] = true
	for _, c := range caseColumns {
		seen[strings.ToLower(c)] = true
	}

	selectList := []string{"c.*"}
	for _, v := range vaccColumns {
		if seen[strings.ToLower(v)] {
			return perrors.New(perrors.ErrCategorySchema, perrors.CodeColumnConflict,
				fmt.Sprintf("vaccination column %q collides with a case column", v)).
				WithDetails(map[string]interface{}{"column": v})
		}
		selectList = append(selectList, fmt.Sprintf("COALESCE(v.%s, 0) AS %s", ident(v), ident(v)))
	}

	stmt := fmt.Sprintf("CREATE OR REPLACE TABLE %s AS SELECT %s FROM %s c LEFT JOIN %s v ON c.date = v.date ORDER BY c.date",
		ident(TableMerged), strings.Join(selectList, ", "), ident(TableWideCases), ident(TableVaccination))
	if err := e.db.Exec(ctx, stmt); err != nil {
		return fmt.Errorf("failed to merge cases and vaccination: %w", err)
	}

	e.logger.Debug("merged tables", "table", TableMerged)
	return nil
}

// firstDuplicate returns the first name that repeats an earlier one. Names
// compare case-insensitively, as DuckDB identifiers do.
func firstDuplicate(names []string) string {
	seen := make(map[string]bool, len(names))
	for _, n := range names {
		key := strings.ToLower(n)
		if seen[key] {
			return n
		}
		seen[key] = true
	}
	return ""
}
