package engine

// normalize.go - date normalization

import (
	"context"
	"fmt"
	"strings"
)

// NormalizeStats reports what the date normalizer did to one table.
type NormalizeStats struct {
	Table   string
	Column  string
	Before  int64
	After   int64
	Dropped int64
}

// dateExpr builds the SQL expression parsing column with the first matching format.
// It yields NULL when no format matches.
func dateExpr(column string, formats []string) string {
	parts := make([]string, len(formats))
	for i, f := range formats {
		parts[i] = fmt.Sprintf("try_strptime(trim(CAST(%s AS VARCHAR)), %s)", ident(column), literal(f))
	}
	return fmt.Sprintf("CAST(COALESCE(%s) AS DATE)", strings.Join(parts, ", "))
}

// NormalizeDates replaces the text column of table with parsed DATE values.
// Rows whose value matches none of the configured formats are dropped, not kept as NULL;
// the count is reported in the returned stats and is not an error.
func (e *Engine) NormalizeDates(ctx context.Context, table, column string) (NormalizeStats, error) {
	stats := NormalizeStats{Table: table, Column: column}

	if err := e.ensureDBConnected(ctx); err != nil {
		return stats, err
	}
	if err := e.requireColumns(ctx, table, column); err != nil {
		return stats, err
	}

	before, err := e.countRows(ctx, table)
	if err != nil {
		return stats, fmt.Errorf("failed to count rows of %s: %w", table, err)
	}

	expr := dateExpr(column, e.cfg.DateFormats)
	staging := table + "__dates"
	stmts := []string{
		fmt.Sprintf("CREATE OR REPLACE TABLE %s AS SELECT * REPLACE (%s AS %s) FROM %s WHERE %s IS NOT NULL",
			ident(staging), expr, ident(column), ident(table), expr),
		fmt.Sprintf("DROP TABLE %s", ident(table)),
		fmt.Sprintf("ALTER TABLE %s RENAME TO %s", ident(staging), ident(table)),
	}
	for _, stmt := range stmts {
		if err := e.db.Exec(ctx, stmt); err != nil {
			return stats, fmt.Errorf("failed to normalize %s.%s: %w", table, column, err)
		}
	}

	after, err := e.countRows(ctx, table)
	if err != nil {
		return stats, fmt.Errorf("failed to count rows of %s: %w", table, err)
	}

	stats.Before, stats.After, stats.Dropped = before, after, before-after
	e.logger.Debug("normalized dates", "table", table, "column", column, "rows", after, "dropped", stats.Dropped)

	return stats, nil
}
