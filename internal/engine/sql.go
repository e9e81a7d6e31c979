package engine

// sql.go - small query helpers over the session database

import (
	"context"
	"fmt"
	"math/big"
	"strings"
	"time"

	"github.com/leapstack-labs/covidlens/internal/adapter"
	"github.com/leapstack-labs/covidlens/pkg/core"
)

var (
	ident   = adapter.QuoteIdent
	literal = adapter.QuoteLiteral
)

// queryInt runs a query returning a single integer.
func (e *Engine) queryInt(ctx context.Context, query string) (int64, error) {
	rows, err := e.db.Query(ctx, query)
	if err != nil {
		return 0, err
	}
	defer rows.Close()

	var n int64
	if rows.Next() {
		if err := rows.Scan(&n); err != nil {
			return 0, fmt.Errorf("failed to scan count: %w", err)
		}
	}
	return n, rows.Err()
}

// queryStrings runs a query returning one text column. NULLs are skipped.
func (e *Engine) queryStrings(ctx context.Context, query string) ([]string, error) {
	rows, err := e.db.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var s *string
		if err := rows.Scan(&s); err != nil {
			return nil, fmt.Errorf("failed to scan value: %w", err)
		}
		if s != nil {
			out = append(out, *s)
		}
	}
	return out, rows.Err()
}

// tableExists reports whether a table exists in the main schema.
func (e *Engine) tableExists(ctx context.Context, table string) (bool, error) {
	n, err := e.queryInt(ctx, fmt.Sprintf(
		"SELECT COUNT(*) FROM information_schema.tables WHERE table_schema = 'main' AND table_name = %s",
		literal(table)))
	if err != nil {
		return false, fmt.Errorf("failed to look up table %s: %w", table, err)
	}
	return n > 0, nil
}

// countRows returns the number of rows of a table.
func (e *Engine) countRows(ctx context.Context, table string) (int64, error) {
	return e.queryInt(ctx, "SELECT COUNT(*) FROM "+ident(table))
}

// tableColumns returns the column names of a table in ordinal order.
func (e *Engine) tableColumns(ctx context.Context, table string) ([]string, error) {
	md, err := e.db.GetTableMetadata(ctx, table)
	if err != nil {
		return nil, err
	}
	return md.ColumnNames(), nil
}

// readTable reads a date-keyed table into memory, ordered by date.
// Every column other than dateColumn is read as a float; NULLs become 0.
func (e *Engine) readTable(ctx context.Context, table, dateColumn string) (*core.Table, error) {
	cols, err := e.tableColumns(ctx, table)
	if err != nil {
		return nil, err
	}

	valueCols := make([]string, 0, len(cols))
	for _, c := range cols {
		if c != dateColumn {
			valueCols = append(valueCols, c)
		}
	}

	selectList := make([]string, 0, len(cols))
	selectList = append(selectList, ident(dateColumn))
	for _, c := range valueCols {
		selectList = append(selectList, ident(c))
	}

	rows, err := e.db.Query(ctx, fmt.Sprintf("SELECT %s FROM %s ORDER BY %s",
		strings.Join(selectList, ", "), ident(table), ident(dateColumn)))
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", table, err)
	}
	defer rows.Close()

	out := &core.Table{Columns: valueCols}
	dest := make([]any, len(selectList))
	for rows.Next() {
		var date time.Time
		dest[0] = &date
		raw := make([]any, len(valueCols))
		for i := range raw {
			dest[i+1] = &raw[i]
		}
		if err := rows.Scan(dest...); err != nil {
			return nil, fmt.Errorf("failed to scan %s row: %w", table, err)
		}

		values := make(map[string]float64, len(valueCols))
		for i, c := range valueCols {
			v, err := toFloat(raw[i])
			if err != nil {
				return nil, fmt.Errorf("column %s of %s: %w", c, table, err)
			}
			values[c] = v
		}
		out.Rows = append(out.Rows, core.Row{Date: date, Values: values})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating %s: %w", table, err)
	}
	return out, nil
}

// toFloat converts a scanned numeric value to float64.
func toFloat(v any) (float64, error) {
	switch n := v.(type) {
	case nil:
		return 0, nil
	case float64:
		return n, nil
	case float32:
		return float64(n), nil
	case int64:
		return float64(n), nil
	case int32:
		return float64(n), nil
	case int16:
		return float64(n), nil
	case int8:
		return float64(n), nil
	case uint64:
		return float64(n), nil
	case uint32:
		return float64(n), nil
	case *big.Int:
		f, _ := new(big.Float).SetInt(n).Float64()
		return f, nil
	}
	return 0, fmt.Errorf("unsupported value type %T", v)
}
