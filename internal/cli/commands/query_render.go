package commands

import (
	"context"
	"database/sql"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"

	"github.com/leapstack-labs/covidlens/internal/adapter"
	"github.com/leapstack-labs/covidlens/internal/cli/output"
)

func renderResults(w io.Writer, rows *sql.Rows, format string) error {
	cols, err := rows.Columns()
	if err != nil {
		return err
	}

	// Collect all rows
	var records [][]any
	for rows.Next() {
		values := make([]any, len(cols))
		valuePtrs := make([]any, len(cols))
		for i := range values {
			valuePtrs[i] = &values[i]
		}

		if err := rows.Scan(valuePtrs...); err != nil {
			return err
		}

		for i, val := range values {
			// Convert []byte to string for readability
			if b, ok := val.([]byte); ok {
				values[i] = string(b)
			}
		}
		records = append(records, values)
	}

	if err := rows.Err(); err != nil {
		return err
	}

	return renderRecords(w, cols, records, format)
}

func renderRecords(w io.Writer, cols []string, records [][]any, format string) error {
	switch format {
	case "json":
		return renderJSON(w, cols, records)
	case "csv":
		return renderCSV(w, cols, records)
	case "md", "markdown":
		return renderTable(w, cols, records, true)
	default:
		return renderTable(w, cols, records, false)
	}
}

func renderTable(w io.Writer, cols []string, records [][]any, markdown bool) error {
	if len(records) == 0 {
		_, _ = fmt.Fprintln(w, "(0 rows)")
		return nil
	}

	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleLight)

	// Header
	headerRow := make(table.Row, len(cols))
	for i, col := range cols {
		headerRow[i] = col
	}
	t.AppendHeader(headerRow)

	// Rows
	for _, record := range records {
		row := make(table.Row, len(cols))
		for i, v := range record {
			row[i] = formatValue(v)
		}
		t.AppendRow(row)
	}

	if markdown {
		t.RenderMarkdown()
		return nil
	}
	t.Render()
	_, _ = fmt.Fprintf(w, "(%d rows)\n", len(records))
	return nil
}

func renderJSON(w io.Writer, cols []string, records [][]any) error {
	results := make([]map[string]any, 0, len(records))
	for _, record := range records {
		row := make(map[string]any, len(cols))
		for i, col := range cols {
			v := record[i]
			if t, ok := v.(time.Time); ok {
				v = formatTime(t)
			}
			row[col] = v
		}
		results = append(results, row)
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(results)
}

func renderCSV(w io.Writer, cols []string, records [][]any) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(cols); err != nil {
		return err
	}
	for _, record := range records {
		values := make([]string, len(record))
		for i, v := range record {
			values[i] = formatValue(v)
		}
		if err := cw.Write(values); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

func formatValue(v any) string {
	switch val := v.(type) {
	case nil:
		return "NULL"
	case time.Time:
		return formatTime(val)
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(val), 'f', -1, 32)
	}
	return fmt.Sprintf("%v", v)
}

// formatTime prints dates without a clock and timestamps in RFC 3339.
func formatTime(t time.Time) string {
	if t.Hour() == 0 && t.Minute() == 0 && t.Second() == 0 && t.Nanosecond() == 0 {
		return t.Format(output.DateLayout)
	}
	return t.Format(time.RFC3339)
}

// Helper functions for subcommands

func listTables(ctx context.Context, w io.Writer, db adapter.Adapter, format string) error {
	rows, err := db.Query(ctx, `
		SELECT table_name AS name, table_type AS type
		FROM information_schema.tables
		WHERE table_schema = 'main'
		ORDER BY table_name
	`)
	if err != nil {
		return err
	}
	defer func() { _ = rows.Close() }()

	return renderResults(w, rows.Rows, format)
}

func showSchema(ctx context.Context, w io.Writer, db adapter.Adapter, tableName, format string) error {
	md, err := db.GetTableMetadata(ctx, tableName)
	if err != nil {
		return err
	}

	cols := []string{"position", "name", "type", "nullable"}
	records := make([][]any, len(md.Columns))
	for i, c := range md.Columns {
		records[i] = []any{c.Position, c.Name, c.Type, c.Nullable}
	}
	if err := renderRecords(w, cols, records, format); err != nil {
		return err
	}
	if format == "table" || format == "" {
		_, _ = fmt.Fprintf(w, "%s: %d rows\n", md.Name, md.RowCount)
	}
	return nil
}
