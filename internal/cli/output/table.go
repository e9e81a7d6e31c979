package output

import (
	"fmt"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
)

// Table is a simple header-plus-rows table rendered with go-pretty.
type Table struct {
	Header []string
	Rows   [][]string
	// NumericFrom right-aligns every column from this index on. Zero disables it.
	NumericFrom int
}

// AddRow appends a row.
func (t *Table) AddRow(cells ...string) {
	t.Rows = append(t.Rows, cells)
}

// RenderTable writes t in the renderer's mode. JSON mode is not handled
// here; callers emit their own JSON document.
func (r *Renderer) RenderTable(t *Table) {
	if len(t.Rows) == 0 {
		r.Muted("(0 rows)")
		return
	}

	tw := table.NewWriter()
	tw.SetOutputMirror(r.out)

	header := make(table.Row, len(t.Header))
	for i, h := range t.Header {
		header[i] = h
	}
	tw.AppendHeader(header)

	for _, cells := range t.Rows {
		row := make(table.Row, len(cells))
		for i, c := range cells {
			row[i] = c
		}
		tw.AppendRow(row)
	}

	if t.NumericFrom > 0 {
		configs := make([]table.ColumnConfig, 0, len(t.Header))
		for i := t.NumericFrom; i < len(t.Header); i++ {
			configs = append(configs, table.ColumnConfig{Number: i + 1, Align: text.AlignRight})
		}
		tw.SetColumnConfigs(configs)
	}

	if r.EffectiveMode() == ModeText {
		tw.SetStyle(table.StyleLight)
		tw.Render()
		return
	}
	tw.RenderMarkdown()
	r.Println("")
}

// RowCount writes the "(n rows)" footer used after query results.
func (r *Renderer) RowCount(n int) {
	r.Muted(fmt.Sprintf("(%d rows)", n))
}
