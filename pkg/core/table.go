package core

import "time"

// Row is one date of a date-keyed table. Values holds every numeric column by name.
type Row struct {
	Date   time.Time
	Values map[string]float64
}

// WideCaseRow is a Row produced by pivoting case records: one "{status}_{region}" value per pair.
type WideCaseRow = Row

// MergedRow is a Row of the joined case/vaccination table, including derived per-million values.
type MergedRow = Row

// Get returns the value of column col and whether the row carries it.
func (r Row) Get(col string) (float64, bool) {
	v, ok := r.Values[col]
	return v, ok
}

// Value returns the value of column col, or 0 when the row does not carry it.
func (r Row) Value(col string) float64 {
	return r.Values[col]
}

// Table is an ordered set of date-keyed rows sharing the same value columns.
// Tables are treated as immutable once built; stages return new tables.
type Table struct {
	// Columns lists the value columns in presentation order (the date is not included).
	Columns []string
	Rows    []Row
}

// Len returns the number of rows.
func (t *Table) Len() int {
	if t == nil {
		return 0
	}
	return len(t.Rows)
}

// HasColumn reports whether col is one of the table's value columns.
func (t *Table) HasColumn(col string) bool {
	for _, c := range t.Columns {
		if c == col {
			return true
		}
	}
	return false
}

// MissingColumns returns the subset of cols the table does not carry, in input order.
func (t *Table) MissingColumns(cols ...string) []string {
	var missing []string
	for _, c := range cols {
		if !t.HasColumn(c) {
			missing = append(missing, c)
		}
	}
	return missing
}

// Column returns the values of col in row order. Rows without the column contribute 0.
func (t *Table) Column(col string) []float64 {
	out := make([]float64, len(t.Rows))
	for i, r := range t.Rows {
		out[i] = r.Values[col]
	}
	return out
}

// DateSpan returns the earliest and latest row dates. ok is false for an empty table.
func (t *Table) DateSpan() (first, last time.Time, ok bool) {
	if t.Len() == 0 {
		return time.Time{}, time.Time{}, false
	}
	first, last = t.Rows[0].Date, t.Rows[0].Date
	for _, r := range t.Rows[1:] {
		if r.Date.Before(first) {
			first = r.Date
		}
		if r.Date.After(last) {
			last = r.Date
		}
	}
	return first, last, true
}

// Between returns a new table holding the rows whose date lies in [from, to].
// A zero from or to leaves that side of the range open.
func (t *Table) Between(from, to time.Time) *Table {
	out := &Table{Columns: append([]string(nil), t.Columns...)}
	for _, r := range t.Rows {
		if !from.IsZero() && r.Date.Before(from) {
			continue
		}
		if !to.IsZero() && r.Date.After(to) {
			continue
		}
		out.Rows = append(out.Rows, r)
	}
	return out
}

// Latest returns the row with the greatest date. ok is false for an empty table.
func (t *Table) Latest() (Row, bool) {
	if t.Len() == 0 {
		return Row{}, false
	}
	best := t.Rows[0]
	for _, r := range t.Rows[1:] {
		if r.Date.After(best.Date) {
			best = r
		}
	}
	return best, true
}

// WithColumns returns a copy of the table extended with the given columns.
// values[name] must hold one value per row, in row order.
func (t *Table) WithColumns(names []string, values map[string][]float64) *Table {
	out := &Table{
		Columns: make([]string, 0, len(t.Columns)+len(names)),
		Rows:    make([]Row, len(t.Rows)),
	}
	out.Columns = append(out.Columns, t.Columns...)
	out.Columns = append(out.Columns, names...)

	for i, r := range t.Rows {
		vals := make(map[string]float64, len(r.Values)+len(names))
		for k, v := range r.Values {
			vals[k] = v
		}
		for _, n := range names {
			vals[n] = values[n][i]
		}
		out.Rows[i] = Row{Date: r.Date, Values: vals}
	}
	return out
}
