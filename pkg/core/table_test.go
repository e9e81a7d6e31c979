package core

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func day(d int) time.Time {
	return time.Date(2020, 3, d, 0, 0, 0, 0, time.UTC)
}

func sampleTable() *Table {
	return &Table{
		Columns: []string{"Confirmed_Kerala", "Confirmed_Goa"},
		Rows: []Row{
			{Date: day(16), Values: map[string]float64{"Confirmed_Kerala": 15, "Confirmed_Goa": 3}},
			{Date: day(14), Values: map[string]float64{"Confirmed_Kerala": 10, "Confirmed_Goa": 2}},
			{Date: day(15), Values: map[string]float64{"Confirmed_Kerala": 12}},
		},
	}
}

// orderedTable is sampleTable with its rows in date order.
func orderedTable() *Table {
	tbl := sampleTable()
	tbl.Rows = []Row{tbl.Rows[1], tbl.Rows[2], tbl.Rows[0]}
	return tbl
}

func rowDates(tbl *Table) []time.Time {
	out := []time.Time{}
	for _, r := range tbl.Rows {
		out = append(out, r.Date)
	}
	return out
}

func TestTable_Len(t *testing.T) {
	var nilTable *Table
	assert.Equal(t, 0, nilTable.Len())
	assert.Equal(t, 3, sampleTable().Len())
}

func TestTable_Columns(t *testing.T) {
	tbl := sampleTable()

	assert.True(t, tbl.HasColumn("Confirmed_Goa"))
	assert.False(t, tbl.HasColumn("Confirmed_Delhi"))
	assert.Equal(t, []string{"Confirmed_Delhi", "Deceased_Goa"},
		tbl.MissingColumns("Confirmed_Kerala", "Confirmed_Delhi", "Deceased_Goa"))
	assert.Empty(t, tbl.MissingColumns("Confirmed_Kerala"))

	assert.Equal(t, []float64{3, 2, 0}, tbl.Column("Confirmed_Goa"), "missing cells read as zero")
}

func TestRow_GetValue(t *testing.T) {
	r := sampleTable().Rows[2]

	v, ok := r.Get("Confirmed_Kerala")
	assert.True(t, ok)
	assert.Equal(t, 12.0, v)

	_, ok = r.Get("Confirmed_Goa")
	assert.False(t, ok)
	assert.Equal(t, 0.0, r.Value("Confirmed_Goa"))
}

func TestTable_DateSpanAndLatest(t *testing.T) {
	tbl := sampleTable()

	first, last, ok := tbl.DateSpan()
	require.True(t, ok)
	assert.Equal(t, day(14), first)
	assert.Equal(t, day(16), last)

	latest, ok := tbl.Latest()
	require.True(t, ok)
	assert.Equal(t, day(16), latest.Date)

	empty := &Table{}
	_, _, ok = empty.DateSpan()
	assert.False(t, ok)
	_, ok = empty.Latest()
	assert.False(t, ok)
}

func TestTable_Between(t *testing.T) {
	tbl := orderedTable()

	tests := []struct {
		name     string
		from, to time.Time
		want     []time.Time
	}{
		{"open", time.Time{}, time.Time{}, []time.Time{day(14), day(15), day(16)}},
		{"inclusive bounds", day(15), day(16), []time.Time{day(15), day(16)}},
		{"open start", time.Time{}, day(14), []time.Time{day(14)}},
		{"open end", day(16), time.Time{}, []time.Time{day(16)}},
		{"empty", day(17), day(20), []time.Time{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tbl.Between(tt.from, tt.to)
			assert.Equal(t, tbl.Columns, got.Columns)
			assert.Equal(t, tt.want, rowDates(got))
		})
	}
}

func TestTable_WithColumnsCopies(t *testing.T) {
	tbl := orderedTable()

	out := tbl.WithColumns([]string{"Kerala_cases_per_million"}, map[string][]float64{
		"Kerala_cases_per_million": {1, 2, 3},
	})

	assert.Equal(t, []string{"Confirmed_Kerala", "Confirmed_Goa", "Kerala_cases_per_million"}, out.Columns)
	assert.Equal(t, 3.0, out.Rows[2].Value("Kerala_cases_per_million"))
	assert.Equal(t, 15.0, out.Rows[2].Value("Confirmed_Kerala"))

	assert.Len(t, tbl.Columns, 2, "source table is unchanged")
	_, ok := tbl.Rows[0].Get("Kerala_cases_per_million")
	assert.False(t, ok)
}
