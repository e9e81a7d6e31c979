// Package dashboard builds the presentation views over a pipeline result.
//
// Each view is a pure function of the result and a Selection. Views are
// looked up in a static registry keyed by ViewKind; rendering them to a
// terminal is the caller's concern.
package dashboard

import (
	"fmt"
	"strings"
	"time"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/leapstack-labs/covidlens/internal/engine"
	perrors "github.com/leapstack-labs/covidlens/internal/errors"
	"github.com/leapstack-labs/covidlens/internal/geo"
	"github.com/leapstack-labs/covidlens/pkg/core"
)

// ViewKind names one dashboard view.
type ViewKind string

// Dashboard views, in sidebar order.
const (
	KeyMetrics       ViewKind = "key_metrics"
	ConfirmedTrend   ViewKind = "confirmed_trend"
	RecoveredTrend   ViewKind = "recovered_trend"
	DeceasedTrend    ViewKind = "deceased_trend"
	ActiveTrend      ViewKind = "active_trend"
	VaccinationTrend ViewKind = "vaccination_trend"
	CasesPerMillion  ViewKind = "cases_per_million"
	VaccPerMillion   ViewKind = "vacc_per_million"
	RegionComparison ViewKind = "region_comparison"
	Correlation      ViewKind = "correlation"
	Map              ViewKind = "map"
)

// Kinds lists every view in sidebar order.
func Kinds() []ViewKind {
	return []ViewKind{
		KeyMetrics, ConfirmedTrend, RecoveredTrend, DeceasedTrend, ActiveTrend,
		VaccinationTrend, CasesPerMillion, VaccPerMillion, RegionComparison, Correlation, Map,
	}
}

var titleCaser = cases.Title(language.English)

// Title returns the display name of the view.
func (k ViewKind) Title() string {
	return titleCaser.String(strings.ReplaceAll(string(k), "_", " "))
}

// ParseViewKind resolves a view name. Dashes and case are forgiven.
func ParseViewKind(s string) (ViewKind, error) {
	k := ViewKind(strings.ReplaceAll(strings.ToLower(strings.TrimSpace(s)), "-", "_"))
	if _, ok := registry[k]; ok {
		return k, nil
	}
	return "", perrors.NewViewError(perrors.CodeUnknownView, fmt.Sprintf("unknown view %q", s)).
		WithDetails(map[string]interface{}{"available": Kinds()})
}

// Metric is a single headline number.
type Metric struct {
	Label string
	Value float64
}

// Point is one dated value of a series.
type Point struct {
	Date  time.Time
	Value float64
}

// Series is a named line of a trend chart.
type Series struct {
	Name   string
	Points []Point
}

// Bar is one group of a grouped bar chart.
type Bar struct {
	Label  string
	Values []float64 // one per View.Groups entry
}

// Matrix is a labelled square matrix.
type Matrix struct {
	Labels []string
	Values [][]float64
}

// View is the data behind one rendered view. Only the fields of its kind are set.
type View struct {
	Kind      ViewKind
	Title     string
	Selection Selection

	Metrics []Metric
	Series  []Series
	Groups  []string
	Bars    []Bar
	Matrix  *Matrix
	Markers []geo.Marker

	// AsOf is the date of the row a snapshot view (comparison, map) was taken from.
	AsOf time.Time
}

// Input is what a view function receives.
type Input struct {
	Result    *engine.Result
	Selection Selection
	// Table is the merged table restricted to the selected date range.
	Table *core.Table
	// DosesMetric is the snake_case name of the doses column.
	DosesMetric string
}

// ViewFunc builds one view.
type ViewFunc func(in Input) (*View, error)

var registry = map[ViewKind]ViewFunc{
	KeyMetrics:       keyMetrics,
	ConfirmedTrend:   statusTrend(core.StatusConfirmed),
	RecoveredTrend:   statusTrend(core.StatusRecovered),
	DeceasedTrend:    statusTrend(core.StatusDeceased),
	ActiveTrend:      activeTrend,
	VaccinationTrend: vaccinationTrend,
	CasesPerMillion:  perMillionTrend(core.CasesPerMillionColumn),
	VaccPerMillion:   perMillionTrend(core.VaccPerMillionColumn),
	RegionComparison: regionComparison,
	Correlation:      correlation,
	Map:              regionMap,
}

// Render builds the view of the given kind for a selection.
func Render(kind ViewKind, res *engine.Result, sel Selection, dosesMetric string) (*View, error) {
	fn, ok := registry[kind]
	if !ok {
		return nil, perrors.NewViewError(perrors.CodeUnknownView, fmt.Sprintf("unknown view %q", kind))
	}

	table, err := sel.Apply(res)
	if err != nil {
		return nil, err
	}

	v, err := fn(Input{Result: res, Selection: sel, Table: table, DosesMetric: dosesMetric})
	if err != nil {
		return nil, err
	}
	v.Kind = kind
	v.Title = kind.Title()
	v.Selection = sel
	return v, nil
}

// requireColumns returns a schema error naming the first column t lacks.
func requireColumns(t *core.Table, cols ...string) error {
	if missing := t.MissingColumns(cols...); len(missing) > 0 {
		return perrors.NewMissingColumn(engine.TableMerged, missing[0], t.Columns)
	}
	return nil
}

func statusColumns(status core.Status, regions []string) []string {
	cols := make([]string, len(regions))
	for i, r := range regions {
		cols[i] = core.CaseColumn(status, r)
	}
	return cols
}

func sum(t *core.Table, cols ...string) float64 {
	var total float64
	for _, row := range t.Rows {
		for _, c := range cols {
			total += row.Value(c)
		}
	}
	return total
}

func series(t *core.Table, name string, value func(core.Row) float64) Series {
	s := Series{Name: name, Points: make([]Point, len(t.Rows))}
	for i, row := range t.Rows {
		s.Points[i] = Point{Date: row.Date, Value: value(row)}
	}
	return s
}

func column(col string) func(core.Row) float64 {
	return func(r core.Row) float64 { return r.Value(col) }
}

// regionDoseColumns returns the per-region doses columns present in t.
func regionDoseColumns(t *core.Table, regions []string, metric string) []string {
	var cols []string
	for _, r := range regions {
		if c := core.RegionMetricColumn(r, metric); t.HasColumn(c) {
			cols = append(cols, c)
		}
	}
	return cols
}

func keyMetrics(in Input) (*View, error) {
	regions := in.Selection.Regions
	confirmed := statusColumns(core.StatusConfirmed, regions)
	recovered := statusColumns(core.StatusRecovered, regions)
	deceased := statusColumns(core.StatusDeceased, regions)

	for _, cols := range [][]string{confirmed, recovered, deceased} {
		if err := requireColumns(in.Table, cols...); err != nil {
			return nil, err
		}
	}

	return &View{Metrics: []Metric{
		{Label: "Total Confirmed", Value: sum(in.Table, confirmed...)},
		{Label: "Total Recovered", Value: sum(in.Table, recovered...)},
		{Label: "Total Deaths", Value: sum(in.Table, deceased...)},
		{Label: "Total Vaccinations", Value: sum(in.Table, regionDoseColumns(in.Table, regions, in.DosesMetric)...)},
	}}, nil
}

func statusTrend(status core.Status) ViewFunc {
	return func(in Input) (*View, error) {
		cols := statusColumns(status, in.Selection.Regions)
		if err := requireColumns(in.Table, cols...); err != nil {
			return nil, err
		}

		v := &View{}
		for i, r := range in.Selection.Regions {
			v.Series = append(v.Series, series(in.Table, r, column(cols[i])))
		}
		return v, nil
	}
}

// activeTrend uses Active_{region} when the source has it and derives
// Confirmed - Recovered - Deceased otherwise.
func activeTrend(in Input) (*View, error) {
	v := &View{}
	for _, r := range in.Selection.Regions {
		if col := core.CaseColumn(core.StatusActive, r); in.Table.HasColumn(col) {
			v.Series = append(v.Series, series(in.Table, r, column(col)))
			continue
		}

		c := core.CaseColumn(core.StatusConfirmed, r)
		rec := core.CaseColumn(core.StatusRecovered, r)
		d := core.CaseColumn(core.StatusDeceased, r)
		if err := requireColumns(in.Table, c, rec, d); err != nil {
			return nil, err
		}
		v.Series = append(v.Series, series(in.Table, r, func(row core.Row) float64 {
			return row.Value(c) - row.Value(rec) - row.Value(d)
		}))
	}
	return v, nil
}

// vaccinationTrend plots per-region doses when the vaccination table was grouped
// by region, and the national total otherwise.
func vaccinationTrend(in Input) (*View, error) {
	v := &View{}
	for _, r := range in.Selection.Regions {
		if col := core.RegionMetricColumn(r, in.DosesMetric); in.Table.HasColumn(col) {
			v.Series = append(v.Series, series(in.Table, r, column(col)))
		}
	}
	if len(v.Series) > 0 {
		return v, nil
	}

	if err := requireColumns(in.Table, in.DosesMetric); err != nil {
		return nil, err
	}
	v.Series = []Series{series(in.Table, "All regions", column(in.DosesMetric))}
	return v, nil
}

func perMillionTrend(name func(region string) string) ViewFunc {
	return func(in Input) (*View, error) {
		v := &View{}
		for _, r := range in.Selection.Regions {
			col := name(r)
			if err := requireColumns(in.Table, col); err != nil {
				return nil, err
			}
			v.Series = append(v.Series, series(in.Table, r, column(col)))
		}
		return v, nil
	}
}

// regionComparison compares the selected regions on the last date in range.
func regionComparison(in Input) (*View, error) {
	latest, _ := in.Table.Latest()
	statuses := []core.Status{core.StatusConfirmed, core.StatusRecovered, core.StatusDeceased}

	v := &View{AsOf: latest.Date}
	for _, s := range statuses {
		v.Groups = append(v.Groups, string(s))
	}
	for _, r := range in.Selection.Regions {
		bar := Bar{Label: r}
		for _, s := range statuses {
			col := core.CaseColumn(s, r)
			if err := requireColumns(in.Table, col); err != nil {
				return nil, err
			}
			bar.Values = append(bar.Values, latest.Value(col))
		}
		v.Bars = append(v.Bars, bar)
	}
	return v, nil
}

// correlation correlates the daily totals of each status over the selected
// regions, plus total doses.
func correlation(in Input) (*View, error) {
	if in.Table.Len() < 2 {
		return nil, perrors.NewViewError(perrors.CodeEmptySelection, "correlation needs at least two dates")
	}

	var labels []string
	var vars [][]float64
	for _, s := range in.Result.Statuses {
		cols := statusColumns(s, in.Selection.Regions)
		if err := requireColumns(in.Table, cols...); err != nil {
			return nil, err
		}
		labels = append(labels, string(s))
		vars = append(vars, dailyTotals(in.Table, cols))
	}

	doses := regionDoseColumns(in.Table, in.Selection.Regions, in.DosesMetric)
	if len(doses) == 0 && in.Table.HasColumn(in.DosesMetric) {
		doses = []string{in.DosesMetric}
	}
	if len(doses) > 0 {
		labels = append(labels, "Vaccinations")
		vars = append(vars, dailyTotals(in.Table, doses))
	}

	return &View{Matrix: &Matrix{Labels: labels, Values: CorrelationMatrix(vars)}}, nil
}

func dailyTotals(t *core.Table, cols []string) []float64 {
	out := make([]float64, len(t.Rows))
	for i, row := range t.Rows {
		for _, c := range cols {
			out[i] += row.Value(c)
		}
	}
	return out
}

// regionMap places every boundary region at its centroid, sized by confirmed
// cases on the last date in range. It is the only view that reports a boundary
// load failure.
func regionMap(in Input) (*View, error) {
	res := in.Result
	if res.GeoErr != nil {
		return nil, res.GeoErr
	}
	if len(res.Geo) == 0 {
		return nil, perrors.NewViewError(perrors.CodeEmptySelection, "no boundary regions loaded")
	}

	latest, _ := in.Table.Latest()
	markers := geo.JoinLatest(res.Geo, res.Regions, latest, func(region string) string {
		return core.CaseColumn(core.StatusConfirmed, region)
	})
	return &View{Markers: markers, AsOf: latest.Date}, nil
}
