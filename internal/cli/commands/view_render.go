package commands

import (
	"fmt"
	"math"
	"strings"

	"github.com/leapstack-labs/covidlens/internal/cli/output"
	"github.com/leapstack-labs/covidlens/internal/dashboard"
	"github.com/leapstack-labs/covidlens/internal/geo"
)

// renderView writes a dashboard view in the renderer's mode.
func renderView(r *output.Renderer, v *dashboard.View) error {
	if r.EffectiveMode() == output.ModeJSON {
		return r.JSON(viewJSON(v))
	}

	r.Header(1, v.Title)
	selectionLine(r, v)

	switch {
	case len(v.Metrics) > 0:
		metricsView(r, v.Metrics)
	case len(v.Series) > 0:
		r.RenderTable(seriesTable(v.Series))
	case len(v.Bars) > 0:
		r.RenderTable(barsTable(v.Groups, v.Bars))
	case v.Matrix != nil:
		r.RenderTable(matrixTable(v.Matrix))
	case len(v.Markers) > 0:
		r.RenderTable(markersTable(v.Markers))
	default:
		r.Muted("(no data)")
	}
	return nil
}

func selectionLine(r *output.Renderer, v *dashboard.View) {
	sel := v.Selection
	dates := output.FormatDate(sel.From) + " .. " + output.FormatDate(sel.To)
	regions := strings.Join(sel.Regions, ", ")

	if r.EffectiveMode() == output.ModeText {
		styles := r.Styles()
		r.Println(styles.Label.Render("Regions") + styles.Region.Render(regions))
		r.Println(styles.Label.Render("Dates") + dates)
		if !v.AsOf.IsZero() {
			r.Println(styles.Label.Render("As of") + output.FormatDate(v.AsOf))
		}
		r.Println("")
		return
	}

	r.Println(output.FormatKeyValue("Regions", regions))
	r.Println(output.FormatKeyValue("Dates", dates))
	if !v.AsOf.IsZero() {
		r.Println(output.FormatKeyValue("As of", output.FormatDate(v.AsOf)))
	}
	r.Println("")
}

func metricsView(r *output.Renderer, metrics []dashboard.Metric) {
	if r.EffectiveMode() == output.ModeText {
		styles := r.Styles()
		for _, m := range metrics {
			r.Println(styles.Label.Render(m.Label) + styles.Number.Render(output.FormatCount(m.Value)))
		}
		return
	}
	for _, m := range metrics {
		r.Println(output.FormatKeyValue(m.Label, output.FormatCount(m.Value)))
	}
}

// seriesTable lays series out as one row per date and one column per series.
// Every series of a view shares the same dates.
func seriesTable(series []dashboard.Series) *output.Table {
	t := &output.Table{Header: []string{"Date"}, NumericFrom: 1}
	for _, s := range series {
		t.Header = append(t.Header, s.Name)
	}
	for i, p := range series[0].Points {
		row := []string{output.FormatDate(p.Date)}
		for _, s := range series {
			row = append(row, output.FormatNumber(s.Points[i].Value))
		}
		t.AddRow(row...)
	}
	return t
}

func barsTable(groups []string, bars []dashboard.Bar) *output.Table {
	t := &output.Table{Header: append([]string{"Region"}, groups...), NumericFrom: 1}
	for _, b := range bars {
		row := []string{b.Label}
		for _, v := range b.Values {
			row = append(row, output.FormatCount(v))
		}
		t.AddRow(row...)
	}
	return t
}

func matrixTable(m *dashboard.Matrix) *output.Table {
	t := &output.Table{Header: append([]string{""}, m.Labels...), NumericFrom: 1}
	for i, label := range m.Labels {
		row := []string{label}
		for _, v := range m.Values[i] {
			row = append(row, output.FormatCoefficient(v))
		}
		t.AddRow(row...)
	}
	return t
}

func markersTable(markers []geo.Marker) *output.Table {
	t := &output.Table{Header: []string{"Region", "Lon", "Lat", "Confirmed", "Matched"}, NumericFrom: 1}
	for _, m := range markers {
		matched := "yes"
		if !m.Matched {
			matched = "no"
		}
		t.AddRow(m.Region,
			fmt.Sprintf("%.4f", m.Lon),
			fmt.Sprintf("%.4f", m.Lat),
			output.FormatCount(m.Value),
			matched)
	}
	return t
}

func viewJSON(v *dashboard.View) output.ViewOutput {
	out := output.ViewOutput{
		Kind:    string(v.Kind),
		Title:   v.Title,
		Regions: v.Selection.Regions,
		DateRange: output.DateRange{
			From: output.FormatDate(v.Selection.From),
			To:   output.FormatDate(v.Selection.To),
		},
		Groups: v.Groups,
	}
	if !v.AsOf.IsZero() {
		out.AsOf = output.FormatDate(v.AsOf)
	}
	for _, m := range v.Metrics {
		out.Metrics = append(out.Metrics, output.MetricJSON{Label: m.Label, Value: m.Value})
	}
	for _, s := range v.Series {
		sj := output.SeriesJSON{Name: s.Name, Points: make([]output.PointJSON, len(s.Points))}
		for i, p := range s.Points {
			sj.Points[i] = output.PointJSON{Date: output.FormatDate(p.Date), Value: p.Value}
		}
		out.Series = append(out.Series, sj)
	}
	for _, b := range v.Bars {
		out.Bars = append(out.Bars, output.BarJSON{Label: b.Label, Values: b.Values})
	}
	if v.Matrix != nil {
		mj := &output.MatrixJSON{Labels: v.Matrix.Labels, Values: make([][]*float64, len(v.Matrix.Values))}
		for i, row := range v.Matrix.Values {
			mj.Values[i] = make([]*float64, len(row))
			for j, c := range row {
				if !math.IsNaN(c) {
					mj.Values[i][j] = &c
				}
			}
		}
		out.Matrix = mj
	}
	for _, m := range v.Markers {
		out.Markers = append(out.Markers, output.MarkerJSON{
			Region:  m.Region,
			Lon:     m.Lon,
			Lat:     m.Lat,
			Value:   m.Value,
			Matched: m.Matched,
		})
	}
	return out
}
