// Package pages renders the dashboard view pages.
package pages

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"strings"

	"github.com/a-h/templ"

	"github.com/leapstack-labs/covidlens/internal/cli/output"
	"github.com/leapstack-labs/covidlens/internal/dashboard"
	"github.com/leapstack-labs/covidlens/internal/ui/features/common"
	"github.com/leapstack-labs/covidlens/internal/ui/features/common/components"
)

// ContentID is the element the update stream patches.
const ContentID = "view-content"

// SelectionSignals is the client state of the selection form.
type SelectionSignals struct {
	Regions string `json:"regions"` // comma separated
	From    string `json:"from"`
	To      string `json:"to"`
}

// ViewData is everything the content of one view needs.
type ViewData struct {
	Kind dashboard.ViewKind
	View *dashboard.View
	// Err replaces the view when it cannot be rendered.
	Err string
	// Stale is the error of the latest reload when an older result is shown.
	Stale string
}

// ViewPage renders a complete view page.
func ViewPage(page common.PageData, signals SelectionSignals, allRegions []string, data ViewData) templ.Component {
	return components.Layout(page, templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		h := components.NewHTML(w)
		h.Raw(`<h1>`).Text(data.Kind.Title()).Raw(`</h1>`)
		h.Render(ctx, SelectionForm(data.Kind, signals, allRegions))
		h.Raw(`<div`).Attr("data-init", fmt.Sprintf("@get('%s/updates')", common.ViewPath(data.Kind))).Raw(`></div>`)
		h.Render(ctx, ViewContent(data))
		return h.Err()
	}))
}

// SelectionForm edits the region and date selection. Applying it posts the
// signals and the server answers with the re-rendered content.
func SelectionForm(kind dashboard.ViewKind, signals SelectionSignals, allRegions []string) templ.Component {
	return templ.ComponentFunc(func(_ context.Context, w io.Writer) error {
		initial, err := json.Marshal(signals)
		if err != nil {
			return err
		}
		all, err := json.Marshal(strings.Join(allRegions, ","))
		if err != nil {
			return err
		}
		post := fmt.Sprintf("@post('%s/selection')", common.ViewPath(kind))

		h := components.NewHTML(w)
		h.Raw(`<section class="panel selection"`).Attr("data-signals", string(initial)).Raw(`>`)
		h.Raw(`<label>Regions<input class="regions" data-bind:regions`).
			Attr("placeholder", strings.Join(allRegions, ",")).Raw(`></label>`)
		h.Raw(`<label>From<input type="date" data-bind:from></label>`)
		h.Raw(`<label>To<input type="date" data-bind:to></label>`)
		h.Raw(`<button type="button"`).Attr("data-on:click", post).Raw(`>Apply</button>`)
		h.Raw(`<button type="button"`).Attr("data-on:click", "$regions = "+string(all)+"; "+post).Raw(`>All regions</button>`)
		h.Raw(`</section>`)
		return h.Err()
	})
}

// ViewContent renders the body of a view. It is the element the update stream replaces.
func ViewContent(data ViewData) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		if data.Err != "" {
			return components.ErrorPanel(ContentID, data.Err).Render(ctx, w)
		}

		v := data.View
		h := components.NewHTML(w)
		h.Raw(`<section class="panel"`).Attr("id", ContentID).Raw(`>`)
		if data.Stale != "" {
			h.Render(ctx, components.Banner("Reload failed, showing the previous result: "+data.Stale))
		}
		h.Raw(`<div class="meta">`).Text(selectionLine(v)).Raw(`</div>`)

		switch {
		case len(v.Metrics) > 0:
			h.Render(ctx, metricCards(v.Metrics))
		case len(v.Series) > 0:
			h.Render(ctx, SeriesChart(v.Series))
			h.Render(ctx, seriesTable(v.Series))
		case len(v.Bars) > 0:
			h.Render(ctx, barsTable(v.Groups, v.Bars))
		case v.Matrix != nil:
			h.Render(ctx, matrixTable(v.Matrix))
		case len(v.Markers) > 0:
			h.Render(ctx, MarkerMap(v))
			h.Render(ctx, markersTable(v))
		default:
			h.Raw(`<p class="meta">(no data)</p>`)
		}
		h.Raw(`</section>`)
		return h.Err()
	})
}

func selectionLine(v *dashboard.View) string {
	line := fmt.Sprintf("%s · %s .. %s",
		strings.Join(v.Selection.Regions, ", "),
		output.FormatDate(v.Selection.From),
		output.FormatDate(v.Selection.To))
	if !v.AsOf.IsZero() {
		line += " · as of " + output.FormatDate(v.AsOf)
	}
	return line
}

func metricCards(metrics []dashboard.Metric) templ.Component {
	return templ.ComponentFunc(func(_ context.Context, w io.Writer) error {
		h := components.NewHTML(w)
		h.Raw(`<div class="metrics">`)
		for _, m := range metrics {
			h.Raw(`<div class="metric"><div class="label">`).Text(m.Label).
				Raw(`</div><div class="value">`).Text(output.FormatCount(m.Value)).Raw(`</div></div>`)
		}
		h.Raw(`</div>`)
		return h.Err()
	})
}

// table renders a data table. Columns from numericFrom on are right aligned.
func table(header []string, rows [][]string, numericFrom int) templ.Component {
	return templ.ComponentFunc(func(_ context.Context, w io.Writer) error {
		h := components.NewHTML(w)
		h.Raw(`<table class="data"><thead><tr>`)
		for i, col := range header {
			h.Raw(`<th`)
			if numericFrom > 0 && i >= numericFrom {
				h.Raw(` class="num"`)
			}
			h.Raw(`>`).Text(col).Raw(`</th>`)
		}
		h.Raw(`</tr></thead><tbody>`)
		for _, row := range rows {
			h.Raw(`<tr>`)
			for i, cell := range row {
				h.Raw(`<td`)
				if numericFrom > 0 && i >= numericFrom {
					h.Raw(` class="num"`)
				}
				h.Raw(`>`).Text(cell).Raw(`</td>`)
			}
			h.Raw(`</tr>`)
		}
		h.Raw(`</tbody></table>`)
		return h.Err()
	})
}

func seriesTable(series []dashboard.Series) templ.Component {
	header := []string{"Date"}
	for _, s := range series {
		header = append(header, s.Name)
	}
	rows := make([][]string, 0, len(series[0].Points))
	for i, p := range series[0].Points {
		row := []string{output.FormatDate(p.Date)}
		for _, s := range series {
			row = append(row, output.FormatNumber(s.Points[i].Value))
		}
		rows = append(rows, row)
	}
	return table(header, rows, 1)
}

func barsTable(groups []string, bars []dashboard.Bar) templ.Component {
	rows := make([][]string, 0, len(bars))
	for _, b := range bars {
		row := []string{b.Label}
		for _, v := range b.Values {
			row = append(row, output.FormatCount(v))
		}
		rows = append(rows, row)
	}
	return table(append([]string{"Region"}, groups...), rows, 1)
}

func matrixTable(m *dashboard.Matrix) templ.Component {
	rows := make([][]string, 0, len(m.Labels))
	for i, label := range m.Labels {
		row := []string{label}
		for _, v := range m.Values[i] {
			row = append(row, output.FormatCoefficient(v))
		}
		rows = append(rows, row)
	}
	return table(append([]string{""}, m.Labels...), rows, 1)
}

func markersTable(v *dashboard.View) templ.Component {
	rows := make([][]string, 0, len(v.Markers))
	for _, m := range v.Markers {
		matched := "yes"
		if !m.Matched {
			matched = "no"
		}
		rows = append(rows, []string{
			m.Region,
			fmt.Sprintf("%.4f", m.Lon),
			fmt.Sprintf("%.4f", m.Lat),
			output.FormatCount(m.Value),
			matched,
		})
	}
	return table([]string{"Region", "Lon", "Lat", "Confirmed", "Matched"}, rows, 1)
}

var palette = []string{"#b4232a", "#1d4ed8", "#15803d", "#a16207", "#7c3aed", "#0f766e", "#be185d", "#4b5563"}

const (
	chartWidth  = 800.0
	chartHeight = 260.0
	chartPad    = 10.0
)

// SeriesChart draws every series as a polyline on a shared scale.
func SeriesChart(series []dashboard.Series) templ.Component {
	return templ.ComponentFunc(func(_ context.Context, w io.Writer) error {
		lo, hi := math.Inf(1), math.Inf(-1)
		n := 0
		for _, s := range series {
			n = max(n, len(s.Points))
			for _, p := range s.Points {
				if math.IsNaN(p.Value) || math.IsInf(p.Value, 0) {
					continue
				}
				lo, hi = math.Min(lo, p.Value), math.Max(hi, p.Value)
			}
		}
		if n == 0 || math.IsInf(lo, 1) {
			return nil
		}
		lo = math.Min(lo, 0)
		if hi == lo {
			hi = lo + 1
		}

		x := func(i int) float64 {
			if n == 1 {
				return chartWidth / 2
			}
			return chartPad + float64(i)*(chartWidth-2*chartPad)/float64(n-1)
		}
		y := func(v float64) float64 {
			return chartHeight - chartPad - (v-lo)*(chartHeight-2*chartPad)/(hi-lo)
		}

		h := components.NewHTML(w)
		h.Raw(fmt.Sprintf(`<svg class="chart" viewBox="0 0 %.0f %.0f" preserveAspectRatio="none" role="img">`, chartWidth, chartHeight))
		h.Raw(fmt.Sprintf(`<line class="axis" x1="0" y1="%.1f" x2="%.0f" y2="%.1f"></line>`, y(0), chartWidth, y(0)))
		for i, s := range series {
			var pts []string
			for j, p := range s.Points {
				if math.IsNaN(p.Value) || math.IsInf(p.Value, 0) {
					continue
				}
				pts = append(pts, fmt.Sprintf("%.1f,%.1f", x(j), y(p.Value)))
			}
			h.Raw(`<polyline`).Attr("stroke", palette[i%len(palette)]).Attr("points", strings.Join(pts, " ")).
				Raw(`><title>`).Text(s.Name).Raw(`</title></polyline>`)
		}
		h.Raw(`</svg>`)
		return h.Err()
	})
}

// MarkerMap plots the region markers by longitude and latitude, sized by value.
func MarkerMap(v *dashboard.View) templ.Component {
	return templ.ComponentFunc(func(_ context.Context, w io.Writer) error {
		minLon, maxLon := math.Inf(1), math.Inf(-1)
		minLat, maxLat := math.Inf(1), math.Inf(-1)
		top := 0.0
		for _, m := range v.Markers {
			if !m.Matched {
				continue
			}
			minLon, maxLon = math.Min(minLon, m.Lon), math.Max(maxLon, m.Lon)
			minLat, maxLat = math.Min(minLat, m.Lat), math.Max(maxLat, m.Lat)
			top = math.Max(top, m.Value)
		}
		if math.IsInf(minLon, 1) {
			return nil
		}
		spanLon := math.Max(maxLon-minLon, 1)
		spanLat := math.Max(maxLat-minLat, 1)

		h := components.NewHTML(w)
		h.Raw(fmt.Sprintf(`<svg class="chart" viewBox="0 0 %.0f %.0f" role="img">`, chartWidth, chartHeight))
		for _, m := range v.Markers {
			if !m.Matched {
				continue
			}
			cx := 4*chartPad + (m.Lon-minLon)*(chartWidth-8*chartPad)/spanLon
			cy := chartHeight - 4*chartPad - (m.Lat-minLat)*(chartHeight-8*chartPad)/spanLat
			r := 4.0
			if top > 0 {
				r += 20 * math.Sqrt(m.Value/top)
			}
			h.Raw(fmt.Sprintf(`<circle cx="%.1f" cy="%.1f" r="%.1f" fill="%s" fill-opacity="0.6">`, cx, cy, r, palette[0])).
				Raw(`<title>`).Text(m.Region + ": " + output.FormatCount(m.Value)).Raw(`</title></circle>`)
		}
		h.Raw(`</svg>`)
		return h.Err()
	})
}
