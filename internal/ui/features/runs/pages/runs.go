// Package pages renders the run history pages.
package pages

import (
	"context"
	"fmt"
	"io"

	"github.com/a-h/templ"

	"github.com/leapstack-labs/covidlens/internal/ui/features/common"
	"github.com/leapstack-labs/covidlens/internal/ui/features/common/components"
)

// ListID is the element the update stream patches.
const ListID = "runs-list"

// DisabledMessage is shown when no state store is configured.
const DisabledMessage = "Run history is disabled (state.path is empty)."

// RunItem is one run prepared for display.
type RunItem struct {
	ID        string
	Status    string
	Failed    bool
	StartedAt string // relative
	Started   string // absolute
	Duration  string
	DataDir   string
	Grouping  string
	Regions   int
	Dates     int
	Dropped   int64
	Defaulted string
	Error     string
}

// RunsData is the content of the history page.
type RunsData struct {
	Runs     []RunItem
	Disabled bool
}

// RunsPage renders the history page.
func RunsPage(page common.PageData, data RunsData) templ.Component {
	return components.Layout(page, templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		h := components.NewHTML(w)
		h.Raw(`<h1>Run History</h1>`)
		if !data.Disabled {
			h.Raw(`<div data-init="@get('`, common.RunsPath, `/updates')"></div>`)
		}
		h.Render(ctx, RunsList(data))
		return h.Err()
	}))
}

// RunsList renders the run table.
func RunsList(data RunsData) templ.Component {
	return templ.ComponentFunc(func(_ context.Context, w io.Writer) error {
		h := components.NewHTML(w)
		h.Raw(`<section class="panel"`).Attr("id", ListID).Raw(`>`)
		switch {
		case data.Disabled:
			h.Raw(`<p class="meta">`).Text(DisabledMessage).Raw(`</p>`)
		case len(data.Runs) == 0:
			h.Raw(`<p class="meta">No runs recorded yet.</p>`)
		default:
			h.Raw(`<table class="data"><thead><tr><th>Run</th><th>Started</th><th>Status</th>`,
				`<th class="num">Duration</th><th class="num">Regions</th><th class="num">Dates</th>`,
				`<th class="num">Dropped</th><th>Defaulted</th></tr></thead><tbody>`)
			for _, run := range data.Runs {
				h.Raw(`<tr`)
				if run.Failed {
					h.Raw(` class="failed"`)
				}
				h.Raw(`><td><a`).Attr("href", common.RunsPath+"/"+run.ID).Raw(`>`).Text(shortID(run.ID)).Raw(`</a></td>`)
				h.Raw(`<td`).Attr("title", run.Started).Raw(`>`).Text(run.StartedAt).Raw(`</td>`)
				h.Raw(`<td>`).Text(run.Status).Raw(`</td>`)
				h.Raw(`<td class="num">`).Text(run.Duration).Raw(`</td>`)
				h.Raw(fmt.Sprintf(`<td class="num">%d</td><td class="num">%d</td><td class="num">%d</td>`,
					run.Regions, run.Dates, run.Dropped))
				h.Raw(`<td>`).Text(run.Defaulted).Raw(`</td></tr>`)
			}
			h.Raw(`</tbody></table>`)
		}
		h.Raw(`</section>`)
		return h.Err()
	})
}

// RunPage renders the details of one run.
func RunPage(page common.PageData, run RunItem) templ.Component {
	return components.Layout(page, templ.ComponentFunc(func(_ context.Context, w io.Writer) error {
		h := components.NewHTML(w)
		h.Raw(`<h1>Run `).Text(shortID(run.ID)).Raw(`</h1><section class="panel"><table class="data"><tbody>`)
		rows := [][2]string{
			{"ID", run.ID},
			{"Status", run.Status},
			{"Started", run.Started},
			{"Duration", run.Duration},
			{"Data directory", run.DataDir},
			{"Grouping", run.Grouping},
			{"Regions", fmt.Sprint(run.Regions)},
			{"Dates", fmt.Sprint(run.Dates)},
			{"Dropped rows", fmt.Sprint(run.Dropped)},
			{"Defaulted population", run.Defaulted},
		}
		if run.Error != "" {
			rows = append(rows, [2]string{"Error", run.Error})
		}
		for _, row := range rows {
			h.Raw(`<tr><th>`).Text(row[0]).Raw(`</th><td>`).Text(row[1]).Raw(`</td></tr>`)
		}
		h.Raw(`</tbody></table></section>`)
		return h.Err()
	}))
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
