package commands

import (
	"context"
	"fmt"
	"strings"

	"github.com/leapstack-labs/covidlens/internal/cli/output"
	"github.com/leapstack-labs/covidlens/internal/engine"
	"github.com/spf13/cobra"
)

// NewLoadCommand creates the load command.
func NewLoadCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "load",
		Short: "Run the pipeline and summarize the merged data",
		Long: `Load the case, vaccination, and population files from the data directory,
normalize their dates, pivot and merge them, and derive the per-million metrics.

Reports the session tables with their row counts, rows dropped by the date
normalizer, the regions found, and regions without a population entry.

Output adapts to environment:
  - Terminal: Styled, colored output
  - Piped/Scripted: Markdown format (agent-friendly)

Use --output to override: auto, text, markdown, json`,
		Example: `  # Load the default data directory
  covidlens load

  # Load another data directory
  covidlens load --data-dir ~/Desktop/data

  # Group vaccinations per region to get per-region vaccination rates
  covidlens load --group-by date_region

  # Machine-readable summary
  covidlens load --output json`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runLoad(cmd)
		},
	}

	return cmd
}

func runLoad(cmd *cobra.Command) error {
	cmdCtx, cleanup, err := NewCommandContext(cmd)
	if err != nil {
		return err
	}
	defer cleanup()

	ctx := cmd.Context()
	res, err := cmdCtx.runPipeline(ctx)
	if err != nil {
		return err
	}

	summary, err := buildLoadOutput(ctx, cmdCtx.Engine, res)
	if err != nil {
		return err
	}

	r := cmdCtx.Renderer
	switch r.EffectiveMode() {
	case output.ModeJSON:
		return r.JSON(summary)
	case output.ModeMarkdown:
		loadMarkdown(r, summary)
	default:
		loadText(r, summary)
	}
	return nil
}

func buildLoadOutput(ctx context.Context, eng *engine.Engine, res *engine.Result) (*output.LoadOutput, error) {
	tables, err := eng.Tables(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list session tables: %w", err)
	}

	summary := &output.LoadOutput{
		RunID:      res.RunID,
		DurationMS: res.Duration.Milliseconds(),
		Regions:    res.Regions,
		Grouping:   string(res.Grouping),
		Tables:     make([]output.TableInfo, 0, len(tables)),
		Population: output.PopulationInfo{
			Regions:   len(res.Population),
			Defaulted: res.Defaulted,
			Skipped:   res.Skipped,
		},
	}
	for _, s := range res.Statuses {
		summary.Statuses = append(summary.Statuses, string(s))
	}
	if first, last, ok := res.Table.DateSpan(); ok {
		summary.DateRange = &output.DateRange{From: output.FormatDate(first), To: output.FormatDate(last)}
	}
	for _, md := range tables {
		summary.Tables = append(summary.Tables, output.TableInfo{
			Name:    md.Name,
			Rows:    md.RowCount,
			Columns: md.ColumnNames(),
		})
	}
	for _, s := range res.Normalize {
		summary.Dates = append(summary.Dates, output.NormalizeInfo{
			Table:   s.Table,
			Column:  s.Column,
			Rows:    s.After,
			Dropped: s.Dropped,
		})
	}
	if eng.Config().Files.Boundaries != "" {
		b := &output.BoundaryInfo{Regions: len(res.Geo)}
		if res.GeoErr != nil {
			b.Error = res.GeoErr.Error()
		}
		summary.Boundaries = b
	}
	return summary, nil
}

// loadText outputs the load summary in styled text format.
func loadText(r *output.Renderer, s *output.LoadOutput) {
	styles := r.Styles()

	r.Header(1, "Pipeline")
	r.Println(styles.Label.Render("Run") + styles.Muted.Render(s.RunID))
	if s.DateRange != nil {
		r.Println(styles.Label.Render("Dates") + s.DateRange.From + " .. " + s.DateRange.To)
	}
	r.Println(styles.Label.Render("Regions") + fmt.Sprintf("%d", len(s.Regions)))
	r.Println(styles.Label.Render("Statuses") + strings.Join(s.Statuses, ", "))
	r.Println(styles.Label.Render("Vaccination grouping") + s.Grouping)
	r.Println(styles.Label.Render("Population entries") + fmt.Sprintf("%d", s.Population.Regions))

	r.Header(2, "Tables")
	r.RenderTable(tablesTable(s.Tables))

	r.Header(2, "Dates")
	for _, d := range s.Dates {
		detail := fmt.Sprintf("%s rows", output.FormatCount(float64(d.Rows)))
		if d.Dropped > 0 {
			detail += fmt.Sprintf(", %d dropped", d.Dropped)
		}
		r.StatusLine(d.Dropped == 0, d.Table+"."+d.Column, detail)
	}

	if s.Boundaries != nil {
		r.Header(2, "Boundaries")
		if s.Boundaries.Error != "" {
			r.StatusLine(false, "boundaries", s.Boundaries.Error)
		} else {
			r.StatusLine(true, "boundaries", fmt.Sprintf("%d regions", s.Boundaries.Regions))
		}
	}

	r.Header(2, "Regions")
	r.Println(styles.Region.Render(strings.Join(s.Regions, ", ")))
}

// loadMarkdown outputs the load summary in markdown format.
func loadMarkdown(r *output.Renderer, s *output.LoadOutput) {
	r.Println(output.FormatHeader(1, "Pipeline"))
	r.Println("")
	r.Println(output.FormatKeyValue("Run", s.RunID))
	if s.DateRange != nil {
		r.Println(output.FormatKeyValue("Dates", s.DateRange.From+" .. "+s.DateRange.To))
	}
	r.Println(output.FormatKeyValue("Regions", fmt.Sprintf("%d", len(s.Regions))))
	r.Println(output.FormatKeyValue("Statuses", strings.Join(s.Statuses, ", ")))
	r.Println(output.FormatKeyValue("Vaccination grouping", s.Grouping))
	r.Println(output.FormatKeyValue("Population entries", fmt.Sprintf("%d", s.Population.Regions)))
	if len(s.Population.Defaulted) > 0 {
		r.Println(output.FormatKeyValue("Default divisor", strings.Join(s.Population.Defaulted, ", ")))
	}
	if len(s.Population.Skipped) > 0 {
		r.Println(output.FormatKeyValue("Skipped", strings.Join(s.Population.Skipped, ", ")))
	}
	r.Println("")

	r.Println(output.FormatHeader(2, "Tables"))
	r.Println("")
	r.RenderTable(tablesTable(s.Tables))

	r.Println(output.FormatHeader(2, "Dates"))
	r.Println("")
	for _, d := range s.Dates {
		r.Println(output.FormatKeyValue(d.Table+"."+d.Column,
			fmt.Sprintf("%d rows, %d dropped", d.Rows, d.Dropped)))
	}
	r.Println("")

	if s.Boundaries != nil {
		r.Println(output.FormatHeader(2, "Boundaries"))
		r.Println("")
		if s.Boundaries.Error != "" {
			r.Println(output.FormatKeyValue("Error", s.Boundaries.Error))
		} else {
			r.Println(output.FormatKeyValue("Regions", fmt.Sprintf("%d", s.Boundaries.Regions)))
		}
		r.Println("")
	}

	r.Println(output.FormatHeader(2, "Regions"))
	r.Println("")
	r.Println(strings.Join(s.Regions, ", "))
}

func tablesTable(tables []output.TableInfo) *output.Table {
	t := &output.Table{Header: []string{"Table", "Rows", "Columns"}, NumericFrom: 1}
	for _, ti := range tables {
		t.AddRow(ti.Name, output.FormatCount(float64(ti.Rows)), fmt.Sprintf("%d", len(ti.Columns)))
	}
	return t
}
