package commands

import (
	"fmt"
	"strings"
	"time"

	"github.com/leapstack-labs/covidlens/internal/cli/output"
	"github.com/leapstack-labs/covidlens/internal/dashboard"
	"github.com/spf13/cobra"
)

// NewViewsCommand creates the views command.
func NewViewsCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "views",
		Short: "List the dashboard views",
		Long: `List every view the dashboard offers, in sidebar order.

Render one with: covidlens view <kind>`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cmdCtx := NewCommandContextWithoutEngine(cmd)
			return listViews(cmdCtx.Renderer)
		},
	}
}

func listViews(r *output.Renderer) error {
	kinds := dashboard.Kinds()

	switch r.EffectiveMode() {
	case output.ModeJSON:
		list := output.ViewList{Views: make([]output.ViewEntry, 0, len(kinds))}
		for _, k := range kinds {
			list.Views = append(list.Views, output.ViewEntry{Kind: string(k), Title: k.Title()})
		}
		return r.JSON(list)
	case output.ModeMarkdown:
		r.Println(output.FormatHeader(1, fmt.Sprintf("Views (%d)", len(kinds))))
		r.Println("")
		for _, k := range kinds {
			r.Println(output.FormatKeyValue(string(k), k.Title()))
		}
	default:
		styles := r.Styles()
		r.Header(1, fmt.Sprintf("Views (%d)", len(kinds)))
		for i, k := range kinds {
			r.Printf("  %2d. %s %s\n", i+1, styles.Label.Render(string(k)), styles.Muted.Render(k.Title()))
		}
	}
	return nil
}

// ViewOptions holds options for the view command.
type ViewOptions struct {
	Regions    []string
	AllRegions bool
	From       string
	To         string
}

// NewViewCommand creates the view command.
func NewViewCommand() *cobra.Command {
	opts := &ViewOptions{}

	cmd := &cobra.Command{
		Use:   "view <kind>",
		Short: "Render one dashboard view",
		Long: `Run the pipeline and render one dashboard view for a selection.

The default selection is the configured dashboard regions (or the first five
case regions) over the full date range of the merged table. Dates are
inclusive and written as YYYY-MM-DD.`,
		Example: `  # Headline totals for the default selection
  covidlens view key_metrics

  # Confirmed cases of two regions in March 2020
  covidlens view confirmed_trend --regions Kerala,Goa --from 2020-03-01 --to 2020-03-31

  # Correlation matrix across every region, as JSON
  covidlens view correlation --all-regions --output json`,
		Args: cobra.ExactArgs(1),
		ValidArgsFunction: func(_ *cobra.Command, args []string, _ string) ([]string, cobra.ShellCompDirective) {
			if len(args) > 0 {
				return nil, cobra.ShellCompDirectiveNoFileComp
			}
			var kinds []string
			for _, k := range dashboard.Kinds() {
				kinds = append(kinds, string(k))
			}
			return kinds, cobra.ShellCompDirectiveNoFileComp
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return runView(cmd, args[0], opts)
		},
	}

	cmd.Flags().StringSliceVarP(&opts.Regions, "regions", "r", nil, "Comma-separated regions to select")
	cmd.Flags().BoolVar(&opts.AllRegions, "all-regions", false, "Select every case region")
	cmd.Flags().StringVar(&opts.From, "from", "", "First date (YYYY-MM-DD, inclusive)")
	cmd.Flags().StringVar(&opts.To, "to", "", "Last date (YYYY-MM-DD, inclusive)")

	return cmd
}

func runView(cmd *cobra.Command, name string, opts *ViewOptions) error {
	kind, err := dashboard.ParseViewKind(name)
	if err != nil {
		return err
	}

	cmdCtx, cleanup, err := NewCommandContext(cmd)
	if err != nil {
		return err
	}
	defer cleanup()

	res, err := cmdCtx.runPipeline(cmd.Context())
	if err != nil {
		return err
	}

	sel, err := opts.selection(dashboard.DefaultSelection(res, cmdCtx.Cfg.Dashboard), res.Regions)
	if err != nil {
		return err
	}

	v, err := dashboard.Render(kind, res, sel, cmdCtx.Cfg.DosesMetric())
	if err != nil {
		return err
	}
	return renderView(cmdCtx.Renderer, v)
}

// selection overrides the default selection with the flags that were given.
func (o *ViewOptions) selection(def dashboard.Selection, all []string) (dashboard.Selection, error) {
	sel := def
	switch {
	case o.AllRegions:
		sel.Regions = append([]string(nil), all...)
	case len(o.Regions) > 0:
		sel.Regions = nil
		for _, r := range o.Regions {
			if r = strings.TrimSpace(r); r != "" {
				sel.Regions = append(sel.Regions, r)
			}
		}
	}

	var err error
	if sel.From, err = parseDateFlag("from", o.From, sel.From); err != nil {
		return sel, err
	}
	if sel.To, err = parseDateFlag("to", o.To, sel.To); err != nil {
		return sel, err
	}
	return sel, nil
}

func parseDateFlag(name, value string, def time.Time) (time.Time, error) {
	if value == "" {
		return def, nil
	}
	t, err := dashboard.ParseDate(value)
	if err != nil {
		return time.Time{}, fmt.Errorf("--%s: %w", name, err)
	}
	return t, nil
}
