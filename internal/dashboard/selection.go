package dashboard

import (
	"fmt"
	"strings"
	"time"

	"github.com/leapstack-labs/covidlens/internal/config"
	"github.com/leapstack-labs/covidlens/internal/engine"
	perrors "github.com/leapstack-labs/covidlens/internal/errors"
	"github.com/leapstack-labs/covidlens/pkg/core"
)

// Selection is what the user picked: a region subset and an inclusive date range.
// A zero From or To leaves that side of the range open.
type Selection struct {
	Regions []string
	From    time.Time
	To      time.Time
}

// DefaultSelection selects the configured regions, or the first DefaultRegions
// case regions, over the full date span of the merged table.
func DefaultSelection(res *engine.Result, cfg config.DashboardConfig) Selection {
	var sel Selection
	switch {
	case len(cfg.Regions) > 0:
		sel.Regions = append([]string(nil), cfg.Regions...)
	default:
		n := cfg.DefaultRegions
		if n <= 0 || n > len(res.Regions) {
			n = len(res.Regions)
		}
		sel.Regions = append([]string(nil), res.Regions[:n]...)
	}

	if first, last, ok := res.Table.DateSpan(); ok {
		sel.From, sel.To = first, last
	}
	return sel
}

// Validate checks the selection against the pipeline result.
func (s Selection) Validate(res *engine.Result) error {
	if len(s.Regions) == 0 {
		return perrors.NewViewError(perrors.CodeEmptySelection, "no region selected")
	}

	known := make(map[string]bool, len(res.Regions))
	for _, r := range res.Regions {
		known[r] = true
	}
	var unknown []string
	for _, r := range s.Regions {
		if !known[r] {
			unknown = append(unknown, r)
		}
	}
	if len(unknown) > 0 {
		return perrors.New(perrors.ErrCategorySchema, perrors.CodeUnknownRegion,
			fmt.Sprintf("unknown region(s): %s", strings.Join(unknown, ", "))).
			WithDetails(map[string]interface{}{"unknown": unknown, "available": res.Regions})
	}

	if !s.From.IsZero() && !s.To.IsZero() && s.From.After(s.To) {
		return perrors.NewViewError(perrors.CodeEmptySelection,
			fmt.Sprintf("date range is inverted: %s after %s", s.From.Format(time.DateOnly), s.To.Format(time.DateOnly)))
	}
	return nil
}

// Apply validates the selection and returns the rows of the merged table in range.
// An empty result is an EMPTY_SELECTION error.
func (s Selection) Apply(res *engine.Result) (*core.Table, error) {
	if err := s.Validate(res); err != nil {
		return nil, err
	}

	t := res.Table.Between(s.From, s.To)
	if t.Len() == 0 {
		return nil, perrors.NewViewError(perrors.CodeEmptySelection, "no data in the selected date range")
	}
	return t, nil
}

// ParseDate parses a date flag value. Only ISO dates (2006-01-02) are accepted.
func ParseDate(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, nil
	}
	t, err := time.Parse(time.DateOnly, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q (want YYYY-MM-DD): %w", s, err)
	}
	return t, nil
}
