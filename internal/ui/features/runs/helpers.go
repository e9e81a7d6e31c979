package runs

import (
	"fmt"
	"strings"
	"time"

	"github.com/leapstack-labs/covidlens/internal/state"
	"github.com/leapstack-labs/covidlens/internal/ui/features/runs/pages"
)

// toRunItems converts stored runs to display rows.
func toRunItems(runs []*state.Run, now time.Time) []pages.RunItem {
	items := make([]pages.RunItem, len(runs))
	for i, run := range runs {
		items[i] = toRunItem(run, now)
	}
	return items
}

func toRunItem(run *state.Run, now time.Time) pages.RunItem {
	return pages.RunItem{
		ID:        run.ID,
		Status:    string(run.Status),
		Failed:    run.Status == state.RunStatusFailed,
		StartedAt: formatTimeAgo(run.StartedAt, now),
		Started:   run.StartedAt.Local().Format(time.DateTime),
		Duration:  formatRunDuration(run.Duration),
		DataDir:   run.DataDir,
		Grouping:  run.Grouping,
		Regions:   run.Regions,
		Dates:     run.Dates,
		Dropped:   run.Dropped,
		Defaulted: strings.Join(run.Defaulted, ", "),
		Error:     run.Error,
	}
}

// formatTimeAgo formats a time relative to now.
func formatTimeAgo(t, now time.Time) string {
	diff := now.Sub(t)

	switch {
	case diff < time.Minute:
		return "just now"
	case diff < time.Hour:
		if mins := int(diff.Minutes()); mins != 1 {
			return fmt.Sprintf("%d minutes ago", mins)
		}
		return "1 minute ago"
	case diff < 24*time.Hour:
		if hours := int(diff.Hours()); hours != 1 {
			return fmt.Sprintf("%d hours ago", hours)
		}
		return "1 hour ago"
	}
	return t.Local().Format("Jan 2, 15:04")
}

// formatRunDuration formats a run duration for the table.
func formatRunDuration(d time.Duration) string {
	if d < time.Second {
		return fmt.Sprintf("%dms", d.Milliseconds())
	}
	if d < time.Minute {
		return fmt.Sprintf("%.1fs", d.Seconds())
	}
	return d.Round(time.Second).String()
}
