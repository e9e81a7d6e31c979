package common

import (
	"github.com/leapstack-labs/covidlens/internal/dashboard"
)

// RunsPath is the path of the run history page.
const RunsPath = "/runs"

// ViewPath returns the page path of a view.
func ViewPath(kind dashboard.ViewKind) string {
	return "/views/" + string(kind)
}

// Nav builds the sidebar with the entry for currentPath marked active.
func Nav(currentPath string) []NavItem {
	kinds := dashboard.Kinds()
	items := make([]NavItem, 0, len(kinds)+1)
	for _, k := range kinds {
		p := ViewPath(k)
		items = append(items, NavItem{Label: k.Title(), Path: p, Active: p == currentPath})
	}
	items = append(items, NavItem{Label: "Run History", Path: RunsPath, Active: currentPath == RunsPath})
	return items
}

// NewPageData assembles the shared page data.
func NewPageData(title, currentPath string, stale error) PageData {
	data := PageData{Title: title, Nav: Nav(currentPath)}
	if stale != nil {
		data.Stale = stale.Error()
	}
	return data
}
