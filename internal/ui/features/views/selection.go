package views

import (
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/sessions"

	"github.com/leapstack-labs/covidlens/internal/dashboard"
	"github.com/leapstack-labs/covidlens/internal/engine"
	"github.com/leapstack-labs/covidlens/internal/ui/features/common"
	"github.com/leapstack-labs/covidlens/internal/ui/features/views/pages"
)

// Session keys of the stored selection.
const (
	keyRegions = "regions"
	keyFrom    = "from"
	keyTo      = "to"
)

// storedSignals returns the selection saved in the session, if any.
func storedSignals(store sessions.Store, r *http.Request) (pages.SelectionSignals, bool) {
	sess, err := store.Get(r, common.SessionName)
	if err != nil || sess.IsNew {
		return pages.SelectionSignals{}, false
	}
	regions, ok := sess.Values[keyRegions].(string)
	if !ok {
		return pages.SelectionSignals{}, false
	}
	from, _ := sess.Values[keyFrom].(string)
	to, _ := sess.Values[keyTo].(string)
	return pages.SelectionSignals{Regions: regions, From: from, To: to}, true
}

// saveSignals stores the selection. It must run before the response is written.
func saveSignals(store sessions.Store, w http.ResponseWriter, r *http.Request, s pages.SelectionSignals) error {
	sess, err := store.Get(r, common.SessionName)
	if err != nil && sess == nil {
		return err
	}
	sess.Values[keyRegions] = s.Regions
	sess.Values[keyFrom] = s.From
	sess.Values[keyTo] = s.To
	return sess.Save(r, w)
}

// toSignals renders a selection as form signals.
func toSignals(sel dashboard.Selection) pages.SelectionSignals {
	s := pages.SelectionSignals{Regions: strings.Join(sel.Regions, ",")}
	if !sel.From.IsZero() {
		s.From = sel.From.Format(time.DateOnly)
	}
	if !sel.To.IsZero() {
		s.To = sel.To.Format(time.DateOnly)
	}
	return s
}

// parseSignals turns form signals into a selection validated against res.
func parseSignals(s pages.SelectionSignals, res *engine.Result) (dashboard.Selection, error) {
	var sel dashboard.Selection
	for _, r := range strings.Split(s.Regions, ",") {
		if r = strings.TrimSpace(r); r != "" {
			sel.Regions = append(sel.Regions, r)
		}
	}

	var err error
	if sel.From, err = dashboard.ParseDate(strings.TrimSpace(s.From)); err != nil {
		return sel, err
	}
	if sel.To, err = dashboard.ParseDate(strings.TrimSpace(s.To)); err != nil {
		return sel, err
	}
	return sel, sel.Validate(res)
}
