// Package views serves the dashboard views.
package views

import (
	"net/http"

	"github.com/a-h/templ"
	"github.com/go-chi/chi/v5"
	"github.com/gorilla/sessions"
	"github.com/starfederation/datastar-go/datastar"

	"github.com/leapstack-labs/covidlens/internal/dashboard"
	"github.com/leapstack-labs/covidlens/internal/engine"
	"github.com/leapstack-labs/covidlens/internal/ui/features/common"
	"github.com/leapstack-labs/covidlens/internal/ui/features/views/pages"
	"github.com/leapstack-labs/covidlens/internal/ui/notifier"
)

// Handlers provides HTTP handlers for the dashboard views.
type Handlers struct {
	source       common.Source
	sessionStore sessions.Store
	notifier     *notifier.Notifier
}

// NewHandlers creates a new Handlers instance.
func NewHandlers(source common.Source, sessionStore sessions.Store, notify *notifier.Notifier) *Handlers {
	return &Handlers{
		source:       source,
		sessionStore: sessionStore,
		notifier:     notify,
	}
}

// Index redirects to the first view.
func (h *Handlers) Index(w http.ResponseWriter, r *http.Request) {
	http.Redirect(w, r, common.ViewPath(dashboard.Kinds()[0]), http.StatusFound)
}

// ViewPage renders a view page with the selection stored in the session.
func (h *Handlers) ViewPage(w http.ResponseWriter, r *http.Request) {
	kind, err := dashboard.ParseViewKind(chi.URLParam(r, "kind"))
	if err != nil {
		http.Error(w, err.Error(), http.StatusNotFound)
		return
	}
	// Canonical URL for forgiving spellings like /views/Key-Metrics.
	if string(kind) != chi.URLParam(r, "kind") {
		http.Redirect(w, r, common.ViewPath(kind), http.StatusMovedPermanently)
		return
	}

	res, runErr := h.source.Result()
	if res == nil {
		http.Error(w, "pipeline failed: "+errString(runErr), http.StatusServiceUnavailable)
		return
	}

	signals := h.signals(r, res)
	data := h.buildViewData(kind, res, runErr, signals)
	page := common.NewPageData(kind.Title(), common.ViewPath(kind), nil)

	if err := pages.ViewPage(page, signals, res.Regions, data).Render(r.Context(), w); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

// ViewUpdates is the long-lived SSE endpoint of a view page. It re-renders the
// view content every time the pipeline reloads. The initial content is
// rendered by ViewPage.
func (h *Handlers) ViewUpdates(w http.ResponseWriter, r *http.Request) {
	kind, err := dashboard.ParseViewKind(chi.URLParam(r, "kind"))
	if err != nil {
		http.Error(w, err.Error(), http.StatusNotFound)
		return
	}

	updates := h.notifier.Subscribe()
	defer h.notifier.Unsubscribe(updates)

	sse := datastar.NewSSE(w, r)
	ctx := r.Context()
	for {
		select {
		case <-ctx.Done():
			return
		case <-updates:
			if err := h.sendContent(sse, r, kind); err != nil {
				_ = sse.ConsoleError(err)
			}
		}
	}
}

// UpdateSelection applies the posted selection, stores it in the session and
// answers with the re-rendered content. An invalid selection is reported in
// place of the content and not stored.
func (h *Handlers) UpdateSelection(w http.ResponseWriter, r *http.Request) {
	kind, err := dashboard.ParseViewKind(chi.URLParam(r, "kind"))
	if err != nil {
		http.Error(w, err.Error(), http.StatusNotFound)
		return
	}

	var signals pages.SelectionSignals
	if err := datastar.ReadSignals(r, &signals); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	res, runErr := h.source.Result()
	if res == nil {
		sse := datastar.NewSSE(w, r)
		_ = sse.PatchElementTempl(pageError("pipeline failed: " + errString(runErr)))
		return
	}

	var data pages.ViewData
	if _, err := parseSignals(signals, res); err != nil {
		data = pages.ViewData{Kind: kind, Err: err.Error()}
	} else {
		if err := saveSignals(h.sessionStore, w, r, signals); err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		data = h.buildViewData(kind, res, runErr, signals)
	}

	sse := datastar.NewSSE(w, r)
	if err := sse.PatchElementTempl(pages.ViewContent(data)); err != nil {
		_ = sse.ConsoleError(err)
	}
}

func (h *Handlers) sendContent(sse *datastar.ServerSentEventGenerator, r *http.Request, kind dashboard.ViewKind) error {
	res, runErr := h.source.Result()
	if res == nil {
		return sse.PatchElementTempl(pageError("pipeline failed: " + errString(runErr)))
	}
	data := h.buildViewData(kind, res, runErr, h.signals(r, res))
	return sse.PatchElementTempl(pages.ViewContent(data))
}

// signals returns the session selection, or the configured default selection
// when the session has none.
func (h *Handlers) signals(r *http.Request, res *engine.Result) pages.SelectionSignals {
	if s, ok := storedSignals(h.sessionStore, r); ok {
		return s
	}
	return toSignals(dashboard.DefaultSelection(res, h.source.Config().Dashboard))
}

// buildViewData renders the view for the given signals. Selection and view
// errors end up in ViewData.Err.
func (h *Handlers) buildViewData(kind dashboard.ViewKind, res *engine.Result, runErr error, signals pages.SelectionSignals) pages.ViewData {
	data := pages.ViewData{Kind: kind}
	if runErr != nil {
		data.Stale = runErr.Error()
	}

	sel, err := parseSignals(signals, res)
	if err != nil {
		data.Err = err.Error()
		return data
	}
	v, err := dashboard.Render(kind, res, sel, h.source.Config().DosesMetric())
	if err != nil {
		data.Err = err.Error()
		return data
	}
	data.View = v
	return data
}

func pageError(msg string) templ.Component {
	return pages.ViewContent(pages.ViewData{Err: msg})
}

func errString(err error) string {
	if err == nil {
		return "no result"
	}
	return err.Error()
}
