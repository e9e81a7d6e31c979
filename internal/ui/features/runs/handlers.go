// Package runs provides the run history pages.
package runs

import (
	"context"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/starfederation/datastar-go/datastar"

	"github.com/leapstack-labs/covidlens/internal/state"
	"github.com/leapstack-labs/covidlens/internal/ui/features/common"
	"github.com/leapstack-labs/covidlens/internal/ui/features/runs/pages"
	"github.com/leapstack-labs/covidlens/internal/ui/notifier"
)

// DefaultLimit is the number of runs listed unless ?limit= says otherwise.
const DefaultLimit = 50

// Handlers provides HTTP handlers for the run history.
type Handlers struct {
	store    state.Store
	notifier *notifier.Notifier
	now      func() time.Time
}

// NewHandlers creates a new Handlers instance.
func NewHandlers(store state.Store, notify *notifier.Notifier) *Handlers {
	return &Handlers{store: store, notifier: notify, now: time.Now}
}

// RunsPage renders the run history.
func (h *Handlers) RunsPage(w http.ResponseWriter, r *http.Request) {
	limit := DefaultLimit
	if s := r.URL.Query().Get("limit"); s != "" {
		if n, err := strconv.Atoi(s); err == nil && n > 0 {
			limit = n
		}
	}

	data, err := h.buildRunsData(r.Context(), limit)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	page := common.NewPageData("Run History", common.RunsPath, nil)
	if err := pages.RunsPage(page, data).Render(r.Context(), w); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

// RunsUpdates refreshes the run list whenever the pipeline reloads,
// since every reload records a run.
func (h *Handlers) RunsUpdates(w http.ResponseWriter, r *http.Request) {
	updates := h.notifier.Subscribe()
	defer h.notifier.Unsubscribe(updates)

	sse := datastar.NewSSE(w, r)
	ctx := r.Context()
	for {
		select {
		case <-ctx.Done():
			return
		case <-updates:
			data, err := h.buildRunsData(ctx, DefaultLimit)
			if err != nil {
				_ = sse.ConsoleError(err)
				continue
			}
			if err := sse.PatchElementTempl(pages.RunsList(data)); err != nil {
				_ = sse.ConsoleError(err)
			}
		}
	}
}

// RunPage renders a single run.
func (h *Handlers) RunPage(w http.ResponseWriter, r *http.Request) {
	if h.store == nil {
		http.Error(w, pages.DisabledMessage, http.StatusNotFound)
		return
	}

	run, err := h.store.GetRun(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		status := http.StatusInternalServerError
		if strings.Contains(err.Error(), "run not found") {
			status = http.StatusNotFound
		}
		http.Error(w, err.Error(), status)
		return
	}

	page := common.NewPageData("Run "+run.ID, common.RunsPath, nil)
	if err := pages.RunPage(page, toRunItem(run, h.now())).Render(r.Context(), w); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

func (h *Handlers) buildRunsData(ctx context.Context, limit int) (pages.RunsData, error) {
	if h.store == nil {
		return pages.RunsData{Disabled: true}, nil
	}
	runs, err := h.store.ListRuns(ctx, limit)
	if err != nil {
		return pages.RunsData{}, err
	}
	return pages.RunsData{Runs: toRunItems(runs, h.now())}, nil
}
