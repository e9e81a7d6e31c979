// Package router sets up HTTP routes for the dashboard server.
package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/sessions"

	"github.com/leapstack-labs/covidlens/internal/state"
	"github.com/leapstack-labs/covidlens/internal/ui/features/common"
	runsFeature "github.com/leapstack-labs/covidlens/internal/ui/features/runs"
	viewsFeature "github.com/leapstack-labs/covidlens/internal/ui/features/views"
	"github.com/leapstack-labs/covidlens/internal/ui/notifier"
	"github.com/leapstack-labs/covidlens/internal/ui/resources"
)

// SetupRoutes configures all routes of the dashboard server.
func SetupRoutes(
	router chi.Router,
	source common.Source,
	store state.Store,
	sessionStore sessions.Store,
	notify *notifier.Notifier,
) error {
	router.Handle("/static/*", resources.Handler())
	router.Get("/healthz", healthz(source))

	if err := viewsFeature.SetupRoutes(router, source, sessionStore, notify); err != nil {
		return err
	}

	if err := runsFeature.SetupRoutes(router, store, notify); err != nil {
		return err
	}

	return nil
}

// healthz reports whether a pipeline result is being served.
func healthz(source common.Source) http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		if res, _ := source.Result(); res == nil {
			http.Error(w, "no pipeline result", http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	}
}
