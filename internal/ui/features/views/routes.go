package views

import (
	"github.com/go-chi/chi/v5"
	"github.com/gorilla/sessions"

	"github.com/leapstack-labs/covidlens/internal/ui/features/common"
	"github.com/leapstack-labs/covidlens/internal/ui/notifier"
)

// SetupRoutes registers the dashboard view routes.
func SetupRoutes(
	router chi.Router,
	source common.Source,
	sessionStore sessions.Store,
	notify *notifier.Notifier,
) error {
	handlers := NewHandlers(source, sessionStore, notify)

	router.Get("/", handlers.Index)
	router.Route("/views/{kind}", func(r chi.Router) {
		r.Get("/", handlers.ViewPage)
		r.Get("/updates", handlers.ViewUpdates)
		r.Post("/selection", handlers.UpdateSelection)
	})

	return nil
}
