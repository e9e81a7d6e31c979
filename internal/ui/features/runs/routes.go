package runs

import (
	"github.com/go-chi/chi/v5"

	"github.com/leapstack-labs/covidlens/internal/state"
	"github.com/leapstack-labs/covidlens/internal/ui/notifier"
)

// SetupRoutes registers the run history routes. A nil store shows the history as disabled.
func SetupRoutes(router chi.Router, store state.Store, notify *notifier.Notifier) error {
	handlers := NewHandlers(store, notify)

	router.Route("/runs", func(r chi.Router) {
		r.Get("/", handlers.RunsPage)
		r.Get("/updates", handlers.RunsUpdates)
		r.Get("/{id}", handlers.RunPage)
	})

	return nil
}
