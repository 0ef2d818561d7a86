package explorer

import (
	"github.com/go-chi/chi/v5"

	"github.com/leapstack-labs/routelens/internal/ui/registry"
)

// SetupRoutes registers explorer routes on the router.
func SetupRoutes(router chi.Router, reg *registry.Registry, serviceURL string, isDev bool) error {
	handlers := NewHandlers(reg, serviceURL, isDev)

	router.Get("/", handlers.Page)
	router.Get("/updates", handlers.Updates)
	router.Post("/select/{level}", handlers.Select)
	router.Post("/reselect", handlers.Reselect)
	router.Post("/dismiss/{what}", handlers.Dismiss)

	return nil
}
