package ingest

import (
	"github.com/go-chi/chi/v5"

	"github.com/leapstack-labs/routelens/internal/ui/registry"
)

// SetupRoutes registers the ingest routes on the router.
func SetupRoutes(router chi.Router, reg *registry.Registry, serviceURL string, isDev bool) error {
	handlers := NewHandlers(reg, serviceURL, isDev)

	router.Post("/upload", handlers.Upload)
	router.Post("/load-default", handlers.LoadDefault)

	return nil
}
