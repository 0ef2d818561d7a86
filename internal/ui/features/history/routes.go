// Package history shows the journal of one browser session.
package history

import (
	"github.com/go-chi/chi/v5"

	"github.com/leapstack-labs/routelens/internal/ui/registry"
)

// SetupRoutes registers the history page.
func SetupRoutes(router chi.Router, reg *registry.Registry, reader Reader, isDev bool) error {
	handlers := NewHandlers(reg, reader, isDev)

	router.Get("/history", handlers.Page)

	return nil
}
