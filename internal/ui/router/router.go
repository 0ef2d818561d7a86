// Package router sets up HTTP routes for the UI server.
package router

import (
	"net/http"
	"sync"

	"github.com/go-chi/chi/v5"
	"github.com/starfederation/datastar-go/datastar"

	explorerFeature "github.com/leapstack-labs/routelens/internal/ui/features/explorer"
	historyFeature "github.com/leapstack-labs/routelens/internal/ui/features/history"
	ingestFeature "github.com/leapstack-labs/routelens/internal/ui/features/ingest"
	"github.com/leapstack-labs/routelens/internal/ui/registry"
	"github.com/leapstack-labs/routelens/internal/ui/resources"
)

// SetupRoutes configures all routes for the UI server. The history page is
// only served when a journal reader is given.
func SetupRoutes(router chi.Router, reg *registry.Registry, hist historyFeature.Reader, serviceURL string, isDev bool) error {
	if isDev {
		setupReload(router)
	}

	router.Handle("/static/*", resources.Handler())
	router.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	})

	if err := explorerFeature.SetupRoutes(router, reg, serviceURL, isDev); err != nil {
		return err
	}
	if err := ingestFeature.SetupRoutes(router, reg, serviceURL, isDev); err != nil {
		return err
	}
	if hist != nil {
		if err := historyFeature.SetupRoutes(router, reg, hist, isDev); err != nil {
			return err
		}
	}
	return nil
}

// setupReload wires the dev live-reload pair: /reload is held open by the
// page and /hotreload is hit by the rebuild tool.
func setupReload(router chi.Router) {
	reloadChan := make(chan struct{}, 1)
	var hotReloadOnce sync.Once

	router.Get("/reload", func(w http.ResponseWriter, r *http.Request) {
		sse := datastar.NewSSE(w, r)
		reload := func() { _ = sse.ExecuteScript("window.location.reload()") }
		hotReloadOnce.Do(reload)
		select {
		case <-reloadChan:
			reload()
		case <-r.Context().Done():
		}
	})

	router.Get("/hotreload", func(w http.ResponseWriter, _ *http.Request) {
		select {
		case reloadChan <- struct{}{}:
		default:
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	})
}
