// Package explorer is the route selection page: the four dependent selects,
// the insight panels and the live update stream.
package explorer

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/starfederation/datastar-go/datastar"

	"github.com/leapstack-labs/routelens/internal/session"
	"github.com/leapstack-labs/routelens/internal/ui/features/common"
	"github.com/leapstack-labs/routelens/internal/ui/features/common/components"
	"github.com/leapstack-labs/routelens/internal/ui/registry"
)

// Handlers provides HTTP handlers for the explorer feature.
type Handlers struct {
	registry   *registry.Registry
	serviceURL string
	isDev      bool
}

// NewHandlers creates a new Handlers instance.
func NewHandlers(reg *registry.Registry, serviceURL string, isDev bool) *Handlers {
	return &Handlers{registry: reg, serviceURL: serviceURL, isDev: isDev}
}

// Page renders the full explorer for the browser's session.
func (h *Handlers) Page(w http.ResponseWriter, r *http.Request) {
	e, err := h.registry.Get(w, r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	view := common.NewView(e.Session, h.serviceURL, h.isDev)
	view.Notice = r.URL.Query().Get("notice")

	signals, err := json.Marshal(common.SignalsFor(view.State.Selection))
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := components.Page("Explorer", h.isDev, string(signals), components.AppShell(view)).Render(r.Context(), w); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

// Updates is the long-lived SSE stream. The page is already rendered, so
// nothing is sent until the session changes.
func (h *Handlers) Updates(w http.ResponseWriter, r *http.Request) {
	e, err := h.registry.Get(w, r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	pings, release := e.Notifier.Subscribe()
	defer release()

	sse := datastar.NewSSE(w, r)
	ctx := r.Context()
	for {
		select {
		case <-ctx.Done():
			return
		case _, ok := <-pings:
			if !ok {
				return
			}
			if err := components.PushView(sse, common.NewView(e.Session, h.serviceURL, h.isDev)); err != nil {
				_ = sse.ConsoleError(err)
			}
		}
	}
}

// Select applies one level from the bound signals. Options fetched as a
// result arrive on the update stream.
func (h *Handlers) Select(w http.ResponseWriter, r *http.Request) {
	e, err := h.registry.Get(w, r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	// Read signals before creating the SSE, which consumes the request body.
	var signals common.SelectionSignals
	if err := datastar.ReadSignals(r, &signals); err != nil {
		http.Error(w, "failed to read signals: "+err.Error(), http.StatusBadRequest)
		return
	}

	if !apply(e.Session, chi.URLParam(r, "level"), signals) {
		http.NotFound(w, r)
		return
	}

	sse := datastar.NewSSE(w, r)
	if err := components.PushView(sse, common.NewView(e.Session, h.serviceURL, h.isDev)); err != nil {
		_ = sse.ConsoleError(err)
	}
}

func apply(s *session.Session, level string, signals common.SelectionSignals) bool {
	switch level {
	case session.LevelSource:
		s.SetSource(signals.Source)
	case session.LevelDestination:
		s.SetDestination(signals.Destination)
	case session.LevelMode:
		s.SetMode(signals.Mode)
	case session.LevelPeriod:
		s.SetPeriod(signals.Period)
	default:
		return false
	}
	return true
}

// Reselect re-issues the route request for the current tuple.
func (h *Handlers) Reselect(w http.ResponseWriter, r *http.Request) {
	e, err := h.registry.Get(w, r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	e.Session.Reselect()

	sse := datastar.NewSSE(w, r)
	if err := components.PushView(sse, common.NewView(e.Session, h.serviceURL, h.isDev)); err != nil {
		_ = sse.ConsoleError(err)
	}
}

// Dismiss clears the validation list or the error banner.
func (h *Handlers) Dismiss(w http.ResponseWriter, r *http.Request) {
	e, err := h.registry.Get(w, r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	switch chi.URLParam(r, "what") {
	case "validation":
		e.Session.DismissValidation()
	case "error":
		e.Session.DismissFailure()
	default:
		http.NotFound(w, r)
		return
	}

	sse := datastar.NewSSE(w, r)
	if err := components.PushView(sse, common.NewView(e.Session, h.serviceURL, h.isDev)); err != nil {
		_ = sse.ConsoleError(err)
	}
}
