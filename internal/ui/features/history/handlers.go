package history

import (
	"context"
	"net/http"

	"github.com/leapstack-labs/routelens/internal/journal"
	"github.com/leapstack-labs/routelens/internal/ui/features/common/components"
	"github.com/leapstack-labs/routelens/internal/ui/registry"
)

// PageSize is how many entries the page shows.
const PageSize = 50

// Reader reads a session's journal.
type Reader interface {
	Recent(ctx context.Context, session string, limit int) ([]journal.Entry, error)
	Summary(ctx context.Context, session string) ([]journal.Count, error)
}

// Handlers provides HTTP handlers for the history feature.
type Handlers struct {
	registry *registry.Registry
	reader   Reader
	isDev    bool
}

// NewHandlers creates a new Handlers instance.
func NewHandlers(reg *registry.Registry, reader Reader, isDev bool) *Handlers {
	return &Handlers{registry: reg, reader: reader, isDev: isDev}
}

// Page renders the journal of the browser's own session.
func (h *Handlers) Page(w http.ResponseWriter, r *http.Request) {
	e, err := h.registry.Get(w, r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	id := e.Session.ID()
	entries, err := h.reader.Recent(r.Context(), id, PageSize)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	counts, err := h.reader.Summary(r.Context(), id)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	page := components.Document("History", h.isDev, "", "", components.HistoryShell(entries, counts))
	if err := page.Render(r.Context(), w); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}
