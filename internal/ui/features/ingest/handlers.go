// Package ingest handles dataset uploads and the default-dataset load.
package ingest

import (
	"net/http"
	"net/url"

	"github.com/starfederation/datastar-go/datastar"

	"github.com/leapstack-labs/routelens/internal/dataservice"
	"github.com/leapstack-labs/routelens/internal/ui/features/common"
	"github.com/leapstack-labs/routelens/internal/ui/features/common/components"
	"github.com/leapstack-labs/routelens/internal/ui/registry"
)

// maxUploadMemory is how much of a multipart upload is held in memory
// before spilling to disk.
const maxUploadMemory = 32 << 20

// Handlers provides HTTP handlers for the ingest feature.
type Handlers struct {
	registry   *registry.Registry
	serviceURL string
	isDev      bool
}

// NewHandlers creates a new Handlers instance.
func NewHandlers(reg *registry.Registry, serviceURL string, isDev bool) *Handlers {
	return &Handlers{registry: reg, serviceURL: serviceURL, isDev: isDev}
}

// Upload takes a plain multipart form post and redirects back to the
// explorer, which renders the outcome from session state.
func (h *Handlers) Upload(w http.ResponseWriter, r *http.Request) {
	e, err := h.registry.Get(w, r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	if err := r.ParseMultipartForm(maxUploadMemory); err != nil {
		redirectNotice(w, r, "The upload could not be read.")
		return
	}
	file, header, err := r.FormFile("file")
	if err != nil {
		redirectNotice(w, r, "Choose a file to upload.")
		return
	}
	defer file.Close()

	if !dataservice.AllowedFile(header.Filename) {
		redirectNotice(w, r, header.Filename+" is not a spreadsheet (.xlsx, .xls or .csv).")
		return
	}

	// The outcome lands in session state either way.
	_ = e.Session.Upload(r.Context(), header.Filename, file)
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func redirectNotice(w http.ResponseWriter, r *http.Request, notice string) {
	http.Redirect(w, r, "/?notice="+url.QueryEscape(notice), http.StatusSeeOther)
}

// LoadDefault asks the service for its bundled dataset and pushes the
// resulting view.
func (h *Handlers) LoadDefault(w http.ResponseWriter, r *http.Request) {
	e, err := h.registry.Get(w, r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	_ = e.Session.LoadDefault(r.Context())

	sse := datastar.NewSSE(w, r)
	if err := components.PushView(sse, common.NewView(e.Session, h.serviceURL, h.isDev)); err != nil {
		_ = sse.ConsoleError(err)
	}
}
