package testutil

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/go-chi/chi/v5"
)

// FakeMode is a transport mode served by FakeService.
type FakeMode struct {
	Code            string `json:"code"`
	Name            string `json:"name"`
	VehicleCapacity any    `json:"vehicle_capacity"`
}

// Dataset is what FakeService serves once something has been loaded.
type Dataset struct {
	Sources      []string
	Periods      []string
	Destinations map[string][]string
	// Modes is keyed by RouteKey(source, destination).
	Modes  map[string][]FakeMode
	Sheets []string
	// Routes maps TupleKey to a route response body. Missing tuples get a
	// 400 with an errors list.
	Routes map[string]string
}

// RouteKey keys Dataset.Modes.
func RouteKey(source, destination string) string { return source + "/" + destination }

// TupleKey keys Dataset.Routes and the route request log.
func TupleKey(source, destination, mode, period string) string {
	return source + "|" + destination + "|" + mode + "|" + period
}

// Canned is a fixed status and body returned by an overridden endpoint.
type Canned struct {
	Status int
	Body   string
}

// FakeService is an in-process data service built on httptest and chi.
// Nothing is loaded until an upload or load-default succeeds.
type FakeService struct {
	server *httptest.Server

	mu        sync.Mutex
	dataset   Dataset
	loaded    bool
	calls     map[string]int
	routeLog  []string
	uploads   []string
	overrides map[string]Canned
	gates     map[string]chan struct{}
}

// NewFakeService starts a fake service for ds. It is closed on cleanup.
func NewFakeService(t testing.TB, ds Dataset) *FakeService {
	t.Helper()
	fs := &FakeService{
		dataset:   ds,
		calls:     make(map[string]int),
		overrides: make(map[string]Canned),
		gates:     make(map[string]chan struct{}),
	}

	r := chi.NewRouter()
	r.Route("/api", func(r chi.Router) {
		r.Get("/health", fs.handle("health", fs.health))
		r.Post("/upload", fs.handle("upload", fs.upload))
		r.Post("/load-default", fs.handle("load-default", fs.loadDefault))
		r.Get("/sources", fs.handle("sources", fs.sources))
		r.Get("/periods", fs.handle("periods", fs.periods))
		r.Get("/destinations/{source}", fs.handle("destinations", fs.destinations))
		r.Get("/modes/{source}/{destination}", fs.handle("modes", fs.modes))
		r.Get("/route", fs.handle("route", fs.route))
		r.Get("/model", fs.handle("model", fs.model))
		r.Get("/plant/{code}", fs.handle("plant", fs.plant))
		r.Get("/metadata", fs.handle("metadata", fs.metadata))
		r.Get("/analytics/{kind}", fs.handle("analytics", fs.analytics))
		r.Get("/data/raw/{sheet}", fs.handle("raw", fs.raw))
	})

	fs.server = httptest.NewServer(r)
	t.Cleanup(func() {
		fs.ReleaseAll()
		fs.server.Close()
	})
	return fs
}

// DemoDataset is the IU1/GU5 dataset used across package tests.
func DemoDataset() Dataset {
	return Dataset{
		Sources:      []string{"IU1", "IU2"},
		Periods:      []string{"2024-Q1"},
		Destinations: map[string][]string{"IU1": {"GU5"}, "IU2": {"GU7", "GU8"}},
		Modes: map[string][]FakeMode{
			RouteKey("IU1", "GU5"): {{Code: "T1", Name: "Road", VehicleCapacity: 30}},
			RouteKey("IU2", "GU7"): {{Code: "T1", Name: "Road", VehicleCapacity: 30}, {Code: "T2", Name: "Rail", VehicleCapacity: "Not available"}},
			RouteKey("IU2", "GU8"): {{Code: "T2", Name: "Rail", VehicleCapacity: 3000}},
		},
		Sheets: []string{"IUGUType", "Logistics", "ClinkerDemand"},
		Routes: map[string]string{
			TupleKey("IU1", "GU5", "T1", "2024-Q1"): InfeasibleRoutePayload,
			TupleKey("IU2", "GU7", "T1", "2024-Q1"): FeasibleRoutePayload("IU2", "GU7", "T1", "2024-Q1"),
			TupleKey("IU2", "GU7", "T2", "2024-Q1"): FeasibleRoutePayload("IU2", "GU7", "T2", "2024-Q1"),
			TupleKey("IU2", "GU8", "T2", "2024-Q1"): FeasibleRoutePayload("IU2", "GU8", "T2", "2024-Q1"),
		},
	}
}

// URL is the service base URL, including the /api prefix.
func (fs *FakeService) URL() string { return fs.server.URL + "/api" }

// SetLoaded marks the dataset as loaded without an ingestion call.
func (fs *FakeService) SetLoaded(loaded bool) {
	fs.mu.Lock()
	fs.loaded = loaded
	fs.mu.Unlock()
}

// SetDataset swaps the served dataset, as a re-upload would.
func (fs *FakeService) SetDataset(ds Dataset) {
	fs.mu.Lock()
	fs.dataset = ds
	fs.mu.Unlock()
}

// Override makes endpoint answer with a fixed response until cleared with
// a zero Canned.
func (fs *FakeService) Override(endpoint string, c Canned) {
	fs.mu.Lock()
	defer fs.mu.Unlock()
	if c.Status == 0 {
		delete(fs.overrides, endpoint)
		return
	}
	fs.overrides[endpoint] = c
}

// Calls returns how many requests endpoint received.
func (fs *FakeService) Calls(endpoint string) int {
	fs.mu.Lock()
	defer fs.mu.Unlock()
	return fs.calls[endpoint]
}

// RouteRequests returns the TupleKey of every route request, in arrival order.
func (fs *FakeService) RouteRequests() []string {
	fs.mu.Lock()
	defer fs.mu.Unlock()
	return append([]string(nil), fs.routeLog...)
}

// RouteCalls counts route requests for one tuple.
func (fs *FakeService) RouteCalls(key string) int {
	n := 0
	for _, k := range fs.RouteRequests() {
		if k == key {
			n++
		}
	}
	return n
}

// Uploads returns the filenames posted to upload.
func (fs *FakeService) Uploads() []string {
	fs.mu.Lock()
	defer fs.mu.Unlock()
	return append([]string(nil), fs.uploads...)
}

// Hold blocks route responses for key until the returned release is called.
func (fs *FakeService) Hold(key string) (release func()) {
	ch := make(chan struct{})
	fs.mu.Lock()
	fs.gates[key] = ch
	fs.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			fs.mu.Lock()
			held := fs.gates[key] == ch
			if held {
				delete(fs.gates, key)
			}
			fs.mu.Unlock()
			if held {
				close(ch)
			}
		})
	}
}

// ReleaseAll opens every held gate.
func (fs *FakeService) ReleaseAll() {
	fs.mu.Lock()
	gates := fs.gates
	fs.gates = make(map[string]chan struct{})
	fs.mu.Unlock()
	for _, ch := range gates {
		close(ch)
	}
}

func (fs *FakeService) handle(endpoint string, next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		fs.mu.Lock()
		fs.calls[endpoint]++
		canned, overridden := fs.overrides[endpoint]
		fs.mu.Unlock()

		if overridden {
			writeRaw(w, canned.Status, canned.Body)
			return
		}
		next(w, r)
	}
}

func (fs *FakeService) requireLoaded(w http.ResponseWriter) (Dataset, bool) {
	fs.mu.Lock()
	defer fs.mu.Unlock()
	if !fs.loaded {
		writeJSON(w, http.StatusBadRequest, map[string]any{"success": false, "error": "No dataset loaded"})
		return Dataset{}, false
	}
	return fs.dataset, true
}

func (fs *FakeService) health(w http.ResponseWriter, _ *http.Request) {
	fs.mu.Lock()
	loaded := fs.loaded
	fs.mu.Unlock()
	writeJSON(w, http.StatusOK, map[string]any{
		"status":      "healthy",
		"data_loaded": loaded,
		"message":     "All insights derived exclusively from uploaded dataset",
	})
}

func (fs *FakeService) ingestSuccess(w http.ResponseWriter, filename string) {
	fs.mu.Lock()
	fs.loaded = true
	ds := fs.dataset
	fs.mu.Unlock()

	body := map[string]any{
		"success":      true,
		"sheets_found": ds.Sheets,
		"total_routes": len(ds.Routes),
		"total_plants": len(ds.Sources) + len(ds.Destinations),
		"periods":      ds.Periods,
		"errors":       []string{},
	}
	if filename != "" {
		body["filename"] = filename
	}
	writeJSON(w, http.StatusOK, body)
}

func (fs *FakeService) upload(w http.ResponseWriter, r *http.Request) {
	file, header, err := r.FormFile("file")
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]any{"success": false, "error": "No file provided"})
		return
	}
	defer file.Close()
	_, _ = io.Copy(io.Discard, file)

	fs.mu.Lock()
	fs.uploads = append(fs.uploads, header.Filename)
	fs.mu.Unlock()
	fs.ingestSuccess(w, header.Filename)
}

func (fs *FakeService) loadDefault(w http.ResponseWriter, _ *http.Request) {
	fs.ingestSuccess(w, "")
}

func (fs *FakeService) sources(w http.ResponseWriter, _ *http.Request) {
	ds, ok := fs.requireLoaded(w)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "sources": nonNil(ds.Sources)})
}

func (fs *FakeService) periods(w http.ResponseWriter, _ *http.Request) {
	ds, ok := fs.requireLoaded(w)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "periods": nonNil(ds.Periods)})
}

func (fs *FakeService) destinations(w http.ResponseWriter, r *http.Request) {
	ds, ok := fs.requireLoaded(w)
	if !ok {
		return
	}
	source := chi.URLParam(r, "source")
	dests, found := ds.Destinations[source]
	if !found {
		writeJSON(w, http.StatusBadRequest, map[string]any{
			"success":      false,
			"error":        `Source "` + source + `" not found in uploaded dataset`,
			"destinations": []string{},
		})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "source": source, "destinations": nonNil(dests)})
}

func (fs *FakeService) modes(w http.ResponseWriter, r *http.Request) {
	ds, ok := fs.requireLoaded(w)
	if !ok {
		return
	}
	key := RouteKey(chi.URLParam(r, "source"), chi.URLParam(r, "destination"))
	modes, found := ds.Modes[key]
	if !found {
		writeJSON(w, http.StatusBadRequest, map[string]any{"success": false, "errors": []string{"Route " + key + " not in dataset"}, "modes": []string{}})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "modes": modes})
}

func (fs *FakeService) route(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	key := TupleKey(q.Get("source"), q.Get("destination"), q.Get("mode"), q.Get("period"))

	fs.mu.Lock()
	fs.routeLog = append(fs.routeLog, key)
	gate := fs.gates[key]
	fs.mu.Unlock()

	if gate != nil {
		select {
		case <-gate:
		case <-r.Context().Done():
			return
		}
	}

	ds, ok := fs.requireLoaded(w)
	if !ok {
		return
	}
	body, found := ds.Routes[key]
	if !found {
		writeJSON(w, http.StatusBadRequest, map[string]any{"success": false, "errors": []string{"Route not found in uploaded dataset"}, "data": nil})
		return
	}
	writeRaw(w, http.StatusOK, body)
}

func (fs *FakeService) model(w http.ResponseWriter, _ *http.Request) {
	writeRaw(w, http.StatusOK, ModelPayload)
}

func (fs *FakeService) plant(w http.ResponseWriter, r *http.Request) {
	if _, ok := fs.requireLoaded(w); !ok {
		return
	}
	code := chi.URLParam(r, "code")
	writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"data": map[string]any{
			"code":          code,
			"type":          "IU",
			"capacity":      map[string]any{"1": 12000},
			"opening_stock": nil,
		},
	})
}

func (fs *FakeService) metadata(w http.ResponseWriter, _ *http.Request) {
	ds, ok := fs.requireLoaded(w)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"success":     true,
		"data_loaded": true,
		"metadata": map[string]any{
			"plants":     append(append([]string{}, ds.Sources...), "GU5", "GU7", "GU8"),
			"periods":    nonNil(ds.Periods),
			"source_ius": nonNil(ds.Sources),
		},
		"note": "All values derived exclusively from uploaded dataset",
	})
}

func (fs *FakeService) analytics(w http.ResponseWriter, r *http.Request) {
	if _, ok := fs.requireLoaded(w); !ok {
		return
	}
	body, ok := AnalyticsPayloads[chi.URLParam(r, "kind")]
	if !ok {
		writeJSON(w, http.StatusNotFound, map[string]any{"success": false, "error": "Not found"})
		return
	}
	writeRaw(w, http.StatusOK, body)
}

func (fs *FakeService) raw(w http.ResponseWriter, r *http.Request) {
	ds, ok := fs.requireLoaded(w)
	if !ok {
		return
	}
	sheet := chi.URLParam(r, "sheet")
	if sheet != "Logistics" {
		writeJSON(w, http.StatusBadRequest, map[string]any{
			"success":          false,
			"error":            `Sheet "` + sheet + `" not found in uploaded dataset`,
			"available_sheets": nonNil(ds.Sheets),
		})
		return
	}
	writeRaw(w, http.StatusOK, RawLogisticsPayload)
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeRaw(w http.ResponseWriter, status int, body string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = io.WriteString(w, body)
}
