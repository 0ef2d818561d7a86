package dataservice

import (
	"encoding/json"
	"fmt"
	"path/filepath"
	"slices"
	"strings"

	"github.com/leapstack-labs/routelens/internal/field"
)

// Mode is a transport mode available on one route.
type Mode struct {
	Code            string      `json:"code" yaml:"code"`
	Name            field.Value `json:"name" yaml:"name"`
	VehicleCapacity field.Value `json:"vehicle_capacity" yaml:"vehicle_capacity"`
}

// Label is the display text for a mode: its name, or its code when the
// service gave no name.
func (m Mode) Label() string {
	if name, ok := m.Name.Text(); ok && name != m.Code {
		return m.Code + " (" + name + ")"
	}
	return m.Code
}

// Health is the GET health response.
type Health struct {
	Status     field.Value `json:"status" yaml:"status"`
	DataLoaded field.Bool  `json:"data_loaded" yaml:"data_loaded"`
	Message    field.Value `json:"message" yaml:"message"`
}

// IngestResponse is the decoded reply to upload and load-default.
// Success is false both for validation failures (Errors non-empty) and for
// rejections that carry a single Message.
type IngestResponse struct {
	Success      bool         `json:"success" yaml:"success"`
	Filename     string       `json:"filename,omitempty" yaml:"filename,omitempty"`
	Errors       []string     `json:"errors,omitempty" yaml:"errors,omitempty"`
	Message      string       `json:"message,omitempty" yaml:"message,omitempty"`
	Sheets       []string     `json:"sheets" yaml:"sheets"`
	RouteCount   field.Value  `json:"route_count" yaml:"route_count"`
	PlantCount   field.Value  `json:"plant_count" yaml:"plant_count"`
	Periods      []string     `json:"periods" yaml:"periods"`
	RecordCounts field.Record `json:"record_counts" yaml:"record_counts"`
}

type ingestWire struct {
	Success     field.Bool        `json:"success"`
	Filename    string            `json:"filename"`
	Errors      []string          `json:"errors"`
	Error       string            `json:"error"`
	Message     string            `json:"message"`
	SheetsFound []string          `json:"sheets_found"`
	Sheets      []string          `json:"sheets"`
	TotalRoutes field.Value       `json:"total_routes"`
	TotalPlants field.Value       `json:"total_plants"`
	Periods     []json.RawMessage `json:"periods"`
	Metadata    struct {
		Plants       []json.RawMessage `json:"plants"`
		Periods      []json.RawMessage `json:"periods"`
		RecordCounts field.Record      `json:"record_counts"`
	} `json:"metadata"`
}

// logisticsSheet is the sheet whose rows are the dataset's routes.
const logisticsSheet = "Logistics"

func decodeIngest(data []byte) (*IngestResponse, error) {
	var w ingestWire
	if err := json.Unmarshal(data, &w); err != nil {
		return nil, fmt.Errorf("decode ingest response: %w", err)
	}

	success, _ := w.Success.Get()
	resp := &IngestResponse{
		Success:      success,
		Filename:     w.Filename,
		Errors:       nonBlank(w.Errors),
		Message:      w.Error,
		Sheets:       w.SheetsFound,
		RouteCount:   w.TotalRoutes,
		PlantCount:   w.TotalPlants,
		RecordCounts: w.Metadata.RecordCounts,
	}
	if resp.Message == "" {
		resp.Message = w.Message
	}
	if resp.Sheets == nil {
		resp.Sheets = w.Sheets
	}
	// Counts may only be reported inside metadata.
	if resp.RouteCount.IsAbsent() {
		resp.RouteCount = w.Metadata.RecordCounts.Get(logisticsSheet)
	}
	if resp.PlantCount.IsAbsent() && w.Metadata.Plants != nil {
		resp.PlantCount = field.Int(int64(len(w.Metadata.Plants)))
	}

	periods := w.Periods
	if periods == nil {
		periods = w.Metadata.Periods
	}
	ids, err := decodeIDs(periods)
	if err != nil {
		return nil, fmt.Errorf("decode ingest periods: %w", err)
	}
	resp.Periods = ids
	return resp, nil
}

// AllowedExtensions are the dataset file types the service reads.
var AllowedExtensions = []string{".xlsx", ".xls", ".csv"}

// AllowedFile reports whether name has a dataset extension. Front ends
// filter with it before uploading; the service checks content.
func AllowedFile(name string) bool {
	return slices.Contains(AllowedExtensions, strings.ToLower(filepath.Ext(name)))
}
