package dataservice

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"slices"

	"github.com/leapstack-labs/routelens/internal/field"
)

// Analytics views the service computes over the loaded dataset.
const (
	AnalyticsDemand    = "demand"
	AnalyticsCapacity  = "capacity"
	AnalyticsRoutes    = "routes"
	AnalyticsInventory = "inventory"
)

// AnalyticsKinds lists the views in display order.
var AnalyticsKinds = []string{AnalyticsDemand, AnalyticsCapacity, AnalyticsRoutes, AnalyticsInventory}

// Analytics is one analytics view. Summaries (demand, capacity) arrive as a
// single record; per-route and per-plant views as one record per row.
type Analytics struct {
	Kind    string         `json:"kind" yaml:"kind"`
	Records []field.Record `json:"records" yaml:"records"`
	Count   field.Value    `json:"count" yaml:"count"`
	Note    string         `json:"note,omitempty" yaml:"note,omitempty"`
}

// Metadata is the GET metadata response: everything the service derived
// from the dataset, flattened.
type Metadata struct {
	DataLoaded field.Bool   `json:"data_loaded" yaml:"data_loaded"`
	Metadata   field.Record `json:"metadata" yaml:"metadata"`
	Note       string       `json:"note,omitempty" yaml:"note,omitempty"`
}

// RawSheet is the head of one dataset sheet as the service parsed it.
type RawSheet struct {
	Sheet    string         `json:"sheet" yaml:"sheet"`
	Columns  []string       `json:"columns" yaml:"columns"`
	RowCount field.Value    `json:"row_count" yaml:"row_count"`
	Rows     []field.Record `json:"rows" yaml:"rows"`
	Note     string         `json:"note,omitempty" yaml:"note,omitempty"`
}

// Cell returns the value of column in row i, Absent when the row has none.
func (s *RawSheet) Cell(i int, column string) field.Value {
	if i < 0 || i >= len(s.Rows) {
		return field.Absent()
	}
	return s.Rows[i].Get(column)
}

// Analytics calls GET analytics/{kind}.
func (c *Client) Analytics(ctx context.Context, kind string) (*Analytics, error) {
	if !slices.Contains(AnalyticsKinds, kind) {
		return nil, fmt.Errorf("unknown analytics view %q", kind)
	}
	var wire struct {
		Data  json.RawMessage `json:"data"`
		Count field.Value     `json:"count"`
		Note  string          `json:"note"`
	}
	path := "analytics/" + kind
	if err := c.getJSON(ctx, path, nil, &wire); err != nil {
		return nil, err
	}
	records, err := decodeRecords(wire.Data)
	if err != nil {
		return nil, fmt.Errorf("%w: GET %s: %v", ErrService, path, err)
	}
	return &Analytics{Kind: kind, Records: records, Count: wire.Count, Note: wire.Note}, nil
}

// Metadata calls GET metadata.
func (c *Client) Metadata(ctx context.Context) (*Metadata, error) {
	var md Metadata
	if err := c.getJSON(ctx, "metadata", nil, &md); err != nil {
		return nil, err
	}
	return &md, nil
}

// RawSheet calls GET data/raw/{sheet}.
func (c *Client) RawSheet(ctx context.Context, sheet string) (*RawSheet, error) {
	var wire struct {
		Sheet    string         `json:"sheet"`
		Columns  []string       `json:"columns"`
		RowCount field.Value    `json:"row_count"`
		Data     []field.Record `json:"data"`
		Note     string         `json:"note"`
	}
	if err := c.getJSON(ctx, "data/raw/"+url.PathEscape(sheet), nil, &wire); err != nil {
		return nil, err
	}
	if wire.Sheet == "" {
		wire.Sheet = sheet
	}
	return &RawSheet{
		Sheet:    wire.Sheet,
		Columns:  wire.Columns,
		RowCount: wire.RowCount,
		Rows:     wire.Data,
		Note:     wire.Note,
	}, nil
}

// decodeRecords accepts either one object or a list of objects.
func decodeRecords(data json.RawMessage) ([]field.Record, error) {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		return nil, nil
	}
	if data[0] == '[' {
		var list []field.Record
		if err := json.Unmarshal(data, &list); err != nil {
			return nil, err
		}
		return list, nil
	}
	var one field.Record
	if err := json.Unmarshal(data, &one); err != nil {
		return nil, err
	}
	return []field.Record{one}, nil
}
