// Package dataservice is the client for the external parsing and
// optimization service. It owns the request/response contract: paths,
// payload shapes, absence markers and failure classification.
package dataservice

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/leapstack-labs/routelens/internal/field"
	"github.com/leapstack-labs/routelens/internal/insight"
)

// DefaultBaseURL is where the service listens when run locally.
const DefaultBaseURL = "http://localhost:5000/api"

// Client talks to the data service. It is safe for concurrent use.
type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     *slog.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithTimeout bounds every request. Zero means no timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.httpClient.Timeout = d }
}

// WithLogger sets the logger for request tracing.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// New creates a client for the service rooted at baseURL.
func New(baseURL string, opts ...Option) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{},
		logger:     slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// BaseURL returns the service root the client was built with.
func (c *Client) BaseURL() string { return c.baseURL }

// Health calls GET health.
func (c *Client) Health(ctx context.Context) (*Health, error) {
	var h Health
	if err := c.getJSON(ctx, "health", nil, &h); err != nil {
		return nil, err
	}
	return &h, nil
}

// Upload posts a dataset file as multipart field "file".
// A validation failure is not an error: it comes back as a response with
// Success false and Errors set.
func (c *Client) Upload(ctx context.Context, filename string, r io.Reader) (*IngestResponse, error) {
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	part, err := mw.CreateFormFile("file", filename)
	if err != nil {
		return nil, fmt.Errorf("failed to create form file: %w", err)
	}
	if _, err := io.Copy(part, r); err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", filename, err)
	}
	if err := mw.Close(); err != nil {
		return nil, fmt.Errorf("failed to finish multipart body: %w", err)
	}
	return c.ingest(ctx, "upload", &body, mw.FormDataContentType())
}

// LoadDefault asks the service to load its bundled dataset.
func (c *Client) LoadDefault(ctx context.Context) (*IngestResponse, error) {
	return c.ingest(ctx, "load-default", nil, "")
}

// Sources calls GET sources.
func (c *Client) Sources(ctx context.Context) ([]string, error) {
	return c.idList(ctx, "sources", "sources")
}

// Periods calls GET periods.
func (c *Client) Periods(ctx context.Context) ([]string, error) {
	return c.idList(ctx, "periods", "periods")
}

// Destinations calls GET destinations/{source}.
func (c *Client) Destinations(ctx context.Context, source string) ([]string, error) {
	return c.idList(ctx, "destinations/"+url.PathEscape(source), "destinations")
}

// Modes calls GET modes/{source}/{destination}.
func (c *Client) Modes(ctx context.Context, source, destination string) ([]Mode, error) {
	var wire struct {
		Modes []struct {
			Code            json.RawMessage `json:"code"`
			Name            field.Value     `json:"name"`
			VehicleCapacity field.Value     `json:"vehicle_capacity"`
		} `json:"modes"`
	}
	path := "modes/" + url.PathEscape(source) + "/" + url.PathEscape(destination)
	if err := c.getJSON(ctx, path, nil, &wire); err != nil {
		return nil, err
	}

	modes := make([]Mode, 0, len(wire.Modes))
	for _, m := range wire.Modes {
		codes, err := decodeIDs([]json.RawMessage{m.Code})
		if err != nil {
			return nil, fmt.Errorf("%w: GET %s: %v", ErrService, path, err)
		}
		if len(codes) == 0 {
			continue
		}
		modes = append(modes, Mode{Code: codes[0], Name: m.Name, VehicleCapacity: m.VehicleCapacity})
	}
	return modes, nil
}

// Route calls GET route for one tuple.
func (c *Client) Route(ctx context.Context, t insight.Tuple) (*insight.RouteInsight, error) {
	q := url.Values{}
	q.Set("source", t.Source)
	q.Set("destination", t.Destination)
	q.Set("mode", t.Mode)
	q.Set("period", t.Period)

	var ri insight.RouteInsight
	if err := c.getJSON(ctx, "route", q, &ri); err != nil {
		return nil, err
	}
	return &ri, nil
}

// Model calls GET model.
func (c *Client) Model(ctx context.Context) (*insight.ModelDescription, error) {
	var md insight.ModelDescription
	if err := c.getJSON(ctx, "model", nil, &md); err != nil {
		return nil, err
	}
	return &md, nil
}

// Plant calls GET plant/{code} and returns the flattened details.
func (c *Client) Plant(ctx context.Context, code string) (field.Record, error) {
	var wire struct {
		Data field.Record `json:"data"`
	}
	if err := c.getJSON(ctx, "plant/"+url.PathEscape(code), nil, &wire); err != nil {
		return field.Record{}, err
	}
	return wire.Data, nil
}

func (c *Client) idList(ctx context.Context, path, key string) ([]string, error) {
	var wire map[string]json.RawMessage
	if err := c.getJSON(ctx, path, nil, &wire); err != nil {
		return nil, err
	}
	var raw []json.RawMessage
	if list, ok := wire[key]; ok {
		if err := json.Unmarshal(list, &raw); err != nil {
			return nil, fmt.Errorf("%w: GET %s: %s is not a list", ErrService, path, key)
		}
	}
	ids, err := decodeIDs(raw)
	if err != nil {
		return nil, fmt.Errorf("%w: GET %s: %v", ErrService, path, err)
	}
	return ids, nil
}

func (c *Client) ingest(ctx context.Context, path string, body io.Reader, contentType string) (*IngestResponse, error) {
	status, data, err := c.do(ctx, http.MethodPost, path, nil, body, contentType)
	if err != nil {
		return nil, err
	}

	resp, decodeErr := decodeIngest(data)
	switch {
	case decodeErr == nil && !resp.Success && len(resp.Errors) > 0:
		// Validation failures are reported with any status.
		return resp, nil
	case status < 200 || status > 299:
		return nil, &ServiceError{Op: "POST " + path, Status: status, Messages: failureMessages(data)}
	case decodeErr != nil:
		return nil, fmt.Errorf("%w: POST %s: %v", ErrService, path, decodeErr)
	}
	return resp, nil
}

func (c *Client) getJSON(ctx context.Context, path string, query url.Values, out any) error {
	status, data, err := c.do(ctx, http.MethodGet, path, query, nil, "")
	if err != nil {
		return err
	}
	if status < 200 || status > 299 {
		return &ServiceError{Op: "GET " + path, Status: status, Messages: failureMessages(data)}
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("%w: GET %s: malformed response: %v", ErrService, path, err)
	}
	return nil
}

// do performs one request and returns the sanitized body.
func (c *Client) do(ctx context.Context, method, path string, query url.Values, body io.Reader, contentType string) (int, []byte, error) {
	u := c.baseURL + "/" + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, method, u, body)
	if err != nil {
		return 0, nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Debug("data service request failed", "method", method, "path", path, "error", err)
		return 0, nil, fmt.Errorf("%w: %s %s: %v", ErrUnreachable, method, path, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return 0, nil, fmt.Errorf("%w: %s %s: read body: %v", ErrUnreachable, method, path, err)
	}
	c.logger.Debug("data service request",
		"method", method,
		"path", path,
		"status", resp.StatusCode,
		"duration", time.Since(start))
	return resp.StatusCode, sanitize(data), nil
}
