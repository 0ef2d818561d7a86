package session

import (
	"context"
	"errors"
	"io"
	"strings"

	"github.com/leapstack-labs/routelens/internal/dataservice"
	"github.com/leapstack-labs/routelens/internal/field"
	"github.com/leapstack-labs/routelens/internal/journal"
)

// IngestSuccess summarizes a dataset the service accepted.
type IngestSuccess struct {
	Sheets     []string    `json:"sheets" yaml:"sheets"`
	RouteCount field.Value `json:"route_count" yaml:"route_count"`
	PlantCount field.Value `json:"plant_count" yaml:"plant_count"`
	Periods    []string    `json:"periods" yaml:"periods"`
}

// IngestionResult is the outcome of one upload or default load. Exactly one
// of Success and Err is set; Err is a *ValidationError or *TransportError.
type IngestionResult struct {
	Success *IngestSuccess `json:"success,omitempty" yaml:"success,omitempty"`
	Err     error          `json:"-" yaml:"-"`
}

// OK reports whether the ingestion succeeded.
func (r IngestionResult) OK() bool { return r.Success != nil }

// Validation returns the validation failure, if that is what happened.
func (r IngestionResult) Validation() (*ValidationError, bool) {
	var ve *ValidationError
	ok := errors.As(r.Err, &ve)
	return ve, ok
}

// Upload sends a dataset file to the service. Extension filtering is the
// caller's job. On success the session resets and refetches the
// dataset-wide lists; on failure earlier state is kept.
func (s *Session) Upload(ctx context.Context, filename string, r io.Reader) IngestionResult {
	resp, err := s.svc.Upload(ctx, filename, r)
	return s.ingest(filename, resp, err)
}

// LoadDefault asks the service to load its bundled dataset.
func (s *Session) LoadDefault(ctx context.Context) IngestionResult {
	resp, err := s.svc.LoadDefault(ctx)
	return s.ingest(DefaultOrigin, resp, err)
}

func (s *Session) ingest(origin string, resp *dataservice.IngestResponse, err error) IngestionResult {
	entry := journal.Entry{Kind: journal.KindIngest, Subject: origin}

	switch {
	case err != nil:
		te := newTransportError("load "+origin, err)
		s.commit(EventError, func(st *State) { st.Failure = te })
		s.logger.Warn("ingestion failed", "origin", origin, "error", err)
		entry.Outcome, entry.Detail = journal.OutcomeFailed, te.Msg
		s.record(entry)
		return IngestionResult{Err: te}

	case !resp.Success && len(resp.Errors) > 0:
		ve := &ValidationError{Messages: append([]string(nil), resp.Errors...)}
		s.commit(EventError, func(st *State) { st.Validation = ve })
		s.logger.Info("dataset rejected", "origin", origin, "errors", len(ve.Messages))
		entry.Outcome, entry.Detail = journal.OutcomeRejected, strings.Join(ve.Messages, "\n")
		s.record(entry)
		return IngestionResult{Err: ve}

	case !resp.Success:
		msg := resp.Message
		if msg == "" {
			msg = "the data service did not accept the dataset"
		}
		te := &TransportError{Op: "load " + origin, Msg: msg}
		s.commit(EventError, func(st *State) { st.Failure = te })
		entry.Outcome, entry.Detail = journal.OutcomeFailed, msg
		s.record(entry)
		return IngestionResult{Err: te}
	}

	if resp.Filename != "" {
		origin = resp.Filename
	}
	status := DataStatus{
		Loaded:       true,
		Origin:       origin,
		Sheets:       resp.Sheets,
		RouteCount:   resp.RouteCount,
		PlantCount:   resp.PlantCount,
		Periods:      resp.Periods,
		RecordCounts: resp.RecordCounts,
		LoadedAt:     s.now(),
	}

	s.mu.Lock()
	s.dataGen++
	next := s.state
	next.Selection = Selection{}
	next.Options = Options{}
	next.Insight = InsightState{}
	next.Data = status
	next.Failure = nil
	s.state = next
	s.mu.Unlock()

	s.logger.Info("dataset loaded", "origin", origin, "sheets", len(status.Sheets))
	entry.Outcome = journal.OutcomeSucceeded
	s.record(entry)
	s.publish(Event{Kind: EventData, State: next})

	s.FetchSources()
	s.FetchPeriods()
	return IngestionResult{Success: &IngestSuccess{
		Sheets:     status.Sheets,
		RouteCount: status.RouteCount,
		PlantCount: status.PlantCount,
		Periods:    status.Periods,
	}}
}

// FetchModel loads the static model description in the background.
// Failures are logged only.
func (s *Session) FetchModel() {
	s.dispatcher.Go(func() {
		md, err := s.svc.Model(s.ctx)
		if err != nil {
			s.logger.Warn("model description unavailable", "error", err)
			return
		}
		s.commit(EventModel, func(st *State) { st.Model = md })
	})
}
