package session

import (
	"net/url"
	"slices"

	"github.com/leapstack-labs/routelens/internal/dataservice"
)

// Level names in logs and invariant errors.
const (
	LevelSource      = "source"
	LevelDestination = "destination"
	LevelMode        = "mode"
	LevelPeriod      = "period"
)

// SetSource selects a source plant, or clears it when id is empty.
// Destination, mode and period are cleared along with the destination and
// mode option lists and the insight, whether or not the value changed.
// A non-empty source then triggers the destination fetch.
func (s *Session) SetSource(id string) {
	s.mu.Lock()
	if id != "" && !slices.Contains(s.state.Options.Sources.Items, id) {
		s.mu.Unlock()
		s.violation(&InvariantError{Level: LevelSource, Value: id})
		return
	}
	next := s.state
	next.Selection = Selection{Source: id}
	next.Options.Destinations = OptionSet[string]{}
	next.Options.Modes = OptionSet[dataservice.Mode]{}
	next.Insight = InsightState{}
	s.state = next
	s.mu.Unlock()

	s.logger.Debug("source selected", "source", id)
	s.publish(Event{Kind: EventSelection, State: next})
	if id != "" {
		s.FetchDestinations(id)
	}
}

// SetDestination selects a destination for the current source. Mode, the
// mode option list and the insight are cleared; period is kept. A non-empty
// destination then triggers the mode fetch.
func (s *Session) SetDestination(id string) {
	s.mu.Lock()
	cur := s.state
	if id != "" && (cur.Selection.Source == "" ||
		cur.Options.Destinations.Scope != cur.Selection.Source ||
		!slices.Contains(cur.Options.Destinations.Items, id)) {
		s.mu.Unlock()
		s.violation(&InvariantError{Level: LevelDestination, Value: id, Scope: cur.Selection.Source})
		return
	}
	next := cur
	next.Selection.Destination = id
	next.Selection.Mode = ""
	next.Options.Modes = OptionSet[dataservice.Mode]{}
	next.Insight = InsightState{}
	s.state = next
	s.mu.Unlock()

	s.logger.Debug("destination selected", "source", next.Selection.Source, "destination", id)
	s.publish(Event{Kind: EventSelection, State: next})
	if id != "" {
		s.FetchModes(next.Selection.Source, id)
	}
}

// SetMode selects a transport mode for the current route. Only the insight
// is cleared.
func (s *Session) SetMode(code string) {
	s.mu.Lock()
	cur := s.state
	scope := ModeScope(cur.Selection.Source, cur.Selection.Destination)
	if code != "" && (cur.Selection.Source == "" || cur.Selection.Destination == "" ||
		cur.Options.Modes.Scope != scope || !cur.Options.HasMode(code)) {
		s.mu.Unlock()
		s.violation(&InvariantError{Level: LevelMode, Value: code, Scope: scope})
		return
	}
	next := cur
	next.Selection.Mode = code
	next.Insight = InsightState{}
	s.state = next
	s.mu.Unlock()

	s.logger.Debug("mode selected", "mode", code)
	s.publish(Event{Kind: EventSelection, State: next})
}

// SetPeriod selects a time period. Only the insight is cleared.
func (s *Session) SetPeriod(id string) {
	s.mu.Lock()
	cur := s.state
	if id != "" && !slices.Contains(cur.Options.Periods.Items, id) {
		s.mu.Unlock()
		s.violation(&InvariantError{Level: LevelPeriod, Value: id})
		return
	}
	next := cur
	next.Selection.Period = id
	next.Insight = InsightState{}
	s.state = next
	s.mu.Unlock()

	s.logger.Debug("period selected", "period", id)
	s.publish(Event{Kind: EventSelection, State: next})
}

// Reselect re-applies the current period, which re-issues the route
// request for a complete tuple.
func (s *Session) Reselect() {
	s.SetPeriod(s.Snapshot().Selection.Period)
}

func (s *Session) violation(err *InvariantError) {
	if s.policy == PolicyStrict {
		panic(err)
	}
	s.logger.Warn("ignoring selection outside cached options",
		"level", err.Level,
		"value", err.Value,
		"scope", err.Scope)
}

// ModeScope is the scope key of the modes list for one route. Each part is
// path-escaped, so identifiers that contain "/" cannot collide.
func ModeScope(source, destination string) string {
	if source == "" || destination == "" {
		return ""
	}
	return url.PathEscape(source) + "/" + url.PathEscape(destination)
}
