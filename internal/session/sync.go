package session

import (
	"time"

	"github.com/leapstack-labs/routelens/internal/insight"
	"github.com/leapstack-labs/routelens/internal/journal"
)

// synchronize is the route insight synchronizer. It is subscribed in New
// and runs on the publishing goroutine for every event. Only selection
// events that leave the tuple complete issue a request, so re-selecting the
// same tuple fetches again.
func (s *Session) synchronize(ev Event) {
	if ev.Kind != EventSelection || !ev.State.Selection.Ready() {
		return
	}
	s.requestRoute(ev.State.Selection.Tuple())
}

// requestRoute issues one tagged route request for tuple.
func (s *Session) requestRoute(tuple insight.Tuple) {
	s.mu.Lock()
	if s.state.Selection.Tuple() != tuple {
		// A later selection already replaced this one and will issue its own.
		s.mu.Unlock()
		return
	}
	s.routeGen++
	gen := s.routeGen
	s.stats.RouteRequests++
	next := s.state
	next.Insight = InsightState{Status: InsightLoading, Tuple: tuple, Generation: gen}
	s.state = next
	s.mu.Unlock()

	s.logger.Debug("route insight requested", "tuple", tuple.String(), "generation", gen)
	s.record(journal.Entry{Kind: journal.KindRoute, Outcome: journal.OutcomeIssued, Subject: tuple.String(), Generation: gen})
	s.publish(Event{Kind: EventInsight, State: next})

	s.dispatcher.Go(func() {
		start := s.now()
		ri, err := s.svc.Route(s.ctx, tuple)
		s.resolveRoute(gen, tuple, ri, err, start)
	})
}

// resolveRoute applies a response only if it is the latest request and its
// tuple still equals the current selection. Anything else is discarded.
func (s *Session) resolveRoute(gen uint64, tuple insight.Tuple, ri *insight.RouteInsight, err error, start time.Time) {
	entry := journal.Entry{Kind: journal.KindRoute, Subject: tuple.String(), Generation: gen, Duration: s.now().Sub(start)}

	s.mu.Lock()
	if gen != s.routeGen || s.state.Selection.Tuple() != tuple {
		s.stats.RouteDiscarded++
		latest := s.routeGen
		s.mu.Unlock()

		s.logger.Debug("discarding stale route insight", "tuple", tuple.String(), "generation", gen, "latest", latest)
		entry.Outcome = journal.OutcomeDiscarded
		s.record(entry)
		return
	}

	next := s.state
	if err != nil {
		s.stats.RouteFailed++
		next.Insight = InsightState{Status: InsightFailed, Tuple: tuple, Generation: gen}
		next.Failure = newTransportError("route insight", err)
		entry.Outcome = journal.OutcomeFailed
		entry.Detail = err.Error()
	} else {
		s.stats.RouteApplied++
		next.Insight = InsightState{Status: InsightReady, Tuple: tuple, Generation: gen, Insight: ri}
		next.Failure = nil
		entry.Outcome = journal.OutcomeApplied
	}
	s.state = next
	s.mu.Unlock()

	if err != nil {
		s.logger.Warn("route insight failed", "tuple", tuple.String(), "error", err)
	}
	s.record(entry)
	s.publish(Event{Kind: EventInsight, State: next})
}
