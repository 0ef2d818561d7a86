package session

import (
	"strconv"

	"github.com/leapstack-labs/routelens/internal/dataservice"
	"github.com/leapstack-labs/routelens/internal/journal"
)

// FetchSources refreshes the source list for the loaded dataset.
func (s *Session) FetchSources() {
	gen := s.dataGeneration()
	s.fetchOptions("sources", func() error {
		items, err := s.svc.Sources(s.ctx)
		if err != nil {
			return err
		}
		s.storeOptions(func(st *State) bool {
			if s.dataGen != gen {
				return false
			}
			st.Options.Sources = OptionSet[string]{Scope: strconv.FormatUint(gen, 10), Items: items}
			return true
		})
		return nil
	})
}

// FetchPeriods refreshes the period list for the loaded dataset.
func (s *Session) FetchPeriods() {
	gen := s.dataGeneration()
	s.fetchOptions("periods", func() error {
		items, err := s.svc.Periods(s.ctx)
		if err != nil {
			return err
		}
		s.storeOptions(func(st *State) bool {
			if s.dataGen != gen {
				return false
			}
			st.Options.Periods = OptionSet[string]{Scope: strconv.FormatUint(gen, 10), Items: items}
			return true
		})
		return nil
	})
}

// FetchDestinations refreshes the destinations of source. The result is
// dropped if source is no longer selected when it arrives.
func (s *Session) FetchDestinations(source string) {
	gen := s.dataGeneration()
	s.fetchOptions("destinations/"+source, func() error {
		items, err := s.svc.Destinations(s.ctx, source)
		if err != nil {
			return err
		}
		s.storeOptions(func(st *State) bool {
			if s.dataGen != gen || st.Selection.Source != source {
				return false
			}
			st.Options.Destinations = OptionSet[string]{Scope: source, Items: items}
			return true
		})
		return nil
	})
}

// FetchModes refreshes the modes of the source/destination route. The
// result is dropped if the route is no longer selected when it arrives.
func (s *Session) FetchModes(source, destination string) {
	gen := s.dataGeneration()
	scope := ModeScope(source, destination)
	s.fetchOptions("modes/"+scope, func() error {
		items, err := s.svc.Modes(s.ctx, source, destination)
		if err != nil {
			return err
		}
		s.storeOptions(func(st *State) bool {
			if s.dataGen != gen || ModeScope(st.Selection.Source, st.Selection.Destination) != scope {
				return false
			}
			st.Options.Modes = OptionSet[dataservice.Mode]{Scope: scope, Items: items}
			return true
		})
		return nil
	})
}

func (s *Session) dataGeneration() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.dataGen
}

// fetchOptions runs fetch on the dispatcher. Failures keep the previous
// list and are only logged and journaled.
func (s *Session) fetchOptions(subject string, fetch func() error) {
	s.dispatcher.Go(func() {
		start := s.now()
		err := fetch()
		elapsed := s.now().Sub(start)
		if err == nil {
			s.record(journal.Entry{Kind: journal.KindOptions, Outcome: journal.OutcomeSucceeded, Subject: subject, Duration: elapsed})
			return
		}

		s.mu.Lock()
		s.stats.OptionFailures++
		s.mu.Unlock()
		s.logger.Warn("option fetch failed, keeping previous list", "options", subject, "error", err)
		s.record(journal.Entry{Kind: journal.KindOptions, Outcome: journal.OutcomeFailed, Subject: subject, Detail: err.Error(), Duration: elapsed})
	})
}

// storeOptions commits apply when it reports the result is still in scope.
// apply runs under the lock and may read s.dataGen.
func (s *Session) storeOptions(apply func(st *State) bool) {
	s.mu.Lock()
	next := s.state
	if !apply(&next) {
		s.mu.Unlock()
		s.logger.Debug("dropping option list for a scope that is no longer current")
		return
	}
	s.state = next
	s.mu.Unlock()

	s.publish(Event{Kind: EventOptions, State: next})
}
