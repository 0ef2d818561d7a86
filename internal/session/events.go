package session

// EventKind names the slice of State a commit replaced.
type EventKind int

const (
	EventSelection EventKind = iota
	EventOptions
	EventInsight
	EventData
	EventError
	EventModel
)

func (k EventKind) String() string {
	switch k {
	case EventSelection:
		return "selection"
	case EventOptions:
		return "options"
	case EventInsight:
		return "insight"
	case EventData:
		return "data"
	case EventError:
		return "error"
	case EventModel:
		return "model"
	default:
		return "unknown"
	}
}

// Event is published after each commit with the state it produced.
type Event struct {
	Kind  EventKind
	State State
}

// Listener receives events synchronously on the committing goroutine.
// It must not block.
type Listener func(Event)

type subscription struct {
	id int
	fn Listener
}

// Subscribe registers fn and returns a function that removes it.
func (s *Session) Subscribe(fn Listener) (unsubscribe func()) {
	s.lmu.Lock()
	s.nextSub++
	id := s.nextSub
	s.listeners = append(s.listeners, subscription{id: id, fn: fn})
	s.lmu.Unlock()

	return func() {
		s.lmu.Lock()
		defer s.lmu.Unlock()
		kept := make([]subscription, 0, len(s.listeners))
		for _, sub := range s.listeners {
			if sub.id != id {
				kept = append(kept, sub)
			}
		}
		s.listeners = kept
	}
}

func (s *Session) publish(ev Event) {
	s.lmu.Lock()
	subs := s.listeners
	s.lmu.Unlock()

	for _, sub := range subs {
		sub.fn(ev)
	}
}
