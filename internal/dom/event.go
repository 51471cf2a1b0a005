package dom

// Event types dispatched by the host and consumed by widgets.
const (
	EventClick            = "click"
	EventPointerEnter     = "pointerenter"
	EventPointerLeave     = "pointerleave"
	EventTransitionEnd    = "transitionend"
	EventVisibilityChange = "visibilitychange"
)

// Event is a dispatched event. Target is nil for document-level events.
type Event struct {
	Type   string
	Target *Element
}

// Listener handles an event.
type Listener func(Event)

// ListenerID identifies a registered listener so it can be removed later.
type ListenerID uint64

type listenerEntry struct {
	id   ListenerID
	fn   Listener
	once bool
}

// listenerSet holds listeners keyed by event type, in registration order.
type listenerSet struct {
	next   ListenerID
	byType map[string][]listenerEntry
}

func (s *listenerSet) add(eventType string, fn Listener, once bool) ListenerID {
	if s.byType == nil {
		s.byType = make(map[string][]listenerEntry)
	}
	s.next++
	s.byType[eventType] = append(s.byType[eventType], listenerEntry{id: s.next, fn: fn, once: once})
	return s.next
}

func (s *listenerSet) remove(eventType string, id ListenerID) bool {
	entries := s.byType[eventType]
	for i, e := range entries {
		if e.id == id {
			s.byType[eventType] = append(entries[:i:i], entries[i+1:]...)
			return true
		}
	}
	return false
}

func (s *listenerSet) count(eventType string) int {
	return len(s.byType[eventType])
}

// dispatch calls every listener registered for ev.Type at the time of the
// call. Listeners added during dispatch run on the next dispatch.
func (s *listenerSet) dispatch(ev Event) {
	entries := append([]listenerEntry(nil), s.byType[ev.Type]...)
	for _, e := range entries {
		if e.once {
			if !s.remove(ev.Type, e.id) {
				continue
			}
		} else if !s.has(ev.Type, e.id) {
			// removed by an earlier listener in this dispatch
			continue
		}
		e.fn(ev)
	}
}

func (s *listenerSet) has(eventType string, id ListenerID) bool {
	for _, e := range s.byType[eventType] {
		if e.id == id {
			return true
		}
	}
	return false
}
