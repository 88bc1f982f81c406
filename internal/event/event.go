package event

import (
	"log/slog"
	"slices"
	"sync"

	"github.com/roach88/kinetic/internal/log"
	"github.com/roach88/kinetic/internal/registry"
)

type (
	// Event is what handlers receive
	Event struct {
		Type   string
		Source registry.ID
		Data   any
	}

	// Handler reacts to a propagated event
	Handler func(Event)

	// Observable is the capability of components that publish events to
	// observers identified by ID
	Observable interface {
		Bind(eventType string, observer registry.ID, h Handler)
		Unbind(eventType string, observer registry.ID) bool
		Propagate(eventType string, data any)
	}

	// Listener is the capability of non-component sources. The returned
	// function removes the listener
	Listener interface {
		AddListener(eventType string, h Handler) (remove func())
	}

	// Source is an embeddable Observable
	Source struct {
		mu        sync.Mutex
		owner     registry.ID
		observers map[string][]binding
	}

	binding struct {
		observer registry.ID
		handler  Handler
	}
)

// NewSource creates a Source publishing on behalf of owner
func NewSource(owner registry.ID) *Source {
	return &Source{owner: owner}
}

// SetOwner sets the ID stamped on propagated events
func (s *Source) SetOwner(owner registry.ID) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.owner = owner
}

// Owner returns the ID stamped on propagated events
func (s *Source) Owner() registry.ID {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.owner
}

// Bind subscribes observer to events of eventType. Binding the same observer twice for
// one type replaces its handler and keeps its position
func (s *Source) Bind(eventType string, observer registry.ID, h Handler) {
	if eventType == "" || h == nil {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.observers == nil {
		s.observers = map[string][]binding{}
	}
	bs := s.observers[eventType]
	for i := range bs {
		if bs[i].observer == observer {
			bs[i].handler = h
			return
		}
	}
	s.observers[eventType] = append(bs, binding{observer: observer, handler: h})
}

// Unbind removes observer from eventType
func (s *Source) Unbind(eventType string, observer registry.ID) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	bs := s.observers[eventType]
	for i := range bs {
		if bs[i].observer != observer {
			continue
		}
		bs = slices.Delete(slices.Clone(bs), i, i+1)
		if len(bs) == 0 {
			delete(s.observers, eventType)
		} else {
			s.observers[eventType] = bs
		}
		return true
	}
	return false
}

// Bound reports whether observer is subscribed to eventType
func (s *Source) Bound(eventType string, observer registry.ID) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, b := range s.observers[eventType] {
		if b.observer == observer {
			return true
		}
	}
	return false
}

// ObserverCount returns the number of observers bound to eventType
func (s *Source) ObserverCount(eventType string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.observers[eventType])
}

// Propagate delivers an event to every observer bound to eventType, in bind
// order. The observer list is snapshotted first, so handlers may bind or
// unbind while being dispatched
func (s *Source) Propagate(eventType string, data any) {
	s.mu.Lock()
	bs := slices.Clone(s.observers[eventType])
	ev := Event{Type: eventType, Source: s.owner, Data: data}
	s.mu.Unlock()

	for _, b := range bs {
		Dispatch(b.handler, ev)
	}
}

// Dispatch calls h with ev, recovering and logging a panic
func Dispatch(h Handler, ev Event) {
	defer func() {
		if r := recover(); r != nil {
			slog.Error("event handler panicked",
				slog.String("event", ev.Type),
				log.ComponentID(ev.Source),
				log.Recovered(r),
			)
		}
	}()
	h(ev)
}
