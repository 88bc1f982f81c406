package event

import (
	"slices"
	"sync"

	"github.com/roach88/kinetic/internal/registry"
)

// Emitter is a minimal Listener for sources that are not registered
// components, such as platform input adapters
type Emitter struct {
	mu        sync.Mutex
	source    registry.ID
	next      int
	listeners map[string][]listener
}

type listener struct {
	key     int
	handler Handler
}

// NewEmitter creates an Emitter whose events carry source as their Source
func NewEmitter(source registry.ID) *Emitter {
	return &Emitter{source: source}
}

// AddListener registers h for eventType and returns its removal function. The
// removal function is safe to call more than once
func (e *Emitter) AddListener(eventType string, h Handler) func() {
	if eventType == "" || h == nil {
		return func() {}
	}
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.listeners == nil {
		e.listeners = map[string][]listener{}
	}
	e.next++
	key := e.next
	e.listeners[eventType] = append(e.listeners[eventType], listener{key: key, handler: h})

	var once sync.Once
	return func() {
		once.Do(func() { e.remove(eventType, key) })
	}
}

func (e *Emitter) remove(eventType string, key int) {
	e.mu.Lock()
	defer e.mu.Unlock()

	ls := e.listeners[eventType]
	idx := slices.IndexFunc(ls, func(l listener) bool { return l.key == key })
	if idx < 0 {
		return
	}
	ls = slices.Delete(slices.Clone(ls), idx, idx+1)
	if len(ls) == 0 {
		delete(e.listeners, eventType)
		return
	}
	e.listeners[eventType] = ls
}

// ListenerCount returns the number of listeners registered for eventType
func (e *Emitter) ListenerCount(eventType string) int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.listeners[eventType])
}

// Emit delivers data to every listener of eventType
func (e *Emitter) Emit(eventType string, data any) {
	e.mu.Lock()
	ls := slices.Clone(e.listeners[eventType])
	ev := Event{Type: eventType, Source: e.source, Data: data}
	e.mu.Unlock()

	for _, l := range ls {
		Dispatch(l.handler, ev)
	}
}
