package registry

import "sync"

type (
	// ID identifies a component for its whole lifetime
	ID string

	// Component is anything that can be registered by ID
	Component interface {
		ID() ID
	}

	// Registry maps IDs to live components
	Registry struct {
		mu      sync.RWMutex
		entries map[ID]entry
	}

	entry struct {
		component  Component
		generation uint64
	}
)

// Default is the process-wide registry used when an engine is not given one
var Default = New()

// New creates an empty Registry
func New() *Registry {
	return &Registry{
		entries: map[ID]entry{},
	}
}

// Register stores the component under its ID, replacing any previous
// instance, and returns the generation of the entry. A component with an
// empty ID is not stored and yields generation 0.
func (r *Registry) Register(c Component) uint64 {
	if c == nil || c.ID() == "" {
		return 0
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	id := c.ID()
	e := r.entries[id]
	e.component = c
	e.generation++
	r.entries[id] = e
	return e.generation
}

// Deregister removes the component registered under id
func (r *Registry) Deregister(id ID) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.entries[id]; !ok {
		return false
	}
	delete(r.entries, id)
	return true
}

// Lookup returns the live component registered under id
func (r *Registry) Lookup(id ID) (Component, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	e, ok := r.entries[id]
	if !ok {
		return nil, false
	}
	return e.component, true
}

// Generation returns how many times id has been registered since it was
// last absent, or 0 if it is not registered
func (r *Registry) Generation(id ID) uint64 {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.entries[id].generation
}

// Len returns the number of registered components
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.entries)
}

// Resolve looks up id and asserts the component to T
func Resolve[T any](r *Registry, id ID) (T, bool) {
	var zero T
	c, ok := r.Lookup(id)
	if !ok {
		return zero, false
	}
	res, ok := c.(T)
	if !ok {
		return zero, false
	}
	return res, true
}
