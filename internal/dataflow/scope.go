package dataflow

import (
	"sync"

	"github.com/roach88/kinetic/internal/registry"
)

// Scope maps component IDs to the graph they take part in. A component
// configured through its ID finds the graph to propagate in here.
//
// Thread-safety: Scope is safe for concurrent use via internal RWMutex.
type Scope struct {
	mu     sync.RWMutex
	graphs map[registry.ID]*Graph
}

// DefaultScope is the scope used by graphs and package-level helpers
var DefaultScope = NewScope()

// NewScope creates an empty scope
func NewScope() *Scope {
	return &Scope{graphs: map[registry.ID]*Graph{}}
}

// Attach records that id takes part in g, replacing any previous graph
func (s *Scope) Attach(id registry.ID, g *Graph) {
	if id == "" || g == nil {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.graphs[id] = g
}

// Detach forgets id
func (s *Scope) Detach(id registry.ID) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.graphs, id)
}

// For returns the graph id takes part in
func (s *Scope) For(id registry.ID) (*Graph, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	g, ok := s.graphs[id]
	return g, ok
}

// Attach records in DefaultScope that id takes part in g
func Attach(id registry.ID, g *Graph) {
	DefaultScope.Attach(id, g)
}

// Detach forgets id in DefaultScope
func Detach(id registry.ID) {
	DefaultScope.Detach(id)
}

// For returns the graph id takes part in according to DefaultScope
func For(id registry.ID) (*Graph, bool) {
	return DefaultScope.For(id)
}
