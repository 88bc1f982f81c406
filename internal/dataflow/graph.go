package dataflow

import (
	"fmt"
	"log/slog"
	"reflect"
	"slices"

	"github.com/roach88/kinetic/internal/log"
	"github.com/roach88/kinetic/internal/registry"
	"github.com/roach88/kinetic/internal/trace"
)

type (
	// Connector copies the source property From onto the target property To
	Connector struct {
		From string `json:"from" yaml:"from"`
		To   string `json:"to" yaml:"to"`
	}

	// Edge is a resolved edge. Ref is the symbolic name the target was
	// declared under, empty for edges added directly
	Edge struct {
		Target     registry.ID
		Ref        string
		Connectors []Connector
	}

	// RefEdge is an edge declared against a symbolic node name
	RefEdge struct {
		Ref        string      `json:"ref" yaml:"ref"`
		Connectors []Connector `json:"connectors" yaml:"connectors"`
	}

	// Option configures a Graph
	Option func(*Graph)

	// Graph is a dataflow propagation graph
	Graph struct {
		name     string
		registry *registry.Registry
		scope    *Scope
		recorder trace.Recorder
		clock    *trace.Clock

		nodes   []registry.ID
		edges   map[registry.ID][]Edge
		changed map[registry.ID]bool

		refNodes []string
		refEdges map[string][]RefEdge
		links    map[string]registry.ID

		propagating bool
		paused      int
		owed        bool
	}
)

// WithRegistry sets the registry node IDs are resolved through
func WithRegistry(r *registry.Registry) Option {
	return func(g *Graph) {
		g.registry = r
	}
}

// WithScope sets the scope Link attaches nodes to
func WithScope(s *Scope) Option {
	return func(g *Graph) {
		g.scope = s
	}
}

// WithRecorder traces every propagation pass
func WithRecorder(r trace.Recorder) Option {
	return func(g *Graph) {
		g.recorder = r
	}
}

// WithClock sets the logical clock stamping trace records
func WithClock(c *trace.Clock) Option {
	return func(g *Graph) {
		g.clock = c
	}
}

// New creates an empty graph. The name is used as the trace subject
func New(name string, opts ...Option) *Graph {
	g := &Graph{
		name:     name,
		registry: registry.Default,
		scope:    DefaultScope,
		edges:    map[registry.ID][]Edge{},
		changed:  map[registry.ID]bool{},
		links:    map[string]registry.ID{},
	}
	for _, opt := range opts {
		opt(g)
	}
	if g.recorder != nil && g.clock == nil {
		g.clock = trace.NewClock()
	}
	return g
}

// Name returns the graph name
func (g *Graph) Name() string {
	return g.name
}

// ============================================================================
// Structure
// ============================================================================

// RegisterRefNodes sets the symbolic propagation order. Nil is ignored
func (g *Graph) RegisterRefNodes(refs []string) {
	if refs == nil {
		return
	}
	g.refNodes = slices.Clone(refs)
}

// RegisterRefEdges sets the symbolic edges, keyed by source name. Nil is
// ignored
func (g *Graph) RegisterRefEdges(edges map[string][]RefEdge) {
	if edges == nil {
		return
	}
	g.refEdges = edges
}

// Link binds a symbolic name to a component ID and attaches the component
// to this graph in the scope
func (g *Graph) Link(ref string, id registry.ID) bool {
	if ref == "" || id == "" {
		return false
	}
	g.links[ref] = id
	g.scope.Attach(id, g)
	return true
}

// Build resolves the reference data into nodes and edges. Names that are
// not linked are skipped. It does nothing until both the nodes and the
// edges were registered
func (g *Graph) Build() bool {
	if g.refNodes == nil || g.refEdges == nil {
		return false
	}

	var nodes []registry.ID
	for _, ref := range g.refNodes {
		id, ok := g.links[ref]
		if !ok {
			slog.Debug("dataflow node not linked", slog.String("ref", ref))
			continue
		}
		nodes = append(nodes, id)
	}

	edges := map[registry.ID][]Edge{}
	for ref, refEdges := range g.refEdges {
		src, ok := g.links[ref]
		if !ok {
			continue
		}
		resolved := []Edge{}
		for _, re := range refEdges {
			target, ok := g.links[re.Ref]
			if !ok {
				slog.Debug("dataflow edge target not linked",
					slog.String("ref", re.Ref),
				)
				continue
			}
			resolved = append(resolved, Edge{
				Target:     target,
				Ref:        re.Ref,
				Connectors: slices.Clone(re.Connectors),
			})
		}
		edges[src] = resolved
	}

	g.nodes = nodes
	g.edges = edges
	return true
}

// SetNodes replaces the propagation order
func (g *Graph) SetNodes(ids ...registry.ID) {
	g.nodes = slices.Clone(ids)
}

// AddEdge appends an edge leaving src
func (g *Graph) AddEdge(src registry.ID, e Edge) {
	e.Connectors = slices.Clone(e.Connectors)
	g.edges[src] = append(g.edges[src], e)
}

// Nodes returns the propagation order
func (g *Graph) Nodes() []registry.ID {
	return slices.Clone(g.nodes)
}

// EdgesFrom returns the edges leaving src, in declaration order
func (g *Graph) EdgesFrom(src registry.ID) []Edge {
	return slices.Clone(g.edges[src])
}

// Contains reports whether id is a node of the graph
func (g *Graph) Contains(id registry.ID) bool {
	return slices.Contains(g.nodes, id)
}

// ============================================================================
// Propagation
// ============================================================================

// MarkChanged flags id as written since its last visit, so the next pass
// that visits it runs its hook
func (g *Graph) MarkChanged(id registry.ID) {
	if id != "" {
		g.changed[id] = true
	}
}

// Changed reports whether id is flagged as written
func (g *Graph) Changed(id registry.ID) bool {
	return g.changed[id]
}

// Propagate runs a pass starting at from, or at the first node when from
// is empty. It returns false when no pass ran: one is already running, the
// graph is paused, or from is not a node
func (g *Graph) Propagate(from registry.ID) bool {
	if g.propagating {
		return false
	}
	start := 0
	if from != "" {
		start = slices.Index(g.nodes, from)
		if start < 0 {
			return false
		}
	}
	if g.paused > 0 {
		// the owed pass pushes every node, from included
		g.owed = true
		return false
	}

	g.propagating = true
	defer func() { g.propagating = false }()

	writes := 0
	if from != "" {
		delete(g.changed, from)
		writes += g.push(from)
		start++
	}
	for _, id := range g.nodes[start:] {
		if g.changed[id] {
			delete(g.changed, id)
			g.notify(id)
		}
		writes += g.push(id)
	}

	g.record(from, writes)
	return true
}

// PausePropagation suspends propagation until the matching
// RestartPropagation
func (g *Graph) PausePropagation() {
	g.paused++
}

// RestartPropagation releases one pause. Releasing the last one runs the
// pass owed by any Propagate call made in between. Extra calls are ignored
func (g *Graph) RestartPropagation() {
	if g.paused == 0 {
		return
	}
	g.paused--
	if g.paused == 0 && g.owed {
		g.owed = false
		g.Propagate("")
	}
}

// Paused reports whether propagation is suspended
func (g *Graph) Paused() bool {
	return g.paused > 0
}

// push copies the values of src along its edges and returns the number of
// property writes. A target already holding the value is not written, so a
// pass over unchanged data writes nothing
func (g *Graph) push(src registry.ID) int {
	edges := g.edges[src]
	if len(edges) == 0 {
		return 0
	}
	from, ok := g.registry.Lookup(src)
	if !ok {
		return 0
	}
	writes := 0
	for _, e := range edges {
		to, ok := g.registry.Lookup(e.Target)
		if !ok {
			continue
		}
		for _, c := range e.Connectors {
			v, ok := GetProperty(from, c.From)
			if !ok {
				continue
			}
			if old, ok := GetProperty(to, c.To); ok && reflect.DeepEqual(old, v) {
				continue
			}
			if SetProperty(to, c.To, v) {
				writes++
				g.changed[e.Target] = true
			}
		}
	}
	return writes
}

func (g *Graph) notify(id registry.ID) {
	c, ok := g.registry.Lookup(id)
	if !ok {
		return
	}
	n, ok := c.(ChangeNotifier)
	if !ok {
		return
	}
	defer func() {
		if r := recover(); r != nil {
			slog.Error("dataflow change hook panicked",
				log.ComponentID(id),
				log.Recovered(r),
			)
		}
	}()
	n.PropertiesDidChange()
}

func (g *Graph) record(from registry.ID, writes int) {
	if g.recorder == nil {
		return
	}
	origin := string(from)
	if origin == "" {
		origin = "start"
	}
	g.recorder.Record(trace.Record{
		Seq:     g.clock.Next(),
		Kind:    trace.KindPropagate,
		Subject: g.name,
		From:    origin,
		Detail:  fmt.Sprintf("%d writes", writes),
	})
}
