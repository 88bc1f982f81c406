package component

import (
	"log/slog"
	"maps"
	"slices"

	"github.com/roach88/kinetic/internal/dataflow"
	"github.com/roach88/kinetic/internal/event"
	"github.com/roach88/kinetic/internal/log"
	"github.com/roach88/kinetic/internal/registry"
)

type (
	// Getter computes a declared property
	Getter func() any

	// Setter stores a declared property. It returns false to reject the
	// value
	Setter func(value any) bool

	// Option configures an Object
	Option func(*Object)

	// Object is a registry component with a property bag
	Object struct {
		*event.Source

		id        registry.ID
		registry  *registry.Registry
		scope     *dataflow.Scope
		generator registry.Generator

		values    map[string]any
		accessors map[string]accessor
		hooks     []func()

		config      map[string]any
		initialized bool
	}

	accessor struct {
		get Getter
		set Setter
	}
)

// WithRegistry sets the registry Init registers into
func WithRegistry(r *registry.Registry) Option {
	return func(o *Object) {
		o.registry = r
	}
}

// WithScope sets the dataflow scope Configure looks the object's graph up
// in
func WithScope(s *dataflow.Scope) Option {
	return func(o *Object) {
		o.scope = s
	}
}

// WithGenerator sets the generator Init draws an ID from when the object
// has none
func WithGenerator(g registry.Generator) Option {
	return func(o *Object) {
		o.generator = g
	}
}

// WithConfig defers a Configure call until Init
func WithConfig(props map[string]any) Option {
	return func(o *Object) {
		o.config = maps.Clone(props)
	}
}

// New creates an uninitialized Object. An empty id is replaced by a
// generated one at Init
func New(id registry.ID, opts ...Option) *Object {
	o := &Object{
		Source:    event.NewSource(id),
		id:        id,
		registry:  registry.Default,
		scope:     dataflow.DefaultScope,
		generator: registry.UUIDv7Generator{},
		values:    map[string]any{},
		accessors: map[string]accessor{},
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// ID implements registry.Component
func (o *Object) ID() registry.ID {
	return o.id
}

// Init registers the object and applies the configuration deferred with
// WithConfig. Calling it again does nothing
func (o *Object) Init() *Object {
	if o.initialized {
		return o
	}
	if o.id == "" {
		o.id = o.generator.Generate()
		o.SetOwner(o.id)
	}
	o.registry.Register(o)
	o.initialized = true

	if o.config != nil {
		cfg := o.config
		o.config = nil
		o.Configure(cfg)
	}
	return o
}

// Initialized reports whether Init ran and Destroy did not
func (o *Object) Initialized() bool {
	return o.initialized
}

// Destroy deregisters the object and detaches it from its graph. Engines
// holding its ID find nothing until an object is registered under it again
func (o *Object) Destroy() {
	if !o.initialized {
		return
	}
	o.initialized = false
	o.registry.Deregister(o.id)
	o.scope.Detach(o.id)
}

// Define declares a computed property. A nil set makes it read-only
func (o *Object) Define(name string, get Getter, set Setter) bool {
	if name == "" || get == nil {
		return false
	}
	o.accessors[name] = accessor{get: get, set: set}
	delete(o.values, name)
	return true
}

// Property implements dataflow.PropertyBindable
func (o *Object) Property(name string) (any, bool) {
	if a, ok := o.accessors[name]; ok {
		return a.get(), true
	}
	v, ok := o.values[name]
	return v, ok
}

// SetProperty implements dataflow.PropertyBindable. Undeclared names are
// stored in the bag
func (o *Object) SetProperty(name string, value any) bool {
	if name == "" {
		return false
	}
	if a, ok := o.accessors[name]; ok {
		if a.set == nil {
			slog.Debug("read-only property",
				log.ComponentID(o.id),
				log.Property(name),
			)
			return false
		}
		return a.set(value)
	}
	o.values[name] = value
	return true
}

// Properties returns the names of every property, sorted
func (o *Object) Properties() []string {
	names := slices.Collect(maps.Keys(o.values))
	names = append(names, slices.Collect(maps.Keys(o.accessors))...)
	slices.Sort(names)
	return names
}

// OnChange adds a hook run by PropertiesDidChange
func (o *Object) OnChange(f func()) {
	if f != nil {
		o.hooks = append(o.hooks, f)
	}
}

// PropertiesDidChange implements dataflow.ChangeNotifier
func (o *Object) PropertiesDidChange() {
	for _, f := range slices.Clone(o.hooks) {
		f()
	}
}

// Configure assigns props in key order, skipping "id". When the object is
// linked into a dataflow graph the writes happen with the graph paused and
// are then propagated from the object. It returns whether any property was
// assigned
func (o *Object) Configure(props map[string]any) bool {
	g, linked := o.scope.For(o.id)
	if linked {
		g.PausePropagation()
	}

	changed := false
	for _, name := range slices.Sorted(maps.Keys(props)) {
		if name == "id" {
			continue
		}
		if o.SetProperty(name, props[name]) {
			changed = true
		}
	}

	if linked {
		g.RestartPropagation()
	}
	if changed {
		o.PropertiesDidChange()
		if linked {
			g.Propagate(o.id)
		}
	}
	return changed
}
