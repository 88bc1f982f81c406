package registry_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/kinetic/internal/registry"
)

type widget struct {
	id    registry.ID
	label string
}

func (w *widget) ID() registry.ID { return w.id }

func TestRegistry_RegisterLookup(t *testing.T) {
	r := registry.New()
	w := &widget{id: "w1", label: "first"}

	gen := r.Register(w)
	assert.Equal(t, uint64(1), gen)
	assert.Equal(t, 1, r.Len())

	got, ok := r.Lookup("w1")
	require.True(t, ok)
	assert.Same(t, w, got)
}

func TestRegistry_OverwriteBumpsGeneration(t *testing.T) {
	r := registry.New()
	r.Register(&widget{id: "w1", label: "first"})
	rebuilt := &widget{id: "w1", label: "second"}

	gen := r.Register(rebuilt)
	assert.Equal(t, uint64(2), gen)
	assert.Equal(t, uint64(2), r.Generation("w1"))
	assert.Equal(t, 1, r.Len())

	got, ok := registry.Resolve[*widget](r, "w1")
	require.True(t, ok)
	assert.Equal(t, "second", got.label)
}

func TestRegistry_EmptyIDIgnored(t *testing.T) {
	r := registry.New()
	assert.Equal(t, uint64(0), r.Register(&widget{}))
	assert.Equal(t, uint64(0), r.Register(nil))
	assert.Equal(t, 0, r.Len())
}

func TestRegistry_Deregister(t *testing.T) {
	r := registry.New()
	r.Register(&widget{id: "w1"})

	assert.True(t, r.Deregister("w1"))
	assert.False(t, r.Deregister("w1"))

	_, ok := r.Lookup("w1")
	assert.False(t, ok)
	assert.Equal(t, uint64(0), r.Generation("w1"))

	// generation restarts once the id was absent
	assert.Equal(t, uint64(1), r.Register(&widget{id: "w1"}))
}

func TestResolve_WrongType(t *testing.T) {
	r := registry.New()
	r.Register(&widget{id: "w1"})

	_, ok := registry.Resolve[interface{ Start() }](r, "w1")
	assert.False(t, ok)

	_, ok = registry.Resolve[*widget](r, "missing")
	assert.False(t, ok)
}

func TestUUIDv7Generator_Unique(t *testing.T) {
	gen := registry.UUIDv7Generator{}
	a := gen.Generate()
	b := gen.Generate()

	assert.Len(t, string(a), 36)
	assert.NotEqual(t, a, b)
	assert.Less(t, string(a), string(b), "v7 ids sort by creation time")
}

func TestFixedGenerator_Exhausted(t *testing.T) {
	gen := registry.NewFixedGenerator("a", "b")
	assert.Equal(t, registry.ID("a"), gen.Generate())
	assert.Equal(t, registry.ID("b"), gen.Generate())
	assert.Panics(t, func() { gen.Generate() })
}

func TestSequenceGenerator(t *testing.T) {
	gen := registry.NewSequenceGenerator("fsm")
	assert.Equal(t, registry.ID("fsm-1"), gen.Generate())
	assert.Equal(t, registry.ID("fsm-2"), gen.Generate())
}
