package fsm

import (
	"log/slog"
	"slices"

	"github.com/roach88/kinetic/internal/event"
	"github.com/roach88/kinetic/internal/log"
	"github.com/roach88/kinetic/internal/registry"
)

// inputGroup is one subscription to (source, eventType). Several lexemes can
// share a subscription; each is fed in the order it was added
type inputGroup struct {
	eventType string
	lexemes   []Lexeme

	observable event.Observable
	sourceID   registry.ID
	listener   event.Listener
	remove     func()
}

// SetInput makes events of type eventType published by src feed on into the
// machine. The subscription is released by Clear
func (m *Machine) SetInput(on Lexeme, src event.Observable, eventType string) bool {
	if on == "" || src == nil || eventType == "" {
		return false
	}
	g := m.findGroup(eventType, func(g *inputGroup) bool {
		return g.observable == src
	})
	if g == nil {
		g = &inputGroup{eventType: eventType, observable: src}
		src.Bind(eventType, m.id, m.groupHandler(g))
		m.groups = append(m.groups, g)
	}
	g.add(on)
	return true
}

// SetInputByID is SetInput for a source resolved through the registry. The
// machine keeps the ID only and resolves it again when unbinding
func (m *Machine) SetInputByID(on Lexeme, id registry.ID, eventType string) bool {
	if on == "" || eventType == "" {
		return false
	}
	src, ok := registry.Resolve[event.Observable](m.registry, id)
	if !ok {
		slog.Warn("fsm input source not found",
			log.MachineID(m.id),
			log.ComponentID(id),
		)
		return false
	}
	g := m.findGroup(eventType, func(g *inputGroup) bool {
		return g.sourceID == id
	})
	if g == nil {
		g = &inputGroup{eventType: eventType, sourceID: id}
		src.Bind(eventType, m.id, m.groupHandler(g))
		m.groups = append(m.groups, g)
	}
	g.add(on)
	return true
}

// SetInputListener is SetInput for sources that only expose a native
// listener interface
func (m *Machine) SetInputListener(
	on Lexeme, src event.Listener, eventType string,
) bool {
	if on == "" || src == nil || eventType == "" {
		return false
	}
	g := m.findGroup(eventType, func(g *inputGroup) bool {
		return g.listener == src
	})
	if g == nil {
		g = &inputGroup{eventType: eventType, listener: src}
		g.remove = src.AddListener(eventType, m.groupHandler(g))
		m.groups = append(m.groups, g)
	}
	g.add(on)
	return true
}

// BindingCount returns the number of live source subscriptions
func (m *Machine) BindingCount() int {
	return len(m.groups)
}

func (m *Machine) findGroup(
	eventType string, same func(*inputGroup) bool,
) *inputGroup {
	for _, g := range m.groups {
		if g.eventType == eventType && same(g) {
			return g
		}
	}
	return nil
}

func (m *Machine) groupHandler(g *inputGroup) event.Handler {
	return func(ev event.Event) {
		for _, on := range slices.Clone(g.lexemes) {
			if !m.Active() {
				return
			}
			m.Notify(on, ev.Data)
		}
	}
}

func (m *Machine) unbindAll() {
	groups := m.groups
	m.groups = nil
	for _, g := range groups {
		switch {
		case g.observable != nil:
			g.observable.Unbind(g.eventType, m.id)
		case g.sourceID != "":
			src, ok := registry.Resolve[event.Observable](m.registry, g.sourceID)
			if ok {
				src.Unbind(g.eventType, m.id)
			}
		case g.remove != nil:
			g.remove()
		}
	}
}

func (g *inputGroup) add(on Lexeme) {
	if !slices.Contains(g.lexemes, on) {
		g.lexemes = append(g.lexemes, on)
	}
}
