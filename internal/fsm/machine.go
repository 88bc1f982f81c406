package fsm

import (
	"log/slog"
	"slices"

	"github.com/roach88/kinetic/internal/log"
	"github.com/roach88/kinetic/internal/registry"
	"github.com/roach88/kinetic/internal/trace"
)

type (
	// Lexeme is a named symbol of the input or output alphabet
	Lexeme string

	// Transition is an edge of the state graph. Output is empty when
	// crossing the transition produces nothing
	Transition struct {
		From   string `json:"from" yaml:"from"`
		To     string `json:"to" yaml:"to"`
		On     Lexeme `json:"on" yaml:"on"`
		Output Lexeme `json:"output,omitempty" yaml:"output,omitempty"`
	}

	// Output is passed to the action of an output lexeme. On is the input
	// that caused the crossing (empty for the entry crossing)
	Output struct {
		On   Lexeme
		Data any
	}

	// Action runs when its output lexeme is produced
	Action func(Output)

	// Option configures a Machine
	Option func(*Machine)

	// Machine is a deterministic finite-state machine
	Machine struct {
		id       registry.ID
		owner    registry.ID
		registry *registry.Registry
		recorder trace.Recorder
		clock    *trace.Clock

		states      map[string]*state
		order       []string
		inputs      []Lexeme
		outputs     []Lexeme
		actions     map[Lexeme]Action
		initial     string
		current     string
		entryOutput Lexeme
		suspended   bool

		groups  []*inputGroup
		entered []func(state string)
	}

	state struct {
		transitions map[Lexeme]Transition
	}
)

// WithRegistry sets the registry used to resolve input sources by ID
func WithRegistry(r *registry.Registry) Option {
	return func(m *Machine) {
		m.registry = r
	}
}

// WithRecorder traces activations, crossings and clears
func WithRecorder(r trace.Recorder) Option {
	return func(m *Machine) {
		m.recorder = r
	}
}

// WithClock sets the logical clock stamping trace records. Machines that
// share a recorder should share a clock
func WithClock(c *trace.Clock) Option {
	return func(m *Machine) {
		m.clock = c
	}
}

// WithID sets the machine's own ID, used as its observer ID when binding
// to input sources. Defaults to a generated UUIDv7
func WithID(id registry.ID) Option {
	return func(m *Machine) {
		m.id = id
	}
}

// New creates an empty, unactivated Machine owned by the component owner
func New(owner registry.ID, opts ...Option) *Machine {
	m := &Machine{
		owner:    owner,
		registry: registry.Default,
		states:   map[string]*state{},
		actions:  map[Lexeme]Action{},
	}
	for _, opt := range opts {
		opt(m)
	}
	if m.id == "" {
		m.id = registry.UUIDv7Generator{}.Generate()
	}
	if m.recorder != nil && m.clock == nil {
		m.clock = trace.NewClock()
	}
	return m
}

// ID returns the machine's own ID
func (m *Machine) ID() registry.ID {
	return m.id
}

// Owner returns the ID of the component owning the machine
func (m *Machine) Owner() registry.ID {
	return m.owner
}

// AddState adds a state. It fails on an empty or existing name
func (m *Machine) AddState(name string) bool {
	if name == "" || m.HasState(name) {
		return false
	}
	m.states[name] = &state{transitions: map[Lexeme]Transition{}}
	m.order = append(m.order, name)
	return true
}

// RemoveState removes a state, its outgoing transitions and every
// transition leading to it. The initial state pointer is left as is, so
// Activate fails until a new initial state is set
func (m *Machine) RemoveState(name string) bool {
	if !m.HasState(name) {
		return false
	}
	delete(m.states, name)
	m.order = slices.DeleteFunc(m.order, func(s string) bool {
		return s == name
	})
	for _, st := range m.states {
		for on, t := range st.transitions {
			if t.To == name {
				delete(st.transitions, on)
			}
		}
	}
	return true
}

// RenameState renames a state, rewriting every transition endpoint and
// the initial and current state pointers that referred to it
func (m *Machine) RenameState(oldName, newName string) bool {
	if !m.HasState(oldName) || newName == "" || m.HasState(newName) {
		return false
	}
	st := m.states[oldName]
	delete(m.states, oldName)
	m.states[newName] = st
	m.order[slices.Index(m.order, oldName)] = newName

	for name, s := range m.states {
		for on, t := range s.transitions {
			if t.To == oldName {
				t.To = newName
			}
			t.From = name
			s.transitions[on] = t
		}
	}
	if m.initial == oldName {
		m.initial = newName
	}
	if m.current == oldName {
		m.current = newName
	}
	return true
}

// HasState reports whether name is a state of the machine
func (m *Machine) HasState(name string) bool {
	_, ok := m.states[name]
	return ok
}

// States returns the state names in insertion order
func (m *Machine) States() []string {
	return slices.Clone(m.order)
}

// AddInput declares an input lexeme
func (m *Machine) AddInput(on Lexeme) bool {
	if on == "" || m.HasInput(on) {
		return false
	}
	m.inputs = append(m.inputs, on)
	return true
}

// HasInput reports whether on is in the input alphabet
func (m *Machine) HasInput(on Lexeme) bool {
	return on != "" && slices.Contains(m.inputs, on)
}

// Inputs returns the input alphabet in declaration order
func (m *Machine) Inputs() []Lexeme {
	return slices.Clone(m.inputs)
}

// AddOutput declares an output lexeme
func (m *Machine) AddOutput(out Lexeme) bool {
	if out == "" || m.HasOutput(out) {
		return false
	}
	m.outputs = append(m.outputs, out)
	return true
}

// HasOutput reports whether out is in the output alphabet
func (m *Machine) HasOutput(out Lexeme) bool {
	return out != "" && slices.Contains(m.outputs, out)
}

// Outputs returns the output alphabet in declaration order
func (m *Machine) Outputs() []Lexeme {
	return slices.Clone(m.outputs)
}

// AddTransition adds the transition from -on/output-> to. Both states
// must exist, on must be a declared input and output, when not empty, a
// declared output. A later call for the same (from, on) replaces the
// earlier transition
func (m *Machine) AddTransition(from, to string, on, output Lexeme) bool {
	if !m.HasState(from) || !m.HasState(to) || !m.HasInput(on) {
		return false
	}
	if output != "" && !m.HasOutput(output) {
		return false
	}
	m.states[from].transitions[on] = Transition{
		From: from, To: to, On: on, Output: output,
	}
	return true
}

// RemoveTransitionFrom removes the transition leaving from on input on
func (m *Machine) RemoveTransitionFrom(from string, on Lexeme) bool {
	st, ok := m.states[from]
	if !ok || !m.HasInput(on) {
		return false
	}
	if _, ok := st.transitions[on]; !ok {
		return false
	}
	delete(st.transitions, on)
	return true
}

// RemoveTransitionTo removes every transition on input on leading to to
func (m *Machine) RemoveTransitionTo(to string, on Lexeme) bool {
	if !m.HasState(to) || !m.HasInput(on) {
		return false
	}
	removed := false
	for _, st := range m.states {
		if t, ok := st.transitions[on]; ok && t.To == to {
			delete(st.transitions, on)
			removed = true
		}
	}
	return removed
}

// TransitionFrom returns the transition leaving from on input on
func (m *Machine) TransitionFrom(from string, on Lexeme) (Transition, bool) {
	st, ok := m.states[from]
	if !ok {
		return Transition{}, false
	}
	t, ok := st.transitions[on]
	return t, ok
}

// TransitionsFrom returns the transitions leaving from, in input order
func (m *Machine) TransitionsFrom(from string) []Transition {
	st, ok := m.states[from]
	if !ok {
		return nil
	}
	var res []Transition
	for _, on := range m.inputs {
		if t, ok := st.transitions[on]; ok {
			res = append(res, t)
		}
	}
	return res
}

// TransitionsTo returns the transitions leading to to, in state then
// input order
func (m *Machine) TransitionsTo(to string) []Transition {
	if !m.HasState(to) {
		return nil
	}
	var res []Transition
	for _, from := range m.order {
		for _, t := range m.TransitionsFrom(from) {
			if t.To == to {
				res = append(res, t)
			}
		}
	}
	return res
}

// Transitions returns every transition, in state then input order
func (m *Machine) Transitions() []Transition {
	var res []Transition
	for _, from := range m.order {
		res = append(res, m.TransitionsFrom(from)...)
	}
	return res
}

// SwitchStates swaps the places of two states in the graph: every
// transition entering or leaving a is rewired to b and vice versa, direct
// edges between them included. The initial state pointer follows. Applying
// it twice restores the original machine
func (m *Machine) SwitchStates(a, b string) bool {
	if a == b || !m.HasState(a) || !m.HasState(b) {
		return false
	}

	type key struct {
		from string
		on   Lexeme
	}
	seen := map[key]bool{}
	var captured []Transition
	collect := func(ts []Transition) {
		for _, t := range ts {
			k := key{t.From, t.On}
			if seen[k] {
				continue
			}
			seen[k] = true
			captured = append(captured, t)
		}
	}
	collect(m.TransitionsTo(a))
	collect(m.TransitionsFrom(a))
	collect(m.TransitionsTo(b))
	collect(m.TransitionsFrom(b))

	for _, t := range captured {
		delete(m.states[t.From].transitions, t.On)
	}

	swap := func(s string) string {
		switch s {
		case a:
			return b
		case b:
			return a
		default:
			return s
		}
	}
	for _, t := range captured {
		t.From, t.To = swap(t.From), swap(t.To)
		m.states[t.From].transitions[t.On] = t
	}

	switch m.initial {
	case a:
		m.initial = b
	case b:
		m.initial = a
	}
	return true
}

// SetInitialState designates the state entered by Activate. An empty name
// unsets it
func (m *Machine) SetInitialState(name string) bool {
	if name == "" {
		m.initial = ""
		return true
	}
	if !m.HasState(name) {
		return false
	}
	m.initial = name
	return true
}

// InitialState returns the initial state name
func (m *Machine) InitialState() string {
	return m.initial
}

// CurrentState returns the current state name, empty before activation
func (m *Machine) CurrentState() string {
	return m.current
}

// Active reports whether the machine is in one of its states
func (m *Machine) Active() bool {
	return m.HasState(m.current)
}

// SetOutput configures the action run when out is produced
func (m *Machine) SetOutput(out Lexeme, action Action) bool {
	if out == "" || action == nil {
		return false
	}
	m.actions[out] = action
	return true
}

// SetEntryOutput makes Activate produce out, as if the initial state had
// been entered through a transition carrying it. Empty disables it
func (m *Machine) SetEntryOutput(out Lexeme) {
	m.entryOutput = out
}

// EntryOutput returns the output produced by Activate
func (m *Machine) EntryOutput() Lexeme {
	return m.entryOutput
}

// Activate enters the initial state. It fails when no initial state is set
// or the initial state no longer exists
func (m *Machine) Activate() bool {
	if !m.HasState(m.initial) {
		slog.Debug("fsm activation failed",
			log.MachineID(m.id),
			log.State(m.initial),
		)
		return false
	}
	m.current = m.initial
	m.suspended = false
	m.record(trace.Record{
		Kind:   trace.KindActivate,
		To:     m.initial,
		Output: string(m.entryOutput),
	})
	if m.entryOutput != "" {
		m.runAction(m.entryOutput, Output{})
	}
	m.notifyEntered(m.initial)
	return true
}

// Notify feeds an input lexeme. It returns false, leaving the machine
// unchanged, when the machine is inactive or suspended or the current
// state has no transition on the input
func (m *Machine) Notify(on Lexeme, data any) bool {
	if m.suspended {
		return false
	}
	st, ok := m.states[m.current]
	if !ok {
		return false
	}
	t, ok := st.transitions[on]
	if !ok || !m.HasState(t.To) {
		return false
	}

	m.current = t.To
	m.record(trace.Record{
		Kind:   trace.KindCross,
		From:   t.From,
		To:     t.To,
		On:     string(on),
		Output: string(t.Output),
	})
	if t.Output != "" {
		m.runAction(t.Output, Output{On: on, Data: data})
	}
	m.notifyEntered(t.To)
	return true
}

// Suspend stops the machine from reacting to inputs without leaving its
// current state
func (m *Machine) Suspend() {
	m.suspended = true
}

// Resume undoes Suspend
func (m *Machine) Resume() {
	m.suspended = false
}

// Suspended reports whether inputs are currently ignored
func (m *Machine) Suspended() bool {
	return m.suspended
}

// Deactivate leaves the current state without touching the structure or
// the input bindings. Activate enters the initial state again
func (m *Machine) Deactivate() bool {
	if m.current == "" {
		return false
	}
	m.current = ""
	m.suspended = false
	return true
}

// OnEnter registers f to run after every state entry, the activation
// included, once the output action ran. Hooks survive Clear
func (m *Machine) OnEnter(f func(state string)) {
	if f != nil {
		m.entered = append(m.entered, f)
	}
}

// Clear releases every input binding and resets the machine to its empty,
// unactivated form. It is safe to call repeatedly
func (m *Machine) Clear() {
	m.unbindAll()
	wasActive := m.current != ""
	m.states = map[string]*state{}
	m.order = nil
	m.inputs = nil
	m.outputs = nil
	m.actions = map[Lexeme]Action{}
	m.initial = ""
	m.current = ""
	m.entryOutput = ""
	m.suspended = false
	if wasActive {
		m.record(trace.Record{Kind: trace.KindClear})
	}
}

// InitWithData populates the machine from explicit lists. Entries that
// violate the structural rules are ignored as they would be one by one
func (m *Machine) InitWithData(
	states []string, inputs, outputs []Lexeme, transitions []Transition,
) {
	for _, s := range states {
		m.AddState(s)
	}
	for _, in := range inputs {
		m.AddInput(in)
	}
	for _, out := range outputs {
		m.AddOutput(out)
	}
	for _, t := range transitions {
		m.AddTransition(t.From, t.To, t.On, t.Output)
	}
}

func (m *Machine) runAction(out Lexeme, o Output) {
	action, ok := m.actions[out]
	if !ok {
		return
	}
	defer func() {
		if r := recover(); r != nil {
			slog.Error("fsm output action panicked",
				log.MachineID(m.id),
				log.Lexeme(out),
				log.Recovered(r),
			)
		}
	}()
	action(o)
}

func (m *Machine) notifyEntered(name string) {
	for _, f := range slices.Clone(m.entered) {
		if m.current != name {
			return
		}
		f(name)
	}
}

func (m *Machine) record(r trace.Record) {
	if m.recorder == nil {
		return
	}
	r.Seq = m.clock.Next()
	r.Subject = string(m.id)
	m.recorder.Record(r)
}
