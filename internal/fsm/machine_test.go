package fsm

import (
	"fmt"
	"math/rand"
	"slices"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/kinetic/internal/registry"
	"github.com/roach88/kinetic/internal/trace"
)

// newSwitch builds idle -press-> armed -release/boom-> fired
func newSwitch(t *testing.T, opts ...Option) *Machine {
	t.Helper()
	opts = append([]Option{WithID("m"), WithRegistry(registry.New())}, opts...)
	m := New("owner", opts...)
	m.InitWithData(
		[]string{"idle", "armed", "fired"},
		[]Lexeme{"press", "release"},
		[]Lexeme{"boom"},
		[]Transition{
			{From: "idle", To: "armed", On: "press"},
			{From: "armed", To: "fired", On: "release", Output: "boom"},
		},
	)
	require.True(t, m.SetInitialState("idle"))
	return m
}

func TestMachine_New(t *testing.T) {
	m := New("owner")
	assert.Equal(t, registry.ID("owner"), m.Owner())
	assert.NotEmpty(t, m.ID())
	assert.False(t, m.Active())
	assert.Empty(t, m.CurrentState())
}

func TestMachine_RunsToFired(t *testing.T) {
	m := newSwitch(t)
	var booms []Output
	m.SetOutput("boom", func(o Output) { booms = append(booms, o) })

	require.True(t, m.Activate())
	assert.Equal(t, "idle", m.CurrentState())

	assert.True(t, m.Notify("press", nil))
	assert.Equal(t, "armed", m.CurrentState())
	assert.Empty(t, booms)

	assert.True(t, m.Notify("release", 42))
	assert.Equal(t, "fired", m.CurrentState())
	require.Len(t, booms, 1)
	assert.Equal(t, Output{On: "release", Data: 42}, booms[0])
}

func TestMachine_UnmatchedInputIgnored(t *testing.T) {
	m := newSwitch(t)
	m.Activate()

	assert.False(t, m.Notify("release", nil))
	assert.False(t, m.Notify("unknown", nil))
	assert.Equal(t, "idle", m.CurrentState())
}

func TestMachine_NotifyInactive(t *testing.T) {
	m := newSwitch(t)
	assert.False(t, m.Notify("press", nil))
	assert.Empty(t, m.CurrentState())
}

func TestMachine_ActionSeesNewState(t *testing.T) {
	m := newSwitch(t)
	var seen string
	m.SetOutput("boom", func(Output) { seen = m.CurrentState() })
	m.Activate()
	m.Notify("press", nil)
	m.Notify("release", nil)
	assert.Equal(t, "fired", seen)
}

func TestMachine_ActionPanicRecovered(t *testing.T) {
	m := newSwitch(t)
	m.SetOutput("boom", func(Output) { panic("bad action") })
	m.Activate()
	m.Notify("press", nil)

	assert.NotPanics(t, func() { m.Notify("release", nil) })
	assert.Equal(t, "fired", m.CurrentState())
}

func TestMachine_EntryOutput(t *testing.T) {
	m := newSwitch(t)
	m.SetEntryOutput("boom")
	fired := 0
	m.SetOutput("boom", func(o Output) {
		fired++
		assert.Empty(t, o.On)
	})

	m.Activate()
	assert.Equal(t, 1, fired)
	assert.Equal(t, Lexeme("boom"), m.EntryOutput())
}

func TestMachine_ActivateWithoutInitial(t *testing.T) {
	m := newSwitch(t)
	m.SetInitialState("")
	assert.False(t, m.Activate())

	assert.False(t, m.SetInitialState("nowhere"))
}

func TestMachine_Suspend(t *testing.T) {
	m := newSwitch(t)
	m.Activate()
	m.Suspend()
	assert.True(t, m.Suspended())
	assert.False(t, m.Notify("press", nil))
	assert.Equal(t, "idle", m.CurrentState())

	m.Resume()
	assert.True(t, m.Notify("press", nil))
}

func TestMachine_Deactivate(t *testing.T) {
	m := newSwitch(t)
	assert.False(t, m.Deactivate())
	m.Activate()
	m.Notify("press", nil)

	assert.True(t, m.Deactivate())
	assert.False(t, m.Active())
	assert.Len(t, m.Transitions(), 2, "structure is kept")

	m.Activate()
	assert.Equal(t, "idle", m.CurrentState())
}

func TestMachine_OnEnter(t *testing.T) {
	m := newSwitch(t)
	var entered []string
	m.OnEnter(func(s string) { entered = append(entered, s) })

	m.Activate()
	m.Notify("press", nil)
	m.Notify("press", nil)
	m.Notify("release", nil)
	assert.Equal(t, []string{"idle", "armed", "fired"}, entered)
}

// ============================================================================
// Structure
// ============================================================================

func TestMachine_AddStateRules(t *testing.T) {
	m := New("", WithID("m"))
	assert.True(t, m.AddState("a"))
	assert.False(t, m.AddState("a"))
	assert.False(t, m.AddState(""))
	assert.Equal(t, []string{"a"}, m.States())
}

func TestMachine_AlphabetRules(t *testing.T) {
	m := New("", WithID("m"))
	assert.True(t, m.AddInput("go"))
	assert.False(t, m.AddInput("go"))
	assert.False(t, m.AddInput(""))
	assert.True(t, m.AddOutput("beep"))
	assert.False(t, m.HasOutput(""))
	assert.Equal(t, []Lexeme{"go"}, m.Inputs())
	assert.Equal(t, []Lexeme{"beep"}, m.Outputs())
}

func TestMachine_AddTransitionRules(t *testing.T) {
	m := newSwitch(t)
	assert.False(t, m.AddTransition("idle", "nowhere", "press", ""))
	assert.False(t, m.AddTransition("nowhere", "idle", "press", ""))
	assert.False(t, m.AddTransition("idle", "fired", "shout", ""))
	assert.False(t, m.AddTransition("idle", "fired", "press", "bang"))

	// last write wins
	assert.True(t, m.AddTransition("idle", "fired", "press", "boom"))
	tr, ok := m.TransitionFrom("idle", "press")
	require.True(t, ok)
	assert.Equal(t, Transition{From: "idle", To: "fired", On: "press", Output: "boom"}, tr)
	assert.Len(t, m.TransitionsFrom("idle"), 1)
}

func TestMachine_RemoveTransitions(t *testing.T) {
	m := newSwitch(t)
	m.AddTransition("fired", "armed", "press", "")

	assert.False(t, m.RemoveTransitionFrom("idle", "release"))
	assert.True(t, m.RemoveTransitionFrom("idle", "press"))
	_, ok := m.TransitionFrom("idle", "press")
	assert.False(t, ok)

	assert.True(t, m.RemoveTransitionTo("armed", "press"))
	assert.Empty(t, m.TransitionsTo("armed"))
	assert.False(t, m.RemoveTransitionTo("armed", "press"))
}

func TestMachine_RemoveState(t *testing.T) {
	m := newSwitch(t)
	require.True(t, m.RemoveState("armed"))

	assert.Equal(t, []string{"idle", "fired"}, m.States())
	assert.Empty(t, m.Transitions(), "incoming and outgoing edges are gone")
	assert.False(t, m.RemoveState("armed"))

	m.RemoveState("idle")
	assert.Equal(t, "idle", m.InitialState(), "initial pointer dangles")
	assert.False(t, m.Activate())
}

func TestMachine_RenameState(t *testing.T) {
	m := newSwitch(t)
	m.Activate()

	require.True(t, m.RenameState("idle", "rest"))
	assert.False(t, m.RenameState("rest", "armed"))
	assert.False(t, m.RenameState("nowhere", "x"))

	assert.Equal(t, []string{"rest", "armed", "fired"}, m.States())
	assert.Equal(t, "rest", m.InitialState())
	assert.Equal(t, "rest", m.CurrentState())
	tr, ok := m.TransitionFrom("rest", "press")
	require.True(t, ok)
	assert.Equal(t, "rest", tr.From)
	assert.True(t, m.Notify("press", nil))
}

func TestMachine_RenameRewritesIncoming(t *testing.T) {
	m := newSwitch(t)
	m.RenameState("fired", "done")
	tr, _ := m.TransitionFrom("armed", "release")
	assert.Equal(t, "done", tr.To)
}

func TestMachine_SwitchStates(t *testing.T) {
	m := newSwitch(t)
	m.AddTransition("armed", "armed", "press", "")

	require.True(t, m.SwitchStates("idle", "armed"))
	assert.Equal(t, "armed", m.InitialState())
	assert.ElementsMatch(t, []Transition{
		{From: "armed", To: "idle", On: "press"},
		{From: "idle", To: "idle", On: "press"},
		{From: "idle", To: "fired", On: "release", Output: "boom"},
	}, m.Transitions())
}

func TestMachine_SwitchStatesIsAnInvolution(t *testing.T) {
	m := newSwitch(t)
	m.AddTransition("armed", "idle", "press", "")
	m.AddTransition("fired", "fired", "press", "boom")
	m.AddTransition("idle", "idle", "release", "")
	before := m.Transitions()

	for _, pair := range [][2]string{{"idle", "armed"}, {"armed", "fired"}, {"idle", "fired"}} {
		require.True(t, m.SwitchStates(pair[0], pair[1]))
		require.True(t, m.SwitchStates(pair[0], pair[1]))
		assert.Equal(t, before, m.Transitions(), "%v", pair)
		assert.Equal(t, "idle", m.InitialState())
	}
}

// randomMachine builds a machine with a random transition table drawn from
// seed, self-loops and edges in both directions included
func randomMachine(t *testing.T, seed int64) (*Machine, *rand.Rand) {
	t.Helper()
	r := rand.New(rand.NewSource(seed))
	m := New("owner", WithID("m"), WithRegistry(registry.New()))

	states := make([]string, 2+r.Intn(5))
	for i := range states {
		states[i] = fmt.Sprintf("s%d", i)
		require.True(t, m.AddState(states[i]))
	}
	inputs := make([]Lexeme, 1+r.Intn(3))
	for i := range inputs {
		inputs[i] = Lexeme(fmt.Sprintf("i%d", i))
		require.True(t, m.AddInput(inputs[i]))
	}
	outputs := []Lexeme{"", "o1", "o2"}
	m.AddOutput("o1")
	m.AddOutput("o2")

	for _, from := range states {
		for _, on := range inputs {
			if r.Intn(3) == 0 {
				continue
			}
			to := states[r.Intn(len(states))]
			require.True(t, m.AddTransition(from, to, on, outputs[r.Intn(len(outputs))]))
		}
	}
	require.True(t, m.SetInitialState(states[r.Intn(len(states))]))
	return m, r
}

func TestMachine_SwitchStatesRandomTables(t *testing.T) {
	for seed := int64(1); seed <= 25; seed++ {
		t.Run(fmt.Sprintf("seed_%d", seed), func(t *testing.T) {
			m, r := randomMachine(t, seed)
			states := m.States()
			a := states[r.Intn(len(states))]
			b := states[r.Intn(len(states))]
			if a == b {
				b = states[(slices.Index(states, a)+1)%len(states)]
			}
			swap := func(s string) string {
				switch s {
				case a:
					return b
				case b:
					return a
				}
				return s
			}

			before := m.Transitions()
			initial := m.InitialState()
			var want []Transition
			for _, tr := range before {
				tr.From, tr.To = swap(tr.From), swap(tr.To)
				want = append(want, tr)
			}

			require.True(t, m.SwitchStates(a, b))
			assert.ElementsMatch(t, want, m.Transitions(), "%s <-> %s", a, b)
			assert.Equal(t, swap(initial), m.InitialState())

			require.True(t, m.SwitchStates(a, b))
			assert.Equal(t, before, m.Transitions(), "%s <-> %s", a, b)
			assert.Equal(t, initial, m.InitialState())
		})
	}
}

func TestMachine_SwitchStatesRejects(t *testing.T) {
	m := newSwitch(t)
	assert.False(t, m.SwitchStates("idle", "idle"))
	assert.False(t, m.SwitchStates("idle", "nowhere"))
}

func TestMachine_ClearIsIdempotent(t *testing.T) {
	mem := trace.NewMemory()
	m := newSwitch(t, WithRecorder(mem))
	m.SetOutput("boom", func(Output) {})
	m.Activate()

	m.Clear()
	m.Clear()
	assert.Empty(t, m.States())
	assert.Empty(t, m.Inputs())
	assert.Empty(t, m.Outputs())
	assert.Empty(t, m.InitialState())
	assert.False(t, m.Active())
	assert.Len(t, mem.Kinds(trace.KindClear), 1)
}

func TestMachine_Trace(t *testing.T) {
	mem := trace.NewMemory()
	m := newSwitch(t, WithRecorder(mem), WithClock(trace.NewClock()))
	m.Activate()
	m.Notify("press", nil)
	m.Notify("release", nil)
	m.Notify("press", nil)

	var lines []string
	for _, r := range mem.Records() {
		lines = append(lines, r.String())
	}
	assert.Equal(t, []string{
		"1 activate m -> idle",
		"2 cross m idle -press-> armed",
		"3 cross m armed -release/boom-> fired",
	}, lines)
}
