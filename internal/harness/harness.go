package harness

import (
	"context"
	"fmt"
	"log/slog"
	"slices"

	"github.com/roach88/kinetic/internal/fsm"
	"github.com/roach88/kinetic/internal/log"
	"github.com/roach88/kinetic/internal/registry"
	"github.com/roach88/kinetic/internal/store"
	"github.com/roach88/kinetic/internal/task"
	"github.com/roach88/kinetic/internal/trace"
)

// Result is the outcome of one scenario run
type Result struct {
	Name       string
	Pass       bool
	FinalState string
	Ended      bool
	Outputs    []OutputEvent
	Trace      []trace.Record
	Errors     []string
}

// OutputEvent is one output produced during the run. Step is the index of
// the flow step that produced it, -1 for the entry output
type OutputEvent struct {
	Step   int    `json:"step"`
	Output string `json:"output"`
	On     string `json:"on,omitempty"`
}

// Run executes a scenario against a fresh machine. Every run uses its own
// registry and logical clock, so traces are reproducible
func Run(s *Scenario) (*Result, error) {
	return RunContext(context.Background(), s, nil)
}

// RunContext is Run with the trace also journaled into st. A nil store
// keeps the trace in memory only
func RunContext(ctx context.Context, s *Scenario, st *store.Store) (*Result, error) {
	def, err := fsm.LoadDefinition(s.Definition)
	if err != nil {
		return nil, err
	}
	if err := def.Validate(); err != nil {
		return nil, fmt.Errorf("invalid definition %s: %w", s.Definition, err)
	}

	mem := trace.NewMemory()
	var rec trace.Recorder = mem
	if st != nil {
		rec = trace.Tee(mem, st.Recorder(ctx))
	}

	id := registry.ID(s.Name)
	m, err := def.Build(id,
		fsm.WithID(id),
		fsm.WithRegistry(registry.New()),
		fsm.WithRecorder(rec),
	)
	if err != nil {
		return nil, err
	}

	result := &Result{Name: s.Name}
	step := -1
	for _, out := range m.Outputs() {
		m.SetOutput(out, func(o fsm.Output) {
			result.Outputs = append(result.Outputs, OutputEvent{
				Step:   step,
				Output: string(out),
				On:     string(o.On),
			})
		})
	}

	runner := fsm.NewMachineTask(m, def.Final...)
	runner.SetDelegate(task.DelegateFuncs{
		DidEnd: func(task.Task) { result.Ended = true },
	})
	if !runner.Start(nil) {
		return nil, fmt.Errorf("machine %s could not be activated", s.Name)
	}

	for i, fs := range s.Flow {
		step = i
		before := len(result.Outputs)
		crossed := m.Notify(fsm.Lexeme(fs.Input), fs.Data)
		slog.Debug("scenario step",
			log.MachineID(id),
			log.Lexeme(fs.Input),
			log.State(m.CurrentState()),
			slog.Bool("crossed", crossed),
		)
		if fs.Expect != nil {
			result.Errors = append(result.Errors,
				checkStep(i, fs.Expect, crossed, m.CurrentState(),
					result.Outputs[before:])...)
		}
	}

	result.FinalState = m.CurrentState()
	result.Trace = mem.Records()
	result.Errors = append(result.Errors, EvaluateAssertions(result, s.Assertions)...)
	result.Pass = len(result.Errors) == 0
	return result, nil
}

func checkStep(
	i int, e *ExpectClause, crossed bool, state string, produced []OutputEvent,
) []string {
	var errs []string
	if e.Ignored && crossed {
		errs = append(errs, fmt.Sprintf(
			"flow[%d]: expected input to be ignored, machine moved to %q", i, state))
	}
	if !e.Ignored && !crossed && e.State != "" {
		errs = append(errs, fmt.Sprintf(
			"flow[%d]: expected a transition, input was ignored", i))
	}
	if e.State != "" && e.State != state {
		errs = append(errs, fmt.Sprintf(
			"flow[%d]: expected state %q, got %q", i, e.State, state))
	}
	if len(e.Outputs) > 0 {
		got := make([]string, 0, len(produced))
		for _, o := range produced {
			got = append(got, o.Output)
		}
		if !slices.Equal(e.Outputs, got) {
			errs = append(errs, fmt.Sprintf(
				"flow[%d]: expected outputs %v, got %v", i, e.Outputs, got))
		}
	}
	return errs
}
