package cli

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/roach88/kinetic/internal/fsm"
	"github.com/roach88/kinetic/internal/log"
	"github.com/roach88/kinetic/internal/registry"
	"github.com/roach88/kinetic/internal/runloop"
	"github.com/roach88/kinetic/internal/store"
	"github.com/roach88/kinetic/internal/task"
	"github.com/roach88/kinetic/internal/trace"
)

// RunOptions holds flags for the run command.
type RunOptions struct {
	*RootOptions
	Inputs   []string
	Database string
	Subject  string
	Interval time.Duration

	// Generator names the run when neither --id nor the definition does.
	// If nil, defaults to UUIDv7Generator.
	Generator registry.Generator
}

// RunResult is the outcome of the run command
type RunResult struct {
	Subject string         `json:"subject"`
	Final   string         `json:"final"`
	Ended   bool           `json:"ended"`
	Steps   []RunStep      `json:"steps"`
	Trace   []trace.Record `json:"trace"`
}

// RunStep is one input fed to the machine
type RunStep struct {
	Input   string   `json:"input"`
	Crossed bool     `json:"crossed"`
	State   string   `json:"state"`
	Outputs []string `json:"outputs,omitempty"`
}

// Text implements Texter
func (r RunResult) Text() string {
	var b strings.Builder
	for _, rec := range r.Trace {
		fmt.Fprintln(&b, rec)
	}
	for _, s := range r.Steps {
		if !s.Crossed {
			fmt.Fprintf(&b, "ignored %s in %s\n", s.Input, s.State)
		}
	}
	fmt.Fprintf(&b, "final: %s", r.Final)
	if r.Ended {
		b.WriteString(" (ended)")
	}
	b.WriteString("\n")
	return b.String()
}

// NewRunCommand creates the run command.
func NewRunCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &RunOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "run <definition>",
		Short: "Feed inputs to a machine",
		Long: `Build a machine from a definition, activate it and feed it inputs in
order on a single event loop. Inputs without a transition from the
current state are ignored. With --interval the loop waits between inputs.
With --db every trace record is journaled to SQLite.

Examples:
  kinetic run door.yaml --input pull,push,pull
  kinetic run door.yaml --input pull,push --interval 500ms --db ./kinetic.db`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runMachine(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringSliceVar(&opts.Inputs, "input", nil, "comma-separated inputs to feed")
	cmd.Flags().StringVar(&opts.Database, "db", "", "journal the trace to this SQLite database")
	cmd.Flags().StringVar(&opts.Subject, "id", "", "machine ID (defaults to the definition name)")
	cmd.Flags().DurationVar(&opts.Interval, "interval", 0, "pause between inputs")

	return cmd
}

func runMachine(opts *RunOptions, path string, cmd *cobra.Command) error {
	f := newFormatter(opts.RootOptions, cmd)

	def, err := loadDefinition(f, path)
	if err != nil {
		return err
	}
	if err := def.Validate(); err != nil {
		msg := fmt.Sprintf("%s is not a valid definition", path)
		if outErr := f.Error(ErrCodeInvalid, msg, nil, err.Error()); outErr != nil {
			return outErr
		}
		return WrapExitError(ExitFailure, msg, err)
	}

	id := registry.ID(opts.Subject)
	if id == "" {
		id = registry.ID(def.Name)
	}
	if id == "" {
		gen := opts.Generator
		if gen == nil {
			gen = registry.UUIDv7Generator{}
		}
		id = gen.Generate()
	}

	ctx, cancel := signalContext(cmd.Context())
	defer cancel()

	mem := trace.NewMemory()
	var rec trace.Recorder = mem
	clock := trace.NewClock()
	if opts.Database != "" {
		st, err := store.Open(opts.Database)
		if err != nil {
			return WrapExitError(ExitCommandError, "failed to open database", err)
		}
		defer func() {
			if closeErr := st.Close(); closeErr != nil {
				slog.Error("error closing database", log.Error(closeErr))
			}
		}()
		last, err := st.MaxSeq(ctx)
		if err != nil {
			return WrapExitError(ExitCommandError, "failed to read journal", err)
		}
		clock = trace.NewClockAt(last)
		rec = trace.Tee(mem, st.Recorder(ctx))
	}

	m, err := def.Build(id,
		fsm.WithID(id),
		fsm.WithRegistry(registry.New()),
		fsm.WithRecorder(rec),
		fsm.WithClock(clock),
	)
	if err != nil {
		return WrapExitError(ExitFailure, "failed to build machine", err)
	}

	result := RunResult{Subject: string(id), Steps: []RunStep{}}
	var produced []string
	for _, out := range m.Outputs() {
		m.SetOutput(out, func(fsm.Output) {
			produced = append(produced, string(out))
		})
	}

	loop := runloop.New()
	machine := fsm.NewMachineTask(m, def.Final...)
	machine.SetDelegate(task.DelegateFuncs{
		DidEnd: func(task.Task) { result.Ended = true },
	})

	activated := false
	steps := []task.Step{{Task: task.NewActivity(func(_ any, done func()) func() {
		if !machine.Start(nil) {
			loop.Stop()
			return nil
		}
		activated = true
		done()
		return nil
	})}}
	for i, in := range opts.Inputs {
		if i > 0 && opts.Interval > 0 {
			steps = append(steps, task.Step{
				Task: task.NewWait(opts.Interval, task.WithScheduler(loop)),
			})
		}
		steps = append(steps, task.Step{Task: feed(m, fsm.Lexeme(in), &result, &produced)})
	}

	script := task.NewSeq(steps...)
	script.SetDelegate(task.DelegateFuncs{
		DidEnd: func(task.Task) { loop.Stop() },
	})
	loop.Post(func() {
		if !script.Start(nil) {
			loop.Stop()
		}
	})

	slog.Debug("running machine",
		log.MachineID(id),
		slog.Int("inputs", len(opts.Inputs)),
		slog.Duration("interval", opts.Interval),
	)
	if err := loop.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		return WrapExitError(ExitFailure, "run loop failed", err)
	}
	if !activated {
		return NewExitError(ExitFailure, fmt.Sprintf("machine %s could not be activated", id))
	}

	result.Final = m.CurrentState()
	result.Trace = mem.Records()
	return f.Success(result)
}

// feed is the step notifying the machine of one input
func feed(m *fsm.Machine, on fsm.Lexeme, result *RunResult, produced *[]string) task.Task {
	return task.NewActivity(func(_ any, done func()) func() {
		*produced = nil
		crossed := m.Notify(on, nil)
		result.Steps = append(result.Steps, RunStep{
			Input:   string(on),
			Crossed: crossed,
			State:   m.CurrentState(),
			Outputs: *produced,
		})
		done()
		return nil
	})
}

// signalContext is cancelled on SIGINT/SIGTERM or when parent is done
func signalContext(parent context.Context) (context.Context, context.CancelFunc) {
	if parent == nil {
		parent = context.Background()
	}
	ctx, cancel := context.WithCancel(parent)

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	go func() {
		defer signal.Stop(sigChan)
		select {
		case sig := <-sigChan:
			slog.Info("received signal, shutting down", slog.String("signal", sig.String()))
			cancel()
		case <-ctx.Done():
		}
	}()
	return ctx, cancel
}
