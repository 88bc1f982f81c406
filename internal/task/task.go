package task

import (
	"fmt"
	"log/slog"
	"reflect"

	"github.com/roach88/kinetic/internal/log"
)

// State is the lifecycle state of a Task.
type State int

const (
	// Stopped is the initial and terminal state.
	Stopped State = iota
	// Started means the task is running.
	Started
	// Paused means the task was interrupted and can be resumed by Start.
	Paused
)

// String returns a human-readable representation of the state.
func (s State) String() string {
	switch s {
	case Stopped:
		return "stopped"
	case Started:
		return "started"
	case Paused:
		return "paused"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

type (
	// Task is the Startable capability shared by every unit of work
	Task interface {
		Start(param any) bool
		Stop() bool
		Pause() bool
		State() State
		SetDelegate(Delegate)
		Delegate() Delegate
	}

	// Delegate is notified of a task's lifecycle transitions
	Delegate interface {
		TaskDidStop(Task)
		TaskDidPause(Task)
		TaskDidEnd(Task)
	}

	// DelegateFuncs adapts optional functions to Delegate
	DelegateFuncs struct {
		DidStop  func(Task)
		DidPause func(Task)
		DidEnd   func(Task)
	}

	// Step is a child of a composite with its optional start parameter.
	// A nil Param means the child receives the composite's parameter
	Step struct {
		Task  Task
		Param any
	}
)

// TaskDidStop implements Delegate
func (d DelegateFuncs) TaskDidStop(t Task) {
	if d.DidStop != nil {
		d.DidStop(t)
	}
}

// TaskDidPause implements Delegate
func (d DelegateFuncs) TaskDidPause(t Task) {
	if d.DidPause != nil {
		d.DidPause(t)
	}
}

// TaskDidEnd implements Delegate
func (d DelegateFuncs) TaskDidEnd(t Task) {
	if d.DidEnd != nil {
		d.DidEnd(t)
	}
}

// With binds a start parameter to a child task
func With(t Task, param any) Step {
	return Step{Task: t, Param: param}
}

// Of turns tasks into steps without their own parameter
func Of(tasks ...Task) []Step {
	res := make([]Step, 0, len(tasks))
	for _, t := range tasks {
		res = append(res, Step{Task: t})
	}
	return res
}

func (s Step) param(shared any) any {
	if s.Param != nil {
		return s.Param
	}
	return shared
}

// validSteps drops steps whose task is missing, logging a diagnostic
func validSteps(kind string, steps []Step) []Step {
	res := make([]Step, 0, len(steps))
	for i, s := range steps {
		if isNil(s.Task) {
			slog.Warn("invalid task dropped",
				slog.String("composite", kind),
				slog.Int("index", i),
			)
			continue
		}
		res = append(res, s)
	}
	return res
}

func isNil(t Task) bool {
	if t == nil {
		return true
	}
	v := reflect.ValueOf(t)
	switch v.Kind() {
	case reflect.Pointer, reflect.Map, reflect.Func, reflect.Interface,
		reflect.Slice, reflect.Chan:
		return v.IsNil()
	}
	return false
}

// Base holds the state and delegate every task needs. Embed it and pass
// the embedding task as self to the notify helpers
type Base struct {
	state    State
	delegate Delegate
}

// State returns the current lifecycle state
func (b *Base) State() State {
	return b.state
}

// SetDelegate replaces the delegate
func (b *Base) SetDelegate(d Delegate) {
	b.delegate = d
}

// Delegate returns the current delegate
func (b *Base) Delegate() Delegate {
	return b.delegate
}

// SetState changes the lifecycle state without notifying anyone
func (b *Base) SetState(s State) {
	b.state = s
}

// NotifyStop tells the delegate that self was stopped
func (b *Base) NotifyStop(self Task) {
	b.notify(self, "stop", Delegate.TaskDidStop)
}

// NotifyPause tells the delegate that self was paused
func (b *Base) NotifyPause(self Task) {
	b.notify(self, "pause", Delegate.TaskDidPause)
}

// NotifyEnd tells the delegate that self ran to completion
func (b *Base) NotifyEnd(self Task) {
	b.notify(self, "end", Delegate.TaskDidEnd)
}

func (b *Base) notify(self Task, what string, fn func(Delegate, Task)) {
	d := b.delegate
	if d == nil {
		return
	}
	defer func() {
		if r := recover(); r != nil {
			slog.Error("task delegate panicked",
				slog.String("notification", what),
				log.TaskState(b.state),
				log.Recovered(r),
			)
		}
	}()
	fn(d, self)
}
