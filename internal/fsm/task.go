package fsm

import (
	"slices"

	"github.com/roach88/kinetic/internal/task"
)

// MachineTask runs a Machine as a task.Task. Starting it activates the
// machine; the task ends when the machine enters one of its final states.
//
// Pausing suspends the machine in its current state and the next Start
// resumes it there. Stopping deactivates the machine, so the next Start
// begins again from the initial state.
type MachineTask struct {
	task.Base
	machine *Machine
	final   []string
}

// NewMachineTask wraps m. With no final state the task only ends through
// Stop
func NewMachineTask(m *Machine, final ...string) *MachineTask {
	t := &MachineTask{machine: m, final: final}
	m.OnEnter(t.entered)
	return t
}

// Machine returns the wrapped machine
func (t *MachineTask) Machine() *Machine {
	return t.machine
}

// Start activates the machine, or resumes it when paused. The parameter is
// ignored
func (t *MachineTask) Start(any) bool {
	switch t.State() {
	case task.Started:
		return false
	case task.Paused:
		t.SetState(task.Started)
		t.machine.Resume()
		return true
	}
	t.SetState(task.Started)
	if !t.machine.Activate() {
		t.SetState(task.Stopped)
		return false
	}
	return true
}

// Stop deactivates the machine
func (t *MachineTask) Stop() bool {
	if t.State() == task.Stopped {
		return false
	}
	t.SetState(task.Stopped)
	t.machine.Deactivate()
	t.NotifyStop(t)
	return true
}

// Pause suspends the machine
func (t *MachineTask) Pause() bool {
	if t.State() != task.Started {
		return false
	}
	t.SetState(task.Paused)
	t.machine.Suspend()
	t.NotifyPause(t)
	return true
}

func (t *MachineTask) entered(state string) {
	if t.State() != task.Started || !slices.Contains(t.final, state) {
		return
	}
	t.SetState(task.Stopped)
	t.NotifyEnd(t)
}
