package task

import "slices"

// Par is a parallel group: starting it starts every child, and it ends
// once each child has finished. A child that is stopped or paused on its
// own counts as finished; the group does not care why a child is done.
type Par struct {
	Base
	steps       []Step
	done        []bool
	outstanding int
	param       any
}

// NewPar creates a parallel group. Steps without a task are dropped
func NewPar(steps ...Step) *Par {
	return &Par{steps: validSteps("par", steps)}
}

// SetSteps replaces the children. It fails unless the group is stopped
func (p *Par) SetSteps(steps ...Step) bool {
	if p.state != Stopped {
		return false
	}
	p.steps = validSteps("par", steps)
	return true
}

// Steps returns the children
func (p *Par) Steps() []Step {
	return slices.Clone(p.steps)
}

// Outstanding returns how many children have not finished yet
func (p *Par) Outstanding() int {
	return p.outstanding
}

// Start starts every child with its own parameter, or param when it has
// none. Starting a paused group resumes the children that had not finished,
// with the parameter of the original start
func (p *Par) Start(param any) bool {
	if p.state == Started {
		return false
	}
	if p.state == Stopped {
		p.param = param
		p.done = make([]bool, len(p.steps))
		p.outstanding = len(p.steps)
	}
	p.state = Started
	if p.outstanding == 0 {
		p.state = Stopped
		p.NotifyEnd(p)
		return true
	}
	for i, s := range p.steps {
		if p.state != Started {
			break
		}
		if p.done[i] {
			continue
		}
		s.Task.SetDelegate(p)
		s.Task.Start(s.param(p.param))
	}
	return true
}

// Stop stops the children still running and reports TaskDidStop once
func (p *Par) Stop() bool {
	if p.state == Stopped {
		return false
	}
	p.state = Stopped
	for i, s := range p.steps {
		if !p.done[i] {
			s.Task.Stop()
		}
	}
	p.outstanding = 0
	p.NotifyStop(p)
	return true
}

// Pause pauses the children still running and reports TaskDidPause once
func (p *Par) Pause() bool {
	if p.state != Started {
		return false
	}
	p.state = Paused
	for i, s := range p.steps {
		if !p.done[i] {
			s.Task.Pause()
		}
	}
	p.NotifyPause(p)
	return true
}

// TaskDidStop implements Delegate
func (p *Par) TaskDidStop(t Task) {
	p.childDone(t)
}

// TaskDidPause implements Delegate
func (p *Par) TaskDidPause(t Task) {
	p.childDone(t)
}

// TaskDidEnd implements Delegate
func (p *Par) TaskDidEnd(t Task) {
	p.childDone(t)
}

// childDone counts a child out. Notifications caused by the group's own
// Stop or Pause arrive while it is no longer started and are ignored
func (p *Par) childDone(t Task) {
	if p.state != Started {
		return
	}
	i := slices.IndexFunc(p.steps, func(s Step) bool { return s.Task == t })
	if i < 0 || p.done[i] {
		return
	}
	p.done[i] = true
	p.outstanding--
	if p.outstanding == 0 {
		p.state = Stopped
		p.NotifyEnd(p)
	}
}
