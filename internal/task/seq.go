package task

import "slices"

// Seq is a sequential group: it runs one child at a time, in order, and
// ends after the last one ended.
//
// The cursor is the index of the next child to start. While the sequence
// is started the running child sits just before the cursor; stopping or
// pausing rewinds the cursor onto it, so the next Start runs (or resumes)
// that same child.
type Seq struct {
	Base
	steps []Step
	next  int
	param any
}

// NewSeq creates a sequential group. Steps without a task are dropped
func NewSeq(steps ...Step) *Seq {
	return &Seq{steps: validSteps("seq", steps)}
}

// SetSteps replaces the children and resets the cursor. It fails unless
// the sequence is stopped
func (s *Seq) SetSteps(steps ...Step) bool {
	if s.state != Stopped {
		return false
	}
	s.steps = validSteps("seq", steps)
	s.next = 0
	return true
}

// Steps returns the children
func (s *Seq) Steps() []Step {
	return slices.Clone(s.steps)
}

// Cursor returns the index of the next child to start
func (s *Seq) Cursor() int {
	return s.next
}

// Start runs the child under the cursor with its own parameter, or param
// when it has none. The same param is passed to the following children as
// the sequence advances
func (s *Seq) Start(param any) bool {
	if s.state == Started {
		return false
	}
	s.param = param
	s.state = Started
	s.advance()
	return true
}

// Stop stops the running child and leaves the cursor on it
func (s *Seq) Stop() bool {
	if s.state == Stopped {
		return false
	}
	prev := s.state
	s.state = Stopped
	if prev == Started && s.next > 0 {
		s.next--
	}
	if s.next < len(s.steps) {
		s.steps[s.next].Task.Stop()
	}
	s.NotifyStop(s)
	return true
}

// Pause pauses the running child and rewinds the cursor onto it. Pausing a
// sequence that is not started does nothing, so the cursor is rewound
// exactly once per pause
func (s *Seq) Pause() bool {
	if s.state != Started || s.next == 0 {
		return false
	}
	s.state = Paused
	s.next--
	s.steps[s.next].Task.Pause()
	s.NotifyPause(s)
	return true
}

// TaskDidEnd implements Delegate. It advances to the next child or ends
// the sequence
func (s *Seq) TaskDidEnd(t Task) {
	if !s.isRunning(t) {
		return
	}
	if s.next < len(s.steps) {
		s.advance()
		return
	}
	s.state = Stopped
	s.next = 0
	s.NotifyEnd(s)
}

// TaskDidStop implements Delegate. A child stopping on its own stops the
// sequence with the cursor left on that child
func (s *Seq) TaskDidStop(t Task) {
	if !s.isRunning(t) {
		return
	}
	s.state = Stopped
	s.next--
	s.NotifyStop(s)
}

// TaskDidPause implements Delegate. A child pausing on its own pauses the
// sequence
func (s *Seq) TaskDidPause(t Task) {
	if !s.isRunning(t) {
		return
	}
	s.state = Paused
	s.next--
	s.NotifyPause(s)
}

func (s *Seq) advance() {
	if s.next >= len(s.steps) {
		s.state = Stopped
		s.next = 0
		s.NotifyEnd(s)
		return
	}
	step := s.steps[s.next]
	s.next++
	step.Task.SetDelegate(s)
	step.Task.Start(step.param(s.param))
}

// isRunning reports whether t is the child the sequence is waiting on
func (s *Seq) isRunning(t Task) bool {
	return s.state == Started && s.next > 0 && s.steps[s.next-1].Task == t
}
