package task

import "time"

// Wait is a task that ends after a duration. Pausing it keeps the time
// left; starting it again waits only for that remainder. Stopping it
// rewinds to the full duration.
type Wait struct {
	Base
	duration  time.Duration
	remaining time.Duration
	startedAt time.Time
	scheduler Scheduler
	timer     Timer
	armed     uint64
}

// WaitOption configures a Wait
type WaitOption func(*Wait)

// WithScheduler sets the time source and timer factory
func WithScheduler(s Scheduler) WaitOption {
	return func(w *Wait) {
		w.scheduler = s
	}
}

// NewWait creates a Wait of duration d. Without WithScheduler it uses
// SystemScheduler and ends on a timer goroutine
func NewWait(d time.Duration, opts ...WaitOption) *Wait {
	w := &Wait{
		duration:  d,
		remaining: d,
		scheduler: SystemScheduler{},
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Duration returns the full duration
func (w *Wait) Duration() time.Duration {
	return w.duration
}

// SetDuration changes the full duration. It fails unless the task is
// stopped
func (w *Wait) SetDuration(d time.Duration) bool {
	if w.state != Stopped || d < 0 {
		return false
	}
	w.duration = d
	w.remaining = d
	return true
}

// Remaining returns the time left as of the last start or pause
func (w *Wait) Remaining() time.Duration {
	return w.remaining
}

// Start arms the timer for the full duration, or for the remainder when
// resuming from pause. The parameter is ignored
func (w *Wait) Start(any) bool {
	if w.state == Started {
		return false
	}
	if w.state == Stopped {
		w.remaining = w.duration
	}
	w.state = Started
	w.startedAt = w.scheduler.Now()
	w.armed++
	gen := w.armed
	w.timer = w.scheduler.AfterFunc(w.remaining, func() {
		w.expire(gen)
	})
	return true
}

// Stop cancels the timer and rewinds to the full duration
func (w *Wait) Stop() bool {
	if w.state == Stopped {
		return false
	}
	w.cancel()
	w.state = Stopped
	w.remaining = w.duration
	w.NotifyStop(w)
	return true
}

// Pause cancels the timer and keeps the time left
func (w *Wait) Pause() bool {
	if w.state != Started {
		return false
	}
	elapsed := w.scheduler.Now().Sub(w.startedAt)
	w.remaining = max(w.remaining-elapsed, 0)
	w.cancel()
	w.state = Paused
	w.NotifyPause(w)
	return true
}

// expire runs when the timer fires. A stale firing, one already queued
// when the timer was cancelled, is ignored
func (w *Wait) expire(gen uint64) {
	if gen != w.armed || w.state != Started {
		return
	}
	w.timer = nil
	w.state = Stopped
	w.remaining = w.duration
	w.NotifyEnd(w)
}

// cancel stops the in-flight timer. Calling it with no timer armed is a
// no-op
func (w *Wait) cancel() {
	w.armed++
	if w.timer == nil {
		return
	}
	w.timer.Stop()
	w.timer = nil
}
