package runloop

import (
	"context"
	"errors"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/roach88/kinetic/internal/log"
	"github.com/roach88/kinetic/internal/task"
)

// ErrStopped is returned by Do when the loop no longer accepts work
var ErrStopped = errors.New("runloop stopped")

// Loop runs posted functions on one goroutine
type Loop struct {
	queue *queue
}

var _ task.Scheduler = (*Loop)(nil)

// New creates a loop. Nothing runs until Run is called
func New() *Loop {
	return &Loop{queue: newQueue()}
}

// Post queues f. Safe to call from any goroutine, the loop's own
// included. It returns false once the loop is stopped
func (l *Loop) Post(f func()) bool {
	if f == nil {
		return false
	}
	return l.queue.push(f)
}

// Do runs f on the loop and waits for it to return
func (l *Loop) Do(ctx context.Context, f func()) error {
	done := make(chan struct{})
	if !l.Post(func() {
		defer close(done)
		f()
	}) {
		return ErrStopped
	}
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Len returns the number of functions waiting to run
func (l *Loop) Len() int {
	return l.queue.len()
}

// Run executes posted functions until the context is cancelled or Stop is
// called. After Stop, the functions already queued run before Run returns.
//
// CRITICAL: Must be called from exactly ONE goroutine.
func (l *Loop) Run(ctx context.Context) error {
	slog.Debug("runloop starting")

	for {
		if f, ok := l.queue.pop(); ok {
			l.run(f)
			continue
		}

		select {
		case <-ctx.Done():
			slog.Debug("runloop stopping: context cancelled")
			l.queue.close()
			return ctx.Err()

		case <-l.queue.wait():
			// the signal channel is closed by Stop, so this fires at
			// once when stopped
			if l.queue.isClosed() && l.queue.len() == 0 {
				slog.Debug("runloop stopping: stopped")
				return nil
			}
		}
	}
}

// Stop refuses further work and makes Run return once the queue drains
func (l *Loop) Stop() {
	l.queue.close()
}

func (l *Loop) run(f func()) {
	defer func() {
		if r := recover(); r != nil {
			slog.Error("runloop function panicked", log.Recovered(r))
		}
	}()
	f()
}

// Now implements task.Scheduler
func (l *Loop) Now() time.Time {
	return time.Now()
}

// AfterFunc implements task.Scheduler. f runs on the loop goroutine
func (l *Loop) AfterFunc(d time.Duration, f func()) task.Timer {
	t := &timer{}
	t.timer = time.AfterFunc(d, func() {
		l.Post(func() {
			if t.state.CompareAndSwap(pending, fired) {
				f()
			}
		})
	})
	return t
}

const (
	pending int32 = iota
	fired
	cancelled
)

type timer struct {
	timer *time.Timer
	state atomic.Int32
}

// Stop cancels the callback. It returns false if the callback already ran
// or was already cancelled. A callback already posted to the loop but not
// yet run is cancelled too
func (t *timer) Stop() bool {
	if !t.state.CompareAndSwap(pending, cancelled) {
		return false
	}
	t.timer.Stop()
	return true
}
