package testutil

import (
	"slices"
	"sync"
	"time"

	"github.com/roach88/kinetic/internal/task"
)

// ManualScheduler is a task.Scheduler whose time only moves when the test
// says so.
//
// Advance moves the clock forward and runs every timer that became due, in
// due-time order (creation order on ties), on the caller's goroutine. A
// timer created by a callback during Advance fires in the same call if it
// falls due within the advanced window.
//
// Thread-safety: All methods are safe for concurrent use via internal mutex,
// but callbacks always run on the goroutine calling Advance.
type ManualScheduler struct {
	mu     sync.Mutex
	now    time.Time
	seq    int
	timers []*manualTimer
}

type manualTimer struct {
	s       *ManualScheduler
	due     time.Time
	seq     int
	f       func()
	stopped bool
	fired   bool
}

// NewManualScheduler creates a scheduler whose clock starts at a fixed,
// arbitrary instant.
func NewManualScheduler() *ManualScheduler {
	return &ManualScheduler{
		now: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
	}
}

// Now returns the scheduler's current time.
func (s *ManualScheduler) Now() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.now
}

// AfterFunc schedules f to run once the clock has advanced by d.
func (s *ManualScheduler) AfterFunc(d time.Duration, f func()) task.Timer {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.seq++
	t := &manualTimer{s: s, due: s.now.Add(d), seq: s.seq, f: f}
	s.timers = append(s.timers, t)
	return t
}

// Advance moves the clock forward by d, firing due timers along the way.
// The clock reads each timer's due time while its callback runs.
func (s *ManualScheduler) Advance(d time.Duration) {
	s.mu.Lock()
	target := s.now.Add(d)
	s.mu.Unlock()

	for {
		t := s.nextDue(target)
		if t == nil {
			break
		}
		t.f()
	}

	s.mu.Lock()
	s.now = target
	s.mu.Unlock()
}

// Pending returns the number of timers neither fired nor stopped.
func (s *ManualScheduler) Pending() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.timers)
}

func (s *ManualScheduler) nextDue(target time.Time) *manualTimer {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.timers) == 0 {
		return nil
	}
	slices.SortStableFunc(s.timers, func(a, b *manualTimer) int {
		if c := a.due.Compare(b.due); c != 0 {
			return c
		}
		return a.seq - b.seq
	})
	t := s.timers[0]
	if t.due.After(target) {
		return nil
	}
	s.timers = s.timers[1:]
	t.fired = true
	if t.due.After(s.now) {
		s.now = t.due
	}
	return t
}

// Stop implements task.Timer.
func (t *manualTimer) Stop() bool {
	t.s.mu.Lock()
	defer t.s.mu.Unlock()

	if t.fired || t.stopped {
		return false
	}
	t.stopped = true
	t.s.timers = slices.DeleteFunc(t.s.timers, func(o *manualTimer) bool {
		return o == t
	})
	return true
}
