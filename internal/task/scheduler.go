package task

import "time"

type (
	// Scheduler provides time and one-shot timers to timed tasks
	Scheduler interface {
		Now() time.Time
		AfterFunc(d time.Duration, f func()) Timer
	}

	// Timer is a pending AfterFunc call
	Timer interface {
		// Stop cancels the call. It returns false if the call already ran
		// or was already cancelled
		Stop() bool
	}

	// SystemScheduler uses the process clock. Its callbacks run on timer
	// goroutines; use a runloop.Loop to keep them on a single goroutine
	SystemScheduler struct{}
)

// Now implements Scheduler
func (SystemScheduler) Now() time.Time {
	return time.Now()
}

// AfterFunc implements Scheduler
func (SystemScheduler) AfterFunc(d time.Duration, f func()) Timer {
	return time.AfterFunc(d, f)
}
