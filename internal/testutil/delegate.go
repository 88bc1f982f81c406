package testutil

import (
	"fmt"
	"slices"
	"sync"

	"github.com/roach88/kinetic/internal/task"
)

// Notification is one lifecycle call received by a RecordingDelegate.
type Notification struct {
	Kind string // "stop" | "pause" | "end"
	Task task.Task
}

// RecordingDelegate is a task.Delegate that remembers every notification
// in arrival order.
//
// Thread-safety: RecordingDelegate is safe for concurrent use via internal
// mutex.
type RecordingDelegate struct {
	mu   sync.Mutex
	seen []Notification
}

// NewRecordingDelegate creates an empty recording delegate.
func NewRecordingDelegate() *RecordingDelegate {
	return &RecordingDelegate{}
}

// TaskDidStop implements task.Delegate.
func (d *RecordingDelegate) TaskDidStop(t task.Task) { d.add("stop", t) }

// TaskDidPause implements task.Delegate.
func (d *RecordingDelegate) TaskDidPause(t task.Task) { d.add("pause", t) }

// TaskDidEnd implements task.Delegate.
func (d *RecordingDelegate) TaskDidEnd(t task.Task) { d.add("end", t) }

// Notifications returns a copy of everything received.
func (d *RecordingDelegate) Notifications() []Notification {
	d.mu.Lock()
	defer d.mu.Unlock()
	return slices.Clone(d.seen)
}

// Kinds returns the kinds received, in order.
func (d *RecordingDelegate) Kinds() []string {
	d.mu.Lock()
	defer d.mu.Unlock()
	res := make([]string, len(d.seen))
	for i, n := range d.seen {
		res[i] = n.Kind
	}
	return res
}

// Count returns how many notifications of kind were received.
func (d *RecordingDelegate) Count(kind string) int {
	d.mu.Lock()
	defer d.mu.Unlock()
	n := 0
	for _, s := range d.seen {
		if s.Kind == kind {
			n++
		}
	}
	return n
}

// String renders the kinds, e.g. "[pause end]".
func (d *RecordingDelegate) String() string {
	return fmt.Sprint(d.Kinds())
}

func (d *RecordingDelegate) add(kind string, t task.Task) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.seen = append(d.seen, Notification{Kind: kind, Task: t})
}
