// Package task implements composable units of asynchronous work sharing
// one start/stop/pause contract.
//
// Every Task is in one of three states: Stopped (initial and terminal),
// Started or Paused. Start, Stop and Pause return false when the call does
// not apply to the current state. A task reports its own lifecycle to its
// Delegate: TaskDidStop and TaskDidPause when interrupted, TaskDidEnd when it
// ran to completion.
//
// COMPOSITES:
//   - Par starts every child at once and ends when all of them finished.
//   - Seq runs its children one after the other, tracking a cursor.
//
// A composite takes over the delegate slot of its children while running,
// so a child must not be shared live between two composites.
//
// LEAVES:
//   - Wait ends after a duration, honoring pause and resume.
//   - Activity adapts any callback-style asynchronous operation.
//
// Start, Stop, Pause and delegate calls run on the caller's goroutine and
// tasks hold no locks. Timer expirations are the exception: they fire
// through the Wait's Scheduler. The default SystemScheduler runs them on
// timer goroutines, so a Wait left on it must not be touched, or be part
// of a group, while it may expire. Hosts schedule on a runloop.Loop to
// keep expirations on the loop goroutine. Panics raised by delegates are
// recovered and logged.
package task
