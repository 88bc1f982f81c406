// Package runloop provides the single goroutine the engines run on.
//
// The fsm, dataflow and task engines assume a single-threaded cooperative
// host: every operation runs to completion before the next one starts. A
// Loop supplies that host in a Go program. Other goroutines hand work to it
// with Post; Run executes the work one function at a time, in FIFO order.
//
// Loop also implements task.Scheduler. Its timers fire by posting their
// callback onto the loop, so a Wait started on the loop also ends on it.
//
// ERROR HANDLING: a panic in a posted function is logged and the loop
// carries on with the next one ("log and continue").
package runloop
