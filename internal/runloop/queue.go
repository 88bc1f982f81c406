package runloop

import "sync"

// queue is a thread-safe unbounded FIFO of functions.
//
// The queue is unbounded so that work posted from inside posted work, such
// as a task ending and starting the next one, never blocks the loop.
//
// The queue uses a channel for signaling to enable context-aware waiting
// in the Run loop.
type queue struct {
	mu     sync.Mutex
	items  []func()
	closed bool
	signal chan struct{} // buffered, size 1
}

func newQueue() *queue {
	return &queue{
		items:  make([]func(), 0, 64),
		signal: make(chan struct{}, 1),
	}
}

// push adds f to the back of the queue. It returns false once the queue is
// closed
func (q *queue) push(f func()) bool {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed {
		return false
	}
	q.items = append(q.items, f)

	// non-blocking: the buffer of 1 coalesces signals
	select {
	case q.signal <- struct{}{}:
	default:
	}
	return true
}

// pop removes the front function without blocking
func (q *queue) pop() (func(), bool) {
	q.mu.Lock()
	defer q.mu.Unlock()

	if len(q.items) == 0 {
		return nil, false
	}
	f := q.items[0]

	// release the closure for GC
	q.items[0] = nil
	if len(q.items) == 1 {
		q.items = q.items[:0]
	} else {
		q.items = q.items[1:]
	}
	return f, true
}

// wait returns a channel that signals when functions may be available. It
// is closed by close
func (q *queue) wait() <-chan struct{} {
	return q.signal
}

func (q *queue) len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.items)
}

func (q *queue) isClosed() bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.closed
}

// close refuses further pushes and wakes the waiter. Functions already
// queued are still handed out
func (q *queue) close() {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed {
		return
	}
	q.closed = true
	close(q.signal)
}
