package task

// Run starts an asynchronous operation. It must call done once the
// operation completes and may return a function cancelling it (or nil)
type Run func(param any, done func()) (cancel func())

// Activity is an atomic task wrapping a callback-style operation, such as
// an animation or a transport request.
//
// Pausing an activity cancels the operation; starting it again re-runs it
// with the parameter of the original start.
type Activity struct {
	Base
	run    Run
	cancel func()
	param  any
	runs   uint64
}

// NewActivity creates an Activity
func NewActivity(run Run) *Activity {
	return &Activity{run: run}
}

// Start runs the operation
func (a *Activity) Start(param any) bool {
	if a.state == Started || a.run == nil {
		return false
	}
	if a.state == Stopped {
		a.param = param
	}
	a.state = Started
	a.runs++
	gen := a.runs
	cancel := a.run(a.param, func() { a.finish(gen) })
	if a.state == Started && a.runs == gen {
		a.cancel = cancel
	}
	return true
}

// Stop cancels the operation
func (a *Activity) Stop() bool {
	if a.state == Stopped {
		return false
	}
	a.abort()
	a.state = Stopped
	a.NotifyStop(a)
	return true
}

// Pause cancels the operation, keeping its parameter for the next start
func (a *Activity) Pause() bool {
	if a.state != Started {
		return false
	}
	a.abort()
	a.state = Paused
	a.NotifyPause(a)
	return true
}

// finish is the done callback handed to run. Late or repeated calls are
// ignored
func (a *Activity) finish(gen uint64) {
	if gen != a.runs || a.state != Started {
		return
	}
	a.cancel = nil
	a.state = Stopped
	a.NotifyEnd(a)
}

func (a *Activity) abort() {
	a.runs++
	if c := a.cancel; c != nil {
		a.cancel = nil
		c()
	}
}
