package task_test

import (
	"github.com/roach88/kinetic/internal/task"
)

// probe is an Activity whose completion the test triggers by hand. Hand
// p.Activity to composites: delegates are notified with the Activity itself
type probe struct {
	*task.Activity
	done    func()
	params  []any
	cancels int
}

func newProbe() *probe {
	p := &probe{}
	p.Activity = task.NewActivity(func(param any, done func()) func() {
		p.params = append(p.params, param)
		p.done = done
		return func() { p.cancels++ }
	})
	return p
}

func (p *probe) finish() {
	p.done()
}

func (p *probe) starts() int {
	return len(p.params)
}

func probes(n int) []*probe {
	res := make([]*probe, n)
	for i := range res {
		res[i] = newProbe()
	}
	return res
}

func steps(ps []*probe) []task.Step {
	res := make([]task.Step, len(ps))
	for i, p := range ps {
		res[i] = task.Step{Task: p.Activity}
	}
	return res
}
