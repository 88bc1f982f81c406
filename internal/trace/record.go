package trace

import (
	"fmt"
	"slices"
	"strings"
	"sync"
)

// Kind categorizes a trace record.
type Kind string

const (
	// KindActivate is recorded when a machine enters its initial state.
	KindActivate Kind = "activate"

	// KindCross is recorded for every transition crossed.
	KindCross Kind = "cross"

	// KindClear is recorded when a machine is cleared.
	KindClear Kind = "clear"

	// KindPropagate is recorded for every dataflow propagation pass.
	KindPropagate Kind = "propagate"
)

// Record is one traced engine step. Fields that do not apply to a kind are
// left empty.
type Record struct {
	Seq     int64  `json:"seq"`
	Kind    Kind   `json:"kind"`
	Subject string `json:"subject"`
	From    string `json:"from,omitempty"`
	To      string `json:"to,omitempty"`
	On      string `json:"on,omitempty"`
	Output  string `json:"output,omitempty"`
	Detail  string `json:"detail,omitempty"`
}

// Recorder receives trace records. Implementations must not call back into
// the engine that produced the record.
type Recorder interface {
	Record(Record)
}

// RecorderFunc adapts a function to Recorder.
type RecorderFunc func(Record)

// Record implements Recorder.
func (f RecorderFunc) Record(r Record) { f(r) }

// String renders a record on one line, e.g. "3 cross fsm-1 idle -press/boom-> armed"
func (r Record) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%d %s %s", r.Seq, r.Kind, r.Subject)
	switch r.Kind {
	case KindCross:
		label := r.On
		if r.Output != "" {
			label += "/" + r.Output
		}
		fmt.Fprintf(&b, " %s -%s-> %s", r.From, label, r.To)
	case KindActivate:
		fmt.Fprintf(&b, " -> %s", r.To)
		if r.Output != "" {
			fmt.Fprintf(&b, " /%s", r.Output)
		}
	}
	if r.Detail != "" {
		fmt.Fprintf(&b, " (%s)", r.Detail)
	}
	return b.String()
}

// Memory is an in-memory Recorder.
//
// Thread-safety: Memory is safe for concurrent use via internal mutex.
type Memory struct {
	mu      sync.Mutex
	records []Record
}

// NewMemory creates an empty in-memory recorder.
func NewMemory() *Memory {
	return &Memory{}
}

// Record appends r.
func (m *Memory) Record(r Record) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.records = append(m.records, r)
}

// Records returns a copy of everything recorded so far.
func (m *Memory) Records() []Record {
	m.mu.Lock()
	defer m.mu.Unlock()
	return slices.Clone(m.records)
}

// Kinds returns the records of the given kind.
func (m *Memory) Kinds(k Kind) []Record {
	m.mu.Lock()
	defer m.mu.Unlock()

	var res []Record
	for _, r := range m.records {
		if r.Kind == k {
			res = append(res, r)
		}
	}
	return res
}

// Reset discards all records.
func (m *Memory) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.records = nil
}

// Tee fans a record out to several recorders, skipping nil ones.
func Tee(rs ...Recorder) Recorder {
	return RecorderFunc(func(r Record) {
		for _, rec := range rs {
			if rec != nil {
				rec.Record(r)
			}
		}
	})
}
