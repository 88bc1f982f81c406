package harness

import (
	"fmt"
	"strings"

	"github.com/roach88/kinetic/internal/trace"
)

// AssertionError describes a failed assertion with enough context to debug
// it without rerunning the scenario
type AssertionError struct {
	Type     string
	Expected string
	Actual   string
	Trace    []trace.Record
}

func (e *AssertionError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s assertion failed: expected %s, got %s", e.Type, e.Expected, e.Actual)
	if len(e.Trace) > 0 {
		b.WriteString("\ntrace:")
		for _, r := range e.Trace {
			b.WriteString("\n  ")
			b.WriteString(r.String())
		}
	}
	return b.String()
}

// EvaluateAssertions checks every assertion against a finished run and
// returns one message per failure
func EvaluateAssertions(result *Result, assertions []Assertion) []string {
	var errs []string
	for i, a := range assertions {
		var err error
		switch a.Type {
		case AssertFinalState:
			err = assertFinalState(result, a)
		case AssertTraceContains:
			err = assertTraceContains(result.Trace, a)
		case AssertTraceOrder:
			err = assertTraceOrder(result.Trace, a)
		case AssertTraceCount:
			err = assertTraceCount(result.Trace, a)
		case AssertEnded:
			err = assertEnded(result)
		default:
			err = fmt.Errorf("unknown assertion type %q", a.Type)
		}
		if err != nil {
			errs = append(errs, fmt.Sprintf("assertions[%d]: %v", i, err))
		}
	}
	return errs
}

func assertFinalState(result *Result, a Assertion) error {
	if result.FinalState == a.State {
		return nil
	}
	return &AssertionError{
		Type:     AssertFinalState,
		Expected: fmt.Sprintf("%q", a.State),
		Actual:   fmt.Sprintf("%q", result.FinalState),
		Trace:    result.Trace,
	}
}

func assertEnded(result *Result) error {
	if result.Ended {
		return nil
	}
	return &AssertionError{
		Type:     AssertEnded,
		Expected: "a final state",
		Actual:   fmt.Sprintf("%q", result.FinalState),
	}
}

// crossings returns the records that moved the machine
func crossings(records []trace.Record) []trace.Record {
	var res []trace.Record
	for _, r := range records {
		if r.Kind == trace.KindCross {
			res = append(res, r)
		}
	}
	return res
}

func matches(r trace.Record, a Assertion) bool {
	if a.On != "" && r.On != a.On {
		return false
	}
	if a.Output != "" && r.Output != a.Output {
		return false
	}
	if a.State != "" && r.To != a.State {
		return false
	}
	return true
}

func describe(a Assertion) string {
	var parts []string
	if a.On != "" {
		parts = append(parts, "on="+a.On)
	}
	if a.Output != "" {
		parts = append(parts, "output="+a.Output)
	}
	if a.State != "" {
		parts = append(parts, "to="+a.State)
	}
	return "crossing " + strings.Join(parts, " ")
}

func assertTraceContains(records []trace.Record, a Assertion) error {
	for _, r := range crossings(records) {
		if matches(r, a) {
			return nil
		}
	}
	return &AssertionError{
		Type:     AssertTraceContains,
		Expected: describe(a),
		Actual:   "no matching crossing",
		Trace:    records,
	}
}

// assertTraceOrder checks that the states were entered in the given
// relative order. Activation counts as entering the initial state
func assertTraceOrder(records []trace.Record, a Assertion) error {
	var entered []string
	for _, r := range records {
		if r.Kind == trace.KindActivate || r.Kind == trace.KindCross {
			entered = append(entered, r.To)
		}
	}
	next := 0
	for _, s := range entered {
		if next < len(a.States) && s == a.States[next] {
			next++
		}
	}
	if next == len(a.States) {
		return nil
	}
	return &AssertionError{
		Type:     AssertTraceOrder,
		Expected: strings.Join(a.States, " -> "),
		Actual:   strings.Join(entered, " -> "),
		Trace:    records,
	}
}

func assertTraceCount(records []trace.Record, a Assertion) error {
	n := 0
	for _, r := range crossings(records) {
		if matches(r, a) {
			n++
		}
	}
	if n == a.Count {
		return nil
	}
	return &AssertionError{
		Type:     AssertTraceCount,
		Expected: fmt.Sprintf("%d x %s", a.Count, describe(a)),
		Actual:   fmt.Sprintf("%d", n),
	}
}
