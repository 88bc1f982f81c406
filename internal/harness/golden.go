package harness

import (
	"fmt"
	"strings"
	"testing"

	"github.com/sebdah/goldie/v2"
)

// Snapshot renders a result as stable text: the trace one record per line,
// then the outputs and the final state
func Snapshot(result *Result) []byte {
	var b strings.Builder
	fmt.Fprintf(&b, "scenario: %s\n", result.Name)
	b.WriteString("trace:\n")
	for _, r := range result.Trace {
		fmt.Fprintf(&b, "  %s\n", r)
	}
	b.WriteString("outputs:\n")
	for _, o := range result.Outputs {
		if o.On == "" {
			fmt.Fprintf(&b, "  [%d] %s\n", o.Step, o.Output)
			continue
		}
		fmt.Fprintf(&b, "  [%d] %s (on %s)\n", o.Step, o.Output, o.On)
	}
	fmt.Fprintf(&b, "final: %s\n", result.FinalState)
	fmt.Fprintf(&b, "ended: %t\n", result.Ended)
	return []byte(b.String())
}

// RunWithGolden runs the scenario and compares its snapshot with
// testdata/golden/{name}.golden. Regenerate with:
//
//	go test ./internal/harness -update
func RunWithGolden(t *testing.T, s *Scenario) (*Result, error) {
	t.Helper()
	result, err := Run(s)
	if err != nil {
		return nil, err
	}
	AssertGolden(t, s.Name, result)
	return result, nil
}

// AssertGolden compares an existing result with its golden file
func AssertGolden(t *testing.T, name string, result *Result) {
	t.Helper()
	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, name, Snapshot(result))
}
