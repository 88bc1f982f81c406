package harness

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Scenario is a scripted run of one machine definition
type Scenario struct {
	Name        string      `yaml:"name"`
	Description string      `yaml:"description"`
	Definition  string      `yaml:"definition"`
	Flow        []FlowStep  `yaml:"flow"`
	Assertions  []Assertion `yaml:"assertions"`
}

// FlowStep feeds one input to the machine
type FlowStep struct {
	Input  string        `yaml:"input"`
	Data   any           `yaml:"data,omitempty"`
	Expect *ExpectClause `yaml:"expect,omitempty"`
}

// ExpectClause checks the machine right after a flow step. Ignored means
// the input must not cross any transition
type ExpectClause struct {
	State   string   `yaml:"state,omitempty"`
	Outputs []string `yaml:"outputs,omitempty"`
	Ignored bool     `yaml:"ignored,omitempty"`
}

// Assertion is checked against the whole run once the flow is done.
// Which fields apply depends on Type
type Assertion struct {
	Type   string   `yaml:"type"`
	State  string   `yaml:"state,omitempty"`
	States []string `yaml:"states,omitempty"`
	On     string   `yaml:"on,omitempty"`
	Output string   `yaml:"output,omitempty"`
	Count  int      `yaml:"count,omitempty"`
}

// Assertion types
const (
	// AssertFinalState checks the state the machine ends in
	AssertFinalState = "final_state"
	// AssertTraceContains checks that some crossing matches On, Output and
	// State (the target); empty fields match anything
	AssertTraceContains = "trace_contains"
	// AssertTraceOrder checks that States were entered in this relative order
	AssertTraceOrder = "trace_order"
	// AssertTraceCount checks how many crossings match On and Output
	AssertTraceCount = "trace_count"
	// AssertEnded checks whether the machine reached a final state
	AssertEnded = "ended"
)

// LoadScenario reads a scenario file. The definition path is resolved
// relative to the scenario file's directory
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}
	return ParseScenario(data, filepath.Dir(path))
}

// ParseScenario decodes a scenario. Unknown fields are rejected so that a
// typo does not silently disable an assertion
func ParseScenario(data []byte, basePath string) (*Scenario, error) {
	var s Scenario
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&s); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if s.Definition != "" && !filepath.IsAbs(s.Definition) && basePath != "" {
		s.Definition = filepath.Join(basePath, s.Definition)
	}

	if err := validateScenario(&s); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}
	return &s, nil
}

func validateScenario(s *Scenario) error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}
	if s.Definition == "" {
		return fmt.Errorf("definition is required")
	}
	if _, err := os.Stat(s.Definition); err != nil {
		return fmt.Errorf("definition file not found: %s", s.Definition)
	}
	if len(s.Flow) == 0 && len(s.Assertions) == 0 {
		return fmt.Errorf("scenario has neither flow nor assertions")
	}

	for i, step := range s.Flow {
		if step.Input == "" {
			return fmt.Errorf("flow[%d]: input is required", i)
		}
		if e := step.Expect; e != nil && e.Ignored && len(e.Outputs) > 0 {
			return fmt.Errorf("flow[%d].expect: an ignored input produces no output", i)
		}
	}
	for i := range s.Assertions {
		if err := validateAssertion(i, &s.Assertions[i]); err != nil {
			return err
		}
	}
	return nil
}

func validateAssertion(index int, a *Assertion) error {
	switch a.Type {
	case "":
		return fmt.Errorf("assertions[%d]: type is required", index)
	case AssertFinalState:
		if a.State == "" {
			return fmt.Errorf("assertions[%d]: state is required for final_state", index)
		}
	case AssertTraceContains:
		if a.On == "" && a.Output == "" && a.State == "" {
			return fmt.Errorf(
				"assertions[%d]: one of on, output or state is required for trace_contains",
				index)
		}
	case AssertTraceOrder:
		if len(a.States) == 0 {
			return fmt.Errorf("assertions[%d]: states list is required for trace_order", index)
		}
	case AssertTraceCount:
		if a.On == "" && a.Output == "" {
			return fmt.Errorf(
				"assertions[%d]: on or output is required for trace_count", index)
		}
		if a.Count < 0 {
			return fmt.Errorf("assertions[%d]: count must be non-negative for trace_count", index)
		}
	case AssertEnded:
	default:
		return fmt.Errorf("assertions[%d]: unknown assertion type %q", index, a.Type)
	}
	return nil
}
