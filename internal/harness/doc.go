// Package harness runs scripted scenarios against finite-state machine
// definitions and checks the resulting trace.
//
// # Scenario Format
//
//	name: switch_fires
//	description: "pressing then releasing fires the switch"
//	definition: ../definitions/switch.yaml
//	flow:
//	  - input: press
//	    expect: { state: armed }
//	  - input: release
//	    expect: { state: fired, outputs: [boom] }
//	assertions:
//	  - type: final_state
//	    state: fired
//	  - type: trace_count
//	    output: boom
//	    count: 1
//
// The definition path is relative to the scenario file. Unknown fields are
// rejected.
//
// # Assertion Types
//
//   - final_state: the state the machine ends in
//   - trace_contains: some crossing matches on, output and state (target)
//   - trace_order: states were entered in this relative order
//   - trace_count: exactly count crossings match on and output
//   - ended: the machine reached one of the definition's final states
//
// # Determinism
//
// Each run builds the machine in a fresh registry with its own logical
// clock, so the trace of a scenario is identical across runs and can be
// compared with a golden snapshot.
package harness
