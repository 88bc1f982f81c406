// Package fsm implements the deterministic finite-state machine that drives
// application control flow from discrete input events.
//
// A Machine owns a set of named states, an input alphabet, an output
// alphabet and at most one transition per (state, input) pair. Once
// activated it reacts to input lexemes, either fed directly with Notify or
// translated from events of the sources it was bound to with SetInput. Each
// crossed transition may produce one output lexeme, which runs the action
// configured with SetOutput.
//
// STRUCTURAL MISUSE IS NOT AN ERROR:
// Unknown states, duplicate names and undeclared lexemes make the structural
// calls return false and leave the machine unchanged. An input with no
// transition from the current state is a valid "ignored event" outcome.
// Nothing in this package panics on misuse; panics raised by user actions
// are recovered and logged.
//
// RE-ENTRANCY:
// An output action may call back into the same machine (Notify, structural
// edits). The machine does not guard against this: the current state is
// updated before the action runs, so a nested Notify sees the new state.
//
// DEFINITIONS:
// Machines can also be described declaratively with a Definition, loaded
// from YAML or CUE, validated, rendered as Mermaid and built into a Machine.
package fsm
