package fsm

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	"golang.org/x/text/unicode/norm"
	"gopkg.in/yaml.v3"

	"github.com/roach88/kinetic/internal/registry"
)

// Definition is the declarative form of a Machine. Transitions may be
// given as a list, as a state-by-state matrix, or both; the list is applied
// first.
type Definition struct {
	Name        string       `json:"name,omitempty" yaml:"name,omitempty"`
	Initial     string       `json:"initial,omitempty" yaml:"initial,omitempty"`
	EntryOutput Lexeme       `json:"entry_output,omitempty" yaml:"entry_output,omitempty"`
	Final       []string     `json:"final,omitempty" yaml:"final,omitempty"`
	States      []string     `json:"states,omitempty" yaml:"states,omitempty"`
	Inputs      []Lexeme     `json:"inputs,omitempty" yaml:"inputs,omitempty"`
	Outputs     []Lexeme     `json:"outputs,omitempty" yaml:"outputs,omitempty"`
	Transitions []Transition `json:"transitions,omitempty" yaml:"transitions,omitempty"`
	Matrix      [][]string   `json:"matrix,omitempty" yaml:"matrix,omitempty"`
}

// LoadDefinition reads a definition file. The format follows the
// extension: .yaml/.yml or .cue
func LoadDefinition(path string) (*Definition, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &DefinitionError{
			Code:    ErrCodeLoadFailed,
			Message: fmt.Sprintf("reading %s: %v", path, err),
		}
	}
	switch filepath.Ext(path) {
	case ".yaml", ".yml":
		return ParseYAML(data)
	case ".cue":
		return ParseCUE(path, data)
	default:
		return nil, &DefinitionError{
			Code:    ErrCodeUnknownFormat,
			Message: fmt.Sprintf("unsupported definition format: %s", path),
		}
	}
}

// ParseYAML decodes a YAML definition
func ParseYAML(data []byte) (*Definition, error) {
	var def Definition
	if err := yaml.Unmarshal(data, &def); err != nil {
		return nil, &DefinitionError{
			Code:    ErrCodeLoadFailed,
			Message: fmt.Sprintf("decoding yaml: %v", err),
		}
	}
	def.normalize()
	return &def, nil
}

// ParseCUE compiles and decodes a CUE definition. The whole file is the
// definition value, so constraints and defaults written in CUE are
// resolved before decoding
func ParseCUE(filename string, data []byte) (*Definition, error) {
	ctx := cuecontext.New()
	v := ctx.CompileBytes(data, cue.Filename(filename))
	if err := v.Err(); err != nil {
		return nil, &DefinitionError{
			Code:    ErrCodeLoadFailed,
			Message: fmt.Sprintf("compiling cue: %v", err),
		}
	}
	var def Definition
	if err := v.Decode(&def); err != nil {
		return nil, &DefinitionError{
			Code:    ErrCodeLoadFailed,
			Message: fmt.Sprintf("decoding cue: %v", err),
		}
	}
	def.normalize()
	return &def, nil
}

// normalize puts every name in NFC so that visually identical names written
// with different code point sequences refer to the same state or lexeme
func (d *Definition) normalize() {
	n := func(s string) string { return norm.NFC.String(s) }
	nl := func(l Lexeme) Lexeme { return Lexeme(norm.NFC.String(string(l))) }

	d.Initial = n(d.Initial)
	d.EntryOutput = nl(d.EntryOutput)
	for i := range d.Final {
		d.Final[i] = n(d.Final[i])
	}
	for i := range d.States {
		d.States[i] = n(d.States[i])
	}
	for i := range d.Inputs {
		d.Inputs[i] = nl(d.Inputs[i])
	}
	for i := range d.Outputs {
		d.Outputs[i] = nl(d.Outputs[i])
	}
	for i := range d.Transitions {
		t := &d.Transitions[i]
		t.From, t.To = n(t.From), n(t.To)
		t.On, t.Output = nl(t.On), nl(t.Output)
	}
	for _, row := range d.Matrix {
		for j := range row {
			row[j] = n(row[j])
		}
	}
}

// Validate reports every structural problem of the definition. A Machine
// built from an invalid definition silently drops the offending parts;
// Validate is how tooling finds out about them
func (d *Definition) Validate() error {
	var errs []error
	add := func(code, format string, args ...any) {
		errs = append(errs, &DefinitionError{
			Code:    code,
			Message: fmt.Sprintf(format, args...),
		})
	}

	// the matrix contributes states and lexemes, so check against a
	// scratch machine that has applied it
	scratch := New("", WithRegistry(registry.New()), WithID("validate"))
	seen := map[string]bool{}
	for _, s := range d.States {
		switch {
		case s == "":
			add(ErrCodeEmptyName, "empty state name")
		case seen[s]:
			add(ErrCodeDuplicateState, "state %q declared twice", s)
		default:
			seen[s] = true
			scratch.AddState(s)
		}
	}
	for _, in := range d.Inputs {
		if in == "" {
			add(ErrCodeEmptyName, "empty input name")
		}
		scratch.AddInput(in)
	}
	for _, out := range d.Outputs {
		if out == "" {
			add(ErrCodeEmptyName, "empty output name")
		}
		scratch.AddOutput(out)
	}

	type key struct {
		from string
		on   Lexeme
	}
	used := map[key]bool{}
	for _, t := range d.Transitions {
		if !scratch.HasState(t.From) {
			add(ErrCodeUnknownState, "transition from unknown state %q", t.From)
		}
		if !scratch.HasState(t.To) {
			add(ErrCodeUnknownState, "transition to unknown state %q", t.To)
		}
		if !scratch.HasInput(t.On) {
			add(ErrCodeUndeclaredInput,
				"transition %s -> %s: undeclared input %q", t.From, t.To, t.On)
		}
		if t.Output != "" && !scratch.HasOutput(t.Output) {
			add(ErrCodeUndeclaredOutput,
				"transition %s -> %s: undeclared output %q",
				t.From, t.To, t.Output)
		}
		k := key{t.From, t.On}
		if used[k] {
			add(ErrCodeDuplicateTransition,
				"state %q has more than one transition on %q", t.From, t.On)
		}
		used[k] = true
	}

	if len(d.Matrix) > 0 {
		if err := scratch.InitWithMatrix(d.Matrix); err != nil {
			errs = append(errs, flatten(err)...)
		}
	}

	if len(scratch.States()) == 0 {
		add(ErrCodeNoStates, "definition declares no state")
	}
	switch {
	case d.Initial == "":
		add(ErrCodeMissingInitial, "no initial state")
	case !scratch.HasState(d.Initial):
		add(ErrCodeMissingInitial, "initial state %q is not a state", d.Initial)
	}
	for _, f := range d.Final {
		if !scratch.HasState(f) {
			add(ErrCodeUnknownFinal, "final state %q is not a state", f)
		}
	}
	if d.EntryOutput != "" && !scratch.HasOutput(d.EntryOutput) {
		add(ErrCodeUndeclaredEntry,
			"entry output %q is not a declared output", d.EntryOutput)
	}
	return errors.Join(errs...)
}

// Build validates the definition and builds an unactivated Machine from it
func (d *Definition) Build(owner registry.ID, opts ...Option) (*Machine, error) {
	if err := d.Validate(); err != nil {
		return nil, err
	}
	m := New(owner, opts...)
	m.Apply(d)
	return m, nil
}

// Apply populates the machine from d without validating it
func (m *Machine) Apply(d *Definition) {
	m.InitWithData(d.States, d.Inputs, d.Outputs, d.Transitions)
	if len(d.Matrix) > 0 {
		_ = m.InitWithMatrix(d.Matrix)
	}
	m.SetInitialState(d.Initial)
	m.SetEntryOutput(d.EntryOutput)
}

// Definition exports the machine structure. Output actions and input
// bindings are behavior, not structure, and are not included
func (m *Machine) Definition(name string) *Definition {
	return &Definition{
		Name:        name,
		Initial:     m.initial,
		EntryOutput: m.entryOutput,
		States:      slices.Clone(m.order),
		Inputs:      slices.Clone(m.inputs),
		Outputs:     slices.Clone(m.outputs),
		Transitions: m.Transitions(),
	}
}

func flatten(err error) []error {
	if u, ok := err.(interface{ Unwrap() []error }); ok {
		return u.Unwrap()
	}
	return []error{err}
}
