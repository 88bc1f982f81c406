package fsm

import (
	"bytes"
	"fmt"
)

// ToMermaid renders the machine as a Mermaid stateDiagram-v2. Edge labels
// read "input" or "input / output"
func (m *Machine) ToMermaid() string {
	return m.mermaid(nil)
}

// ToMermaid renders the definition, final states included
func (d *Definition) ToMermaid() string {
	m := New("", WithID("render"))
	m.Apply(d)
	return m.mermaid(d.Final)
}

// ToDOT renders the machine as a Graphviz digraph
func (m *Machine) ToDOT() string {
	return m.dot(nil)
}

// ToDOT renders the definition as a Graphviz digraph, final states drawn
// with a double border
func (d *Definition) ToDOT() string {
	m := New("", WithID("render"))
	m.Apply(d)
	return m.dot(d.Final)
}

func (m *Machine) mermaid(final []string) string {
	var buf bytes.Buffer
	buf.WriteString("stateDiagram-v2\n")
	if m.initial != "" {
		fmt.Fprintf(&buf, "[*] --> %s\n", m.initial)
	}
	for _, s := range m.order {
		fmt.Fprintf(&buf, "state %s\n", s)
	}
	for _, t := range m.Transitions() {
		fmt.Fprintf(&buf, "%s --> %s : %s\n", t.From, t.To, edgeLabel(t))
	}
	for _, f := range final {
		if m.HasState(f) {
			fmt.Fprintf(&buf, "%s --> [*]\n", f)
		}
	}
	return buf.String()
}

func (m *Machine) dot(final []string) string {
	isFinal := map[string]bool{}
	for _, f := range final {
		isFinal[f] = true
	}

	var buf bytes.Buffer
	buf.WriteString("digraph fsm {\n")
	buf.WriteString("  rankdir=LR;\n")
	buf.WriteString("  node [shape=rectangle];\n")
	if m.initial != "" {
		buf.WriteString("  __initial [shape=point,label=\"\"];\n")
		fmt.Fprintf(&buf, "  __initial -> %q;\n", m.initial)
	}
	for _, s := range m.order {
		if isFinal[s] {
			fmt.Fprintf(&buf, "  %q [peripheries=2];\n", s)
			continue
		}
		fmt.Fprintf(&buf, "  %q;\n", s)
	}
	for _, t := range m.Transitions() {
		fmt.Fprintf(&buf, "  %q -> %q [label=%q];\n", t.From, t.To, edgeLabel(t))
	}
	buf.WriteString("}\n")
	return buf.String()
}

func edgeLabel(t Transition) string {
	if t.Output == "" {
		return string(t.On)
	}
	return fmt.Sprintf("%s / %s", t.On, t.Output)
}
