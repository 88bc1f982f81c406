package fsm

import (
	"testing"

	"github.com/sebdah/goldie/v2"
	"github.com/stretchr/testify/assert"
)

func newGoldie(t *testing.T) *goldie.Goldie {
	return goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
}

func TestToMermaid_Golden(t *testing.T) {
	newGoldie(t).Assert(t, "switch_mermaid", []byte(switchDefinition.ToMermaid()))
}

func TestToDOT_Golden(t *testing.T) {
	newGoldie(t).Assert(t, "switch_dot", []byte(switchDefinition.ToDOT()))
}

func TestToMermaid_Machine(t *testing.T) {
	m := New("", WithID("m"))
	m.AddState("only")
	assert.Equal(t, "stateDiagram-v2\nstate only\n", m.ToMermaid())
}

func TestToDOT_QuotesNames(t *testing.T) {
	m := New("", WithID("m"))
	m.AddState(`say "hi"`)
	m.SetInitialState(`say "hi"`)
	assert.Contains(t, m.ToDOT(), `  "say \"hi\"";`)
}
