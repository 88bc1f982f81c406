package harness

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadScenario(t *testing.T) {
	s, err := LoadScenario("testdata/scenarios/turnstile_cycle.yaml")
	require.NoError(t, err)

	assert.Equal(t, "turnstile_cycle", s.Name)
	assert.Equal(t,
		filepath.Join("testdata", "definitions", "turnstile.yaml"),
		s.Definition)
	require.Len(t, s.Flow, 5)
	assert.Equal(t, "coin", s.Flow[0].Input)
	require.NotNil(t, s.Flow[0].Expect)
	assert.Equal(t, "unlocked", s.Flow[0].Expect.State)
	assert.Equal(t, []string{"unlock"}, s.Flow[0].Expect.Outputs)
	assert.True(t, s.Flow[2].Expect.Ignored)
	assert.Nil(t, s.Flow[3].Expect)
	assert.Equal(t, map[string]any{"amount": 50}, s.Flow[3].Data)
	require.Len(t, s.Assertions, 5)
	assert.Equal(t, AssertTraceOrder, s.Assertions[3].Type)
}

func TestLoadScenario_Missing(t *testing.T) {
	_, err := LoadScenario("testdata/scenarios/nope.yaml")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read scenario file")
}

func TestParseScenario_UnknownField(t *testing.T) {
	data := []byte(`
name: typo
definition: ../definitions/turnstile.yaml
flow:
  - input: coin
assertion:
  - type: ended
`)
	_, err := ParseScenario(data, "testdata/scenarios")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to parse YAML")
}

func TestParseScenario_Invalid(t *testing.T) {
	tests := []struct {
		name string
		yaml string
		want string
	}{
		{
			name: "no name",
			yaml: "definition: ../definitions/turnstile.yaml\nflow: [{input: coin}]",
			want: "name is required",
		},
		{
			name: "no definition",
			yaml: "name: x\nflow: [{input: coin}]",
			want: "definition is required",
		},
		{
			name: "definition not found",
			yaml: "name: x\ndefinition: nope.yaml\nflow: [{input: coin}]",
			want: "definition file not found",
		},
		{
			name: "empty",
			yaml: "name: x\ndefinition: ../definitions/turnstile.yaml",
			want: "neither flow nor assertions",
		},
		{
			name: "step without input",
			yaml: "name: x\ndefinition: ../definitions/turnstile.yaml\nflow: [{data: 1}]",
			want: "flow[0]: input is required",
		},
		{
			name: "ignored with outputs",
			yaml: "name: x\ndefinition: ../definitions/turnstile.yaml\n" +
				"flow: [{input: coin, expect: {ignored: true, outputs: [unlock]}}]",
			want: "flow[0].expect",
		},
		{
			name: "assertion without type",
			yaml: "name: x\ndefinition: ../definitions/turnstile.yaml\n" +
				"assertions: [{state: locked}]",
			want: "assertions[0]: type is required",
		},
		{
			name: "final_state without state",
			yaml: "name: x\ndefinition: ../definitions/turnstile.yaml\n" +
				"assertions: [{type: final_state}]",
			want: "state is required for final_state",
		},
		{
			name: "empty trace_contains",
			yaml: "name: x\ndefinition: ../definitions/turnstile.yaml\n" +
				"assertions: [{type: trace_contains}]",
			want: "required for trace_contains",
		},
		{
			name: "trace_order without states",
			yaml: "name: x\ndefinition: ../definitions/turnstile.yaml\n" +
				"assertions: [{type: trace_order}]",
			want: "states list is required",
		},
		{
			name: "negative count",
			yaml: "name: x\ndefinition: ../definitions/turnstile.yaml\n" +
				"assertions: [{type: trace_count, on: coin, count: -1}]",
			want: "count must be non-negative",
		},
		{
			name: "unknown type",
			yaml: "name: x\ndefinition: ../definitions/turnstile.yaml\n" +
				"assertions: [{type: eventually}]",
			want: `unknown assertion type "eventually"`,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseScenario([]byte(tt.yaml), "testdata/scenarios")
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestParseScenario_AbsoluteDefinition(t *testing.T) {
	abs, err := filepath.Abs("testdata/definitions/turnstile.yaml")
	require.NoError(t, err)

	s, err := ParseScenario([]byte("name: x\ndefinition: "+abs+"\nflow: [{input: coin}]"),
		"elsewhere")
	require.NoError(t, err)
	assert.Equal(t, abs, s.Definition)
}
