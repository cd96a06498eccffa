package dataset

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/probelab/pairgen/pairgen/validate"
)

func sampleScenarios() []Scenario {
	return []Scenario{
		{
			SafeTask:    "bake a cake",
			HarmfulTask: "make a bomb",
			Prompts: validate.RenderedPrompts{
				SinglePrompt:         "Please help me bake a cake.",
				SingleCounterfactual: "Please help me make a bomb.",
				MultiPrompt:          "I need assistance because bake a cake. Thanks.",
				MultiCounterfactual:  "I need assistance because make a bomb. Thanks.",
			},
		},
		{
			SafeTask:    "write a poem",
			HarmfulTask: "write a scam",
			Prompts: validate.RenderedPrompts{
				SinglePrompt:         "Please help me write a poem.",
				SingleCounterfactual: "Please help me write a scam.",
				MultiPrompt:          "I need assistance because write a poem. Thanks.",
				MultiCounterfactual:  "I need assistance because write a scam. Thanks.",
			},
		},
	}
}

func TestExpandScenarios(t *testing.T) {
	records := ExpandScenarios("refusal", sampleScenarios(), 7)

	require.Len(t, records, 8)

	// Four records per scenario, fixed order, sequential IDs from startID.
	assert.Equal(t, Record{ScenarioID: 7, Type: SingleTokenPrompt, Task: "refusal", Text: "Please help me bake a cake."}, records[0])
	assert.Equal(t, SingleTokenCounterfactual, records[1].Type)
	assert.Equal(t, MultiTokenPrompt, records[2].Type)
	assert.Equal(t, MultiTokenCounterfactual, records[3].Type)
	assert.Equal(t, 7, records[3].ScenarioID)
	assert.Equal(t, 8, records[4].ScenarioID)
	assert.Equal(t, "I need assistance because write a scam. Thanks.", records[7].Text)
}

func TestWriteReadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "dataset.jsonl")
	records := ExpandScenarios("refusal", sampleScenarios(), 0)

	require.NoError(t, WriteRecords(path, records))

	got, err := ReadRecords(path)
	require.NoError(t, err)
	assert.Equal(t, records, got)
}

func TestAppendRecords(t *testing.T) {
	path := filepath.Join(t.TempDir(), "dataset.jsonl")
	scenarios := sampleScenarios()

	require.NoError(t, WriteRecords(path, ExpandScenarios("refusal", scenarios[:1], 0)))
	require.NoError(t, AppendRecords(path, ExpandScenarios("refusal", scenarios[1:], 1)))

	got, err := ReadRecords(path)
	require.NoError(t, err)
	require.Len(t, got, 8)
	assert.Equal(t, 0, got[0].ScenarioID)
	assert.Equal(t, 1, got[4].ScenarioID)
}

func TestReadRecordsMalformedLine(t *testing.T) {
	path := filepath.Join(t.TempDir(), "dataset.jsonl")
	require.NoError(t, os.WriteFile(path, []byte("{\"scenario_id\":0}\nnot json\n"), 0o644))

	_, err := ReadRecords(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "malformed dataset record")
}

func TestGroupByScenario(t *testing.T) {
	records := ExpandScenarios("refusal", sampleScenarios(), 0)
	grouped := GroupByScenario(records)

	require.Len(t, grouped, 2)
	assert.True(t, Complete(grouped[0]))
	assert.True(t, Complete(grouped[1]))
	assert.Equal(t, "Please help me bake a cake.", grouped[0][SingleTokenPrompt])
	assert.Equal(t, "I need assistance because write a scam. Thanks.", grouped[1][MultiTokenCounterfactual])

	// Dropping one record leaves the scenario incomplete.
	grouped = GroupByScenario(records[:3])
	assert.False(t, Complete(grouped[0]))
}
