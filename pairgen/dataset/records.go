package dataset

import (
	"github.com/probelab/pairgen/pairgen/validate"
)

// PromptType tags which of a scenario's four strings a dataset record holds.
type PromptType string

const (
	SingleTokenPrompt         PromptType = "single_token_prompt"
	SingleTokenCounterfactual PromptType = "single_token_counterfactual"
	MultiTokenPrompt          PromptType = "multi_token_prompt"
	MultiTokenCounterfactual  PromptType = "multi_token_counterfactual"
)

// RequiredTypes lists the four record types a complete scenario serializes to.
var RequiredTypes = []PromptType{
	SingleTokenPrompt,
	SingleTokenCounterfactual,
	MultiTokenPrompt,
	MultiTokenCounterfactual,
}

// Record is one line of the line-delimited JSON dataset.
type Record struct {
	ScenarioID int        `json:"scenario_id"`
	Type       PromptType `json:"type"`
	Task       string     `json:"task"`
	Text       string     `json:"text"`
}

// Scenario is a validated (safe, harmful) pair together with its four
// rendered prompt strings.
type Scenario struct {
	SafeTask    string                   `json:"safe_task"`
	HarmfulTask string                   `json:"harmful_task"`
	Prompts     validate.RenderedPrompts `json:"prompts"`
}

// ExpandScenarios converts scenarios to individual prompt records, four per
// scenario in a fixed order, numbering scenarios from startID.
func ExpandScenarios(taskName string, scenarios []Scenario, startID int) []Record {
	records := make([]Record, 0, len(scenarios)*len(RequiredTypes))

	for i, scenario := range scenarios {
		scenarioID := startID + i
		records = append(records,
			Record{ScenarioID: scenarioID, Type: SingleTokenPrompt, Task: taskName, Text: scenario.Prompts.SinglePrompt},
			Record{ScenarioID: scenarioID, Type: SingleTokenCounterfactual, Task: taskName, Text: scenario.Prompts.SingleCounterfactual},
			Record{ScenarioID: scenarioID, Type: MultiTokenPrompt, Task: taskName, Text: scenario.Prompts.MultiPrompt},
			Record{ScenarioID: scenarioID, Type: MultiTokenCounterfactual, Task: taskName, Text: scenario.Prompts.MultiCounterfactual},
		)
	}

	return records
}

// GroupByScenario reorganizes flat records into per-scenario prompt maps,
// keyed by scenario ID then prompt type.
func GroupByScenario(records []Record) map[int]map[PromptType]string {
	scenarios := make(map[int]map[PromptType]string)

	for _, rec := range records {
		prompts, ok := scenarios[rec.ScenarioID]
		if !ok {
			prompts = make(map[PromptType]string, len(RequiredTypes))
			scenarios[rec.ScenarioID] = prompts
		}
		prompts[rec.Type] = rec.Text
	}

	return scenarios
}

// Complete reports whether a grouped scenario carries all four prompt types.
func Complete(prompts map[PromptType]string) bool {
	for _, pt := range RequiredTypes {
		if _, ok := prompts[pt]; !ok {
			return false
		}
	}
	return true
}
