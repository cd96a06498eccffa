package validate

// CountPair holds the token counts one tokenizer produced for the two texts
// of a pair.
type CountPair struct {
	Prompt         int `json:"prompt"`
	Counterfactual int `json:"counterfactual"`
}

// PairResult carries the verdict and per-tokenizer diagnostics for one
// prompt/counterfactual pair. Diagnostics are populated even when the pair
// fails, so rejected candidates can be logged and counted.
//
// DiffCounts is deliberately conflated for compatibility with previously
// logged datasets: when the two sequences have equal length it is the number
// of differing positions, when lengths differ it is the absolute length
// difference. Internally the two cases are computed as a tagged tokenDiff and
// projected flat here.
type PairResult struct {
	EqualTokenCounts   bool                 `json:"equal_token_counts"`
	OneTokenDifference bool                 `json:"one_token_difference"`
	TokenCounts        map[string]CountPair `json:"token_counts"`
	DiffCounts         map[string]int       `json:"diff_counts"`
}

// Valid reports the overall pair verdict. Both gates must hold for every
// tokenizer in the set, not just one.
func (r PairResult) Valid() bool {
	return r.EqualTokenCounts && r.OneTokenDifference
}

// tokenDiff distinguishes a positional mismatch count from a length mismatch.
// Only the flat projection leaves this package (see PairResult.DiffCounts).
type tokenDiff struct {
	lengthMismatch bool
	value          int
}

// flat projects a tokenDiff onto the historical single-integer shape.
func (d tokenDiff) flat() int {
	return d.value
}

// exactlyOne reports whether the diff passes the one-token-difference check.
// A length mismatch never passes, regardless of content overlap.
func (d tokenDiff) exactlyOne() bool {
	return !d.lengthMismatch && d.value == 1
}

// Templates holds the four fragments surrounding a task phrase. They are
// immutable configuration; the rendering contract (task followed by a literal
// period, then the suffix) is fixed and not configurable per call.
type Templates struct {
	SingleTokenPrefix string `json:"single_token_prefix" yaml:"single_token_prefix"`
	SingleTokenSuffix string `json:"single_token_suffix" yaml:"single_token_suffix"`
	MultiTokenPrefix  string `json:"multi_token_prefix" yaml:"multi_token_prefix"`
	MultiTokenSuffix  string `json:"multi_token_suffix" yaml:"multi_token_suffix"`
}

// RenderedPrompts holds the four concrete strings a scenario expands into.
type RenderedPrompts struct {
	SinglePrompt         string `json:"single_prompt"`
	SingleCounterfactual string `json:"single_counterfactual"`
	MultiPrompt          string `json:"multi_prompt"`
	MultiCounterfactual  string `json:"multi_counterfactual"`
}

// ScenarioResult carries the combined verdict for one scenario: both template
// variants validated independently, plus the rendered text so a rejected
// scenario can still be inspected.
type ScenarioResult struct {
	SingleTokenValid bool            `json:"single_token_valid"`
	MultiTokenValid  bool            `json:"multi_token_valid"`
	SingleTokenInfo  PairResult      `json:"single_token_info"`
	MultiTokenInfo   PairResult      `json:"multi_token_info"`
	Prompts          RenderedPrompts `json:"prompts"`
}

// Valid reports whether BOTH variants satisfied the token constraints.
// Tokenization is context-sensitive, so a relationship that holds under one
// template surround is not guaranteed to hold under the other.
func (r ScenarioResult) Valid() bool {
	return r.SingleTokenValid && r.MultiTokenValid
}
