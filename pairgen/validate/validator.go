package validate

import (
	"fmt"
	"log/slog"

	"github.com/probelab/pairgen/pairgen/tokenize"
)

// Validator checks prompt/counterfactual pairs against the cross-tokenizer
// constraints: equal token counts and exactly one differing token position,
// simultaneously for every tokenizer in the set.
//
// A Validator is stateless beyond the injected Set; calls are independent and
// deterministic, so one instance may be shared across concurrent workers as
// long as the Set's backends tolerate concurrent encoding.
type Validator struct {
	set *tokenize.Set
}

// NewValidator wraps an already-built tokenizer set. The same instance must be
// used for all comparisons within one scenario so results stay comparable.
func NewValidator(set *tokenize.Set) *Validator {
	return &Validator{set: set}
}

// Set exposes the underlying tokenizer set.
func (v *Validator) Set() *tokenize.Set {
	return v.set
}

// ValidateEqualTokenCounts checks that two texts tokenize to equal lengths
// under every tokenizer. The returned map always covers the full set,
// pass or fail.
func (v *Validator) ValidateEqualTokenCounts(text1, text2 string) (bool, map[string]CountPair, error) {
	tokens1, err := v.set.EncodeAll(text1)
	if err != nil {
		return false, nil, fmt.Errorf("tokenizing first text: %w", err)
	}
	tokens2, err := v.set.EncodeAll(text2)
	if err != nil {
		return false, nil, fmt.Errorf("tokenizing second text: %w", err)
	}

	counts := make(map[string]CountPair, v.set.Len())
	isValid := true

	for _, name := range v.set.Names() {
		c1 := len(tokens1[name])
		c2 := len(tokens2[name])
		counts[name] = CountPair{Prompt: c1, Counterfactual: c2}

		if c1 != c2 {
			isValid = false
		}
	}

	return isValid, counts, nil
}

// ValidateOneTokenDifference checks that two texts differ in exactly one token
// position under every tokenizer. When a tokenizer produces different-length
// sequences the check fails for that tokenizer and the diagnostic value is the
// absolute length difference.
func (v *Validator) ValidateOneTokenDifference(text1, text2 string) (bool, map[string]int, error) {
	tokens1, err := v.set.EncodeAll(text1)
	if err != nil {
		return false, nil, fmt.Errorf("tokenizing first text: %w", err)
	}
	tokens2, err := v.set.EncodeAll(text2)
	if err != nil {
		return false, nil, fmt.Errorf("tokenizing second text: %w", err)
	}

	diffs := make(map[string]int, v.set.Len())
	isValid := true

	for _, name := range v.set.Names() {
		d := diffTokens(tokens1[name], tokens2[name])
		diffs[name] = d.flat()

		if !d.exactlyOne() {
			isValid = false
		}
	}

	return isValid, diffs, nil
}

func diffTokens(t1, t2 []int) tokenDiff {
	if len(t1) != len(t2) {
		delta := len(t1) - len(t2)
		if delta < 0 {
			delta = -delta
		}
		return tokenDiff{lengthMismatch: true, value: delta}
	}

	count := 0
	for i := range t1 {
		if t1[i] != t2[i] {
			count++
		}
	}
	return tokenDiff{value: count}
}

// ValidatePair applies both constraints to a prompt/counterfactual pair.
// Lengths are checked independently in both gates; a pair passes only when
// every tokenizer agrees on equal counts AND exactly one differing position.
//
// Constraint failure is a normal outcome (false verdict with full
// diagnostics), never an error. Only tokenizer failures propagate.
func (v *Validator) ValidatePair(text1, text2 string) (bool, PairResult, error) {
	equalCounts, tokenCounts, err := v.ValidateEqualTokenCounts(text1, text2)
	if err != nil {
		return false, PairResult{}, err
	}

	oneDiff, diffCounts, err := v.ValidateOneTokenDifference(text1, text2)
	if err != nil {
		return false, PairResult{}, err
	}

	result := PairResult{
		EqualTokenCounts:   equalCounts,
		OneTokenDifference: oneDiff,
		TokenCounts:        tokenCounts,
		DiffCounts:         diffCounts,
	}

	if !result.Valid() {
		slog.Debug("Pair validation failed",
			"equal_token_counts", equalCounts,
			"one_token_difference", oneDiff,
			"diff_counts", diffCounts)
	}

	return result.Valid(), result, nil
}

// RenderPrompts expands a (safe, harmful) task pair into the four concrete
// strings. A literal period is always inserted directly after the task phrase
// and before the suffix.
func RenderPrompts(safeTask, harmfulTask string, tpl Templates) RenderedPrompts {
	return RenderedPrompts{
		SinglePrompt:         fmt.Sprintf("%s%s.%s", tpl.SingleTokenPrefix, safeTask, tpl.SingleTokenSuffix),
		SingleCounterfactual: fmt.Sprintf("%s%s.%s", tpl.SingleTokenPrefix, harmfulTask, tpl.SingleTokenSuffix),
		MultiPrompt:          fmt.Sprintf("%s%s.%s", tpl.MultiTokenPrefix, safeTask, tpl.MultiTokenSuffix),
		MultiCounterfactual:  fmt.Sprintf("%s%s.%s", tpl.MultiTokenPrefix, harmfulTask, tpl.MultiTokenSuffix),
	}
}

// ValidateScenario renders both template variants for a scenario and validates
// each resulting pair independently. The combined verdict is the AND of the
// two pair verdicts.
func (v *Validator) ValidateScenario(safeTask, harmfulTask string, tpl Templates) (bool, ScenarioResult, error) {
	prompts := RenderPrompts(safeTask, harmfulTask, tpl)

	singleValid, singleInfo, err := v.ValidatePair(prompts.SinglePrompt, prompts.SingleCounterfactual)
	if err != nil {
		return false, ScenarioResult{}, fmt.Errorf("single-token pair: %w", err)
	}

	multiValid, multiInfo, err := v.ValidatePair(prompts.MultiPrompt, prompts.MultiCounterfactual)
	if err != nil {
		return false, ScenarioResult{}, fmt.Errorf("multi-token pair: %w", err)
	}

	result := ScenarioResult{
		SingleTokenValid: singleValid,
		MultiTokenValid:  multiValid,
		SingleTokenInfo:  singleInfo,
		MultiTokenInfo:   multiInfo,
		Prompts:          prompts,
	}

	return result.Valid(), result, nil
}
