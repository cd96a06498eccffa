package validate

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/probelab/pairgen/pairgen/tokenize"
)

// stubTokenizer maps whole input strings to fixed ID sequences so constraint
// logic can be exercised without loading any real vocabulary.
type stubTokenizer struct {
	sequences map[string][]int
	err       error
}

func (s *stubTokenizer) Encode(text string) ([]int, error) {
	if s.err != nil {
		return nil, s.err
	}
	if ids, ok := s.sequences[text]; ok {
		return ids, nil
	}
	// Unknown text falls back to one ID per byte, which keeps identity and
	// determinism cases working without enumerating every input.
	ids := make([]int, 0, len(text))
	for _, b := range []byte(text) {
		ids = append(ids, int(b))
	}
	return ids, nil
}

func newStubSet(t *testing.T, stubs map[string]*stubTokenizer) *tokenize.Set {
	t.Helper()
	names := make([]string, 0, len(stubs))
	tokenizers := make(map[string]tokenize.Tokenizer, len(stubs))
	// Deterministic order for two known names used across these tests.
	for _, name := range []string{"alpha", "beta", "gamma"} {
		if stub, ok := stubs[name]; ok {
			names = append(names, name)
			tokenizers[name] = stub
		}
	}
	require.Equal(t, len(stubs), len(names), "unexpected stub name")
	return tokenize.NewSetFromTokenizers(names, tokenizers)
}

func singleStubValidator(t *testing.T, sequences map[string][]int) *Validator {
	t.Helper()
	set := newStubSet(t, map[string]*stubTokenizer{
		"alpha": {sequences: sequences},
	})
	return NewValidator(set)
}

func TestValidatePairDeterminism(t *testing.T) {
	v := singleStubValidator(t, map[string][]int{
		"a": {1, 2, 3},
		"b": {1, 9, 3},
	})

	ok1, res1, err := v.ValidatePair("a", "b")
	require.NoError(t, err)
	ok2, res2, err := v.ValidatePair("a", "b")
	require.NoError(t, err)

	assert.Equal(t, ok1, ok2)
	assert.Equal(t, res1, res2)
}

func TestValidateEqualTokenCountsSymmetry(t *testing.T) {
	v := singleStubValidator(t, map[string][]int{
		"short": {1, 2},
		"long":  {1, 2, 3, 4},
	})

	cases := []struct {
		a, b string
	}{
		{"short", "long"},
		{"short", "short"},
		{"long", "long"},
	}

	for _, tc := range cases {
		ab, _, err := v.ValidateEqualTokenCounts(tc.a, tc.b)
		require.NoError(t, err)
		ba, _, err := v.ValidateEqualTokenCounts(tc.b, tc.a)
		require.NoError(t, err)
		assert.Equal(t, ab, ba, "symmetry broken for (%q, %q)", tc.a, tc.b)
	}
}

func TestValidatePairIdentity(t *testing.T) {
	v := singleStubValidator(t, map[string][]int{
		"x": {7, 8, 9},
	})

	ok, res, err := v.ValidatePair("x", "x")
	require.NoError(t, err)

	// Zero differing tokens must never count as "exactly one".
	assert.False(t, ok)
	assert.True(t, res.EqualTokenCounts)
	assert.False(t, res.OneTokenDifference)
	assert.Equal(t, 0, res.DiffCounts["alpha"])
	assert.Equal(t, CountPair{Prompt: 3, Counterfactual: 3}, res.TokenCounts["alpha"])
}

func TestValidatePairLengthMismatchFailsDiffCheck(t *testing.T) {
	v := singleStubValidator(t, map[string][]int{
		"a": {1, 2, 3},
		"b": {1, 2, 3, 4, 5},
	})

	ok, res, err := v.ValidatePair("a", "b")
	require.NoError(t, err)

	assert.False(t, ok)
	assert.False(t, res.EqualTokenCounts)
	assert.False(t, res.OneTokenDifference)
	// Diagnostic value is the absolute length difference on mismatch.
	assert.Equal(t, 2, res.DiffCounts["alpha"])
}

func TestValidatePairExactlyOneSwap(t *testing.T) {
	v := singleStubValidator(t, map[string][]int{
		"bake": {10, 20, 30, 40},
		"bomb": {10, 20, 99, 40},
	})

	ok, res, err := v.ValidatePair("bake", "bomb")
	require.NoError(t, err)

	assert.True(t, ok)
	assert.True(t, res.EqualTokenCounts)
	assert.True(t, res.OneTokenDifference)
	assert.Equal(t, 1, res.DiffCounts["alpha"])
}

func TestValidatePairDoubleGate(t *testing.T) {
	t.Run("equal lengths, two diffs", func(t *testing.T) {
		v := singleStubValidator(t, map[string][]int{
			"a": {1, 2, 3, 4},
			"b": {1, 9, 3, 8},
		})

		ok, res, err := v.ValidatePair("a", "b")
		require.NoError(t, err)

		assert.False(t, ok)
		assert.True(t, res.EqualTokenCounts)
		assert.False(t, res.OneTokenDifference)
		assert.Equal(t, 2, res.DiffCounts["alpha"])
	})

	t.Run("prefix match with trailing extra token", func(t *testing.T) {
		// Identical up to the shorter length; the count gate alone must
		// reject it.
		v := singleStubValidator(t, map[string][]int{
			"a": {1, 2, 3},
			"b": {1, 2, 3, 4},
		})

		ok, res, err := v.ValidatePair("a", "b")
		require.NoError(t, err)

		assert.False(t, ok)
		assert.False(t, res.EqualTokenCounts)
		assert.False(t, res.OneTokenDifference)
		assert.Equal(t, 1, res.DiffCounts["alpha"])
	})
}

func TestValidatePairRequiresEveryTokenizer(t *testing.T) {
	// alpha sees a clean one-token swap, beta sees two differing positions;
	// the pair must fail overall.
	set := newStubSet(t, map[string]*stubTokenizer{
		"alpha": {sequences: map[string][]int{
			"a": {1, 2, 3},
			"b": {1, 7, 3},
		}},
		"beta": {sequences: map[string][]int{
			"a": {4, 5, 6},
			"b": {9, 5, 8},
		}},
	})
	v := NewValidator(set)

	ok, res, err := v.ValidatePair("a", "b")
	require.NoError(t, err)

	assert.False(t, ok)
	assert.True(t, res.EqualTokenCounts)
	assert.False(t, res.OneTokenDifference)
	assert.Equal(t, 1, res.DiffCounts["alpha"])
	assert.Equal(t, 2, res.DiffCounts["beta"])
}

func TestValidatePairPropagatesTokenizerErrors(t *testing.T) {
	set := newStubSet(t, map[string]*stubTokenizer{
		"alpha": {err: fmt.Errorf("vocab corrupted")},
	})
	v := NewValidator(set)

	_, _, err := v.ValidatePair("a", "b")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "vocab corrupted")
}

func TestRenderPromptsContract(t *testing.T) {
	tpl := Templates{
		SingleTokenPrefix: "Please help me ",
		SingleTokenSuffix: "",
		MultiTokenPrefix:  "I need assistance because ",
		MultiTokenSuffix:  " Thanks.",
	}

	prompts := RenderPrompts("bake a cake", "make a bomb", tpl)

	assert.Equal(t, "Please help me bake a cake.", prompts.SinglePrompt)
	assert.Equal(t, "Please help me make a bomb.", prompts.SingleCounterfactual)
	assert.Equal(t, "I need assistance because bake a cake. Thanks.", prompts.MultiPrompt)
	assert.Equal(t, "I need assistance because make a bomb. Thanks.", prompts.MultiCounterfactual)
}

func TestValidateScenarioCombination(t *testing.T) {
	tpl := Templates{
		SingleTokenPrefix: "S:",
		MultiTokenPrefix:  "M:",
	}
	prompts := RenderPrompts("safe", "harm", tpl)

	// Single-token pair is a valid one-token swap; multi-token pair diverges
	// in length under the same tokenizer.
	v := singleStubValidator(t, map[string][]int{
		prompts.SinglePrompt:         {1, 2, 3},
		prompts.SingleCounterfactual: {1, 5, 3},
		prompts.MultiPrompt:          {1, 2, 3},
		prompts.MultiCounterfactual:  {1, 2, 3, 4},
	})

	ok, res, err := v.ValidateScenario("safe", "harm", tpl)
	require.NoError(t, err)

	assert.False(t, ok, "AND semantics: one failing variant rejects the scenario")
	assert.True(t, res.SingleTokenValid)
	assert.False(t, res.MultiTokenValid)
	assert.Equal(t, prompts, res.Prompts)
}

func TestValidateScenarioBothValid(t *testing.T) {
	tpl := Templates{
		SingleTokenPrefix: "S:",
		MultiTokenPrefix:  "M:",
		MultiTokenSuffix:  " end",
	}
	prompts := RenderPrompts("safe", "harm", tpl)

	v := singleStubValidator(t, map[string][]int{
		prompts.SinglePrompt:         {1, 2, 3},
		prompts.SingleCounterfactual: {1, 5, 3},
		prompts.MultiPrompt:          {1, 2, 3, 4},
		prompts.MultiCounterfactual:  {1, 2, 9, 4},
	})

	ok, res, err := v.ValidateScenario("safe", "harm", tpl)
	require.NoError(t, err)

	assert.True(t, ok)
	assert.True(t, res.Valid())
	assert.True(t, res.SingleTokenValid)
	assert.True(t, res.MultiTokenValid)
}

func TestValidatePairEmptyTexts(t *testing.T) {
	v := singleStubValidator(t, map[string][]int{
		"": {},
	})

	ok, res, err := v.ValidatePair("", "")
	require.NoError(t, err)

	assert.False(t, ok)
	assert.True(t, res.EqualTokenCounts)
	assert.False(t, res.OneTokenDifference)
	assert.Equal(t, 0, res.DiffCounts["alpha"])
}
