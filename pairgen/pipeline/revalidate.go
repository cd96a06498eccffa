package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"sort"

	"github.com/google/uuid"
	"github.com/sourcegraph/conc/pool"

	"github.com/probelab/pairgen/pairgen/dataset"
	"github.com/probelab/pairgen/pairgen/validate"
)

// Failure reasons used in revalidation reports.
const (
	ReasonMissingPrompts = "missing_prompts"
	ReasonSingleToken    = "single_token"
	ReasonMultiToken     = "multi_token"
	ReasonBothVariants   = "both_variants"
)

// ScenarioFailure describes one scenario that failed re-validation.
type ScenarioFailure struct {
	ScenarioID      int                  `json:"scenario_id"`
	Reason          string               `json:"reason"`
	SingleTokenInfo *validate.PairResult `json:"single_token_info,omitempty"`
	MultiTokenInfo  *validate.PairResult `json:"multi_token_info,omitempty"`
}

// Report aggregates a dataset re-validation run.
type Report struct {
	RunID               string            `json:"run_id"`
	TotalScenarios      int               `json:"total_scenarios"`
	ValidScenarios      int               `json:"valid_scenarios"`
	SingleTokenFailures int               `json:"single_token_failures"`
	MultiTokenFailures  int               `json:"multi_token_failures"`
	MissingPrompts      int               `json:"missing_prompts"`
	Failures            []ScenarioFailure `json:"failures,omitempty"`
}

// AllValid reports whether every scenario in the dataset passed.
func (r *Report) AllValid() bool {
	return r.ValidScenarios == r.TotalScenarios
}

type revalidateOutcome struct {
	failure *ScenarioFailure
}

// Revalidate re-checks an existing dataset's scenarios against the token
// constraints. Stored text is validated as-is; rendering is not repeated, so
// the check covers exactly what downstream consumers will read.
func (p *Pipeline) Revalidate(ctx context.Context, records []dataset.Record) (*Report, error) {
	grouped := dataset.GroupByScenario(records)

	ids := make([]int, 0, len(grouped))
	for id := range grouped {
		ids = append(ids, id)
	}
	sort.Ints(ids)

	outcomes := make([]revalidateOutcome, len(ids))
	bar := p.newBar(len(ids), "Validating scenarios")

	workers := pool.New().WithMaxGoroutines(p.workers).WithContext(ctx).WithCancelOnError()
	for i, id := range ids {
		prompts := grouped[id]
		workers.Go(func(ctx context.Context) error {
			if err := ctx.Err(); err != nil {
				return err
			}

			failure, err := p.revalidateScenario(id, prompts)
			if err != nil {
				return err
			}
			outcomes[i] = revalidateOutcome{failure: failure}
			barAdd(bar)
			return nil
		})
	}
	if err := workers.Wait(); err != nil {
		return nil, err
	}

	report := &Report{
		RunID:          uuid.New().String(),
		TotalScenarios: len(ids),
	}
	for _, out := range outcomes {
		if out.failure == nil {
			report.ValidScenarios++
			continue
		}
		report.Failures = append(report.Failures, *out.failure)
		switch out.failure.Reason {
		case ReasonMissingPrompts:
			report.MissingPrompts++
		case ReasonSingleToken:
			report.SingleTokenFailures++
		case ReasonMultiToken:
			report.MultiTokenFailures++
		case ReasonBothVariants:
			report.SingleTokenFailures++
			report.MultiTokenFailures++
		}
	}

	slog.Info("Revalidated dataset",
		"run_id", report.RunID,
		"scenarios", report.TotalScenarios,
		"valid", report.ValidScenarios,
		"single_token_failures", report.SingleTokenFailures,
		"multi_token_failures", report.MultiTokenFailures,
		"missing_prompts", report.MissingPrompts)

	return report, nil
}

func (p *Pipeline) revalidateScenario(id int, prompts map[dataset.PromptType]string) (*ScenarioFailure, error) {
	if !dataset.Complete(prompts) {
		return &ScenarioFailure{ScenarioID: id, Reason: ReasonMissingPrompts}, nil
	}

	singleValid, singleInfo, err := p.validator.ValidatePair(
		prompts[dataset.SingleTokenPrompt],
		prompts[dataset.SingleTokenCounterfactual],
	)
	if err != nil {
		return nil, fmt.Errorf("scenario %d single-token pair: %w", id, err)
	}

	multiValid, multiInfo, err := p.validator.ValidatePair(
		prompts[dataset.MultiTokenPrompt],
		prompts[dataset.MultiTokenCounterfactual],
	)
	if err != nil {
		return nil, fmt.Errorf("scenario %d multi-token pair: %w", id, err)
	}

	if singleValid && multiValid {
		return nil, nil
	}

	reason := ReasonBothVariants
	switch {
	case !singleValid && multiValid:
		reason = ReasonSingleToken
	case singleValid && !multiValid:
		reason = ReasonMultiToken
	}

	return &ScenarioFailure{
		ScenarioID:      id,
		Reason:          reason,
		SingleTokenInfo: &singleInfo,
		MultiTokenInfo:  &multiInfo,
	}, nil
}
