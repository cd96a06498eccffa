package pipeline

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"

	"github.com/google/uuid"
	"github.com/sourcegraph/conc/pool"

	"github.com/probelab/pairgen/pairgen/dataset"
	"github.com/probelab/pairgen/pairgen/validate"
)

// Candidate is one generated (safe, harmful) task phrase pair awaiting
// screening. Candidates come from the external generation layer; this package
// only decides which of them satisfy the token constraints.
type Candidate struct {
	Safe    string `json:"safe"`
	Harmful string `json:"harmful"`
}

// Rejection records a candidate that failed screening, with full diagnostics
// so generation quality can be inspected offline.
type Rejection struct {
	Safe    string                  `json:"safe"`
	Harmful string                  `json:"harmful"`
	Details validate.ScenarioResult `json:"details"`
}

// ScreenResult partitions a candidate batch into usable scenarios and
// rejections. Accepted scenarios keep the candidate input order so scenario
// numbering stays deterministic across runs.
type ScreenResult struct {
	RunID    string             `json:"run_id"`
	TaskName string             `json:"task"`
	Accepted []dataset.Scenario `json:"accepted"`
	Rejected []Rejection        `json:"rejected"`
}

type screenOutcome struct {
	valid  bool
	result validate.ScenarioResult
}

// Screen validates every candidate against the task's templates concurrently
// and partitions the batch. A constraint failure is routine and lands in
// Rejected; only tokenizer failures abort the batch.
func (p *Pipeline) Screen(ctx context.Context, taskName string, candidates []Candidate, tpl validate.Templates) (*ScreenResult, error) {
	outcomes := make([]screenOutcome, len(candidates))
	bar := p.newBar(len(candidates), "Screening candidates")

	workers := pool.New().WithMaxGoroutines(p.workers).WithContext(ctx).WithCancelOnError()
	for i, cand := range candidates {
		workers.Go(func(ctx context.Context) error {
			if err := ctx.Err(); err != nil {
				return err
			}

			valid, result, err := p.validator.ValidateScenario(cand.Safe, cand.Harmful, tpl)
			if err != nil {
				return fmt.Errorf("candidate %d (%q / %q): %w", i, cand.Safe, cand.Harmful, err)
			}

			// Each goroutine owns exactly one slot.
			outcomes[i] = screenOutcome{valid: valid, result: result}
			barAdd(bar)
			return nil
		})
	}
	if err := workers.Wait(); err != nil {
		return nil, err
	}

	res := &ScreenResult{
		RunID:    uuid.New().String(),
		TaskName: taskName,
		Accepted: make([]dataset.Scenario, 0, len(candidates)),
		Rejected: make([]Rejection, 0),
	}

	for i, cand := range candidates {
		if outcomes[i].valid {
			res.Accepted = append(res.Accepted, dataset.Scenario{
				SafeTask:    cand.Safe,
				HarmfulTask: cand.Harmful,
				Prompts:     outcomes[i].result.Prompts,
			})
		} else {
			res.Rejected = append(res.Rejected, Rejection{
				Safe:    cand.Safe,
				Harmful: cand.Harmful,
				Details: outcomes[i].result,
			})
		}
	}

	slog.Info("Screened candidate batch",
		"task", taskName,
		"run_id", res.RunID,
		"candidates", len(candidates),
		"accepted", len(res.Accepted),
		"rejected", len(res.Rejected))

	return res, nil
}

// LoadCandidates reads a JSONL file of {safe, harmful} pairs.
func LoadCandidates(path string) ([]Candidate, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open candidates file %s: %w", path, err)
	}
	defer f.Close()

	var candidates []Candidate
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	line := 0
	for scanner.Scan() {
		line++
		raw := scanner.Bytes()
		if len(raw) == 0 {
			continue
		}
		var cand Candidate
		if err := json.Unmarshal(raw, &cand); err != nil {
			return nil, fmt.Errorf("malformed candidate at %s:%d: %w", path, line, err)
		}
		if cand.Safe == "" || cand.Harmful == "" {
			return nil, fmt.Errorf("candidate at %s:%d missing safe or harmful task", path, line)
		}
		candidates = append(candidates, cand)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read candidates file %s: %w", path, err)
	}

	return candidates, nil
}

// WriteRejections appends rejections to a JSONL file for offline inspection.
func WriteRejections(path string, rejections []Rejection) error {
	if len(rejections) == 0 {
		return nil
	}

	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return fmt.Errorf("failed to open rejections file %s: %w", path, err)
	}
	defer f.Close()

	w := bufio.NewWriter(f)
	enc := json.NewEncoder(w)
	for _, rej := range rejections {
		if err := enc.Encode(rej); err != nil {
			return fmt.Errorf("failed to encode rejection: %w", err)
		}
	}
	if err := w.Flush(); err != nil {
		return fmt.Errorf("failed to flush rejections file %s: %w", path, err)
	}

	return nil
}
