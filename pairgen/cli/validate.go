package cli

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/probelab/pairgen/pairgen/dataset"
)

var (
	validateShowFailures bool
	validateReportPath   string
)

var validateCmd = &cobra.Command{
	Use:   "validate <dataset.jsonl>",
	Short: "Re-validate an existing dataset against the token constraints",
	Long: `Validate loads a dataset of prompt records, regroups them by scenario, and
re-checks every scenario's single-token and multi-token pair. The command
exits non-zero if any scenario fails, so it can gate dataset publication.

Examples:
  pairgen validate dataset.jsonl
  pairgen validate dataset.jsonl --show-failures --report report.json`,
	Args: cobra.ExactArgs(1),
	RunE: runValidate,
}

func init() {
	rootCmd.AddCommand(validateCmd)
	validateCmd.Flags().BoolVar(&validateShowFailures, "show-failures", false, "print per-scenario failure diagnostics")
	validateCmd.Flags().StringVar(&validateReportPath, "report", "", "write the full report as JSON to this path")
}

func runValidate(cmd *cobra.Command, args []string) error {
	records, err := dataset.ReadRecords(args[0])
	if err != nil {
		return err
	}
	if len(records) == 0 {
		return fmt.Errorf("no records found in %s", args[0])
	}

	p, err := newPipeline(true)
	if err != nil {
		return err
	}

	report, err := p.Revalidate(cmd.Context(), records)
	if err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	logger.Info().
		Str("run_id", report.RunID).
		Int("scenarios", report.TotalScenarios).
		Int("valid", report.ValidScenarios).
		Int("single_token_failures", report.SingleTokenFailures).
		Int("multi_token_failures", report.MultiTokenFailures).
		Int("missing_prompts", report.MissingPrompts).
		Msg("Validation complete")

	if validateShowFailures {
		for _, failure := range report.Failures {
			detail, err := json.Marshal(failure)
			if err != nil {
				return fmt.Errorf("failed to render failure detail: %w", err)
			}
			fmt.Fprintln(os.Stdout, string(detail))
		}
	}

	if validateReportPath != "" {
		data, err := json.MarshalIndent(report, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to render report: %w", err)
		}
		if err := os.WriteFile(validateReportPath, data, 0o644); err != nil {
			return fmt.Errorf("failed to write report %s: %w", validateReportPath, err)
		}
	}

	if !report.AllValid() {
		return fmt.Errorf("dataset invalid: %d of %d scenarios failed",
			report.TotalScenarios-report.ValidScenarios, report.TotalScenarios)
	}

	return nil
}
