package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/probelab/pairgen/pairgen/dataset"
	"github.com/probelab/pairgen/pairgen/pipeline"
	"github.com/probelab/pairgen/pairgen/tasks"
)

var (
	screenTask    string
	screenOutput  string
	screenRejects string
	screenStartID int
	screenAppend  bool
)

var screenCmd = &cobra.Command{
	Use:   "screen <candidates.jsonl>",
	Short: "Screen generated candidate pairs into a validated dataset",
	Long: `Screen reads generated (safe, harmful) candidate pairs, renders both template
variants from the task configuration, validates each pair against the token
constraints, and writes accepted scenarios as dataset records. Rejected
candidates are appended to a rejects file with full diagnostics.

Examples:
  pairgen screen candidates.jsonl --task refusal
  pairgen screen candidates.jsonl --task refusal --append --start-id 120`,
	Args: cobra.ExactArgs(1),
	RunE: runScreen,
}

func init() {
	rootCmd.AddCommand(screenCmd)
	screenCmd.Flags().StringVarP(&screenTask, "task", "t", "", "task name (required)")
	screenCmd.Flags().StringVarP(&screenOutput, "output", "o", "", "dataset output path (default from config)")
	screenCmd.Flags().StringVar(&screenRejects, "rejects", "", "rejects output path (default from config)")
	screenCmd.Flags().IntVar(&screenStartID, "start-id", 0, "first scenario ID to assign")
	screenCmd.Flags().BoolVar(&screenAppend, "append", false, "append to the dataset instead of replacing it")
	screenCmd.MarkFlagRequired("task")
}

func runScreen(cmd *cobra.Command, args []string) error {
	task, err := tasks.NewLoader(cfg.Pairgen.TaskDir).LoadTask(screenTask)
	if err != nil {
		return err
	}

	candidates, err := pipeline.LoadCandidates(args[0])
	if err != nil {
		return err
	}
	if len(candidates) == 0 {
		return fmt.Errorf("no candidates found in %s", args[0])
	}

	p, err := newPipeline(true)
	if err != nil {
		return err
	}

	res, err := p.Screen(cmd.Context(), task.TaskName, candidates, task.ValidationTemplates())
	if err != nil {
		return fmt.Errorf("screening failed: %w", err)
	}

	outputPath := screenOutput
	if outputPath == "" {
		outputPath = cfg.Pairgen.Dataset.OutputPath
	}
	rejectsPath := screenRejects
	if rejectsPath == "" {
		rejectsPath = cfg.Pairgen.Dataset.RejectsPath
	}

	records := dataset.ExpandScenarios(task.TaskName, res.Accepted, screenStartID)
	if screenAppend {
		err = dataset.AppendRecords(outputPath, records)
	} else {
		err = dataset.WriteRecords(outputPath, records)
	}
	if err != nil {
		return err
	}

	if err := pipeline.WriteRejections(rejectsPath, res.Rejected); err != nil {
		return err
	}

	logger.Info().
		Str("run_id", res.RunID).
		Str("task", task.TaskName).
		Int("accepted", len(res.Accepted)).
		Int("rejected", len(res.Rejected)).
		Str("dataset", outputPath).
		Msg("Screening complete")

	return nil
}
