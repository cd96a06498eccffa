package cli

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/ZanzyTHEbar/assert-lib"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	internal "github.com/probelab/pairgen/pairgen"
	"github.com/probelab/pairgen/pairgen/config"
	"github.com/probelab/pairgen/pairgen/pipeline"
	"github.com/probelab/pairgen/pairgen/tokenize"
	"github.com/probelab/pairgen/pairgen/validate"
)

var (
	cfgFile string
	cfg     *config.Config
	logger  zerolog.Logger
)

var rootCmd = &cobra.Command{
	Use:   "pairgen",
	Short: "Validate matched prompt/counterfactual pairs against cross-tokenizer constraints",
	Long: `pairgen checks that matched safe/harmful prompt pairs tokenize to the same
length and differ in exactly one token position, simultaneously under every
configured tokenizer.

Example usage:
  pairgen screen candidates.jsonl --task refusal   # Screen generated candidates into a dataset
  pairgen validate dataset.jsonl                   # Re-validate an existing dataset`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = config.LoadConfig(cfgFile)
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}

		setupLogging(cfg.Pairgen.Logging.Level)
		return nil
	},
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default searches ., .., and the user config dir)")
}

func setupLogging(level string) {
	logger = internal.GetLogger()

	zl, err := zerolog.ParseLevel(level)
	if err != nil {
		zl = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(zl)

	// Domain packages log through slog; keep both sinks at the same level.
	switch zl {
	case zerolog.DebugLevel, zerolog.TraceLevel:
		slog.SetLogLoggerLevel(slog.LevelDebug)
	case zerolog.WarnLevel:
		slog.SetLogLoggerLevel(slog.LevelWarn)
	case zerolog.ErrorLevel:
		slog.SetLogLoggerLevel(slog.LevelError)
	default:
		slog.SetLogLoggerLevel(slog.LevelInfo)
	}
}

// newPipeline builds the tokenizer set from config and wraps it in a batch
// pipeline. Loading vocabularies is the expensive step, so commands call this
// once up front.
func newPipeline(showProgress bool) (*pipeline.Pipeline, error) {
	logger.Info().
		Str("cache_dir", cfg.Pairgen.CacheDir).
		Int("tokenizers", len(cfg.Pairgen.Tokenizers)).
		Msg("Loading tokenizers")

	set, err := tokenize.NewSet(cfg.Pairgen.CacheDir, cfg.Pairgen.Tokenizers)
	if err != nil {
		return nil, fmt.Errorf("failed to build tokenizer set: %w", err)
	}

	logger.Info().Strs("names", set.Names()).Msg("Tokenizers loaded")

	validator := validate.NewValidator(set)
	assertHandler := assert.NewAssertHandler()

	return pipeline.New(validator, assertHandler, pipeline.Options{
		Workers:      cfg.Pairgen.Validation.Workers,
		ShowProgress: showProgress,
	}), nil
}
