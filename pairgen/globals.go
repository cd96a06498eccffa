package internal

import (
	"log"
	"os"
	"path/filepath"

	"github.com/rs/zerolog"
)

var (
	// DefaultAppName is used for config and cache path construction
	DefaultAppName        = "pairgen"
	DefaultConfigPath     = filepath.Join(getHomeDir(), ".config", DefaultAppName)
	DefaultCacheDir       = filepath.Join(DefaultConfigPath, ".cache")
	DefaultTaskConfigDir  = filepath.Join(DefaultConfigPath, "tasks")
	DefaultDatasetPath    = "dataset.jsonl"
	DefaultRejectsPath    = "rejected.jsonl"
	DefaultGlobalConfig   = filepath.Join(DefaultConfigPath, "config.yaml")

	// Default tokenizer set; names must stay stable across a run so that
	// per-tokenizer diagnostics remain comparable.
	DefaultTokenizerNames = []string{"bert", "cl100k", "o200k"}
)

func getHomeDir() string {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		// Fallback to current working directory if home directory is unavailable
		cwd, cwdErr := os.Getwd()
		if cwdErr != nil {
			// Last resort - use tmp directory
			log.Printf("Unable to get home or working directory, using /tmp: %v", err)
			return "/tmp"
		}
		log.Printf("Unable to get home directory, using current working directory: %v", err)
		return cwd
	}
	return homeDir
}

// GetLogger returns a properly configured zerolog logger instance
func GetLogger() zerolog.Logger {
	return zerolog.New(os.Stderr).With().Timestamp().Logger()
}
