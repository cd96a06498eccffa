package config

import (
	"fmt"
	"path/filepath"
	"strings"

	internal "github.com/probelab/pairgen/pairgen"
	"github.com/probelab/pairgen/pairgen/tokenize"

	"github.com/spf13/viper"
)

// Config stores all configuration of the application.
// The values are read by viper from a config file or environment variables.
type Config struct {
	Pairgen PairgenConfig `mapstructure:"pairgen"`
}

// PairgenConfig stores pairgen specific configurations.
type PairgenConfig struct {
	CacheDir   string           `mapstructure:"cacheDir"`
	TaskDir    string           `mapstructure:"taskDir"`
	Dataset    DatasetConfig    `mapstructure:"dataset"`
	Tokenizers []tokenize.Spec  `mapstructure:"tokenizers"`
	Validation ValidationConfig `mapstructure:"validation"`
	Logging    LoggingConfig    `mapstructure:"logging"`
}

// DatasetConfig stores dataset output locations.
type DatasetConfig struct {
	OutputPath  string `mapstructure:"outputPath"`
	RejectsPath string `mapstructure:"rejectsPath"`
}

// ValidationConfig stores batch validation settings.
type ValidationConfig struct {
	// Workers bounds the validation pool; 0 lets the pipeline pick a count
	// based on available CPUs.
	Workers int `mapstructure:"workers"`
}

// LoggingConfig stores logging configurations.
type LoggingConfig struct {
	Level string `mapstructure:"level"`
}

var AppConfig Config

// LoadConfig reads configuration from file or environment variables.
func LoadConfig(configPath string) (*Config, error) {
	if configPath != "" {
		viper.SetConfigFile(configPath)
	} else {
		viper.AddConfigPath(".")
		viper.AddConfigPath("..")
		viper.AddConfigPath(filepath.Join("etc", internal.DefaultAppName))
		viper.AddConfigPath(internal.DefaultConfigPath)
		viper.SetConfigName("config")
		viper.SetConfigType("yaml")
	}

	// Set default values
	viper.SetDefault("pairgen.cacheDir", internal.DefaultCacheDir)
	viper.SetDefault("pairgen.taskDir", internal.DefaultTaskConfigDir)
	viper.SetDefault("pairgen.dataset.outputPath", internal.DefaultDatasetPath)
	viper.SetDefault("pairgen.dataset.rejectsPath", internal.DefaultRejectsPath)
	viper.SetDefault("pairgen.validation.workers", 0)
	viper.SetDefault("pairgen.logging.level", "info")

	viper.AutomaticEnv()                                   // Read in environment variables that match
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_")) // Replace dots with underscores in env var names e.g. pairgen.dataset.outputPath becomes PAIRGEN_DATASET_OUTPUTPATH

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			// Config file not found; defaults will be used. This is not an error for the application to halt on.
		} else {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	err := viper.Unmarshal(&AppConfig)
	if err != nil {
		return nil, fmt.Errorf("unable to decode into struct: %w", err)
	}

	// Tokenizer specs are a list, which viper defaults handle poorly; fill
	// the documented default set after unmarshalling instead.
	if len(AppConfig.Pairgen.Tokenizers) == 0 {
		AppConfig.Pairgen.Tokenizers = DefaultTokenizerSpecs()
	}

	return &AppConfig, nil
}

// DefaultTokenizerSpecs returns the default three-tokenizer set: a BERT
// WordPiece vocabulary expected under the cache directory plus two OpenAI
// BPE encodings.
func DefaultTokenizerSpecs() []tokenize.Spec {
	return []tokenize.Spec{
		{Name: internal.DefaultTokenizerNames[0], Kind: tokenize.KindWordPiece, Path: "bert-base-uncased/vocab.txt"},
		{Name: internal.DefaultTokenizerNames[1], Kind: tokenize.KindTiktoken, Encoding: "cl100k_base"},
		{Name: internal.DefaultTokenizerNames[2], Kind: tokenize.KindTiktoken, Encoding: "o200k_base"},
	}
}
