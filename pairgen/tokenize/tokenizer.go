package tokenize

import (
	"fmt"
)

// Tokenizer converts raw text to an ordered sequence of content-token IDs.
// Special/control tokens are never included in the output; validation compares
// content tokens only.
type Tokenizer interface {
	Encode(text string) ([]int, error)
}

// Kind selects a tokenizer backend implementation.
type Kind string

const (
	// KindWordPiece loads a BERT-style WordPiece vocabulary from disk.
	KindWordPiece Kind = "wordpiece"
	// KindTiktoken uses an OpenAI BPE encoding by name (e.g. cl100k_base).
	KindTiktoken Kind = "tiktoken"
)

// Spec describes one named tokenizer in a Set. The set of names used must be
// identical across all validations in a run to keep diagnostics comparable,
// so Specs are configuration, resolved once at Set construction.
type Spec struct {
	Name string `mapstructure:"name" yaml:"name"`
	Kind Kind   `mapstructure:"kind" yaml:"kind"`
	// Path locates the vocabulary file for file-backed kinds; relative paths
	// resolve against the cache directory.
	Path string `mapstructure:"path" yaml:"path"`
	// Encoding names the BPE encoding for the tiktoken kind.
	Encoding string `mapstructure:"encoding" yaml:"encoding"`
}

// ErrUnsupported indicates the tokenizer could not be initialized
var ErrUnsupported = fmt.Errorf("unsupported tokenizer configuration")
