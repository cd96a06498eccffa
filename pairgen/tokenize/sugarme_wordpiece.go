package tokenize

import (
	"fmt"
	"os"
	"path/filepath"

	tk "github.com/sugarme/tokenizer"
	"github.com/sugarme/tokenizer/model/wordpiece"
	"github.com/sugarme/tokenizer/normalizer"
	"github.com/sugarme/tokenizer/pretokenizer"
)

// SugarWordPiece wraps sugarme/tokenizer WordPiece (BERT-style). Encoding
// excludes [CLS]/[SEP] so only content tokens are compared downstream.
type SugarWordPiece struct {
	t *tk.Tokenizer
}

// NewSugarWordPiece loads vocab.txt and builds a BERT WordPiece tokenizer.
// vocabPath may name the vocab file itself or a directory containing vocab.txt.
func NewSugarWordPiece(vocabPath string) (*SugarWordPiece, error) {
	vocabFile := vocabPath
	if fi, err := os.Stat(vocabPath); err == nil && fi.IsDir() {
		vocabFile = filepath.Join(vocabPath, "vocab.txt")
	}
	if _, err := os.Stat(vocabFile); err != nil {
		return nil, fmt.Errorf("wordpiece vocab not found at %s: %w", vocabFile, err)
	}

	// Prefer initializing WordPiece from the vocab file to avoid nil-map panics
	var wp wordpiece.WordPiece
	if nw, err := wordpiece.NewWordPieceFromFile(vocabFile, "[UNK]"); err == nil {
		wp = nw
	} else {
		builder := wordpiece.NewWordPieceBuilder().Files(vocabFile)
		wp = builder.Build()
	}

	t := tk.NewTokenizer(wp)

	// Basic normalizer and pre-tokenizer similar to BERT
	t.WithNormalizer(normalizer.NewBertNormalizer(true, true, true, true))
	t.WithPreTokenizer(pretokenizer.NewBertPreTokenizer())

	// No post-processor: special tokens must stay out of the sequences so
	// positional diffs line up on content tokens.
	return &SugarWordPiece{t: t}, nil
}

func (s *SugarWordPiece) Encode(text string) ([]int, error) {
	enc, err := s.t.Encode(tk.NewSingleEncodeInput(tk.NewInputSequence(text)), false)
	if err != nil {
		return nil, fmt.Errorf("wordpiece encode failed: %w", err)
	}
	ids := enc.GetIds()
	out := make([]int, len(ids))
	copy(out, ids)
	return out, nil
}
