package tokenize

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
)

// Set is a fixed, ordered collection of named tokenizers. Construction is the
// expensive step (vocabulary and merge tables load from the cache directory);
// a built Set is read-only and safe to share across validation calls.
type Set struct {
	names      []string
	tokenizers map[string]Tokenizer
}

// NewSet builds every tokenizer described by specs. cacheDir anchors relative
// vocabulary paths and is exported to tiktoken's on-disk BPE cache, so repeated
// runs avoid re-downloading rank files.
func NewSet(cacheDir string, specs []Spec) (*Set, error) {
	if len(specs) == 0 {
		return nil, fmt.Errorf("tokenizer set requires at least one spec: %w", ErrUnsupported)
	}

	if cacheDir != "" {
		if err := os.MkdirAll(cacheDir, 0o755); err != nil {
			return nil, fmt.Errorf("failed to create cache directory %s: %w", cacheDir, err)
		}
		// tiktoken-go reads its cache location from the environment, the same
		// way the HF stack reads HF_HOME.
		os.Setenv("TIKTOKEN_CACHE_DIR", cacheDir)
	}

	s := &Set{
		names:      make([]string, 0, len(specs)),
		tokenizers: make(map[string]Tokenizer, len(specs)),
	}

	for _, spec := range specs {
		if spec.Name == "" {
			return nil, fmt.Errorf("tokenizer spec missing name: %w", ErrUnsupported)
		}
		if _, dup := s.tokenizers[spec.Name]; dup {
			return nil, fmt.Errorf("duplicate tokenizer name %q: %w", spec.Name, ErrUnsupported)
		}

		tok, err := buildTokenizer(cacheDir, spec)
		if err != nil {
			return nil, fmt.Errorf("failed to load tokenizer %q: %w", spec.Name, err)
		}

		s.names = append(s.names, spec.Name)
		s.tokenizers[spec.Name] = tok
		slog.Debug("Tokenizer loaded", "name", spec.Name, "kind", spec.Kind)
	}

	return s, nil
}

// NewSetFromTokenizers wraps pre-built tokenizers, preserving order. Used by
// tests to inject lightweight stubs without touching vocabulary files.
func NewSetFromTokenizers(names []string, tokenizers map[string]Tokenizer) *Set {
	return &Set{names: names, tokenizers: tokenizers}
}

func buildTokenizer(cacheDir string, spec Spec) (Tokenizer, error) {
	switch spec.Kind {
	case KindWordPiece:
		path := spec.Path
		if path != "" && !filepath.IsAbs(path) && cacheDir != "" {
			path = filepath.Join(cacheDir, path)
		}
		return NewSugarWordPiece(path)
	case KindTiktoken:
		if spec.Encoding != "" {
			return NewTikToken(spec.Encoding)
		}
		return NewTikTokenForModel(spec.Name)
	default:
		return nil, fmt.Errorf("unknown tokenizer kind %q: %w", spec.Kind, ErrUnsupported)
	}
}

// Names returns tokenizer names in configured order.
func (s *Set) Names() []string {
	out := make([]string, len(s.names))
	copy(out, s.names)
	return out
}

// Len reports how many tokenizers are in the set.
func (s *Set) Len() int {
	return len(s.names)
}

// EncodeAll tokenizes text with every tokenizer in the set. Any backend
// failure is propagated; silently dropping a tokenizer would corrupt the
// cross-tokenizer comparison downstream.
func (s *Set) EncodeAll(text string) (map[string][]int, error) {
	out := make(map[string][]int, len(s.names))
	for _, name := range s.names {
		ids, err := s.tokenizers[name].Encode(text)
		if err != nil {
			return nil, fmt.Errorf("tokenizer %q: %w", name, err)
		}
		out[name] = ids
	}
	return out, nil
}
