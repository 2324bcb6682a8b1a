// Package token provides token counting for chunk sizing. The tokenizer is
// an injected dependency of the chunking engine so tests and offline runs can
// substitute a deterministic implementation.
package token

import (
	"strings"
	"sync"
)

// Tokenizer counts and round-trips tokens for a fixed downstream embedding model.
type Tokenizer interface {
	Count(text string) int
	Encode(text string) []int
	Decode(tokens []int) string
}

// Words is a whitespace-word tokenizer: one token per word. It approximates
// the real BPE closely enough for chunk sizing when the vocabulary is
// unavailable (tests, air-gapped runs). The zero value is not usable; call
// NewWords.
type Words struct {
	mu    sync.Mutex
	ids   map[string]int
	words []string
}

// NewWords returns a word tokenizer with an empty vocabulary. The vocabulary
// grows as texts are encoded, so Decode round-trips any tokens produced by
// the same instance.
func NewWords() *Words {
	return &Words{ids: make(map[string]int)}
}

// Count returns the number of whitespace-separated words.
func (w *Words) Count(text string) int {
	return len(strings.Fields(text))
}

// Encode assigns each distinct word a stable id within this instance.
func (w *Words) Encode(text string) []int {
	fields := strings.Fields(text)
	w.mu.Lock()
	defer w.mu.Unlock()
	tokens := make([]int, len(fields))
	for i, f := range fields {
		id, ok := w.ids[f]
		if !ok {
			id = len(w.words)
			w.ids[f] = id
			w.words = append(w.words, f)
		}
		tokens[i] = id
	}
	return tokens
}

// Decode joins the words for the given token ids with single spaces.
// Unknown ids are skipped.
func (w *Words) Decode(tokens []int) string {
	w.mu.Lock()
	defer w.mu.Unlock()
	parts := make([]string, 0, len(tokens))
	for _, t := range tokens {
		if t >= 0 && t < len(w.words) {
			parts = append(parts, w.words[t])
		}
	}
	return strings.Join(parts, " ")
}
