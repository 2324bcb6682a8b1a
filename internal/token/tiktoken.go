package token

import (
	"fmt"

	"github.com/pkoukk/tiktoken-go"
)

// Tiktoken wraps the BPE tokenizer used by the downstream embedding model, so
// chunk budgets line up with what the embedder actually sees.
type Tiktoken struct {
	enc *tiktoken.Tiktoken
}

// NewTiktoken returns a tokenizer for the given embedding model name
// (e.g. "text-embedding-3-small").
func NewTiktoken(model string) (*Tiktoken, error) {
	enc, err := tiktoken.EncodingForModel(model)
	if err != nil {
		return nil, fmt.Errorf("load tokenizer for model %q: %w", model, err)
	}
	return &Tiktoken{enc: enc}, nil
}

// Count returns the number of BPE tokens in text.
func (t *Tiktoken) Count(text string) int {
	return len(t.enc.Encode(text, nil, nil))
}

// Encode returns the BPE token ids for text.
func (t *Tiktoken) Encode(text string) []int {
	return t.enc.Encode(text, nil, nil)
}

// Decode converts token ids back to text.
func (t *Tiktoken) Decode(tokens []int) string {
	return t.enc.Decode(tokens)
}
