package chunker

import (
	"fmt"
	"strings"
	"testing"

	"github.com/vantagedb/scout/internal/taxonomy"
	"github.com/vantagedb/scout/internal/token"
)

func newTestChunker(t *testing.T, chunkTokens, overlapTokens int) *Chunker {
	t.Helper()
	c, err := New(
		Config{ChunkTokens: chunkTokens, OverlapTokens: overlapTokens},
		token.NewWords(),
		taxonomy.Lookup{"replication": "Replication", "indexing": "Indexing"},
		WithSelfOrigin("vantage"),
	)
	if err != nil {
		t.Fatal(err)
	}
	return c
}

// wordRun returns n distinct space-separated words: "w0 w1 ... w{n-1}".
func wordRun(n int) string {
	words := make([]string, n)
	for i := range words {
		words[i] = fmt.Sprintf("w%d", i)
	}
	return strings.Join(words, " ")
}

func lastWords(s string, n int) []string {
	fields := strings.Fields(s)
	if len(fields) < n {
		return fields
	}
	return fields[len(fields)-n:]
}

func TestRecursiveSplitEmpty(t *testing.T) {
	c := newTestChunker(t, 30, 5)
	if got := c.recursiveSplit("   \n  "); got != nil {
		t.Errorf("got %v, want nil", got)
	}
}

func TestRecursiveSplitFits(t *testing.T) {
	c := newTestChunker(t, 30, 5)
	text := wordRun(20)
	got := c.recursiveSplit(text)
	if len(got) != 1 || got[0] != text {
		t.Errorf("got %v, want the text unchanged", got)
	}
}

func TestRecursiveSplitOverlap(t *testing.T) {
	c := newTestChunker(t, 30, 5)
	chunks := c.recursiveSplit(wordRun(100))

	if len(chunks) < 2 {
		t.Fatalf("got %d chunks, want several", len(chunks))
	}
	for _, chunk := range chunks {
		if n := c.tok.Count(chunk); n > 30+MinChunkTokens {
			t.Errorf("chunk of %d tokens is far over budget", n)
		}
	}
	// Each chunk starts with the trailing overlap of its predecessor.
	for i := 1; i < len(chunks); i++ {
		overlap := strings.Join(lastWords(chunks[i-1], 5), " ")
		if !strings.HasPrefix(chunks[i], overlap) {
			t.Errorf("chunk %d does not start with overlap %q: %q", i, overlap, chunks[i])
		}
	}
}

func TestRecursiveSplitPrefersParagraphs(t *testing.T) {
	c := newTestChunker(t, 30, 5)
	para1 := wordRun(25)
	para2 := strings.ToUpper(wordRun(50))
	chunks := c.recursiveSplit(para1 + "\n\n" + para2)

	if len(chunks) != 2 {
		t.Fatalf("got %d chunks, want 2 paragraph chunks", len(chunks))
	}
	if chunks[0] != para1 {
		t.Errorf("first chunk = %q", chunks[0])
	}
	if !strings.Contains(chunks[1], para2) {
		t.Errorf("second chunk missing paragraph two: %q", chunks[1])
	}
}

func TestMergeSplitsUndersizedTail(t *testing.T) {
	c := newTestChunker(t, 50, 10)
	parts := strings.Fields(wordRun(60))
	chunks := c.mergeSplits(parts, " ")

	if len(chunks) != 1 {
		t.Fatalf("got %d chunks, want the tail merged into one", len(chunks))
	}
	if !strings.Contains(chunks[0], "w59") {
		t.Errorf("tail words lost: %q", chunks[0])
	}
}

func TestHardSplit(t *testing.T) {
	c := newTestChunker(t, 20, 5)
	chunks := c.hardSplit(wordRun(30))

	if len(chunks) != 2 {
		t.Fatalf("got %d chunks, want 2", len(chunks))
	}
	if got := strings.Fields(chunks[0]); len(got) != 20 || got[0] != "w0" || got[19] != "w19" {
		t.Errorf("first window = %v", got)
	}
	if got := strings.Fields(chunks[1]); got[0] != "w15" || got[len(got)-1] != "w29" {
		t.Errorf("second window = %v", got)
	}
}

func TestNewValidation(t *testing.T) {
	tok := token.NewWords()
	tests := []struct {
		name string
		cfg  Config
	}{
		{"zero chunk tokens", Config{ChunkTokens: 0, OverlapTokens: 0}},
		{"negative overlap", Config{ChunkTokens: 100, OverlapTokens: -1}},
		{"overlap equals chunk", Config{ChunkTokens: 100, OverlapTokens: 100}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := New(tt.cfg, tok, nil); err == nil {
				t.Error("expected config error")
			}
		})
	}
	if _, err := New(Config{ChunkTokens: 100, OverlapTokens: 10}, nil, nil); err == nil {
		t.Error("expected error for nil tokenizer")
	}
}
