package chunker

import "strings"

// separators, in priority order, for recursive splitting. Markdown section
// boundaries first, then paragraphs, lines, sentences, words.
var separators = []string{"\n## ", "\n### ", "\n#### ", "\n\n", "\n", ". ", " "}

// recursiveSplit splits text into chunks of at most chunkTokens, carrying
// overlapTokens of trailing context into each following chunk. The first
// separator that produces more than one merged chunk wins; if none does
// (one giant unbroken token run), the text is hard-split on token windows.
func (c *Chunker) recursiveSplit(text string) []string {
	if strings.TrimSpace(text) == "" {
		return nil
	}
	if c.tok.Count(text) <= c.chunkTokens {
		return []string{text}
	}

	for _, sep := range separators {
		parts := strings.Split(text, sep)
		if len(parts) <= 1 {
			continue
		}
		chunks := c.mergeSplits(parts, sep)
		if len(chunks) > 1 {
			return chunks
		}
	}

	return c.hardSplit(text)
}

// mergeSplits greedily packs consecutive parts into chunks bounded by
// chunkTokens. When a chunk is flushed, the trailing parts whose cumulative
// token count fits the overlap budget seed the next chunk. An undersized
// trailing chunk is merged into its predecessor instead of standing alone.
func (c *Chunker) mergeSplits(parts []string, sep string) []string {
	var chunks []string
	var current []string
	currentTokens := 0

	for _, part := range parts {
		partTokens := c.tok.Count(part)

		if currentTokens+partTokens > c.chunkTokens && len(current) > 0 {
			chunks = append(chunks, strings.Join(current, sep))

			var overlap []string
			overlapTokens := 0
			for i := len(current) - 1; i >= 0; i-- {
				pt := c.tok.Count(current[i])
				if overlapTokens+pt > c.overlapTokens {
					break
				}
				overlap = append([]string{current[i]}, overlap...)
				overlapTokens += pt
			}

			current = append(overlap, part)
			currentTokens = overlapTokens + partTokens
		} else {
			current = append(current, part)
			currentTokens += partTokens
		}
	}

	if len(current) > 0 {
		tail := strings.Join(current, sep)
		if c.tok.Count(tail) >= MinChunkTokens || len(chunks) == 0 {
			chunks = append(chunks, tail)
		} else {
			chunks[len(chunks)-1] = chunks[len(chunks)-1] + sep + tail
		}
	}
	return chunks
}

// hardSplit slices the token stream into windows of chunkTokens, sliding
// forward by chunkTokens-overlapTokens, and decodes each window back to text.
// Last resort when no separator breaks the text.
func (c *Chunker) hardSplit(text string) []string {
	tokens := c.tok.Encode(text)
	var chunks []string
	start := 0
	for start < len(tokens) {
		end := min(start+c.chunkTokens, len(tokens))
		chunks = append(chunks, c.tok.Decode(tokens[start:end]))
		if end >= len(tokens) {
			break
		}
		start = end - c.overlapTokens
	}
	return chunks
}
