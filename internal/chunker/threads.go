package chunker

import (
	"fmt"
	"strings"

	"github.com/vantagedb/scout/internal/models"
)

// chunkGitHubIssue emits the issue header and body, then packs comments into
// chunks close to the token budget. Each comment line names the issue so a
// chunk stays meaningful on its own.
func (c *Chunker) chunkGitHubIssue(rec *models.SourceRecord) []string {
	meta, _ := rec.Meta.(*models.GitHubIssueMeta)

	state := "unknown"
	var labels []string
	var comments []string
	if meta != nil {
		if meta.State != "" {
			state = meta.State
		}
		labels = meta.Labels
		comments = meta.TopComments
	}

	header := rec.Title
	if len(labels) > 0 {
		header += " [" + strings.Join(labels, ", ") + "]"
	}
	header += fmt.Sprintf(" (state: %s)", state)

	var chunks []string
	body := header + "\n" + rec.Text
	if c.tok.Count(body) <= c.chunkTokens {
		chunks = append(chunks, strings.TrimSpace(body))
	} else {
		for _, sc := range c.recursiveSplit(body) {
			chunks = append(chunks, strings.TrimSpace(sc))
		}
	}

	var buffer []string
	bufferTokens := 0
	flush := func() {
		if len(buffer) == 0 {
			return
		}
		chunks = append(chunks, strings.TrimSpace(strings.Join(buffer, "\n\n")))
		buffer = nil
		bufferTokens = 0
	}

	for _, comment := range comments {
		if strings.TrimSpace(comment) == "" {
			continue
		}
		text := fmt.Sprintf("Comment on '%s': %s", rec.Title, comment)
		n := c.tok.Count(text)

		if n >= c.chunkTokens {
			flush()
			for _, sc := range c.recursiveSplit(text) {
				chunks = append(chunks, strings.TrimSpace(sc))
			}
			continue
		}
		if bufferTokens+n > c.chunkTokens {
			flush()
		}
		buffer = append(buffer, text)
		bufferTokens += n
	}
	// Only the final partial buffer is gated on the chunk floor; mid-stream
	// flushes carry whatever accumulated, so short comments are never lost
	// between larger neighbors.
	if len(buffer) > 0 {
		merged := strings.TrimSpace(strings.Join(buffer, "\n\n"))
		if c.tok.Count(merged) >= MinChunkTokens {
			chunks = append(chunks, merged)
		}
	}

	return chunks
}

// chunkGitHubDiscussion emits the discussion body, then the accepted answer as
// its own chunk when one exists. Answers are the highest-signal part of a
// discussion and deserve independent retrieval.
func (c *Chunker) chunkGitHubDiscussion(rec *models.SourceRecord) []string {
	meta, _ := rec.Meta.(*models.GitHubDiscussionMeta)

	category := ""
	if meta != nil {
		category = meta.Category
	}
	header := fmt.Sprintf("%s (discussion, category: %s)", rec.Title, category)

	var chunks []string
	body := header + "\n" + rec.Text
	if c.tok.Count(body) <= c.chunkTokens {
		chunks = append(chunks, strings.TrimSpace(body))
	} else {
		for _, sc := range c.recursiveSplit(body) {
			chunks = append(chunks, strings.TrimSpace(sc))
		}
	}

	if meta != nil && meta.IsAnswered && strings.TrimSpace(meta.AnswerBody) != "" {
		answer := fmt.Sprintf("Accepted answer for '%s': %s", rec.Title, meta.AnswerBody)
		if c.tok.Count(answer) <= c.chunkTokens {
			chunks = append(chunks, strings.TrimSpace(answer))
		} else {
			for _, sc := range c.recursiveSplit(answer) {
				chunks = append(chunks, strings.TrimSpace(sc))
			}
		}
	}

	return chunks
}

// chunkCommunity emits the post as one chunk, then each substantial comment
// separately. Community comments rarely relate to each other, so they are not
// packed together the way issue comments are.
func (c *Chunker) chunkCommunity(rec *models.SourceRecord) []string {
	var comments []string
	switch meta := rec.Meta.(type) {
	case *models.RedditMeta:
		comments = meta.TopComments
	case *models.HNMeta:
		comments = meta.TopComments
	}

	var chunks []string
	post := rec.Title + "\n" + rec.Text
	if n := c.tok.Count(post); n <= c.chunkTokens {
		if n >= MinChunkTokens {
			chunks = append(chunks, strings.TrimSpace(post))
		}
	} else {
		for _, sc := range c.recursiveSplit(post) {
			chunks = append(chunks, strings.TrimSpace(sc))
		}
	}

	for _, comment := range comments {
		text := fmt.Sprintf("Community comment on '%s': %s", rec.Title, comment)
		n := c.tok.Count(text)
		if n < MinChunkTokens {
			continue
		}
		if n <= c.chunkTokens {
			chunks = append(chunks, strings.TrimSpace(text))
			continue
		}
		for _, sc := range c.recursiveSplit(text) {
			chunks = append(chunks, strings.TrimSpace(sc))
		}
	}

	return chunks
}

// chunkSingle keeps short documents whole. Releases, benchmarks and comparison
// pages read as a unit; splitting them loses the comparison context. Only
// documents past the hard ceiling are split.
func (c *Chunker) chunkSingle(title, text string) []string {
	full := title + "\n" + text
	if n := c.tok.Count(full); n <= MaxChunkTokens {
		if n >= MinChunkTokens {
			return []string{strings.TrimSpace(full)}
		}
		return nil
	}
	var chunks []string
	for _, sc := range c.recursiveSplit(full) {
		chunks = append(chunks, strings.TrimSpace(sc))
	}
	return chunks
}

// chunkGeneric is the fallback for unknown source types.
func (c *Chunker) chunkGeneric(title, text string) []string {
	var chunks []string
	for _, sc := range c.recursiveSplit(title + "\n" + text) {
		chunks = append(chunks, strings.TrimSpace(sc))
	}
	return chunks
}
