package chunker

import (
	"strings"
	"testing"

	"github.com/vantagedb/scout/internal/models"
)

func blogRecord(origin string, words int) *models.SourceRecord {
	return &models.SourceRecord{
		ID:         models.RecordID(origin, models.SourceBlog, "https://example.com/post"),
		Origin:     origin,
		SourceType: models.SourceBlog,
		URL:        "https://example.com/post",
		Title:      "Post title",
		Text:       wordRun(words),
		Topics:     []string{"replication"},
	}
}

func TestChunkRecordEmptyText(t *testing.T) {
	c := newTestChunker(t, 400, 60)
	rec := blogRecord("acmedb", 0)
	rec.Text = "   \n  "
	if got := c.ChunkRecord(rec); got != nil {
		t.Errorf("got %d chunks, want none", len(got))
	}
}

func TestContextPrefix(t *testing.T) {
	c := newTestChunker(t, 400, 60)

	rec := blogRecord("acmedb", 80)
	chunks := c.ChunkRecord(rec)
	if len(chunks) != 1 {
		t.Fatalf("got %d chunks", len(chunks))
	}
	if !strings.HasPrefix(chunks[0].Text, "[Acmedb | Blog | Replication] ") {
		t.Errorf("prefix = %q", chunks[0].Text[:40])
	}

	// Our own product's label is upper-cased, not capitalized.
	self := blogRecord("vantage", 80)
	chunks = c.ChunkRecord(self)
	if !strings.HasPrefix(chunks[0].Text, "[VANTAGE | Blog | Replication] ") {
		t.Errorf("self prefix = %q", chunks[0].Text[:40])
	}
}

func TestContextPrefixUnknownTopic(t *testing.T) {
	c := newTestChunker(t, 400, 60)
	rec := blogRecord("acmedb", 80)
	rec.Topics = []string{"unclassified"}
	chunks := c.ChunkRecord(rec)
	if !strings.HasPrefix(chunks[0].Text, "[Acmedb | Blog | General] ") {
		t.Errorf("prefix = %q", chunks[0].Text[:40])
	}
}

func TestChunkRecordFields(t *testing.T) {
	c := newTestChunker(t, 400, 60)
	rec := blogRecord("acmedb", 80)
	rec.Credibility = models.CredibilityOfficial

	chunks := c.ChunkRecord(rec)
	if len(chunks) != 1 {
		t.Fatalf("got %d chunks", len(chunks))
	}
	chunk := chunks[0]
	if chunk.Competitor != "acmedb" || chunk.ParentDocID != rec.ID {
		t.Errorf("lineage fields wrong: %+v", chunk)
	}
	if chunk.ChunkIndex != 0 {
		t.Errorf("ChunkIndex = %d", chunk.ChunkIndex)
	}
	if chunk.TokenCount != c.tok.Count(chunk.Text) {
		t.Errorf("TokenCount = %d", chunk.TokenCount)
	}
	if chunk.Credibility != models.CredibilityOfficial {
		t.Errorf("Credibility = %s", chunk.Credibility)
	}
	if !strings.HasPrefix(chunk.ID, "acmedb-chunk-") {
		t.Errorf("ID = %s", chunk.ID)
	}
}

func TestChunkGitHubIssue(t *testing.T) {
	c := newTestChunker(t, 150, 20)
	rec := &models.SourceRecord{
		ID:         "acmedb-github_issue-abc",
		Origin:     "acmedb",
		SourceType: models.SourceGitHubIssue,
		Title:      "Replication lag",
		Text:       wordRun(80),
		Topics:     []string{"replication"},
		Meta: &models.GitHubIssueMeta{
			IssueNumber: 42,
			State:       "open",
			Labels:      []string{"bug"},
			TopComments: []string{wordRun(60), wordRun(60), wordRun(60)},
		},
	}

	chunks := c.ChunkRecord(rec)
	if len(chunks) != 3 {
		t.Fatalf("got %d chunks, want body + two comment chunks", len(chunks))
	}
	if !strings.Contains(chunks[0].Text, "Replication lag [bug] (state: open)") {
		t.Errorf("body chunk header = %q", chunks[0].Text)
	}
	for _, chunk := range chunks[1:] {
		if !strings.Contains(chunk.Text, "Comment on 'Replication lag':") {
			t.Errorf("comment chunk missing context: %q", chunk.Text)
		}
	}
}

func TestChunkGitHubIssueShortCommentBetweenLarge(t *testing.T) {
	c := newTestChunker(t, 150, 20)
	short := "lgtm ship it"
	rec := &models.SourceRecord{
		Origin:     "acmedb",
		SourceType: models.SourceGitHubIssue,
		Title:      "Replication lag",
		Text:       wordRun(80),
		Topics:     []string{"replication"},
		Meta: &models.GitHubIssueMeta{
			State:       "open",
			TopComments: []string{short, wordRun(140)},
		},
	}

	chunks := c.ChunkRecord(rec)
	if len(chunks) != 3 {
		t.Fatalf("got %d chunks, want body + flushed short comment + long comment", len(chunks))
	}
	// The short comment is flushed to make room for the next one; a mid-stream
	// flush keeps whatever accumulated, however small.
	found := false
	for _, chunk := range chunks {
		if strings.Contains(chunk.Text, short) {
			found = true
		}
	}
	if !found {
		t.Error("short comment lost when flushed before a near-budget comment")
	}
}

func TestChunkGitHubIssueTinyBodyKept(t *testing.T) {
	c := newTestChunker(t, 150, 20)
	rec := &models.SourceRecord{
		Origin:     "acmedb",
		SourceType: models.SourceGitHubIssue,
		Title:      "Crash",
		Text:       wordRun(20),
		Topics:     []string{"replication"},
		Meta:       &models.GitHubIssueMeta{State: "open"},
	}
	chunks := c.ChunkRecord(rec)
	if len(chunks) != 1 {
		t.Fatalf("got %d chunks, want the body kept regardless of size", len(chunks))
	}
	if !strings.Contains(chunks[0].Text, "(state: open)") {
		t.Errorf("body chunk = %q", chunks[0].Text)
	}
}

func TestChunkGitHubIssueTrailingShortCommentDropped(t *testing.T) {
	c := newTestChunker(t, 150, 20)
	rec := &models.SourceRecord{
		Origin:     "acmedb",
		SourceType: models.SourceGitHubIssue,
		Title:      "Crash",
		Text:       wordRun(80),
		Topics:     []string{"replication"},
		Meta: &models.GitHubIssueMeta{
			State:       "open",
			TopComments: []string{"lgtm"},
		},
	}
	chunks := c.ChunkRecord(rec)
	if len(chunks) != 1 {
		t.Fatalf("got %d chunks, want the trailing short buffer dropped", len(chunks))
	}
}

func TestChunkGitHubIssueNoMeta(t *testing.T) {
	c := newTestChunker(t, 150, 20)
	rec := &models.SourceRecord{
		Origin:     "acmedb",
		SourceType: models.SourceGitHubIssue,
		Title:      "Crash on startup",
		Text:       wordRun(80),
		Topics:     []string{"replication"},
	}
	chunks := c.ChunkRecord(rec)
	if len(chunks) != 1 {
		t.Fatalf("got %d chunks", len(chunks))
	}
	if !strings.Contains(chunks[0].Text, "(state: unknown)") {
		t.Errorf("missing state fallback: %q", chunks[0].Text)
	}
}

func TestChunkGitHubDiscussionAnswer(t *testing.T) {
	c := newTestChunker(t, 150, 20)
	rec := &models.SourceRecord{
		Origin:     "acmedb",
		SourceType: models.SourceGitHubDiscussion,
		Title:      "How to shard",
		Text:       wordRun(80),
		Topics:     []string{"replication"},
		Meta: &models.GitHubDiscussionMeta{
			Category:   "Q&A",
			IsAnswered: true,
			AnswerBody: strings.ReplaceAll(wordRun(60), "w", "a"),
		},
	}

	chunks := c.ChunkRecord(rec)
	if len(chunks) != 2 {
		t.Fatalf("got %d chunks, want body + answer", len(chunks))
	}
	if !strings.Contains(chunks[0].Text, "(discussion, category: Q&A)") {
		t.Errorf("body chunk = %q", chunks[0].Text)
	}
	if !strings.Contains(chunks[1].Text, "Accepted answer for 'How to shard':") {
		t.Errorf("answer chunk = %q", chunks[1].Text)
	}
}

func TestChunkGitHubDiscussionNoMeta(t *testing.T) {
	c := newTestChunker(t, 150, 20)
	rec := &models.SourceRecord{
		Origin:     "acmedb",
		SourceType: models.SourceGitHubDiscussion,
		Title:      "Quick question",
		Text:       wordRun(20),
		Topics:     []string{"replication"},
	}
	chunks := c.ChunkRecord(rec)
	if len(chunks) != 1 {
		t.Fatalf("got %d chunks, want the body kept regardless of size", len(chunks))
	}
	if !strings.Contains(chunks[0].Text, "(discussion, category: )") {
		t.Errorf("header = %q, want the category rendered empty when absent", chunks[0].Text)
	}
}

func TestChunkCommunity(t *testing.T) {
	c := newTestChunker(t, 150, 20)
	rec := &models.SourceRecord{
		Origin:     "acmedb",
		SourceType: models.SourceCommunityHN,
		Title:      "AcmeDB benchmarks",
		Text:       wordRun(80),
		Topics:     []string{"replication"},
		Meta: &models.HNMeta{
			Points:      512,
			TopComments: []string{"too short", wordRun(60)},
		},
	}

	chunks := c.ChunkRecord(rec)
	if len(chunks) != 2 {
		t.Fatalf("got %d chunks, want post + one substantial comment", len(chunks))
	}
	if !strings.Contains(chunks[1].Text, "Community comment on 'AcmeDB benchmarks':") {
		t.Errorf("comment chunk = %q", chunks[1].Text)
	}
}

func TestChunkSingleBounds(t *testing.T) {
	c := newTestChunker(t, 400, 60)

	release := func(words int) *models.SourceRecord {
		return &models.SourceRecord{
			Origin:     "acmedb",
			SourceType: models.SourceGitHubRelease,
			Title:      "v2.1.0",
			Text:       wordRun(words),
		}
	}

	if got := c.ChunkRecord(release(200)); len(got) != 1 {
		t.Errorf("mid-size release: got %d chunks, want 1", len(got))
	}
	if got := c.ChunkRecord(release(700)); len(got) != 1 {
		t.Errorf("release under the hard ceiling must stay whole, got %d", len(got))
	}
	if got := c.ChunkRecord(release(20)); len(got) != 0 {
		t.Errorf("tiny release: got %d chunks, want 0", len(got))
	}
	if got := c.ChunkRecord(release(900)); len(got) < 2 {
		t.Errorf("oversized release: got %d chunks, want a split", len(got))
	}
}

func TestChunkMetadata(t *testing.T) {
	c := newTestChunker(t, 150, 20)

	rec := &models.SourceRecord{
		Origin:     "acmedb",
		SourceType: models.SourceGitHubIssue,
		Title:      "Bug",
		Text:       wordRun(80),
		Topics:     []string{"replication"},
		Meta: &models.GitHubIssueMeta{
			State:  "closed",
			Labels: []string{"bug", "p1"},
			IsBug:  true,
		},
	}
	chunks := c.ChunkRecord(rec)
	if len(chunks) == 0 {
		t.Fatal("no chunks")
	}
	meta := chunks[0].Metadata
	if meta["github_state"] != "closed" || meta["is_bug"] != true {
		t.Errorf("metadata = %v", meta)
	}
	if meta["labels"] != "bug,p1" {
		t.Errorf("labels = %v", meta["labels"])
	}
}

func TestChunkRecordsBatch(t *testing.T) {
	c := newTestChunker(t, 400, 60)
	records := []*models.SourceRecord{
		blogRecord("acmedb", 80),
		blogRecord("querystone", 80),
	}
	chunks := c.ChunkRecords(records)
	if len(chunks) != 2 {
		t.Fatalf("got %d chunks", len(chunks))
	}
	if chunks[0].Competitor != "acmedb" || chunks[1].Competitor != "querystone" {
		t.Error("batch order not preserved")
	}
}

func TestCapitalize(t *testing.T) {
	tests := []struct{ in, want string }{
		{"acmedb", "Acmedb"},
		{"ACMEDB", "Acmedb"},
		{"q", "Q"},
		{"", ""},
	}
	for _, tt := range tests {
		if got := capitalize(tt.in); got != tt.want {
			t.Errorf("capitalize(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
