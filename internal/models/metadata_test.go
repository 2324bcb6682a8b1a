package models

import (
	"encoding/json"
	"testing"
)

func TestRecordMetadataRoundTrip(t *testing.T) {
	rec := SourceRecord{
		ID:         "acmedb-github_issue-abc123def456",
		Origin:     "acmedb",
		SourceType: SourceGitHubIssue,
		URL:        "https://github.com/acmedb/acmedb/issues/42",
		Title:      "Replication lag under load",
		Text:       "Replica falls behind during bulk writes.",
		Meta: &GitHubIssueMeta{
			IssueNumber:   42,
			State:         "open",
			Labels:        []string{"bug", "replication"},
			CommentsCount: 7,
			IsBug:         true,
		},
	}

	data, err := json.Marshal(rec)
	if err != nil {
		t.Fatal(err)
	}

	var got SourceRecord
	if err := json.Unmarshal(data, &got); err != nil {
		t.Fatal(err)
	}
	meta, ok := got.Meta.(*GitHubIssueMeta)
	if !ok {
		t.Fatalf("metadata decoded as %T, want *GitHubIssueMeta", got.Meta)
	}
	if meta.IssueNumber != 42 || meta.State != "open" || !meta.IsBug {
		t.Errorf("metadata fields lost in round trip: %+v", meta)
	}
	if len(meta.Labels) != 2 {
		t.Errorf("labels = %v, want 2 entries", meta.Labels)
	}
}

func TestRecordMetadataVariants(t *testing.T) {
	tests := []struct {
		name       string
		sourceType SourceType
		metadata   string
		check      func(t *testing.T, meta Metadata)
	}{
		{
			name:       "discussion",
			sourceType: SourceGitHubDiscussion,
			metadata:   `{"discussion_number": 9, "is_answered": true, "answer_body": "Use streams."}`,
			check: func(t *testing.T, meta Metadata) {
				m, ok := meta.(*GitHubDiscussionMeta)
				if !ok || !m.IsAnswered || m.AnswerBody != "Use streams." {
					t.Errorf("got %#v", meta)
				}
			},
		},
		{
			name:       "release",
			sourceType: SourceGitHubRelease,
			metadata:   `{"tag_name": "v2.1.0", "is_prerelease": true}`,
			check: func(t *testing.T, meta Metadata) {
				m, ok := meta.(*GitHubReleaseMeta)
				if !ok || m.TagName != "v2.1.0" || !m.IsPrerelease {
					t.Errorf("got %#v", meta)
				}
			},
		},
		{
			name:       "reddit",
			sourceType: SourceCommunityReddit,
			metadata:   `{"subreddit": "databases", "score": 128, "num_comments": 34}`,
			check: func(t *testing.T, meta Metadata) {
				m, ok := meta.(*RedditMeta)
				if !ok || m.Score != 128 || m.Subreddit != "databases" {
					t.Errorf("got %#v", meta)
				}
			},
		},
		{
			name:       "hn",
			sourceType: SourceCommunityHN,
			metadata:   `{"hn_id": 777, "points": 512, "num_comments": 200}`,
			check: func(t *testing.T, meta Metadata) {
				m, ok := meta.(*HNMeta)
				if !ok || m.Points != 512 {
					t.Errorf("got %#v", meta)
				}
			},
		},
		{
			name:       "blog",
			sourceType: SourceBlog,
			metadata:   `{"relevance_score": 0.87, "priority_keywords_matched": ["replication"]}`,
			check: func(t *testing.T, meta Metadata) {
				m, ok := meta.(*BlogMeta)
				if !ok || m.RelevanceScore != 0.87 {
					t.Errorf("got %#v", meta)
				}
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			raw := `{"source_type": "` + string(tt.sourceType) + `", "metadata": ` + tt.metadata + `}`
			var rec SourceRecord
			if err := json.Unmarshal([]byte(raw), &rec); err != nil {
				t.Fatal(err)
			}
			tt.check(t, rec.Meta)
		})
	}
}

func TestRecordMetadataTolerance(t *testing.T) {
	tests := []struct {
		name string
		raw  string
	}{
		{"no metadata for type that expects it", `{"source_type": "github_issue"}`},
		{"metadata on type without a variant", `{"source_type": "benchmark", "metadata": {"suite": "tpcc"}}`},
		{"malformed metadata", `{"source_type": "github_issue", "metadata": {"issue_number": "not a number"}}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var rec SourceRecord
			if err := json.Unmarshal([]byte(tt.raw), &rec); err != nil {
				t.Fatalf("record must still decode: %v", err)
			}
			if rec.Meta != nil {
				t.Errorf("meta = %#v, want nil", rec.Meta)
			}
		})
	}
}
