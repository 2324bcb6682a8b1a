package models

import "encoding/json"

// Metadata is the source-type-specific payload attached to a record. Each
// source type that carries extra fields has its own concrete type, so the
// chunking strategies can switch on a known shape instead of probing an
// untyped map. Records without source-specific metadata carry nil.
type Metadata interface {
	sourceMetadata()
}

// GitHubIssueMeta describes a scraped GitHub issue.
type GitHubIssueMeta struct {
	IssueNumber      int      `json:"issue_number"`
	State            string   `json:"state"`
	Labels           []string `json:"labels,omitempty"`
	CommentsCount    int      `json:"comments_count"`
	CreatedAt        string   `json:"created_at,omitempty"`
	UpdatedAt        string   `json:"updated_at,omitempty"`
	ClosedAt         string   `json:"closed_at,omitempty"`
	Author           string   `json:"author,omitempty"`
	TopComments      []string `json:"top_comments,omitempty"`
	IsFeatureRequest bool     `json:"is_feature_request"`
	IsBug            bool     `json:"is_bug"`
}

// GitHubDiscussionMeta describes a scraped GitHub discussion.
type GitHubDiscussionMeta struct {
	DiscussionNumber int    `json:"discussion_number"`
	Category         string `json:"category,omitempty"`
	IsAnswered       bool   `json:"is_answered"`
	AnswerBody       string `json:"answer_body,omitempty"`
	CommentsCount    int    `json:"comments_count"`
	CreatedAt        string `json:"created_at,omitempty"`
	Author           string `json:"author,omitempty"`
}

// GitHubReleaseMeta describes a scraped GitHub release.
type GitHubReleaseMeta struct {
	TagName      string `json:"tag_name"`
	ReleaseName  string `json:"release_name,omitempty"`
	IsPrerelease bool   `json:"is_prerelease"`
	CreatedAt    string `json:"created_at,omitempty"`
	PublishedAt  string `json:"published_at,omitempty"`
}

// RedditMeta describes a scraped Reddit post.
type RedditMeta struct {
	Subreddit   string   `json:"subreddit,omitempty"`
	Score       int      `json:"score"`
	NumComments int      `json:"num_comments"`
	Author      string   `json:"author,omitempty"`
	CreatedUTC  float64  `json:"created_utc,omitempty"`
	Permalink   string   `json:"permalink,omitempty"`
	TopComments []string `json:"top_comments,omitempty"`
}

// HNMeta describes a scraped Hacker News story.
type HNMeta struct {
	HNID        int      `json:"hn_id"`
	Points      int      `json:"points"`
	NumComments int      `json:"num_comments"`
	Author      string   `json:"author,omitempty"`
	CreatedAt   string   `json:"created_at,omitempty"`
	TopComments []string `json:"top_comments,omitempty"`
}

// BlogMeta describes a scraped blog post.
type BlogMeta struct {
	RelevanceScore          float64  `json:"relevance_score"`
	PriorityKeywordsMatched []string `json:"priority_keywords_matched,omitempty"`
}

func (*GitHubIssueMeta) sourceMetadata()      {}
func (*GitHubDiscussionMeta) sourceMetadata() {}
func (*GitHubReleaseMeta) sourceMetadata()    {}
func (*RedditMeta) sourceMetadata()           {}
func (*HNMeta) sourceMetadata()               {}
func (*BlogMeta) sourceMetadata()             {}

// recordJSON mirrors SourceRecord on the wire with the metadata bag as raw
// JSON, so the variant can be decoded per source type.
type recordJSON struct {
	ID          string          `json:"id"`
	Origin      string          `json:"origin"`
	SourceType  SourceType      `json:"source_type"`
	URL         string          `json:"url"`
	Title       string          `json:"title"`
	Text        string          `json:"text"`
	ScrapedDate Date            `json:"scraped_date"`
	ContentDate *Date           `json:"content_date,omitempty"`
	Topics      []string        `json:"topics,omitempty"`
	Subtopics   []string        `json:"subtopics,omitempty"`
	Credibility Credibility     `json:"credibility"`
	Sentiment   Sentiment       `json:"sentiment,omitempty"`
	WordCount   int             `json:"word_count"`
	Metadata    json.RawMessage `json:"metadata,omitempty"`
}

// MarshalJSON writes the record with its typed metadata under the "metadata" key.
func (r SourceRecord) MarshalJSON() ([]byte, error) {
	out := recordJSON{
		ID:          r.ID,
		Origin:      r.Origin,
		SourceType:  r.SourceType,
		URL:         r.URL,
		Title:       r.Title,
		Text:        r.Text,
		ScrapedDate: r.ScrapedDate,
		ContentDate: r.ContentDate,
		Topics:      r.Topics,
		Subtopics:   r.Subtopics,
		Credibility: r.Credibility,
		Sentiment:   r.Sentiment,
		WordCount:   r.WordCount,
	}
	if r.Meta != nil {
		raw, err := json.Marshal(r.Meta)
		if err != nil {
			return nil, err
		}
		out.Metadata = raw
	}
	return json.Marshal(out)
}

// UnmarshalJSON decodes the record and resolves the metadata variant from the
// source type. Unknown or malformed metadata decodes to nil rather than
// failing the record; scraped input is inherently messy.
func (r *SourceRecord) UnmarshalJSON(b []byte) error {
	var raw recordJSON
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	r.ID = raw.ID
	r.Origin = raw.Origin
	r.SourceType = raw.SourceType
	r.URL = raw.URL
	r.Title = raw.Title
	r.Text = raw.Text
	r.ScrapedDate = raw.ScrapedDate
	r.ContentDate = raw.ContentDate
	r.Topics = raw.Topics
	r.Subtopics = raw.Subtopics
	r.Credibility = raw.Credibility
	r.Sentiment = raw.Sentiment
	r.WordCount = raw.WordCount
	r.Meta = decodeMetadata(raw.SourceType, raw.Metadata)
	return nil
}

func decodeMetadata(st SourceType, raw json.RawMessage) Metadata {
	if len(raw) == 0 {
		return nil
	}
	var meta Metadata
	switch st {
	case SourceGitHubIssue:
		meta = &GitHubIssueMeta{}
	case SourceGitHubDiscussion:
		meta = &GitHubDiscussionMeta{}
	case SourceGitHubRelease:
		meta = &GitHubReleaseMeta{}
	case SourceCommunityReddit:
		meta = &RedditMeta{}
	case SourceCommunityHN:
		meta = &HNMeta{}
	case SourceBlog:
		meta = &BlogMeta{}
	default:
		return nil
	}
	if err := json.Unmarshal(raw, meta); err != nil {
		return nil
	}
	return meta
}
