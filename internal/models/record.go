// Package models defines the core data structures for scraped source records
// and retrieval-ready chunks.
package models

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"
	"time"
)

// SourceType identifies where a record was scraped from.
type SourceType string

const (
	SourceOfficialDocs     SourceType = "official_docs"
	SourceBlog             SourceType = "blog"
	SourceGitHubIssue      SourceType = "github_issue"
	SourceGitHubDiscussion SourceType = "github_discussion"
	SourceGitHubRelease    SourceType = "github_release"
	SourceCommunityReddit  SourceType = "community_reddit"
	SourceCommunityHN      SourceType = "community_hn"
	SourceBenchmark        SourceType = "benchmark"
	SourceProductPage      SourceType = "product_page"
	SourceCaseStudy        SourceType = "case_study"
	SourceWhitepaper       SourceType = "whitepaper"
	SourceComparisonPage   SourceType = "comparison_page"
)

// Label returns a human-readable form of the source type
// ("github_issue" -> "Github Issue"), used in chunk context prefixes.
func (s SourceType) Label() string {
	words := strings.Split(string(s), "_")
	for i, w := range words {
		if w == "" {
			continue
		}
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	return strings.Join(words, " ")
}

// Credibility classifies how authoritative a source is.
type Credibility string

const (
	CredibilityOfficial   Credibility = "official"
	CredibilityThirdParty Credibility = "third_party"
	CredibilityCommunity  Credibility = "community"
)

// Rank returns the sort rank of the credibility level; lower is more credible.
// Unknown values rank last.
func (c Credibility) Rank() int {
	switch c {
	case CredibilityOfficial:
		return 0
	case CredibilityThirdParty:
		return 1
	case CredibilityCommunity:
		return 2
	default:
		return 3
	}
}

// Sentiment is the overall tone of a record toward the product it covers.
type Sentiment string

const (
	SentimentPositive Sentiment = "positive"
	SentimentNegative Sentiment = "negative"
	SentimentNeutral  Sentiment = "neutral"
	SentimentMixed    Sentiment = "mixed"
)

// TopicUnclassified is the sentinel topic assigned when no taxonomy topic matched.
const TopicUnclassified = "unclassified"

// Date is a calendar date serialized as "2006-01-02".
type Date struct {
	time.Time
}

// NewDate returns a Date for the given year, month, and day.
func NewDate(year int, month time.Month, day int) Date {
	return Date{time.Date(year, month, day, 0, 0, 0, 0, time.UTC)}
}

// MarshalJSON encodes the date as a quoted "2006-01-02" string.
func (d Date) MarshalJSON() ([]byte, error) {
	if d.IsZero() {
		return []byte(`""`), nil
	}
	return []byte(`"` + d.Format("2006-01-02") + `"`), nil
}

// UnmarshalJSON accepts "2006-01-02", full RFC 3339 timestamps, or an empty
// string (zero date). Scraped data is messy; anything else is also a zero date.
func (d *Date) UnmarshalJSON(b []byte) error {
	s := strings.Trim(string(b), `"`)
	if s == "" || s == "null" {
		d.Time = time.Time{}
		return nil
	}
	if t, err := time.Parse("2006-01-02", s); err == nil {
		d.Time = t
		return nil
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		d.Time = t.UTC().Truncate(24 * time.Hour)
		return nil
	}
	d.Time = time.Time{}
	return nil
}

// SourceRecord is a single scraped document about one product (origin).
// Records are immutable once tagged; the pipeline stages only read them or
// return filtered subsets.
type SourceRecord struct {
	ID          string      `json:"id"`
	Origin      string      `json:"origin"`
	SourceType  SourceType  `json:"source_type"`
	URL         string      `json:"url"`
	Title       string      `json:"title"`
	Text        string      `json:"text"`
	ScrapedDate Date        `json:"scraped_date"`
	ContentDate *Date       `json:"content_date,omitempty"`
	Topics      []string    `json:"topics,omitempty"`
	Subtopics   []string    `json:"subtopics,omitempty"`
	Credibility Credibility `json:"credibility"`
	Sentiment   Sentiment   `json:"sentiment,omitempty"`
	WordCount   int         `json:"word_count"`
	Meta        Metadata    `json:"-"`
}

// RecordID derives the deterministic record identifier from origin, source
// type, and URL. Two scrapes of the same URL from the same origin and type
// always collide to the same ID; URL dedup and storage upsert rely on this.
func RecordID(origin string, sourceType SourceType, url string) string {
	sum := sha256.Sum256([]byte(url))
	return fmt.Sprintf("%s-%s-%s", origin, sourceType, hex.EncodeToString(sum[:])[:12])
}

// Unclassified reports whether the record carries no usable topic tags.
func (r *SourceRecord) Unclassified() bool {
	if len(r.Topics) == 0 {
		return true
	}
	return len(r.Topics) == 1 && r.Topics[0] == TopicUnclassified
}
