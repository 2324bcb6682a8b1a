// Package pipeline implements the ingestion normalization stages: content
// cleaning, topic tagging, quality filtering, and deduplication. Each stage is
// a pure transform over an in-memory record list; input-data anomalies are
// handled by dropping records with a counted reason, never by returning errors.
package pipeline

import (
	"regexp"
	"strings"

	"github.com/vantagedb/scout/internal/models"
	"go.uber.org/zap"
)

// Rejection reasons reported by the quality filter.
const (
	ReasonTooShort    = "too_short"
	ReasonNoTopics    = "no_topics"
	ReasonMostlyCode  = "mostly_code"
	ReasonBoilerplate = "boilerplate"
)

// topicExempt lists source types that are kept even without topic tags:
// releases and benchmarks are valuable regardless of taxonomy match.
var topicExempt = map[models.SourceType]bool{
	models.SourceBenchmark:     true,
	models.SourceGitHubRelease: true,
}

var fencedCodeRe = regexp.MustCompile("```[\\s\\S]*?```")

var boilerplatePhrases = []string{
	"skip to content",
	"table of contents",
	"cookie policy",
	"privacy policy",
	"terms of service",
	"subscribe to newsletter",
}

// QualityFilter removes low-value records: too short, untagged, mostly code,
// or navigation boilerplate.
type QualityFilter struct {
	minWordCount  int
	maxCodeRatio  float64
	requireTopics bool
	logger        *zap.Logger
}

// FilterOption configures a QualityFilter.
type FilterOption func(*QualityFilter)

// WithFilterLogger sets a logger for filter summaries.
func WithFilterLogger(l *zap.Logger) FilterOption {
	return func(f *QualityFilter) { f.logger = l }
}

// NewQualityFilter creates a filter. minWordCount is the minimum word count to
// keep a record; maxCodeRatio is the maximum fenced-code share of the text
// (applied to official docs only); requireTopics drops untagged records except
// for exempt source types.
func NewQualityFilter(minWordCount int, maxCodeRatio float64, requireTopics bool, opts ...FilterOption) *QualityFilter {
	f := &QualityFilter{
		minWordCount:  minWordCount,
		maxCodeRatio:  maxCodeRatio,
		requireTopics: requireTopics,
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// FilterReport counts removals per rejection reason.
type FilterReport struct {
	Input   int            `json:"input"`
	Kept    int            `json:"kept"`
	Removed map[string]int `json:"removed,omitempty"`
}

// Filter returns the records passing all quality checks, in input order,
// together with a removal breakdown. Inputs are not mutated.
func (f *QualityFilter) Filter(records []*models.SourceRecord) ([]*models.SourceRecord, FilterReport) {
	kept := make([]*models.SourceRecord, 0, len(records))
	report := FilterReport{Input: len(records), Removed: make(map[string]int)}

	for _, rec := range records {
		if reason := f.rejectReason(rec); reason != "" {
			report.Removed[reason]++
			continue
		}
		kept = append(kept, rec)
	}
	report.Kept = len(kept)

	if f.logger != nil {
		f.logger.Info("quality filter",
			zap.Int("input", report.Input),
			zap.Int("kept", report.Kept),
			zap.Any("removed", report.Removed),
		)
	}
	return kept, report
}

// rejectReason returns the first matching rejection reason, or "" to keep.
func (f *QualityFilter) rejectReason(rec *models.SourceRecord) string {
	if rec.WordCount < f.minWordCount {
		return ReasonTooShort
	}
	if f.requireTopics && !topicExempt[rec.SourceType] && rec.Unclassified() {
		return ReasonNoTopics
	}
	if rec.SourceType == models.SourceOfficialDocs && codeRatio(rec.Text) > f.maxCodeRatio {
		return ReasonMostlyCode
	}
	if isBoilerplate(rec.Text) {
		return ReasonBoilerplate
	}
	return ""
}

// codeRatio is the share of the text occupied by fenced code blocks.
func codeRatio(text string) float64 {
	if len(text) == 0 {
		return 0
	}
	blocks := fencedCodeRe.FindAllString(text, -1)
	if len(blocks) == 0 {
		return 0
	}
	codeChars := 0
	for _, b := range blocks {
		codeChars += len(b)
	}
	return float64(codeChars) / float64(len(text))
}

// isBoilerplate detects navigation-only content: either several canned
// boilerplate phrases, or a very short text dominated by links and paths.
func isBoilerplate(text string) bool {
	lower := strings.ToLower(text)
	count := 0
	for _, phrase := range boilerplatePhrases {
		if strings.Contains(lower, phrase) {
			count++
		}
	}
	if count >= 3 {
		return true
	}

	words := strings.Fields(text)
	if len(words) < 50 {
		linkWords := 0
		for _, w := range words {
			if strings.HasPrefix(w, "http") || strings.HasPrefix(w, "/") {
				linkWords++
			}
		}
		if float64(linkWords) > float64(len(words))*0.3 {
			return true
		}
	}
	return false
}
