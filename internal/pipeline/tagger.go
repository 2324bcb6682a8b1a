package pipeline

import (
	"encoding/json"
	"fmt"
	"os"
	"regexp"
	"sort"
	"strings"

	"github.com/vantagedb/scout/internal/models"
	"go.uber.org/zap"
)

// Tagger assigns taxonomy topic ids to records by keyword matching. Global
// keywords come from a keywords file; per-target keywords supplement them.
type Tagger struct {
	patterns  map[string][]weightedPattern
	maxTopics int
	minScore  float64
	logger    *zap.Logger
}

type weightedPattern struct {
	re     *regexp.Regexp
	weight float64
}

// keywordsFile is the on-disk shape of the global keyword list.
type keywordsFile struct {
	TopicKeywords map[string][]string `json:"topic_keywords"`
}

// TaggerOption configures a Tagger.
type TaggerOption func(*Tagger)

// WithTaggerLogger sets a logger for batch tag statistics.
func WithTaggerLogger(l *zap.Logger) TaggerOption {
	return func(t *Tagger) { t.logger = l }
}

// NewTagger creates a tagger from the global keywords file at keywordsPath,
// merged with targetKeywords (additive, case-insensitively deduplicated).
// maxTopics caps the topics per record; minScore is the match score floor.
func NewTagger(keywordsPath string, targetKeywords map[string][]string, maxTopics int, minScore float64, opts ...TaggerOption) (*Tagger, error) {
	topicKeywords := make(map[string][]string)
	if keywordsPath != "" {
		data, err := os.ReadFile(keywordsPath)
		if err != nil {
			return nil, fmt.Errorf("read keywords: %w", err)
		}
		var kf keywordsFile
		if err := json.Unmarshal(data, &kf); err != nil {
			return nil, fmt.Errorf("parse keywords: %w", err)
		}
		for id, kws := range kf.TopicKeywords {
			topicKeywords[id] = append([]string(nil), kws...)
		}
	}

	for id, kws := range targetKeywords {
		existing := make(map[string]bool, len(topicKeywords[id]))
		for _, kw := range topicKeywords[id] {
			existing[strings.ToLower(kw)] = true
		}
		for _, kw := range kws {
			if !existing[strings.ToLower(kw)] {
				topicKeywords[id] = append(topicKeywords[id], kw)
				existing[strings.ToLower(kw)] = true
			}
		}
	}

	t := &Tagger{
		patterns:  make(map[string][]weightedPattern, len(topicKeywords)),
		maxTopics: maxTopics,
		minScore:  minScore,
	}
	for _, opt := range opts {
		opt(t)
	}
	for id, kws := range topicKeywords {
		patterns := make([]weightedPattern, 0, len(kws))
		for _, kw := range kws {
			// Multi-word keywords are more specific, so they score higher.
			weight := 1.0 + float64(strings.Count(kw, " "))*0.5
			re, err := regexp.Compile(`(?i)\b` + regexp.QuoteMeta(kw) + `\b`)
			if err != nil {
				if t.logger != nil {
					t.logger.Warn("invalid keyword pattern", zap.String("keyword", kw))
				}
				continue
			}
			patterns = append(patterns, weightedPattern{re: re, weight: weight})
		}
		t.patterns[id] = patterns
	}
	return t, nil
}

// Tag assigns the top-scoring topics to the record in place and returns it.
// Records with no match get the "unclassified" sentinel.
func (t *Tagger) Tag(rec *models.SourceRecord) *models.SourceRecord {
	text := rec.Title + " " + rec.Text
	scores := t.scoreTopics(text)

	type topicScore struct {
		id    string
		score float64
	}
	ranked := make([]topicScore, 0, len(scores))
	for id, score := range scores {
		ranked = append(ranked, topicScore{id, score})
	}
	sort.Slice(ranked, func(i, j int) bool {
		if ranked[i].score != ranked[j].score {
			return ranked[i].score > ranked[j].score
		}
		return ranked[i].id < ranked[j].id
	})

	var topics []string
	for _, ts := range ranked {
		if len(topics) >= t.maxTopics {
			break
		}
		if ts.score >= t.minScore {
			topics = append(topics, ts.id)
		}
	}
	if len(topics) == 0 {
		topics = []string{models.TopicUnclassified}
	}
	rec.Topics = topics
	return rec
}

// TagBatch tags every record and logs topic distribution statistics.
func (t *Tagger) TagBatch(records []*models.SourceRecord) []*models.SourceRecord {
	unclassified := 0
	topicCounts := make(map[string]int)
	for _, rec := range records {
		t.Tag(rec)
		if rec.Unclassified() {
			unclassified++
		}
		for _, topic := range rec.Topics {
			topicCounts[topic]++
		}
	}
	if t.logger != nil {
		t.logger.Info("tagged records",
			zap.Int("count", len(records)),
			zap.Int("unclassified", unclassified),
			zap.Any("topic_counts", topicCounts),
		)
	}
	return records
}

// scoreTopics scores each topic as keyword matches weighted by specificity,
// normalized by the topic's keyword count.
func (t *Tagger) scoreTopics(text string) map[string]float64 {
	scores := make(map[string]float64)
	for id, patterns := range t.patterns {
		if len(patterns) == 0 {
			continue
		}
		total := 0.0
		for _, wp := range patterns {
			matches := len(wp.re.FindAllStringIndex(text, -1))
			total += float64(matches) * wp.weight
		}
		if total > 0 {
			scores[id] = total / float64(len(patterns))
		}
	}
	return scores
}
