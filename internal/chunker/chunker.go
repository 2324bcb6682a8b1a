// Package chunker turns normalized source records into token-bounded,
// overlap-aware text chunks ready for embedding. Each source type gets a
// segmentation strategy that follows the document's natural structure
// (sections, comments, answers); a recursive splitter backs them all.
package chunker

import (
	"fmt"
	"strings"

	"github.com/vantagedb/scout/internal/models"
	"github.com/vantagedb/scout/internal/taxonomy"
	"github.com/vantagedb/scout/internal/token"
	"go.uber.org/zap"
)

const (
	// MinChunkTokens is the floor below which chunks are dropped or merged
	// into a neighbor.
	MinChunkTokens = 50
	// MaxChunkTokens is the ceiling for single-chunk strategies before they
	// must split.
	MaxChunkTokens = 800
)

// Config holds chunk sizing settings.
type Config struct {
	// ChunkTokens is the target chunk size.
	ChunkTokens int
	// OverlapTokens is the token overlap carried between consecutive chunks.
	OverlapTokens int
}

// Chunker is the content-type-aware chunking engine.
type Chunker struct {
	chunkTokens   int
	overlapTokens int
	tok           token.Tokenizer
	topics        taxonomy.Lookup
	selfOrigin    string
	logger        *zap.Logger
}

// Option configures a Chunker.
type Option func(*Chunker)

// WithLogger sets a logger for batch progress.
func WithLogger(l *zap.Logger) Option {
	return func(c *Chunker) { c.logger = l }
}

// WithSelfOrigin marks the origin short name of our own product; its context
// prefix label is upper-cased instead of capitalized.
func WithSelfOrigin(origin string) Option {
	return func(c *Chunker) { c.selfOrigin = origin }
}

// New creates a chunker. topics is the injected topic-id to display-name
// lookup used for context prefixes and docs breadcrumbs; it may be nil, in
// which case every prefix falls back to "General". Sizing errors are surfaced
// here, not mid-run.
func New(cfg Config, tok token.Tokenizer, topics taxonomy.Lookup, opts ...Option) (*Chunker, error) {
	if cfg.ChunkTokens <= 0 {
		return nil, fmt.Errorf("chunk tokens must be positive, got %d", cfg.ChunkTokens)
	}
	if cfg.OverlapTokens < 0 || cfg.OverlapTokens >= cfg.ChunkTokens {
		return nil, fmt.Errorf("overlap tokens must be in [0, chunk tokens), got %d", cfg.OverlapTokens)
	}
	if tok == nil {
		return nil, fmt.Errorf("tokenizer is required")
	}
	c := &Chunker{
		chunkTokens:   cfg.ChunkTokens,
		overlapTokens: cfg.OverlapTokens,
		tok:           tok,
		topics:        topics,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// ChunkRecord chunks a single record with the strategy for its source type.
// Empty or whitespace-only text yields an empty result, never an error.
func (c *Chunker) ChunkRecord(rec *models.SourceRecord) []*models.RawChunk {
	if strings.TrimSpace(rec.Text) == "" {
		return nil
	}

	var texts []string
	switch rec.SourceType {
	case models.SourceBlog:
		texts = c.chunkBlog(rec.Title, rec.Text)
	case models.SourceOfficialDocs:
		texts = c.chunkDocs(rec.Title, rec.Text)
	case models.SourceGitHubIssue:
		texts = c.chunkGitHubIssue(rec)
	case models.SourceGitHubDiscussion:
		texts = c.chunkGitHubDiscussion(rec)
	case models.SourceCommunityHN, models.SourceCommunityReddit:
		texts = c.chunkCommunity(rec)
	case models.SourceGitHubRelease, models.SourceBenchmark, models.SourceComparisonPage:
		texts = c.chunkSingle(rec.Title, rec.Text)
	default:
		texts = c.chunkGeneric(rec.Title, rec.Text)
	}

	prefix := c.contextPrefix(rec)
	metadata := chunkMetadata(rec)
	chunks := make([]*models.RawChunk, 0, len(texts))
	for i, text := range texts {
		prefixed := prefix + " " + text
		chunks = append(chunks, models.NewRawChunk(rec, i, prefixed, c.tok.Count(prefixed), metadata))
	}
	return chunks
}

// ChunkRecords chunks a batch, concatenating per-record results in input order.
func (c *Chunker) ChunkRecords(records []*models.SourceRecord) []*models.RawChunk {
	var all []*models.RawChunk
	for _, rec := range records {
		chunks := c.ChunkRecord(rec)
		all = append(all, chunks...)
		if c.logger != nil {
			c.logger.Debug("chunked record",
				zap.String("id", rec.ID),
				zap.String("source_type", string(rec.SourceType)),
				zap.Int("chunks", len(chunks)),
			)
		}
	}
	if c.logger != nil {
		avg := 0.0
		if len(records) > 0 {
			avg = float64(len(all)) / float64(len(records))
		}
		c.logger.Info("chunking complete",
			zap.Int("records", len(records)),
			zap.Int("chunks", len(all)),
			zap.Float64("avg_chunks_per_record", avg),
		)
	}
	return all
}

// contextPrefix builds the bracketed tag prepended to every chunk:
// [OriginLabel | SourceTypeLabel | PrimaryTopicName]. The prefix makes chunks
// from different products and source kinds separable in embedding space.
func (c *Chunker) contextPrefix(rec *models.SourceRecord) string {
	origin := capitalize(rec.Origin)
	if rec.Origin == c.selfOrigin && c.selfOrigin != "" {
		origin = strings.ToUpper(rec.Origin)
	}
	return fmt.Sprintf("[%s | %s | %s]", origin, rec.SourceType.Label(), c.topics.PrimaryName(rec.Topics))
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + strings.ToLower(s[1:])
}

// chunkMetadata extracts the source-type-specific subset carried on each
// chunk for downstream filtered retrieval. The map is shared by all chunks of
// a record and never mutated after creation.
func chunkMetadata(rec *models.SourceRecord) map[string]any {
	switch meta := rec.Meta.(type) {
	case *models.GitHubIssueMeta:
		m := map[string]any{
			"github_state":       meta.State,
			"is_bug":             meta.IsBug,
			"is_feature_request": meta.IsFeatureRequest,
			"comments_count":     meta.CommentsCount,
		}
		if len(meta.Labels) > 0 {
			m["labels"] = strings.Join(meta.Labels, ",")
		}
		return m
	case *models.GitHubDiscussionMeta:
		return map[string]any{
			"is_answered": meta.IsAnswered,
			"category":    meta.Category,
		}
	case *models.GitHubReleaseMeta:
		return map[string]any{
			"tag_name":      meta.TagName,
			"is_prerelease": meta.IsPrerelease,
		}
	case *models.BlogMeta:
		m := map[string]any{
			"relevance_score": meta.RelevanceScore,
		}
		if kws := meta.PriorityKeywordsMatched; len(kws) > 0 {
			if len(kws) > 10 {
				kws = kws[:10]
			}
			m["priority_keywords"] = strings.Join(kws, ",")
		}
		return m
	case *models.RedditMeta:
		return map[string]any{
			"points":       meta.Score,
			"num_comments": meta.NumComments,
		}
	case *models.HNMeta:
		return map[string]any{
			"points":       meta.Points,
			"num_comments": meta.NumComments,
		}
	default:
		return nil
	}
}
