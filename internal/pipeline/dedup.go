package pipeline

import (
	"fmt"
	"strings"

	minhashlsh "github.com/ekzhu/minhash-lsh"
	"github.com/vantagedb/scout/internal/models"
	"go.uber.org/zap"
)

// minhashSeed fixes the permutation functions so sketches are reproducible
// across runs; near-duplicate decisions must not depend on process start.
const minhashSeed = 1

// shingleSize is the word-window size for text sketches.
const shingleSize = 3

// Deduplicator removes duplicate and near-duplicate records in three ordered
// stages: exact URL identity, GitHub issue/discussion identity, and MinHash
// LSH near-duplicate text detection. Later stages see only the survivors of
// earlier ones, and within each stage the first record in input order wins,
// so callers wanting deterministic output must fix the record order first.
type Deduplicator struct {
	threshold float64
	numPerm   int
	logger    *zap.Logger
}

// DedupOption configures a Deduplicator.
type DedupOption func(*Deduplicator)

// WithDedupLogger sets a logger for per-stage removal counts.
func WithDedupLogger(l *zap.Logger) DedupOption {
	return func(d *Deduplicator) { d.logger = l }
}

// NewDeduplicator creates a deduplicator. threshold is the Jaccard similarity
// over 3-word shingle sets above which two texts count as duplicates; numPerm
// is the MinHash permutation count. Invalid settings are rejected here rather
// than surfacing mid-pipeline.
func NewDeduplicator(threshold float64, numPerm int, opts ...DedupOption) (*Deduplicator, error) {
	if threshold <= 0 || threshold >= 1 {
		return nil, fmt.Errorf("similarity threshold must be in (0, 1), got %v", threshold)
	}
	if numPerm < 2 {
		return nil, fmt.Errorf("permutation count must be at least 2, got %d", numPerm)
	}
	d := &Deduplicator{threshold: threshold, numPerm: numPerm}
	for _, opt := range opts {
		opt(d)
	}
	return d, nil
}

// DedupReport counts removals per stage.
type DedupReport struct {
	Input       int `json:"input"`
	Kept        int `json:"kept"`
	RemovedURL  int `json:"removed_url"`
	RemovedGit  int `json:"removed_github"`
	RemovedNear int `json:"removed_near_duplicate"`
}

// Deduplicate removes duplicates from records, returning the survivors in
// input order and a per-stage removal breakdown.
func (d *Deduplicator) Deduplicate(records []*models.SourceRecord) ([]*models.SourceRecord, DedupReport) {
	report := DedupReport{Input: len(records)}

	records, report.RemovedURL = d.urlDedup(records)
	records, report.RemovedGit = d.githubDedup(records)
	records, report.RemovedNear = d.nearDedup(records)
	report.Kept = len(records)

	if d.logger != nil {
		d.logger.Info("deduplication",
			zap.Int("input", report.Input),
			zap.Int("kept", report.Kept),
			zap.Int("removed_url", report.RemovedURL),
			zap.Int("removed_github", report.RemovedGit),
			zap.Int("removed_near_duplicate", report.RemovedNear),
		)
	}
	return records, report
}

// urlDedup keeps the first record seen for each normalized URL.
func (d *Deduplicator) urlDedup(records []*models.SourceRecord) ([]*models.SourceRecord, int) {
	seen := make(map[string]bool, len(records))
	unique := make([]*models.SourceRecord, 0, len(records))
	for _, rec := range records {
		url := strings.ToLower(strings.TrimRight(rec.URL, "/"))
		if seen[url] {
			continue
		}
		seen[url] = true
		unique = append(unique, rec)
	}
	return unique, len(records) - len(unique)
}

// githubDedup keeps the first record per GitHub issue/discussion number.
// Records of other source types pass through untouched.
func (d *Deduplicator) githubDedup(records []*models.SourceRecord) ([]*models.SourceRecord, int) {
	seen := make(map[string]bool)
	unique := make([]*models.SourceRecord, 0, len(records))
	for _, rec := range records {
		key := githubKey(rec)
		if key != "" {
			if seen[key] {
				continue
			}
			seen[key] = true
		}
		unique = append(unique, rec)
	}
	return unique, len(records) - len(unique)
}

// githubKey returns the identity key for GitHub issues and discussions, or ""
// for other source types. Records with missing metadata share a zero-number
// key, so repeat scrapes that lost their metadata still collapse.
func githubKey(rec *models.SourceRecord) string {
	switch rec.SourceType {
	case models.SourceGitHubIssue:
		number := 0
		if meta, ok := rec.Meta.(*models.GitHubIssueMeta); ok {
			number = meta.IssueNumber
		}
		return fmt.Sprintf("%s-issue-%d", rec.Origin, number)
	case models.SourceGitHubDiscussion:
		number := 0
		if meta, ok := rec.Meta.(*models.GitHubDiscussionMeta); ok {
			number = meta.DiscussionNumber
		}
		return fmt.Sprintf("%s-discussion-%d", rec.Origin, number)
	default:
		return ""
	}
}

// nearDedup removes records whose text sketch is similar to an earlier
// survivor. Each record is queried against the index before insertion; a hit
// at or above the threshold marks the record as a duplicate and it is never
// inserted, so the earliest record always wins.
func (d *Deduplicator) nearDedup(records []*models.SourceRecord) ([]*models.SourceRecord, int) {
	if len(records) <= 1 {
		return records, 0
	}

	lsh := minhashlsh.NewMinhashLSH16(d.numPerm, d.threshold, len(records))
	signatures := make(map[string][]uint64, len(records))
	unique := make([]*models.SourceRecord, 0, len(records))

	for _, rec := range records {
		sig := d.signature(rec.Text)
		if d.hasNear(lsh, signatures, sig) {
			continue
		}
		lsh.Add(rec.ID, sig)
		lsh.Index()
		signatures[rec.ID] = sig
		unique = append(unique, rec)
	}
	return unique, len(records) - len(unique)
}

// hasNear reports whether any indexed sketch is estimated at or above the
// similarity threshold. LSH candidates are verified against the signature
// agreement estimate since banding can return spurious candidates.
func (d *Deduplicator) hasNear(lsh *minhashlsh.MinhashLSH, signatures map[string][]uint64, sig []uint64) bool {
	for _, candidate := range lsh.Query(sig) {
		key, ok := candidate.(string)
		if !ok {
			continue
		}
		other, ok := signatures[key]
		if !ok {
			continue
		}
		if estimatedJaccard(sig, other) >= d.threshold {
			return true
		}
	}
	return false
}

// signature computes the MinHash sketch of text over lower-cased 3-word shingles.
func (d *Deduplicator) signature(text string) []uint64 {
	mh := minhashlsh.NewMinhash(minhashSeed, d.numPerm)
	words := strings.Fields(strings.ToLower(text))
	for i := 0; i+shingleSize <= len(words); i++ {
		mh.Push([]byte(strings.Join(words[i:i+shingleSize], " ")))
	}
	return mh.Signature()
}

// estimatedJaccard is the fraction of agreeing MinHash values, an unbiased
// estimator of the Jaccard similarity of the underlying shingle sets.
func estimatedJaccard(a, b []uint64) float64 {
	if len(a) == 0 || len(a) != len(b) {
		return 0
	}
	equal := 0
	for i := range a {
		if a[i] == b[i] {
			equal++
		}
	}
	return float64(equal) / float64(len(a))
}
