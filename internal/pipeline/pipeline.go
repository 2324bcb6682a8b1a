package pipeline

import (
	"sort"

	"github.com/google/uuid"
	"github.com/vantagedb/scout/internal/models"
	"go.uber.org/zap"
)

// Pipeline drives the normalization stages for one target's record set:
// clean, tag, filter, then deduplicate. Stages are strictly sequential and
// synchronous; each run is a pure transform over the input list.
type Pipeline struct {
	cleaner *Cleaner
	tagger  *Tagger
	filter  *QualityFilter
	dedup   *Deduplicator
	logger  *zap.Logger
}

// Report summarizes one pipeline run.
type Report struct {
	RunID  string       `json:"run_id"`
	Target string       `json:"target"`
	Input  int          `json:"input"`
	Output int          `json:"output"`
	Filter FilterReport `json:"filter"`
	Dedup  DedupReport  `json:"dedup"`
}

// New creates a pipeline from its stages. logger may be nil.
func New(cleaner *Cleaner, tagger *Tagger, filter *QualityFilter, dedup *Deduplicator, logger *zap.Logger) *Pipeline {
	return &Pipeline{
		cleaner: cleaner,
		tagger:  tagger,
		filter:  filter,
		dedup:   dedup,
		logger:  logger,
	}
}

// Process runs the full normalization pass over records for the named target
// and returns the surviving records plus a per-stage report. Before
// deduplication, records are stably sorted by credibility rank ascending and
// scrape date descending, so the most credible, freshest record survives each
// near-duplicate collision regardless of file-read order.
func (p *Pipeline) Process(target string, records []*models.SourceRecord) ([]*models.SourceRecord, Report) {
	report := Report{
		RunID:  uuid.New().String(),
		Target: target,
		Input:  len(records),
	}

	records = p.cleaner.CleanBatch(records)
	records = p.tagger.TagBatch(records)
	records, report.Filter = p.filter.Filter(records)

	sortForDedup(records)
	records, report.Dedup = p.dedup.Deduplicate(records)

	report.Output = len(records)
	if p.logger != nil {
		p.logger.Info("pipeline run complete",
			zap.String("run_id", report.RunID),
			zap.String("target", target),
			zap.Int("input", report.Input),
			zap.Int("output", report.Output),
		)
	}
	return records, report
}

// sortForDedup orders records so that "first wins" during deduplication picks
// the preferred survivor: official before third-party before community, and
// within the same credibility the most recent scrape first. The sort is
// stable, so equal records keep their input order.
func sortForDedup(records []*models.SourceRecord) {
	sort.SliceStable(records, func(i, j int) bool {
		ri, rj := records[i], records[j]
		if ri.Credibility.Rank() != rj.Credibility.Rank() {
			return ri.Credibility.Rank() < rj.Credibility.Rank()
		}
		return ri.ScrapedDate.After(rj.ScrapedDate.Time)
	})
}
