// Package keyword provides a Bleve-backed keyword index over chunks, used for
// local inspection queries before chunks ship to the embedding stage.
package keyword

import (
	"fmt"
	"os"

	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/analysis/analyzer/standard"
	blevequery "github.com/blevesearch/bleve/v2/search/query"

	"github.com/vantagedb/scout/internal/models"
)

// Index wraps a Bleve index of chunk documents.
type Index struct {
	index bleve.Index
}

// Result is one search hit.
type Result struct {
	ID          string
	Score       float64
	Text        string
	Competitor  string
	SourceType  string
	SourceURL   string
	SourceTitle string
}

// Filters narrows a search to exact field values. Empty fields are ignored.
type Filters struct {
	Competitor  string
	SourceType  string
	Topic       string
	Credibility string
}

// chunkDoc is the indexed shape of a chunk. Only text is analyzed; the rest
// are keyword fields for exact filtering.
type chunkDoc struct {
	Text        string   `json:"text"`
	Competitor  string   `json:"competitor"`
	SourceType  string   `json:"source_type"`
	SourceURL   string   `json:"source_url"`
	SourceTitle string   `json:"source_title"`
	Topics      []string `json:"topics"`
	Credibility string   `json:"credibility"`
}

// Open creates or opens a Bleve index at path. An existing index is reused;
// remove the directory to force a rebuild after a mapping change.
func Open(path string) (*Index, error) {
	if _, err := os.Stat(path); err == nil {
		index, openErr := bleve.Open(path)
		if openErr != nil {
			return nil, fmt.Errorf("open chunk index: %w", openErr)
		}
		return &Index{index: index}, nil
	}

	im := bleve.NewIndexMapping()
	docMapping := bleve.NewDocumentMapping()

	textFieldMapping := bleve.NewTextFieldMapping()
	// Standard analyzer (lowercase + tokenize, no stemming) so product and
	// feature names match exactly as written.
	textFieldMapping.Analyzer = standard.Name
	docMapping.AddFieldMappingsAt("text", textFieldMapping)
	docMapping.AddFieldMappingsAt("source_title", textFieldMapping)

	keywordFieldMapping := bleve.NewKeywordFieldMapping()
	docMapping.AddFieldMappingsAt("competitor", keywordFieldMapping)
	docMapping.AddFieldMappingsAt("source_type", keywordFieldMapping)
	docMapping.AddFieldMappingsAt("source_url", keywordFieldMapping)
	docMapping.AddFieldMappingsAt("topics", keywordFieldMapping)
	docMapping.AddFieldMappingsAt("credibility", keywordFieldMapping)

	im.AddDocumentMapping("chunk", docMapping)
	im.DefaultType = "chunk"
	im.DefaultMapping = docMapping

	index, err := bleve.New(path, im)
	if err != nil {
		return nil, fmt.Errorf("create chunk index: %w", err)
	}
	return &Index{index: index}, nil
}

// IndexChunks indexes chunks in a single batch, replacing documents that
// share an id.
func (ix *Index) IndexChunks(chunks []*models.RawChunk) error {
	batch := ix.index.NewBatch()
	for _, chunk := range chunks {
		doc := chunkDoc{
			Text:        chunk.Text,
			Competitor:  chunk.Competitor,
			SourceType:  string(chunk.SourceType),
			SourceURL:   chunk.SourceURL,
			SourceTitle: chunk.SourceTitle,
			Topics:      chunk.TopicIDs,
			Credibility: string(chunk.Credibility),
		}
		if err := batch.Index(chunk.ID, doc); err != nil {
			return fmt.Errorf("index chunk %s: %w", chunk.ID, err)
		}
	}
	if err := ix.index.Batch(batch); err != nil {
		return fmt.Errorf("commit index batch: %w", err)
	}
	return nil
}

// Search runs a match query over chunk text, intersected with any exact-value
// filters, and returns up to limit hits ordered by score.
func (ix *Index) Search(query string, filters Filters, limit int) ([]*Result, error) {
	match := bleve.NewMatchQuery(query)
	match.SetField("text")

	queries := []blevequery.Query{match}
	for field, value := range map[string]string{
		"competitor":  filters.Competitor,
		"source_type": filters.SourceType,
		"topics":      filters.Topic,
		"credibility": filters.Credibility,
	} {
		if value == "" {
			continue
		}
		tq := bleve.NewTermQuery(value)
		tq.SetField(field)
		queries = append(queries, tq)
	}

	var q blevequery.Query = match
	if len(queries) > 1 {
		q = bleve.NewConjunctionQuery(queries...)
	}

	req := bleve.NewSearchRequestOptions(q, limit, 0, false)
	req.Fields = []string{"text", "competitor", "source_type", "source_url", "source_title"}
	results, err := ix.index.Search(req)
	if err != nil {
		return nil, fmt.Errorf("search chunk index: %w", err)
	}

	out := make([]*Result, 0, len(results.Hits))
	for _, hit := range results.Hits {
		r := &Result{ID: hit.ID, Score: hit.Score}
		if v, ok := hit.Fields["text"].(string); ok {
			r.Text = v
		}
		if v, ok := hit.Fields["competitor"].(string); ok {
			r.Competitor = v
		}
		if v, ok := hit.Fields["source_type"].(string); ok {
			r.SourceType = v
		}
		if v, ok := hit.Fields["source_url"].(string); ok {
			r.SourceURL = v
		}
		if v, ok := hit.Fields["source_title"].(string); ok {
			r.SourceTitle = v
		}
		out = append(out, r)
	}
	return out, nil
}

// DocCount returns the number of indexed chunks.
func (ix *Index) DocCount() (uint64, error) {
	return ix.index.DocCount()
}

// Close releases the underlying index.
func (ix *Index) Close() error {
	return ix.index.Close()
}
