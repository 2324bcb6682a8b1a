package models

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
)

// RawChunk is a retrieval-ready unit of text derived from exactly one
// SourceRecord. Chunks are created in bulk by the chunking engine and never
// mutated afterwards; the embedding collaborator consumes them once.
type RawChunk struct {
	ID          string         `json:"id"`
	Text        string         `json:"text"`
	Competitor  string         `json:"competitor"`
	SourceType  SourceType     `json:"source_type"`
	SourceURL   string         `json:"source_url"`
	SourceTitle string         `json:"source_title"`
	TopicIDs    []string       `json:"topic_ids"`
	Credibility Credibility    `json:"credibility"`
	ContentDate *Date          `json:"content_date,omitempty"`
	ScrapedDate Date           `json:"scraped_date"`
	ChunkIndex  int            `json:"chunk_index"`
	ParentDocID string         `json:"parent_doc_id"`
	TokenCount  int            `json:"token_count"`
	Metadata    map[string]any `json:"metadata,omitempty"`
}

// ChunkID derives the deterministic chunk identifier from the parent record,
// the chunk's position, and the first 100 characters of its text. Re-running
// ingestion regenerates the same IDs, so downstream upserts replace prior chunks.
func ChunkID(competitor, parentDocID string, chunkIndex int, text string) string {
	head := text
	if len(head) > 100 {
		head = head[:100]
	}
	sum := sha256.Sum256([]byte(fmt.Sprintf("%s:%d:%s", parentDocID, chunkIndex, head)))
	return fmt.Sprintf("%s-chunk-%s", competitor, hex.EncodeToString(sum[:])[:12])
}

// NewRawChunk builds a chunk for the given parent record. The text must
// already carry its context prefix; tokenCount is the count for that text.
func NewRawChunk(rec *SourceRecord, index int, text string, tokenCount int, metadata map[string]any) *RawChunk {
	topics := rec.Topics
	if len(topics) == 0 {
		topics = []string{TopicUnclassified}
	}
	return &RawChunk{
		ID:          ChunkID(rec.Origin, rec.ID, index, text),
		Text:        text,
		Competitor:  rec.Origin,
		SourceType:  rec.SourceType,
		SourceURL:   rec.URL,
		SourceTitle: rec.Title,
		TopicIDs:    topics,
		Credibility: rec.Credibility,
		ContentDate: rec.ContentDate,
		ScrapedDate: rec.ScrapedDate,
		ChunkIndex:  index,
		ParentDocID: rec.ID,
		TokenCount:  tokenCount,
		Metadata:    metadata,
	}
}
