// Package store reads and writes the pipeline's on-disk JSON artifacts: raw
// scraper dumps, processed record sets, and chunk files.
package store

import (
	"encoding/json"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"github.com/vantagedb/scout/internal/models"
)

// Store resolves target-scoped paths under the configured data directories.
type Store struct {
	rawDir       string
	processedDir string
	chunksDir    string
	logger       *zap.Logger
}

// Option configures a Store.
type Option func(*Store)

// WithLogger sets a logger for load warnings.
func WithLogger(l *zap.Logger) Option {
	return func(s *Store) { s.logger = l }
}

// New creates a store over the given data directories.
func New(rawDir, processedDir, chunksDir string, opts ...Option) *Store {
	s := &Store{
		rawDir:       rawDir,
		processedDir: processedDir,
		chunksDir:    chunksDir,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// LoadRaw reads every *.json file under the target's raw directory, each
// holding an array of source records, and concatenates them in path order.
// Files that fail to parse are skipped with a warning; scrapers occasionally
// leave truncated dumps behind and one bad file must not block a run.
func (s *Store) LoadRaw(target string) ([]*models.SourceRecord, error) {
	dir := filepath.Join(s.rawDir, target)
	if _, err := os.Stat(dir); err != nil {
		return nil, fmt.Errorf("raw directory for %s: %w", target, err)
	}

	var records []*models.SourceRecord
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !strings.HasSuffix(strings.ToLower(d.Name()), ".json") {
			return nil
		}
		data, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("read %s: %w", path, err)
		}
		var batch []*models.SourceRecord
		if err := json.Unmarshal(data, &batch); err != nil {
			if s.logger != nil {
				s.logger.Warn("skipping unparseable raw file",
					zap.String("path", path),
					zap.Error(err),
				)
			}
			return nil
		}
		// Scrapers occasionally omit ids; derive them here so every record
		// downstream has a distinct identity.
		for _, rec := range batch {
			if rec.ID == "" {
				rec.ID = models.RecordID(rec.Origin, rec.SourceType, rec.URL)
			}
		}
		records = append(records, batch...)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return records, nil
}

// SaveProcessed writes the target's normalized record set.
func (s *Store) SaveProcessed(target string, records []*models.SourceRecord) error {
	return writeJSON(s.processedPath(target), records)
}

// LoadProcessed reads the target's normalized record set.
func (s *Store) LoadProcessed(target string) ([]*models.SourceRecord, error) {
	data, err := os.ReadFile(s.processedPath(target))
	if err != nil {
		return nil, fmt.Errorf("read processed records for %s: %w", target, err)
	}
	var records []*models.SourceRecord
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("parse processed records for %s: %w", target, err)
	}
	return records, nil
}

// SaveChunks writes the target's chunk file.
func (s *Store) SaveChunks(target string, chunks []*models.RawChunk) error {
	return writeJSON(filepath.Join(s.chunksDir, target+"_chunks.json"), chunks)
}

// LoadChunks reads the target's chunk file.
func (s *Store) LoadChunks(target string) ([]*models.RawChunk, error) {
	path := filepath.Join(s.chunksDir, target+"_chunks.json")
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read chunks for %s: %w", target, err)
	}
	var chunks []*models.RawChunk
	if err := json.Unmarshal(data, &chunks); err != nil {
		return nil, fmt.Errorf("parse chunks for %s: %w", target, err)
	}
	return chunks, nil
}

func (s *Store) processedPath(target string) string {
	return filepath.Join(s.processedDir, target, target+"_processed.json")
}

func writeJSON(path string, v any) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("create %s: %w", filepath.Dir(path), err)
	}
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("encode %s: %w", path, err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}
