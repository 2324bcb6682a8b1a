package config

import (
	"os"
	"path/filepath"
	"testing"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadAppliesDefaults(t *testing.T) {
	path := writeConfig(t, "debug: true\n")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if !cfg.Debug {
		t.Error("debug not parsed")
	}
	if cfg.Filter.MinWordCount != DefaultMinWordCount {
		t.Errorf("MinWordCount = %d, want %d", cfg.Filter.MinWordCount, DefaultMinWordCount)
	}
	if cfg.Dedup.SimilarityThreshold != DefaultSimilarityThreshold {
		t.Errorf("SimilarityThreshold = %v", cfg.Dedup.SimilarityThreshold)
	}
	if cfg.Chunking.ChunkTokens != DefaultChunkTokens || cfg.Chunking.OverlapTokens != DefaultOverlapTokens {
		t.Errorf("chunking defaults = %d/%d", cfg.Chunking.ChunkTokens, cfg.Chunking.OverlapTokens)
	}
	if cfg.Chunking.TokenizerModel != DefaultTokenizerModel {
		t.Errorf("TokenizerModel = %q", cfg.Chunking.TokenizerModel)
	}

	// Relative ./ paths resolve against the config directory.
	configDir := filepath.Dir(path)
	if cfg.Data.RawDir != filepath.Join(configDir, "./data/raw") {
		t.Errorf("RawDir = %q", cfg.Data.RawDir)
	}
}

func TestLoadExplicitValues(t *testing.T) {
	path := writeConfig(t, `
data:
  raw_dir: /srv/scout/raw
  self_origin: vantage
filter:
  min_word_count: 42
  require_topics: false
dedup:
  similarity_threshold: 0.9
targets:
  - name: acmedb
    display_name: AcmeDB
    topic_keywords:
      replication: [acme streams]
`)
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Data.RawDir != "/srv/scout/raw" {
		t.Errorf("absolute path rewritten: %q", cfg.Data.RawDir)
	}
	if cfg.Data.SelfOrigin != "vantage" {
		t.Errorf("SelfOrigin = %q", cfg.Data.SelfOrigin)
	}
	if cfg.Filter.MinWordCount != 42 {
		t.Errorf("MinWordCount = %d", cfg.Filter.MinWordCount)
	}
	if cfg.Dedup.SimilarityThreshold != 0.9 {
		t.Errorf("SimilarityThreshold = %v", cfg.Dedup.SimilarityThreshold)
	}

	target := cfg.Target("acmedb")
	if target == nil || target.DisplayName != "AcmeDB" {
		t.Fatalf("Target(acmedb) = %+v", target)
	}
	if len(target.TopicKeywords["replication"]) != 1 {
		t.Errorf("topic keywords = %v", target.TopicKeywords)
	}
	if cfg.Target("unknown") != nil {
		t.Error("Target(unknown) should be nil")
	}
	if names := cfg.TargetNames(); len(names) != 1 || names[0] != "acmedb" {
		t.Errorf("TargetNames = %v", names)
	}
}

func TestRequireTopicsOrDefault(t *testing.T) {
	var f FilterConfig
	if !f.RequireTopicsOrDefault() {
		t.Error("unset must default to true")
	}
	off := false
	f.RequireTopics = &off
	if f.RequireTopicsOrDefault() {
		t.Error("explicit false must be honored")
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("expected error for missing config")
	}
}
