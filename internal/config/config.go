// Package config provides configuration loading and structs for the scout pipeline.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config holds all configuration for the application.
type Config struct {
	Debug    bool           `yaml:"debug"`
	Data     DataConfig     `yaml:"data"`
	Filter   FilterConfig   `yaml:"filter"`
	Dedup    DedupConfig    `yaml:"dedup"`
	Chunking ChunkingConfig `yaml:"chunking"`
	Tagger   TaggerConfig   `yaml:"tagger"`
	Targets  []TargetConfig `yaml:"targets"`
}

// DataConfig holds data directory layout and lookup file paths.
type DataConfig struct {
	RawDir       string `yaml:"raw_dir"`
	ProcessedDir string `yaml:"processed_dir"`
	ChunksDir    string `yaml:"chunks_dir"`
	IndexPath    string `yaml:"index_path"`
	TaxonomyPath string `yaml:"taxonomy_path"`
	KeywordsPath string `yaml:"keywords_path"`
	// SelfOrigin is the origin short name of our own product. Chunk context
	// prefixes upper-case it; every other origin is capitalized.
	SelfOrigin string `yaml:"self_origin"`
}

// FilterConfig holds quality filter thresholds.
type FilterConfig struct {
	MinWordCount  int     `yaml:"min_word_count"`
	MaxCodeRatio  float64 `yaml:"max_code_ratio"`
	RequireTopics *bool   `yaml:"require_topics"`
}

// RequireTopicsOrDefault returns whether untagged records are filtered out;
// defaults to true when unset.
func (f *FilterConfig) RequireTopicsOrDefault() bool {
	if f.RequireTopics != nil {
		return *f.RequireTopics
	}
	return true
}

// DedupConfig holds near-duplicate detection settings.
type DedupConfig struct {
	SimilarityThreshold float64 `yaml:"similarity_threshold"`
	NumPermutations     int     `yaml:"num_permutations"`
}

// ChunkingConfig holds chunk sizing settings.
type ChunkingConfig struct {
	ChunkTokens    int    `yaml:"chunk_tokens"`
	OverlapTokens  int    `yaml:"overlap_tokens"`
	TokenizerModel string `yaml:"tokenizer_model"`
}

// TaggerConfig holds topic tagging settings.
type TaggerConfig struct {
	MaxTopics int     `yaml:"max_topics"`
	MinScore  float64 `yaml:"min_score"`
}

// TargetConfig describes one product whose sources are ingested.
type TargetConfig struct {
	Name        string `yaml:"name"`
	DisplayName string `yaml:"display_name"`
	// TopicKeywords supplement the global keyword file for this target.
	TopicKeywords map[string][]string `yaml:"topic_keywords"`
}

// Load reads and parses the config file at path, expands paths, and applies defaults.
// Returns an error if the file cannot be read or parsed.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	ApplyDefaults(&cfg)

	configDir := filepath.Dir(path)
	cfg.Data.RawDir = expandPath(cfg.Data.RawDir, configDir)
	cfg.Data.ProcessedDir = expandPath(cfg.Data.ProcessedDir, configDir)
	cfg.Data.ChunksDir = expandPath(cfg.Data.ChunksDir, configDir)
	cfg.Data.IndexPath = expandPath(cfg.Data.IndexPath, configDir)
	cfg.Data.TaxonomyPath = expandPath(cfg.Data.TaxonomyPath, configDir)
	cfg.Data.KeywordsPath = expandPath(cfg.Data.KeywordsPath, configDir)

	return &cfg, nil
}

// Target returns the target config for the given short name, or nil.
func (c *Config) Target(name string) *TargetConfig {
	for i := range c.Targets {
		if c.Targets[i].Name == name {
			return &c.Targets[i]
		}
	}
	return nil
}

// TargetNames returns the short names of all configured targets.
func (c *Config) TargetNames() []string {
	names := make([]string, len(c.Targets))
	for i, t := range c.Targets {
		names[i] = t.Name
	}
	return names
}

// expandPath converts a path to absolute. Paths starting with "./" are relative
// to configDir; other relative paths are relative to the home directory.
func expandPath(path string, configDir string) string {
	if path == "" || filepath.IsAbs(path) {
		return path
	}
	if strings.HasPrefix(path, "./") || path == "." {
		return filepath.Join(configDir, path)
	}
	if home, err := os.UserHomeDir(); err == nil {
		return filepath.Join(home, path)
	}
	return path
}
