package config

// Default pipeline thresholds. Chunk sizing targets the downstream embedding
// model's sweet spot; the dedup threshold is Jaccard similarity over 3-word
// shingles.
const (
	DefaultMinWordCount        = 100
	DefaultMaxCodeRatio        = 0.85
	DefaultSimilarityThreshold = 0.7
	DefaultNumPermutations     = 128
	DefaultChunkTokens         = 400
	DefaultOverlapTokens       = 60
	DefaultTokenizerModel      = "text-embedding-3-small"
	DefaultMaxTopics           = 3
	DefaultMinTopicScore       = 0.01
)

// ApplyDefaults sets default values for any zero values in cfg.
func ApplyDefaults(cfg *Config) {
	if cfg.Data.RawDir == "" {
		cfg.Data.RawDir = "./data/raw"
	}
	if cfg.Data.ProcessedDir == "" {
		cfg.Data.ProcessedDir = "./data/processed"
	}
	if cfg.Data.ChunksDir == "" {
		cfg.Data.ChunksDir = "./data/chunks"
	}
	if cfg.Data.IndexPath == "" {
		cfg.Data.IndexPath = "./data/indices/chunks.bleve"
	}
	if cfg.Data.TaxonomyPath == "" {
		cfg.Data.TaxonomyPath = "./config/taxonomy.json"
	}
	if cfg.Data.KeywordsPath == "" {
		cfg.Data.KeywordsPath = "./config/keywords.json"
	}
	if cfg.Filter.MinWordCount == 0 {
		cfg.Filter.MinWordCount = DefaultMinWordCount
	}
	if cfg.Filter.MaxCodeRatio == 0 {
		cfg.Filter.MaxCodeRatio = DefaultMaxCodeRatio
	}
	if cfg.Dedup.SimilarityThreshold == 0 {
		cfg.Dedup.SimilarityThreshold = DefaultSimilarityThreshold
	}
	if cfg.Dedup.NumPermutations == 0 {
		cfg.Dedup.NumPermutations = DefaultNumPermutations
	}
	if cfg.Chunking.ChunkTokens == 0 {
		cfg.Chunking.ChunkTokens = DefaultChunkTokens
	}
	if cfg.Chunking.OverlapTokens == 0 {
		cfg.Chunking.OverlapTokens = DefaultOverlapTokens
	}
	if cfg.Chunking.TokenizerModel == "" {
		cfg.Chunking.TokenizerModel = DefaultTokenizerModel
	}
	if cfg.Tagger.MaxTopics == 0 {
		cfg.Tagger.MaxTopics = DefaultMaxTopics
	}
	if cfg.Tagger.MinScore == 0 {
		cfg.Tagger.MinScore = DefaultMinTopicScore
	}
}
