// Package main is the scout CLI entry point.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/vantagedb/scout/internal/chunker"
	"github.com/vantagedb/scout/internal/config"
	"github.com/vantagedb/scout/internal/keyword"
	"github.com/vantagedb/scout/internal/models"
	"github.com/vantagedb/scout/internal/pipeline"
	"github.com/vantagedb/scout/internal/store"
	"github.com/vantagedb/scout/internal/taxonomy"
	"github.com/vantagedb/scout/internal/token"
	"github.com/vantagedb/scout/internal/watcher"
	"github.com/vantagedb/scout/pkg/utils"
	"go.uber.org/zap"
)

var version = "dev"

const defaultConfigPath = "/usr/local/etc/scout/config.yaml"

// loadConfig loads config from path. When path is the default, it first looks
// for config.yaml in the current directory (for development); if that exists
// it is used, so running scout from the project dir picks up the project's config.
func loadConfig(path string) (*config.Config, string, error) {
	if path == defaultConfigPath {
		if cwd, cwdErr := os.Getwd(); cwdErr == nil {
			fallback := filepath.Join(cwd, "config.yaml")
			if _, statErr := os.Stat(fallback); statErr == nil {
				cfg, loadErr := config.Load(fallback)
				if loadErr != nil {
					return nil, "", loadErr
				}
				return cfg, fallback, nil
			}
		}
	}
	cfg, err := config.Load(path)
	if err != nil {
		return nil, "", err
	}
	return cfg, path, nil
}

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}
	command := os.Args[1]
	switch command {
	case "process":
		runProcess()
	case "chunk":
		runChunk()
	case "query":
		runQuery()
	case "status":
		runStatus()
	case "watch":
		runWatch()
	case "version", "--version", "-v":
		fmt.Printf("scout version %s\n", version)
	case "help", "--help", "-h":
		printUsage()
	default:
		fmt.Printf("Unknown command: %s\n", command)
		printUsage()
		os.Exit(1)
	}
}

// app bundles the wired services a subcommand needs.
type app struct {
	cfg    *config.Config
	logger *zap.Logger
	store  *store.Store
	topics taxonomy.Lookup
}

func initApp(configPath string, debugFlag bool) *app {
	cfg, resolvedPath, err := loadConfig(configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}
	debugMode := cfg.Debug || debugFlag
	logger, err := utils.NewLogger(debugMode)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to create logger: %v\n", err)
		os.Exit(1)
	}
	logger.Info("config loaded",
		zap.String("config_path", resolvedPath),
		zap.Bool("debug", debugMode),
	)

	topics, err := taxonomy.Load(cfg.Data.TaxonomyPath)
	if err != nil {
		logger.Warn("taxonomy unavailable, topic names fall back to General",
			zap.String("path", cfg.Data.TaxonomyPath),
			zap.Error(err),
		)
		topics = taxonomy.Lookup{}
	}

	return &app{
		cfg:    cfg,
		logger: logger,
		store:  store.New(cfg.Data.RawDir, cfg.Data.ProcessedDir, cfg.Data.ChunksDir, store.WithLogger(logger)),
		topics: topics,
	}
}

// newPipeline wires the normalization stages for one target.
func (a *app) newPipeline(target *config.TargetConfig) (*pipeline.Pipeline, error) {
	tagger, err := pipeline.NewTagger(
		a.cfg.Data.KeywordsPath,
		target.TopicKeywords,
		a.cfg.Tagger.MaxTopics,
		a.cfg.Tagger.MinScore,
		pipeline.WithTaggerLogger(a.logger),
	)
	if err != nil {
		return nil, err
	}
	filter := pipeline.NewQualityFilter(
		a.cfg.Filter.MinWordCount,
		a.cfg.Filter.MaxCodeRatio,
		a.cfg.Filter.RequireTopicsOrDefault(),
		pipeline.WithFilterLogger(a.logger),
	)
	dedup, err := pipeline.NewDeduplicator(
		a.cfg.Dedup.SimilarityThreshold,
		a.cfg.Dedup.NumPermutations,
		pipeline.WithDedupLogger(a.logger),
	)
	if err != nil {
		return nil, err
	}
	cleaner := pipeline.NewCleaner(pipeline.WithCleanerLogger(a.logger))
	return pipeline.New(cleaner, tagger, filter, dedup, a.logger), nil
}

// newChunker wires the chunking engine. The tiktoken tokenizer fetches its
// encoding on first use; a word-count tokenizer backs it up offline.
func (a *app) newChunker() (*chunker.Chunker, error) {
	var tok token.Tokenizer
	tok, err := token.NewTiktoken(a.cfg.Chunking.TokenizerModel)
	if err != nil {
		a.logger.Warn("tiktoken unavailable, falling back to word tokenizer", zap.Error(err))
		tok = token.NewWords()
	}
	return chunker.New(
		chunker.Config{
			ChunkTokens:   a.cfg.Chunking.ChunkTokens,
			OverlapTokens: a.cfg.Chunking.OverlapTokens,
		},
		tok,
		a.topics,
		chunker.WithLogger(a.logger),
		chunker.WithSelfOrigin(a.cfg.Data.SelfOrigin),
	)
}

// resolveTargets expands a -target flag value to the target configs to run:
// a single named target, or every configured target when empty.
func (a *app) resolveTargets(name string) []*config.TargetConfig {
	if name != "" {
		t := a.cfg.Target(name)
		if t == nil {
			fmt.Fprintf(os.Stderr, "Unknown target %q; configured: %s\n", name, strings.Join(a.cfg.TargetNames(), ", "))
			os.Exit(1)
		}
		return []*config.TargetConfig{t}
	}
	targets := make([]*config.TargetConfig, len(a.cfg.Targets))
	for i := range a.cfg.Targets {
		targets[i] = &a.cfg.Targets[i]
	}
	if len(targets) == 0 {
		fmt.Fprintln(os.Stderr, "No targets configured")
		os.Exit(1)
	}
	return targets
}

// processTarget runs the normalization pipeline for one target and saves the
// processed record set.
func (a *app) processTarget(target *config.TargetConfig) (pipeline.Report, error) {
	records, err := a.store.LoadRaw(target.Name)
	if err != nil {
		return pipeline.Report{}, err
	}
	p, err := a.newPipeline(target)
	if err != nil {
		return pipeline.Report{}, err
	}
	processed, report := p.Process(target.Name, records)
	if err := a.store.SaveProcessed(target.Name, processed); err != nil {
		return report, err
	}
	return report, nil
}

// chunkTarget chunks a target's processed records, saves the chunk file, and
// refreshes the keyword index.
func (a *app) chunkTarget(c *chunker.Chunker, targetName string) (int, error) {
	records, err := a.store.LoadProcessed(targetName)
	if err != nil {
		return 0, err
	}
	chunks := c.ChunkRecords(records)
	if err := a.store.SaveChunks(targetName, chunks); err != nil {
		return 0, err
	}
	if err := a.indexChunks(chunks); err != nil {
		return len(chunks), err
	}
	return len(chunks), nil
}

func (a *app) indexChunks(chunks []*models.RawChunk) error {
	ix, err := keyword.Open(a.cfg.Data.IndexPath)
	if err != nil {
		return err
	}
	defer ix.Close()
	return ix.IndexChunks(chunks)
}

func runProcess() {
	fs := flag.NewFlagSet("process", flag.ExitOnError)
	configPath := fs.String("config", defaultConfigPath, "config file path")
	targetName := fs.String("target", "", "target short name (default: all configured targets)")
	debug := fs.Bool("debug", false, "enable debug logging")
	_ = fs.Parse(os.Args[2:])

	a := initApp(*configPath, *debug)
	defer a.logger.Sync()

	for _, target := range a.resolveTargets(*targetName) {
		report, err := a.processTarget(target)
		if err != nil {
			a.logger.Error("process failed", zap.String("target", target.Name), zap.Error(err))
			os.Exit(1)
		}
		fmt.Printf("%s: %d in -> %d out (filtered %d, deduped %d)\n",
			target.Name, report.Input, report.Output,
			report.Filter.Input-report.Filter.Kept,
			report.Dedup.RemovedURL+report.Dedup.RemovedGit+report.Dedup.RemovedNear,
		)
	}
}

func runChunk() {
	fs := flag.NewFlagSet("chunk", flag.ExitOnError)
	configPath := fs.String("config", defaultConfigPath, "config file path")
	targetName := fs.String("target", "", "target short name (default: all configured targets)")
	debug := fs.Bool("debug", false, "enable debug logging")
	_ = fs.Parse(os.Args[2:])

	a := initApp(*configPath, *debug)
	defer a.logger.Sync()

	c, err := a.newChunker()
	if err != nil {
		a.logger.Error("chunker init failed", zap.Error(err))
		os.Exit(1)
	}
	for _, target := range a.resolveTargets(*targetName) {
		n, err := a.chunkTarget(c, target.Name)
		if err != nil {
			a.logger.Error("chunk failed", zap.String("target", target.Name), zap.Error(err))
			os.Exit(1)
		}
		fmt.Printf("%s: %d chunks\n", target.Name, n)
	}
}

func runQuery() {
	fs := flag.NewFlagSet("query", flag.ExitOnError)
	configPath := fs.String("config", defaultConfigPath, "config file path")
	competitor := fs.String("competitor", "", "filter by competitor short name")
	sourceType := fs.String("source-type", "", "filter by source type (e.g. github_issue)")
	topic := fs.String("topic", "", "filter by topic id")
	credibility := fs.String("credibility", "", "filter by credibility (official, third_party, community)")
	limit := fs.Int("limit", 10, "number of results")
	outputFormat := fs.String("output", "text", "output format: text or json")
	_ = fs.Parse(os.Args[2:])

	if fs.NArg() < 1 {
		fmt.Println("Usage: scout query [flags] <query>")
		os.Exit(1)
	}
	queryStr := strings.TrimSpace(strings.Join(fs.Args(), " "))
	if queryStr == "" {
		fmt.Println("Usage: scout query [flags] <query>")
		os.Exit(1)
	}

	a := initApp(*configPath, false)
	defer a.logger.Sync()

	ix, err := keyword.Open(a.cfg.Data.IndexPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to open chunk index: %v\n", err)
		os.Exit(1)
	}
	defer ix.Close()

	results, err := ix.Search(queryStr, keyword.Filters{
		Competitor:  *competitor,
		SourceType:  *sourceType,
		Topic:       *topic,
		Credibility: *credibility,
	}, *limit)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Query failed: %v\n", err)
		os.Exit(1)
	}

	switch *outputFormat {
	case "json":
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(results); err != nil {
			fmt.Fprintf(os.Stderr, "Output failed: %v\n", err)
			os.Exit(1)
		}
	case "text":
		if len(results) == 0 {
			fmt.Println("No results")
			return
		}
		for i, r := range results {
			fmt.Printf("%d. [%.3f] %s (%s, %s)\n", i+1, r.Score, r.SourceTitle, r.Competitor, r.SourceType)
			fmt.Printf("   %s\n", utils.Truncate(strings.ReplaceAll(r.Text, "\n", " "), 160))
			if r.SourceURL != "" {
				fmt.Printf("   %s\n", r.SourceURL)
			}
		}
	default:
		fmt.Fprintf(os.Stderr, "Unknown output format %q; use text or json\n", *outputFormat)
		os.Exit(1)
	}
}

func runStatus() {
	fs := flag.NewFlagSet("status", flag.ExitOnError)
	configPath := fs.String("config", defaultConfigPath, "config file path")
	outputFormat := fs.String("output", "text", "output format: text or json")
	_ = fs.Parse(os.Args[2:])

	a := initApp(*configPath, false)
	defer a.logger.Sync()

	type targetStatus struct {
		Processed int `json:"processed"`
		Chunks    int `json:"chunks"`
	}
	status := struct {
		Targets     map[string]targetStatus `json:"targets"`
		IndexedDocs uint64                  `json:"indexed_chunks"`
		UsageBytes  map[string]int64        `json:"usage_bytes,omitempty"`
	}{Targets: make(map[string]targetStatus)}

	for _, name := range a.cfg.TargetNames() {
		var ts targetStatus
		if records, err := a.store.LoadProcessed(name); err == nil {
			ts.Processed = len(records)
		}
		if chunks, err := a.store.LoadChunks(name); err == nil {
			ts.Chunks = len(chunks)
		}
		status.Targets[name] = ts
	}
	if ix, err := keyword.Open(a.cfg.Data.IndexPath); err == nil {
		if n, err := ix.DocCount(); err == nil {
			status.IndexedDocs = n
		}
		ix.Close()
	}
	if usage, err := a.store.Usage(); err == nil {
		status.UsageBytes = usage
	}

	switch *outputFormat {
	case "json":
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(status); err != nil {
			fmt.Fprintf(os.Stderr, "Output failed: %v\n", err)
			os.Exit(1)
		}
	case "text":
		for name, ts := range status.Targets {
			fmt.Printf("%-16s processed: %-6d chunks: %d\n", name, ts.Processed, ts.Chunks)
		}
		fmt.Printf("indexed_chunks:  %d\n", status.IndexedDocs)
		for stage, n := range status.UsageBytes {
			fmt.Printf("disk_%s_bytes: %d\n", stage, n)
		}
	default:
		fmt.Fprintf(os.Stderr, "Unknown output format %q; use text or json\n", *outputFormat)
		os.Exit(1)
	}
}

func runWatch() {
	fs := flag.NewFlagSet("watch", flag.ExitOnError)
	configPath := fs.String("config", defaultConfigPath, "config file path")
	debug := fs.Bool("debug", false, "enable debug logging")
	chunkAfter := fs.Bool("chunk", true, "chunk and index after processing")
	_ = fs.Parse(os.Args[2:])

	a := initApp(*configPath, *debug)
	defer a.logger.Sync()

	var c *chunker.Chunker
	if *chunkAfter {
		var err error
		c, err = a.newChunker()
		if err != nil {
			a.logger.Error("chunker init failed", zap.Error(err))
			os.Exit(1)
		}
	}

	w := watcher.New(a.cfg.Data.RawDir, func(targetName string) {
		target := a.cfg.Target(targetName)
		if target == nil {
			a.logger.Warn("raw data for unconfigured target", zap.String("target", targetName))
			return
		}
		report, err := a.processTarget(target)
		if err != nil {
			a.logger.Error("reprocess failed", zap.String("target", targetName), zap.Error(err))
			return
		}
		a.logger.Info("reprocessed target",
			zap.String("target", targetName),
			zap.Int("input", report.Input),
			zap.Int("output", report.Output),
		)
		if c != nil {
			if n, err := a.chunkTarget(c, targetName); err != nil {
				a.logger.Error("rechunk failed", zap.String("target", targetName), zap.Error(err))
			} else {
				a.logger.Info("rechunked target", zap.String("target", targetName), zap.Int("chunks", n))
			}
		}
	}, watcher.WithLogger(a.logger))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	if err := w.Start(ctx); err != nil {
		a.logger.Error("watcher failed to start", zap.Error(err))
		os.Exit(1)
	}
	defer w.Stop()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	<-sigChan
	a.logger.Info("shutting down")
}

func printUsage() {
	fmt.Println(`scout - competitive intelligence ingestion pipeline

Usage:
  scout process [flags]          Normalize raw scraper output (clean, tag, filter, dedup)
  scout chunk [flags]            Chunk processed records and refresh the keyword index
  scout query [flags] <query>    Search indexed chunks
  scout status [flags]           Show per-target record/chunk counts and disk usage
  scout watch [flags]            Watch the raw data dir and reprocess on change
  scout version                  Show version
  scout help                     Show this help

Common Flags:
  --config string    Config file path (default: /usr/local/etc/scout/config.yaml;
                     falls back to ./config.yaml when present)
  --target string    Target short name (process/chunk; default: all targets)
  --debug            Enable debug logging

Query Flags:
  --competitor string    Filter by competitor short name
  --source-type string   Filter by source type (e.g. github_issue)
  --topic string         Filter by topic id
  --credibility string   Filter by credibility tier
  --limit int            Number of results (default: 10)
  --output string        Output format: text or json (default: text)

Examples:
  scout process --target acmedb
  scout chunk
  scout query --competitor acmedb --source-type github_issue replication lag
  scout status --output json
  scout watch --debug`)
}
