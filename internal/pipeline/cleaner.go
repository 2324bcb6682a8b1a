package pipeline

import (
	"regexp"
	"strings"

	"github.com/vantagedb/scout/internal/models"
	"go.uber.org/zap"
)

// stripPatterns remove residual boilerplate that survives HTML extraction.
var stripPatterns = []*regexp.Regexp{
	// Cookie consent / GDPR banners
	regexp.MustCompile(`(?is)(we use cookies|cookie policy|accept all cookies|manage preferences).*?\.`),
	// Newsletter signup CTAs
	regexp.MustCompile(`(?is)(subscribe to|sign up for|join our|get the latest).*?(newsletter|updates|news).*?\.`),
	// Social share button text
	regexp.MustCompile(`(?i)(share on|follow us on|tweet this|share this).*?(twitter|linkedin|facebook|x\.com).*?\n`),
	// Copyright notices
	regexp.MustCompile(`(?i)©\s*\d{4}.*?(all rights reserved|inc\.|ltd\.|corp\.).*?\n`),
}

var blankLinesRe = regexp.MustCompile(`\n{3,}`)
var multiSpaceRe = regexp.MustCompile(`  +`)

// Cleaner normalizes scraped text: strips boilerplate patterns, collapses
// whitespace outside fenced code blocks, and recomputes word counts.
type Cleaner struct {
	logger *zap.Logger
}

// CleanerOption configures a Cleaner.
type CleanerOption func(*Cleaner)

// WithCleanerLogger sets a logger for batch summaries.
func WithCleanerLogger(l *zap.Logger) CleanerOption {
	return func(c *Cleaner) { c.logger = l }
}

// NewCleaner creates a content cleaner.
func NewCleaner(opts ...CleanerOption) *Cleaner {
	c := &Cleaner{}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Clean normalizes a single record's text in place and returns the record.
func (c *Cleaner) Clean(rec *models.SourceRecord) *models.SourceRecord {
	text := rec.Text
	for _, pattern := range stripPatterns {
		text = pattern.ReplaceAllString(text, "")
	}
	text = normalizeWhitespace(text)
	text = blankLinesRe.ReplaceAllString(text, "\n\n")
	text = strings.TrimSpace(text)

	rec.Text = text
	rec.WordCount = len(strings.Fields(text))
	return rec
}

// CleanBatch normalizes every record in place.
func (c *Cleaner) CleanBatch(records []*models.SourceRecord) []*models.SourceRecord {
	for _, rec := range records {
		c.Clean(rec)
	}
	if c.logger != nil {
		c.logger.Info("cleaned records", zap.Int("count", len(records)))
	}
	return records
}

// normalizeWhitespace collapses runs of spaces in prose lines while leaving
// fenced code blocks untouched and keeping markdown structure (headings,
// tables, list items) line-exact.
func normalizeWhitespace(text string) string {
	var b strings.Builder
	last := 0
	for _, loc := range fencedCodeRe.FindAllStringIndex(text, -1) {
		b.WriteString(normalizeProse(text[last:loc[0]]))
		b.WriteString(text[loc[0]:loc[1]])
		last = loc[1]
	}
	b.WriteString(normalizeProse(text[last:]))
	return b.String()
}

func normalizeProse(text string) string {
	lines := strings.Split(text, "\n")
	for i, line := range lines {
		trimmed := strings.TrimSpace(line)
		if strings.HasPrefix(trimmed, "#") || strings.HasPrefix(trimmed, "|") ||
			strings.HasPrefix(trimmed, "-") || strings.HasPrefix(trimmed, "*") ||
			strings.HasPrefix(trimmed, "1.") || strings.HasPrefix(trimmed, "2.") ||
			strings.HasPrefix(trimmed, "3.") {
			continue
		}
		lines[i] = multiSpaceRe.ReplaceAllString(line, " ")
	}
	return strings.Join(lines, "\n")
}
