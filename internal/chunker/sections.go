package chunker

import (
	"regexp"
	"strings"
)

// headerRe matches markdown section headers up to four levels deep.
var headerRe = regexp.MustCompile(`(?m)^(#{1,4})\s+(.+)$`)

// section is one header-delimited region of a markdown document. header keeps
// its hash marks ("## Storage"); body is the trimmed content up to the next header.
type section struct {
	header string
	body   string
}

// splitByHeaders splits text on markdown header lines. Content before the
// first header becomes a headerless section; text without any header is one
// headerless section.
func splitByHeaders(text string) []section {
	matches := headerRe.FindAllStringSubmatchIndex(text, -1)
	if len(matches) == 0 {
		return []section{{"", text}}
	}

	var sections []section
	if pre := strings.TrimSpace(text[:matches[0][0]]); pre != "" {
		sections = append(sections, section{"", pre})
	}
	for i, m := range matches {
		header := text[m[2]:m[3]] + " " + text[m[4]:m[5]]
		bodyEnd := len(text)
		if i+1 < len(matches) {
			bodyEnd = matches[i+1][0]
		}
		sections = append(sections, section{header, strings.TrimSpace(text[m[1]:bodyEnd])})
	}
	if len(sections) == 0 {
		sections = []section{{"", text}}
	}
	return sections
}

// chunkBlog splits blog posts by section headers. Sections that fit the chunk
// budget are emitted whole; oversized ones are recursively split, with the
// section header re-prepended to every sub-chunk after the first so each
// keeps its context.
func (c *Chunker) chunkBlog(title, text string) []string {
	var chunks []string
	for _, s := range splitByHeaders(text) {
		full := title + "\n" + s.body
		if s.header != "" {
			full = title + "\n" + s.header + "\n" + s.body
		}

		if n := c.tok.Count(full); n <= c.chunkTokens {
			if n >= MinChunkTokens {
				chunks = append(chunks, strings.TrimSpace(full))
			}
			continue
		}
		for j, sc := range c.recursiveSplit(full) {
			if j > 0 && s.header != "" && !strings.HasPrefix(sc, s.header) {
				sc = s.header + "\n" + sc
			}
			chunks = append(chunks, strings.TrimSpace(sc))
		}
	}

	if len(chunks) == 0 {
		for _, sc := range c.recursiveSplit(title + "\n" + text) {
			chunks = append(chunks, strings.TrimSpace(sc))
		}
	}
	return chunks
}

// chunkDocs splits documentation by section headers while tracking the header
// nesting depth, so every chunk carries its full breadcrumb path
// ("Title > Section > Subsection") rather than just the nearest header.
func (c *Chunker) chunkDocs(title, text string) []string {
	var chunks []string
	hierarchy := []string{title}

	for _, s := range splitByHeaders(text) {
		if s.header != "" {
			level := strings.Count(s.header, "#")
			if level > len(hierarchy) {
				level = len(hierarchy)
			}
			clean := strings.TrimSpace(strings.TrimLeft(s.header, "#"))
			hierarchy = append(hierarchy[:level:level], clean)
		}
		path := strings.Join(hierarchy, " > ")
		full := path + "\n" + s.body

		if n := c.tok.Count(full); n <= c.chunkTokens {
			if n >= MinChunkTokens {
				chunks = append(chunks, strings.TrimSpace(full))
			}
			continue
		}
		for j, sc := range c.recursiveSplit(full) {
			if j > 0 {
				sc = path + "\n" + sc
			}
			chunks = append(chunks, strings.TrimSpace(sc))
		}
	}

	if len(chunks) == 0 {
		for _, sc := range c.recursiveSplit(title + "\n" + text) {
			chunks = append(chunks, strings.TrimSpace(sc))
		}
	}
	return chunks
}
