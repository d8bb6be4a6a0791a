// Package chunker splits page texts into overlapping, character-budgeted
// chunks that keep their source and page attribution.
package chunker

import (
	"strings"

	"github.com/dgallion1/docqa/internal/parser"
	"github.com/dgallion1/docqa/internal/store"
)

// Config controls chunking behavior. Sizes are in characters.
type Config struct {
	ChunkSize    int // Target chunk size.
	ChunkOverlap int // Overlap carried between consecutive chunks.
	MinChunk     int // Minimum chunk size to emit.
}

// DefaultConfig returns sensible defaults.
func DefaultConfig() Config {
	return Config{
		ChunkSize:    1200,
		ChunkOverlap: 120,
		MinChunk:     40,
	}
}

// ChunkPages splits every page of a document into chunks tagged with the
// source id and the page they came from.
func ChunkPages(source string, pages []parser.Page, cfg Config) []store.Chunk {
	if cfg.ChunkSize <= 0 {
		cfg.ChunkSize = 1200
	}
	if cfg.ChunkOverlap < 0 || cfg.ChunkOverlap >= cfg.ChunkSize {
		cfg.ChunkOverlap = 120
	}
	if cfg.MinChunk <= 0 {
		cfg.MinChunk = 40
	}

	var chunks []store.Chunk
	for _, page := range pages {
		for _, part := range splitText(page.Text, cfg.ChunkSize, cfg.ChunkOverlap) {
			if len(part) < cfg.MinChunk {
				continue
			}
			chunks = append(chunks, store.Chunk{
				Text:   part,
				Source: source,
				Page:   page.Num,
			})
		}
	}
	return chunks
}

// splitText breaks text into chunks of approximately target characters,
// paragraph-first, with overlap carried between consecutive chunks.
func splitText(text string, target, overlap int) []string {
	if len(text) <= target {
		return []string{text}
	}

	var result []string
	var current strings.Builder

	flush := func() {
		if current.Len() == 0 {
			return
		}
		result = append(result, current.String())
		tail := overlapText(current.String(), overlap)
		current.Reset()
		if tail != "" {
			current.WriteString(tail)
		}
	}

	for _, para := range splitByParagraphs(text) {
		// A single oversized paragraph is split by sentences.
		if len(para) > target {
			for _, sent := range splitSentences(para) {
				if current.Len() > 0 && current.Len()+len(sent)+1 > target {
					flush()
				}
				if current.Len() > 0 {
					current.WriteString(" ")
				}
				current.WriteString(sent)
			}
			continue
		}

		if current.Len() > 0 && current.Len()+len(para)+2 > target {
			flush()
		}
		if current.Len() > 0 {
			current.WriteString("\n\n")
		}
		current.WriteString(para)
	}

	if strings.TrimSpace(current.String()) != "" {
		result = append(result, current.String())
	}
	return result
}

// splitByParagraphs splits on double-newlines.
func splitByParagraphs(text string) []string {
	parts := strings.Split(text, "\n\n")
	var result []string
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			result = append(result, p)
		}
	}
	return result
}

// splitSentences does basic sentence splitting.
func splitSentences(text string) []string {
	var sentences []string
	var current strings.Builder

	for i, r := range text {
		current.WriteRune(r)
		if (r == '.' || r == '!' || r == '?') && i+1 < len(text) && text[i+1] == ' ' {
			sentences = append(sentences, strings.TrimSpace(current.String()))
			current.Reset()
		}
	}
	if strings.TrimSpace(current.String()) != "" {
		sentences = append(sentences, strings.TrimSpace(current.String()))
	}
	return sentences
}

// overlapText extracts the last overlap characters, snapped to a word boundary.
func overlapText(text string, overlap int) string {
	if overlap <= 0 || len(text) <= overlap {
		return ""
	}
	tail := text[len(text)-overlap:]
	if idx := strings.IndexAny(tail, " \n"); idx >= 0 {
		tail = tail[idx+1:]
	}
	return strings.TrimSpace(tail)
}
