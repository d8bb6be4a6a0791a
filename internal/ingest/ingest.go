// Package ingest builds the chunk index from a directory of documents.
package ingest

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"

	"github.com/dgallion1/docqa/internal/chunker"
	"github.com/dgallion1/docqa/internal/parser"
	"github.com/dgallion1/docqa/internal/store"
)

// Builder parses, chunks and indexes documents.
type Builder struct {
	store    store.Store
	log      *slog.Logger
	chunkCfg chunker.Config
}

// NewBuilder creates a builder writing to the given store.
func NewBuilder(s store.Store, log *slog.Logger, chunkCfg chunker.Config) *Builder {
	return &Builder{store: s, log: log, chunkCfg: chunkCfg}
}

// BuildDir parses every supported document under dir, chunks the pages and
// replaces the store's collection with the result. Unparseable files are
// logged and skipped; the build fails only when nothing at all was indexed.
func (b *Builder) BuildDir(ctx context.Context, dir string) (int, error) {
	paths, err := parser.IterDocs(dir)
	if err != nil {
		return 0, fmt.Errorf("scan %s: %w", dir, err)
	}
	if len(paths) == 0 {
		return 0, fmt.Errorf("no supported documents under %s", dir)
	}

	var chunks []store.Chunk
	for _, path := range paths {
		pages, err := parser.ReadPages(path)
		if err != nil {
			b.log.Warn("skipping document", "path", path, "error", err)
			continue
		}
		name := filepath.Base(path)
		docChunks := chunker.ChunkPages(name, pages, b.chunkCfg)
		b.log.Info("chunked document", "doc", name, "pages", len(pages), "chunks", len(docChunks))
		chunks = append(chunks, docChunks...)
	}

	if len(chunks) == 0 {
		return 0, fmt.Errorf("no extractable content under %s", dir)
	}

	if err := b.store.Index(ctx, chunks); err != nil {
		return 0, fmt.Errorf("index: %w", err)
	}
	b.log.Info("index built", "chunks", len(chunks))
	return len(chunks), nil
}
