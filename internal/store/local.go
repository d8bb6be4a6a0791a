package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"sync"
)

// Local is a file-backed vector store. Chunks and their embeddings live in a
// single JSON file per collection; searches run over an in-memory copy.
//
// Index writes the new collection to a temp file and renames it into place,
// so readers see either the old collection or the new one, never a partial mix.
type Local struct {
	dir        string
	collection string
	embedder   Embedder
	mmrLambda  float32

	mu     sync.RWMutex
	chunks []Chunk
	loaded bool
}

// NewLocal creates a local store rooted at dir for the named collection.
// mmrLambda controls the relevance/diversity blend in diversity mode.
func NewLocal(dir, collection string, embedder Embedder, mmrLambda float32) *Local {
	return &Local{
		dir:        dir,
		collection: collection,
		embedder:   embedder,
		mmrLambda:  mmrLambda,
	}
}

func (s *Local) path() string {
	return filepath.Join(s.dir, s.collection+".json")
}

// Index embeds the chunk texts and replaces the collection contents.
func (s *Local) Index(ctx context.Context, chunks []Chunk) error {
	texts := make([]string, len(chunks))
	for i, ch := range chunks {
		texts[i] = ch.Text
	}

	embeddings, err := s.embedder.EmbedDocuments(ctx, texts)
	if err != nil {
		return fmt.Errorf("embed documents: %w", err)
	}
	if len(embeddings) != len(chunks) {
		return fmt.Errorf("embedder returned %d vectors for %d chunks", len(embeddings), len(chunks))
	}

	indexed := make([]Chunk, len(chunks))
	for i, ch := range chunks {
		ch.Embedding = embeddings[i]
		indexed[i] = ch
	}

	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return fmt.Errorf("create store dir: %w", err)
	}

	data, err := json.Marshal(indexed)
	if err != nil {
		return fmt.Errorf("marshal collection: %w", err)
	}

	// Write-then-swap keeps the old collection queryable until the rename.
	tmp, err := os.CreateTemp(s.dir, s.collection+"-*.tmp")
	if err != nil {
		return fmt.Errorf("create temp collection: %w", err)
	}
	tmpPath := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("write temp collection: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("close temp collection: %w", err)
	}
	if err := os.Rename(tmpPath, s.path()); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("swap collection: %w", err)
	}

	s.mu.Lock()
	s.chunks = indexed
	s.loaded = true
	s.mu.Unlock()

	return nil
}

// load reads the collection file into memory. A missing file leaves the
// store empty.
func (s *Local) load() error {
	s.mu.RLock()
	if s.loaded {
		s.mu.RUnlock()
		return nil
	}
	s.mu.RUnlock()

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.loaded {
		return nil
	}

	data, err := os.ReadFile(s.path())
	if errors.Is(err, fs.ErrNotExist) {
		s.chunks = nil
		s.loaded = true
		return nil
	}
	if err != nil {
		return fmt.Errorf("read collection: %w", err)
	}

	var chunks []Chunk
	if err := json.Unmarshal(data, &chunks); err != nil {
		return fmt.Errorf("decode collection: %w", err)
	}
	s.chunks = chunks
	s.loaded = true
	return nil
}

// Search scores every chunk against the query embedding and returns up to k
// results in the requested mode.
func (s *Local) Search(ctx context.Context, query string, k int, mode SearchMode) ([]ScoredChunk, error) {
	if err := s.load(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	chunks := s.chunks
	s.mu.RUnlock()

	if len(chunks) == 0 || k <= 0 {
		return nil, nil
	}

	qvec, err := s.embedder.EmbedQuery(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}

	scored := make([]ScoredChunk, 0, len(chunks))
	for _, ch := range chunks {
		scored = append(scored, ScoredChunk{Chunk: ch, Score: cosine(qvec, ch.Embedding)})
	}
	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].Score > scored[j].Score
	})

	if mode == ModeDiversity {
		fetch := fetchK(k)
		if fetch < len(scored) {
			scored = scored[:fetch]
		}
		return maximalMarginalRelevance(scored, k, s.mmrLambda), nil
	}

	if k > len(scored) {
		k = len(scored)
	}
	return scored[:k], nil
}

// fetchK is the candidate pool size for diversity selection.
func fetchK(k int) int {
	n := k * 4
	if n < 20 {
		n = 20
	}
	return n
}
