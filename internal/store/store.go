// Package store holds indexed document chunks and serves vector retrieval
// over them, in similarity or diversity (MMR) mode.
package store

import "context"

// Chunk is an indexed piece of a document. Immutable once indexed.
type Chunk struct {
	Text      string    `json:"text"`
	Source    string    `json:"source"`
	Page      int       `json:"page"` // 1-based
	Embedding []float32 `json:"embedding,omitempty"`
}

// ScoredChunk is a chunk with its relevance score for one query.
type ScoredChunk struct {
	Chunk
	Score float32 `json:"score"`
}

// SearchMode selects the retrieval strategy.
type SearchMode string

const (
	// ModeSimilarity ranks strictly by descending query similarity.
	ModeSimilarity SearchMode = "similarity"
	// ModeDiversity applies maximal-marginal-relevance selection, trading
	// score-optimality for topical spread.
	ModeDiversity SearchMode = "diversity"
)

// Embedder produces comparable vectors for documents and queries.
type Embedder interface {
	EmbedDocuments(ctx context.Context, texts []string) ([][]float32, error)
	EmbedQuery(ctx context.Context, text string) ([]float32, error)
}

// Store indexes chunks under a collection name and retrieves them per query.
// Re-indexing a collection replaces its contents; the old contents stay
// queryable until the replacement is complete.
type Store interface {
	// Index embeds and persists the chunks, replacing the collection.
	Index(ctx context.Context, chunks []Chunk) error
	// Search returns up to k chunks for the query. An empty or unbuilt
	// collection yields an empty result, not an error.
	Search(ctx context.Context, query string, k int, mode SearchMode) ([]ScoredChunk, error)
}
