// Package embed adapts a raw embedding backend to the E5 encoding convention:
// documents and queries get distinct prefixes but stay comparable, and all
// vectors are normalized to unit length so inner product equals cosine.
package embed

import (
	"context"
	"math"
)

// Backend produces raw embedding vectors for a batch of texts.
type Backend interface {
	Embed(ctx context.Context, texts []string) ([][]float32, error)
}

// E5 wraps a backend with E5-style asymmetric prefixes.
type E5 struct {
	backend Backend
}

// NewE5 returns an E5 provider over the given backend.
func NewE5(backend Backend) *E5 {
	return &E5{backend: backend}
}

// EmbedDocuments embeds passage-prefixed texts.
func (e *E5) EmbedDocuments(ctx context.Context, texts []string) ([][]float32, error) {
	prefixed := make([]string, len(texts))
	for i, t := range texts {
		prefixed[i] = "passage: " + t
	}
	vecs, err := e.backend.Embed(ctx, prefixed)
	if err != nil {
		return nil, err
	}
	for _, v := range vecs {
		normalize(v)
	}
	return vecs, nil
}

// EmbedQuery embeds a query-prefixed text.
func (e *E5) EmbedQuery(ctx context.Context, text string) ([]float32, error) {
	vecs, err := e.backend.Embed(ctx, []string{"query: " + text})
	if err != nil {
		return nil, err
	}
	if len(vecs) == 0 {
		return nil, nil
	}
	normalize(vecs[0])
	return vecs[0], nil
}

func normalize(v []float32) {
	var sum float64
	for _, x := range v {
		sum += float64(x) * float64(x)
	}
	if sum == 0 {
		return
	}
	norm := float32(math.Sqrt(sum))
	for i := range v {
		v[i] /= norm
	}
}
