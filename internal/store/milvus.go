package store

import (
	"context"
	"fmt"

	"github.com/milvus-io/milvus/client/v2/column"
	"github.com/milvus-io/milvus/client/v2/entity"
	"github.com/milvus-io/milvus/client/v2/index"
	"github.com/milvus-io/milvus/client/v2/milvusclient"
)

// Milvus is a vector store backed by a Milvus collection. Scores use the
// COSINE metric, so similarity results land on the same scale as the local
// backend.
type Milvus struct {
	client     *milvusclient.Client
	collection string
	embedder   Embedder
	dim        int
	mmrLambda  float32
}

// MilvusConfig carries connection and collection settings.
type MilvusConfig struct {
	Address    string
	Username   string
	Password   string
	Database   string
	Collection string
	Dim        int
	MMRLambda  float32
}

// NewMilvus connects to Milvus and returns a store for the configured collection.
func NewMilvus(ctx context.Context, cfg MilvusConfig, embedder Embedder) (*Milvus, error) {
	c, err := milvusclient.New(ctx, &milvusclient.ClientConfig{
		Address:  cfg.Address,
		Username: cfg.Username,
		Password: cfg.Password,
		DBName:   cfg.Database,
	})
	if err != nil {
		return nil, fmt.Errorf("connect to milvus: %w", err)
	}
	return &Milvus{
		client:     c,
		collection: cfg.Collection,
		embedder:   embedder,
		dim:        cfg.Dim,
		mmrLambda:  cfg.MMRLambda,
	}, nil
}

// Close releases the Milvus connection.
func (s *Milvus) Close(ctx context.Context) error {
	return s.client.Close(ctx)
}

// Index replaces the collection contents: the existing collection is dropped
// after the embeddings are computed, then recreated and filled.
func (s *Milvus) Index(ctx context.Context, chunks []Chunk) error {
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

	exists, err := s.client.HasCollection(ctx, milvusclient.NewHasCollectionOption(s.collection))
	if err != nil {
		return fmt.Errorf("check collection: %w", err)
	}
	if exists {
		if err := s.client.DropCollection(ctx, milvusclient.NewDropCollectionOption(s.collection)); err != nil {
			return fmt.Errorf("drop collection: %w", err)
		}
	}
	if err := s.createCollection(ctx); err != nil {
		return err
	}

	sources := make([]string, len(chunks))
	pages := make([]int64, len(chunks))
	for i, ch := range chunks {
		sources[i] = ch.Source
		pages[i] = int64(ch.Page)
	}

	cols := []column.Column{
		column.NewColumnFloatVector("embedding", s.dim, embeddings),
		column.NewColumnVarChar("text", texts),
		column.NewColumnVarChar("source", sources),
		column.NewColumnInt64("page", pages),
	}
	if _, err := s.client.Insert(ctx, milvusclient.NewColumnBasedInsertOption(s.collection, cols...)); err != nil {
		return fmt.Errorf("insert chunks: %w", err)
	}

	flushTask, err := s.client.Flush(ctx, milvusclient.NewFlushOption(s.collection))
	if err != nil {
		return fmt.Errorf("flush collection: %w", err)
	}
	if err := flushTask.Await(ctx); err != nil {
		return fmt.Errorf("await flush: %w", err)
	}
	return nil
}

func (s *Milvus) createCollection(ctx context.Context) error {
	schema := entity.NewSchema().
		WithName(s.collection).
		WithDescription("document chunks for extractive QA").
		WithAutoID(true)
	schema.WithField(entity.NewField().
		WithName("id").
		WithDataType(entity.FieldTypeInt64).
		WithIsPrimaryKey(true).
		WithIsAutoID(true))
	schema.WithField(entity.NewField().
		WithName("embedding").
		WithDataType(entity.FieldTypeFloatVector).
		WithDim(int64(s.dim)))
	schema.WithField(entity.NewField().
		WithName("text").
		WithDataType(entity.FieldTypeVarChar).
		WithMaxLength(65535))
	schema.WithField(entity.NewField().
		WithName("source").
		WithDataType(entity.FieldTypeVarChar).
		WithMaxLength(255))
	schema.WithField(entity.NewField().
		WithName("page").
		WithDataType(entity.FieldTypeInt64))

	if err := s.client.CreateCollection(ctx, milvusclient.NewCreateCollectionOption(s.collection, schema)); err != nil {
		return fmt.Errorf("create collection: %w", err)
	}

	idx := index.NewIvfFlatIndex(entity.COSINE, 128)
	idxTask, err := s.client.CreateIndex(ctx, milvusclient.NewCreateIndexOption(s.collection, "embedding", idx))
	if err != nil {
		return fmt.Errorf("create index: %w", err)
	}
	if err := idxTask.Await(ctx); err != nil {
		return fmt.Errorf("await index: %w", err)
	}

	loadTask, err := s.client.LoadCollection(ctx, milvusclient.NewLoadCollectionOption(s.collection))
	if err != nil {
		return fmt.Errorf("load collection: %w", err)
	}
	if err := loadTask.Await(ctx); err != nil {
		return fmt.Errorf("await load: %w", err)
	}
	return nil
}

// Search retrieves up to k chunks. Diversity mode over-fetches and runs MMR
// client-side using the stored embeddings.
func (s *Milvus) Search(ctx context.Context, query string, k int, mode SearchMode) ([]ScoredChunk, error) {
	exists, err := s.client.HasCollection(ctx, milvusclient.NewHasCollectionOption(s.collection))
	if err != nil {
		return nil, fmt.Errorf("check collection: %w", err)
	}
	if !exists || k <= 0 {
		return nil, nil
	}

	qvec, err := s.embedder.EmbedQuery(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}

	limit := k
	fields := []string{"text", "source", "page"}
	if mode == ModeDiversity {
		limit = fetchK(k)
		fields = append(fields, "embedding")
	}

	results, err := s.client.Search(ctx, milvusclient.NewSearchOption(
		s.collection,
		limit,
		[]entity.Vector{entity.FloatVector(qvec)},
	).WithANNSField("embedding").
		WithSearchParam("nprobe", "16").
		WithOutputFields(fields...))
	if err != nil {
		return nil, fmt.Errorf("search: %w", err)
	}
	if len(results) == 0 {
		return nil, nil
	}

	res := results[0]
	scored := make([]ScoredChunk, 0, res.ResultCount)
	for i := 0; i < res.ResultCount; i++ {
		sc := ScoredChunk{Score: res.Scores[i]}
		for _, field := range res.Fields {
			switch col := field.(type) {
			case *column.ColumnVarChar:
				switch col.Name() {
				case "text":
					sc.Chunk.Text = col.Data()[i]
				case "source":
					sc.Chunk.Source = col.Data()[i]
				}
			case *column.ColumnInt64:
				if col.Name() == "page" {
					sc.Chunk.Page = int(col.Data()[i])
				}
			case *column.ColumnFloatVector:
				if col.Name() == "embedding" {
					sc.Chunk.Embedding = col.Data()[i]
				}
			}
		}
		scored = append(scored, sc)
	}

	if mode == ModeDiversity {
		return maximalMarginalRelevance(scored, k, s.mmrLambda), nil
	}
	return scored, nil
}
