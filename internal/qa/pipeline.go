package qa

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/dgallion1/docqa/internal/store"
)

// ExtractMode selects how candidates are produced from the retrieved set.
type ExtractMode string

const (
	// ModeContext extracts once from the combined bounded context.
	ModeContext ExtractMode = "context"
	// ModeScan extracts independently per chunk and prefers the shortest
	// verbatim candidate.
	ModeScan ExtractMode = "scan"
)

// Config holds the pipeline's decision thresholds and retrieval settings.
type Config struct {
	TopK            int
	MinRelevance    float32
	MinGap          float32
	MMR             bool
	MaxContextChars int
	Sentinel        string
	Mode            ExtractMode
}

// Searcher is the retrieval capability the pipeline needs from a store.
type Searcher interface {
	Search(ctx context.Context, query string, k int, mode store.SearchMode) ([]store.ScoredChunk, error)
}

// Pipeline sequences gate, retrieve, extract, verify and locate for one
// question, and owns the decision to return an answer or the sentinel.
// It is safe to call Ask concurrently against an immutable index: every
// stage is a pure read over shared state.
type Pipeline struct {
	store     Searcher
	extractor *Extractor
	verifier  *Verifier
	log       *slog.Logger
	cfg       Config
}

// NewPipeline wires the decision core together.
func NewPipeline(s Searcher, extractor *Extractor, verifier *Verifier, log *slog.Logger, cfg Config) *Pipeline {
	if cfg.TopK <= 0 {
		cfg.TopK = 5
	}
	if cfg.MaxContextChars <= 0 {
		cfg.MaxContextChars = 6000
	}
	if cfg.Sentinel == "" {
		cfg.Sentinel = DefaultSentinel
	}
	if cfg.Mode == "" {
		cfg.Mode = ModeContext
	}
	return &Pipeline{store: s, extractor: extractor, verifier: verifier, log: log, cfg: cfg}
}

// Ask answers one question. Soft outcomes (nothing retrievable, gate
// rejection, no candidate, failed verification) all return the sentinel;
// the caller cannot tell them apart. Backend failures propagate as errors;
// they signal infrastructure trouble, not unanswerability.
func (p *Pipeline) Ask(ctx context.Context, question string) (Answer, error) {
	log := p.log.With("query", question)

	// Initial similarity pass supplies the gating scores.
	initial, err := p.store.Search(ctx, question, p.cfg.TopK, store.ModeSimilarity)
	if err != nil {
		return Answer{}, fmt.Errorf("retrieve: %w", err)
	}
	if len(initial) == 0 {
		log.Info("no answer", "reason", OutcomeNotRetrievable)
		return p.sentinelAnswer(question), nil
	}

	scores := make([]float32, len(initial))
	for i, sc := range initial {
		scores[i] = sc.Score
	}
	if !Admit(scores, p.cfg.MinRelevance, p.cfg.MinGap) {
		log.Info("no answer", "reason", OutcomeLowConfidence, "top1", scores[0])
		return p.sentinelAnswer(question), nil
	}

	// Working document set: diversity-aware when configured, otherwise the
	// similarity results from the gating pass are reused as-is.
	docs := initial
	if p.cfg.MMR {
		docs, err = p.store.Search(ctx, question, p.cfg.TopK, store.ModeDiversity)
		if err != nil {
			return Answer{}, fmt.Errorf("retrieve diversified: %w", err)
		}
	}
	chunks := make([]store.Chunk, len(docs))
	for i, sc := range docs {
		chunks[i] = sc.Chunk
	}
	contextText := BuildContext(chunks, p.cfg.MaxContextChars)

	var cand Candidate
	switch p.cfg.Mode {
	case ModeScan:
		cand, err = p.extractor.ExtractShortest(ctx, question, chunks)
	default:
		cand, err = p.extractor.Extract(ctx, question, contextText)
	}
	if err != nil {
		return Answer{}, err
	}
	if cand.IsSentinel {
		log.Info("no answer", "reason", OutcomeNoCandidate)
		return p.sentinelAnswer(question), nil
	}

	ok, err := p.verifier.Verify(ctx, question, cand.Text, contextText)
	if err != nil {
		return Answer{}, err
	}
	if !ok {
		log.Info("no answer", "reason", OutcomeUnverified, "candidate", cand.Text)
		return p.sentinelAnswer(question), nil
	}

	chunk, _ := Locate(cand.Text, chunks)
	log.Info("answered", "reason", OutcomeAnswered, "source", chunk.Source, "page", chunk.Page)
	return Answer{
		Query:  question,
		Answer: CollapseSpace(cand.Text),
		Reference: Reference{
			DocID: chunk.Source,
			Page:  chunk.Page,
		},
	}, nil
}

func (p *Pipeline) sentinelAnswer(question string) Answer {
	return Answer{Query: question, Answer: p.cfg.Sentinel}
}

// Sentinel returns the configured sentinel string.
func (p *Pipeline) Sentinel() string {
	return p.cfg.Sentinel
}
