package qa

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/dgallion1/docqa/internal/store"
)

// stubSearcher serves a fixed result set and records requested modes.
type stubSearcher struct {
	results []store.ScoredChunk
	err     error
	modes   []store.SearchMode
}

func (s *stubSearcher) Search(_ context.Context, _ string, k int, mode store.SearchMode) ([]store.ScoredChunk, error) {
	s.modes = append(s.modes, mode)
	if s.err != nil {
		return nil, s.err
	}
	if k > len(s.results) {
		k = len(s.results)
	}
	return s.results[:k], nil
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// qaLLM routes by role: extraction calls get the extraction reply, judgment
// calls get the verdict.
func qaLLM(extractReply, verifyReply string) *stubLLM {
	return &stubLLM{reply: func(system, _ string) (string, error) {
		if system == "verify system" {
			return verifyReply, nil
		}
		return extractReply, nil
	}}
}

func newTestPipeline(t *testing.T, s Searcher, llm Generator, cfg Config) *Pipeline {
	t.Helper()
	reg := testRegistry(t)
	return NewPipeline(s, NewExtractor(llm, reg, cfg.Sentinel), NewVerifier(llm, reg), discardLogger(), cfg)
}

func retentionChunks() []store.ScoredChunk {
	return []store.ScoredChunk{
		{Chunk: store.Chunk{Text: "Records are kept for 6 months. After that they are purged.", Source: "policy.pdf", Page: 4}, Score: 0.82},
		{Chunk: store.Chunk{Text: "Unrelated appendix text.", Source: "policy.pdf", Page: 9}, Score: 0.31},
	}
}

func TestPipeline_AnswersWithReference(t *testing.T) {
	search := &stubSearcher{results: retentionChunks()}
	p := newTestPipeline(t, search, qaLLM("<<<6 months.>>>", "YES"), Config{MinRelevance: 0.08})

	ans, err := p.Ask(context.Background(), "How long are records kept?")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ans.Answer != "6 months." {
		t.Errorf("expected answer %q, got %q", "6 months.", ans.Answer)
	}
	if ans.Reference.DocID != "policy.pdf" || ans.Reference.Page != 4 {
		t.Errorf("expected reference policy.pdf p.4, got %s p.%d", ans.Reference.DocID, ans.Reference.Page)
	}
}

func TestPipeline_Idempotent(t *testing.T) {
	search := &stubSearcher{results: retentionChunks()}
	p := newTestPipeline(t, search, qaLLM("<<<6 months.>>>", "YES"), Config{MinRelevance: 0.08})

	first, err := p.Ask(context.Background(), "How long are records kept?")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	second, err := p.Ask(context.Background(), "How long are records kept?")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if first != second {
		t.Errorf("expected identical answers, got %+v then %+v", first, second)
	}
}

func TestPipeline_EmptyCorpusReturnsSentinel(t *testing.T) {
	p := newTestPipeline(t, &stubSearcher{}, qaLLM("ignored", "ignored"), Config{})

	ans, err := p.Ask(context.Background(), "anything?")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ans.Answer != DefaultSentinel {
		t.Errorf("expected sentinel, got %q", ans.Answer)
	}
	if ans.Reference != (Reference{}) {
		t.Errorf("expected empty reference, got %+v", ans.Reference)
	}
}

func TestPipeline_GateRejectionReturnsSentinel(t *testing.T) {
	search := &stubSearcher{results: []store.ScoredChunk{
		{Chunk: store.Chunk{Text: "x", Source: "a", Page: 1}, Score: 0.01},
	}}
	p := newTestPipeline(t, search, qaLLM("<<<x>>>", "YES"), Config{MinRelevance: 0.08})

	ans, err := p.Ask(context.Background(), "q")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ans.Answer != DefaultSentinel {
		t.Errorf("expected sentinel for gated-out query, got %q", ans.Answer)
	}
}

func TestPipeline_UnverifiedReturnsSentinel(t *testing.T) {
	search := &stubSearcher{results: []store.ScoredChunk{
		{Chunk: store.Chunk{Text: "The sky is blue.", Source: "a", Page: 1}, Score: 0.9},
	}}
	// Extraction yields a span that is not in the context; the containment
	// check inside Extract already discards it, collapsing to sentinel.
	p := newTestPipeline(t, search, qaLLM("<<<the grass is green>>>", "NO"), Config{MinRelevance: 0.08})

	ans, err := p.Ask(context.Background(), "q")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ans.Answer != DefaultSentinel {
		t.Errorf("expected sentinel, got %q", ans.Answer)
	}
}

func TestPipeline_SearchErrorPropagates(t *testing.T) {
	wantErr := errors.New("store offline")
	p := newTestPipeline(t, &stubSearcher{err: wantErr}, qaLLM("x", "x"), Config{})

	if _, err := p.Ask(context.Background(), "q"); !errors.Is(err, wantErr) {
		t.Errorf("expected propagated store error, got %v", err)
	}
}

func TestPipeline_MMRRequestsDiversitySearch(t *testing.T) {
	search := &stubSearcher{results: retentionChunks()}
	p := newTestPipeline(t, search, qaLLM("<<<6 months.>>>", "YES"), Config{MinRelevance: 0.08, MMR: true})

	if _, err := p.Ask(context.Background(), "q"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(search.modes) != 2 {
		t.Fatalf("expected 2 searches (gate + diversity), got %d", len(search.modes))
	}
	if search.modes[0] != store.ModeSimilarity || search.modes[1] != store.ModeDiversity {
		t.Errorf("expected similarity then diversity, got %v", search.modes)
	}
}

func TestPipeline_ScanModeAnswers(t *testing.T) {
	search := &stubSearcher{results: retentionChunks()}
	llm := &stubLLM{reply: func(system, user string) (string, error) {
		if system == "verify system" {
			return "YES", nil
		}
		if containsNormalized(user, "6 months") {
			return "<<<6 months>>>", nil
		}
		return "NOT_STATED", nil
	}}
	p := newTestPipeline(t, search, llm, Config{MinRelevance: 0.08, Mode: ModeScan})

	ans, err := p.Ask(context.Background(), "How long are records kept?")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ans.Answer != "6 months" {
		t.Errorf("expected %q, got %q", "6 months", ans.Answer)
	}
}
