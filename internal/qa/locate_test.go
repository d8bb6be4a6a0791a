package qa

import (
	"testing"

	"github.com/dgallion1/docqa/internal/store"
)

func TestLocate_FirstContainingChunkWins(t *testing.T) {
	chunks := []store.Chunk{
		{Text: "nothing relevant", Source: "a.pdf", Page: 1},
		{Text: "The period is 6 months.", Source: "b.pdf", Page: 4},
		{Text: "also mentions 6 months here", Source: "c.pdf", Page: 9},
	}
	ch, ok := Locate("6 months", chunks)
	if !ok {
		t.Fatal("expected a located chunk")
	}
	if ch.Source != "b.pdf" || ch.Page != 4 {
		t.Errorf("expected first match b.pdf p.4, got %s p.%d", ch.Source, ch.Page)
	}
}

func TestLocate_NormalizedMatch(t *testing.T) {
	chunks := []store.Chunk{
		{Text: "The period is   6 MONTHS.", Source: "a.pdf", Page: 2},
	}
	ch, ok := Locate("6 months.", chunks)
	if !ok || ch.Source != "a.pdf" {
		t.Errorf("expected normalized containment to locate a.pdf, got %+v ok=%v", ch, ok)
	}
}

func TestLocate_FallsBackToTopChunk(t *testing.T) {
	chunks := []store.Chunk{
		{Text: "alpha", Source: "top.pdf", Page: 1},
		{Text: "beta", Source: "other.pdf", Page: 2},
	}
	ch, ok := Locate("gamma", chunks)
	if !ok {
		t.Fatal("expected fallback to succeed with non-empty chunks")
	}
	if ch.Source != "top.pdf" {
		t.Errorf("expected highest-ranked chunk as fallback, got %s", ch.Source)
	}
}

func TestLocate_EmptyChunks(t *testing.T) {
	if _, ok := Locate("anything", nil); ok {
		t.Error("expected no location for empty chunk list")
	}
}
