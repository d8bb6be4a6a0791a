package qa

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/dgallion1/docqa/internal/prompt"
	"github.com/dgallion1/docqa/internal/store"
)

// answerRe matches the <<<...>>> wrapper the extraction prompt asks for.
var answerRe = regexp.MustCompile(`(?s)^<<<(.*?)>>>$`)

// Extractor turns a question plus context into a verbatim answer candidate
// or the sentinel.
type Extractor struct {
	llm      Generator
	prompts  *prompt.Registry
	sentinel string
}

// NewExtractor creates an extractor using the given generator and prompts.
func NewExtractor(llm Generator, prompts *prompt.Registry, sentinel string) *Extractor {
	if sentinel == "" {
		sentinel = DefaultSentinel
	}
	return &Extractor{llm: llm, prompts: prompts, sentinel: sentinel}
}

// Extract runs one extraction pass over the context. A candidate that is not
// a verbatim substring of the context is discarded and reported as sentinel.
func (e *Extractor) Extract(ctx context.Context, question, contextText string) (Candidate, error) {
	p, err := e.prompts.Get(prompt.RoleExtract)
	if err != nil {
		return Candidate{}, err
	}
	user := p.Render(map[string]string{
		"question": question,
		"context":  contextText,
		"sentinel": e.sentinel,
	})

	raw, err := e.llm.Generate(ctx, p.System, user)
	if err != nil {
		return Candidate{}, fmt.Errorf("extract: %w", err)
	}

	cand := e.parseCandidate(raw)
	if cand.IsSentinel {
		return cand, nil
	}
	if !containsNormalized(contextText, cand.Text) {
		// The model produced text that is not in the context. Discard.
		return Candidate{IsSentinel: true}, nil
	}
	return cand, nil
}

// ExtractShortest scans each chunk independently and keeps the shortest
// candidate that is verbatim in its own chunk. Shorter answers are more
// extractive; longer ones tend to carry explanatory padding.
func (e *Extractor) ExtractShortest(ctx context.Context, question string, chunks []store.Chunk) (Candidate, error) {
	best := Candidate{IsSentinel: true}
	bestLen := -1

	for _, ch := range chunks {
		cand, err := e.Extract(ctx, question, ch.Text)
		if err != nil {
			return Candidate{}, err
		}
		if cand.IsSentinel {
			continue
		}
		if bestLen < 0 || len(cand.Text) < bestLen {
			best = cand
			bestLen = len(cand.Text)
		}
	}
	return best, nil
}

// parseCandidate interprets raw model output: the sentinel literal, a
// delimiter-wrapped span, or (when the wrapper is absent) the trimmed text
// itself. Multi-line output is collapsed to a single line first.
func (e *Extractor) parseCandidate(raw string) Candidate {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" || e.isSentinel(trimmed) {
		return Candidate{IsSentinel: true}
	}

	if m := answerRe.FindStringSubmatch(trimmed); m != nil {
		return e.candidateFrom(m[1])
	}
	// Tolerate wrappers broken across lines.
	oneLine := CollapseSpace(trimmed)
	if m := answerRe.FindStringSubmatch(oneLine); m != nil {
		return e.candidateFrom(m[1])
	}
	// Malformed wrapping: accept the raw text rather than rejecting.
	return e.candidateFrom(oneLine)
}

func (e *Extractor) candidateFrom(text string) Candidate {
	text = CollapseSpace(text)
	if text == "" || e.isSentinel(text) {
		return Candidate{IsSentinel: true}
	}
	return Candidate{Text: text}
}

func (e *Extractor) isSentinel(s string) bool {
	return strings.EqualFold(strings.TrimSpace(s), e.sentinel)
}
