package qa

import (
	"context"
	"fmt"
	"strings"

	"github.com/dgallion1/docqa/internal/prompt"
)

// Verifier independently checks whether the context supports a candidate
// answer. The model verdict is backed by a normalized-substring check:
// generation-based verdicts are themselves unreliable, so a candidate that
// is literally present in the context passes even on a negative verdict.
type Verifier struct {
	llm     Generator
	prompts *prompt.Registry
}

// NewVerifier creates a verifier using the given generator and prompts.
func NewVerifier(llm Generator, prompts *prompt.Registry) *Verifier {
	return &Verifier{llm: llm, prompts: prompts}
}

// Verify returns true when the judgment pass answers yes, or when the
// normalized candidate is a substring of the normalized context. It fails
// only when both checks fail.
func (v *Verifier) Verify(ctx context.Context, question, candidate, contextText string) (bool, error) {
	p, err := v.prompts.Get(prompt.RoleVerify)
	if err != nil {
		return false, err
	}
	user := p.Render(map[string]string{
		"question": question,
		"answer":   candidate,
		"context":  contextText,
	})

	verdict, err := v.llm.Generate(ctx, p.System, user)
	if err != nil {
		return false, fmt.Errorf("verify: %w", err)
	}

	if strings.HasPrefix(strings.ToUpper(strings.TrimSpace(verdict)), "YES") {
		return true, nil
	}
	return containsNormalized(contextText, candidate), nil
}
