// Package qa implements the question answering decision core: the relevance
// gate, verbatim span extraction, support verification, evidence location,
// and the pipeline that sequences them.
package qa

import "context"

// DefaultSentinel is the reserved "no answer" string. It is the only
// representation of "no answer", never an empty string.
const DefaultSentinel = "NOT_STATED"

// Reference points at the chunk a non-sentinel answer was found in.
// It is zero-valued when the answer is the sentinel.
type Reference struct {
	DocID string `json:"doc_id"`
	Page  int    `json:"page"`
}

// Answer is the final result for one question.
type Answer struct {
	Query     string    `json:"query"`
	Answer    string    `json:"answer"`
	Reference Reference `json:"reference"`
}

// Candidate is the extractor's output before verification.
type Candidate struct {
	Text       string
	IsSentinel bool
}

// Generator produces text from a system+user prompt pair. Implementations
// must be deterministic (no sampling) for reproducible extraction.
type Generator interface {
	Generate(ctx context.Context, system, user string) (string, error)
}

// Outcome names why a query resolved the way it did. Soft outcomes all
// surface the sentinel to the caller; the distinction exists for logging.
type Outcome string

const (
	OutcomeAnswered       Outcome = "answered"
	OutcomeNotRetrievable Outcome = "not_retrievable"
	OutcomeLowConfidence  Outcome = "low_confidence"
	OutcomeNoCandidate    Outcome = "no_candidate"
	OutcomeUnverified     Outcome = "unverified"
)
