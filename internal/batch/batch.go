// Package batch runs a question set through the pipeline and scores the
// results against expected answers.
package batch

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"sync"

	"github.com/dgallion1/docqa/internal/qa"
)

// Question is one batch item. A plain JSON string is also accepted and
// decodes to a Question with only Query set.
type Question struct {
	Query        string `json:"query"`
	Expected     string `json:"expected,omitempty"`
	Unanswerable bool   `json:"unanswerable,omitempty"`
}

// UnmarshalJSON accepts either "question text" or a full object.
func (q *Question) UnmarshalJSON(data []byte) error {
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*q = Question{Query: s}
		return nil
	}
	type plain Question
	var p plain
	if err := json.Unmarshal(data, &p); err != nil {
		return err
	}
	*q = Question(p)
	return nil
}

// Result is the outcome of one batch item.
type Result struct {
	Idx      int    `json:"idx"`
	Query    string `json:"query"`
	Expected string `json:"expected,omitempty"`
	Answer   string `json:"answer"`
	DocID    string `json:"doc_id,omitempty"`
	Page     int    `json:"page,omitempty"`
	Correct  *bool  `json:"correct,omitempty"`
	Err      string `json:"error,omitempty"`
}

// Asker is the pipeline capability the runner needs.
type Asker interface {
	Ask(ctx context.Context, question string) (qa.Answer, error)
	Sentinel() string
}

// Runner answers batch questions with bounded concurrency.
type Runner struct {
	pipeline Asker
	log      *slog.Logger
	workers  int
}

// NewRunner creates a runner with the given parallelism (minimum 1).
func NewRunner(p Asker, log *slog.Logger, workers int) *Runner {
	if workers < 1 {
		workers = 1
	}
	return &Runner{pipeline: p, log: log, workers: workers}
}

// LoadQuestions reads a JSON array of questions from path.
func LoadQuestions(path string) ([]Question, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read questions: %w", err)
	}
	var qs []Question
	if err := json.Unmarshal(data, &qs); err != nil {
		return nil, fmt.Errorf("decode questions: %w", err)
	}
	return qs, nil
}

// Run answers every question and returns results in input order. A failing
// item records its error and the run continues; only context cancellation
// aborts the whole batch.
func (r *Runner) Run(ctx context.Context, questions []Question) []Result {
	results := make([]Result, len(questions))
	sem := make(chan struct{}, r.workers)
	var wg sync.WaitGroup

	for i, q := range questions {
		if ctx.Err() != nil {
			results[i] = Result{Idx: i, Query: q.Query, Err: ctx.Err().Error()}
			continue
		}
		sem <- struct{}{}
		wg.Add(1)
		go func(i int, q Question) {
			defer wg.Done()
			defer func() { <-sem }()
			results[i] = r.runOne(ctx, i, q)
		}(i, q)
	}
	wg.Wait()
	return results
}

func (r *Runner) runOne(ctx context.Context, idx int, q Question) Result {
	res := Result{Idx: idx, Query: q.Query, Expected: q.Expected}

	ans, err := r.pipeline.Ask(ctx, q.Query)
	if err != nil {
		r.log.Error("question failed", "idx", idx, "query", q.Query, "error", err)
		res.Err = err.Error()
		return res
	}

	res.Answer = ans.Answer
	res.DocID = ans.Reference.DocID
	res.Page = ans.Reference.Page
	if q.Expected != "" || q.Unanswerable {
		correct := r.isCorrect(q, ans.Answer)
		res.Correct = &correct
	}
	return res
}

// isCorrect scores one answer. An unanswerable question is correct exactly
// when the pipeline returned the sentinel; otherwise the normalized answer
// must equal the normalized expectation.
func (r *Runner) isCorrect(q Question, answer string) bool {
	if q.Unanswerable {
		return answer == r.pipeline.Sentinel()
	}
	return qa.NormalizeForCompare(answer) == qa.NormalizeForCompare(q.Expected)
}
