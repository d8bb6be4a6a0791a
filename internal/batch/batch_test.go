package batch

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"os"
	"strings"
	"testing"

	"github.com/dgallion1/docqa/internal/qa"
)

// stubAsker answers from a fixed map; unknown queries return the sentinel.
type stubAsker struct {
	answers map[string]qa.Answer
	errs    map[string]error
}

func (s *stubAsker) Ask(_ context.Context, question string) (qa.Answer, error) {
	if err, ok := s.errs[question]; ok {
		return qa.Answer{}, err
	}
	if a, ok := s.answers[question]; ok {
		return a, nil
	}
	return qa.Answer{Query: question, Answer: qa.DefaultSentinel}, nil
}

func (s *stubAsker) Sentinel() string { return qa.DefaultSentinel }

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestQuestion_UnmarshalBothForms(t *testing.T) {
	data := []byte(`["plain question", {"query": "q2", "expected": "e2", "unanswerable": false}]`)
	var qs []Question
	if err := json.Unmarshal(data, &qs); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(qs) != 2 {
		t.Fatalf("expected 2 questions, got %d", len(qs))
	}
	if qs[0].Query != "plain question" || qs[0].Expected != "" {
		t.Errorf("expected bare string form, got %+v", qs[0])
	}
	if qs[1].Query != "q2" || qs[1].Expected != "e2" {
		t.Errorf("expected object form, got %+v", qs[1])
	}
}

func TestRun_ScoresExpectedAnswers(t *testing.T) {
	asker := &stubAsker{answers: map[string]qa.Answer{
		"how long?": {Query: "how long?", Answer: "6 months.", Reference: qa.Reference{DocID: "a.pdf", Page: 2}},
	}}
	r := NewRunner(asker, discardLogger(), 2)

	results := r.Run(context.Background(), []Question{
		{Query: "how long?", Expected: "6 Months"},
		{Query: "unknown thing", Unanswerable: true},
	})

	if len(results) != 2 {
		t.Fatalf("expected 2 results, got %d", len(results))
	}
	if results[0].Correct == nil || !*results[0].Correct {
		t.Errorf("expected normalized match to score correct, got %+v", results[0])
	}
	if results[0].DocID != "a.pdf" || results[0].Page != 2 {
		t.Errorf("expected reference carried into result, got %+v", results[0])
	}
	if results[1].Correct == nil || !*results[1].Correct {
		t.Errorf("expected sentinel on unanswerable to score correct, got %+v", results[1])
	}
}

func TestRun_UnanswerableWithRealAnswerIsWrong(t *testing.T) {
	asker := &stubAsker{answers: map[string]qa.Answer{
		"q": {Query: "q", Answer: "something"},
	}}
	r := NewRunner(asker, discardLogger(), 1)

	results := r.Run(context.Background(), []Question{{Query: "q", Unanswerable: true}})
	if results[0].Correct == nil || *results[0].Correct {
		t.Errorf("expected unanswerable question with real answer scored wrong, got %+v", results[0])
	}
}

func TestRun_UnscoredQuestionHasNoVerdict(t *testing.T) {
	r := NewRunner(&stubAsker{}, discardLogger(), 1)
	results := r.Run(context.Background(), []Question{{Query: "q"}})
	if results[0].Correct != nil {
		t.Errorf("expected no verdict without expectation, got %+v", results[0])
	}
}

func TestRun_ItemErrorDoesNotAbortBatch(t *testing.T) {
	asker := &stubAsker{
		errs: map[string]error{"bad": errors.New("backend down")},
		answers: map[string]qa.Answer{
			"good": {Query: "good", Answer: "fine"},
		},
	}
	r := NewRunner(asker, discardLogger(), 2)

	results := r.Run(context.Background(), []Question{{Query: "bad"}, {Query: "good"}})
	if results[0].Err == "" {
		t.Error("expected error recorded on failing item")
	}
	if results[1].Err != "" || results[1].Answer != "fine" {
		t.Errorf("expected second item unaffected, got %+v", results[1])
	}
}

func TestRun_PreservesInputOrder(t *testing.T) {
	r := NewRunner(&stubAsker{}, discardLogger(), 4)
	questions := make([]Question, 20)
	for i := range questions {
		questions[i] = Question{Query: string(rune('a' + i))}
	}
	results := r.Run(context.Background(), questions)
	for i, res := range results {
		if res.Idx != i || res.Query != questions[i].Query {
			t.Fatalf("result %d out of order: %+v", i, res)
		}
	}
}

func TestSummarize(t *testing.T) {
	yes, no := true, false
	results := []Result{
		{Correct: &yes},
		{Correct: &no},
		{Err: "boom"},
		{},
	}
	sum := Summarize(results)
	if sum.Total != 4 || sum.Scored != 2 || sum.Correct != 1 || sum.Failed != 1 {
		t.Errorf("unexpected summary: %+v", sum)
	}
}

func TestWriteJSON_RoundTrip(t *testing.T) {
	path := t.TempDir() + "/out.json"
	yes := true
	in := []Result{{Idx: 0, Query: "q", Answer: "a", Correct: &yes}}
	if err := WriteJSON(path, in); err != nil {
		t.Fatalf("write: %v", err)
	}

	var out []Result
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read back: %v", err)
	}
	if err := json.Unmarshal(data, &out); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(out) != 1 || out[0].Query != "q" || out[0].Correct == nil {
		t.Errorf("unexpected round trip: %+v", out)
	}
}

func TestLoadQuestions_InvalidJSON(t *testing.T) {
	path := t.TempDir() + "/qs.json"
	if err := os.WriteFile(path, []byte("{not json"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadQuestions(path); err == nil || !strings.Contains(err.Error(), "decode") {
		t.Errorf("expected decode error, got %v", err)
	}
}
