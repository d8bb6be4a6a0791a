package api

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/dgallion1/docqa/internal/qa"
)

type stubAsker struct {
	answer qa.Answer
	err    error
}

func (s *stubAsker) Ask(context.Context, string) (qa.Answer, error) {
	return s.answer, s.err
}

func (s *stubAsker) Sentinel() string { return qa.DefaultSentinel }

func testServer(asker *stubAsker, apiKey string) *Server {
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewServer(asker, nil, log, apiKey, "")
}

func TestHealth(t *testing.T) {
	srv := testServer(&stubAsker{}, "")
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "ok") {
		t.Errorf("unexpected body %q", rec.Body.String())
	}
}

func TestAsk_ReturnsAnswer(t *testing.T) {
	srv := testServer(&stubAsker{answer: qa.Answer{
		Query:     "how long?",
		Answer:    "6 months.",
		Reference: qa.Reference{DocID: "policy.pdf", Page: 4},
	}}, "")

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/ask", strings.NewReader(`{"query":"how long?"}`))
	srv.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	var got qa.Answer
	if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if got.Answer != "6 months." || got.Reference.DocID != "policy.pdf" {
		t.Errorf("unexpected answer: %+v", got)
	}
}

func TestAsk_EmptyQueryRejected(t *testing.T) {
	srv := testServer(&stubAsker{}, "")
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/ask", strings.NewReader(`{"query":"  "}`))
	srv.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", rec.Code)
	}
}

func TestAsk_InvalidJSONRejected(t *testing.T) {
	srv := testServer(&stubAsker{}, "")
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/ask", strings.NewReader("{nope"))
	srv.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", rec.Code)
	}
}

func TestAuth_MissingAndWrongKey(t *testing.T) {
	srv := testServer(&stubAsker{}, "secret")

	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/ask", strings.NewReader(`{"query":"q"}`)))
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("expected 401 without key, got %d", rec.Code)
	}

	rec = httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/ask", strings.NewReader(`{"query":"q"}`))
	req.Header.Set("Authorization", "Bearer wrong")
	srv.ServeHTTP(rec, req)
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("expected 401 with wrong key, got %d", rec.Code)
	}

	rec = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodPost, "/api/ask", strings.NewReader(`{"query":"q"}`))
	req.Header.Set("Authorization", "Bearer secret")
	srv.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Errorf("expected 200 with correct key, got %d", rec.Code)
	}
}

func TestHealth_BypassesAuth(t *testing.T) {
	srv := testServer(&stubAsker{}, "secret")
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	if rec.Code != http.StatusOK {
		t.Errorf("expected health open without auth, got %d", rec.Code)
	}
}
