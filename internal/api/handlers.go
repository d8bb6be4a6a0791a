package api

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"
)

type askRequest struct {
	Query string `json:"query"`
}

type indexRequest struct {
	Dir string `json:"dir,omitempty"`
}

func (s *Server) handleAsk(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, 1<<20)

	var req askRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		jsonError(w, "invalid request body: "+err.Error(), http.StatusBadRequest)
		return
	}
	query := strings.TrimSpace(req.Query)
	if query == "" {
		jsonError(w, "query is required", http.StatusBadRequest)
		return
	}

	answer, err := s.pipeline.Ask(r.Context(), query)
	if err != nil {
		s.log.Error("ask failed", "query", query, "error", err)
		jsonError(w, "answering failed", http.StatusBadGateway)
		return
	}

	writeJSON(w, http.StatusOK, answer)
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, 1<<20)

	var req indexRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		jsonError(w, "invalid request body: "+err.Error(), http.StatusBadRequest)
		return
	}
	dir := req.Dir
	if dir == "" {
		dir = s.docsDir
	}
	if dir == "" {
		jsonError(w, "dir is required", http.StatusBadRequest)
		return
	}

	n, err := s.builder.BuildDir(r.Context(), dir)
	if err != nil {
		s.log.Error("index build failed", "dir", dir, "error", err)
		jsonError(w, "index build failed: "+err.Error(), http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"indexed_chunks": n, "dir": dir})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func jsonError(w http.ResponseWriter, msg string, status int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"error": msg})
}
