// Package api exposes the question answering pipeline over HTTP.
package api

import (
	"log/slog"
	"net/http"

	"github.com/dgallion1/docqa/internal/batch"
	"github.com/dgallion1/docqa/internal/ingest"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// Server is the HTTP API server for docqa.
type Server struct {
	router   chi.Router
	pipeline batch.Asker
	builder  *ingest.Builder
	log      *slog.Logger
	apiKey   string
	docsDir  string
}

// NewServer creates and configures the HTTP server. An empty apiKey leaves
// the mutating endpoints unauthenticated; docsDir is the default source for
// index rebuilds.
func NewServer(pipeline batch.Asker, builder *ingest.Builder, log *slog.Logger, apiKey, docsDir string) *Server {
	s := &Server{
		pipeline: pipeline,
		builder:  builder,
		log:      log,
		apiKey:   apiKey,
		docsDir:  docsDir,
	}
	s.setupRoutes()
	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) setupRoutes() {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(RequestLogger(s.log))

	// Public endpoints.
	r.Get("/health", s.handleHealth)

	r.Group(func(r chi.Router) {
		if s.apiKey != "" {
			r.Use(AuthMiddleware(s.apiKey, s.log))
		}

		r.Post("/api/ask", s.handleAsk)
		r.Post("/api/index", s.handleIndex)
	})

	s.router = r
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.Write([]byte(`{"status":"ok"}`))
}
