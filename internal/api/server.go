// Package api serves outlines over HTTP.
package api

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"golang.org/x/sync/singleflight"

	"github.com/local/outliner/internal/config"
	"github.com/local/outliner/internal/limiter"
	"github.com/local/outliner/internal/metrics"
	"github.com/local/outliner/internal/pipeline"
)

// Cache holds encoded results by content hash.
type Cache interface {
	Get(ctx context.Context, hash string) ([]byte, bool, error)
	Set(ctx context.Context, hash string, data []byte) error
}

type Dependencies struct {
	Outliner pipeline.Outliner
	Cache    Cache // optional
}

// Server is the HTTP API of the outline service.
type Server struct {
	router chi.Router
	deps   Dependencies
	cfg    config.ServerConfig
	slots  *limiter.Slots
	group  singleflight.Group
}

func NewServer(deps Dependencies, cfg config.ServerConfig) *Server {
	s := &Server{
		deps:  deps,
		cfg:   cfg,
		slots: limiter.New(cfg.MaxInflight),
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
	r.Use(RequestID)
	r.Use(RequestLogger)

	r.Get("/health", s.handleHealth)
	r.Get("/ready", s.handleReady)
	r.Handle("/metrics", metrics.Handler())

	r.Group(func(r chi.Router) {
		if s.cfg.APIKey != "" {
			r.Use(AuthMiddleware(s.cfg.APIKey))
		}
		r.Post("/v1/outline", s.handleOutline)
	})

	s.router = r
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.Write([]byte(`{"status":"ok"}`))
}
