// Package server exposes the factor pipeline over HTTP: import and
// validation of raw rows, pedigree scoring, listing, stats and file
// export.
package server

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/carbonref/factor-cli/internal/config"
	"github.com/carbonref/factor-cli/internal/importer"
	"github.com/carbonref/factor-cli/internal/quality"
	"github.com/carbonref/factor-cli/internal/store"
)

// Server routes HTTP requests onto the import, scoring and export
// components.
type Server struct {
	cfg      *config.Config
	store    store.Store
	importer *importer.Importer
	engine   *quality.Engine
	router   *chi.Mux
}

// NewServer wires the HTTP API.
func NewServer(cfg *config.Config, st store.Store, imp *importer.Importer, eng *quality.Engine) *Server {
	s := &Server{
		cfg:      cfg,
		store:    st,
		importer: imp,
		engine:   eng,
		router:   chi.NewRouter(),
	}
	s.setupMiddleware()
	s.setupRoutes()
	return s
}

// Router returns the configured handler.
func (s *Server) Router() http.Handler {
	return s.router
}

func (s *Server) setupMiddleware() {
	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.RealIP)
	s.router.Use(middleware.Recoverer)
	s.router.Use(middleware.Timeout(60 * time.Second))

	s.router.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type"},
		MaxAge:         300,
	}))
}

func (s *Server) setupRoutes() {
	s.router.Get("/healthz", s.handleHealth)

	s.router.Route("/api/v1", func(r chi.Router) {
		r.Route("/factors", func(r chi.Router) {
			r.Get("/", s.handleList)
			r.Get("/export", s.handleExport)
			r.Get("/template", s.handleTemplate)
			r.Post("/import", s.handleImport)
			r.Post("/validate", s.handleValidate)
			r.Post("/score", s.handleScore)
		})
		r.Get("/stats", s.handleStats)
	})
}
