// Package server exposes code generation, validation and project storage
// over HTTP for the browser editor.
package server

import (
	"context"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/rs/cors"

	"github.com/agentgraph/agentgraph/internal/app/usecases"
	"github.com/agentgraph/agentgraph/pkg/validation"
)

// Server routes API requests to the generator and the project manager.
type Server struct {
	router       *mux.Router
	gen          usecases.CodeGenerator
	projects     usecases.ProjectManager
	validator    *validation.Middleware
	corsOrigins  []string
	maxBodyBytes int64
	health       func(ctx context.Context) error
}

// Option configures a Server.
type Option func(*Server)

// WithCORSOrigins sets the origins allowed to call the API. The default
// allows any origin.
func WithCORSOrigins(origins ...string) Option {
	return func(s *Server) {
		if len(origins) > 0 {
			s.corsOrigins = origins
		}
	}
}

// WithMaxBodyBytes caps request bodies.
func WithMaxBodyBytes(n int64) Option {
	return func(s *Server) {
		if n > 0 {
			s.maxBodyBytes = n
		}
	}
}

// WithHealthCheck sets the probe run by /healthz, typically a store ping.
func WithHealthCheck(check func(ctx context.Context) error) Option {
	return func(s *Server) { s.health = check }
}

// New builds a server over gen and projects.
func New(gen usecases.CodeGenerator, projects usecases.ProjectManager, opts ...Option) *Server {
	s := &Server{
		router:       mux.NewRouter(),
		gen:          gen,
		projects:     projects,
		corsOrigins:  []string{"*"},
		maxBodyBytes: validation.DefaultMaxBodyBytes,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.validator = validation.NewMiddleware(s.maxBodyBytes)

	c := cors.New(cors.Options{
		AllowedOrigins: s.corsOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowedHeaders: []string{"*"},
		ExposedHeaders: []string{"Content-Length", "Content-Type", "Content-Disposition"},
	})
	s.router.Use(c.Handler)
	s.registerRoutes()
	return s
}

// Handler returns the HTTP handler.
func (s *Server) Handler() http.Handler { return s.router }

func (s *Server) registerRoutes() {
	s.router.HandleFunc("/healthz", s.handleHealth).Methods(http.MethodGet)
	s.router.HandleFunc("/metrics", handleMetrics).Methods(http.MethodGet)

	api := s.router.PathPrefix("/api").Subrouter()
	api.Handle("/generate",
		s.validator.ValidateJSON(validation.GenerateRequest{})(http.HandlerFunc(s.handleGenerate))).
		Methods(http.MethodPost, http.MethodOptions)
	api.Handle("/validate",
		s.validator.ValidateJSON(validation.GenerateRequest{})(http.HandlerFunc(s.handleValidate))).
		Methods(http.MethodPost, http.MethodOptions)

	api.HandleFunc("/projects", s.handleListProjects).Methods(http.MethodGet, http.MethodOptions)
	api.HandleFunc("/projects", s.handleImportProject).Methods(http.MethodPost, http.MethodOptions)
	api.HandleFunc("/projects/{id}", s.handleExportProject).Methods(http.MethodGet, http.MethodOptions)
	api.HandleFunc("/projects/{id}", s.handleUpdateProject).Methods(http.MethodPut, http.MethodOptions)
	api.HandleFunc("/projects/{id}", s.handleDeleteProject).Methods(http.MethodDelete, http.MethodOptions)
	api.HandleFunc("/projects/{id}/code", s.handleProjectCode).Methods(http.MethodGet, http.MethodOptions)
}
