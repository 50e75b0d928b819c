// Package server exposes the gateway over HTTP with the routes the legacy
// clients already call.
package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"gemgate/internal/config"
	"gemgate/internal/gateway"
	"gemgate/internal/logger"
	"gemgate/internal/stream"
)

// Service is the gateway surface the handlers need.
type Service interface {
	GenerateQuestions(ctx context.Context, req gateway.QuestionsRequest) ([]byte, error)
	GetMetadata(ctx context.Context, req gateway.MetadataRequest) ([]byte, error)
	GetAnswer(ctx context.Context, req gateway.AnswerRequest) ([]byte, error)
	StreamAnswer(ctx context.Context, req gateway.AnswerRequest) (<-chan stream.Event, error)
	AssessEEAT(ctx context.Context, req gateway.EEATRequest) ([]byte, error)
}

// Server is the HTTP front of the gateway.
type Server struct {
	router     *chi.Mux
	httpServer *http.Server
	service    Service
	cfg        config.Server
}

// New creates a configured server.
func New(service Service, cfg config.Server) *Server {
	s := &Server{
		router:  chi.NewRouter(),
		service: service,
		cfg:     cfg,
	}

	s.setupMiddleware()
	s.setupRoutes()

	s.httpServer = &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Handler:      s.router,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}

	return s
}

func (s *Server) setupMiddleware() {
	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.RealIP)
	s.router.Use(middleware.Logger)
	s.router.Use(middleware.Recoverer)

	s.router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   s.cfg.CORS.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           300,
	}))
}

func (s *Server) setupRoutes() {
	s.router.Get("/health", s.handleHealth)

	s.router.Group(func(r chi.Router) {
		r.Use(s.requireBearerToken)
		r.Post("/generateQuestions", s.handleGenerateQuestions)
		r.Post("/getMetadata", s.handleGetMetadata)
		r.Post("/getAnswer", s.handleGetAnswer)
		r.Post("/eeat", s.handleEEAT)
		r.Post("/api/v1/content/eeat-assessment", s.handleEEAT)
	})
}

// Start begins serving. It blocks until the server stops.
func (s *Server) Start() error {
	logger.Info("HTTP server starting", "addr", s.httpServer.Addr)
	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("server failed: %w", err)
	}
	return nil
}

// Shutdown gracefully stops the server.
func (s *Server) Shutdown(ctx context.Context) error {
	logger.Info("HTTP server shutting down")
	return s.httpServer.Shutdown(ctx)
}

// Router exposes the mux for tests.
func (s *Server) Router() *chi.Mux {
	return s.router
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]any{
		"status":    "healthy",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}
