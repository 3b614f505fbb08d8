// Package server provides the HTTP REST API for the interview coach.
package server

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/jonathan/interview-coach/internal/extraction"
	"github.com/jonathan/interview-coach/internal/gap"
	"github.com/jonathan/interview-coach/internal/interview"
	"github.com/jonathan/interview-coach/internal/recommend"
	"github.com/jonathan/interview-coach/internal/server/middleware"
	"github.com/jonathan/interview-coach/internal/types"
)

// Deps are the services the HTTP layer exposes. The server owns none of
// them; wiring happens in the CLI entrypoint.
type Deps struct {
	Engine      *interview.Engine
	Recommender *recommend.Recommender
	Extractor   extraction.EntityExtractor
	GapWeights  gap.Weights
	JWT         *JWTService // nil disables authentication
	Logger      *zap.Logger
}

// Config holds server configuration
type Config struct {
	Port int
}

// Server represents the HTTP server
type Server struct {
	httpServer  *http.Server
	engine      *interview.Engine
	recommender *recommend.Recommender
	extractor   extraction.EntityExtractor
	gapWeights  gap.Weights
	jwtService  *JWTService
	validate    *validator.Validate
	log         *zap.Logger

	// Gap analyses are computed at session creation and needed again when
	// building the final report; the engine does not carry them.
	gapsMu      sync.Mutex
	sessionGaps map[uuid.UUID][]types.GapEntry
}

// New creates a new server instance
func New(cfg Config, deps Deps) (*Server, error) {
	if deps.Engine == nil {
		return nil, fmt.Errorf("server requires a session engine")
	}
	log := deps.Logger
	if log == nil {
		log = zap.NewNop()
	}

	s := &Server{
		engine:      deps.Engine,
		recommender: deps.Recommender,
		extractor:   deps.Extractor,
		gapWeights:  deps.GapWeights,
		jwtService:  deps.JWT,
		validate:    validator.New(),
		log:         log,
		sessionGaps: make(map[uuid.UUID][]types.GapEntry),
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /health", s.handleHealth)

	api := http.NewServeMux()
	api.HandleFunc("POST /sessions", s.handleCreateSession)
	api.HandleFunc("GET /sessions/{id}", s.handleGetSession)
	api.HandleFunc("POST /sessions/{id}/answers", s.handleSubmitAnswer)
	api.HandleFunc("POST /sessions/{id}/answers/stream", s.handleSubmitAnswerStream)
	api.HandleFunc("POST /sessions/{id}/abort", s.handleAbortSession)
	api.HandleFunc("POST /sessions/{id}/report", s.handleFinalizeSession)

	var apiHandler http.Handler = api
	if s.jwtService != nil {
		apiHandler = middleware.AuthMiddleware(s.jwtService.AsTokenValidator())(api)
	}
	mux.Handle("/", apiHandler)

	s.httpServer = &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      s.withLogging(s.withCORS(mux)),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 120 * time.Second, // evaluation calls can be slow
		IdleTimeout:  60 * time.Second,
	}

	return s, nil
}

// Start begins listening for requests and blocks until shutdown.
func (s *Server) Start() error {
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	errCh := make(chan error, 1)
	go func() {
		s.log.Info("server starting", zap.String("addr", s.httpServer.Addr))
		if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("server error: %w", err)
	case <-stop:
	}

	s.log.Info("shutting down server")
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := s.httpServer.Shutdown(ctx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}

	s.log.Info("server stopped")
	return nil
}

// withCORS adds CORS headers
func (s *Server) withCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// withLogging adds request logging
func (s *Server) withLogging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		s.log.Debug("request handled",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Duration("duration", time.Since(start)))
	})
}

// handleHealth returns server health status
func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	s.jsonResponse(w, http.StatusOK, map[string]string{"status": "ok"})
}

// jsonResponse writes a JSON response
func (s *Server) jsonResponse(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		s.log.Warn("failed to encode JSON response", zap.Error(err))
	}
}

// errorResponse writes an error JSON response with the status mapped from
// the domain error.
func (s *Server) errorResponse(w http.ResponseWriter, err error) {
	s.jsonResponse(w, HTTPStatus(err), map[string]string{"error": err.Error()})
}
