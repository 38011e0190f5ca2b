// Package server exposes the certificate pipeline over HTTP: the submission
// webhook, batch re-generation, configuration and health.
package server

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rafael/certificate-automator/internal/config"
	"github.com/rafael/certificate-automator/internal/pipeline"
	"github.com/rafael/certificate-automator/internal/types"
)

// Runner is the slice of pipeline behavior the server invokes. A fresh Runner
// is built per request from a fresh settings snapshot.
type Runner interface {
	ProcessSubmission(ctx context.Context, sub types.Submission) pipeline.Outcome
	RunBatch(ctx context.Context, opts pipeline.BatchOptions) types.BatchResult
}

// RunnerFactory builds a Runner for one invocation's settings.
type RunnerFactory func(settings config.Settings) (Runner, error)

// Server is the HTTP front end.
type Server struct {
	httpServer *http.Server
	store      *config.Store
	newRunner  RunnerFactory
}

// Config holds server configuration.
type Config struct {
	Port      int
	Store     *config.Store
	NewRunner RunnerFactory
}

// New builds the server and its routes.
func New(cfg Config) *Server {
	s := &Server{
		store:     cfg.Store,
		newRunner: cfg.NewRunner,
	}

	mux := http.NewServeMux()
	mux.HandleFunc("POST /submissions", s.handleSubmission)
	mux.HandleFunc("POST /batch", s.handleBatch)
	mux.HandleFunc("GET /config", s.handleGetConfig)
	mux.HandleFunc("PUT /config", s.handleSaveConfig)
	mux.HandleFunc("GET /health", s.handleHealth)

	s.httpServer = &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      s.withLogging(s.withCORS(mux)),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 300 * time.Second, // batch runs are slow by design
		IdleTimeout:  60 * time.Second,
	}

	return s
}

// Start listens until an interrupt or termination signal, then drains.
func (s *Server) Start() error {
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	go func() {
		log.Printf("Server starting on %s", s.httpServer.Addr)
		if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server error: %v", err)
		}
	}()

	<-stop
	log.Println("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := s.httpServer.Shutdown(ctx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}

	log.Println("Server stopped")
	return nil
}

// Handler exposes the full middleware-wrapped handler, for tests.
func (s *Server) Handler() http.Handler {
	return s.httpServer.Handler
}

// withCORS adds CORS headers
func (s *Server) withCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")

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
		log.Printf("[%s] %s %s", r.Method, r.URL.Path, r.RemoteAddr)
		next.ServeHTTP(w, r)
		log.Printf("[%s] %s completed in %v", r.Method, r.URL.Path, time.Since(start))
	})
}

// jsonResponse writes a JSON response with the given status
func (s *Server) jsonResponse(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		log.Printf("Error encoding JSON response: %v", err)
	}
}

// errorResponse writes an error JSON response
func (s *Server) errorResponse(w http.ResponseWriter, status int, message string) {
	s.jsonResponse(w, status, map[string]string{"error": message})
}
