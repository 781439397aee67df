// Package api serves the health question answering service over HTTP.
package api

import (
	"context"
	"errors"
	"fmt"
	"github.com/apomuden/apomuden/internal/answer"
	"github.com/apomuden/apomuden/internal/auth"
	"github.com/apomuden/apomuden/internal/db"
	"github.com/apomuden/apomuden/internal/transcribe"
	"github.com/gorilla/mux"
	"github.com/rs/cors"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"
)

const Version = "1.0.0"

type Config struct {
	Addr        string `cli:"addr"`
	CORSOrigins string `cli:"cors-origins"`
}

// Origins splits the comma separated CORSOrigins.
func (c Config) Origins() []string {
	var origins []string
	for _, o := range strings.Split(c.CORSOrigins, ",") {
		if o = strings.TrimSpace(o); o != "" {
			origins = append(origins, o)
		}
	}
	return origins
}

type Transcriber interface {
	Transcribe(ctx context.Context, filename string, audio io.Reader) (transcribe.Transcript, error)
}

type Server struct {
	resolver    *answer.Resolver
	queries     *db.Queries
	issuer      *auth.Issuer
	transcriber Transcriber
	logger      *slog.Logger
	router      *mux.Router
	// Model is reported by the health endpoint, empty when offline.
	Model string
	// WebSearch is reported by the health endpoint.
	WebSearch bool
}

func New(resolver *answer.Resolver, queries *db.Queries, issuer *auth.Issuer, transcriber Transcriber, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Server{
		resolver:    resolver,
		queries:     queries,
		issuer:      issuer,
		transcriber: transcriber,
		logger:      logger,
		router:      mux.NewRouter(),
	}
	s.routes()
	return s
}

func (s *Server) routes() {
	s.router.Use(s.loggingMiddleware)
	s.router.Use(s.recoveryMiddleware)
	s.router.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusNotFound, "Not Found")
	})
	s.router.MethodNotAllowedHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusMethodNotAllowed, "Method Not Allowed")
	})

	s.router.HandleFunc("/", s.handleRoot).Methods(http.MethodGet)
	s.router.HandleFunc("/health", s.handleHealth).Methods(http.MethodGet)

	authRoutes := s.router.PathPrefix("/api/auth").Subrouter()
	authRoutes.HandleFunc("/register", s.handleRegister).Methods(http.MethodPost)
	authRoutes.HandleFunc("/login", s.handleLogin).Methods(http.MethodPost)
	authRoutes.Handle("/me", s.requireUser(http.HandlerFunc(s.handleMe))).Methods(http.MethodGet)

	health := s.router.PathPrefix("/api/health").Subrouter()
	health.Use(s.optionalUser)
	health.HandleFunc("/ask", s.handleAsk).Methods(http.MethodPost)
	health.HandleFunc("/ask-audio", s.handleAskAudio).Methods(http.MethodPost)

	user := s.router.PathPrefix("/api/user").Subrouter()
	user.Use(s.requireUser)
	user.HandleFunc("/profile", s.handleGetProfile).Methods(http.MethodGet)
	user.HandleFunc("/profile", s.handleUpdateProfile).Methods(http.MethodPut)
	user.HandleFunc("/history", s.handleHistory).Methods(http.MethodGet)
	user.HandleFunc("/history/{id}", s.handleDeleteHistory).Methods(http.MethodDelete)
	user.HandleFunc("/stats", s.handleStats).Methods(http.MethodGet)

	logs := s.router.PathPrefix("/api/logs").Subrouter()
	logs.Use(s.requireUser)
	logs.HandleFunc("/query-logs", s.handleQueryLogs).Methods(http.MethodGet)
	logs.HandleFunc("/analytics", s.handleAnalytics).Methods(http.MethodGet)
	logs.HandleFunc("/queries", s.handleAllQueryLogs).Methods(http.MethodGet)
	logs.HandleFunc("/errors", s.handleErrorLogs).Methods(http.MethodGet)
}

// Handler wraps the router with CORS for the given origins, "*" allows any.
func (s *Server) Handler(origins []string) http.Handler {
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	c := cors.New(cors.Options{
		AllowedOrigins:   origins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowedHeaders:   []string{"*"},
		AllowCredentials: true,
	})
	return c.Handler(s.router)
}

// ListenAndServe serves until ctx is done and then shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context, cfg Config) error {
	httpServer := &http.Server{
		Addr:         cfg.Addr,
		Handler:      s.Handler(cfg.Origins()),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	errc := make(chan error, 1)
	go func() {
		s.logger.Info("starting http server", "addr", cfg.Addr)
		errc <- httpServer.ListenAndServe()
	}()

	select {
	case err := <-errc:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("failed to serve: %w", err)
	case <-ctx.Done():
	}

	s.logger.Info("shutting down http server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	err := httpServer.Shutdown(shutdownCtx)
	if err != nil {
		return fmt.Errorf("failed to shut down: %w", err)
	}
	return nil
}

func (s *Server) handleRoot(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"message":   "Apomuden Health QA API",
		"version":   Version,
		"languages": []string{"en", "ak"},
		"docs":      "/health",
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	entries := 0
	if s.resolver != nil && s.resolver.KB != nil {
		entries = s.resolver.KB.Len()
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"status":                 "healthy",
		"version":                Version,
		"knowledge_base_entries": entries,
		"model":                  s.Model,
		"web_search":             s.WebSearch,
		"transcription":          s.transcriber != nil,
		"timestamp":              time.Now().UTC(),
	})
}
