// Package api exposes the gamification store over a small JSON HTTP API.
package api

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"xpeak/internal/engine"
)

// Config controls the HTTP listener.
type Config struct {
	Addr         string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	// RequestsPerSecond and Burst throttle the whole API. Zero disables it.
	RequestsPerSecond float64
	Burst             int
}

// Server is the HTTP server that wires the store routes and middleware.
type Server struct {
	router     chi.Router
	httpServer *http.Server
	store      *engine.Store
	log        *zap.Logger
}

// New creates a Server with all routes wired.
func New(cfg Config, store *engine.Store, log *zap.Logger) *Server {
	if log == nil {
		log = zap.NewNop()
	}
	router := chi.NewRouter()

	router.Use(chimw.RequestID)
	router.Use(chimw.RealIP)
	router.Use(requestLogger(log))
	router.Use(chimw.Recoverer)

	s := &Server{
		router: router,
		store:  store,
		log:    log,
		httpServer: &http.Server{
			Addr:         cfg.Addr,
			Handler:      router,
			ReadTimeout:  cfg.ReadTimeout,
			WriteTimeout: cfg.WriteTimeout,
		},
	}

	router.Route("/api/v1", func(r chi.Router) {
		if cfg.RequestsPerSecond > 0 {
			r.Use(RateLimit(cfg.RequestsPerSecond, cfg.Burst))
		}
		registerRoutes(r, s)
	})

	router.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	return s
}

// Handler returns the root handler, for tests and embedding.
func (s *Server) Handler() http.Handler { return s.router }

// Start listens until the server is shut down or ctx is cancelled.
func (s *Server) Start(ctx context.Context) error {
	s.httpServer.BaseContext = func(net.Listener) context.Context { return ctx }
	s.log.Info("http server listening", zap.String("addr", s.httpServer.Addr))
	if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("server.Start: %w", err)
	}
	return nil
}

// Shutdown gracefully stops the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	if err := s.httpServer.Shutdown(ctx); err != nil {
		return fmt.Errorf("server.Shutdown: %w", err)
	}
	return nil
}
