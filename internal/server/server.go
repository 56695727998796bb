// Package server exposes the coding assistant as an HTTP JSON API. Each
// session owns its own dialogue engine.
package server

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/Veraticus/medicoder/internal/catalog"
	"github.com/Veraticus/medicoder/internal/engine"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

const shutdownTimeout = 10 * time.Second

// DefaultSessionTTL is how long a session may sit idle before it is dropped.
const DefaultSessionTTL = 30 * time.Minute

// EngineFactory creates the engine backing a new session.
type EngineFactory func() *engine.Engine

// Server routes API requests to per-session engines.
type Server struct {
	newEngine  EngineFactory
	catalog    *catalog.Catalog
	logger     *slog.Logger
	sessions   *registry
	sessionTTL time.Duration
}

// Option configures a Server.
type Option func(*Server)

// WithSessionTTL sets the idle timeout for sessions. Zero keeps sessions until
// they are deleted or finished.
func WithSessionTTL(ttl time.Duration) Option {
	return func(s *Server) {
		s.sessionTTL = ttl
	}
}

// New creates a server. The catalog backs the code lookup endpoint.
func New(factory EngineFactory, cat *catalog.Catalog, logger *slog.Logger, opts ...Option) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	if cat == nil {
		cat = catalog.New(nil, nil)
	}
	s := &Server{
		newEngine:  factory,
		catalog:    cat,
		logger:     logger,
		sessions:   newRegistry(),
		sessionTTL: DefaultSessionTTL,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Handler builds the router.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger(s.logger))
	r.Use(middleware.Recoverer)
	r.Use(middleware.Heartbeat("/healthz"))

	r.Route("/api", func(r chi.Router) {
		r.Route("/sessions", func(r chi.Router) {
			r.Post("/", s.createSession)
			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", s.getSession)
				r.Delete("/", s.deleteSession)
				r.With(middleware.AllowContentType("application/json")).
					Post("/messages", s.postMessage)
				r.Post("/reset", s.resetSession)
			})
		})
		r.Get("/codes/{code}", s.lookupCode)
	})
	return r
}

// ListenAndServe serves on addr until ctx is canceled, then shuts down
// gracefully. A non-nil tlsConfig serves HTTPS with its certificates.
func (s *Server) ListenAndServe(ctx context.Context, addr string, tlsConfig *tls.Config) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
		TLSConfig:         tlsConfig,
	}

	sweepCtx, stopSweep := context.WithCancel(ctx)
	defer stopSweep()
	go s.sweepSessions(sweepCtx)

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("HTTP server listening", "addr", addr, "tls", tlsConfig != nil)
		if tlsConfig != nil {
			errCh <- srv.ListenAndServeTLS("", "")
			return
		}
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("server failed: %w", err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("failed to shut down server: %w", err)
	}
	s.logger.Info("HTTP server stopped", "sessions", s.sessions.len())
	return nil
}

// sweepSessions expires idle sessions until ctx ends.
func (s *Server) sweepSessions(ctx context.Context) {
	if s.sessionTTL <= 0 {
		return
	}
	ticker := time.NewTicker(max(s.sessionTTL/4, time.Second))
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.expireSessions()
		}
	}
}

func (s *Server) expireSessions() {
	if s.sessionTTL <= 0 {
		return
	}
	for _, id := range s.sessions.expire(s.sessionTTL) {
		s.logger.Info("Session expired", "session", id, "idle", s.sessionTTL)
	}
}
