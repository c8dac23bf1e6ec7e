// Package server exposes the document store and layout engine over HTTP.
//
// The API is a thin JSON surface over the other packages: documents are
// stored raw, and layouts are computed on demand from query parameters and
// cached by content hash. Endpoints:
//
//	GET    /healthz
//	GET    /api/documents
//	POST   /api/documents
//	GET    /api/documents/{id}
//	DELETE /api/documents/{id}
//	GET    /api/documents/{id}/layout
//	GET    /api/documents/{id}/stats
package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/treescope/treescope/pkg/cache"
	"github.com/treescope/treescope/pkg/store"
	"github.com/treescope/treescope/pkg/tree/layout"
)

// Config configures the HTTP server.
type Config struct {
	// Addr is the listen address, e.g. ":8080".
	Addr string

	// Store persists documents. Required.
	Store store.Store

	// Cache holds computed layouts keyed by content hash. Nil disables
	// caching.
	Cache cache.Cache

	// Layout overrides the engine defaults for computed layouts.
	Layout layout.Config

	// Logger receives request and error logs. Nil uses the default logger.
	Logger *log.Logger
}

// Server is the HTTP API server.
type Server struct {
	addr   string
	store  store.Store
	cache  cache.Cache
	engine *layout.Engine
	logger *log.Logger
	router chi.Router
}

// layoutTTL bounds how long computed layouts stay cached. Content-hash keys
// make stale entries harmless; the TTL just caps cache growth.
const layoutTTL = time.Hour

// New creates a server and mounts its routes.
func New(cfg Config) *Server {
	logger := cfg.Logger
	if logger == nil {
		logger = log.Default()
	}
	c := cfg.Cache
	if c == nil {
		c = cache.NewNullCache()
	}
	s := &Server{
		addr:   cfg.Addr,
		store:  cfg.Store,
		cache:  c,
		engine: layout.New(cfg.Layout),
		logger: logger,
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(s.logRequests)

	r.Get("/healthz", s.handleHealth)
	r.Route("/api/documents", func(r chi.Router) {
		r.Get("/", s.handleList)
		r.Post("/", s.handleCreate)
		r.Route("/{id}", func(r chi.Router) {
			r.Get("/", s.handleGet)
			r.Delete("/", s.handleDelete)
			r.Get("/layout", s.handleLayout)
			r.Get("/stats", s.handleStats)
		})
	})
	s.router = r
	return s
}

// Handler returns the mounted route tree, mainly for tests.
func (s *Server) Handler() http.Handler { return s.router }

// ListenAndServe runs the server until ctx is cancelled, then shuts down
// gracefully.
func (s *Server) ListenAndServe(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("listening", "addr", s.addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		s.logger.Debug("request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"duration", time.Since(start))
	})
}
