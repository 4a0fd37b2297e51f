// Package api exposes the layout engine to the board editor over HTTP.
//
// The surface is session-scoped: a client creates a session from catalog
// ids, then drives optimize, routing, conflict checks, drag overrides, and
// four-cable toggles against it. Engine work always goes through the
// session's pass protocol, so concurrent edits cancel stale computations
// instead of racing them.
package api

import (
	"context"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/pedalstack/pedalstack/pkg/catalog"
	"github.com/pedalstack/pedalstack/pkg/engine"
	"github.com/pedalstack/pedalstack/pkg/observability"
	"github.com/pedalstack/pedalstack/pkg/session"
)

// Server wires the session manager, catalog store, and engine runner into
// an HTTP handler.
type Server struct {
	sessions *session.Manager
	catalog  catalog.Store
	runner   *engine.Runner
	opts     engine.Options
	logger   *log.Logger
}

// NewServer creates a server. A nil logger falls back to the default.
func NewServer(sessions *session.Manager, store catalog.Store, runner *engine.Runner, opts engine.Options, logger *log.Logger) *Server {
	if logger == nil {
		logger = log.Default()
	}
	return &Server{
		sessions: sessions,
		catalog:  store,
		runner:   runner,
		opts:     opts,
		logger:   logger,
	}
}

// Router builds the chi router for the API surface.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(s.requestLogger)

	r.Route("/v1/sessions", func(r chi.Router) {
		r.Post("/", s.handleCreateSession)
		r.Route("/{id}", func(r chi.Router) {
			r.Get("/", s.handleGetSession)
			r.Delete("/", s.handleDeleteSession)
			r.Post("/optimize", s.handleOptimize)
			r.Post("/route", s.handleRoute)
			r.Post("/conflicts", s.handleConflicts)
			r.Patch("/layout", s.handleMove)
			r.Post("/fourcable", s.handleFourCable)
		})
	})

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	return r
}

// ListenAndServe runs the API with graceful shutdown when ctx is cancelled.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() { errCh <- srv.ListenAndServe() }()

	s.logger.Info("api listening", "addr", addr)
	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	case err := <-errCh:
		if err == http.ErrServerClosed {
			return nil
		}
		return err
	}
}

// requestLogger logs each request and feeds the API observability hooks.
func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		observability.API().OnRequest(r.Context(), r.Method, r.URL.Path)

		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		duration := time.Since(start)
		observability.API().OnResponse(r.Context(), r.Method, r.URL.Path, ww.Status(), duration)
		s.logger.Debug("request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"duration", duration)
	})
}
