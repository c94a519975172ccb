// Package server exposes project ledgers over a small JSON HTTP API.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/httprate"
	"github.com/go-playground/validator/v10"

	"github.com/Tiliavir/flex/internal/ledger"
	"github.com/Tiliavir/flex/internal/parse"
	"github.com/Tiliavir/flex/internal/storage"
)

// Options configures a Server.
type Options struct {
	Store  storage.Store
	Logger *slog.Logger
	// Now supplies the current time; it defaults to time.Now.
	Now func() time.Time
	// RateLimit is the number of requests per client IP and minute.
	// Zero disables rate limiting.
	RateLimit int
}

// Server is the flex HTTP API.
type Server struct {
	store     storage.Store
	logger    *slog.Logger
	now       func() time.Time
	rateLimit int
	metrics   *Metrics
	validate  *validator.Validate
	locks     *locker
}

// New returns a Server for opts.
func New(opts Options) *Server {
	s := &Server{
		store:     opts.Store,
		logger:    opts.Logger,
		now:       opts.Now,
		rateLimit: opts.RateLimit,
		metrics:   NewMetrics(),
		validate:  validator.New(),
		locks:     newLocker(),
	}
	if s.logger == nil {
		s.logger = slog.Default()
	}
	if s.now == nil {
		s.now = time.Now
	}
	return s
}

// Handler returns the chi router with all routes mounted.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(s.metrics.Middleware)
	if s.rateLimit > 0 {
		r.Use(httprate.LimitByIP(s.rateLimit, time.Minute))
	}

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	r.Handle("/metrics", s.metrics.Handler())

	r.Route("/projects", func(r chi.Router) {
		r.Get("/", s.handleListProjects)
		r.Post("/", s.handleCreateProject)
		r.Route("/{name}", func(r chi.Router) {
			r.Get("/", s.handleGetProject)
			r.Get("/entries", s.handleListEntries)
			r.Post("/entries", s.handleLogEntry)
			r.Delete("/entries", s.handleDeleteEntries)
		})
	})
	return r
}

// ListenAndServe serves the API on addr until ctx is cancelled, then shuts
// down gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("http api listening", "addr", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errCh; !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	s.logger.Info("http api stopped")
	return nil
}

// update runs fn on the named ledger under the project's lock and saves it.
func (s *Server) update(ctx context.Context, name string, fn func(*ledger.Ledger) error) (*ledger.Ledger, error) {
	if err := storage.ValidateName(name); err != nil {
		return nil, err
	}
	unlock := s.locks.lock(name)
	defer unlock()
	return storage.Update(ctx, s.store, name, fn)
}

// errorStatus maps domain errors to HTTP status codes.
func errorStatus(err error) int {
	var verrs validator.ValidationErrors
	switch {
	case errors.Is(err, ledger.ErrNotInitialized):
		return http.StatusNotFound
	case errors.Is(err, ledger.ErrAlreadyExists):
		return http.StatusConflict
	case errors.Is(err, parse.ErrInvalid),
		errors.Is(err, storage.ErrInvalidName),
		errors.Is(err, errBadRequest),
		errors.As(err, &verrs):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := errorStatus(err)
	if status == http.StatusInternalServerError {
		s.logger.Error("request failed", "method", r.Method, "path", r.URL.Path, "err", err)
		writeJSON(w, status, errorResponse{Error: http.StatusText(status)})
		return
	}
	writeJSON(w, status, errorResponse{Error: err.Error()})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
