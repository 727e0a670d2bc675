// Package server exposes layout documents over HTTP.
//
// Routes:
//
//	GET    /healthz
//	GET    /layouts                    summaries, most recent first
//	GET    /layouts/{id}               full document
//	PUT    /layouts/{id}               full-document save, returns the stored copy
//	DELETE /layouts/{id}
//	GET    /layouts/{id}/view          resolved view JSON (?breakpoint=)
//	GET    /layouts/{id}/svg           rendered SVG (?breakpoint=&grid=1&labels=0)
//
// Errors are JSON objects {"code": ..., "message": ...} with the status from
// [errors.HTTPStatus]. The layout endpoints speak the same protocol that
// [storage.HTTPStore] consumes, so one server can back remote CLIs.
package server

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"io"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/matzehuels/gridlayout/pkg/buildinfo"
	"github.com/matzehuels/gridlayout/pkg/errors"
	"github.com/matzehuels/gridlayout/pkg/grid"
	"github.com/matzehuels/gridlayout/pkg/render"
	"github.com/matzehuels/gridlayout/pkg/storage"
)

// MaxBodyBytes caps the size of a PUT body.
const MaxBodyBytes = 4 << 20

// Server serves layouts from a [storage.Store].
type Server struct {
	store    storage.Store
	renderer *render.Renderer
	logger   *log.Logger
	token    string
}

// Option configures a [Server].
type Option func(*Server)

// WithLogger sets the request logger.
func WithLogger(l *log.Logger) Option { return func(s *Server) { s.logger = l } }

// WithToken requires "Authorization: Bearer <token>" on PUT and DELETE.
func WithToken(token string) Option { return func(s *Server) { s.token = token } }

// WithRenderer sets the SVG renderer, typically one with a cache.
func WithRenderer(r *render.Renderer) Option { return func(s *Server) { s.renderer = r } }

// New creates a server over store.
func New(store storage.Store, opts ...Option) *Server {
	s := &Server{
		store:    store,
		renderer: render.NewRenderer(),
		logger:   log.New(io.Discard),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Handler returns the routed handler.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(s.logRequests)
	r.Use(withSecurityHeaders)

	r.Get("/healthz", s.handleHealth)
	r.Route("/layouts", func(r chi.Router) {
		r.Get("/", s.handleList)
		r.Route("/{id}", func(r chi.Router) {
			r.Get("/", s.handleGet)
			r.With(s.requireToken).Put("/", s.handlePut)
			r.With(s.requireToken).Delete("/", s.handleDelete)
			r.Get("/view", s.handleView)
			r.Get("/svg", s.handleSVG)
		})
	})
	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, errors.New(errors.ErrCodeNotFound, "no route for %s", r.URL.Path))
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusMethodNotAllowed, errorBody{
			Code:    string(errors.ErrCodeUnsupported),
			Message: r.Method + " not allowed on " + r.URL.Path,
		})
	})
	return r
}

// ListenAndServe serves on addr until ctx is cancelled, then shuts down
// gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("listening", "addr", addr)
		if err := srv.ListenAndServe(); err != nil && !stderrors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	s.logger.Info("shutting down")
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	return <-errCh
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok", "version": buildinfo.Version})
}

func (s *Server) handleList(w http.ResponseWriter, r *http.Request) {
	summaries, err := s.store.List(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	if summaries == nil {
		summaries = []storage.Summary{}
	}
	writeJSON(w, http.StatusOK, summaries)
}

func (s *Server) handleGet(w http.ResponseWriter, r *http.Request) {
	l, err := s.store.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, l)
}

func (s *Server) handlePut(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := errors.ValidateLayoutID(id); err != nil {
		writeError(w, err)
		return
	}

	var l grid.Layout
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, MaxBodyBytes))
	if err := dec.Decode(&l); err != nil {
		writeError(w, errors.Wrap(errors.ErrCodeInvalidInput, err, "decode layout"))
		return
	}
	switch l.ID {
	case "":
		l.ID = id
	case id:
	default:
		writeError(w, errors.New(errors.ErrCodeInvalidInput, "layout id %q does not match path %q", l.ID, id))
		return
	}
	if l.Items == nil {
		l.Items = []grid.Item{}
	}

	stored, err := s.store.Save(r.Context(), &l)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, stored)
}

func (s *Server) handleDelete(w http.ResponseWriter, r *http.Request) {
	if err := s.store.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleView(w http.ResponseWriter, r *http.Request) {
	l, bp, ok := s.loadAt(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, render.NewViewDocument(grid.View(l, bp), l.Canvas, bp))
}

func (s *Server) handleSVG(w http.ResponseWriter, r *http.Request) {
	l, bp, ok := s.loadAt(w, r)
	if !ok {
		return
	}
	q := r.URL.Query()
	svg, err := s.renderer.Render(r.Context(), l, render.Options{
		Format:     render.FormatSVG,
		Breakpoint: bp,
		GridLines:  q.Get("grid") == "1",
		NoLabels:   q.Get("labels") == "0",
	})
	if err != nil {
		writeError(w, err)
		return
	}
	w.Header().Set("Content-Type", "image/svg+xml")
	_, _ = w.Write(svg)
}

// loadAt reads the layout and breakpoint a view request names. It writes
// the error response itself and reports whether the caller should continue.
func (s *Server) loadAt(w http.ResponseWriter, r *http.Request) (*grid.Layout, grid.Breakpoint, bool) {
	bp, err := grid.ParseBreakpoint(r.URL.Query().Get("breakpoint"))
	if err != nil {
		writeError(w, err)
		return nil, "", false
	}
	l, err := s.store.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return nil, "", false
	}
	return l, bp, true
}
