// Package server exposes a session over a small local HTTP control API.
//
// Routes:
//
//	GET  /state                       session snapshot
//	POST /undo                        undo the current command
//	POST /redo                        redo the next command
//	POST /cook                        cook the visible node
//	PUT  /nodes/{id}/settings/{key}   set a setting; the body is a JSON value
//	POST /nodes/{id}/lock             lock a node
//	POST /nodes/{id}/unlock           unlock a node
//	POST /nodes/{id}/visible          make a node visible
//	GET  /graph.dot                   the network as Graphviz DOT
//	GET  /graph.svg                   the network rendered to SVG
//	GET  /healthz                     liveness
//	GET  /metrics                     Prometheus metrics, when a gatherer is set
//
// Every engine access runs on the session loop via [loop.Loop.Do], so the
// loop must be running (see [Server.Run]). Mutating routes settle the cook
// they trigger before replying.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/matzehuels/cookgraph/pkg/cache"
	"github.com/matzehuels/cookgraph/pkg/edit"
	errs "github.com/matzehuels/cookgraph/pkg/errors"
	"github.com/matzehuels/cookgraph/pkg/render"
	"github.com/matzehuels/cookgraph/pkg/session"
)

// maxBodyBytes bounds request bodies; setting values are small JSON scalars.
const maxBodyBytes = 1 << 16

// Option configures a Server.
type Option func(*Server)

// WithLogger sets the request logger.
func WithLogger(l *log.Logger) Option {
	return func(s *Server) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithGatherer enables GET /metrics backed by g.
func WithGatherer(g prometheus.Gatherer) Option {
	return func(s *Server) { s.gatherer = g }
}

// WithCache sets the cache for rendered graphs. The default keeps the most
// recent renderings in memory.
func WithCache(c cache.Cache) Option {
	return func(s *Server) {
		if c != nil {
			s.cache = c
		}
	}
}

// WithTimeout bounds how long a request waits for the loop.
func WithTimeout(d time.Duration) Option {
	return func(s *Server) {
		if d > 0 {
			s.timeout = d
		}
	}
}

// Server serves the control API for one session.
type Server struct {
	sess     *session.Session
	logger   *log.Logger
	gatherer prometheus.Gatherer
	cache    cache.Cache
	timeout  time.Duration
}

// New creates a server for sess.
func New(sess *session.Session, opts ...Option) *Server {
	s := &Server{
		sess:    sess,
		logger:  log.Default(),
		cache:   cache.NewMemoryCache(cache.DefaultMemoryEntries),
		timeout: 10 * time.Second,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Handler returns the API router.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(s.logRequests)

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	if s.gatherer != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(s.gatherer, promhttp.HandlerOpts{}))
	}

	r.Get("/state", s.handleState)
	r.Post("/undo", s.handleUndo)
	r.Post("/redo", s.handleRedo)
	r.Post("/cook", s.handleCook)
	r.Get("/graph.dot", s.handleDOT)
	r.Get("/graph.svg", s.handleSVG)

	r.Route("/nodes/{id}", func(r chi.Router) {
		r.Put("/settings/{key}", s.handleSetSetting)
		r.Post("/lock", s.handleLock(true))
		r.Post("/unlock", s.handleLock(false))
		r.Post("/visible", s.handleVisible)
	})
	return r
}

// Run drives the session loop and serves on addr until ctx is cancelled.
func (s *Server) Run(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	loopCtx, stopLoop := context.WithCancel(ctx)
	defer stopLoop()
	go func() { _ = s.sess.Loop().Run(loopCtx) }()

	errc := make(chan error, 1)
	go func() {
		s.logger.Info("serving", "addr", addr)
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return err
		}
		return nil
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

// do runs fn on the session loop.
func (s *Server) do(r *http.Request, fn func() error) error {
	ctx, cancel := context.WithTimeout(r.Context(), s.timeout)
	defer cancel()
	return s.sess.Loop().Do(ctx, fn)
}

// mutate runs fn on the loop and replies with the resulting snapshot. Work
// already queued settles before fn, and the cook fn triggers settles after
// it, so a reply never observes a half-finished chain.
func (s *Server) mutate(w http.ResponseWriter, r *http.Request, fn func() error) {
	var snap session.Snapshot
	err := s.do(r, func() error {
		s.sess.Settle()
		if err := fn(); err != nil {
			return err
		}
		s.sess.Settle()
		snap = s.sess.Snapshot()
		return nil
	})
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, snap)
}

func (s *Server) handleState(w http.ResponseWriter, r *http.Request) {
	s.mutate(w, r, func() error { return nil })
}

func (s *Server) handleUndo(w http.ResponseWriter, r *http.Request) {
	s.mutate(w, r, s.sess.Undo)
}

func (s *Server) handleRedo(w http.ResponseWriter, r *http.Request) {
	s.mutate(w, r, s.sess.Redo)
}

func (s *Server) handleCook(w http.ResponseWriter, r *http.Request) {
	s.mutate(w, r, func() error {
		_, err := s.sess.Cook(r.Context())
		return err
	})
}

func (s *Server) handleSetSetting(w http.ResponseWriter, r *http.Request) {
	id, key := chi.URLParam(r, "id"), chi.URLParam(r, "key")
	var value any
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&value); err != nil {
		s.writeError(w, errs.Wrap(errs.ErrCodeInvalidInput, err, "decode setting value"))
		return
	}
	if err := errs.ValidateIdentifier("setting key", key); err != nil {
		s.writeError(w, err)
		return
	}
	s.mutate(w, r, func() error {
		return s.sess.Apply(edit.SetSetting(s.sess.Network(), id, key, value))
	})
}

func (s *Server) handleLock(locked bool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")
		s.mutate(w, r, func() error {
			return s.sess.Apply(edit.SetLocked(s.sess.Network(), id, locked))
		})
	}
}

func (s *Server) handleVisible(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	s.mutate(w, r, func() error {
		return s.sess.Apply(edit.SetVisible(s.sess.Network(), id))
	})
}

func (s *Server) handleDOT(w http.ResponseWriter, r *http.Request) {
	var dot string
	if err := s.do(r, func() error {
		dot = render.ToDOT(s.sess.Network(), render.Options{Detailed: r.URL.Query().Has("detailed")})
		return nil
	}); err != nil {
		s.writeError(w, err)
		return
	}
	w.Header().Set("Content-Type", "text/vnd.graphviz; charset=utf-8")
	_, _ = w.Write([]byte(dot))
}

func (s *Server) handleSVG(w http.ResponseWriter, r *http.Request) {
	var dot string
	if err := s.do(r, func() error {
		dot = render.ToDOT(s.sess.Network(), render.Options{Detailed: r.URL.Query().Has("detailed")})
		return nil
	}); err != nil {
		s.writeError(w, err)
		return
	}
	svg, err := render.Render(r.Context(), s.cache, render.FormatSVG, dot, 1)
	if err != nil {
		s.writeError(w, errs.Wrap(errs.ErrCodeInternal, err, "render svg"))
		return
	}
	w.Header().Set("Content-Type", "image/svg+xml")
	_, _ = w.Write(svg)
}

type errorBody struct {
	Error string    `json:"error"`
	Code  errs.Code `json:"code,omitempty"`
}

func (s *Server) writeError(w http.ResponseWriter, err error) {
	code := rootCode(err)
	status := statusFor(code, err)
	if status >= http.StatusInternalServerError {
		s.logger.Error("request failed", "error", err)
	}
	writeJSON(w, status, errorBody{Error: errs.UserMessage(err), Code: code})
}

// rootCode returns the innermost structured code, so an EFFECT_FAILED
// wrapping a NOT_FOUND reports NOT_FOUND.
func rootCode(err error) errs.Code {
	var code errs.Code
	for e := err; e != nil; e = errors.Unwrap(e) {
		if x, ok := e.(*errs.Error); ok {
			code = x.Code
		}
	}
	return code
}

func statusFor(code errs.Code, err error) int {
	switch code {
	case errs.ErrCodeNotFound:
		return http.StatusNotFound
	case errs.ErrCodeBusy, errs.ErrCodeInvalidState, errs.ErrCodeDuplicate:
		return http.StatusConflict
	case errs.ErrCodeInvalidInput, errs.ErrCodeTypeMismatch, errs.ErrCodeUnknownKey:
		return http.StatusBadRequest
	case errs.ErrCodeEffectFailed, errs.ErrCodeCookFailed:
		return http.StatusUnprocessableEntity
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return http.StatusServiceUnavailable
	}
	return http.StatusInternalServerError
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
