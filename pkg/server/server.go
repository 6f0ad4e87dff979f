// Package server exposes the hypertile pipeline over HTTP.
//
// # Routes
//
//	GET  /healthz                 liveness and build version
//	GET  /v1/profile?n=5          curvature constants for n tiles per vertex
//	POST /v1/reduce               canonical forms of move words
//	POST /v1/tiles                placed tiles as a JSON document
//	POST /v1/render/{format}      svg, pdf, png, json or dot artifact
//	POST /v1/walk                 viewpoint frames for a movement script
//	GET  /metrics                 Prometheus metrics, when configured
//
// Request bodies of /v1/tiles and /v1/render use the JSON form of
// [pipeline.Options]. Errors are answered with an [ErrorResponse] and the
// status derived from the error code. Every response carries X-Request-ID.
package server

import (
	"context"
	stderrors "errors"
	"io"
	"math"
	"net"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/matzehuels/hypertile/pkg/pipeline"
)

// Defaults for Config.
const (
	DefaultAddr           = ":8080"
	DefaultMaxDepth       = 8
	DefaultMaxBodyBytes   = 1 << 20
	DefaultRequestTimeout = 60 * time.Second
	shutdownTimeout       = 10 * time.Second
)

// Config configures a Server.
type Config struct {
	// Addr is the listen address.
	Addr string

	// Runner executes pipeline requests. Nil uses an uncached runner.
	Runner *pipeline.Runner

	// Logger receives request logs. Defaults to a discarding logger.
	Logger *log.Logger

	// MaxDepth caps the depth a request may ask for.
	MaxDepth int

	// MaxBodyBytes caps request bodies.
	MaxBodyBytes int64

	// RequestTimeout bounds the time spent on one request.
	RequestTimeout time.Duration

	// RateLimit caps requests per second across all /v1 routes. Zero
	// disables limiting.
	RateLimit float64

	// RateBurst is the number of requests allowed above RateLimit at once.
	// Defaults to the ceiling of RateLimit.
	RateBurst int

	// Metrics, if set, is mounted at /metrics.
	Metrics http.Handler
}

func (c *Config) setDefaults() {
	if c.Addr == "" {
		c.Addr = DefaultAddr
	}
	if c.Logger == nil {
		c.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
	if c.Runner == nil {
		c.Runner = pipeline.NewRunner(nil, nil, c.Logger)
	}
	if c.MaxDepth == 0 {
		c.MaxDepth = DefaultMaxDepth
	}
	if c.MaxBodyBytes == 0 {
		c.MaxBodyBytes = DefaultMaxBodyBytes
	}
	if c.RequestTimeout == 0 {
		c.RequestTimeout = DefaultRequestTimeout
	}
	if c.RateLimit > 0 && c.RateBurst <= 0 {
		c.RateBurst = int(math.Ceil(c.RateLimit))
	}
}

// Server serves the HTTP API.
type Server struct {
	cfg    Config
	router chi.Router
}

// New creates a Server with all routes registered.
func New(cfg Config) *Server {
	cfg.setDefaults()
	s := &Server{cfg: cfg}
	s.router = s.routes()
	return s
}

// Handler returns the root HTTP handler.
func (s *Server) Handler() http.Handler { return s.router }

func (s *Server) routes() chi.Router {
	r := chi.NewRouter()
	r.Use(requestID)
	r.Use(s.logRequests)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(s.cfg.RequestTimeout))

	r.Get("/healthz", s.handleHealth)
	if s.cfg.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", s.cfg.Metrics)
	}
	r.Route("/v1", func(r chi.Router) {
		if s.cfg.RateLimit > 0 {
			r.Use(rateLimit(s.cfg.RateLimit, s.cfg.RateBurst))
		}
		r.Get("/profile", s.handleProfile)
		r.Post("/reduce", s.handleReduce)
		r.Post("/tiles", s.handleTiles)
		r.Post("/render/{format}", s.handleRender)
		r.Post("/walk", s.handleWalk)
	})
	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, r, errNotFound(r))
	})
	return r
}

// ListenAndServe serves until ctx is done, then shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.cfg.Addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
		BaseContext:       func(_ net.Listener) context.Context { return ctx },
	}

	errc := make(chan error, 1)
	go func() {
		s.cfg.Logger.Info("listening", "addr", s.cfg.Addr)
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}

	s.cfg.Logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errc; err != nil && !stderrors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
