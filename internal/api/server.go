// Package api provides the REST surface: POST /transcript and POST /summarize.
package api

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/anatolykoptev/go_tldr/internal/engine"
)

// DefaultMaxBodyBytes caps request bodies when Options.MaxBodyBytes is zero.
const DefaultMaxBodyBytes = 4 << 20

// Pipeline is the transcript and summary backend the handlers call.
type Pipeline interface {
	Transcript(ctx context.Context, rawURL string) (engine.TranscriptResponse, error)
	Summarize(ctx context.Context, transcript, style string) (engine.SummaryResponse, error)
}

// Options configures the HTTP server.
type Options struct {
	CORSOrigins  []string
	MaxBodyBytes int64
	Metrics      func() string
}

// Server holds dependencies for HTTP handlers.
type Server struct {
	pipeline  Pipeline
	validator *Validator
	router    *chi.Mux
	logger    *slog.Logger
	opts      Options
}

// NewServer creates a new HTTP server with all routes configured.
func NewServer(pipeline Pipeline, logger *slog.Logger, opts Options) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	if opts.MaxBodyBytes <= 0 {
		opts.MaxBodyBytes = DefaultMaxBodyBytes
	}
	if len(opts.CORSOrigins) == 0 {
		opts.CORSOrigins = []string{"*"}
	}
	s := &Server{
		pipeline:  pipeline,
		validator: NewValidator(),
		router:    chi.NewRouter(),
		logger:    logger,
		opts:      opts,
	}

	s.setupMiddleware()
	s.setupRoutes()

	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// setupMiddleware configures middleware stack.
func (s *Server) setupMiddleware() {
	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.RealIP)
	s.router.Use(requestLogger(s.logger))
	s.router.Use(middleware.Recoverer)
	s.router.Use(cors.Handler(cors.Options{
		AllowedOrigins: s.opts.CORSOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Content-Type", "X-Request-Id"},
		MaxAge:         300,
	}))
}

// setupRoutes configures all HTTP routes.
func (s *Server) setupRoutes() {
	s.router.Get("/healthz", s.handleHealth)
	s.router.Get("/metrics", s.handleMetrics)

	s.router.Post("/transcript", s.handleTranscript)
	s.router.Post("/summarize", s.handleSummarize)
}

// requestLogger writes one slog record per request.
func requestLogger(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			start := time.Now()
			defer func() {
				logger.Info("http request",
					slog.String("method", r.Method),
					slog.String("path", r.URL.Path),
					slog.Int("status", ww.Status()),
					slog.Int("bytes", ww.BytesWritten()),
					slog.Duration("elapsed", time.Since(start)),
					slog.String("request_id", middleware.GetReqID(r.Context())),
					slog.String("remote", r.RemoteAddr),
				)
			}()
			next.ServeHTTP(ww, r)
		})
	}
}
