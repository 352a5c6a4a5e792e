// Package server exposes interview sessions over a JSON HTTP API and as MCP
// tools on the same listener.
package server

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/samber/oops"
	"go.uber.org/zap"

	"github.com/PratikChakraborty015/ai-interview-simulator/internal/ai"
	"github.com/PratikChakraborty015/ai-interview-simulator/internal/metrics"
	"github.com/PratikChakraborty015/ai-interview-simulator/internal/session"
)

// Listener defaults, matching the original service port.
const (
	DefaultAddress         = ":8000"
	DefaultReadTimeout     = 15 * time.Second
	DefaultWriteTimeout    = 90 * time.Second
	DefaultShutdownTimeout = 10 * time.Second
)

// Config holds the listener settings. Zero values fall back to the Default* constants.
type Config struct {
	Address         string        `mapstructure:"address"`
	ReadTimeout     time.Duration `mapstructure:"read-timeout"`
	WriteTimeout    time.Duration `mapstructure:"write-timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown-timeout"`
}

// Scorer evaluates an answer outside any session.
type Scorer interface {
	Score(ctx context.Context, question, answer string) ai.Evaluation
}

// Deps aggregates the collaborators of a Server.
type Deps struct {
	Sessions *session.Store
	Scorer   Scorer
	Metrics  *metrics.Metrics
	Logger   *zap.Logger
	Version  string
}

// Server serves the REST API and the MCP endpoint over one handler.
type Server struct {
	cfg      Config
	sessions *session.Store
	scorer   Scorer
	metrics  *metrics.Metrics
	logger   *zap.Logger
	version  string
	handler  http.Handler
}

// New creates a Server, filling unset Config fields with defaults.
func New(cfg Config, deps Deps) *Server {
	if cfg.Address == "" {
		cfg.Address = DefaultAddress
	}
	if cfg.ReadTimeout <= 0 {
		cfg.ReadTimeout = DefaultReadTimeout
	}
	if cfg.WriteTimeout <= 0 {
		cfg.WriteTimeout = DefaultWriteTimeout
	}
	if cfg.ShutdownTimeout <= 0 {
		cfg.ShutdownTimeout = DefaultShutdownTimeout
	}

	log := deps.Logger
	if log == nil {
		log = zap.NewNop()
	}

	s := &Server{
		cfg:      cfg,
		sessions: deps.Sessions,
		scorer:   deps.Scorer,
		metrics:  deps.Metrics,
		logger:   log,
		version:  deps.Version,
	}
	s.handler = s.routes()
	return s
}

// Handler returns the root handler with REST and MCP routes.
func (s *Server) Handler() http.Handler {
	return s.handler
}

func (s *Server) routes() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /get-question", s.handleGetQuestion)
	mux.HandleFunc("POST /submit-answer", s.handleSubmitAnswer)
	mux.HandleFunc("POST /evaluate", s.handleEvaluate)
	mux.HandleFunc("POST /end-interview", s.handleEndInterview)
	mux.HandleFunc("GET /sessions/{user_id}", s.handleGetSession)
	mux.HandleFunc("GET /metrics", s.handleMetrics)
	mux.HandleFunc("GET /healthz", s.handleHealth)
	mux.Handle("/mcp", s.withoutWriteDeadline(s.mcpHandler()))
	return s.logRequests(mux)
}

// Run listens on the configured address and serves until ctx is cancelled,
// then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	listener, err := new(net.ListenConfig).Listen(ctx, "tcp", s.cfg.Address)
	if err != nil {
		return oops.In("HTTP Server").
			With("address", s.cfg.Address).
			Wrapf(err, "failed to create a listener")
	}

	return s.Serve(ctx, listener)
}

// Serve is Run on an existing listener.
func (s *Server) Serve(ctx context.Context, listener net.Listener) error {
	httpServer := &http.Server{
		Handler:           s.handler,
		ReadTimeout:       s.cfg.ReadTimeout,
		ReadHeaderTimeout: s.cfg.ReadTimeout,
		WriteTimeout:      s.cfg.WriteTimeout,
	}

	serveErr := make(chan error, 1)
	go func() {
		s.logger.Info("serving HTTP", zap.String("address", listener.Addr().String()))
		err := httpServer.Serve(listener)
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	select {
	case err := <-serveErr:
		if err != nil {
			return oops.In("HTTP Server").Wrapf(err, "failed to serve")
		}
		return nil
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.cfg.ShutdownTimeout)
	defer cancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		return oops.In("HTTP Server").Wrapf(err, "failed shutting down HTTP server")
	}

	s.logger.Info("completed graceful shutdown of HTTP server")
	return nil
}

// withoutWriteDeadline lifts the server WriteTimeout for next. Streamable MCP
// responses stay open for server notifications far longer than any REST call.
func (s *Server) withoutWriteDeadline(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := http.NewResponseController(w).SetWriteDeadline(time.Time{}); err != nil {
			s.logger.Debug("cannot clear write deadline", zap.Error(err))
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		s.logger.Debug("request served",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", rec.status),
			zap.Duration("duration", time.Since(start)),
		)
	})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

// Flush keeps streaming MCP responses working through the recorder.
func (r *statusRecorder) Flush() {
	if f, ok := r.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}

func (r *statusRecorder) Unwrap() http.ResponseWriter {
	return r.ResponseWriter
}
