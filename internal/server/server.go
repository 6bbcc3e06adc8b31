// Package server exposes dominant colour extraction over HTTP.
//
// Routes:
//
//	GET  /                        redirects to /healthz
//	GET  /healthz                 reports liveness and version
//	POST /dominant-colors         multipart upload with a "file" field
//	POST /dominant-colors/base64  JSON body with an "image_base64" field
//
// Both extraction routes answer with the JSON form of colour.Result. Errors
// are reported as {"detail": "..."}.
package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/hashicorp/go-hclog"

	"github.com/jmylchreest/palettevision/internal/colour"
	"github.com/jmylchreest/palettevision/internal/config"
	"github.com/jmylchreest/palettevision/internal/image"
)

// multipartOverhead is the allowance for multipart framing and form fields
// on top of the image itself.
const multipartOverhead int64 = 1 << 20

// Server serves the extraction API.
type Server struct {
	cfg       config.ServerConfig
	defaults  colour.Options
	extractor *colour.Extractor
	loader    *image.Loader
	logger    hclog.Logger
}

// Option configures a Server.
type Option func(*Server)

// WithLogger sets the logger for request and lifecycle logging.
func WithLogger(logger hclog.Logger) Option {
	return func(s *Server) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// New creates a Server from cfg. Request fields that are absent take their
// values from cfg.Extract.
func New(cfg *config.Config, extractor *colour.Extractor, opts ...Option) *Server {
	s := &Server{
		cfg:       cfg.Server,
		defaults:  cfg.Extract,
		extractor: extractor,
		loader:    image.NewLoader(cfg.Server.MaxUploadBytes, image.WithMaxPixels(cfg.Server.MaxPixels)),
		logger:    hclog.NewNullLogger(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Handler returns the HTTP handler for all routes.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /{$}", s.handleRoot)
	mux.HandleFunc("GET /healthz", s.handleHealth)
	mux.HandleFunc("POST /dominant-colors", s.handleUpload)
	mux.HandleFunc("POST /dominant-colors/base64", s.handleBase64)
	return s.logRequests(mux)
}

// ListenAndServe serves on the configured address until ctx is cancelled,
// then shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.cfg.Addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", s.cfg.Addr, err)
	}
	return s.Serve(ctx, ln)
}

// Serve serves on ln until ctx is cancelled.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	srv := &http.Server{
		Handler:           s.Handler(),
		ReadTimeout:       s.cfg.ReadTimeout,
		ReadHeaderTimeout: s.cfg.ReadTimeout,
		WriteTimeout:      s.cfg.WriteTimeout,
		ErrorLog:          s.logger.StandardLogger(&hclog.StandardLoggerOptions{InferLevels: true}),
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("listening", "addr", ln.Addr().String())
		errCh <- srv.Serve(ln)
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	s.logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.cfg.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("failed to shut down server: %w", err)
	}
	if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// statusRecorder captures the status code written by a handler.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		s.logger.Debug("request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", rec.status,
			"duration", time.Since(start))
	})
}
