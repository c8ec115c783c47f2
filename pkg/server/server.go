// Package server provides the HTTP conversion service: certificate
// conversion, profile management, health checks, and metrics.
package server

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"

	"caliper-hq/dccbridge/pkg/config"
	"caliper-hq/dccbridge/pkg/dcc"
	"caliper-hq/dccbridge/pkg/engine"
	"caliper-hq/dccbridge/pkg/profile/manager"
	"caliper-hq/dccbridge/pkg/telemetry/metrics"
)

// Server is the HTTP conversion service.
type Server struct {
	config     *config.Config
	logger     *slog.Logger
	profiles   *manager.Manager
	engine     engine.Engine
	generator  *dcc.Generator
	metrics    *metrics.ConversionMetrics
	registry   *prometheus.Registry
	httpServer *http.Server

	shutdownChan chan struct{}
	shutdownOnce sync.Once
	mu           sync.RWMutex
	isRunning    bool
}

// Options bundles the dependencies of the server.
type Options struct {
	Config    *config.Config
	Logger    *slog.Logger
	Profiles  *manager.Manager
	Engine    engine.Engine
	Generator *dcc.Generator
	Metrics   *metrics.ConversionMetrics
	Registry  *prometheus.Registry
}

// NewServer creates a new conversion server.
func NewServer(opts Options) (*Server, error) {
	if opts.Config == nil {
		return nil, fmt.Errorf("config is required")
	}
	if opts.Profiles == nil {
		return nil, fmt.Errorf("profile manager is required")
	}
	if opts.Engine == nil {
		return nil, fmt.Errorf("mapping engine is required")
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	generator := opts.Generator
	if generator == nil {
		generator = dcc.NewGenerator()
	}

	return &Server{
		config:       opts.Config,
		logger:       logger.With("component", "server"),
		profiles:     opts.Profiles,
		engine:       opts.Engine,
		generator:    generator,
		metrics:      opts.Metrics,
		registry:     opts.Registry,
		shutdownChan: make(chan struct{}),
	}, nil
}

// Start starts the HTTP server and blocks until shutdown.
func (s *Server) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.isRunning {
		s.mu.Unlock()
		return fmt.Errorf("server is already running")
	}
	s.isRunning = true
	s.mu.Unlock()

	handler := s.setupRoutes()

	s.httpServer = &http.Server{
		Addr:           s.config.Server.ListenAddress,
		Handler:        handler,
		ReadTimeout:    s.config.Server.ReadTimeout,
		WriteTimeout:   s.config.Server.WriteTimeout,
		IdleTimeout:    s.config.Server.IdleTimeout,
		MaxHeaderBytes: s.config.Server.MaxHeaderBytes,
	}

	errChan := make(chan error, 1)
	go func() {
		s.logger.Info("starting conversion server",
			"address", s.config.Server.ListenAddress,
		)
		if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errChan <- fmt.Errorf("server error: %w", err)
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigChan)

	select {
	case <-ctx.Done():
		s.logger.Info("context cancelled, initiating shutdown")
		return s.Shutdown(context.Background())
	case sig := <-sigChan:
		s.logger.Info("received shutdown signal", "signal", sig.String())
		return s.Shutdown(context.Background())
	case err := <-errChan:
		return err
	case <-s.shutdownChan:
		return s.Shutdown(context.Background())
	}
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error

	s.shutdownOnce.Do(func() {
		s.mu.Lock()
		if !s.isRunning {
			s.mu.Unlock()
			return
		}
		s.mu.Unlock()

		s.logger.Info("initiating graceful shutdown",
			"timeout", s.config.Server.ShutdownTimeout.String(),
		)

		shutdownCtx, cancel := context.WithTimeout(ctx, s.config.Server.ShutdownTimeout)
		defer cancel()

		if s.httpServer != nil {
			if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
				s.logger.Error("error during server shutdown", "error", err)
				shutdownErr = fmt.Errorf("server shutdown error: %w", err)
			}
		}

		s.mu.Lock()
		s.isRunning = false
		s.mu.Unlock()

		s.logger.Info("conversion server stopped")
	})

	return shutdownErr
}

// IsRunning returns true if the server is running.
func (s *Server) IsRunning() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.isRunning
}

// Handler returns the configured HTTP handler, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.setupRoutes()
}

// setupRoutes configures HTTP routes and the middleware chain.
func (s *Server) setupRoutes() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("POST /v1/convert", s.handleConvert)
	mux.HandleFunc("GET /v1/profiles", s.handleListProfiles)
	mux.HandleFunc("POST /v1/profiles", s.handlePutProfile)
	mux.HandleFunc("GET /v1/profiles/{name}", s.handleGetProfile)
	mux.HandleFunc("DELETE /v1/profiles/{name}", s.handleDeleteProfile)

	if s.config.Telemetry.Health.Enabled {
		mux.HandleFunc("GET "+s.config.Telemetry.Health.LivenessPath, s.handleHealthz)
		mux.HandleFunc("GET "+s.config.Telemetry.Health.ReadinessPath, s.handleReadyz)
	}
	if s.config.Telemetry.Metrics.Enabled && s.registry != nil {
		mux.Handle("GET "+s.config.Telemetry.Metrics.Path, metrics.Handler(s.registry))
	}

	var handler http.Handler = mux
	handler = LoggingMiddleware(s.logger)(handler)
	handler = RequestIDMiddleware(handler)
	handler = RecoveryMiddleware(s.logger)(handler)
	return handler
}
