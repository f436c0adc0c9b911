// Package server implements the HTTP endpoint, middleware, and request handlers that expose metrics.
package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog/log"
	"github.com/woozymasta/cs2-exporter/assets"
	"github.com/woozymasta/cs2-exporter/internal/config"
)

// New creates a new Server exposing registry with the provided configuration.
func New(cfg *config.Config, registry *prometheus.Registry) (*Server, error) {
	landing, err := assets.Template("landing.html")
	if err != nil {
		return nil, fmt.Errorf("failed to parse landing page: %w", err)
	}

	return &Server{
		registry:       registry,
		landing:        landing,
		address:        cfg.Web.Address,
		metricsPath:    cfg.Web.MetricsPath,
		authToken:      cfg.Web.AuthToken,
		trustProxy:     cfg.Web.TrustProxy,
		hardLimitCount: cfg.RateLimit.Count,
		hardLimitWin:   cfg.RateLimit.Window,
		target:         net.JoinHostPort(cfg.Target.Host, fmt.Sprint(cfg.Target.Port)),

		shutdown: make(chan struct{}),
	}, nil
}

// Run configures the HTTP routes and returns the main handler.
func (s *Server) Run() http.Handler {
	mux := http.NewServeMux()

	metrics := promhttp.InstrumentMetricHandler(s.registry, promhttp.HandlerFor(s.registry, promhttp.HandlerOpts{
		ErrorLog:          promLogger{},
		ErrorHandling:     promhttp.ContinueOnError,
		EnableOpenMetrics: true,
	}))
	if s.authToken != "" {
		metrics = BearerAuthMiddleware(s.authToken, metrics)
	}

	mux.Handle("GET "+s.metricsPath, metrics)
	mux.Handle("GET /healthz", http.HandlerFunc(handleHealth))
	mux.Handle("GET /", http.HandlerFunc(s.handleIndex))

	var handler http.Handler = mux
	if s.hardLimitCount > 0 {
		handler = s.RateLimitMiddleware(handler)
	}

	return s.LoggingMiddleware(handler)
}

// Listen binds the configured address. It must be called before Serve.
func (s *Server) Listen() error {
	ln, err := net.Listen("tcp", s.address)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", s.address, err)
	}

	s.listener = ln
	s.httpServer = &http.Server{
		Handler:      s.Run(),
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	return nil
}

// Addr returns the bound address, or the configured one before Listen.
func (s *Server) Addr() string {
	if s.listener != nil {
		return s.listener.Addr().String()
	}

	return s.address
}

// Serve accepts connections on the bound listener until Shutdown.
// It returns nil after a graceful shutdown.
func (s *Server) Serve() error {
	if s.httpServer == nil {
		return errors.New("server is not listening")
	}

	log.Info().Str("address", s.Addr()).Str("path", s.metricsPath).Msg("Exporter listening")
	if err := s.httpServer.Serve(s.listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}

	return nil
}

// Shutdown gracefully stops the HTTP server and background routines.
func (s *Server) Shutdown(ctx context.Context) error {
	select {
	case <-s.shutdown:
	default:
		close(s.shutdown)
	}

	if s.httpServer == nil {
		return nil
	}

	return s.httpServer.Shutdown(ctx)
}

// promLogger forwards promhttp errors to the global logger.
type promLogger struct{}

func (promLogger) Println(v ...any) {
	log.Error().Msg(fmt.Sprint(v...))
}
