// Package api provides the HTTP API for Draftwise billing.
package api

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/draftwise/draftwise/pkg/observability"
)

// Server is the HTTP API server.
type Server struct {
	mux     *http.ServeMux
	server  *http.Server
	logger  *slog.Logger
	metrics observability.Metrics
	billing *BillingHandler
	webhook *WebhookHandler
}

// ServerConfig holds configuration for the API server.
type ServerConfig struct {
	Addr         string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration
}

// DefaultServerConfig returns the default server configuration.
func DefaultServerConfig() ServerConfig {
	return ServerConfig{
		Addr:         "0.0.0.0:8080",
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
}

// NewServer creates a new API server.
func NewServer(cfg ServerConfig, billing *BillingHandler, webhook *WebhookHandler, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}

	mux := http.NewServeMux()

	s := &Server{
		mux:     mux,
		logger:  logger,
		metrics: observability.NoopMetrics{},
		billing: billing,
		webhook: webhook,
	}

	s.registerRoutes()

	s.server = &http.Server{
		Addr:         cfg.Addr,
		Handler:      s.instrument(s.mux),
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
		IdleTimeout:  cfg.IdleTimeout,
	}

	return s
}

// registerRoutes sets up the API routes.
func (s *Server) registerRoutes() {
	// Health check
	s.mux.HandleFunc("GET /health", s.handleHealth)

	// Billing API v1
	s.mux.HandleFunc("GET /api/v1/billing/subscription", s.billing.GetSubscription)
	s.mux.HandleFunc("GET /api/v1/billing/preview", s.billing.PreviewChange)
	s.mux.HandleFunc("POST /api/v1/billing/change", s.billing.ChangePlan)
	s.mux.HandleFunc("POST /api/v1/billing/cancel", s.billing.Cancel)
	s.mux.HandleFunc("POST /api/v1/billing/resume", s.billing.Resume)
	s.mux.HandleFunc("POST /api/v1/billing/scheduled-change/cancel", s.billing.CancelScheduledChange)

	// Stripe webhooks
	if s.webhook != nil {
		s.mux.HandleFunc("POST /webhooks/stripe", s.webhook.HandleStripe)
	}
}

// handleHealth handles health check requests.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status": "healthy",
		"time":   time.Now().UTC().Format(time.RFC3339),
	})
}

// SetMetrics replaces the metrics sink. Must be called before Start.
func (s *Server) SetMetrics(m observability.Metrics) {
	if m == nil {
		m = observability.NoopMetrics{}
	}
	s.metrics = m
	s.server.Handler = s.instrument(s.mux)
}

// instrument wraps a handler to record request counts and latency.
func (s *Server) instrument(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		sw := &statusWriter{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(sw, r)

		tags := []observability.Tag{
			observability.T("method", r.Method),
			observability.T("path", r.URL.Path),
			observability.T("status", fmt.Sprintf("%d", sw.status)),
		}
		s.metrics.Counter("http.requests", 1, tags...)
		s.metrics.Timing("http.request_duration", time.Since(start), tags...)
	})
}

type statusWriter struct {
	http.ResponseWriter
	status int
}

func (w *statusWriter) WriteHeader(status int) {
	w.status = status
	w.ResponseWriter.WriteHeader(status)
}

// Handler returns the underlying HTTP handler, for tests.
func (s *Server) Handler() http.Handler {
	return s.instrument(s.mux)
}

// Start starts the API server.
func (s *Server) Start() error {
	s.logger.Info("starting API server",
		"addr", s.server.Addr,
	)
	return s.server.ListenAndServe()
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("shutting down API server")
	return s.server.Shutdown(ctx)
}

// writeJSON writes a JSON response.
func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		if err := json.NewEncoder(w).Encode(data); err != nil {
			slog.Error("failed to encode JSON response", "error", err)
		}
	}
}

// writeError writes a JSON error response.
func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{
		"error":   http.StatusText(status),
		"message": message,
	})
}

// APIError represents an API error.
type APIError struct {
	Status  int    `json:"-"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

func (e *APIError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}
