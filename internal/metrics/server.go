package metrics

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// ServerConfig sizes the observability endpoint the engine host exposes.
type ServerConfig struct {
	Port        int
	MetricsPath string
	HealthPath  string
}

// DefaultServerConfig returns the conventional port and paths.
func DefaultServerConfig() ServerConfig {
	return ServerConfig{Port: 9090, MetricsPath: "/metrics", HealthPath: "/health"}
}

// HealthCheck probes one subsystem; a non-nil error marks the process
// degraded on the health and readiness endpoints.
type HealthCheck func(ctx context.Context) error

// Server serves the Prometheus registry plus liveness/readiness probes
// for the engine host process.
type Server struct {
	cfg     ServerConfig
	logger  *slog.Logger
	httpSrv *http.Server
	started time.Time

	mu     sync.Mutex
	checks map[string]HealthCheck
}

// NewServer builds a Server over cfg, filling zero fields from
// DefaultServerConfig.
func NewServer(cfg ServerConfig, logger *slog.Logger) *Server {
	def := DefaultServerConfig()
	if cfg.Port == 0 {
		cfg.Port = def.Port
	}
	if cfg.MetricsPath == "" {
		cfg.MetricsPath = def.MetricsPath
	}
	if cfg.HealthPath == "" {
		cfg.HealthPath = def.HealthPath
	}
	if logger == nil {
		logger = slog.Default()
	}

	s := &Server{
		cfg:    cfg,
		logger: logger,
		checks: make(map[string]HealthCheck),
	}

	mux := http.NewServeMux()
	mux.Handle(cfg.MetricsPath, promhttp.Handler())
	mux.HandleFunc(cfg.HealthPath, s.handleHealth)
	mux.HandleFunc("/livez", s.handleLive)
	mux.HandleFunc("/readyz", s.handleReady)

	s.httpSrv = &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}
	return s
}

// RegisterHealthCheck adds (or replaces) a named subsystem probe consulted
// by the health and readiness endpoints.
func (s *Server) RegisterHealthCheck(name string, check HealthCheck) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.checks[name] = check
}

// Start binds the listener and begins serving in a background goroutine.
// Binding happens synchronously so the caller learns about a port
// conflict immediately rather than from a log line.
func (s *Server) Start() error {
	ln, err := net.Listen("tcp", s.httpSrv.Addr)
	if err != nil {
		return fmt.Errorf("bind metrics listener: %w", err)
	}
	s.started = time.Now()

	go func() {
		if err := s.httpSrv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error("metrics server stopped", "err", err)
		}
	}()

	s.logger.Info("metrics server listening", "addr", s.httpSrv.Addr, "metrics_path", s.cfg.MetricsPath)
	return nil
}

// Shutdown stops the server, waiting for in-flight requests up to ctx's
// deadline.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpSrv.Shutdown(ctx)
}

// Uptime reports how long the server has been running, zero before Start.
func (s *Server) Uptime() time.Duration {
	if s.started.IsZero() {
		return 0
	}
	return time.Since(s.started)
}

// runChecks probes every registered subsystem, returning per-check status
// text and whether all passed.
func (s *Server) runChecks(ctx context.Context) (map[string]string, bool) {
	s.mu.Lock()
	checks := make(map[string]HealthCheck, len(s.checks))
	for name, check := range s.checks {
		checks[name] = check
	}
	s.mu.Unlock()

	results := make(map[string]string, len(checks))
	healthy := true
	for name, check := range checks {
		if err := check(ctx); err != nil {
			results[name] = err.Error()
			healthy = false
			continue
		}
		results[name] = "ok"
	}
	return results, healthy
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	results, healthy := s.runChecks(r.Context())

	status := "healthy"
	code := http.StatusOK
	if !healthy {
		status = "degraded"
		code = http.StatusServiceUnavailable
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(map[string]any{
		"status":         status,
		"uptime_seconds": int64(s.Uptime().Seconds()),
		"checks":         results,
	})
}

func (s *Server) handleLive(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	if _, healthy := s.runChecks(r.Context()); !healthy {
		http.Error(w, "not ready", http.StatusServiceUnavailable)
		return
	}
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ready"))
}
