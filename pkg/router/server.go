package router

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/getremoted/remoted/internal/id"
	"github.com/getremoted/remoted/pkg/config"
	"github.com/getremoted/remoted/pkg/logging"
	"github.com/getremoted/remoted/pkg/util"
)

const (
	// stopTimeout caps graceful shutdown of the listener and providers.
	stopTimeout = 5 * time.Second

	readTimeout  = 30 * time.Second
	writeTimeout = 30 * time.Second

	// maxBodyBytes caps inbound request bodies at 10MB.
	maxBodyBytes = 10 << 20
)

// findFreePort finds a free port starting from the given port, probing
// up to 100 ports before falling back to a kernel-assigned one.
func findFreePort(host string, startPort int) int {
	for port := startPort; port < startPort+100; port++ {
		ln, err := net.Listen("tcp", net.JoinHostPort(host, strconv.Itoa(port)))
		if err == nil {
			_ = ln.Close()
			return port
		}
	}
	ln, err := net.Listen("tcp", net.JoinHostPort(host, "0"))
	if err != nil {
		return startPort
	}
	defer func() { _ = ln.Close() }()
	tcpAddr, ok := ln.Addr().(*net.TCPAddr)
	if !ok {
		return startPort
	}
	return tcpAddr.Port
}

// Server binds a Router to an HTTP listener. A single catch-all handler
// feeds every request through the Normalizer and Dispatcher; dispatch is
// serialized so handlers run on one logical execution context, the way
// they would on a host application's main thread.
type Server struct {
	cfg     *config.Config
	router  *Router
	log     *slog.Logger
	version string

	httpServer *http.Server
	mu         sync.RWMutex
	running    bool
	startTime  time.Time
	port       int

	// dispatchMu enforces at most one in-flight Dispatch.
	dispatchMu sync.Mutex
}

// ServerOption is a functional option for configuring a Server.
type ServerOption func(*Server)

// WithServerLogger sets the operational logger for the server.
func WithServerLogger(log *slog.Logger) ServerOption {
	return func(s *Server) {
		if log != nil {
			s.log = log
		}
	}
}

// WithVersion sets the version string reported on the liveness route.
func WithVersion(version string) ServerOption {
	return func(s *Server) {
		s.version = version
	}
}

// NewServer creates a Server for the given configuration and router and
// registers the built-in system provider on it.
func NewServer(cfg *config.Config, rt *Router, opts ...ServerOption) *Server {
	if cfg == nil {
		cfg = config.Default()
	}
	if rt == nil {
		rt = New()
	}

	s := &Server{
		cfg:    cfg,
		router: rt,
		log:    logging.Nop(),
	}
	for _, opt := range opts {
		opt(s)
	}

	if err := rt.Register(&systemProvider{server: s}); err != nil {
		s.log.Warn("system provider registration failed", "error", err)
	}
	return s
}

// Router returns the router this server dispatches through.
func (s *Server) Router() *Router {
	return s.router
}

// Start binds the listener and begins serving. The listener is opened
// synchronously so the bound port is known (and publishable in the
// discovery file) before Start returns.
func (s *Server) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.running {
		return fmt.Errorf("server is already running")
	}

	host := s.cfg.Host
	if host == "" {
		host = config.DefaultHost
	}
	port := s.cfg.Port
	if port == 0 {
		port = findFreePort(host, config.DefaultPort)
	}

	ln, err := net.Listen("tcp", net.JoinHostPort(host, strconv.Itoa(port)))
	if err != nil {
		return fmt.Errorf("failed to bind %s:%d: %w", host, port, err)
	}
	if tcpAddr, ok := ln.Addr().(*net.TCPAddr); ok {
		s.port = tcpAddr.Port
	} else {
		s.port = port
	}

	s.httpServer = &http.Server{
		Handler:      http.HandlerFunc(s.handle),
		ReadTimeout:  readTimeout,
		WriteTimeout: writeTimeout,
	}

	s.log.Info("starting HTTP server", "host", host, "port", s.port)
	go func() {
		if err := s.httpServer.Serve(ln); err != nil && err != http.ErrServerClosed {
			s.log.Error("HTTP server error", "error", err)
		}
	}()

	s.running = true
	s.startTime = time.Now()
	return nil
}

// Stop gracefully shuts down the listener and notifies all providers.
func (s *Server) Stop() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.running {
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), stopTimeout)
	defer cancel()

	var errs []error
	if shutdownErrs := s.router.ShutdownProviders(ctx); len(shutdownErrs) > 0 {
		errs = append(errs, shutdownErrs...)
	}
	if s.httpServer != nil {
		if err := s.httpServer.Shutdown(ctx); err != nil {
			errs = append(errs, fmt.Errorf("HTTP shutdown: %w", err))
		}
	}

	s.running = false
	if len(errs) > 0 {
		return errs[0]
	}
	return nil
}

// IsRunning returns whether the server is running.
func (s *Server) IsRunning() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.running
}

// Port returns the actually bound port, zero before Start.
func (s *Server) Port() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.port
}

// Uptime returns the server uptime in seconds.
func (s *Server) Uptime() int64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.running {
		return 0
	}
	return int64(time.Since(s.startTime).Seconds())
}

// handle is the catch-all transport handler: /metrics is served from the
// collectors, everything else goes through Normalize and Dispatch.
func (s *Server) handle(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path == "/metrics" && s.cfg.Metrics.Enabled && s.router.metrics != nil {
		s.router.metrics.Handler().ServeHTTP(w, r)
		return
	}

	start := time.Now()
	reqID := id.Prefixed("req")

	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	body, err := io.ReadAll(r.Body)
	if err != nil {
		resp := Fail(http.StatusBadRequest, ErrCodeReadError, "failed to read request body")
		WriteHTTP(w, resp)
		s.log.Warn("request body read failed", "id", reqID, "method", r.Method, "path", r.URL.Path, "error", err)
		s.router.metrics.ObserveRequest(r.Method, resp.Status, time.Since(start))
		return
	}

	req, err := s.router.norm.Normalize(r.Method, r.URL.Path, r.URL.Query(), body)
	if err != nil {
		resp := Fail(http.StatusBadRequest, ErrCodeUnsupportedMethod, err.Error())
		WriteHTTP(w, resp)
		s.log.Debug("request rejected", "id", reqID, "method", r.Method, "path", r.URL.Path, "error", err)
		s.router.metrics.ObserveRequest(r.Method, resp.Status, time.Since(start))
		return
	}

	s.dispatchMu.Lock()
	resp := s.router.Dispatch(req)
	s.dispatchMu.Unlock()
	if resp.Status == 0 {
		resp.Status = http.StatusOK
	}

	WriteHTTP(w, resp)
	s.log.Debug("request dispatched",
		"id", reqID,
		"verb", req.Verb,
		"path", req.Path,
		"status", resp.Status,
		"duration_ms", time.Since(start).Milliseconds(),
		"body", util.TruncateBody(req.RawBody, 1024))
	s.router.metrics.ObserveRequest(string(req.Verb), resp.Status, time.Since(start))
}
