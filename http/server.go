package http

import (
	"context"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/fwojciec/webtools"
)

// Server defaults.
const (
	DefaultAddr            = ":8080"
	DefaultAnalysisTimeout = 15 * time.Second
	ShutdownTimeout        = 5 * time.Second

	// MaxRequestBytes bounds the size of a tool request body.
	MaxRequestBytes = 1 << 20
)

// Server serves the tools API over HTTP.
type Server struct {
	ln     net.Listener
	server *http.Server
	mux    *http.ServeMux

	// Addr is the bind address, e.g. ":8080".
	Addr string

	Catalog *webtools.Catalog

	// Analyzer adds commentary to tool results. Optional.
	Analyzer webtools.Analyzer

	// Runs records tool usage. Optional.
	Runs webtools.RunService

	// Limiter throttles API clients. Optional.
	Limiter webtools.RateLimiter

	// Metrics is served on GET /metrics when set.
	Metrics http.Handler

	Logger *slog.Logger

	AnalysisTimeout time.Duration
}

// NewServer returns a new Server with routes registered.
func NewServer() *Server {
	s := &Server{
		mux:             http.NewServeMux(),
		Addr:            DefaultAddr,
		Logger:          slog.New(slog.DiscardHandler),
		AnalysisTimeout: DefaultAnalysisTimeout,
	}
	s.server = &http.Server{
		Handler:           s,
		ReadHeaderTimeout: 10 * time.Second,
	}

	s.mux.HandleFunc("GET /healthz", s.handleHealth)
	s.mux.HandleFunc("GET /api/tools", s.handleListTools)
	s.mux.HandleFunc("GET /api/tools/{category}/{tool}", s.handleGetTool)
	s.mux.HandleFunc("GET /api/stats", s.handleStats)
	s.mux.HandleFunc("POST /api/{category}/{tool}", s.handleRunTool)
	s.mux.HandleFunc("GET /metrics", s.handleMetrics)
	return s
}

// Open starts listening on Addr and serves requests in the background.
func (s *Server) Open() (err error) {
	if s.ln, err = net.Listen("tcp", s.Addr); err != nil {
		return err
	}
	go func() {
		if err := s.server.Serve(s.ln); err != nil && err != http.ErrServerClosed {
			s.Logger.Error("http server stopped", "err", err)
		}
	}()
	return nil
}

// Close gracefully shuts down the server.
func (s *Server) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), ShutdownTimeout)
	defer cancel()
	return s.server.Shutdown(ctx)
}

// Port returns the TCP port of the running server, or 0 if not open.
func (s *Server) Port() int {
	if s.ln == nil {
		return 0
	}
	return s.ln.Addr().(*net.TCPAddr).Port
}

// ServeHTTP runs the request through recovery, logging and rate limiting
// before routing it.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	var h http.Handler = s.mux
	h = s.rateLimit(h)
	h = s.logRequests(h)
	h = s.recoverPanics(h)
	h.ServeHTTP(w, r)
}
