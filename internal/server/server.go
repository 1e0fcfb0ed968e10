package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/bobmcallan/vire-dashboard/internal/app"
	common "github.com/bobmcallan/vire-dashboard/internal/common"
)

// Pages render from an in-memory snapshot, so reads stay short. Writes allow
// for MCP streamable responses.
const (
	readHeaderTimeout = 5 * time.Second
	readTimeout       = 15 * time.Second
	writeTimeout      = 60 * time.Second
	idleTimeout       = 120 * time.Second
)

// Server serves the dashboard page, its JSON API and the MCP endpoint.
type Server struct {
	app     *app.App
	handler http.Handler
	http    *http.Server
	logger  *common.Logger
}

// New wires routes and middleware for application.
func New(application *app.App) *Server {
	s := &Server{
		app:    application,
		logger: application.Logger,
	}
	s.handler = s.withMiddleware(s.setupRoutes())

	srv := application.Config.Server
	s.http = &http.Server{
		Addr:              net.JoinHostPort(srv.Host, strconv.Itoa(srv.Port)),
		Handler:           s.handler,
		ReadHeaderTimeout: readHeaderTimeout,
		ReadTimeout:       readTimeout,
		WriteTimeout:      writeTimeout,
		IdleTimeout:       idleTimeout,
	}
	return s
}

// Start listens on the configured address and serves until Shutdown.
func (s *Server) Start() error {
	ln, err := net.Listen("tcp", s.http.Addr)
	if err != nil {
		return fmt.Errorf("listen on %s: %w", s.http.Addr, err)
	}
	return s.Serve(ln)
}

// Serve serves requests accepted on ln until Shutdown.
func (s *Server) Serve(ln net.Listener) error {
	s.logListening(ln.Addr().String())

	if err := s.http.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("server failed: %w", err)
	}
	return nil
}

func (s *Server) logListening(addr string) {
	dash := s.app.Config.Dashboard
	source := dash.SnapshotPath
	if source == "" {
		source = "built-in sample"
	}

	s.logger.Info().
		Str("url", "http://"+addr).
		Str("mcp", "http://"+addr+"/mcp").
		Str("snapshot", source).
		Str("default_tab", dash.DefaultTab).
		Bool("cache", s.app.Cache.Enabled()).
		Dur("cache_ttl", dash.CacheTTL()).
		Int("cache_max_entries", dash.CacheMaxEntries).
		Msg("dashboard listening")
}

// Shutdown stops accepting requests and waits for in-flight ones.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info().Int("cached_entries", s.app.Cache.Len()).Msg("dashboard shutting down")

	if err := s.http.Shutdown(ctx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}
	return nil
}

// Handler returns the routed, middleware-wrapped handler.
func (s *Server) Handler() http.Handler {
	return s.handler
}
