package server

import (
	"net/http"

	"github.com/bobmcallan/vire-dashboard/internal/handlers"
)

// setupRoutes configures all HTTP routes.
func (s *Server) setupRoutes() *http.ServeMux {
	mux := http.NewServeMux()

	// Rendered dashboard page
	mux.Handle("/", s.app.DashboardHandler)

	// Static files (CSS, JS)
	mux.Handle("/static/", s.app.StaticHandler)

	// MCP endpoint (JSON-RPC over HTTP)
	if s.app.MCPHandler != nil {
		mux.Handle("/mcp", s.app.MCPHandler)
	}

	// Dashboard data API
	api := s.app.APIHandler
	mux.HandleFunc("/api/dashboard/kpis", api.KPIsHandler)
	mux.HandleFunc("/api/dashboard/charts", api.ChartsHandler)
	mux.HandleFunc("/api/dashboard/charts/", api.ChartsHandler)
	mux.HandleFunc("/api/dashboard/activity", api.ActivityHandler)
	mux.HandleFunc("/api/dashboard/snapshot", api.SnapshotHandler)
	mux.HandleFunc("/api/dashboard/cache", func(w http.ResponseWriter, r *http.Request) {
		RouteByMethod(w, r, MethodRouter{
			"GET":    s.handleCacheStatus,
			"DELETE": s.handleCacheClear,
		})
	})

	mux.HandleFunc("/api/health", s.app.HealthHandler.ServeHTTP)
	mux.HandleFunc("/api/version", s.app.VersionHandler.ServeHTTP)

	// 404 handler for unmatched API routes
	mux.HandleFunc("/api/", s.handleNotFound)

	return mux
}

// handleCacheStatus reports the render cache state.
func (s *Server) handleCacheStatus(w http.ResponseWriter, r *http.Request) {
	handlers.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"enabled": s.app.Cache.Enabled(),
		"entries": s.app.Cache.Len(),
	})
}

// handleCacheClear drops rendered pages and payloads so the next request
// re-reads the snapshot. ?kind=page (or kpis, charts, chart, activity)
// limits the purge to one kind of entry.
func (s *Server) handleCacheClear(w http.ResponseWriter, r *http.Request) {
	kind := r.URL.Query().Get("kind")
	if kind == "" {
		s.app.Cache.Clear()
		s.logger.Info().Msg("render cache cleared")
		w.WriteHeader(http.StatusNoContent)
		return
	}
	s.app.Cache.InvalidateKind(kind)
	s.logger.Info().Str("kind", kind).Int("remaining", s.app.Cache.Len()).Msg("render cache kind invalidated")
	w.WriteHeader(http.StatusNoContent)
}

// handleNotFound returns a JSON 404 for unmatched API routes.
func (s *Server) handleNotFound(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusNotFound)
	w.Write([]byte(`{"error":"Not Found","message":"The requested endpoint does not exist"}`))
}
