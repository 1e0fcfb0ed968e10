package mcp

import (
	"net/http"

	mcpserver "github.com/mark3labs/mcp-go/server"

	common "github.com/bobmcallan/vire-dashboard/internal/common"
	"github.com/bobmcallan/vire-dashboard/internal/config"
	"github.com/bobmcallan/vire-dashboard/internal/snapshot"
)

// Handler is the HTTP handler for the MCP endpoint.
// It wraps mcp-go's StreamableHTTPServer and delegates to it.
type Handler struct {
	server     *mcpserver.MCPServer
	streamable *mcpserver.StreamableHTTPServer
	logger     *common.Logger
}

// NewHandler creates the MCP handler exposing the dashboard tools.
func NewHandler(provider snapshot.Provider, logger *common.Logger) *Handler {
	mcpSrv := NewServer(provider, logger)

	streamable := mcpserver.NewStreamableHTTPServer(mcpSrv,
		mcpserver.WithStateLess(true),
		mcpserver.WithHTTPContextFunc(requestIDFromHTTP),
	)

	return &Handler{
		server:     mcpSrv,
		streamable: streamable,
		logger:     logger,
	}
}

// NewServer builds the MCP server with every dashboard tool registered.
func NewServer(provider snapshot.Provider, logger *common.Logger) *mcpserver.MCPServer {
	mcpSrv := mcpserver.NewMCPServer(
		"vire-dashboard",
		config.CurrentBuild().Version,
		mcpserver.WithToolCapabilities(false),
	)
	if logger != nil {
		logger = logger.WithComponent("mcp")
	}
	toolCount := RegisterDashboardTools(mcpSrv, provider, logger)

	if logger != nil {
		logger.Info().Int("tools", toolCount).Msg("MCP handler initialized")
	}
	return mcpSrv
}

// Server returns the underlying MCP server.
func (h *Handler) Server() *mcpserver.MCPServer {
	return h.server
}

// ServeHTTP delegates to the mcp-go StreamableHTTPServer.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.streamable.ServeHTTP(w, r)
}
