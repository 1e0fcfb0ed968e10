package mcp

import (
	"context"
	"encoding/json"

	"github.com/mark3labs/mcp-go/mcp"

	common "github.com/bobmcallan/vire-dashboard/internal/common"
	"github.com/bobmcallan/vire-dashboard/internal/models"
	"github.com/bobmcallan/vire-dashboard/internal/snapshot"
)

// errorResult creates an MCP error result.
func errorResult(message string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			mcp.NewTextContent(message),
		},
		IsError: true,
	}
}

// jsonResult encodes v as the text content of a tool result.
func jsonResult(v interface{}) *mcp.CallToolResult {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return errorResult("failed to encode result: " + err.Error())
	}
	return &mcp.CallToolResult{
		Content: []mcp.Content{mcp.NewTextContent(string(out))},
	}
}

// loadSnapshot fetches the snapshot for a tool call, logging failures with
// the request's correlation id.
func loadSnapshot(ctx context.Context, provider snapshot.Provider, logger *common.Logger, tool string) (*models.Snapshot, *mcp.CallToolResult) {
	s, err := provider.Snapshot(ctx)
	if err == nil {
		return s, nil
	}
	if logger != nil {
		l := logger
		if id, ok := RequestID(ctx); ok {
			l = logger.WithCorrelationId(id)
		}
		l.Warn().Str("tool", tool).Str("error", err.Error()).Msg("snapshot unavailable for tool call")
	}
	return nil, errorResult("snapshot unavailable: " + err.Error())
}
