package mcp

import (
	"context"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	common "github.com/bobmcallan/vire-dashboard/internal/common"
	"github.com/bobmcallan/vire-dashboard/internal/dashboard"
	"github.com/bobmcallan/vire-dashboard/internal/snapshot"
)

// PortfolioSummary is the result of get_portfolio_summary.
type PortfolioSummary struct {
	PortfolioName string            `json:"portfolio_name"`
	KPIs          map[string]string `json:"kpis"`
	Holdings      int               `json:"holdings"`
	Transactions  int               `json:"transactions"`
	MetricPoints  int               `json:"metric_points"`
}

// ChartInfo describes one dashboard chart for list_charts.
type ChartInfo struct {
	ID    string              `json:"id"`
	Type  dashboard.ChartType `json:"type"`
	Label string              `json:"label,omitempty"`
}

// RegisterDashboardTools registers the read-only dashboard tools and returns
// how many were added.
func RegisterDashboardTools(s *server.MCPServer, provider snapshot.Provider, logger *common.Logger) int {
	tools := []server.ServerTool{
		{Tool: VersionTool(), Handler: VersionToolHandler()},
		{Tool: summaryTool(), Handler: summaryHandler(provider, logger)},
		{Tool: listChartsTool(), Handler: listChartsHandler()},
		{Tool: chartTool(), Handler: chartHandler(provider, logger)},
		{Tool: activityTool(), Handler: activityHandler(provider, logger)},
	}
	s.AddTools(tools...)
	return len(tools)
}

func summaryTool() mcp.Tool {
	return mcp.NewTool("get_portfolio_summary",
		mcp.WithDescription("Get the dashboard KPI values exactly as displayed, keyed by element id."),
	)
}

func summaryHandler(provider snapshot.Provider, logger *common.Logger) server.ToolHandlerFunc {
	return func(ctx context.Context, r mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		s, errResult := loadSnapshot(ctx, provider, logger, "get_portfolio_summary")
		if errResult != nil {
			return errResult, nil
		}
		return jsonResult(PortfolioSummary{
			PortfolioName: s.DisplayName(),
			KPIs:          dashboard.KPIs(s),
			Holdings:      len(s.Holdings),
			Transactions:  len(s.Transactions),
			MetricPoints:  len(s.MetricsHistory),
		}), nil
	}
}

func listChartsTool() mcp.Tool {
	return mcp.NewTool("list_charts",
		mcp.WithDescription("List the dashboard charts in page order with their chart type."),
	)
}

func listChartsHandler() server.ToolHandlerFunc {
	return func(ctx context.Context, r mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		out := make([]ChartInfo, len(dashboard.Charts))
		for i, c := range dashboard.Charts {
			out[i] = ChartInfo{ID: c.ID, Type: c.Type, Label: c.Label}
		}
		return jsonResult(out), nil
	}
}

func chartIDs() []string {
	ids := make([]string, len(dashboard.Charts))
	for i, c := range dashboard.Charts {
		ids[i] = c.ID
	}
	return ids
}

func chartTool() mcp.Tool {
	return mcp.NewTool("get_chart",
		mcp.WithDescription("Get the Chart.js configuration of one dashboard chart."),
		mcp.WithString("chart",
			mcp.Required(),
			mcp.Description("Chart container id, e.g. valueChart"),
			mcp.Enum(chartIDs()...),
		),
	)
}

func chartHandler(provider snapshot.Provider, logger *common.Logger) server.ToolHandlerFunc {
	return func(ctx context.Context, r mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		id := r.GetString("chart", "")
		if id == "" {
			return errorResult("chart is required"), nil
		}
		def, ok := dashboard.ChartByID(id)
		if !ok {
			return errorResult(fmt.Sprintf("unknown chart %q", id)), nil
		}

		s, errResult := loadSnapshot(ctx, provider, logger, "get_chart")
		if errResult != nil {
			return errResult, nil
		}
		spec, err := def.Spec(s)
		if err != nil {
			return errorResult(fmt.Sprintf("chart %s cannot be built: %v", id, err)), nil
		}
		return jsonResult(spec), nil
	}
}

func activityTool() mcp.Tool {
	return mcp.NewTool("get_monthly_activity",
		mcp.WithDescription("Count transactions per YYYY-MM month, months in ascending order."),
	)
}

func activityHandler(provider snapshot.Provider, logger *common.Logger) server.ToolHandlerFunc {
	return func(ctx context.Context, r mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		s, errResult := loadSnapshot(ctx, provider, logger, "get_monthly_activity")
		if errResult != nil {
			return errResult, nil
		}
		labels, counts := dashboard.MonthlyActivity(s.Transactions)
		type month struct {
			Month string `json:"month"`
			Count int    `json:"count"`
		}
		out := make([]month, len(labels))
		for i := range labels {
			out[i] = month{Month: labels[i], Count: int(counts[i])}
		}
		return jsonResult(out), nil
	}
}
