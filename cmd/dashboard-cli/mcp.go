package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/google/subcommands"
	"github.com/mark3labs/mcp-go/server"

	"github.com/bobmcallan/vire-dashboard/internal/mcp"
	"github.com/bobmcallan/vire-dashboard/internal/snapshot"
)

// mcpCmd serves the dashboard MCP tools over stdio for desktop clients.
type mcpCmd struct{}

func (*mcpCmd) Name() string     { return "mcp" }
func (*mcpCmd) Synopsis() string { return "serve the dashboard MCP tools over stdio" }
func (*mcpCmd) Usage() string {
	return `dashboard-cli [-snapshot <file>] mcp

  Reads JSON-RPC from stdin and writes responses to stdout.
  Logs go to stderr.
`
}

func (*mcpCmd) SetFlags(*flag.FlagSet) {}

func (*mcpCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	path := *snapshotPath
	if path == "" {
		cfg, err := loadConfig()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			return subcommands.ExitFailure
		}
		path = cfg.Dashboard.SnapshotPath
	}

	mcpServer := mcp.NewServer(snapshot.NewProvider(path), newLogger())
	if err := server.ServeStdio(mcpServer); err != nil {
		fmt.Fprintf(os.Stderr, "stdio server error: %v\n", err)
		return subcommands.ExitFailure
	}
	return subcommands.ExitSuccess
}
