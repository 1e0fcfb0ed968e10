package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/google/subcommands"

	"github.com/bobmcallan/vire-dashboard/internal/dashboard"
	"github.com/bobmcallan/vire-dashboard/internal/handlers"
)

// renderCmd writes the fully rendered dashboard page as static HTML.
type renderCmd struct {
	tab      string
	output   string
	pagesDir string
}

func (*renderCmd) Name() string     { return "render" }
func (*renderCmd) Synopsis() string { return "render the dashboard page to static HTML" }
func (*renderCmd) Usage() string {
	return `dashboard-cli [-snapshot <file>] render [-tab <panel>] [-o <file>]

  Runs the same render pass as the server and writes the finished page.
  KPI text, tables, chart specifications and the active tab are baked in.
`
}

func (c *renderCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.tab, "tab", "", "Panel to mark active (overview, holdings, analytics, transactions)")
	f.StringVar(&c.output, "o", "", "Output file. Defaults to stdout.")
	f.StringVar(&c.pagesDir, "pages", "", "Pages directory. Auto-discovered by default.")
}

func (c *renderCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	s, err := loadSnapshot(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}

	pagesDir := c.pagesDir
	if pagesDir == "" {
		pagesDir = handlers.FindPagesDir()
	}
	templates, err := handlers.LoadTemplates(pagesDir)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}

	body, err := handlers.RenderPage(templates, dashboard.NewPage(newLogger()), s, c.tab, false)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error rendering dashboard: %v\n", err)
		return subcommands.ExitFailure
	}

	if c.output == "" {
		os.Stdout.Write(body)
		return subcommands.ExitSuccess
	}
	if err := os.WriteFile(c.output, body, 0o644); err != nil {
		fmt.Fprintf(os.Stderr, "Error writing %s: %v\n", c.output, err)
		return subcommands.ExitFailure
	}
	fmt.Fprintf(os.Stderr, "Wrote %s (%d bytes)\n", c.output, len(body))
	return subcommands.ExitSuccess
}
