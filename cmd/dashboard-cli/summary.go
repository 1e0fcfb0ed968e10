package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/google/subcommands"

	"github.com/bobmcallan/vire-dashboard/internal/dashboard"
	"github.com/bobmcallan/vire-dashboard/internal/models"
)

// summaryCmd prints the KPI cards and tables as terminal markdown.
type summaryCmd struct {
	raw   bool
	style string
}

func (*summaryCmd) Name() string     { return "summary" }
func (*summaryCmd) Synopsis() string { return "display the portfolio KPIs, holdings and transactions" }
func (*summaryCmd) Usage() string {
	return `dashboard-cli [-snapshot <file>] summary [-raw] [-style <glamour style>]

  Prints the same text the dashboard shows, formatted for the terminal.
`
}

func (c *summaryCmd) SetFlags(f *flag.FlagSet) {
	f.BoolVar(&c.raw, "raw", false, "Print markdown without terminal styling")
	f.StringVar(&c.style, "style", "auto", "Glamour style (auto, dark, light, notty)")
}

func (c *summaryCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	s, err := loadSnapshot(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}

	md := summaryMarkdown(s)
	if c.raw {
		fmt.Print(md)
		return subcommands.ExitSuccess
	}

	out, err := glamour.Render(md, c.style)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error rendering markdown: %v\n", err)
		return subcommands.ExitFailure
	}
	fmt.Print(out)
	return subcommands.ExitSuccess
}

var kpiLabels = map[string]string{
	"totalValueKPI": "Total Value",
	"investedKPI":   "Invested",
	"gainKPI":       "Total Gain",
	"gainPctKPI":    "Gain %",
	"sharpeKPI":     "Sharpe Ratio",
	"volatilityKPI": "Volatility",
	"sharpe2KPI":    "Sharpe (risk tab)",
	"drawdownKPI":   "Max Drawdown",
	"returnKPI":     "Return (risk tab)",
}

// summaryMarkdown lays out the KPI slots and both tables using the same
// formatting rules as the rendered page.
func summaryMarkdown(s *models.Snapshot) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# %s\n\n", s.DisplayName())

	kpis := dashboard.KPIs(s)
	b.WriteString("| KPI | Value |\n|---|---:|\n")
	for _, slot := range dashboard.KPISlots {
		fmt.Fprintf(&b, "| %s | %s |\n", kpiLabels[slot.ID], kpis[slot.ID])
	}

	b.WriteString("\n## Holdings\n\n")
	writeTable(&b, []string{"Ticker", "Company", "Shares", "Purchase Price", "Current Price", "Current Value", "Gain/Loss", "Return"}, len(s.Holdings), func(i int) []dashboard.Cell {
		return dashboard.HoldingRow(s.Holdings[i])
	})

	b.WriteString("\n## Transactions\n\n")
	writeTable(&b, []string{"Date", "Ticker", "Action", "Shares", "Price", "Total"}, len(s.Transactions), func(i int) []dashboard.Cell {
		return dashboard.TransactionRow(s.Transactions[i])
	})
	return b.String()
}

func writeTable(b *strings.Builder, header []string, n int, row func(int) []dashboard.Cell) {
	if n == 0 {
		b.WriteString("_none_\n")
		return
	}
	b.WriteString("| " + strings.Join(header, " | ") + " |\n")
	b.WriteString("|" + strings.Repeat("---|", len(header)) + "\n")
	for i := 0; i < n; i++ {
		cells := row(i)
		texts := make([]string, len(cells))
		for j, c := range cells {
			texts[j] = strings.ReplaceAll(c.Text, "|", `\|`)
		}
		b.WriteString("| " + strings.Join(texts, " | ") + " |\n")
	}
}
