package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"github.com/google/subcommands"

	"github.com/bobmcallan/vire-dashboard/internal/dashboard"
	"github.com/bobmcallan/vire-dashboard/internal/handlers"
	"github.com/bobmcallan/vire-dashboard/internal/models"
)

// chartsCmd prints chart specifications as JSON.
type chartsCmd struct {
	chart string
}

func (*chartsCmd) Name() string     { return "charts" }
func (*chartsCmd) Synopsis() string { return "print chart specifications as JSON" }
func (*chartsCmd) Usage() string {
	return `dashboard-cli [-snapshot <file>] charts [-chart <id>]

  Prints every chart specification with the shared defaults, or one chart
  when -chart is given. Charts that cannot be built are listed under
  "failures" and the command exits non-zero.
`
}

func (c *chartsCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.chart, "chart", "", "Chart container id, e.g. valueChart")
}

func (c *chartsCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	s, err := loadSnapshot(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}

	if err := writeCharts(os.Stdout, s, c.chart); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}
	return subcommands.ExitSuccess
}

// writeCharts encodes one chart or the full chart set to w. Build failures
// are still written and then reported as the returned error.
func writeCharts(w io.Writer, s *models.Snapshot, id string) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")

	if id != "" {
		def, ok := dashboard.ChartByID(id)
		if !ok {
			return fmt.Errorf("unknown chart %q", id)
		}
		spec, err := def.Spec(s)
		if err != nil {
			return err
		}
		return enc.Encode(spec)
	}

	specs, buildErr := dashboard.NewChartBuilder(nil).Specs(s)
	if err := enc.Encode(handlers.ChartsResponse{
		Defaults: dashboard.DefaultChartDefaults(),
		Charts:   specs,
		Failures: handlers.FailuresOf(buildErr),
	}); err != nil {
		return err
	}
	return buildErr
}

// activityCmd prints the monthly transaction counts behind the activity chart.
type activityCmd struct{}

func (*activityCmd) Name() string     { return "activity" }
func (*activityCmd) Synopsis() string { return "print transactions per month" }
func (*activityCmd) Usage() string {
	return `dashboard-cli [-snapshot <file>] activity

  Prints one line per calendar month with its transaction count,
  oldest month first.
`
}

func (*activityCmd) SetFlags(*flag.FlagSet) {}

func (*activityCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	s, err := loadSnapshot(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}
	writeActivity(os.Stdout, s)
	return subcommands.ExitSuccess
}

func writeActivity(w io.Writer, s *models.Snapshot) {
	labels, counts := dashboard.MonthlyActivity(s.Transactions)

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "MONTH\tTRANSACTIONS")
	for i, month := range labels {
		fmt.Fprintf(tw, "%s\t%d\n", month, int(counts[i]))
	}
	tw.Flush()
}
