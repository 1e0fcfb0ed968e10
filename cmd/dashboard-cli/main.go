// Command dashboard-cli renders and inspects the portfolio dashboard offline.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/google/subcommands"

	common "github.com/bobmcallan/vire-dashboard/internal/common"
	"github.com/bobmcallan/vire-dashboard/internal/config"
	"github.com/bobmcallan/vire-dashboard/internal/models"
	"github.com/bobmcallan/vire-dashboard/internal/snapshot"
)

var (
	snapshotPath = flag.String("snapshot", "", "Snapshot file (JSON or YAML). Defaults to dashboard.snapshot_path, then the built-in sample.")
	configFile   = flag.String("config", "", "Configuration file path")
	logLevel     = flag.String("log-level", "warn", "Log level (written to stderr)")
)

func main() {
	commander := subcommands.NewCommander(flag.CommandLine, "dashboard-cli")
	commander.Register(commander.HelpCommand(), "")
	commander.Register(commander.FlagsCommand(), "")

	commander.Register(&renderCmd{}, "dashboard")
	commander.Register(&summaryCmd{}, "dashboard")
	commander.Register(&chartsCmd{}, "dashboard")
	commander.Register(&activityCmd{}, "dashboard")
	commander.Register(&queryCmd{}, "snapshot")
	commander.Register(&mcpCmd{}, "server")

	flag.Parse()
	os.Exit(int(commander.Execute(context.Background())))
}

// loadConfig reads the optional config file and .env overrides.
func loadConfig() (*config.Config, error) {
	if err := config.LoadDotEnv(".env"); err != nil {
		return nil, err
	}
	return config.LoadFromFile(*configFile)
}

// newLogger writes to stderr only so stdout stays clean for command output.
func newLogger() *common.Logger {
	return common.NewLoggerFromConfig(common.LoggingConfig{
		Level:   *logLevel,
		Outputs: []string{"console"},
	}).WithComponent("cli")
}

// loadSnapshot resolves the snapshot source: -snapshot, then config, then sample.
func loadSnapshot(ctx context.Context) (*models.Snapshot, error) {
	path := *snapshotPath
	if path == "" {
		cfg, err := loadConfig()
		if err != nil {
			return nil, err
		}
		path = cfg.Dashboard.SnapshotPath
	}
	s, err := snapshot.NewProvider(path).Snapshot(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load snapshot: %w", err)
	}
	return s, nil
}
