// Command vire-dashboard serves the portfolio dashboard, its JSON API and the
// MCP endpoint from a single snapshot file.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/bobmcallan/vire-dashboard/internal/app"
	common "github.com/bobmcallan/vire-dashboard/internal/common"
	"github.com/bobmcallan/vire-dashboard/internal/config"
	"github.com/bobmcallan/vire-dashboard/internal/server"
)

const shutdownTimeout = 10 * time.Second

// options is the parsed command line. Zero values leave the config untouched.
type options struct {
	configFiles []string
	port        int
	host        string
	snapshot    string
	tab         string
	version     bool
}

// multiFlag collects repeated -config values.
type multiFlag []string

func (m *multiFlag) String() string     { return strings.Join(*m, ",") }
func (m *multiFlag) Set(v string) error { *m = append(*m, v); return nil }

func parseFlags(args []string, errOut io.Writer) (*options, error) {
	fs := flag.NewFlagSet("vire-dashboard", flag.ContinueOnError)
	fs.SetOutput(errOut)

	var (
		opts      options
		files     multiFlag
		shortPort int
	)
	fs.Var(&files, "config", "Configuration file path (repeatable; later files win)")
	fs.Var(&files, "c", "Configuration file path (shorthand)")
	fs.IntVar(&opts.port, "port", 0, "Server port (overrides config)")
	fs.IntVar(&shortPort, "p", 0, "Server port (shorthand)")
	fs.StringVar(&opts.host, "host", "", "Server host (overrides config)")
	fs.StringVar(&opts.snapshot, "snapshot", "", "Portfolio snapshot file, JSON or YAML (overrides config)")
	fs.StringVar(&opts.tab, "tab", "", "Tab shown when the page is opened without ?tab= (overrides config)")
	fs.BoolVar(&opts.version, "version", false, "Print version information")

	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	if shortPort != 0 {
		opts.port = shortPort
	}
	opts.configFiles = files
	return &opts, nil
}

// configError lists every fatal configuration issue at once.
type configError struct {
	issues []string
}

func (e *configError) Error() string {
	var b strings.Builder
	b.WriteString("configuration error:\n")
	for _, issue := range e.issues {
		fmt.Fprintf(&b, "  - %s\n", issue)
	}
	b.WriteString("Values can be set via TOML file, VIRE_* environment variables, or CLI flags.")
	return b.String()
}

// loadConfig layers defaults, the TOML files, .env and VIRE_* variables, then
// the command line, and validates the result.
func loadConfig(opts *options) (*config.Config, error) {
	if err := config.LoadDotEnv(".env"); err != nil {
		return nil, fmt.Errorf("failed to load .env: %w", err)
	}

	files := opts.configFiles
	if len(files) == 0 {
		if path, ok := discoverConfig(configSearchPaths()); ok {
			files = []string{path}
		}
	}

	cfg, err := config.LoadFromFiles(files...)
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	config.ApplyFlagOverrides(cfg, opts.port, opts.host)
	if opts.snapshot != "" {
		cfg.Dashboard.SnapshotPath = opts.snapshot
	}
	if opts.tab != "" {
		cfg.Dashboard.DefaultTab = opts.tab
	}

	if issues := cfg.Validate(); len(issues) > 0 {
		return nil, &configError{issues: issues}
	}
	return cfg, nil
}

// run serves the dashboard until ctx is cancelled or the listener fails.
func run(ctx context.Context, cfg *config.Config, logger *common.Logger) error {
	application, err := app.New(cfg, logger)
	if err != nil {
		return fmt.Errorf("failed to initialize application: %w", err)
	}
	defer application.Close()

	srv := server.New(application)
	errc := make(chan error, 1)
	go func() { errc <- srv.Start() }()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
		logger.Info().Msg("shutdown signal received")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	return <-errc
}

func main() {
	opts, err := parseFlags(os.Args[1:], os.Stderr)
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			os.Exit(0)
		}
		os.Exit(2)
	}

	if opts.version {
		fmt.Printf("vire-dashboard %s\n", config.CurrentBuild())
		return
	}

	cfg, err := loadConfig(opts)
	if err != nil {
		fmt.Fprintf(os.Stderr, "\n%v\n\n", err)
		os.Exit(1)
	}

	logger := common.NewLoggerFromConfig(cfg.Logging)
	logger.Info().
		Str("version", config.CurrentBuild().Version).
		Str("environment", cfg.Environment).
		Strs("config_files", opts.configFiles).
		Msg("configuration loaded")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, logger); err != nil {
		logger.Error().Str("error", err.Error()).Msg("dashboard stopped with error")
		os.Exit(1)
	}
	logger.Info().Msg("dashboard stopped")
}

// discoverConfig returns the first existing candidate.
func discoverConfig(candidates []string) (string, bool) {
	for _, path := range candidates {
		if info, err := os.Stat(path); err == nil && !info.IsDir() {
			return path, true
		}
	}
	return "", false
}

// configSearchPaths lists vire-dashboard.toml locations, next to the binary
// first and then relative to the working directory, without duplicates.
func configSearchPaths() []string {
	var paths []string
	if exe, err := os.Executable(); err == nil {
		dir := filepath.Dir(exe)
		paths = append(paths,
			filepath.Join(dir, "vire-dashboard.toml"),
			filepath.Join(dir, "config", "vire-dashboard.toml"),
		)
	}
	paths = append(paths,
		"vire-dashboard.toml",
		filepath.Join("config", "vire-dashboard.toml"),
		filepath.Join("docker", "vire-dashboard.toml"),
	)

	seen := make(map[string]bool, len(paths))
	out := paths[:0]
	for _, p := range paths {
		key := p
		if abs, err := filepath.Abs(p); err == nil {
			key = abs
		}
		if !seen[key] {
			seen[key] = true
			out = append(out, p)
		}
	}
	return out
}
