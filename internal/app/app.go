package app

import (
	"fmt"
	"strings"

	"github.com/bobmcallan/vire-dashboard/internal/cache"
	common "github.com/bobmcallan/vire-dashboard/internal/common"
	"github.com/bobmcallan/vire-dashboard/internal/config"
	"github.com/bobmcallan/vire-dashboard/internal/handlers"
	"github.com/bobmcallan/vire-dashboard/internal/mcp"
	"github.com/bobmcallan/vire-dashboard/internal/snapshot"
)

// App holds all application components and dependencies.
type App struct {
	Config   *config.Config
	Logger   *common.Logger
	Provider snapshot.Provider
	Cache    *cache.RenderCache
	PagesDir string

	// HTTP handlers
	DashboardHandler *handlers.DashboardHandler
	APIHandler       *handlers.DashboardAPIHandler
	StaticHandler    *handlers.StaticHandler
	HealthHandler    *handlers.HealthHandler
	VersionHandler   *handlers.VersionHandler
	MCPHandler       *mcp.Handler
}

// New initializes the application with all dependencies.
func New(cfg *config.Config, logger *common.Logger) (*App, error) {
	a := &App{
		Config:   cfg,
		Logger:   logger,
		Provider: snapshot.NewProvider(cfg.Dashboard.SnapshotPath),
		Cache:    cache.New(cfg.Dashboard.CacheTTL(), cfg.Dashboard.CacheMaxEntries),
		PagesDir: handlers.FindPagesDir(),
	}

	// Validate environment setting
	env := strings.ToLower(strings.TrimSpace(cfg.Environment))
	if cfg.IsDevMode() {
		logger.Warn().Msg("running in dev mode, render cache disabled")
		a.Cache = nil
	} else if env != "prod" && env != "" {
		logger.Warn().
			Str("environment", cfg.Environment).
			Msg("unrecognized environment value, defaulting to prod behavior")
	}

	if err := a.initHandlers(); err != nil {
		return nil, err
	}

	source := cfg.Dashboard.SnapshotPath
	if source == "" {
		source = "built-in sample"
	}
	logger.Info().
		Str("snapshot", source).
		Str("pages", a.PagesDir).
		Bool("cache", a.Cache.Enabled()).
		Msg("application initialization complete")

	return a, nil
}

// initHandlers initializes all HTTP handlers.
func (a *App) initHandlers() error {
	templates, err := handlers.LoadTemplates(a.PagesDir)
	if err != nil {
		return fmt.Errorf("failed to load dashboard templates: %w", err)
	}

	a.DashboardHandler = handlers.NewDashboardHandler(
		a.Logger,
		templates,
		a.Provider,
		a.Cache,
		a.Config.Dashboard.DefaultTab,
		a.Config.IsDevMode(),
	)
	a.APIHandler = handlers.NewDashboardAPIHandler(a.Logger, a.Provider, a.Cache)
	a.StaticHandler = handlers.NewStaticHandler(a.Logger, a.PagesDir)
	a.HealthHandler = handlers.NewHealthHandler(a.Logger, a.Provider)
	a.VersionHandler = handlers.NewVersionHandler(a.Logger)
	a.MCPHandler = mcp.NewHandler(a.Provider, a.Logger)

	a.Logger.Debug().Msg("HTTP handlers initialized")
	return nil
}

// Close closes all application resources.
func (a *App) Close() error {
	a.Cache.Clear()
	return nil
}
