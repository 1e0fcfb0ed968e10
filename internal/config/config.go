package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/pelletier/go-toml/v2"

	common "github.com/bobmcallan/vire-dashboard/internal/common"
)

// Config represents the application configuration.
type Config struct {
	Environment string               `toml:"environment"`
	Server      ServerConfig         `toml:"server"`
	Dashboard   DashboardConfig      `toml:"dashboard"`
	Logging     common.LoggingConfig `toml:"logging"`
}

// ServerConfig contains HTTP server settings.
type ServerConfig struct {
	Port int    `toml:"port"`
	Host string `toml:"host"`
}

// DashboardConfig contains dashboard rendering settings.
type DashboardConfig struct {
	// SnapshotPath is a JSON or YAML snapshot file. Empty serves the built-in sample.
	SnapshotPath    string `toml:"snapshot_path"`
	DefaultTab      string `toml:"default_tab"`
	CacheTTLSeconds int    `toml:"cache_ttl_seconds"`
	CacheMaxEntries int    `toml:"cache_max_entries"`
}

// CacheTTL returns the rendered page cache lifetime. Zero disables caching.
func (d DashboardConfig) CacheTTL() time.Duration {
	if d.CacheTTLSeconds <= 0 {
		return 0
	}
	return time.Duration(d.CacheTTLSeconds) * time.Second
}

// IsDevMode reports whether the environment is "dev".
func (c *Config) IsDevMode() bool {
	return strings.EqualFold(strings.TrimSpace(c.Environment), "dev")
}

// Validate returns a list of fatal configuration issues.
func (c *Config) Validate() []string {
	var issues []string
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		issues = append(issues, fmt.Sprintf("server.port %d is out of range (1-65535)", c.Server.Port))
	}
	if strings.TrimSpace(c.Dashboard.DefaultTab) == "" {
		issues = append(issues, "dashboard.default_tab is empty")
	}
	if c.Dashboard.CacheTTLSeconds > 0 && c.Dashboard.CacheMaxEntries <= 0 {
		issues = append(issues, "dashboard.cache_max_entries must be positive when caching is enabled")
	}
	if path := c.Dashboard.SnapshotPath; path != "" {
		if _, err := os.Stat(path); err != nil {
			issues = append(issues, fmt.Sprintf("dashboard.snapshot_path %s is not readable: %v", path, err))
		}
	}
	return issues
}

// LoadFromFile loads configuration with priority: defaults -> file -> env.
func LoadFromFile(path string) (*Config, error) {
	if path == "" {
		return LoadFromFiles()
	}
	return LoadFromFiles(path)
}

// LoadFromFiles loads configuration from multiple files with priority:
// defaults -> file1 -> file2 -> ... -> env.
// Later files override earlier files.
func LoadFromFiles(paths ...string) (*Config, error) {
	config := NewDefaultConfig()

	for i, path := range paths {
		if path == "" {
			continue
		}

		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}

		err = toml.Unmarshal(data, config)
		if err != nil {
			return nil, fmt.Errorf("failed to parse config file %s (file %d of %d): %w", path, i+1, len(paths), err)
		}
	}

	applyEnvOverrides(config)

	return config, nil
}

// LoadDotEnv seeds the process environment from .env files without
// overriding variables that are already set. Missing files are ignored.
func LoadDotEnv(paths ...string) error {
	if len(paths) == 0 {
		paths = []string{".env"}
	}
	for _, path := range paths {
		if _, err := os.Stat(path); err != nil {
			continue
		}
		if err := godotenv.Load(path); err != nil {
			return fmt.Errorf("failed to load env file %s: %w", path, err)
		}
	}
	return nil
}

// applyEnvOverrides applies VIRE_* environment variable overrides to config.
func applyEnvOverrides(config *Config) {
	if env := os.Getenv("VIRE_ENV"); env != "" {
		config.Environment = env
	}
	if port := os.Getenv("VIRE_SERVER_PORT"); port != "" {
		if p, err := strconv.Atoi(port); err == nil {
			config.Server.Port = p
		}
	}
	if host := os.Getenv("VIRE_SERVER_HOST"); host != "" {
		config.Server.Host = host
	}
	if path := os.Getenv("VIRE_SNAPSHOT_PATH"); path != "" {
		config.Dashboard.SnapshotPath = path
	}
	if tab := os.Getenv("VIRE_DEFAULT_TAB"); tab != "" {
		config.Dashboard.DefaultTab = tab
	}
	if ttl := os.Getenv("VIRE_CACHE_TTL_SECONDS"); ttl != "" {
		if v, err := strconv.Atoi(ttl); err == nil {
			config.Dashboard.CacheTTLSeconds = v
		}
	}
	if level := os.Getenv("VIRE_LOG_LEVEL"); level != "" {
		config.Logging.Level = level
	}
	if format := os.Getenv("VIRE_LOG_FORMAT"); format != "" {
		config.Logging.Format = format
	}
}

// ApplyFlagOverrides applies command-line flag overrides to config.
func ApplyFlagOverrides(config *Config, port int, host string) {
	if port > 0 {
		config.Server.Port = port
	}
	if host != "" {
		config.Server.Host = host
	}
}
