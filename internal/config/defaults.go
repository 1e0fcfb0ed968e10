package config

import common "github.com/bobmcallan/vire-dashboard/internal/common"

// NewDefaultConfig creates a configuration with default values.
func NewDefaultConfig() *Config {
	return &Config{
		Environment: "prod",
		Server: ServerConfig{
			Port: 5000,
			Host: "localhost",
		},
		Dashboard: DashboardConfig{
			SnapshotPath:    "",
			DefaultTab:      "overview",
			CacheTTLSeconds: 30,
			CacheMaxEntries: 32,
		},
		Logging: common.LoggingConfig{
			Level:   "info",
			Format:  "text",
			Outputs: []string{"console"},
		},
	}
}
