package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestNewDefaultConfig(t *testing.T) {
	cfg := NewDefaultConfig()

	if cfg.Server.Port != 5000 {
		t.Errorf("expected default port 5000, got %d", cfg.Server.Port)
	}
	if cfg.Server.Host != "localhost" {
		t.Errorf("expected default host localhost, got %s", cfg.Server.Host)
	}
	if cfg.Dashboard.SnapshotPath != "" {
		t.Errorf("expected empty snapshot path, got %s", cfg.Dashboard.SnapshotPath)
	}
	if cfg.Dashboard.DefaultTab != "overview" {
		t.Errorf("expected default tab overview, got %s", cfg.Dashboard.DefaultTab)
	}
	if cfg.Logging.Level != "info" {
		t.Errorf("expected default log level info, got %s", cfg.Logging.Level)
	}
	if issues := cfg.Validate(); len(issues) != 0 {
		t.Errorf("expected default config to be valid, got %v", issues)
	}
}

func TestLoadFromFiles_NoFiles(t *testing.T) {
	cfg, err := LoadFromFiles()
	if err != nil {
		t.Fatalf("LoadFromFiles with no files should not error: %v", err)
	}
	if cfg.Server.Port != 5000 {
		t.Errorf("expected default port 5000, got %d", cfg.Server.Port)
	}
}

func TestLoadFromFiles_ValidTOML(t *testing.T) {
	dir := t.TempDir()
	tomlPath := filepath.Join(dir, "test.toml")

	content := `
environment = "dev"

[server]
port = 9090
host = "0.0.0.0"

[dashboard]
snapshot_path = "/tmp/snapshot.json"
default_tab = "holdings"
cache_ttl_seconds = 5
cache_max_entries = 4

[logging]
level = "debug"
format = "json"
outputs = ["console", "file"]
`
	if err := os.WriteFile(tomlPath, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadFromFiles(tomlPath)
	if err != nil {
		t.Fatalf("LoadFromFiles failed: %v", err)
	}

	if !cfg.IsDevMode() {
		t.Error("expected dev mode")
	}
	if cfg.Server.Port != 9090 {
		t.Errorf("expected port 9090, got %d", cfg.Server.Port)
	}
	if cfg.Server.Host != "0.0.0.0" {
		t.Errorf("expected host 0.0.0.0, got %s", cfg.Server.Host)
	}
	if cfg.Dashboard.SnapshotPath != "/tmp/snapshot.json" {
		t.Errorf("expected snapshot path /tmp/snapshot.json, got %s", cfg.Dashboard.SnapshotPath)
	}
	if cfg.Dashboard.DefaultTab != "holdings" {
		t.Errorf("expected default tab holdings, got %s", cfg.Dashboard.DefaultTab)
	}
	if cfg.Dashboard.CacheTTL() != 5*time.Second {
		t.Errorf("expected cache ttl 5s, got %s", cfg.Dashboard.CacheTTL())
	}
	if cfg.Logging.Level != "debug" {
		t.Errorf("expected log level debug, got %s", cfg.Logging.Level)
	}
	if len(cfg.Logging.Outputs) != 2 {
		t.Errorf("expected 2 log outputs, got %v", cfg.Logging.Outputs)
	}
}

func TestLoadFromFiles_MultipleFiles(t *testing.T) {
	dir := t.TempDir()
	base := filepath.Join(dir, "base.toml")
	override := filepath.Join(dir, "override.toml")

	if err := os.WriteFile(base, []byte("[server]\nport = 8000\nhost = \"base-host\"\n"), 0644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(override, []byte("[server]\nport = 8001\n"), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadFromFiles(base, override)
	if err != nil {
		t.Fatalf("LoadFromFiles failed: %v", err)
	}
	if cfg.Server.Port != 8001 {
		t.Errorf("expected later file to win with port 8001, got %d", cfg.Server.Port)
	}
	if cfg.Server.Host != "base-host" {
		t.Errorf("expected host from first file, got %s", cfg.Server.Host)
	}
}

func TestLoadFromFiles_MissingFile(t *testing.T) {
	_, err := LoadFromFiles("/nonexistent/path/config.toml")
	if err == nil {
		t.Error("expected error for missing file, got nil")
	}
}

func TestLoadFromFiles_InvalidTOML(t *testing.T) {
	dir := t.TempDir()
	tomlPath := filepath.Join(dir, "bad.toml")

	if err := os.WriteFile(tomlPath, []byte("[server\nport = "), 0644); err != nil {
		t.Fatal(err)
	}

	_, err := LoadFromFiles(tomlPath)
	if err == nil {
		t.Error("expected error for invalid TOML, got nil")
	}
}

func TestApplyEnvOverrides(t *testing.T) {
	cfg := NewDefaultConfig()

	t.Setenv("VIRE_SERVER_PORT", "9999")
	t.Setenv("VIRE_SERVER_HOST", "env-host")
	t.Setenv("VIRE_SNAPSHOT_PATH", "/env/snapshot.yaml")
	t.Setenv("VIRE_DEFAULT_TAB", "analytics")
	t.Setenv("VIRE_CACHE_TTL_SECONDS", "0")
	t.Setenv("VIRE_LOG_LEVEL", "error")

	applyEnvOverrides(cfg)

	if cfg.Server.Port != 9999 {
		t.Errorf("expected env port 9999, got %d", cfg.Server.Port)
	}
	if cfg.Server.Host != "env-host" {
		t.Errorf("expected env host env-host, got %s", cfg.Server.Host)
	}
	if cfg.Dashboard.SnapshotPath != "/env/snapshot.yaml" {
		t.Errorf("expected env snapshot path, got %s", cfg.Dashboard.SnapshotPath)
	}
	if cfg.Dashboard.DefaultTab != "analytics" {
		t.Errorf("expected env default tab analytics, got %s", cfg.Dashboard.DefaultTab)
	}
	if cfg.Dashboard.CacheTTL() != 0 {
		t.Errorf("expected caching disabled, got %s", cfg.Dashboard.CacheTTL())
	}
	if cfg.Logging.Level != "error" {
		t.Errorf("expected env log level error, got %s", cfg.Logging.Level)
	}
}

func TestApplyEnvOverrides_InvalidPort(t *testing.T) {
	cfg := NewDefaultConfig()

	t.Setenv("VIRE_SERVER_PORT", "not-a-number")

	applyEnvOverrides(cfg)

	if cfg.Server.Port != 5000 {
		t.Errorf("expected default port 5000 for invalid env, got %d", cfg.Server.Port)
	}
}

func TestLoadDotEnv_SeedsEnvironment(t *testing.T) {
	dir := t.TempDir()
	envPath := filepath.Join(dir, ".env")
	if err := os.WriteFile(envPath, []byte("VIRE_DOTENV_PROBE=from-file\n"), 0644); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { os.Unsetenv("VIRE_DOTENV_PROBE") })

	if err := LoadDotEnv(envPath, filepath.Join(dir, "missing.env")); err != nil {
		t.Fatalf("LoadDotEnv failed: %v", err)
	}
	if got := os.Getenv("VIRE_DOTENV_PROBE"); got != "from-file" {
		t.Errorf("expected VIRE_DOTENV_PROBE=from-file, got %q", got)
	}
}

func TestLoadDotEnv_DoesNotOverrideExisting(t *testing.T) {
	dir := t.TempDir()
	envPath := filepath.Join(dir, ".env")
	if err := os.WriteFile(envPath, []byte("VIRE_SERVER_HOST=from-file\n"), 0644); err != nil {
		t.Fatal(err)
	}
	t.Setenv("VIRE_SERVER_HOST", "from-shell")

	if err := LoadDotEnv(envPath); err != nil {
		t.Fatalf("LoadDotEnv failed: %v", err)
	}
	if got := os.Getenv("VIRE_SERVER_HOST"); got != "from-shell" {
		t.Errorf("expected shell value to win, got %q", got)
	}
}

func TestApplyFlagOverrides(t *testing.T) {
	cfg := NewDefaultConfig()

	ApplyFlagOverrides(cfg, 7777, "flag-host")

	if cfg.Server.Port != 7777 {
		t.Errorf("expected flag port 7777, got %d", cfg.Server.Port)
	}
	if cfg.Server.Host != "flag-host" {
		t.Errorf("expected flag host flag-host, got %s", cfg.Server.Host)
	}
}

func TestApplyFlagOverrides_ZeroPortNoOverride(t *testing.T) {
	cfg := NewDefaultConfig()

	ApplyFlagOverrides(cfg, 0, "")

	if cfg.Server.Port != 5000 {
		t.Errorf("expected default port 5000, got %d", cfg.Server.Port)
	}
	if cfg.Server.Host != "localhost" {
		t.Errorf("expected default host localhost, got %s", cfg.Server.Host)
	}
}

func TestValidate_ReportsIssues(t *testing.T) {
	cfg := NewDefaultConfig()
	cfg.Server.Port = 0
	cfg.Dashboard.DefaultTab = " "
	cfg.Dashboard.CacheMaxEntries = 0
	cfg.Dashboard.SnapshotPath = filepath.Join(t.TempDir(), "missing.json")

	issues := cfg.Validate()
	if len(issues) != 4 {
		t.Fatalf("expected 4 issues, got %d: %v", len(issues), issues)
	}
	joined := strings.Join(issues, "\n")
	for _, want := range []string{"server.port", "default_tab", "cache_max_entries", "snapshot_path"} {
		if !strings.Contains(joined, want) {
			t.Errorf("expected an issue mentioning %s, got %v", want, issues)
		}
	}
}
