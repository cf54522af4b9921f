package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/pelagos/shoal/config"
)

func TestLoad_ValidConfig(t *testing.T) {
	content := `
server:
  host: "127.0.0.1"
  port: 9090
  read_timeout: 15s

database:
  driver: "sqlite"
  path: ":memory:"

alerts:
  enabled: true
  interval: 30s

logging:
  level: "debug"
  format: "console"
`

	cfg := writeAndLoad(t, content)

	if cfg.Server.Host != "127.0.0.1" {
		t.Errorf("Host = %s, want 127.0.0.1", cfg.Server.Host)
	}
	if cfg.Server.Port != 9090 {
		t.Errorf("Port = %d, want 9090", cfg.Server.Port)
	}
	if cfg.Server.ReadTimeout != 15*time.Second {
		t.Errorf("ReadTimeout = %v, want 15s", cfg.Server.ReadTimeout)
	}
	if cfg.Database.Path != ":memory:" {
		t.Errorf("Database.Path = %s, want :memory:", cfg.Database.Path)
	}
	if !cfg.Alerts.Enabled || cfg.Alerts.Interval != 30*time.Second {
		t.Errorf("Alerts = %+v", cfg.Alerts)
	}
	if cfg.Logging.Level != "debug" {
		t.Errorf("Logging.Level = %s, want debug", cfg.Logging.Level)
	}
}

func TestLoad_Defaults(t *testing.T) {
	cfg := writeAndLoad(t, "{}\n")

	if cfg.Server.Host != "0.0.0.0" {
		t.Errorf("default Host = %s, want 0.0.0.0", cfg.Server.Host)
	}
	if cfg.Server.Port != 8080 {
		t.Errorf("default Port = %d, want 8080", cfg.Server.Port)
	}
	if cfg.Server.ReadTimeout != 30*time.Second {
		t.Errorf("default ReadTimeout = %v, want 30s", cfg.Server.ReadTimeout)
	}
	if cfg.Database.Driver != "sqlite" {
		t.Errorf("default Database.Driver = %s, want sqlite", cfg.Database.Driver)
	}
	if cfg.Database.Path != "shoal.db" {
		t.Errorf("default Database.Path = %s, want shoal.db", cfg.Database.Path)
	}
	if cfg.Alerts.Interval != time.Minute {
		t.Errorf("default Alerts.Interval = %v, want 1m", cfg.Alerts.Interval)
	}
	// Opt-in features stay off unless configured.
	if cfg.Alerts.Enabled {
		t.Error("default Alerts.Enabled = true, want false")
	}
	if cfg.Metrics.Enabled {
		t.Error("default Metrics.Enabled = true, want false")
	}
	if cfg.Logging.Level != "info" {
		t.Errorf("default Logging.Level = %s, want info", cfg.Logging.Level)
	}
	if cfg.Metrics.Path != "/metrics" {
		t.Errorf("default Metrics.Path = %s, want /metrics", cfg.Metrics.Path)
	}
}

func TestLoad_EnvExpansion(t *testing.T) {
	os.Setenv("TEST_DB_PATH", "/tmp/expanded.db")
	defer os.Unsetenv("TEST_DB_PATH")

	content := `
database:
  path: "${TEST_DB_PATH}"
`

	cfg := writeAndLoad(t, content)

	if cfg.Database.Path != "/tmp/expanded.db" {
		t.Errorf("Database.Path = %s, want /tmp/expanded.db", cfg.Database.Path)
	}
}

func TestLoad_InvalidDriver(t *testing.T) {
	content := `
database:
  driver: "postgres"
`
	if _, err := writeAndLoadErr(t, content); err == nil {
		t.Fatal("expected error for invalid database.driver")
	}
}

func TestLoad_InvalidLogLevel(t *testing.T) {
	content := `
logging:
  level: "verbose"
`
	if _, err := writeAndLoadErr(t, content); err == nil {
		t.Fatal("expected error for invalid logging.level")
	}
}

func TestLoad_InvalidLogFormat(t *testing.T) {
	content := `
logging:
  format: "xml"
`
	if _, err := writeAndLoadErr(t, content); err == nil {
		t.Fatal("expected error for invalid logging.format")
	}
}

func TestLoad_MissingSchemasDir(t *testing.T) {
	content := `
schemas:
  dir: "/nonexistent/schemas"
`
	if _, err := writeAndLoadErr(t, content); err == nil {
		t.Fatal("expected error for missing schemas.dir")
	}
}

func TestLoad_InvalidPort(t *testing.T) {
	content := `
server:
  port: 70000
`
	if _, err := writeAndLoadErr(t, content); err == nil {
		t.Fatal("expected error for out-of-range port")
	}
}

func TestLoadFromEnv(t *testing.T) {
	os.Setenv("SHOAL_SERVER_PORT", "9999")
	os.Setenv("SHOAL_DATABASE_PATH", "/tmp/env-test.db")
	os.Setenv("SHOAL_LOG_LEVEL", "debug")
	os.Setenv("SHOAL_METRICS_ENABLED", "true")
	defer func() {
		os.Unsetenv("SHOAL_SERVER_PORT")
		os.Unsetenv("SHOAL_DATABASE_PATH")
		os.Unsetenv("SHOAL_LOG_LEVEL")
		os.Unsetenv("SHOAL_METRICS_ENABLED")
	}()

	cfg, err := config.LoadFromEnv()
	if err != nil {
		t.Fatalf("LoadFromEnv error: %v", err)
	}

	if cfg.Server.Port != 9999 {
		t.Errorf("Server.Port = %d, want 9999", cfg.Server.Port)
	}
	if cfg.Database.Path != "/tmp/env-test.db" {
		t.Errorf("Database.Path = %s, want /tmp/env-test.db", cfg.Database.Path)
	}
	if cfg.Logging.Level != "debug" {
		t.Errorf("Logging.Level = %s, want debug", cfg.Logging.Level)
	}
	if !cfg.Metrics.Enabled {
		t.Error("Metrics.Enabled = false, want true")
	}
}

func TestEnvOverridesFile(t *testing.T) {
	os.Setenv("SHOAL_SERVER_PORT", "7777")
	os.Setenv("SHOAL_LOG_LEVEL", "error")
	defer func() {
		os.Unsetenv("SHOAL_SERVER_PORT")
		os.Unsetenv("SHOAL_LOG_LEVEL")
	}()

	content := `
server:
  port: 8080
logging:
  level: "info"
database:
  path: "/tmp/file.db"
`

	cfg := writeAndLoad(t, content)

	// Env should override file
	if cfg.Server.Port != 7777 {
		t.Errorf("Server.Port = %d, want 7777 (env override)", cfg.Server.Port)
	}
	if cfg.Logging.Level != "error" {
		t.Errorf("Logging.Level = %s, want error (env override)", cfg.Logging.Level)
	}
	// File value should still be used for non-overridden
	if cfg.Database.Path != "/tmp/file.db" {
		t.Errorf("Database.Path = %s, want /tmp/file.db", cfg.Database.Path)
	}
}

func TestLoadWithFallback_FileExists(t *testing.T) {
	content := `
database:
  path: "/tmp/from-file.db"
`

	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, err := config.LoadWithFallback(path)
	if err != nil {
		t.Fatalf("LoadWithFallback error: %v", err)
	}

	if cfg.Database.Path != "/tmp/from-file.db" {
		t.Errorf("Database.Path = %s, want /tmp/from-file.db", cfg.Database.Path)
	}
}

func TestLoadWithFallback_EnvOnly(t *testing.T) {
	os.Setenv("SHOAL_DATABASE_PATH", "/tmp/env-fallback.db")
	defer os.Unsetenv("SHOAL_DATABASE_PATH")

	cfg, err := config.LoadWithFallback("/nonexistent/config.yaml")
	if err != nil {
		t.Fatalf("LoadWithFallback error: %v", err)
	}

	if cfg.Database.Path != "/tmp/env-fallback.db" {
		t.Errorf("Database.Path = %s, want /tmp/env-fallback.db", cfg.Database.Path)
	}
}

func TestParseBoolValues(t *testing.T) {
	tests := []struct {
		value    string
		expected bool
	}{
		{"true", true},
		{"TRUE", true},
		{"1", true},
		{"yes", true},
		{"on", true},
		{"false", false},
		{"0", false},
		{"no", false},
		{"off", false},
		{"invalid", false},
	}

	for _, tt := range tests {
		os.Setenv("SHOAL_METRICS_ENABLED", tt.value)

		cfg, err := config.LoadFromEnv()
		if err != nil {
			t.Fatalf("LoadFromEnv error: %v", err)
		}

		if cfg.Metrics.Enabled != tt.expected {
			t.Errorf("value=%q: Metrics.Enabled = %v, want %v", tt.value, cfg.Metrics.Enabled, tt.expected)
		}

		os.Unsetenv("SHOAL_METRICS_ENABLED")
	}
}

func TestLoad_InvalidYAML(t *testing.T) {
	content := `
database:
  path: "/tmp/x.db"
  this is not valid yaml: [
`
	if _, err := writeAndLoadErr(t, content); err == nil {
		t.Fatal("expected error for invalid YAML")
	}
}

func TestLoad_FileNotFound(t *testing.T) {
	if _, err := config.Load("/nonexistent/path/config.yaml"); err == nil {
		t.Fatal("expected error for nonexistent file")
	}
}

func TestEnvOverrides_InvalidValues(t *testing.T) {
	os.Setenv("SHOAL_SERVER_PORT", "not-a-number")
	os.Setenv("SHOAL_SERVER_READ_TIMEOUT", "not-a-duration")
	os.Setenv("SHOAL_ALERTS_INTERVAL", "bad-value")
	defer func() {
		os.Unsetenv("SHOAL_SERVER_PORT")
		os.Unsetenv("SHOAL_SERVER_READ_TIMEOUT")
		os.Unsetenv("SHOAL_ALERTS_INTERVAL")
	}()

	cfg, err := config.LoadFromEnv()
	if err != nil {
		t.Fatalf("LoadFromEnv error: %v", err)
	}

	// Should use defaults when env vars are invalid
	if cfg.Server.Port != 8080 {
		t.Errorf("Server.Port = %d, want 8080 (default)", cfg.Server.Port)
	}
	if cfg.Server.ReadTimeout != 30*time.Second {
		t.Errorf("Server.ReadTimeout = %v, want 30s (default)", cfg.Server.ReadTimeout)
	}
	if cfg.Alerts.Interval != time.Minute {
		t.Errorf("Alerts.Interval = %v, want 1m (default)", cfg.Alerts.Interval)
	}
}

func TestEnvOverrides_SchemasDir(t *testing.T) {
	dir := t.TempDir()
	os.Setenv("SHOAL_SCHEMAS_DIR", dir)
	defer os.Unsetenv("SHOAL_SCHEMAS_DIR")

	cfg, err := config.LoadFromEnv()
	if err != nil {
		t.Fatalf("LoadFromEnv error: %v", err)
	}

	if cfg.Schemas.Dir != dir {
		t.Errorf("Schemas.Dir = %s, want %s", cfg.Schemas.Dir, dir)
	}
}

// Helpers

func writeAndLoad(t *testing.T, content string) *config.Config {
	t.Helper()
	cfg, err := writeAndLoadErr(t, content)
	if err != nil {
		t.Fatalf("Load error: %v", err)
	}
	return cfg
}

func writeAndLoadErr(t *testing.T, content string) (*config.Config, error) {
	t.Helper()

	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")

	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	return config.Load(path)
}
