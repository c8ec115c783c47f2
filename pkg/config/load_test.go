package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeConfigFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("writing config file: %v", err)
	}
	return path
}

func TestLoadConfigAppliesDefaults(t *testing.T) {
	path := writeConfigFile(t, `
profiles:
  repair: true
telemetry:
  metrics:
    enabled: true
`)

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig() error = %v", err)
	}

	if cfg.Server.ListenAddress != DefaultListenAddress {
		t.Errorf("ListenAddress = %q, want %q", cfg.Server.ListenAddress, DefaultListenAddress)
	}
	if cfg.Server.ReadTimeout != DefaultReadTimeout {
		t.Errorf("ReadTimeout = %v, want %v", cfg.Server.ReadTimeout, DefaultReadTimeout)
	}
	if cfg.Profiles.Dir != DefaultProfilesDir {
		t.Errorf("Profiles.Dir = %q, want %q", cfg.Profiles.Dir, DefaultProfilesDir)
	}
	if cfg.Profiles.Storage.Backend != DefaultStorageBackend {
		t.Errorf("Storage.Backend = %q, want %q", cfg.Profiles.Storage.Backend, DefaultStorageBackend)
	}
	if cfg.Telemetry.Logging.Level != DefaultLoggingLevel {
		t.Errorf("Logging.Level = %q, want %q", cfg.Telemetry.Logging.Level, DefaultLoggingLevel)
	}
}

func TestLoadConfigOverridesDefaults(t *testing.T) {
	path := writeConfigFile(t, `
server:
  listen_address: "0.0.0.0:9090"
  read_timeout: 10s
profiles:
  dir: /etc/dccbridge/profiles
  watch: true
  storage:
    backend: sqlite
    sqlite:
      path: /var/lib/dccbridge/profiles.db
telemetry:
  logging:
    level: debug
    format: text
`)

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig() error = %v", err)
	}

	if cfg.Server.ListenAddress != "0.0.0.0:9090" {
		t.Errorf("ListenAddress = %q, want %q", cfg.Server.ListenAddress, "0.0.0.0:9090")
	}
	if cfg.Server.ReadTimeout != 10*time.Second {
		t.Errorf("ReadTimeout = %v, want 10s", cfg.Server.ReadTimeout)
	}
	if !cfg.Profiles.Watch {
		t.Error("Profiles.Watch = false, want true")
	}
	if cfg.Profiles.Storage.SQLite.Path != "/var/lib/dccbridge/profiles.db" {
		t.Errorf("SQLite.Path = %q", cfg.Profiles.Storage.SQLite.Path)
	}
	if cfg.Telemetry.Logging.Format != "text" {
		t.Errorf("Logging.Format = %q, want text", cfg.Telemetry.Logging.Format)
	}
}

func TestLoadConfigMissingFile(t *testing.T) {
	_, err := LoadConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	if err == nil {
		t.Error("LoadConfig() on missing file returned nil error")
	}
}

func TestLoadConfigInvalidYAML(t *testing.T) {
	path := writeConfigFile(t, "server: [not a mapping")
	if _, err := LoadConfig(path); err == nil {
		t.Error("LoadConfig() on invalid YAML returned nil error")
	}
}

func TestLoadConfigWithEnvOverrides(t *testing.T) {
	path := writeConfigFile(t, `
server:
  listen_address: "127.0.0.1:8080"
`)

	t.Setenv("DCCBRIDGE_SERVER_LISTEN_ADDRESS", "0.0.0.0:7070")
	t.Setenv("DCCBRIDGE_PROFILES_DIR", "/opt/profiles")
	t.Setenv("DCCBRIDGE_TELEMETRY_LOGGING_LEVEL", "warn")

	cfg, err := LoadConfigWithEnvOverrides(path)
	if err != nil {
		t.Fatalf("LoadConfigWithEnvOverrides() error = %v", err)
	}

	if cfg.Server.ListenAddress != "0.0.0.0:7070" {
		t.Errorf("ListenAddress = %q, want env override", cfg.Server.ListenAddress)
	}
	if cfg.Profiles.Dir != "/opt/profiles" {
		t.Errorf("Profiles.Dir = %q, want env override", cfg.Profiles.Dir)
	}
	if cfg.Telemetry.Logging.Level != "warn" {
		t.Errorf("Logging.Level = %q, want env override", cfg.Telemetry.Logging.Level)
	}
}

func TestNewDefaultIsValid(t *testing.T) {
	cfg := NewDefault()
	if err := Validate(cfg); err != nil {
		t.Errorf("Validate(NewDefault()) = %v, want nil", err)
	}
	if !cfg.Profiles.Repair {
		t.Error("NewDefault().Profiles.Repair = false, want true")
	}
}
