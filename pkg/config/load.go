package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// LoadConfig loads configuration from a YAML file at the specified path.
// It applies default values, validates the configuration, and returns any
// errors. Environment variables are not consulted; use
// LoadConfigWithEnvOverrides for that functionality.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read configuration file %q: %w", path, err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse configuration file %q: %w", path, err)
	}

	ApplyDefaults(&cfg)

	if err := Validate(&cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return &cfg, nil
}

// LoadConfigWithEnvOverrides loads configuration from a YAML file and
// applies environment variable overrides. Environment variables follow
// the naming convention DCCBRIDGE_SECTION_FIELD (e.g.,
// DCCBRIDGE_SERVER_LISTEN_ADDRESS) and always take precedence over
// file-based configuration.
//
// The loading sequence is:
// 1. Load YAML from file
// 2. Apply default values
// 3. Apply environment variable overrides
// 4. Validate final configuration
func LoadConfigWithEnvOverrides(path string) (*Config, error) {
	cfg, err := LoadConfig(path)
	if err != nil {
		return nil, err
	}

	applyEnvOverrides(cfg)

	if err := Validate(cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed after environment overrides: %w", err)
	}

	return cfg, nil
}

// applyEnvOverrides applies environment variable overrides to the
// configuration. Environment variables use the format DCCBRIDGE_SECTION_FIELD.
func applyEnvOverrides(cfg *Config) {
	// Server overrides
	if val := os.Getenv("DCCBRIDGE_SERVER_LISTEN_ADDRESS"); val != "" {
		cfg.Server.ListenAddress = val
	}
	if val := os.Getenv("DCCBRIDGE_SERVER_READ_TIMEOUT"); val != "" {
		if d, err := time.ParseDuration(val); err == nil {
			cfg.Server.ReadTimeout = d
		}
	}
	if val := os.Getenv("DCCBRIDGE_SERVER_WRITE_TIMEOUT"); val != "" {
		if d, err := time.ParseDuration(val); err == nil {
			cfg.Server.WriteTimeout = d
		}
	}
	if val := os.Getenv("DCCBRIDGE_SERVER_IDLE_TIMEOUT"); val != "" {
		if d, err := time.ParseDuration(val); err == nil {
			cfg.Server.IdleTimeout = d
		}
	}
	if val := os.Getenv("DCCBRIDGE_SERVER_MAX_BODY_BYTES"); val != "" {
		if i, err := strconv.ParseInt(val, 10, 64); err == nil {
			cfg.Server.MaxBodyBytes = i
		}
	}

	// Profile overrides
	if val := os.Getenv("DCCBRIDGE_PROFILES_DIR"); val != "" {
		cfg.Profiles.Dir = val
	}
	if val := os.Getenv("DCCBRIDGE_PROFILES_WATCH"); val != "" {
		if b, err := strconv.ParseBool(val); err == nil {
			cfg.Profiles.Watch = b
		}
	}
	if val := os.Getenv("DCCBRIDGE_PROFILES_REPAIR"); val != "" {
		if b, err := strconv.ParseBool(val); err == nil {
			cfg.Profiles.Repair = b
		}
	}
	if val := os.Getenv("DCCBRIDGE_PROFILES_RESCAN_SCHEDULE"); val != "" {
		cfg.Profiles.RescanSchedule = val
	}
	if val := os.Getenv("DCCBRIDGE_PROFILES_STORAGE_BACKEND"); val != "" {
		cfg.Profiles.Storage.Backend = val
	}
	if val := os.Getenv("DCCBRIDGE_PROFILES_SQLITE_PATH"); val != "" {
		cfg.Profiles.Storage.SQLite.Path = val
	}

	// Engine overrides
	if val := os.Getenv("DCCBRIDGE_ENGINE_CONVERSION_TIMEOUT"); val != "" {
		if d, err := time.ParseDuration(val); err == nil {
			cfg.Engine.ConversionTimeout = d
		}
	}
	if val := os.Getenv("DCCBRIDGE_ENGINE_MAX_SOURCE_BYTES"); val != "" {
		if i, err := strconv.ParseInt(val, 10, 64); err == nil {
			cfg.Engine.MaxSourceBytes = i
		}
	}

	// Telemetry overrides
	if val := os.Getenv("DCCBRIDGE_TELEMETRY_LOGGING_LEVEL"); val != "" {
		cfg.Telemetry.Logging.Level = val
	}
	if val := os.Getenv("DCCBRIDGE_TELEMETRY_LOGGING_FORMAT"); val != "" {
		cfg.Telemetry.Logging.Format = val
	}
	if val := os.Getenv("DCCBRIDGE_TELEMETRY_METRICS_ENABLED"); val != "" {
		if b, err := strconv.ParseBool(val); err == nil {
			cfg.Telemetry.Metrics.Enabled = b
		}
	}
	if val := os.Getenv("DCCBRIDGE_TELEMETRY_METRICS_PATH"); val != "" {
		cfg.Telemetry.Metrics.Path = val
	}
}
