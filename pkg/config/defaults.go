package config

import "time"

// Default values for configuration fields.
const (
	// Server defaults
	DefaultListenAddress   = "127.0.0.1:8080"
	DefaultReadTimeout     = 30 * time.Second
	DefaultWriteTimeout    = 30 * time.Second
	DefaultIdleTimeout     = 120 * time.Second
	DefaultShutdownTimeout = 30 * time.Second
	DefaultMaxHeaderBytes  = 1048576  // 1MB
	DefaultMaxBodyBytes    = 16777216 // 16MB

	// Profile defaults
	DefaultProfilesDir      = "./profiles"
	DefaultWatchDebounce    = 500 * time.Millisecond
	DefaultRescanSchedule   = "0 * * * *"
	DefaultProfileRepair    = true
	DefaultProfileMaxSize   = int64(10485760) // 10MB
	DefaultProfileMaxDepth  = 10
	DefaultStorageBackend   = "memory"
	DefaultSQLitePath       = "data/profiles.db"
	DefaultMaxOpenConns     = 10
	DefaultMaxIdleConns     = 5
	DefaultSQLiteWALMode    = true
	DefaultSQLiteBusyWait   = 5 * time.Second

	// Engine defaults
	DefaultConversionTimeout = 30 * time.Second
	DefaultMaxSourceBytes    = int64(16777216) // 16MB

	// Telemetry defaults
	DefaultLoggingLevel    = "info"
	DefaultLoggingFormat   = "json"
	DefaultMetricsEnabled  = true
	DefaultMetricsPath     = "/metrics"
	DefaultMetricsNS       = "dccbridge"
	DefaultLivenessPath    = "/healthz"
	DefaultReadinessPath   = "/readyz"
)

// DefaultDurationBuckets are the histogram buckets for conversion
// duration in seconds. Conversions are CPU-bound and fast; the buckets
// skew low.
var DefaultDurationBuckets = []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1.0, 2.5}

// ApplyDefaults applies default values to a Config struct.
// It sets defaults for any fields that have zero values.
// This function is idempotent and safe to call multiple times.
func ApplyDefaults(cfg *Config) {
	// Server defaults
	if cfg.Server.ListenAddress == "" {
		cfg.Server.ListenAddress = DefaultListenAddress
	}
	if cfg.Server.ReadTimeout == 0 {
		cfg.Server.ReadTimeout = DefaultReadTimeout
	}
	if cfg.Server.WriteTimeout == 0 {
		cfg.Server.WriteTimeout = DefaultWriteTimeout
	}
	if cfg.Server.IdleTimeout == 0 {
		cfg.Server.IdleTimeout = DefaultIdleTimeout
	}
	if cfg.Server.ShutdownTimeout == 0 {
		cfg.Server.ShutdownTimeout = DefaultShutdownTimeout
	}
	if cfg.Server.MaxHeaderBytes == 0 {
		cfg.Server.MaxHeaderBytes = DefaultMaxHeaderBytes
	}
	if cfg.Server.MaxBodyBytes == 0 {
		cfg.Server.MaxBodyBytes = DefaultMaxBodyBytes
	}

	// Profile defaults
	if cfg.Profiles.Dir == "" {
		cfg.Profiles.Dir = DefaultProfilesDir
	}
	if cfg.Profiles.WatchDebounce == 0 {
		cfg.Profiles.WatchDebounce = DefaultWatchDebounce
	}
	if cfg.Profiles.RescanSchedule == "" {
		cfg.Profiles.RescanSchedule = DefaultRescanSchedule
	}
	if cfg.Profiles.MaxFileSize == 0 {
		cfg.Profiles.MaxFileSize = DefaultProfileMaxSize
	}
	if cfg.Profiles.MaxDepth == 0 {
		cfg.Profiles.MaxDepth = DefaultProfileMaxDepth
	}
	if cfg.Profiles.Storage.Backend == "" {
		cfg.Profiles.Storage.Backend = DefaultStorageBackend
	}
	if cfg.Profiles.Storage.SQLite.Path == "" {
		cfg.Profiles.Storage.SQLite.Path = DefaultSQLitePath
	}
	if cfg.Profiles.Storage.SQLite.MaxOpenConns == 0 {
		cfg.Profiles.Storage.SQLite.MaxOpenConns = DefaultMaxOpenConns
	}
	if cfg.Profiles.Storage.SQLite.MaxIdleConns == 0 {
		cfg.Profiles.Storage.SQLite.MaxIdleConns = DefaultMaxIdleConns
	}
	if cfg.Profiles.Storage.SQLite.BusyTimeout == 0 {
		cfg.Profiles.Storage.SQLite.BusyTimeout = DefaultSQLiteBusyWait
	}

	// Engine defaults
	if cfg.Engine.ConversionTimeout == 0 {
		cfg.Engine.ConversionTimeout = DefaultConversionTimeout
	}
	if cfg.Engine.MaxSourceBytes == 0 {
		cfg.Engine.MaxSourceBytes = DefaultMaxSourceBytes
	}

	// Telemetry defaults
	if cfg.Telemetry.Logging.Level == "" {
		cfg.Telemetry.Logging.Level = DefaultLoggingLevel
	}
	if cfg.Telemetry.Logging.Format == "" {
		cfg.Telemetry.Logging.Format = DefaultLoggingFormat
	}
	if cfg.Telemetry.Metrics.Path == "" {
		cfg.Telemetry.Metrics.Path = DefaultMetricsPath
	}
	if cfg.Telemetry.Metrics.Namespace == "" {
		cfg.Telemetry.Metrics.Namespace = DefaultMetricsNS
	}
	if len(cfg.Telemetry.Metrics.DurationBuckets) == 0 {
		cfg.Telemetry.Metrics.DurationBuckets = DefaultDurationBuckets
	}
	if cfg.Telemetry.Health.LivenessPath == "" {
		cfg.Telemetry.Health.LivenessPath = DefaultLivenessPath
	}
	if cfg.Telemetry.Health.ReadinessPath == "" {
		cfg.Telemetry.Health.ReadinessPath = DefaultReadinessPath
	}
}

// NewDefault returns a Config with all default values applied, suitable
// for running without a configuration file.
func NewDefault() *Config {
	cfg := &Config{}
	cfg.Profiles.Repair = DefaultProfileRepair
	cfg.Profiles.Storage.SQLite.WALMode = DefaultSQLiteWALMode
	cfg.Telemetry.Metrics.Enabled = DefaultMetricsEnabled
	cfg.Telemetry.Health.Enabled = true
	ApplyDefaults(cfg)
	return cfg
}
