package config

import "time"

// Config is the root configuration structure for dccbridge.
// It contains all configuration sections for the HTTP server, profile
// management, the mapping engine, and telemetry.
type Config struct {
	// Server contains HTTP server configuration including listen address,
	// timeouts, and request size limits.
	Server ServerConfig `yaml:"server"`

	// Profiles contains configuration for mapping-profile loading, storage,
	// and automatic reloading.
	Profiles ProfilesConfig `yaml:"profiles"`

	// Engine contains configuration for the mapping engine.
	Engine EngineConfig `yaml:"engine"`

	// Telemetry contains configuration for observability including logging,
	// metrics, and health checks.
	Telemetry TelemetryConfig `yaml:"telemetry"`
}

// ServerConfig contains configuration for the HTTP conversion server.
type ServerConfig struct {
	// ListenAddress is the address and port for the server to listen on.
	// Format: "host:port" (e.g., "127.0.0.1:8080", "0.0.0.0:8080").
	// Default: "127.0.0.1:8080"
	ListenAddress string `yaml:"listen_address"`

	// ReadTimeout is the maximum duration for reading the entire request,
	// including the body. A zero or negative value means no timeout.
	// Default: 30s
	ReadTimeout time.Duration `yaml:"read_timeout"`

	// WriteTimeout is the maximum duration before timing out writes of the
	// response. A zero or negative value means no timeout.
	// Default: 30s
	WriteTimeout time.Duration `yaml:"write_timeout"`

	// IdleTimeout is the maximum amount of time to wait for the next request
	// when keep-alives are enabled. If IdleTimeout is zero, ReadTimeout is used.
	// Default: 120s
	IdleTimeout time.Duration `yaml:"idle_timeout"`

	// ShutdownTimeout is the maximum duration to wait for graceful shutdown.
	// If requests are still in-flight after this timeout, the server will
	// force shutdown.
	// Default: 30s
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`

	// MaxHeaderBytes controls the maximum number of bytes the server will
	// read parsing the request header's keys and values.
	// Default: 1048576 (1MB)
	MaxHeaderBytes int `yaml:"max_header_bytes"`

	// MaxBodyBytes is the maximum size of a conversion request body.
	// Source certificates larger than this are rejected.
	// Default: 16777216 (16MB)
	MaxBodyBytes int64 `yaml:"max_body_bytes"`
}

// ProfilesConfig contains configuration for mapping-profile management.
type ProfilesConfig struct {
	// Dir is the directory containing mapping profile JSON files.
	// Default: "./profiles"
	Dir string `yaml:"dir"`

	// Watch enables automatic reloading when profile files change.
	// Default: false
	Watch bool `yaml:"watch"`

	// WatchDebounce is the quiet period after a file change before the
	// profile is reloaded. Editors often emit several events per save.
	// Default: 500ms
	WatchDebounce time.Duration `yaml:"watch_debounce"`

	// RescanSchedule is a cron expression for periodic full directory
	// rescans, catching changes the watcher missed. Empty disables rescans.
	// Default: "0 * * * *" (hourly)
	RescanSchedule string `yaml:"rescan_schedule"`

	// Repair enables lenient parsing of malformed profile JSON.
	// AI-generated profiles frequently carry trailing commas, comments,
	// or unquoted keys; repair recovers them before strict validation.
	// Default: true
	Repair bool `yaml:"repair"`

	// MaxFileSize is the maximum size of a single profile file in bytes.
	// Default: 10485760 (10MB)
	MaxFileSize int64 `yaml:"max_file_size"`

	// MaxDepth is the maximum nesting depth of array rules within a profile.
	// Default: 10
	MaxDepth int `yaml:"max_depth"`

	// Storage configures the profile storage backend.
	Storage ProfileStorageConfig `yaml:"storage"`
}

// ProfileStorageConfig configures the profile storage backend.
type ProfileStorageConfig struct {
	// Backend specifies the storage backend to use.
	// Options: "memory", "sqlite"
	// Default: "memory"
	Backend string `yaml:"backend"`

	// SQLite contains SQLite-specific configuration.
	SQLite SQLiteConfig `yaml:"sqlite"`
}

// SQLiteConfig contains SQLite-specific configuration.
type SQLiteConfig struct {
	// Path is the file path for the SQLite database.
	// Default: "data/profiles.db"
	Path string `yaml:"path"`

	// MaxOpenConns is the maximum number of open database connections.
	// Default: 10
	MaxOpenConns int `yaml:"max_open_conns"`

	// MaxIdleConns is the maximum number of idle database connections.
	// Default: 5
	MaxIdleConns int `yaml:"max_idle_conns"`

	// WALMode enables Write-Ahead Logging mode for better concurrency.
	// Default: true
	WALMode bool `yaml:"wal_mode"`

	// BusyTimeout is the duration to wait when the database is locked.
	// Default: 5s
	BusyTimeout time.Duration `yaml:"busy_timeout"`
}

// EngineConfig contains configuration for the mapping engine.
type EngineConfig struct {
	// ConversionTimeout is the maximum duration for a single conversion.
	// A zero value means no timeout.
	// Default: 30s
	ConversionTimeout time.Duration `yaml:"conversion_timeout"`

	// MaxSourceBytes is the maximum size of a source XML document.
	// Default: 16777216 (16MB)
	MaxSourceBytes int64 `yaml:"max_source_bytes"`
}

// TelemetryConfig contains configuration for observability.
type TelemetryConfig struct {
	// Logging contains logging configuration.
	Logging LoggingConfig `yaml:"logging"`

	// Metrics contains metrics collection configuration.
	Metrics MetricsConfig `yaml:"metrics"`

	// Health contains health check configuration.
	Health HealthConfig `yaml:"health"`
}

// LoggingConfig contains logging configuration.
type LoggingConfig struct {
	// Level is the minimum log level to emit.
	// Options: "debug", "info", "warn", "error"
	// Default: "info"
	Level string `yaml:"level"`

	// Format controls the log output format.
	// Options: "json", "text"
	// Default: "json"
	Format string `yaml:"format"`

	// AddSource includes file and line number in log entries.
	// Default: false
	AddSource bool `yaml:"add_source"`
}

// MetricsConfig contains metrics collection configuration.
type MetricsConfig struct {
	// Enabled controls whether metrics collection is active.
	// Default: true
	Enabled bool `yaml:"enabled"`

	// Path is the HTTP path for the Prometheus metrics endpoint.
	// Default: "/metrics"
	Path string `yaml:"path"`

	// Namespace is the metric name prefix.
	// Default: "dccbridge"
	Namespace string `yaml:"namespace"`

	// DurationBuckets defines histogram buckets for conversion duration
	// in seconds.
	// Default: [0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1.0, 2.5]
	DurationBuckets []float64 `yaml:"duration_buckets"`
}

// HealthConfig contains health check endpoint configuration.
type HealthConfig struct {
	// Enabled controls whether health check endpoints are enabled.
	// Default: true
	Enabled bool `yaml:"enabled"`

	// LivenessPath is the path for the liveness probe endpoint.
	// Default: "/healthz"
	LivenessPath string `yaml:"liveness_path"`

	// ReadinessPath is the path for the readiness probe endpoint.
	// Default: "/readyz"
	ReadinessPath string `yaml:"readiness_path"`
}
