package config

import (
	"fmt"
	"net"
	"strings"

	"github.com/robfig/cron/v3"
)

// FieldError represents a validation error for a specific configuration field.
type FieldError struct {
	// Field is the dotted path to the configuration field (e.g., "server.listen_address").
	Field string

	// Message is a human-readable error message.
	Message string
}

// Error returns the error message for this field error.
func (e FieldError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidationError represents one or more validation errors in a configuration.
// It implements the error interface and provides access to all field errors.
type ValidationError struct {
	// Errors contains all validation errors found in the configuration.
	Errors []FieldError
}

// Error returns a formatted string containing all validation errors.
func (e ValidationError) Error() string {
	if len(e.Errors) == 0 {
		return "configuration validation failed"
	}
	if len(e.Errors) == 1 {
		return fmt.Sprintf("configuration validation failed: %s", e.Errors[0].Error())
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("configuration validation failed with %d errors:\n", len(e.Errors)))
	for _, err := range e.Errors {
		sb.WriteString(fmt.Sprintf("  - %s\n", err.Error()))
	}
	return sb.String()
}

// Validate validates the entire configuration and returns a ValidationError
// if any validation rules fail. It returns nil if the configuration is valid.
// All validation errors are collected and returned together.
func Validate(cfg *Config) error {
	var errs []FieldError

	errs = append(errs, validateServer(&cfg.Server)...)
	errs = append(errs, validateProfiles(&cfg.Profiles)...)
	errs = append(errs, validateEngine(&cfg.Engine)...)
	errs = append(errs, validateTelemetry(&cfg.Telemetry)...)

	if len(errs) > 0 {
		return ValidationError{Errors: errs}
	}

	return nil
}

// validateServer validates server configuration.
func validateServer(cfg *ServerConfig) []FieldError {
	var errs []FieldError

	if cfg.ListenAddress == "" {
		errs = append(errs, FieldError{
			Field:   "server.listen_address",
			Message: "listen address is required",
		})
	} else if _, _, err := net.SplitHostPort(cfg.ListenAddress); err != nil {
		errs = append(errs, FieldError{
			Field:   "server.listen_address",
			Message: fmt.Sprintf("invalid address %q: must be host:port", cfg.ListenAddress),
		})
	}

	if cfg.MaxBodyBytes < 0 {
		errs = append(errs, FieldError{
			Field:   "server.max_body_bytes",
			Message: "must not be negative",
		})
	}

	return errs
}

// validateProfiles validates profile management configuration.
func validateProfiles(cfg *ProfilesConfig) []FieldError {
	var errs []FieldError

	if cfg.Dir == "" {
		errs = append(errs, FieldError{
			Field:   "profiles.dir",
			Message: "profile directory is required",
		})
	}

	if cfg.MaxFileSize < 0 {
		errs = append(errs, FieldError{
			Field:   "profiles.max_file_size",
			Message: "must not be negative",
		})
	}

	if cfg.MaxDepth < 1 {
		errs = append(errs, FieldError{
			Field:   "profiles.max_depth",
			Message: "must be at least 1",
		})
	}

	if cfg.RescanSchedule != "" {
		if _, err := cron.ParseStandard(cfg.RescanSchedule); err != nil {
			errs = append(errs, FieldError{
				Field:   "profiles.rescan_schedule",
				Message: fmt.Sprintf("invalid cron expression %q: %v", cfg.RescanSchedule, err),
			})
		}
	}

	switch cfg.Storage.Backend {
	case "memory", "sqlite":
	default:
		errs = append(errs, FieldError{
			Field:   "profiles.storage.backend",
			Message: fmt.Sprintf("unknown backend %q: must be one of: memory, sqlite", cfg.Storage.Backend),
		})
	}

	if cfg.Storage.Backend == "sqlite" && cfg.Storage.SQLite.Path == "" {
		errs = append(errs, FieldError{
			Field:   "profiles.storage.sqlite.path",
			Message: "database path is required when backend is sqlite",
		})
	}

	return errs
}

// validateEngine validates mapping engine configuration.
func validateEngine(cfg *EngineConfig) []FieldError {
	var errs []FieldError

	if cfg.ConversionTimeout < 0 {
		errs = append(errs, FieldError{
			Field:   "engine.conversion_timeout",
			Message: "must not be negative",
		})
	}

	if cfg.MaxSourceBytes < 0 {
		errs = append(errs, FieldError{
			Field:   "engine.max_source_bytes",
			Message: "must not be negative",
		})
	}

	return errs
}

// validateTelemetry validates telemetry configuration.
func validateTelemetry(cfg *TelemetryConfig) []FieldError {
	var errs []FieldError

	switch cfg.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		errs = append(errs, FieldError{
			Field:   "telemetry.logging.level",
			Message: fmt.Sprintf("unknown level %q: must be one of: debug, info, warn, error", cfg.Logging.Level),
		})
	}

	switch cfg.Logging.Format {
	case "json", "text":
	default:
		errs = append(errs, FieldError{
			Field:   "telemetry.logging.format",
			Message: fmt.Sprintf("unknown format %q: must be one of: json, text", cfg.Logging.Format),
		})
	}

	if cfg.Metrics.Enabled && !strings.HasPrefix(cfg.Metrics.Path, "/") {
		errs = append(errs, FieldError{
			Field:   "telemetry.metrics.path",
			Message: fmt.Sprintf("invalid path %q: must start with /", cfg.Metrics.Path),
		})
	}

	return errs
}
