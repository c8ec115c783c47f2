// Package metrics exposes Prometheus metrics for the conversion
// pipeline. Metrics are created against an injected registry so tests
// can use isolated registries.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"caliper-hq/dccbridge/pkg/config"
)

// ConversionMetrics tracks metrics for certificate conversions.
//
// Metrics:
//   - dccbridge_conversions_total: Conversion count by profile and status
//   - dccbridge_conversion_duration_seconds: Conversion latency
//   - dccbridge_rule_failures_total: Failed rule evaluations by rule type
//   - dccbridge_generator_warnings_total: Validation warnings emitted by the XML generator
//   - dccbridge_profiles_loaded: Number of mapping profiles currently loaded
type ConversionMetrics struct {
	conversions *prometheus.CounterVec
	duration    *prometheus.HistogramVec
	ruleErrors  *prometheus.CounterVec
	warnings    prometheus.Counter
	profiles    prometheus.Gauge
}

// NewConversionMetrics creates and registers conversion metrics with the
// provided registry.
func NewConversionMetrics(cfg *config.MetricsConfig, registry *prometheus.Registry) *ConversionMetrics {
	cm := &ConversionMetrics{
		conversions: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Name:      "conversions_total",
				Help:      "Total number of conversions by profile and status",
			},
			[]string{"profile", "status"},
		),

		duration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: cfg.Namespace,
				Name:      "conversion_duration_seconds",
				Help:      "Conversion duration in seconds",
				Buckets:   cfg.DurationBuckets,
			},
			[]string{"profile"},
		),

		ruleErrors: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Name:      "rule_failures_total",
				Help:      "Total number of failed rule evaluations by rule type",
			},
			[]string{"rule_type"},
		),

		warnings: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Name:      "generator_warnings_total",
				Help:      "Total number of validation warnings emitted during XML generation",
			},
		),

		profiles: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Namespace: cfg.Namespace,
				Name:      "profiles_loaded",
				Help:      "Number of mapping profiles currently loaded",
			},
		),
	}

	registry.MustRegister(
		cm.conversions,
		cm.duration,
		cm.ruleErrors,
		cm.warnings,
		cm.profiles,
	)

	return cm
}

// RecordConversion records a completed conversion attempt.
// Status is "ok" for successful conversions, or an error class such as
// "parse_error" for failed ones.
func (cm *ConversionMetrics) RecordConversion(profile, status string, duration time.Duration) {
	cm.conversions.WithLabelValues(profile, status).Inc()
	cm.duration.WithLabelValues(profile).Observe(duration.Seconds())
}

// RecordRuleFailure records a failed rule evaluation.
func (cm *ConversionMetrics) RecordRuleFailure(ruleType string) {
	cm.ruleErrors.WithLabelValues(ruleType).Inc()
}

// RecordWarnings records validation warnings from one generation pass.
func (cm *ConversionMetrics) RecordWarnings(count int) {
	cm.warnings.Add(float64(count))
}

// SetProfilesLoaded records the current number of loaded profiles.
func (cm *ConversionMetrics) SetProfilesLoaded(count int) {
	cm.profiles.Set(float64(count))
}

// NewRegistry creates a Prometheus registry pre-populated with the
// standard Go runtime and process collectors.
func NewRegistry() *prometheus.Registry {
	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return registry
}

// Handler returns an HTTP handler serving the registry in the
// Prometheus exposition format.
func Handler(registry *prometheus.Registry) http.Handler {
	return promhttp.HandlerFor(registry, promhttp.HandlerOpts{})
}
