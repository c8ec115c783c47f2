package metrics

import (
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"caliper-hq/dccbridge/pkg/config"
)

func testMetrics(t *testing.T) (*ConversionMetrics, *prometheus.Registry) {
	t.Helper()
	registry := prometheus.NewRegistry()
	cfg := &config.MetricsConfig{
		Namespace:       "dccbridge",
		DurationBuckets: config.DefaultDurationBuckets,
	}
	return NewConversionMetrics(cfg, registry), registry
}

func TestRecordConversion(t *testing.T) {
	cm, registry := testMetrics(t)

	cm.RecordConversion("keysight-dmm", "ok", 25*time.Millisecond)
	cm.RecordConversion("keysight-dmm", "ok", 30*time.Millisecond)
	cm.RecordConversion("fluke-gauge", "parse_error", time.Millisecond)

	got := testutil.ToFloat64(cm.conversions.WithLabelValues("keysight-dmm", "ok"))
	if got != 2 {
		t.Errorf("conversions{keysight-dmm,ok} = %v, want 2", got)
	}
	got = testutil.ToFloat64(cm.conversions.WithLabelValues("fluke-gauge", "parse_error"))
	if got != 1 {
		t.Errorf("conversions{fluke-gauge,parse_error} = %v, want 1", got)
	}

	count, err := testutil.GatherAndCount(registry, "dccbridge_conversion_duration_seconds")
	if err != nil {
		t.Fatalf("gathering: %v", err)
	}
	if count != 2 {
		t.Errorf("duration series count = %d, want 2", count)
	}
}

func TestRecordRuleFailure(t *testing.T) {
	cm, _ := testMetrics(t)

	cm.RecordRuleFailure("number")
	cm.RecordRuleFailure("number")
	cm.RecordRuleFailure("lookup")

	if got := testutil.ToFloat64(cm.ruleErrors.WithLabelValues("number")); got != 2 {
		t.Errorf("rule_failures{number} = %v, want 2", got)
	}
}

func TestRecordWarningsAndProfiles(t *testing.T) {
	cm, _ := testMetrics(t)

	cm.RecordWarnings(3)
	cm.RecordWarnings(1)
	if got := testutil.ToFloat64(cm.warnings); got != 4 {
		t.Errorf("warnings = %v, want 4", got)
	}

	cm.SetProfilesLoaded(7)
	if got := testutil.ToFloat64(cm.profiles); got != 7 {
		t.Errorf("profiles_loaded = %v, want 7", got)
	}
}

func TestHandlerServesExposition(t *testing.T) {
	registry := prometheus.NewRegistry()
	cfg := &config.MetricsConfig{Namespace: "dccbridge"}
	cm := NewConversionMetrics(cfg, registry)
	cm.RecordConversion("keysight-dmm", "ok", time.Millisecond)

	rec := httptest.NewRecorder()
	Handler(registry).ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))

	if rec.Code != 200 {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "dccbridge_conversions_total") {
		t.Error("exposition missing dccbridge_conversions_total")
	}
}
