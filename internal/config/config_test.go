package config

import (
	"reflect"
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("UPSTREAM_BASE_URL", "https://api.example.com")
	t.Setenv("SEARCH_DEBOUNCE", "")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Cache.StaleTime != 5*time.Minute || cfg.Cache.CalculationStaleTime != 10*time.Minute {
		t.Errorf("stale times = %v / %v", cfg.Cache.StaleTime, cfg.Cache.CalculationStaleTime)
	}
	if cfg.Views.SearchDebounce != 500*time.Millisecond {
		t.Errorf("debounce = %v", cfg.Views.SearchDebounce)
	}
	if cfg.Storage.Enabled() {
		t.Error("storage enabled without a bucket")
	}
}

func TestLoadRequiresUpstream(t *testing.T) {
	t.Setenv("UPSTREAM_BASE_URL", "")
	if _, err := Load(); err == nil {
		t.Error("expected an error without UPSTREAM_BASE_URL")
	}
}

func TestEnvParsing(t *testing.T) {
	t.Setenv("TEST_DURATION", "750ms")
	t.Setenv("TEST_BAD_DURATION", "soon")
	t.Setenv("TEST_INT", "7")
	t.Setenv("TEST_BOOL", "true")
	t.Setenv("TEST_LIST", " https://a.example.com, ,https://b.example.com ")

	if got := getEnvDuration("TEST_DURATION", time.Second); got != 750*time.Millisecond {
		t.Errorf("duration = %v", got)
	}
	if got := getEnvDuration("TEST_BAD_DURATION", time.Second); got != time.Second {
		t.Errorf("bad duration = %v, want default", got)
	}
	if got := getEnvInt("TEST_INT", 1); got != 7 {
		t.Errorf("int = %d", got)
	}
	if !getEnvBool("TEST_BOOL", false) {
		t.Error("bool not parsed")
	}
	want := []string{"https://a.example.com", "https://b.example.com"}
	if got := getEnvList("TEST_LIST", nil); !reflect.DeepEqual(got, want) {
		t.Errorf("list = %v", got)
	}
}

func TestTelemetryConfig(t *testing.T) {
	t.Setenv("UPSTREAM_BASE_URL", "https://api.example.com")
	t.Setenv("ENABLE_TELEMETRY", "1")
	t.Setenv("OTEL_EXPORTER_OTLP_ENDPOINT", "collector:4318")
	t.Setenv("OTEL_TRACES_SAMPLE_RATIO", "0.25")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	tc := cfg.Telemetry
	if !tc.Enabled || tc.Endpoint != "collector:4318" || tc.SampleRatio != 0.25 {
		t.Errorf("telemetry = %+v", tc)
	}
	if tc.ServiceName != "metaladmin" {
		t.Errorf("service name = %q", tc.ServiceName)
	}
}
