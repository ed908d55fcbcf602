package telemetry

import (
	"context"
	"testing"

	"metaladmin/internal/config"
)

func TestInitDisabled(t *testing.T) {
	tests := []struct {
		name string
		cfg  config.TelemetryConfig
	}{
		{name: "off", cfg: config.TelemetryConfig{Endpoint: "collector:4318"}},
		{name: "no endpoint", cfg: config.TelemetryConfig{Enabled: true}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			shutdown, enabled, err := Init(context.Background(), tt.cfg)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if enabled {
				t.Error("tracing enabled without both flag and endpoint")
			}
			if err := shutdown(context.Background()); err != nil {
				t.Errorf("no-op shutdown returned %v", err)
			}
		})
	}
}
