package config

import (
	"strings"
	"testing"
)

func TestValidateRejectsInvalidURLScheme(t *testing.T) {
	cfg := Default()
	cfg.TelemetryURL = "ftp://example.com"
	errs := cfg.Validate()
	if len(errs) == 0 {
		t.Fatal("invalid URL scheme should produce an error")
	}
	found := false
	for _, err := range errs {
		if strings.Contains(err.Error(), "scheme must be ws or wss") {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected scheme error, got: %v", errs)
	}
}

func TestValidateClampsOpacity(t *testing.T) {
	cfg := Default()
	cfg.OpacityPercent = 250
	errs := cfg.Validate()
	if len(errs) == 0 {
		t.Fatal("expected clamping error for opacity")
	}
	if cfg.OpacityPercent != 100 {
		t.Fatalf("OpacityPercent = %d, want 100 (clamped)", cfg.OpacityPercent)
	}
}

func TestValidateFallsBackOnUnknownCorner(t *testing.T) {
	cfg := Default()
	cfg.Corner = "middle"
	errs := cfg.Validate()
	if len(errs) == 0 {
		t.Fatal("unknown corner should produce an error")
	}
	if cfg.Corner != "top-left" {
		t.Fatalf("Corner = %q, want top-left fallback", cfg.Corner)
	}
}

func TestValidateFallsBackOnUnknownAPIFamily(t *testing.T) {
	cfg := Default()
	cfg.APIFamily = "vulkan"
	errs := cfg.Validate()
	if len(errs) == 0 {
		t.Fatal("unknown api family should produce an error")
	}
	if cfg.APIFamily != "auto" {
		t.Fatalf("APIFamily = %q, want auto fallback", cfg.APIFamily)
	}
}

func TestValidateClampsMirrorSettings(t *testing.T) {
	cfg := Default()
	cfg.MirrorPort = -1
	cfg.MirrorMaxClients = 0
	cfg.Validate()
	if cfg.MirrorPort != 9998 {
		t.Fatalf("MirrorPort = %d, want 9998", cfg.MirrorPort)
	}
	if cfg.MirrorMaxClients != 1 {
		t.Fatalf("MirrorMaxClients = %d, want 1", cfg.MirrorMaxClients)
	}
}

func TestValidateWarnsOnUnknownLogLevel(t *testing.T) {
	cfg := Default()
	cfg.LogLevel = "verbose"
	errs := cfg.Validate()
	if len(errs) == 0 {
		t.Fatal("expected error for unknown log level")
	}
}

func TestValidConfigHasNoErrors(t *testing.T) {
	cfg := Default()
	errs := cfg.Validate()
	if len(errs) > 0 {
		t.Fatalf("default config should validate clean, got: %v", errs)
	}
}
