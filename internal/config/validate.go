package config

import (
	"fmt"
	"log/slog"
	"net/url"
	"strings"
)

var validCorners = map[string]bool{
	"top-left":     true,
	"top-right":    true,
	"bottom-left":  true,
	"bottom-right": true,
}

var validAPIFamilies = map[string]bool{
	"auto": true,
	"dx11": true,
	"dx12": true,
}

var validLogLevels = map[string]bool{
	"debug":   true,
	"info":    true,
	"warn":    true,
	"warning": true,
	"error":   true,
}

// Validate checks the config for invalid values and returns all errors found.
// Dangerous zero-values are clamped to safe defaults. Other validation errors
// are logged as warnings but do not prevent startup.
func (c *Config) Validate() []error {
	var errs []error

	if c.TelemetryURL != "" {
		u, err := url.Parse(c.TelemetryURL)
		if err != nil {
			errs = append(errs, fmt.Errorf("telemetry_url %q is not a valid URL: %w", c.TelemetryURL, err))
		} else if u.Scheme != "ws" && u.Scheme != "wss" {
			errs = append(errs, fmt.Errorf("telemetry_url scheme must be ws or wss, got %q", u.Scheme))
		}
	}

	if c.APIFamily != "" && !validAPIFamilies[strings.ToLower(c.APIFamily)] {
		errs = append(errs, fmt.Errorf("api_family %q is not valid (use auto, dx11, dx12), falling back to auto", c.APIFamily))
		c.APIFamily = "auto"
	}

	if c.Corner != "" && !validCorners[strings.ToLower(c.Corner)] {
		errs = append(errs, fmt.Errorf("corner %q is not valid, falling back to top-left", c.Corner))
		c.Corner = "top-left"
	}

	if c.OpacityPercent < 0 {
		errs = append(errs, fmt.Errorf("opacity_percent %d is below minimum 0, clamping", c.OpacityPercent))
		c.OpacityPercent = 0
	} else if c.OpacityPercent > 100 {
		errs = append(errs, fmt.Errorf("opacity_percent %d exceeds maximum 100, clamping", c.OpacityPercent))
		c.OpacityPercent = 100
	}

	if c.MirrorPort < 1 || c.MirrorPort > 65535 {
		errs = append(errs, fmt.Errorf("mirror_port %d is out of range, clamping to 9998", c.MirrorPort))
		c.MirrorPort = 9998
	}

	if c.MirrorMaxClients < 1 {
		errs = append(errs, fmt.Errorf("mirror_max_clients %d is below minimum 1, clamping", c.MirrorMaxClients))
		c.MirrorMaxClients = 1
	} else if c.MirrorMaxClients > 16 {
		errs = append(errs, fmt.Errorf("mirror_max_clients %d exceeds maximum 16, clamping", c.MirrorMaxClients))
		c.MirrorMaxClients = 16
	}

	if c.LogLevel != "" && !validLogLevels[strings.ToLower(c.LogLevel)] {
		errs = append(errs, fmt.Errorf("log_level %q is not valid (use debug, info, warn, error)", c.LogLevel))
	}

	if c.LogFormat != "" && c.LogFormat != "text" && c.LogFormat != "json" {
		errs = append(errs, fmt.Errorf("log_format %q is not valid (use text or json)", c.LogFormat))
	}

	for _, err := range errs {
		slog.Warn("config validation", "error", err)
	}

	return errs
}
