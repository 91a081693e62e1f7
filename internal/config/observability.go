package config

import (
	"fmt"
	"strings"
	"time"
)

// RateLimitConfig limits GraphQL requests per client IP
type RateLimitConfig struct {
	Enabled bool          `mapstructure:"enabled"`
	Max     int           `mapstructure:"max"`    // Requests allowed per window
	Window  time.Duration `mapstructure:"window"` // Length of the window (default: 1m)
}

// Validate validates rate limit configuration
func (rc *RateLimitConfig) Validate() error {
	if !rc.Enabled {
		return nil
	}
	if rc.Max < 1 {
		return fmt.Errorf("rate_limit max must be at least 1, got: %d", rc.Max)
	}
	if rc.Window <= 0 {
		return fmt.Errorf("rate_limit window must be positive, got: %s", rc.Window)
	}
	return nil
}

// ValidationConfig controls how rejected mutation input is reported
type ValidationConfig struct {
	LogRejections bool   `mapstructure:"log_rejections"` // Log rejected mutations at debug level
	ExtensionKey  string `mapstructure:"extension_key"`  // Error extensions key holding the entries (default: validationErrors)
}

// Validate validates validation reporting configuration
func (vc *ValidationConfig) Validate() error {
	if strings.TrimSpace(vc.ExtensionKey) == "" {
		return fmt.Errorf("validation extension_key is required")
	}
	return nil
}

// MetricsConfig contains Prometheus metrics settings
type MetricsConfig struct {
	Enabled   bool   `mapstructure:"enabled"`
	Path      string `mapstructure:"path"`      // Scrape endpoint (default: /metrics)
	Namespace string `mapstructure:"namespace"` // Metric name prefix (default: gqlvalidate)
}

// Validate validates metrics configuration
func (mc *MetricsConfig) Validate() error {
	if !mc.Enabled {
		return nil
	}
	if !strings.HasPrefix(mc.Path, "/") {
		return fmt.Errorf("metrics path must start with '/', got: %q", mc.Path)
	}
	return nil
}

// TracingConfig contains OpenTelemetry tracing settings
type TracingConfig struct {
	Enabled     bool    `mapstructure:"enabled"`
	Endpoint    string  `mapstructure:"endpoint"`     // OTLP gRPC collector address
	ServiceName string  `mapstructure:"service_name"` // service.name resource attribute
	Insecure    bool    `mapstructure:"insecure"`     // Disable TLS towards the collector
	SampleRatio float64 `mapstructure:"sample_ratio"` // Fraction of traces sampled, 0 to 1
}

// Validate validates tracing configuration
func (tc *TracingConfig) Validate() error {
	if !tc.Enabled {
		return nil
	}
	if tc.Endpoint == "" {
		return fmt.Errorf("tracing endpoint is required when tracing is enabled")
	}
	if tc.SampleRatio < 0 || tc.SampleRatio > 1 {
		return fmt.Errorf("tracing sample_ratio must be between 0 and 1, got: %g", tc.SampleRatio)
	}
	return nil
}

// LoggingConfig contains log output settings
type LoggingConfig struct {
	Level  string `mapstructure:"level"`  // trace, debug, info, warn, error
	Format string `mapstructure:"format"` // console or json
}

// Validate validates logging configuration
func (lc *LoggingConfig) Validate() error {
	switch lc.Format {
	case "console", "json":
		return nil
	default:
		return fmt.Errorf("logging format must be 'console' or 'json', got: %q", lc.Format)
	}
}
