package config

import (
	"errors"
	"time"
)

// TelemetryConfig configures trace export. Metrics are always served on /metrics.
type TelemetryConfig struct {
	Enabled bool         `koanf:"enabled"`
	Traces  TracesConfig `koanf:"traces"`
}

type TracesConfig struct {
	OtlpHttp OtlpHttpConfig `koanf:"otlphttp"`
}

// OtlpHttpConfig points the trace exporter at an OTLP/HTTP collector, e.g. localhost:4318.
type OtlpHttpConfig struct {
	Endpoint string        `koanf:"endpoint"`
	Insecure bool          `koanf:"insecure"`
	Timeout  time.Duration `koanf:"timeout"`
}

func (c *TelemetryConfig) String() string {
	return section("Telemetry",
		"enabled", c.Enabled,
		"traces.otlphttp.endpoint", c.Traces.OtlpHttp.Endpoint,
		"traces.otlphttp.insecure", c.Traces.OtlpHttp.Insecure,
		"traces.otlphttp.timeout", c.Traces.OtlpHttp.Timeout,
	)
}

func (c *TelemetryConfig) Validate() error {
	if !c.Enabled {
		return nil
	}
	if c.Traces.OtlpHttp.Endpoint == "" {
		return errors.New("OTel endpoint is not configured")
	}
	if c.Traces.OtlpHttp.Timeout <= 0 {
		return errors.New("telemetry timeout must be greater than 0")
	}
	return nil
}
