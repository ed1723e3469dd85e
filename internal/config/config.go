// Package config holds the product service configuration.
package config

import (
	"fmt"
	"strings"

	"github.com/abgdnv/productcatalog/pkg/config"
	"github.com/abgdnv/productcatalog/pkg/config/configloader"
)

var _ configloader.Validator = (*Config)(nil)

type Config struct {
	HTTPServer config.HTTPConfig       `koanf:"server"`
	Database   config.DatabaseConfig   `koanf:"database"`
	Store      config.StoreConfig      `koanf:"store"`
	Log        config.LogConfig        `koanf:"log"`
	PProf      config.PProfConfig      `koanf:"pprof"`
	GRPC       config.GrpcServerConfig `koanf:"grpc"`
	Shutdown   config.ShutdownConfig   `koanf:"shutdown"`
	Telemetry  config.TelemetryConfig  `koanf:"telemetry"`
	Nats       config.NATSConfig       `koanf:"nats"`
	Resilience config.ResilienceConfig `koanf:"resilience"`
}

func (c *Config) String() string {
	var b strings.Builder
	b.WriteString(c.HTTPServer.String())
	b.WriteString(c.Store.String())
	if c.usesDatabase() {
		b.WriteString(c.Database.String())
	}
	b.WriteString(c.GRPC.String())
	b.WriteString(c.Log.String())
	b.WriteString(c.PProf.String())
	b.WriteString(c.Telemetry.String())
	b.WriteString(c.Nats.String())
	b.WriteString(c.Resilience.String())
	b.WriteString(c.Shutdown.String())
	return b.String()
}

// Validate checks if the configuration values are valid.
// The database section is only required by the postgres store driver.
func (c *Config) Validate() error {
	validators := []struct {
		name string
		v    configloader.Validator
	}{
		{"server", &c.HTTPServer},
		{"store", &c.Store},
		{"log", &c.Log},
		{"pprof", &c.PProf},
		{"grpc", &c.GRPC},
		{"shutdown", &c.Shutdown},
		{"telemetry", &c.Telemetry},
		{"nats", &c.Nats},
		{"resilience", &c.Resilience},
	}
	for _, s := range validators {
		if err := s.v.Validate(); err != nil {
			return fmt.Errorf("%s: %w", s.name, err)
		}
	}
	if c.usesDatabase() {
		if err := c.Database.Validate(); err != nil {
			return fmt.Errorf("database: %w", err)
		}
	}
	return nil
}

func (c *Config) usesDatabase() bool {
	return c.Store.Driver == config.StoreDriverPostgres
}
