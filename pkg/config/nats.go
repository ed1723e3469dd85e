package config

import (
	"errors"
	"time"
)

// NATSConfig configures the product events publisher.
// When Enabled is false events are dropped and the other fields are not checked.
type NATSConfig struct {
	Enabled bool          `koanf:"enabled"`
	Url     string        `koanf:"url"`
	Timeout time.Duration `koanf:"timeout"`
	Stream  string        `koanf:"stream"`
}

func (c *NATSConfig) String() string {
	return section("NATS",
		"enabled", c.Enabled,
		"url", c.Url,
		"timeout", c.Timeout,
		"stream", c.Stream,
	)
}

func (c *NATSConfig) Validate() error {
	if !c.Enabled {
		return nil
	}
	if c.Url == "" {
		return errors.New("NATS URL is not configured")
	}
	if c.Timeout <= 0 {
		return errors.New("nats dial timeout is not configured")
	}
	if c.Stream == "" {
		return errors.New("nats stream is not configured")
	}
	return nil
}
