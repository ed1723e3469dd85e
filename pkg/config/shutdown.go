package config

import (
	"fmt"
	"time"
)

const defaultShutdownTimeout = 10 * time.Second

// ShutdownConfig bounds how long servers may take to drain on SIGINT/SIGTERM.
type ShutdownConfig struct {
	Timeout time.Duration `koanf:"timeout"`
}

func (c *ShutdownConfig) String() string {
	return section("Shutdown", "timeout", c.Timeout)
}

// Validate falls back to defaultShutdownTimeout when no timeout is configured.
func (c *ShutdownConfig) Validate() error {
	switch {
	case c.Timeout < 0:
		return fmt.Errorf("shutdown timeout must not be negative: %s", c.Timeout)
	case c.Timeout == 0:
		c.Timeout = defaultShutdownTimeout
	}
	return nil
}
