package config

import (
	"fmt"
	"strings"
)

type LogConfig struct {
	Level string `koanf:"level"`
}

func (c *LogConfig) String() string {
	return section("Log", "level", c.Level)
}

// Validate accepts an empty level (info) or one of debug, info, warn, error.
func (c *LogConfig) Validate() error {
	switch strings.ToLower(c.Level) {
	case "", "debug", "info", "warn", "error":
		return nil
	default:
		return fmt.Errorf("unsupported log level: %s", c.Level)
	}
}
