package config

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// DatabaseConfig holds the PostgreSQL connection settings.
// Migrate applies the embedded schema migrations at startup.
type DatabaseConfig struct {
	URL     string        `koanf:"url"`
	Timeout time.Duration `koanf:"timeout"`
	Migrate bool          `koanf:"migrate"`
}

// String renders the section with credentials masked.
func (c *DatabaseConfig) String() string {
	return section("Database",
		"url", MaskURL(c.URL),
		"timeout", c.Timeout,
		"migrate", c.Migrate,
	)
}

func (c *DatabaseConfig) Validate() error {
	if c.URL == "" {
		return errors.New("database URL is not configured")
	}
	if !strings.HasPrefix(c.URL, "postgres://") && !strings.HasPrefix(c.URL, "postgresql://") {
		return fmt.Errorf("database URL must start with 'postgres://': %s", MaskURL(c.URL))
	}
	if c.Timeout <= 0 {
		return errors.New("database connect timeout is not configured")
	}
	return nil
}

// MaskURL hides the credentials part of a connection URL.
func MaskURL(url string) string {
	if url == "" {
		return "<not configured>"
	}
	if _, host, found := strings.Cut(url, "@"); found && !strings.Contains(host, "@") {
		return "****@" + host
	}
	return "****"
}
