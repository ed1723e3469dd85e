package config

import "fmt"

const (
	StoreDriverPostgres = "postgres"
	StoreDriverMemory   = "memory"
)

// StoreConfig selects the product repository implementation.
type StoreConfig struct {
	Driver string `koanf:"driver"`
}

func (c *StoreConfig) String() string {
	return section("Store", "driver", c.Driver)
}

// Validate defaults an empty driver to postgres and rejects unknown drivers.
func (c *StoreConfig) Validate() error {
	switch c.Driver {
	case "":
		c.Driver = StoreDriverPostgres
		return nil
	case StoreDriverPostgres, StoreDriverMemory:
		return nil
	default:
		return fmt.Errorf("unknown store driver %q, expected %q or %q", c.Driver, StoreDriverPostgres, StoreDriverMemory)
	}
}
