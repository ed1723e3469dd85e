package config

import (
	"errors"
	"time"
)

type ResilienceConfig struct {
	CircuitBreaker CircuitBreakerConfig `koanf:"circuitbreaker"`
}

// CircuitBreakerConfig configures the breaker guarding the product store.
// A zero ConsecutiveFailures disables the breaker, a zero ErrorRatePercent disables only the rate check.
type CircuitBreakerConfig struct {
	ConsecutiveFailures uint32        `koanf:"consecutivefailures"`
	ErrorRatePercent    int           `koanf:"errorratepercent"`
	OpenTimeout         time.Duration `koanf:"opentimeout"`
}

// Enabled reports whether the store should be wrapped in a circuit breaker.
func (c *CircuitBreakerConfig) Enabled() bool {
	return c.ConsecutiveFailures > 0
}

func (c *ResilienceConfig) String() string {
	return section("Circuit Breaker",
		"consecutivefailures", c.CircuitBreaker.ConsecutiveFailures,
		"errorratepercent", c.CircuitBreaker.ErrorRatePercent,
		"opentimeout", c.CircuitBreaker.OpenTimeout,
	)
}

func (c *ResilienceConfig) Validate() error {
	cb := c.CircuitBreaker
	if !cb.Enabled() {
		return nil
	}
	if cb.ErrorRatePercent < 0 || cb.ErrorRatePercent > 100 {
		return errors.New("circuit_breaker.error_rate_percent must be between 0 and 100")
	}
	if cb.OpenTimeout <= 0 {
		return errors.New("circuit_breaker.open_timeout must be greater than 0")
	}
	return nil
}
