package config

import (
	"errors"
	"fmt"
	"strconv"
)

type GrpcServerConfig struct {
	Port              string `koanf:"port"`
	ReflectionEnabled bool   `koanf:"reflection"`
}

func (c *GrpcServerConfig) String() string {
	return section("gRPC Server",
		"port", c.Port,
		"reflection", c.ReflectionEnabled,
	)
}

func (c *GrpcServerConfig) Validate() error {
	if c.Port == "" {
		return errors.New("gRPC port is not configured")
	}
	if p, err := strconv.Atoi(c.Port); err != nil || p <= 0 || p > 65535 {
		return fmt.Errorf("invalid gRPC port: %s", c.Port)
	}
	return nil
}
