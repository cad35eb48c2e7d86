package app

import (
	"errors"
	"fmt"
)

// Config holds all the necessary configuration for an App instance to run.
type Config struct {
	CatalogPaths []string // hcl part manifests

	LogFormat       string
	LogLevel        string
	HealthcheckPort int
	Probe           bool
}

func NewConfig(cfg Config) (*Config, error) {
	if len(cfg.CatalogPaths) == 0 {
		return nil, errors.New("CatalogPaths is a required configuration field and cannot be empty")
	}
	if cfg.HealthcheckPort < 0 || cfg.HealthcheckPort > 65535 {
		return nil, fmt.Errorf("HealthcheckPort %d is out of range", cfg.HealthcheckPort)
	}
	return &cfg, nil
}
