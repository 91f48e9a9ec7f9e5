package config

import (
	"fmt"

	"github.com/caarlos0/env/v11"
)

func Load() (App, error) {
	cfg, err := env.ParseAs[App]()
	if err != nil {
		return App{}, fmt.Errorf("parse env: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return App{}, err
	}
	return cfg, nil
}

func (c App) validate() error {
	if c.Env != EnvMemory && c.DatabaseURL == "" {
		return fmt.Errorf("DATABASE_URL is required unless APP_ENV=%s", EnvMemory)
	}
	switch c.Payment.Gateway {
	case GatewayStripe, GatewayXendit:
	default:
		return fmt.Errorf("PAYMENT_GATEWAY must be %q or %q, got %q", GatewayStripe, GatewayXendit, c.Payment.Gateway)
	}
	return nil
}
