package command

import (
	"fmt"

	"github.com/caarlos0/env/v11"
	"github.com/pixil98/go-errors"
)

type Config struct {
	Storage StorageConfig `json:"storage" envPrefix:"FATE_STORAGE_"`
	Nats    NatsConfig    `json:"nats" envPrefix:"FATE_NATS_"`
	Quota   QuotaConfig   `json:"quota" envPrefix:"FATE_"`
}

func (c *Config) Validate() error {
	el := errors.NewErrorList()

	el.Add(c.Storage.validate())
	el.Add(c.Nats.validate())
	el.Add(c.Quota.validate())

	return el.Err()
}

// applyEnv overrides file settings with any FATE_* environment variables.
func (c *Config) applyEnv() error {
	if err := env.Parse(c); err != nil {
		return fmt.Errorf("parse env: %w", err)
	}
	return nil
}
