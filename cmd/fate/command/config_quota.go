package command

import (
	"fmt"
	"time"

	"github.com/tndm-coder/fate-ardent-bot/internal/quota"
)

type QuotaConfig struct {
	// Timezone decides where days and weeks begin. Empty means the host's
	// local zone.
	Timezone string `json:"timezone" env:"TIMEZONE"`
}

func (c *QuotaConfig) validate() error {
	if _, err := c.location(); err != nil {
		return err
	}
	return nil
}

func (c *QuotaConfig) location() (*time.Location, error) {
	if c.Timezone == "" {
		return time.Local, nil
	}
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return nil, fmt.Errorf("loading timezone %q: %w", c.Timezone, err)
	}
	return loc, nil
}

func (c *QuotaConfig) BuildClock() (quota.Clock, error) {
	loc, err := c.location()
	if err != nil {
		return nil, err
	}
	return quota.SystemClock{Location: loc}, nil
}
