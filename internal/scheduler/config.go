package scheduler

import "time"

// Config controls sweep intervals and batch sizes.
type Config struct {
	RunInterval    time.Duration
	StaleThreshold time.Duration
	BatchSize      int
}

func DefaultConfig() Config {
	return Config{
		RunInterval:    time.Minute,
		StaleThreshold: 15 * time.Minute,
		BatchSize:      100,
	}
}

func (c Config) withDefaults() Config {
	defaults := DefaultConfig()
	if c.RunInterval <= 0 {
		c.RunInterval = defaults.RunInterval
	}
	if c.StaleThreshold <= 0 {
		c.StaleThreshold = defaults.StaleThreshold
	}
	if c.BatchSize <= 0 {
		c.BatchSize = defaults.BatchSize
	}
	return c
}
