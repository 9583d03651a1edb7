package reconcile

import "time"

// Config controls the bounded-retry verification policy. Settlement latency
// of the supported providers is roughly constant, so backoff is fixed rather
// than exponential.
type Config struct {
	// MaxAttempts bounds verification attempts per run.
	MaxAttempts int
	// InitialDelay is the grace wait before the first attempt, giving
	// provider webhooks time to land server-side.
	InitialDelay time.Duration
	// RetryDelay is the fixed wait between attempts.
	RetryDelay time.Duration
	// LockTTL bounds the cross-replica per-order lease.
	LockTTL time.Duration
}

func DefaultConfig() Config {
	return Config{
		MaxAttempts:  5,
		InitialDelay: 1500 * time.Millisecond,
		RetryDelay:   2 * time.Second,
		LockTTL:      time.Minute,
	}
}

func (c Config) withDefaults() Config {
	defaults := DefaultConfig()
	if c.MaxAttempts <= 0 {
		c.MaxAttempts = defaults.MaxAttempts
	}
	if c.InitialDelay <= 0 {
		c.InitialDelay = defaults.InitialDelay
	}
	if c.RetryDelay <= 0 {
		c.RetryDelay = defaults.RetryDelay
	}
	if c.LockTTL <= 0 {
		c.LockTTL = defaults.LockTTL
	}
	return c
}
