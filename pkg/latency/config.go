package latency

import (
	"errors"
	"time"
)

// Config holds the tunable parameters of a Tracker.
type Config struct {
	// IdleTimeout is the maximum gap between transcription events before
	// the next one starts a new interaction (default: 2s).
	IdleTimeout time.Duration

	// RecentCount is how many completed interactions Overview includes
	// (default: 5). Recent() takes an explicit count and ignores this.
	RecentCount int

	// EvictAfter bounds how long an interaction that never receives its
	// terminal synthesis-audio event may sit in the active set before
	// EvictStale removes it. Zero disables eviction and keeps abandoned
	// interactions forever.
	EvictAfter time.Duration

	// Debug enables per-event debug logging.
	Debug bool
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		IdleTimeout: 2 * time.Second,
		RecentCount: 5,
	}
}

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	if c.IdleTimeout <= 0 {
		return errors.New("latency: idle timeout must be positive")
	}
	if c.RecentCount < 0 {
		return errors.New("latency: recent count must not be negative")
	}
	if c.EvictAfter < 0 {
		return errors.New("latency: evict-after must not be negative")
	}
	return nil
}

// WithIdleTimeout returns a copy with the idle timeout set.
func (c Config) WithIdleTimeout(d time.Duration) Config {
	c.IdleTimeout = d
	return c
}

// WithRecentCount returns a copy with the overview recent count set.
func (c Config) WithRecentCount(n int) Config {
	c.RecentCount = n
	return c
}

// WithEvictAfter returns a copy with stale eviction enabled.
func (c Config) WithEvictAfter(d time.Duration) Config {
	c.EvictAfter = d
	return c
}

// WithDebug returns a copy with debug logging enabled.
func (c Config) WithDebug(debug bool) Config {
	c.Debug = debug
	return c
}
