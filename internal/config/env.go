// Package config provides environment configuration helpers for
// go-voicemetrics commands.
package config

import (
	"os"
	"strconv"
	"time"
)

// Defaults for the latency server.
const (
	DefaultPort        = "8090"
	DefaultIdleTimeout = 2000 * time.Millisecond
)

// Port returns the HTTP port from the PORT env var, or the default.
func Port() string {
	if p := os.Getenv("PORT"); p != "" {
		return p
	}
	return DefaultPort
}

// LogLevel returns the log level from LOG_LEVEL, or "info".
func LogLevel() string {
	if lvl := os.Getenv("LOG_LEVEL"); lvl != "" {
		return lvl
	}
	return "info"
}

// IdleTimeout returns the interaction idle timeout from IDLE_TIMEOUT_MS.
func IdleTimeout() time.Duration {
	return millis("IDLE_TIMEOUT_MS", DefaultIdleTimeout)
}

// EvictAfter returns the stale-interaction eviction age from EVICT_AFTER_MS.
// Zero (the default) disables eviction.
func EvictAfter() time.Duration {
	return millis("EVICT_AFTER_MS", 0)
}

// millis reads an integer millisecond value from the environment.
// Unparseable values fall back to the default.
func millis(key string, def time.Duration) time.Duration {
	raw := os.Getenv(key)
	if raw == "" {
		return def
	}
	ms, err := strconv.Atoi(raw)
	if err != nil || ms < 0 {
		return def
	}
	return time.Duration(ms) * time.Millisecond
}
