// Command latency-server runs the voice pipeline latency metrics server.
//
// Pipeline event producers connect over WebSocket and stream their events;
// each connection becomes an isolated measurement session. Dashboards read
// per-session statistics over the REST API or subscribe to live updates.
//
// Usage:
//
//	go run ./cmd/latency-server --port 8090
//	go run ./cmd/latency-server --idle-timeout 2s --evict-after 5m
//
// Environment variables (flags take precedence):
//
//	PORT             - HTTP port (default 8090)
//	IDLE_TIMEOUT_MS  - turn segmentation idle timeout
//	EVICT_AFTER_MS   - stale interaction eviction age, 0 disables
//	LOG_LEVEL        - debug, info, warn, error
package main

import (
	"flag"
	"os"
	"os/signal"
	"syscall"

	"github.com/teslashibe/go-voicemetrics/internal/config"
	"github.com/teslashibe/go-voicemetrics/internal/log"
	"github.com/teslashibe/go-voicemetrics/pkg/latency"
	"github.com/teslashibe/go-voicemetrics/pkg/web"
)

func main() {
	port := flag.String("port", config.Port(), "HTTP port to listen on")
	idleTimeout := flag.Duration("idle-timeout", config.IdleTimeout(), "gap between transcriptions before a new turn starts")
	evictAfter := flag.Duration("evict-after", config.EvictAfter(), "evict interactions idle longer than this (0 disables)")
	debug := flag.Bool("debug", false, "enable debug logging")
	flag.Parse()

	level := config.LogLevel()
	if *debug {
		level = "debug"
	}
	log.Init(level)

	cfg := latency.DefaultConfig().
		WithIdleTimeout(*idleTimeout).
		WithEvictAfter(*evictAfter).
		WithDebug(*debug)
	if err := cfg.Validate(); err != nil {
		log.Error("invalid configuration", "err", err)
		os.Exit(1)
	}

	srv := web.NewServer(*port, cfg)

	// Graceful shutdown on SIGINT/SIGTERM
	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sig
		log.Info("shutting down")
		if err := srv.Shutdown(); err != nil {
			log.Error("shutdown failed", "err", err)
		}
	}()

	if err := srv.Start(); err != nil {
		log.Error("server exited", "err", err)
		os.Exit(1)
	}
}
