// Package web provides the latency metrics server: a WebSocket ingest
// endpoint for pipeline event producers and a REST + WebSocket surface for
// dashboards consuming the derived statistics.
package web

import (
	"strings"
	"sync"
	"time"

	contribws "github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	fiberws "github.com/gofiber/websocket/v2"
	"github.com/google/uuid"

	"github.com/teslashibe/go-voicemetrics/internal/log"
	"github.com/teslashibe/go-voicemetrics/pkg/hub"
	"github.com/teslashibe/go-voicemetrics/pkg/latency"
)

// Session is one pipeline session under measurement. Each event-feed
// connection owns exactly one tracker; trackers are never shared across
// sessions.
type Session struct {
	ID        string           `json:"id"`
	Connected time.Time        `json:"connected"`
	Tracker   *latency.Tracker `json:"-"`
}

// Server is the latency metrics server.
type Server struct {
	app  *fiber.App
	port string
	cfg  latency.Config

	mu       sync.RWMutex
	sessions map[string]*Session

	// Fan-out hubs for dashboard subscribers.
	interactionHub *hub.Hub
	statsHub       *hub.Hub

	stop chan struct{}
}

// NewServer creates a metrics server. cfg configures the tracker created for
// each producer session.
func NewServer(port string, cfg latency.Config) *Server {
	s := &Server{
		port:           port,
		cfg:            cfg,
		sessions:       make(map[string]*Session),
		interactionHub: hub.New("interactions"),
		statsHub:       hub.New("stats"),
		stop:           make(chan struct{}),
	}

	app := fiber.New(fiber.Config{
		AppName:               "Voice Latency Metrics",
		DisableStartupMessage: true,
	})

	// CORS for local dashboard development
	app.Use(cors.New())

	// API routes
	api := app.Group("/api")
	api.Get("/sessions", s.handleListSessions)
	api.Get("/sessions/:id/stats", s.handleStats)
	api.Get("/sessions/:id/recent", s.handleRecent)
	api.Get("/sessions/:id/report", s.handleReport)
	api.Get("/sessions/:id/interactions/:iid", s.handleInteraction)
	api.Post("/sessions/:id/reset", s.handleReset)

	// WebSocket upgrade middleware
	app.Use("/ws", func(c *fiber.Ctx) error {
		if fiberws.IsWebSocketUpgrade(c) {
			return c.Next()
		}
		return fiber.ErrUpgradeRequired
	})

	// WebSocket routes: event ingest from producers, metrics fan-out to
	// dashboards.
	app.Get("/ws/events", contribws.New(s.handleEvents))
	app.Get("/ws/events/:id", contribws.New(s.handleEvents))
	app.Get("/ws/interactions", fiberws.New(s.handleInteractionsWS))
	app.Get("/ws/stats", fiberws.New(s.handleStatsWS))

	s.app = app
	return s
}

// Start starts the server and blocks until shutdown.
func (s *Server) Start() error {
	log.Info("latency metrics server listening", "port", s.port)

	go s.interactionHub.Run()
	go s.statsHub.Run()
	if s.cfg.EvictAfter > 0 {
		go s.evictLoop()
	}

	return s.app.Listen(":" + s.port)
}

// Shutdown gracefully stops the server.
func (s *Server) Shutdown() error {
	close(s.stop)
	return s.app.Shutdown()
}

// App exposes the fiber app for tests.
func (s *Server) App() *fiber.App {
	return s.app
}

// CreateSession registers a new measurement session. An empty id gets a
// generated one.
func (s *Server) CreateSession(id string) *Session {
	if id == "" {
		id = uuid.NewString()
	}
	sess := &Session{
		ID:        id,
		Connected: time.Now(),
		Tracker:   latency.New(s.cfg),
	}
	sess.Tracker.OnComplete(func(snap latency.Snapshot) {
		s.broadcastCompletion(sess, snap)
	})

	s.mu.Lock()
	s.sessions[id] = sess
	count := len(s.sessions)
	s.mu.Unlock()

	log.Info("session started", "session", id, "total", count)
	return sess
}

// RemoveSession drops a session, logging its final summary report.
func (s *Server) RemoveSession(id string) {
	s.mu.Lock()
	sess, ok := s.sessions[id]
	delete(s.sessions, id)
	count := len(s.sessions)
	s.mu.Unlock()
	if !ok {
		return
	}

	log.Info("session ended", "session", id, "remaining", count,
		"completed", sess.Tracker.CompletedCount())
	for _, line := range strings.Split(sess.Tracker.SummaryReport(), "\n") {
		if line != "" {
			log.Info(line)
		}
	}
}

// Session returns the session with the given id.
func (s *Server) Session(id string) (*Session, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	sess, ok := s.sessions[id]
	return sess, ok
}

// evictLoop periodically sweeps stale interactions out of every session.
func (s *Server) evictLoop() {
	ticker := time.NewTicker(s.cfg.EvictAfter)
	defer ticker.Stop()
	for {
		select {
		case <-s.stop:
			return
		case <-ticker.C:
			s.mu.RLock()
			trackers := make([]*latency.Tracker, 0, len(s.sessions))
			for _, sess := range s.sessions {
				trackers = append(trackers, sess.Tracker)
			}
			s.mu.RUnlock()
			for _, tr := range trackers {
				tr.EvictStale()
			}
		}
	}
}

