package web

import (
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	fiberws "github.com/gofiber/websocket/v2"

	"github.com/teslashibe/go-voicemetrics/pkg/hub"
)

// SessionInfo is the list view of a measurement session.
type SessionInfo struct {
	ID                    string    `json:"id"`
	Connected             time.Time `json:"connected"`
	ActiveInteractions    int       `json:"active_interactions"`
	CompletedInteractions int       `json:"completed_interactions"`
}

// handleListSessions returns all live measurement sessions.
func (s *Server) handleListSessions(c *fiber.Ctx) error {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]SessionInfo, 0, len(s.sessions))
	for _, sess := range s.sessions {
		out = append(out, SessionInfo{
			ID:                    sess.ID,
			Connected:             sess.Connected,
			ActiveInteractions:    sess.Tracker.ActiveCount(),
			CompletedInteractions: sess.Tracker.CompletedCount(),
		})
	}
	return c.JSON(out)
}

// handleStats returns the aggregate overview for one session.
func (s *Server) handleStats(c *fiber.Ctx) error {
	sess, ok := s.Session(c.Params("id"))
	if !ok {
		return fiber.ErrNotFound
	}
	return c.JSON(sess.Tracker.Overview())
}

// handleRecent returns the last n completed interactions (?count=n,
// default 5).
func (s *Server) handleRecent(c *fiber.Ctx) error {
	sess, ok := s.Session(c.Params("id"))
	if !ok {
		return fiber.ErrNotFound
	}
	count := 5
	if raw := c.Query("count"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			return fiber.NewError(fiber.StatusBadRequest, "count must be a non-negative integer")
		}
		count = n
	}
	return c.JSON(sess.Tracker.Recent(count))
}

// handleReport returns the human-readable summary report as plain text.
func (s *Server) handleReport(c *fiber.Ctx) error {
	sess, ok := s.Session(c.Params("id"))
	if !ok {
		return fiber.ErrNotFound
	}
	c.Set(fiber.HeaderContentType, fiber.MIMETextPlainCharsetUTF8)
	return c.SendString(sess.Tracker.SummaryReport())
}

// handleInteraction looks up a single interaction by id, active or
// completed.
func (s *Server) handleInteraction(c *fiber.Ctx) error {
	sess, ok := s.Session(c.Params("id"))
	if !ok {
		return fiber.ErrNotFound
	}
	snap, ok := sess.Tracker.Lookup(c.Params("iid"))
	if !ok {
		return fiber.ErrNotFound
	}
	return c.JSON(snap)
}

// handleReset clears a session's statistics.
func (s *Server) handleReset(c *fiber.Ctx) error {
	sess, ok := s.Session(c.Params("id"))
	if !ok {
		return fiber.ErrNotFound
	}
	sess.Tracker.Reset()
	return c.SendStatus(fiber.StatusNoContent)
}

// handleInteractionsWS subscribes a dashboard to completed-interaction
// snapshots.
func (s *Server) handleInteractionsWS(c *fiberws.Conn) {
	hub.NewClient(s.interactionHub, c).Run()
}

// handleStatsWS subscribes a dashboard to aggregate statistics updates.
func (s *Server) handleStatsWS(c *fiberws.Conn) {
	hub.NewClient(s.statsHub, c).Run()
}
