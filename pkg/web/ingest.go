package web

import (
	"encoding/json"

	"github.com/gofiber/contrib/websocket"

	"github.com/teslashibe/go-voicemetrics/internal/log"
	"github.com/teslashibe/go-voicemetrics/pkg/hub"
	"github.com/teslashibe/go-voicemetrics/pkg/latency"
	"github.com/teslashibe/go-voicemetrics/pkg/protocol"
)

// handleEvents services one pipeline event producer connection. The
// connection owns a measurement session for its lifetime; on disconnect the
// session's final report is logged and the session removed.
func (s *Server) handleEvents(c *websocket.Conn) {
	sess := s.CreateSession(c.Params("id"))
	defer s.RemoveSession(sess.ID)

	for {
		_, data, err := c.ReadMessage()
		if err != nil {
			return
		}

		msg, err := protocol.ParseMessage(data)
		if err != nil {
			// Malformed frames are dropped; a producer bug must not
			// tear down the measurement session.
			log.Warn("dropping unparseable feed message", "session", sess.ID, "err", err)
			continue
		}

		switch msg.Type {
		case protocol.TypeEvent:
			var ev protocol.EventData
			if err := msg.ParseData(&ev); err != nil {
				log.Warn("dropping malformed event", "session", sess.ID, "err", err)
				continue
			}
			sess.Tracker.OnEvent(latency.Event{
				Kind:      latency.Kind(ev.Kind),
				Direction: latency.Direction(ev.Direction),
				Text:      ev.Text,
				Timestamp: ev.Timestamp,
			})

		case protocol.TypeReset:
			sess.Tracker.Reset()

		case protocol.TypePing:
			var ping protocol.PingData
			if err := msg.ParseData(&ping); err != nil {
				continue
			}
			if pong, err := protocol.NewPongMessage(ping); err == nil {
				if data, err := pong.Bytes(); err == nil {
					c.WriteMessage(websocket.TextMessage, data)
				}
			}

		default:
			log.Debug("ignoring feed message", "session", sess.ID, "type", string(msg.Type))
		}
	}
}

// broadcastCompletion pushes a completed interaction and the refreshed
// aggregate overview to dashboard subscribers. Runs off the event path on
// the tracker's completion goroutine.
func (s *Server) broadcastCompletion(sess *Session, snap latency.Snapshot) {
	if raw, err := json.Marshal(snap); err == nil {
		if msg, err := protocol.NewInteractionMessage(sess.ID, raw); err == nil {
			broadcastMessage(s.interactionHub, msg)
		}
	}

	if raw, err := json.Marshal(sess.Tracker.Overview()); err == nil {
		if msg, err := protocol.NewStatsMessage(sess.ID, raw); err == nil {
			broadcastMessage(s.statsHub, msg)
		}
	}
}

func broadcastMessage(h *hub.Hub, msg *protocol.Message) {
	data, err := msg.Bytes()
	if err != nil {
		return
	}
	h.Broadcast(hub.NewMessage(data))
}
