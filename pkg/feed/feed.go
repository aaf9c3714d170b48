// Package feed streams pipeline event traces into a latency server.
//
// A trace is a JSONL file: one pipeline event per line, in arrival order.
// Traces are replayed either into a remote server over WebSocket (Client)
// or directly into an in-process tracker (cmd/replay uses both paths).
package feed

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/gorilla/websocket"

	"github.com/teslashibe/go-voicemetrics/pkg/protocol"
)

// ErrClosed is returned when sending on a closed client.
var ErrClosed = errors.New("feed: client closed")

// Client is a WebSocket event producer connected to a latency server.
type Client struct {
	conn   *websocket.Conn
	closed bool
}

// Dial connects to a server's event ingest endpoint,
// e.g. ws://localhost:8090/ws/events.
func Dial(url string) (*Client, error) {
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		return nil, fmt.Errorf("feed: dial %s: %w", url, err)
	}
	return &Client{conn: conn}, nil
}

// SendEvent sends one pipeline event.
func (c *Client) SendEvent(ev protocol.EventData) error {
	msg, err := protocol.NewEventMessage(ev)
	if err != nil {
		return err
	}
	return c.send(msg)
}

// Reset asks the server to clear this session's statistics.
func (c *Client) Reset() error {
	msg, err := protocol.NewResetMessage()
	if err != nil {
		return err
	}
	return c.send(msg)
}

func (c *Client) send(msg *protocol.Message) error {
	if c.closed {
		return ErrClosed
	}
	data, err := msg.Bytes()
	if err != nil {
		return err
	}
	return c.conn.WriteMessage(websocket.TextMessage, data)
}

// Close closes the connection, ending the server-side session.
func (c *Client) Close() error {
	if c.closed {
		return nil
	}
	c.closed = true
	c.conn.WriteMessage(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
	return c.conn.Close()
}

// Replay sends the events in order, sleeping the recorded inter-event gap
// scaled by speed between sends. Speed 2 replays twice as fast; speed 0
// replays with no delays at all.
func (c *Client) Replay(events []protocol.EventData, speed float64) error {
	for i, ev := range events {
		if i > 0 {
			time.Sleep(Delay(events[i-1], ev, speed))
		}
		if err := c.SendEvent(ev); err != nil {
			return err
		}
	}
	return nil
}

// Delay computes the pacing delay between two consecutive trace events at
// the given speed. Out-of-order timestamps yield zero delay.
func Delay(prev, next protocol.EventData, speed float64) time.Duration {
	if speed <= 0 {
		return 0
	}
	gap := next.Timestamp - prev.Timestamp
	if gap <= 0 {
		return 0
	}
	return time.Duration(gap / speed * float64(time.Second))
}

// ReadTrace parses a JSONL event trace. Blank lines and #-comments are
// skipped. A malformed line is an error: a broken trace should fail loudly
// at load time, not silently skew measurements.
func ReadTrace(r io.Reader) ([]protocol.EventData, error) {
	var events []protocol.EventData
	scanner := bufio.NewScanner(r)
	line := 0
	for scanner.Scan() {
		line++
		raw := scanner.Bytes()
		if len(raw) == 0 || raw[0] == '#' {
			continue
		}
		var ev protocol.EventData
		if err := json.Unmarshal(raw, &ev); err != nil {
			return nil, fmt.Errorf("feed: trace line %d: %w", line, err)
		}
		events = append(events, ev)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("feed: reading trace: %w", err)
	}
	return events, nil
}
