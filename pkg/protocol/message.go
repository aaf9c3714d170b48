// Package protocol defines the WebSocket message types exchanged between
// pipeline event producers, the latency server, and dashboard clients.
package protocol

import (
	"encoding/json"
	"fmt"
	"time"
)

// MessageType identifies the type of WebSocket message
type MessageType string

const (
	// Producer → Server messages
	TypeEvent MessageType = "event" // Pipeline event
	TypeReset MessageType = "reset" // Clear session statistics

	// Server → Dashboard messages
	TypeInteraction MessageType = "interaction" // Completed turn snapshot
	TypeStats       MessageType = "stats"       // Aggregate overview

	// Bidirectional
	TypePing MessageType = "ping" // Health check
	TypePong MessageType = "pong" // Health check response
)

// Message is the base wrapper for all WebSocket messages
type Message struct {
	Type      MessageType     `json:"type"`
	Timestamp int64           `json:"ts,omitempty"` // Unix milliseconds
	Data      json.RawMessage `json:"data,omitempty"`
}

// NewMessage creates a new message with the current timestamp
func NewMessage(msgType MessageType, data interface{}) (*Message, error) {
	var rawData json.RawMessage
	if data != nil {
		var err error
		rawData, err = json.Marshal(data)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal message data: %w", err)
		}
	}

	return &Message{
		Type:      msgType,
		Timestamp: time.Now().UnixMilli(),
		Data:      rawData,
	}, nil
}

// ParseData unmarshals the message data into the provided struct
func (m *Message) ParseData(v interface{}) error {
	if m.Data == nil {
		return nil
	}
	return json.Unmarshal(m.Data, v)
}

// Bytes returns the JSON-encoded message
func (m *Message) Bytes() ([]byte, error) {
	return json.Marshal(m)
}

// ParseMessage parses a JSON message from bytes
func ParseMessage(data []byte) (*Message, error) {
	var msg Message
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, fmt.Errorf("failed to parse message: %w", err)
	}
	return &msg, nil
}

// =============================================================================
// Producer → Server Message Types
// =============================================================================

// EventData carries one pipeline event. Field names match the event feed
// contract the tracker consumes: kind, optional direction and text, and the
// wall-clock timestamp in float seconds.
type EventData struct {
	Kind      string  `json:"kind"`
	Direction string  `json:"direction,omitempty"`
	Text      string  `json:"text,omitempty"`
	Timestamp float64 `json:"ts"`
}

// =============================================================================
// Server → Dashboard Message Types
// =============================================================================

// InteractionData wraps a completed interaction snapshot with its session.
// The snapshot itself is opaque JSON so the dashboard schema tracks the
// engine's snapshot shape without a second copy of it here.
type InteractionData struct {
	SessionID string          `json:"session_id"`
	Snapshot  json.RawMessage `json:"snapshot"`
}

// StatsData wraps an aggregate overview with its session.
type StatsData struct {
	SessionID string          `json:"session_id"`
	Overview  json.RawMessage `json:"overview"`
}

// =============================================================================
// Bidirectional Message Types
// =============================================================================

// PingData contains ping information
type PingData struct {
	ID        string `json:"id"`
	Timestamp int64  `json:"ts"`
}

// PongData contains pong response
type PongData struct {
	ID        string `json:"id"`
	PingTS    int64  `json:"ping_ts"`
	PongTS    int64  `json:"pong_ts"`
	LatencyMs int64  `json:"latency_ms"`
}

// =============================================================================
// Helper constructors
// =============================================================================

// NewEventMessage creates an event message from one pipeline event.
func NewEventMessage(ev EventData) (*Message, error) {
	return NewMessage(TypeEvent, ev)
}

// NewResetMessage creates a reset command.
func NewResetMessage() (*Message, error) {
	return NewMessage(TypeReset, nil)
}

// NewInteractionMessage wraps a pre-encoded interaction snapshot.
func NewInteractionMessage(sessionID string, snapshot []byte) (*Message, error) {
	return NewMessage(TypeInteraction, InteractionData{
		SessionID: sessionID,
		Snapshot:  json.RawMessage(snapshot),
	})
}

// NewStatsMessage wraps a pre-encoded aggregate overview.
func NewStatsMessage(sessionID string, overview []byte) (*Message, error) {
	return NewMessage(TypeStats, StatsData{
		SessionID: sessionID,
		Overview:  json.RawMessage(overview),
	})
}

// NewPongMessage answers a ping, echoing its id and timing.
func NewPongMessage(ping PingData) (*Message, error) {
	now := time.Now().UnixMilli()
	return NewMessage(TypePong, PongData{
		ID:        ping.ID,
		PingTS:    ping.Timestamp,
		PongTS:    now,
		LatencyMs: now - ping.Timestamp,
	})
}
