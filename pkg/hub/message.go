// Package hub provides a thread-safe websocket broadcast hub
// using the idiomatic Go channel-based fan-out pattern.
//
// The latency server uses one hub per feed: completed interaction
// snapshots and aggregate statistics each fan out to their dashboard
// subscribers through a hub.
package hub

// Message represents a pre-encoded JSON message to broadcast to clients.
type Message struct {
	Data []byte
}

// NewMessage creates a message from pre-encoded bytes.
func NewMessage(data []byte) Message {
	return Message{Data: data}
}
