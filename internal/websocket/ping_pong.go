// Package websocket provides WebSocket message handling utilities.
package websocket

import (
	"github.com/kyiku/mall-event-back/internal/hub"
)

// PingHandler answers keepalive pings from gallery viewers.
type PingHandler struct {
	conn hub.Conn
}

// NewPingHandler creates a new PingHandler.
func NewPingHandler(conn hub.Conn) *PingHandler {
	return &PingHandler{
		conn: conn,
	}
}

// Handle processes a message and returns true if it was a ping message.
func (h *PingHandler) Handle(message []byte) bool {
	if !IsPingMessage(message) {
		return false
	}

	_ = h.conn.WriteJSON(map[string]interface{}{
		"type": TypePong,
	})

	return true
}

// IsPingMessage checks if a message is a ping message without processing it.
func IsPingMessage(message []byte) bool {
	msg, err := ParseMessage(message)
	if err != nil {
		return false
	}
	return msg.Type == TypePing
}
