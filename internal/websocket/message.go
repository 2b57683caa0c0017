package websocket

import (
	"encoding/json"
	"errors"
	"fmt"
)

// Message types exchanged on the gallery socket.
const (
	TypePing       = "ping"
	TypePong       = "pong"
	TypeResize     = "resize"
	TypeSubscribe  = "subscribe"
	TypeSubscribed = "subscribed"
	TypeLayout     = "layout"
	TypeError      = "error"
)

// ErrMissingType is returned for messages without a "type" field.
var ErrMissingType = errors.New("message type is required")

// Message is an inbound gallery socket message.
type Message struct {
	Type       string `json:"type"`
	Width      int    `json:"width,omitempty"`
	Height     int    `json:"height,omitempty"`
	Mode       string `json:"mode,omitempty"`
	CampaignID string `json:"campaign_id,omitempty"`
}

// ParseMessage decodes a raw socket frame.
func ParseMessage(data []byte) (*Message, error) {
	var msg Message
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, fmt.Errorf("invalid message: %w", err)
	}
	if msg.Type == "" {
		return nil, ErrMissingType
	}
	return &msg, nil
}

// Validate checks type specific fields.
func (m *Message) Validate() error {
	switch m.Type {
	case TypeResize:
		if m.Width <= 0 || m.Height <= 0 {
			return fmt.Errorf("resize requires positive width and height, got %dx%d", m.Width, m.Height)
		}
	case TypeSubscribe:
		if m.CampaignID == "" {
			return errors.New("subscribe requires campaign_id")
		}
	}
	return nil
}

// ErrorMessage builds an outbound error frame.
func ErrorMessage(message string) map[string]interface{} {
	return map[string]interface{}{
		"type":    TypeError,
		"error":   true,
		"message": message,
	}
}
