// Package hub tracks live gallery connections and fans out updates.
package hub

import (
	"sync"

	"github.com/google/uuid"

	"github.com/kyiku/mall-event-back/internal/model"
)

// Conn is the write side of a WebSocket connection.
type Conn interface {
	WriteJSON(v interface{}) error
	Close() error
}

// Client is a connected gallery viewer.
type Client struct {
	ID         string
	CampaignID string
	Conn       Conn
	mu         sync.Mutex // serializes writes to Conn
}

// Send writes v to the client connection.
func (c *Client) Send(v interface{}) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.Conn.WriteJSON(v)
}

// Hub manages connected gallery viewers.
type Hub struct {
	clients []*Client
	mu      sync.RWMutex
}

// NewHub creates a new empty hub.
func NewHub() *Hub {
	return &Hub{
		clients: make([]*Client, 0),
	}
}

// Register adds a connection and returns its client.
func (h *Hub) Register(campaignID string, conn Conn) *Client {
	client := &Client{
		ID:         uuid.New().String(),
		CampaignID: campaignID,
		Conn:       conn,
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	h.clients = append(h.clients, client)
	return client
}

// Unregister removes a client by ID.
func (h *Hub) Unregister(clientID string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	for i, c := range h.clients {
		if c.ID == clientID {
			h.clients = append(h.clients[:i], h.clients[i+1:]...)
			return
		}
	}
}

// SetCampaign changes the campaign a client is watching.
func (h *Hub) SetCampaign(clientID, campaignID string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	for _, c := range h.clients {
		if c.ID == clientID {
			c.CampaignID = campaignID
			return
		}
	}
}

// Len returns the number of connected clients.
func (h *Hub) Len() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// Broadcast sends v to every client. Write failures are ignored per client.
func (h *Hub) Broadcast(v interface{}) {
	for _, c := range h.snapshot() {
		_ = c.Send(v)
	}
}

// BroadcastCounts notifies every viewer of new submission counts.
func (h *Hub) BroadcastCounts(submissionID string, counts model.Counts) {
	h.Broadcast(map[string]interface{}{
		"type":          "countsUpdate",
		"submission_id": submissionID,
		"counts":        counts,
	})
}

// snapshot copies the client list so sends happen without holding the lock.
func (h *Hub) snapshot() []*Client {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return append([]*Client(nil), h.clients...)
}
