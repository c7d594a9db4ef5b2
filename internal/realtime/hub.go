package realtime

import (
	"sync"

	"github.com/bytedance/sonic"
	log "github.com/sirupsen/logrus"
)

// Client is a connected board viewer. Send is called while the hub's
// read lock is held and must not block; broadcasts from concurrent
// mutations may call it at the same time.
type Client interface {
	Send(message []byte) bool
	Close()
}

// Hub maintains the connected board viewers and fans store events out to them.
type Hub struct {
	mu      sync.RWMutex
	clients map[Client]struct{}
}

func NewHub() *Hub {
	return &Hub{clients: make(map[Client]struct{})}
}

// Register adds a client.
func (h *Hub) Register(client Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.clients[client] = struct{}{}
}

// Unregister removes a client.
func (h *Hub) Unregister(client Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	delete(h.clients, client)
}

// Len returns the number of connected clients.
func (h *Hub) Len() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// Broadcast sends a message to every client. It returns how many
// deliveries succeeded; failed clients are cleaned up by their handler.
func (h *Hub) Broadcast(message []byte) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	sent := 0
	for c := range h.clients {
		if c.Send(message) {
			sent++
		}
	}
	return sent
}

// Publish encodes v as JSON and broadcasts it.
func (h *Hub) Publish(v any) {
	data, err := sonic.Marshal(v)
	if err != nil {
		log.WithError(err).Warn("realtime: encode event failed")
		return
	}
	h.Broadcast(data)
}
