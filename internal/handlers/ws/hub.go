package ws

import (
	"log"
	"sync"
)

// Hub is the room router: it owns the mapping from channel ids to subscribed
// clients and performs publish/subscribe fan-out. Channel membership lives
// only here and only for the lifetime of a connection; disconnecting tears a
// client out of every channel with no persisted trace.
type Hub struct {
	mu             sync.RWMutex
	clients        map[string]*Client            // connection id -> client
	channels       map[string]map[string]*Client // channel id -> connection id -> client
	clientChannels map[string]map[string]struct{}
}

func NewHub() *Hub {
	return &Hub{
		clients:        make(map[string]*Client),
		channels:       make(map[string]map[string]*Client),
		clientChannels: make(map[string]map[string]struct{}),
	}
}

// Register starts tracking a client. The caller starts the client's write
// loop before exposing the connection to publishes.
func (h *Hub) Register(client *Client) {
	h.mu.Lock()
	h.clients[client.ID] = client
	h.clientChannels[client.ID] = make(map[string]struct{})
	total := len(h.clients)
	h.mu.Unlock()

	log.Printf("User %d connected (connections: %d, gzip: %v)", client.UserID, total, client.SupportsGzip)
}

// Unregister removes the client from every channel it joined and closes it.
func (h *Hub) Unregister(client *Client) {
	h.mu.Lock()
	if _, tracked := h.clients[client.ID]; tracked {
		delete(h.clients, client.ID)
		for channelID := range h.clientChannels[client.ID] {
			h.leaveLocked(channelID, client.ID)
		}
		delete(h.clientChannels, client.ID)
	}
	total := len(h.clients)
	h.mu.Unlock()

	client.Close()
	log.Printf("User %d disconnected (connections: %d)", client.UserID, total)
}

// Subscribe adds the client to a channel. Joining an already-joined channel is
// a no-op, as is subscribing an unregistered client.
func (h *Hub) Subscribe(client *Client, channelID string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if _, tracked := h.clients[client.ID]; !tracked {
		return
	}
	members := h.channels[channelID]
	if members == nil {
		members = make(map[string]*Client)
		h.channels[channelID] = members
	}
	members[client.ID] = client
	h.clientChannels[client.ID][channelID] = struct{}{}
}

// Publish delivers payload to every current subscriber of the channel.
// At-most-once and best-effort: no queue, no retry. A client whose send fails
// is unregistered; it will re-fetch state on its next connect.
func (h *Hub) Publish(channelID string, payload []byte) {
	h.mu.RLock()
	members := make([]*Client, 0, len(h.channels[channelID]))
	for _, client := range h.channels[channelID] {
		members = append(members, client)
	}
	h.mu.RUnlock()

	var failed []*Client
	for _, client := range members {
		if err := client.Send(payload); err != nil {
			log.Printf("Error publishing to user %d on %s: %v", client.UserID, channelID, err)
			failed = append(failed, client)
		}
	}
	for _, client := range failed {
		h.Unregister(client)
	}
}

// Count returns the number of tracked connections.
func (h *Hub) Count() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// UserConnections returns how many connections a user currently holds. The
// presence layer marks a user offline only when this drops to zero.
func (h *Hub) UserConnections(userID uint) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	n := 0
	for _, client := range h.clients {
		if client.UserID == userID {
			n++
		}
	}
	return n
}

// Subscribers returns how many connections are joined to a channel.
func (h *Hub) Subscribers(channelID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.channels[channelID])
}

func (h *Hub) leaveLocked(channelID, connectionID string) {
	members := h.channels[channelID]
	if members == nil {
		return
	}
	delete(members, connectionID)
	if len(members) == 0 {
		delete(h.channels, channelID)
	}
}
