package ws

import (
	"log/slog"
	"sync"

	"github.com/mcoot/wordbomb/internal/model"
	"github.com/mcoot/wordbomb/internal/services/lobby"
)

// Hub tracks every open websocket and the room each one belongs to. It
// delivers notifications by queueing them on client send buffers and never
// blocks: a client whose buffer is full misses the message.
type Hub struct {
	mu      sync.RWMutex
	clients map[model.ConnID]*Client
	rooms   map[model.RoomCode]map[model.ConnID]*Client
	closed  bool
	logger  *slog.Logger
}

// Ensure Hub can be handed to the room registry
var _ lobby.Notifier = (*Hub)(nil)

// NewHub creates a new Hub
func NewHub(logger *slog.Logger) *Hub {
	return &Hub{
		clients: make(map[model.ConnID]*Client),
		rooms:   make(map[model.RoomCode]map[model.ConnID]*Client),
		logger:  logger.With(slog.String("component", "ws-hub")),
	}
}

// Register adds a client. It returns false once the hub is closed.
func (h *Hub) Register(client *Client) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return false
	}
	h.clients[client.id] = client
	h.logger.Info("ws client registered",
		slog.String("conn_id", string(client.id)),
		slog.Int("total_clients", len(h.clients)))
	return true
}

// Unregister removes a client from the hub and every room group, and closes
// its send buffer
func (h *Hub) Unregister(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.clients[client.id] != client {
		return
	}
	delete(h.clients, client.id)
	for code, members := range h.rooms {
		if members[client.id] == client {
			delete(members, client.id)
			if len(members) == 0 {
				delete(h.rooms, code)
			}
		}
	}
	close(client.send)
	h.logger.Info("ws client unregistered",
		slog.String("conn_id", string(client.id)),
		slog.Int("total_clients", len(h.clients)))
}

// AddMember puts a connection into a room's broadcast group
func (h *Hub) AddMember(code model.RoomCode, connID model.ConnID) {
	h.mu.Lock()
	defer h.mu.Unlock()
	client, ok := h.clients[connID]
	if !ok {
		return
	}
	members, ok := h.rooms[code]
	if !ok {
		members = make(map[model.ConnID]*Client)
		h.rooms[code] = members
	}
	members[connID] = client
}

// RemoveMember takes a connection out of a room's broadcast group
func (h *Hub) RemoveMember(code model.RoomCode, connID model.ConnID) {
	h.mu.Lock()
	defer h.mu.Unlock()
	members, ok := h.rooms[code]
	if !ok {
		return
	}
	delete(members, connID)
	if len(members) == 0 {
		delete(h.rooms, code)
	}
}

// Notify delivers a notification to its addressee, or to every member of
// the room for a broadcast
func (h *Hub) Notify(n model.Notification) {
	data, err := encodeMessage(n.Type, n.Payload)
	if err != nil {
		h.logger.Error("ws failed to encode notification",
			slog.String("type", string(n.Type)),
			slog.String("error", err.Error()))
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()

	if !n.IsBroadcast() {
		if client, ok := h.clients[n.To]; ok {
			h.enqueue(client, data)
		}
		return
	}

	dropped := 0
	for _, client := range h.rooms[n.Room] {
		if !h.enqueue(client, data) {
			dropped++
		}
	}
	if dropped > 0 {
		h.logger.Warn("ws broadcast partial failure",
			slog.String("room", string(n.Room)),
			slog.String("type", string(n.Type)),
			slog.Int("dropped", dropped))
	}
}

// Send queues a message for a single connection outside of any room
func (h *Hub) Send(connID model.ConnID, t model.EventType, payload any) {
	h.Notify(model.Direct("", connID, t, payload))
}

// enqueue does a non-blocking send. Caller holds h.mu.
func (h *Hub) enqueue(client *Client, data []byte) bool {
	select {
	case client.send <- data:
		return true
	default:
		h.logger.Warn("ws message dropped - client buffer full",
			slog.String("conn_id", string(client.id)))
		return false
	}
}

// ClientCount returns the number of open connections
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// MemberCount returns the number of connections in a room's group
func (h *Hub) MemberCount(code model.RoomCode) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.rooms[code])
}

// Close disconnects every client and refuses new ones
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return
	}
	h.closed = true
	count := len(h.clients)
	for id, client := range h.clients {
		close(client.send)
		delete(h.clients, id)
	}
	h.rooms = make(map[model.RoomCode]map[model.ConnID]*Client)
	h.logger.Info("ws hub stopped", slog.Int("disconnected_clients", count))
}
