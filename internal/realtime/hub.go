package realtime

import (
	"encoding/json"
	"log"
	"sync"
)

// Client is one websocket connection. The network conn lives in the ws handler.
type Client interface {
	Send(message []byte) bool
	Close()
}

// EventType names a change pushed to a user's clients
type EventType string

const (
	TaskCreated        EventType = "task_created"
	TaskUpdated        EventType = "task_updated"
	TaskStatusChanged  EventType = "task_status_changed"
	TasksStatusChanged EventType = "tasks_status_changed"
	TaskDeleted        EventType = "task_deleted"
	TasksDeleted       EventType = "tasks_deleted"
)

// Event is the JSON payload clients receive
type Event struct {
	Type    EventType `json:"type"`
	TaskIDs []string  `json:"taskIds"`
	UserID  string    `json:"userId"`
	Version int       `json:"version"`
}

// Hub maintains active user connections and broadcasts events to them.
type Hub struct {
	mu      sync.RWMutex
	clients map[string]map[Client]struct{}
}

func NewHub() *Hub {
	return &Hub{clients: make(map[string]map[Client]struct{})}
}

// Register adds a client under a user ID.
func (h *Hub) Register(userID string, client Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.clients[userID]; !ok {
		h.clients[userID] = make(map[Client]struct{})
	}
	h.clients[userID][client] = struct{}{}
}

// Unregister removes a client; if user has no more clients, cleans up map.
func (h *Hub) Unregister(userID string, client Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if clients, ok := h.clients[userID]; ok {
		delete(clients, client)
		if len(clients) == 0 {
			delete(h.clients, userID)
		}
	}
}

// Clients counts the connections open for a user
func (h *Hub) Clients(userID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients[userID])
}

// Broadcast sends a message to all clients of a user.
func (h *Hub) Broadcast(userID string, message []byte) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for c := range h.clients[userID] {
		// a failed write is cleaned up by the handler's reader loop
		_ = c.Send(message)
	}
}

// Publish encodes evt and broadcasts it to the owner's clients
func (h *Hub) Publish(evt Event) {
	if evt.Version == 0 {
		evt.Version = 1
	}
	payload, err := json.Marshal(evt)
	if err != nil {
		log.Printf("realtime: encode %s: %v", evt.Type, err)
		return
	}
	h.Broadcast(evt.UserID, payload)
}

// CloseUser disconnects every client of a user, used at sign-out
func (h *Hub) CloseUser(userID string) {
	h.mu.Lock()
	clients := h.clients[userID]
	delete(h.clients, userID)
	h.mu.Unlock()
	for c := range clients {
		c.Close()
	}
}
