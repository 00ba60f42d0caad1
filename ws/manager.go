package ws

import (
	"log/slog"
	"sync"

	"ged_backend/internal/realtime"
)

// Manager fans notification events out to every live connection of a user.
// A user may hold several connections (tabs); each gets its own buffered
// send channel. Events are delivered in publish order and never replayed:
// a connection only sees what is published while it is registered.
type Manager struct {
	clients    map[string]map[string]*Client // userID → connID → client
	register   chan *Client
	unregister chan *Client
	mu         sync.RWMutex
}

func NewManager() *Manager {
	return &Manager{
		clients:    make(map[string]map[string]*Client),
		register:   make(chan *Client),
		unregister: make(chan *Client),
	}
}

func (manager *Manager) Run() {
	for {
		select {
		case client := <-manager.register:
			manager.mu.Lock()
			conns, ok := manager.clients[client.UserID]
			if !ok {
				conns = make(map[string]*Client)
				manager.clients[client.UserID] = conns
			}
			conns[client.ID] = client
			manager.mu.Unlock()
			slog.Debug("ws client registered", "user_id", client.UserID, "conn_id", client.ID)

		case client := <-manager.unregister:
			manager.mu.Lock()
			if conns, ok := manager.clients[client.UserID]; ok {
				if _, ok := conns[client.ID]; ok {
					close(client.Send)
					delete(conns, client.ID)
					if len(conns) == 0 {
						delete(manager.clients, client.UserID)
					}
					slog.Debug("ws client unregistered", "user_id", client.UserID, "conn_id", client.ID)
				}
			}
			manager.mu.Unlock()
		}
	}
}

// Publish sends the event to every connection of the user. The write lock
// serializes publishes, so two events for the same user always arrive in
// call order on every connection. A connection whose buffer is full is
// dropped rather than allowed to stall the others.
func (manager *Manager) Publish(userID string, event realtime.Event) {
	manager.mu.Lock()
	defer manager.mu.Unlock()

	for _, client := range manager.clients[userID] {
		select {
		case client.Send <- event:
		default:
			slog.Warn("ws client dropped, send buffer full", "user_id", userID, "conn_id", client.ID)
			go func(client *Client) {
				manager.unregister <- client
			}(client)
		}
	}
}

// ConnectionCount returns the number of live connections for a user.
func (manager *Manager) ConnectionCount(userID string) int {
	manager.mu.RLock()
	defer manager.mu.RUnlock()
	return len(manager.clients[userID])
}
