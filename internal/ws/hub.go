package ws

import (
	"context"
	"encoding/json"
	"sync"

	"alchemy_webapp/internal/domain"
	"alchemy_webapp/internal/logger"
	"alchemy_webapp/internal/metrics"
)

// Hub keeps the open sockets of every user and pushes events to them.
// One user may have several tabs/devices open.
type Hub struct {
	mu      sync.RWMutex
	clients map[int64]map[*Client]struct{}
	closed  bool
}

func NewHub() *Hub {
	return &Hub{clients: make(map[int64]map[*Client]struct{})}
}

// Register returns false once the hub is closed.
func (h *Hub) Register(c *Client) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return false
	}
	set, ok := h.clients[c.UserID]
	if !ok {
		set = make(map[*Client]struct{})
		h.clients[c.UserID] = set
	}
	set[c] = struct{}{}
	metrics.WSConnections.Inc()
	logger.Debug("ws client registered", "user_id", c.UserID, "connections", len(set))
	return true
}

// Unregister removes the client and closes its Send channel (once).
func (h *Hub) Unregister(c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.unregisterLocked(c)
}

func (h *Hub) unregisterLocked(c *Client) {
	set, ok := h.clients[c.UserID]
	if !ok {
		return
	}
	if _, ok := set[c]; !ok {
		return
	}
	delete(set, c)
	if len(set) == 0 {
		delete(h.clients, c.UserID)
	}
	close(c.Send)
	metrics.WSConnections.Dec()
}

// Notify implements the service notifier: the event goes to every socket of
// event.UserID. Slow clients drop messages instead of blocking the caller.
func (h *Hub) Notify(ctx context.Context, event domain.Event) {
	msg, err := json.Marshal(event)
	if err != nil {
		logger.FromContext(ctx).Error("ws: marshal event", "type", event.Type, "error", err)
		return
	}
	h.SendTo(event.UserID, msg)
}

// SendTo returns how many sockets accepted the message.
func (h *Hub) SendTo(userID int64, msg []byte) int {
	h.mu.RLock()
	defer h.mu.RUnlock()

	sent := 0
	for c := range h.clients[userID] {
		select {
		case c.Send <- msg:
			sent++
		default:
			logger.Warn("ws send buffer full, dropping message", "user_id", userID)
		}
	}
	return sent
}

// deliver пишет в Send только пока клиент зарегистрирован (канал ещё не закрыт)
func (h *Hub) deliver(c *Client, msg []byte) bool {
	h.mu.RLock()
	defer h.mu.RUnlock()
	if _, ok := h.clients[c.UserID][c]; !ok {
		return false
	}
	select {
	case c.Send <- msg:
		return true
	default:
		return false
	}
}

// Online - число открытых соединений пользователя
func (h *Hub) Online(userID int64) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients[userID])
}

// Close disconnects everyone; used on shutdown.
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.closed = true
	for _, set := range h.clients {
		for c := range set {
			h.unregisterLocked(c)
		}
	}
}
