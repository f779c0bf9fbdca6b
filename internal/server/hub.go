package server

import (
	"sync"

	"github.com/charmbracelet/log"
	"github.com/lox/unoserver/internal/game"
)

// Hub tracks the WebSocket connections of every game and delivers engine
// events to them
type Hub struct {
	mu     sync.RWMutex
	games  map[string]map[*Connection]bool
	logger *log.Logger
}

// NewHub creates an empty hub
func NewHub(logger *log.Logger) *Hub {
	return &Hub{
		games:  make(map[string]map[*Connection]bool),
		logger: logger.WithPrefix("hub"),
	}
}

// Register subscribes a connection to its game
func (h *Hub) Register(conn *Connection) {
	h.mu.Lock()
	defer h.mu.Unlock()

	conns, ok := h.games[conn.GameID()]
	if !ok {
		conns = make(map[*Connection]bool)
		h.games[conn.GameID()] = conns
	}
	conns[conn] = true
	h.logger.Info("Client connected", "game", conn.GameID(), "player", conn.Player(), "connections", len(conns))
}

// Unregister removes a connection
func (h *Hub) Unregister(conn *Connection) {
	h.mu.Lock()
	defer h.mu.Unlock()

	conns, ok := h.games[conn.GameID()]
	if !ok || !conns[conn] {
		return
	}
	delete(conns, conn)
	if len(conns) == 0 {
		delete(h.games, conn.GameID())
	}
	h.logger.Info("Client disconnected", "game", conn.GameID(), "player", conn.Player())
}

// Connections returns the number of connections subscribed to a game
func (h *Hub) Connections(gameID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.games[gameID])
}

// Deliver sends each event to its recipient, or to every connection of the
// game when the event has none. A failed send is logged and does not stop
// delivery to the other connections.
func (h *Hub) Deliver(gameID string, events []game.Event) {
	if len(events) == 0 {
		return
	}

	h.mu.RLock()
	conns := make([]*Connection, 0, len(h.games[gameID]))
	for conn := range h.games[gameID] {
		conns = append(conns, conn)
	}
	h.mu.RUnlock()

	for _, event := range events {
		msg, err := MessageFromEvent(event)
		if err != nil {
			h.logger.Error("Failed to encode event", "error", err, "game", gameID, "type", event.EventType())
			continue
		}

		count := 0
		for _, conn := range conns {
			if recipient := event.Recipient(); recipient != "" && recipient != conn.Player() {
				continue
			}
			if err := conn.SendMessage(msg); err != nil {
				h.logger.Warn("Failed to send message to client", "error", err, "game", gameID, "player", conn.Player())
				continue
			}
			count++
		}

		h.logger.Debug("Delivered event", "game", gameID, "type", event.EventType(), "recipients", count)
	}
}

// CloseAll disconnects every connection
func (h *Hub) CloseAll() {
	h.mu.RLock()
	var conns []*Connection
	for _, gameConns := range h.games {
		for conn := range gameConns {
			conns = append(conns, conn)
		}
	}
	h.mu.RUnlock()

	for _, conn := range conns {
		_ = conn.Close()
	}
}
