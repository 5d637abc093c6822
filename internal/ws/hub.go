package ws

import (
	"encoding/json"

	"github.com/ladybird-ops/ladybird-backend/internal/app/service"
	"github.com/ladybird-ops/ladybird-backend/pkg/logger"
)

// Hub fans equipment change events out to connected dashboard clients.
// It implements service.EquipmentNotifier.
type Hub struct {
	clients    map[*Client]bool
	register   chan *Client
	unregister chan *Client
	broadcast  chan []byte
}

func NewHub() *Hub {
	return &Hub{
		clients:    make(map[*Client]bool),
		register:   make(chan *Client, 64),
		unregister: make(chan *Client, 64),
		broadcast:  make(chan []byte, 256),
	}
}

// Run processes registrations and broadcasts. Call in its own goroutine.
func (h *Hub) Run() {
	for {
		select {
		case client := <-h.register:
			h.clients[client] = true
			logger.Info("WebSocket client registered", map[string]interface{}{
				"remote_addr":   client.conn.RemoteAddr().String(),
				"total_clients": len(h.clients),
			})

		case client := <-h.unregister:
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				close(client.send)
				logger.Info("WebSocket client unregistered", map[string]interface{}{
					"total_clients": len(h.clients),
				})
			}

		case message := <-h.broadcast:
			for client := range h.clients {
				select {
				case client.send <- message:
				default:
					// Slow consumer: drop it rather than block the hub.
					delete(h.clients, client)
					close(client.send)
				}
			}
		}
	}
}

// Notify implements service.EquipmentNotifier. Events that cannot be
// serialized or buffered are dropped; the feed is best-effort.
func (h *Hub) Notify(event service.EquipmentEvent) {
	payload, err := json.Marshal(event)
	if err != nil {
		logger.Error("Failed to serialize equipment event", err, map[string]interface{}{
			"type": event.Type,
		})
		return
	}

	select {
	case h.broadcast <- payload:
	default:
		logger.Warn("Equipment event feed is full, dropping event", map[string]interface{}{
			"type": event.Type,
		})
	}
}
