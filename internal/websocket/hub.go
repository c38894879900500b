package websocket

import (
	"encoding/json"

	"batepapo/internal/models"
	"batepapo/pkg/logger"
)

// Hub fans stored messages out to connected clients that may see them.
type Hub struct {
	clients    map[*Client]bool
	broadcast  chan *models.Message
	Register   chan *Client
	Unregister chan *Client
	shutdown   chan struct{}
	done       chan struct{}
}

func NewHub() *Hub {
	return &Hub{
		clients:    make(map[*Client]bool),
		broadcast:  make(chan *models.Message, 256),
		Register:   make(chan *Client),
		Unregister: make(chan *Client),
		shutdown:   make(chan struct{}),
		done:       make(chan struct{}),
	}
}

func (h *Hub) Run() {
	defer close(h.done)
	for {
		select {
		case <-h.shutdown:
			for client := range h.clients {
				close(client.send)
				delete(h.clients, client)
			}
			return

		case client := <-h.Register:
			h.clients[client] = true
			logger.Debug("Live feed opened for %s", client.username)

		case client := <-h.Unregister:
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				close(client.send)
				logger.Debug("Live feed closed for %s", client.username)
			}

		case message := <-h.broadcast:
			h.deliver(message)
		}
	}
}

// Publish queues a stored message for delivery. It does not block once the hub has stopped.
func (h *Hub) Publish(message *models.Message) {
	select {
	case h.broadcast <- message:
	case <-h.done:
	}
}

func (h *Hub) deliver(message *models.Message) {
	data, err := json.Marshal(message)
	if err != nil {
		logger.Error("Error marshaling live message: %v", err)
		return
	}

	for client := range h.clients {
		if !message.VisibleTo(client.username) {
			continue
		}
		select {
		case client.send <- data:
		default:
			close(client.send)
			delete(h.clients, client)
		}
	}
}

// Done is closed once Run has returned.
func (h *Hub) Done() <-chan struct{} {
	return h.done
}

func (h *Hub) Shutdown() {
	select {
	case h.shutdown <- struct{}{}:
	case <-h.done:
	}
}
