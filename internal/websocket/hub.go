package websocket

import (
	"context"

	"github.com/isdelr/student-records/internal/services"
	"github.com/rs/zerolog/log"
)

// Hub maintains the set of active clients and broadcasts messages to them.
type Hub struct {
	// Registered clients.
	clients map[*Client]bool

	// Outbound messages for every client.
	Broadcast chan []byte

	// Register requests from the clients.
	Register chan *Client

	// Unregister requests from clients.
	Unregister chan *Client

	done chan struct{}
}

// NewHub creates a new Hub.
func NewHub() *Hub {
	return &Hub{
		Broadcast:  make(chan []byte, 256),
		Register:   make(chan *Client),
		Unregister: make(chan *Client),
		clients:    make(map[*Client]bool),
		done:       make(chan struct{}),
	}
}

// Run starts the Hub's message processing loop.
func (h *Hub) Run() {
	for {
		select {
		case <-h.done:
			for client := range h.clients {
				client.close()
				delete(h.clients, client)
			}
			return
		case client := <-h.Register:
			h.clients[client] = true
			log.Info().Str("username", client.Username).Int("total_clients", len(h.clients)).Msg("Client connected")
		case client := <-h.Unregister:
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				client.close()
				log.Info().Str("username", client.Username).Int("total_clients", len(h.clients)).Msg("Client disconnected")
			}
		case message := <-h.Broadcast:
			for client := range h.clients {
				if !client.Queue(message) {
					client.close()
					delete(h.clients, client)
				}
			}
		}
	}
}

// Add registers c, or closes it if the hub has stopped.
func (h *Hub) Add(c *Client) {
	select {
	case h.Register <- c:
	case <-h.done:
		c.close()
	}
}

// Remove unregisters c. It is a no-op once the hub has stopped.
func (h *Hub) Remove(c *Client) {
	select {
	case h.Unregister <- c:
	case <-h.done:
	}
}

// Stop ends Run and closes every client's send channel.
func (h *Hub) Stop() {
	close(h.done)
}

// NotifyStudentChange pushes a committed record change to every client. It
// never blocks; if the hub is backed up the message is dropped.
func (h *Hub) NotifyStudentChange(_ context.Context, change services.StudentChange) {
	msg := NewMessage(change.Type, studentPayload{
		ID:    change.ID,
		Actor: change.Actor,
		Name:  change.Student.Name,
		Major: change.Student.Major,
		GPA:   change.Student.GPA,
		Owner: change.Student.Owner,
	})
	select {
	case h.Broadcast <- msg:
	default:
		log.Warn().Str("event_type", change.Type).Str("student_id", change.ID).Msg("Websocket broadcast queue full, dropping message")
	}
}

type studentPayload struct {
	ID    string  `json:"id"`
	Actor string  `json:"actor"`
	Name  string  `json:"name"`
	Major string  `json:"major"`
	GPA   float64 `json:"gpa"`
	Owner string  `json:"owner"`
}
