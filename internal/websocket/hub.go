package websocket

import (
	"encoding/json"
	"log"

	"match-go/internal/matchtypes"
)

// directNotification pairs a serialized notification with its target user.
type directNotification struct {
	userID  uint
	payload []byte
}

// Hub maintains the set of connected clients and routes notifications to
// the right user. One connection per user ID; a new connection replaces
// the previous one.
type Hub struct {
	clients map[uint]*Client

	register   chan *Client
	unregister chan *Client

	// Notifications aimed at a specific user.
	direct chan directNotification
}

// NewHub creates a new Hub.
func NewHub() *Hub {
	return &Hub{
		clients:    make(map[uint]*Client),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		direct:     make(chan directNotification, 256),
	}
}

// Notify delivers a notification to the given user's connection, if any.
// The send is non-blocking so a slow hub never stalls the Kafka consumer.
func (h *Hub) Notify(userID uint, n *matchtypes.Notification) {
	payload, err := json.Marshal(n)
	if err != nil {
		log.Printf("Error serializing notification for user %d: %v", userID, err)
		return
	}
	select {
	case h.direct <- directNotification{userID: userID, payload: payload}:
	default:
		log.Printf("Warning: hub direct channel is full, dropping notification for user %d", userID)
	}
}

// Run starts the hub loop. It owns the clients map; all mutation happens here.
func (h *Hub) Run() {
	log.Println("WebSocket hub run loop started.")
	for {
		select {
		case client := <-h.register:
			if existing, ok := h.clients[client.UserID]; ok {
				log.Printf("User %d already connected, replacing the old connection.", client.UserID)
				close(existing.send)
			}
			h.clients[client.UserID] = client
			log.Printf("Client registered: user %d", client.UserID)

		case client := <-h.unregister:
			// Only drop the stored client if it is the one unregistering;
			// a replaced connection must not evict its successor.
			if stored, ok := h.clients[client.UserID]; ok && stored == client {
				delete(h.clients, client.UserID)
				close(client.send)
				log.Printf("Client unregistered: user %d", client.UserID)
			}

		case n := <-h.direct:
			client, ok := h.clients[n.userID]
			if !ok {
				// User not connected to this hub instance.
				continue
			}
			select {
			case client.send <- n.payload:
			default:
				// Send buffer full; assume the client is gone.
				log.Printf("Warning: send channel full for user %d, removing client.", n.userID)
				close(client.send)
				delete(h.clients, n.userID)
			}
		}
	}
}
