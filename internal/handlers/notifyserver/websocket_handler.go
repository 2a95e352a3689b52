package notifyserver

import (
	"context"
	"encoding/json"
	"log"
	"net/http"

	"match-go/internal/auth"
	"match-go/internal/config"
	"match-go/internal/matchtypes"
	"match-go/internal/websocket"

	confluentKafka "github.com/confluentinc/confluent-kafka-go/v2/kafka"
)

// WebSocketHandler authenticates websocket upgrade requests and feeds
// consumed Kafka events into the hub as user notifications.
type WebSocketHandler struct {
	hub       *websocket.Hub
	cfg       config.Config
	blacklist auth.TokenBlacklist
}

// NewWebSocketHandler creates a new WebSocketHandler instance.
func NewWebSocketHandler(hub *websocket.Hub, cfg config.Config, blacklist auth.TokenBlacklist) *WebSocketHandler {
	return &WebSocketHandler{hub: hub, cfg: cfg, blacklist: blacklist}
}

// ServeWsHandler handles GET /ws?token=... . Browsers cannot set an
// Authorization header on a websocket handshake, so the access token is
// carried as a query parameter.
func (h *WebSocketHandler) ServeWsHandler(w http.ResponseWriter, r *http.Request) {
	tokenString := r.URL.Query().Get("token")
	if tokenString == "" {
		http.Error(w, "missing token", http.StatusUnauthorized)
		return
	}

	claims, err := auth.ValidateToken(r.Context(), tokenString, h.cfg.Auth.JWTSecretKey, auth.TokenTypeAccess, h.blacklist)
	if err != nil {
		http.Error(w, "invalid token", http.StatusUnauthorized)
		return
	}

	websocket.ServeWs(h.hub, claims.UserID, w, r, h.cfg.WebSocket)
}

// HandleInterestEvent is the Kafka consumer callback for interest events.
func (h *WebSocketHandler) HandleInterestEvent(ctx context.Context, msg *confluentKafka.Message) error {
	var event matchtypes.InterestEvent
	if err := json.Unmarshal(msg.Value, &event); err != nil {
		log.Printf("Error unmarshalling interest event (value: %s): %v. Skipping message.", string(msg.Value), err)
		return nil // commit offset for a malformed message
	}

	h.hub.Notify(event.NotifyUserID, &matchtypes.Notification{
		Kind:      event.Kind,
		Payload:   event,
		Timestamp: event.Timestamp,
	})
	return nil
}

// HandleMessageEvent is the Kafka consumer callback for chat message events.
func (h *WebSocketHandler) HandleMessageEvent(ctx context.Context, msg *confluentKafka.Message) error {
	var event matchtypes.MessageEvent
	if err := json.Unmarshal(msg.Value, &event); err != nil {
		log.Printf("Error unmarshalling message event (value: %s): %v. Skipping message.", string(msg.Value), err)
		return nil
	}

	h.hub.Notify(event.ReceiverID, &matchtypes.Notification{
		Kind:      event.Kind,
		Payload:   event,
		Timestamp: event.Timestamp,
	})
	return nil
}
