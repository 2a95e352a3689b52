package apiserver

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"match-go/internal/middleware"
	"match-go/internal/models"
	"match-go/internal/services"

	"github.com/gorilla/mux"
)

// ChatHandler bundles the direct-message HTTP handlers.
type ChatHandler struct {
	messageService services.MessageService
}

// NewChatHandler creates a new ChatHandler instance.
func NewChatHandler(ms services.MessageService) *ChatHandler {
	return &ChatHandler{messageService: ms}
}

// SendMessagePayload is the body for sending a chat message.
type SendMessagePayload struct {
	Content string `json:"content"`
}

// ListConversationHandler handles GET /api/v1/chat/{username}.
func (h *ChatHandler) ListConversationHandler(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		writeJSONError(w, "unable to resolve caller identity", http.StatusUnauthorized)
		return
	}

	username := mux.Vars(r)["username"]
	messages, err := h.messageService.ListConversation(r.Context(), userID, username)
	if err != nil {
		if errors.Is(err, services.ErrChatPeerNotFound) {
			writeJSONError(w, err.Error(), http.StatusNotFound)
		} else {
			log.Printf("Error fetching conversation for user %d with %q: %v", userID, username, err)
			writeJSONError(w, "failed to fetch conversation", http.StatusInternalServerError)
		}
		return
	}

	if messages == nil {
		messages = []models.MessageWithUsernames{}
	}
	writeJSONResponse(w, http.StatusOK, messages)
}

// SendMessageHandler handles POST /api/v1/chat/{username}.
func (h *ChatHandler) SendMessageHandler(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		writeJSONError(w, "unable to resolve caller identity", http.StatusUnauthorized)
		return
	}

	username := mux.Vars(r)["username"]

	var payload SendMessagePayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeJSONError(w, "invalid request body", http.StatusBadRequest)
		return
	}
	defer r.Body.Close()

	message, err := h.messageService.SendMessage(r.Context(), userID, username, payload.Content)
	if err != nil {
		if errors.Is(err, services.ErrChatPeerNotFound) {
			writeJSONError(w, err.Error(), http.StatusNotFound)
		} else {
			log.Printf("Error sending message from user %d to %q: %v", userID, username, err)
			writeJSONError(w, "failed to send message", http.StatusInternalServerError)
		}
		return
	}

	writeJSONResponse(w, http.StatusCreated, message)
}
