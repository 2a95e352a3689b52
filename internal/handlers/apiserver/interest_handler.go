package apiserver

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strconv"

	"match-go/internal/middleware"
	"match-go/internal/services"

	"github.com/gorilla/mux"
)

// InterestHandler bundles the interest lifecycle HTTP handlers.
type InterestHandler struct {
	interestService services.InterestService
}

// NewInterestHandler creates a new InterestHandler instance.
func NewInterestHandler(is services.InterestService) *InterestHandler {
	return &InterestHandler{interestService: is}
}

// SendInterestPayload is the body for sending an interest. The receiver
// is addressed by username; the message may be empty.
type SendInterestPayload struct {
	Receiver string `json:"receiver"`
	Message  string `json:"message"`
}

// RespondToInterestPayload carries the receiver's decision as a single
// tagged value ("accept" or "reject").
type RespondToInterestPayload struct {
	Decision string `json:"decision"`
}

// SendInterestHandler handles POST /api/v1/interests.
func (h *InterestHandler) SendInterestHandler(w http.ResponseWriter, r *http.Request) {
	senderID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		writeJSONError(w, "unable to resolve caller identity", http.StatusUnauthorized)
		return
	}

	var payload SendInterestPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeJSONError(w, "invalid request body", http.StatusBadRequest)
		return
	}
	defer r.Body.Close()

	interest, err := h.interestService.SendInterest(r.Context(), senderID, payload.Receiver, payload.Message)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrReceiverNotFound):
			writeJSONError(w, err.Error(), http.StatusNotFound)
		case errors.Is(err, services.ErrReceiverRequired), errors.Is(err, services.ErrInterestSelf):
			writeJSONError(w, err.Error(), http.StatusBadRequest)
		default:
			log.Printf("Error sending interest from user %d: %v", senderID, err)
			writeJSONError(w, "failed to send interest", http.StatusInternalServerError)
		}
		return
	}

	writeJSONResponse(w, http.StatusCreated, interest)
}

// ListReceivedPendingHandler handles GET /api/v1/interests/received.
func (h *InterestHandler) ListReceivedPendingHandler(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		writeJSONError(w, "unable to resolve caller identity", http.StatusUnauthorized)
		return
	}

	pending, err := h.interestService.ListReceivedPending(r.Context(), userID)
	if err != nil {
		log.Printf("Error fetching pending interests for user %d: %v", userID, err)
		writeJSONError(w, "failed to fetch pending interests", http.StatusInternalServerError)
		return
	}

	writeJSONResponse(w, http.StatusOK, pending)
}

// RespondToInterestHandler handles PATCH /api/v1/interests/{interestID}/respond.
func (h *InterestHandler) RespondToInterestHandler(w http.ResponseWriter, r *http.Request) {
	responderID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		writeJSONError(w, "unable to resolve caller identity", http.StatusUnauthorized)
		return
	}

	vars := mux.Vars(r)
	interestIDStr, ok := vars["interestID"]
	if !ok {
		writeJSONError(w, "missing interest ID", http.StatusBadRequest)
		return
	}
	interestID, err := strconv.ParseUint(interestIDStr, 10, 32)
	if err != nil {
		writeJSONError(w, "invalid interest ID format", http.StatusBadRequest)
		return
	}

	var payload RespondToInterestPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeJSONError(w, "invalid request body", http.StatusBadRequest)
		return
	}
	defer r.Body.Close()

	decision, err := services.ParseInterestDecision(payload.Decision)
	if err != nil {
		writeJSONError(w, err.Error(), http.StatusBadRequest)
		return
	}

	interest, err := h.interestService.RespondToInterest(r.Context(), responderID, uint(interestID), decision)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrInterestNotFound):
			writeJSONError(w, err.Error(), http.StatusNotFound)
		case errors.Is(err, services.ErrNotInterestReceiver):
			writeJSONError(w, err.Error(), http.StatusForbidden)
		case errors.Is(err, services.ErrInvalidDecision):
			writeJSONError(w, err.Error(), http.StatusBadRequest)
		default:
			log.Printf("Error responding to interest %d by user %d: %v", interestID, responderID, err)
			writeJSONError(w, "failed to respond to interest", http.StatusInternalServerError)
		}
		return
	}

	writeJSONResponse(w, http.StatusOK, interest)
}

// ListAcceptedConnectionsHandler handles GET /api/v1/interests/accepted.
func (h *InterestHandler) ListAcceptedConnectionsHandler(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		writeJSONError(w, "unable to resolve caller identity", http.StatusUnauthorized)
		return
	}

	connections, err := h.interestService.ListAcceptedConnections(r.Context(), userID)
	if err != nil {
		log.Printf("Error fetching connections for user %d: %v", userID, err)
		writeJSONError(w, "failed to fetch connections", http.StatusInternalServerError)
		return
	}

	writeJSONResponse(w, http.StatusOK, connections)
}
