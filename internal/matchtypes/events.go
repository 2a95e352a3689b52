package matchtypes

import "time"

// Event kinds published to Kafka after a successful core operation.
// The notify server forwards them to the affected user's WebSocket.
const (
	EventInterestReceived = "interest.received"
	EventInterestAccepted = "interest.accepted"
	EventInterestRejected = "interest.rejected"
	EventMessageReceived  = "message.received"
)

// InterestEvent is the payload published on the interest events topic.
// NotifyUserID is the user the notify server should push to: the receiver
// for a new interest, the original sender for an accept/reject.
type InterestEvent struct {
	Kind         string    `json:"kind"`
	InterestID   uint      `json:"interestId"`
	SenderID     uint      `json:"senderId"`
	ReceiverID   uint      `json:"receiverId"`
	NotifyUserID uint      `json:"notifyUserId"`
	Message      string    `json:"message,omitempty"`
	Timestamp    time.Time `json:"timestamp"`
}

// MessageEvent is the payload published on the message events topic.
type MessageEvent struct {
	Kind       string    `json:"kind"`
	MessageID  uint      `json:"messageId"`
	SenderID   uint      `json:"senderId"`
	ReceiverID uint      `json:"receiverId"`
	Content    string    `json:"content"`
	Timestamp  time.Time `json:"timestamp"`
}

// Notification is the JSON frame pushed to a connected WebSocket client.
type Notification struct {
	Kind      string      `json:"kind"`
	Payload   interface{} `json:"payload"`
	Timestamp time.Time   `json:"timestamp"`
}
