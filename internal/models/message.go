package models

// Message represents one chat line sent from one user to another.
// Messages are immutable once created; CreatedAt is the server-assigned
// timestamp used to order a conversation transcript.
type Message struct {
	BaseModel
	SenderID   uint   `gorm:"not null;index:idx_message_users" json:"senderId"`
	ReceiverID uint   `gorm:"not null;index:idx_message_users" json:"receiverId"`
	Content    string `gorm:"type:text" json:"content"`
}

// TableName specifies the table name for the Message model.
func (Message) TableName() string {
	return "messages"
}

// MessageWithUsernames renders both parties as usernames. This is the
// shape chat responses use.
type MessageWithUsernames struct {
	Message
	SenderUsername   string `json:"sender"`
	ReceiverUsername string `json:"receiver"`
}
