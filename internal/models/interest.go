package models

// Interest represents a directed proposal from one user to another
// expressing a desire to connect.
//
// Both flags false means the interest is still pending. IsAccepted and
// IsRejected are never both true; responding sets exactly one of them.
type Interest struct {
	BaseModel
	SenderID   uint   `gorm:"not null;index:idx_interest_users" json:"senderId"`
	ReceiverID uint   `gorm:"not null;index:idx_interest_users" json:"receiverId"`
	Message    string `gorm:"type:text" json:"message"`
	IsAccepted bool   `gorm:"not null;default:false" json:"isAccepted"`
	IsRejected bool   `gorm:"not null;default:false" json:"isRejected"`
}

// TableName specifies the table name for the Interest model.
func (Interest) TableName() string {
	return "interests"
}

// Pending reports whether the interest has not been responded to yet.
func (i *Interest) Pending() bool {
	return !i.IsAccepted && !i.IsRejected
}

// InterestWithSender is a DTO that includes interest details along with
// basic information about the user who sent it. Useful for API responses
// when listing received pending interests. Sender may be nil when the
// sender's profile could not be resolved.
type InterestWithSender struct {
	Interest
	Sender *UserBasicInfo `json:"sender"`
}

// InterestWithUsernames renders both parties as usernames. This is the
// shape returned when an interest is created or responded to.
type InterestWithUsernames struct {
	Interest
	SenderUsername   string `json:"sender"`
	ReceiverUsername string `json:"receiver"`
}
