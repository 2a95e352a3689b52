package models

// User represents a registered member of the platform.
type User struct {
	BaseModel
	Username     string `gorm:"type:varchar(100);uniqueIndex;not null" json:"username"`
	Email        string `gorm:"type:varchar(100);uniqueIndex;not null" json:"email"`
	FirstName    string `gorm:"type:varchar(100)" json:"firstName"`
	LastName     string `gorm:"type:varchar(100)" json:"lastName"`
	PasswordHash string `gorm:"type:varchar(255);not null" json:"-"` // never exposed
	AvatarURL    string `gorm:"type:varchar(255)" json:"avatarUrl,omitempty"`
}

// UserBasicInfo holds minimal public information about a user.
// Used for scenarios like listing the connections of a user or
// attaching sender info to a received interest.
type UserBasicInfo struct {
	ID        uint   `json:"id"`
	Username  string `json:"username"`
	FirstName string `json:"firstName,omitempty"`
	LastName  string `json:"lastName,omitempty"`
	AvatarURL string `json:"avatarUrl,omitempty"`
}

// TableName specifies the table name for the User model.
func (User) TableName() string {
	return "users"
}
