package storage

import (
	"context"

	"gorm.io/gorm"

	"match-go/internal/models"
)

// MessageRepository defines the interface for chat message data operations.
type MessageRepository interface {
	Create(ctx context.Context, message *models.Message) error
	// ListBetweenUsers returns all messages exchanged between two users,
	// in both directions, ordered by creation time ascending so the result
	// reads as a transcript.
	ListBetweenUsers(ctx context.Context, userID1, userID2 uint) ([]models.Message, error)
}

// gormMessageRepository implements MessageRepository using GORM.
type gormMessageRepository struct {
	db *gorm.DB
}

// NewGormMessageRepository creates a new GORM-based MessageRepository.
func NewGormMessageRepository(db *gorm.DB) MessageRepository {
	return &gormMessageRepository{db: db}
}

// Create persists a new message record.
func (r *gormMessageRepository) Create(ctx context.Context, message *models.Message) error {
	return r.db.WithContext(ctx).Create(message).Error
}

// ListBetweenUsers retrieves the conversation between two users.
func (r *gormMessageRepository) ListBetweenUsers(ctx context.Context, userID1, userID2 uint) ([]models.Message, error) {
	var messages []models.Message
	err := r.db.WithContext(ctx).
		Where("(sender_id = ? AND receiver_id = ?) OR (sender_id = ? AND receiver_id = ?)",
			userID1, userID2, userID2, userID1).
		Order("created_at ASC, id ASC").
		Find(&messages).Error
	if err != nil {
		return nil, err
	}
	return messages, nil
}
