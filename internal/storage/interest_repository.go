package storage

import (
	"context"

	"gorm.io/gorm"

	"match-go/internal/models"
)

// InterestRepository defines the interface for interest data operations.
type InterestRepository interface {
	Create(ctx context.Context, interest *models.Interest) error
	GetByID(ctx context.Context, interestID uint) (*models.Interest, error)
	// UpdateDisposition sets both disposition flags in a single row update,
	// so an interest can never be observed with both flags true.
	UpdateDisposition(ctx context.Context, interestID uint, accepted, rejected bool) error
	ListPendingForReceiver(ctx context.Context, receiverID uint) ([]models.Interest, error)
	// ListAcceptedReceiverIDs returns the distinct receivers of the accepted
	// interests the given user sent.
	ListAcceptedReceiverIDs(ctx context.Context, senderID uint) ([]uint, error)
}

type gormInterestRepository struct {
	db *gorm.DB
}

// NewGormInterestRepository creates a new GORM-based InterestRepository.
func NewGormInterestRepository(db *gorm.DB) InterestRepository {
	return &gormInterestRepository{db: db}
}

func (r *gormInterestRepository) Create(ctx context.Context, interest *models.Interest) error {
	return r.db.WithContext(ctx).Create(interest).Error
}

func (r *gormInterestRepository) GetByID(ctx context.Context, interestID uint) (*models.Interest, error) {
	var interest models.Interest
	err := r.db.WithContext(ctx).First(&interest, interestID).Error
	if err != nil {
		return nil, err
	}
	return &interest, nil
}

func (r *gormInterestRepository) UpdateDisposition(ctx context.Context, interestID uint, accepted, rejected bool) error {
	return r.db.WithContext(ctx).
		Model(&models.Interest{}).
		Where("id = ?", interestID).
		Updates(map[string]interface{}{
			"is_accepted": accepted,
			"is_rejected": rejected,
		}).Error
}

func (r *gormInterestRepository) ListPendingForReceiver(ctx context.Context, receiverID uint) ([]models.Interest, error) {
	var interests []models.Interest
	err := r.db.WithContext(ctx).
		Where("receiver_id = ? AND is_accepted = ? AND is_rejected = ?", receiverID, false, false).
		Order("id").
		Find(&interests).Error
	return interests, err
}

func (r *gormInterestRepository) ListAcceptedReceiverIDs(ctx context.Context, senderID uint) ([]uint, error) {
	var receiverIDs []uint
	err := r.db.WithContext(ctx).
		Model(&models.Interest{}).
		Distinct("receiver_id").
		Where("sender_id = ? AND is_accepted = ?", senderID, true).
		Pluck("receiver_id", &receiverIDs).Error
	return receiverIDs, err
}
