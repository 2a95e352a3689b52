package services

import (
	"context"
	"sort"
	"time"

	"match-go/internal/models"

	"gorm.io/gorm"
)

// In-memory repository fakes backing the service tests. They mirror the
// GORM repositories' contract, including returning gorm.ErrRecordNotFound
// for missing records.

type memUserRepo struct {
	nextID uint
	users  map[uint]*models.User
}

func newMemUserRepo() *memUserRepo {
	return &memUserRepo{nextID: 1, users: make(map[uint]*models.User)}
}

func (r *memUserRepo) Create(_ context.Context, user *models.User) error {
	user.ID = r.nextID
	user.CreatedAt = time.Now()
	r.nextID++
	r.users[user.ID] = user
	return nil
}

func (r *memUserRepo) GetByID(_ context.Context, id uint) (*models.User, error) {
	user, ok := r.users[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	copied := *user
	return &copied, nil
}

func (r *memUserRepo) GetByUsername(_ context.Context, username string) (*models.User, error) {
	for _, user := range r.users {
		if user.Username == username {
			copied := *user
			return &copied, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *memUserRepo) GetByEmail(_ context.Context, email string) (*models.User, error) {
	for _, user := range r.users {
		if user.Email == email {
			copied := *user
			return &copied, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *memUserRepo) Update(_ context.Context, user *models.User) error {
	if _, ok := r.users[user.ID]; !ok {
		return gorm.ErrRecordNotFound
	}
	copied := *user
	r.users[user.ID] = &copied
	return nil
}

func (r *memUserRepo) ListAll(_ context.Context) ([]models.User, error) {
	ids := make([]uint, 0, len(r.users))
	for id := range r.users {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	users := make([]models.User, 0, len(ids))
	for _, id := range ids {
		users = append(users, *r.users[id])
	}
	return users, nil
}

func (r *memUserRepo) GetBasicInfoByID(_ context.Context, id uint) (*models.UserBasicInfo, error) {
	user, ok := r.users[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return &models.UserBasicInfo{
		ID:        user.ID,
		Username:  user.Username,
		FirstName: user.FirstName,
		LastName:  user.LastName,
		AvatarURL: user.AvatarURL,
	}, nil
}

func (r *memUserRepo) GetMultipleBasicInfoByIDs(ctx context.Context, userIDs []uint) ([]*models.UserBasicInfo, error) {
	infos := make([]*models.UserBasicInfo, 0, len(userIDs))
	for _, id := range userIDs {
		info, err := r.GetBasicInfoByID(ctx, id)
		if err != nil {
			continue
		}
		infos = append(infos, info)
	}
	return infos, nil
}

type memInterestRepo struct {
	nextID    uint
	interests map[uint]*models.Interest
}

func newMemInterestRepo() *memInterestRepo {
	return &memInterestRepo{nextID: 1, interests: make(map[uint]*models.Interest)}
}

func (r *memInterestRepo) Create(_ context.Context, interest *models.Interest) error {
	interest.ID = r.nextID
	interest.CreatedAt = time.Now()
	r.nextID++
	copied := *interest
	r.interests[interest.ID] = &copied
	return nil
}

func (r *memInterestRepo) GetByID(_ context.Context, interestID uint) (*models.Interest, error) {
	interest, ok := r.interests[interestID]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	copied := *interest
	return &copied, nil
}

func (r *memInterestRepo) UpdateDisposition(_ context.Context, interestID uint, accepted, rejected bool) error {
	interest, ok := r.interests[interestID]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	interest.IsAccepted = accepted
	interest.IsRejected = rejected
	return nil
}

func (r *memInterestRepo) ListPendingForReceiver(_ context.Context, receiverID uint) ([]models.Interest, error) {
	ids := make([]uint, 0, len(r.interests))
	for id, interest := range r.interests {
		if interest.ReceiverID == receiverID && interest.Pending() {
			ids = append(ids, id)
		}
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	pending := make([]models.Interest, 0, len(ids))
	for _, id := range ids {
		pending = append(pending, *r.interests[id])
	}
	return pending, nil
}

func (r *memInterestRepo) ListAcceptedReceiverIDs(_ context.Context, senderID uint) ([]uint, error) {
	seen := make(map[uint]bool)
	var receiverIDs []uint
	for _, interest := range r.interests {
		if interest.SenderID == senderID && interest.IsAccepted && !seen[interest.ReceiverID] {
			seen[interest.ReceiverID] = true
			receiverIDs = append(receiverIDs, interest.ReceiverID)
		}
	}
	sort.Slice(receiverIDs, func(i, j int) bool { return receiverIDs[i] < receiverIDs[j] })
	return receiverIDs, nil
}

type memMessageRepo struct {
	nextID   uint
	messages []models.Message
}

func newMemMessageRepo() *memMessageRepo {
	return &memMessageRepo{nextID: 1}
}

func (r *memMessageRepo) Create(_ context.Context, message *models.Message) error {
	message.ID = r.nextID
	message.CreatedAt = time.Now()
	r.nextID++
	r.messages = append(r.messages, *message)
	return nil
}

func (r *memMessageRepo) ListBetweenUsers(_ context.Context, userID1, userID2 uint) ([]models.Message, error) {
	var result []models.Message
	for _, m := range r.messages {
		if (m.SenderID == userID1 && m.ReceiverID == userID2) ||
			(m.SenderID == userID2 && m.ReceiverID == userID1) {
			result = append(result, m)
		}
	}
	sort.Slice(result, func(i, j int) bool {
		if result[i].CreatedAt.Equal(result[j].CreatedAt) {
			return result[i].ID < result[j].ID
		}
		return result[i].CreatedAt.Before(result[j].CreatedAt)
	})
	return result, nil
}

// recordingProducer captures published events instead of talking to Kafka.
type recordingProducer struct {
	topics   []string
	payloads [][]byte
}

func (p *recordingProducer) SendMessage(_ context.Context, topic string, _ []byte, payload []byte) error {
	p.topics = append(p.topics, topic)
	p.payloads = append(p.payloads, payload)
	return nil
}

func (p *recordingProducer) Close() {}

func mustCreateUser(repo *memUserRepo, username, email string) *models.User {
	user := &models.User{Username: username, Email: email}
	if err := repo.Create(context.Background(), user); err != nil {
		panic(err)
	}
	return user
}
