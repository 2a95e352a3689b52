package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"time"

	"match-go/internal/config"
	"match-go/internal/kafka"
	"match-go/internal/matchtypes"
	"match-go/internal/models"
	"match-go/internal/storage"

	"gorm.io/gorm"
)

var ErrChatPeerNotFound = errors.New("chat peer not found")

// MessageService defines the direct-message operations. A conversation is
// addressed by the other party's username; the caller is always explicit.
//
// Messaging is not gated on an accepted interest between the two users.
type MessageService interface {
	// SendMessage records one chat line from the caller to the named user.
	// Empty content is accepted.
	SendMessage(ctx context.Context, senderID uint, receiverUsername, content string) (*models.MessageWithUsernames, error)
	// ListConversation returns both directions of the conversation between
	// the caller and the named user, ordered by creation time ascending.
	ListConversation(ctx context.Context, userID uint, otherUsername string) ([]models.MessageWithUsernames, error)
}

type messageService struct {
	userRepo    storage.UserRepository
	msgRepo     storage.MessageRepository
	producer    kafka.MessageProducer
	kafkaConfig config.KafkaConfig
}

// NewMessageService creates a new MessageService instance.
func NewMessageService(
	userRepo storage.UserRepository,
	msgRepo storage.MessageRepository,
	producer kafka.MessageProducer,
	cfg config.KafkaConfig,
) MessageService {
	return &messageService{
		userRepo:    userRepo,
		msgRepo:     msgRepo,
		producer:    producer,
		kafkaConfig: cfg,
	}
}

// SendMessage resolves the receiver and persists the message.
func (s *messageService) SendMessage(ctx context.Context, senderID uint, receiverUsername, content string) (*models.MessageWithUsernames, error) {
	receiver, err := s.userRepo.GetByUsername(ctx, receiverUsername)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrChatPeerNotFound
	} else if err != nil {
		return nil, fmt.Errorf("failed to resolve receiver: %w", err)
	}

	sender, err := s.userRepo.GetBasicInfoByID(ctx, senderID)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve sender %d: %w", senderID, err)
	}

	message := &models.Message{
		SenderID:   senderID,
		ReceiverID: receiver.ID,
		Content:    content,
	}
	if err := s.msgRepo.Create(ctx, message); err != nil {
		return nil, fmt.Errorf("failed to create message: %w", err)
	}

	s.publishMessageEvent(ctx, message)
	return &models.MessageWithUsernames{
		Message:          *message,
		SenderUsername:   sender.Username,
		ReceiverUsername: receiver.Username,
	}, nil
}

// ListConversation returns the ordered transcript with the named user.
func (s *messageService) ListConversation(ctx context.Context, userID uint, otherUsername string) ([]models.MessageWithUsernames, error) {
	other, err := s.userRepo.GetByUsername(ctx, otherUsername)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrChatPeerNotFound
	} else if err != nil {
		return nil, fmt.Errorf("failed to resolve chat peer: %w", err)
	}

	caller, err := s.userRepo.GetBasicInfoByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve caller %d: %w", userID, err)
	}

	messages, err := s.msgRepo.ListBetweenUsers(ctx, userID, other.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch conversation: %w", err)
	}

	result := make([]models.MessageWithUsernames, 0, len(messages))
	for _, message := range messages {
		entry := models.MessageWithUsernames{Message: message}
		if message.SenderID == caller.ID {
			entry.SenderUsername = caller.Username
			entry.ReceiverUsername = other.Username
		} else {
			entry.SenderUsername = other.Username
			entry.ReceiverUsername = caller.Username
		}
		result = append(result, entry)
	}
	return result, nil
}

// publishMessageEvent emits a best-effort notification event for the
// receiver. Delivery is advisory; the message is already persisted.
func (s *messageService) publishMessageEvent(ctx context.Context, message *models.Message) {
	if s.producer == nil {
		return
	}

	event := matchtypes.MessageEvent{
		Kind:       matchtypes.EventMessageReceived,
		MessageID:  message.ID,
		SenderID:   message.SenderID,
		ReceiverID: message.ReceiverID,
		Content:    message.Content,
		Timestamp:  time.Now(),
	}
	payload, err := json.Marshal(event)
	if err != nil {
		log.Printf("Error marshalling message event for Kafka: %v", err)
		return
	}

	key := []byte(fmt.Sprintf("%d", message.ReceiverID))
	if err := s.producer.SendMessage(ctx, s.kafkaConfig.MessageEventsTopic, key, payload); err != nil {
		log.Printf("Error producing message event to Kafka topic %s: %v", s.kafkaConfig.MessageEventsTopic, err)
	}
}
