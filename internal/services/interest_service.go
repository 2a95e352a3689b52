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

var (
	ErrInterestSelf        = errors.New("cannot send an interest to yourself")
	ErrReceiverRequired    = errors.New("receiver username is required")
	ErrReceiverNotFound    = errors.New("receiver not found")
	ErrInterestNotFound    = errors.New("interest not found")
	ErrNotInterestReceiver = errors.New("you are not authorized to respond to this interest")
	ErrInvalidDecision     = errors.New("decision must be either accept or reject")
)

// InterestDecision is the tagged response to a received interest.
// Modeling the decision as a single value rules out the contradictory
// "both accepted and rejected" input at the type level.
type InterestDecision string

const (
	DecisionAccept InterestDecision = "accept"
	DecisionReject InterestDecision = "reject"
)

// ParseInterestDecision validates a client-supplied decision string.
func ParseInterestDecision(s string) (InterestDecision, error) {
	switch InterestDecision(s) {
	case DecisionAccept:
		return DecisionAccept, nil
	case DecisionReject:
		return DecisionReject, nil
	default:
		return "", ErrInvalidDecision
	}
}

// InterestService defines the interest lifecycle operations. The caller's
// identity is always an explicit parameter, never ambient state.
type InterestService interface {
	// SendInterest records a pending interest from the caller to the user
	// named by receiverUsername. The message may be empty. Duplicate
	// interests between the same pair are allowed.
	SendInterest(ctx context.Context, senderID uint, receiverUsername, message string) (*models.InterestWithUsernames, error)
	// ListReceivedPending returns the still-unanswered interests addressed
	// to the caller, each enriched with basic sender info.
	ListReceivedPending(ctx context.Context, userID uint) ([]*models.InterestWithSender, error)
	// RespondToInterest sets the disposition of an interest. Only the
	// receiver may respond. Responding again overwrites the previous
	// disposition; exactly one flag is ever set.
	RespondToInterest(ctx context.Context, responderID uint, interestID uint, decision InterestDecision) (*models.InterestWithUsernames, error)
	// ListAcceptedConnections returns the users who accepted an interest
	// the caller sent. Interests the caller received and accepted do not
	// appear here; the view is directional.
	ListAcceptedConnections(ctx context.Context, userID uint) ([]*models.UserBasicInfo, error)
}

type interestService struct {
	userRepo     storage.UserRepository
	interestRepo storage.InterestRepository
	producer     kafka.MessageProducer
	kafkaConfig  config.KafkaConfig
}

// NewInterestService creates a new InterestService instance.
func NewInterestService(
	userRepo storage.UserRepository,
	interestRepo storage.InterestRepository,
	producer kafka.MessageProducer,
	cfg config.KafkaConfig,
) InterestService {
	return &interestService{
		userRepo:     userRepo,
		interestRepo: interestRepo,
		producer:     producer,
		kafkaConfig:  cfg,
	}
}

// SendInterest validates the target and records a new pending interest.
func (s *interestService) SendInterest(ctx context.Context, senderID uint, receiverUsername, message string) (*models.InterestWithUsernames, error) {
	if receiverUsername == "" {
		return nil, ErrReceiverRequired
	}

	receiver, err := s.userRepo.GetByUsername(ctx, receiverUsername)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrReceiverNotFound
	} else if err != nil {
		return nil, fmt.Errorf("failed to resolve receiver: %w", err)
	}

	if receiver.ID == senderID {
		return nil, ErrInterestSelf
	}

	sender, err := s.userRepo.GetBasicInfoByID(ctx, senderID)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve sender %d: %w", senderID, err)
	}

	interest := &models.Interest{
		SenderID:   senderID,
		ReceiverID: receiver.ID,
		Message:    message,
	}
	if err := s.interestRepo.Create(ctx, interest); err != nil {
		return nil, fmt.Errorf("failed to create interest: %w", err)
	}

	s.publishInterestEvent(ctx, matchtypes.EventInterestReceived, interest, receiver.ID)
	return &models.InterestWithUsernames{
		Interest:         *interest,
		SenderUsername:   sender.Username,
		ReceiverUsername: receiver.Username,
	}, nil
}

// ListReceivedPending retrieves the caller's unanswered interests.
func (s *interestService) ListReceivedPending(ctx context.Context, userID uint) ([]*models.InterestWithSender, error) {
	pending, err := s.interestRepo.ListPendingForReceiver(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch pending interests: %w", err)
	}

	result := []*models.InterestWithSender{}
	for _, interest := range pending {
		sender, err := s.userRepo.GetBasicInfoByID(ctx, interest.SenderID)
		if err != nil {
			// Keep the interest in the list; a failed profile lookup must
			// not hide a pending interest from its receiver.
			log.Printf("Error fetching sender info for user %d (interest %d): %v", interest.SenderID, interest.ID, err)
			sender = nil
		}
		result = append(result, &models.InterestWithSender{
			Interest: interest,
			Sender:   sender,
		})
	}
	return result, nil
}

// RespondToInterest applies the receiver's accept or reject decision.
func (s *interestService) RespondToInterest(ctx context.Context, responderID uint, interestID uint, decision InterestDecision) (*models.InterestWithUsernames, error) {
	interest, err := s.interestRepo.GetByID(ctx, interestID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrInterestNotFound
	} else if err != nil {
		return nil, fmt.Errorf("failed to retrieve interest %d: %w", interestID, err)
	}

	if interest.ReceiverID != responderID {
		return nil, ErrNotInterestReceiver
	}

	var accepted bool
	switch decision {
	case DecisionAccept:
		accepted = true
	case DecisionReject:
		accepted = false
	default:
		return nil, ErrInvalidDecision
	}

	// Both flags are written together so the record can never hold
	// accepted and rejected at the same time. A repeated response
	// overwrites the previous disposition.
	if err := s.interestRepo.UpdateDisposition(ctx, interestID, accepted, !accepted); err != nil {
		return nil, fmt.Errorf("failed to update interest %d: %w", interestID, err)
	}
	interest.IsAccepted = accepted
	interest.IsRejected = !accepted

	kind := matchtypes.EventInterestRejected
	if accepted {
		kind = matchtypes.EventInterestAccepted
	}
	s.publishInterestEvent(ctx, kind, interest, interest.SenderID)

	// Username rendering is best effort; the disposition is already
	// committed at this point.
	result := &models.InterestWithUsernames{Interest: *interest}
	if sender, err := s.userRepo.GetBasicInfoByID(ctx, interest.SenderID); err != nil {
		log.Printf("Error fetching sender info for user %d (interest %d): %v", interest.SenderID, interest.ID, err)
	} else {
		result.SenderUsername = sender.Username
	}
	if receiver, err := s.userRepo.GetBasicInfoByID(ctx, interest.ReceiverID); err != nil {
		log.Printf("Error fetching receiver info for user %d (interest %d): %v", interest.ReceiverID, interest.ID, err)
	} else {
		result.ReceiverUsername = receiver.Username
	}
	return result, nil
}

// ListAcceptedConnections computes the caller's connection view.
func (s *interestService) ListAcceptedConnections(ctx context.Context, userID uint) ([]*models.UserBasicInfo, error) {
	receiverIDs, err := s.interestRepo.ListAcceptedReceiverIDs(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list accepted interests: %w", err)
	}
	if len(receiverIDs) == 0 {
		return []*models.UserBasicInfo{}, nil
	}

	connections, err := s.userRepo.GetMultipleBasicInfoByIDs(ctx, receiverIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch connection profiles: %w", err)
	}
	return connections, nil
}

// publishInterestEvent emits a best-effort notification event. The core
// operation has already committed; a broker failure is logged, not surfaced.
func (s *interestService) publishInterestEvent(ctx context.Context, kind string, interest *models.Interest, notifyUserID uint) {
	if s.producer == nil {
		return
	}

	event := matchtypes.InterestEvent{
		Kind:         kind,
		InterestID:   interest.ID,
		SenderID:     interest.SenderID,
		ReceiverID:   interest.ReceiverID,
		NotifyUserID: notifyUserID,
		Message:      interest.Message,
		Timestamp:    time.Now(),
	}
	payload, err := json.Marshal(event)
	if err != nil {
		log.Printf("Error marshalling interest event for Kafka: %v", err)
		return
	}

	key := []byte(fmt.Sprintf("%d", notifyUserID))
	if err := s.producer.SendMessage(ctx, s.kafkaConfig.InterestEventsTopic, key, payload); err != nil {
		log.Printf("Error producing interest event to Kafka topic %s: %v", s.kafkaConfig.InterestEventsTopic, err)
	}
}
