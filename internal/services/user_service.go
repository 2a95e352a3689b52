package services

import (
	"context"
	"errors"
	"fmt"

	"match-go/internal/models"
	"match-go/internal/storage"

	"gorm.io/gorm"
)

// UserService defines the user directory operations.
type UserService interface {
	// ListUsers returns every registered user, passwords stripped.
	ListUsers(ctx context.Context) ([]models.User, error)
	GetUserProfile(ctx context.Context, userID uint) (*models.User, error)
	// UpdateAvatar points the user's profile at a newly uploaded avatar.
	UpdateAvatar(ctx context.Context, userID uint, avatarURL string) (*models.User, error)
}

type userService struct {
	userRepo storage.UserRepository
}

// NewUserService creates a new UserService instance.
func NewUserService(userRepo storage.UserRepository) UserService {
	return &userService{userRepo: userRepo}
}

// ListUsers returns the full user directory.
func (s *userService) ListUsers(ctx context.Context) ([]models.User, error) {
	users, err := s.userRepo.ListAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	for i := range users {
		users[i].PasswordHash = ""
	}
	return users, nil
}

// GetUserProfile returns a user's public profile.
func (s *userService) GetUserProfile(ctx context.Context, userID uint) (*models.User, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrUserNotFound
	} else if err != nil {
		return nil, fmt.Errorf("failed to get user %d: %w", userID, err)
	}
	user.PasswordHash = ""
	return user, nil
}

// UpdateAvatar sets the user's avatar URL.
func (s *userService) UpdateAvatar(ctx context.Context, userID uint, avatarURL string) (*models.User, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrUserNotFound
	} else if err != nil {
		return nil, fmt.Errorf("failed to get user %d: %w", userID, err)
	}

	user.AvatarURL = avatarURL
	if err := s.userRepo.Update(ctx, user); err != nil {
		return nil, fmt.Errorf("failed to update user %d: %w", userID, err)
	}
	user.PasswordHash = ""
	return user, nil
}
