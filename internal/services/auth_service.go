package services

import (
	"context"
	"errors"
	"fmt"

	"match-go/internal/auth"
	"match-go/internal/config"
	"match-go/internal/models"
	"match-go/internal/storage"

	"gorm.io/gorm"
)

var (
	ErrUserAlreadyExists   = errors.New("username or email already taken")
	ErrInvalidCredentials  = errors.New("invalid username or password")
	ErrUserNotFound        = errors.New("user not found")
	ErrInvalidRefreshToken = errors.New("invalid refresh token")
)

// AuthService defines the user authentication operations.
type AuthService interface {
	Register(ctx context.Context, username, email, firstName, lastName, password string) (*models.User, error)
	Login(ctx context.Context, username, password string) (*auth.TokenPair, *models.User, error)
	Refresh(ctx context.Context, refreshToken string) (accessToken string, err error)
}

type authService struct {
	userRepo storage.UserRepository
	cfg      config.Config
}

// NewAuthService creates a new AuthService instance.
func NewAuthService(userRepo storage.UserRepository, cfg config.Config) AuthService {
	return &authService{
		userRepo: userRepo,
		cfg:      cfg,
	}
}

// Register creates a new user account with a bcrypt-hashed password.
func (s *authService) Register(ctx context.Context, username, email, firstName, lastName, password string) (*models.User, error) {
	_, err := s.userRepo.GetByUsername(ctx, username)
	if err == nil {
		return nil, ErrUserAlreadyExists
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("failed to check username: %w", err)
	}

	_, err = s.userRepo.GetByEmail(ctx, email)
	if err == nil {
		return nil, ErrUserAlreadyExists
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("failed to check email: %w", err)
	}

	hashedPassword, err := auth.HashPassword(password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	newUser := &models.User{
		Username:     username,
		Email:        email,
		FirstName:    firstName,
		LastName:     lastName,
		PasswordHash: hashedPassword,
	}

	if err := s.userRepo.Create(ctx, newUser); err != nil {
		// A concurrent signup can slip past the lookups above and lose
		// the insert to the unique index on username/email.
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrUserAlreadyExists
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	return newUser, nil
}

// Login verifies the credentials and issues an access/refresh token pair.
func (s *authService) Login(ctx context.Context, username, password string) (*auth.TokenPair, *models.User, error) {
	user, err := s.userRepo.GetByUsername(ctx, username)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil, ErrUserNotFound
	} else if err != nil {
		return nil, nil, fmt.Errorf("failed to look up user: %w", err)
	}

	if !auth.CheckPasswordHash(password, user.PasswordHash) {
		return nil, nil, ErrInvalidCredentials
	}

	pair, err := auth.GenerateTokenPair(user.ID, user.Username, s.cfg.Auth)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to generate tokens: %w", err)
	}

	return pair, user, nil
}

// Refresh exchanges a valid refresh token for a fresh access token.
func (s *authService) Refresh(ctx context.Context, refreshToken string) (string, error) {
	claims, err := auth.ValidateToken(ctx, refreshToken, s.cfg.Auth.JWTSecretKey, auth.TokenTypeRefresh, nil)
	if err != nil {
		return "", ErrInvalidRefreshToken
	}

	accessToken, err := auth.GenerateToken(claims.UserID, claims.Username, auth.TokenTypeAccess, s.cfg.Auth.AccessTokenTTL, s.cfg.Auth)
	if err != nil {
		return "", fmt.Errorf("failed to generate access token: %w", err)
	}
	return accessToken, nil
}
