package service

import (
	"context"
	"errors"
	"fmt"

	"auth-server/internal/interfaces"
	"auth-server/internal/models"
	"auth-server/internal/security"
	"auth-server/internal/token"

	"go.uber.org/zap"
)

// Compile-time check to ensure authServiceImpl implements AuthService
var _ AuthService = (*authServiceImpl)(nil)

// authServiceImpl implements the AuthService interface.
type authServiceImpl struct {
	userRepo interfaces.UserRepository
	hasher   *security.Hasher
	tokens   *token.Service
	logger   *zap.Logger
}

// NewAuthService creates a new instance of authServiceImpl.
func NewAuthService(userRepo interfaces.UserRepository, hasher *security.Hasher, tokens *token.Service, logger *zap.Logger) AuthService {
	return &authServiceImpl{
		userRepo: userRepo,
		hasher:   hasher,
		tokens:   tokens,
		logger:   logger.Named("AuthService"),
	}
}

// Register creates a new user.
func (s *authServiceImpl) Register(ctx context.Context, username, password string) (*models.User, error) {
	s.logger.Info("Registering new user", zap.String("username", username))

	if username == "" || password == "" {
		s.logger.Warn("Registration attempt with empty username or password", zap.String("username", username))
		return nil, models.ErrInvalidInput
	}

	hashedPassword, err := s.hasher.HashPassword(password)
	if err != nil {
		s.logger.Error("Failed to hash password during registration", zap.String("username", username), zap.Error(err))
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &models.User{
		Username:     username,
		PasswordHash: hashedPassword,
		Disabled:     false,
	}

	// Duplicate detection is left to the repository so the existence check
	// and the insert stay atomic under concurrent registration.
	if err := s.userRepo.CreateUser(ctx, user); err != nil {
		if !errors.Is(err, models.ErrUserAlreadyExists) {
			s.logger.Error("Failed to create user via repository", zap.String("username", username), zap.Error(err))
		}
		return nil, err
	}

	s.logger.Info("User registered successfully", zap.String("username", user.Username))
	return user, nil
}

// Login authenticates a user and returns a fresh token pair.
func (s *authServiceImpl) Login(ctx context.Context, username, password string) (*models.TokenDetails, error) {
	s.logger.Info("Login attempt", zap.String("username", username))

	user, err := s.userRepo.GetUserByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, models.ErrUserNotFound) {
			s.logger.Warn("Login failed: user not found", zap.String("username", username))
			return nil, models.ErrInvalidCredentials
		}
		s.logger.Error("Login failed: error getting user from repository", zap.String("username", username), zap.Error(err))
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	if !s.hasher.CheckPassword(password, user.PasswordHash) {
		s.logger.Warn("Login failed: invalid password", zap.String("username", username))
		return nil, models.ErrInvalidCredentials
	}

	td, err := s.createTokens(user.Username)
	if err != nil {
		s.logger.Error("Failed to create tokens during login", zap.String("username", username), zap.Error(err))
		return nil, fmt.Errorf("failed to create tokens: %w", err)
	}

	s.logger.Info("User logged in successfully", zap.String("username", user.Username))
	return td, nil
}

// Refresh issues new access and refresh tokens based on a valid refresh token.
func (s *authServiceImpl) Refresh(ctx context.Context, refreshToken string) (*models.TokenDetails, error) {
	s.logger.Info("Token refresh attempt") // Never log the token itself

	subject, err := s.tokens.Validate(refreshToken)
	if err != nil {
		// Validate already distinguishes expired/malformed/invalid.
		return nil, err
	}

	// Defensive re-check: the subject must still exist in the store.
	if _, err := s.userRepo.GetUserByUsername(ctx, subject); err != nil {
		if errors.Is(err, models.ErrUserNotFound) {
			s.logger.Warn("Refresh attempt for subject no longer in store", zap.String("username", subject))
			return nil, models.ErrTokenInvalid
		}
		s.logger.Error("Error checking subject existence during refresh", zap.String("username", subject), zap.Error(err))
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	td, err := s.createTokens(subject)
	if err != nil {
		s.logger.Error("Failed to create tokens during refresh", zap.String("username", subject), zap.Error(err))
		return nil, fmt.Errorf("failed to create new tokens during refresh: %w", err)
	}

	s.logger.Info("Token refreshed successfully", zap.String("username", subject))
	return td, nil
}

// ResolveCurrentUser validates an access token and resolves the user record.
func (s *authServiceImpl) ResolveCurrentUser(ctx context.Context, accessToken string) (*models.User, error) {
	s.logger.Debug("Resolving current user from access token")

	subject, err := s.tokens.Validate(accessToken)
	if err != nil {
		return nil, err
	}

	user, err := s.userRepo.GetUserByUsername(ctx, subject)
	if err != nil {
		if errors.Is(err, models.ErrUserNotFound) {
			s.logger.Warn("Subject from valid token not found in store", zap.String("username", subject))
			return nil, models.ErrTokenInvalid
		}
		s.logger.Error("Failed to get user during token resolution", zap.String("username", subject), zap.Error(err))
		return nil, fmt.Errorf("failed to get user for validation: %w", err)
	}

	s.logger.Debug("Token and user resolved successfully", zap.String("username", user.Username))
	return user, nil
}

// createTokens generates a new access and refresh token pair for a subject.
func (s *authServiceImpl) createTokens(subject string) (*models.TokenDetails, error) {
	td := &models.TokenDetails{TokenType: "bearer"}
	var err error

	td.AccessToken, td.AtExpires, err = s.tokens.IssueAccess(subject)
	if err != nil {
		return nil, fmt.Errorf("failed to sign access token: %w", err)
	}

	td.RefreshToken, td.RtExpires, err = s.tokens.IssueRefresh(subject)
	if err != nil {
		return nil, fmt.Errorf("failed to sign refresh token: %w", err)
	}

	return td, nil
}
