package service

import (
	"context"

	"auth-server/internal/models"
)

// AuthService orchestrates the credential and token flows.
type AuthService interface {
	// Register creates a new user. Returns models.ErrUserAlreadyExists if
	// the username is taken. No tokens are issued on registration.
	Register(ctx context.Context, username, password string) (*models.User, error)

	// Login verifies credentials and issues an access/refresh token pair.
	// Unknown username and wrong password both return
	// models.ErrInvalidCredentials so usernames cannot be enumerated.
	Login(ctx context.Context, username, password string) (*models.TokenDetails, error)

	// Refresh validates a refresh token and issues a fresh token pair for
	// the same subject (rotation; the old refresh token is not revoked).
	Refresh(ctx context.Context, refreshToken string) (*models.TokenDetails, error)

	// ResolveCurrentUser validates an access token and returns the user
	// record it asserts identity for.
	ResolveCurrentUser(ctx context.Context, accessToken string) (*models.User, error)
}
