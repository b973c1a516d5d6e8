package interfaces

import (
	"context"

	"auth-server/internal/models"
)

// UserRepository defines the persistence boundary for user records.
// Implementations live in internal/repository; the auth service depends only
// on this interface so the backend can be swapped at startup.
type UserRepository interface {
	// CreateUser inserts a new user record. The check for an existing
	// username and the insert must be atomic: under concurrent registration
	// of the same username at most one call succeeds, the rest get
	// models.ErrUserAlreadyExists.
	CreateUser(ctx context.Context, user *models.User) error

	// GetUserByUsername retrieves a user by their username.
	// Returns models.ErrUserNotFound if the user does not exist.
	GetUserByUsername(ctx context.Context, username string) (*models.User, error)

	// GetUserCount retrieves the total number of users.
	GetUserCount(ctx context.Context) (int64, error)
}
