package repository

import (
	"context"
	"sync"
	"time"

	"auth-server/internal/interfaces"
	"auth-server/internal/models"

	"go.uber.org/zap"
)

// Compile-time check to ensure memoryUserRepository implements UserRepository
var _ interfaces.UserRepository = (*memoryUserRepository)(nil)

// memoryUserRepository keeps user records in a mutex-guarded map.
// Used for tests and local development without a database.
type memoryUserRepository struct {
	mu     sync.RWMutex
	users  map[string]models.User
	logger *zap.Logger
}

// NewMemoryUserRepository creates an in-memory UserRepository.
func NewMemoryUserRepository(logger *zap.Logger) interfaces.UserRepository {
	return &memoryUserRepository{
		users:  make(map[string]models.User),
		logger: logger.Named("MemoryUserRepo"),
	}
}

// CreateUser inserts a new user record. The existence check and the insert
// happen under one write lock, so concurrent registration of the same
// username yields exactly one success.
func (r *memoryUserRepository) CreateUser(ctx context.Context, user *models.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.users[user.Username]; exists {
		r.logger.Warn("Attempted to create duplicate user", zap.String("username", user.Username))
		return models.ErrUserAlreadyExists
	}
	if user.CreatedAt.IsZero() {
		user.CreatedAt = time.Now()
	}
	r.users[user.Username] = *user
	r.logger.Info("User created successfully", zap.String("username", user.Username))
	return nil
}

// GetUserByUsername retrieves a user by their username.
func (r *memoryUserRepository) GetUserByUsername(ctx context.Context, username string) (*models.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	user, exists := r.users[username]
	if !exists {
		return nil, models.ErrUserNotFound
	}
	// Return a copy so callers cannot mutate the stored record.
	u := user
	return &u, nil
}

// GetUserCount retrieves the total number of users.
func (r *memoryUserRepository) GetUserCount(ctx context.Context) (int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return int64(len(r.users)), nil
}
