package service

import (
	"context"
	"testing"
	"time"

	"auth-server/internal/models"
	"auth-server/internal/repository"
	"auth-server/internal/security"
	"auth-server/internal/token"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

func newTestAuthService(t *testing.T, accessTTL, refreshTTL time.Duration) AuthService {
	t.Helper()
	logger := zap.NewNop()
	userRepo := repository.NewMemoryUserRepository(logger)
	// MinCost keeps the bcrypt work factor cheap for tests
	hasher := security.NewHasher("unit-test-pepper", bcrypt.MinCost)
	tokens := token.NewService("unit-test-secret", "auth-server-test", accessTTL, refreshTTL, logger)
	return NewAuthService(userRepo, hasher, tokens, logger)
}

func TestRegisterThenLogin(t *testing.T) {
	svc := newTestAuthService(t, 30*time.Minute, 168*time.Hour)
	ctx := context.Background()

	user, err := svc.Register(ctx, "alice", "secret1")
	require.NoError(t, err)
	assert.Equal(t, "alice", user.Username)
	assert.False(t, user.Disabled)
	assert.NotEqual(t, "secret1", user.PasswordHash, "password must never be stored in plaintext")

	td, err := svc.Login(ctx, "alice", "secret1")
	require.NoError(t, err)
	require.NotEmpty(t, td.AccessToken)
	require.NotEmpty(t, td.RefreshToken)
	assert.Equal(t, "bearer", td.TokenType)

	// The issued access token resolves back to the registered user
	resolved, err := svc.ResolveCurrentUser(ctx, td.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, "alice", resolved.Username)
}

func TestRegisterDuplicateUser(t *testing.T) {
	svc := newTestAuthService(t, 30*time.Minute, 168*time.Hour)
	ctx := context.Background()

	_, err := svc.Register(ctx, "alice", "secret1")
	require.NoError(t, err)

	// A second registration fails regardless of the password
	_, err = svc.Register(ctx, "alice", "secret1")
	assert.ErrorIs(t, err, models.ErrUserAlreadyExists)
	_, err = svc.Register(ctx, "alice", "another2")
	assert.ErrorIs(t, err, models.ErrUserAlreadyExists)
}

func TestRegisterEmptyInput(t *testing.T) {
	svc := newTestAuthService(t, 30*time.Minute, 168*time.Hour)
	ctx := context.Background()

	_, err := svc.Register(ctx, "", "secret1")
	assert.ErrorIs(t, err, models.ErrInvalidInput)
	_, err = svc.Register(ctx, "alice", "")
	assert.ErrorIs(t, err, models.ErrInvalidInput)
}

func TestLoginFailuresAreNotEnumerable(t *testing.T) {
	svc := newTestAuthService(t, 30*time.Minute, 168*time.Hour)
	ctx := context.Background()

	_, err := svc.Register(ctx, "alice", "secret1")
	require.NoError(t, err)

	// Wrong password and unknown username yield the same error kind
	_, wrongPassErr := svc.Login(ctx, "alice", "wrong")
	_, unknownUserErr := svc.Login(ctx, "mallory", "secret1")

	assert.ErrorIs(t, wrongPassErr, models.ErrInvalidCredentials)
	assert.ErrorIs(t, unknownUserErr, models.ErrInvalidCredentials)
	assert.Equal(t, wrongPassErr, unknownUserErr)
}

func TestRefreshRotation(t *testing.T) {
	svc := newTestAuthService(t, 30*time.Minute, 168*time.Hour)
	ctx := context.Background()

	_, err := svc.Register(ctx, "alice", "secret1")
	require.NoError(t, err)
	td, err := svc.Login(ctx, "alice", "secret1")
	require.NoError(t, err)

	rotated, err := svc.Refresh(ctx, td.RefreshToken)
	require.NoError(t, err)
	require.NotEmpty(t, rotated.AccessToken)
	require.NotEmpty(t, rotated.RefreshToken)
	assert.Equal(t, "bearer", rotated.TokenType)

	// The rotated pair asserts the same subject
	user, err := svc.ResolveCurrentUser(ctx, rotated.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, "alice", user.Username)

	// Rotation is stateless: the old refresh token still validates until
	// it naturally expires (known limitation, no revocation list).
	again, err := svc.Refresh(ctx, td.RefreshToken)
	require.NoError(t, err)
	require.NotEmpty(t, again.AccessToken)
}

func TestRefreshRejectsInvalidTokens(t *testing.T) {
	svc := newTestAuthService(t, 30*time.Minute, 168*time.Hour)
	ctx := context.Background()

	_, err := svc.Refresh(ctx, "not-a-token")
	assert.ErrorIs(t, err, models.ErrTokenMalformed)

	// A token signed by a different service does not pass
	foreign := token.NewService("some-other-secret", "other", time.Minute, time.Hour, zap.NewNop())
	foreignToken, _, err := foreign.IssueRefresh("alice")
	require.NoError(t, err)
	_, err = svc.Refresh(ctx, foreignToken)
	assert.ErrorIs(t, err, models.ErrTokenInvalid)
}

func TestRefreshExpiredToken(t *testing.T) {
	// Refresh TTL in the past: every refresh token is born expired
	svc := newTestAuthService(t, 30*time.Minute, -time.Second)
	ctx := context.Background()

	_, err := svc.Register(ctx, "alice", "secret1")
	require.NoError(t, err)
	td, err := svc.Login(ctx, "alice", "secret1")
	require.NoError(t, err)

	_, err = svc.Refresh(ctx, td.RefreshToken)
	assert.ErrorIs(t, err, models.ErrTokenExpired)
}

func TestRefreshRejectsVanishedSubject(t *testing.T) {
	logger := zap.NewNop()
	userRepo := repository.NewMemoryUserRepository(logger)
	hasher := security.NewHasher("", bcrypt.MinCost)
	tokens := token.NewService("unit-test-secret", "auth-server-test", 30*time.Minute, 168*time.Hour, logger)
	svc := NewAuthService(userRepo, hasher, tokens, logger)
	ctx := context.Background()

	// A structurally valid refresh token whose subject was never registered
	orphan, _, err := tokens.IssueRefresh("ghost")
	require.NoError(t, err)

	_, err = svc.Refresh(ctx, orphan)
	assert.ErrorIs(t, err, models.ErrTokenInvalid)
}

func TestResolveCurrentUserFailures(t *testing.T) {
	svc := newTestAuthService(t, -time.Second, 168*time.Hour)
	ctx := context.Background()

	_, err := svc.Register(ctx, "alice", "secret1")
	require.NoError(t, err)
	td, err := svc.Login(ctx, "alice", "secret1")
	require.NoError(t, err)

	// Access TTL in the past: the token is already expired
	_, err = svc.ResolveCurrentUser(ctx, td.AccessToken)
	assert.ErrorIs(t, err, models.ErrTokenExpired)

	_, err = svc.ResolveCurrentUser(ctx, "garbage")
	assert.ErrorIs(t, err, models.ErrTokenMalformed)
}
