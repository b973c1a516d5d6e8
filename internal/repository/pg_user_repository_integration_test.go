package repository_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"auth-server/internal/database"
	"auth-server/internal/interfaces"
	"auth-server/internal/models"
	"auth-server/internal/repository"
	"auth-server/internal/security"
	"auth-server/internal/service"
	"auth-server/internal/token"

	"github.com/docker/docker/client"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

type PgIntegrationTestSuite struct {
	suite.Suite
	ctx         context.Context
	pgContainer *postgres.PostgresContainer
	pgPool      *pgxpool.Pool
	userRepo    interfaces.UserRepository
	authService service.AuthService
	logger      *zap.Logger
}

func (s *PgIntegrationTestSuite) SetupSuite() {
	s.ctx = context.Background()
	var err error

	s.logger, err = zap.NewDevelopment()
	require.NoError(s.T(), err, "Failed to create logger for tests")

	s.pgContainer, err = postgres.Run(s.ctx,
		"postgres:15-alpine",
		postgres.WithDatabase("test_db"),
		postgres.WithUsername("testuser"),
		postgres.WithPassword("testpass"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(5*time.Minute),
		),
	)
	require.NoError(s.T(), err, "Failed to start postgres container")

	pgConnStr, err := s.pgContainer.ConnectionString(s.ctx, "sslmode=disable")
	require.NoError(s.T(), err, "Failed to get postgres connection string")

	s.pgPool, err = pgxpool.New(s.ctx, pgConnStr)
	require.NoError(s.T(), err, "Failed to connect to test postgres")

	err = database.ApplyMigrations(s.pgPool)
	require.NoError(s.T(), err, "Failed to run migrations")
	s.logger.Info("Database migrations applied")

	s.userRepo = repository.NewPgUserRepository(s.pgPool, s.logger)
	hasher := security.NewHasher("test-pepper", bcrypt.MinCost)
	tokens := token.NewService("test-jwt-secret", "auth-server-test", 5*time.Minute, 10*time.Minute, s.logger)
	s.authService = service.NewAuthService(s.userRepo, hasher, tokens, s.logger)
}

func (s *PgIntegrationTestSuite) TearDownSuite() {
	if s.pgPool != nil {
		s.pgPool.Close()
	}
	if s.pgContainer != nil {
		if err := s.pgContainer.Terminate(s.ctx); err != nil {
			s.logger.Error("Failed to terminate postgres container", zap.Error(err))
		}
	}
}

func (s *PgIntegrationTestSuite) SetupTest() {
	_, err := s.pgPool.Exec(s.ctx, "TRUNCATE TABLE users CASCADE")
	require.NoError(s.T(), err, "Failed to truncate users table")
}

// TestPgIntegrationTestSuite runs the suite against a disposable container.
func TestPgIntegrationTestSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration tests in short mode")
	}
	cli, err := client.NewClientWithOpts(client.FromEnv)
	if err != nil {
		t.Fatalf("Docker client init error: %v. Ensure Docker is running and accessible.", err)
	}
	if _, err := cli.Ping(context.Background()); err != nil {
		t.Fatalf("Docker daemon is not running or accessible: %v", err)
	}
	cli.Close()

	suite.Run(t, new(PgIntegrationTestSuite))
}

func (s *PgIntegrationTestSuite) TestCreateAndGetUser() {
	t := s.T()
	ctx := context.Background()

	user := &models.User{Username: "pguser", PasswordHash: "some-hash"}
	err := s.userRepo.CreateUser(ctx, user)
	require.NoError(t, err, "CreateUser should succeed")
	require.False(t, user.CreatedAt.IsZero(), "CreatedAt should be populated from the database")

	got, err := s.userRepo.GetUserByUsername(ctx, "pguser")
	require.NoError(t, err)
	require.Equal(t, "pguser", got.Username)
	require.Equal(t, "some-hash", got.PasswordHash)
	require.False(t, got.Disabled)

	_, err = s.userRepo.GetUserByUsername(ctx, "nosuchuser")
	require.Error(t, err)
	require.True(t, errors.Is(err, models.ErrUserNotFound), "Error should be ErrUserNotFound")
}

func (s *PgIntegrationTestSuite) TestCreateDuplicateUser() {
	t := s.T()
	ctx := context.Background()

	err := s.userRepo.CreateUser(ctx, &models.User{Username: "dupuser", PasswordHash: "hash-one"})
	require.NoError(t, err)

	err = s.userRepo.CreateUser(ctx, &models.User{Username: "dupuser", PasswordHash: "hash-two"})
	require.Error(t, err, "Second insert with the same username should fail")
	require.True(t, errors.Is(err, models.ErrUserAlreadyExists), "Error should be ErrUserAlreadyExists")

	// The original row is untouched
	got, err := s.userRepo.GetUserByUsername(ctx, "dupuser")
	require.NoError(t, err)
	require.Equal(t, "hash-one", got.PasswordHash)
}

func (s *PgIntegrationTestSuite) TestGetUserCount() {
	t := s.T()
	ctx := context.Background()

	count, err := s.userRepo.GetUserCount(ctx)
	require.NoError(t, err)
	require.EqualValues(t, 0, count)

	require.NoError(t, s.userRepo.CreateUser(ctx, &models.User{Username: "counted1", PasswordHash: "h"}))
	require.NoError(t, s.userRepo.CreateUser(ctx, &models.User{Username: "counted2", PasswordHash: "h"}))

	count, err = s.userRepo.GetUserCount(ctx)
	require.NoError(t, err)
	require.EqualValues(t, 2, count)
}

func (s *PgIntegrationTestSuite) TestAuthFlowAgainstPostgres() {
	t := s.T()
	ctx := context.Background()
	username := "flowuser"
	password := "password123"

	// Register
	registered, err := s.authService.Register(ctx, username, password)
	require.NoError(t, err, "Register should succeed")
	require.Equal(t, username, registered.Username)
	require.False(t, registered.CreatedAt.IsZero(), "CreatedAt should be set on registration")

	// Re-registering the same username fails
	_, err = s.authService.Register(ctx, username, "anotherpassword")
	require.Error(t, err)
	require.True(t, errors.Is(err, models.ErrUserAlreadyExists), "Error should be ErrUserAlreadyExists")

	// Login returns a token pair
	tokens, err := s.authService.Login(ctx, username, password)
	require.NoError(t, err, "Login should succeed")
	require.NotEmpty(t, tokens.AccessToken)
	require.NotEmpty(t, tokens.RefreshToken)
	require.Equal(t, "bearer", tokens.TokenType)
	require.NotZero(t, tokens.AtExpires)
	require.NotZero(t, tokens.RtExpires)

	// Wrong password and unknown user fail the same way
	_, err = s.authService.Login(ctx, username, "wrongpassword")
	require.True(t, errors.Is(err, models.ErrInvalidCredentials), "Error should be ErrInvalidCredentials")
	_, err = s.authService.Login(ctx, "nonexistent", password)
	require.True(t, errors.Is(err, models.ErrInvalidCredentials), "Error should be ErrInvalidCredentials")

	// The access token resolves to the stored user
	user, err := s.authService.ResolveCurrentUser(ctx, tokens.AccessToken)
	require.NoError(t, err)
	require.Equal(t, username, user.Username)

	// Refresh rotates the pair
	time.Sleep(10 * time.Millisecond)
	rotated, err := s.authService.Refresh(ctx, tokens.RefreshToken)
	require.NoError(t, err, "Refresh should succeed")
	require.NotEmpty(t, rotated.AccessToken)
	require.NotEqual(t, tokens.RefreshToken, rotated.RefreshToken, "Refresh tokens should be different")
}
