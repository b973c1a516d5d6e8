package token

import (
	"errors"
	"fmt"
	"time"

	"auth-server/internal/domain"
	"auth-server/internal/models"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Service mints and validates signed, time-bound tokens. Access and refresh
// tokens share the same format (HS256, sub/exp/iat/jti/iss claims) and differ
// only in lifetime. Tokens are stateless: validity is fully determined by the
// signature and expiry, there is no server-side revocation.
type Service struct {
	secret     []byte
	issuer     string
	accessTTL  time.Duration
	refreshTTL time.Duration
	logger     *zap.Logger

	// now is read once per issue/validate call so a single check never sees
	// two different clocks. Overridable in tests.
	now func() time.Time
}

// NewService creates a token Service. The signing secret and TTLs are fixed
// for the lifetime of the process.
func NewService(secret, issuer string, accessTTL, refreshTTL time.Duration, logger *zap.Logger) *Service {
	return &Service{
		secret:     []byte(secret),
		issuer:     issuer,
		accessTTL:  accessTTL,
		refreshTTL: refreshTTL,
		logger:     logger.Named("TokenService"),
		now:        time.Now,
	}
}

// IssueAccess mints a short-lived access token for the given subject.
func (s *Service) IssueAccess(subject string) (string, int64, error) {
	return s.issue(subject, s.accessTTL)
}

// IssueRefresh mints a long-lived refresh token for the given subject.
func (s *Service) IssueRefresh(subject string) (string, int64, error) {
	return s.issue(subject, s.refreshTTL)
}

func (s *Service) issue(subject string, ttl time.Duration) (string, int64, error) {
	now := s.now()
	expiresAt := now.Add(ttl)

	claims := &domain.Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			Issuer:    s.issuer,
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			IssuedAt:  jwt.NewNumericDate(now),
			ID:        uuid.NewString(),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.secret)
	if err != nil {
		s.logger.Error("Failed to sign token", zap.Error(err), zap.String("subject", subject))
		return "", 0, fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, expiresAt.Unix(), nil
}

// Validate parses the token string, verifies its signature and expiry, and
// returns the subject. A token whose expiry is at or before the current time
// fails with models.ErrTokenExpired; a structurally broken token fails with
// models.ErrTokenMalformed; everything else (bad signature, wrong algorithm,
// empty subject) fails with models.ErrTokenInvalid.
func (s *Service) Validate(tokenString string) (string, error) {
	token, err := jwt.ParseWithClaims(tokenString, &domain.Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return s.secret, nil
	}, jwt.WithTimeFunc(s.now))

	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			s.logger.Debug("Token validation failed: expired")
			return "", models.ErrTokenExpired
		}
		if errors.Is(err, jwt.ErrTokenMalformed) {
			s.logger.Warn("Token validation failed: malformed")
			return "", models.ErrTokenMalformed
		}
		s.logger.Warn("Failed to parse token", zap.Error(err))
		return "", models.ErrTokenInvalid
	}

	claims, ok := token.Claims.(*domain.Claims)
	if !ok || !token.Valid || claims.Subject == "" {
		s.logger.Warn("Token validation failed (invalid claims or signature)")
		return "", models.ErrTokenInvalid
	}

	return claims.Subject, nil
}
