package handler

import (
	"strings"

	"auth-server/internal/models"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// contextUserKey is the gin context key holding the resolved *models.User.
const contextUserKey = "current_user"

// AuthMiddleware validates the bearer access token and resolves the current
// user. Any failure (missing header, bad format, invalid/expired token,
// vanished subject) results in a 401.
func (h *AuthHandler) AuthMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			zap.L().Warn("Authorization header missing")
			tokenVerificationsTotal.WithLabelValues("access", "failure").Inc()
			handleServiceError(c, models.ErrUnauthorized)
			return
		}

		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" {
			zap.L().Warn("Invalid Authorization header format")
			tokenVerificationsTotal.WithLabelValues("access", "failure").Inc()
			handleServiceError(c, models.ErrUnauthorized)
			return
		}

		user, err := h.authService.ResolveCurrentUser(c.Request.Context(), parts[1])
		if err != nil {
			zap.L().Warn("Access token verification failed", zap.Error(err))
			tokenVerificationsTotal.WithLabelValues("access", "failure").Inc()
			handleServiceError(c, err)
			return
		}

		tokenVerificationsTotal.WithLabelValues("access", "success").Inc()
		c.Set(contextUserKey, user)
		c.Next()
	}
}
