package handler

import (
	"net/http"

	"auth-server/internal/models"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// @Summary Current user profile
// @Description Returns the profile of the user the access token asserts
// @Tags user
// @Accept json
// @Produce json
// @Success 200 {object} profileResponse "Profile data"
// @Failure 401 {object} models.ErrorResponse "Unauthorized"
// @Security BearerAuth
// @Router /profile [get]
func (h *AuthHandler) profile(c *gin.Context) {
	userRaw, exists := c.Get(contextUserKey)
	if !exists {
		zap.L().Error("User missing in context during profile request")
		handleServiceError(c, models.ErrInternalServer)
		return
	}
	user, ok := userRaw.(*models.User)
	if !ok {
		zap.L().Error("Invalid user type in context during profile request")
		handleServiceError(c, models.ErrInternalServer)
		return
	}

	zap.L().Debug("Profile resolved", zap.String("username", user.Username))

	c.JSON(http.StatusOK, profileResponse{
		Username: user.Username,
		Message:  "Authenticated successfully",
	})
}
