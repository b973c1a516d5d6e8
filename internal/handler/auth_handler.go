package handler

import (
	"net/http"

	"auth-server/internal/config"
	"auth-server/internal/service"

	"github.com/gin-gonic/gin"
)

// AuthHandler handles HTTP requests related to authentication.
type AuthHandler struct {
	authService service.AuthService
	cfg         *config.Config
}

func NewAuthHandler(authService service.AuthService, cfg *config.Config) *AuthHandler {
	return &AuthHandler{
		authService: authService,
		cfg:         cfg,
	}
}

func (h *AuthHandler) RegisterRoutes(router *gin.Engine) {
	router.GET("/", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "Server is running!"})
	})

	router.POST("/register", h.register)
	router.POST("/login", h.login)
	router.POST("/refresh", h.refresh)

	protected := router.Group("/")
	protected.Use(h.AuthMiddleware())
	{
		protected.GET("/profile", h.profile)
	}
}
