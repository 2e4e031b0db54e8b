package auth

import (
	"github.com/SebastienDelgado/detachements-backend/internal/middleware"

	"github.com/gin-gonic/gin"
)

func RegisterRoutes(r *gin.RouterGroup, handler *Handler) {
	auth := r.Group("/auth")
	{
		auth.POST("/login", middleware.RateLimitByIP(0.1, 5), handler.Login)
		auth.GET("/me", middleware.AuthMiddleware(), handler.Me)
		auth.POST("/logout", handler.Logout)
	}
}
