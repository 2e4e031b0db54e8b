package request

import (
	"github.com/SebastienDelgado/detachements-backend/internal/middleware"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
)

func RegisterRoutes(
	r *gin.RouterGroup,
	handler *Handler,
	rdb ...*redis.Client,
) {
	var redisClient *redis.Client
	if len(rdb) > 0 {
		redisClient = rdb[0]
	}

	requests := r.Group("/requests")
	{
		// Submission is public: applicants have no account.
		if redisClient != nil {
			requests.POST(
				"",
				middleware.RateLimitByIP(1, 5),
				middleware.Idempotency(redisClient),
				handler.Submit,
			)
		} else {
			requests.POST("", middleware.RateLimitByIP(1, 5), handler.Submit)
		}

		admin := requests.Group("")
		admin.Use(middleware.AuthMiddleware(), middleware.RoleMiddleware("admin"))
		{
			admin.GET("", handler.GetAll)
			admin.GET("/pending-count", handler.PendingCount)
			admin.GET("/export", middleware.RateLimitByAdmin(0.5, 3), handler.Export)
			admin.GET("/:id", handler.GetById)
			admin.POST("/:id/validate", handler.Validate)
			admin.POST("/:id/refuse", handler.Refuse)
			admin.POST("/:id/cancel", handler.Cancel)
		}
	}
}
