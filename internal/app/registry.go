package app

import (
	"context"
	"database/sql"
	"net/http"
	"os"

	"github.com/SebastienDelgado/detachements-backend/internal/auth"
	"github.com/SebastienDelgado/detachements-backend/internal/notification"
	"github.com/SebastienDelgado/detachements-backend/internal/request"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	kafkago "github.com/segmentio/kafka-go"
	"gorm.io/gorm"
)

func registerModules(
	router *gin.Engine,
	db *sql.DB,
	gormDB *gorm.DB,
	rdb *redis.Client,
	kafkaWriter *kafkago.Writer,
) error {
	// --- Repositories ---
	authRepo := auth.NewRepository(gormDB)
	requestRepo := request.NewRepository(gormDB, db)
	outboxRepo := notification.NewOutboxRepository(db)

	// --- Notification formatting ---
	formatter := notification.NewFormatter(splitList(os.Getenv("NOTIFY_STAKEHOLDERS")))

	var publisher request.EventPublisher
	if kafkaWriter != nil {
		publisher = request.NewKafkaEventPublisher(kafkaWriter)
	}

	// --- Services ---
	authService := auth.NewService(authRepo)
	requestService := request.NewService(
		db,
		requestRepo,
		outboxRepo,
		formatter,
		publisher,
		splitList(os.Getenv("DETACHEMENT_TYPES")),
		rdb,
	)

	if err := authService.EnsureSeedAdmin(context.Background()); err != nil {
		return err
	}

	// --- Handlers ---
	authHandler := auth.NewHandler(authService)
	requestHandler := request.NewHandlerWithRedis(requestService, rdb)

	// --- Routes Registration ---
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"ok": true})
	})

	api := router.Group("/api/v1")
	{
		auth.RegisterRoutes(api, authHandler)
		request.RegisterRoutes(api, requestHandler, rdb)
	}

	return nil
}
