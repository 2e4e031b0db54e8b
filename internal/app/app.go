package app

import (
	"log"
	"os"
	"strings"

	"github.com/SebastienDelgado/detachements-backend/internal/auth"
	"github.com/SebastienDelgado/detachements-backend/internal/middleware"
	"github.com/SebastienDelgado/detachements-backend/internal/notification"
	"github.com/SebastienDelgado/detachements-backend/internal/request"
	"github.com/SebastienDelgado/detachements-backend/internal/shared/connection"

	"github.com/gin-gonic/gin"
	kafkago "github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

func BuildApp(router *gin.Engine) error {
	// 1. Setup Infrastructure
	gormDB, err := connection.ConnectGORMWithRetry(
		os.Getenv("DB_HOST"),
		os.Getenv("DB_USER"),
		os.Getenv("DB_PASSWORD"),
		os.Getenv("DB_NAME"),
		os.Getenv("DB_PORT"),
		os.Getenv("DB_SSLMODE"),
		5,
	)
	if err != nil {
		return err
	}
	log.Println("✅ Database connection established")

	if err := gormDB.AutoMigrate(
		&request.DetachmentRequest{},
		&auth.AdminUser{},
		&notification.OutboxEmail{},
	); err != nil {
		return err
	}

	sqlDB, err := gormDB.DB()
	if err != nil {
		return err
	}

	redisClient, err := connection.ConnectRedisWithRetry(os.Getenv("REDIS_ADDR"), 5)
	if err != nil {
		return err
	}
	log.Println("✅ Redis connection established")

	// Lifecycle events are optional: without a broker the API still runs.
	var kafkaWriter *kafkago.Writer
	if broker := os.Getenv("KAFKA_BROKER"); broker != "" {
		kafkaWriter, err = connection.ConnectKafkaWithRetry(broker, 5)
		if err != nil {
			zap.L().Warn("kafka unavailable, lifecycle events disabled", zap.Error(err))
			kafkaWriter = nil
		}
	}

	origins := splitList(os.Getenv("CORS_ALLOWED_ORIGINS"))
	if len(origins) == 0 {
		origins = []string{"*"}
	}

	router.Use(
		middleware.RequestID(),
		middleware.ContextLogger(zap.L()),
		middleware.CORSMiddleware(origins),
	)

	// Register Modules & Routes
	return registerModules(router, sqlDB, gormDB, redisClient, kafkaWriter)
}

func splitList(raw string) []string {
	if strings.TrimSpace(raw) == "" {
		return nil
	}

	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if v := strings.TrimSpace(p); v != "" {
			out = append(out, v)
		}
	}
	return out
}
