package app

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/SebastienDelgado/detachements-backend/internal/notification"
	"github.com/SebastienDelgado/detachements-backend/internal/shared/connection"

	"go.uber.org/zap"
)

// RunMailer drains the notification outbox and pushes mail over SMTP.
// It runs as its own process so a slow mail relay never blocks the API.
func RunMailer() error {
	logger := zap.L().Named("app.mailer")

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

	// The mailer may boot before the API has migrated anything.
	if err := gormDB.AutoMigrate(&notification.OutboxEmail{}); err != nil {
		return err
	}

	sqlDB, err := gormDB.DB()
	if err != nil {
		return err
	}
	defer sqlDB.Close()

	outboxRepo := notification.NewOutboxRepository(sqlDB)

	sender := notification.NewSMTPSender(notification.SMTPConfig{
		Host:       os.Getenv("SMTP_HOST"),
		Port:       os.Getenv("SMTP_PORT"),
		User:       os.Getenv("SMTP_USER"),
		Password:   os.Getenv("SMTP_PASSWORD"),
		From:       os.Getenv("SMTP_FROM"),
		TLSEnabled: os.Getenv("SMTP_TLS") == "true",
	})

	pollInterval := 5 * time.Second
	if raw := os.Getenv("MAIL_POLL_INTERVAL"); raw != "" {
		if d, parseErr := time.ParseDuration(raw); parseErr == nil {
			pollInterval = d
		}
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go notification.ProcessOutbox(
		ctx,
		outboxRepo,
		sender,
		logger,
		pollInterval,
	)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("mailer shutting down")
	cancel()

	return nil
}
