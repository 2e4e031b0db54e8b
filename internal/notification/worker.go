package notification

import (
	"context"
	"encoding/json"
	"time"

	"go.uber.org/zap"
)

// ProcessOutbox drains the notification outbox until ctx is cancelled.
// A failed send backs the row off and retries on a later pass; the
// transition that queued it is never rolled back.
func ProcessOutbox(
	ctx context.Context,
	repo OutboxRepository,
	sender Sender,
	logger *zap.Logger,
	pollInterval time.Duration,
) {
	if pollInterval <= 0 {
		pollInterval = 5 * time.Second
	}

	log := logger.Named("notification.worker")
	ticker := time.NewTicker(pollInterval)
	defer ticker.Stop()

	log.Info("notification worker started", zap.Duration("poll_interval", pollInterval))

	for {
		select {
		case <-ctx.Done():
			log.Info("notification worker stopped")
			return
		case <-ticker.C:
			if err := processPendingEmails(ctx, repo, sender, log); err != nil {
				log.Error("process outbox emails failed", zap.Error(err))
			}
		}
	}
}

func processPendingEmails(
	ctx context.Context,
	repo OutboxRepository,
	sender Sender,
	logger *zap.Logger,
) error {
	emails, err := repo.ListPending(ctx, 50)
	if err != nil {
		return err
	}

	if len(emails) == 0 {
		return nil
	}

	logger.Info("processing pending notifications", zap.Int("count", len(emails)))

	for _, email := range emails {
		var d Directive
		if err := json.Unmarshal(email.Payload, &d); err != nil {
			logger.Error("decode notification payload failed",
				zap.String("outbox_id", email.ID),
				zap.Error(err),
			)
			_ = repo.MarkFailed(ctx, email.ID, err.Error())
			continue
		}

		if err := sender.Send(d); err != nil {
			logger.Error("send notification failed",
				zap.String("outbox_id", email.ID),
				zap.String("detachment_id", email.RequestID),
				zap.String("kind", email.Kind),
				zap.Error(err),
			)
			_ = repo.MarkFailed(ctx, email.ID, err.Error())
			continue
		}

		if err := repo.MarkSent(ctx, email.ID); err != nil {
			logger.Error("mark notification sent failed",
				zap.String("outbox_id", email.ID),
				zap.Error(err),
			)
			continue
		}

		logger.Info("notification sent",
			zap.String("outbox_id", email.ID),
			zap.String("detachment_id", email.RequestID),
			zap.String("kind", email.Kind),
		)
	}

	return nil
}
