package notification

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

const (
	OutboxStatusPending = "pending"
	OutboxStatusSent    = "sent"
	OutboxStatusFailed  = "failed"
)

// OutboxEmail is one queued notification. It is written in the same
// transaction as the request mutation that produced it and drained by
// the mailer worker. The struct also drives the table migration.
type OutboxEmail struct {
	ID           string    `gorm:"type:uuid;primaryKey"`
	TraceID      string    `gorm:"type:varchar(64)"`
	RequestID    string    `gorm:"type:uuid;not null;index:idx_notification_outbox_request"`
	Kind         string    `gorm:"type:varchar(40);not null"`
	Payload      []byte    `gorm:"type:jsonb;not null"`
	Status       string    `gorm:"type:varchar(10);not null;default:'pending';index:idx_notification_outbox_status"`
	RetryCount   int       `gorm:"not null;default:0"`
	NextRetryAt  time.Time `gorm:"default:null"`
	ErrorMessage string    `gorm:"type:varchar(500);default:null"`
	ProcessedAt  *time.Time
	CreatedAt    time.Time `gorm:"default:now()"`
	UpdatedAt    time.Time `gorm:"default:now()"`
}

func (OutboxEmail) TableName() string { return "notification_outbox" }

//go:generate mockgen -source=outbox_repo.go -destination=mock/outbox_repo_mock.go -package=mock

type OutboxRepository interface {
	WithTx(tx *sql.Tx) OutboxRepository
	Create(ctx context.Context, email OutboxEmail) error
	ListPending(ctx context.Context, limit int) ([]OutboxEmail, error)
	MarkSent(ctx context.Context, id string) error
	MarkFailed(ctx context.Context, id string, reason string) error
}

type outboxRepository struct {
	db *sql.DB
	tx *sql.Tx
}

func NewOutboxRepository(db *sql.DB) OutboxRepository {
	return &outboxRepository{db: db}
}

func (r *outboxRepository) WithTx(tx *sql.Tx) OutboxRepository {
	return &outboxRepository{db: r.db, tx: tx}
}

func (r *outboxRepository) Create(ctx context.Context, email OutboxEmail) error {
	if err := ValidateOutboxEmail(email); err != nil {
		return err
	}

	query := `
        INSERT INTO notification_outbox (
            id, trace_id, request_id, kind, payload, status
        ) VALUES ($1, $2, $3, $4, $5, $6)
    `

	exec := r.execer()
	_, err := exec.ExecContext(
		ctx, query,
		email.ID, email.TraceID, email.RequestID,
		email.Kind, email.Payload, email.Status,
	)
	return err
}

func (r *outboxRepository) ListPending(ctx context.Context, limit int) ([]OutboxEmail, error) {
	query := `
SELECT
	id::text,
	request_id::text,
	kind,
	payload,
	status,
	retry_count,
	COALESCE(next_retry_at, created_at)
FROM notification_outbox
WHERE status IN ($1, $2)
	AND (next_retry_at IS NULL OR next_retry_at <= NOW())
ORDER BY created_at ASC
LIMIT $3
`

	rows, err := r.db.QueryContext(ctx, query, OutboxStatusPending, OutboxStatusFailed, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	emails := make([]OutboxEmail, 0, limit)
	for rows.Next() {
		var e OutboxEmail
		if err := rows.Scan(
			&e.ID,
			&e.RequestID,
			&e.Kind,
			&e.Payload,
			&e.Status,
			&e.RetryCount,
			&e.NextRetryAt,
		); err != nil {
			return nil, err
		}
		emails = append(emails, e)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return emails, nil
}

func (r *outboxRepository) MarkSent(ctx context.Context, id string) error {
	query := `
UPDATE notification_outbox
SET
	status = $2,
	processed_at = NOW(),
	error_message = NULL,
	updated_at = NOW()
WHERE id = $1
`
	_, err := r.db.ExecContext(ctx, query, id, OutboxStatusSent)
	return err
}

func (r *outboxRepository) MarkFailed(ctx context.Context, id string, reason string) error {
	query := `
UPDATE notification_outbox
SET
	status = $2,
	retry_count = retry_count + 1,
	error_message = LEFT($3, 500),
	next_retry_at = NOW() + (LEAST(retry_count + 1, 10) * INTERVAL '15 seconds'),
	updated_at = NOW()
WHERE id = $1
`
	_, err := r.db.ExecContext(ctx, query, id, OutboxStatusFailed, reason)
	return err
}

func (r *outboxRepository) execer() interface {
	ExecContext(context.Context, string, ...any) (sql.Result, error)
} {
	if r.tx != nil {
		return r.tx
	}
	return r.db
}

func ValidateOutboxEmail(email OutboxEmail) error {
	if email.ID == "" {
		return errors.New("outbox id is required")
	}
	if email.Kind == "" {
		return errors.New("outbox kind is required")
	}
	if len(email.Payload) == 0 {
		return errors.New("outbox payload is required")
	}
	switch email.Status {
	case OutboxStatusPending, OutboxStatusSent, OutboxStatusFailed:
		return nil
	default:
		return fmt.Errorf("invalid outbox status: %s", email.Status)
	}
}
