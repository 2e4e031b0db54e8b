package request

import (
	"context"
	"database/sql"
	"time"

	"gorm.io/gorm"
)

//go:generate mockgen -source=request_repo.go -destination=mock/request_repo_mock.go -package=mock
type Repository interface {
	WithTx(tx *sql.Tx) Repository
	Create(ctx context.Context, r *DetachmentRequest) error
	FindAll(ctx context.Context, f ListFilter) ([]DetachmentRequest, error)
	FindByID(ctx context.Context, id string) (*DetachmentRequest, error)
	MarkValidated(ctx context.Context, id, decidedBy string, at time.Time) (bool, error)
	MarkDecided(ctx context.Context, id, status, reason, decidedBy string, at time.Time) (bool, error)
	CountPending(ctx context.Context) (int64, error)
}

// Reads go through gorm. Writes go through the raw connection so they
// share the caller's transaction with the notification outbox.
type repository struct {
	db    *gorm.DB
	sqlDB *sql.DB
	tx    *sql.Tx
}

func NewRepository(db *gorm.DB, sqlDB *sql.DB) Repository {
	return &repository{db: db, sqlDB: sqlDB}
}

func (r *repository) WithTx(tx *sql.Tx) Repository {
	return &repository{db: r.db, sqlDB: r.sqlDB, tx: tx}
}

func (r *repository) Create(ctx context.Context, req *DetachmentRequest) error {
	query := `
        INSERT INTO detachment_requests (
            id, applicant_name, applicant_email, entity, place,
            date_from, date_to, start_period, end_period, days,
            type, manager_email, hr_email, comment, status,
            created_at, updated_at
        ) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $16)
    `

	_, err := r.execer().ExecContext(
		ctx, query,
		req.ID, req.ApplicantName, req.ApplicantEmail, req.Entity, req.Place,
		req.DateFrom, req.DateTo, req.StartPeriod, req.EndPeriod, req.Days,
		req.Type, req.ManagerEmail, req.HREmail, req.Comment, req.Status,
		req.CreatedAt,
	)
	return err
}

func (r *repository) FindAll(ctx context.Context, f ListFilter) ([]DetachmentRequest, error) {
	var requests []DetachmentRequest
	db := r.db.WithContext(ctx).Model(&DetachmentRequest{})
	if f.Status != "" {
		db = db.Where("status = ?", f.Status)
	}
	if f.Entity != "" {
		db = db.Where("entity = ?", f.Entity)
	}
	if f.Type != "" {
		db = db.Where("type = ?", f.Type)
	}
	err := db.Order("created_at DESC").Find(&requests).Error
	return requests, err
}

func (r *repository) FindByID(ctx context.Context, id string) (*DetachmentRequest, error) {
	var req DetachmentRequest
	err := r.db.WithContext(ctx).First(&req, "id = ?", id).Error
	return &req, err
}

// MarkValidated flips a pending request to sent. The status guard in
// the WHERE clause serializes concurrent validations: only one caller
// sees rows-affected 1 and queues the notification.
func (r *repository) MarkValidated(ctx context.Context, id, decidedBy string, at time.Time) (bool, error) {
	query := `
UPDATE detachment_requests
SET
	status = $2,
	validated_at = $3,
	decided_by = $4,
	updated_at = NOW()
WHERE id = $1 AND status = $5
`
	res, err := r.execer().ExecContext(ctx, query, id, StatusSent, at, decidedBy, StatusPending)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n == 1, nil
}

func (r *repository) MarkDecided(ctx context.Context, id, status, reason, decidedBy string, at time.Time) (bool, error) {
	query := `
UPDATE detachment_requests
SET
	status = $2,
	decision_at = $3,
	decision_reason = $4,
	decided_by = $5,
	updated_at = NOW()
WHERE id = $1 AND status = $6
`
	res, err := r.execer().ExecContext(ctx, query, id, status, at, reason, decidedBy, StatusPending)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n == 1, nil
}

func (r *repository) CountPending(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&DetachmentRequest{}).
		Where("status = ?", StatusPending).
		Count(&count).Error
	return count, err
}

func (r *repository) execer() interface {
	ExecContext(context.Context, string, ...any) (sql.Result, error)
} {
	if r.tx != nil {
		return r.tx
	}
	return r.sqlDB
}
