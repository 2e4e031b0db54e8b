package request

import (
	"time"

	"github.com/google/uuid"
)

// DetachmentRequest is never deleted: refused and cancelled requests
// are retained for audit and export.
type DetachmentRequest struct {
	ID uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`

	ApplicantName  string `gorm:"type:varchar(120);not null"`
	ApplicantEmail string `gorm:"type:varchar(254);not null"`
	Entity         string `gorm:"type:varchar(120);not null;index:idx_detachment_requests_entity"`
	Place          string `gorm:"type:varchar(200);not null"`

	DateFrom    time.Time `gorm:"type:date;not null"`
	DateTo      time.Time `gorm:"type:date;not null"`
	StartPeriod string    `gorm:"type:varchar(4);not null;default:'FULL'"`
	EndPeriod   string    `gorm:"type:varchar(4);not null;default:'FULL'"`
	Days        float64   `gorm:"type:numeric(3,1);not null"`

	Type         string `gorm:"type:varchar(20);not null;index:idx_detachment_requests_type"`
	ManagerEmail string `gorm:"type:varchar(254);not null"`
	HREmail      string `gorm:"column:hr_email;type:varchar(254);not null"`
	Comment      string `gorm:"type:text"`

	Status         string     `gorm:"type:varchar(12);not null;default:'pending';index:idx_detachment_requests_status"`
	DecidedBy      *string    `gorm:"type:varchar(254)"`
	DecisionReason *string    `gorm:"type:text"`
	DecisionAt     *time.Time
	ValidatedAt    *time.Time

	CreatedAt time.Time
	UpdatedAt time.Time
}
