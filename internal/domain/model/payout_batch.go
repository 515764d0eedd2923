package model

import (
	"database/sql/driver"
	"time"

	"github.com/shopspring/decimal"
)

// BatchStatus represents the lifecycle state of a payout batch
type BatchStatus string

const (
	BatchStatusDraft           BatchStatus = "draft"
	BatchStatusPendingApproval BatchStatus = "pending_approval"
	BatchStatusApproved        BatchStatus = "approved"
	BatchStatusProcessing      BatchStatus = "processing"
	BatchStatusCompleted       BatchStatus = "completed"
	BatchStatusFailed          BatchStatus = "failed"
)

// Scan implements sql.Scanner interface
func (s *BatchStatus) Scan(src interface{}) error {
	switch v := src.(type) {
	case string:
		*s = BatchStatus(v)
	case []byte:
		*s = BatchStatus(v)
	default:
		*s = BatchStatusDraft
	}
	return nil
}

// Value implements driver.Valuer interface
func (s BatchStatus) Value() (driver.Value, error) {
	return string(s), nil
}

// PayoutBatch groups payouts for coordinated release through one
// administrative action
type PayoutBatch struct {
	ID            string          `gorm:"primaryKey;type:uuid" json:"id"`
	BatchName     string          `gorm:"not null;size:200" json:"batch_name"`
	Status        BatchStatus     `gorm:"type:batch_status;not null;default:'draft';index" json:"status"`
	TotalAmount   decimal.Decimal `gorm:"type:decimal(15,2);not null" json:"total_amount"`
	PayoutCount   int             `gorm:"not null" json:"payout_count"`
	Progress      int             `gorm:"not null;default:0" json:"progress"`
	FailureReason *string         `json:"failure_reason,omitempty"`
	CreatedBy     string          `gorm:"size:100" json:"created_by"`
	CreatedAt     time.Time       `gorm:"default:now()" json:"created_at"`
	UpdatedAt     time.Time       `gorm:"default:now()" json:"updated_at"`
	ProcessedAt   *time.Time      `json:"processed_at,omitempty"`

	// Relations
	Payouts []Payout `gorm:"foreignKey:BatchID" json:"payouts,omitempty"`
}

// TableName specifies the table name for GORM
func (PayoutBatch) TableName() string {
	return "payout_batches"
}
