package model

import (
	"database/sql/driver"
	"time"

	"github.com/shopspring/decimal"
)

// PayoutStatus represents the lifecycle state of a payout
type PayoutStatus string

const (
	PayoutStatusPending    PayoutStatus = "pending"
	PayoutStatusProcessing PayoutStatus = "processing"
	PayoutStatusCompleted  PayoutStatus = "completed"
	PayoutStatusFailed     PayoutStatus = "failed"
)

// Scan implements sql.Scanner interface
func (s *PayoutStatus) Scan(src interface{}) error {
	switch v := src.(type) {
	case string:
		*s = PayoutStatus(v)
	case []byte:
		*s = PayoutStatus(v)
	default:
		*s = PayoutStatusPending
	}
	return nil
}

// Value implements driver.Valuer interface
func (s PayoutStatus) Value() (driver.Value, error) {
	return string(s), nil
}

// PayoutType distinguishes how a payout was initiated
type PayoutType string

const (
	PayoutTypeWeeklyAuto PayoutType = "weekly_auto"
	PayoutTypeManual     PayoutType = "manual"
	PayoutTypeInstant    PayoutType = "instant"
)

// UrgencyLevel classifies how quickly a payout should be released
type UrgencyLevel string

const (
	UrgencyNormal    UrgencyLevel = "normal"
	UrgencyUrgent    UrgencyLevel = "urgent"
	UrgencyEmergency UrgencyLevel = "emergency"
)

// Payout represents a disbursement owed to one provider for a set of
// completed bookings
type Payout struct {
	ID                 string          `gorm:"primaryKey;type:uuid" json:"id"`
	BatchID            *string         `gorm:"type:uuid;index" json:"batch_id,omitempty"`
	ProviderID         string          `gorm:"not null;size:100;index" json:"provider_id"`
	ProviderName       string          `gorm:"not null;size:200" json:"provider_name"`
	GrossAmount        decimal.Decimal `gorm:"type:decimal(15,2);not null" json:"gross_amount"`
	PlatformCommission decimal.Decimal `gorm:"type:decimal(15,2);not null" json:"platform_commission"`
	IncomeTax          decimal.Decimal `gorm:"type:decimal(15,2);not null" json:"income_tax"`
	WithholdingTax     decimal.Decimal `gorm:"type:decimal(15,2);not null" json:"withholding_tax"`
	NetPayout          decimal.Decimal `gorm:"type:decimal(15,2);not null" json:"net_payout"`
	Status             PayoutStatus    `gorm:"type:payout_status;not null;default:'pending';index" json:"status"`
	PaymentMethod      string          `gorm:"size:50;default:'bank_transfer'" json:"payment_method"`
	Type               PayoutType      `gorm:"size:20;not null;default:'weekly_auto'" json:"type"`
	UrgencyLevel       UrgencyLevel    `gorm:"size:20;not null;default:'normal'" json:"urgency_level"`
	Approved           bool            `gorm:"not null;default:false" json:"approved"`
	ApprovedBy         *string         `gorm:"size:100" json:"approved_by,omitempty"`
	FailureReason      *string         `json:"failure_reason,omitempty"`
	RetryCount         int             `gorm:"not null;default:0" json:"retry_count"`
	PaymentReference   *string         `gorm:"size:100" json:"payment_reference,omitempty"`
	ScheduledDate      *time.Time      `json:"scheduled_date,omitempty"`
	PayoutDate         *time.Time      `json:"payout_date,omitempty"`
	ProcessedDate      *time.Time      `json:"processed_date,omitempty"`
	CreatedAt          time.Time       `gorm:"default:now()" json:"created_at"`
	UpdatedAt          time.Time       `gorm:"default:now()" json:"updated_at"`

	// Relations
	Claims []BookingClaim `gorm:"foreignKey:PayoutID" json:"claims,omitempty"`
}

// TableName specifies the table name for GORM
func (Payout) TableName() string {
	return "payouts"
}

// BookingIDs returns the booking ids claimed by this payout.
func (p *Payout) BookingIDs() []string {
	ids := make([]string, len(p.Claims))
	for i, c := range p.Claims {
		ids[i] = c.BookingID
	}
	return ids
}

// Terminal reports whether the payout reached a final state.
func (s PayoutStatus) Terminal() bool {
	return s == PayoutStatusCompleted || s == PayoutStatusFailed
}
