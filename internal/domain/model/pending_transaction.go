package model

import (
	"database/sql/driver"
	"encoding/json"
	"time"

	"github.com/shopspring/decimal"
)

// TransactionStatus represents the review state of a customer-reported
// bank deposit
type TransactionStatus string

const (
	TransactionStatusPending  TransactionStatus = "pending"
	TransactionStatusApproved TransactionStatus = "approved"
	TransactionStatusDeclined TransactionStatus = "declined"
)

// Scan implements sql.Scanner interface
func (s *TransactionStatus) Scan(src interface{}) error {
	switch v := src.(type) {
	case string:
		*s = TransactionStatus(v)
	case []byte:
		*s = TransactionStatus(v)
	default:
		*s = TransactionStatusPending
	}
	return nil
}

// Value implements driver.Valuer interface
func (s TransactionStatus) Value() (driver.Value, error) {
	return string(s), nil
}

// TransactionType distinguishes what the deposit pays for
type TransactionType string

const (
	TransactionTypeBooking      TransactionType = "booking"
	TransactionTypeSubscription TransactionType = "subscription"
)

// BookingDetails is the structured payload attached to a booking
// deposit. All fields are optional; malformed payloads are rejected at
// the boundary instead of failing on later access.
type BookingDetails struct {
	ServiceName  string     `json:"service_name,omitempty"`
	ScheduledFor *time.Time `json:"scheduled_for,omitempty"`
	Address      string     `json:"address,omitempty"`
	City         string     `json:"city,omitempty"`
	ContactPhone string     `json:"contact_phone,omitempty"`
	Notes        string     `json:"notes,omitempty"`
	IsEmergency  bool       `json:"is_emergency,omitempty"`
}

// Value implements driver.Valuer interface
func (d BookingDetails) Value() (driver.Value, error) {
	return json.Marshal(d)
}

// Scan implements sql.Scanner interface
func (d *BookingDetails) Scan(src interface{}) error {
	if src == nil {
		*d = BookingDetails{}
		return nil
	}
	switch v := src.(type) {
	case []byte:
		return json.Unmarshal(v, d)
	case string:
		return json.Unmarshal([]byte(v), d)
	default:
		*d = BookingDetails{}
		return nil
	}
}

// PendingTransaction records a customer's self-reported off-platform
// bank deposit awaiting admin verification
type PendingTransaction struct {
	ID              string            `gorm:"primaryKey;type:uuid" json:"id"`
	UserID          string            `gorm:"not null;size:100;index" json:"user_id"`
	TransactionType TransactionType   `gorm:"size:20;not null" json:"transaction_type"`
	ServiceID       *string           `gorm:"size:100" json:"service_id,omitempty"`
	PackageID       *string           `gorm:"size:100" json:"package_id,omitempty"`
	Amount          decimal.Decimal   `gorm:"type:decimal(15,2);not null" json:"amount"`
	ReferenceNumber string            `gorm:"not null;unique;size:40" json:"reference_number"`
	BookingDetails  BookingDetails    `gorm:"type:jsonb" json:"booking_details"`
	Status          TransactionStatus `gorm:"type:transaction_status;not null;default:'pending';index" json:"status"`
	AdminNotes      *string           `json:"admin_notes,omitempty"`
	DecidedBy       *string           `gorm:"size:100" json:"decided_by,omitempty"`
	DecidedAt       *time.Time        `json:"decided_at,omitempty"`
	CreatedAt       time.Time         `gorm:"default:now()" json:"created_at"`
	UpdatedAt       time.Time         `gorm:"default:now()" json:"updated_at"`
}

// TableName specifies the table name for GORM
func (PendingTransaction) TableName() string {
	return "pending_transactions"
}
