package model

import "time"

// BookingClaim marks a booking as paid (or being paid) by a payout.
// A partial unique index on (booking_id) WHERE active guarantees that
// no two non-failed payouts ever claim the same booking; claims are
// deactivated when their payout fails and reactivated on retry.
type BookingClaim struct {
	ID        int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	PayoutID  string    `gorm:"type:uuid;not null;index" json:"payout_id"`
	BookingID string    `gorm:"not null;size:100" json:"booking_id"`
	Active    bool      `gorm:"not null;default:true" json:"active"`
	CreatedAt time.Time `gorm:"default:now()" json:"created_at"`
}

// TableName specifies the table name for GORM
func (BookingClaim) TableName() string {
	return "booking_claims"
}
