package provider

import (
	"context"

	"github.com/shopspring/decimal"
)

// DisbursementProvider defines the interface for the external payment
// rail that actually moves money to a provider (Stripe, manual bank
// transfer, etc.)
type DisbursementProvider interface {
	// Disburse transfers the net payout amount. The caller bounds ctx
	// with the configured disbursement timeout; an error (including
	// ctx expiry) is an expected business failure, not a programming
	// error.
	Disburse(ctx context.Context, req *DisbursementRequest) (*DisbursementResult, error)

	// GetProviderName returns the channel name
	GetProviderName() string
}

// DisbursementRequest identifies one transfer on the payment rail
type DisbursementRequest struct {
	PayoutID      string          `json:"payout_id"`
	ProviderID    string          `json:"provider_id"`
	Amount        decimal.Decimal `json:"amount"`
	Currency      string          `json:"currency"`
	PaymentMethod string          `json:"payment_method"`
}

// DisbursementResult carries the rail's reference for a successful
// transfer
type DisbursementResult struct {
	PaymentReference string `json:"payment_reference"`
}

// Notifier sends a fire-and-forget message to a user after an
// administrative decision (payout approved, deposit confirmed, ...).
// Delivery failures are logged, never surfaced to the admin operation.
type Notifier interface {
	Notify(ctx context.Context, userID, templateKind string, context map[string]interface{}) error
}
