package repository

import (
	"context"
	"time"

	"github.com/servease/payout-service/internal/domain/dto"
	"github.com/servease/payout-service/internal/domain/model"
)

// PayoutRepository defines the interface for payout data operations.
// Status-changing methods that return a bool use a conditional UPDATE:
// false means the payout was not in the required source status, so the
// caller lost the race (or the transition is simply not allowed) and
// must re-read.
type PayoutRepository interface {
	// CreateWithClaims inserts the payout and one active booking claim
	// per booking id in a single transaction. Returns
	// DuplicateBookingPayoutError if any booking is already claimed by
	// a non-failed payout.
	CreateWithClaims(ctx context.Context, payout *model.Payout) error

	// GetByID retrieves a payout with its booking claims
	GetByID(ctx context.Context, id string) (*model.Payout, error)

	// GetByIDs retrieves the given payouts (claims not loaded)
	GetByIDs(ctx context.Context, ids []string) ([]model.Payout, error)

	// List retrieves payouts matching the filters
	List(ctx context.Context, filters dto.PayoutFilters) ([]model.Payout, error)

	// Count counts payouts matching the filters
	Count(ctx context.Context, filters dto.PayoutFilters) (int64, error)

	// ClaimProcessing moves a pending payout to processing
	ClaimProcessing(ctx context.Context, id string) (bool, error)

	// MarkCompleted finishes a processing payout, stamping the payment
	// reference and processed date
	MarkCompleted(ctx context.Context, id, paymentReference string) error

	// MarkFailed fails a processing payout, records the reason and
	// releases its booking claims
	MarkFailed(ctx context.Context, id, reason string) error

	// ReclaimForRetry moves a failed payout back to processing,
	// increments its retry count and reactivates its booking claims.
	// Returns DuplicateBookingPayoutError if a booking was claimed by
	// another payout in the meantime.
	ReclaimForRetry(ctx context.Context, id string) (bool, error)

	// Approve marks a pending or failed payout approved and resets it
	// to pending
	Approve(ctx context.Context, id, approvedBy string) (bool, error)

	// Schedule sets the scheduled date and marks the payout manual
	Schedule(ctx context.Context, id string, date time.Time) error
}
