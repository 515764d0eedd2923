package errors

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// InvalidConfigurationError is returned when the rate or fee inputs to
// the payout calculation are missing or out of range
type InvalidConfigurationError struct {
	Field  string
	Reason string
}

func (e *InvalidConfigurationError) Error() string {
	return fmt.Sprintf("invalid payout configuration: %s %s", e.Field, e.Reason)
}

// NewInvalidConfigurationError creates a new InvalidConfigurationError
func NewInvalidConfigurationError(field, reason string) *InvalidConfigurationError {
	return &InvalidConfigurationError{Field: field, Reason: reason}
}

// DuplicateBookingPayoutError is returned when a booking is already
// claimed by a non-failed payout
type DuplicateBookingPayoutError struct {
	BookingID string
}

func (e *DuplicateBookingPayoutError) Error() string {
	return fmt.Sprintf("booking %s is already claimed by an active payout", e.BookingID)
}

// NewDuplicateBookingPayoutError creates a new DuplicateBookingPayoutError
func NewDuplicateBookingPayoutError(bookingID string) *DuplicateBookingPayoutError {
	return &DuplicateBookingPayoutError{BookingID: bookingID}
}

// MaxRetriesExceededError is returned when a failed payout has used up
// its retry budget and needs manual intervention
type MaxRetriesExceededError struct {
	PayoutID   string
	RetryCount int
	Limit      int
}

func (e *MaxRetriesExceededError) Error() string {
	return fmt.Sprintf("payout %s exhausted its retry budget (%d of %d attempts)", e.PayoutID, e.RetryCount, e.Limit)
}

// NewMaxRetriesExceededError creates a new MaxRetriesExceededError
func NewMaxRetriesExceededError(payoutID string, retryCount, limit int) *MaxRetriesExceededError {
	return &MaxRetriesExceededError{PayoutID: payoutID, RetryCount: retryCount, Limit: limit}
}

// DisbursementError reports a failed or timed-out call to the external
// disbursement channel. It is recorded on the payout as a failed status
// rather than returned to API callers.
type DisbursementError struct {
	ProviderID string
	Amount     decimal.Decimal
	Reason     string
}

func (e *DisbursementError) Error() string {
	return fmt.Sprintf("disbursement of %s to provider %s failed: %s", e.Amount.String(), e.ProviderID, e.Reason)
}

// NewDisbursementError creates a new DisbursementError
func NewDisbursementError(providerID string, amount decimal.Decimal, reason string) *DisbursementError {
	return &DisbursementError{ProviderID: providerID, Amount: amount, Reason: reason}
}
