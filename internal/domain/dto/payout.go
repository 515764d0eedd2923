package dto

import (
	"time"

	"github.com/servease/payout-service/internal/domain/model"
)

// CreatePayoutRequest creates a pending payout from a completed
// booking's financial facts
type CreatePayoutRequest struct {
	ProviderID   string            `json:"provider_id" validate:"required"`
	ProviderName string            `json:"provider_name" validate:"required"`
	BookingIDs   []string          `json:"booking_ids" validate:"required,min=1,dive,required"`
	Financials   ServiceFinancials `json:"financials" validate:"required"`

	PaymentMethod string             `json:"payment_method,omitempty"`
	Type          model.PayoutType   `json:"type,omitempty" validate:"omitempty,oneof=weekly_auto manual instant"`
	Urgency       model.UrgencyLevel `json:"urgency,omitempty" validate:"omitempty,oneof=normal urgent emergency"`
}

// ApprovePayoutRequest marks a payout as approved for release
type ApprovePayoutRequest struct {
	ApprovedBy string `json:"approved_by" validate:"required"`
}

// SchedulePayoutRequest sets a future release date on a payout
type SchedulePayoutRequest struct {
	ScheduledDate time.Time `json:"scheduled_date" validate:"required"`
}

// PayoutFilters narrows payout list queries
type PayoutFilters struct {
	ProviderID string
	Status     model.PayoutStatus
	Limit      int
	Offset     int
}

// SetDefaults applies default pagination values
func (f *PayoutFilters) SetDefaults() {
	if f.Limit <= 0 || f.Limit > 100 {
		f.Limit = 20
	}
	if f.Offset < 0 {
		f.Offset = 0
	}
}

// PaginationInfo describes the window of a list response
type PaginationInfo struct {
	Total   int64 `json:"total"`
	Limit   int   `json:"limit"`
	Offset  int   `json:"offset"`
	HasMore bool  `json:"has_more"`
}

// PayoutListResponse is the paginated payout listing
type PayoutListResponse struct {
	Payouts    []model.Payout `json:"payouts"`
	Pagination PaginationInfo `json:"pagination"`
}
