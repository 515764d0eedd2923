package dto

import (
	"github.com/shopspring/decimal"

	"github.com/servease/payout-service/internal/domain/model"
)

// CreateTransactionRequest records a customer's intent to pay by bank
// deposit, before any money is verified
type CreateTransactionRequest struct {
	UserID          string                `json:"user_id" validate:"required"`
	TransactionType model.TransactionType `json:"transaction_type" validate:"required,oneof=booking subscription"`
	ServiceID       *string               `json:"service_id,omitempty"`
	PackageID       *string               `json:"package_id,omitempty"`
	Amount          decimal.Decimal       `json:"amount" validate:"required"`
	BookingDetails  model.BookingDetails  `json:"booking_details"`
}

// ReviewTransactionRequest carries the admin's decision notes
type ReviewTransactionRequest struct {
	DecidedBy  string `json:"decided_by" validate:"required"`
	AdminNotes string `json:"admin_notes,omitempty"`
}

// TransactionFilters narrows pending transaction list queries
type TransactionFilters struct {
	UserID string
	Status model.TransactionStatus
	Limit  int
	Offset int
}

// SetDefaults applies default pagination values
func (f *TransactionFilters) SetDefaults() {
	if f.Limit <= 0 || f.Limit > 100 {
		f.Limit = 20
	}
	if f.Offset < 0 {
		f.Offset = 0
	}
}

// TransactionListResponse is the paginated transaction listing
type TransactionListResponse struct {
	Transactions []model.PendingTransaction `json:"transactions"`
	Pagination   PaginationInfo             `json:"pagination"`
}
