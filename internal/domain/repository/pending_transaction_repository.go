package repository

import (
	"context"

	"github.com/servease/payout-service/internal/domain/dto"
	"github.com/servease/payout-service/internal/domain/model"
)

// PendingTransactionRepository defines the interface for pending
// transaction data operations
type PendingTransactionRepository interface {
	// Create inserts a new pending transaction
	Create(ctx context.Context, tx *model.PendingTransaction) error

	// GetByID retrieves a transaction by id
	GetByID(ctx context.Context, id string) (*model.PendingTransaction, error)

	// GetByReference retrieves a transaction by its reference number
	GetByReference(ctx context.Context, referenceNumber string) (*model.PendingTransaction, error)

	// List retrieves transactions matching the filters
	List(ctx context.Context, filters dto.TransactionFilters) ([]model.PendingTransaction, error)

	// Count counts transactions matching the filters
	Count(ctx context.Context, filters dto.TransactionFilters) (int64, error)

	// Decide resolves a pending transaction to approved or declined and,
	// in the same database transaction, enqueues the outbox event (if
	// any) so the downstream activation signal cannot be lost. Returns
	// false when the transaction is not pending anymore.
	Decide(ctx context.Context, id string, status model.TransactionStatus, decidedBy, adminNotes string, event *model.OutboxEvent) (bool, error)
}

// OutboxRepository drains activation/notification events written
// alongside state changes
type OutboxRepository interface {
	// ListUnpublished returns the oldest unpublished events
	ListUnpublished(ctx context.Context, limit int) ([]model.OutboxEvent, error)

	// MarkPublished flags an event as delivered to the broker
	MarkPublished(ctx context.Context, id int64) error
}
