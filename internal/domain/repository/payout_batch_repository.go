package repository

import (
	"context"

	"github.com/servease/payout-service/internal/domain/dto"
	"github.com/servease/payout-service/internal/domain/model"
)

// PayoutBatchRepository defines the interface for payout batch data
// operations. Transitions are conditional UPDATEs guarded by the source
// status, which serializes concurrent drivers of the same batch.
type PayoutBatchRepository interface {
	// CreateWithMembers inserts a draft batch and attaches the member
	// payouts in a single transaction. Fails if any payout is not
	// pending or already belongs to another batch.
	CreateWithMembers(ctx context.Context, batch *model.PayoutBatch, payoutIDs []string) error

	// GetByID retrieves a batch with its member payouts
	GetByID(ctx context.Context, id string) (*model.PayoutBatch, error)

	// List retrieves batches matching the filters
	List(ctx context.Context, filters dto.BatchFilters) ([]model.PayoutBatch, error)

	// Count counts batches matching the filters
	Count(ctx context.Context, filters dto.BatchFilters) (int64, error)

	// TransitionStatus moves the batch from one status to another;
	// false means the batch was not in the source status
	TransitionStatus(ctx context.Context, id string, from, to model.BatchStatus) (bool, error)

	// SetProgress updates the advisory processing progress (0-100)
	SetProgress(ctx context.Context, id string, progress int) error

	// FinishProcessing resolves a processing batch to completed or
	// failed, stamping processed_at and the failure reason if any
	FinishProcessing(ctx context.Context, id string, status model.BatchStatus, failureReason *string) (bool, error)

	// ResetForRetry moves a failed batch back to approved, clearing the
	// failure reason and progress
	ResetForRetry(ctx context.Context, id string) (bool, error)
}
