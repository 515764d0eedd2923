package usecase

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/servease/payout-service/internal/domain/dto"
	domainErrors "github.com/servease/payout-service/internal/domain/errors"
	"github.com/servease/payout-service/internal/domain/model"
	"github.com/servease/payout-service/internal/domain/repository"
)

const cancelledByAdminReason = "Cancelled by admin"

// PayoutBatchService drives batches of payouts through the release
// lifecycle: draft -> pending_approval -> approved -> processing ->
// completed or failed, with pause, cancel and retry controls
type PayoutBatchService struct {
	batchRepo  repository.PayoutBatchRepository
	payoutRepo repository.PayoutRepository
	payouts    *PayoutService
	logger     *zap.Logger
	locks      *entityLocks
}

// NewPayoutBatchService creates a new payout batch service
func NewPayoutBatchService(
	batchRepo repository.PayoutBatchRepository,
	payoutRepo repository.PayoutRepository,
	payouts *PayoutService,
	logger *zap.Logger,
) *PayoutBatchService {
	return &PayoutBatchService{
		batchRepo:  batchRepo,
		payoutRepo: payoutRepo,
		payouts:    payouts,
		logger:     logger,
		locks:      newEntityLocks(),
	}
}

// CreateBatch groups pending payouts into a new draft batch
func (s *PayoutBatchService) CreateBatch(ctx context.Context, req dto.CreateBatchRequest) (*model.PayoutBatch, error) {
	members, err := s.payoutRepo.GetByIDs(ctx, req.PayoutIDs)
	if err != nil {
		return nil, err
	}
	if len(members) != len(req.PayoutIDs) {
		return nil, domainErrors.ErrPayoutNotFound
	}

	total := decimal.Zero
	for _, p := range members {
		if p.Status != model.PayoutStatusPending {
			return nil, domainErrors.NewInvalidStateTransitionError("payout", p.ID, string(p.Status), "add to batch")
		}
		if p.BatchID != nil {
			return nil, domainErrors.NewInvalidStateTransitionError("payout", p.ID, string(p.Status), "add to a second batch")
		}
		total = total.Add(p.NetPayout)
	}

	batch := &model.PayoutBatch{
		ID:          uuid.NewString(),
		BatchName:   req.BatchName,
		Status:      model.BatchStatusDraft,
		TotalAmount: total,
		PayoutCount: len(members),
		CreatedBy:   req.CreatedBy,
	}
	if err := s.batchRepo.CreateWithMembers(ctx, batch, req.PayoutIDs); err != nil {
		return nil, err
	}

	s.logger.Info("payout batch created",
		zap.String("batch_id", batch.ID),
		zap.String("batch_name", batch.BatchName),
		zap.Int("payout_count", batch.PayoutCount),
		zap.String("total_amount", batch.TotalAmount.String()))

	return batch, nil
}

// SubmitBatch moves a draft batch into the approval queue
func (s *PayoutBatchService) SubmitBatch(ctx context.Context, id string) (*model.PayoutBatch, error) {
	return s.transition(ctx, id, model.BatchStatusDraft, model.BatchStatusPendingApproval, "submit")
}

// ApproveBatch records admin sign-off on a submitted batch
func (s *PayoutBatchService) ApproveBatch(ctx context.Context, id string) (*model.PayoutBatch, error) {
	return s.transition(ctx, id, model.BatchStatusPendingApproval, model.BatchStatusApproved, "approve")
}

// ProcessBatch starts disbursing an approved batch. The member payouts
// are processed asynchronously; callers poll the batch for progress.
// Pause and cancel act between member disbursements: a transfer already
// handed to the payment rail is allowed to complete.
func (s *PayoutBatchService) ProcessBatch(ctx context.Context, id string) (*model.PayoutBatch, error) {
	unlock := s.locks.acquire(id)
	defer unlock()

	ok, err := s.batchRepo.TransitionStatus(ctx, id, model.BatchStatusApproved, model.BatchStatusProcessing)
	if err != nil {
		return nil, err
	}
	if !ok {
		batch, getErr := s.batchRepo.GetByID(ctx, id)
		if getErr != nil {
			return nil, getErr
		}
		return nil, domainErrors.NewInvalidStateTransitionError("batch", id, string(batch.Status), "process")
	}

	batch, err := s.batchRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	// Detach from the request context: the admin's HTTP request ends
	// long before a large batch finishes.
	go s.runBatch(context.Background(), batch)

	return batch, nil
}

// runBatch disburses every member payout, updating advisory progress
// and honouring cooperative pause/cancel signals between members
func (s *PayoutBatchService) runBatch(ctx context.Context, batch *model.PayoutBatch) {
	var failures int
	var firstFailure string

	for i, member := range batch.Payouts {
		current, err := s.batchRepo.GetByID(ctx, batch.ID)
		if err != nil {
			s.logger.Error("batch status check failed, stopping run",
				zap.String("batch_id", batch.ID),
				zap.Error(err))
			return
		}
		if current.Status != model.BatchStatusProcessing {
			// Paused back to draft or cancelled to failed; member
			// payouts keep whatever state they reached.
			s.logger.Info("batch run interrupted",
				zap.String("batch_id", batch.ID),
				zap.String("status", string(current.Status)),
				zap.Int("processed", i))
			return
		}

		if member.Status == model.PayoutStatusPending {
			if _, err := s.payouts.ProcessPayout(ctx, member.ID); err != nil {
				s.logger.Error("batch member processing rejected",
					zap.String("batch_id", batch.ID),
					zap.String("payout_id", member.ID),
					zap.Error(err))
			}
		}

		processed, err := s.payoutRepo.GetByID(ctx, member.ID)
		if err != nil {
			s.logger.Error("batch member reload failed",
				zap.String("batch_id", batch.ID),
				zap.String("payout_id", member.ID),
				zap.Error(err))
			failures++
		} else if processed.Status != model.PayoutStatusCompleted {
			failures++
			if firstFailure == "" && processed.FailureReason != nil {
				firstFailure = *processed.FailureReason
			}
		}

		progress := (i + 1) * 100 / len(batch.Payouts)
		if err := s.batchRepo.SetProgress(ctx, batch.ID, progress); err != nil {
			s.logger.Warn("failed to update batch progress",
				zap.String("batch_id", batch.ID),
				zap.Error(err))
		}
	}

	if failures > 0 {
		reason := fmt.Sprintf("%d of %d payouts failed", failures, len(batch.Payouts))
		if firstFailure != "" {
			reason = fmt.Sprintf("%s (first: %s)", reason, firstFailure)
		}
		if _, err := s.batchRepo.FinishProcessing(ctx, batch.ID, model.BatchStatusFailed, &reason); err != nil {
			s.logger.Error("failed to finish batch",
				zap.String("batch_id", batch.ID),
				zap.Error(err))
		}
		s.logger.Warn("payout batch failed",
			zap.String("batch_id", batch.ID),
			zap.String("reason", reason))
		return
	}

	if _, err := s.batchRepo.FinishProcessing(ctx, batch.ID, model.BatchStatusCompleted, nil); err != nil {
		s.logger.Error("failed to finish batch",
			zap.String("batch_id", batch.ID),
			zap.Error(err))
		return
	}
	s.logger.Info("payout batch completed",
		zap.String("batch_id", batch.ID),
		zap.Int("payout_count", len(batch.Payouts)))
}

// PauseBatch reverts a processing batch to draft. Members keep the
// state they reached; completed disbursements are not rolled back.
func (s *PayoutBatchService) PauseBatch(ctx context.Context, id string) (*model.PayoutBatch, error) {
	return s.transition(ctx, id, model.BatchStatusProcessing, model.BatchStatusDraft, "pause")
}

// CancelBatch fails a processing batch. In-flight disbursements already
// dispatched are allowed to complete; nothing is rolled back.
func (s *PayoutBatchService) CancelBatch(ctx context.Context, id string) (*model.PayoutBatch, error) {
	unlock := s.locks.acquire(id)
	defer unlock()

	reason := cancelledByAdminReason
	ok, err := s.batchRepo.FinishProcessing(ctx, id, model.BatchStatusFailed, &reason)
	if err != nil {
		return nil, err
	}
	if !ok {
		batch, getErr := s.batchRepo.GetByID(ctx, id)
		if getErr != nil {
			return nil, getErr
		}
		return nil, domainErrors.NewInvalidStateTransitionError("batch", id, string(batch.Status), "cancel")
	}
	return s.batchRepo.GetByID(ctx, id)
}

// RetryBatch resets a failed batch to approved so it can be processed
// again; the failure reason is cleared
func (s *PayoutBatchService) RetryBatch(ctx context.Context, id string) (*model.PayoutBatch, error) {
	unlock := s.locks.acquire(id)
	defer unlock()

	ok, err := s.batchRepo.ResetForRetry(ctx, id)
	if err != nil {
		return nil, err
	}
	if !ok {
		batch, getErr := s.batchRepo.GetByID(ctx, id)
		if getErr != nil {
			return nil, getErr
		}
		return nil, domainErrors.NewInvalidStateTransitionError("batch", id, string(batch.Status), "retry")
	}
	return s.batchRepo.GetByID(ctx, id)
}

// GetBatch retrieves a batch with its member payouts
func (s *PayoutBatchService) GetBatch(ctx context.Context, id string) (*model.PayoutBatch, error) {
	return s.batchRepo.GetByID(ctx, id)
}

// ListBatches retrieves batches with pagination
func (s *PayoutBatchService) ListBatches(ctx context.Context, filters dto.BatchFilters) (*dto.BatchListResponse, error) {
	filters.SetDefaults()

	batches, err := s.batchRepo.List(ctx, filters)
	if err != nil {
		return nil, fmt.Errorf("failed to list batches: %w", err)
	}
	total, err := s.batchRepo.Count(ctx, filters)
	if err != nil {
		return nil, fmt.Errorf("failed to count batches: %w", err)
	}

	return &dto.BatchListResponse{
		Batches: batches,
		Pagination: dto.PaginationInfo{
			Total:   total,
			Limit:   filters.Limit,
			Offset:  filters.Offset,
			HasMore: int64(filters.Offset+filters.Limit) < total,
		},
	}, nil
}

// transition applies a single guarded status move and returns the
// refreshed batch
func (s *PayoutBatchService) transition(ctx context.Context, id string, from, to model.BatchStatus, action string) (*model.PayoutBatch, error) {
	unlock := s.locks.acquire(id)
	defer unlock()

	ok, err := s.batchRepo.TransitionStatus(ctx, id, from, to)
	if err != nil {
		return nil, err
	}
	if !ok {
		batch, getErr := s.batchRepo.GetByID(ctx, id)
		if getErr != nil {
			return nil, getErr
		}
		return nil, domainErrors.NewInvalidStateTransitionError("batch", id, string(batch.Status), action)
	}
	return s.batchRepo.GetByID(ctx, id)
}
