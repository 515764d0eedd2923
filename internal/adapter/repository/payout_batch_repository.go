package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/servease/payout-service/internal/domain/dto"
	domainErrors "github.com/servease/payout-service/internal/domain/errors"
	"github.com/servease/payout-service/internal/domain/model"
	domainRepo "github.com/servease/payout-service/internal/domain/repository"
)

// payoutBatchRepository implements the PayoutBatchRepository interface
type payoutBatchRepository struct {
	db     *gorm.DB
	logger *zap.Logger
}

// NewPayoutBatchRepository creates a new payout batch repository instance
func NewPayoutBatchRepository(db *gorm.DB, logger *zap.Logger) domainRepo.PayoutBatchRepository {
	return &payoutBatchRepository{
		db:     db,
		logger: logger,
	}
}

// CreateWithMembers inserts the batch and attaches the member payouts in
// one transaction. The member update is guarded on pending status and an
// empty batch_id, so a payout racing into another batch fails the whole
// creation instead of being silently skipped.
func (r *payoutBatchRepository) CreateWithMembers(ctx context.Context, batch *model.PayoutBatch, payoutIDs []string) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit("Payouts").Create(batch).Error; err != nil {
			return err
		}

		result := tx.Model(&model.Payout{}).
			Where("id IN ? AND status = ? AND batch_id IS NULL", payoutIDs, model.PayoutStatusPending).
			Updates(map[string]interface{}{
				"batch_id":   batch.ID,
				"updated_at": time.Now(),
			})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected != int64(len(payoutIDs)) {
			return domainErrors.NewInvalidStateTransitionError("batch", batch.ID, "draft", "attach non-pending or already batched payouts")
		}

		return nil
	})

	if err != nil {
		var stateErr *domainErrors.InvalidStateTransitionError
		if errors.As(err, &stateErr) {
			return err
		}
		r.logger.Error("Failed to create payout batch",
			zap.String("batch_id", batch.ID),
			zap.Error(err))
		return fmt.Errorf("failed to create payout batch: %w", err)
	}

	return nil
}

// GetByID retrieves a batch with its member payouts
func (r *payoutBatchRepository) GetByID(ctx context.Context, id string) (*model.PayoutBatch, error) {
	var batch model.PayoutBatch

	err := r.db.WithContext(ctx).
		Preload("Payouts").
		Where("id = ?", id).
		First(&batch).Error

	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domainErrors.ErrBatchNotFound
		}
		r.logger.Error("Failed to get payout batch",
			zap.String("batch_id", id),
			zap.Error(err))
		return nil, fmt.Errorf("failed to get payout batch: %w", err)
	}

	return &batch, nil
}

// List retrieves batches matching the filters
func (r *payoutBatchRepository) List(ctx context.Context, filters dto.BatchFilters) ([]model.PayoutBatch, error) {
	var batches []model.PayoutBatch

	query := r.db.WithContext(ctx)
	if filters.Status != "" {
		query = query.Where("status = ?", filters.Status)
	}

	err := query.
		Order("created_at DESC").
		Limit(filters.Limit).
		Offset(filters.Offset).
		Find(&batches).Error

	if err != nil {
		r.logger.Error("Failed to list payout batches", zap.Error(err))
		return nil, fmt.Errorf("failed to list payout batches: %w", err)
	}

	return batches, nil
}

// Count counts batches matching the filters
func (r *payoutBatchRepository) Count(ctx context.Context, filters dto.BatchFilters) (int64, error) {
	var count int64

	query := r.db.WithContext(ctx).Model(&model.PayoutBatch{})
	if filters.Status != "" {
		query = query.Where("status = ?", filters.Status)
	}

	if err := query.Count(&count).Error; err != nil {
		r.logger.Error("Failed to count payout batches", zap.Error(err))
		return 0, fmt.Errorf("failed to count payout batches: %w", err)
	}

	return count, nil
}

// TransitionStatus moves the batch between statuses with a guard on the
// source status
func (r *payoutBatchRepository) TransitionStatus(ctx context.Context, id string, from, to model.BatchStatus) (bool, error) {
	result := r.db.WithContext(ctx).
		Model(&model.PayoutBatch{}).
		Where("id = ? AND status = ?", id, from).
		Updates(map[string]interface{}{
			"status":     to,
			"updated_at": time.Now(),
		})

	if result.Error != nil {
		r.logger.Error("Failed to transition batch status",
			zap.String("batch_id", id),
			zap.String("from", string(from)),
			zap.String("to", string(to)),
			zap.Error(result.Error))
		return false, fmt.Errorf("failed to transition batch status: %w", result.Error)
	}

	return result.RowsAffected > 0, nil
}

// SetProgress updates the advisory processing progress
func (r *payoutBatchRepository) SetProgress(ctx context.Context, id string, progress int) error {
	err := r.db.WithContext(ctx).
		Model(&model.PayoutBatch{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"progress":   progress,
			"updated_at": time.Now(),
		}).Error

	if err != nil {
		r.logger.Error("Failed to set batch progress",
			zap.String("batch_id", id),
			zap.Int("progress", progress),
			zap.Error(err))
		return fmt.Errorf("failed to set batch progress: %w", err)
	}

	return nil
}

// FinishProcessing resolves a processing batch to completed or failed
func (r *payoutBatchRepository) FinishProcessing(ctx context.Context, id string, status model.BatchStatus, failureReason *string) (bool, error) {
	now := time.Now()
	result := r.db.WithContext(ctx).
		Model(&model.PayoutBatch{}).
		Where("id = ? AND status = ?", id, model.BatchStatusProcessing).
		Updates(map[string]interface{}{
			"status":         status,
			"failure_reason": failureReason,
			"processed_at":   now,
			"updated_at":     now,
		})

	if result.Error != nil {
		r.logger.Error("Failed to finish batch processing",
			zap.String("batch_id", id),
			zap.String("status", string(status)),
			zap.Error(result.Error))
		return false, fmt.Errorf("failed to finish batch processing: %w", result.Error)
	}

	return result.RowsAffected > 0, nil
}

// ResetForRetry moves a failed batch back to approved for another run
func (r *payoutBatchRepository) ResetForRetry(ctx context.Context, id string) (bool, error) {
	result := r.db.WithContext(ctx).
		Model(&model.PayoutBatch{}).
		Where("id = ? AND status = ?", id, model.BatchStatusFailed).
		Updates(map[string]interface{}{
			"status":         model.BatchStatusApproved,
			"failure_reason": nil,
			"progress":       0,
			"updated_at":     time.Now(),
		})

	if result.Error != nil {
		r.logger.Error("Failed to reset batch for retry",
			zap.String("batch_id", id),
			zap.Error(result.Error))
		return false, fmt.Errorf("failed to reset batch for retry: %w", result.Error)
	}

	return result.RowsAffected > 0, nil
}
