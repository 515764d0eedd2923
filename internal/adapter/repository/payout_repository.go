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

// payoutRepository implements the PayoutRepository interface
type payoutRepository struct {
	db     *gorm.DB
	logger *zap.Logger
}

// NewPayoutRepository creates a new payout repository instance
func NewPayoutRepository(db *gorm.DB, logger *zap.Logger) domainRepo.PayoutRepository {
	return &payoutRepository{
		db:     db,
		logger: logger,
	}
}

// CreateWithClaims inserts the payout and its booking claims atomically.
// The partial unique index on active booking claims turns a concurrent
// duplicate into a constraint violation here instead of a silent double
// payment.
func (r *payoutRepository) CreateWithClaims(ctx context.Context, payout *model.Payout) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return tx.Create(payout).Error
	})

	if err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			bookingID := r.findClaimedBooking(ctx, payout.BookingIDs(), payout.ID)
			r.logger.Warn("booking already claimed by an active payout",
				zap.String("provider_id", payout.ProviderID),
				zap.String("booking_id", bookingID))
			return domainErrors.NewDuplicateBookingPayoutError(bookingID)
		}
		r.logger.Error("Failed to create payout",
			zap.String("payout_id", payout.ID),
			zap.Error(err))
		return fmt.Errorf("failed to create payout: %w", err)
	}

	return nil
}

// GetByID retrieves a payout with its booking claims
func (r *payoutRepository) GetByID(ctx context.Context, id string) (*model.Payout, error) {
	var payout model.Payout

	err := r.db.WithContext(ctx).
		Preload("Claims").
		Where("id = ?", id).
		First(&payout).Error

	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domainErrors.ErrPayoutNotFound
		}
		r.logger.Error("Failed to get payout",
			zap.String("payout_id", id),
			zap.Error(err))
		return nil, fmt.Errorf("failed to get payout: %w", err)
	}

	return &payout, nil
}

// GetByIDs retrieves the given payouts without their claims
func (r *payoutRepository) GetByIDs(ctx context.Context, ids []string) ([]model.Payout, error) {
	var payouts []model.Payout

	err := r.db.WithContext(ctx).
		Where("id IN ?", ids).
		Find(&payouts).Error

	if err != nil {
		r.logger.Error("Failed to get payouts by ids", zap.Error(err))
		return nil, fmt.Errorf("failed to get payouts: %w", err)
	}

	return payouts, nil
}

// List retrieves payouts matching the filters
func (r *payoutRepository) List(ctx context.Context, filters dto.PayoutFilters) ([]model.Payout, error) {
	var payouts []model.Payout

	err := r.applyFilters(r.db.WithContext(ctx), filters).
		Order("created_at DESC").
		Limit(filters.Limit).
		Offset(filters.Offset).
		Find(&payouts).Error

	if err != nil {
		r.logger.Error("Failed to list payouts", zap.Error(err))
		return nil, fmt.Errorf("failed to list payouts: %w", err)
	}

	return payouts, nil
}

// Count counts payouts matching the filters
func (r *payoutRepository) Count(ctx context.Context, filters dto.PayoutFilters) (int64, error) {
	var count int64

	err := r.applyFilters(r.db.WithContext(ctx).Model(&model.Payout{}), filters).
		Count(&count).Error

	if err != nil {
		r.logger.Error("Failed to count payouts", zap.Error(err))
		return 0, fmt.Errorf("failed to count payouts: %w", err)
	}

	return count, nil
}

// ClaimProcessing moves a pending payout to processing. The status guard
// in the WHERE clause makes this safe under concurrent callers: exactly
// one of them sees a row updated.
func (r *payoutRepository) ClaimProcessing(ctx context.Context, id string) (bool, error) {
	result := r.db.WithContext(ctx).
		Model(&model.Payout{}).
		Where("id = ? AND status = ?", id, model.PayoutStatusPending).
		Updates(map[string]interface{}{
			"status":     model.PayoutStatusProcessing,
			"updated_at": time.Now(),
		})

	if result.Error != nil {
		r.logger.Error("Failed to claim payout for processing",
			zap.String("payout_id", id),
			zap.Error(result.Error))
		return false, fmt.Errorf("failed to claim payout: %w", result.Error)
	}

	return result.RowsAffected > 0, nil
}

// MarkCompleted finishes a processing payout
func (r *payoutRepository) MarkCompleted(ctx context.Context, id, paymentReference string) error {
	now := time.Now()
	result := r.db.WithContext(ctx).
		Model(&model.Payout{}).
		Where("id = ? AND status = ?", id, model.PayoutStatusProcessing).
		Updates(map[string]interface{}{
			"status":            model.PayoutStatusCompleted,
			"payment_reference": paymentReference,
			"processed_date":    now,
			"payout_date":       now,
			"failure_reason":    nil,
			"updated_at":        now,
		})

	if result.Error != nil {
		r.logger.Error("Failed to mark payout completed",
			zap.String("payout_id", id),
			zap.Error(result.Error))
		return fmt.Errorf("failed to mark payout completed: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return domainErrors.NewInvalidStateTransitionError("payout", id, "unknown", "complete")
	}

	return nil
}

// MarkFailed fails a processing payout and releases its booking claims
// so the bookings can be paid by a fresh payout
func (r *payoutRepository) MarkFailed(ctx context.Context, id, reason string) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Model(&model.Payout{}).
			Where("id = ? AND status = ?", id, model.PayoutStatusProcessing).
			Updates(map[string]interface{}{
				"status":         model.PayoutStatusFailed,
				"failure_reason": reason,
				"updated_at":     time.Now(),
			})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return domainErrors.NewInvalidStateTransitionError("payout", id, "unknown", "fail")
		}

		return tx.Model(&model.BookingClaim{}).
			Where("payout_id = ?", id).
			Update("active", false).Error
	})

	if err != nil {
		r.logger.Error("Failed to mark payout failed",
			zap.String("payout_id", id),
			zap.Error(err))
		var stateErr *domainErrors.InvalidStateTransitionError
		if errors.As(err, &stateErr) {
			return err
		}
		return fmt.Errorf("failed to mark payout failed: %w", err)
	}

	return nil
}

// ReclaimForRetry moves a failed payout back to processing, charging one
// retry attempt and re-activating its booking claims. If another payout
// claimed one of the bookings since the failure, the partial unique
// index rejects the reactivation and the whole retry rolls back.
func (r *payoutRepository) ReclaimForRetry(ctx context.Context, id string) (bool, error) {
	reclaimed := false

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Model(&model.Payout{}).
			Where("id = ? AND status = ?", id, model.PayoutStatusFailed).
			Updates(map[string]interface{}{
				"status":      model.PayoutStatusProcessing,
				"retry_count": gorm.Expr("retry_count + 1"),
				"updated_at":  time.Now(),
			})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return nil
		}

		if err := tx.Model(&model.BookingClaim{}).
			Where("payout_id = ?", id).
			Update("active", true).Error; err != nil {
			return err
		}

		reclaimed = true
		return nil
	})

	if err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			bookingID := r.findClaimedBooking(ctx, r.bookingIDsOf(ctx, id), id)
			r.logger.Warn("booking reclaimed by another payout since failure",
				zap.String("payout_id", id),
				zap.String("booking_id", bookingID))
			return false, domainErrors.NewDuplicateBookingPayoutError(bookingID)
		}
		r.logger.Error("Failed to reclaim payout for retry",
			zap.String("payout_id", id),
			zap.Error(err))
		return false, fmt.Errorf("failed to reclaim payout: %w", err)
	}

	return reclaimed, nil
}

// Approve marks a pending or failed payout approved and resets it to
// pending. A failed payout's claims come back with it; if a booking is
// gone to another payout the approval rolls back.
func (r *payoutRepository) Approve(ctx context.Context, id, approvedBy string) (bool, error) {
	approved := false

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Model(&model.Payout{}).
			Where("id = ? AND status IN ?", id, []model.PayoutStatus{model.PayoutStatusPending, model.PayoutStatusFailed}).
			Updates(map[string]interface{}{
				"approved":       true,
				"approved_by":    approvedBy,
				"status":         model.PayoutStatusPending,
				"failure_reason": nil,
				"updated_at":     time.Now(),
			})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return nil
		}

		if err := tx.Model(&model.BookingClaim{}).
			Where("payout_id = ?", id).
			Update("active", true).Error; err != nil {
			return err
		}

		approved = true
		return nil
	})

	if err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			bookingID := r.findClaimedBooking(ctx, r.bookingIDsOf(ctx, id), id)
			return false, domainErrors.NewDuplicateBookingPayoutError(bookingID)
		}
		r.logger.Error("Failed to approve payout",
			zap.String("payout_id", id),
			zap.Error(err))
		return false, fmt.Errorf("failed to approve payout: %w", err)
	}

	return approved, nil
}

// Schedule sets the scheduled release date and marks the payout manual
func (r *payoutRepository) Schedule(ctx context.Context, id string, date time.Time) error {
	result := r.db.WithContext(ctx).
		Model(&model.Payout{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"scheduled_date": date,
			"type":           model.PayoutTypeManual,
			"updated_at":     time.Now(),
		})

	if result.Error != nil {
		r.logger.Error("Failed to schedule payout",
			zap.String("payout_id", id),
			zap.Error(result.Error))
		return fmt.Errorf("failed to schedule payout: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return domainErrors.ErrPayoutNotFound
	}

	return nil
}

// applyFilters narrows a payout query by the optional filter fields
func (r *payoutRepository) applyFilters(query *gorm.DB, filters dto.PayoutFilters) *gorm.DB {
	if filters.ProviderID != "" {
		query = query.Where("provider_id = ?", filters.ProviderID)
	}
	if filters.Status != "" {
		query = query.Where("status = ?", filters.Status)
	}
	return query
}

// findClaimedBooking names the booking that tripped the unique claim
// index, for the error message. Best effort: the first booking id is
// reported when the lookup cannot narrow it down.
func (r *payoutRepository) findClaimedBooking(ctx context.Context, bookingIDs []string, excludePayoutID string) string {
	if len(bookingIDs) == 0 {
		return "unknown"
	}

	var claim model.BookingClaim
	err := r.db.WithContext(ctx).
		Where("booking_id IN ? AND active AND payout_id <> ?", bookingIDs, excludePayoutID).
		First(&claim).Error
	if err != nil {
		return bookingIDs[0]
	}
	return claim.BookingID
}

// bookingIDsOf loads the booking ids currently claimed by a payout
func (r *payoutRepository) bookingIDsOf(ctx context.Context, payoutID string) []string {
	var claims []model.BookingClaim
	if err := r.db.WithContext(ctx).Where("payout_id = ?", payoutID).Find(&claims).Error; err != nil {
		return nil
	}
	ids := make([]string, len(claims))
	for i, c := range claims {
		ids[i] = c.BookingID
	}
	return ids
}
