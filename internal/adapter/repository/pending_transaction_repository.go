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

// pendingTransactionRepository implements the
// PendingTransactionRepository interface
type pendingTransactionRepository struct {
	db     *gorm.DB
	logger *zap.Logger
}

// NewPendingTransactionRepository creates a new pending transaction
// repository instance
func NewPendingTransactionRepository(db *gorm.DB, logger *zap.Logger) domainRepo.PendingTransactionRepository {
	return &pendingTransactionRepository{
		db:     db,
		logger: logger,
	}
}

// Create inserts a new pending transaction
func (r *pendingTransactionRepository) Create(ctx context.Context, tx *model.PendingTransaction) error {
	err := r.db.WithContext(ctx).Create(tx).Error
	if err != nil {
		r.logger.Error("Failed to create pending transaction",
			zap.String("transaction_id", tx.ID),
			zap.String("user_id", tx.UserID),
			zap.Error(err))
		return fmt.Errorf("failed to create pending transaction: %w", err)
	}

	return nil
}

// GetByID retrieves a transaction by id
func (r *pendingTransactionRepository) GetByID(ctx context.Context, id string) (*model.PendingTransaction, error) {
	var tx model.PendingTransaction

	err := r.db.WithContext(ctx).
		Where("id = ?", id).
		First(&tx).Error

	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domainErrors.ErrTransactionNotFound
		}
		r.logger.Error("Failed to get pending transaction",
			zap.String("transaction_id", id),
			zap.Error(err))
		return nil, fmt.Errorf("failed to get pending transaction: %w", err)
	}

	return &tx, nil
}

// GetByReference retrieves a transaction by its reference number
func (r *pendingTransactionRepository) GetByReference(ctx context.Context, referenceNumber string) (*model.PendingTransaction, error) {
	var tx model.PendingTransaction

	err := r.db.WithContext(ctx).
		Where("reference_number = ?", referenceNumber).
		First(&tx).Error

	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domainErrors.ErrTransactionNotFound
		}
		r.logger.Error("Failed to get transaction by reference",
			zap.String("reference_number", referenceNumber),
			zap.Error(err))
		return nil, fmt.Errorf("failed to get transaction by reference: %w", err)
	}

	return &tx, nil
}

// List retrieves transactions matching the filters
func (r *pendingTransactionRepository) List(ctx context.Context, filters dto.TransactionFilters) ([]model.PendingTransaction, error) {
	var transactions []model.PendingTransaction

	err := r.applyFilters(r.db.WithContext(ctx), filters).
		Order("created_at DESC").
		Limit(filters.Limit).
		Offset(filters.Offset).
		Find(&transactions).Error

	if err != nil {
		r.logger.Error("Failed to list pending transactions", zap.Error(err))
		return nil, fmt.Errorf("failed to list pending transactions: %w", err)
	}

	return transactions, nil
}

// Count counts transactions matching the filters
func (r *pendingTransactionRepository) Count(ctx context.Context, filters dto.TransactionFilters) (int64, error) {
	var count int64

	err := r.applyFilters(r.db.WithContext(ctx).Model(&model.PendingTransaction{}), filters).
		Count(&count).Error

	if err != nil {
		r.logger.Error("Failed to count pending transactions", zap.Error(err))
		return 0, fmt.Errorf("failed to count pending transactions: %w", err)
	}

	return count, nil
}

// Decide resolves a pending transaction and enqueues the outbox event in
// the same database transaction. Either both land or neither does, which
// is what makes the downstream activation signal at-least-once.
func (r *pendingTransactionRepository) Decide(ctx context.Context, id string, status model.TransactionStatus, decidedBy, adminNotes string, event *model.OutboxEvent) (bool, error) {
	decided := false

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		now := time.Now()
		updates := map[string]interface{}{
			"status":     status,
			"decided_by": decidedBy,
			"decided_at": now,
			"updated_at": now,
		}
		if adminNotes != "" {
			updates["admin_notes"] = adminNotes
		}

		result := tx.Model(&model.PendingTransaction{}).
			Where("id = ? AND status = ?", id, model.TransactionStatusPending).
			Updates(updates)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return nil
		}

		if event != nil {
			if err := tx.Create(event).Error; err != nil {
				return err
			}
		}

		decided = true
		return nil
	})

	if err != nil {
		r.logger.Error("Failed to decide pending transaction",
			zap.String("transaction_id", id),
			zap.String("status", string(status)),
			zap.Error(err))
		return false, fmt.Errorf("failed to decide pending transaction: %w", err)
	}

	return decided, nil
}

// applyFilters narrows a transaction query by the optional filter fields
func (r *pendingTransactionRepository) applyFilters(query *gorm.DB, filters dto.TransactionFilters) *gorm.DB {
	if filters.UserID != "" {
		query = query.Where("user_id = ?", filters.UserID)
	}
	if filters.Status != "" {
		query = query.Where("status = ?", filters.Status)
	}
	return query
}
