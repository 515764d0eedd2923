package repository

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/servease/payout-service/internal/domain/model"
	domainRepo "github.com/servease/payout-service/internal/domain/repository"
)

// outboxRepository implements the OutboxRepository interface
type outboxRepository struct {
	db     *gorm.DB
	logger *zap.Logger
}

// NewOutboxRepository creates a new outbox repository instance
func NewOutboxRepository(db *gorm.DB, logger *zap.Logger) domainRepo.OutboxRepository {
	return &outboxRepository{
		db:     db,
		logger: logger,
	}
}

// ListUnpublished returns the oldest unpublished events, oldest first so
// consumers see decisions roughly in order
func (r *outboxRepository) ListUnpublished(ctx context.Context, limit int) ([]model.OutboxEvent, error) {
	var events []model.OutboxEvent

	err := r.db.WithContext(ctx).
		Where("published = ?", false).
		Order("id ASC").
		Limit(limit).
		Find(&events).Error

	if err != nil {
		r.logger.Error("Failed to list unpublished outbox events", zap.Error(err))
		return nil, fmt.Errorf("failed to list unpublished outbox events: %w", err)
	}

	return events, nil
}

// MarkPublished flags an event as delivered to the broker
func (r *outboxRepository) MarkPublished(ctx context.Context, id int64) error {
	now := time.Now()
	err := r.db.WithContext(ctx).
		Model(&model.OutboxEvent{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"published":    true,
			"published_at": now,
		}).Error

	if err != nil {
		r.logger.Error("Failed to mark outbox event published",
			zap.Int64("event_id", id),
			zap.Error(err))
		return fmt.Errorf("failed to mark outbox event published: %w", err)
	}

	return nil
}
