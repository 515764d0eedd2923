package database

import (
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/servease/payout-service/internal/domain/model"
)

// Migrate runs database migrations
func Migrate(db *gorm.DB, logger *zap.Logger) error {
	logger.Info("Running database migrations...")

	// Custom types must exist before auto-migrate references them
	if err := createCustomTypes(db); err != nil {
		logger.Error("Failed to create custom types", zap.Error(err))
		return err
	}

	err := db.AutoMigrate(
		&model.Payout{},
		&model.BookingClaim{},
		&model.PayoutBatch{},
		&model.PendingTransaction{},
		&model.OutboxEvent{},
	)
	if err != nil {
		logger.Error("Failed to run migrations", zap.Error(err))
		return err
	}

	if err := createCustomIndexes(db); err != nil {
		logger.Error("Failed to create custom indexes", zap.Error(err))
		return err
	}

	logger.Info("Database migrations completed successfully")
	return nil
}

// createCustomIndexes creates indexes GORM doesn't handle automatically
func createCustomIndexes(db *gorm.DB) error {
	// At most one active claim per booking, across all payouts. This is
	// the database-level guarantee behind the no-double-payment rule.
	if err := db.Exec(`CREATE UNIQUE INDEX IF NOT EXISTS unique_active_booking_claim ON booking_claims (booking_id) WHERE active`).Error; err != nil {
		return err
	}

	if err := db.Exec(`CREATE INDEX IF NOT EXISTS idx_outbox_events_unpublished ON outbox_events (id) WHERE NOT published`).Error; err != nil {
		return err
	}

	return nil
}

// createCustomTypes creates custom PostgreSQL types
func createCustomTypes(db *gorm.DB) error {
	var exists bool

	db.Raw(`SELECT EXISTS (SELECT 1 FROM pg_type WHERE typname = 'payout_status')`).Scan(&exists)
	if !exists {
		if err := db.Exec(`CREATE TYPE payout_status AS ENUM ('pending', 'processing', 'completed', 'failed')`).Error; err != nil {
			return err
		}
	}

	db.Raw(`SELECT EXISTS (SELECT 1 FROM pg_type WHERE typname = 'batch_status')`).Scan(&exists)
	if !exists {
		if err := db.Exec(`CREATE TYPE batch_status AS ENUM ('draft', 'pending_approval', 'approved', 'processing', 'completed', 'failed')`).Error; err != nil {
			return err
		}
	}

	db.Raw(`SELECT EXISTS (SELECT 1 FROM pg_type WHERE typname = 'transaction_status')`).Scan(&exists)
	if !exists {
		if err := db.Exec(`CREATE TYPE transaction_status AS ENUM ('pending', 'approved', 'declined')`).Error; err != nil {
			return err
		}
	}

	return nil
}
