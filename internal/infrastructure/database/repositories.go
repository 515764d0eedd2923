package database

import (
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/servease/payout-service/internal/adapter/repository"
	domainRepo "github.com/servease/payout-service/internal/domain/repository"
)

// Repositories holds all repository instances
type Repositories struct {
	Payout      domainRepo.PayoutRepository
	Batch       domainRepo.PayoutBatchRepository
	Transaction domainRepo.PendingTransactionRepository
	Outbox      domainRepo.OutboxRepository
}

// NewRepositories creates new repository instances with database connection
func NewRepositories(db *gorm.DB, logger *zap.Logger) *Repositories {
	return &Repositories{
		Payout:      repository.NewPayoutRepository(db, logger),
		Batch:       repository.NewPayoutBatchRepository(db, logger),
		Transaction: repository.NewPendingTransactionRepository(db, logger),
		Outbox:      repository.NewOutboxRepository(db, logger),
	}
}
