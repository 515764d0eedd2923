package usecase

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/servease/payout-service/internal/domain/dto"
	domainErrors "github.com/servease/payout-service/internal/domain/errors"
	"github.com/servease/payout-service/internal/domain/model"
	"github.com/servease/payout-service/internal/domain/provider"
	"github.com/servease/payout-service/internal/domain/repository"
)

// PendingTransactionService handles customer-reported bank deposits and
// the admin workflow that verifies them
type PendingTransactionService struct {
	txRepo   repository.PendingTransactionRepository
	notifier provider.Notifier
	logger   *zap.Logger
	locks    *entityLocks
}

// NewPendingTransactionService creates a new pending transaction service
func NewPendingTransactionService(
	txRepo repository.PendingTransactionRepository,
	notifier provider.Notifier,
	logger *zap.Logger,
) *PendingTransactionService {
	return &PendingTransactionService{
		txRepo:   txRepo,
		notifier: notifier,
		logger:   logger,
		locks:    newEntityLocks(),
	}
}

// CreateTransaction records a deposit claim awaiting admin review. The
// reference number the customer writes on the transfer slip is derived
// from the transaction id, so re-submitting the same record cannot mint
// a second reference.
func (s *PendingTransactionService) CreateTransaction(ctx context.Context, req dto.CreateTransactionRequest) (*model.PendingTransaction, error) {
	if !req.Amount.IsPositive() {
		return nil, domainErrors.NewInvalidConfigurationError("amount", "must be positive")
	}
	switch req.TransactionType {
	case model.TransactionTypeBooking:
		if req.ServiceID == nil || *req.ServiceID == "" {
			return nil, domainErrors.NewInvalidConfigurationError("service_id", "required for booking transactions")
		}
	case model.TransactionTypeSubscription:
		if req.PackageID == nil || *req.PackageID == "" {
			return nil, domainErrors.NewInvalidConfigurationError("package_id", "required for subscription transactions")
		}
	default:
		return nil, domainErrors.NewInvalidConfigurationError("transaction_type", "must be booking or subscription")
	}

	tx := &model.PendingTransaction{
		ID:              uuid.NewString(),
		UserID:          req.UserID,
		TransactionType: req.TransactionType,
		ServiceID:       req.ServiceID,
		PackageID:       req.PackageID,
		Amount:          req.Amount,
		BookingDetails:  req.BookingDetails,
		Status:          model.TransactionStatusPending,
	}
	tx.ReferenceNumber = depositReference(tx.ID)

	if err := s.txRepo.Create(ctx, tx); err != nil {
		return nil, err
	}

	s.logger.Info("pending transaction created",
		zap.String("transaction_id", tx.ID),
		zap.String("user_id", tx.UserID),
		zap.String("reference_number", tx.ReferenceNumber),
		zap.String("amount", tx.Amount.String()))

	return tx, nil
}

// ApproveTransaction confirms the deposit arrived. The activation event
// for the downstream booking or subscription is committed with the
// status change, then delivered by the outbox flusher, so it survives a
// crash between the decision and the publish.
func (s *PendingTransactionService) ApproveTransaction(ctx context.Context, id string, req dto.ReviewTransactionRequest) (*model.PendingTransaction, error) {
	unlock := s.locks.acquire(id)
	defer unlock()

	tx, err := s.txRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	event := &model.OutboxEvent{
		RoutingKey: "transaction.approved",
		Payload: model.JSONB{
			"transaction_id":   tx.ID,
			"user_id":          tx.UserID,
			"transaction_type": string(tx.TransactionType),
			"amount":           tx.Amount.String(),
		},
	}
	if tx.ServiceID != nil {
		event.Payload["service_id"] = *tx.ServiceID
	}
	if tx.PackageID != nil {
		event.Payload["package_id"] = *tx.PackageID
	}

	ok, err := s.txRepo.Decide(ctx, id, model.TransactionStatusApproved, req.DecidedBy, req.AdminNotes, event)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, domainErrors.NewInvalidStateTransitionError("transaction", id, string(tx.Status), "approve")
	}

	s.logger.Info("pending transaction approved",
		zap.String("transaction_id", id),
		zap.String("decided_by", req.DecidedBy))

	s.notify(ctx, tx.UserID, "deposit_confirmed", map[string]interface{}{
		"transaction_id":   tx.ID,
		"reference_number": tx.ReferenceNumber,
		"amount":           tx.Amount.String(),
	})

	return s.txRepo.GetByID(ctx, id)
}

// DeclineTransaction rejects the deposit claim. No activation event is
// produced; nothing downstream changes.
func (s *PendingTransactionService) DeclineTransaction(ctx context.Context, id string, req dto.ReviewTransactionRequest) (*model.PendingTransaction, error) {
	unlock := s.locks.acquire(id)
	defer unlock()

	tx, err := s.txRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	ok, err := s.txRepo.Decide(ctx, id, model.TransactionStatusDeclined, req.DecidedBy, req.AdminNotes, nil)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, domainErrors.NewInvalidStateTransitionError("transaction", id, string(tx.Status), "decline")
	}

	s.logger.Info("pending transaction declined",
		zap.String("transaction_id", id),
		zap.String("decided_by", req.DecidedBy))

	s.notify(ctx, tx.UserID, "deposit_declined", map[string]interface{}{
		"transaction_id":   tx.ID,
		"reference_number": tx.ReferenceNumber,
	})

	return s.txRepo.GetByID(ctx, id)
}

// GetTransaction retrieves a single pending transaction
func (s *PendingTransactionService) GetTransaction(ctx context.Context, id string) (*model.PendingTransaction, error) {
	return s.txRepo.GetByID(ctx, id)
}

// GetTransactionByReference looks a transaction up by the reference
// number printed on the customer's transfer slip
func (s *PendingTransactionService) GetTransactionByReference(ctx context.Context, referenceNumber string) (*model.PendingTransaction, error) {
	return s.txRepo.GetByReference(ctx, referenceNumber)
}

// ListTransactions retrieves transactions with pagination
func (s *PendingTransactionService) ListTransactions(ctx context.Context, filters dto.TransactionFilters) (*dto.TransactionListResponse, error) {
	filters.SetDefaults()

	transactions, err := s.txRepo.List(ctx, filters)
	if err != nil {
		return nil, fmt.Errorf("failed to list transactions: %w", err)
	}
	total, err := s.txRepo.Count(ctx, filters)
	if err != nil {
		return nil, fmt.Errorf("failed to count transactions: %w", err)
	}

	return &dto.TransactionListResponse{
		Transactions: transactions,
		Pagination: dto.PaginationInfo{
			Total:   total,
			Limit:   filters.Limit,
			Offset:  filters.Offset,
			HasMore: int64(filters.Offset+filters.Limit) < total,
		},
	}, nil
}

// notify delivers a best-effort user notification; failures are logged,
// never surfaced
func (s *PendingTransactionService) notify(ctx context.Context, userID, kind string, payload map[string]interface{}) {
	if err := s.notifier.Notify(ctx, userID, kind, payload); err != nil {
		s.logger.Warn("transaction notification failed",
			zap.String("user_id", userID),
			zap.String("kind", kind),
			zap.Error(err))
	}
}

// depositReference derives the bank transfer reference from the
// transaction id
func depositReference(id string) string {
	sum := sha256.Sum256([]byte(id))
	return "DEP-" + strings.ToUpper(hex.EncodeToString(sum[:5]))
}
