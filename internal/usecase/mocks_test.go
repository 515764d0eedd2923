package usecase

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/servease/payout-service/internal/domain/dto"
	"github.com/servease/payout-service/internal/domain/model"
	"github.com/servease/payout-service/internal/domain/provider"
)

// MockPayoutRepository is a mock implementation of PayoutRepository
type MockPayoutRepository struct {
	mock.Mock
}

func (m *MockPayoutRepository) CreateWithClaims(ctx context.Context, payout *model.Payout) error {
	args := m.Called(ctx, payout)
	return args.Error(0)
}

func (m *MockPayoutRepository) GetByID(ctx context.Context, id string) (*model.Payout, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Payout), args.Error(1)
}

func (m *MockPayoutRepository) GetByIDs(ctx context.Context, ids []string) ([]model.Payout, error) {
	args := m.Called(ctx, ids)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Payout), args.Error(1)
}

func (m *MockPayoutRepository) List(ctx context.Context, filters dto.PayoutFilters) ([]model.Payout, error) {
	args := m.Called(ctx, filters)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Payout), args.Error(1)
}

func (m *MockPayoutRepository) Count(ctx context.Context, filters dto.PayoutFilters) (int64, error) {
	args := m.Called(ctx, filters)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockPayoutRepository) ClaimProcessing(ctx context.Context, id string) (bool, error) {
	args := m.Called(ctx, id)
	return args.Bool(0), args.Error(1)
}

func (m *MockPayoutRepository) MarkCompleted(ctx context.Context, id, paymentReference string) error {
	args := m.Called(ctx, id, paymentReference)
	return args.Error(0)
}

func (m *MockPayoutRepository) MarkFailed(ctx context.Context, id, reason string) error {
	args := m.Called(ctx, id, reason)
	return args.Error(0)
}

func (m *MockPayoutRepository) ReclaimForRetry(ctx context.Context, id string) (bool, error) {
	args := m.Called(ctx, id)
	return args.Bool(0), args.Error(1)
}

func (m *MockPayoutRepository) Approve(ctx context.Context, id, approvedBy string) (bool, error) {
	args := m.Called(ctx, id, approvedBy)
	return args.Bool(0), args.Error(1)
}

func (m *MockPayoutRepository) Schedule(ctx context.Context, id string, date time.Time) error {
	args := m.Called(ctx, id, date)
	return args.Error(0)
}

// MockPayoutBatchRepository is a mock implementation of PayoutBatchRepository
type MockPayoutBatchRepository struct {
	mock.Mock
}

func (m *MockPayoutBatchRepository) CreateWithMembers(ctx context.Context, batch *model.PayoutBatch, payoutIDs []string) error {
	args := m.Called(ctx, batch, payoutIDs)
	return args.Error(0)
}

func (m *MockPayoutBatchRepository) GetByID(ctx context.Context, id string) (*model.PayoutBatch, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.PayoutBatch), args.Error(1)
}

func (m *MockPayoutBatchRepository) List(ctx context.Context, filters dto.BatchFilters) ([]model.PayoutBatch, error) {
	args := m.Called(ctx, filters)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.PayoutBatch), args.Error(1)
}

func (m *MockPayoutBatchRepository) Count(ctx context.Context, filters dto.BatchFilters) (int64, error) {
	args := m.Called(ctx, filters)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockPayoutBatchRepository) TransitionStatus(ctx context.Context, id string, from, to model.BatchStatus) (bool, error) {
	args := m.Called(ctx, id, from, to)
	return args.Bool(0), args.Error(1)
}

func (m *MockPayoutBatchRepository) SetProgress(ctx context.Context, id string, progress int) error {
	args := m.Called(ctx, id, progress)
	return args.Error(0)
}

func (m *MockPayoutBatchRepository) FinishProcessing(ctx context.Context, id string, status model.BatchStatus, failureReason *string) (bool, error) {
	args := m.Called(ctx, id, status, failureReason)
	return args.Bool(0), args.Error(1)
}

func (m *MockPayoutBatchRepository) ResetForRetry(ctx context.Context, id string) (bool, error) {
	args := m.Called(ctx, id)
	return args.Bool(0), args.Error(1)
}

// MockPendingTransactionRepository is a mock implementation of PendingTransactionRepository
type MockPendingTransactionRepository struct {
	mock.Mock
}

func (m *MockPendingTransactionRepository) Create(ctx context.Context, tx *model.PendingTransaction) error {
	args := m.Called(ctx, tx)
	return args.Error(0)
}

func (m *MockPendingTransactionRepository) GetByID(ctx context.Context, id string) (*model.PendingTransaction, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.PendingTransaction), args.Error(1)
}

func (m *MockPendingTransactionRepository) GetByReference(ctx context.Context, referenceNumber string) (*model.PendingTransaction, error) {
	args := m.Called(ctx, referenceNumber)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.PendingTransaction), args.Error(1)
}

func (m *MockPendingTransactionRepository) List(ctx context.Context, filters dto.TransactionFilters) ([]model.PendingTransaction, error) {
	args := m.Called(ctx, filters)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.PendingTransaction), args.Error(1)
}

func (m *MockPendingTransactionRepository) Count(ctx context.Context, filters dto.TransactionFilters) (int64, error) {
	args := m.Called(ctx, filters)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockPendingTransactionRepository) Decide(ctx context.Context, id string, status model.TransactionStatus, decidedBy, adminNotes string, event *model.OutboxEvent) (bool, error) {
	args := m.Called(ctx, id, status, decidedBy, adminNotes, event)
	return args.Bool(0), args.Error(1)
}

// MockDisbursementProvider is a mock implementation of DisbursementProvider
type MockDisbursementProvider struct {
	mock.Mock
}

func (m *MockDisbursementProvider) Disburse(ctx context.Context, req *provider.DisbursementRequest) (*provider.DisbursementResult, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*provider.DisbursementResult), args.Error(1)
}

func (m *MockDisbursementProvider) GetProviderName() string {
	args := m.Called()
	return args.String(0)
}

// MockNotifier is a mock implementation of Notifier
type MockNotifier struct {
	mock.Mock
}

func (m *MockNotifier) Notify(ctx context.Context, userID, templateKind string, context map[string]interface{}) error {
	args := m.Called(ctx, userID, templateKind, context)
	return args.Error(0)
}
