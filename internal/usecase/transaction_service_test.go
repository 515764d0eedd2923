package usecase

import (
	"context"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"go.uber.org/zap"

	"github.com/servease/payout-service/internal/domain/dto"
	domainErrors "github.com/servease/payout-service/internal/domain/errors"
	"github.com/servease/payout-service/internal/domain/model"
)

func newTransactionServiceUnderTest(t *testing.T) (*PendingTransactionService, *MockPendingTransactionRepository, *MockNotifier) {
	t.Helper()
	repo := new(MockPendingTransactionRepository)
	notifier := new(MockNotifier)
	svc := NewPendingTransactionService(repo, notifier, zap.NewNop())
	return svc, repo, notifier
}

func strPtr(s string) *string { return &s }

func TestPendingTransactionService_CreateTransaction(t *testing.T) {
	ctx := context.Background()

	t.Run("creates a pending booking deposit with a derived reference", func(t *testing.T) {
		svc, repo, _ := newTransactionServiceUnderTest(t)
		repo.On("Create", ctx, mock.AnythingOfType("*model.PendingTransaction")).Return(nil)

		tx, err := svc.CreateTransaction(ctx, dto.CreateTransactionRequest{
			UserID:          "user-1",
			TransactionType: model.TransactionTypeBooking,
			ServiceID:       strPtr("service-9"),
			Amount:          decimal.RequireFromString("150"),
			BookingDetails:  model.BookingDetails{City: "Austin", IsEmergency: true},
		})

		assert.NoError(t, err)
		assert.Equal(t, model.TransactionStatusPending, tx.Status)
		assert.True(t, strings.HasPrefix(tx.ReferenceNumber, "DEP-"))
		assert.Equal(t, depositReference(tx.ID), tx.ReferenceNumber)
		repo.AssertExpectations(t)
	})

	t.Run("the reference is a pure function of the transaction id", func(t *testing.T) {
		assert.Equal(t, depositReference("abc"), depositReference("abc"))
		assert.NotEqual(t, depositReference("abc"), depositReference("abd"))
		assert.Len(t, depositReference("abc"), len("DEP-")+10)
	})

	t.Run("rejects a non-positive amount", func(t *testing.T) {
		svc, repo, _ := newTransactionServiceUnderTest(t)

		_, err := svc.CreateTransaction(ctx, dto.CreateTransactionRequest{
			UserID:          "user-1",
			TransactionType: model.TransactionTypeBooking,
			ServiceID:       strPtr("service-9"),
			Amount:          decimal.Zero,
		})

		var cfgErr *domainErrors.InvalidConfigurationError
		assert.ErrorAs(t, err, &cfgErr)
		repo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})

	t.Run("a booking deposit requires a service id", func(t *testing.T) {
		svc, _, _ := newTransactionServiceUnderTest(t)

		_, err := svc.CreateTransaction(ctx, dto.CreateTransactionRequest{
			UserID:          "user-1",
			TransactionType: model.TransactionTypeBooking,
			Amount:          decimal.RequireFromString("150"),
		})

		var cfgErr *domainErrors.InvalidConfigurationError
		assert.ErrorAs(t, err, &cfgErr)
		assert.Equal(t, "service_id", cfgErr.Field)
	})

	t.Run("a subscription deposit requires a package id", func(t *testing.T) {
		svc, _, _ := newTransactionServiceUnderTest(t)

		_, err := svc.CreateTransaction(ctx, dto.CreateTransactionRequest{
			UserID:          "user-1",
			TransactionType: model.TransactionTypeSubscription,
			Amount:          decimal.RequireFromString("400"),
		})

		var cfgErr *domainErrors.InvalidConfigurationError
		assert.ErrorAs(t, err, &cfgErr)
		assert.Equal(t, "package_id", cfgErr.Field)
	})
}

func TestPendingTransactionService_ApproveTransaction(t *testing.T) {
	ctx := context.Background()

	pendingTx := func() *model.PendingTransaction {
		return &model.PendingTransaction{
			ID:              "tx-1",
			UserID:          "user-1",
			TransactionType: model.TransactionTypeBooking,
			ServiceID:       strPtr("service-9"),
			Amount:          decimal.RequireFromString("150"),
			ReferenceNumber: "DEP-AB12CD34EF",
			Status:          model.TransactionStatusPending,
		}
	}

	t.Run("approval enqueues the activation event with the decision", func(t *testing.T) {
		svc, repo, notifier := newTransactionServiceUnderTest(t)
		approved := pendingTx()
		approved.Status = model.TransactionStatusApproved

		repo.On("GetByID", ctx, "tx-1").Return(pendingTx(), nil).Once()
		repo.On("Decide", ctx, "tx-1", model.TransactionStatusApproved, "admin-7", "slip verified",
			mock.MatchedBy(func(event *model.OutboxEvent) bool {
				return event != nil &&
					event.RoutingKey == "transaction.approved" &&
					event.Payload["transaction_id"] == "tx-1" &&
					event.Payload["service_id"] == "service-9"
			})).Return(true, nil)
		notifier.On("Notify", ctx, "user-1", "deposit_confirmed", mock.Anything).Return(nil)
		repo.On("GetByID", ctx, "tx-1").Return(approved, nil)

		tx, err := svc.ApproveTransaction(ctx, "tx-1", dto.ReviewTransactionRequest{
			DecidedBy:  "admin-7",
			AdminNotes: "slip verified",
		})

		assert.NoError(t, err)
		assert.Equal(t, model.TransactionStatusApproved, tx.Status)
		repo.AssertExpectations(t)
	})

	t.Run("approving an already decided transaction is rejected", func(t *testing.T) {
		svc, repo, notifier := newTransactionServiceUnderTest(t)
		declined := pendingTx()
		declined.Status = model.TransactionStatusDeclined

		repo.On("GetByID", ctx, "tx-1").Return(declined, nil)
		repo.On("Decide", ctx, "tx-1", model.TransactionStatusApproved, "admin-7", "", mock.Anything).Return(false, nil)

		_, err := svc.ApproveTransaction(ctx, "tx-1", dto.ReviewTransactionRequest{DecidedBy: "admin-7"})

		var stateErr *domainErrors.InvalidStateTransitionError
		assert.ErrorAs(t, err, &stateErr)
		notifier.AssertNotCalled(t, "Notify", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("decline produces no activation event", func(t *testing.T) {
		svc, repo, notifier := newTransactionServiceUnderTest(t)
		declined := pendingTx()
		declined.Status = model.TransactionStatusDeclined

		repo.On("GetByID", ctx, "tx-1").Return(pendingTx(), nil).Once()
		repo.On("Decide", ctx, "tx-1", model.TransactionStatusDeclined, "admin-7", "amount mismatch", (*model.OutboxEvent)(nil)).Return(true, nil)
		notifier.On("Notify", ctx, "user-1", "deposit_declined", mock.Anything).Return(nil)
		repo.On("GetByID", ctx, "tx-1").Return(declined, nil)

		tx, err := svc.DeclineTransaction(ctx, "tx-1", dto.ReviewTransactionRequest{
			DecidedBy:  "admin-7",
			AdminNotes: "amount mismatch",
		})

		assert.NoError(t, err)
		assert.Equal(t, model.TransactionStatusDeclined, tx.Status)
		repo.AssertExpectations(t)
		notifier.AssertExpectations(t)
	})
}

func TestPendingTransactionService_ListTransactions(t *testing.T) {
	ctx := context.Background()

	t.Run("applies pagination defaults", func(t *testing.T) {
		svc, repo, _ := newTransactionServiceUnderTest(t)
		repo.On("List", ctx, mock.MatchedBy(func(f dto.TransactionFilters) bool {
			return f.Limit == 20 && f.Offset == 0
		})).Return([]model.PendingTransaction{}, nil)
		repo.On("Count", ctx, mock.Anything).Return(int64(0), nil)

		out, err := svc.ListTransactions(ctx, dto.TransactionFilters{})

		assert.NoError(t, err)
		assert.False(t, out.Pagination.HasMore)
		assert.Equal(t, 20, out.Pagination.Limit)
	})
}
