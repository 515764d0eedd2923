package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"go.uber.org/zap"

	"github.com/servease/payout-service/internal/config"
	"github.com/servease/payout-service/internal/domain/dto"
	domainErrors "github.com/servease/payout-service/internal/domain/errors"
	"github.com/servease/payout-service/internal/domain/model"
	"github.com/servease/payout-service/internal/domain/provider"
)

func newPayoutServiceUnderTest(t *testing.T) (*PayoutService, *MockPayoutRepository, *MockDisbursementProvider, *MockNotifier) {
	t.Helper()
	repo := new(MockPayoutRepository)
	disburser := new(MockDisbursementProvider)
	notifier := new(MockNotifier)
	calc := newTestCalculator(t, config.FinanceConfig{
		DefaultCommissionPercent: 15,
		IncomeTaxRate:            0.03,
		WithholdingTaxRate:       0.02,
	})
	svc := NewPayoutService(repo, calc, disburser, notifier, zap.NewNop(), 3, 15*time.Second, "USD")
	return svc, repo, disburser, notifier
}

func TestPayoutService_CreatePayout(t *testing.T) {
	ctx := context.Background()

	t.Run("creates a pending payout with one claim per booking", func(t *testing.T) {
		svc, repo, _, _ := newPayoutServiceUnderTest(t)
		repo.On("CreateWithClaims", ctx, mock.AnythingOfType("*model.Payout")).Return(nil)

		payout, err := svc.CreatePayout(ctx, dto.CreatePayoutRequest{
			ProviderID:   "provider-1",
			ProviderName: "Dana's Plumbing",
			BookingIDs:   []string{"booking-1", "booking-5"},
			Financials: dto.ServiceFinancials{
				GrossAmount: decimal.RequireFromString("150"),
				ServiceType: dto.ServiceTypeOneOff,
			},
		})

		assert.NoError(t, err)
		assert.Equal(t, model.PayoutStatusPending, payout.Status)
		assert.Equal(t, "bank_transfer", payout.PaymentMethod)
		assert.Equal(t, model.PayoutTypeWeeklyAuto, payout.Type)
		assert.Equal(t, model.UrgencyNormal, payout.UrgencyLevel)
		assert.True(t, payout.NetPayout.Equal(decimal.RequireFromString("121.12")))
		assert.Len(t, payout.Claims, 2)
		for _, claim := range payout.Claims {
			assert.True(t, claim.Active)
		}
		repo.AssertExpectations(t)
	})

	t.Run("an emergency booking forces emergency urgency", func(t *testing.T) {
		svc, repo, _, _ := newPayoutServiceUnderTest(t)
		repo.On("CreateWithClaims", ctx, mock.AnythingOfType("*model.Payout")).Return(nil)

		payout, err := svc.CreatePayout(ctx, dto.CreatePayoutRequest{
			ProviderID:   "provider-1",
			ProviderName: "Dana's Plumbing",
			BookingIDs:   []string{"booking-9"},
			Urgency:      model.UrgencyNormal,
			Financials: dto.ServiceFinancials{
				GrossAmount: decimal.RequireFromString("80"),
				ServiceType: dto.ServiceTypeOneOff,
				IsEmergency: true,
			},
		})

		assert.NoError(t, err)
		assert.Equal(t, model.UrgencyEmergency, payout.UrgencyLevel)
	})

	t.Run("surfaces a duplicate booking claim", func(t *testing.T) {
		svc, repo, _, _ := newPayoutServiceUnderTest(t)
		repo.On("CreateWithClaims", ctx, mock.AnythingOfType("*model.Payout")).
			Return(domainErrors.NewDuplicateBookingPayoutError("booking-5"))

		_, err := svc.CreatePayout(ctx, dto.CreatePayoutRequest{
			ProviderID:   "provider-2",
			ProviderName: "Other Provider",
			BookingIDs:   []string{"booking-5", "booking-9"},
			Financials: dto.ServiceFinancials{
				GrossAmount: decimal.RequireFromString("200"),
				ServiceType: dto.ServiceTypeOneOff,
			},
		})

		var dupErr *domainErrors.DuplicateBookingPayoutError
		assert.ErrorAs(t, err, &dupErr)
		assert.Equal(t, "booking-5", dupErr.BookingID)
	})

	t.Run("a bad calculation never reaches the repository", func(t *testing.T) {
		svc, repo, _, _ := newPayoutServiceUnderTest(t)

		_, err := svc.CreatePayout(ctx, dto.CreatePayoutRequest{
			ProviderID:   "provider-1",
			ProviderName: "Dana's Plumbing",
			BookingIDs:   []string{"booking-1"},
			Financials: dto.ServiceFinancials{
				GrossAmount: decimal.RequireFromString("-10"),
				ServiceType: dto.ServiceTypeOneOff,
			},
		})

		var cfgErr *domainErrors.InvalidConfigurationError
		assert.ErrorAs(t, err, &cfgErr)
		repo.AssertNotCalled(t, "CreateWithClaims", mock.Anything, mock.Anything)
	})
}

func TestPayoutService_ProcessPayout(t *testing.T) {
	ctx := context.Background()

	pendingPayout := func() *model.Payout {
		return &model.Payout{
			ID:            "payout-1",
			ProviderID:    "provider-1",
			NetPayout:     decimal.RequireFromString("121.12"),
			Status:        model.PayoutStatusPending,
			PaymentMethod: "bank_transfer",
		}
	}

	t.Run("disburses a pending payout and records the reference", func(t *testing.T) {
		svc, repo, disburser, _ := newPayoutServiceUnderTest(t)
		completed := pendingPayout()
		completed.Status = model.PayoutStatusCompleted

		repo.On("GetByID", ctx, "payout-1").Return(pendingPayout(), nil).Once()
		repo.On("ClaimProcessing", ctx, "payout-1").Return(true, nil)
		disburser.On("Disburse", mock.Anything, mock.MatchedBy(func(req *provider.DisbursementRequest) bool {
			return req.PayoutID == "payout-1" && req.Currency == "USD" && req.Amount.Equal(decimal.RequireFromString("121.12"))
		})).Return(&provider.DisbursementResult{PaymentReference: "tr_123"}, nil)
		disburser.On("GetProviderName").Return("stripe")
		repo.On("MarkCompleted", mock.Anything, "payout-1", "tr_123").Return(nil)
		repo.On("GetByID", mock.Anything, "payout-1").Return(completed, nil)

		out, err := svc.ProcessPayout(ctx, "payout-1")

		assert.NoError(t, err)
		assert.Equal(t, model.PayoutStatusCompleted, out.Status)
		repo.AssertExpectations(t)
		disburser.AssertExpectations(t)
	})

	t.Run("a completed payout is returned without a second disbursement", func(t *testing.T) {
		svc, repo, disburser, _ := newPayoutServiceUnderTest(t)
		done := pendingPayout()
		done.Status = model.PayoutStatusCompleted
		repo.On("GetByID", ctx, "payout-1").Return(done, nil)

		out, err := svc.ProcessPayout(ctx, "payout-1")

		assert.NoError(t, err)
		assert.Equal(t, model.PayoutStatusCompleted, out.Status)
		disburser.AssertNotCalled(t, "Disburse", mock.Anything, mock.Anything)
	})

	t.Run("processing a failed payout is rejected", func(t *testing.T) {
		svc, repo, disburser, _ := newPayoutServiceUnderTest(t)
		failed := pendingPayout()
		failed.Status = model.PayoutStatusFailed
		repo.On("GetByID", ctx, "payout-1").Return(failed, nil)

		_, err := svc.ProcessPayout(ctx, "payout-1")

		var stateErr *domainErrors.InvalidStateTransitionError
		assert.ErrorAs(t, err, &stateErr)
		disburser.AssertNotCalled(t, "Disburse", mock.Anything, mock.Anything)
	})

	t.Run("losing the processing claim observes the winner's outcome", func(t *testing.T) {
		svc, repo, disburser, _ := newPayoutServiceUnderTest(t)
		winner := pendingPayout()
		winner.Status = model.PayoutStatusProcessing

		repo.On("GetByID", ctx, "payout-1").Return(pendingPayout(), nil).Once()
		repo.On("ClaimProcessing", ctx, "payout-1").Return(false, nil)
		repo.On("GetByID", ctx, "payout-1").Return(winner, nil)

		out, err := svc.ProcessPayout(ctx, "payout-1")

		assert.NoError(t, err)
		assert.Equal(t, model.PayoutStatusProcessing, out.Status)
		disburser.AssertNotCalled(t, "Disburse", mock.Anything, mock.Anything)
	})

	t.Run("a disbursement failure lands on the record, not the caller", func(t *testing.T) {
		svc, repo, disburser, _ := newPayoutServiceUnderTest(t)
		reason := "insufficient funds on platform account"
		failed := pendingPayout()
		failed.Status = model.PayoutStatusFailed
		failed.FailureReason = &reason

		repo.On("GetByID", ctx, "payout-1").Return(pendingPayout(), nil).Once()
		repo.On("ClaimProcessing", ctx, "payout-1").Return(true, nil)
		disburser.On("Disburse", mock.Anything, mock.Anything).Return(nil, errors.New(reason))
		disburser.On("GetProviderName").Return("stripe")
		repo.On("MarkFailed", mock.Anything, "payout-1", reason).Return(nil)
		repo.On("GetByID", mock.Anything, "payout-1").Return(failed, nil)

		out, err := svc.ProcessPayout(ctx, "payout-1")

		assert.NoError(t, err)
		assert.Equal(t, model.PayoutStatusFailed, out.Status)
		assert.Equal(t, reason, *out.FailureReason)
		repo.AssertExpectations(t)
	})
}

func TestPayoutService_RetryFailedPayout(t *testing.T) {
	ctx := context.Background()

	failedPayout := func(retries int) *model.Payout {
		return &model.Payout{
			ID:         "payout-1",
			ProviderID: "provider-1",
			NetPayout:  decimal.RequireFromString("50"),
			Status:     model.PayoutStatusFailed,
			RetryCount: retries,
		}
	}

	t.Run("retries a failed payout within the budget", func(t *testing.T) {
		svc, repo, disburser, _ := newPayoutServiceUnderTest(t)
		completed := failedPayout(2)
		completed.Status = model.PayoutStatusCompleted

		repo.On("GetByID", ctx, "payout-1").Return(failedPayout(2), nil).Once()
		repo.On("ReclaimForRetry", ctx, "payout-1").Return(true, nil)
		disburser.On("Disburse", mock.Anything, mock.Anything).Return(&provider.DisbursementResult{PaymentReference: "tr_retry"}, nil)
		disburser.On("GetProviderName").Return("stripe")
		repo.On("MarkCompleted", mock.Anything, "payout-1", "tr_retry").Return(nil)
		repo.On("GetByID", mock.Anything, "payout-1").Return(completed, nil)

		out, err := svc.RetryFailedPayout(ctx, "payout-1")

		assert.NoError(t, err)
		assert.Equal(t, model.PayoutStatusCompleted, out.Status)
	})

	t.Run("the fourth retry is refused", func(t *testing.T) {
		svc, repo, disburser, _ := newPayoutServiceUnderTest(t)
		repo.On("GetByID", ctx, "payout-1").Return(failedPayout(3), nil)

		_, err := svc.RetryFailedPayout(ctx, "payout-1")

		var retryErr *domainErrors.MaxRetriesExceededError
		assert.ErrorAs(t, err, &retryErr)
		assert.Equal(t, 3, retryErr.Limit)
		disburser.AssertNotCalled(t, "Disburse", mock.Anything, mock.Anything)
		repo.AssertNotCalled(t, "ReclaimForRetry", mock.Anything, mock.Anything)
	})

	t.Run("only failed payouts can be retried", func(t *testing.T) {
		svc, repo, _, _ := newPayoutServiceUnderTest(t)
		pending := failedPayout(0)
		pending.Status = model.PayoutStatusPending
		repo.On("GetByID", ctx, "payout-1").Return(pending, nil)

		_, err := svc.RetryFailedPayout(ctx, "payout-1")

		var stateErr *domainErrors.InvalidStateTransitionError
		assert.ErrorAs(t, err, &stateErr)
	})

	t.Run("a booking reclaimed by another payout blocks the retry", func(t *testing.T) {
		svc, repo, disburser, _ := newPayoutServiceUnderTest(t)
		repo.On("GetByID", ctx, "payout-1").Return(failedPayout(1), nil)
		repo.On("ReclaimForRetry", ctx, "payout-1").
			Return(false, domainErrors.NewDuplicateBookingPayoutError("booking-5"))

		_, err := svc.RetryFailedPayout(ctx, "payout-1")

		var dupErr *domainErrors.DuplicateBookingPayoutError
		assert.ErrorAs(t, err, &dupErr)
		disburser.AssertNotCalled(t, "Disburse", mock.Anything, mock.Anything)
	})
}

func TestPayoutService_ApprovePayout(t *testing.T) {
	ctx := context.Background()

	t.Run("approves and notifies the provider", func(t *testing.T) {
		svc, repo, _, notifier := newPayoutServiceUnderTest(t)
		approved := &model.Payout{
			ID:         "payout-1",
			ProviderID: "provider-1",
			NetPayout:  decimal.RequireFromString("121.12"),
			Status:     model.PayoutStatusPending,
			Approved:   true,
		}
		repo.On("Approve", ctx, "payout-1", "admin-7").Return(true, nil)
		repo.On("GetByID", ctx, "payout-1").Return(approved, nil)
		notifier.On("Notify", ctx, "provider-1", "payout_approved", mock.Anything).Return(nil)

		out, err := svc.ApprovePayout(ctx, "payout-1", "admin-7")

		assert.NoError(t, err)
		assert.True(t, out.Approved)
		notifier.AssertExpectations(t)
	})

	t.Run("a notification failure does not undo the approval", func(t *testing.T) {
		svc, repo, _, notifier := newPayoutServiceUnderTest(t)
		approved := &model.Payout{
			ID:         "payout-1",
			ProviderID: "provider-1",
			Status:     model.PayoutStatusPending,
			Approved:   true,
		}
		repo.On("Approve", ctx, "payout-1", "admin-7").Return(true, nil)
		repo.On("GetByID", ctx, "payout-1").Return(approved, nil)
		notifier.On("Notify", ctx, "provider-1", "payout_approved", mock.Anything).
			Return(errors.New("broker unavailable"))

		out, err := svc.ApprovePayout(ctx, "payout-1", "admin-7")

		assert.NoError(t, err)
		assert.True(t, out.Approved)
	})

	t.Run("approving a completed payout is rejected", func(t *testing.T) {
		svc, repo, _, notifier := newPayoutServiceUnderTest(t)
		repo.On("Approve", ctx, "payout-1", "admin-7").Return(false, nil)
		repo.On("GetByID", ctx, "payout-1").Return(&model.Payout{
			ID:     "payout-1",
			Status: model.PayoutStatusCompleted,
		}, nil)

		_, err := svc.ApprovePayout(ctx, "payout-1", "admin-7")

		var stateErr *domainErrors.InvalidStateTransitionError
		assert.ErrorAs(t, err, &stateErr)
		notifier.AssertNotCalled(t, "Notify", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})
}

func TestPayoutService_ListPayouts(t *testing.T) {
	ctx := context.Background()

	t.Run("reports whether more pages remain", func(t *testing.T) {
		svc, repo, _, _ := newPayoutServiceUnderTest(t)
		repo.On("List", ctx, mock.Anything).Return([]model.Payout{{ID: "payout-1"}}, nil)
		repo.On("Count", ctx, mock.Anything).Return(int64(45), nil)

		out, err := svc.ListPayouts(ctx, dto.PayoutFilters{Limit: 20, Offset: 20})

		assert.NoError(t, err)
		assert.Equal(t, int64(45), out.Pagination.Total)
		assert.True(t, out.Pagination.HasMore)
	})
}
