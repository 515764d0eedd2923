package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/servease/payout-service/internal/domain/dto"
	domainErrors "github.com/servease/payout-service/internal/domain/errors"
	"github.com/servease/payout-service/internal/domain/model"
	"github.com/servease/payout-service/internal/domain/provider"
	"github.com/servease/payout-service/internal/domain/repository"
)

// PayoutService owns the payout record lifecycle: creation with the
// duplicate-booking guard, disbursement, retries, approval and
// scheduling
type PayoutService struct {
	payoutRepo          repository.PayoutRepository
	calculator          *PayoutCalculator
	disburser           provider.DisbursementProvider
	notifier            provider.Notifier
	logger              *zap.Logger
	locks               *entityLocks
	maxRetries          int
	disbursementTimeout time.Duration
	currency            string
}

// NewPayoutService creates a new payout service
func NewPayoutService(
	payoutRepo repository.PayoutRepository,
	calculator *PayoutCalculator,
	disburser provider.DisbursementProvider,
	notifier provider.Notifier,
	logger *zap.Logger,
	maxRetries int,
	disbursementTimeout time.Duration,
	currency string,
) *PayoutService {
	if maxRetries <= 0 {
		maxRetries = 3
	}
	if disbursementTimeout <= 0 {
		disbursementTimeout = 15 * time.Second
	}
	return &PayoutService{
		payoutRepo:          payoutRepo,
		calculator:          calculator,
		disburser:           disburser,
		notifier:            notifier,
		logger:              logger,
		locks:               newEntityLocks(),
		maxRetries:          maxRetries,
		disbursementTimeout: disbursementTimeout,
		currency:            currency,
	}
}

// CreatePayout computes the payout breakdown for a completed booking
// set and persists a pending payout. The booking claims are inserted in
// the same database transaction, so two concurrent calls naming the
// same booking cannot both succeed.
func (s *PayoutService) CreatePayout(ctx context.Context, req dto.CreatePayoutRequest) (*model.Payout, error) {
	calc, err := s.calculator.Calculate(req.Financials)
	if err != nil {
		return nil, err
	}

	payout := &model.Payout{
		ID:                 uuid.NewString(),
		ProviderID:         req.ProviderID,
		ProviderName:       req.ProviderName,
		GrossAmount:        calc.GrossAmount,
		PlatformCommission: calc.PlatformCommission,
		IncomeTax:          calc.IncomeTax,
		WithholdingTax:     calc.WithholdingTax,
		NetPayout:          calc.NetPayout,
		Status:             model.PayoutStatusPending,
		PaymentMethod:      req.PaymentMethod,
		Type:               req.Type,
		UrgencyLevel:       req.Urgency,
	}
	if payout.PaymentMethod == "" {
		payout.PaymentMethod = "bank_transfer"
	}
	if payout.Type == "" {
		payout.Type = model.PayoutTypeWeeklyAuto
	}
	if payout.UrgencyLevel == "" {
		payout.UrgencyLevel = model.UrgencyNormal
	}
	// An emergency booking always yields an emergency payout, whatever
	// the caller asked for.
	if req.Financials.IsEmergency {
		payout.UrgencyLevel = model.UrgencyEmergency
	}
	for _, bookingID := range req.BookingIDs {
		payout.Claims = append(payout.Claims, model.BookingClaim{
			BookingID: bookingID,
			Active:    true,
		})
	}

	if err := s.payoutRepo.CreateWithClaims(ctx, payout); err != nil {
		return nil, err
	}

	s.logger.Info("payout created",
		zap.String("payout_id", payout.ID),
		zap.String("provider_id", payout.ProviderID),
		zap.String("net_payout", payout.NetPayout.String()),
		zap.Int("booking_count", len(payout.Claims)))

	return payout, nil
}

// ProcessPayout releases a pending payout through the disbursement
// channel. A concurrent second caller does not disburse again: it
// observes whatever state the first caller produced. Disbursement
// failure is not returned as an error; it is visible on the payout as
// status failed with a failure reason.
func (s *PayoutService) ProcessPayout(ctx context.Context, id string) (*model.Payout, error) {
	unlock := s.locks.acquire(id)
	defer unlock()

	payout, err := s.payoutRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	switch payout.Status {
	case model.PayoutStatusProcessing, model.PayoutStatusCompleted:
		// Already being (or been) disbursed; report the current state.
		return payout, nil
	case model.PayoutStatusFailed:
		return nil, domainErrors.NewInvalidStateTransitionError("payout", id, string(payout.Status), "process")
	}

	claimed, err := s.payoutRepo.ClaimProcessing(ctx, id)
	if err != nil {
		return nil, err
	}
	if !claimed {
		// Another operator won the transition; observe their outcome.
		return s.payoutRepo.GetByID(ctx, id)
	}

	return s.disburse(ctx, payout)
}

// RetryFailedPayout re-runs disbursement for a failed payout, bounded
// by the configured retry budget
func (s *PayoutService) RetryFailedPayout(ctx context.Context, id string) (*model.Payout, error) {
	unlock := s.locks.acquire(id)
	defer unlock()

	payout, err := s.payoutRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if payout.Status != model.PayoutStatusFailed {
		return nil, domainErrors.NewInvalidStateTransitionError("payout", id, string(payout.Status), "retry")
	}
	if payout.RetryCount >= s.maxRetries {
		return nil, domainErrors.NewMaxRetriesExceededError(id, payout.RetryCount, s.maxRetries)
	}

	reclaimed, err := s.payoutRepo.ReclaimForRetry(ctx, id)
	if err != nil {
		return nil, err
	}
	if !reclaimed {
		return nil, domainErrors.NewInvalidStateTransitionError("payout", id, string(payout.Status), "retry")
	}

	s.logger.Info("retrying failed payout",
		zap.String("payout_id", id),
		zap.Int("attempt", payout.RetryCount+1))

	return s.disburse(ctx, payout)
}

// disburse calls the payment rail under the configured timeout and
// records the outcome on the payout record
func (s *PayoutService) disburse(ctx context.Context, payout *model.Payout) (*model.Payout, error) {
	callCtx, cancel := context.WithTimeout(ctx, s.disbursementTimeout)
	defer cancel()

	result, err := s.disburser.Disburse(callCtx, &provider.DisbursementRequest{
		PayoutID:      payout.ID,
		ProviderID:    payout.ProviderID,
		Amount:        payout.NetPayout,
		Currency:      s.currency,
		PaymentMethod: payout.PaymentMethod,
	})
	if err != nil {
		disbErr := domainErrors.NewDisbursementError(payout.ProviderID, payout.NetPayout, err.Error())
		s.logger.Warn("disbursement failed",
			zap.String("payout_id", payout.ID),
			zap.String("channel", s.disburser.GetProviderName()),
			zap.Error(disbErr))
		if markErr := s.payoutRepo.MarkFailed(ctx, payout.ID, err.Error()); markErr != nil {
			return nil, fmt.Errorf("failed to record disbursement failure: %w", markErr)
		}
		return s.payoutRepo.GetByID(ctx, payout.ID)
	}

	if err := s.payoutRepo.MarkCompleted(ctx, payout.ID, result.PaymentReference); err != nil {
		return nil, fmt.Errorf("failed to record disbursement success: %w", err)
	}

	s.logger.Info("payout disbursed",
		zap.String("payout_id", payout.ID),
		zap.String("payment_reference", result.PaymentReference),
		zap.String("channel", s.disburser.GetProviderName()))

	return s.payoutRepo.GetByID(ctx, payout.ID)
}

// ApprovePayout records the admin's sign-off and resets the payout to
// pending; approval gates processing, it is not a terminal state
func (s *PayoutService) ApprovePayout(ctx context.Context, id, approvedBy string) (*model.Payout, error) {
	unlock := s.locks.acquire(id)
	defer unlock()

	approved, err := s.payoutRepo.Approve(ctx, id, approvedBy)
	if err != nil {
		return nil, err
	}
	if !approved {
		payout, getErr := s.payoutRepo.GetByID(ctx, id)
		if getErr != nil {
			return nil, getErr
		}
		return nil, domainErrors.NewInvalidStateTransitionError("payout", id, string(payout.Status), "approve")
	}

	payout, err := s.payoutRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	// Best-effort notification; the approval itself is already durable.
	if err := s.notifier.Notify(ctx, payout.ProviderID, "payout_approved", map[string]interface{}{
		"payout_id":  payout.ID,
		"net_payout": payout.NetPayout.String(),
	}); err != nil {
		s.logger.Warn("payout approval notification failed",
			zap.String("payout_id", id),
			zap.Error(err))
	}

	return payout, nil
}

// SchedulePayout sets a release date and marks the payout manual; the
// status is left untouched
func (s *PayoutService) SchedulePayout(ctx context.Context, id string, date time.Time) (*model.Payout, error) {
	unlock := s.locks.acquire(id)
	defer unlock()

	if _, err := s.payoutRepo.GetByID(ctx, id); err != nil {
		return nil, err
	}
	if err := s.payoutRepo.Schedule(ctx, id, date); err != nil {
		return nil, err
	}
	return s.payoutRepo.GetByID(ctx, id)
}

// GetPayout retrieves a single payout with its booking claims
func (s *PayoutService) GetPayout(ctx context.Context, id string) (*model.Payout, error) {
	return s.payoutRepo.GetByID(ctx, id)
}

// ListPayouts retrieves payouts with pagination, optionally narrowed by
// provider and status
func (s *PayoutService) ListPayouts(ctx context.Context, filters dto.PayoutFilters) (*dto.PayoutListResponse, error) {
	filters.SetDefaults()

	payouts, err := s.payoutRepo.List(ctx, filters)
	if err != nil {
		return nil, fmt.Errorf("failed to list payouts: %w", err)
	}
	total, err := s.payoutRepo.Count(ctx, filters)
	if err != nil {
		return nil, fmt.Errorf("failed to count payouts: %w", err)
	}

	return &dto.PayoutListResponse{
		Payouts: payouts,
		Pagination: dto.PaginationInfo{
			Total:   total,
			Limit:   filters.Limit,
			Offset:  filters.Offset,
			HasMore: int64(filters.Offset+filters.Limit) < total,
		},
	}, nil
}
