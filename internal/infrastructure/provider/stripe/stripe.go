package stripe

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"
	stripego "github.com/stripe/stripe-go/v79"
	"github.com/stripe/stripe-go/v79/transfer"
	"go.uber.org/zap"

	"github.com/servease/payout-service/internal/domain/provider"
)

// minorUnits converts major currency units to the cents Stripe expects
var minorUnits = decimal.NewFromInt(100)

// Provider disburses payouts as Stripe transfers to connected accounts
type Provider struct {
	logger *zap.Logger
}

// NewProvider configures the Stripe client and returns the provider
func NewProvider(secretKey string, logger *zap.Logger) *Provider {
	stripego.Key = secretKey
	return &Provider{logger: logger}
}

// Disburse creates a transfer to the provider's connected account. The
// payout id doubles as the idempotency key, so a timed-out call retried
// later cannot move the money twice.
func (p *Provider) Disburse(ctx context.Context, req *provider.DisbursementRequest) (*provider.DisbursementResult, error) {
	params := &stripego.TransferParams{
		Amount:      stripego.Int64(req.Amount.Mul(minorUnits).IntPart()),
		Currency:    stripego.String(req.Currency),
		Destination: stripego.String(req.ProviderID),
	}
	params.Context = ctx
	params.SetIdempotencyKey(req.PayoutID)
	params.AddMetadata("payout_id", req.PayoutID)

	tr, err := transfer.New(params)
	if err != nil {
		p.logger.Warn("Stripe transfer failed",
			zap.String("payout_id", req.PayoutID),
			zap.String("destination", req.ProviderID),
			zap.Error(err))
		return nil, fmt.Errorf("stripe transfer failed: %w", err)
	}

	p.logger.Info("Stripe transfer created",
		zap.String("payout_id", req.PayoutID),
		zap.String("transfer_id", tr.ID))

	return &provider.DisbursementResult{PaymentReference: tr.ID}, nil
}

// GetProviderName returns the channel name
func (p *Provider) GetProviderName() string {
	return "stripe"
}
