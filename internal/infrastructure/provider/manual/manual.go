package manual

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/servease/payout-service/internal/domain/provider"
)

// FailureHook lets deployments (and tests) inject transfer failures. A
// nil hook means every transfer is accepted.
type FailureHook func(req *provider.DisbursementRequest) error

// Provider records manual bank transfers. It does not move money; it
// issues the reference an operator attaches to the transfer they make
// out-of-band.
type Provider struct {
	logger *zap.Logger
	hook   FailureHook
}

// NewProvider creates the manual bank-transfer provider
func NewProvider(logger *zap.Logger, hook FailureHook) *Provider {
	return &Provider{
		logger: logger,
		hook:   hook,
	}
}

// Disburse issues a bank transfer reference for the payout. The
// reference is derived from the payout id, so a retried call after a
// crash reissues the same reference instead of minting a new one.
func (p *Provider) Disburse(ctx context.Context, req *provider.DisbursementRequest) (*provider.DisbursementResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("disbursement aborted: %w", err)
	}
	if p.hook != nil {
		if err := p.hook(req); err != nil {
			p.logger.Warn("Manual transfer rejected",
				zap.String("payout_id", req.PayoutID),
				zap.Error(err))
			return nil, err
		}
	}

	sum := sha256.Sum256([]byte(req.PayoutID))
	reference := "BT-" + strings.ToUpper(hex.EncodeToString(sum[:6]))

	p.logger.Info("Manual bank transfer recorded",
		zap.String("payout_id", req.PayoutID),
		zap.String("reference", reference),
		zap.String("amount", req.Amount.String()))

	return &provider.DisbursementResult{PaymentReference: reference}, nil
}

// GetProviderName returns the channel name
func (p *Provider) GetProviderName() string {
	return "manual"
}
