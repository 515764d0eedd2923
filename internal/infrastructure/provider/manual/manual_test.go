package manual

import (
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"

	"github.com/servease/payout-service/internal/domain/provider"
)

func TestProvider_Disburse(t *testing.T) {
	req := &provider.DisbursementRequest{
		PayoutID:      "payout-1",
		ProviderID:    "provider-1",
		Amount:        decimal.RequireFromString("121.12"),
		Currency:      "USD",
		PaymentMethod: "bank_transfer",
	}

	t.Run("issues a stable reference per payout", func(t *testing.T) {
		p := NewProvider(zap.NewNop(), nil)

		first, err := p.Disburse(context.Background(), req)
		assert.NoError(t, err)
		second, err := p.Disburse(context.Background(), req)
		assert.NoError(t, err)

		assert.Equal(t, first.PaymentReference, second.PaymentReference)
		assert.Contains(t, first.PaymentReference, "BT-")
	})

	t.Run("different payouts get different references", func(t *testing.T) {
		p := NewProvider(zap.NewNop(), nil)

		first, err := p.Disburse(context.Background(), req)
		assert.NoError(t, err)

		other := *req
		other.PayoutID = "payout-2"
		second, err := p.Disburse(context.Background(), &other)
		assert.NoError(t, err)

		assert.NotEqual(t, first.PaymentReference, second.PaymentReference)
	})

	t.Run("the failure hook rejects the transfer", func(t *testing.T) {
		hookErr := errors.New("bank rail offline")
		p := NewProvider(zap.NewNop(), func(*provider.DisbursementRequest) error {
			return hookErr
		})

		_, err := p.Disburse(context.Background(), req)
		assert.ErrorIs(t, err, hookErr)
	})

	t.Run("a cancelled context aborts the transfer", func(t *testing.T) {
		p := NewProvider(zap.NewNop(), nil)
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		_, err := p.Disburse(ctx, req)
		assert.ErrorIs(t, err, context.Canceled)
	})
}
