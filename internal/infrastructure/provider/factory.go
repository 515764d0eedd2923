package provider

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/servease/payout-service/internal/config"
	"github.com/servease/payout-service/internal/domain/provider"
	"github.com/servease/payout-service/internal/infrastructure/provider/manual"
	"github.com/servease/payout-service/internal/infrastructure/provider/stripe"
)

// NewDisbursementProvider selects the disbursement channel from
// configuration
func NewDisbursementProvider(cfg *config.ServiceConfig, logger *zap.Logger) (provider.DisbursementProvider, error) {
	switch cfg.Provider {
	case "stripe":
		if cfg.Stripe.SecretKey == "" {
			return nil, fmt.Errorf("stripe provider selected but stripe.secret_key is empty")
		}
		return stripe.NewProvider(cfg.Stripe.SecretKey, logger), nil
	case "manual", "":
		return manual.NewProvider(logger, nil), nil
	default:
		return nil, fmt.Errorf("unknown disbursement provider %q", cfg.Provider)
	}
}
