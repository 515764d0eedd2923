package usecase

import (
	"github.com/shopspring/decimal"

	"github.com/servease/payout-service/internal/config"
	"github.com/servease/payout-service/internal/domain/dto"
	domainErrors "github.com/servease/payout-service/internal/domain/errors"
)

var (
	hundred = decimal.NewFromInt(100)
	one     = decimal.NewFromInt(1)
)

// PayoutCalculator converts a booking's gross amount into the exact
// payout decomposition. It holds only immutable rates, so Calculate is
// a pure function: safe for speculative calls (previews) and trivially
// testable.
type PayoutCalculator struct {
	defaultCommissionPercent decimal.Decimal
	incomeTaxRate            decimal.Decimal
	withholdingTaxRate       decimal.Decimal
}

// NewPayoutCalculator validates the configured rate table and builds a
// calculator from it
func NewPayoutCalculator(cfg config.FinanceConfig) (*PayoutCalculator, error) {
	defaultCommission := decimal.NewFromFloat(cfg.DefaultCommissionPercent)
	incomeRate := decimal.NewFromFloat(cfg.IncomeTaxRate)
	withholdingRate := decimal.NewFromFloat(cfg.WithholdingTaxRate)

	if defaultCommission.IsNegative() || defaultCommission.GreaterThan(hundred) {
		return nil, domainErrors.NewInvalidConfigurationError("default_commission_percent", "must be between 0 and 100")
	}
	if incomeRate.IsNegative() || withholdingRate.IsNegative() {
		return nil, domainErrors.NewInvalidConfigurationError("tax_rates", "must not be negative")
	}
	if incomeRate.Add(withholdingRate).GreaterThanOrEqual(one) {
		return nil, domainErrors.NewInvalidConfigurationError("tax_rates", "combined rate must be below 100%")
	}

	return &PayoutCalculator{
		defaultCommissionPercent: defaultCommission,
		incomeTaxRate:            incomeRate,
		withholdingTaxRate:       withholdingRate,
	}, nil
}

// Calculate decomposes the gross amount into commission, taxes and net
// payout. The parts always sum back to the gross amount exactly: the
// commission and both taxes are rounded to currency precision and the
// net payout is derived by subtraction.
func (c *PayoutCalculator) Calculate(in dto.ServiceFinancials) (dto.PayoutCalculation, error) {
	if !in.GrossAmount.IsPositive() {
		return dto.PayoutCalculation{}, domainErrors.NewInvalidConfigurationError("gross_amount", "must be positive")
	}

	var commission decimal.Decimal
	switch in.ServiceType {
	case dto.ServiceTypeSubscription:
		if in.ProviderFee == nil || !in.ProviderFee.IsPositive() {
			return dto.PayoutCalculation{}, domainErrors.NewInvalidConfigurationError("provider_fee", "is required and must be positive for subscription services")
		}
		if in.ProviderFee.GreaterThan(in.GrossAmount) {
			// A fee above gross would force a negative commission;
			// surface it instead of clamping silently.
			return dto.PayoutCalculation{}, domainErrors.NewInvalidConfigurationError("provider_fee", "exceeds the gross amount")
		}
		commission = in.GrossAmount.Sub(in.ProviderFee.Round(2))
	case dto.ServiceTypeOneOff:
		percent := c.defaultCommissionPercent
		if in.CommissionPercent != nil {
			percent = *in.CommissionPercent
		}
		if percent.IsNegative() || percent.GreaterThan(hundred) {
			return dto.PayoutCalculation{}, domainErrors.NewInvalidConfigurationError("commission_percent", "must be between 0 and 100")
		}
		commission = in.GrossAmount.Mul(percent).Div(hundred).Round(2)
	default:
		return dto.PayoutCalculation{}, domainErrors.NewInvalidConfigurationError("service_type", "must be one_off or subscription")
	}

	netPreTax := in.GrossAmount.Sub(commission)
	incomeTax := netPreTax.Mul(c.incomeTaxRate).Round(2)
	withholdingTax := netPreTax.Mul(c.withholdingTaxRate).Round(2)
	netPayout := netPreTax.Sub(incomeTax).Sub(withholdingTax)

	return dto.PayoutCalculation{
		GrossAmount:        in.GrossAmount,
		PlatformCommission: commission,
		IncomeTax:          incomeTax,
		WithholdingTax:     withholdingTax,
		NetPayout:          netPayout,
	}, nil
}
