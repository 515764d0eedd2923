package dto

import "github.com/shopspring/decimal"

// ServiceType distinguishes how a booking was sold
type ServiceType string

const (
	ServiceTypeOneOff       ServiceType = "one_off"
	ServiceTypeSubscription ServiceType = "subscription"
)

// ServiceFinancials is the financial snapshot of a completed booking,
// handed to the payout calculator by the booking system. It is an
// immutable input constructed fresh per calculation.
type ServiceFinancials struct {
	GrossAmount decimal.Decimal `json:"gross_amount"`
	ServiceType ServiceType     `json:"service_type" validate:"required,oneof=one_off subscription"`

	// CommissionPercent applies to one-off bookings; nil means the
	// configured default.
	CommissionPercent *decimal.Decimal `json:"commission_percent,omitempty"`

	// ProviderFee is the fixed provider amount for subscription
	// bookings; required for that type.
	ProviderFee *decimal.Decimal `json:"provider_fee,omitempty"`

	IsEmergency bool `json:"is_emergency"`
}

// PayoutCalculation is the exact decomposition of a gross booking
// amount: GrossAmount = PlatformCommission + IncomeTax + WithholdingTax
// + NetPayout, with no leftover remainder.
type PayoutCalculation struct {
	GrossAmount        decimal.Decimal `json:"gross_amount"`
	PlatformCommission decimal.Decimal `json:"platform_commission"`
	IncomeTax          decimal.Decimal `json:"income_tax"`
	WithholdingTax     decimal.Decimal `json:"withholding_tax"`
	NetPayout          decimal.Decimal `json:"net_payout"`
}
