package config

// FinanceConfig carries the jurisdiction-specific rates applied when a
// payout is computed. Rates are configuration, not code constants, so
// tax rule changes never require a code edit.
type FinanceConfig struct {
	// DefaultCommissionPercent applies to one-off bookings that carry
	// no explicit commission percentage.
	DefaultCommissionPercent float64 `yaml:"default_commission_percent"`

	// IncomeTaxRate and WithholdingTaxRate are fractions (0.03 = 3%)
	// applied to the provider's net pre-tax earnings.
	IncomeTaxRate      float64 `yaml:"income_tax_rate"`
	WithholdingTaxRate float64 `yaml:"withholding_tax_rate"`

	// MaxPayoutRetries bounds RetryFailedPayout attempts per payout.
	MaxPayoutRetries int `yaml:"max_payout_retries"`

	// Currency is the ISO code passed to the disbursement channel.
	Currency string `yaml:"currency"`
}
