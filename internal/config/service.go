package config

import "time"

type ServiceConfig struct {
	Name        string `yaml:"name"`
	Environment string `yaml:"environment"`
	Version     string `yaml:"version"`
	JWTSecret   string `yaml:"jwt_secret"`

	// Provider selects the disbursement channel implementation
	// ("stripe" or "manual").
	Provider string       `yaml:"provider"`
	Stripe   StripeConfig `yaml:"stripe"`

	// DisbursementTimeout bounds a single call to the disbursement
	// channel. A timed-out call is recorded as a failed payout, never
	// left pending.
	DisbursementTimeout time.Duration `yaml:"disbursement_timeout"`

	Messaging MessagingConfig `yaml:"messaging"`
}

type StripeConfig struct {
	SecretKey string `yaml:"secret_key"`
}

type MessagingConfig struct {
	URL           string        `yaml:"url"`
	Exchange      string        `yaml:"exchange"`
	FlushInterval time.Duration `yaml:"flush_interval"`
}
