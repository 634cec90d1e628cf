package config

import (
	"flag"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/caarlos0/env/v11"
)

// Config holds client configuration loaded from environment and flags.
type Config struct {
	APIBaseURL string `env:"COMMERCE_API_URL"`
	AuthNext   string `env:"COMMERCE_AUTH_NEXT" envDefault:"/dashboard"`

	SessionTTL      time.Duration `env:"COMMERCE_SESSION_TTL" envDefault:"24h"`
	QueryStaleAfter time.Duration `env:"COMMERCE_QUERY_STALE_AFTER" envDefault:"5m"`

	PaymentPollInterval   time.Duration `env:"COMMERCE_PAYMENT_POLL_INTERVAL" envDefault:"1s"`
	PaymentPollLimit      int           `env:"COMMERCE_PAYMENT_POLL_LIMIT" envDefault:"30"`
	SignaturePollInterval time.Duration `env:"COMMERCE_SIGNATURE_POLL_INTERVAL" envDefault:"1500ms"`
	SignaturePollLimit    int           `env:"COMMERCE_SIGNATURE_POLL_LIMIT" envDefault:"45"`
	ArchivePollInterval   time.Duration `env:"COMMERCE_ARCHIVE_POLL_INTERVAL" envDefault:"1s"`
	ArchiveValidity       time.Duration `env:"COMMERCE_ARCHIVE_VALIDITY" envDefault:"10m"`

	HTTPTimeout     time.Duration `env:"COMMERCE_HTTP_TIMEOUT" envDefault:"10s"`
	HTTPRetryMax    int           `env:"COMMERCE_HTTP_RETRY_MAX" envDefault:"2"`
	ShutdownTimeout time.Duration `env:"COMMERCE_SHUTDOWN_TIMEOUT" envDefault:"10s"`

	Debug bool `env:"COMMERCE_DEBUG" envDefault:"false"`
}

const (
	defaultPaymentPollInterval   = time.Second
	defaultPaymentPollLimit      = 30
	defaultSignaturePollInterval = 1500 * time.Millisecond
	defaultSignaturePollLimit    = 45
	defaultArchivePollInterval   = time.Second
	defaultArchiveValidity       = 10 * time.Minute
)

// Load parses configuration from environment variables and flags.
func Load() (*Config, error) {
	return load(os.Args[1:], os.Environ())
}

func load(args []string, environ []string) (*Config, error) {
	cfg := &Config{}
	if err := env.ParseWithOptions(cfg, env.Options{Environment: env.ToMap(environ)}); err != nil {
		return nil, fmt.Errorf("parse environment: %w", err)
	}

	fs := flag.NewFlagSet("commerce", flag.ContinueOnError)
	fs.SetOutput(io.Discard)

	fs.StringVar(&cfg.APIBaseURL, "api-url", cfg.APIBaseURL, "Commerce API base URL")
	fs.BoolVar(&cfg.Debug, "debug", cfg.Debug, "Enable debug logging")

	if err := fs.Parse(args); err != nil {
		return nil, fmt.Errorf("parse flags: %w", err)
	}

	if cfg.PaymentPollInterval <= 0 {
		cfg.PaymentPollInterval = defaultPaymentPollInterval
	}
	if cfg.PaymentPollLimit <= 0 {
		cfg.PaymentPollLimit = defaultPaymentPollLimit
	}
	if cfg.SignaturePollInterval <= 0 {
		cfg.SignaturePollInterval = defaultSignaturePollInterval
	}
	if cfg.SignaturePollLimit <= 0 {
		cfg.SignaturePollLimit = defaultSignaturePollLimit
	}
	if cfg.ArchivePollInterval <= 0 {
		cfg.ArchivePollInterval = defaultArchivePollInterval
	}
	if cfg.ArchiveValidity <= 0 {
		cfg.ArchiveValidity = defaultArchiveValidity
	}

	if cfg.APIBaseURL == "" {
		return nil, fmt.Errorf("commerce API base URL must be provided")
	}

	return cfg, nil
}
