package config

import (
	"time"

	"github.com/caarlos0/env/v10"
)

// Config holds all application configuration.
type Config struct {
	// Ledger
	LedgerFile     string   `env:"LEDGER_FILE"     envDefault:"ledger.json"`
	HomeCurrencies []string `env:"HOME_CURRENCIES" envDefault:"EUR,USD,CHF,GBP" envSeparator:","`
	SaveAfterFix   bool     `env:"SAVE_AFTER_FIX"  envDefault:"false"`

	// HTTP Server
	HTTPPort            string        `env:"HTTP_PORT"             envDefault:"8080"`
	HTTPReadTimeout     time.Duration `env:"HTTP_READ_TIMEOUT"     envDefault:"30s"`
	HTTPWriteTimeout    time.Duration `env:"HTTP_WRITE_TIMEOUT"    envDefault:"30s"`
	HTTPIdleTimeout     time.Duration `env:"HTTP_IDLE_TIMEOUT"     envDefault:"60s"`
	HTTPShutdownTimeout time.Duration `env:"HTTP_SHUTDOWN_TIMEOUT" envDefault:"10s"`

	// Fix endpoint rate limiting, per client address
	FixRateLimit float64 `env:"FIX_RATE_LIMIT" envDefault:"5"`
	FixRateBurst int     `env:"FIX_RATE_BURST" envDefault:"10"`

	// Logging
	LogLevel  string `env:"LOG_LEVEL"  envDefault:"info"`
	LogFormat string `env:"LOG_FORMAT" envDefault:"json"`

	// Metrics
	MetricsEnabled bool `env:"METRICS_ENABLED" envDefault:"true"`
}

// Load loads configuration from environment variables.
func Load() (*Config, error) {
	cfg := &Config{}
	err := env.Parse(cfg)
	if err != nil {
		return nil, err
	}

	return cfg, nil
}
