package config

import (
	"errors"
	"fmt"

	env "github.com/caarlos0/env/v11"

	"github.com/josh-kwaku/ledger-mapping-engine/internal/domain"
)

type Config struct {
	DatabaseURL string `env:"DATABASE_URL,required"`
	JWTSecret   string `env:"JWT_SECRET,required"`
	Port        int    `env:"PORT" envDefault:"8080"`
	LogLevel    string `env:"LOG_LEVEL" envDefault:"info"`
	AppEnv      string `env:"APP_ENV" envDefault:"production"`

	BulkApplyThreshold float64         `env:"BULK_APPLY_THRESHOLD" envDefault:"0.85"`
	BulkApplyMode      domain.BulkMode `env:"BULK_APPLY_MODE" envDefault:"best_effort"`
	SynonymsFile       string          `env:"SYNONYMS_FILE"`
	IdempotencyTTLH    int             `env:"IDEMPOTENCY_TTL_H" envDefault:"24"`

	DBMaxOpenConns     int `env:"DB_MAX_OPEN_CONNS" envDefault:"25"`
	DBMaxIdleConns     int `env:"DB_MAX_IDLE_CONNS" envDefault:"10"`
	DBConnMaxLifetimeS int `env:"DB_CONN_MAX_LIFETIME_S" envDefault:"300"`
	DBConnMaxIdleTimeS int `env:"DB_CONN_MAX_IDLE_TIME_S" envDefault:"60"`
	DBConnectAttempts  int `env:"DB_CONNECT_ATTEMPTS" envDefault:"30"`
}

func Load() (*Config, error) {
	cfg, err := env.ParseAs[Config]()
	if err != nil {
		return nil, fmt.Errorf("config.Load: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config.Load: %w", err)
	}
	return &cfg, nil
}

func (c Config) Validate() error {
	var errs []error
	if c.BulkApplyThreshold < 0 || c.BulkApplyThreshold > 1 {
		errs = append(errs, fmt.Errorf("BULK_APPLY_THRESHOLD=%v: %w", c.BulkApplyThreshold, domain.ErrInvalidThreshold))
	}
	if !c.BulkApplyMode.IsValid() {
		errs = append(errs, fmt.Errorf("BULK_APPLY_MODE=%q: %w", c.BulkApplyMode, domain.ErrInvalidBulkMode))
	}
	if c.IdempotencyTTLH <= 0 {
		errs = append(errs, fmt.Errorf("IDEMPOTENCY_TTL_H must be positive, got %d", c.IdempotencyTTLH))
	}
	return errors.Join(errs...)
}
