// Package config loads process configuration from the environment, with an
// optional .env file for local runs.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/joeshaw/envdecode"
	"github.com/joho/godotenv"

	id "propex/pkg/domain"
)

// Server captures HTTP server level configuration.
type Server struct {
	Addr          string        `env:"PROPEX_ADDR,default=:8080"`
	AdminToken    string        `env:"PROPEX_ADMIN_TOKEN"`
	JWTSigningKey string        `env:"JWT_SIGNING_KEY,default=dev-secret-key-change-in-production"`
	JWTIssuer     string        `env:"JWT_ISSUER,default=propex"`
	JWTAudience   string        `env:"JWT_AUDIENCE,default=propex-api"`
	ShutdownGrace time.Duration `env:"PROPEX_SHUTDOWN_GRACE,default=15s"`
}

// Database configures Postgres. An empty URL selects in-memory stores.
type Database struct {
	URL          string        `env:"DATABASE_URL"`
	MaxOpenConns int           `env:"DATABASE_MAX_OPEN_CONNS,default=20"`
	MaxIdleConns int           `env:"DATABASE_MAX_IDLE_CONNS,default=5"`
	ConnMaxLife  time.Duration `env:"DATABASE_CONN_MAX_LIFETIME,default=30m"`
}

// RedisConfig configures the action lock backend. An empty URL selects the
// in-process lock.
type RedisConfig struct {
	URL          string        `env:"REDIS_URL"`
	PoolSize     int           `env:"REDIS_POOL_SIZE,default=10"`
	MinIdleConns int           `env:"REDIS_MIN_IDLE_CONNS,default=2"`
	DialTimeout  time.Duration `env:"REDIS_DIAL_TIMEOUT,default=5s"`
	ReadTimeout  time.Duration `env:"REDIS_READ_TIMEOUT,default=3s"`
	WriteTimeout time.Duration `env:"REDIS_WRITE_TIMEOUT,default=3s"`
}

// Partner configures the custodial wallet/banking partner client.
type Partner struct {
	BaseURL   string        `env:"PARTNER_BASE_URL,default=http://localhost:8090"`
	APIKey    string        `env:"PARTNER_API_KEY"`
	APISecret string        `env:"PARTNER_API_SECRET"`
	RPS       float64       `env:"PARTNER_RPS,default=5"`
	Burst     int           `env:"PARTNER_BURST,default=1"`
	Timeout   time.Duration `env:"PARTNER_TIMEOUT,default=15s"`
	// IdempotencySecret keys the Idempotency-Key derivation for money moves.
	IdempotencySecret string `env:"PARTNER_IDEMPOTENCY_SECRET"`
	// IdempotencySecretShared is set when IdempotencySecret fell back to the
	// API secret.
	IdempotencySecretShared bool
}

// Wallets configures the required wallet set per role.
type Wallets struct {
	// BaseCurrenciesRaw is separated by ";" or ",". The tag default uses ";"
	// because envdecode splits tag options on commas.
	BaseCurrenciesRaw  string `env:"WALLET_BASE_CURRENCIES,default=BTC;ETH;USDT;USDC"`
	SettlementCurrency string `env:"WALLET_SETTLEMENT_CURRENCY,default=EUR"`

	BaseCurrencies []id.Currency
	Settlement     id.Currency
}

// Sweep configures the periodic wallet reconciliation sweep.
type Sweep struct {
	Schedule       string        `env:"SWEEP_SCHEDULE,default=@every 1h"`
	Enabled        bool          `env:"SWEEP_ENABLED,default=true"`
	InterUserDelay time.Duration `env:"SWEEP_INTER_USER_DELAY,default=1s"`
	PerUserTimeout time.Duration `env:"SWEEP_PER_USER_TIMEOUT,default=30s"`
}

// FundProtection configures plan building and action execution.
type FundProtection struct {
	// CryptoLegPolicy is "skip" or "require".
	CryptoLegPolicy string        `env:"CRYPTO_LEG_POLICY,default=skip"`
	ActionLockTTL   time.Duration `env:"ACTION_LOCK_TTL,default=60s"`
}

// Audit configures optional Kafka forwarding of audit events.
type Audit struct {
	KafkaBrokersRaw string `env:"AUDIT_KAFKA_BROKERS"`
	KafkaTopic      string `env:"AUDIT_KAFKA_TOPIC,default=propex.audit"`
	AsyncBuffer     int    `env:"AUDIT_ASYNC_BUFFER,default=1024"`

	KafkaBrokers []string
}

// Log configures the slog handler.
type Log struct {
	Format string `env:"LOG_FORMAT,default=json"`
	Level  string `env:"LOG_LEVEL,default=info"`
}

type Config struct {
	Server         Server
	Database       Database
	Redis          RedisConfig
	Partner        Partner
	Wallets        Wallets
	Sweep          Sweep
	FundProtection FundProtection
	Audit          Audit
	Log            Log
}

// Load reads an optional .env file, then decodes the environment.
func Load(envFiles ...string) (*Config, error) {
	// A missing .env is normal outside local development.
	_ = godotenv.Load(envFiles...)

	var cfg Config
	if err := envdecode.Decode(&cfg); err != nil && !errors.Is(err, envdecode.ErrNoTargetFieldsAreSet) {
		return nil, fmt.Errorf("decode environment: %w", err)
	}
	if err := cfg.finalize(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) finalize() error {
	base, err := id.ParseCurrencies(c.Wallets.BaseCurrenciesRaw)
	if err != nil {
		return fmt.Errorf("WALLET_BASE_CURRENCIES: %w", err)
	}
	if len(base) == 0 {
		return errors.New("WALLET_BASE_CURRENCIES must list at least one currency")
	}
	settlement, err := id.ParseCurrency(c.Wallets.SettlementCurrency)
	if err != nil {
		return fmt.Errorf("WALLET_SETTLEMENT_CURRENCY: %w", err)
	}
	for _, cur := range base {
		if cur == settlement {
			return errors.New("settlement currency must not appear in the base wallet set")
		}
	}
	c.Wallets.BaseCurrencies = base
	c.Wallets.Settlement = settlement

	switch c.FundProtection.CryptoLegPolicy {
	case "skip", "require":
	default:
		return fmt.Errorf("CRYPTO_LEG_POLICY must be skip or require, got %q", c.FundProtection.CryptoLegPolicy)
	}

	for _, b := range strings.Split(c.Audit.KafkaBrokersRaw, ",") {
		if b = strings.TrimSpace(b); b != "" {
			c.Audit.KafkaBrokers = append(c.Audit.KafkaBrokers, b)
		}
	}

	if c.Partner.IdempotencySecret == "" {
		c.Partner.IdempotencySecret = c.Partner.APISecret
		c.Partner.IdempotencySecretShared = true
	}
	return nil
}
