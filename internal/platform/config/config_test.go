package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	id "propex/pkg/domain"
)

type ConfigSuite struct {
	suite.Suite
}

func TestConfigSuite(t *testing.T) {
	suite.Run(t, new(ConfigSuite))
}

func (s *ConfigSuite) TestDefaults() {
	cfg, err := Load("testdata/does-not-exist.env")
	s.Require().NoError(err)

	s.Equal(":8080", cfg.Server.Addr)
	s.Equal([]id.Currency{"BTC", "ETH", "USDT", "USDC"}, cfg.Wallets.BaseCurrencies)
	s.Equal(id.CurrencyEUR, cfg.Wallets.Settlement)
	s.Equal("@every 1h", cfg.Sweep.Schedule)
	s.Equal(time.Second, cfg.Sweep.InterUserDelay)
	s.Equal("skip", cfg.FundProtection.CryptoLegPolicy)
	s.Empty(cfg.Audit.KafkaBrokers)
}

func (s *ConfigSuite) TestOverrides() {
	s.T().Setenv("WALLET_BASE_CURRENCIES", "btc, eth")
	s.T().Setenv("CRYPTO_LEG_POLICY", "require")
	s.T().Setenv("AUDIT_KAFKA_BROKERS", "k1:9092, k2:9092")
	s.T().Setenv("PARTNER_API_SECRET", "shh")
	s.T().Setenv("SWEEP_INTER_USER_DELAY", "250ms")

	cfg, err := Load("testdata/does-not-exist.env")
	s.Require().NoError(err)

	s.Equal([]id.Currency{id.CurrencyBTC, id.CurrencyETH}, cfg.Wallets.BaseCurrencies)
	s.Equal("require", cfg.FundProtection.CryptoLegPolicy)
	s.Equal([]string{"k1:9092", "k2:9092"}, cfg.Audit.KafkaBrokers)
	s.Equal("shh", cfg.Partner.IdempotencySecret, "idempotency secret falls back to API secret")
	s.True(cfg.Partner.IdempotencySecretShared)
	s.Equal(250*time.Millisecond, cfg.Sweep.InterUserDelay)
}

func (s *ConfigSuite) TestRejectsInvalidValues() {
	s.Run("unknown crypto leg policy", func() {
		s.T().Setenv("CRYPTO_LEG_POLICY", "maybe")
		_, err := Load("testdata/does-not-exist.env")
		s.Error(err)
	})

	s.Run("settlement currency in base set", func() {
		s.T().Setenv("WALLET_BASE_CURRENCIES", "BTC,EUR")
		_, err := Load("testdata/does-not-exist.env")
		s.Error(err)
	})

	s.Run("malformed currency", func() {
		s.T().Setenv("WALLET_BASE_CURRENCIES", "B1C")
		_, err := Load("testdata/does-not-exist.env")
		s.Error(err)
	})
}
