// Package reconcile makes sure every eligible user holds the wallets their
// role requires. Each currency is provisioned independently: one failure is
// recorded and the run moves on.
package reconcile

import (
	"context"
	"log/slog"
	"sync/atomic"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"

	"propex/internal/partner"
	"propex/internal/wallet/metrics"
	"propex/internal/wallet/models"
	id "propex/pkg/domain"
	"propex/pkg/platform/audit"
)

// Store is the wallet persistence the sweep reads and writes.
type Store interface {
	FindAccount(ctx context.Context, userID id.UserID) (*models.Account, error)
	ListEligibleAccounts(ctx context.Context, statuses []models.KYCStatus) ([]models.Account, error)
	ListWallets(ctx context.Context, userID id.UserID) ([]models.Wallet, error)
	SaveWallet(ctx context.Context, w *models.Wallet) error
	FindIBAN(ctx context.Context, userID id.UserID) (*models.DigitalIBAN, error)
	SaveIBAN(ctx context.Context, iban *models.DigitalIBAN) error
}

// Partner is the provisioning subset of the partner client.
type Partner interface {
	CreateWallet(ctx context.Context, partnerUserID, currency string) (*partner.Wallet, error)
	ListWallets(ctx context.Context, partnerUserID string) ([]partner.Wallet, error)
	ProvisionDigitalIBAN(ctx context.Context, partnerUserID string) (*partner.DigitalIBAN, error)
}

type AuditPublisher interface {
	Emit(ctx context.Context, event audit.Event) error
}

// Config fixes the required wallet set.
type Config struct {
	BaseCurrencies []id.Currency
	Settlement     id.Currency
}

type Service struct {
	store   Store
	partner Partner
	cfg     Config

	interUserDelay time.Duration
	perUserTimeout time.Duration
	now            func() time.Time
	running        atomic.Bool

	logger         *slog.Logger
	auditPublisher AuditPublisher
	metrics        *metrics.Metrics
	tracer         trace.Tracer
}

type Option func(*Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

func WithAuditPublisher(publisher AuditPublisher) Option {
	return func(s *Service) {
		s.auditPublisher = publisher
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) {
		s.metrics = m
	}
}

// WithInterUserDelay sets the pause between users in a sweep, keeping the
// sweep inside the partner's request budget.
func WithInterUserDelay(d time.Duration) Option {
	return func(s *Service) {
		s.interUserDelay = d
	}
}

// WithPerUserTimeout bounds one user's reconciliation inside a sweep.
func WithPerUserTimeout(d time.Duration) Option {
	return func(s *Service) {
		s.perUserTimeout = d
	}
}

func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		s.now = now
	}
}

func New(store Store, p Partner, cfg Config, opts ...Option) *Service {
	s := &Service{
		store:          store,
		partner:        p,
		cfg:            cfg,
		interUserDelay: time.Second,
		perUserTimeout: 30 * time.Second,
		now:            time.Now,
		tracer:         otel.Tracer("propex/wallet"),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}
