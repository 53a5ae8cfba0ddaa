// Package orchestrator drives a transaction's fulfillment plan: it builds the
// plan once, reports whose turn it is, and applies each party's action
// through the partner before recording the step as completed.
package orchestrator

import (
	"context"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"

	"propex/internal/fundprotection/lock"
	"propex/internal/fundprotection/metrics"
	"propex/internal/fundprotection/models"
	"propex/internal/fundprotection/plan"
	"propex/internal/partner"
	id "propex/pkg/domain"
	"propex/pkg/platform/audit"
	"propex/pkg/requestcontext"
)

type TransactionStore interface {
	SaveTransaction(ctx context.Context, tx *models.Transaction) error
	FindTransaction(ctx context.Context, txID id.TransactionID) (*models.Transaction, error)
	TransitionStatus(ctx context.Context, txID id.TransactionID, from []models.TransactionStatus, to models.TransactionStatus, at time.Time) error
}

type StepStore interface {
	ListSteps(ctx context.Context, txID id.TransactionID) (models.Plan, error)
	CreatePlan(ctx context.Context, txID id.TransactionID, steps models.Plan) error
	CompleteStep(ctx context.Context, txID id.TransactionID, stepNumber int, c models.StepCompletion) (*models.FulfillmentStep, error)
}

// TxRunner groups store writes into one unit of work.
type TxRunner interface {
	RunInTx(ctx context.Context, fn func(ctx context.Context) error) error
}

// Partner is the subset of the partner client that moves money for steps.
type Partner interface {
	GetBalance(ctx context.Context, walletID string) (*partner.Balance, error)
	TransferBetweenWallets(ctx context.Context, req partner.TransferRequest, idempotencyKey string) (*partner.Transfer, error)
	ConvertCurrency(ctx context.Context, req partner.ConvertRequest, idempotencyKey string) (*partner.Conversion, error)
	TransferToBank(ctx context.Context, req partner.BankTransferRequest, idempotencyKey string) (*partner.Transfer, error)
}

// BankDetails is the seller's payout account as shown to the buyer.
type BankDetails struct {
	IBAN          string `json:"iban"`
	BankName      string `json:"bank_name"`
	AccountNumber string `json:"account_number"`
}

// BankDirectory looks up where a user gets paid out. BankDetails returns
// nil, nil when the user has no digital IBAN; SettlementWalletRef returns ""
// when the user has no settlement-currency wallet.
type BankDirectory interface {
	BankDetails(ctx context.Context, userID id.UserID) (*BankDetails, error)
	SettlementWalletRef(ctx context.Context, userID id.UserID) (string, error)
}

type AuditPublisher interface {
	Emit(ctx context.Context, event audit.Event) error
}

// Service is the fund protection orchestrator.
type Service struct {
	transactions TransactionStore
	steps        StepStore
	tx           TxRunner
	partner      Partner
	wallets      plan.WalletAvailability
	banks        BankDirectory
	locker       lock.Locker

	policy         plan.CryptoLegPolicy
	settlement     id.Currency
	lockTTL        time.Duration
	idempotencyKey []byte
	now            func(context.Context) time.Time

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

func WithBankDirectory(banks BankDirectory) Option {
	return func(s *Service) {
		s.banks = banks
	}
}

func WithLocker(locker lock.Locker) Option {
	return func(s *Service) {
		s.locker = locker
	}
}

func WithCryptoLegPolicy(p plan.CryptoLegPolicy) Option {
	return func(s *Service) {
		s.policy = p
	}
}

func WithSettlementCurrency(c id.Currency) Option {
	return func(s *Service) {
		s.settlement = c
	}
}

func WithLockTTL(ttl time.Duration) Option {
	return func(s *Service) {
		s.lockTTL = ttl
	}
}

// WithIdempotencySecret keys the derivation of partner Idempotency-Key values.
func WithIdempotencySecret(secret string) Option {
	return func(s *Service) {
		s.idempotencyKey = []byte(secret)
	}
}

// WithClock overrides the request-scoped clock.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		s.now = func(context.Context) time.Time { return now() }
	}
}

// New constructs a Service. Without WithLocker actions are serialized by a
// process-local lock.
func New(transactions TransactionStore, steps StepStore, tx TxRunner, p Partner, wallets plan.WalletAvailability, opts ...Option) *Service {
	s := &Service{
		transactions: transactions,
		steps:        steps,
		tx:           tx,
		partner:      p,
		wallets:      wallets,
		policy:       plan.PolicySkip,
		settlement:   id.CurrencyEUR,
		lockTTL:      time.Minute,
		now:          requestcontext.Now,
		tracer:       otel.Tracer("propex/fundprotection"),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.locker == nil {
		s.locker = lock.NewInMemory()
	}
	if len(s.idempotencyKey) == 0 && s.logger != nil {
		s.logger.Warn("no idempotency secret configured; partner idempotency keys are predictable")
	}
	return s
}
