// Command server runs the fund protection API and the wallet sweep.
package main

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"golang.org/x/sync/errgroup"

	fphandler "propex/internal/fundprotection/handler"
	"propex/internal/fundprotection/lock"
	fpmetrics "propex/internal/fundprotection/metrics"
	"propex/internal/fundprotection/orchestrator"
	"propex/internal/fundprotection/plan"
	fpstore "propex/internal/fundprotection/store"
	jwttoken "propex/internal/jwt_token"
	"propex/internal/partner"
	"propex/internal/platform/config"
	"propex/internal/platform/httpserver"
	"propex/internal/platform/logger"
	"propex/internal/platform/metrics"
	"propex/internal/platform/postgres"
	"propex/internal/platform/redis"
	httptransport "propex/internal/transport/http"
	"propex/internal/wallet/availability"
	wallethandler "propex/internal/wallet/handler"
	walletmetrics "propex/internal/wallet/metrics"
	"propex/internal/wallet/reconcile"
	walletstore "propex/internal/wallet/store"
	"propex/pkg/platform/audit"
	auditkafka "propex/pkg/platform/audit/kafka"
	"propex/pkg/platform/audit/publisher"
	auditmemory "propex/pkg/platform/audit/store/memory"
	auditpostgres "propex/pkg/platform/audit/store/postgres"
	"propex/pkg/platform/circuit"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, "config:", err)
		os.Exit(1)
	}
	log := logger.New(cfg.Log.Format, cfg.Log.Level)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, log); err != nil {
		log.Error("server exited", "error", err)
		os.Exit(1)
	}
}

// stores bundles the persistence chosen at startup.
type stores struct {
	transactions orchestrator.TransactionStore
	steps        orchestrator.StepStore
	tx           orchestrator.TxRunner
	wallets      walletStore
	audit        audit.Store
	health       map[string]httptransport.HealthCheck
	close        func()
}

type walletStore interface {
	reconcile.Store
	wallethandler.Store
}

func run(ctx context.Context, cfg *config.Config, log *slog.Logger) error {
	reg := metrics.NewRegistry()

	st, err := openStores(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer st.close()

	locker, closeLocker, err := openLocker(ctx, cfg, st.health, log)
	if err != nil {
		return err
	}
	defer closeLocker()

	partnerClient, err := partner.New(partner.Config{
		BaseURL:   cfg.Partner.BaseURL,
		APIKey:    cfg.Partner.APIKey,
		APISecret: cfg.Partner.APISecret,
		RPS:       cfg.Partner.RPS,
		Burst:     cfg.Partner.Burst,
		Timeout:   cfg.Partner.Timeout,
	}, partner.WithLogger(log), partner.WithMetrics(partner.NewMetrics(reg)))
	if err != nil {
		return fmt.Errorf("partner client: %w", err)
	}

	auditPublisher, err := openAudit(ctx, cfg, st.audit, reg, log)
	if err != nil {
		return err
	}
	defer auditPublisher.Close()

	policy, err := plan.ParsePolicy(cfg.FundProtection.CryptoLegPolicy)
	if err != nil {
		return err
	}

	reconciler := reconcile.New(st.wallets, partnerClient,
		reconcile.Config{BaseCurrencies: cfg.Wallets.BaseCurrencies, Settlement: cfg.Wallets.Settlement},
		reconcile.WithLogger(log),
		reconcile.WithAuditPublisher(auditPublisher),
		reconcile.WithMetrics(walletmetrics.New(reg)),
		reconcile.WithInterUserDelay(cfg.Sweep.InterUserDelay),
		reconcile.WithPerUserTimeout(cfg.Sweep.PerUserTimeout),
	)
	avail := availability.New(st.wallets, cfg.Wallets.BaseCurrencies, cfg.Wallets.Settlement)

	orch := orchestrator.New(st.transactions, st.steps, st.tx, partnerClient, avail,
		orchestrator.WithLogger(log),
		orchestrator.WithAuditPublisher(auditPublisher),
		orchestrator.WithMetrics(fpmetrics.New(reg)),
		orchestrator.WithBankDirectory(avail),
		orchestrator.WithLocker(locker),
		orchestrator.WithCryptoLegPolicy(policy),
		orchestrator.WithSettlementCurrency(cfg.Wallets.Settlement),
		orchestrator.WithLockTTL(cfg.FundProtection.ActionLockTTL),
		orchestrator.WithIdempotencySecret(cfg.Partner.IdempotencySecret),
	)

	jwtService := jwttoken.NewJWTService(cfg.Server.JWTSigningKey, cfg.Server.JWTIssuer, cfg.Server.JWTAudience)
	router := httptransport.NewRouter(httptransport.Deps{
		FundProtection: fphandler.New(orch, log),
		Wallets:        wallethandler.New(reconciler, st.wallets, log),
		Validator:      jwttoken.NewJWTServiceAdapter(jwtService),
		AdminToken:     cfg.Server.AdminToken,
		Registry:       reg,
		Health:         st.health,
		Logger:         log,
	})
	if cfg.Server.AdminToken == "" {
		log.Warn("PROPEX_ADMIN_TOKEN not set; admin endpoints are disabled")
	}
	if cfg.Partner.IdempotencySecretShared {
		log.Warn("PARTNER_IDEMPOTENCY_SECRET not set; idempotency keys are derived from the partner API secret")
	}

	srv := httpserver.New(cfg.Server.Addr, router)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info("starting propex", "addr", cfg.Server.Addr)
		return httpserver.Run(gctx, srv, cfg.Server.ShutdownGrace)
	})
	if cfg.Sweep.Enabled {
		scheduler, err := reconcile.NewScheduler(reconciler, cfg.Sweep.Schedule, log)
		if err != nil {
			return err
		}
		g.Go(func() error { return scheduler.Run(gctx) })
	}
	return g.Wait()
}

// openStores picks Postgres when DATABASE_URL is set, else in-memory stores.
func openStores(ctx context.Context, cfg *config.Config, log *slog.Logger) (*stores, error) {
	if cfg.Database.URL == "" {
		log.Warn("DATABASE_URL not set; using in-memory stores")
		fp := fpstore.NewInMemoryStore()
		return &stores{
			transactions: fp,
			steps:        fp,
			tx:           &fpstore.InMemoryTx{},
			wallets:      walletstore.NewInMemoryStore(),
			audit:        auditmemory.NewInMemoryStore(),
			health:       map[string]httptransport.HealthCheck{},
			close:        func() {},
		}, nil
	}

	db, err := postgres.Open(ctx, cfg.Database)
	if err != nil {
		return nil, err
	}
	if err := postgres.Apply(ctx, db); err != nil {
		_ = db.Close()
		return nil, err
	}
	fp := fpstore.NewPostgres(db)
	return &stores{
		transactions: fp,
		steps:        fp,
		tx:           postgres.NewTxRunner(db),
		wallets:      walletstore.NewPostgres(db),
		audit:        auditpostgres.New(db),
		health:       map[string]httptransport.HealthCheck{"postgres": db.PingContext},
		close:        closeDB(db, log),
	}, nil
}

func closeDB(db *sql.DB, log *slog.Logger) func() {
	return func() {
		if err := db.Close(); err != nil {
			log.Error("closing database", "error", err)
		}
	}
}

// openLocker uses Redis when configured, degrading to the in-process lock
// while Redis is unreachable.
func openLocker(ctx context.Context, cfg *config.Config, health map[string]httptransport.HealthCheck, log *slog.Logger) (lock.Locker, func(), error) {
	client, err := redis.New(ctx, cfg.Redis)
	if err != nil {
		return nil, nil, err
	}
	if client == nil {
		log.Warn("REDIS_URL not set; action lock is process-local")
		return lock.NewInMemory(), func() {}, nil
	}
	locker := lock.NewFallback(lock.NewRedis(client.Client), lock.NewInMemory(), circuit.New("action-lock"), log)
	health["redis"] = client.Health
	health["action_lock"] = locker.Health
	return locker, func() { _ = client.Close() }, nil
}

func openAudit(ctx context.Context, cfg *config.Config, store audit.Store, reg *prometheus.Registry, log *slog.Logger) (*publisher.Publisher, error) {
	opts := []publisher.Option{
		publisher.WithLogger(log),
		publisher.WithMetrics(publisher.NewMetrics(reg)),
		publisher.WithAsyncBuffer(cfg.Audit.AsyncBuffer),
	}
	if len(cfg.Audit.KafkaBrokers) > 0 {
		client, err := auditkafka.Dial(ctx, cfg.Audit.KafkaBrokers, cfg.Audit.KafkaTopic)
		if err != nil {
			return nil, err
		}
		opts = append(opts, publisher.WithSinks(auditkafka.NewSink(client, cfg.Audit.KafkaTopic)))
	}
	return publisher.NewPublisher(store, opts...), nil
}
