package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics covers wallet reconciliation: what was provisioned, what failed,
// and how long sweeps take.
type Metrics struct {
	WalletsProvisioned *prometheus.CounterVec
	ProvisionFailures  *prometheus.CounterVec
	WalletsAdopted     *prometheus.CounterVec
	UsersSkipped       *prometheus.CounterVec
	UsersReconciled    prometheus.Counter
	SweepsRun          *prometheus.CounterVec
	SweepDuration      prometheus.Histogram
}

func New(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		WalletsProvisioned: f.NewCounterVec(prometheus.CounterOpts{
			Name: "propex_wallet_provisioned_total",
			Help: "Wallets and IBANs provisioned at the partner, by currency",
		}, []string{"currency"}),
		ProvisionFailures: f.NewCounterVec(prometheus.CounterOpts{
			Name: "propex_wallet_provision_failures_total",
			Help: "Provisioning attempts that failed, by currency",
		}, []string{"currency"}),
		WalletsAdopted: f.NewCounterVec(prometheus.CounterOpts{
			Name: "propex_wallet_adopted_total",
			Help: "Partner wallets missing locally and recorded during reconciliation",
		}, []string{"currency"}),
		UsersSkipped: f.NewCounterVec(prometheus.CounterOpts{
			Name: "propex_wallet_users_skipped_total",
			Help: "Users not reconciled, by reason",
		}, []string{"reason"}),
		UsersReconciled: f.NewCounter(prometheus.CounterOpts{
			Name: "propex_wallet_users_reconciled_total",
			Help: "Per-user reconciliation runs",
		}),
		SweepsRun: f.NewCounterVec(prometheus.CounterOpts{
			Name: "propex_wallet_sweeps_total",
			Help: "Sweeps over all eligible users, by outcome",
		}, []string{"outcome"}),
		SweepDuration: f.NewHistogram(prometheus.HistogramOpts{
			Name:    "propex_wallet_sweep_duration_seconds",
			Help:    "Wall time of a full sweep including inter-user delays",
			Buckets: prometheus.ExponentialBuckets(0.5, 2, 12),
		}),
	}
}
