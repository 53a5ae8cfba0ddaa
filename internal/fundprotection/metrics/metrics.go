package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics provides observability for fund protection: plan builds, step
// completions, rejected actions and the final advancement.
type Metrics struct {
	PlansBuilt           *prometheus.CounterVec
	CryptoLegSkipped     *prometheus.CounterVec
	StepsCompleted       *prometheus.CounterVec
	ActionsRejected      *prometheus.CounterVec
	PartnerFailures      *prometheus.CounterVec
	TransactionsAdvanced prometheus.Counter
	ActionDuration       *prometheus.HistogramVec
}

// New registers the fund protection metrics on reg.
func New(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		PlansBuilt: f.NewCounterVec(prometheus.CounterOpts{
			Name: "propex_fund_protection_plans_built_total",
			Help: "Fulfillment plans persisted, by payment method",
		}, []string{"payment_method"}),
		CryptoLegSkipped: f.NewCounterVec(prometheus.CounterOpts{
			Name: "propex_fund_protection_crypto_leg_skipped_total",
			Help: "Hybrid plans built without their crypto leg, by reason",
		}, []string{"reason"}),
		StepsCompleted: f.NewCounterVec(prometheus.CounterOpts{
			Name: "propex_fund_protection_steps_completed_total",
			Help: "Fulfillment steps completed, by step type",
		}, []string{"step_type"}),
		ActionsRejected: f.NewCounterVec(prometheus.CounterOpts{
			Name: "propex_fund_protection_actions_rejected_total",
			Help: "Actions rejected before any side effect, by reason",
		}, []string{"reason"}),
		PartnerFailures: f.NewCounterVec(prometheus.CounterOpts{
			Name: "propex_fund_protection_partner_failures_total",
			Help: "Partner calls that failed while acting on a step",
		}, []string{"step_type", "code"}),
		TransactionsAdvanced: f.NewCounter(prometheus.CounterOpts{
			Name: "propex_fund_protection_transactions_advanced_total",
			Help: "Transactions moved to closing after their last step",
		}),
		ActionDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "propex_fund_protection_action_duration_seconds",
			Help:    "ApplyAction latency including the partner call",
			Buckets: []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		}, []string{"step_type"}),
	}
}

// ObserveAction records an action's duration. Call with time.Now() at the
// start of the operation.
func (m *Metrics) ObserveAction(stepType string, start time.Time) {
	m.ActionDuration.WithLabelValues(stepType).Observe(time.Since(start).Seconds())
}
