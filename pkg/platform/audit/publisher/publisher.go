// Package publisher fans audit events out to a queryable store and any number
// of forward-only sinks.
//
// Emission is fail-open: sink errors are logged and counted but never fail
// the business operation that produced the event.
package publisher

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	id "propex/pkg/domain"
	audit "propex/pkg/platform/audit"
)

type Publisher struct {
	store   audit.Store
	sinks   []audit.Sink
	logger  *slog.Logger
	metrics *Metrics

	async  chan audit.Event
	wg     sync.WaitGroup
	closed sync.Once
}

// Option configures the Publisher.
type Option func(*Publisher)

// WithLogger sets a logger for sink failures.
func WithLogger(logger *slog.Logger) Option {
	return func(p *Publisher) {
		p.logger = logger
	}
}

// WithMetrics sets the metrics collector.
func WithMetrics(m *Metrics) Option {
	return func(p *Publisher) {
		p.metrics = m
	}
}

// WithSinks adds forward-only destinations such as Kafka.
func WithSinks(sinks ...audit.Sink) Option {
	return func(p *Publisher) {
		p.sinks = append(p.sinks, sinks...)
	}
}

// WithAsyncBuffer makes Emit non-blocking. Events are written by a background
// goroutine; when the buffer is full the event is dropped and counted.
func WithAsyncBuffer(size int) Option {
	return func(p *Publisher) {
		if size > 0 {
			p.async = make(chan audit.Event, size)
		}
	}
}

func NewPublisher(store audit.Store, opts ...Option) *Publisher {
	p := &Publisher{store: store}
	for _, opt := range opts {
		opt(p)
	}
	if p.async != nil {
		p.wg.Add(1)
		go p.drain()
	}
	return p
}

// Emit records event. It returns an error only when the event itself is
// unusable; persistence failures are logged.
func (p *Publisher) Emit(ctx context.Context, event audit.Event) error {
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}
	event.Category = audit.AuditEvent(event.Action).Category()

	if p.async == nil {
		p.write(ctx, event)
		return nil
	}
	select {
	case p.async <- event:
	default:
		p.incDropped()
		if p.logger != nil {
			p.logger.WarnContext(ctx, "audit buffer full, event dropped", "action", event.Action)
		}
	}
	return nil
}

// List returns a user's events from the backing store.
func (p *Publisher) List(ctx context.Context, userID id.UserID) ([]audit.Event, error) {
	return p.store.ListByUser(ctx, userID)
}

// Close stops the async writer after draining buffered events.
func (p *Publisher) Close() {
	p.closed.Do(func() {
		if p.async != nil {
			close(p.async)
			p.wg.Wait()
		}
	})
}

func (p *Publisher) drain() {
	defer p.wg.Done()
	for event := range p.async {
		// The request context may be gone by now.
		p.write(context.Background(), event)
	}
}

func (p *Publisher) write(ctx context.Context, event audit.Event) {
	if err := p.store.Append(ctx, event); err != nil {
		p.fail(ctx, "store", event, err)
	} else if p.metrics != nil {
		p.metrics.Emitted.WithLabelValues(string(event.Category)).Inc()
	}
	for _, sink := range p.sinks {
		if err := sink.Append(ctx, event); err != nil {
			p.fail(ctx, "sink", event, err)
		}
	}
}

func (p *Publisher) fail(ctx context.Context, target string, event audit.Event, err error) {
	if p.metrics != nil {
		p.metrics.Failures.WithLabelValues(target).Inc()
	}
	if p.logger != nil {
		p.logger.ErrorContext(ctx, "audit write failed",
			"target", target,
			"action", event.Action,
			"user_id", event.UserID.String(),
			"error", err,
		)
	}
}

func (p *Publisher) incDropped() {
	if p.metrics != nil {
		p.metrics.Dropped.Inc()
	}
}

// Metrics holds Prometheus metrics for audit emission.
type Metrics struct {
	Emitted  *prometheus.CounterVec
	Failures *prometheus.CounterVec
	Dropped  prometheus.Counter
}

// NewMetrics registers audit metrics with reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		Emitted: f.NewCounterVec(prometheus.CounterOpts{
			Name: "propex_audit_events_emitted_total",
			Help: "Audit events persisted, by category",
		}, []string{"category"}),
		Failures: f.NewCounterVec(prometheus.CounterOpts{
			Name: "propex_audit_write_failures_total",
			Help: "Audit writes that failed, by target (store or sink)",
		}, []string{"target"}),
		Dropped: f.NewCounter(prometheus.CounterOpts{
			Name: "propex_audit_events_dropped_total",
			Help: "Audit events dropped because the async buffer was full",
		}),
	}
}
