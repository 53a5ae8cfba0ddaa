package lock

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"propex/pkg/platform/circuit"
)

// FallbackLocker prefers a shared primary and degrades to a process-local
// locker when the primary errors. The breaker tracks whether we are degraded
// so the transition is logged once, not per request.
type FallbackLocker struct {
	primary  Locker
	fallback Locker
	breaker  *circuit.Breaker
	logger   *slog.Logger
}

func NewFallback(primary, fallback Locker, breaker *circuit.Breaker, logger *slog.Logger) *FallbackLocker {
	if breaker == nil {
		breaker = circuit.New("action-lock")
	}
	return &FallbackLocker{primary: primary, fallback: fallback, breaker: breaker, logger: logger}
}

// ErrDegraded is reported by Health while leases come from the fallback.
var ErrDegraded = errors.New("action lock degraded to process-local fallback")

func (f *FallbackLocker) Acquire(ctx context.Context, key string, ttl time.Duration) (*Lease, error) {
	if !f.breaker.Allow() {
		return f.fallback.Acquire(ctx, key, ttl)
	}
	lease, err := f.primary.Acquire(ctx, key, ttl)
	if err == nil || errors.Is(err, ErrHeld) {
		if _, change := f.breaker.RecordSuccess(); change.Closed && f.logger != nil {
			f.logger.InfoContext(ctx, "action lock primary recovered", "breaker", f.breaker.Name())
		}
		return lease, err
	}

	_, change := f.breaker.RecordFailure()
	if f.logger != nil {
		if change.Opened {
			f.logger.WarnContext(ctx, "action lock degraded to local fallback", "breaker", f.breaker.Name(), "error", err)
		} else {
			f.logger.DebugContext(ctx, "action lock primary failed", "error", err)
		}
	}
	return f.fallback.Acquire(ctx, key, ttl)
}

// Health fails while the breaker is not closed: exclusion then only holds
// within this process.
func (f *FallbackLocker) Health(context.Context) error {
	if f.breaker.IsOpen() {
		return fmt.Errorf("%w (breaker %s %s)", ErrDegraded, f.breaker.Name(), f.breaker.State())
	}
	return nil
}
