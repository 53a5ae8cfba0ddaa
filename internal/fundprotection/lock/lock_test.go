package lock

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"propex/pkg/platform/circuit"
)

func TestInMemoryLocker(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	locker := NewInMemory()
	locker.now = func() time.Time { return now }

	t.Run("second acquire is held", func(t *testing.T) {
		lease, err := locker.Acquire(ctx, "k1", time.Minute)
		require.NoError(t, err)
		assert.Equal(t, "memory", lease.Backend)

		_, err = locker.Acquire(ctx, "k1", time.Minute)
		assert.ErrorIs(t, err, ErrHeld)

		require.NoError(t, lease.Release(ctx))
		_, err = locker.Acquire(ctx, "k1", time.Minute)
		assert.NoError(t, err)
	})

	t.Run("expired lease is reclaimed", func(t *testing.T) {
		_, err := locker.Acquire(ctx, "k2", time.Second)
		require.NoError(t, err)
		now = now.Add(2 * time.Second)
		_, err = locker.Acquire(ctx, "k2", time.Second)
		assert.NoError(t, err)
	})

	t.Run("stale release keeps the new holder", func(t *testing.T) {
		stale, err := locker.Acquire(ctx, "k3", time.Second)
		require.NoError(t, err)
		now = now.Add(2 * time.Second)
		_, err = locker.Acquire(ctx, "k3", time.Minute)
		require.NoError(t, err)

		require.NoError(t, stale.Release(ctx))
		_, err = locker.Acquire(ctx, "k3", time.Minute)
		assert.ErrorIs(t, err, ErrHeld)
	})

	t.Run("nil lease release is a no-op", func(t *testing.T) {
		var lease *Lease
		assert.NoError(t, lease.Release(ctx))
	})
}

func TestTransactionKey(t *testing.T) {
	assert.Equal(t, "fundprotection:tx:tx-1", TransactionKey("tx-1"))
}

type brokenLocker struct {
	calls int
}

func (b *brokenLocker) Acquire(context.Context, string, time.Duration) (*Lease, error) {
	b.calls++
	return nil, errors.New("connection refused")
}

func TestFallbackLocker(t *testing.T) {
	ctx := context.Background()

	t.Run("primary error uses fallback and opens breaker", func(t *testing.T) {
		primary := &brokenLocker{}
		breaker := circuit.New("action-lock", circuit.WithFailureThreshold(2))
		locker := NewFallback(primary, NewInMemory(), breaker, nil)

		lease, err := locker.Acquire(ctx, "k", time.Minute)
		require.NoError(t, err)
		assert.Equal(t, "memory", lease.Backend)
		assert.NoError(t, locker.Health(ctx))

		_, err = locker.Acquire(ctx, "k", time.Minute)
		assert.ErrorIs(t, err, ErrHeld, "fallback still enforces exclusion")
		assert.ErrorIs(t, locker.Health(ctx), ErrDegraded)
		assert.Equal(t, 2, primary.calls)
	})

	t.Run("open breaker keeps requests off the primary until cooldown", func(t *testing.T) {
		now := time.Date(2026, 5, 1, 9, 0, 0, 0, time.UTC)
		primary := &brokenLocker{}
		breaker := circuit.New("action-lock",
			circuit.WithFailureThreshold(1),
			circuit.WithCooldown(30*time.Second),
			circuit.WithClock(func() time.Time { return now }),
		)
		locker := NewFallback(primary, NewInMemory(), breaker, nil)

		_, err := locker.Acquire(ctx, "a", time.Minute)
		require.NoError(t, err)
		_, err = locker.Acquire(ctx, "b", time.Minute)
		require.NoError(t, err)
		assert.Equal(t, 1, primary.calls, "second lease skips the failing primary")

		now = now.Add(30 * time.Second)
		_, err = locker.Acquire(ctx, "c", time.Minute)
		require.NoError(t, err)
		assert.Equal(t, 2, primary.calls, "cooldown lets one probe through")
	})

	t.Run("recovered primary closes the breaker", func(t *testing.T) {
		primary := &flakyLocker{failures: 1, next: NewInMemory()}
		breaker := circuit.New("action-lock",
			circuit.WithFailureThreshold(1),
			circuit.WithSuccessThreshold(1),
			circuit.WithCooldown(0),
		)
		locker := NewFallback(primary, NewInMemory(), breaker, nil)

		_, err := locker.Acquire(ctx, "a", time.Minute)
		require.NoError(t, err)
		require.ErrorIs(t, locker.Health(ctx), ErrDegraded)

		lease, err := locker.Acquire(ctx, "b", time.Minute)
		require.NoError(t, err)
		assert.Equal(t, "memory", lease.Backend)
		assert.Equal(t, 2, primary.calls)
		assert.NoError(t, locker.Health(ctx))
	})

	t.Run("held on primary is not a failure", func(t *testing.T) {
		primary := NewInMemory()
		breaker := circuit.New("action-lock", circuit.WithFailureThreshold(1))
		locker := NewFallback(primary, NewInMemory(), breaker, nil)

		_, err := locker.Acquire(ctx, "k", time.Minute)
		require.NoError(t, err)
		_, err = locker.Acquire(ctx, "k", time.Minute)
		assert.ErrorIs(t, err, ErrHeld)
		assert.NoError(t, locker.Health(ctx))
	})
}

// flakyLocker fails its first acquisitions, then delegates.
type flakyLocker struct {
	failures int
	calls    int
	next     Locker
}

func (f *flakyLocker) Acquire(ctx context.Context, key string, ttl time.Duration) (*Lease, error) {
	f.calls++
	if f.calls <= f.failures {
		return nil, errors.New("i/o timeout")
	}
	return f.next.Acquire(ctx, key, ttl)
}
