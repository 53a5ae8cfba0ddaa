// Package lock serializes actions on a transaction while a partner call is
// in flight. The lock is advisory; the store's compare-and-swap remains the
// authority on completion.
package lock

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

// ErrHeld is returned when another caller holds the key.
var ErrHeld = errors.New("lock held")

// Locker hands out expiring leases on keys.
type Locker interface {
	Acquire(ctx context.Context, key string, ttl time.Duration) (*Lease, error)
}

type releaser interface {
	release(ctx context.Context, key, token string) error
}

// Lease is a held lock. Release is safe to call more than once and never
// removes a lease someone else has since acquired.
type Lease struct {
	Key   string
	Token string
	// Backend names the implementation that granted the lease.
	Backend string

	owner releaser
}

func newLease(key, backend string, owner releaser) *Lease {
	return &Lease{Key: key, Token: uuid.NewString(), Backend: backend, owner: owner}
}

func (l *Lease) Release(ctx context.Context) error {
	if l == nil || l.owner == nil {
		return nil
	}
	return l.owner.release(ctx, l.Key, l.Token)
}

// TransactionKey names the lock serializing actions on one transaction.
func TransactionKey(transactionID string) string {
	return "fundprotection:tx:" + transactionID
}
