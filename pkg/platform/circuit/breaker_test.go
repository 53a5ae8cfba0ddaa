package circuit

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type clock struct{ t time.Time }

func newClock() *clock {
	return &clock{t: time.Date(2026, 5, 1, 9, 0, 0, 0, time.UTC)}
}

func (c *clock) now() time.Time          { return c.t }
func (c *clock) advance(d time.Duration) { c.t = c.t.Add(d) }

func leaseBreaker(c *clock, opts ...Option) *Breaker {
	base := []Option{WithFailureThreshold(2), WithSuccessThreshold(2), WithCooldown(10 * time.Second), WithClock(c.now)}
	return New("action-lock", append(base, opts...)...)
}

func TestDefaults(t *testing.T) {
	b := New("action-lock")
	assert.Equal(t, "action-lock", b.Name())
	assert.Equal(t, "closed", b.State().String())
	assert.True(t, b.Allow())

	for range 4 {
		b.RecordFailure()
	}
	assert.False(t, b.IsOpen())
	_, change := b.RecordFailure()
	assert.True(t, change.Opened)
	assert.False(t, b.Allow(), "default cooldown keeps the primary off right after opening")
}

// Each case feeds a sequence of lease outcomes from the shared lock store
// ('f' failure, 's' success, '>' cooldown elapses) and checks where the
// breaker ends up.
func TestLeaseOutcomeSequences(t *testing.T) {
	tests := []struct {
		name      string
		outcomes  string
		wantState State
		wantAllow bool
	}{
		{name: "isolated failure stays closed", outcomes: "fs", wantState: StateClosed, wantAllow: true},
		{name: "success resets the failure streak", outcomes: "fsf", wantState: StateClosed, wantAllow: true},
		{name: "consecutive failures open", outcomes: "ff", wantState: StateOpen, wantAllow: false},
		{name: "cooldown allows a probe", outcomes: "ff>", wantState: StateHalfOpen, wantAllow: true},
		{name: "one probe success is not enough", outcomes: "ff>s", wantState: StateHalfOpen, wantAllow: true},
		{name: "probe successes close", outcomes: "ff>ss", wantState: StateClosed, wantAllow: true},
		{name: "probe failure reopens", outcomes: "ff>f", wantState: StateOpen, wantAllow: false},
		{name: "reopened breaker waits a fresh cooldown", outcomes: "ff>f>", wantState: StateHalfOpen, wantAllow: true},
		{name: "failure between probe successes restarts the count", outcomes: "ff>sf>s", wantState: StateHalfOpen, wantAllow: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newClock()
			b := leaseBreaker(c)
			for _, o := range tt.outcomes {
				switch o {
				case 'f':
					b.Allow()
					b.RecordFailure()
				case 's':
					b.Allow()
					b.RecordSuccess()
				case '>':
					c.advance(10 * time.Second)
				}
			}
			assert.Equal(t, tt.wantAllow, b.Allow())
			assert.Equal(t, tt.wantState, b.State())
		})
	}
}

func TestTransitionsAreReportedOnce(t *testing.T) {
	c := newClock()
	b := leaseBreaker(c)

	_, change := b.RecordFailure()
	assert.False(t, change.Opened)
	useFallback, change := b.RecordFailure()
	assert.True(t, useFallback)
	assert.True(t, change.Opened)

	useFallback, change = b.RecordFailure()
	assert.True(t, useFallback)
	assert.False(t, change.Opened, "already open")

	c.advance(10 * time.Second)
	require.True(t, b.Allow())
	usePrimary, change := b.RecordSuccess()
	assert.False(t, usePrimary)
	assert.False(t, change.Closed)
	usePrimary, change = b.RecordSuccess()
	assert.True(t, usePrimary)
	assert.True(t, change.Closed)
	assert.Equal(t, "closed", b.State().String())
}

func TestZeroCooldownProbesImmediately(t *testing.T) {
	c := newClock()
	b := leaseBreaker(c, WithCooldown(0))
	b.RecordFailure()
	b.RecordFailure()
	assert.True(t, b.Allow())
	assert.Equal(t, "half_open", b.State().String())
}

func TestReset(t *testing.T) {
	b := leaseBreaker(newClock())
	b.RecordFailure()
	b.RecordFailure()
	require.True(t, b.IsOpen())

	b.Reset()
	assert.False(t, b.IsOpen())
	assert.True(t, b.Allow())
}
