package reconcile

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"

	"propex/internal/wallet/models"
	id "propex/pkg/domain"
	dErrors "propex/pkg/domain-errors"
)

// UserError is a user the sweep could not reconcile at all.
type UserError struct {
	UserID id.UserID
	Err    error
}

// SweepReport aggregates one pass over all eligible users.
type SweepReport struct {
	StartedAt  time.Time
	Duration   time.Duration
	Users      int
	Reconciled int
	Skipped    int
	Created    int
	Failed     int
	Results    []*Result
	Errors     []UserError
	// Interrupted is set when the context ended before every user was seen.
	Interrupted bool
}

func (r *SweepReport) add(res *Result) {
	r.Results = append(r.Results, res)
	if res.Skipped != models.SkipNone {
		r.Skipped++
		return
	}
	r.Reconciled++
	r.Created += len(res.Created)
	r.Failed += len(res.Failed)
}

// SweepAllEligibleUsers runs EnsureUserWallets for every eligible user,
// pausing between users. Only one sweep runs at a time; a second caller gets
// a conflict. Cancelling ctx stops the sweep between users and returns the
// partial report with ctx's error.
func (s *Service) SweepAllEligibleUsers(ctx context.Context) (*SweepReport, error) {
	if !s.running.CompareAndSwap(false, true) {
		return nil, dErrors.New(dErrors.CodeConflict, "wallet sweep already running")
	}
	defer s.running.Store(false)

	ctx, span := s.tracer.Start(ctx, "wallet.SweepAllEligibleUsers")
	defer span.End()

	report := &SweepReport{StartedAt: s.now()}
	finish := func(outcome string) {
		report.Duration = s.now().Sub(report.StartedAt)
		span.SetAttributes(
			attribute.Int("users", report.Users),
			attribute.Int("created", report.Created),
			attribute.Int("failed", report.Failed),
		)
		if s.metrics != nil {
			s.metrics.SweepsRun.WithLabelValues(outcome).Inc()
			s.metrics.SweepDuration.Observe(report.Duration.Seconds())
		}
		if s.logger != nil {
			s.logger.InfoContext(ctx, "wallet sweep finished",
				"outcome", outcome,
				"users", report.Users,
				"reconciled", report.Reconciled,
				"skipped", report.Skipped,
				"created", report.Created,
				"failed", report.Failed,
				"user_errors", len(report.Errors),
				"duration_ms", report.Duration.Milliseconds(),
			)
		}
	}

	accounts, err := s.store.ListEligibleAccounts(ctx, models.EligibleKYCStatuses)
	if err != nil {
		finish("error")
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list eligible accounts")
	}
	report.Users = len(accounts)

	for i, acc := range accounts {
		if i > 0 {
			if err := wait(ctx, s.interUserDelay); err != nil {
				report.Interrupted = true
				finish("interrupted")
				return report, err
			}
		}
		userCtx, cancel := context.WithTimeout(ctx, s.perUserTimeout)
		res, err := s.EnsureUserWallets(userCtx, acc.UserID)
		cancel()
		if err != nil {
			report.Errors = append(report.Errors, UserError{UserID: acc.UserID, Err: err})
			continue
		}
		report.add(res)
	}

	finish("completed")
	return report, nil
}

// wait sleeps for d unless ctx ends first.
func wait(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
