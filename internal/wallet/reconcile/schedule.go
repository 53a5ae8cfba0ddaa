package reconcile

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/robfig/cron/v3"

	dErrors "propex/pkg/domain-errors"
)

type Sweeper interface {
	SweepAllEligibleUsers(ctx context.Context) (*SweepReport, error)
}

// Scheduler runs the sweep on a cron schedule. A tick that fires while the
// previous sweep is still running is skipped.
type Scheduler struct {
	sweeper  Sweeper
	schedule cron.Schedule
	logger   *slog.Logger
}

// NewScheduler accepts standard five-field specs and descriptors such as
// "@every 1h".
func NewScheduler(sweeper Sweeper, spec string, logger *slog.Logger) (*Scheduler, error) {
	schedule, err := cron.ParseStandard(spec)
	if err != nil {
		return nil, fmt.Errorf("parse sweep schedule %q: %w", spec, err)
	}
	return &Scheduler{sweeper: sweeper, schedule: schedule, logger: logger}, nil
}

// Run blocks until ctx is done, then waits for an in-flight sweep, which sees
// the same cancellation and stops between users.
func (s *Scheduler) Run(ctx context.Context) error {
	l := cronLogger{logger: s.logger}
	c := cron.New(
		cron.WithLogger(l),
		cron.WithChain(cron.Recover(l), cron.SkipIfStillRunning(l)),
	)
	c.Schedule(s.schedule, cron.FuncJob(func() { s.tick(ctx) }))
	c.Start()
	s.logger.InfoContext(ctx, "wallet sweep scheduler started")

	<-ctx.Done()
	<-c.Stop().Done()
	s.logger.InfoContext(context.WithoutCancel(ctx), "wallet sweep scheduler stopped")
	return nil
}

func (s *Scheduler) tick(ctx context.Context) {
	_, err := s.sweeper.SweepAllEligibleUsers(ctx)
	switch {
	case err == nil:
	case dErrors.HasCode(err, dErrors.CodeConflict):
		s.logger.InfoContext(ctx, "scheduled wallet sweep skipped", "reason", dErrors.MessageOf(err))
	case errors.Is(err, context.Canceled):
		s.logger.InfoContext(context.WithoutCancel(ctx), "scheduled wallet sweep interrupted by shutdown")
	default:
		s.logger.ErrorContext(ctx, "scheduled wallet sweep failed", "error", err)
	}
}

// cronLogger routes cron's own logging through slog.
type cronLogger struct {
	logger *slog.Logger
}

func (l cronLogger) Info(msg string, keysAndValues ...any) {
	l.logger.Debug("cron: "+msg, keysAndValues...)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...any) {
	l.logger.Error("cron: "+msg, append([]any{"error", err}, keysAndValues...)...)
}
