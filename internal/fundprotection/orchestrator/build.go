package orchestrator

import (
	"context"
	"errors"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"propex/internal/fundprotection/models"
	"propex/internal/fundprotection/plan"
	id "propex/pkg/domain"
	dErrors "propex/pkg/domain-errors"
	"propex/pkg/platform/audit"
	"propex/pkg/platform/sentinel"
)

// BuildResult is the persisted plan. Created is false when the plan already
// existed and nothing was written.
type BuildResult struct {
	Steps     models.Plan
	CryptoLeg plan.LegOutcome
	Created   bool
}

// BuildPlan creates the transaction's fulfillment plan the first time it is
// called and returns the existing plan on every later call. Either party may
// trigger it.
func (s *Service) BuildPlan(ctx context.Context, txID id.TransactionID, userID id.UserID) (result *BuildResult, err error) {
	ctx, span := s.tracer.Start(ctx, "fundprotection.BuildPlan")
	span.SetAttributes(attribute.String("transaction_id", txID.String()))
	defer func() {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		span.End()
	}()

	tx, _, err := s.loadForParty(ctx, txID, userID)
	if err != nil {
		return nil, err
	}

	existing, err := s.steps.ListSteps(ctx, txID)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load steps")
	}
	if len(existing) > 0 {
		return &BuildResult{Steps: existing}, nil
	}
	if tx.Status != models.TransactionOfferAccepted && tx.Status != models.TransactionFundProtection {
		return nil, dErrors.New(dErrors.CodeConflict, "transaction is not awaiting fund protection")
	}

	in := plan.Input{
		Transaction: *tx,
		Policy:      s.policy,
		Settlement:  s.settlement,
		Now:         s.now(ctx),
	}
	if tx.PaymentMethod != models.PaymentFiat {
		in.CryptoLeg, err = s.wallets.CryptoLeg(ctx, tx.BuyerID, tx.SellerID)
		if err != nil {
			return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to check crypto wallets")
		}
	}

	built, err := plan.Build(in)
	if err != nil {
		return nil, err
	}

	err = s.tx.RunInTx(ctx, func(ctx context.Context) error {
		if err := s.steps.CreatePlan(ctx, txID, built.Steps); err != nil {
			return err
		}
		err := s.transactions.TransitionStatus(ctx, txID,
			[]models.TransactionStatus{models.TransactionOfferAccepted},
			models.TransactionFundProtection, in.Now)
		if errors.Is(err, sentinel.ErrInvalidState) {
			// Already in FUND_PROTECTION.
			return nil
		}
		return err
	})
	if errors.Is(err, sentinel.ErrConflict) {
		// A concurrent build won; its plan is the plan.
		steps, lerr := s.steps.ListSteps(ctx, txID)
		if lerr != nil {
			return nil, dErrors.Wrap(lerr, dErrors.CodeInternal, "failed to load steps")
		}
		return &BuildResult{Steps: steps}, nil
	}
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to persist plan")
	}

	s.recordPlanBuilt(ctx, tx, userID, built)
	return &BuildResult{Steps: built.Steps, CryptoLeg: built.CryptoLeg, Created: true}, nil
}

func (s *Service) recordPlanBuilt(ctx context.Context, tx *models.Transaction, userID id.UserID, built *plan.Result) {
	if s.metrics != nil {
		s.metrics.PlansBuilt.WithLabelValues(string(tx.PaymentMethod)).Inc()
	}
	s.logAudit(ctx, audit.EventPlanBuilt,
		"user_id", userID,
		"transaction_id", tx.ID,
		"payment_method", tx.PaymentMethod,
		"steps", len(built.Steps),
	)
	if !built.CryptoLeg.Skipped {
		return
	}
	if s.metrics != nil {
		s.metrics.CryptoLegSkipped.WithLabelValues(string(built.CryptoLeg.Reason)).Inc()
	}
	s.logAudit(ctx, audit.EventCryptoLegSkipped,
		"user_id", userID,
		"transaction_id", tx.ID,
		"reason", built.CryptoLeg.Reason,
		"amount", built.CryptoLeg.Amount.String(),
	)
}
