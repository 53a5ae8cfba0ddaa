package orchestrator

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"propex/internal/fundprotection/lock"
	"propex/internal/fundprotection/models"
	"propex/internal/partner"
	id "propex/pkg/domain"
	dErrors "propex/pkg/domain-errors"
	"propex/pkg/platform/audit"
	"propex/pkg/platform/sentinel"
)

const maxProofReferenceLen = 512

// ActionRequest asks to complete the step of StepType on behalf of UserID.
type ActionRequest struct {
	TransactionID  id.TransactionID
	StepType       models.StepType
	UserID         id.UserID
	ProofReference string
}

// ActionResult is the completed step plus whether the plan is now done.
type ActionResult struct {
	Step             models.FulfillmentStep
	AllStepsComplete bool
	// Advanced is true for the single call that moved the transaction to
	// CLOSING.
	Advanced bool
}

// rejection reasons, used for metrics and audit.
const (
	rejectNotParty       = "not_party"
	rejectWrongRole      = "wrong_role"
	rejectOutOfTurn      = "out_of_turn"
	rejectAlreadyDone    = "already_completed"
	rejectNoPlan         = "no_plan"
	rejectNotInPlan      = "step_not_in_plan"
	rejectInFlight       = "in_flight"
	rejectClosed         = "transaction_closed"
	rejectMissingProof   = "missing_proof"
	rejectDepositMissing = "deposit_not_detected"
	rejectNoSettlement   = "settlement_wallet_missing"
)

// ApplyAction performs the step's side effect through the partner and marks
// the step completed. It only succeeds for the current step and only for the
// party that owns it; any rejection happens before a partner call. When the
// completed step is the last one, the transaction moves to CLOSING in the
// same unit of work.
func (s *Service) ApplyAction(ctx context.Context, req ActionRequest) (result *ActionResult, err error) {
	start := time.Now()
	ctx, span := s.tracer.Start(ctx, "fundprotection.ApplyAction")
	span.SetAttributes(
		attribute.String("transaction_id", req.TransactionID.String()),
		attribute.String("step_type", string(req.StepType)),
	)
	defer func() {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		span.End()
		if s.metrics != nil {
			s.metrics.ObserveAction(string(req.StepType), start)
		}
	}()

	if !req.StepType.IsValid() {
		return nil, dErrors.New(dErrors.CodeBadRequest, "unknown step type")
	}
	req.ProofReference = strings.TrimSpace(req.ProofReference)
	if len(req.ProofReference) > maxProofReferenceLen {
		return nil, dErrors.New(dErrors.CodeValidation, "proof_reference is too long")
	}

	tx, role, err := s.loadForParty(ctx, req.TransactionID, req.UserID)
	if err != nil {
		if dErrors.HasCode(err, dErrors.CodeNotFound) {
			s.reject(ctx, req, rejectNotParty)
		}
		return nil, err
	}
	if req.StepType.Owner() != role {
		s.reject(ctx, req, rejectWrongRole)
		return nil, dErrors.New(dErrors.CodeForbidden, "step belongs to the other party")
	}

	lease, err := s.locker.Acquire(ctx, lock.TransactionKey(tx.ID.String()), s.lockTTL)
	if err != nil {
		if errors.Is(err, lock.ErrHeld) {
			s.reject(ctx, req, rejectInFlight)
			return nil, dErrors.New(dErrors.CodeConflict, "another action on this transaction is in progress")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to acquire action lock")
	}
	defer func() {
		if rerr := lease.Release(context.WithoutCancel(ctx)); rerr != nil && s.logger != nil {
			s.logger.WarnContext(ctx, "failed to release action lock", "error", rerr, "transaction_id", tx.ID)
		}
	}()

	// Steps are read under the lock so a completion by a previous holder is
	// visible before any partner call.
	steps, err := s.steps.ListSteps(ctx, tx.ID)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load steps")
	}
	steps = steps.Sorted()
	target, reason := checkTurn(tx, steps, req.StepType)
	if reason != "" {
		s.reject(ctx, req, reason)
		return nil, dErrors.New(dErrors.CodeConflict, rejectionMessage(reason))
	}
	if req.StepType == models.StepFiatUpload && req.ProofReference == "" {
		s.reject(ctx, req, rejectMissingProof)
		return nil, dErrors.New(dErrors.CodeValidation, "proof_reference is required")
	}

	exec := executors[req.StepType]
	completion, err := exec(ctx, s, actionContext{tx: tx, steps: steps, step: *target, req: req})
	if err != nil {
		return nil, s.actionFailed(ctx, req, target, err)
	}
	completion.CompletedBy = req.UserID
	completion.CompletedAt = s.now(ctx)
	if completion.ProofReference == "" {
		completion.ProofReference = req.ProofReference
	}

	isLast := target.StepNumber == len(steps)
	var (
		completed *models.FulfillmentStep
		advanced  bool
	)
	err = s.tx.RunInTx(ctx, func(ctx context.Context) error {
		var err error
		completed, err = s.steps.CompleteStep(ctx, tx.ID, target.StepNumber, completion)
		if err != nil {
			return err
		}
		if !isLast {
			return nil
		}
		err = s.transactions.TransitionStatus(ctx, tx.ID, models.AdvanceableStatuses, models.TransactionClosing, completion.CompletedAt)
		switch {
		case err == nil:
			advanced = true
			return nil
		case errors.Is(err, sentinel.ErrInvalidState):
			// Status moved outside fund protection meanwhile; the completion
			// still stands.
			if s.logger != nil {
				s.logger.WarnContext(ctx, "final step completed but transaction not advanceable", "transaction_id", tx.ID)
			}
			return nil
		default:
			return err
		}
	})
	if err != nil {
		if errors.Is(err, sentinel.ErrInvalidState) || errors.Is(err, sentinel.ErrNotFound) {
			s.reject(ctx, req, rejectAlreadyDone)
			return nil, dErrors.New(dErrors.CodeConflict, rejectionMessage(rejectAlreadyDone))
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to record step completion")
	}

	s.recordCompleted(ctx, tx, *completed, advanced)
	return &ActionResult{Step: *completed, AllStepsComplete: isLast, Advanced: advanced}, nil
}

// checkTurn finds the step of type t and verifies it is the current one.
func checkTurn(tx *models.Transaction, steps models.Plan, t models.StepType) (*models.FulfillmentStep, string) {
	if tx.Status.IsTerminal() || tx.Status == models.TransactionClosing {
		return nil, rejectClosed
	}
	if len(steps) == 0 {
		return nil, rejectNoPlan
	}
	target := steps.Find(t)
	if target == nil {
		return nil, rejectNotInPlan
	}
	if target.IsCompleted() {
		return nil, rejectAlreadyDone
	}
	if cur := steps.Current(); cur == nil || cur.StepNumber != target.StepNumber {
		return nil, rejectOutOfTurn
	}
	return target, ""
}

func rejectionMessage(reason string) string {
	switch reason {
	case rejectClosed:
		return "transaction is no longer in fund protection"
	case rejectNoPlan:
		return "fulfillment plan has not been built"
	case rejectNotInPlan:
		return "step is not part of this plan"
	case rejectAlreadyDone:
		return "step already completed"
	case rejectOutOfTurn:
		return "step is not the current step"
	case rejectDepositMissing:
		return "deposit not detected in the buyer wallet"
	case rejectNoSettlement:
		return "seller settlement wallet is not provisioned yet"
	default:
		return "action rejected"
	}
}

// actionFailed classifies executor errors. Partner errors keep their type so
// callers can read the partner status and code.
func (s *Service) actionFailed(ctx context.Context, req ActionRequest, step *models.FulfillmentStep, err error) error {
	var pe *partner.Error
	if errors.As(err, &pe) {
		if s.metrics != nil {
			s.metrics.PartnerFailures.WithLabelValues(string(step.StepType), pe.Code).Inc()
		}
		if s.logger != nil {
			args := []any{
				"transaction_id", req.TransactionID,
				"step_number", step.StepNumber,
				"step_type", step.StepType,
				"partner_status", pe.StatusCode,
				"partner_code", pe.Code,
				"retryable", pe.Temporary(),
			}
			if step.StepType.MovesMoney() {
				args = append(args, "idempotency_key", keyPrefix(s.idempotencyKeyFor(*step)))
			}
			s.logger.WarnContext(ctx, "partner call failed", args...)
		}
		return dErrors.Wrap(err, dErrors.CodePartner, "partner rejected "+strings.ToLower(string(step.StepType)))
	}
	var unmet *unmetPrecondition
	if errors.As(err, &unmet) {
		s.reject(ctx, req, unmet.reason)
		return dErrors.New(dErrors.CodeConflict, rejectionMessage(unmet.reason))
	}
	return dErrors.Wrap(err, dErrors.CodeInternal, "failed to apply action")
}

func (s *Service) recordCompleted(ctx context.Context, tx *models.Transaction, step models.FulfillmentStep, advanced bool) {
	if s.metrics != nil {
		s.metrics.StepsCompleted.WithLabelValues(string(step.StepType)).Inc()
		if advanced {
			s.metrics.TransactionsAdvanced.Inc()
		}
	}
	attrs := []any{
		"user_id", *step.CompletedBy,
		"transaction_id", tx.ID,
		"step_number", step.StepNumber,
		"step_type", string(step.StepType),
		"amount", step.Amount.String(),
	}
	if step.PartnerReference != "" {
		attrs = append(attrs, "partner_reference", step.PartnerReference)
	}
	s.logAudit(ctx, audit.EventStepCompleted, attrs...)
	if step.StepType == models.StepFiatConfirm {
		// Seller self-report; nothing on our side can verify it.
		s.logAudit(ctx, audit.EventFiatAttested,
			"user_id", *step.CompletedBy,
			"transaction_id", tx.ID,
			"amount", step.Amount.String(),
		)
	}
	if advanced {
		s.logAudit(ctx, audit.EventTransactionAdvanced,
			"user_id", *step.CompletedBy,
			"transaction_id", tx.ID,
			"status", models.TransactionClosing,
		)
	}
}

func (s *Service) reject(ctx context.Context, req ActionRequest, reason string) {
	if s.metrics != nil {
		s.metrics.ActionsRejected.WithLabelValues(reason).Inc()
	}
	s.logAudit(ctx, audit.EventActionRejected,
		"user_id", req.UserID,
		"transaction_id", req.TransactionID,
		"step_type", string(req.StepType),
		"reason", reason,
	)
}

func decimalPtr(d decimal.Decimal) *decimal.Decimal {
	return &d
}
