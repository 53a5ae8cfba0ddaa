package orchestrator

import (
	"context"

	"propex/internal/fundprotection/models"
	id "propex/pkg/domain"
	dErrors "propex/pkg/domain-errors"
)

// StatusView is what either party sees when polling a transaction.
type StatusView struct {
	TransactionID     id.TransactionID
	TransactionStatus models.TransactionStatus
	Role              models.Role
	State             models.FulfillmentState
	Steps             models.Plan
	CurrentStep       *models.FulfillmentStep
	Progress          models.Progress
	NeedsUserAction   bool
	// SellerBankDetails is shown to the buyer only.
	SellerBankDetails *BankDetails
	UploadedProof     string
}

// GetStatus is a pure read of the plan as seen by userID.
func (s *Service) GetStatus(ctx context.Context, txID id.TransactionID, userID id.UserID) (*StatusView, error) {
	tx, role, err := s.loadForParty(ctx, txID, userID)
	if err != nil {
		return nil, err
	}
	steps, err := s.steps.ListSteps(ctx, txID)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load steps")
	}
	steps = steps.Sorted()

	view := &StatusView{
		TransactionID:     tx.ID,
		TransactionStatus: tx.Status,
		Role:              role,
		State:             steps.State(),
		Steps:             steps,
		Progress:          steps.Progress(),
	}
	if cur := steps.Current(); cur != nil {
		c := *cur
		view.CurrentStep = &c
		view.NeedsUserAction = c.OwnerRole == role && !tx.Status.IsTerminal()
	}
	if upload := steps.Find(models.StepFiatUpload); upload != nil {
		view.UploadedProof = upload.ProofReference
	}
	if role == models.RoleBuyer && s.banks != nil && len(steps) > 0 {
		details, err := s.banks.BankDetails(ctx, tx.SellerID)
		if err != nil {
			return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load seller bank details")
		}
		view.SellerBankDetails = details
	}
	return view, nil
}
