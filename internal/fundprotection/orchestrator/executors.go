package orchestrator

import (
	"context"

	"propex/internal/fundprotection/models"
	"propex/internal/partner"
)

// unmetPrecondition is returned by an executor that found the step cannot run
// yet. It becomes a conflict and an action_rejected audit event.
type unmetPrecondition struct {
	reason string
}

func (e *unmetPrecondition) Error() string {
	return rejectionMessage(e.reason)
}

type actionContext struct {
	tx    *models.Transaction
	steps models.Plan
	step  models.FulfillmentStep
	req   ActionRequest
}

// executor performs one step type's side effect. A returned error means no
// state may change.
type executor func(ctx context.Context, s *Service, ac actionContext) (models.StepCompletion, error)

var executors = map[models.StepType]executor{
	models.StepCryptoDeposit:  confirmDeposit,
	models.StepCryptoTransfer: transferToSeller,
	models.StepCryptoConvert:  convertToSettlement,
	models.StepIBANTransfer:   payOutToBank,
	models.StepFiatUpload:     recordProof,
	models.StepFiatConfirm:    attestReceipt,
}

// confirmDeposit checks the buyer's wallet shows funds.
func confirmDeposit(ctx context.Context, s *Service, ac actionContext) (models.StepCompletion, error) {
	bal, err := s.partner.GetBalance(ctx, ac.step.ToWalletRef)
	if err != nil {
		return models.StepCompletion{}, err
	}
	if !bal.Available.IsPositive() {
		return models.StepCompletion{}, &unmetPrecondition{reason: rejectDepositMissing}
	}
	return models.StepCompletion{}, nil
}

func transferToSeller(ctx context.Context, s *Service, ac actionContext) (models.StepCompletion, error) {
	out, err := s.partner.TransferBetweenWallets(ctx, partner.TransferRequest{
		FromWalletID: ac.step.FromWalletRef,
		ToWalletID:   ac.step.ToWalletRef,
		Amount:       ac.step.Amount,
		Currency:     string(ac.step.Currency),
	}, s.idempotencyKeyFor(ac.step))
	if err != nil {
		return models.StepCompletion{}, err
	}
	return models.StepCompletion{PartnerReference: out.TransferID}, nil
}

func convertToSettlement(ctx context.Context, s *Service, ac actionContext) (models.StepCompletion, error) {
	out, err := s.partner.ConvertCurrency(ctx, partner.ConvertRequest{
		WalletID:       ac.step.FromWalletRef,
		Amount:         ac.step.Amount,
		TargetCurrency: string(s.settlement),
	}, s.idempotencyKeyFor(ac.step))
	if err != nil {
		return models.StepCompletion{}, err
	}
	return models.StepCompletion{
		PartnerReference: out.ConversionID,
		RealizedAmount:   decimalPtr(out.ConvertedAmount),
		RealizedRate:     decimalPtr(out.Rate),
	}, nil
}

// payOutToBank sends what the conversion actually realized, falling back to
// the planned amount. A step planned before the seller's settlement wallet
// existed looks the wallet up now.
func payOutToBank(ctx context.Context, s *Service, ac actionContext) (models.StepCompletion, error) {
	amount := ac.step.Amount
	if conv := ac.steps.Find(models.StepCryptoConvert); conv != nil && conv.RealizedAmount != nil {
		amount = *conv.RealizedAmount
	}
	from := ac.step.FromWalletRef
	if from == "" && s.banks != nil {
		ref, err := s.banks.SettlementWalletRef(ctx, ac.tx.SellerID)
		if err != nil {
			return models.StepCompletion{}, err
		}
		from = ref
	}
	if from == "" {
		return models.StepCompletion{}, &unmetPrecondition{reason: rejectNoSettlement}
	}
	out, err := s.partner.TransferToBank(ctx, partner.BankTransferRequest{
		WalletID: from,
		Amount:   amount,
	}, s.idempotencyKeyFor(ac.step))
	if err != nil {
		return models.StepCompletion{}, err
	}
	return models.StepCompletion{
		PartnerReference: out.TransferID,
		RealizedAmount:   decimalPtr(amount),
	}, nil
}

func recordProof(_ context.Context, _ *Service, ac actionContext) (models.StepCompletion, error) {
	return models.StepCompletion{ProofReference: ac.req.ProofReference}, nil
}

// attestReceipt records the seller's word that fiat arrived.
func attestReceipt(context.Context, *Service, actionContext) (models.StepCompletion, error) {
	return models.StepCompletion{}, nil
}
