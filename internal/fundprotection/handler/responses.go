package handler

import (
	"time"

	"github.com/shopspring/decimal"

	"propex/internal/fundprotection/models"
	"propex/internal/fundprotection/orchestrator"
	"propex/pkg/platform/httputil"
)

// StepResponse is one fulfillment step on the wire.
type StepResponse struct {
	StepNumber       int              `json:"step_number"`
	StepType         string           `json:"step_type"`
	OwnerRole        string           `json:"owner_role"`
	Status           string           `json:"status"`
	Amount           decimal.Decimal  `json:"amount"`
	Currency         string           `json:"currency"`
	Asset            string           `json:"asset,omitempty"`
	ProofReference   string           `json:"proof_reference,omitempty"`
	PartnerReference string           `json:"partner_reference,omitempty"`
	RealizedAmount   *decimal.Decimal `json:"realized_amount,omitempty"`
	RealizedRate     *decimal.Decimal `json:"realized_rate,omitempty"`
	CompletedAt      *time.Time       `json:"completed_at,omitempty"`
}

type BankDetailsResponse struct {
	IBAN          string `json:"iban"`
	BankName      string `json:"bank_name,omitempty"`
	AccountNumber string `json:"account_number,omitempty"`
}

// StatusResponse is the body of GET .../status.
type StatusResponse struct {
	TransactionID     string               `json:"transaction_id"`
	TransactionStatus string               `json:"transaction_status"`
	Role              string               `json:"role"`
	State             string               `json:"state"`
	Steps             []StepResponse       `json:"steps"`
	CurrentStep       *StepResponse        `json:"current_step,omitempty"`
	Progress          models.Progress      `json:"progress"`
	NeedsUserAction   bool                 `json:"needs_user_action"`
	SellerBankDetails *BankDetailsResponse `json:"seller_bank_details,omitempty"`
	UploadedProof     string               `json:"uploaded_proof,omitempty"`
}

type CryptoLegResponse struct {
	Planned bool   `json:"planned"`
	Skipped bool   `json:"skipped"`
	Reason  string `json:"reason,omitempty"`
	PayOut  bool   `json:"pay_out"`
}

// PlanResponse is the body of POST .../plan.
type PlanResponse struct {
	Created   bool              `json:"created"`
	Steps     []StepResponse    `json:"steps"`
	CryptoLeg CryptoLegResponse `json:"crypto_leg"`
}

// ActionResponse is the body of every step action.
type ActionResponse struct {
	StepNumber       int              `json:"step_number"`
	StepType         string           `json:"step_type"`
	Amount           decimal.Decimal  `json:"amount"`
	Currency         string           `json:"currency"`
	RealizedAmount   *decimal.Decimal `json:"realized_amount,omitempty"`
	RealizedRate     *decimal.Decimal `json:"realized_rate,omitempty"`
	PartnerReference string           `json:"partner_reference,omitempty"`
	AllStepsComplete bool             `json:"all_steps_complete"`
}

// PartnerErrorResponse extends the error envelope with what the partner said.
type PartnerErrorResponse struct {
	httputil.ErrorResponse
	PartnerStatus int    `json:"partner_status,omitempty"`
	PartnerCode   string `json:"partner_code,omitempty"`
	// Retryable is true when resubmitting the same action later may succeed.
	Retryable bool `json:"retryable"`
}

func fromStep(s models.FulfillmentStep) StepResponse {
	return StepResponse{
		StepNumber:       s.StepNumber,
		StepType:         string(s.StepType),
		OwnerRole:        string(s.OwnerRole),
		Status:           string(s.Status),
		Amount:           s.Amount,
		Currency:         string(s.Currency),
		Asset:            string(s.Asset),
		ProofReference:   s.ProofReference,
		PartnerReference: s.PartnerReference,
		RealizedAmount:   s.RealizedAmount,
		RealizedRate:     s.RealizedRate,
		CompletedAt:      s.CompletedAt,
	}
}

func fromSteps(p models.Plan) []StepResponse {
	out := make([]StepResponse, 0, len(p))
	for _, s := range p {
		out = append(out, fromStep(s))
	}
	return out
}

func fromStatusView(v *orchestrator.StatusView) *StatusResponse {
	resp := &StatusResponse{
		TransactionID:     v.TransactionID.String(),
		TransactionStatus: string(v.TransactionStatus),
		Role:              string(v.Role),
		State:             string(v.State),
		Steps:             fromSteps(v.Steps),
		Progress:          v.Progress,
		NeedsUserAction:   v.NeedsUserAction,
		UploadedProof:     v.UploadedProof,
	}
	if v.CurrentStep != nil {
		cur := fromStep(*v.CurrentStep)
		resp.CurrentStep = &cur
	}
	if v.SellerBankDetails != nil {
		resp.SellerBankDetails = &BankDetailsResponse{
			IBAN:          v.SellerBankDetails.IBAN,
			BankName:      v.SellerBankDetails.BankName,
			AccountNumber: v.SellerBankDetails.AccountNumber,
		}
	}
	return resp
}

func fromBuildResult(r *orchestrator.BuildResult) *PlanResponse {
	return &PlanResponse{
		Created: r.Created,
		Steps:   fromSteps(r.Steps),
		CryptoLeg: CryptoLegResponse{
			Planned: r.CryptoLeg.Planned,
			Skipped: r.CryptoLeg.Skipped,
			Reason:  string(r.CryptoLeg.Reason),
			PayOut:  r.CryptoLeg.PayOut,
		},
	}
}

func fromActionResult(r *orchestrator.ActionResult) *ActionResponse {
	return &ActionResponse{
		StepNumber:       r.Step.StepNumber,
		StepType:         string(r.Step.StepType),
		Amount:           r.Step.Amount,
		Currency:         string(r.Step.Currency),
		RealizedAmount:   r.Step.RealizedAmount,
		RealizedRate:     r.Step.RealizedRate,
		PartnerReference: r.Step.PartnerReference,
		AllStepsComplete: r.AllStepsComplete,
	}
}

// TransactionResponse echoes a registered transaction.
type TransactionResponse struct {
	ID               string          `json:"id"`
	PropertyID       string          `json:"property_id"`
	Price            decimal.Decimal `json:"price"`
	Currency         string          `json:"currency"`
	PaymentMethod    string          `json:"payment_method"`
	CryptoPercentage *int            `json:"crypto_percentage,omitempty"`
	FiatPercentage   *int            `json:"fiat_percentage,omitempty"`
	BuyerID          string          `json:"buyer_id"`
	SellerID         string          `json:"seller_id"`
	Status           string          `json:"status"`
	CreatedAt        time.Time       `json:"created_at"`
}

func fromTransaction(tx *models.Transaction) *TransactionResponse {
	return &TransactionResponse{
		ID:               tx.ID.String(),
		PropertyID:       tx.PropertyID.String(),
		Price:            tx.Price,
		Currency:         string(tx.Currency),
		PaymentMethod:    string(tx.PaymentMethod),
		CryptoPercentage: tx.CryptoPercentage,
		FiatPercentage:   tx.FiatPercentage,
		BuyerID:          tx.BuyerID.String(),
		SellerID:         tx.SellerID.String(),
		Status:           string(tx.Status),
		CreatedAt:        tx.CreatedAt,
	}
}
