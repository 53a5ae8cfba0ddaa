package models

import (
	"time"

	"github.com/shopspring/decimal"

	id "propex/pkg/domain"
)

type StepType string

const (
	StepCryptoDeposit  StepType = "CRYPTO_DEPOSIT"
	StepCryptoTransfer StepType = "CRYPTO_TRANSFER"
	StepCryptoConvert  StepType = "CRYPTO_CONVERT"
	StepIBANTransfer   StepType = "IBAN_TRANSFER"
	StepFiatUpload     StepType = "FIAT_UPLOAD"
	StepFiatConfirm    StepType = "FIAT_CONFIRM"
)

// stepOwners fixes which party performs each step type.
var stepOwners = map[StepType]Role{
	StepCryptoDeposit:  RoleBuyer,
	StepCryptoTransfer: RoleBuyer,
	StepCryptoConvert:  RoleSeller,
	StepIBANTransfer:   RoleSeller,
	StepFiatUpload:     RoleBuyer,
	StepFiatConfirm:    RoleSeller,
}

func (t StepType) IsValid() bool {
	_, ok := stepOwners[t]
	return ok
}

// Owner returns the role that acts on steps of this type.
func (t StepType) Owner() Role {
	return stepOwners[t]
}

// MovesMoney reports whether acting on the step calls the partner to move
// funds.
func (t StepType) MovesMoney() bool {
	switch t {
	case StepCryptoTransfer, StepCryptoConvert, StepIBANTransfer:
		return true
	}
	return false
}

type StepStatus string

const (
	StepPending   StepStatus = "PENDING"
	StepCompleted StepStatus = "COMPLETED"
)

// FulfillmentStep is one required action in a transaction's plan. Amount and
// Currency hold the settlement value of the leg; Asset names the digital
// asset moved by crypto steps.
type FulfillmentStep struct {
	ID            id.StepID
	TransactionID id.TransactionID
	StepNumber    int
	StepType      StepType
	OwnerRole     Role
	Amount        decimal.Decimal
	Currency      id.Currency
	Asset         id.Currency
	FromWalletRef string
	ToWalletRef   string
	Status        StepStatus
	CreatedAt     time.Time

	// Completion facts; zero until Status is COMPLETED.
	ProofReference   string
	PartnerReference string
	RealizedAmount   *decimal.Decimal
	RealizedRate     *decimal.Decimal
	CompletedBy      *id.UserID
	CompletedAt      *time.Time
}

func (s *FulfillmentStep) IsCompleted() bool {
	return s.Status == StepCompleted
}

// StepCompletion is the only mutation ever applied to a step.
type StepCompletion struct {
	CompletedBy      id.UserID
	CompletedAt      time.Time
	ProofReference   string
	PartnerReference string
	RealizedAmount   *decimal.Decimal
	RealizedRate     *decimal.Decimal
}

// Apply returns a copy of s with the completion recorded.
func (c StepCompletion) Apply(s FulfillmentStep) FulfillmentStep {
	by := c.CompletedBy
	at := c.CompletedAt
	s.Status = StepCompleted
	s.CompletedBy = &by
	s.CompletedAt = &at
	if c.ProofReference != "" {
		s.ProofReference = c.ProofReference
	}
	s.PartnerReference = c.PartnerReference
	s.RealizedAmount = c.RealizedAmount
	s.RealizedRate = c.RealizedRate
	return s
}
