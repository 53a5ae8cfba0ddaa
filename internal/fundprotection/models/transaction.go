package models

import (
	"time"

	"github.com/shopspring/decimal"

	id "propex/pkg/domain"
	dErrors "propex/pkg/domain-errors"
)

type PaymentMethod string

const (
	PaymentFiat   PaymentMethod = "FIAT"
	PaymentCrypto PaymentMethod = "CRYPTO"
	PaymentHybrid PaymentMethod = "HYBRID"
)

func (m PaymentMethod) IsValid() bool {
	switch m {
	case PaymentFiat, PaymentCrypto, PaymentHybrid:
		return true
	}
	return false
}

// TransactionStatus is the marketplace stage of a purchase. Fund protection
// only moves it forward into FUND_PROTECTION and CLOSING.
type TransactionStatus string

const (
	TransactionOfferAccepted  TransactionStatus = "OFFER_ACCEPTED"
	TransactionFundProtection TransactionStatus = "FUND_PROTECTION"
	TransactionClosing        TransactionStatus = "CLOSING"
	TransactionCompleted      TransactionStatus = "COMPLETED"
	TransactionCancelled      TransactionStatus = "CANCELLED"
)

// IsTerminal reports statuses after which no step may be acted on.
func (s TransactionStatus) IsTerminal() bool {
	return s == TransactionCompleted || s == TransactionCancelled
}

// AdvanceableStatuses are the statuses the closing transition may start from.
var AdvanceableStatuses = []TransactionStatus{TransactionOfferAccepted, TransactionFundProtection}

// Role is a party's side of a transaction.
type Role string

const (
	RoleBuyer  Role = "BUYER"
	RoleSeller Role = "SELLER"
)

// Transaction is an agreed property purchase.
type Transaction struct {
	ID               id.TransactionID
	PropertyID       id.PropertyID
	Price            decimal.Decimal
	Currency         id.Currency
	PaymentMethod    PaymentMethod
	CryptoPercentage *int
	FiatPercentage   *int
	BuyerID          id.UserID
	SellerID         id.UserID
	Status           TransactionStatus
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// Validate checks the invariants every stored transaction satisfies.
func (t *Transaction) Validate() error {
	if t.ID.IsNil() {
		return dErrors.New(dErrors.CodeInvariantViolation, "transaction id required")
	}
	if !t.Price.IsPositive() {
		return dErrors.New(dErrors.CodeInvariantViolation, "price must be positive")
	}
	if !t.PaymentMethod.IsValid() {
		return dErrors.New(dErrors.CodeInvariantViolation, "unknown payment method: "+string(t.PaymentMethod))
	}
	if t.BuyerID.IsNil() || t.SellerID.IsNil() {
		return dErrors.New(dErrors.CodeInvariantViolation, "buyer and seller required")
	}
	if t.BuyerID == t.SellerID {
		return dErrors.New(dErrors.CodeInvariantViolation, "buyer and seller must differ")
	}
	if t.PaymentMethod != PaymentHybrid {
		return nil
	}
	if t.CryptoPercentage == nil || t.FiatPercentage == nil {
		return dErrors.New(dErrors.CodeInvariantViolation, "hybrid split requires crypto and fiat percentages")
	}
	c, f := *t.CryptoPercentage, *t.FiatPercentage
	if c < 1 || c > 99 || f < 1 || f > 99 {
		return dErrors.New(dErrors.CodeInvariantViolation, "hybrid percentages must be between 1 and 99")
	}
	if c+f != 100 {
		return dErrors.New(dErrors.CodeInvariantViolation, "hybrid percentages must sum to 100")
	}
	return nil
}

// RoleOf returns the user's role in this transaction, or false when the user
// is not a party to it.
func (t *Transaction) RoleOf(userID id.UserID) (Role, bool) {
	switch userID {
	case t.BuyerID:
		return RoleBuyer, true
	case t.SellerID:
		return RoleSeller, true
	}
	return "", false
}

// Legs splits the price into crypto and fiat portions. The crypto portion is
// rounded to cents and the fiat portion takes the remainder, so the two always
// sum to Price exactly.
func (t *Transaction) Legs() (crypto, fiat decimal.Decimal) {
	switch t.PaymentMethod {
	case PaymentCrypto:
		return t.Price, decimal.Zero
	case PaymentHybrid:
		pct := 0
		if t.CryptoPercentage != nil {
			pct = *t.CryptoPercentage
		}
		crypto = t.Price.Mul(decimal.NewFromInt(int64(pct))).Div(decimal.NewFromInt(100)).Round(2)
		return crypto, t.Price.Sub(crypto)
	default:
		return decimal.Zero, t.Price
	}
}
