package handler

import (
	"strings"

	"github.com/shopspring/decimal"

	"propex/internal/fundprotection/models"
	id "propex/pkg/domain"
	dErrors "propex/pkg/domain-errors"
)

// UploadProofRequest is the body of POST .../upload-proof.
type UploadProofRequest struct {
	ProofReference string `json:"proof_reference"`
}

func (r *UploadProofRequest) Normalize() {
	r.ProofReference = strings.TrimSpace(r.ProofReference)
}

func (r *UploadProofRequest) Validate() error {
	if r.ProofReference == "" {
		return dErrors.New(dErrors.CodeValidation, "proof_reference is required")
	}
	return nil
}

// RegisterTransactionRequest is the body of POST /admin/transactions.
type RegisterTransactionRequest struct {
	PropertyID       string          `json:"property_id"`
	Price            decimal.Decimal `json:"price"`
	Currency         string          `json:"currency"`
	PaymentMethod    string          `json:"payment_method"`
	CryptoPercentage *int            `json:"crypto_percentage,omitempty"`
	FiatPercentage   *int            `json:"fiat_percentage,omitempty"`
	BuyerID          string          `json:"buyer_id"`
	SellerID         string          `json:"seller_id"`

	propertyID id.PropertyID
	currency   id.Currency
	buyerID    id.UserID
	sellerID   id.UserID
}

func (r *RegisterTransactionRequest) Normalize() {
	r.PaymentMethod = strings.ToUpper(strings.TrimSpace(r.PaymentMethod))
	r.Currency = strings.TrimSpace(r.Currency)
}

func (r *RegisterTransactionRequest) Validate() error {
	var err error
	if r.propertyID, err = id.ParsePropertyID(r.PropertyID); err != nil {
		return err
	}
	if r.buyerID, err = id.ParseUserID(r.BuyerID); err != nil {
		return err
	}
	if r.sellerID, err = id.ParseUserID(r.SellerID); err != nil {
		return err
	}
	if r.Currency != "" {
		if r.currency, err = id.ParseCurrency(r.Currency); err != nil {
			return err
		}
	}
	if !models.PaymentMethod(r.PaymentMethod).IsValid() {
		return dErrors.New(dErrors.CodeValidation, "payment_method must be FIAT, CRYPTO or HYBRID")
	}
	if !r.Price.IsPositive() {
		return dErrors.New(dErrors.CodeValidation, "price must be positive")
	}
	return nil
}

func (r *RegisterTransactionRequest) toModel() models.Transaction {
	return models.Transaction{
		PropertyID:       r.propertyID,
		Price:            r.Price,
		Currency:         r.currency,
		PaymentMethod:    models.PaymentMethod(r.PaymentMethod),
		CryptoPercentage: r.CryptoPercentage,
		FiatPercentage:   r.FiatPercentage,
		BuyerID:          r.buyerID,
		SellerID:         r.sellerID,
	}
}
