// Package plan turns an agreed transaction into its ordered fulfillment
// steps. Build is pure: wallet lookups happen before it is called and
// persistence after.
package plan

import (
	"time"

	"github.com/shopspring/decimal"

	"propex/internal/fundprotection/models"
	id "propex/pkg/domain"
	dErrors "propex/pkg/domain-errors"
)

// CryptoLegPolicy decides what happens when the crypto leg is ineligible.
type CryptoLegPolicy string

const (
	// PolicySkip drops the crypto leg and reports it in the outcome.
	PolicySkip CryptoLegPolicy = "skip"
	// PolicyRequire fails the build instead.
	PolicyRequire CryptoLegPolicy = "require"
)

func ParsePolicy(s string) (CryptoLegPolicy, error) {
	switch CryptoLegPolicy(s) {
	case "", PolicySkip:
		return PolicySkip, nil
	case PolicyRequire:
		return PolicyRequire, nil
	}
	return "", dErrors.New(dErrors.CodeInvalidInput, "unknown crypto leg policy: "+s)
}

// LegOutcome records what the builder did with the crypto leg.
type LegOutcome struct {
	Planned    bool
	Skipped    bool
	Reason     IneligibleReason
	PayOut     bool
	Asset      id.Currency
	Amount     decimal.Decimal
	Settlement id.Currency
}

type Input struct {
	Transaction models.Transaction
	// CryptoLeg is ignored for FIAT transactions.
	CryptoLeg CryptoLegAvailability
	Policy    CryptoLegPolicy
	// Settlement is the fiat currency crypto proceeds convert into.
	Settlement id.Currency
	Now        time.Time
	// NewID defaults to id.NewStepID.
	NewID func() id.StepID
}

type Result struct {
	Steps     models.Plan
	CryptoLeg LegOutcome
}

// Build produces the canonical step sequence. Crypto-leg steps come first,
// fiat-leg steps after, numbered 1..n without gaps.
func Build(in Input) (*Result, error) {
	tx := in.Transaction
	if err := tx.Validate(); err != nil {
		return nil, err
	}
	newID := in.NewID
	if newID == nil {
		newID = id.NewStepID
	}
	settlement := in.Settlement
	if settlement == "" {
		settlement = tx.Currency
	}

	cryptoAmount, fiatAmount := tx.Legs()
	res := &Result{}
	b := builder{tx: tx, newID: newID, now: in.Now, currency: tx.Currency}

	if tx.PaymentMethod != models.PaymentFiat {
		leg := in.CryptoLeg
		res.CryptoLeg = LegOutcome{Asset: leg.Asset, Amount: cryptoAmount, Settlement: settlement}
		switch {
		case leg.Eligible:
			res.CryptoLeg.Planned = true
			res.CryptoLeg.PayOut = leg.CanPayOut()
			b.cryptoLeg(cryptoAmount, leg)
		case tx.PaymentMethod == models.PaymentCrypto:
			return nil, dErrors.New(dErrors.CodeConflict, "crypto payment requires wallets for both parties: "+string(leg.Reason))
		case in.Policy == PolicyRequire:
			return nil, dErrors.New(dErrors.CodeConflict, "crypto leg is not available: "+string(leg.Reason))
		default:
			res.CryptoLeg.Skipped = true
			res.CryptoLeg.Reason = leg.Reason
		}
	}

	if tx.PaymentMethod != models.PaymentCrypto {
		b.fiatLeg(fiatAmount)
	}

	res.Steps = b.steps
	return res, nil
}

type builder struct {
	tx       models.Transaction
	newID    func() id.StepID
	now      time.Time
	currency id.Currency
	steps    models.Plan
}

func (b *builder) add(t models.StepType, amount decimal.Decimal, asset id.Currency, from, to string) {
	b.steps = append(b.steps, models.FulfillmentStep{
		ID:            b.newID(),
		TransactionID: b.tx.ID,
		StepNumber:    len(b.steps) + 1,
		StepType:      t,
		OwnerRole:     t.Owner(),
		Amount:        amount,
		Currency:      b.currency,
		Asset:         asset,
		FromWalletRef: from,
		ToWalletRef:   to,
		Status:        models.StepPending,
		CreatedAt:     b.now,
	})
}

func (b *builder) cryptoLeg(amount decimal.Decimal, leg CryptoLegAvailability) {
	b.add(models.StepCryptoDeposit, amount, leg.Asset, "", leg.BuyerWalletRef)
	b.add(models.StepCryptoTransfer, amount, leg.Asset, leg.BuyerWalletRef, leg.SellerWalletRef)
	b.add(models.StepCryptoConvert, amount, leg.Asset, leg.SellerWalletRef, leg.SellerSettlementWalletRef)
	if leg.CanPayOut() {
		b.add(models.StepIBANTransfer, amount, "", leg.SellerSettlementWalletRef, leg.SellerIBAN)
	}
}

func (b *builder) fiatLeg(amount decimal.Decimal) {
	b.add(models.StepFiatUpload, amount, "", "", "")
	b.add(models.StepFiatConfirm, amount, "", "", "")
}
