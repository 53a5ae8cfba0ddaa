package plan

import (
	"context"

	id "propex/pkg/domain"
)

// IneligibleReason explains why the crypto leg cannot be planned.
type IneligibleReason string

const (
	ReasonNone                 IneligibleReason = ""
	ReasonBuyerNoCryptoWallet  IneligibleReason = "buyer_no_crypto_wallet"
	ReasonSellerNoCryptoWallet IneligibleReason = "seller_no_crypto_wallet"
)

// CryptoLegAvailability is what the wallet side knows about the parties'
// ability to move digital assets. Wallet refs are the partner's wallet ids.
type CryptoLegAvailability struct {
	Eligible bool
	Reason   IneligibleReason

	Asset           id.Currency
	BuyerWalletRef  string
	SellerWalletRef string

	// SellerIBAN alone decides whether the leg ends in a bank payout. The
	// settlement wallet may still be missing at planning time; the payout
	// resolves it when the step runs.
	SellerSettlementWalletRef string
	SellerIBAN                string
}

// Ineligible builds an availability carrying only a reason.
func Ineligible(reason IneligibleReason) CryptoLegAvailability {
	return CryptoLegAvailability{Reason: reason}
}

// CanPayOut reports whether an IBAN_TRANSFER step can be planned.
func (a CryptoLegAvailability) CanPayOut() bool {
	return a.SellerIBAN != ""
}

// WalletAvailability answers whether a buyer/seller pair can settle a crypto
// leg.
type WalletAvailability interface {
	CryptoLeg(ctx context.Context, buyer, seller id.UserID) (CryptoLegAvailability, error)
}
