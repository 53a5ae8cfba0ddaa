// Package availability answers the fund protection side's questions about
// wallets: can the parties move digital assets, and where does the seller get
// paid out.
package availability

import (
	"context"
	"errors"
	"fmt"
	"slices"

	"propex/internal/fundprotection/orchestrator"
	"propex/internal/fundprotection/plan"
	"propex/internal/wallet/models"
	id "propex/pkg/domain"
	"propex/pkg/platform/sentinel"
)

type Store interface {
	ListWallets(ctx context.Context, userID id.UserID) ([]models.Wallet, error)
	FindIBAN(ctx context.Context, userID id.UserID) (*models.DigitalIBAN, error)
}

// Adapter implements plan.WalletAvailability and orchestrator.BankDirectory
// over the wallet store.
type Adapter struct {
	store      Store
	base       []id.Currency
	settlement id.Currency
}

// New ranks crypto wallets by their position in base; wallets in other
// non-settlement currencies come after, by code.
func New(store Store, base []id.Currency, settlement id.Currency) *Adapter {
	return &Adapter{store: store, base: base, settlement: settlement}
}

var (
	_ plan.WalletAvailability    = (*Adapter)(nil)
	_ orchestrator.BankDirectory = (*Adapter)(nil)
)

// CryptoLeg picks the buyer's first crypto wallet, then the seller's wallet
// in the same asset or, failing that, the seller's first crypto wallet.
func (a *Adapter) CryptoLeg(ctx context.Context, buyer, seller id.UserID) (plan.CryptoLegAvailability, error) {
	buyerWallets, err := a.store.ListWallets(ctx, buyer)
	if err != nil {
		return plan.CryptoLegAvailability{}, fmt.Errorf("list buyer wallets: %w", err)
	}
	buyerCrypto := a.cryptoWallets(buyerWallets)
	if len(buyerCrypto) == 0 {
		return plan.Ineligible(plan.ReasonBuyerNoCryptoWallet), nil
	}
	from := buyerCrypto[0]

	sellerWallets, err := a.store.ListWallets(ctx, seller)
	if err != nil {
		return plan.CryptoLegAvailability{}, fmt.Errorf("list seller wallets: %w", err)
	}
	sellerCrypto := a.cryptoWallets(sellerWallets)
	if len(sellerCrypto) == 0 {
		return plan.Ineligible(plan.ReasonSellerNoCryptoWallet), nil
	}
	to := sellerCrypto[0]
	for _, w := range sellerCrypto {
		if w.Currency == from.Currency {
			to = w
			break
		}
	}

	out := plan.CryptoLegAvailability{
		Eligible:        true,
		Asset:           from.Currency,
		BuyerWalletRef:  from.PartnerWalletID,
		SellerWalletRef: to.PartnerWalletID,
	}
	out.SellerSettlementWalletRef = a.settlementRef(sellerWallets)
	iban, err := a.store.FindIBAN(ctx, seller)
	switch {
	case err == nil:
		out.SellerIBAN = iban.IBAN
	case !errors.Is(err, sentinel.ErrNotFound):
		return plan.CryptoLegAvailability{}, fmt.Errorf("find seller iban: %w", err)
	}
	return out, nil
}

// SettlementWalletRef returns the partner id of the user's settlement-currency
// wallet, or "" when none is provisioned yet.
func (a *Adapter) SettlementWalletRef(ctx context.Context, userID id.UserID) (string, error) {
	wallets, err := a.store.ListWallets(ctx, userID)
	if err != nil {
		return "", fmt.Errorf("list wallets: %w", err)
	}
	return a.settlementRef(wallets), nil
}

func (a *Adapter) settlementRef(wallets []models.Wallet) string {
	for _, w := range wallets {
		if w.Currency == a.settlement {
			return w.PartnerWalletID
		}
	}
	return ""
}

func (a *Adapter) BankDetails(ctx context.Context, userID id.UserID) (*orchestrator.BankDetails, error) {
	iban, err := a.store.FindIBAN(ctx, userID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("find iban: %w", err)
	}
	return &orchestrator.BankDetails{
		IBAN:          iban.IBAN,
		BankName:      iban.BankName,
		AccountNumber: iban.AccountNumber,
	}, nil
}

// cryptoWallets drops the settlement wallet and orders the rest.
func (a *Adapter) cryptoWallets(wallets []models.Wallet) []models.Wallet {
	out := make([]models.Wallet, 0, len(wallets))
	for _, w := range wallets {
		if w.Currency != a.settlement {
			out = append(out, w)
		}
	}
	rank := func(c id.Currency) int {
		if i := slices.Index(a.base, c); i >= 0 {
			return i
		}
		return len(a.base)
	}
	slices.SortStableFunc(out, func(x, y models.Wallet) int {
		if d := rank(x.Currency) - rank(y.Currency); d != 0 {
			return d
		}
		switch {
		case x.Currency < y.Currency:
			return -1
		case x.Currency > y.Currency:
			return 1
		}
		return 0
	})
	return out
}
