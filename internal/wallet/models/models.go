// Package models holds the wallet side of a marketplace user: their account
// linkage to the partner and the custodial wallets and digital IBAN
// provisioned for them.
package models

import (
	"time"

	id "propex/pkg/domain"
)

type KYCStatus string

const (
	KYCPending  KYCStatus = "PENDING"
	KYCApproved KYCStatus = "APPROVED"
	KYCRejected KYCStatus = "REJECTED"
)

// EligibleKYCStatuses are the identity verification outcomes that allow
// wallet provisioning.
var EligibleKYCStatuses = []KYCStatus{KYCApproved}

type Role string

const (
	RoleBuyer  Role = "BUYER"
	RoleSeller Role = "SELLER"
)

func (r Role) IsValid() bool {
	return r == RoleBuyer || r == RoleSeller
}

// SkipReason explains why a user was not reconciled.
type SkipReason string

const (
	SkipNone             SkipReason = ""
	SkipKYCNotApproved   SkipReason = "kyc_not_approved"
	SkipNoPartnerAccount SkipReason = "no_partner_account"
)

// CurrencyIBAN names the digital IBAN in per-currency reconciliation results.
const CurrencyIBAN = "IBAN"

// Account links a marketplace user to the partner.
type Account struct {
	UserID         id.UserID
	Role           Role
	KYCStatus      KYCStatus
	KYCTier        int
	PartnerUserRef string
	CreatedAt      time.Time
}

// Eligibility returns SkipNone when the account may hold wallets.
func (a *Account) Eligibility() SkipReason {
	if a.KYCStatus != KYCApproved {
		return SkipKYCNotApproved
	}
	if a.PartnerUserRef == "" {
		return SkipNoPartnerAccount
	}
	return SkipNone
}

// Wallet is a custodial wallet provisioned at the partner for one currency.
type Wallet struct {
	ID              id.WalletID
	UserID          id.UserID
	Currency        id.Currency
	PartnerWalletID string
	Address         string
	CreatedAt       time.Time
}

type DigitalIBAN struct {
	UserID        id.UserID
	IBAN          string
	BankName      string
	AccountNumber string
	CreatedAt     time.Time
}

// Requirement is the wallet set a role must hold.
type Requirement struct {
	Currencies []id.Currency
	IBAN       bool
}

// RequiredFor returns the base currencies for everyone, plus the settlement
// wallet and a digital IBAN for sellers.
func RequiredFor(role Role, base []id.Currency, settlement id.Currency) Requirement {
	req := Requirement{Currencies: append([]id.Currency(nil), base...)}
	if role == RoleSeller {
		req.Currencies = append(req.Currencies, settlement)
		req.IBAN = true
	}
	return req
}
