package handler

import (
	"time"

	"propex/internal/partner"
	"propex/internal/wallet/models"
	"propex/internal/wallet/reconcile"
	id "propex/pkg/domain"
)

type AccountResponse struct {
	UserID         string    `json:"user_id"`
	Role           string    `json:"role"`
	KYCStatus      string    `json:"kyc_status"`
	KYCTier        int       `json:"kyc_tier"`
	PartnerUserRef string    `json:"partner_user_ref,omitempty"`
	Eligible       bool      `json:"eligible"`
	SkipReason     string    `json:"skip_reason,omitempty"`
	CreatedAt      time.Time `json:"created_at"`
}

type WalletResponse struct {
	ID              string    `json:"id"`
	Currency        string    `json:"currency"`
	PartnerWalletID string    `json:"partner_wallet_id"`
	Address         string    `json:"address,omitempty"`
	CreatedAt       time.Time `json:"created_at"`
}

type IBANResponse struct {
	IBAN          string `json:"iban"`
	BankName      string `json:"bank_name"`
	AccountNumber string `json:"account_number"`
}

type HoldingsResponse struct {
	UserID  string           `json:"user_id"`
	Wallets []WalletResponse `json:"wallets"`
	IBAN    *IBANResponse    `json:"digital_iban,omitempty"`
}

type CurrencyErrorResponse struct {
	Currency      string `json:"currency"`
	Error         string `json:"error"`
	PartnerStatus int    `json:"partner_status,omitempty"`
	PartnerCode   string `json:"partner_code,omitempty"`
}

type ResultResponse struct {
	UserID  string                  `json:"user_id"`
	Skipped string                  `json:"skipped,omitempty"`
	Created []string                `json:"created"`
	Adopted []string                `json:"adopted"`
	Failed  []string                `json:"failed"`
	Errors  []CurrencyErrorResponse `json:"errors,omitempty"`
}

type UserErrorResponse struct {
	UserID string `json:"user_id"`
	Error  string `json:"error"`
}

type SweepResponse struct {
	StartedAt   time.Time           `json:"started_at"`
	DurationMS  int64               `json:"duration_ms"`
	Users       int                 `json:"users"`
	Reconciled  int                 `json:"reconciled"`
	Skipped     int                 `json:"skipped"`
	Created     int                 `json:"created"`
	Failed      int                 `json:"failed"`
	Interrupted bool                `json:"interrupted"`
	Errors      []UserErrorResponse `json:"errors,omitempty"`
}

func fromAccount(acc *models.Account) AccountResponse {
	reason := acc.Eligibility()
	return AccountResponse{
		UserID:         acc.UserID.String(),
		Role:           string(acc.Role),
		KYCStatus:      string(acc.KYCStatus),
		KYCTier:        acc.KYCTier,
		PartnerUserRef: acc.PartnerUserRef,
		Eligible:       reason == models.SkipNone,
		SkipReason:     string(reason),
		CreatedAt:      acc.CreatedAt,
	}
}

func fromHoldings(userID id.UserID, wallets []models.Wallet, iban *models.DigitalIBAN) HoldingsResponse {
	out := HoldingsResponse{UserID: userID.String(), Wallets: make([]WalletResponse, 0, len(wallets))}
	for _, w := range wallets {
		out.Wallets = append(out.Wallets, WalletResponse{
			ID:              w.ID.String(),
			Currency:        string(w.Currency),
			PartnerWalletID: w.PartnerWalletID,
			Address:         w.Address,
			CreatedAt:       w.CreatedAt,
		})
	}
	if iban != nil {
		out.IBAN = &IBANResponse{IBAN: iban.IBAN, BankName: iban.BankName, AccountNumber: iban.AccountNumber}
	}
	return out
}

func fromResult(res *reconcile.Result) ResultResponse {
	out := ResultResponse{
		UserID:  res.UserID.String(),
		Skipped: string(res.Skipped),
		Created: nonNil(res.Created),
		Adopted: nonNil(res.Adopted),
		Failed:  nonNil(res.Failed),
	}
	for _, ce := range res.Errors {
		e := CurrencyErrorResponse{Currency: ce.Currency, Error: ce.Err.Error()}
		if pe, ok := partner.AsError(ce.Err); ok {
			e.PartnerStatus = pe.StatusCode
			e.PartnerCode = pe.Code
		}
		out.Errors = append(out.Errors, e)
	}
	return out
}

func fromSweepReport(r *reconcile.SweepReport) SweepResponse {
	out := SweepResponse{
		StartedAt:   r.StartedAt,
		DurationMS:  r.Duration.Milliseconds(),
		Users:       r.Users,
		Reconciled:  r.Reconciled,
		Skipped:     r.Skipped,
		Created:     r.Created,
		Failed:      r.Failed,
		Interrupted: r.Interrupted,
	}
	for _, ue := range r.Errors {
		out.Errors = append(out.Errors, UserErrorResponse{UserID: ue.UserID.String(), Error: ue.Err.Error()})
	}
	return out
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
