package partner

import (
	"github.com/shopspring/decimal"
)

// Wallet is a custodial wallet held at the partner.
type Wallet struct {
	WalletID string `json:"walletId"`
	UserID   string `json:"userId,omitempty"`
	Currency string `json:"currency"`
	Address  string `json:"address,omitempty"`
}

type Balance struct {
	WalletID  string          `json:"walletId"`
	Currency  string          `json:"currency"`
	Available decimal.Decimal `json:"available"`
}

type ConvertRequest struct {
	WalletID       string          `json:"walletId"`
	Amount         decimal.Decimal `json:"amount"`
	TargetCurrency string          `json:"targetCurrency"`
}

type Conversion struct {
	ConversionID    string          `json:"conversionId,omitempty"`
	ConvertedAmount decimal.Decimal `json:"convertedAmount"`
	Rate            decimal.Decimal `json:"rate"`
}

type TransferRequest struct {
	FromWalletID string          `json:"fromWalletId"`
	ToWalletID   string          `json:"toWalletId"`
	Amount       decimal.Decimal `json:"amount"`
	Currency     string          `json:"currency"`
}

type Transfer struct {
	TransferID string `json:"transferId"`
	Status     string `json:"status"`
}

type BankTransferRequest struct {
	WalletID string          `json:"walletId"`
	Amount   decimal.Decimal `json:"amount"`
}

type DigitalIBAN struct {
	IBAN          string `json:"iban"`
	BankName      string `json:"bankName"`
	AccountNumber string `json:"accountNumber"`
}

type createWalletRequest struct {
	UserID   string `json:"userId"`
	Currency string `json:"currency"`
}

type provisionIBANRequest struct {
	UserID string `json:"userId"`
}

type listWalletsResponse struct {
	Wallets []Wallet `json:"wallets"`
}

// errorBody accepts both {"code","message"} and {"error":{"code","message"}}.
type errorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Error   *struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}
