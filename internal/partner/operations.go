package partner

import (
	"context"
	"net/http"
	"net/url"
)

// CreateWallet opens a wallet in currency for the partner-side user.
func (c *Client) CreateWallet(ctx context.Context, partnerUserID, currency string) (*Wallet, error) {
	var out Wallet
	err := c.do(ctx, call{
		method: http.MethodPost,
		route:  "/wallet",
		path:   "/wallet",
		body:   createWalletRequest{UserID: partnerUserID, Currency: currency},
	}, &out)
	if err != nil {
		return nil, err
	}
	if out.Currency == "" {
		out.Currency = currency
	}
	return &out, nil
}

// ListWallets returns every wallet the partner holds for the user.
func (c *Client) ListWallets(ctx context.Context, partnerUserID string) ([]Wallet, error) {
	var out listWalletsResponse
	err := c.do(ctx, call{
		method: http.MethodGet,
		route:  "/wallets",
		path:   "/wallets?userId=" + url.QueryEscape(partnerUserID),
	}, &out)
	if err != nil {
		return nil, err
	}
	return out.Wallets, nil
}

// GetBalance reads a wallet's available balance.
func (c *Client) GetBalance(ctx context.Context, walletID string) (*Balance, error) {
	var out Balance
	err := c.do(ctx, call{
		method: http.MethodGet,
		route:  "/wallet/{id}/balance",
		path:   "/wallet/" + url.PathEscape(walletID) + "/balance",
	}, &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// ConvertCurrency converts Amount held in WalletID into TargetCurrency.
func (c *Client) ConvertCurrency(ctx context.Context, req ConvertRequest, idempotencyKey string) (*Conversion, error) {
	var out Conversion
	err := c.do(ctx, call{
		method:         http.MethodPost,
		route:          "/wallet/convert",
		path:           "/wallet/convert",
		body:           req,
		idempotencyKey: idempotencyKey,
	}, &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// TransferBetweenWallets moves funds between two custodial wallets.
func (c *Client) TransferBetweenWallets(ctx context.Context, req TransferRequest, idempotencyKey string) (*Transfer, error) {
	var out Transfer
	err := c.do(ctx, call{
		method:         http.MethodPost,
		route:          "/wallet/transfer",
		path:           "/wallet/transfer",
		body:           req,
		idempotencyKey: idempotencyKey,
	}, &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// TransferToBank pays a wallet balance out to the owner's bank account.
func (c *Client) TransferToBank(ctx context.Context, req BankTransferRequest, idempotencyKey string) (*Transfer, error) {
	var out Transfer
	err := c.do(ctx, call{
		method:         http.MethodPost,
		route:          "/wallet/bank-transfer",
		path:           "/wallet/bank-transfer",
		body:           req,
		idempotencyKey: idempotencyKey,
	}, &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// ProvisionDigitalIBAN issues a digital IBAN to the partner-side user.
func (c *Client) ProvisionDigitalIBAN(ctx context.Context, partnerUserID string) (*DigitalIBAN, error) {
	var out DigitalIBAN
	err := c.do(ctx, call{
		method: http.MethodPost,
		route:  "/iban",
		path:   "/iban",
		body:   provisionIBANRequest{UserID: partnerUserID},
	}, &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}
