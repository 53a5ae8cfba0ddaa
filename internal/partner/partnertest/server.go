// Package partnertest is an in-memory stand-in for the custodial partner.
// It verifies request signatures and API keys exactly as the real partner
// does, keeps wallets and IBANs in memory, dedupes money moves by
// Idempotency-Key and lets tests inject failures per route.
package partnertest

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"sort"
	"strings"
	"sync"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"propex/internal/partner"
)

// Route keys used by Fail and Calls.
const (
	RouteCreateWallet  = "POST /wallet"
	RouteListWallets   = "GET /wallets"
	RouteBalance       = "GET /wallet/{id}/balance"
	RouteConvert       = "POST /wallet/convert"
	RouteTransfer      = "POST /wallet/transfer"
	RouteBankTransfer  = "POST /wallet/bank-transfer"
	RouteProvisionIBAN = "POST /iban"
)

type fault struct {
	status  int
	code    string
	message string
	times   int // 0 = until cleared
}

type wallet struct {
	partner.Wallet
	balance decimal.Decimal
}

// Fake holds the partner state. The zero value is not usable; use New.
type Fake struct {
	APIKey string
	Secret string

	mu          sync.Mutex
	wallets     map[string]*wallet
	ibans       map[string]partner.DigitalIBAN
	rates       map[string]decimal.Decimal
	faults      map[string]*fault
	calls       map[string]int
	idempotent  map[string][]byte
	bankPayouts []partner.BankTransferRequest
	nextIBAN    int
}

// New returns a fake with default EUR rates for the common assets.
func New(apiKey, secret string) *Fake {
	return &Fake{
		APIKey:     apiKey,
		Secret:     secret,
		wallets:    make(map[string]*wallet),
		ibans:      make(map[string]partner.DigitalIBAN),
		faults:     make(map[string]*fault),
		calls:      make(map[string]int),
		idempotent: make(map[string][]byte),
		rates: map[string]decimal.Decimal{
			"BTC":  decimal.NewFromInt(60000),
			"ETH":  decimal.NewFromInt(3000),
			"USDT": decimal.RequireFromString("0.92"),
			"USDC": decimal.RequireFromString("0.92"),
			"EUR":  decimal.NewFromInt(1),
		},
	}
}

// Server wraps a Fake in an httptest.Server.
type Server struct {
	*Fake
	*httptest.Server
}

// NewServer starts a fake partner. Close it when done.
func NewServer(apiKey, secret string) *Server {
	f := New(apiKey, secret)
	return &Server{Fake: f, Server: httptest.NewServer(f.Handler())}
}

// Config returns client settings pointing at s with a generous rate limit.
func (s *Server) Config() partner.Config {
	return partner.Config{
		BaseURL:   s.URL,
		APIKey:    s.APIKey,
		APISecret: s.Secret,
		RPS:       1000,
		Burst:     100,
	}
}

// Handler exposes the partner routes.
func (f *Fake) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(f.authenticate)
	r.Post("/wallet", f.route(RouteCreateWallet, f.createWallet))
	r.Get("/wallets", f.route(RouteListWallets, f.listWallets))
	r.Get("/wallet/{id}/balance", f.route(RouteBalance, f.balance))
	r.Post("/wallet/convert", f.route(RouteConvert, f.convert))
	r.Post("/wallet/transfer", f.route(RouteTransfer, f.transfer))
	r.Post("/wallet/bank-transfer", f.route(RouteBankTransfer, f.bankTransfer))
	r.Post("/iban", f.route(RouteProvisionIBAN, f.provisionIBAN))
	return r
}

// Fail makes route answer with status and code. times bounds how many calls
// fail; 0 means until ClearFaults.
func (f *Fake) Fail(route string, status int, code string, times int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.faults[route] = &fault{status: status, code: code, message: "injected " + code, times: times}
}

func (f *Fake) ClearFaults() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.faults = make(map[string]*fault)
}

// Calls reports how many authenticated requests reached route.
func (f *Fake) Calls(route string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[route]
}

// SeedWallet creates a wallet directly, bypassing the API.
func (f *Fake) SeedWallet(partnerUserID, currency string, balance decimal.Decimal) partner.Wallet {
	f.mu.Lock()
	defer f.mu.Unlock()
	w := f.newWalletLocked(partnerUserID, currency)
	w.balance = balance
	return w.Wallet
}

// SetBalance overwrites a wallet's balance.
func (f *Fake) SetBalance(walletID string, balance decimal.Decimal) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if w, ok := f.wallets[walletID]; ok {
		w.balance = balance
	}
}

func (f *Fake) Balance(walletID string) decimal.Decimal {
	f.mu.Lock()
	defer f.mu.Unlock()
	if w, ok := f.wallets[walletID]; ok {
		return w.balance
	}
	return decimal.Zero
}

// WalletsOf lists a user's wallets ordered by currency.
func (f *Fake) WalletsOf(partnerUserID string) []partner.Wallet {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.walletsOfLocked(partnerUserID)
}

// BankPayouts lists completed bank transfers in order.
func (f *Fake) BankPayouts() []partner.BankTransferRequest {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]partner.BankTransferRequest(nil), f.bankPayouts...)
}

func (f *Fake) authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, err := io.ReadAll(r.Body)
		if err != nil {
			writeError(w, http.StatusBadRequest, "bad_body", "unreadable body")
			return
		}
		if r.Header.Get(partner.HeaderAPIKey) != f.APIKey {
			writeError(w, http.StatusUnauthorized, "invalid_api_key", "unknown api key")
			return
		}
		if _, err := partner.Verify([]byte(f.Secret), r.Header.Get("Authorization"), r.Method, r.URL.RequestURI(), body); err != nil {
			writeError(w, http.StatusUnauthorized, "invalid_signature", err.Error())
			return
		}
		r.Body = io.NopCloser(strings.NewReader(string(body)))
		next.ServeHTTP(w, r)
	})
}

// route counts the call, applies injected faults and replays idempotent
// responses.
func (f *Fake) route(name string, h func(w http.ResponseWriter, r *http.Request) (int, any)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		f.calls[name]++
		if ft, ok := f.faults[name]; ok {
			if ft.times > 0 {
				ft.times--
				if ft.times == 0 {
					delete(f.faults, name)
				}
			}
			f.mu.Unlock()
			writeError(w, ft.status, ft.code, ft.message)
			return
		}
		key := r.Header.Get(partner.HeaderIdempotencyKey)
		if key != "" {
			if cached, ok := f.idempotent[name+"|"+key]; ok {
				f.mu.Unlock()
				w.Header().Set("Content-Type", "application/json")
				w.Header().Set("Idempotent-Replayed", "true")
				_, _ = w.Write(cached)
				return
			}
		}
		f.mu.Unlock()

		status, payload := h(w, r)
		body, _ := json.Marshal(payload)
		if key != "" && status < 300 {
			f.mu.Lock()
			f.idempotent[name+"|"+key] = body
			f.mu.Unlock()
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = w.Write(body)
	}
}

type apiError struct {
	Error struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

func errorPayload(code, message string) apiError {
	var e apiError
	e.Error.Code = code
	e.Error.Message = message
	return e
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(errorPayload(code, message))
}

func (f *Fake) createWallet(_ http.ResponseWriter, r *http.Request) (int, any) {
	var req struct {
		UserID   string `json:"userId"`
		Currency string `json:"currency"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.UserID == "" || req.Currency == "" {
		return http.StatusBadRequest, errorPayload("invalid_request", "userId and currency are required")
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, w := range f.wallets {
		if w.UserID == req.UserID && w.Currency == req.Currency {
			return http.StatusConflict, errorPayload("wallet_exists", "wallet already exists for currency")
		}
	}
	w := f.newWalletLocked(req.UserID, req.Currency)
	return http.StatusCreated, w.Wallet
}

func (f *Fake) listWallets(_ http.ResponseWriter, r *http.Request) (int, any) {
	userID := r.URL.Query().Get("userId")
	if userID == "" {
		return http.StatusBadRequest, errorPayload("invalid_request", "userId is required")
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	return http.StatusOK, map[string]any{"wallets": f.walletsOfLocked(userID)}
}

func (f *Fake) balance(_ http.ResponseWriter, r *http.Request) (int, any) {
	f.mu.Lock()
	defer f.mu.Unlock()
	w, ok := f.wallets[chi.URLParam(r, "id")]
	if !ok {
		return http.StatusNotFound, errorPayload("wallet_not_found", "unknown wallet")
	}
	return http.StatusOK, partner.Balance{WalletID: w.WalletID, Currency: w.Currency, Available: w.balance}
}

func (f *Fake) convert(_ http.ResponseWriter, r *http.Request) (int, any) {
	var req partner.ConvertRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || !req.Amount.IsPositive() {
		return http.StatusBadRequest, errorPayload("invalid_request", "walletId, positive amount and targetCurrency are required")
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	src, ok := f.wallets[req.WalletID]
	if !ok {
		return http.StatusNotFound, errorPayload("wallet_not_found", "unknown wallet")
	}
	rate, ok := f.rates[src.Currency]
	target, okTarget := f.rates[req.TargetCurrency]
	if !ok || !okTarget || target.IsZero() {
		return http.StatusUnprocessableEntity, errorPayload("unsupported_pair", "no rate for pair")
	}
	// Amount is denominated in the target currency; the source balance must
	// cover its equivalent.
	effective := rate.Div(target)
	needed := req.Amount.Div(effective)
	if src.balance.LessThan(needed) {
		return http.StatusUnprocessableEntity, errorPayload("insufficient_funds", "wallet balance too low")
	}
	src.balance = src.balance.Sub(needed)
	dst := f.findWalletLocked(src.UserID, req.TargetCurrency)
	if dst == nil {
		dst = f.newWalletLocked(src.UserID, req.TargetCurrency)
	}
	dst.balance = dst.balance.Add(req.Amount)
	return http.StatusOK, partner.Conversion{
		ConversionID:    uuid.NewString(),
		ConvertedAmount: req.Amount,
		Rate:            effective,
	}
}

func (f *Fake) transfer(_ http.ResponseWriter, r *http.Request) (int, any) {
	var req partner.TransferRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || !req.Amount.IsPositive() {
		return http.StatusBadRequest, errorPayload("invalid_request", "fromWalletId, toWalletId and positive amount are required")
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	from, okFrom := f.wallets[req.FromWalletID]
	to, okTo := f.wallets[req.ToWalletID]
	if !okFrom || !okTo {
		return http.StatusNotFound, errorPayload("wallet_not_found", "unknown wallet")
	}
	if from.balance.IsZero() || from.balance.IsNegative() {
		return http.StatusUnprocessableEntity, errorPayload("insufficient_funds", "wallet balance too low")
	}
	// Whole custodial balance moves; amounts are quoted in settlement value.
	to.balance = to.balance.Add(from.balance)
	from.balance = decimal.Zero
	return http.StatusOK, partner.Transfer{TransferID: uuid.NewString(), Status: "COMPLETED"}
}

func (f *Fake) bankTransfer(_ http.ResponseWriter, r *http.Request) (int, any) {
	var req partner.BankTransferRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || !req.Amount.IsPositive() {
		return http.StatusBadRequest, errorPayload("invalid_request", "walletId and positive amount are required")
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	w, ok := f.wallets[req.WalletID]
	if !ok {
		return http.StatusNotFound, errorPayload("wallet_not_found", "unknown wallet")
	}
	if w.balance.LessThan(req.Amount) {
		return http.StatusUnprocessableEntity, errorPayload("insufficient_funds", "wallet balance too low")
	}
	if _, ok := f.ibans[w.UserID]; !ok {
		return http.StatusUnprocessableEntity, errorPayload("no_bank_account", "user has no digital IBAN")
	}
	w.balance = w.balance.Sub(req.Amount)
	f.bankPayouts = append(f.bankPayouts, req)
	return http.StatusOK, partner.Transfer{TransferID: uuid.NewString(), Status: "PENDING_SETTLEMENT"}
}

func (f *Fake) provisionIBAN(_ http.ResponseWriter, r *http.Request) (int, any) {
	var req struct {
		UserID string `json:"userId"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.UserID == "" {
		return http.StatusBadRequest, errorPayload("invalid_request", "userId is required")
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if existing, ok := f.ibans[req.UserID]; ok {
		return http.StatusOK, existing
	}
	f.nextIBAN++
	iban := partner.DigitalIBAN{
		IBAN:          fmt.Sprintf("DE89370400440532%06d", f.nextIBAN),
		BankName:      "Partner Bank AG",
		AccountNumber: fmt.Sprintf("0532%06d", f.nextIBAN),
	}
	f.ibans[req.UserID] = iban
	return http.StatusCreated, iban
}

func (f *Fake) newWalletLocked(userID, currency string) *wallet {
	w := &wallet{Wallet: partner.Wallet{
		WalletID: "wal_" + uuid.NewString(),
		UserID:   userID,
		Currency: currency,
		Address:  "addr_" + strings.ToLower(currency) + "_" + uuid.NewString()[:8],
	}}
	f.wallets[w.WalletID] = w
	return w
}

func (f *Fake) findWalletLocked(userID, currency string) *wallet {
	for _, w := range f.wallets {
		if w.UserID == userID && w.Currency == currency {
			return w
		}
	}
	return nil
}

func (f *Fake) walletsOfLocked(userID string) []partner.Wallet {
	out := []partner.Wallet{}
	for _, w := range f.wallets {
		if w.UserID == userID {
			out = append(out, w.Wallet)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Currency < out[j].Currency })
	return out
}
