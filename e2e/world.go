// Package e2e drives the whole service in-process through its HTTP surface,
// with the partner replaced by partnertest. Scenarios live in features/.
package e2e

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/shopspring/decimal"

	fphandler "propex/internal/fundprotection/handler"
	fpmetrics "propex/internal/fundprotection/metrics"
	"propex/internal/fundprotection/orchestrator"
	fpstore "propex/internal/fundprotection/store"
	jwttoken "propex/internal/jwt_token"
	"propex/internal/partner"
	"propex/internal/partner/partnertest"
	httptransport "propex/internal/transport/http"
	"propex/internal/wallet/availability"
	wallethandler "propex/internal/wallet/handler"
	"propex/internal/wallet/reconcile"
	walletstore "propex/internal/wallet/store"
	id "propex/pkg/domain"
	"propex/pkg/platform/audit/publisher"
	auditmemory "propex/pkg/platform/audit/store/memory"
)

const adminToken = "e2e-admin"

// BaseCurrencies is the crypto wallet set every eligible user receives.
var BaseCurrencies = []id.Currency{id.CurrencyBTC, id.CurrencyETH, id.CurrencyUSDT, id.CurrencyUSDC}

type party struct {
	userID     id.UserID
	partnerRef string
}

// World is one scenario's service instance and conversation state.
type World struct {
	partner   *partnertest.Server
	router    http.Handler
	jwt       *jwttoken.JWTService
	auditLog  *auditmemory.InMemoryStore
	parties   map[string]party
	txID      string
	status    int
	body      []byte
	publisher *publisher.Publisher
}

func NewWorld() *World {
	return &World{}
}

// Reset builds a fresh service for the next scenario.
func (w *World) Reset() error {
	w.Close()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	w.partner = partnertest.NewServer("e2e-key", "e2e-secret")
	client, err := partner.New(w.partner.Config(), partner.WithLogger(logger))
	if err != nil {
		return err
	}

	wallets := walletstore.NewInMemoryStore()
	reconciler := reconcile.New(wallets, client,
		reconcile.Config{BaseCurrencies: BaseCurrencies, Settlement: id.CurrencyEUR},
		reconcile.WithLogger(logger),
		reconcile.WithInterUserDelay(0),
	)
	avail := availability.New(wallets, BaseCurrencies, id.CurrencyEUR)

	w.auditLog = auditmemory.NewInMemoryStore()
	w.publisher = publisher.NewPublisher(w.auditLog, publisher.WithLogger(logger))
	steps := fpstore.NewInMemoryStore()
	orch := orchestrator.New(steps, steps, &fpstore.InMemoryTx{}, client, avail,
		orchestrator.WithLogger(logger),
		orchestrator.WithBankDirectory(avail),
		orchestrator.WithAuditPublisher(w.publisher),
		orchestrator.WithMetrics(fpmetrics.New(prometheus.NewRegistry())),
		orchestrator.WithIdempotencySecret("e2e-idempotency"),
	)

	w.jwt = jwttoken.NewJWTService("e2e-signing-key", "propex", "propex-api")
	w.router = httptransport.NewRouter(httptransport.Deps{
		FundProtection: fphandler.New(orch, logger),
		Wallets:        wallethandler.New(reconciler, wallets, logger),
		Validator:      jwttoken.NewJWTServiceAdapter(w.jwt),
		AdminToken:     adminToken,
		Logger:         logger,
	})
	w.parties = map[string]party{}
	w.txID = ""
	w.status = 0
	w.body = nil
	return nil
}

func (w *World) Close() {
	if w.publisher != nil {
		w.publisher.Close()
		w.publisher = nil
	}
	if w.partner != nil {
		w.partner.Close()
		w.partner = nil
	}
}

// AddParty registers name with a fresh user id. Repeated names are ignored.
func (w *World) AddParty(name string) {
	if _, ok := w.parties[name]; ok {
		return
	}
	w.parties[name] = party{userID: id.NewUserID(), partnerRef: "pu_" + name}
}

func (w *World) UserID(name string) (string, error) {
	p, ok := w.parties[name]
	if !ok {
		return "", fmt.Errorf("unknown party %q", name)
	}
	return p.userID.String(), nil
}

func (w *World) PartnerRef(name string) (string, error) {
	p, ok := w.parties[name]
	if !ok {
		return "", fmt.Errorf("unknown party %q", name)
	}
	return p.partnerRef, nil
}

func (w *World) SetTransaction(txID string) { w.txID = txID }
func (w *World) Transaction() string        { return w.txID }

// AsUser sends a request with a bearer token for name. Unknown names get a
// token for a user nobody has registered.
func (w *World) AsUser(name, method, path string, body any) error {
	userID := id.NewUserID()
	if p, ok := w.parties[name]; ok {
		userID = p.userID
	}
	token, err := w.jwt.GenerateAccessToken(userID, time.Minute)
	if err != nil {
		return err
	}
	return w.do(method, path, body, map[string]string{"Authorization": "Bearer " + token})
}

func (w *World) AsAdmin(method, path string, body any) error {
	return w.do(method, path, body, map[string]string{"X-Admin-Token": adminToken})
}

func (w *World) do(method, path string, body any, headers map[string]string) error {
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	rr := httptest.NewRecorder()
	w.router.ServeHTTP(rr, req)
	w.status = rr.Code
	w.body = rr.Body.Bytes()
	return nil
}

func (w *World) StatusCode() int { return w.status }
func (w *World) Body() []byte    { return w.body }

// DecodeBody unmarshals the last response into v.
func (w *World) DecodeBody(v any) error {
	if err := json.Unmarshal(w.body, v); err != nil {
		return fmt.Errorf("decode response %q: %w", w.body, err)
	}
	return nil
}

// FailPartner makes the partner answer route with status/code times times.
func (w *World) FailPartner(route string, status int, code string, times int) {
	w.partner.Fail(route, status, code, times)
}

// Fund sets the balance of name's partner wallet in currency.
func (w *World) Fund(name, currency string, amount decimal.Decimal) error {
	ref, err := w.PartnerRef(name)
	if err != nil {
		return err
	}
	for _, wal := range w.partner.WalletsOf(ref) {
		if wal.Currency == currency {
			w.partner.SetBalance(wal.WalletID, amount)
			return nil
		}
	}
	return fmt.Errorf("%s holds no %s wallet at the partner", name, currency)
}

func (w *World) BankPayouts() []partner.BankTransferRequest {
	return w.partner.BankPayouts()
}

// AuditActions lists the audit actions recorded for name, oldest first.
func (w *World) AuditActions(name string) ([]string, error) {
	p, ok := w.parties[name]
	if !ok {
		return nil, fmt.Errorf("unknown party %q", name)
	}
	events, err := w.auditLog.ListByUser(context.Background(), p.userID)
	if err != nil {
		return nil, err
	}
	out := make([]string, 0, len(events))
	for _, e := range events {
		out = append(out, e.Action)
	}
	return out, nil
}
