package httptransport

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/suite"

	fphandler "propex/internal/fundprotection/handler"
	fpmetrics "propex/internal/fundprotection/metrics"
	"propex/internal/fundprotection/orchestrator"
	fpstore "propex/internal/fundprotection/store"
	jwttoken "propex/internal/jwt_token"
	"propex/internal/partner"
	"propex/internal/partner/partnertest"
	"propex/internal/wallet/availability"
	wallethandler "propex/internal/wallet/handler"
	"propex/internal/wallet/reconcile"
	walletstore "propex/internal/wallet/store"
	id "propex/pkg/domain"
	"propex/pkg/platform/audit/publisher"
	auditmemory "propex/pkg/platform/audit/store/memory"
	"propex/pkg/testutil"
)

const adminToken = "ops-token"

var baseCurrencies = []id.Currency{id.CurrencyBTC, id.CurrencyETH}

type RouterSuite struct {
	suite.Suite
	partner *partnertest.Server
	jwt     *jwttoken.JWTService
	router  http.Handler
	buyer   id.UserID
	seller  id.UserID
}

func TestRouterSuite(t *testing.T) {
	suite.Run(t, new(RouterSuite))
}

func (s *RouterSuite) SetupTest() {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	reg := prometheus.NewRegistry()

	s.partner = partnertest.NewServer("key", "secret")
	client, err := partner.New(s.partner.Config(), partner.WithLogger(logger))
	s.Require().NoError(err)

	wallets := walletstore.NewInMemoryStore()
	reconciler := reconcile.New(wallets, client,
		reconcile.Config{BaseCurrencies: baseCurrencies, Settlement: id.CurrencyEUR},
		reconcile.WithLogger(logger),
		reconcile.WithInterUserDelay(0),
	)
	avail := availability.New(wallets, baseCurrencies, id.CurrencyEUR)

	steps := fpstore.NewInMemoryStore()
	auditPublisher := publisher.NewPublisher(auditmemory.NewInMemoryStore(), publisher.WithLogger(logger))
	orch := orchestrator.New(steps, steps, &fpstore.InMemoryTx{}, client, avail,
		orchestrator.WithLogger(logger),
		orchestrator.WithBankDirectory(avail),
		orchestrator.WithAuditPublisher(auditPublisher),
		orchestrator.WithMetrics(fpmetrics.New(reg)),
		orchestrator.WithIdempotencySecret("secret"),
	)

	s.jwt = jwttoken.NewJWTService("signing-key", "propex", "propex-api")
	s.router = NewRouter(Deps{
		FundProtection: fphandler.New(orch, logger),
		Wallets:        wallethandler.New(reconciler, wallets, logger),
		Validator:      jwttoken.NewJWTServiceAdapter(s.jwt),
		AdminToken:     adminToken,
		Registry:       reg,
		Health: map[string]HealthCheck{
			"partner": func(context.Context) error { return nil },
		},
		Logger: logger,
	})
	s.buyer = id.NewUserID()
	s.seller = id.NewUserID()
}

func (s *RouterSuite) TearDownTest() {
	s.partner.Close()
}

func (s *RouterSuite) admin(method, path string, body any) *httptest.ResponseRecorder {
	req := testutil.NewJSONRequest(s.T(), method, path, body)
	req.Header.Set("X-Admin-Token", adminToken)
	return testutil.DoRequest(s.router, req)
}

func (s *RouterSuite) as(userID id.UserID, method, path string, body any) *httptest.ResponseRecorder {
	token, err := s.jwt.GenerateAccessToken(userID, time.Minute)
	s.Require().NoError(err)
	req := testutil.NewJSONRequest(s.T(), method, path, body)
	req.Header.Set("Authorization", "Bearer "+token)
	return testutil.DoRequest(s.router, req)
}

func (s *RouterSuite) onboard(userID id.UserID, role, ref string) {
	rr := s.admin(http.MethodPut, "/admin/users/"+userID.String()+"/account", map[string]any{
		"role": role, "kyc_status": "APPROVED", "partner_user_ref": ref,
	})
	s.Require().Equal(http.StatusOK, rr.Code, rr.Body.String())
}

func (s *RouterSuite) register(body map[string]any) string {
	body["property_id"] = id.NewPropertyID().String()
	body["buyer_id"] = s.buyer.String()
	body["seller_id"] = s.seller.String()
	rr := s.admin(http.MethodPost, "/admin/transactions", body)
	s.Require().Equal(http.StatusCreated, rr.Code, rr.Body.String())
	return testutil.DecodeJSON[fphandler.TransactionResponse](s.T(), rr).ID
}

func (s *RouterSuite) walletOf(ref, currency string) partner.Wallet {
	for _, w := range s.partner.WalletsOf(ref) {
		if w.Currency == currency {
			return w
		}
	}
	s.FailNow("wallet not found", "%s %s", ref, currency)
	return partner.Wallet{}
}

// =============================================================================
// Guards
// =============================================================================

func (s *RouterSuite) TestGuards() {
	s.Run("party routes need a bearer token", func() {
		req := testutil.NewJSONRequest(s.T(), http.MethodGet, "/transactions/"+id.NewTransactionID().String()+"/fund-protection/status", nil)
		rr := testutil.DoRequest(s.router, req)
		testutil.AssertStatusAndError(s.T(), rr, http.StatusUnauthorized, "unauthorized")
	})

	s.Run("admin routes need the admin token", func() {
		req := testutil.NewJSONRequest(s.T(), http.MethodPost, "/admin/wallets/sweep", nil)
		req.Header.Set("X-Admin-Token", "wrong")
		rr := testutil.DoRequest(s.router, req)
		testutil.AssertStatusAndError(s.T(), rr, http.StatusUnauthorized, "unauthorized")
	})

	s.Run("a bearer token does not open admin routes", func() {
		rr := s.as(s.buyer, http.MethodPost, "/admin/wallets/sweep", nil)
		s.Equal(http.StatusUnauthorized, rr.Code)
	})

	s.Run("request id is echoed", func() {
		req := testutil.NewJSONRequest(s.T(), http.MethodGet, "/health", nil)
		req.Header.Set("X-Request-ID", "req-123")
		rr := testutil.DoRequest(s.router, req)
		s.Equal(http.StatusOK, rr.Code)
		s.Equal("req-123", rr.Header().Get("X-Request-ID"))
	})
}

func (s *RouterSuite) TestHealthReportsFailingDependency() {
	r := NewRouter(Deps{
		FundProtection: fphandler.New(nil, slog.New(slog.NewTextHandler(io.Discard, nil))),
		Logger:         slog.New(slog.NewTextHandler(io.Discard, nil)),
		Health: map[string]HealthCheck{
			"postgres": func(context.Context) error { return errors.New("connection refused") },
		},
	})
	rr := testutil.DoRequest(r, testutil.NewJSONRequest(s.T(), http.MethodGet, "/health", nil))
	s.Equal(http.StatusServiceUnavailable, rr.Code)
	body := testutil.DecodeJSON[healthResponse](s.T(), rr)
	s.Equal("degraded", body.Status)
	s.Equal("connection refused", body.Checks["postgres"])
}

func (s *RouterSuite) TestMetricsAreExposed() {
	rr := testutil.DoRequest(s.router, testutil.NewJSONRequest(s.T(), http.MethodGet, "/metrics", nil))
	s.Equal(http.StatusOK, rr.Code)
	s.Contains(rr.Body.String(), "propex_")
}

// =============================================================================
// End to end
// =============================================================================

func (s *RouterSuite) TestCryptoSettlementEndToEnd() {
	s.onboard(s.buyer, "BUYER", "pu_buyer")
	s.onboard(s.seller, "SELLER", "pu_seller")

	rr := s.admin(http.MethodPost, "/admin/wallets/sweep", nil)
	s.Require().Equal(http.StatusOK, rr.Code, rr.Body.String())
	sweep := testutil.DecodeJSON[wallethandler.SweepResponse](s.T(), rr)
	s.Equal(2, sweep.Users)
	// buyer BTC+ETH, seller BTC+ETH+EUR+IBAN
	s.Equal(6, sweep.Created)

	txID := s.register(map[string]any{"price": "100000", "currency": "EUR", "payment_method": "crypto"})
	base := "/transactions/" + txID + "/fund-protection"

	rr = s.as(s.buyer, http.MethodPost, base+"/plan", nil)
	s.Require().Equal(http.StatusCreated, rr.Code, rr.Body.String())
	plan := testutil.DecodeJSON[fphandler.PlanResponse](s.T(), rr)
	s.Require().Len(plan.Steps, 4)
	s.Equal("BTC", plan.Steps[0].Asset)
	s.True(plan.CryptoLeg.PayOut)

	rr = s.as(s.seller, http.MethodPost, base+"/plan", nil)
	s.Equal(http.StatusOK, rr.Code, "second build returns the existing plan")

	rr = s.as(s.buyer, http.MethodPost, base+"/deposit", nil)
	testutil.AssertStatusAndError(s.T(), rr, http.StatusConflict, "conflict")

	s.partner.SetBalance(s.walletOf("pu_buyer", "BTC").WalletID, decimal.NewFromInt(2))

	rr = s.as(s.seller, http.MethodPost, base+"/deposit", nil)
	testutil.AssertStatusAndError(s.T(), rr, http.StatusForbidden, "forbidden")

	for _, action := range []struct {
		user   id.UserID
		suffix string
	}{
		{s.buyer, "/deposit"},
		{s.buyer, "/crypto-transfer"},
		{s.seller, "/convert"},
		{s.seller, "/bank-transfer"},
	} {
		rr = s.as(action.user, http.MethodPost, base+action.suffix, nil)
		s.Require().Equal(http.StatusOK, rr.Code, "%s: %s", action.suffix, rr.Body.String())
	}
	last := testutil.DecodeJSON[fphandler.ActionResponse](s.T(), rr)
	s.True(last.AllStepsComplete)

	payouts := s.partner.BankPayouts()
	s.Require().Len(payouts, 1)
	s.True(decimal.NewFromInt(100000).Equal(payouts[0].Amount))

	rr = s.as(s.buyer, http.MethodGet, base+"/status", nil)
	s.Require().Equal(http.StatusOK, rr.Code)
	status := testutil.DecodeJSON[fphandler.StatusResponse](s.T(), rr)
	s.Equal("COMPLETE", status.State)
	s.Equal("CLOSING", status.TransactionStatus)
	s.False(status.NeedsUserAction)

	rr = s.as(id.NewUserID(), http.MethodGet, base+"/status", nil)
	testutil.AssertStatusAndError(s.T(), rr, http.StatusNotFound, "not_found")
}

func (s *RouterSuite) TestFiatSettlementShowsSellerBankDetails() {
	s.onboard(s.buyer, "BUYER", "pu_buyer")
	s.onboard(s.seller, "SELLER", "pu_seller")
	rr := s.admin(http.MethodPost, "/admin/users/"+s.seller.String()+"/wallets/reconcile", nil)
	s.Require().Equal(http.StatusOK, rr.Code, rr.Body.String())

	txID := s.register(map[string]any{"price": "250000", "payment_method": "FIAT"})
	base := "/transactions/" + txID + "/fund-protection"

	rr = s.as(s.seller, http.MethodPost, base+"/plan", nil)
	s.Require().Equal(http.StatusCreated, rr.Code, rr.Body.String())

	rr = s.as(s.buyer, http.MethodGet, base+"/status", nil)
	s.Require().Equal(http.StatusOK, rr.Code)
	status := testutil.DecodeJSON[fphandler.StatusResponse](s.T(), rr)
	s.True(status.NeedsUserAction)
	s.Require().NotNil(status.SellerBankDetails)
	s.Equal("Partner Bank AG", status.SellerBankDetails.BankName)

	rr = s.as(s.buyer, http.MethodPost, base+"/upload-proof", map[string]string{"proof_reference": "swift-mt103-77"})
	s.Require().Equal(http.StatusOK, rr.Code, rr.Body.String())
	rr = s.as(s.seller, http.MethodPost, base+"/confirm-fiat", nil)
	s.Require().Equal(http.StatusOK, rr.Code, rr.Body.String())
	s.True(testutil.DecodeJSON[fphandler.ActionResponse](s.T(), rr).AllStepsComplete)

	rr = s.as(s.seller, http.MethodGet, base+"/status", nil)
	status = testutil.DecodeJSON[fphandler.StatusResponse](s.T(), rr)
	s.Equal("swift-mt103-77", status.UploadedProof)
	s.Nil(status.SellerBankDetails)
}
