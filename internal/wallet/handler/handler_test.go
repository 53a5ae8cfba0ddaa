package handler

import (
	"bytes"
	"context"
	"log/slog"
	"net/http"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/suite"

	"propex/internal/partner"
	"propex/internal/wallet/models"
	"propex/internal/wallet/reconcile"
	"propex/internal/wallet/store"
	id "propex/pkg/domain"
	dErrors "propex/pkg/domain-errors"
	"propex/pkg/testutil"
)

type stubReconciler struct {
	ensured []id.UserID
	result  *reconcile.Result
	report  *reconcile.SweepReport
	err     error
}

func (s *stubReconciler) EnsureUserWallets(_ context.Context, userID id.UserID) (*reconcile.Result, error) {
	s.ensured = append(s.ensured, userID)
	return s.result, s.err
}

func (s *stubReconciler) SweepAllEligibleUsers(context.Context) (*reconcile.SweepReport, error) {
	return s.report, s.err
}

type HandlerSuite struct {
	suite.Suite
	reconciler *stubReconciler
	store      *store.InMemoryStore
	router     http.Handler
	userID     id.UserID
}

func TestHandlerSuite(t *testing.T) {
	suite.Run(t, new(HandlerSuite))
}

func (s *HandlerSuite) SetupTest() {
	s.reconciler = &stubReconciler{}
	s.store = store.NewInMemoryStore()
	r := chi.NewRouter()
	New(s.reconciler, s.store, slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil))).Register(r)
	s.router = r
	s.userID = id.NewUserID()
}

func (s *HandlerSuite) path(suffix string) string {
	return "/admin/users/" + s.userID.String() + suffix
}

// =============================================================================
// Account intake
// =============================================================================

func (s *HandlerSuite) TestUpsertAccount() {
	s.Run("creates an eligible seller", func() {
		req := testutil.NewJSONRequest(s.T(), http.MethodPut, s.path("/account"), map[string]any{
			"role": "seller", "kyc_status": "approved", "kyc_tier": 2, "partner_user_ref": "pu_42",
		})
		rr := testutil.DoRequest(s.router, req)
		s.Require().Equal(http.StatusOK, rr.Code, rr.Body.String())

		body := testutil.DecodeJSON[AccountResponse](s.T(), rr)
		s.Equal("SELLER", body.Role)
		s.True(body.Eligible)
		s.Empty(body.SkipReason)

		acc, err := s.store.FindAccount(context.Background(), s.userID)
		s.Require().NoError(err)
		s.Equal("pu_42", acc.PartnerUserRef)
	})

	s.Run("update keeps creation time and reports skip reason", func() {
		before, err := s.store.FindAccount(context.Background(), s.userID)
		s.Require().NoError(err)

		req := testutil.NewJSONRequest(s.T(), http.MethodPut, s.path("/account"), map[string]any{
			"role": "SELLER", "kyc_status": "REJECTED", "partner_user_ref": "pu_42",
		})
		rr := testutil.DoRequest(s.router, req)
		s.Require().Equal(http.StatusOK, rr.Code)

		body := testutil.DecodeJSON[AccountResponse](s.T(), rr)
		s.False(body.Eligible)
		s.Equal(string(models.SkipKYCNotApproved), body.SkipReason)
		s.True(before.CreatedAt.Equal(body.CreatedAt))
	})

	s.Run("validation", func() {
		cases := map[string]map[string]any{
			"bad role":     {"role": "AGENT", "kyc_status": "APPROVED"},
			"bad status":   {"role": "BUYER", "kyc_status": "MAYBE"},
			"negative tier":{"role": "BUYER", "kyc_status": "APPROVED", "kyc_tier": -1},
		}
		for name, body := range cases {
			s.Run(name, func() {
				rr := testutil.DoRequest(s.router, testutil.NewJSONRequest(s.T(), http.MethodPut, s.path("/account"), body))
				testutil.AssertStatusAndError(s.T(), rr, http.StatusBadRequest, "validation_error")
			})
		}
	})

	s.Run("malformed user id", func() {
		req := testutil.NewJSONRequest(s.T(), http.MethodPut, "/admin/users/nope/account", map[string]any{"role": "BUYER", "kyc_status": "APPROVED"})
		rr := testutil.DoRequest(s.router, req)
		testutil.AssertStatusAndError(s.T(), rr, http.StatusBadRequest, "invalid_input")
	})
}

// =============================================================================
// Holdings
// =============================================================================

func (s *HandlerSuite) TestListWallets() {
	s.Run("unknown user", func() {
		rr := testutil.DoRequest(s.router, testutil.NewJSONRequest(s.T(), http.MethodGet, s.path("/wallets"), nil))
		testutil.AssertStatusAndError(s.T(), rr, http.StatusNotFound, "not_found")
	})

	s.Run("wallets and iban", func() {
		ctx := context.Background()
		s.Require().NoError(s.store.UpsertAccount(ctx, &models.Account{UserID: s.userID, Role: models.RoleSeller, KYCStatus: models.KYCApproved, PartnerUserRef: "pu_1"}))
		s.Require().NoError(s.store.SaveWallet(ctx, &models.Wallet{ID: id.NewWalletID(), UserID: s.userID, Currency: id.CurrencyEUR, PartnerWalletID: "wal_eur", CreatedAt: time.Now()}))
		s.Require().NoError(s.store.SaveIBAN(ctx, &models.DigitalIBAN{UserID: s.userID, IBAN: "DE89370400440532013000", BankName: "Partner Bank AG"}))

		rr := testutil.DoRequest(s.router, testutil.NewJSONRequest(s.T(), http.MethodGet, s.path("/wallets"), nil))
		s.Require().Equal(http.StatusOK, rr.Code)
		body := testutil.DecodeJSON[HoldingsResponse](s.T(), rr)
		s.Require().Len(body.Wallets, 1)
		s.Equal("wal_eur", body.Wallets[0].PartnerWalletID)
		s.Require().NotNil(body.IBAN)
		s.Equal("Partner Bank AG", body.IBAN.BankName)
	})
}

// =============================================================================
// Reconciliation
// =============================================================================

func (s *HandlerSuite) TestReconcileUser() {
	s.reconciler.result = &reconcile.Result{
		UserID:  s.userID,
		Created: []string{"BTC", "ETH"},
		Failed:  []string{"USDT"},
		Errors: []reconcile.CurrencyError{{
			Currency: "USDT",
			Err:      dErrors.Wrap(&partner.Error{StatusCode: 503, Code: "unavailable", Message: "try later"}, dErrors.CodePartner, "wallet creation failed"),
		}},
	}
	rr := testutil.DoRequest(s.router, testutil.NewJSONRequest(s.T(), http.MethodPost, s.path("/wallets/reconcile"), nil))
	s.Require().Equal(http.StatusOK, rr.Code, rr.Body.String())
	s.Equal([]id.UserID{s.userID}, s.reconciler.ensured)

	body := testutil.DecodeJSON[ResultResponse](s.T(), rr)
	s.Equal([]string{"BTC", "ETH"}, body.Created)
	s.Equal([]string{}, body.Adopted)
	s.Require().Len(body.Errors, 1)
	s.Equal(503, body.Errors[0].PartnerStatus)
	s.Equal("unavailable", body.Errors[0].PartnerCode)
}

func (s *HandlerSuite) TestReconcileUnknownUser() {
	s.reconciler.err = dErrors.New(dErrors.CodeNotFound, "account not found")
	rr := testutil.DoRequest(s.router, testutil.NewJSONRequest(s.T(), http.MethodPost, s.path("/wallets/reconcile"), nil))
	testutil.AssertStatusAndError(s.T(), rr, http.StatusNotFound, "not_found")
}

func (s *HandlerSuite) TestSweep() {
	s.Run("report", func() {
		s.reconciler.report = &reconcile.SweepReport{Users: 3, Reconciled: 2, Skipped: 1, Created: 5, Duration: 1500 * time.Millisecond}
		rr := testutil.DoRequest(s.router, testutil.NewJSONRequest(s.T(), http.MethodPost, "/admin/wallets/sweep", nil))
		s.Require().Equal(http.StatusOK, rr.Code)
		body := testutil.DecodeJSON[SweepResponse](s.T(), rr)
		s.Equal(3, body.Users)
		s.Equal(5, body.Created)
		s.Equal(int64(1500), body.DurationMS)
	})

	s.Run("already running", func() {
		s.reconciler.report = nil
		s.reconciler.err = dErrors.New(dErrors.CodeConflict, "wallet sweep already running")
		rr := testutil.DoRequest(s.router, testutil.NewJSONRequest(s.T(), http.MethodPost, "/admin/wallets/sweep", nil))
		testutil.AssertStatusAndError(s.T(), rr, http.StatusConflict, "conflict")
	})
}
