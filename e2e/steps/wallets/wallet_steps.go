package wallets

import (
	"context"
	"fmt"
	"net/http"
	"slices"
	"strings"

	"github.com/cucumber/godog"

	"propex/internal/partner/partnertest"
	wallethandler "propex/internal/wallet/handler"
)

// TestContext is what the wallet steps need from the scenario world.
type TestContext interface {
	UserID(name string) (string, error)
	AsAdmin(method, path string, body any) error
	StatusCode() int
	Body() []byte
	DecodeBody(v any) error
	FailPartner(route string, status int, code string, times int)
}

// RegisterSteps registers wallet reconciliation steps.
func RegisterSteps(ctx *godog.ScenarioContext, tc TestContext) {
	steps := &walletSteps{tc: tc}

	ctx.Step(`^the partner rejects wallet creation (\d+) times?$`, steps.partnerRejectsWalletCreation)
	ctx.Step(`^the partner cannot provision digital IBANs$`, steps.partnerCannotProvisionIBANs)
	ctx.Step(`^(?:an operator runs|the operator has run) the wallet sweep$`, steps.runSweep)
	ctx.Step(`^an operator reconciles "([^"]*)"$`, steps.reconcileUser)

	ctx.Step(`^the sweep should report (\d+) users?, (\d+) created and (\d+) failed$`, steps.sweepShouldReport)
	ctx.Step(`^"([^"]*)" should hold wallets "([^"]*)"$`, steps.shouldHoldWallets)
	ctx.Step(`^"([^"]*)" should hold (\d+) wallets?$`, steps.shouldHoldWalletCount)
	ctx.Step(`^"([^"]*)" should (not )?have a digital IBAN$`, steps.shouldHaveIBAN)
}

type walletSteps struct {
	tc TestContext
}

func (s *walletSteps) partnerRejectsWalletCreation(_ context.Context, times int) error {
	s.tc.FailPartner(partnertest.RouteCreateWallet, http.StatusServiceUnavailable, "unavailable", times)
	return nil
}

func (s *walletSteps) partnerCannotProvisionIBANs(context.Context) error {
	s.tc.FailPartner(partnertest.RouteProvisionIBAN, http.StatusUnprocessableEntity, "iban_unavailable", 0)
	return nil
}

func (s *walletSteps) runSweep(context.Context) error {
	if err := s.tc.AsAdmin(http.MethodPost, "/admin/wallets/sweep", nil); err != nil {
		return err
	}
	if s.tc.StatusCode() != http.StatusOK {
		return fmt.Errorf("sweep: %d %s", s.tc.StatusCode(), s.tc.Body())
	}
	return nil
}

func (s *walletSteps) reconcileUser(_ context.Context, name string) error {
	userID, err := s.tc.UserID(name)
	if err != nil {
		return err
	}
	return s.tc.AsAdmin(http.MethodPost, "/admin/users/"+userID+"/wallets/reconcile", nil)
}

func (s *walletSteps) sweepShouldReport(_ context.Context, users, created, failed int) error {
	var report wallethandler.SweepResponse
	if err := s.tc.DecodeBody(&report); err != nil {
		return err
	}
	if report.Users != users || report.Created != created || report.Failed != failed {
		return fmt.Errorf("expected %d users, %d created, %d failed; got %d, %d, %d",
			users, created, failed, report.Users, report.Created, report.Failed)
	}
	return nil
}

func (s *walletSteps) holdings(name string) (*wallethandler.HoldingsResponse, error) {
	userID, err := s.tc.UserID(name)
	if err != nil {
		return nil, err
	}
	if err := s.tc.AsAdmin(http.MethodGet, "/admin/users/"+userID+"/wallets", nil); err != nil {
		return nil, err
	}
	if s.tc.StatusCode() != http.StatusOK {
		return nil, fmt.Errorf("list wallets for %s: %d %s", name, s.tc.StatusCode(), s.tc.Body())
	}
	var out wallethandler.HoldingsResponse
	if err := s.tc.DecodeBody(&out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (s *walletSteps) shouldHoldWallets(_ context.Context, name, list string) error {
	h, err := s.holdings(name)
	if err != nil {
		return err
	}
	var got []string
	for _, w := range h.Wallets {
		got = append(got, w.Currency)
	}
	want := strings.Split(list, ",")
	slices.Sort(got)
	slices.Sort(want)
	if !slices.Equal(got, want) {
		return fmt.Errorf("%s holds %v, expected %v", name, got, want)
	}
	return nil
}

func (s *walletSteps) shouldHoldWalletCount(_ context.Context, name string, n int) error {
	h, err := s.holdings(name)
	if err != nil {
		return err
	}
	if len(h.Wallets) != n {
		return fmt.Errorf("%s holds %d wallets, expected %d", name, len(h.Wallets), n)
	}
	return nil
}

func (s *walletSteps) shouldHaveIBAN(_ context.Context, name, not string) error {
	h, err := s.holdings(name)
	if err != nil {
		return err
	}
	if has := h.IBAN != nil; has == (not != "") {
		return fmt.Errorf("%s digital IBAN present=%v", name, has)
	}
	return nil
}
