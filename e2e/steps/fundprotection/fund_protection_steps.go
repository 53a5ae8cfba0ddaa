package fundprotection

import (
	"context"
	"fmt"
	"net/http"
	"slices"
	"strings"

	"github.com/cucumber/godog"
	"github.com/shopspring/decimal"

	fphandler "propex/internal/fundprotection/handler"
	"propex/internal/partner"
)

// TestContext is what the fund protection steps need from the scenario world.
type TestContext interface {
	UserID(name string) (string, error)
	AsUser(name, method, path string, body any) error
	AsAdmin(method, path string, body any) error
	StatusCode() int
	Body() []byte
	DecodeBody(v any) error
	SetTransaction(txID string)
	Transaction() string
	Fund(name, currency string, amount decimal.Decimal) error
	BankPayouts() []partner.BankTransferRequest
	AuditActions(name string) ([]string, error)
}

var actionRoutes = map[string]string{
	"confirms the deposit":       "/deposit",
	"transfers the crypto":       "/crypto-transfer",
	"converts to settlement":     "/convert",
	"sends the bank transfer":    "/bank-transfer",
	"confirms fiat receipt":      "/confirm-fiat",
	"confirms the fiat transfer": "/confirm-fiat",
}

// RegisterSteps registers plan and action steps.
func RegisterSteps(ctx *godog.ScenarioContext, tc TestContext) {
	steps := &fundProtectionSteps{tc: tc}

	ctx.Step(`^an? (FIAT|CRYPTO) transaction between "([^"]*)" and "([^"]*)" priced at (\d+) EUR$`, steps.registerTransaction)
	ctx.Step(`^a HYBRID transaction between "([^"]*)" and "([^"]*)" priced at (\d+) EUR split (\d+)% crypto and (\d+)% fiat$`, steps.registerHybrid)
	ctx.Step(`^"([^"]*)" (?:builds|has built) the plan$`, steps.buildPlan)
	ctx.Step(`^"([^"]*)" deposits ([\d.]+) (BTC|ETH|USDT|USDC)$`, steps.deposit)
	ctx.Step(`^"([^"]*)" uploads proof "([^"]*)"$`, steps.uploadProof)
	ctx.Step(`^"([^"]*)" (?:has )?(confirms the deposit|transfers the crypto|converts to settlement|sends the bank transfer|confirms fiat receipt|confirms the fiat transfer)$`, steps.act)
	ctx.Step(`^"([^"]*)" checks the status$`, steps.checkStatus)

	ctx.Step(`^the plan should have steps "([^"]*)"$`, steps.planShouldHaveSteps)
	ctx.Step(`^the plan steps should have amounts "([^"]*)"$`, steps.planShouldHaveAmounts)
	ctx.Step(`^the crypto leg should (not )?pay out to a bank account$`, steps.cryptoLegPayOut)
	ctx.Step(`^the current step should be "([^"]*)" for the (BUYER|SELLER)$`, steps.currentStepShouldBe)
	ctx.Step(`^(\d+) of (\d+) steps should be completed$`, steps.completedShouldBe)
	ctx.Step(`^the fulfillment should be (UNINITIALIZED|IN_PROGRESS|COMPLETE) with transaction status "([^"]*)"$`, steps.stateShouldBe)
	ctx.Step(`^the seller bank details should (not )?be shown$`, steps.bankDetailsShown)
	ctx.Step(`^(\d+) EUR should have been paid out to the seller's bank$`, steps.paidOut)
	ctx.Step(`^"([^"]*)" should have an audit trail containing "([^"]*)"$`, steps.auditTrailContains)
}

type fundProtectionSteps struct {
	tc      TestContext
	plan    *fphandler.PlanResponse
	status  *fphandler.StatusResponse
}

func (s *fundProtectionSteps) base() string {
	return "/transactions/" + s.tc.Transaction() + "/fund-protection"
}

func (s *fundProtectionSteps) register(body map[string]any, buyer, seller string) error {
	buyerID, err := s.tc.UserID(buyer)
	if err != nil {
		return err
	}
	sellerID, err := s.tc.UserID(seller)
	if err != nil {
		return err
	}
	body["property_id"] = "0b6f3a52-6f1c-4c38-9d43-3f0f6d1f2a10"
	body["buyer_id"] = buyerID
	body["seller_id"] = sellerID
	body["currency"] = "EUR"
	if err := s.tc.AsAdmin(http.MethodPost, "/admin/transactions", body); err != nil {
		return err
	}
	if s.tc.StatusCode() != http.StatusCreated {
		return fmt.Errorf("register transaction: %d %s", s.tc.StatusCode(), s.tc.Body())
	}
	var tx fphandler.TransactionResponse
	if err := s.tc.DecodeBody(&tx); err != nil {
		return err
	}
	s.tc.SetTransaction(tx.ID)
	return nil
}

func (s *fundProtectionSteps) registerTransaction(_ context.Context, method, buyer, seller, price string) error {
	return s.register(map[string]any{"payment_method": method, "price": price}, buyer, seller)
}

func (s *fundProtectionSteps) registerHybrid(_ context.Context, buyer, seller, price string, crypto, fiat int) error {
	return s.register(map[string]any{
		"payment_method":    "HYBRID",
		"price":             price,
		"crypto_percentage": crypto,
		"fiat_percentage":   fiat,
	}, buyer, seller)
}

func (s *fundProtectionSteps) buildPlan(_ context.Context, name string) error {
	if err := s.tc.AsUser(name, http.MethodPost, s.base()+"/plan", nil); err != nil {
		return err
	}
	if code := s.tc.StatusCode(); code != http.StatusCreated && code != http.StatusOK {
		s.plan = nil
		return nil
	}
	var plan fphandler.PlanResponse
	if err := s.tc.DecodeBody(&plan); err != nil {
		return err
	}
	s.plan = &plan
	return nil
}

func (s *fundProtectionSteps) deposit(_ context.Context, name, amount, asset string) error {
	return s.tc.Fund(name, asset, decimal.RequireFromString(amount))
}

func (s *fundProtectionSteps) uploadProof(_ context.Context, name, proof string) error {
	return s.tc.AsUser(name, http.MethodPost, s.base()+"/upload-proof", map[string]string{"proof_reference": proof})
}

func (s *fundProtectionSteps) act(_ context.Context, name, action string) error {
	return s.tc.AsUser(name, http.MethodPost, s.base()+actionRoutes[action], nil)
}

func (s *fundProtectionSteps) checkStatus(_ context.Context, name string) error {
	if err := s.tc.AsUser(name, http.MethodGet, s.base()+"/status", nil); err != nil {
		return err
	}
	if s.tc.StatusCode() != http.StatusOK {
		s.status = nil
		return nil
	}
	var status fphandler.StatusResponse
	if err := s.tc.DecodeBody(&status); err != nil {
		return err
	}
	s.status = &status
	return nil
}

func (s *fundProtectionSteps) requirePlan() error {
	if s.plan == nil {
		return fmt.Errorf("no plan in the last response: %s", s.tc.Body())
	}
	return nil
}

func (s *fundProtectionSteps) requireStatus() error {
	if s.status == nil {
		return fmt.Errorf("no status in the last response: %s", s.tc.Body())
	}
	return nil
}

func (s *fundProtectionSteps) planShouldHaveSteps(_ context.Context, list string) error {
	if err := s.requirePlan(); err != nil {
		return err
	}
	var got []string
	for _, st := range s.plan.Steps {
		got = append(got, st.StepType)
	}
	if want := strings.Split(list, ","); !slices.Equal(got, want) {
		return fmt.Errorf("plan steps %v, expected %v", got, want)
	}
	return nil
}

func (s *fundProtectionSteps) planShouldHaveAmounts(_ context.Context, list string) error {
	if err := s.requirePlan(); err != nil {
		return err
	}
	want := strings.Split(list, ",")
	if len(want) != len(s.plan.Steps) {
		return fmt.Errorf("plan has %d steps, expected %d amounts", len(s.plan.Steps), len(want))
	}
	for i, st := range s.plan.Steps {
		if !st.Amount.Equal(decimal.RequireFromString(want[i])) {
			return fmt.Errorf("step %d amount %s, expected %s", st.StepNumber, st.Amount, want[i])
		}
	}
	return nil
}

func (s *fundProtectionSteps) cryptoLegPayOut(_ context.Context, not string) error {
	if err := s.requirePlan(); err != nil {
		return err
	}
	if s.plan.CryptoLeg.PayOut == (not != "") {
		return fmt.Errorf("crypto leg pay_out=%v", s.plan.CryptoLeg.PayOut)
	}
	return nil
}

func (s *fundProtectionSteps) currentStepShouldBe(_ context.Context, stepType, role string) error {
	if err := s.requireStatus(); err != nil {
		return err
	}
	cur := s.status.CurrentStep
	if cur == nil {
		return fmt.Errorf("no current step")
	}
	if cur.StepType != stepType || cur.OwnerRole != role {
		return fmt.Errorf("current step %s for %s, expected %s for %s", cur.StepType, cur.OwnerRole, stepType, role)
	}
	return nil
}

func (s *fundProtectionSteps) completedShouldBe(_ context.Context, completed, total int) error {
	if err := s.requireStatus(); err != nil {
		return err
	}
	if p := s.status.Progress; p.Completed != completed || p.Total != total {
		return fmt.Errorf("progress %d/%d, expected %d/%d", p.Completed, p.Total, completed, total)
	}
	return nil
}

func (s *fundProtectionSteps) stateShouldBe(_ context.Context, state, txStatus string) error {
	if err := s.requireStatus(); err != nil {
		return err
	}
	if s.status.State != state || s.status.TransactionStatus != txStatus {
		return fmt.Errorf("state %s with transaction %s, expected %s with %s",
			s.status.State, s.status.TransactionStatus, state, txStatus)
	}
	return nil
}

func (s *fundProtectionSteps) bankDetailsShown(_ context.Context, not string) error {
	if err := s.requireStatus(); err != nil {
		return err
	}
	if shown := s.status.SellerBankDetails != nil; shown == (not != "") {
		return fmt.Errorf("seller bank details shown=%v", shown)
	}
	return nil
}

func (s *fundProtectionSteps) paidOut(_ context.Context, amount string) error {
	payouts := s.tc.BankPayouts()
	if len(payouts) != 1 {
		return fmt.Errorf("expected one bank payout, got %d", len(payouts))
	}
	if !payouts[0].Amount.Equal(decimal.RequireFromString(amount)) {
		return fmt.Errorf("paid out %s, expected %s", payouts[0].Amount, amount)
	}
	return nil
}

func (s *fundProtectionSteps) auditTrailContains(_ context.Context, name, action string) error {
	actions, err := s.tc.AuditActions(name)
	if err != nil {
		return err
	}
	if !slices.Contains(actions, action) {
		return fmt.Errorf("%s audit trail %v lacks %q", name, actions, action)
	}
	return nil
}
