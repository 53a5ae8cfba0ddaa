package common

import (
	"context"
	"fmt"
	"net/http"

	"github.com/cucumber/godog"
)

// TestContext is what the shared steps need from the scenario world.
type TestContext interface {
	AddParty(name string)
	UserID(name string) (string, error)
	PartnerRef(name string) (string, error)
	AsAdmin(method, path string, body any) error
	StatusCode() int
	Body() []byte
	DecodeBody(v any) error
}

// RegisterSteps registers party setup and response assertions.
func RegisterSteps(ctx *godog.ScenarioContext, tc TestContext) {
	steps := &commonSteps{tc: tc}

	ctx.Step(`^an? (buyer|seller) "([^"]*)" with (approved|pending|rejected) KYC$`, steps.partyWithKYC)
	ctx.Step(`^a buyer "([^"]*)" and a seller "([^"]*)" with approved KYC$`, steps.buyerAndSeller)

	ctx.Step(`^the response status should be (\d+)$`, steps.responseStatusShouldBe)
	ctx.Step(`^the response error should be "([^"]*)"$`, steps.responseErrorShouldBe)
}

type commonSteps struct {
	tc TestContext
}

func (s *commonSteps) partyWithKYC(_ context.Context, role, name, kyc string) error {
	s.tc.AddParty(name)
	userID, err := s.tc.UserID(name)
	if err != nil {
		return err
	}
	ref, err := s.tc.PartnerRef(name)
	if err != nil {
		return err
	}
	if err := s.tc.AsAdmin(http.MethodPut, "/admin/users/"+userID+"/account", map[string]any{
		"role":             role,
		"kyc_status":       kyc,
		"partner_user_ref": ref,
	}); err != nil {
		return err
	}
	if s.tc.StatusCode() != http.StatusOK {
		return fmt.Errorf("account upsert for %s: %d %s", name, s.tc.StatusCode(), s.tc.Body())
	}
	return nil
}

func (s *commonSteps) buyerAndSeller(ctx context.Context, buyer, seller string) error {
	if err := s.partyWithKYC(ctx, "buyer", buyer, "approved"); err != nil {
		return err
	}
	return s.partyWithKYC(ctx, "seller", seller, "approved")
}

func (s *commonSteps) responseStatusShouldBe(_ context.Context, want int) error {
	if got := s.tc.StatusCode(); got != want {
		return fmt.Errorf("expected status %d, got %d: %s", want, got, s.tc.Body())
	}
	return nil
}

func (s *commonSteps) responseErrorShouldBe(_ context.Context, want string) error {
	var body struct {
		Error string `json:"error"`
	}
	if err := s.tc.DecodeBody(&body); err != nil {
		return err
	}
	if body.Error != want {
		return fmt.Errorf("expected error %q, got %q", want, body.Error)
	}
	return nil
}
