package e2e

import (
	"context"

	"github.com/cucumber/godog"

	"propex/e2e/steps/common"
	"propex/e2e/steps/fundprotection"
	"propex/e2e/steps/wallets"
)

// RegisterSteps registers all step definitions against a fresh world per
// scenario.
func RegisterSteps(ctx *godog.ScenarioContext, w *World) {
	ctx.Before(func(ctx context.Context, _ *godog.Scenario) (context.Context, error) {
		return ctx, w.Reset()
	})
	ctx.After(func(ctx context.Context, _ *godog.Scenario, err error) (context.Context, error) {
		w.Close()
		return ctx, err
	})

	common.RegisterSteps(ctx, w)
	wallets.RegisterSteps(ctx, w)
	fundprotection.RegisterSteps(ctx, w)
}
