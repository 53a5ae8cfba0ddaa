//go:build integration

package store_test

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/suite"

	"propex/internal/fundprotection/models"
	"propex/internal/fundprotection/store"
	"propex/internal/platform/postgres"
	id "propex/pkg/domain"
	"propex/pkg/testutil/containers"
)

type PostgresStoreSuite struct {
	suite.Suite
	postgres *containers.PostgresContainer
	store    *store.PostgresStore
	tx       *models.Transaction
}

func TestPostgresStoreSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	suite.Run(t, new(PostgresStoreSuite))
}

func (s *PostgresStoreSuite) SetupSuite() {
	s.postgres = containers.GetManager().GetPostgres(s.T())
	s.store = store.NewPostgres(s.postgres.DB)
}

func (s *PostgresStoreSuite) SetupTest() {
	ctx := context.Background()
	s.Require().NoError(s.postgres.TruncateTables(ctx, "fulfillment_steps", "transactions"))

	now := time.Now().UTC().Truncate(time.Microsecond)
	crypto, fiat := 40, 60
	s.tx = &models.Transaction{
		ID:               id.NewTransactionID(),
		PropertyID:       id.NewPropertyID(),
		Price:            decimal.NewFromInt(100000),
		Currency:         id.CurrencyEUR,
		PaymentMethod:    models.PaymentHybrid,
		CryptoPercentage: &crypto,
		FiatPercentage:   &fiat,
		BuyerID:          id.NewUserID(),
		SellerID:         id.NewUserID(),
		Status:           models.TransactionOfferAccepted,
		CreatedAt:        now,
		UpdatedAt:        now,
	}
	s.Require().NoError(s.store.SaveTransaction(ctx, s.tx))
}

func (s *PostgresStoreSuite) plan(n int) models.Plan {
	p := make(models.Plan, n)
	for i := range p {
		p[i] = models.FulfillmentStep{
			ID:            id.NewStepID(),
			TransactionID: s.tx.ID,
			StepNumber:    i + 1,
			StepType:      models.StepFiatUpload,
			OwnerRole:     models.RoleBuyer,
			Amount:        decimal.RequireFromString("60000.00"),
			Currency:      id.CurrencyEUR,
			Status:        models.StepPending,
			CreatedAt:     s.tx.CreatedAt,
		}
	}
	return p
}

func (s *PostgresStoreSuite) TestTransactionRoundTrip() {
	got, err := s.store.FindTransaction(context.Background(), s.tx.ID)
	s.Require().NoError(err)
	s.Equal(s.tx.BuyerID, got.BuyerID)
	s.Equal(40, *got.CryptoPercentage)
	s.True(got.Price.Equal(s.tx.Price))
}

func (s *PostgresStoreSuite) TestSecondPlanConflicts() {
	ctx := context.Background()
	s.Require().NoError(s.store.CreatePlan(ctx, s.tx.ID, s.plan(2)))
	s.ErrorIs(s.store.CreatePlan(ctx, s.tx.ID, s.plan(3)), store.ErrConflict)

	steps, err := s.store.ListSteps(ctx, s.tx.ID)
	s.Require().NoError(err)
	s.Len(steps, 2)
}

func (s *PostgresStoreSuite) TestConcurrentPlanCreationHasOneWinner() {
	ctx := context.Background()
	var (
		wg   sync.WaitGroup
		wins atomic.Int32
	)
	for range 8 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if s.store.CreatePlan(ctx, s.tx.ID, s.plan(2)) == nil {
				wins.Add(1)
			}
		}()
	}
	wg.Wait()
	s.Equal(int32(1), wins.Load())

	steps, err := s.store.ListSteps(ctx, s.tx.ID)
	s.Require().NoError(err)
	s.Len(steps, 2)
}

func (s *PostgresStoreSuite) TestCompletionIsOrderedAndOnce() {
	ctx := context.Background()
	s.Require().NoError(s.store.CreatePlan(ctx, s.tx.ID, s.plan(2)))
	c := models.StepCompletion{CompletedBy: s.tx.BuyerID, CompletedAt: time.Now().UTC(), ProofReference: "receipt-1"}

	_, err := s.store.CompleteStep(ctx, s.tx.ID, 2, c)
	s.ErrorIs(err, store.ErrInvalidState)

	step, err := s.store.CompleteStep(ctx, s.tx.ID, 1, c)
	s.Require().NoError(err)
	s.Equal("receipt-1", step.ProofReference)

	_, err = s.store.CompleteStep(ctx, s.tx.ID, 1, c)
	s.ErrorIs(err, store.ErrInvalidState)

	_, err = s.store.CompleteStep(ctx, s.tx.ID, 5, c)
	s.ErrorIs(err, store.ErrNotFound)
}

func (s *PostgresStoreSuite) TestFinalCompletionAndAdvanceShareATransaction() {
	ctx := context.Background()
	s.Require().NoError(s.store.CreatePlan(ctx, s.tx.ID, s.plan(1)))
	runner := postgres.NewTxRunner(s.postgres.DB)
	c := models.StepCompletion{CompletedBy: s.tx.BuyerID, CompletedAt: time.Now().UTC()}

	// Force the advancement to fail; the completion must roll back with it.
	s.Require().NoError(s.store.TransitionStatus(ctx, s.tx.ID, models.AdvanceableStatuses, models.TransactionCancelled, time.Now()))
	err := runner.RunInTx(ctx, func(ctx context.Context) error {
		if _, err := s.store.CompleteStep(ctx, s.tx.ID, 1, c); err != nil {
			return err
		}
		return s.store.TransitionStatus(ctx, s.tx.ID, models.AdvanceableStatuses, models.TransactionClosing, time.Now())
	})
	s.ErrorIs(err, store.ErrInvalidState)

	steps, err := s.store.ListSteps(ctx, s.tx.ID)
	s.Require().NoError(err)
	s.False(steps[0].IsCompleted())
}
