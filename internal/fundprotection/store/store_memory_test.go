package store

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/suite"

	"propex/internal/fundprotection/models"
	id "propex/pkg/domain"
)

type InMemoryStoreSuite struct {
	suite.Suite
	store *InMemoryStore
	tx    *models.Transaction
	now   time.Time
}

func TestInMemoryStoreSuite(t *testing.T) {
	suite.Run(t, new(InMemoryStoreSuite))
}

func (s *InMemoryStoreSuite) SetupTest() {
	s.store = NewInMemoryStore()
	s.now = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	s.tx = &models.Transaction{
		ID:            id.NewTransactionID(),
		Price:         decimal.NewFromInt(300000),
		Currency:      id.CurrencyEUR,
		PaymentMethod: models.PaymentFiat,
		BuyerID:       id.NewUserID(),
		SellerID:      id.NewUserID(),
		Status:        models.TransactionOfferAccepted,
	}
	s.Require().NoError(s.store.SaveTransaction(context.Background(), s.tx))
}

func (s *InMemoryStoreSuite) plan(n int) models.Plan {
	p := make(models.Plan, n)
	for i := range p {
		p[i] = models.FulfillmentStep{
			ID:            id.NewStepID(),
			TransactionID: s.tx.ID,
			StepNumber:    i + 1,
			StepType:      models.StepFiatUpload,
			OwnerRole:     models.RoleBuyer,
			Amount:        s.tx.Price,
			Currency:      id.CurrencyEUR,
			Status:        models.StepPending,
		}
	}
	return p
}

func (s *InMemoryStoreSuite) completion() models.StepCompletion {
	return models.StepCompletion{CompletedBy: s.tx.BuyerID, CompletedAt: s.now}
}

// =============================================================================
// Transactions
// =============================================================================

func (s *InMemoryStoreSuite) TestTransactions() {
	ctx := context.Background()

	s.Run("duplicate save conflicts", func() {
		s.ErrorIs(s.store.SaveTransaction(ctx, s.tx), ErrConflict)
	})

	s.Run("find unknown is not found", func() {
		_, err := s.store.FindTransaction(ctx, id.NewTransactionID())
		s.ErrorIs(err, ErrNotFound)
	})

	s.Run("transition only from allowed statuses", func() {
		err := s.store.TransitionStatus(ctx, s.tx.ID, models.AdvanceableStatuses, models.TransactionClosing, s.now)
		s.Require().NoError(err)

		err = s.store.TransitionStatus(ctx, s.tx.ID, models.AdvanceableStatuses, models.TransactionClosing, s.now)
		s.ErrorIs(err, ErrInvalidState)

		got, err := s.store.FindTransaction(ctx, s.tx.ID)
		s.Require().NoError(err)
		s.Equal(models.TransactionClosing, got.Status)
		s.Equal(s.now, got.UpdatedAt)
	})
}

// =============================================================================
// Steps
// =============================================================================

func (s *InMemoryStoreSuite) TestCreatePlanOnce() {
	ctx := context.Background()
	s.Require().NoError(s.store.CreatePlan(ctx, s.tx.ID, s.plan(2)))
	s.ErrorIs(s.store.CreatePlan(ctx, s.tx.ID, s.plan(3)), ErrConflict)

	steps, err := s.store.ListSteps(ctx, s.tx.ID)
	s.Require().NoError(err)
	s.Len(steps, 2)
}

func (s *InMemoryStoreSuite) TestCreatePlanForUnknownTransaction() {
	s.ErrorIs(s.store.CreatePlan(context.Background(), id.NewTransactionID(), s.plan(1)), ErrNotFound)
}

func (s *InMemoryStoreSuite) TestCompleteStepInOrder() {
	ctx := context.Background()
	s.Require().NoError(s.store.CreatePlan(ctx, s.tx.ID, s.plan(3)))

	s.Run("out of order is rejected", func() {
		_, err := s.store.CompleteStep(ctx, s.tx.ID, 2, s.completion())
		s.ErrorIs(err, ErrInvalidState)
	})

	s.Run("current step completes", func() {
		step, err := s.store.CompleteStep(ctx, s.tx.ID, 1, s.completion())
		s.Require().NoError(err)
		s.True(step.IsCompleted())
		s.Equal(s.tx.BuyerID, *step.CompletedBy)
	})

	s.Run("completing twice is rejected", func() {
		_, err := s.store.CompleteStep(ctx, s.tx.ID, 1, s.completion())
		s.ErrorIs(err, ErrInvalidState)
	})

	s.Run("unknown step is not found", func() {
		_, err := s.store.CompleteStep(ctx, s.tx.ID, 9, s.completion())
		s.ErrorIs(err, ErrNotFound)
	})

	s.Run("completed set only grows", func() {
		_, err := s.store.CompleteStep(ctx, s.tx.ID, 2, s.completion())
		s.Require().NoError(err)
		steps, err := s.store.ListSteps(ctx, s.tx.ID)
		s.Require().NoError(err)
		s.Equal(2, steps.Progress().Completed)
		s.True(steps[0].IsCompleted())
	})
}

func (s *InMemoryStoreSuite) TestConcurrentCompletionHasOneWinner() {
	ctx := context.Background()
	s.Require().NoError(s.store.CreatePlan(ctx, s.tx.ID, s.plan(2)))

	var (
		wg   sync.WaitGroup
		wins atomic.Int32
	)
	for range 20 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := s.store.CompleteStep(ctx, s.tx.ID, 1, s.completion()); err == nil {
				wins.Add(1)
			}
		}()
	}
	wg.Wait()
	s.Equal(int32(1), wins.Load())
}

func (s *InMemoryStoreSuite) TestListedStepsAreCopies() {
	ctx := context.Background()
	s.Require().NoError(s.store.CreatePlan(ctx, s.tx.ID, s.plan(1)))

	steps, err := s.store.ListSteps(ctx, s.tx.ID)
	s.Require().NoError(err)
	steps[0].Status = models.StepCompleted

	again, err := s.store.ListSteps(ctx, s.tx.ID)
	s.Require().NoError(err)
	s.Equal(models.StepPending, again[0].Status)
}
