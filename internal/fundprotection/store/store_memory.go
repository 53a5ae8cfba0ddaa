package store

import (
	"context"
	"fmt"
	"slices"
	"sync"
	"time"

	"propex/internal/fundprotection/models"
	id "propex/pkg/domain"
)

// InMemoryStore keeps transactions and steps in maps. Safe for concurrent use.
type InMemoryStore struct {
	mu    sync.RWMutex
	txs   map[id.TransactionID]models.Transaction
	steps map[id.TransactionID]models.Plan
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{
		txs:   make(map[id.TransactionID]models.Transaction),
		steps: make(map[id.TransactionID]models.Plan),
	}
}

func (s *InMemoryStore) SaveTransaction(_ context.Context, tx *models.Transaction) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.txs[tx.ID]; ok {
		return fmt.Errorf("transaction %s: %w", tx.ID, ErrConflict)
	}
	s.txs[tx.ID] = *tx
	return nil
}

func (s *InMemoryStore) FindTransaction(_ context.Context, txID id.TransactionID) (*models.Transaction, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	tx, ok := s.txs[txID]
	if !ok {
		return nil, ErrNotFound
	}
	return &tx, nil
}

func (s *InMemoryStore) TransitionStatus(_ context.Context, txID id.TransactionID, from []models.TransactionStatus, to models.TransactionStatus, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	tx, ok := s.txs[txID]
	if !ok {
		return ErrNotFound
	}
	if !slices.Contains(from, tx.Status) {
		return ErrInvalidState
	}
	tx.Status = to
	tx.UpdatedAt = at
	s.txs[txID] = tx
	return nil
}

func (s *InMemoryStore) ListSteps(_ context.Context, txID id.TransactionID) (models.Plan, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.steps[txID].Sorted(), nil
}

func (s *InMemoryStore) CreatePlan(_ context.Context, txID id.TransactionID, steps models.Plan) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.steps[txID]) > 0 {
		return ErrConflict
	}
	if _, ok := s.txs[txID]; !ok {
		return ErrNotFound
	}
	s.steps[txID] = steps.Sorted()
	return nil
}

func (s *InMemoryStore) CompleteStep(_ context.Context, txID id.TransactionID, stepNumber int, c models.StepCompletion) (*models.FulfillmentStep, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	plan := s.steps[txID]
	idx := -1
	for i := range plan {
		if plan[i].StepNumber == stepNumber {
			idx = i
			continue
		}
		if plan[i].StepNumber < stepNumber && !plan[i].IsCompleted() {
			return nil, ErrInvalidState
		}
	}
	if idx < 0 {
		return nil, ErrNotFound
	}
	if plan[idx].IsCompleted() {
		return nil, ErrInvalidState
	}
	updated := c.Apply(plan[idx])
	plan[idx] = updated
	return &updated, nil
}

// InMemoryTx serializes units of work with a coarse lock.
type InMemoryTx struct {
	mu sync.Mutex
}

func (t *InMemoryTx) RunInTx(ctx context.Context, fn func(ctx context.Context) error) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	return fn(ctx)
}
