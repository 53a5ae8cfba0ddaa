package store

import (
	"context"
	"fmt"
	"slices"
	"sort"
	"sync"
	"time"

	"propex/internal/wallet/models"
	id "propex/pkg/domain"
)

// InMemoryStore keeps wallet state in maps. Safe for concurrent use.
type InMemoryStore struct {
	mu       sync.RWMutex
	accounts map[id.UserID]models.Account
	wallets  map[id.UserID][]models.Wallet
	ibans    map[id.UserID]models.DigitalIBAN
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{
		accounts: make(map[id.UserID]models.Account),
		wallets:  make(map[id.UserID][]models.Wallet),
		ibans:    make(map[id.UserID]models.DigitalIBAN),
	}
}

// UpsertAccount inserts or replaces the account for acc.UserID.
func (s *InMemoryStore) UpsertAccount(_ context.Context, acc *models.Account) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if acc.CreatedAt.IsZero() {
		if existing, ok := s.accounts[acc.UserID]; ok {
			acc.CreatedAt = existing.CreatedAt
		} else {
			acc.CreatedAt = time.Now()
		}
	}
	s.accounts[acc.UserID] = *acc
	return nil
}

func (s *InMemoryStore) FindAccount(_ context.Context, userID id.UserID) (*models.Account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	acc, ok := s.accounts[userID]
	if !ok {
		return nil, ErrNotFound
	}
	return &acc, nil
}

// ListEligibleAccounts returns linked accounts whose KYC status is one of
// statuses, ordered by creation time.
func (s *InMemoryStore) ListEligibleAccounts(_ context.Context, statuses []models.KYCStatus) ([]models.Account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []models.Account
	for _, acc := range s.accounts {
		if acc.PartnerUserRef != "" && slices.Contains(statuses, acc.KYCStatus) {
			out = append(out, acc)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].UserID.String() < out[j].UserID.String()
		}
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out, nil
}

func (s *InMemoryStore) ListWallets(_ context.Context, userID id.UserID) ([]models.Wallet, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.wallets[userID]), nil
}

// SaveWallet fails with ErrConflict when the user already holds a wallet in
// that currency.
func (s *InMemoryStore) SaveWallet(_ context.Context, w *models.Wallet) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.wallets[w.UserID] {
		if existing.Currency == w.Currency {
			return fmt.Errorf("wallet %s/%s: %w", w.UserID, w.Currency, ErrConflict)
		}
	}
	s.wallets[w.UserID] = append(s.wallets[w.UserID], *w)
	return nil
}

func (s *InMemoryStore) FindIBAN(_ context.Context, userID id.UserID) (*models.DigitalIBAN, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	iban, ok := s.ibans[userID]
	if !ok {
		return nil, ErrNotFound
	}
	return &iban, nil
}

func (s *InMemoryStore) SaveIBAN(_ context.Context, iban *models.DigitalIBAN) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.ibans[iban.UserID]; ok {
		return fmt.Errorf("iban %s: %w", iban.UserID, ErrConflict)
	}
	s.ibans[iban.UserID] = *iban
	return nil
}
