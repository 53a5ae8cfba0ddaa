package store

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"propex/internal/wallet/models"
	id "propex/pkg/domain"
)

type InMemoryStoreSuite struct {
	suite.Suite
	store *InMemoryStore
	ctx   context.Context
}

func TestInMemoryStoreSuite(t *testing.T) {
	suite.Run(t, new(InMemoryStoreSuite))
}

func (s *InMemoryStoreSuite) SetupTest() {
	s.store = NewInMemoryStore()
	s.ctx = context.Background()
}

func (s *InMemoryStoreSuite) TestEligibleAccounts() {
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	approvedLate := models.Account{UserID: id.NewUserID(), KYCStatus: models.KYCApproved, PartnerUserRef: "p-2", CreatedAt: base.Add(time.Hour)}
	approvedEarly := models.Account{UserID: id.NewUserID(), KYCStatus: models.KYCApproved, PartnerUserRef: "p-1", CreatedAt: base}
	unlinked := models.Account{UserID: id.NewUserID(), KYCStatus: models.KYCApproved, CreatedAt: base}
	pending := models.Account{UserID: id.NewUserID(), KYCStatus: models.KYCPending, PartnerUserRef: "p-3", CreatedAt: base}
	for _, acc := range []models.Account{approvedLate, approvedEarly, unlinked, pending} {
		s.Require().NoError(s.store.UpsertAccount(s.ctx, &acc))
	}

	got, err := s.store.ListEligibleAccounts(s.ctx, models.EligibleKYCStatuses)
	s.Require().NoError(err)
	s.Require().Len(got, 2)
	s.Equal(approvedEarly.UserID, got[0].UserID)
	s.Equal(approvedLate.UserID, got[1].UserID)
}

func (s *InMemoryStoreSuite) TestUpsertKeepsCreatedAt() {
	created := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	acc := models.Account{UserID: id.NewUserID(), KYCStatus: models.KYCPending, CreatedAt: created}
	s.Require().NoError(s.store.UpsertAccount(s.ctx, &acc))

	update := models.Account{UserID: acc.UserID, KYCStatus: models.KYCApproved, PartnerUserRef: "p-1"}
	s.Require().NoError(s.store.UpsertAccount(s.ctx, &update))

	got, err := s.store.FindAccount(s.ctx, acc.UserID)
	s.Require().NoError(err)
	s.Equal(models.KYCApproved, got.KYCStatus)
	s.Equal(created, got.CreatedAt)
}

func (s *InMemoryStoreSuite) TestWalletPerCurrencyIsUnique() {
	userID := id.NewUserID()
	btc := models.Wallet{ID: id.NewWalletID(), UserID: userID, Currency: id.CurrencyBTC, PartnerWalletID: "w-1"}
	s.Require().NoError(s.store.SaveWallet(s.ctx, &btc))

	dup := models.Wallet{ID: id.NewWalletID(), UserID: userID, Currency: id.CurrencyBTC, PartnerWalletID: "w-2"}
	s.ErrorIs(s.store.SaveWallet(s.ctx, &dup), ErrConflict)

	wallets, err := s.store.ListWallets(s.ctx, userID)
	s.Require().NoError(err)
	s.Require().Len(wallets, 1)
	s.Equal("w-1", wallets[0].PartnerWalletID)

	wallets[0].PartnerWalletID = "mutated"
	again, err := s.store.ListWallets(s.ctx, userID)
	s.Require().NoError(err)
	s.Equal("w-1", again[0].PartnerWalletID)
}

func (s *InMemoryStoreSuite) TestIBAN() {
	userID := id.NewUserID()
	_, err := s.store.FindIBAN(s.ctx, userID)
	s.ErrorIs(err, ErrNotFound)

	iban := models.DigitalIBAN{UserID: userID, IBAN: "DE89370400440532013000"}
	s.Require().NoError(s.store.SaveIBAN(s.ctx, &iban))
	s.ErrorIs(s.store.SaveIBAN(s.ctx, &iban), ErrConflict)

	got, err := s.store.FindIBAN(s.ctx, userID)
	s.Require().NoError(err)
	s.Equal("DE89370400440532013000", got.IBAN)
}
