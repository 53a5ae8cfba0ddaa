//go:build integration

package store_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"propex/internal/wallet/models"
	"propex/internal/wallet/store"
	id "propex/pkg/domain"
	"propex/pkg/testutil/containers"
)

type PostgresStoreSuite struct {
	suite.Suite
	postgres *containers.PostgresContainer
	store    *store.PostgresStore
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
	s.Require().NoError(s.postgres.TruncateTables(context.Background(), "digital_ibans", "wallets", "accounts"))
}

func (s *PostgresStoreSuite) TestAccountsWalletsAndIBAN() {
	ctx := context.Background()
	now := time.Now().UTC().Truncate(time.Microsecond)
	seller := models.Account{UserID: id.NewUserID(), Role: models.RoleSeller, KYCStatus: models.KYCApproved, PartnerUserRef: "p-1", CreatedAt: now}
	pending := models.Account{UserID: id.NewUserID(), Role: models.RoleBuyer, KYCStatus: models.KYCPending, PartnerUserRef: "p-2", CreatedAt: now}
	s.Require().NoError(s.store.UpsertAccount(ctx, &seller))
	s.Require().NoError(s.store.UpsertAccount(ctx, &pending))

	eligible, err := s.store.ListEligibleAccounts(ctx, models.EligibleKYCStatuses)
	s.Require().NoError(err)
	s.Require().Len(eligible, 1)
	s.Equal(seller.UserID, eligible[0].UserID)

	s.Run("wallet per currency is unique", func() {
		w := models.Wallet{ID: id.NewWalletID(), UserID: seller.UserID, Currency: id.CurrencyEUR, PartnerWalletID: "w-eur", CreatedAt: now}
		s.Require().NoError(s.store.SaveWallet(ctx, &w))
		dup := w
		dup.ID = id.NewWalletID()
		s.ErrorIs(s.store.SaveWallet(ctx, &dup), store.ErrConflict)

		wallets, err := s.store.ListWallets(ctx, seller.UserID)
		s.Require().NoError(err)
		s.Require().Len(wallets, 1)
		s.Equal("w-eur", wallets[0].PartnerWalletID)
	})

	s.Run("iban round trip", func() {
		iban := models.DigitalIBAN{UserID: seller.UserID, IBAN: "DE89370400440532013000", BankName: "Partner Bank AG", CreatedAt: now}
		s.Require().NoError(s.store.SaveIBAN(ctx, &iban))
		got, err := s.store.FindIBAN(ctx, seller.UserID)
		s.Require().NoError(err)
		s.Equal(iban.IBAN, got.IBAN)
		s.Equal(iban.BankName, got.BankName)
	})

	s.Run("upsert updates kyc", func() {
		pending.KYCStatus = models.KYCApproved
		s.Require().NoError(s.store.UpsertAccount(ctx, &pending))
		eligible, err := s.store.ListEligibleAccounts(ctx, models.EligibleKYCStatuses)
		s.Require().NoError(err)
		s.Len(eligible, 2)
	})
}
