package store

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"propex/internal/fundprotection/models"
	id "propex/pkg/domain"
)

var stepRowColumns = []string{
	"id", "transaction_id", "step_number", "step_type", "owner_role", "amount", "currency", "asset",
	"from_wallet_ref", "to_wallet_ref", "status", "proof_reference", "partner_reference",
	"realized_amount", "realized_rate", "completed_by", "completed_at", "created_at",
}

func newMock(t *testing.T) (*PostgresStore, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return NewPostgres(db), mock
}

func TestPostgresCreatePlan(t *testing.T) {
	txID := id.NewTransactionID()
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	plan := models.Plan{
		{ID: id.NewStepID(), StepNumber: 1, StepType: models.StepFiatUpload, OwnerRole: models.RoleBuyer, Amount: decimal.NewFromInt(10), Currency: id.CurrencyEUR, CreatedAt: now},
		{ID: id.NewStepID(), StepNumber: 2, StepType: models.StepFiatConfirm, OwnerRole: models.RoleSeller, Amount: decimal.NewFromInt(10), Currency: id.CurrencyEUR, CreatedAt: now},
	}

	t.Run("inserts all steps in one statement", func(t *testing.T) {
		store, mock := newMock(t)
		mock.ExpectExec(regexp.QuoteMeta("INSERT INTO fulfillment_steps")).
			WithArgs(sqlmock.AnyArg(), sqlmock.AnyArg(), "{1,2}", `{"FIAT_UPLOAD","FIAT_CONFIRM"}`,
				sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(),
				sqlmock.AnyArg(), now).
			WillReturnResult(sqlmock.NewResult(0, 2))

		require.NoError(t, store.CreatePlan(context.Background(), txID, plan))
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("unique violation is a conflict", func(t *testing.T) {
		store, mock := newMock(t)
		mock.ExpectExec(regexp.QuoteMeta("INSERT INTO fulfillment_steps")).
			WillReturnError(&pgconn.PgError{Code: "23505"})

		err := store.CreatePlan(context.Background(), txID, plan)
		assert.ErrorIs(t, err, ErrConflict)
	})

	t.Run("empty plan is a no-op", func(t *testing.T) {
		store, mock := newMock(t)
		require.NoError(t, store.CreatePlan(context.Background(), txID, nil))
		require.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestPostgresCompleteStep(t *testing.T) {
	txID := id.NewTransactionID()
	userID := id.NewUserID()
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	rate := decimal.RequireFromString("60000")
	completion := models.StepCompletion{CompletedBy: userID, CompletedAt: now, PartnerReference: "conv-1", RealizedRate: &rate}

	t.Run("returns the completed row", func(t *testing.T) {
		store, mock := newMock(t)
		rows := sqlmock.NewRows(stepRowColumns).AddRow(
			id.NewStepID().String(), txID.String(), 3, "CRYPTO_CONVERT", "SELLER", "40000.00", "EUR", "BTC",
			"wal_s", "wal_eur", "COMPLETED", "", "conv-1",
			"40000.00", "60000", userID.String(), now, now,
		)
		mock.ExpectQuery(regexp.QuoteMeta("UPDATE fulfillment_steps s")).
			WithArgs(sqlmock.AnyArg(), 3, sqlmock.AnyArg(), now, "", "conv-1", sqlmock.AnyArg(), sqlmock.AnyArg()).
			WillReturnRows(rows)

		step, err := store.CompleteStep(context.Background(), txID, 3, completion)
		require.NoError(t, err)
		assert.True(t, step.IsCompleted())
		assert.Equal(t, models.StepCryptoConvert, step.StepType)
		assert.Equal(t, userID, *step.CompletedBy)
		require.NotNil(t, step.RealizedRate)
		assert.True(t, step.RealizedRate.Equal(rate))
	})

	t.Run("no row and step exists is invalid state", func(t *testing.T) {
		store, mock := newMock(t)
		mock.ExpectQuery(regexp.QuoteMeta("UPDATE fulfillment_steps s")).
			WillReturnRows(sqlmock.NewRows(stepRowColumns))
		mock.ExpectQuery(regexp.QuoteMeta("SELECT EXISTS")).
			WithArgs(sqlmock.AnyArg(), 2).
			WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))

		_, err := store.CompleteStep(context.Background(), txID, 2, completion)
		assert.ErrorIs(t, err, ErrInvalidState)
	})

	t.Run("no row and no step is not found", func(t *testing.T) {
		store, mock := newMock(t)
		mock.ExpectQuery(regexp.QuoteMeta("UPDATE fulfillment_steps s")).
			WillReturnRows(sqlmock.NewRows(stepRowColumns))
		mock.ExpectQuery(regexp.QuoteMeta("SELECT EXISTS")).
			WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(false))

		_, err := store.CompleteStep(context.Background(), txID, 7, completion)
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("driver error is wrapped", func(t *testing.T) {
		store, mock := newMock(t)
		mock.ExpectQuery(regexp.QuoteMeta("UPDATE fulfillment_steps s")).
			WillReturnError(errors.New("connection reset"))

		_, err := store.CompleteStep(context.Background(), txID, 1, completion)
		require.Error(t, err)
		assert.NotErrorIs(t, err, ErrInvalidState)
		assert.Contains(t, err.Error(), "complete step")
	})
}

func TestPostgresTransitionStatus(t *testing.T) {
	txID := id.NewTransactionID()
	now := time.Now()

	t.Run("zero rows affected is invalid state", func(t *testing.T) {
		store, mock := newMock(t)
		mock.ExpectExec(regexp.QuoteMeta("UPDATE transactions")).
			WithArgs("CLOSING", now, sqlmock.AnyArg(), `{"OFFER_ACCEPTED","FUND_PROTECTION"}`).
			WillReturnResult(sqlmock.NewResult(0, 0))

		err := store.TransitionStatus(context.Background(), txID, models.AdvanceableStatuses, models.TransactionClosing, now)
		assert.ErrorIs(t, err, ErrInvalidState)
	})

	t.Run("one row affected succeeds", func(t *testing.T) {
		store, mock := newMock(t)
		mock.ExpectExec(regexp.QuoteMeta("UPDATE transactions")).
			WillReturnResult(sqlmock.NewResult(0, 1))

		require.NoError(t, store.TransitionStatus(context.Background(), txID, models.AdvanceableStatuses, models.TransactionClosing, now))
	})
}

func TestPostgresFindTransaction(t *testing.T) {
	txID := id.NewTransactionID()
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	columns := []string{"id", "property_id", "price", "currency", "payment_method", "crypto_percentage",
		"fiat_percentage", "buyer_id", "seller_id", "status", "created_at", "updated_at"}

	t.Run("maps hybrid split", func(t *testing.T) {
		store, mock := newMock(t)
		mock.ExpectQuery(regexp.QuoteMeta("FROM transactions")).
			WillReturnRows(sqlmock.NewRows(columns).AddRow(
				txID.String(), id.NewPropertyID().String(), "100000.00", "EUR", "HYBRID", int64(40), int64(60),
				id.NewUserID().String(), id.NewUserID().String(), "OFFER_ACCEPTED", now, now,
			))

		tx, err := store.FindTransaction(context.Background(), txID)
		require.NoError(t, err)
		assert.Equal(t, txID, tx.ID)
		assert.Equal(t, models.PaymentHybrid, tx.PaymentMethod)
		require.NotNil(t, tx.CryptoPercentage)
		assert.Equal(t, 40, *tx.CryptoPercentage)
		assert.NoError(t, tx.Validate())
	})

	t.Run("missing row is not found", func(t *testing.T) {
		store, mock := newMock(t)
		mock.ExpectQuery(regexp.QuoteMeta("FROM transactions")).WillReturnError(sql.ErrNoRows)

		_, err := store.FindTransaction(context.Background(), txID)
		assert.ErrorIs(t, err, ErrNotFound)
	})
}
