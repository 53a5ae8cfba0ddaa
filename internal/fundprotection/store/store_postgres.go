package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/shopspring/decimal"

	"propex/internal/fundprotection/models"
	"propex/internal/platform/postgres"
	id "propex/pkg/domain"
	txcontext "propex/pkg/platform/tx"
)

const stepColumns = `id, transaction_id, step_number, step_type, owner_role, amount, currency, asset,
	from_wallet_ref, to_wallet_ref, status, proof_reference, partner_reference,
	realized_amount, realized_rate, completed_by, completed_at, created_at`

// PostgresStore persists transactions and steps in PostgreSQL. Every method
// joins the SQL transaction carried by ctx when there is one.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) SaveTransaction(ctx context.Context, tx *models.Transaction) error {
	query := `
		INSERT INTO transactions (id, property_id, price, currency, payment_method,
			crypto_percentage, fiat_percentage, buyer_id, seller_id, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
	`
	_, err := txcontext.Use(ctx, s.db).ExecContext(ctx, query,
		uuid.UUID(tx.ID), uuid.UUID(tx.PropertyID), tx.Price, string(tx.Currency), string(tx.PaymentMethod),
		nullInt(tx.CryptoPercentage), nullInt(tx.FiatPercentage),
		uuid.UUID(tx.BuyerID), uuid.UUID(tx.SellerID), string(tx.Status), tx.CreatedAt, tx.UpdatedAt,
	)
	if err != nil {
		if postgres.IsUniqueViolation(err) {
			return fmt.Errorf("transaction %s: %w", tx.ID, ErrConflict)
		}
		return fmt.Errorf("save transaction: %w", err)
	}
	return nil
}

func (s *PostgresStore) FindTransaction(ctx context.Context, txID id.TransactionID) (*models.Transaction, error) {
	query := `
		SELECT id, property_id, price, currency, payment_method, crypto_percentage, fiat_percentage,
			buyer_id, seller_id, status, created_at, updated_at
		FROM transactions
		WHERE id = $1
	`
	var (
		tx                  models.Transaction
		txUUID, propUUID    uuid.UUID
		buyerUUID, sellUUID uuid.UUID
		currency, method    string
		status              string
		cryptoPct, fiatPct  sql.NullInt64
	)
	err := txcontext.Use(ctx, s.db).QueryRowContext(ctx, query, uuid.UUID(txID)).Scan(
		&txUUID, &propUUID, &tx.Price, &currency, &method, &cryptoPct, &fiatPct,
		&buyerUUID, &sellUUID, &status, &tx.CreatedAt, &tx.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("find transaction: %w", err)
	}
	tx.ID = id.TransactionID(txUUID)
	tx.PropertyID = id.PropertyID(propUUID)
	tx.BuyerID = id.UserID(buyerUUID)
	tx.SellerID = id.UserID(sellUUID)
	tx.Currency = id.Currency(currency)
	tx.PaymentMethod = models.PaymentMethod(method)
	tx.Status = models.TransactionStatus(status)
	tx.CryptoPercentage = intPtr(cryptoPct)
	tx.FiatPercentage = intPtr(fiatPct)
	return &tx, nil
}

// TransitionStatus moves the transaction to `to` only if its current status
// is one of from.
func (s *PostgresStore) TransitionStatus(ctx context.Context, txID id.TransactionID, from []models.TransactionStatus, to models.TransactionStatus, at time.Time) error {
	fromStrs := make([]string, len(from))
	for i, st := range from {
		fromStrs[i] = string(st)
	}
	query := `
		UPDATE transactions
		SET status = $1, updated_at = $2
		WHERE id = $3 AND status = ANY($4::text[])
	`
	res, err := txcontext.Use(ctx, s.db).ExecContext(ctx, query, string(to), at, uuid.UUID(txID), pq.Array(fromStrs))
	if err != nil {
		return fmt.Errorf("transition transaction status: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("transition transaction status: %w", err)
	}
	if affected == 0 {
		return ErrInvalidState
	}
	return nil
}

func (s *PostgresStore) ListSteps(ctx context.Context, txID id.TransactionID) (models.Plan, error) {
	query := `SELECT ` + stepColumns + ` FROM fulfillment_steps WHERE transaction_id = $1 ORDER BY step_number`
	rows, err := txcontext.Use(ctx, s.db).QueryContext(ctx, query, uuid.UUID(txID))
	if err != nil {
		return nil, fmt.Errorf("list steps: %w", err)
	}
	defer rows.Close()

	var plan models.Plan
	for rows.Next() {
		step, err := scanStep(rows)
		if err != nil {
			return nil, fmt.Errorf("scan step: %w", err)
		}
		plan = append(plan, *step)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list steps: %w", err)
	}
	return plan, nil
}

// CreatePlan inserts every step in one statement. The (transaction_id,
// step_number) key makes a second plan for the same transaction fail as a
// whole with ErrConflict.
func (s *PostgresStore) CreatePlan(ctx context.Context, txID id.TransactionID, steps models.Plan) error {
	if len(steps) == 0 {
		return nil
	}
	n := len(steps)
	var (
		ids       = make([]string, n)
		numbers   = make([]int64, n)
		types     = make([]string, n)
		owners    = make([]string, n)
		amounts   = make([]string, n)
		curr      = make([]string, n)
		assets    = make([]string, n)
		fromRefs  = make([]string, n)
		toRefs    = make([]string, n)
		createdAt time.Time
	)
	for i, st := range steps {
		ids[i] = st.ID.String()
		numbers[i] = int64(st.StepNumber)
		types[i] = string(st.StepType)
		owners[i] = string(st.OwnerRole)
		amounts[i] = st.Amount.String()
		curr[i] = string(st.Currency)
		assets[i] = string(st.Asset)
		fromRefs[i] = st.FromWalletRef
		toRefs[i] = st.ToWalletRef
		createdAt = st.CreatedAt
	}
	if createdAt.IsZero() {
		createdAt = time.Now()
	}

	query := `
		INSERT INTO fulfillment_steps (transaction_id, id, step_number, step_type, owner_role,
			amount, currency, asset, from_wallet_ref, to_wallet_ref, status, created_at)
		SELECT $1, u.id, u.step_number, u.step_type, u.owner_role,
			u.amount, u.currency, u.asset, u.from_ref, u.to_ref, 'PENDING', $11
		FROM unnest($2::uuid[], $3::int[], $4::text[], $5::text[], $6::numeric[],
			$7::text[], $8::text[], $9::text[], $10::text[])
			AS u(id, step_number, step_type, owner_role, amount, currency, asset, from_ref, to_ref)
	`
	_, err := txcontext.Use(ctx, s.db).ExecContext(ctx, query,
		uuid.UUID(txID),
		pq.Array(ids), pq.Array(numbers), pq.Array(types), pq.Array(owners), pq.Array(amounts),
		pq.Array(curr), pq.Array(assets), pq.Array(fromRefs), pq.Array(toRefs),
		createdAt,
	)
	if err != nil {
		if postgres.IsUniqueViolation(err) {
			return ErrConflict
		}
		return fmt.Errorf("create plan: %w", err)
	}
	return nil
}

// CompleteStep flips a pending step to COMPLETED when every lower step is
// already completed. ErrInvalidState means the step is done or out of turn.
func (s *PostgresStore) CompleteStep(ctx context.Context, txID id.TransactionID, stepNumber int, c models.StepCompletion) (*models.FulfillmentStep, error) {
	query := `
		UPDATE fulfillment_steps s
		SET status = 'COMPLETED',
			completed_by = $3,
			completed_at = $4,
			proof_reference = CASE WHEN $5::text <> '' THEN $5::text ELSE s.proof_reference END,
			partner_reference = $6,
			realized_amount = $7,
			realized_rate = $8
		WHERE s.transaction_id = $1
			AND s.step_number = $2
			AND s.status = 'PENDING'
			AND NOT EXISTS (
				SELECT 1 FROM fulfillment_steps p
				WHERE p.transaction_id = s.transaction_id
					AND p.step_number < s.step_number
					AND p.status <> 'COMPLETED'
			)
		RETURNING ` + stepColumns
	q := txcontext.Use(ctx, s.db)
	row := q.QueryRowContext(ctx, query,
		uuid.UUID(txID), stepNumber, uuid.UUID(c.CompletedBy), c.CompletedAt,
		c.ProofReference, c.PartnerReference, nullDecimal(c.RealizedAmount), nullDecimal(c.RealizedRate),
	)
	step, err := scanStep(row)
	if err == nil {
		return step, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("complete step: %w", err)
	}

	var exists bool
	err = q.QueryRowContext(ctx,
		`SELECT EXISTS (SELECT 1 FROM fulfillment_steps WHERE transaction_id = $1 AND step_number = $2)`,
		uuid.UUID(txID), stepNumber,
	).Scan(&exists)
	if err != nil {
		return nil, fmt.Errorf("complete step: %w", err)
	}
	if !exists {
		return nil, ErrNotFound
	}
	return nil, ErrInvalidState
}

type scanner interface {
	Scan(dest ...any) error
}

func scanStep(row scanner) (*models.FulfillmentStep, error) {
	var (
		st                      models.FulfillmentStep
		stepUUID, txUUID        uuid.UUID
		stepType, owner, status string
		currency, asset         string
		realizedAmt, realizedRt decimal.NullDecimal
		completedBy             uuid.NullUUID
		completedAt             sql.NullTime
	)
	err := row.Scan(
		&stepUUID, &txUUID, &st.StepNumber, &stepType, &owner, &st.Amount, &currency, &asset,
		&st.FromWalletRef, &st.ToWalletRef, &status, &st.ProofReference, &st.PartnerReference,
		&realizedAmt, &realizedRt, &completedBy, &completedAt, &st.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	st.ID = id.StepID(stepUUID)
	st.TransactionID = id.TransactionID(txUUID)
	st.StepType = models.StepType(stepType)
	st.OwnerRole = models.Role(owner)
	st.Status = models.StepStatus(status)
	st.Currency = id.Currency(currency)
	st.Asset = id.Currency(asset)
	if realizedAmt.Valid {
		v := realizedAmt.Decimal
		st.RealizedAmount = &v
	}
	if realizedRt.Valid {
		v := realizedRt.Decimal
		st.RealizedRate = &v
	}
	if completedBy.Valid {
		u := id.UserID(completedBy.UUID)
		st.CompletedBy = &u
	}
	if completedAt.Valid {
		t := completedAt.Time
		st.CompletedAt = &t
	}
	return &st, nil
}

func nullInt(v *int) sql.NullInt64 {
	if v == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: int64(*v), Valid: true}
}

func intPtr(v sql.NullInt64) *int {
	if !v.Valid {
		return nil
	}
	i := int(v.Int64)
	return &i
}

func nullDecimal(v *decimal.Decimal) decimal.NullDecimal {
	if v == nil {
		return decimal.NullDecimal{}
	}
	return decimal.NullDecimal{Decimal: *v, Valid: true}
}
