package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"propex/internal/platform/postgres"
	"propex/internal/wallet/models"
	id "propex/pkg/domain"
	txcontext "propex/pkg/platform/tx"
)

// PostgresStore persists wallet state in PostgreSQL.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) UpsertAccount(ctx context.Context, acc *models.Account) error {
	query := `
		INSERT INTO accounts (user_id, role, kyc_status, kyc_tier, partner_user_ref, created_at)
		VALUES ($1, $2, $3, $4, $5, COALESCE($6, now()))
		ON CONFLICT (user_id) DO UPDATE SET
			role = EXCLUDED.role,
			kyc_status = EXCLUDED.kyc_status,
			kyc_tier = EXCLUDED.kyc_tier,
			partner_user_ref = EXCLUDED.partner_user_ref
	`
	var createdAt sql.NullTime
	if !acc.CreatedAt.IsZero() {
		createdAt = sql.NullTime{Time: acc.CreatedAt, Valid: true}
	}
	_, err := txcontext.Use(ctx, s.db).ExecContext(ctx, query,
		uuid.UUID(acc.UserID), string(acc.Role), string(acc.KYCStatus), acc.KYCTier, acc.PartnerUserRef, createdAt,
	)
	if err != nil {
		return fmt.Errorf("upsert account: %w", err)
	}
	return nil
}

const accountColumns = `user_id, role, kyc_status, kyc_tier, partner_user_ref, created_at`

func (s *PostgresStore) FindAccount(ctx context.Context, userID id.UserID) (*models.Account, error) {
	query := `SELECT ` + accountColumns + ` FROM accounts WHERE user_id = $1`
	acc, err := scanAccount(txcontext.Use(ctx, s.db).QueryRowContext(ctx, query, uuid.UUID(userID)))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("find account: %w", err)
	}
	return acc, nil
}

func (s *PostgresStore) ListEligibleAccounts(ctx context.Context, statuses []models.KYCStatus) ([]models.Account, error) {
	query := `
		SELECT ` + accountColumns + `
		FROM accounts
		WHERE kyc_status = ANY($1::text[]) AND partner_user_ref <> ''
		ORDER BY created_at, user_id
	`
	raw := make([]string, len(statuses))
	for i, st := range statuses {
		raw[i] = string(st)
	}
	rows, err := txcontext.Use(ctx, s.db).QueryContext(ctx, query, pq.Array(raw))
	if err != nil {
		return nil, fmt.Errorf("list eligible accounts: %w", err)
	}
	defer rows.Close()

	var out []models.Account
	for rows.Next() {
		acc, err := scanAccount(rows)
		if err != nil {
			return nil, fmt.Errorf("scan account: %w", err)
		}
		out = append(out, *acc)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate accounts: %w", err)
	}
	return out, nil
}

func (s *PostgresStore) ListWallets(ctx context.Context, userID id.UserID) ([]models.Wallet, error) {
	query := `
		SELECT id, user_id, currency, partner_wallet_id, address, created_at
		FROM wallets
		WHERE user_id = $1
		ORDER BY created_at, currency
	`
	rows, err := txcontext.Use(ctx, s.db).QueryContext(ctx, query, uuid.UUID(userID))
	if err != nil {
		return nil, fmt.Errorf("list wallets: %w", err)
	}
	defer rows.Close()

	var out []models.Wallet
	for rows.Next() {
		var (
			w                 models.Wallet
			walletID, ownerID uuid.UUID
			currency          string
		)
		if err := rows.Scan(&walletID, &ownerID, &currency, &w.PartnerWalletID, &w.Address, &w.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan wallet: %w", err)
		}
		w.ID = id.WalletID(walletID)
		w.UserID = id.UserID(ownerID)
		w.Currency = id.Currency(currency)
		out = append(out, w)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate wallets: %w", err)
	}
	return out, nil
}

func (s *PostgresStore) SaveWallet(ctx context.Context, w *models.Wallet) error {
	query := `
		INSERT INTO wallets (id, user_id, currency, partner_wallet_id, address, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`
	_, err := txcontext.Use(ctx, s.db).ExecContext(ctx, query,
		uuid.UUID(w.ID), uuid.UUID(w.UserID), string(w.Currency), w.PartnerWalletID, w.Address, w.CreatedAt,
	)
	if err != nil {
		if postgres.IsUniqueViolation(err) {
			return fmt.Errorf("wallet %s/%s: %w", w.UserID, w.Currency, ErrConflict)
		}
		return fmt.Errorf("save wallet: %w", err)
	}
	return nil
}

func (s *PostgresStore) FindIBAN(ctx context.Context, userID id.UserID) (*models.DigitalIBAN, error) {
	query := `
		SELECT user_id, iban, bank_name, account_number, created_at
		FROM digital_ibans
		WHERE user_id = $1
	`
	var (
		iban    models.DigitalIBAN
		ownerID uuid.UUID
	)
	err := txcontext.Use(ctx, s.db).QueryRowContext(ctx, query, uuid.UUID(userID)).Scan(
		&ownerID, &iban.IBAN, &iban.BankName, &iban.AccountNumber, &iban.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("find iban: %w", err)
	}
	iban.UserID = id.UserID(ownerID)
	return &iban, nil
}

func (s *PostgresStore) SaveIBAN(ctx context.Context, iban *models.DigitalIBAN) error {
	query := `
		INSERT INTO digital_ibans (user_id, iban, bank_name, account_number, created_at)
		VALUES ($1, $2, $3, $4, $5)
	`
	_, err := txcontext.Use(ctx, s.db).ExecContext(ctx, query,
		uuid.UUID(iban.UserID), iban.IBAN, iban.BankName, iban.AccountNumber, iban.CreatedAt,
	)
	if err != nil {
		if postgres.IsUniqueViolation(err) {
			return fmt.Errorf("iban %s: %w", iban.UserID, ErrConflict)
		}
		return fmt.Errorf("save iban: %w", err)
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanAccount(row rowScanner) (*models.Account, error) {
	var (
		acc          models.Account
		userID       uuid.UUID
		role, status string
	)
	if err := row.Scan(&userID, &role, &status, &acc.KYCTier, &acc.PartnerUserRef, &acc.CreatedAt); err != nil {
		return nil, err
	}
	acc.UserID = id.UserID(userID)
	acc.Role = models.Role(role)
	acc.KYCStatus = models.KYCStatus(status)
	return &acc, nil
}
