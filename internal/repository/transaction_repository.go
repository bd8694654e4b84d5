package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/finledger/transactions-service/internal/apperrors"
	"github.com/finledger/transactions-service/internal/model"
)

// TransactionRepository provides data access methods for the transaction ledger.
// It is the only storage contract the core requires: lookups by id, by asset and
// by idempotency key, plus insert and hard delete.
type TransactionRepository struct {
	db *sql.DB
}

// NewTransactionRepository creates a new TransactionRepository with the provided database connection.
func NewTransactionRepository(db *sql.DB) *TransactionRepository {
	return &TransactionRepository{db: db}
}

const transactionColumns = `id, asset_id, asset_name, asset_type, operation_type, quantity, price, currency, trade_date, idempotency_key, created_at`

// FindByID retrieves a single transaction by its ID.
// Returns (nil, nil) when no transaction with that ID exists.
func (r *TransactionRepository) FindByID(id string) (*model.Transaction, error) {
	query := `SELECT ` + transactionColumns + ` FROM "transaction" WHERE id = ?`

	t, err := scanTransaction(r.db.QueryRow(query, id))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query transaction table: %w", err)
	}
	return t, nil
}

// FindByIdempotencyKey retrieves the transaction previously accepted under the
// given idempotency key. Returns (nil, nil) when the key has never been seen.
func (r *TransactionRepository) FindByIdempotencyKey(key string) (*model.Transaction, error) {
	query := `SELECT ` + transactionColumns + ` FROM "transaction" WHERE idempotency_key = ?`

	t, err := scanTransaction(r.db.QueryRow(query, key))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query transaction table: %w", err)
	}
	return t, nil
}

// FindAllByAsset retrieves every transaction for the given asset, regardless of
// currency. This feeds the sell-sufficiency check, which is scoped by asset_id only.
func (r *TransactionRepository) FindAllByAsset(assetID string) ([]model.Transaction, error) {
	query := `
		SELECT ` + transactionColumns + `
		FROM "transaction"
		WHERE asset_id = ?
		ORDER BY trade_date ASC, created_at ASC
	`
	return r.queryTransactions(query, assetID)
}

// FindAll retrieves the full ledger, ordered by trade date then acceptance order.
func (r *TransactionRepository) FindAll() ([]model.Transaction, error) {
	query := `
		SELECT ` + transactionColumns + `
		FROM "transaction"
		ORDER BY trade_date ASC, created_at ASC
	`
	return r.queryTransactions(query)
}

// Insert persists a new transaction. A violation of the idempotency-key unique
// index is reported as apperrors.ErrDuplicateEntry so the caller can fall back
// to reading the winning record.
func (r *TransactionRepository) Insert(ctx context.Context, t *model.Transaction) error {
	query := `
		INSERT INTO "transaction" (id, asset_id, asset_name, asset_type, operation_type, quantity, price, currency, trade_date, idempotency_key, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err := r.db.ExecContext(ctx, query,
		t.ID,
		t.AssetID,
		nullable(t.AssetName),
		nullable(t.AssetType),
		t.OperationType,
		t.Quantity,
		t.Price,
		t.Currency,
		t.TradeDate.Format("2006-01-02"),
		nullable(t.IdempotencyKey),
		t.CreatedAt.UTC().Format("2006-01-02T15:04:05.000Z07:00"),
	)
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE constraint failed") {
			return fmt.Errorf("%w: idempotency key %q", apperrors.ErrDuplicateEntry, t.IdempotencyKey)
		}
		return fmt.Errorf("failed to insert transaction: %w", err)
	}

	return nil
}

// Delete removes a transaction by ID.
// Returns false when no transaction with that ID existed.
func (r *TransactionRepository) Delete(ctx context.Context, id string) (bool, error) {
	result, err := r.db.ExecContext(ctx, `DELETE FROM "transaction" WHERE id = ?`, id)
	if err != nil {
		return false, fmt.Errorf("failed to delete transaction: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to read delete result: %w", err)
	}

	return affected > 0, nil
}

func (r *TransactionRepository) queryTransactions(query string, args ...any) ([]model.Transaction, error) {
	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query transaction table: %w", err)
	}
	defer rows.Close()

	transactions := []model.Transaction{}

	for rows.Next() {
		t, err := scanTransaction(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan transaction table results: %w", err)
		}
		transactions = append(transactions, *t)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating transaction table: %w", err)
	}

	return transactions, nil
}

// scanner abstracts *sql.Row and *sql.Rows for shared scanning.
type scanner interface {
	Scan(dest ...any) error
}

func scanTransaction(s scanner) (*model.Transaction, error) {
	var t model.Transaction
	var assetName, assetType, idempotencyKey sql.NullString
	var tradeDateStr, createdAtStr string

	err := s.Scan(
		&t.ID,
		&t.AssetID,
		&assetName,
		&assetType,
		&t.OperationType,
		&t.Quantity,
		&t.Price,
		&t.Currency,
		&tradeDateStr,
		&idempotencyKey,
		&createdAtStr,
	)
	if err != nil {
		return nil, err
	}

	t.AssetName = assetName.String
	t.AssetType = assetType.String
	t.IdempotencyKey = idempotencyKey.String

	t.TradeDate, err = ParseTime(tradeDateStr)
	if err != nil || t.TradeDate.IsZero() {
		return nil, fmt.Errorf("failed to parse trade date: %w", err)
	}

	t.CreatedAt, err = ParseTime(createdAtStr)
	if err != nil || t.CreatedAt.IsZero() {
		return nil, fmt.Errorf("failed to parse created_at: %w", err)
	}

	return &t, nil
}

func nullable(s string) any {
	if s == "" {
		return nil
	}
	return s
}
