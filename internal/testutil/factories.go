package testutil

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/finledger/transactions-service/internal/model"
	"github.com/finledger/transactions-service/internal/repository"
)

// TransactionBuilder provides a fluent interface for creating test transactions.
//
// Example usage:
//
//	// Simple creation with defaults (BUY 10 @ 100 USD)
//	tx := testutil.NewTransaction("ETF123").Build(t, db)
//
//	// Customized transaction
//	tx := testutil.NewTransaction("ETF123").
//	    Sell().
//	    WithQuantity(5).
//	    WithTradeDate("2024-02-01").
//	    Build(t, db)
type TransactionBuilder struct {
	ID             string
	AssetID        string
	AssetName      string
	AssetType      string
	OperationType  string
	Quantity       float64
	Price          float64
	Currency       string
	TradeDate      string
	IdempotencyKey string
}

// NewTransaction creates a TransactionBuilder with sensible defaults.
func NewTransaction(assetID string) *TransactionBuilder {
	return &TransactionBuilder{
		ID:            MakeID(),
		AssetID:       assetID,
		OperationType: model.OperationBuy,
		Quantity:      10,
		Price:         100,
		Currency:      "USD",
		TradeDate:     "2024-01-10",
	}
}

// WithID sets a custom ID.
func (b *TransactionBuilder) WithID(id string) *TransactionBuilder {
	b.ID = id
	return b
}

// WithAssetName sets the descriptive asset name.
func (b *TransactionBuilder) WithAssetName(name string) *TransactionBuilder {
	b.AssetName = name
	return b
}

// WithAssetType sets the asset type label.
func (b *TransactionBuilder) WithAssetType(assetType string) *TransactionBuilder {
	b.AssetType = assetType
	return b
}

// Sell marks the transaction as a SELL.
func (b *TransactionBuilder) Sell() *TransactionBuilder {
	b.OperationType = model.OperationSell
	return b
}

// WithQuantity sets a custom quantity.
func (b *TransactionBuilder) WithQuantity(quantity float64) *TransactionBuilder {
	b.Quantity = quantity
	return b
}

// WithPrice sets a custom price.
func (b *TransactionBuilder) WithPrice(price float64) *TransactionBuilder {
	b.Price = price
	return b
}

// WithCurrency sets a custom currency.
func (b *TransactionBuilder) WithCurrency(currency string) *TransactionBuilder {
	b.Currency = currency
	return b
}

// WithTradeDate sets a custom trade date in YYYY-MM-DD format.
func (b *TransactionBuilder) WithTradeDate(date string) *TransactionBuilder {
	b.TradeDate = date
	return b
}

// WithIdempotencyKey sets the idempotency key.
func (b *TransactionBuilder) WithIdempotencyKey(key string) *TransactionBuilder {
	b.IdempotencyKey = key
	return b
}

// Build inserts the transaction into the database and returns it.
func (b *TransactionBuilder) Build(t *testing.T, db *sql.DB) model.Transaction {
	t.Helper()

	tradeDate, err := time.Parse("2006-01-02", b.TradeDate)
	if err != nil {
		t.Fatalf("Invalid trade date %q: %v", b.TradeDate, err)
	}

	tx := model.Transaction{
		ID:             b.ID,
		AssetID:        b.AssetID,
		AssetName:      b.AssetName,
		AssetType:      b.AssetType,
		OperationType:  b.OperationType,
		Quantity:       b.Quantity,
		Price:          b.Price,
		Currency:       b.Currency,
		TradeDate:      tradeDate,
		IdempotencyKey: b.IdempotencyKey,
		CreatedAt:      time.Now(),
	}

	repo := repository.NewTransactionRepository(db)
	if err := repo.Insert(context.Background(), &tx); err != nil {
		t.Fatalf("Failed to insert test transaction: %v", err)
	}

	return tx
}

// MakeTransaction builds an in-memory transaction without persisting it.
// Useful for exercising the pure aggregation path.
func (b *TransactionBuilder) MakeTransaction(t *testing.T) model.Transaction {
	t.Helper()

	tradeDate, err := time.Parse("2006-01-02", b.TradeDate)
	if err != nil {
		t.Fatalf("Invalid trade date %q: %v", b.TradeDate, err)
	}

	return model.Transaction{
		ID:             b.ID,
		AssetID:        b.AssetID,
		AssetName:      b.AssetName,
		AssetType:      b.AssetType,
		OperationType:  b.OperationType,
		Quantity:       b.Quantity,
		Price:          b.Price,
		Currency:       b.Currency,
		TradeDate:      tradeDate,
		IdempotencyKey: b.IdempotencyKey,
		CreatedAt:      time.Now(),
	}
}
