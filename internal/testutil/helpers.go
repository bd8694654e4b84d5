package testutil

import (
	"database/sql"
	"testing"

	"github.com/google/uuid"

	"github.com/finledger/transactions-service/internal/events"
	"github.com/finledger/transactions-service/internal/repository"
	"github.com/finledger/transactions-service/internal/service"
)

// AllowedCurrencies is the currency allow-list used by test services,
// matching the configuration default.
var AllowedCurrencies = []string{"USD", "EUR", "GBP", "JPY", "CHF", "CAD", "AUD"}

// NewTestTransactionService creates a TransactionService with a capturing
// notifier. The notifier is returned so tests can assert on published events.
func NewTestTransactionService(t *testing.T, db *sql.DB) (*service.TransactionService, *events.MemoryNotifier) {
	t.Helper()

	notifier := events.NewMemoryNotifier()
	transactionRepo := repository.NewTransactionRepository(db)

	return service.NewTransactionService(transactionRepo, notifier, AllowedCurrencies), notifier
}

// NewTestTransactionServiceWithNotifier creates a TransactionService with the
// provided notifier implementation.
func NewTestTransactionServiceWithNotifier(t *testing.T, db *sql.DB, notifier events.Notifier) *service.TransactionService {
	t.Helper()

	transactionRepo := repository.NewTransactionRepository(db)
	return service.NewTransactionService(transactionRepo, notifier, AllowedCurrencies)
}

// NewTestPortfolioService creates a PortfolioService over the test database.
func NewTestPortfolioService(t *testing.T, db *sql.DB) *service.PortfolioService {
	t.Helper()

	return service.NewPortfolioService(repository.NewTransactionRepository(db))
}

// NewTestSystemService creates a SystemService over the test database.
func NewTestSystemService(t *testing.T, db *sql.DB) *service.SystemService {
	t.Helper()

	return service.NewSystemService(db)
}

// MakeID generates a UUID string for use in tests.
//
// Example usage:
//
//	id := testutil.MakeID()
//	// Returns: "550e8400-e29b-41d4-a716-446655440000"
func MakeID() string {
	return uuid.New().String()
}
