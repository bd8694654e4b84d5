package apperrors

import "errors"

// Domain entity errors represent missing or invalid entities in the system.
// These errors indicate that a requested resource does not exist.
var (
	// ErrTransactionNotFound indicates that a transaction with the given ID does not exist.
	ErrTransactionNotFound = errors.New("transaction not found")
)

// Validation errors represent rejections by the transaction validation engine.
// They are reported synchronously to the caller and map to a 400 at the boundary.
var (
	// ErrInvalidDate indicates that a trade date could not be parsed as YYYY-MM-DD.
	ErrInvalidDate = errors.New("invalid trade_date format, expected YYYY-MM-DD")

	// ErrInvalidQuantity indicates a zero or negative quantity.
	ErrInvalidQuantity = errors.New("quantity must be greater than zero")

	// ErrFutureTradeDate indicates a trade date strictly after today.
	ErrFutureTradeDate = errors.New("trade date cannot be in the future")

	// ErrInvalidCurrencyFormat indicates a currency code that is not 3 letters.
	ErrInvalidCurrencyFormat = errors.New("invalid currency code")

	// ErrUnsupportedCurrency indicates a currency outside the configured allow-list.
	ErrUnsupportedCurrency = errors.New("unsupported currency")

	// ErrInsufficientPosition indicates a sell larger than the asset's running position.
	ErrInsufficientPosition = errors.New("insufficient position")
)

// Storage errors represent constraint violations surfaced by the ledger store.
var (
	// ErrDuplicateEntry indicates that an entity with the same unique constraint already exists.
	// The idempotency guard recovers from it internally; it never reaches callers.
	ErrDuplicateEntry = errors.New("duplicate entry")
)

// Operation failure errors represent system-level failures when retrieving or processing data.
var (
	ErrFailedToRetrieveTransactions = errors.New("failed to retrieve transactions")
	ErrFailedToRetrieveTransaction  = errors.New("failed to retrieve transaction")
	ErrFailedToBuildSnapshot        = errors.New("failed to build portfolio snapshot")
	ErrInvalidCSVHeaders            = errors.New("invalid CSV headers")
)

// IsValidationError reports whether err is a rejection from the validation
// engine, as opposed to a not-found or an internal failure. The HTTP layer
// uses this to map errors to the domain_error class.
func IsValidationError(err error) bool {
	for _, target := range []error{
		ErrInvalidDate,
		ErrInvalidQuantity,
		ErrFutureTradeDate,
		ErrInvalidCurrencyFormat,
		ErrUnsupportedCurrency,
		ErrInsufficientPosition,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}
