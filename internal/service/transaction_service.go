package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/finledger/transactions-service/internal/apperrors"
	"github.com/finledger/transactions-service/internal/api/request"
	"github.com/finledger/transactions-service/internal/events"
	"github.com/finledger/transactions-service/internal/model"
	"github.com/finledger/transactions-service/internal/repository"
)

// TransactionService owns the transaction validation engine and the idempotency
// guard. Every candidate trade is validated against the accumulated ledger for
// its asset before being persisted; retried submissions carrying a known
// idempotency key return the originally accepted transaction.
type TransactionService struct {
	transactionRepo   *repository.TransactionRepository
	notifier          events.Notifier
	allowedCurrencies map[string]bool
	locks             *assetLocks

	// now is the acceptance-time clock, replaceable in tests.
	now func() time.Time
}

// NewTransactionService creates a new TransactionService.
// allowedCurrencies is the configured currency allow-list (already uppercased).
func NewTransactionService(
	transactionRepo *repository.TransactionRepository,
	notifier events.Notifier,
	allowedCurrencies []string,
) *TransactionService {
	allowed := make(map[string]bool, len(allowedCurrencies))
	for _, c := range allowedCurrencies {
		allowed[strings.ToUpper(c)] = true
	}

	return &TransactionService{
		transactionRepo:   transactionRepo,
		notifier:          notifier,
		allowedCurrencies: allowed,
		locks:             newAssetLocks(),
		now:               time.Now,
	}
}

// GetAllTransactions retrieves the full ledger in chronological order.
func (s *TransactionService) GetAllTransactions() ([]model.Transaction, error) {
	return s.transactionRepo.FindAll()
}

// GetTransaction retrieves a single transaction by its ID.
func (s *TransactionService) GetTransaction(transactionID string) (*model.Transaction, error) {
	transaction, err := s.transactionRepo.FindByID(transactionID)
	if err != nil {
		return nil, err
	}
	if transaction == nil {
		return nil, fmt.Errorf("%w: %s", apperrors.ErrTransactionNotFound, transactionID)
	}
	return transaction, nil
}

// CreateTransaction submits a candidate trade through the idempotency guard and
// the validation engine. On success the transaction is persisted and a created
// notification is published.
//
// Idempotency semantics: a non-empty key that was already accepted returns the
// original transaction unchanged, even if the candidate payload differs. This
// is duplicate-submission protection, not payload equality checking.
func (s *TransactionService) CreateTransaction(ctx context.Context, req request.CreateTransactionRequest) (*model.Transaction, error) {
	key := strings.TrimSpace(req.IdempotencyKey)
	if key != "" {
		existing, err := s.transactionRepo.FindByIdempotencyKey(key)
		if err != nil {
			return nil, fmt.Errorf("failed to look up idempotency key: %w", err)
		}
		if existing != nil {
			return existing, nil
		}
	}

	// Serialize acceptance per asset: the sell-sufficiency read and the insert
	// below must not interleave with another submission for the same asset.
	unlock := s.locks.Lock(req.AssetID)
	defer unlock()

	transaction, err := s.validateTransaction(req)
	if err != nil {
		return nil, err
	}
	transaction.IdempotencyKey = key

	if err := s.transactionRepo.Insert(ctx, transaction); err != nil {
		if key != "" {
			// Lost the race on the idempotency unique index: a concurrent
			// submission with the same key won. Return its record instead.
			if winner, readErr := s.transactionRepo.FindByIdempotencyKey(key); readErr == nil && winner != nil {
				return winner, nil
			}
		}
		return nil, fmt.Errorf("failed to create transaction: %w", err)
	}

	s.notifier.NotifyCreated(map[string]any{
		"id":             transaction.ID,
		"asset_id":       transaction.AssetID,
		"operation_type": transaction.OperationType,
		"quantity":       transaction.Quantity,
		"price":          transaction.Price,
		"currency":       transaction.Currency,
		"trade_date":     transaction.TradeDate.Format("2006-01-02"),
	})

	return transaction, nil
}

// DeleteTransaction removes a transaction from the ledger and publishes a
// deleted notification. Remaining sells are not re-validated: the oversell
// invariant is enforced at acceptance time only.
func (s *TransactionService) DeleteTransaction(ctx context.Context, transactionID string) error {
	transaction, err := s.transactionRepo.FindByID(transactionID)
	if err != nil {
		return err
	}
	if transaction == nil {
		return fmt.Errorf("%w: %s", apperrors.ErrTransactionNotFound, transactionID)
	}

	deleted, err := s.transactionRepo.Delete(ctx, transactionID)
	if err != nil {
		return err
	}
	if !deleted {
		return fmt.Errorf("%w: %s", apperrors.ErrTransactionNotFound, transactionID)
	}

	s.notifier.NotifyDeleted(map[string]any{
		"id":             transaction.ID,
		"asset_id":       transaction.AssetID,
		"operation_type": transaction.OperationType,
	})

	return nil
}

// validateTransaction runs the ordered validation steps and returns the
// normalized transaction. Validation is all-or-nothing: rejection leaves no
// side effects. Checks short-circuit on the first failure.
func (s *TransactionService) validateTransaction(req request.CreateTransactionRequest) (*model.Transaction, error) {
	tradeDate, err := time.Parse("2006-01-02", req.TradeDate)
	if err != nil {
		return nil, fmt.Errorf("%w: %q", apperrors.ErrInvalidDate, req.TradeDate)
	}

	if req.Quantity <= 0 {
		return nil, apperrors.ErrInvalidQuantity
	}

	if tradeDate.After(s.today()) {
		return nil, apperrors.ErrFutureTradeDate
	}

	currency := strings.ToUpper(req.Currency)
	if len(currency) != 3 {
		return nil, fmt.Errorf("%w: %q", apperrors.ErrInvalidCurrencyFormat, req.Currency)
	}
	if !s.allowedCurrencies[currency] {
		return nil, fmt.Errorf("%w: %s", apperrors.ErrUnsupportedCurrency, currency)
	}

	if req.OperationType == model.OperationSell {
		if err := s.checkSellQuantity(req.AssetID, req.Quantity); err != nil {
			return nil, err
		}
	}

	return &model.Transaction{
		ID:            uuid.New().String(),
		AssetID:       req.AssetID,
		AssetName:     req.AssetName,
		AssetType:     req.AssetType,
		OperationType: req.OperationType,
		Quantity:      req.Quantity,
		Price:         req.Price,
		Currency:      currency,
		TradeDate:     tradeDate,
		CreatedAt:     s.now(),
	}, nil
}

// checkSellQuantity folds the asset's full ledger history into a running signed
// quantity and rejects sells exceeding it. The history is scoped by asset_id
// only, not by currency, matching the ledger query feeding it.
func (s *TransactionService) checkSellQuantity(assetID string, quantity float64) error {
	history, err := s.transactionRepo.FindAllByAsset(assetID)
	if err != nil {
		return fmt.Errorf("failed to load asset history: %w", err)
	}

	total := 0.0
	for _, tx := range history {
		if tx.OperationType == model.OperationBuy {
			total += tx.Quantity
		} else {
			total -= tx.Quantity
		}
	}

	if quantity > total {
		return fmt.Errorf("%w: cannot sell %g, only %g available", apperrors.ErrInsufficientPosition, quantity, total)
	}

	return nil
}

// today returns the current date at UTC midnight.
func (s *TransactionService) today() time.Time {
	now := s.now().UTC()
	return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
}
