package model

import "time"

// Operation types for a transaction.
const (
	OperationBuy  = "BUY"
	OperationSell = "SELL"
)

// Transaction represents an immutable trade event in the ledger.
// Once accepted it is never updated, only deleted.
type Transaction struct {
	ID             string    `json:"id"`
	AssetID        string    `json:"asset_id"`
	AssetName      string    `json:"asset_name,omitempty"`
	AssetType      string    `json:"asset_type,omitempty"`
	OperationType  string    `json:"operation_type"`
	Quantity       float64   `json:"quantity"`
	Price          float64   `json:"price"`
	Currency       string    `json:"currency"`
	TradeDate      time.Time `json:"-"`
	IdempotencyKey string    `json:"-"`
	CreatedAt      time.Time `json:"-"`
}

// TransactionResponse is the API representation of a transaction.
// TradeDate is rendered as YYYY-MM-DD to match the wire format.
type TransactionResponse struct {
	ID            string  `json:"id"`
	AssetID       string  `json:"asset_id"`
	AssetName     string  `json:"asset_name,omitempty"`
	AssetType     string  `json:"asset_type,omitempty"`
	OperationType string  `json:"operation_type"`
	Quantity      float64 `json:"quantity"`
	Price         float64 `json:"price"`
	Currency      string  `json:"currency"`
	TradeDate     string  `json:"trade_date"`
}

// ToResponse converts a Transaction into its API representation.
func (t Transaction) ToResponse() TransactionResponse {
	return TransactionResponse{
		ID:            t.ID,
		AssetID:       t.AssetID,
		AssetName:     t.AssetName,
		AssetType:     t.AssetType,
		OperationType: t.OperationType,
		Quantity:      t.Quantity,
		Price:         t.Price,
		Currency:      t.Currency,
		TradeDate:     t.TradeDate.Format("2006-01-02"),
	}
}
