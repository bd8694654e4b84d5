package request

// CreateTransactionRequest is the JSON payload for submitting a trade event.
// Field names follow the service's wire format. TradeDate arrives as text and
// is normalized by the validation engine; IdempotencyKey is optional and, when
// previously seen, short-circuits creation to the original transaction.
type CreateTransactionRequest struct {
	AssetID        string  `json:"asset_id"`
	AssetName      string  `json:"asset_name,omitempty"`
	AssetType      string  `json:"asset_type,omitempty"`
	OperationType  string  `json:"operation_type"`
	Quantity       float64 `json:"quantity"`
	Price          float64 `json:"price"`
	Currency       string  `json:"currency"`
	TradeDate      string  `json:"trade_date"`
	IdempotencyKey string  `json:"idempotency_key,omitempty"`
}
