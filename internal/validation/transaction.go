package validation

import (
	"fmt"
	"strings"

	"github.com/finledger/transactions-service/internal/api/request"
	"github.com/finledger/transactions-service/internal/model"
)

// ValidOperationType contains the allowed operation type values.
var ValidOperationType = map[string]bool{
	model.OperationBuy: true, model.OperationSell: true,
}

// ValidateCreateTransaction validates the shape of a transaction creation
// request: required fields present and the operation type recognized. The
// domain rules (date normalization, future dates, currency allow-list, sell
// sufficiency) belong to the transaction service, which owns their ordering.
//
// Returns a validation Error with field-specific error messages if validation fails.
func ValidateCreateTransaction(req request.CreateTransactionRequest) error {
	errors := make(map[string]string)

	if strings.TrimSpace(req.AssetID) == "" {
		errors["asset_id"] = "asset_id is required"
	}

	if strings.TrimSpace(req.OperationType) == "" {
		errors["operation_type"] = "operation_type is required"
	} else if !ValidOperationType[req.OperationType] {
		errors["operation_type"] = fmt.Sprintf("invalid operation_type: %s", req.OperationType)
	}

	if strings.TrimSpace(req.TradeDate) == "" {
		errors["trade_date"] = "trade_date is required"
	}

	if strings.TrimSpace(req.Currency) == "" {
		errors["currency"] = "currency is required"
	}

	if req.Price <= 0 {
		errors["price"] = "price must be positive"
	}

	if len(errors) > 0 {
		return &Error{Fields: errors}
	}

	return nil
}
