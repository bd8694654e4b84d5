package handlers

import (
	"encoding/csv"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/finledger/transactions-service/internal/api/request"
	"github.com/finledger/transactions-service/internal/api/response"
	"github.com/finledger/transactions-service/internal/apperrors"
	"github.com/finledger/transactions-service/internal/service"
	"github.com/finledger/transactions-service/internal/validation"
)

// requiredImportColumns are the CSV headers a transaction import must carry.
// asset_name, asset_type and idempotency_key are optional.
var requiredImportColumns = []string{
	"asset_id",
	"operation_type",
	"quantity",
	"price",
	"currency",
	"trade_date",
}

// ImportErrorItem reports a single rejected CSV row.
type ImportErrorItem struct {
	RowNumber int    `json:"row_number"`
	Message   string `json:"message"`
}

// ImportResult summarizes a bulk import: accepted and rejected row counts
// plus the per-row rejection reasons.
type ImportResult struct {
	Inserted int               `json:"inserted"`
	Skipped  int               `json:"skipped"`
	Errors   []ImportErrorItem `json:"errors"`
}

// ImportHandler handles CSV bulk imports of transactions. Every row runs
// through the same idempotency guard and validation engine as the single
// transaction endpoint; a failing row is skipped and reported, it does not
// abort the rest of the file.
type ImportHandler struct {
	transactionService *service.TransactionService
}

// NewImportHandler creates a new ImportHandler with the provided service dependency.
func NewImportHandler(transactionService *service.TransactionService) *ImportHandler {
	return &ImportHandler{
		transactionService: transactionService,
	}
}

// ImportTransactions handles POST requests with a multipart CSV file upload.
//
// Endpoint: POST /api/imports/transactions
// Request: multipart/form-data with a "file" part
// Response: 200 OK with ImportResult (also for files rejected on headers)
// Error: 400 Bad Request if the upload itself is malformed
func (h *ImportHandler) ImportTransactions(w http.ResponseWriter, r *http.Request) {
	file, _, err := r.FormFile("file")
	if err != nil {
		response.RespondError(w, http.StatusBadRequest, response.CodeDomainError, "missing file upload", err.Error())
		return
	}
	defer file.Close()

	reader := csv.NewReader(file)
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		response.RespondJSON(w, http.StatusOK, ImportResult{
			Errors: []ImportErrorItem{{RowNumber: 1, Message: "Missing header"}},
		})
		return
	}
	stripBOM(header)

	columns := make(map[string]int, len(header))
	for i, name := range header {
		columns[strings.TrimSpace(name)] = i
	}

	if missing := missingColumns(columns); len(missing) > 0 {
		message := fmt.Sprintf("%s: %s", apperrors.ErrInvalidCSVHeaders.Error(), strings.Join(missing, ", "))
		response.RespondJSON(w, http.StatusOK, ImportResult{
			Errors: []ImportErrorItem{{RowNumber: 1, Message: message}},
		})
		return
	}

	result := ImportResult{Errors: []ImportErrorItem{}}

	// Header is row 1; data rows are numbered from 2 so errors point at the
	// line the user sees in a spreadsheet.
	for rowNumber := 2; ; rowNumber++ {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			result.Errors = append(result.Errors, ImportErrorItem{RowNumber: rowNumber, Message: err.Error()})
			result.Skipped++
			continue
		}

		req, err := rowToRequest(record, columns)
		if err != nil {
			result.Errors = append(result.Errors, ImportErrorItem{RowNumber: rowNumber, Message: err.Error()})
			result.Skipped++
			continue
		}

		if err := validation.ValidateCreateTransaction(req); err != nil {
			result.Errors = append(result.Errors, ImportErrorItem{RowNumber: rowNumber, Message: err.Error()})
			result.Skipped++
			continue
		}

		if _, err := h.transactionService.CreateTransaction(r.Context(), req); err != nil {
			result.Errors = append(result.Errors, ImportErrorItem{RowNumber: rowNumber, Message: err.Error()})
			result.Skipped++
			continue
		}
		result.Inserted++
	}

	response.RespondJSON(w, http.StatusOK, result)
}

// rowToRequest maps one CSV record onto a transaction creation request.
func rowToRequest(record []string, columns map[string]int) (request.CreateTransactionRequest, error) {
	var req request.CreateTransactionRequest

	field := func(name string) string {
		idx, ok := columns[name]
		if !ok || idx >= len(record) {
			return ""
		}
		return strings.TrimSpace(record[idx])
	}

	for _, name := range requiredImportColumns {
		if field(name) == "" {
			return req, fmt.Errorf("missing value for %s", name)
		}
	}

	quantity, err := strconv.ParseFloat(field("quantity"), 64)
	if err != nil {
		return req, fmt.Errorf("invalid number: %s", field("quantity"))
	}
	price, err := strconv.ParseFloat(field("price"), 64)
	if err != nil {
		return req, fmt.Errorf("invalid number: %s", field("price"))
	}

	req = request.CreateTransactionRequest{
		AssetID:        field("asset_id"),
		AssetName:      field("asset_name"),
		AssetType:      field("asset_type"),
		OperationType:  strings.ToUpper(field("operation_type")),
		Quantity:       quantity,
		Price:          price,
		Currency:       strings.ToUpper(field("currency")),
		TradeDate:      field("trade_date"),
		IdempotencyKey: field("idempotency_key"),
	}

	return req, nil
}

// missingColumns returns the required headers absent from the file.
func missingColumns(columns map[string]int) []string {
	missing := []string{}
	for _, name := range requiredImportColumns {
		if _, ok := columns[name]; !ok {
			missing = append(missing, name)
		}
	}
	return missing
}

// stripBOM removes a UTF-8 byte order mark from the first header cell.
func stripBOM(header []string) {
	if len(header) > 0 {
		header[0] = strings.TrimPrefix(header[0], "\ufeff")
	}
}
