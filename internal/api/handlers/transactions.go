package handlers

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/finledger/transactions-service/internal/api/request"
	"github.com/finledger/transactions-service/internal/api/response"
	"github.com/finledger/transactions-service/internal/apperrors"
	"github.com/finledger/transactions-service/internal/model"
	"github.com/finledger/transactions-service/internal/service"
	"github.com/finledger/transactions-service/internal/validation"
)

// TransactionHandler handles HTTP requests for transaction endpoints.
// It serves as the HTTP layer adapter, parsing requests and delegating
// business logic to the transactionService.
type TransactionHandler struct {
	transactionService *service.TransactionService
}

// NewTransactionHandler creates a new TransactionHandler with the provided service dependency.
func NewTransactionHandler(transactionService *service.TransactionService) *TransactionHandler {
	return &TransactionHandler{
		transactionService: transactionService,
	}
}

// AllTransactions handles GET requests to retrieve the full ledger in
// chronological order.
//
// Endpoint: GET /api/transactions
// Response: 200 OK with array of TransactionResponse
// Error: 500 Internal Server Error if retrieval fails
func (h *TransactionHandler) AllTransactions(w http.ResponseWriter, _ *http.Request) {
	transactions, err := h.transactionService.GetAllTransactions()
	if err != nil {
		response.RespondError(w, http.StatusInternalServerError, response.CodeInternalError, apperrors.ErrFailedToRetrieveTransactions.Error(), err.Error())
		return
	}

	out := make([]model.TransactionResponse, 0, len(transactions))
	for _, t := range transactions {
		out = append(out, t.ToResponse())
	}

	response.RespondJSON(w, http.StatusOK, out)
}

// GetTransaction handles GET requests to retrieve a single transaction by ID.
//
// Endpoint: GET /api/transactions/{uuid}
// Response: 200 OK with TransactionResponse
// Error: 400 Bad Request if transaction ID is invalid (validated by middleware)
// Error: 404 Not Found if transaction not found
// Error: 500 Internal Server Error if retrieval fails
func (h *TransactionHandler) GetTransaction(w http.ResponseWriter, r *http.Request) {
	transactionID := chi.URLParam(r, "uuid")

	transaction, err := h.transactionService.GetTransaction(transactionID)
	if err != nil {
		if errors.Is(err, apperrors.ErrTransactionNotFound) {
			response.RespondError(w, http.StatusNotFound, response.CodeNotFound, apperrors.ErrTransactionNotFound.Error(), err.Error())
			return
		}
		response.RespondError(w, http.StatusInternalServerError, response.CodeInternalError, apperrors.ErrFailedToRetrieveTransaction.Error(), err.Error())
		return
	}

	response.RespondJSON(w, http.StatusOK, transaction.ToResponse())
}

// CreateTransaction handles POST requests to submit a new trade event.
// The request runs through the idempotency guard and the validation engine;
// a resubmitted idempotency key returns the originally accepted transaction.
//
// Endpoint: POST /api/transactions
// Request Body: CreateTransactionRequest
// Response: 201 Created with TransactionResponse
// Error: 400 Bad Request with code domain_error if validation rejects the trade
// Error: 500 Internal Server Error if creation fails
func (h *TransactionHandler) CreateTransaction(w http.ResponseWriter, r *http.Request) {
	req, err := parseJSON[request.CreateTransactionRequest](r)
	if err != nil {
		response.RespondError(w, http.StatusBadRequest, response.CodeDomainError, "invalid request body", err.Error())
		return
	}

	if err := validation.ValidateCreateTransaction(req); err != nil {
		response.RespondError(w, http.StatusBadRequest, response.CodeDomainError, "validation failed", err.Error())
		return
	}

	transaction, err := h.transactionService.CreateTransaction(r.Context(), req)
	if err != nil {
		if apperrors.IsValidationError(err) {
			response.RespondError(w, http.StatusBadRequest, response.CodeDomainError, err.Error(), "")
			return
		}
		response.RespondError(w, http.StatusInternalServerError, response.CodeInternalError, "failed to create transaction", err.Error())
		return
	}

	response.RespondJSON(w, http.StatusCreated, transaction.ToResponse())
}

// DeleteTransaction handles DELETE requests to remove a transaction.
//
// Endpoint: DELETE /api/transactions/{uuid}
// Response: 204 No Content on successful deletion
// Error: 400 Bad Request if transaction ID is invalid (validated by middleware)
// Error: 404 Not Found if transaction not found
// Error: 500 Internal Server Error if deletion fails
func (h *TransactionHandler) DeleteTransaction(w http.ResponseWriter, r *http.Request) {
	transactionID := chi.URLParam(r, "uuid")

	err := h.transactionService.DeleteTransaction(r.Context(), transactionID)
	if err != nil {
		if errors.Is(err, apperrors.ErrTransactionNotFound) {
			response.RespondError(w, http.StatusNotFound, response.CodeNotFound, apperrors.ErrTransactionNotFound.Error(), err.Error())
			return
		}

		response.RespondError(w, http.StatusInternalServerError, response.CodeInternalError, "failed to delete transaction", err.Error())
		return
	}

	response.RespondJSON(w, http.StatusNoContent, nil)
}
