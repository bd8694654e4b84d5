// Package response provides utilities for sending consistent HTTP responses.
// It includes helpers for JSON responses and standardized error responses.
package response

import (
	"encoding/json"
	"net/http"

	"github.com/rs/zerolog/log"
)

// Error classes surfaced to API consumers. Validation rejections are
// domain errors; missing resources are not found; everything unexpected
// is an internal error.
const (
	CodeDomainError   = "domain_error"
	CodeNotFound      = "not_found"
	CodeInternalError = "internal_error"
)

// ErrorResponse represents a structured error response returned by the API.
// Code classifies the error for programmatic handling; Details is optional
// additional context.
type ErrorResponse struct {
	Code    string      `json:"code"`
	Error   string      `json:"error"`
	Details interface{} `json:"details,omitempty"`
}

// RespondJSON sends a JSON response with the given status code.
// Sets the Content-Type header to application/json and writes the status code.
// If data is nil, only the status code is sent (useful for 204 No Content).
// Logs encoding errors but does not fail the response.
func RespondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		if err := json.NewEncoder(w).Encode(data); err != nil {
			log.Error().Err(err).Msg("failed to encode JSON response")
		}
	}
}

// RespondError sends a structured error response with the given status code
// and error class. The message should be a user-friendly error description.
//
// Example:
//
//	response.RespondError(w, http.StatusBadRequest, response.CodeDomainError, "validation failed", err.Error())
//	response.RespondError(w, http.StatusNotFound, response.CodeNotFound, "transaction not found", "")
func RespondError(w http.ResponseWriter, status int, code, message string, details interface{}) {
	response := ErrorResponse{
		Code:    code,
		Error:   message,
		Details: details,
	}
	RespondJSON(w, status, response)
}
