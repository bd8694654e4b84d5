package middleware

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/finledger/transactions-service/internal/api/response"
	"github.com/finledger/transactions-service/internal/validation"
)

// ValidateUUIDMiddleware validates that the uuid URL parameter is present and is a valid UUID.
// Returns 400 Bad Request if the parameter is missing or invalid.
// Apply it to routes that take a transaction ID in the URL path.
//
// Example usage in router:
//
//	r.Route("/{uuid}", func(r chi.Router) {
//	    r.Use(middleware.ValidateUUIDMiddleware)
//	    r.Get("/", handler.GetTransaction)
//	    r.Delete("/", handler.DeleteTransaction)
//	})
func ValidateUUIDMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		UUID := chi.URLParam(r, "uuid")

		if UUID == "" {
			response.RespondError(w, http.StatusBadRequest, response.CodeDomainError, "valid UUID is required", "")
			return
		}

		if err := validation.ValidateUUID(UUID); err != nil {
			response.RespondError(w, http.StatusBadRequest, response.CodeDomainError, "invalid UUID format", err.Error())
			return
		}

		next.ServeHTTP(w, r)
	})
}
