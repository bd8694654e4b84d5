package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"
)

// parseJSON decodes the request body into the given type, rejecting unknown fields.
func parseJSON[T any](r *http.Request) (T, error) {
	var v T
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&v); err != nil {
		return v, fmt.Errorf("invalid JSON body: %w", err)
	}
	return v, nil
}
