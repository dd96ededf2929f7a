// Package httpapi exposes the product catalog over HTTP.
package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/LavishGent/productcache/internal/types"
)

// jsonError represents a JSON error payload.
type jsonError struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

// WriteJSONError writes a JSON error payload with the given status code.
func WriteJSONError(w http.ResponseWriter, status int, message, details string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(jsonError{Error: message, Details: details})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeCatalogError maps a catalog error to exactly one response.
// unavailablePrefix names the store that could not be reached.
func writeCatalogError(w http.ResponseWriter, err error, unavailablePrefix string) {
	switch {
	case types.IsNotFound(err):
		WriteJSONError(w, http.StatusNotFound, "not_found", "Product not found")
	case types.IsBadRequest(err):
		WriteJSONError(w, http.StatusBadRequest, "bad_request", "No fields to update")
	case types.IsServiceUnavailable(err):
		details := unavailablePrefix
		var unavailable *types.UnavailableError
		if errors.As(err, &unavailable) && unavailable.Kind() != "" {
			details += ": " + string(unavailable.Kind())
		}
		WriteJSONError(w, http.StatusServiceUnavailable, "service_unavailable", details)
	default:
		WriteJSONError(w, http.StatusInternalServerError, "internal_error", "")
	}
}
