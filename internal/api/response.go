package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"go.uber.org/zap"

	"github.com/sells-group/postcode-lookup/internal/lookup"
)

// Error codes returned in ErrorResponse.
const (
	CodeInvalidInput      = "INVALID_INPUT"
	CodeNotFound          = "NOT_FOUND"
	CodeSubstationMissing = "SUBSTATION_MISSING"
	CodeInternal          = "INTERNAL_ERROR"
)

// ErrorResponse is the body of every non-2xx response.
type ErrorResponse struct {
	Error ErrorDetail `json:"error"`
}

// ErrorDetail contains error information.
type ErrorDetail struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		zap.L().Debug("api: write response", zap.Error(err))
	}
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, ErrorResponse{Error: ErrorDetail{Code: code, Message: message}})
}

// writeLookupError maps lookup sentinels onto HTTP statuses.
func writeLookupError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, lookup.ErrInvalidInput):
		writeError(w, http.StatusBadRequest, CodeInvalidInput, "postcode is required")
	case errors.Is(err, lookup.ErrNotFound):
		writeError(w, http.StatusNotFound, CodeNotFound, "postcode not found")
	case errors.Is(err, lookup.ErrSubstationMissing):
		zap.L().Error("api: data integrity error", zap.Error(err))
		writeError(w, http.StatusInternalServerError, CodeSubstationMissing,
			"postcode maps to a substation that is not in the directory")
	default:
		zap.L().Error("api: request failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, CodeInternal, "an unexpected error occurred")
	}
}
