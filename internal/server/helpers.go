package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/bobmcallan/tally/internal/common"
	"github.com/bobmcallan/tally/internal/models"
	"github.com/bobmcallan/tally/internal/services/growth"
)

// ErrorResponse is the standard error format for REST API responses.
type ErrorResponse struct {
	Error   string   `json:"error"`
	Code    string   `json:"code,omitempty"`
	Field   string   `json:"field,omitempty"`
	Row     int      `json:"row,omitempty"`
	Columns []string `json:"columns,omitempty"`
	Missing []string `json:"missing,omitempty"`
}

// WriteJSON writes a JSON response with the given status code.
func WriteJSON(w http.ResponseWriter, statusCode int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(data)
}

// WriteError writes a JSON error response.
func WriteError(w http.ResponseWriter, statusCode int, message string) {
	WriteJSON(w, statusCode, ErrorResponse{Error: message})
}

// WriteErrorWithCode writes a JSON error response with an error code.
func WriteErrorWithCode(w http.ResponseWriter, statusCode int, message, code string) {
	WriteJSON(w, statusCode, ErrorResponse{Error: message, Code: code})
}

// WriteServiceError maps a service error onto an HTTP status. Storage
// failures are logged and reported without detail.
func WriteServiceError(w http.ResponseWriter, logger *common.Logger, err error) {
	var malformed *models.MalformedRowError
	var missing *models.MissingColumnsError
	var invalid *models.ValidationError

	switch {
	case errors.As(err, &malformed):
		WriteJSON(w, http.StatusUnprocessableEntity, ErrorResponse{
			Error:   malformed.Error(),
			Code:    "malformed_row",
			Row:     malformed.Row,
			Columns: malformed.Columns,
		})
	case errors.As(err, &missing):
		WriteJSON(w, http.StatusBadRequest, ErrorResponse{
			Error:   missing.Error(),
			Code:    "missing_columns",
			Missing: missing.Missing,
		})
	case errors.As(err, &invalid):
		WriteJSON(w, http.StatusBadRequest, ErrorResponse{
			Error: invalid.Error(),
			Code:  "invalid",
			Field: invalid.Field,
		})
	case errors.Is(err, models.ErrNotFound):
		WriteErrorWithCode(w, http.StatusNotFound, "Not found", "not_found")
	case errors.Is(err, growth.ErrNoChartData):
		WriteErrorWithCode(w, http.StatusNotFound, "No growth data to chart", "no_data")
	default:
		logger.Error().Err(err).Msg("Request failed")
		WriteError(w, http.StatusInternalServerError, "Internal server error")
	}
}

// RequireMethod validates the HTTP method and returns true if it matches.
// If it doesn't match, it writes a 405 response and returns false.
func RequireMethod(w http.ResponseWriter, r *http.Request, methods ...string) bool {
	for _, m := range methods {
		if r.Method == m {
			return true
		}
	}
	w.Header().Set("Allow", strings.Join(methods, ", "))
	WriteError(w, http.StatusMethodNotAllowed, "Method not allowed")
	return false
}

// DecodeJSON reads and decodes JSON from the request body into v.
// Returns false and writes a 400 error if decoding fails.
func DecodeJSON(w http.ResponseWriter, r *http.Request, v interface{}) bool {
	if r.Body == nil {
		WriteError(w, http.StatusBadRequest, "Request body is required")
		return false
	}
	r.Body = http.MaxBytesReader(w, r.Body, 1<<20) // 1MB limit
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		WriteError(w, http.StatusBadRequest, "Invalid JSON: "+err.Error())
		return false
	}
	return true
}

// splitPath returns the first path segment after prefix and the rest.
// For /api/accounts/{id}/entries with prefix /api/accounts/ it returns
// ("{id}", "entries").
func splitPath(r *http.Request, prefix string) (string, string) {
	rest := strings.Trim(strings.TrimPrefix(r.URL.Path, prefix), "/")
	id, sub, _ := strings.Cut(rest, "/")
	return id, sub
}
