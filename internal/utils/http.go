package utils

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/bananahana720/pocket-brain-sub000/models"
)

// WriteJSON serializes data to JSON and writes it to the HTTP response
// with the given status code. It sets the Content-Type header to
// "application/json". If marshaling fails it responds with 500 and
// returns a wrapped error.
func WriteJSON(w http.ResponseWriter, data any, statusCode int) (int, error) {
	jsonData, err := json.Marshal(data)
	if err != nil {
		http.Error(w, "error writing data to JSON", http.StatusInternalServerError)
		return 0, fmt.Errorf("error writing data to JSON: %w", err)
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)

	return w.Write(jsonData)
}

// WriteAPIError writes the uniform {error: {code, message, retryable}}
// body every endpoint uses for failures. A Retry-After header is added
// for retryable 503 responses so clients back off by the server's clock
// rather than their own.
func WriteAPIError(w http.ResponseWriter, statusCode int, code, message string, retryable bool) {
	if retryable && statusCode == http.StatusServiceUnavailable {
		w.Header().Set("Retry-After", "5")
	}

	body := models.APIError{Error: models.APIErrorDetail{
		Code:      code,
		Message:   message,
		Retryable: retryable,
	}}
	_, _ = WriteJSON(w, body, statusCode)
}
