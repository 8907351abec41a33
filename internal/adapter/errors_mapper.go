package adapter

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/bananahana720/pocket-brain-sub000/models"
	"github.com/go-resty/resty/v2"
)

// mapHTTPError translates a non-2xx response into the adapter error
// taxonomy. The server's JSON error envelope is decoded when present;
// a plain-text body is used as-is.
func mapHTTPError(resp *resty.Response) error {
	if resp.StatusCode() >= http.StatusOK && resp.StatusCode() < http.StatusMultipleChoices {
		return nil
	}

	message := errorMessage(resp)

	switch {
	case resp.StatusCode() == http.StatusUnauthorized || resp.StatusCode() == http.StatusForbidden:
		return fmt.Errorf("%w: %s", ErrUnauthorized, message)
	case resp.StatusCode() == http.StatusTooManyRequests || resp.StatusCode() >= http.StatusInternalServerError:
		return &ServerBusyError{
			Status:     resp.StatusCode(),
			RetryAfter: parseRetryAfter(resp.Header().Get("Retry-After")),
			Message:    message,
		}
	default:
		return fmt.Errorf("%w: http %d: %s", ErrBadRequest, resp.StatusCode(), message)
	}
}

func errorMessage(resp *resty.Response) string {
	var apiErr models.APIError
	if err := json.Unmarshal(resp.Body(), &apiErr); err == nil && apiErr.Error.Message != "" {
		if apiErr.Error.Code != "" {
			return apiErr.Error.Code + ": " + apiErr.Error.Message
		}
		return apiErr.Error.Message
	}

	body := strings.TrimSpace(string(resp.Body()))
	if body == "" {
		body = http.StatusText(resp.StatusCode())
	}
	return body
}

// parseRetryAfter accepts the delta-seconds form of Retry-After.
// HTTP-date values are ignored; the engine falls back to its own backoff
// schedule when no usable hint is present.
func parseRetryAfter(value string) time.Duration {
	value = strings.TrimSpace(value)
	if value == "" {
		return 0
	}

	seconds, err := strconv.Atoi(value)
	if err != nil || seconds <= 0 {
		return 0
	}
	return time.Duration(seconds) * time.Second
}
