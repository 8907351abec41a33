package http

import (
	"errors"
	"net/http"

	"github.com/bananahana720/pocket-brain-sub000/internal/logger"
	"github.com/bananahana720/pocket-brain-sub000/internal/service"
	"github.com/bananahana720/pocket-brain-sub000/internal/store"
	"github.com/bananahana720/pocket-brain-sub000/internal/utils"
)

var errorStatusMap = map[error]int{
	service.ErrInvalidDataProvided:     http.StatusBadRequest,
	service.ErrWrongPassword:           http.StatusUnauthorized,
	service.ErrTokenIsExpiredOrInvalid: http.StatusUnauthorized,
	service.ErrTokenCreationFailed:     http.StatusInternalServerError,
	service.ErrTicketInvalid:           http.StatusUnauthorized,

	ErrEmptyAuthorizationHeader:   http.StatusUnauthorized,
	ErrInvalidAuthorizationHeader: http.StatusUnauthorized,
	ErrEmptyToken:                 http.StatusUnauthorized,
	ErrDeviceRevoked:              http.StatusUnauthorized,
	ErrMissingTicket:              http.StatusUnauthorized,

	store.ErrLoginAlreadyExists:  http.StatusConflict,
	store.ErrNoUserWasFound:      http.StatusUnauthorized,
	store.ErrNoteNotFound:        http.StatusNotFound,
	store.ErrVersionConflict:     http.StatusConflict,
	store.ErrDeviceNotFound:      http.StatusNotFound,
	store.ErrCursorTooOld:        http.StatusGone,
	store.ErrAlreadyBootstrapped: http.StatusConflict,
}

// errorCodeMap assigns stable machine-readable codes to the sentinels the
// clients are expected to branch on. Errors outside the map fall back to a
// generic code derived from the HTTP status.
var errorCodeMap = map[error]string{
	service.ErrInvalidDataProvided:     "invalid_request",
	service.ErrWrongPassword:           "invalid_credentials",
	service.ErrTokenIsExpiredOrInvalid: "token_invalid",
	service.ErrTicketInvalid:           "ticket_invalid",

	ErrDeviceRevoked: "device_revoked",

	store.ErrLoginAlreadyExists:  "login_taken",
	store.ErrNoUserWasFound:      "invalid_credentials",
	store.ErrNoteNotFound:        "note_not_found",
	store.ErrVersionConflict:     "version_conflict",
	store.ErrDeviceNotFound:      "device_not_found",
	store.ErrCursorTooOld:        "cursor_too_old",
	store.ErrAlreadyBootstrapped: "already_bootstrapped",
}

func statusFromError(err error) int {
	for target, status := range errorStatusMap {
		if errors.Is(err, target) {
			return status
		}
	}
	return http.StatusInternalServerError
}

func codeFromError(err error, status int) string {
	for target, code := range errorCodeMap {
		if errors.Is(err, target) {
			return code
		}
	}

	switch status {
	case http.StatusBadRequest:
		return "bad_request"
	case http.StatusUnauthorized:
		return "unauthorized"
	case http.StatusNotFound:
		return "not_found"
	case http.StatusConflict:
		return "conflict"
	case http.StatusGone:
		return "gone"
	case http.StatusServiceUnavailable:
		return "unavailable"
	default:
		return "internal_error"
	}
}

// writeError logs err and writes the uniform API error body. Server-side
// failures (5xx) are marked retryable so clients treat them as transient.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	log := logger.FromRequest(r)

	status := statusFromError(err)
	code := codeFromError(err, status)
	retryable := status >= http.StatusInternalServerError

	// internal details stay in the log, never in the response body
	message := err.Error()
	if status >= http.StatusInternalServerError {
		log.Err(err).Int("status", status).Msg("request failed")
		message = http.StatusText(status)
	} else {
		log.Warn().Err(err).Int("status", status).Str("code", code).Msg("request rejected")
	}

	utils.WriteAPIError(w, status, code, message, retryable)
}
