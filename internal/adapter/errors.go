package adapter

import (
	"errors"
	"fmt"
	"time"
)

var (
	// ErrUnauthorized marks responses whose bearer token was rejected.
	// The engine reacts by disabling sync until re-login.
	ErrUnauthorized = errors.New("client unauthorized")

	// ErrOffline marks transport-level failures: the server could not be
	// reached at all (DNS, connect, timeout).
	ErrOffline = errors.New("server unreachable")

	// ErrStreamClosed is returned by EventStream.Recv once the server has
	// closed the notification stream.
	ErrStreamClosed = errors.New("event stream closed")

	// ErrBadRequest marks 4xx responses the client cannot repair by
	// retrying. These indicate a contract bug, not a transient condition.
	ErrBadRequest = errors.New("bad request")
)

// ServerBusyError is returned for responses that signal a transient
// server-side condition (429, 5xx). RetryAfter carries the server's
// Retry-After hint when present, zero otherwise.
type ServerBusyError struct {
	Status     int
	RetryAfter time.Duration
	Message    string
}

func (e *ServerBusyError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("server busy: http %d", e.Status)
	}
	return fmt.Sprintf("server busy: http %d: %s", e.Status, e.Message)
}

// IsRetryable reports whether err represents a condition worth retrying
// with backoff: the server was unreachable or answered with a transient
// failure status.
func IsRetryable(err error) bool {
	var busy *ServerBusyError
	return errors.Is(err, ErrOffline) || errors.As(err, &busy)
}

// RetryAfterHint extracts the server's Retry-After hint from err.
// It returns zero and false when err carries no hint.
func RetryAfterHint(err error) (time.Duration, bool) {
	var busy *ServerBusyError
	if errors.As(err, &busy) && busy.RetryAfter > 0 {
		return busy.RetryAfter, true
	}
	return 0, false
}
