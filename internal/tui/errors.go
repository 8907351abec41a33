package tui

import (
	"errors"

	"github.com/bananahana720/pocket-brain-sub000/internal/adapter"
	"github.com/bananahana720/pocket-brain-sub000/internal/engine"
)

// humanizeError maps engine and transport failures onto the short
// messages the status line shows.
func humanizeError(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, engine.ErrSyncBlocked):
		return "sync queue is full: resolve conflicts or wait for the queue to drain"
	case errors.Is(err, engine.ErrSyncDisabled):
		return "sign in to sync"
	case errors.Is(err, engine.ErrNothingChanged):
		return "nothing changed"
	case errors.Is(err, adapter.ErrOffline):
		return "offline: changes are saved locally and will sync later"
	case errors.Is(err, adapter.ErrUnauthorized):
		return "session expired, sign in again"
	case adapter.IsRetryable(err):
		return "server busy, retrying automatically"
	default:
		return err.Error()
	}
}
