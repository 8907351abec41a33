package engine

import "github.com/bananahana720/pocket-brain-sub000/models"

// statusInputs is everything the status machine looks at. The engine
// assembles it under its mutex so one snapshot yields one status.
type statusInputs struct {
	enabled        bool
	conflicts      int
	blocked        bool
	online         bool
	authFailed     bool
	lastSyncFailed bool
	activeSync     bool
	channelLive    bool
	pendingOps     int
}

// deriveStatus folds the machine's inputs into the single externally
// visible state. Precedence is fixed: a disabled engine reports nothing
// else; conflicts outrank backpressure, which outranks connectivity,
// which outranks plain sync failures; only then does activity matter.
func deriveStatus(in statusInputs) models.SyncStatus {
	switch {
	case !in.enabled:
		return models.StatusDisabled
	case in.conflicts > 0:
		return models.StatusConflict
	case in.blocked:
		return models.StatusBlocked
	case !in.online:
		return models.StatusOffline
	case in.authFailed, in.lastSyncFailed:
		// a rejected token is a degraded engine, not a disabled one:
		// the account is still signed in, sync just cannot proceed
		// until re-authentication
		return models.StatusDegraded
	case in.activeSync || in.pendingOps > 0:
		if in.channelLive {
			return models.StatusSyncing
		}
		return models.StatusPolling
	case !in.channelLive:
		// idle but the live channel is down: the interval fallback is
		// what keeps this device current
		return models.StatusPolling
	default:
		return models.StatusSynced
	}
}
