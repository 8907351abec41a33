package engine

import "errors"

var (
	// ErrSyncBlocked is returned when a new capture is refused because
	// the pending-operation queue has reached its hard cap.
	ErrSyncBlocked = errors.New("sync queue is full, new captures are blocked")

	// ErrSyncDisabled is returned for sync-requiring calls while no
	// account is signed in.
	ErrSyncDisabled = errors.New("sync is disabled")

	// ErrNothingChanged is returned when an edit touches no tracked
	// field, so there is nothing to queue or push.
	ErrNothingChanged = errors.New("edit changed no tracked fields")

	// ErrConflictNotFound is returned when a conflict resolution targets
	// an unknown conflict id.
	ErrConflictNotFound = errors.New("conflict not found")

	// ErrAlreadyRunning is returned when Start is called on an engine
	// whose control loop is already up.
	ErrAlreadyRunning = errors.New("sync engine already running")
)
