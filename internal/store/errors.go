package store

import "errors"

// Sentinel errors returned by repository methods to signal well-known
// failure conditions. Callers should use [errors.Is] to match against
// these values.
var (
	// ErrLoginAlreadyExists is returned when an attempt to register a new
	// user fails because a user with the same login already exists.
	ErrLoginAlreadyExists = errors.New("login already exists")

	// ErrNoUserWasFound is returned when a query expected to match at
	// least one user record produces an empty result set.
	ErrNoUserWasFound = errors.New("no user was found")

	// ErrNoteNotFound is returned when a query or update targets a note
	// (identified by note id and user id) that does not exist.
	ErrNoteNotFound = errors.New("note was not found")

	// ErrVersionConflict is returned when an optimistic-locking check
	// fails: the base version supplied by the client does not match the
	// current version stored in the database, meaning another device has
	// modified the note since the client last synchronized.
	ErrVersionConflict = errors.New("note version conflict occurred")

	// ErrDeviceNotFound is returned when a device-session lookup or
	// revocation targets an unknown device id.
	ErrDeviceNotFound = errors.New("device session was not found")

	// ErrCursorTooOld is returned by the change log when the requested
	// cursor lies before the oldest retained entry, so an incremental
	// feed can no longer be produced for it.
	ErrCursorTooOld = errors.New("cursor is older than retained history")

	// ErrAlreadyBootstrapped is returned when a bootstrap import is
	// attempted for an account that has already imported a collection
	// with a different source fingerprint.
	ErrAlreadyBootstrapped = errors.New("account already bootstrapped")
)
