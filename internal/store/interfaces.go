package store

import (
	"context"

	"github.com/bananahana720/pocket-brain-sub000/models"
)

//go:generate mockgen -source=interfaces.go -destination=../mock/store_mock.go -package=mock

// UserRepository manages server-side user accounts.
type UserRepository interface {
	CreateUser(ctx context.Context, user models.User) (models.User, error)
	FindUserByLogin(ctx context.Context, login string) (models.User, error)

	// GetBootstrapFingerprint returns the fingerprint of the collection
	// the account was bootstrapped from, or "" when never bootstrapped.
	GetBootstrapFingerprint(ctx context.Context, userID int64) (string, error)
	SetBootstrapFingerprint(ctx context.Context, userID int64, fingerprint string) error
}

// NoteRepository is the authoritative note collection. All mutations run
// the optimistic version check and append to the change log inside one
// transaction, so a returned cursor always covers the mutation it reports.
type NoteRepository interface {
	GetNote(ctx context.Context, userID int64, noteID string) (models.Note, error)
	ListNotes(ctx context.Context, userID int64, includeDeleted bool) ([]models.Note, error)

	// UpsertNoteVersioned commits note if the stored version still equals
	// baseVersion (0 means the note must not exist yet). On success it
	// returns the committed note with its new version and the change-log
	// cursor of the append. A failed check returns [ErrVersionConflict].
	UpsertNoteVersioned(ctx context.Context, userID int64, note models.Note, baseVersion int64) (models.Note, models.Cursor, error)

	// DeleteNoteVersioned turns the note into a tombstone under the same
	// optimistic check as UpsertNoteVersioned.
	DeleteNoteVersioned(ctx context.Context, userID int64, noteID string, baseVersion int64) (models.Note, models.Cursor, error)

	// ImportNotes bulk-inserts a bootstrapped collection and appends one
	// change-log entry per note. Used only on first bootstrap.
	ImportNotes(ctx context.Context, userID int64, notes []models.Note) (models.Cursor, error)
}

// ChangeLogRepository reads and maintains the per-user ordered change
// feed that pull cursors point into.
type ChangeLogRepository interface {
	// ChangesSince returns up to limit changes after cursor together with
	// the cursor of the last returned change.
	ChangesSince(ctx context.Context, userID int64, cursor models.Cursor, limit int) ([]models.Change, models.Cursor, error)

	// Bounds returns the oldest retained and the latest cursor for the
	// user, or (0, 0) when the log is empty.
	Bounds(ctx context.Context, userID int64) (oldest, latest models.Cursor, err error)

	// Prune drops entries beyond the newest retain entries for the user.
	Prune(ctx context.Context, userID int64, retain int) error
}

// PushRequestRepository records applied push operations by request id so
// a replayed request returns its original result instead of re-running.
type PushRequestRepository interface {
	GetApplied(ctx context.Context, userID int64, requestID string) (models.AppliedOp, bool, error)
	RecordApplied(ctx context.Context, userID int64, applied models.AppliedOp) error
}

// DeviceRepository tracks per-account device sessions.
type DeviceRepository interface {
	// Touch upserts the session and refreshes its last-seen timestamp.
	// Touching a revoked session returns [ErrDeviceNotFound].
	Touch(ctx context.Context, session models.DeviceSession) error
	List(ctx context.Context, userID int64) ([]models.DeviceSession, error)
	Get(ctx context.Context, userID int64, deviceID string) (models.DeviceSession, error)
	Revoke(ctx context.Context, userID int64, deviceID string) error
}
