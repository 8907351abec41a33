package store

import (
	"context"

	"github.com/bananahana720/pocket-brain-sub000/models"
)

//go:generate mockgen -source=client_interfaces.go -destination=../mock/client_store_mock.go -package=mock

// Well-known keys in the client's sync_meta table.
const (
	MetaCursor               = "cursor"
	MetaDeviceID             = "device_id"
	MetaToken                = "token"
	MetaBootstrapFingerprint = "bootstrap_fingerprint"
	MetaBootstrapDone        = "bootstrap_done"
)

// LocalNoteRepository is the device-local note collection. It holds the
// merged view the UI reads: server state plus locally committed edits.
type LocalNoteRepository interface {
	SaveNotes(ctx context.Context, notes ...models.Note) error
	GetNote(ctx context.Context, noteID string) (models.Note, error)
	GetAllNotes(ctx context.Context, includeTombstones bool) ([]models.Note, error)
	PurgeNote(ctx context.Context, noteID string) error
	ReplaceAll(ctx context.Context, notes []models.Note) error
}

// LocalSyncRepository persists the durable parts of the sync engine:
// the coalesced pending-operation queue, unresolved conflicts, and the
// key/value sync metadata (cursor, device identity, token).
type LocalSyncRepository interface {
	// SaveOp inserts or replaces the queued operation for op.NoteID.
	// The queue holds at most one operation per note.
	SaveOp(ctx context.Context, op models.SyncOp) error
	DeleteOp(ctx context.Context, noteID string) error
	GetAllOps(ctx context.Context) ([]models.SyncOp, error)

	SaveConflict(ctx context.Context, conflict models.SyncConflict) error
	DeleteConflict(ctx context.Context, requestID string) error
	GetAllConflicts(ctx context.Context) ([]models.SyncConflict, error)

	GetMeta(ctx context.Context, key string) (string, error)
	SetMeta(ctx context.Context, key, value string) error
	DeleteMeta(ctx context.Context, key string) error
}
