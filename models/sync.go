package models

import "time"

// Cursor is an opaque, server-issued monotonically increasing position in
// a user's change log. A cursor is only meaningful against the account
// that issued it; cursors older than the server's retained history force
// a full resnapshot.
type Cursor int64

// Sync operation kinds.
const (
	OpUpsert = "upsert"
	OpDelete = "delete"
)

// SyncOp is one intended mutation waiting in the pending-operation queue.
// RequestID is a client-generated idempotency key unique per attempt;
// BaseVersion is the note version the client believes is current.
type SyncOp struct {
	RequestID   string `json:"request_id"`
	Op          string `json:"op"`
	NoteID      string `json:"note_id"`
	BaseVersion int64  `json:"base_version"`

	// Note carries the full intended note state for upserts; nil for deletes.
	Note *Note `json:"note,omitempty"`

	// ClientChangedFields names the tracked fields this device actually
	// changed, used by the no-overlap auto-merge.
	ClientChangedFields []string `json:"client_changed_fields,omitempty"`

	// BaseNote snapshots the note as this device last saw it, so the
	// server can report which fields diverged since that base.
	BaseNote *Note `json:"base_note,omitempty"`

	// AutoMergeAttempted marks a retry op produced by an auto-merge, so a
	// second conflict on the same op never merges again.
	AutoMergeAttempted bool `json:"auto_merge_attempted,omitempty"`
}

// SyncConflict is surfaced when an op's BaseVersion no longer matches the
// server's state. It either feeds an automatic merge retry or lands in
// the manual conflicts list awaiting user action.
type SyncConflict struct {
	RequestID      string `json:"request_id"`
	NoteID         string `json:"note_id"`
	BaseVersion    int64  `json:"base_version"`
	CurrentVersion int64  `json:"current_version"`
	ServerNote     Note   `json:"server_note"`

	// ChangedFields names the tracked fields the server side changed
	// since the client's base.
	ChangedFields []string `json:"changed_fields,omitempty"`

	DetectedAt time.Time `json:"detected_at"`
}

// QueuePolicy reports what an enqueue did to the pending-op queue.
type QueuePolicy struct {
	Before          int `json:"before"`
	After           int `json:"after"`
	Cap             int `json:"cap"`
	CompactionDrops int `json:"compaction_drops"`
	OverflowDrops   int `json:"overflow_drops"`
}

// SyncBackpressure is the derived admission-control view of the queue.
// Blocked means the pending-op count has reached the configured cap and
// the calling layer should refuse new captures until the queue drains.
type SyncBackpressure struct {
	Blocked    bool `json:"blocked"`
	PendingOps int  `json:"pending_ops"`
	Cap        int  `json:"cap"`
	OverflowBy int  `json:"overflow_by"`
}

// SyncStatus is the single externally visible state of the sync engine.
type SyncStatus string

const (
	// StatusDisabled — sync is turned off (no signed-in account).
	StatusDisabled SyncStatus = "disabled"
	// StatusOffline — the network reports no connectivity.
	StatusOffline SyncStatus = "offline"
	// StatusBlocked — the pending-op queue is at or above its cap.
	StatusBlocked SyncStatus = "blocked"
	// StatusConflict — at least one conflict awaits manual resolution.
	StatusConflict SyncStatus = "conflict"
	// StatusDegraded — reachable, but the last push or pull failed.
	StatusDegraded SyncStatus = "degraded"
	// StatusSyncing — actively pushing/pulling over a healthy live channel.
	StatusSyncing SyncStatus = "syncing"
	// StatusPolling — actively pushing/pulling on the interval fallback.
	StatusPolling SyncStatus = "polling"
	// StatusSynced — queue empty, no conflicts, channel healthy.
	StatusSynced SyncStatus = "synced"
)
