package models

// Wire contract for the sync API. Field names follow the JSON the server
// and all client platforms agreed on; the engine never invents fields
// outside these types.

// SnapshotResponse is the full authoritative note collection, returned by
// GET /api/notes. Cursor is the change-log position the snapshot is
// consistent with.
type SnapshotResponse struct {
	Notes  []Note `json:"notes"`
	Cursor Cursor `json:"cursor"`
}

// Change is one replicated mutation in a pull response.
type Change struct {
	Op   string `json:"op"`
	Note Note   `json:"note"`
}

// PullResponse is the incremental feed from GET /api/sync/pull. When the
// server no longer retains history back to the requested cursor it sets
// ResetRequired and the client must resnapshot instead.
type PullResponse struct {
	Changes    []Change `json:"changes,omitempty"`
	NextCursor Cursor   `json:"next_cursor"`

	ResetRequired         bool   `json:"reset_required,omitempty"`
	ResetReason           string `json:"reset_reason,omitempty"`
	OldestAvailableCursor Cursor `json:"oldest_available_cursor,omitempty"`
	LatestCursor          Cursor `json:"latest_cursor,omitempty"`
}

// PushRequest carries a batch of pending operations to POST /api/sync/push.
type PushRequest struct {
	Operations []SyncOp `json:"operations"`
}

// AppliedOp is one successfully committed operation in a push response.
type AppliedOp struct {
	RequestID string `json:"request_id"`
	Note      Note   `json:"note"`
	Cursor    Cursor `json:"cursor"`
}

// PushResponse reports, per operation, whether it was applied or
// conflicted. NextCursor is the change-log position after the batch.
type PushResponse struct {
	Applied    []AppliedOp    `json:"applied,omitempty"`
	Conflicts  []SyncConflict `json:"conflicts,omitempty"`
	NextCursor Cursor         `json:"next_cursor"`
}

// BootstrapRequest migrates a pre-sync local-only collection into the
// server exactly once. SourceFingerprint identifies the local collection
// so a retried bootstrap is recognised instead of duplicated.
type BootstrapRequest struct {
	Notes             []Note `json:"notes"`
	SourceFingerprint string `json:"source_fingerprint"`
}

// BootstrapResponse reports the outcome of a bootstrap attempt.
type BootstrapResponse struct {
	Imported            int    `json:"imported"`
	AlreadyBootstrapped bool   `json:"already_bootstrapped"`
	Cursor              Cursor `json:"cursor"`
}

// DevicesResponse lists the account's device sessions.
type DevicesResponse struct {
	Devices         []DeviceSession `json:"devices"`
	CurrentDeviceID string          `json:"current_device_id"`
}

// RevokeDeviceResponse acknowledges a device revocation.
type RevokeDeviceResponse struct {
	OK              bool   `json:"ok"`
	RevokedDeviceID string `json:"revoked_device_id"`
}

// TicketResponse carries a single-use, short-lived credential for the
// live event stream.
type TicketResponse struct {
	Ticket    string `json:"ticket"`
	ExpiresIn int64  `json:"expires_in"`
}

// EventMessage is one notification on the live channel: the change log
// has advanced to Cursor.
type EventMessage struct {
	Cursor Cursor `json:"cursor"`
}

// APIError is the uniform error body returned by every endpoint.
type APIError struct {
	Error APIErrorDetail `json:"error"`
}

// APIErrorDetail describes a single API failure.
type APIErrorDetail struct {
	Code      string `json:"code"`
	Message   string `json:"message"`
	Retryable bool   `json:"retryable"`
}
