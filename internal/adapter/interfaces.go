// Package adapter implements the client's outbound transport to the sync
// server. It owns the wire contract: every request the sync engine makes
// goes through [ServerAdapter], and every failure is mapped onto the
// engine's taxonomy (offline / auth / retryable / fatal) before it is
// returned.
package adapter

import (
	"context"

	"github.com/bananahana720/pocket-brain-sub000/models"
)

// ServerAdapter is the client-side contract for talking to the sync
// server. Implementations are safe for concurrent use; the push and pull
// pipelines may be in flight simultaneously.
type ServerAdapter interface {
	// SetToken stores the bearer token used for all subsequent
	// authenticated requests.
	SetToken(token string)

	// Token returns the bearer token currently held by the adapter.
	Token() string

	// Register creates a new account and stores the issued bearer token.
	Register(ctx context.Context, user models.User) (models.Token, error)

	// Login authenticates an existing account and stores the issued
	// bearer token.
	Login(ctx context.Context, user models.User) (models.Token, error)

	// Snapshot fetches the full authoritative note collection together
	// with the change-log cursor it is consistent with.
	Snapshot(ctx context.Context, includeDeleted bool) (models.SnapshotResponse, error)

	// Pull fetches changes after cursor, or a reset-required marker when
	// the server no longer retains history back to it.
	Pull(ctx context.Context, cursor models.Cursor) (models.PullResponse, error)

	// Push submits a batch of pending operations and returns, per
	// operation, whether it was applied or conflicted.
	Push(ctx context.Context, req models.PushRequest) (models.PushResponse, error)

	// Bootstrap migrates a pre-sync local-only collection to the server.
	// The call is idempotent by source fingerprint.
	Bootstrap(ctx context.Context, req models.BootstrapRequest) (models.BootstrapResponse, error)

	// Devices lists the account's device sessions.
	Devices(ctx context.Context) (models.DevicesResponse, error)

	// RevokeDevice revokes the device session with the given ID.
	RevokeDevice(ctx context.Context, deviceID string) (models.RevokeDeviceResponse, error)

	// EventsTicket obtains a single-use, short-lived credential for the
	// live event stream.
	EventsTicket(ctx context.Context) (models.TicketResponse, error)

	// OpenEvents opens the live notification stream authenticated by a
	// ticket from EventsTicket. The caller owns the stream and must
	// Close it.
	OpenEvents(ctx context.Context, ticket string) (EventStream, error)
}

// EventStream is one live notification connection. Recv blocks until the
// next cursor notification arrives or the stream fails.
type EventStream interface {
	Recv() (models.Cursor, error)
	Close() error
}
