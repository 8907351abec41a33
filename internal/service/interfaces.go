package service

import (
	"context"

	"github.com/bananahana720/pocket-brain-sub000/models"
)

//go:generate mockgen -source=interfaces.go -destination=../mock/service_mock.go -package=mock

// AuthService handles account registration, credential verification, and
// bearer-token lifecycle.
type AuthService interface {
	RegisterUser(ctx context.Context, user models.User) (models.User, error)
	Login(ctx context.Context, user models.User) (models.User, error)
	CreateToken(ctx context.Context, user models.User) (models.Token, error)
	ParseToken(ctx context.Context, tokenString string) (models.Token, error)
}

// SyncService implements the server half of the sync protocol: the full
// snapshot, the incremental change feed, the versioned push, and the
// one-time bootstrap import.
type SyncService interface {
	Snapshot(ctx context.Context, userID int64, includeDeleted bool) (models.SnapshotResponse, error)
	Pull(ctx context.Context, userID int64, cursor models.Cursor, limit int) (models.PullResponse, error)
	Push(ctx context.Context, userID int64, req models.PushRequest) (models.PushResponse, error)
	Bootstrap(ctx context.Context, userID int64, req models.BootstrapRequest) (models.BootstrapResponse, error)
}

// DeviceService tracks the account's device sessions.
type DeviceService interface {
	Touch(ctx context.Context, session models.DeviceSession) error
	List(ctx context.Context, userID int64, currentDeviceID string) (models.DevicesResponse, error)
	Revoke(ctx context.Context, userID int64, deviceID string) error
}

// EventsService manages the live notification channel: single-use tickets
// for authenticating a stream, per-user subscriptions, and cursor
// broadcasts when a user's change log advances.
type EventsService interface {
	IssueTicket(ctx context.Context, userID int64, deviceID string) (models.TicketResponse, error)

	// RedeemTicket consumes a ticket and returns the user and device it
	// was issued to. A ticket redeems exactly once.
	RedeemTicket(ctx context.Context, ticket string) (userID int64, deviceID string, err error)

	// Subscribe registers a listener for the user's cursor notifications.
	// The returned cancel function must be called when the listener goes
	// away.
	Subscribe(userID int64) (<-chan models.Cursor, func())

	// Broadcast notifies every subscriber of userID that the change log
	// has advanced to cursor. It never blocks.
	Broadcast(userID int64, cursor models.Cursor)
}
