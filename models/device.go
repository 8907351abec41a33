package models

import "time"

// DeviceSession is one known device of an account. A session is created
// on the first authenticated request carrying a new device ID, touched on
// every subsequent request, and revoked explicitly; requests from a
// revoked device are rejected upstream of the sync engine.
type DeviceSession struct {
	ID         string     `json:"id"`
	UserID     int64      `json:"-"`
	Label      string     `json:"label"`
	Platform   string     `json:"platform"`
	LastSeenAt time.Time  `json:"last_seen_at"`
	CreatedAt  time.Time  `json:"created_at"`
	RevokedAt  *time.Time `json:"revoked_at,omitempty"`
}

// Revoked reports whether the session has been revoked.
func (d DeviceSession) Revoked() bool {
	return d.RevokedAt != nil
}
