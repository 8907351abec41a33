// Package utils provides general-purpose helper utilities used across
// different parts of the application: type-safe context keys, HTTP
// response writing, and JWT token generation and validation.
package utils

import (
	"context"
)

// contextKey is a private type for context keys. Using a dedicated type
// instead of a plain string prevents key collisions with other packages.
type contextKey string

// String returns the string representation of the context key.
// Implements the fmt.Stringer interface.
func (c contextKey) String() string {
	return string(c)
}

// UserIDCtxKey is the key used to store the authenticated user's ID in
// the request context.
var UserIDCtxKey = contextKey("userID")

// DeviceIDCtxKey is the key used to store the calling device-session ID
// in the request context.
var DeviceIDCtxKey = contextKey("deviceID")

// GetUserIDFromContext retrieves the user identifier from the context.
// ok is false when the value is missing or has an unexpected type.
func GetUserIDFromContext(ctx context.Context) (int64, bool) {
	userID, ok := ctx.Value(UserIDCtxKey).(int64)
	return userID, ok
}

// GetDeviceIDFromContext retrieves the device-session identifier from
// the context. ok is false when the value is missing or not a string.
func GetDeviceIDFromContext(ctx context.Context) (string, bool) {
	deviceID, ok := ctx.Value(DeviceIDCtxKey).(string)
	return deviceID, ok
}
