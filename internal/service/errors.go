package service

import "errors"

var (
	ErrInvalidDataProvided = errors.New("invalid data provided")
	ErrWrongPassword       = errors.New("wrong password")

	ErrTokenCreationFailed     = errors.New("token creation failed")
	ErrTokenIsExpiredOrInvalid = errors.New("token is expired or invalid")

	// ErrTicketInvalid covers every ticket failure: unknown, expired, or
	// already redeemed. The client reacts the same way to all three.
	ErrTicketInvalid = errors.New("event ticket is invalid")
)
