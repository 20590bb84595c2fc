package sentinel

import "errors"

// Sentinel dependency errors. Stores and other dependencies should return
// these (optionally wrapped) so services can translate them into domain
// errors exactly once.
var (
	ErrNotFound     = errors.New("not found")
	ErrInvalidInput = errors.New("invalid input")
	ErrExpired      = errors.New("expired")
	ErrRevoked      = errors.New("revoked")
	ErrInvalidState = errors.New("invalid state")
)
