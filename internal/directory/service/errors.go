package service

import (
	"errors"

	"aegis/internal/sentinel"
	id "aegis/pkg/domain"
	dErrors "aegis/pkg/domain-errors"
)

// Sentinel-to-domain translation happens exactly once, here at the service
// boundary. Stores speak sentinel errors, callers see domain errors.

func translateNotFound(err error, msg string) error {
	if errors.Is(err, sentinel.ErrNotFound) {
		return dErrors.New(dErrors.CodeNotFound, msg)
	}
	return dErrors.Wrap(err, dErrors.CodeInternal, msg)
}

// translateLiveness maps registry liveness failures onto the token error
// taxonomy: expired and revoked tokens both read as expired to the session
// layer, unknown tokens were never ours.
func translateLiveness(err error) error {
	switch {
	case errors.Is(err, sentinel.ErrExpired):
		return dErrors.New(dErrors.CodeTokenExpired, "token expired")
	case errors.Is(err, sentinel.ErrRevoked):
		return dErrors.New(dErrors.CodeTokenExpired, "token revoked")
	case errors.Is(err, sentinel.ErrNotFound):
		return dErrors.New(dErrors.CodeUnauthorized, "unknown token")
	default:
		return dErrors.Wrap(err, dErrors.CodeInternal, "token liveness check failed")
	}
}

func requireTenantID(tenantID id.TenantID) error {
	if tenantID.IsNil() {
		return dErrors.New(dErrors.CodeBadRequest, "tenant ID required")
	}
	return nil
}

func requireUserID(userID id.UserID) error {
	if userID.IsNil() {
		return dErrors.New(dErrors.CodeBadRequest, "user ID required")
	}
	return nil
}
