package session

import (
	"context"

	"aegis/internal/directory/models"
	"aegis/internal/directory/service"
	"aegis/internal/token"
	id "aegis/pkg/domain"
)

//go:generate mockgen -source=directory.go -destination=mocks/directory_mock.go -package=mocks

// Directory is the remote directory service the session layer talks to.
// Authenticate fails with an unauthorized domain error on bad credentials,
// FetchUser with not_found, ValidateToken with token_expired or unauthorized.
// SignOut is best effort; its failures never block a local logout.
type Directory interface {
	Authenticate(ctx context.Context, username, password, deviceName string) (*service.AuthResult, error)
	SignOut(ctx context.Context, tokenString string) error
	ValidateToken(ctx context.Context, tokenString string) (*token.Claims, error)
	FetchUser(ctx context.Context, tenantID id.TenantID, userID id.UserID) (*models.User, error)
}

var _ Directory = (*service.Service)(nil)
