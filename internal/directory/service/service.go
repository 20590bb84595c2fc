// Package service implements the tenant-scoped directory: authentication,
// token validation, and CRUD over users, roles, privileges, and legal
// entities. The session layer consumes it through the narrow client
// interface it defines for itself.
package service

import (
	"context"
	"log/slog"
	"time"

	dirmetrics "aegis/internal/directory/metrics"
	"aegis/internal/directory/models"
	"aegis/internal/token"
	id "aegis/pkg/domain"
)

// UserStore defines the persistence interface for directory users.
// Error Contract: Find methods return sentinel.ErrNotFound when the entity doesn't exist.
type UserStore interface {
	Save(ctx context.Context, user *models.User) error
	FindByID(ctx context.Context, tenantID id.TenantID, userID id.UserID) (*models.User, error)
	FindByUsername(ctx context.Context, username string) (*models.User, error)
	ListByTenant(ctx context.Context, tenantID id.TenantID) ([]*models.User, error)
	Delete(ctx context.Context, tenantID id.TenantID, userID id.UserID) error
}

// RoleStore defines the persistence interface for roles.
type RoleStore interface {
	Save(ctx context.Context, role *models.Role) error
	FindByID(ctx context.Context, tenantID id.TenantID, roleID id.RoleID) (*models.Role, error)
	FindByName(ctx context.Context, tenantID id.TenantID, name string) (*models.Role, error)
	ListByTenant(ctx context.Context, tenantID id.TenantID) ([]*models.Role, error)
	Delete(ctx context.Context, tenantID id.TenantID, roleID id.RoleID) error
}

// PrivilegeStore defines the persistence interface for privileges.
type PrivilegeStore interface {
	Save(ctx context.Context, privilege *models.Privilege) error
	FindByID(ctx context.Context, tenantID id.TenantID, privilegeID id.PrivilegeID) (*models.Privilege, error)
	ListByTenant(ctx context.Context, tenantID id.TenantID) ([]*models.Privilege, error)
	Delete(ctx context.Context, tenantID id.TenantID, privilegeID id.PrivilegeID) error
}

// LegalEntityStore defines the persistence interface for legal entities.
type LegalEntityStore interface {
	Save(ctx context.Context, entity *models.LegalEntity) error
	FindByID(ctx context.Context, tenantID id.TenantID, entityID id.EntityID) (*models.LegalEntity, error)
	ListByTenant(ctx context.Context, tenantID id.TenantID) ([]*models.LegalEntity, error)
	Delete(ctx context.Context, tenantID id.TenantID, entityID id.EntityID) error
}

// TokenRegistry tracks issued tokens so sign-out revokes them remotely.
type TokenRegistry interface {
	Register(ctx context.Context, jti string, userID id.UserID, expiresAt time.Time) error
	Revoke(ctx context.Context, jti string) error
	CheckLive(ctx context.Context, jti string, now time.Time) error
	CountLive(ctx context.Context, now time.Time) int
}

// TokenService issues and verifies signed tokens.
type TokenService interface {
	Generate(userID id.UserID, tenantID id.TenantID, now time.Time) (string, string, error)
	Verify(tokenString string) (*token.Claims, error)
}

// Service orchestrates directory operations.
type Service struct {
	users      UserStore
	roles      RoleStore
	privileges PrivilegeStore
	entities   LegalEntityStore
	registry   TokenRegistry
	tokens     TokenService
	latency    time.Duration
	now        func() time.Time
	logger     *slog.Logger
	metrics    *dirmetrics.Metrics
}

type Option func(*Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

func WithMetrics(m *dirmetrics.Metrics) Option {
	return func(s *Service) {
		s.metrics = m
	}
}

// WithLatency adds an artificial delay to every directory operation. It
// preserves the remote-call feel of the original console's backend in demo
// deployments; keep it zero in tests.
func WithLatency(d time.Duration) Option {
	return func(s *Service) {
		if d > 0 {
			s.latency = d
		}
	}
}

// WithClock overrides the wall clock used for token issue and liveness
// checks. Tests inject a fixed clock here.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

func New(
	users UserStore,
	roles RoleStore,
	privileges PrivilegeStore,
	entities LegalEntityStore,
	registry TokenRegistry,
	tokens TokenService,
	opts ...Option,
) *Service {
	s := &Service{
		users:      users,
		roles:      roles,
		privileges: privileges,
		entities:   entities,
		registry:   registry,
		tokens:     tokens,
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = slog.Default()
	}
	return s
}

// simulateLatency blocks for the configured artificial delay, honouring
// context cancellation.
func (s *Service) simulateLatency(ctx context.Context) error {
	if s.latency <= 0 {
		return nil
	}
	timer := time.NewTimer(s.latency)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
