// Package seed populates the in-memory stores with a demo tenant so the
// server is usable out of the box.
package seed

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"aegis/internal/directory/models"
	id "aegis/pkg/domain"
	"aegis/pkg/secrets"
)

// UserStore defines methods for seeding users
type UserStore interface {
	Save(ctx context.Context, user *models.User) error
}

// RoleStore defines methods for seeding roles
type RoleStore interface {
	Save(ctx context.Context, role *models.Role) error
}

// PrivilegeStore defines methods for seeding privileges
type PrivilegeStore interface {
	Save(ctx context.Context, privilege *models.Privilege) error
}

// LegalEntityStore defines methods for seeding legal entities
type LegalEntityStore interface {
	Save(ctx context.Context, entity *models.LegalEntity) error
}

// Seeder populates the stores with demo data
type Seeder struct {
	users      UserStore
	roles      RoleStore
	privileges PrivilegeStore
	entities   LegalEntityStore
	logger     *slog.Logger
}

// New creates a new seeder
func New(users UserStore, roles RoleStore, privileges PrivilegeStore, entities LegalEntityStore, logger *slog.Logger) *Seeder {
	return &Seeder{
		users:      users,
		roles:      roles,
		privileges: privileges,
		entities:   entities,
		logger:     logger,
	}
}

// SeedAll populates the stores and returns the demo tenant ID.
func (s *Seeder) SeedAll(ctx context.Context) (id.TenantID, error) {
	tenantID := id.NewTenantID()

	s.logger.Info("seeding demo data...", "tenant_id", tenantID)

	privileges, err := s.seedPrivileges(ctx, tenantID)
	if err != nil {
		return tenantID, fmt.Errorf("failed to seed privileges: %w", err)
	}

	roles, err := s.seedRoles(ctx, tenantID, privileges)
	if err != nil {
		return tenantID, fmt.Errorf("failed to seed roles: %w", err)
	}

	users, err := s.seedUsers(ctx, tenantID, roles)
	if err != nil {
		return tenantID, fmt.Errorf("failed to seed users: %w", err)
	}

	entities, err := s.seedLegalEntities(ctx, tenantID)
	if err != nil {
		return tenantID, fmt.Errorf("failed to seed legal entities: %w", err)
	}

	s.logger.Info("demo data seeded successfully",
		"users", len(users),
		"roles", len(roles),
		"privileges", len(privileges),
		"legal_entities", entities,
	)

	return tenantID, nil
}

func (s *Seeder) seedPrivileges(ctx context.Context, tenantID id.TenantID) (map[string]models.Privilege, error) {
	now := time.Now()

	demoPrivileges := []struct {
		name        string
		description string
		category    string
	}{
		{"user.create", "Create new users", "User Management"},
		{"user.read", "View user details", "User Management"},
		{"user.update", "Edit existing users", "User Management"},
		{"user.delete", "Remove users", "User Management"},
		{"role.manage", "Create and edit roles", "Access Control"},
		{"organization.manage", "Manage legal entities", "Organization"},
		{"system.admin", "Full system administration", "System"},
		{"reports.view", "View reports and dashboards", "Reporting"},
		{"security.manage", "Manage security settings", "Security"},
	}

	privileges := make(map[string]models.Privilege, len(demoPrivileges))
	for _, p := range demoPrivileges {
		privilege := models.Privilege{
			ID:          id.NewPrivilegeID(),
			TenantID:    tenantID,
			Name:        p.name,
			Description: p.description,
			Category:    p.category,
			CreatedAt:   now,
			UpdatedAt:   now,
		}

		if err := s.privileges.Save(ctx, &privilege); err != nil {
			return nil, err
		}

		privileges[p.name] = privilege
	}

	return privileges, nil
}

func (s *Seeder) seedRoles(ctx context.Context, tenantID id.TenantID, privileges map[string]models.Privilege) (map[string]models.Role, error) {
	now := time.Now()

	demoRoles := []struct {
		name        string
		description string
		privileges  []string
	}{
		{"Super Admin", "Unrestricted access to every feature", []string{
			"user.create", "user.read", "user.update", "user.delete",
			"role.manage", "organization.manage", "system.admin",
			"reports.view", "security.manage",
		}},
		{"Manager", "Manage users and view reports", []string{
			"user.create", "user.read", "user.update", "reports.view",
		}},
		{"User", "Read-only directory access", []string{
			"user.read",
		}},
	}

	roles := make(map[string]models.Role, len(demoRoles))
	for _, r := range demoRoles {
		granted := make([]models.Privilege, 0, len(r.privileges))
		for _, name := range r.privileges {
			granted = append(granted, privileges[name])
		}

		role := models.Role{
			ID:          id.NewRoleID(),
			TenantID:    tenantID,
			Name:        r.name,
			Description: r.description,
			Privileges:  granted,
			CreatedAt:   now,
			UpdatedAt:   now,
		}

		if err := s.roles.Save(ctx, &role); err != nil {
			return nil, err
		}

		roles[r.name] = role
	}

	return roles, nil
}

func (s *Seeder) seedUsers(ctx context.Context, tenantID id.TenantID, roles map[string]models.Role) ([]*models.User, error) {
	now := time.Now()

	demoUsers := []struct {
		username  string
		email     string
		firstName string
		lastName  string
		role      string
	}{
		{"admin", "admin@example.com", "Alice", "Adminson", "Super Admin"},
		{"manager", "manager@example.com", "Mark", "Manning", "Manager"},
		{"user", "user@example.com", "Uma", "Usher", "User"},
	}

	var users []*models.User
	for _, u := range demoUsers {
		hash, err := secrets.Hash("password")
		if err != nil {
			return nil, err
		}

		user := &models.User{
			ID:           id.NewUserID(),
			TenantID:     tenantID,
			Username:     u.username,
			Email:        u.email,
			FirstName:    u.firstName,
			LastName:     u.lastName,
			PasswordHash: hash,
			Status:       models.UserStatusActive,
			Roles:        []models.Role{roles[u.role]},
			CreatedAt:    now,
			UpdatedAt:    now,
		}

		if err := s.users.Save(ctx, user); err != nil {
			return nil, err
		}

		users = append(users, user)
	}

	return users, nil
}

func (s *Seeder) seedLegalEntities(ctx context.Context, tenantID id.TenantID) (int, error) {
	now := time.Now()

	demoEntities := []struct {
		name         string
		entityType   models.EntityType
		registration string
		taxID        string
		address      string
		status       models.EntityStatus
	}{
		{"Acme Holdings LLC", models.EntityTypeLLC, "LLC-2021-0042", "88-1234567", "1 Market St, San Francisco, CA", models.EntityStatusActive},
		{"Northwind Trading Corp", models.EntityTypeCorporation, "C-2019-7781", "94-7654321", "400 Pine Ave, Seattle, WA", models.EntityStatusActive},
		{"Bluefin Partners", models.EntityTypePartnership, "P-2023-0310", "31-9988776", "77 Harbor Blvd, Boston, MA", models.EntityStatusPending},
	}

	for _, e := range demoEntities {
		entity := &models.LegalEntity{
			ID:                 id.NewEntityID(),
			TenantID:           tenantID,
			Name:               e.name,
			Type:               e.entityType,
			RegistrationNumber: e.registration,
			TaxID:              e.taxID,
			Address:            e.address,
			Status:             e.status,
			CreatedAt:          now,
			UpdatedAt:          now,
		}

		if err := s.entities.Save(ctx, entity); err != nil {
			return 0, err
		}
	}

	return len(demoEntities), nil
}
