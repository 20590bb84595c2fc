// Package models contains the pure domain entities the directory manages:
// tenants, users, roles, privileges, and legal entities. These types carry no
// transport concerns - JSON shapes live in the handler package.
package models

import (
	"time"

	id "aegis/pkg/domain"
)

// UserStatus is the lifecycle state of a directory user.
type UserStatus string

const (
	UserStatusActive   UserStatus = "active"
	UserStatusInactive UserStatus = "inactive"
	UserStatusPending  UserStatus = "pending"
)

// EntityStatus is the lifecycle state of a legal entity.
type EntityStatus string

const (
	EntityStatusActive   EntityStatus = "active"
	EntityStatusInactive EntityStatus = "inactive"
	EntityStatusPending  EntityStatus = "pending"
)

// EntityType classifies a legal entity's corporate form.
type EntityType string

const (
	EntityTypeCorporation        EntityType = "corporation"
	EntityTypeLLC                EntityType = "llc"
	EntityTypePartnership        EntityType = "partnership"
	EntityTypeSoleProprietorship EntityType = "sole_proprietorship"
)

// Tenant is the isolation boundary every other entity is scoped to.
type Tenant struct {
	ID        id.TenantID
	Name      string
	Domain    string
	Status    string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// User represents a directory user. PasswordHash holds a bcrypt hash and must
// never leave the service layer.
type User struct {
	ID           id.UserID
	TenantID     id.TenantID
	Username     string
	Email        string
	FirstName    string
	LastName     string
	PasswordHash string
	Status       UserStatus
	Roles        []Role
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// RoleNames returns the user's role names in assignment order.
func (u *User) RoleNames() []string {
	names := make([]string, 0, len(u.Roles))
	for _, r := range u.Roles {
		names = append(names, r.Name)
	}
	return names
}

// Role groups privileges under a tenant-scoped name.
type Role struct {
	ID          id.RoleID
	TenantID    id.TenantID
	Name        string
	Description string
	Privileges  []Privilege
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// HasPrivilege reports whether the role carries the given privilege.
func (r *Role) HasPrivilege(privilegeID id.PrivilegeID) bool {
	for _, p := range r.Privileges {
		if p.ID == privilegeID {
			return true
		}
	}
	return false
}

// Privilege is a named capability grouped by category.
type Privilege struct {
	ID          id.PrivilegeID
	TenantID    id.TenantID
	Name        string
	Description string
	Category    string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// LegalEntity is a registered corporate body managed under a tenant.
type LegalEntity struct {
	ID                 id.EntityID
	TenantID           id.TenantID
	Name               string
	Type               EntityType
	RegistrationNumber string
	TaxID              string
	Address            string
	Status             EntityStatus
	CreatedAt          time.Time
	UpdatedAt          time.Time
}
