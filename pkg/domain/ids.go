// Package domain provides type-safe identifiers to prevent mixing up IDs at compile time.
package domain

import (
	"github.com/google/uuid"

	dErrors "aegis/pkg/domain-errors"
)

// Distinct ID types - compiler prevents passing UserID where TenantID is expected.
type (
	UserID      UUID
	TenantID    UUID
	RoleID      UUID
	PrivilegeID UUID
	EntityID    UUID
)

// UUID aliases the underlying uuid type so callers outside this package
// never import github.com/google/uuid directly for identifiers.
type UUID = uuid.UUID

// New functions - for entity construction.

func NewUserID() UserID           { return UserID(uuid.New()) }
func NewTenantID() TenantID       { return TenantID(uuid.New()) }
func NewRoleID() RoleID           { return RoleID(uuid.New()) }
func NewPrivilegeID() PrivilegeID { return PrivilegeID(uuid.New()) }
func NewEntityID() EntityID       { return EntityID(uuid.New()) }

// Parse functions - use at trust boundaries (handlers, API inputs).

func ParseUserID(s string) (UserID, error) {
	id, err := parseUUID(s, "user ID")
	return UserID(id), err
}

func ParseTenantID(s string) (TenantID, error) {
	id, err := parseUUID(s, "tenant ID")
	return TenantID(id), err
}

func ParseRoleID(s string) (RoleID, error) {
	id, err := parseUUID(s, "role ID")
	return RoleID(id), err
}

func ParsePrivilegeID(s string) (PrivilegeID, error) {
	id, err := parseUUID(s, "privilege ID")
	return PrivilegeID(id), err
}

func ParseEntityID(s string) (EntityID, error) {
	id, err := parseUUID(s, "legal entity ID")
	return EntityID(id), err
}

// String methods - for logging and debugging.

func (id UserID) String() string      { return uuid.UUID(id).String() }
func (id TenantID) String() string    { return uuid.UUID(id).String() }
func (id RoleID) String() string      { return uuid.UUID(id).String() }
func (id PrivilegeID) String() string { return uuid.UUID(id).String() }
func (id EntityID) String() string    { return uuid.UUID(id).String() }

// IsNil checks - used for service-layer validation.

func (id UserID) IsNil() bool      { return uuid.UUID(id) == uuid.Nil }
func (id TenantID) IsNil() bool    { return uuid.UUID(id) == uuid.Nil }
func (id RoleID) IsNil() bool      { return uuid.UUID(id) == uuid.Nil }
func (id PrivilegeID) IsNil() bool { return uuid.UUID(id) == uuid.Nil }
func (id EntityID) IsNil() bool    { return uuid.UUID(id) == uuid.Nil }

// parseUUID is the shared validation logic. Nil UUIDs are rejected at the
// boundary so stores never receive the zero identifier.
func parseUUID(s, label string) (uuid.UUID, error) {
	if s == "" {
		return uuid.Nil, dErrors.New(dErrors.CodeInvalidInput, label+" cannot be empty")
	}
	parsed, err := uuid.Parse(s)
	if err != nil {
		return uuid.Nil, dErrors.New(dErrors.CodeInvalidInput, "invalid "+label)
	}
	return parsed, nil
}
