package service

import (
	"strings"

	"aegis/internal/directory/models"
	id "aegis/pkg/domain"
	dErrors "aegis/pkg/domain-errors"
)

const maxNameLength = 128

// CreateUserCommand contains validated input for user creation.
// Domain validation happens here, not in the HTTP layer.
type CreateUserCommand struct {
	TenantID  id.TenantID
	Username  string
	Email     string
	FirstName string
	LastName  string
	Password  string
	Status    models.UserStatus
	RoleIDs   []id.RoleID
}

func (c *CreateUserCommand) Normalize() {
	c.Username = strings.TrimSpace(c.Username)
	c.Email = strings.TrimSpace(strings.ToLower(c.Email))
	c.FirstName = strings.TrimSpace(c.FirstName)
	c.LastName = strings.TrimSpace(c.LastName)
}

func (c *CreateUserCommand) Validate() error {
	if c.Username == "" {
		return dErrors.New(dErrors.CodeValidation, "username is required")
	}
	if len(c.Username) > maxNameLength {
		return dErrors.New(dErrors.CodeValidation, "username must be 128 characters or less")
	}
	if c.Email == "" || !strings.Contains(c.Email, "@") {
		return dErrors.New(dErrors.CodeValidation, "a valid email is required")
	}
	if c.Password == "" {
		return dErrors.New(dErrors.CodeValidation, "password is required")
	}
	switch c.Status {
	case "", models.UserStatusActive, models.UserStatusInactive, models.UserStatusPending:
	default:
		return dErrors.New(dErrors.CodeValidation, "invalid user status")
	}
	return nil
}

// UpdateUserCommand carries the mutable user fields. Nil pointers leave the
// corresponding field untouched; a non-nil RoleIDs replaces the whole role
// assignment (flat model, no partial merges).
type UpdateUserCommand struct {
	Email     *string
	FirstName *string
	LastName  *string
	Status    *models.UserStatus
	RoleIDs   *[]id.RoleID
}

func (c *UpdateUserCommand) Validate() error {
	if c.Email != nil && !strings.Contains(*c.Email, "@") {
		return dErrors.New(dErrors.CodeValidation, "a valid email is required")
	}
	if c.Status != nil {
		switch *c.Status {
		case models.UserStatusActive, models.UserStatusInactive, models.UserStatusPending:
		default:
			return dErrors.New(dErrors.CodeValidation, "invalid user status")
		}
	}
	return nil
}

// CreateRoleCommand contains validated input for role creation.
type CreateRoleCommand struct {
	TenantID    id.TenantID
	Name        string
	Description string
}

func (c *CreateRoleCommand) Normalize() {
	c.Name = strings.TrimSpace(c.Name)
	c.Description = strings.TrimSpace(c.Description)
}

func (c *CreateRoleCommand) Validate() error {
	if c.Name == "" {
		return dErrors.New(dErrors.CodeValidation, "name is required")
	}
	if len(c.Name) > maxNameLength {
		return dErrors.New(dErrors.CodeValidation, "name must be 128 characters or less")
	}
	return nil
}

// UpdateRoleCommand carries the mutable role fields.
type UpdateRoleCommand struct {
	Name        *string
	Description *string
}

func (c *UpdateRoleCommand) Validate() error {
	if c.Name != nil && strings.TrimSpace(*c.Name) == "" {
		return dErrors.New(dErrors.CodeValidation, "name cannot be empty")
	}
	return nil
}

// CreatePrivilegeCommand contains validated input for privilege creation.
type CreatePrivilegeCommand struct {
	TenantID    id.TenantID
	Name        string
	Description string
	Category    string
}

func (c *CreatePrivilegeCommand) Normalize() {
	c.Name = strings.TrimSpace(c.Name)
	c.Description = strings.TrimSpace(c.Description)
	c.Category = strings.TrimSpace(c.Category)
}

func (c *CreatePrivilegeCommand) Validate() error {
	if c.Name == "" {
		return dErrors.New(dErrors.CodeValidation, "name is required")
	}
	return nil
}

// UpdatePrivilegeCommand carries the mutable privilege fields.
type UpdatePrivilegeCommand struct {
	Name        *string
	Description *string
	Category    *string
}

func (c *UpdatePrivilegeCommand) Validate() error {
	if c.Name != nil && strings.TrimSpace(*c.Name) == "" {
		return dErrors.New(dErrors.CodeValidation, "name cannot be empty")
	}
	return nil
}

// CreateLegalEntityCommand contains validated input for legal entity creation.
type CreateLegalEntityCommand struct {
	TenantID           id.TenantID
	Name               string
	Type               models.EntityType
	RegistrationNumber string
	TaxID              string
	Address            string
	Status             models.EntityStatus
}

func (c *CreateLegalEntityCommand) Normalize() {
	c.Name = strings.TrimSpace(c.Name)
	c.RegistrationNumber = strings.TrimSpace(c.RegistrationNumber)
	c.TaxID = strings.TrimSpace(c.TaxID)
	c.Address = strings.TrimSpace(c.Address)
}

func (c *CreateLegalEntityCommand) Validate() error {
	if c.Name == "" {
		return dErrors.New(dErrors.CodeValidation, "name is required")
	}
	switch c.Type {
	case models.EntityTypeCorporation, models.EntityTypeLLC,
		models.EntityTypePartnership, models.EntityTypeSoleProprietorship:
	default:
		return dErrors.New(dErrors.CodeValidation, "invalid legal entity type")
	}
	switch c.Status {
	case "", models.EntityStatusActive, models.EntityStatusInactive, models.EntityStatusPending:
	default:
		return dErrors.New(dErrors.CodeValidation, "invalid legal entity status")
	}
	return nil
}

// UpdateLegalEntityCommand carries the mutable legal entity fields.
type UpdateLegalEntityCommand struct {
	Name               *string
	Type               *models.EntityType
	RegistrationNumber *string
	TaxID              *string
	Address            *string
	Status             *models.EntityStatus
}

func (c *UpdateLegalEntityCommand) Validate() error {
	if c.Name != nil && strings.TrimSpace(*c.Name) == "" {
		return dErrors.New(dErrors.CodeValidation, "name cannot be empty")
	}
	if c.Type != nil {
		switch *c.Type {
		case models.EntityTypeCorporation, models.EntityTypeLLC,
			models.EntityTypePartnership, models.EntityTypeSoleProprietorship:
		default:
			return dErrors.New(dErrors.CodeValidation, "invalid legal entity type")
		}
	}
	return nil
}
