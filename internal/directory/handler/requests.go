package handler

import (
	"strings"

	"aegis/internal/directory/models"
	"aegis/internal/directory/service"
	id "aegis/pkg/domain"
	dErrors "aegis/pkg/domain-errors"
)

// LoginRequest is the credential payload for POST /auth/login.
type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

func (r *LoginRequest) Normalize() {
	r.Username = strings.TrimSpace(r.Username)
}

func (r *LoginRequest) Validate() error {
	if r.Username == "" {
		return dErrors.New(dErrors.CodeValidation, "username is required")
	}
	if r.Password == "" {
		return dErrors.New(dErrors.CodeValidation, "password is required")
	}
	return nil
}

// CreateUserRequest is the payload for creating a user under a tenant.
type CreateUserRequest struct {
	Username  string   `json:"username"`
	Email     string   `json:"email"`
	FirstName string   `json:"first_name"`
	LastName  string   `json:"last_name"`
	Password  string   `json:"password"`
	Status    string   `json:"status"`
	RoleIDs   []string `json:"role_ids"`
}

func (r *CreateUserRequest) ToCommand(tenantID id.TenantID) (*service.CreateUserCommand, error) {
	roleIDs, err := parseRoleIDs(r.RoleIDs)
	if err != nil {
		return nil, err
	}
	return &service.CreateUserCommand{
		TenantID:  tenantID,
		Username:  r.Username,
		Email:     r.Email,
		FirstName: r.FirstName,
		LastName:  r.LastName,
		Password:  r.Password,
		Status:    models.UserStatus(r.Status),
		RoleIDs:   roleIDs,
	}, nil
}

// UpdateUserRequest carries partial user updates. Absent fields stay
// untouched; a present role_ids replaces the whole assignment.
type UpdateUserRequest struct {
	Email     *string   `json:"email"`
	FirstName *string   `json:"first_name"`
	LastName  *string   `json:"last_name"`
	Status    *string   `json:"status"`
	RoleIDs   *[]string `json:"role_ids"`
}

func (r *UpdateUserRequest) ToCommand() (*service.UpdateUserCommand, error) {
	cmd := &service.UpdateUserCommand{
		Email:     r.Email,
		FirstName: r.FirstName,
		LastName:  r.LastName,
	}
	if r.Status != nil {
		status := models.UserStatus(*r.Status)
		cmd.Status = &status
	}
	if r.RoleIDs != nil {
		roleIDs, err := parseRoleIDs(*r.RoleIDs)
		if err != nil {
			return nil, err
		}
		cmd.RoleIDs = &roleIDs
	}
	return cmd, nil
}

// CreateRoleRequest is the payload for creating a role.
type CreateRoleRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

func (r *CreateRoleRequest) ToCommand(tenantID id.TenantID) *service.CreateRoleCommand {
	return &service.CreateRoleCommand{
		TenantID:    tenantID,
		Name:        r.Name,
		Description: r.Description,
	}
}

// UpdateRoleRequest carries partial role updates.
type UpdateRoleRequest struct {
	Name        *string `json:"name"`
	Description *string `json:"description"`
}

func (r *UpdateRoleRequest) ToCommand() *service.UpdateRoleCommand {
	return &service.UpdateRoleCommand{
		Name:        r.Name,
		Description: r.Description,
	}
}

// CreatePrivilegeRequest is the payload for creating a privilege.
type CreatePrivilegeRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Category    string `json:"category"`
}

func (r *CreatePrivilegeRequest) ToCommand(tenantID id.TenantID) *service.CreatePrivilegeCommand {
	return &service.CreatePrivilegeCommand{
		TenantID:    tenantID,
		Name:        r.Name,
		Description: r.Description,
		Category:    r.Category,
	}
}

// UpdatePrivilegeRequest carries partial privilege updates.
type UpdatePrivilegeRequest struct {
	Name        *string `json:"name"`
	Description *string `json:"description"`
	Category    *string `json:"category"`
}

func (r *UpdatePrivilegeRequest) ToCommand() *service.UpdatePrivilegeCommand {
	return &service.UpdatePrivilegeCommand{
		Name:        r.Name,
		Description: r.Description,
		Category:    r.Category,
	}
}

// CreateLegalEntityRequest is the payload for creating a legal entity.
type CreateLegalEntityRequest struct {
	Name               string `json:"name"`
	Type               string `json:"type"`
	RegistrationNumber string `json:"registration_number"`
	TaxID              string `json:"tax_id"`
	Address            string `json:"address"`
	Status             string `json:"status"`
}

func (r *CreateLegalEntityRequest) ToCommand(tenantID id.TenantID) *service.CreateLegalEntityCommand {
	return &service.CreateLegalEntityCommand{
		TenantID:           tenantID,
		Name:               r.Name,
		Type:               models.EntityType(r.Type),
		RegistrationNumber: r.RegistrationNumber,
		TaxID:              r.TaxID,
		Address:            r.Address,
		Status:             models.EntityStatus(r.Status),
	}
}

// UpdateLegalEntityRequest carries partial legal entity updates.
type UpdateLegalEntityRequest struct {
	Name               *string `json:"name"`
	Type               *string `json:"type"`
	RegistrationNumber *string `json:"registration_number"`
	TaxID              *string `json:"tax_id"`
	Address            *string `json:"address"`
	Status             *string `json:"status"`
}

func (r *UpdateLegalEntityRequest) ToCommand() *service.UpdateLegalEntityCommand {
	cmd := &service.UpdateLegalEntityCommand{
		Name:               r.Name,
		RegistrationNumber: r.RegistrationNumber,
		TaxID:              r.TaxID,
		Address:            r.Address,
	}
	if r.Type != nil {
		entityType := models.EntityType(*r.Type)
		cmd.Type = &entityType
	}
	if r.Status != nil {
		status := models.EntityStatus(*r.Status)
		cmd.Status = &status
	}
	return cmd
}

func parseRoleIDs(raw []string) ([]id.RoleID, error) {
	roleIDs := make([]id.RoleID, 0, len(raw))
	for _, s := range raw {
		roleID, err := id.ParseRoleID(s)
		if err != nil {
			return nil, dErrors.New(dErrors.CodeBadRequest, "invalid role id")
		}
		roleIDs = append(roleIDs, roleID)
	}
	return roleIDs, nil
}
