package service

import (
	"context"
	"errors"

	"aegis/internal/directory/models"
	"aegis/internal/sentinel"
	id "aegis/pkg/domain"
	dErrors "aegis/pkg/domain-errors"
)

// CreateRole adds a role under the tenant. Role names are unique within a
// tenant; access checks elsewhere match on these names verbatim.
func (s *Service) CreateRole(ctx context.Context, cmd *CreateRoleCommand) (*models.Role, error) {
	ctx, span := tracer.Start(ctx, "directory.CreateRole")
	defer span.End()

	if err := s.simulateLatency(ctx); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "create cancelled")
	}
	if err := requireTenantID(cmd.TenantID); err != nil {
		return nil, err
	}
	cmd.Normalize()
	if err := cmd.Validate(); err != nil {
		return nil, err
	}

	if _, err := s.roles.FindByName(ctx, cmd.TenantID, cmd.Name); err == nil {
		return nil, dErrors.New(dErrors.CodeConflict, "role name already taken")
	} else if !errors.Is(err, sentinel.ErrNotFound) {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "role lookup failed")
	}

	now := s.now()
	role := &models.Role{
		ID:          id.NewRoleID(),
		TenantID:    cmd.TenantID,
		Name:        cmd.Name,
		Description: cmd.Description,
		Privileges:  []models.Privilege{},
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.roles.Save(ctx, role); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "could not save role")
	}

	s.logger.InfoContext(ctx, "role created", "role_id", role.ID.String(), "name", role.Name)
	if s.metrics != nil {
		s.metrics.IncrementEntityWrite("role", "create")
	}
	return role, nil
}

func (s *Service) UpdateRole(ctx context.Context, tenantID id.TenantID, roleID id.RoleID, cmd *UpdateRoleCommand) (*models.Role, error) {
	ctx, span := tracer.Start(ctx, "directory.UpdateRole")
	defer span.End()

	if err := s.simulateLatency(ctx); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "update cancelled")
	}
	if err := cmd.Validate(); err != nil {
		return nil, err
	}

	role, err := s.roles.FindByID(ctx, tenantID, roleID)
	if err != nil {
		return nil, translateNotFound(err, "role not found")
	}

	if cmd.Name != nil {
		role.Name = *cmd.Name
	}
	if cmd.Description != nil {
		role.Description = *cmd.Description
	}
	role.UpdatedAt = s.now()

	if err := s.roles.Save(ctx, role); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "could not save role")
	}
	if s.metrics != nil {
		s.metrics.IncrementEntityWrite("role", "update")
	}
	return role, nil
}

func (s *Service) DeleteRole(ctx context.Context, tenantID id.TenantID, roleID id.RoleID) error {
	ctx, span := tracer.Start(ctx, "directory.DeleteRole")
	defer span.End()

	if err := s.simulateLatency(ctx); err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "delete cancelled")
	}
	if err := s.roles.Delete(ctx, tenantID, roleID); err != nil {
		return translateNotFound(err, "role not found")
	}
	if s.metrics != nil {
		s.metrics.IncrementEntityWrite("role", "delete")
	}
	return nil
}

func (s *Service) GetRole(ctx context.Context, tenantID id.TenantID, roleID id.RoleID) (*models.Role, error) {
	ctx, span := tracer.Start(ctx, "directory.GetRole")
	defer span.End()

	if err := s.simulateLatency(ctx); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "get cancelled")
	}
	role, err := s.roles.FindByID(ctx, tenantID, roleID)
	if err != nil {
		return nil, translateNotFound(err, "role not found")
	}
	return role, nil
}

func (s *Service) ListRoles(ctx context.Context, tenantID id.TenantID) ([]*models.Role, error) {
	ctx, span := tracer.Start(ctx, "directory.ListRoles")
	defer span.End()

	if err := s.simulateLatency(ctx); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "list cancelled")
	}
	if err := requireTenantID(tenantID); err != nil {
		return nil, err
	}
	roles, err := s.roles.ListByTenant(ctx, tenantID)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "could not list roles")
	}
	return roles, nil
}

// LinkPrivilege attaches a privilege to a role. Linking an already linked
// privilege is a no-op.
func (s *Service) LinkPrivilege(ctx context.Context, tenantID id.TenantID, roleID id.RoleID, privilegeID id.PrivilegeID) (*models.Role, error) {
	ctx, span := tracer.Start(ctx, "directory.LinkPrivilege")
	defer span.End()

	if err := s.simulateLatency(ctx); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "link cancelled")
	}

	role, err := s.roles.FindByID(ctx, tenantID, roleID)
	if err != nil {
		return nil, translateNotFound(err, "role not found")
	}
	privilege, err := s.privileges.FindByID(ctx, tenantID, privilegeID)
	if err != nil {
		return nil, translateNotFound(err, "privilege not found")
	}

	if !role.HasPrivilege(privilegeID) {
		role.Privileges = append(role.Privileges, *privilege)
		role.UpdatedAt = s.now()
		if err := s.roles.Save(ctx, role); err != nil {
			return nil, dErrors.Wrap(err, dErrors.CodeInternal, "could not save role")
		}
	}
	return role, nil
}

// UnlinkPrivilege detaches a privilege from a role.
func (s *Service) UnlinkPrivilege(ctx context.Context, tenantID id.TenantID, roleID id.RoleID, privilegeID id.PrivilegeID) (*models.Role, error) {
	ctx, span := tracer.Start(ctx, "directory.UnlinkPrivilege")
	defer span.End()

	if err := s.simulateLatency(ctx); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "unlink cancelled")
	}

	role, err := s.roles.FindByID(ctx, tenantID, roleID)
	if err != nil {
		return nil, translateNotFound(err, "role not found")
	}

	kept := role.Privileges[:0]
	for _, p := range role.Privileges {
		if p.ID != privilegeID {
			kept = append(kept, p)
		}
	}
	role.Privileges = kept
	role.UpdatedAt = s.now()

	if err := s.roles.Save(ctx, role); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "could not save role")
	}
	return role, nil
}
