package service

import (
	"context"

	"aegis/internal/directory/models"
	id "aegis/pkg/domain"
	dErrors "aegis/pkg/domain-errors"
)

func (s *Service) CreatePrivilege(ctx context.Context, cmd *CreatePrivilegeCommand) (*models.Privilege, error) {
	ctx, span := tracer.Start(ctx, "directory.CreatePrivilege")
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

	now := s.now()
	privilege := &models.Privilege{
		ID:          id.NewPrivilegeID(),
		TenantID:    cmd.TenantID,
		Name:        cmd.Name,
		Description: cmd.Description,
		Category:    cmd.Category,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.privileges.Save(ctx, privilege); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "could not save privilege")
	}

	s.logger.InfoContext(ctx, "privilege created", "privilege_id", privilege.ID.String(), "name", privilege.Name)
	if s.metrics != nil {
		s.metrics.IncrementEntityWrite("privilege", "create")
	}
	return privilege, nil
}

func (s *Service) UpdatePrivilege(ctx context.Context, tenantID id.TenantID, privilegeID id.PrivilegeID, cmd *UpdatePrivilegeCommand) (*models.Privilege, error) {
	ctx, span := tracer.Start(ctx, "directory.UpdatePrivilege")
	defer span.End()

	if err := s.simulateLatency(ctx); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "update cancelled")
	}
	if err := cmd.Validate(); err != nil {
		return nil, err
	}

	privilege, err := s.privileges.FindByID(ctx, tenantID, privilegeID)
	if err != nil {
		return nil, translateNotFound(err, "privilege not found")
	}

	if cmd.Name != nil {
		privilege.Name = *cmd.Name
	}
	if cmd.Description != nil {
		privilege.Description = *cmd.Description
	}
	if cmd.Category != nil {
		privilege.Category = *cmd.Category
	}
	privilege.UpdatedAt = s.now()

	if err := s.privileges.Save(ctx, privilege); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "could not save privilege")
	}
	if s.metrics != nil {
		s.metrics.IncrementEntityWrite("privilege", "update")
	}
	return privilege, nil
}

func (s *Service) DeletePrivilege(ctx context.Context, tenantID id.TenantID, privilegeID id.PrivilegeID) error {
	ctx, span := tracer.Start(ctx, "directory.DeletePrivilege")
	defer span.End()

	if err := s.simulateLatency(ctx); err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "delete cancelled")
	}
	if err := s.privileges.Delete(ctx, tenantID, privilegeID); err != nil {
		return translateNotFound(err, "privilege not found")
	}
	if s.metrics != nil {
		s.metrics.IncrementEntityWrite("privilege", "delete")
	}
	return nil
}

func (s *Service) ListPrivileges(ctx context.Context, tenantID id.TenantID) ([]*models.Privilege, error) {
	ctx, span := tracer.Start(ctx, "directory.ListPrivileges")
	defer span.End()

	if err := s.simulateLatency(ctx); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "list cancelled")
	}
	if err := requireTenantID(tenantID); err != nil {
		return nil, err
	}
	privileges, err := s.privileges.ListByTenant(ctx, tenantID)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "could not list privileges")
	}
	return privileges, nil
}
