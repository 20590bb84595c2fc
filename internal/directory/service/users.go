package service

import (
	"context"
	"errors"

	"aegis/internal/directory/models"
	"aegis/internal/sentinel"
	id "aegis/pkg/domain"
	dErrors "aegis/pkg/domain-errors"
	"aegis/pkg/secrets"
)

// CreateUser adds a user under the tenant. Usernames are globally unique
// because they serve as the login identifier.
func (s *Service) CreateUser(ctx context.Context, cmd *CreateUserCommand) (*models.User, error) {
	ctx, span := tracer.Start(ctx, "directory.CreateUser")
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

	if _, err := s.users.FindByUsername(ctx, cmd.Username); err == nil {
		return nil, dErrors.New(dErrors.CodeConflict, "username already taken")
	} else if !errors.Is(err, sentinel.ErrNotFound) {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "username lookup failed")
	}

	hash, err := secrets.Hash(cmd.Password)
	if err != nil {
		return nil, err
	}

	roles, err := s.resolveRoles(ctx, cmd.TenantID, cmd.RoleIDs)
	if err != nil {
		return nil, err
	}

	status := cmd.Status
	if status == "" {
		status = models.UserStatusPending
	}

	now := s.now()
	user := &models.User{
		ID:           id.NewUserID(),
		TenantID:     cmd.TenantID,
		Username:     cmd.Username,
		Email:        cmd.Email,
		FirstName:    cmd.FirstName,
		LastName:     cmd.LastName,
		PasswordHash: hash,
		Status:       status,
		Roles:        roles,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.users.Save(ctx, user); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "could not save user")
	}

	s.logger.InfoContext(ctx, "user created",
		"user_id", user.ID.String(),
		"tenant_id", user.TenantID.String(),
	)
	if s.metrics != nil {
		s.metrics.IncrementEntityWrite("user", "create")
	}
	return user, nil
}

// UpdateUser applies the command's non-nil fields. A non-nil RoleIDs
// replaces the user's entire role assignment.
func (s *Service) UpdateUser(ctx context.Context, tenantID id.TenantID, userID id.UserID, cmd *UpdateUserCommand) (*models.User, error) {
	ctx, span := tracer.Start(ctx, "directory.UpdateUser")
	defer span.End()

	if err := s.simulateLatency(ctx); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "update cancelled")
	}
	if err := cmd.Validate(); err != nil {
		return nil, err
	}

	user, err := s.users.FindByID(ctx, tenantID, userID)
	if err != nil {
		return nil, translateNotFound(err, "user not found")
	}

	if cmd.Email != nil {
		user.Email = *cmd.Email
	}
	if cmd.FirstName != nil {
		user.FirstName = *cmd.FirstName
	}
	if cmd.LastName != nil {
		user.LastName = *cmd.LastName
	}
	if cmd.Status != nil {
		user.Status = *cmd.Status
	}
	if cmd.RoleIDs != nil {
		roles, err := s.resolveRoles(ctx, tenantID, *cmd.RoleIDs)
		if err != nil {
			return nil, err
		}
		user.Roles = roles
	}
	user.UpdatedAt = s.now()

	if err := s.users.Save(ctx, user); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "could not save user")
	}
	if s.metrics != nil {
		s.metrics.IncrementEntityWrite("user", "update")
	}
	return user, nil
}

func (s *Service) DeleteUser(ctx context.Context, tenantID id.TenantID, userID id.UserID) error {
	ctx, span := tracer.Start(ctx, "directory.DeleteUser")
	defer span.End()

	if err := s.simulateLatency(ctx); err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "delete cancelled")
	}
	if err := s.users.Delete(ctx, tenantID, userID); err != nil {
		return translateNotFound(err, "user not found")
	}
	s.logger.InfoContext(ctx, "user deleted", "user_id", userID.String(), "tenant_id", tenantID.String())
	if s.metrics != nil {
		s.metrics.IncrementEntityWrite("user", "delete")
	}
	return nil
}

func (s *Service) ListUsers(ctx context.Context, tenantID id.TenantID) ([]*models.User, error) {
	ctx, span := tracer.Start(ctx, "directory.ListUsers")
	defer span.End()

	if err := s.simulateLatency(ctx); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "list cancelled")
	}
	if err := requireTenantID(tenantID); err != nil {
		return nil, err
	}
	users, err := s.users.ListByTenant(ctx, tenantID)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "could not list users")
	}
	return users, nil
}

// resolveRoles loads each role ID under the tenant, preserving order.
func (s *Service) resolveRoles(ctx context.Context, tenantID id.TenantID, roleIDs []id.RoleID) ([]models.Role, error) {
	roles := make([]models.Role, 0, len(roleIDs))
	for _, roleID := range roleIDs {
		role, err := s.roles.FindByID(ctx, tenantID, roleID)
		if err != nil {
			return nil, translateNotFound(err, "role not found")
		}
		roles = append(roles, *role)
	}
	return roles, nil
}
