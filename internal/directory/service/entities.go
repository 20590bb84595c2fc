package service

import (
	"context"

	"aegis/internal/directory/models"
	id "aegis/pkg/domain"
	dErrors "aegis/pkg/domain-errors"
)

func (s *Service) CreateLegalEntity(ctx context.Context, cmd *CreateLegalEntityCommand) (*models.LegalEntity, error) {
	ctx, span := tracer.Start(ctx, "directory.CreateLegalEntity")
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

	status := cmd.Status
	if status == "" {
		status = models.EntityStatusPending
	}

	now := s.now()
	entity := &models.LegalEntity{
		ID:                 id.NewEntityID(),
		TenantID:           cmd.TenantID,
		Name:               cmd.Name,
		Type:               cmd.Type,
		RegistrationNumber: cmd.RegistrationNumber,
		TaxID:              cmd.TaxID,
		Address:            cmd.Address,
		Status:             status,
		CreatedAt:          now,
		UpdatedAt:          now,
	}
	if err := s.entities.Save(ctx, entity); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "could not save legal entity")
	}

	s.logger.InfoContext(ctx, "legal entity created", "entity_id", entity.ID.String(), "name", entity.Name)
	if s.metrics != nil {
		s.metrics.IncrementEntityWrite("legal_entity", "create")
	}
	return entity, nil
}

func (s *Service) UpdateLegalEntity(ctx context.Context, tenantID id.TenantID, entityID id.EntityID, cmd *UpdateLegalEntityCommand) (*models.LegalEntity, error) {
	ctx, span := tracer.Start(ctx, "directory.UpdateLegalEntity")
	defer span.End()

	if err := s.simulateLatency(ctx); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "update cancelled")
	}
	if err := cmd.Validate(); err != nil {
		return nil, err
	}

	entity, err := s.entities.FindByID(ctx, tenantID, entityID)
	if err != nil {
		return nil, translateNotFound(err, "legal entity not found")
	}

	if cmd.Name != nil {
		entity.Name = *cmd.Name
	}
	if cmd.Type != nil {
		entity.Type = *cmd.Type
	}
	if cmd.RegistrationNumber != nil {
		entity.RegistrationNumber = *cmd.RegistrationNumber
	}
	if cmd.TaxID != nil {
		entity.TaxID = *cmd.TaxID
	}
	if cmd.Address != nil {
		entity.Address = *cmd.Address
	}
	if cmd.Status != nil {
		entity.Status = *cmd.Status
	}
	entity.UpdatedAt = s.now()

	if err := s.entities.Save(ctx, entity); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "could not save legal entity")
	}
	if s.metrics != nil {
		s.metrics.IncrementEntityWrite("legal_entity", "update")
	}
	return entity, nil
}

func (s *Service) DeleteLegalEntity(ctx context.Context, tenantID id.TenantID, entityID id.EntityID) error {
	ctx, span := tracer.Start(ctx, "directory.DeleteLegalEntity")
	defer span.End()

	if err := s.simulateLatency(ctx); err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "delete cancelled")
	}
	if err := s.entities.Delete(ctx, tenantID, entityID); err != nil {
		return translateNotFound(err, "legal entity not found")
	}
	if s.metrics != nil {
		s.metrics.IncrementEntityWrite("legal_entity", "delete")
	}
	return nil
}

func (s *Service) ListLegalEntities(ctx context.Context, tenantID id.TenantID) ([]*models.LegalEntity, error) {
	ctx, span := tracer.Start(ctx, "directory.ListLegalEntities")
	defer span.End()

	if err := s.simulateLatency(ctx); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "list cancelled")
	}
	if err := requireTenantID(tenantID); err != nil {
		return nil, err
	}
	entities, err := s.entities.ListByTenant(ctx, tenantID)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "could not list legal entities")
	}
	return entities, nil
}
