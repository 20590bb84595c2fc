package legalentity

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"aegis/internal/directory/models"
	"aegis/internal/sentinel"
	id "aegis/pkg/domain"
)

// InMemoryStore stores legal entities in memory. Follows the store error
// contract: ErrNotFound when the entity does not exist.
type InMemoryStore struct {
	mu       sync.RWMutex
	entities map[id.EntityID]*models.LegalEntity
}

// New constructs an empty in-memory legal entity store.
func New() *InMemoryStore {
	return &InMemoryStore{entities: make(map[id.EntityID]*models.LegalEntity)}
}

func (s *InMemoryStore) Save(_ context.Context, entity *models.LegalEntity) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entities[entity.ID] = entity
	return nil
}

func (s *InMemoryStore) FindByID(_ context.Context, tenantID id.TenantID, entityID id.EntityID) (*models.LegalEntity, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if entity, ok := s.entities[entityID]; ok && entity.TenantID == tenantID {
		return entity, nil
	}
	return nil, fmt.Errorf("legal entity not found: %w", sentinel.ErrNotFound)
}

func (s *InMemoryStore) ListByTenant(_ context.Context, tenantID id.TenantID) ([]*models.LegalEntity, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	entities := make([]*models.LegalEntity, 0)
	for _, entity := range s.entities {
		if entity.TenantID == tenantID {
			entities = append(entities, entity)
		}
	}
	sort.Slice(entities, func(i, j int) bool { return entities[i].Name < entities[j].Name })
	return entities, nil
}

func (s *InMemoryStore) Delete(_ context.Context, tenantID id.TenantID, entityID id.EntityID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if entity, ok := s.entities[entityID]; ok && entity.TenantID == tenantID {
		delete(s.entities, entityID)
		return nil
	}
	return fmt.Errorf("legal entity not found: %w", sentinel.ErrNotFound)
}
