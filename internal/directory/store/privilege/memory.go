package privilege

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"aegis/internal/directory/models"
	"aegis/internal/sentinel"
	id "aegis/pkg/domain"
)

// InMemoryStore stores privileges in memory. Follows the store error
// contract: ErrNotFound when the entity does not exist.
type InMemoryStore struct {
	mu         sync.RWMutex
	privileges map[id.PrivilegeID]*models.Privilege
}

// New constructs an empty in-memory privilege store.
func New() *InMemoryStore {
	return &InMemoryStore{privileges: make(map[id.PrivilegeID]*models.Privilege)}
}

func (s *InMemoryStore) Save(_ context.Context, privilege *models.Privilege) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.privileges[privilege.ID] = privilege
	return nil
}

func (s *InMemoryStore) FindByID(_ context.Context, tenantID id.TenantID, privilegeID id.PrivilegeID) (*models.Privilege, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if privilege, ok := s.privileges[privilegeID]; ok && privilege.TenantID == tenantID {
		return privilege, nil
	}
	return nil, fmt.Errorf("privilege not found: %w", sentinel.ErrNotFound)
}

func (s *InMemoryStore) ListByTenant(_ context.Context, tenantID id.TenantID) ([]*models.Privilege, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	privileges := make([]*models.Privilege, 0)
	for _, privilege := range s.privileges {
		if privilege.TenantID == tenantID {
			privileges = append(privileges, privilege)
		}
	}
	sort.Slice(privileges, func(i, j int) bool { return privileges[i].Name < privileges[j].Name })
	return privileges, nil
}

func (s *InMemoryStore) Delete(_ context.Context, tenantID id.TenantID, privilegeID id.PrivilegeID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if privilege, ok := s.privileges[privilegeID]; ok && privilege.TenantID == tenantID {
		delete(s.privileges, privilegeID)
		return nil
	}
	return fmt.Errorf("privilege not found: %w", sentinel.ErrNotFound)
}
