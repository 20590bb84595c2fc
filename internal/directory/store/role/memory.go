package role

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"aegis/internal/directory/models"
	"aegis/internal/sentinel"
	id "aegis/pkg/domain"
)

// Error Contract:
// All store methods follow this error pattern:
// - Return ErrNotFound when the requested entity does not exist
// - Return nil for successful operations
// InMemoryStore stores roles in memory.
type InMemoryStore struct {
	mu    sync.RWMutex
	roles map[id.RoleID]*models.Role
}

// New constructs an empty in-memory role store.
func New() *InMemoryStore {
	return &InMemoryStore{roles: make(map[id.RoleID]*models.Role)}
}

func (s *InMemoryStore) Save(_ context.Context, role *models.Role) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.roles[role.ID] = role
	return nil
}

func (s *InMemoryStore) FindByID(_ context.Context, tenantID id.TenantID, roleID id.RoleID) (*models.Role, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if role, ok := s.roles[roleID]; ok && role.TenantID == tenantID {
		return role, nil
	}
	return nil, fmt.Errorf("role not found: %w", sentinel.ErrNotFound)
}

// FindByName resolves a role by its tenant-scoped name. Names are unique
// within a tenant; role checks elsewhere match on these names verbatim.
func (s *InMemoryStore) FindByName(_ context.Context, tenantID id.TenantID, name string) (*models.Role, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, role := range s.roles {
		if role.TenantID == tenantID && role.Name == name {
			return role, nil
		}
	}
	return nil, fmt.Errorf("role not found: %w", sentinel.ErrNotFound)
}

func (s *InMemoryStore) ListByTenant(_ context.Context, tenantID id.TenantID) ([]*models.Role, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	roles := make([]*models.Role, 0)
	for _, role := range s.roles {
		if role.TenantID == tenantID {
			roles = append(roles, role)
		}
	}
	sort.Slice(roles, func(i, j int) bool { return roles[i].Name < roles[j].Name })
	return roles, nil
}

func (s *InMemoryStore) Delete(_ context.Context, tenantID id.TenantID, roleID id.RoleID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if role, ok := s.roles[roleID]; ok && role.TenantID == tenantID {
		delete(s.roles, roleID)
		return nil
	}
	return fmt.Errorf("role not found: %w", sentinel.ErrNotFound)
}
