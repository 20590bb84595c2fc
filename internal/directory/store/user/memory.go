package user

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
// - Return wrapped errors with context for infrastructure failures
// InMemoryStore stores users in memory.
type InMemoryStore struct {
	mu    sync.RWMutex
	users map[id.UserID]*models.User
}

// New constructs an empty in-memory user store.
func New() *InMemoryStore {
	return &InMemoryStore{users: make(map[id.UserID]*models.User)}
}

func (s *InMemoryStore) Save(_ context.Context, user *models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.users[user.ID] = user
	return nil
}

func (s *InMemoryStore) FindByID(_ context.Context, tenantID id.TenantID, userID id.UserID) (*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if user, ok := s.users[userID]; ok && user.TenantID == tenantID {
		return user, nil
	}
	return nil, fmt.Errorf("user not found: %w", sentinel.ErrNotFound)
}

// FindByUsername looks a user up across tenants. Usernames are globally
// unique because they are the login identifier.
func (s *InMemoryStore) FindByUsername(_ context.Context, username string) (*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, user := range s.users {
		if user.Username == username {
			return user, nil
		}
	}
	return nil, fmt.Errorf("user not found: %w", sentinel.ErrNotFound)
}

func (s *InMemoryStore) ListByTenant(_ context.Context, tenantID id.TenantID) ([]*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	users := make([]*models.User, 0)
	for _, user := range s.users {
		if user.TenantID == tenantID {
			users = append(users, user)
		}
	}
	sort.Slice(users, func(i, j int) bool { return users[i].Username < users[j].Username })
	return users, nil
}

func (s *InMemoryStore) Delete(_ context.Context, tenantID id.TenantID, userID id.UserID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if user, ok := s.users[userID]; ok && user.TenantID == tenantID {
		delete(s.users, userID)
		return nil
	}
	return fmt.Errorf("user not found: %w", sentinel.ErrNotFound)
}
