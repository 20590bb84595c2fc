package role

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	"aegis/internal/directory/models"
	"aegis/internal/sentinel"
	id "aegis/pkg/domain"
)

type InMemoryStoreSuite struct {
	suite.Suite
	store    *InMemoryStore
	tenantID id.TenantID
}

func TestInMemoryStoreSuite(t *testing.T) {
	suite.Run(t, new(InMemoryStoreSuite))
}

func (s *InMemoryStoreSuite) SetupTest() {
	s.store = New()
	s.tenantID = id.NewTenantID()
}

func (s *InMemoryStoreSuite) newRole(name string) *models.Role {
	return &models.Role{
		ID:          id.NewRoleID(),
		TenantID:    s.tenantID,
		Name:        name,
		Description: name + " role",
	}
}

func (s *InMemoryStoreSuite) TestSaveAndFind() {
	role := s.newRole("Manager")
	require.NoError(s.T(), s.store.Save(context.Background(), role))

	found, err := s.store.FindByID(context.Background(), s.tenantID, role.ID)
	require.NoError(s.T(), err)
	assert.Equal(s.T(), role, found)

	byName, err := s.store.FindByName(context.Background(), s.tenantID, "Manager")
	require.NoError(s.T(), err)
	assert.Equal(s.T(), role, byName)
}

func (s *InMemoryStoreSuite) TestFindByNameIsCaseSensitive() {
	require.NoError(s.T(), s.store.Save(context.Background(), s.newRole("Manager")))

	_, err := s.store.FindByName(context.Background(), s.tenantID, "manager")
	assert.ErrorIs(s.T(), err, sentinel.ErrNotFound)
}

func (s *InMemoryStoreSuite) TestTenantIsolation() {
	role := s.newRole("Super Admin")
	require.NoError(s.T(), s.store.Save(context.Background(), role))

	_, err := s.store.FindByID(context.Background(), id.NewTenantID(), role.ID)
	assert.ErrorIs(s.T(), err, sentinel.ErrNotFound)
}

func (s *InMemoryStoreSuite) TestListByTenantSorted() {
	require.NoError(s.T(), s.store.Save(context.Background(), s.newRole("User")))
	require.NoError(s.T(), s.store.Save(context.Background(), s.newRole("Manager")))

	roles, err := s.store.ListByTenant(context.Background(), s.tenantID)
	require.NoError(s.T(), err)
	require.Len(s.T(), roles, 2)
	assert.Equal(s.T(), "Manager", roles[0].Name)
}

func (s *InMemoryStoreSuite) TestDelete() {
	role := s.newRole("Temp")
	require.NoError(s.T(), s.store.Save(context.Background(), role))
	require.NoError(s.T(), s.store.Delete(context.Background(), s.tenantID, role.ID))

	err := s.store.Delete(context.Background(), s.tenantID, role.ID)
	assert.ErrorIs(s.T(), err, sentinel.ErrNotFound)
}
