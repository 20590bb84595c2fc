package session

import (
	"aegis/internal/directory/models"
	id "aegis/pkg/domain"
)

// AuthUser is the authenticated identity held by the session. Roles carries
// role names only, in assignment order; privilege contents never reach the
// session layer.
type AuthUser struct {
	ID        id.UserID
	Username  string
	Email     string
	FirstName string
	LastName  string
	Roles     []string
	TenantID  id.TenantID
}

// HasRole reports whether the user holds the named role. Matching is a
// case-sensitive exact string comparison; there is no role hierarchy, so a
// check for "Manager" is not satisfied by "Super Admin".
func (u *AuthUser) HasRole(name string) bool {
	if u == nil {
		return false
	}
	for _, role := range u.Roles {
		if role == name {
			return true
		}
	}
	return false
}

// HasAnyRole reports whether the user holds at least one of the named roles.
func (u *AuthUser) HasAnyRole(names ...string) bool {
	for _, name := range names {
		if u.HasRole(name) {
			return true
		}
	}
	return false
}

// Snapshot is the full session state handed to subscribers. In every
// reachable state IsAuthenticated, a non-empty Token, and a non-nil User all
// agree.
type Snapshot struct {
	User            *AuthUser
	Token           string
	IsAuthenticated bool
	IsLoading       bool
}

func userFromModel(u *models.User) *AuthUser {
	return &AuthUser{
		ID:        u.ID,
		Username:  u.Username,
		Email:     u.Email,
		FirstName: u.FirstName,
		LastName:  u.LastName,
		Roles:     u.RoleNames(),
		TenantID:  u.TenantID,
	}
}
