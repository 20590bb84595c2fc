package handler

import (
	"time"

	"aegis/internal/directory/models"
	"aegis/internal/token"
)

// LoginResponse is returned by POST /auth/login.
type LoginResponse struct {
	Token string        `json:"token"`
	User  *UserResponse `json:"user"`
}

// ValidateResponse is returned by GET /auth/validate for a live token.
type ValidateResponse struct {
	UserID    string    `json:"user_id"`
	TenantID  string    `json:"tenant_id"`
	ExpiresAt time.Time `json:"expires_at"`
}

// UserResponse is the wire shape of a directory user. The password hash
// never appears here.
type UserResponse struct {
	ID        string    `json:"id"`
	TenantID  string    `json:"tenant_id"`
	Username  string    `json:"username"`
	Email     string    `json:"email"`
	FirstName string    `json:"first_name"`
	LastName  string    `json:"last_name"`
	Status    string    `json:"status"`
	Roles     []string  `json:"roles"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// RoleResponse is the wire shape of a role with its granted privileges.
type RoleResponse struct {
	ID          string              `json:"id"`
	TenantID    string              `json:"tenant_id"`
	Name        string              `json:"name"`
	Description string              `json:"description"`
	Privileges  []PrivilegeResponse `json:"privileges"`
	CreatedAt   time.Time           `json:"created_at"`
	UpdatedAt   time.Time           `json:"updated_at"`
}

// PrivilegeResponse is the wire shape of a privilege.
type PrivilegeResponse struct {
	ID          string    `json:"id"`
	TenantID    string    `json:"tenant_id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Category    string    `json:"category"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// LegalEntityResponse is the wire shape of a legal entity.
type LegalEntityResponse struct {
	ID                 string    `json:"id"`
	TenantID           string    `json:"tenant_id"`
	Name               string    `json:"name"`
	Type               string    `json:"type"`
	RegistrationNumber string    `json:"registration_number"`
	TaxID              string    `json:"tax_id"`
	Address            string    `json:"address"`
	Status             string    `json:"status"`
	CreatedAt          time.Time `json:"created_at"`
	UpdatedAt          time.Time `json:"updated_at"`
}

// Response mapping functions - convert domain objects to HTTP DTOs

func toUserResponse(u *models.User) *UserResponse {
	return &UserResponse{
		ID:        u.ID.String(),
		TenantID:  u.TenantID.String(),
		Username:  u.Username,
		Email:     u.Email,
		FirstName: u.FirstName,
		LastName:  u.LastName,
		Status:    string(u.Status),
		Roles:     u.RoleNames(),
		CreatedAt: u.CreatedAt,
		UpdatedAt: u.UpdatedAt,
	}
}

func toUserListResponse(users []*models.User) []*UserResponse {
	out := make([]*UserResponse, 0, len(users))
	for _, u := range users {
		out = append(out, toUserResponse(u))
	}
	return out
}

func toRoleResponse(r *models.Role) *RoleResponse {
	privileges := make([]PrivilegeResponse, 0, len(r.Privileges))
	for _, p := range r.Privileges {
		privileges = append(privileges, *toPrivilegeResponse(&p))
	}
	return &RoleResponse{
		ID:          r.ID.String(),
		TenantID:    r.TenantID.String(),
		Name:        r.Name,
		Description: r.Description,
		Privileges:  privileges,
		CreatedAt:   r.CreatedAt,
		UpdatedAt:   r.UpdatedAt,
	}
}

func toRoleListResponse(roles []*models.Role) []*RoleResponse {
	out := make([]*RoleResponse, 0, len(roles))
	for _, r := range roles {
		out = append(out, toRoleResponse(r))
	}
	return out
}

func toPrivilegeResponse(p *models.Privilege) *PrivilegeResponse {
	return &PrivilegeResponse{
		ID:          p.ID.String(),
		TenantID:    p.TenantID.String(),
		Name:        p.Name,
		Description: p.Description,
		Category:    p.Category,
		CreatedAt:   p.CreatedAt,
		UpdatedAt:   p.UpdatedAt,
	}
}

func toPrivilegeListResponse(privileges []*models.Privilege) []*PrivilegeResponse {
	out := make([]*PrivilegeResponse, 0, len(privileges))
	for _, p := range privileges {
		out = append(out, toPrivilegeResponse(p))
	}
	return out
}

func toLegalEntityResponse(e *models.LegalEntity) *LegalEntityResponse {
	return &LegalEntityResponse{
		ID:                 e.ID.String(),
		TenantID:           e.TenantID.String(),
		Name:               e.Name,
		Type:               string(e.Type),
		RegistrationNumber: e.RegistrationNumber,
		TaxID:              e.TaxID,
		Address:            e.Address,
		Status:             string(e.Status),
		CreatedAt:          e.CreatedAt,
		UpdatedAt:          e.UpdatedAt,
	}
}

func toLegalEntityListResponse(entities []*models.LegalEntity) []*LegalEntityResponse {
	out := make([]*LegalEntityResponse, 0, len(entities))
	for _, e := range entities {
		out = append(out, toLegalEntityResponse(e))
	}
	return out
}

func toValidateResponse(c *token.Claims) *ValidateResponse {
	return &ValidateResponse{
		UserID:    c.Subject.String(),
		TenantID:  c.TenantID.String(),
		ExpiresAt: c.ExpiresAt,
	}
}
