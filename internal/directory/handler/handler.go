// Package handler exposes the directory over HTTP: the auth endpoints the
// session layer talks to, plus tenant-scoped admin CRUD.
package handler

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"aegis/internal/directory/device"
	"aegis/internal/directory/models"
	"aegis/internal/directory/service"
	"aegis/internal/token"
	id "aegis/pkg/domain"
	dErrors "aegis/pkg/domain-errors"
	"aegis/pkg/platform/httputil"
)

// Service defines the directory operations the HTTP layer needs.
// Returns domain objects, not HTTP response DTOs.
type Service interface {
	Authenticate(ctx context.Context, username, password, deviceName string) (*service.AuthResult, error)
	SignOut(ctx context.Context, tokenString string) error
	ValidateToken(ctx context.Context, tokenString string) (*token.Claims, error)
	FetchUser(ctx context.Context, tenantID id.TenantID, userID id.UserID) (*models.User, error)

	CreateUser(ctx context.Context, cmd *service.CreateUserCommand) (*models.User, error)
	UpdateUser(ctx context.Context, tenantID id.TenantID, userID id.UserID, cmd *service.UpdateUserCommand) (*models.User, error)
	DeleteUser(ctx context.Context, tenantID id.TenantID, userID id.UserID) error
	ListUsers(ctx context.Context, tenantID id.TenantID) ([]*models.User, error)

	CreateRole(ctx context.Context, cmd *service.CreateRoleCommand) (*models.Role, error)
	UpdateRole(ctx context.Context, tenantID id.TenantID, roleID id.RoleID, cmd *service.UpdateRoleCommand) (*models.Role, error)
	DeleteRole(ctx context.Context, tenantID id.TenantID, roleID id.RoleID) error
	GetRole(ctx context.Context, tenantID id.TenantID, roleID id.RoleID) (*models.Role, error)
	ListRoles(ctx context.Context, tenantID id.TenantID) ([]*models.Role, error)
	LinkPrivilege(ctx context.Context, tenantID id.TenantID, roleID id.RoleID, privilegeID id.PrivilegeID) (*models.Role, error)
	UnlinkPrivilege(ctx context.Context, tenantID id.TenantID, roleID id.RoleID, privilegeID id.PrivilegeID) (*models.Role, error)

	CreatePrivilege(ctx context.Context, cmd *service.CreatePrivilegeCommand) (*models.Privilege, error)
	UpdatePrivilege(ctx context.Context, tenantID id.TenantID, privilegeID id.PrivilegeID, cmd *service.UpdatePrivilegeCommand) (*models.Privilege, error)
	DeletePrivilege(ctx context.Context, tenantID id.TenantID, privilegeID id.PrivilegeID) error
	ListPrivileges(ctx context.Context, tenantID id.TenantID) ([]*models.Privilege, error)

	CreateLegalEntity(ctx context.Context, cmd *service.CreateLegalEntityCommand) (*models.LegalEntity, error)
	UpdateLegalEntity(ctx context.Context, tenantID id.TenantID, entityID id.EntityID, cmd *service.UpdateLegalEntityCommand) (*models.LegalEntity, error)
	DeleteLegalEntity(ctx context.Context, tenantID id.TenantID, entityID id.EntityID) error
	ListLegalEntities(ctx context.Context, tenantID id.TenantID) ([]*models.LegalEntity, error)
}

type Handler struct {
	service Service
	logger  *slog.Logger
}

func New(service Service, logger *slog.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

func (h *Handler) Register(r chi.Router) {
	r.Post("/auth/login", h.HandleLogin)
	r.Post("/auth/logout", h.HandleLogout)
	r.Get("/auth/validate", h.HandleValidate)

	r.Route("/tenants/{tenantID}", func(r chi.Router) {
		r.Route("/users", func(r chi.Router) {
			r.Get("/", h.HandleListUsers)
			r.Post("/", h.HandleCreateUser)
			r.Get("/{userID}", h.HandleGetUser)
			r.Put("/{userID}", h.HandleUpdateUser)
			r.Delete("/{userID}", h.HandleDeleteUser)
		})
		r.Route("/roles", func(r chi.Router) {
			r.Get("/", h.HandleListRoles)
			r.Post("/", h.HandleCreateRole)
			r.Get("/{roleID}", h.HandleGetRole)
			r.Put("/{roleID}", h.HandleUpdateRole)
			r.Delete("/{roleID}", h.HandleDeleteRole)
			r.Post("/{roleID}/privileges/{privilegeID}", h.HandleLinkPrivilege)
			r.Delete("/{roleID}/privileges/{privilegeID}", h.HandleUnlinkPrivilege)
		})
		r.Route("/privileges", func(r chi.Router) {
			r.Get("/", h.HandleListPrivileges)
			r.Post("/", h.HandleCreatePrivilege)
			r.Put("/{privilegeID}", h.HandleUpdatePrivilege)
			r.Delete("/{privilegeID}", h.HandleDeletePrivilege)
		})
		r.Route("/legal-entities", func(r chi.Router) {
			r.Get("/", h.HandleListLegalEntities)
			r.Post("/", h.HandleCreateLegalEntity)
			r.Put("/{entityID}", h.HandleUpdateLegalEntity)
			r.Delete("/{entityID}", h.HandleDeleteLegalEntity)
		})
	})
}

// HandleLogin authenticates a user and issues a bearer token.
func (h *Handler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := middleware.GetReqID(ctx)

	req, ok := httputil.DecodeAndPrepare[LoginRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	deviceName := device.DisplayName(r.UserAgent())
	result, err := h.service.Authenticate(ctx, req.Username, req.Password, deviceName)
	if err != nil {
		h.logger.WarnContext(ctx, "login failed", "error", err, "request_id", requestID)
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, &LoginResponse{
		Token: result.Token,
		User:  toUserResponse(result.User),
	})
}

// HandleLogout revokes the presented token. Always responds 204, a logout
// with a bad or already revoked token is not an error worth surfacing.
func (h *Handler) HandleLogout(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	tokenString, err := bearerToken(r)
	if err != nil {
		w.WriteHeader(http.StatusNoContent)
		return
	}

	if err := h.service.SignOut(ctx, tokenString); err != nil {
		h.logger.ErrorContext(ctx, "sign out failed", "error", err)
	}
	w.WriteHeader(http.StatusNoContent)
}

// HandleValidate checks the presented token and returns the identity it names.
func (h *Handler) HandleValidate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	tokenString, err := bearerToken(r)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	claims, err := h.service.ValidateToken(ctx, tokenString)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, toValidateResponse(claims))
}

// HandleCreateUser creates a user under the tenant.
func (h *Handler) HandleCreateUser(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := middleware.GetReqID(ctx)

	tenantID, ok := h.tenantID(w, r)
	if !ok {
		return
	}

	req, ok := httputil.DecodeAndPrepare[CreateUserRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	cmd, err := req.ToCommand(tenantID)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	user, err := h.service.CreateUser(ctx, cmd)
	if err != nil {
		h.logger.ErrorContext(ctx, "create user failed", "error", err, "request_id", requestID)
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteJSON(w, http.StatusCreated, toUserResponse(user))
}

// HandleGetUser returns a single user.
func (h *Handler) HandleGetUser(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	tenantID, ok := h.tenantID(w, r)
	if !ok {
		return
	}
	userID, err := id.ParseUserID(chi.URLParam(r, "userID"))
	if err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid user id"))
		return
	}

	user, err := h.service.FetchUser(ctx, tenantID, userID)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, toUserResponse(user))
}

// HandleUpdateUser applies a partial update to a user.
func (h *Handler) HandleUpdateUser(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := middleware.GetReqID(ctx)

	tenantID, ok := h.tenantID(w, r)
	if !ok {
		return
	}
	userID, err := id.ParseUserID(chi.URLParam(r, "userID"))
	if err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid user id"))
		return
	}

	req, ok := httputil.DecodeAndPrepare[UpdateUserRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	cmd, err := req.ToCommand()
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	user, err := h.service.UpdateUser(ctx, tenantID, userID, cmd)
	if err != nil {
		h.logger.ErrorContext(ctx, "update user failed", "error", err, "request_id", requestID, "user_id", userID)
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, toUserResponse(user))
}

// HandleDeleteUser removes a user.
func (h *Handler) HandleDeleteUser(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	tenantID, ok := h.tenantID(w, r)
	if !ok {
		return
	}
	userID, err := id.ParseUserID(chi.URLParam(r, "userID"))
	if err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid user id"))
		return
	}

	if err := h.service.DeleteUser(ctx, tenantID, userID); err != nil {
		httputil.WriteError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// HandleListUsers lists the tenant's users.
func (h *Handler) HandleListUsers(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	tenantID, ok := h.tenantID(w, r)
	if !ok {
		return
	}

	users, err := h.service.ListUsers(ctx, tenantID)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, toUserListResponse(users))
}

// HandleCreateRole creates a role under the tenant.
func (h *Handler) HandleCreateRole(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := middleware.GetReqID(ctx)

	tenantID, ok := h.tenantID(w, r)
	if !ok {
		return
	}

	req, ok := httputil.DecodeAndPrepare[CreateRoleRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	role, err := h.service.CreateRole(ctx, req.ToCommand(tenantID))
	if err != nil {
		h.logger.ErrorContext(ctx, "create role failed", "error", err, "request_id", requestID)
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteJSON(w, http.StatusCreated, toRoleResponse(role))
}

// HandleGetRole returns a single role with its privileges.
func (h *Handler) HandleGetRole(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	tenantID, ok := h.tenantID(w, r)
	if !ok {
		return
	}
	roleID, err := id.ParseRoleID(chi.URLParam(r, "roleID"))
	if err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid role id"))
		return
	}

	role, err := h.service.GetRole(ctx, tenantID, roleID)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, toRoleResponse(role))
}

// HandleUpdateRole applies a partial update to a role.
func (h *Handler) HandleUpdateRole(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := middleware.GetReqID(ctx)

	tenantID, ok := h.tenantID(w, r)
	if !ok {
		return
	}
	roleID, err := id.ParseRoleID(chi.URLParam(r, "roleID"))
	if err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid role id"))
		return
	}

	req, ok := httputil.DecodeAndPrepare[UpdateRoleRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	role, err := h.service.UpdateRole(ctx, tenantID, roleID, req.ToCommand())
	if err != nil {
		h.logger.ErrorContext(ctx, "update role failed", "error", err, "request_id", requestID, "role_id", roleID)
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, toRoleResponse(role))
}

// HandleDeleteRole removes a role.
func (h *Handler) HandleDeleteRole(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	tenantID, ok := h.tenantID(w, r)
	if !ok {
		return
	}
	roleID, err := id.ParseRoleID(chi.URLParam(r, "roleID"))
	if err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid role id"))
		return
	}

	if err := h.service.DeleteRole(ctx, tenantID, roleID); err != nil {
		httputil.WriteError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// HandleListRoles lists the tenant's roles.
func (h *Handler) HandleListRoles(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	tenantID, ok := h.tenantID(w, r)
	if !ok {
		return
	}

	roles, err := h.service.ListRoles(ctx, tenantID)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, toRoleListResponse(roles))
}

// HandleLinkPrivilege grants a privilege to a role.
func (h *Handler) HandleLinkPrivilege(w http.ResponseWriter, r *http.Request) {
	h.handlePrivilegeLink(w, r, h.service.LinkPrivilege)
}

// HandleUnlinkPrivilege removes a privilege from a role.
func (h *Handler) HandleUnlinkPrivilege(w http.ResponseWriter, r *http.Request) {
	h.handlePrivilegeLink(w, r, h.service.UnlinkPrivilege)
}

func (h *Handler) handlePrivilegeLink(
	w http.ResponseWriter,
	r *http.Request,
	op func(ctx context.Context, tenantID id.TenantID, roleID id.RoleID, privilegeID id.PrivilegeID) (*models.Role, error),
) {
	ctx := r.Context()

	tenantID, ok := h.tenantID(w, r)
	if !ok {
		return
	}
	roleID, err := id.ParseRoleID(chi.URLParam(r, "roleID"))
	if err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid role id"))
		return
	}
	privilegeID, err := id.ParsePrivilegeID(chi.URLParam(r, "privilegeID"))
	if err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid privilege id"))
		return
	}

	role, err := op(ctx, tenantID, roleID, privilegeID)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, toRoleResponse(role))
}

// HandleCreatePrivilege creates a privilege under the tenant.
func (h *Handler) HandleCreatePrivilege(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := middleware.GetReqID(ctx)

	tenantID, ok := h.tenantID(w, r)
	if !ok {
		return
	}

	req, ok := httputil.DecodeAndPrepare[CreatePrivilegeRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	privilege, err := h.service.CreatePrivilege(ctx, req.ToCommand(tenantID))
	if err != nil {
		h.logger.ErrorContext(ctx, "create privilege failed", "error", err, "request_id", requestID)
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteJSON(w, http.StatusCreated, toPrivilegeResponse(privilege))
}

// HandleUpdatePrivilege applies a partial update to a privilege.
func (h *Handler) HandleUpdatePrivilege(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := middleware.GetReqID(ctx)

	tenantID, ok := h.tenantID(w, r)
	if !ok {
		return
	}
	privilegeID, err := id.ParsePrivilegeID(chi.URLParam(r, "privilegeID"))
	if err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid privilege id"))
		return
	}

	req, ok := httputil.DecodeAndPrepare[UpdatePrivilegeRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	privilege, err := h.service.UpdatePrivilege(ctx, tenantID, privilegeID, req.ToCommand())
	if err != nil {
		h.logger.ErrorContext(ctx, "update privilege failed", "error", err, "request_id", requestID, "privilege_id", privilegeID)
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, toPrivilegeResponse(privilege))
}

// HandleDeletePrivilege removes a privilege.
func (h *Handler) HandleDeletePrivilege(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	tenantID, ok := h.tenantID(w, r)
	if !ok {
		return
	}
	privilegeID, err := id.ParsePrivilegeID(chi.URLParam(r, "privilegeID"))
	if err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid privilege id"))
		return
	}

	if err := h.service.DeletePrivilege(ctx, tenantID, privilegeID); err != nil {
		httputil.WriteError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// HandleListPrivileges lists the tenant's privileges.
func (h *Handler) HandleListPrivileges(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	tenantID, ok := h.tenantID(w, r)
	if !ok {
		return
	}

	privileges, err := h.service.ListPrivileges(ctx, tenantID)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, toPrivilegeListResponse(privileges))
}

// HandleCreateLegalEntity creates a legal entity under the tenant.
func (h *Handler) HandleCreateLegalEntity(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := middleware.GetReqID(ctx)

	tenantID, ok := h.tenantID(w, r)
	if !ok {
		return
	}

	req, ok := httputil.DecodeAndPrepare[CreateLegalEntityRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	entity, err := h.service.CreateLegalEntity(ctx, req.ToCommand(tenantID))
	if err != nil {
		h.logger.ErrorContext(ctx, "create legal entity failed", "error", err, "request_id", requestID)
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteJSON(w, http.StatusCreated, toLegalEntityResponse(entity))
}

// HandleUpdateLegalEntity applies a partial update to a legal entity.
func (h *Handler) HandleUpdateLegalEntity(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := middleware.GetReqID(ctx)

	tenantID, ok := h.tenantID(w, r)
	if !ok {
		return
	}
	entityID, err := id.ParseEntityID(chi.URLParam(r, "entityID"))
	if err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid legal entity id"))
		return
	}

	req, ok := httputil.DecodeAndPrepare[UpdateLegalEntityRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	entity, err := h.service.UpdateLegalEntity(ctx, tenantID, entityID, req.ToCommand())
	if err != nil {
		h.logger.ErrorContext(ctx, "update legal entity failed", "error", err, "request_id", requestID, "entity_id", entityID)
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, toLegalEntityResponse(entity))
}

// HandleDeleteLegalEntity removes a legal entity.
func (h *Handler) HandleDeleteLegalEntity(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	tenantID, ok := h.tenantID(w, r)
	if !ok {
		return
	}
	entityID, err := id.ParseEntityID(chi.URLParam(r, "entityID"))
	if err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid legal entity id"))
		return
	}

	if err := h.service.DeleteLegalEntity(ctx, tenantID, entityID); err != nil {
		httputil.WriteError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// HandleListLegalEntities lists the tenant's legal entities.
func (h *Handler) HandleListLegalEntities(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	tenantID, ok := h.tenantID(w, r)
	if !ok {
		return
	}

	entities, err := h.service.ListLegalEntities(ctx, tenantID)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, toLegalEntityListResponse(entities))
}

func (h *Handler) tenantID(w http.ResponseWriter, r *http.Request) (id.TenantID, bool) {
	tenantID, err := id.ParseTenantID(chi.URLParam(r, "tenantID"))
	if err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid tenant id"))
		return id.TenantID{}, false
	}
	return tenantID, true
}

func bearerToken(r *http.Request) (string, error) {
	header := r.Header.Get("Authorization")
	if header == "" {
		return "", dErrors.New(dErrors.CodeUnauthorized, "missing authorization header")
	}
	scheme, value, found := strings.Cut(header, " ")
	if !found || !strings.EqualFold(scheme, "Bearer") || value == "" {
		return "", dErrors.New(dErrors.CodeUnauthorized, "malformed authorization header")
	}
	return value, nil
}
