package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/suite"

	"aegis/internal/directory/seed"
	"aegis/internal/directory/service"
	legalentityStore "aegis/internal/directory/store/legalentity"
	privilegeStore "aegis/internal/directory/store/privilege"
	roleStore "aegis/internal/directory/store/role"
	tokenregStore "aegis/internal/directory/store/tokenreg"
	userStore "aegis/internal/directory/store/user"
	"aegis/internal/token"
	id "aegis/pkg/domain"
)

type HandlerSuite struct {
	suite.Suite
	router   http.Handler
	tenantID id.TenantID
}

func TestHandlerSuite(t *testing.T) {
	suite.Run(t, new(HandlerSuite))
}

func (s *HandlerSuite) SetupTest() {
	logger := slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil))

	users := userStore.New()
	roles := roleStore.New()
	privileges := privilegeStore.New()
	entities := legalentityStore.New()

	tenantID, err := seed.New(users, roles, privileges, entities, logger).SeedAll(context.Background())
	s.Require().NoError(err)
	s.tenantID = tenantID

	svc := service.New(
		users, roles, privileges, entities,
		tokenregStore.New(),
		token.NewService("test-signing-key", time.Hour),
		service.WithLogger(logger),
	)

	h := New(svc, logger)
	r := chi.NewRouter()
	h.Register(r)
	s.router = r
}

func (s *HandlerSuite) do(method, path string, body any) *httptest.ResponseRecorder {
	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		s.Require().NoError(err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)
	return rec
}

func (s *HandlerSuite) login(username, password string) *httptest.ResponseRecorder {
	return s.do(http.MethodPost, "/auth/login", &LoginRequest{
		Username: username,
		Password: password,
	})
}

func (s *HandlerSuite) TestLoginAndValidate() {
	rec := s.login("admin", "password")
	s.Require().Equal(http.StatusOK, rec.Code, rec.Body.String())

	var loginResp LoginResponse
	s.Require().NoError(json.Unmarshal(rec.Body.Bytes(), &loginResp))
	s.NotEmpty(loginResp.Token)
	s.Equal("admin", loginResp.User.Username)
	s.Contains(loginResp.User.Roles, "Super Admin")

	req := httptest.NewRequest(http.MethodGet, "/auth/validate", nil)
	req.Header.Set("Authorization", "Bearer "+loginResp.Token)
	rec = httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)
	s.Require().Equal(http.StatusOK, rec.Code)

	var validateResp ValidateResponse
	s.Require().NoError(json.Unmarshal(rec.Body.Bytes(), &validateResp))
	s.Equal(loginResp.User.ID, validateResp.UserID)
	s.Equal(s.tenantID.String(), validateResp.TenantID)
}

func (s *HandlerSuite) TestLoginRejectsBadCredentials() {
	rec := s.login("admin", "wrong")
	s.Equal(http.StatusUnauthorized, rec.Code)
	s.Contains(rec.Body.String(), "Invalid credentials")
}

func (s *HandlerSuite) TestLogoutRevokesToken() {
	rec := s.login("manager", "password")
	s.Require().Equal(http.StatusOK, rec.Code)

	var loginResp LoginResponse
	s.Require().NoError(json.Unmarshal(rec.Body.Bytes(), &loginResp))

	req := httptest.NewRequest(http.MethodPost, "/auth/logout", nil)
	req.Header.Set("Authorization", "Bearer "+loginResp.Token)
	rec2 := httptest.NewRecorder()
	s.router.ServeHTTP(rec2, req)
	s.Equal(http.StatusNoContent, rec2.Code)

	req = httptest.NewRequest(http.MethodGet, "/auth/validate", nil)
	req.Header.Set("Authorization", "Bearer "+loginResp.Token)
	rec3 := httptest.NewRecorder()
	s.router.ServeHTTP(rec3, req)
	s.Equal(http.StatusUnauthorized, rec3.Code)
}

func (s *HandlerSuite) TestLogoutWithoutTokenStillSucceeds() {
	rec := s.do(http.MethodPost, "/auth/logout", nil)
	s.Equal(http.StatusNoContent, rec.Code)
}

func (s *HandlerSuite) TestValidateRequiresBearerToken() {
	rec := s.do(http.MethodGet, "/auth/validate", nil)
	s.Equal(http.StatusUnauthorized, rec.Code)
}

func (s *HandlerSuite) TestUserCRUD() {
	base := fmt.Sprintf("/tenants/%s/users", s.tenantID)

	rec := s.do(http.MethodPost, base, &CreateUserRequest{
		Username:  "new.hire",
		Email:     "new.hire@example.com",
		FirstName: "New",
		LastName:  "Hire",
		Password:  "secret",
	})
	s.Require().Equal(http.StatusCreated, rec.Code, rec.Body.String())

	var created UserResponse
	s.Require().NoError(json.Unmarshal(rec.Body.Bytes(), &created))
	s.Equal("pending", created.Status)

	rec = s.do(http.MethodGet, base+"/"+created.ID, nil)
	s.Require().Equal(http.StatusOK, rec.Code)

	email := "renamed@example.com"
	rec = s.do(http.MethodPut, base+"/"+created.ID, &UpdateUserRequest{Email: &email})
	s.Require().Equal(http.StatusOK, rec.Code)

	var updated UserResponse
	s.Require().NoError(json.Unmarshal(rec.Body.Bytes(), &updated))
	s.Equal(email, updated.Email)

	rec = s.do(http.MethodDelete, base+"/"+created.ID, nil)
	s.Equal(http.StatusNoContent, rec.Code)

	rec = s.do(http.MethodGet, base+"/"+created.ID, nil)
	s.Equal(http.StatusNotFound, rec.Code)
}

func (s *HandlerSuite) TestListUsersSeeded() {
	rec := s.do(http.MethodGet, fmt.Sprintf("/tenants/%s/users", s.tenantID), nil)
	s.Require().Equal(http.StatusOK, rec.Code)

	var users []*UserResponse
	s.Require().NoError(json.Unmarshal(rec.Body.Bytes(), &users))
	s.Len(users, 3)
}

func (s *HandlerSuite) TestRolePrivilegeLinking() {
	rolesBase := fmt.Sprintf("/tenants/%s/roles", s.tenantID)

	rec := s.do(http.MethodPost, rolesBase, &CreateRoleRequest{Name: "Auditor"})
	s.Require().Equal(http.StatusCreated, rec.Code, rec.Body.String())
	var role RoleResponse
	s.Require().NoError(json.Unmarshal(rec.Body.Bytes(), &role))

	rec = s.do(http.MethodPost, fmt.Sprintf("/tenants/%s/privileges", s.tenantID), &CreatePrivilegeRequest{
		Name:     "audit.read",
		Category: "Auditing",
	})
	s.Require().Equal(http.StatusCreated, rec.Code)
	var privilege PrivilegeResponse
	s.Require().NoError(json.Unmarshal(rec.Body.Bytes(), &privilege))

	linkPath := fmt.Sprintf("%s/%s/privileges/%s", rolesBase, role.ID, privilege.ID)
	rec = s.do(http.MethodPost, linkPath, nil)
	s.Require().Equal(http.StatusOK, rec.Code)

	var linked RoleResponse
	s.Require().NoError(json.Unmarshal(rec.Body.Bytes(), &linked))
	s.Len(linked.Privileges, 1)

	rec = s.do(http.MethodDelete, linkPath, nil)
	s.Require().Equal(http.StatusOK, rec.Code)

	var unlinked RoleResponse
	s.Require().NoError(json.Unmarshal(rec.Body.Bytes(), &unlinked))
	s.Empty(unlinked.Privileges)
}

func (s *HandlerSuite) TestLegalEntityLifecycle() {
	base := fmt.Sprintf("/tenants/%s/legal-entities", s.tenantID)

	rec := s.do(http.MethodPost, base, &CreateLegalEntityRequest{
		Name: "Vertex Labs Inc",
		Type: "corporation",
	})
	s.Require().Equal(http.StatusCreated, rec.Code, rec.Body.String())

	var created LegalEntityResponse
	s.Require().NoError(json.Unmarshal(rec.Body.Bytes(), &created))
	s.Equal("pending", created.Status)

	status := "active"
	rec = s.do(http.MethodPut, base+"/"+created.ID, &UpdateLegalEntityRequest{Status: &status})
	s.Require().Equal(http.StatusOK, rec.Code)

	rec = s.do(http.MethodGet, base, nil)
	s.Require().Equal(http.StatusOK, rec.Code)
	s.True(strings.Contains(rec.Body.String(), "Vertex Labs Inc"))
}

func (s *HandlerSuite) TestInvalidTenantIDRejected() {
	rec := s.do(http.MethodGet, "/tenants/not-a-uuid/users", nil)
	s.Equal(http.StatusBadRequest, rec.Code)
}
