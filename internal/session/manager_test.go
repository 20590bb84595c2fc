package session

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"

	"aegis/internal/directory/models"
	"aegis/internal/directory/service"
	"aegis/internal/session/credstore"
	"aegis/internal/session/mocks"
	"aegis/internal/token"
	id "aegis/pkg/domain"
	dErrors "aegis/pkg/domain-errors"
)

type ManagerSuite struct {
	suite.Suite
	ctrl      *gomock.Controller
	directory *mocks.MockDirectory
	store     *credstore.InMemoryStore
	creds     *credstore.Credentials
	manager   *Manager
	now       time.Time
	userID    id.UserID
	tenantID  id.TenantID
}

func TestManagerSuite(t *testing.T) {
	suite.Run(t, new(ManagerSuite))
}

func (s *ManagerSuite) SetupTest() {
	s.ctrl = gomock.NewController(s.T())
	s.directory = mocks.NewMockDirectory(s.ctrl)
	s.now = time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	s.store = credstore.NewInMemory().WithClock(func() time.Time { return s.now })
	s.creds = credstore.NewCredentials(s.store)
	s.userID = id.NewUserID()
	s.tenantID = id.NewTenantID()

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	s.manager = New(s.directory, s.creds,
		WithLogger(logger),
		WithClock(func() time.Time { return s.now }),
	)
}

func (s *ManagerSuite) adminUser() *models.User {
	return &models.User{
		ID:       s.userID,
		TenantID: s.tenantID,
		Username: "admin",
		Email:    "admin@example.com",
		Status:   models.UserStatusActive,
		Roles:    []models.Role{{Name: "Super Admin"}},
	}
}

func (s *ManagerSuite) expectLogin(tokenString string) {
	s.directory.EXPECT().
		Authenticate(gomock.Any(), "admin", "password", "").
		Return(&service.AuthResult{Token: tokenString, User: s.adminUser()}, nil)
}

// checkInvariant asserts the core state invariant: authenticated, token
// present, and user present always agree.
func (s *ManagerSuite) checkInvariant() {
	snap := s.manager.Snapshot()
	s.Equal(snap.IsAuthenticated, snap.Token != "")
	s.Equal(snap.IsAuthenticated, snap.User != nil)
}

func (s *ManagerSuite) TestStartsBootstrapping() {
	snap := s.manager.Snapshot()
	s.True(snap.IsLoading)
	s.False(snap.IsAuthenticated)
}

func (s *ManagerSuite) TestBootstrapWithoutCredential() {
	s.manager.Bootstrap(context.Background())

	snap := s.manager.Snapshot()
	s.False(snap.IsLoading)
	s.False(snap.IsAuthenticated)
	s.checkInvariant()
}

func (s *ManagerSuite) TestBootstrapWithLiveCredential() {
	s.creds.Save("stored-token", s.now.Add(time.Hour), credstore.TierDurable)
	s.directory.EXPECT().
		ValidateToken(gomock.Any(), "stored-token").
		Return(&token.Claims{Subject: s.userID, TenantID: s.tenantID, ExpiresAt: s.now.Add(time.Hour)}, nil)
	s.directory.EXPECT().
		FetchUser(gomock.Any(), s.tenantID, s.userID).
		Return(s.adminUser(), nil)

	s.manager.Bootstrap(context.Background())

	snap := s.manager.Snapshot()
	s.True(snap.IsAuthenticated)
	s.False(snap.IsLoading)
	s.Equal("stored-token", snap.Token)
	s.Equal("admin", snap.User.Username)
	s.checkInvariant()
}

func (s *ManagerSuite) TestBootstrapLocallyExpiredCredential() {
	// Expired before the remote check, so the directory is never called.
	s.creds.Save("stale-token", s.now.Add(-time.Minute), credstore.TierDurable)

	s.manager.Bootstrap(context.Background())

	snap := s.manager.Snapshot()
	s.False(snap.IsAuthenticated)
	s.False(snap.IsLoading)
	_, ok := s.creds.Load()
	s.False(ok, "rejected credential must be cleared")
	s.checkInvariant()
}

func (s *ManagerSuite) TestBootstrapRemoteRejectionIsAbsorbed() {
	s.creds.Save("revoked-token", s.now.Add(time.Hour), credstore.TierEphemeral)
	s.directory.EXPECT().
		ValidateToken(gomock.Any(), "revoked-token").
		Return(nil, dErrors.New(dErrors.CodeTokenExpired, "token revoked"))

	s.manager.Bootstrap(context.Background())

	snap := s.manager.Snapshot()
	s.False(snap.IsAuthenticated)
	s.False(snap.IsLoading)
	_, ok := s.creds.Load()
	s.False(ok)
}

func (s *ManagerSuite) TestLoginStoresEphemeralByDefault() {
	s.expectLogin("mock-jwt-token-1")

	err := s.manager.Login(context.Background(), "admin", "password", false)
	s.Require().NoError(err)

	s.True(s.manager.HasRole("Super Admin"))
	s.False(s.manager.HasRole("Manager"))

	_, ok := s.store.Get("auth_token", credstore.TierDurable)
	s.False(ok, "token must not reach the durable tier without rememberMe")
	stored, ok := s.store.Get("auth_token", credstore.TierEphemeral)
	s.Require().True(ok)
	s.Equal("mock-jwt-token-1", stored)
	s.checkInvariant()
}

func (s *ManagerSuite) TestLoginRememberMeUsesDurableTier() {
	s.expectLogin("mock-jwt-token-2")

	err := s.manager.Login(context.Background(), "admin", "password", true)
	s.Require().NoError(err)

	_, ok := s.store.Get("auth_token", credstore.TierEphemeral)
	s.False(ok)

	cred, ok := s.creds.Load()
	s.Require().True(ok)
	s.Equal("mock-jwt-token-2", cred.Token)
	s.Equal(s.now.Add(credstore.DurableRetention).UnixMilli(), cred.ExpiresAt.UnixMilli())
}

func (s *ManagerSuite) TestFailedLoginPreservesPriorSession() {
	s.expectLogin("token-a")
	s.Require().NoError(s.manager.Login(context.Background(), "admin", "password", false))

	s.directory.EXPECT().
		Authenticate(gomock.Any(), "admin", "wrong", "").
		Return(nil, dErrors.New(dErrors.CodeUnauthorized, "Invalid credentials"))

	err := s.manager.Login(context.Background(), "admin", "wrong", false)
	s.Require().Error(err)
	s.Equal("Invalid credentials", err.Error())

	snap := s.manager.Snapshot()
	s.True(snap.IsAuthenticated, "failed login must not deauthenticate")
	s.False(snap.IsLoading)
	s.Equal("admin", snap.User.Username)
	s.Equal("token-a", snap.Token)
	s.checkInvariant()
}

func (s *ManagerSuite) TestLoginFailureDefaultMessage() {
	s.directory.EXPECT().
		Authenticate(gomock.Any(), "admin", "password", "").
		Return(nil, &dErrors.Error{Code: dErrors.CodeInternal})

	err := s.manager.Login(context.Background(), "admin", "password", false)
	s.Require().Error(err)
	s.Equal("Login failed", err.Error())
}

func (s *ManagerSuite) TestLogoutClearsEverything() {
	s.expectLogin("token-a")
	s.Require().NoError(s.manager.Login(context.Background(), "admin", "password", true))

	s.directory.EXPECT().SignOut(gomock.Any(), "token-a").Return(nil)

	s.manager.Logout(context.Background())

	snap := s.manager.Snapshot()
	s.False(snap.IsAuthenticated)
	s.False(snap.IsLoading)
	s.Nil(snap.User)
	s.Empty(snap.Token)
	_, ok := s.store.Get("auth_token", credstore.TierDurable)
	s.False(ok)
	_, ok = s.store.Get("auth_token", credstore.TierEphemeral)
	s.False(ok)
}

func (s *ManagerSuite) TestLogoutSurvivesRemoteFailure() {
	s.expectLogin("token-a")
	s.Require().NoError(s.manager.Login(context.Background(), "admin", "password", false))

	s.directory.EXPECT().
		SignOut(gomock.Any(), "token-a").
		Return(errors.New("network down"))

	s.manager.Logout(context.Background())

	snap := s.manager.Snapshot()
	s.False(snap.IsAuthenticated)
	_, ok := s.creds.Load()
	s.False(ok, "both tiers empty even when remote sign-out failed")
	s.checkInvariant()
}

func (s *ManagerSuite) TestRefreshWithoutCredentialIsNoOp() {
	s.manager.Bootstrap(context.Background())

	err := s.manager.RefreshToken(context.Background())
	s.NoError(err)
	s.False(s.manager.Snapshot().IsAuthenticated)
}

func (s *ManagerSuite) TestRefreshValidCredentialKeepsSession() {
	s.expectLogin("token-a")
	s.Require().NoError(s.manager.Login(context.Background(), "admin", "password", false))

	s.directory.EXPECT().
		ValidateToken(gomock.Any(), "token-a").
		Return(&token.Claims{Subject: s.userID, TenantID: s.tenantID, ExpiresAt: s.now.Add(time.Hour)}, nil)

	s.Require().NoError(s.manager.RefreshToken(context.Background()))
	s.True(s.manager.Snapshot().IsAuthenticated)
	s.Equal("token-a", s.manager.Snapshot().Token)
}

func (s *ManagerSuite) TestRefreshExpiredCredentialClearsSession() {
	s.expectLogin("token-a")
	s.Require().NoError(s.manager.Login(context.Background(), "admin", "password", false))

	// Rewrite the stored expiry into the past so the local expiry check
	// fails without any remote call.
	s.creds.Save("token-a", s.now.Add(-time.Minute), credstore.TierEphemeral)

	err := s.manager.RefreshToken(context.Background())
	s.Require().Error(err)
	s.True(dErrors.HasCode(err, dErrors.CodeTokenExpired))
	s.Equal("Token expired", err.Error())
	s.False(s.manager.Snapshot().IsAuthenticated)
	s.checkInvariant()
}

func (s *ManagerSuite) TestRefreshRemoteRejectionClearsSession() {
	s.expectLogin("token-a")
	s.Require().NoError(s.manager.Login(context.Background(), "admin", "password", false))

	s.directory.EXPECT().
		ValidateToken(gomock.Any(), "token-a").
		Return(nil, dErrors.New(dErrors.CodeTokenExpired, "token revoked"))

	err := s.manager.RefreshToken(context.Background())
	s.Require().Error(err)
	s.True(dErrors.HasCode(err, dErrors.CodeTokenExpired))

	_, ok := s.creds.Load()
	s.False(ok)
	s.False(s.manager.Snapshot().IsAuthenticated)
}

func (s *ManagerSuite) TestExpiryBoundary() {
	s.Run("one millisecond before expiry passes local validation", func() {
		s.creds.Save("edge-token", s.now.Add(time.Millisecond), credstore.TierEphemeral)
		s.directory.EXPECT().
			ValidateToken(gomock.Any(), "edge-token").
			Return(&token.Claims{Subject: s.userID, TenantID: s.tenantID}, nil)

		s.NoError(s.manager.RefreshToken(context.Background()))
	})

	s.Run("exactly at expiry fails locally", func() {
		s.creds.Save("edge-token", s.now, credstore.TierEphemeral)

		err := s.manager.RefreshToken(context.Background())
		s.Require().Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeTokenExpired))
	})
}

func (s *ManagerSuite) TestRoleChecksAreFlat() {
	user := s.adminUser()
	user.Roles = []models.Role{{Name: "Manager"}}
	s.directory.EXPECT().
		Authenticate(gomock.Any(), "manager", "password", "").
		Return(&service.AuthResult{Token: "token-m", User: user}, nil)

	s.Require().NoError(s.manager.Login(context.Background(), "manager", "password", false))

	s.True(s.manager.HasRole("Manager"))
	s.False(s.manager.HasAnyRole("Super Admin"), "no implicit role hierarchy")
	s.True(s.manager.HasAnyRole("Super Admin", "Manager"))
	s.False(s.manager.HasRole("manager"), "matching is case-sensitive")
}

func (s *ManagerSuite) TestRoleChecksWhileUnauthenticated() {
	s.manager.Bootstrap(context.Background())

	s.False(s.manager.HasRole("Super Admin"))
	s.False(s.manager.HasAnyRole("Super Admin", "Manager"))
}

func (s *ManagerSuite) TestSubscribersSeeTransitions() {
	var snapshots []Snapshot
	unsubscribe := s.manager.Subscribe(func(snap Snapshot) {
		snapshots = append(snapshots, snap)
	})
	defer unsubscribe()

	s.expectLogin("token-a")
	s.Require().NoError(s.manager.Login(context.Background(), "admin", "password", false))

	// Loading transition, then the authenticated transition.
	s.Require().Len(snapshots, 2)
	s.True(snapshots[0].IsLoading)
	s.True(snapshots[1].IsAuthenticated)
	s.False(snapshots[1].IsLoading)
}

func (s *ManagerSuite) TestUnsubscribeFromWithinNotification() {
	var first, second int
	var unsubscribeFirst func()
	unsubscribeFirst = s.manager.Subscribe(func(Snapshot) {
		first++
		unsubscribeFirst()
	})
	s.manager.Subscribe(func(Snapshot) {
		second++
	})

	s.manager.Bootstrap(context.Background())
	s.manager.Bootstrap(context.Background())

	s.Equal(1, first, "listener unsubscribed during its first notification")
	s.Equal(2, second, "remaining listener keeps receiving")
}
