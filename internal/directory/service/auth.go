package service

import (
	"context"
	"errors"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"aegis/internal/directory/models"
	"aegis/internal/sentinel"
	"aegis/internal/token"
	id "aegis/pkg/domain"
	dErrors "aegis/pkg/domain-errors"
	"aegis/pkg/secrets"
)

var tracer = otel.Tracer("aegis/directory")

// AuthResult is what a successful authentication hands back to the caller.
type AuthResult struct {
	Token string
	User  *models.User
}

// Authenticate verifies the credentials and issues a signed token for the
// user. Unknown usernames and wrong passwords are indistinguishable to the
// caller. deviceName is a display string for audit logging only.
func (s *Service) Authenticate(ctx context.Context, username, password, deviceName string) (*AuthResult, error) {
	ctx, span := tracer.Start(ctx, "directory.Authenticate",
		trace.WithAttributes(attribute.String("username", username)))
	defer span.End()

	if err := s.simulateLatency(ctx); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "authenticate cancelled")
	}

	user, err := s.users.FindByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			s.authFailure(ctx, "unknown username", "username", username)
			return nil, dErrors.New(dErrors.CodeUnauthorized, "Invalid credentials")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "user lookup failed")
	}

	if user.Status != models.UserStatusActive {
		s.authFailure(ctx, "user not active", "user_id", user.ID.String(), "status", string(user.Status))
		return nil, dErrors.New(dErrors.CodeUnauthorized, "Invalid credentials")
	}

	if err := secrets.Verify(password, user.PasswordHash); err != nil {
		if dErrors.HasCode(err, dErrors.CodeUnauthorized) {
			s.authFailure(ctx, "password mismatch", "user_id", user.ID.String())
			return nil, dErrors.New(dErrors.CodeUnauthorized, "Invalid credentials")
		}
		return nil, err
	}

	now := s.now()
	signedToken, jti, err := s.tokens.Generate(user.ID, user.TenantID, now)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "token generation failed")
	}

	claims, err := s.tokens.Verify(signedToken)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "issued token failed verification")
	}
	if err := s.registry.Register(ctx, jti, user.ID, claims.ExpiresAt); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "token registration failed")
	}

	s.logger.InfoContext(ctx, "user authenticated",
		"user_id", user.ID.String(),
		"tenant_id", user.TenantID.String(),
		"device", deviceName,
	)
	if s.metrics != nil {
		s.metrics.IncrementAuthentications()
		s.metrics.SetLiveTokens(s.registry.CountLive(ctx, now))
	}

	return &AuthResult{Token: signedToken, User: user}, nil
}

// SignOut revokes the token's registry entry. It never fails from the
// caller's perspective: expired, unknown, or already revoked tokens all
// resolve successfully, since the caller's goal is an inert token.
func (s *Service) SignOut(ctx context.Context, tokenString string) error {
	ctx, span := tracer.Start(ctx, "directory.SignOut")
	defer span.End()

	if err := s.simulateLatency(ctx); err != nil {
		return nil
	}

	if s.metrics != nil {
		s.metrics.IncrementSignOuts()
	}

	claims, err := s.tokens.Verify(tokenString)
	if err != nil {
		// Nothing live to revoke. Expired and malformed tokens are inert already.
		s.logger.InfoContext(ctx, "sign-out with non-live token", "error", err)
		return nil
	}

	if err := s.registry.Revoke(ctx, claims.JTI); err != nil &&
		!errors.Is(err, sentinel.ErrNotFound) && !errors.Is(err, sentinel.ErrRevoked) {
		s.logger.ErrorContext(ctx, "token revocation failed", "error", err, "jti", claims.JTI)
		return nil
	}

	s.logger.InfoContext(ctx, "user signed out", "user_id", claims.Subject.String())
	if s.metrics != nil {
		s.metrics.SetLiveTokens(s.registry.CountLive(ctx, s.now()))
	}
	return nil
}

// ValidateToken checks signature, expiry, and registry liveness, and returns
// the identity the token names when all checks pass.
func (s *Service) ValidateToken(ctx context.Context, tokenString string) (*token.Claims, error) {
	ctx, span := tracer.Start(ctx, "directory.ValidateToken")
	defer span.End()

	if err := s.simulateLatency(ctx); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "validation cancelled")
	}

	claims, err := s.tokens.Verify(tokenString)
	if err != nil {
		return nil, err
	}
	if err := s.registry.CheckLive(ctx, claims.JTI, s.now()); err != nil {
		return nil, translateLiveness(err)
	}
	return claims, nil
}

// FetchUser returns the user record the given identity names.
func (s *Service) FetchUser(ctx context.Context, tenantID id.TenantID, userID id.UserID) (*models.User, error) {
	ctx, span := tracer.Start(ctx, "directory.FetchUser",
		trace.WithAttributes(attribute.String("user_id", userID.String())))
	defer span.End()

	if err := s.simulateLatency(ctx); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "fetch cancelled")
	}
	if err := requireTenantID(tenantID); err != nil {
		return nil, err
	}
	if err := requireUserID(userID); err != nil {
		return nil, err
	}

	user, err := s.users.FindByID(ctx, tenantID, userID)
	if err != nil {
		return nil, translateNotFound(err, "user not found")
	}
	return user, nil
}

func (s *Service) authFailure(ctx context.Context, reason string, attributes ...any) {
	args := append(attributes, "reason", reason)
	s.logger.WarnContext(ctx, "authentication failed", args...)
	if s.metrics != nil {
		s.metrics.IncrementAuthFailures()
	}
}
