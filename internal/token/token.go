// Package token issues and verifies the signed bearer tokens handed out by
// the directory service. Verification is the trust boundary: a token is only
// accepted when its signature checks out and its expiry has not passed.
package token

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"

	id "aegis/pkg/domain"
	dErrors "aegis/pkg/domain-errors"
)

const issuer = "aegis-directory"

// AccessTokenClaims represents the JWT claims for directory access tokens.
type AccessTokenClaims struct {
	TenantID string `json:"tenant_id"`
	jwt.RegisteredClaims
}

// Claims is the verified identity a token names.
type Claims struct {
	Subject   id.UserID
	TenantID  id.TenantID
	JTI       string
	ExpiresAt time.Time
}

// Service handles signed token creation and verification.
type Service struct {
	signingKey []byte
	tokenTTL   time.Duration
}

func NewService(signingKey string, tokenTTL time.Duration) *Service {
	return &Service{
		signingKey: []byte(signingKey),
		tokenTTL:   tokenTTL,
	}
}

// Generate issues a signed HS256 token for the given user. It returns the
// token string together with its JTI so callers can track it for revocation.
func (s *Service) Generate(userID id.UserID, tenantID id.TenantID, now time.Time) (string, string, error) {
	b := make([]byte, 16)
	if _, err := rand.Read(b); err != nil {
		return "", "", dErrors.Wrap(err, dErrors.CodeInternal, "could not generate token ID")
	}
	jti := hex.EncodeToString(b)

	newToken := jwt.NewWithClaims(jwt.SigningMethodHS256, AccessTokenClaims{
		TenantID: tenantID.String(),
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID.String(),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.tokenTTL)),
			IssuedAt:  jwt.NewNumericDate(now),
			Issuer:    issuer,
			ID:        jti,
		},
	})

	signedToken, err := newToken.SignedString(s.signingKey)
	if err != nil {
		return "", "", dErrors.Wrap(err, dErrors.CodeInternal, "could not sign token")
	}
	return signedToken, jti, nil
}

// Verify checks the token signature and expiry and returns the identity the
// token names. Expired tokens map to CodeTokenExpired, everything else that
// fails verification maps to CodeUnauthorized.
func (s *Service) Verify(tokenString string) (*Claims, error) {
	parsed, err := jwt.ParseWithClaims(tokenString, &AccessTokenClaims{}, func(token *jwt.Token) (any, error) {
		if token.Method.Alg() != jwt.SigningMethodHS256.Alg() {
			return nil, jwt.ErrTokenUnverifiable
		}
		return s.signingKey, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, dErrors.New(dErrors.CodeTokenExpired, "token expired")
		}
		return nil, dErrors.New(dErrors.CodeUnauthorized, "invalid token")
	}
	if !parsed.Valid {
		return nil, dErrors.New(dErrors.CodeUnauthorized, "invalid token")
	}

	claims, ok := parsed.Claims.(*AccessTokenClaims)
	if !ok {
		return nil, dErrors.New(dErrors.CodeUnauthorized, "invalid token claims")
	}
	if claims.Issuer != issuer {
		return nil, dErrors.New(dErrors.CodeUnauthorized, "invalid token issuer")
	}

	userID, err := id.ParseUserID(claims.Subject)
	if err != nil {
		return nil, dErrors.New(dErrors.CodeUnauthorized, "invalid token subject")
	}
	tenantID, err := id.ParseTenantID(claims.TenantID)
	if err != nil {
		return nil, dErrors.New(dErrors.CodeUnauthorized, "invalid token tenant")
	}

	return &Claims{
		Subject:   userID,
		TenantID:  tenantID,
		JTI:       claims.ID,
		ExpiresAt: claims.ExpiresAt.Time,
	}, nil
}
