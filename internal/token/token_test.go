package token

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	id "aegis/pkg/domain"
	dErrors "aegis/pkg/domain-errors"
)

var (
	userID   = id.NewUserID()
	tenantID = id.NewTenantID()
	tokenTTL = time.Hour
)

var svc = NewService("test-signing-key", tokenTTL)

func Test_GenerateAndVerify(t *testing.T) {
	now := time.Now()
	tokenString, jti, err := svc.Generate(userID, tenantID, now)
	require.NoError(t, err)
	require.NotEmpty(t, tokenString)
	require.NotEmpty(t, jti)

	claims, err := svc.Verify(tokenString)
	require.NoError(t, err)
	assert.Equal(t, userID, claims.Subject)
	assert.Equal(t, tenantID, claims.TenantID)
	assert.Equal(t, jti, claims.JTI)
	assert.WithinDuration(t, now.Add(tokenTTL), claims.ExpiresAt, time.Minute)
}

func Test_Verify_InvalidToken(t *testing.T) {
	_, err := svc.Verify("invalid-token-string")
	require.Error(t, err)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeUnauthorized))
}

func Test_Verify_ExpiredToken(t *testing.T) {
	// Issue far enough in the past that the token is already expired.
	tokenString, _, err := svc.Generate(userID, tenantID, time.Now().Add(-2*tokenTTL))
	require.NoError(t, err)

	_, err = svc.Verify(tokenString)
	require.Error(t, err)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeTokenExpired))
}

func Test_Verify_WrongKey(t *testing.T) {
	other := NewService("other-signing-key", tokenTTL)
	tokenString, _, err := other.Generate(userID, tenantID, time.Now())
	require.NoError(t, err)

	_, err = svc.Verify(tokenString)
	require.Error(t, err)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeUnauthorized))
}

func Test_Verify_RejectsAlgorithmConfusion(t *testing.T) {
	claims := AccessTokenClaims{
		TenantID: tenantID.String(),
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID.String(),
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Minute)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			Issuer:    issuer,
			ID:        "jti-1",
		},
	}

	cases := []struct {
		name       string
		signMethod jwt.SigningMethod
		signKey    any
	}{
		{
			name:       "hs512 header rejected",
			signMethod: jwt.SigningMethodHS512,
			signKey:    []byte("test-signing-key"),
		},
		{
			name:       "alg none rejected",
			signMethod: jwt.SigningMethodNone,
			signKey:    jwt.UnsafeAllowNoneSignatureType,
		},
	}

	for _, tt := range cases {
		t.Run(tt.name, func(t *testing.T) {
			tok := jwt.NewWithClaims(tt.signMethod, claims)
			tokenString, err := tok.SignedString(tt.signKey)
			require.NoError(t, err)

			_, err = svc.Verify(tokenString)
			require.Error(t, err)
			assert.True(t, dErrors.HasCode(err, dErrors.CodeUnauthorized))
		})
	}
}

func Test_Verify_RejectsForeignIssuer(t *testing.T) {
	claims := AccessTokenClaims{
		TenantID: tenantID.String(),
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID.String(),
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Minute)),
			Issuer:    "someone-else",
		},
	}
	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := tok.SignedString([]byte("test-signing-key"))
	require.NoError(t, err)

	_, err = svc.Verify(tokenString)
	require.Error(t, err)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeUnauthorized))
}
